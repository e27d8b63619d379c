package persistence

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cogmem/internal/types"
)

func TestDocumentStore_SaveAndLoadMemoriesRoundTrip(t *testing.T) {
	dir := t.TempDir()
	store, err := NewDocumentStore(dir)
	require.NoError(t, err)

	memories := map[string]*types.Memory{
		"m1": {ID: "m1", Content: "hello", PrimarySector: types.SectorSemantic, Salience: 0.9},
	}
	require.NoError(t, store.SaveMemories(memories))

	loaded, err := store.LoadMemories()
	require.NoError(t, err)
	assert.Equal(t, "hello", loaded["m1"].Content)
	assert.Equal(t, 0.9, loaded["m1"].Salience)
}

func TestDocumentStore_LoadMissingFileReturnsEmptyMap(t *testing.T) {
	dir := t.TempDir()
	store, err := NewDocumentStore(dir)
	require.NoError(t, err)

	memories, err := store.LoadMemories()
	require.NoError(t, err)
	assert.Empty(t, memories)
}

func TestDocumentStore_WritesPrettyPrintedJSON(t *testing.T) {
	dir := t.TempDir()
	store, err := NewDocumentStore(dir)
	require.NoError(t, err)

	require.NoError(t, store.SaveFacts(map[string]*types.Fact{
		"f1": {ID: "f1", Subject: "a", Predicate: "b", Object: "c", Confidence: 1},
	}))

	raw, err := os.ReadFile(filepath.Join(dir, temporalFactFile))
	require.NoError(t, err)
	assert.Contains(t, string(raw), "\n  ")
}

func TestDocumentStore_SaveWaypointsRoundTrip(t *testing.T) {
	dir := t.TempDir()
	store, err := NewDocumentStore(dir)
	require.NoError(t, err)

	edges := map[string]map[string]*types.Edge{
		"a": {"b": {Weight: 0.5, CreatedAt: 1, UpdatedAt: 1}},
	}
	require.NoError(t, store.SaveWaypoints(edges))

	loaded, err := store.LoadWaypoints()
	require.NoError(t, err)
	assert.Equal(t, 0.5, loaded["a"]["b"].Weight)
}
