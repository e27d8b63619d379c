package memorycore

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cogmem/internal/temporal"
	"cogmem/internal/types"
	"cogmem/internal/vectorindex"
)

func newTestCore() *Core {
	return New(vectorindex.NewMemoryBackend(), nil)
}

func TestCore_StoreClassifiesAndPersistsMetadata(t *testing.T) {
	c := newTestCore()
	ctx := context.Background()

	result, err := c.Store(ctx, "yesterday I went to the store and bought milk", StoreOptions{TenantID: "t1"})
	require.NoError(t, err)
	assert.Equal(t, types.SectorEpisodic, result.PrimarySector)
	assert.NotEmpty(t, result.ID)

	m, ok := c.Get(result.ID, "t1")
	require.True(t, ok)
	assert.Equal(t, 1.0, m.Salience)
	assert.Equal(t, 0, m.Coactivations)
}

func TestCore_StoreWithSectorOverride(t *testing.T) {
	c := newTestCore()
	ctx := context.Background()

	result, err := c.Store(ctx, "just some plain text", StoreOptions{Sector: types.SectorReflective})
	require.NoError(t, err)
	assert.Equal(t, types.SectorReflective, result.PrimarySector)
	assert.Equal(t, 1.0, result.Confidence)
}

func TestCore_StoreRejectsEmptyContent(t *testing.T) {
	c := newTestCore()
	_, err := c.Store(context.Background(), "", StoreOptions{})
	assert.Error(t, err)
}

func TestCore_StoreWiresWaypointsToSimilarMemories(t *testing.T) {
	c := newTestCore()
	ctx := context.Background()

	_, err := c.Store(ctx, "deploy the payments service to production", StoreOptions{})
	require.NoError(t, err)
	second, err := c.Store(ctx, "deploy payments service to production environment", StoreOptions{})
	require.NoError(t, err)

	assert.Greater(t, second.WaypointsFormed, 0, "near-duplicate content should form a waypoint")
}

func TestCore_SearchRanksBySectorPenaltyAndSalience(t *testing.T) {
	c := newTestCore()
	ctx := context.Background()

	_, err := c.Store(ctx, "the cat is a mammal, a concept in biology", StoreOptions{TenantID: "t1"})
	require.NoError(t, err)
	_, err = c.Store(ctx, "I feel so happy and excited today!", StoreOptions{TenantID: "t1"})
	require.NoError(t, err)

	hits, err := c.Search(ctx, "what is a mammal, a definition", SearchOptions{TenantID: "t1", Limit: 5})
	require.NoError(t, err)
	require.NotEmpty(t, hits)
	assert.Contains(t, hits[0].Memory.Content, "mammal")
}

func TestCore_SearchFiltersByTenant(t *testing.T) {
	c := newTestCore()
	ctx := context.Background()

	_, err := c.Store(ctx, "project notes about the build pipeline", StoreOptions{TenantID: "a"})
	require.NoError(t, err)

	hits, err := c.Search(ctx, "build pipeline", SearchOptions{TenantID: "b", Limit: 5})
	require.NoError(t, err)
	assert.Empty(t, hits)
}

func TestCore_SearchReinforcesSalienceOnRetrieval(t *testing.T) {
	c := newTestCore()
	ctx := context.Background()

	result, err := c.Store(ctx, "how to configure the deployment pipeline step by step", StoreOptions{})
	require.NoError(t, err)

	m, _ := c.Get(result.ID, "")
	decayImmediately(m)
	salienceBefore := m.Salience

	_, err = c.Search(ctx, "how to configure the deployment pipeline", SearchOptions{Limit: 5})
	require.NoError(t, err)

	assert.GreaterOrEqual(t, m.Salience, salienceBefore)
}

func decayImmediately(m *types.Memory) {
	m.Salience = 0.3
}

func TestCore_SearchPropagatesReinforcementToNeighbours(t *testing.T) {
	c := newTestCore()
	ctx := context.Background()

	first, err := c.Store(ctx, "deploy the payments service to production", StoreOptions{})
	require.NoError(t, err)
	second, err := c.Store(ctx, "deploy payments service to production environment", StoreOptions{})
	require.NoError(t, err)
	require.Greater(t, second.WaypointsFormed, 0)

	neighbour, _ := c.Get(first.ID, "")
	neighbour.Salience = 0.2
	before := neighbour.Salience

	hits, err := c.Search(ctx, "deploy payments service to production environment", SearchOptions{Limit: 1})
	require.NoError(t, err)
	require.NotEmpty(t, hits)

	if hits[0].Memory.ID == second.ID {
		assert.Greater(t, neighbour.Salience, before, "retrieval should spill salience to linked memories")
	}
}

func TestCore_GetReturnsFalseForUnknownID(t *testing.T) {
	c := newTestCore()
	_, ok := c.Get("missing", "")
	assert.False(t, ok)
}

func TestCore_DeleteCascadesWaypoints(t *testing.T) {
	c := newTestCore()
	ctx := context.Background()

	first, err := c.Store(ctx, "deploy the payments service to production", StoreOptions{})
	require.NoError(t, err)
	_, err = c.Store(ctx, "deploy payments service to production environment", StoreOptions{})
	require.NoError(t, err)

	ok, err := c.Delete(ctx, first.ID, "")
	require.NoError(t, err)
	assert.True(t, ok)

	neighbours := c.waypoint.Neighbours(first.ID)
	assert.Empty(t, neighbours)
}

func TestCore_DeleteAllCountsTenantScoped(t *testing.T) {
	c := newTestCore()
	ctx := context.Background()

	_, err := c.Store(ctx, "memory one", StoreOptions{TenantID: "a"})
	require.NoError(t, err)
	_, err = c.Store(ctx, "memory two", StoreOptions{TenantID: "b"})
	require.NoError(t, err)

	count, err := c.DeleteAll(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, 1, count)
	assert.Equal(t, 1, len(c.memories))
}

func TestCore_ListOrdersBySalienceWeightedRecency(t *testing.T) {
	c := newTestCore()
	ctx := context.Background()

	_, err := c.Store(ctx, "low salience memory", StoreOptions{TenantID: "t"})
	require.NoError(t, err)
	second, err := c.Store(ctx, "high salience memory", StoreOptions{TenantID: "t"})
	require.NoError(t, err)

	for _, m := range c.memories {
		if m.ID != second.ID {
			m.Salience = 0.1
		}
	}

	listed := c.List(ListOptions{TenantID: "t", Limit: 10})
	require.Len(t, listed, 2)
	assert.Equal(t, second.ID, listed[0].ID)
}

func TestCore_ApplyDecayReportsChangedCount(t *testing.T) {
	c := newTestCore()
	ctx := context.Background()

	result, err := c.Store(ctx, "a memory to decay", StoreOptions{})
	require.NoError(t, err)

	m, _ := c.Get(result.ID, "")
	m.LastSeenAt -= 1000 * 86_400_000
	m.Salience = 0.9

	decayResult := c.ApplyDecay()
	assert.GreaterOrEqual(t, decayResult.Changed, 1)
}

func TestCore_ReinforceRejectsOutOfRangeBoost(t *testing.T) {
	c := newTestCore()
	ctx := context.Background()

	result, err := c.Store(ctx, "reinforce me", StoreOptions{})
	require.NoError(t, err)

	_, err = c.Reinforce(result.ID, 0.9)
	assert.Error(t, err)
}

func TestCore_ReinforceUnknownIDReturnsNotFound(t *testing.T) {
	c := newTestCore()
	_, err := c.Reinforce("missing", 0.1)
	assert.Error(t, err)
}

func TestCore_FactOperations(t *testing.T) {
	c := newTestCore()

	fact, err := c.StoreFact("alice", "prefers", "tabs", 1000, 0.9, nil)
	require.NoError(t, err)
	assert.Equal(t, "alice", fact.Subject)

	results := c.QueryFacts(temporal.Selector{Subject: "alice"}, 2000, 0)
	assert.Len(t, results, 1)

	timeline := c.GetTimeline("alice", "")
	assert.Len(t, timeline, 1)
}

func TestCore_StatsAggregatesCounts(t *testing.T) {
	c := newTestCore()
	ctx := context.Background()

	_, err := c.Store(ctx, "one memory", StoreOptions{})
	require.NoError(t, err)
	_, err = c.StoreFact("a", "b", "c", 0, 1, nil)
	require.NoError(t, err)

	stats := c.Stats()
	assert.Equal(t, 1, stats.MemoryCount)
	assert.Equal(t, 1, stats.Temporal.TotalFacts)
	assert.Equal(t, 1, stats.Temporal.ActiveFacts)
	assert.Equal(t, 1, stats.BySector[types.SectorSemantic]+stats.BySector[types.SectorEpisodic]+
		stats.BySector[types.SectorProcedural]+stats.BySector[types.SectorEmotional]+stats.BySector[types.SectorReflective])
}
