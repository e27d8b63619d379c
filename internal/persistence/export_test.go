package persistence

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExportManager_ExportArchivesDataDirectory(t *testing.T) {
	dataDir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dataDir, memoryMetaFile), []byte(`{"m1":{}}`), filePerm))
	require.NoError(t, os.WriteFile(filepath.Join(dataDir, waypointsFile), []byte(`{}`), filePerm))

	exportDir := t.TempDir()
	mgr := NewExportManager(exportDir)

	metadata, err := mgr.Export(dataDir, "project")
	require.NoError(t, err)
	assert.Equal(t, 2, metadata.FileCount)
	assert.Equal(t, "project", metadata.Scope)

	entries, err := os.ReadDir(exportDir)
	require.NoError(t, err)
	assert.Len(t, entries, 2) // archive + metadata sidecar
}

func TestExportManager_ImportRestoresFiles(t *testing.T) {
	dataDir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dataDir, memoryMetaFile), []byte(`{"m1":{"id":"m1"}}`), filePerm))

	exportDir := t.TempDir()
	mgr := NewExportManager(exportDir)
	_, err := mgr.Export(dataDir, "project")
	require.NoError(t, err)

	entries, err := os.ReadDir(exportDir)
	require.NoError(t, err)

	var archivePath string
	for _, e := range entries {
		if filepath.Ext(e.Name()) == ".gz" {
			archivePath = filepath.Join(exportDir, e.Name())
		}
	}
	require.NotEmpty(t, archivePath)

	destDir := t.TempDir()
	count, err := mgr.Import(archivePath, destDir)
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	restored, err := os.ReadFile(filepath.Join(destDir, memoryMetaFile))
	require.NoError(t, err)
	assert.Contains(t, string(restored), "m1")
}
