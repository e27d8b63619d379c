package scoperouter

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFindProjectRoot_FindsGoModUpward(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, "go.mod"), []byte("module x\n"), 0o644))

	nested := filepath.Join(root, "a", "b", "c")
	require.NoError(t, os.MkdirAll(nested, 0o755))

	found := FindProjectRoot(nested)
	assert.Equal(t, root, found)
}

func TestFindProjectRoot_ReturnsStartWhenNoMarkerFound(t *testing.T) {
	root := t.TempDir()
	found := FindProjectRoot(root)
	assert.Equal(t, root, found)
}
