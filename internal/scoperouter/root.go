package scoperouter

import (
	"os"
	"path/filepath"
)

// projectMarkers are the files/directories whose presence identifies a
// directory as a project root, checked in this order.
var projectMarkers = []string{
	".memvid_project", ".git", "pyproject.toml", "package.json",
	"Cargo.toml", "go.mod", "CMakeLists.txt",
}

const maxRootSearchDepth = 10

// FindProjectRoot scans upward from start looking for a directory
// containing one of projectMarkers, stopping after maxRootSearchDepth
// levels. Returns start unchanged if nothing is found.
func FindProjectRoot(start string) string {
	dir, err := filepath.Abs(start)
	if err != nil {
		return start
	}

	for depth := 0; depth < maxRootSearchDepth; depth++ {
		for _, marker := range projectMarkers {
			if _, err := os.Stat(filepath.Join(dir, marker)); err == nil {
				return dir
			}
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return start
}
