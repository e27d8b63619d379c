// Package persistence implements the on-disk document store: one JSON
// file per document (memory metadata, temporal facts, waypoints) under
// a scope's data directory, rewritten in full on every mutation, plus
// an optional SQLite checkpoint side-store and tar.gz export/import.
package persistence

import (
	"encoding/json"
	"os"
	"path/filepath"

	"cogmem/internal/types"
)

const (
	memoryMetaFile   = "memory_meta.json"
	temporalFactFile = "temporal_facts.json"
	waypointsFile    = "waypoints.json"
	dirPerm          = 0o750
	filePerm         = 0o640
)

// DocumentStore persists one scope's memory_meta.json,
// temporal_facts.json, and waypoints.json documents, pretty-printed.
// It satisfies memorycore.Persister.
type DocumentStore struct {
	dir string
}

// NewDocumentStore creates a document store rooted at dir, creating
// the directory if it does not exist.
func NewDocumentStore(dir string) (*DocumentStore, error) {
	if err := os.MkdirAll(dir, dirPerm); err != nil {
		return nil, err
	}
	return &DocumentStore{dir: dir}, nil
}

// SaveMemories overwrites memory_meta.json with the given map.
func (s *DocumentStore) SaveMemories(memories map[string]*types.Memory) error {
	return writeJSON(filepath.Join(s.dir, memoryMetaFile), memories)
}

// SaveFacts overwrites temporal_facts.json with the given map.
func (s *DocumentStore) SaveFacts(facts map[string]*types.Fact) error {
	return writeJSON(filepath.Join(s.dir, temporalFactFile), facts)
}

// SaveWaypoints overwrites waypoints.json with the given edge map.
func (s *DocumentStore) SaveWaypoints(edges map[string]map[string]*types.Edge) error {
	return writeJSON(filepath.Join(s.dir, waypointsFile), edges)
}

// LoadMemories reads memory_meta.json, returning an empty map if the
// file does not exist yet.
func (s *DocumentStore) LoadMemories() (map[string]*types.Memory, error) {
	out := make(map[string]*types.Memory)
	if err := readJSON(filepath.Join(s.dir, memoryMetaFile), &out); err != nil {
		return nil, err
	}
	return out, nil
}

// LoadFacts reads temporal_facts.json.
func (s *DocumentStore) LoadFacts() (map[string]*types.Fact, error) {
	out := make(map[string]*types.Fact)
	if err := readJSON(filepath.Join(s.dir, temporalFactFile), &out); err != nil {
		return nil, err
	}
	return out, nil
}

// LoadWaypoints reads waypoints.json.
func (s *DocumentStore) LoadWaypoints() (map[string]map[string]*types.Edge, error) {
	out := make(map[string]map[string]*types.Edge)
	if err := readJSON(filepath.Join(s.dir, waypointsFile), &out); err != nil {
		return nil, err
	}
	return out, nil
}

// writeJSON serializes v and overwrites path directly. Writes are not
// transactional: a crash mid-write can leave truncated state, and the
// next successful save rewrites the full document.
func writeJSON(path string, v interface{}) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, filePerm)
}

func readJSON(path string, v interface{}) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	if len(data) == 0 {
		return nil
	}
	return json.Unmarshal(data, v)
}
