package persistence

import (
	"database/sql"
	"encoding/json"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"cogmem/internal/types"
)

// CheckpointStore is an optional side-store that snapshots a scope's
// memory documents into a single SQLite file, read by the CLI's
// checkpoints listing without re-parsing the JSON documents on every
// read. It is not load-bearing: the JSON documents in DocumentStore
// remain the source of truth.
type CheckpointStore struct {
	db *sql.DB
}

// NewCheckpointStore opens (creating if needed) a SQLite checkpoint
// database at path.
func NewCheckpointStore(path string) (*CheckpointStore, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, err
	}
	if _, err := db.Exec(checkpointSchema); err != nil {
		db.Close()
		return nil, err
	}
	return &CheckpointStore{db: db}, nil
}

const checkpointSchema = `
CREATE TABLE IF NOT EXISTS checkpoints (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	taken_at INTEGER NOT NULL,
	memory_count INTEGER NOT NULL,
	fact_count INTEGER NOT NULL,
	edge_count INTEGER NOT NULL,
	payload TEXT NOT NULL
);
`

// Snapshot is the point-in-time state a checkpoint records.
type Snapshot struct {
	Memories map[string]*types.Memory          `json:"memories"`
	Facts    map[string]*types.Fact            `json:"facts"`
	Edges    map[string]map[string]*types.Edge `json:"edges"`
}

// Record writes one checkpoint row capturing snap's full state.
func (c *CheckpointStore) Record(snap Snapshot) error {
	payload, err := json.Marshal(snap)
	if err != nil {
		return err
	}
	edgeCount := 0
	for _, dsts := range snap.Edges {
		edgeCount += len(dsts)
	}
	_, err = c.db.Exec(
		`INSERT INTO checkpoints (taken_at, memory_count, fact_count, edge_count, payload) VALUES (?, ?, ?, ?, ?)`,
		time.Now().UnixMilli(), len(snap.Memories), len(snap.Facts), edgeCount, string(payload),
	)
	return err
}

// CheckpointSummary is one row of checkpoint history, without the
// full payload.
type CheckpointSummary struct {
	ID          int64
	TakenAt     int64
	MemoryCount int
	FactCount   int
	EdgeCount   int
}

// History returns the most recent checkpoints, newest first, limited
// to limit rows.
func (c *CheckpointStore) History(limit int) ([]CheckpointSummary, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := c.db.Query(
		`SELECT id, taken_at, memory_count, fact_count, edge_count FROM checkpoints ORDER BY taken_at DESC LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []CheckpointSummary
	for rows.Next() {
		var s CheckpointSummary
		if err := rows.Scan(&s.ID, &s.TakenAt, &s.MemoryCount, &s.FactCount, &s.EdgeCount); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

// Close closes the underlying database handle.
func (c *CheckpointStore) Close() error {
	return c.db.Close()
}
