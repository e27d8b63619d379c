// Package vectorindex defines the narrow capability interface the
// memory core uses to talk to the embedding/similarity backend: an
// opaque service that encodes text and serves top-K nearest-neighbour
// search. Implementations live alongside it: an in-process
// deterministic backend for tests and standalone use, and a
// Qdrant-backed implementation for a real vector database.
package vectorindex

import (
	"context"

	"cogmem/internal/cogerrors"
)

// Chunk is one unit fed to the backend's full-index rebuild. Text
// carries the `[ID:<uuid>][SEC:<sector>] content [tags:...]` chunking
// contract; the backend treats it as opaque.
type Chunk struct {
	Text string
}

// Hit is one ranked result of a Search call.
type Hit struct {
	Text  string
	Score float64
}

// Backend is the capability interface: rebuild(chunks), search(query,k)
// -> ranked chunks, encode(texts) -> unit-norm vectors. Any
// implementation satisfying it is acceptable.
type Backend interface {
	Rebuild(ctx context.Context, chunks []Chunk) error
	Search(ctx context.Context, query string, k int) ([]Hit, error)
	Encode(ctx context.Context, texts []string) ([][]float32, error)
}

// Unavailable wraps a failure to reach the underlying service as a
// BackendUnavailable error. The memory core degrades gracefully on
// this category: search returns an empty list silently, store persists
// metadata but skips the index rebuild.
func Unavailable(component, operation string, cause error) error {
	return cogerrors.BackendUnavailable(component, operation, cause)
}
