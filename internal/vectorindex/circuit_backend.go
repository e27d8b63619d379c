package vectorindex

import (
	"context"

	"cogmem/internal/circuitbreaker"
)

// CircuitBackend wraps a Backend with a circuit breaker, tripping open
// after repeated failures against a remote service like Qdrant so a
// struggling index stops taking new requests instead of piling up
// timeouts. Once open, calls fail fast with BackendUnavailable, which
// the memory core already treats as a degrade-gracefully signal.
type CircuitBackend struct {
	inner   Backend
	breaker *circuitbreaker.CircuitBreaker
}

// NewCircuitBackend wraps inner with a circuit breaker using cfg, or
// circuitbreaker.DefaultConfig() if cfg is nil.
func NewCircuitBackend(inner Backend, cfg *circuitbreaker.Config) *CircuitBackend {
	return &CircuitBackend{inner: inner, breaker: circuitbreaker.New(cfg)}
}

func (b *CircuitBackend) Rebuild(ctx context.Context, chunks []Chunk) error {
	err := b.breaker.Execute(ctx, func(ctx context.Context) error {
		return b.inner.Rebuild(ctx, chunks)
	})
	if err == circuitbreaker.ErrCircuitOpen || err == circuitbreaker.ErrTooManyConcurrentRequests {
		return Unavailable("vectorindex", "rebuild.circuit_open", err)
	}
	return err
}

func (b *CircuitBackend) Search(ctx context.Context, query string, k int) ([]Hit, error) {
	var hits []Hit
	err := b.breaker.Execute(ctx, func(ctx context.Context) error {
		var searchErr error
		hits, searchErr = b.inner.Search(ctx, query, k)
		return searchErr
	})
	if err != nil {
		if err == circuitbreaker.ErrCircuitOpen || err == circuitbreaker.ErrTooManyConcurrentRequests {
			return nil, Unavailable("vectorindex", "search.circuit_open", err)
		}
		return nil, err
	}
	return hits, nil
}

func (b *CircuitBackend) Encode(ctx context.Context, texts []string) ([][]float32, error) {
	var vecs [][]float32
	err := b.breaker.Execute(ctx, func(ctx context.Context) error {
		var encodeErr error
		vecs, encodeErr = b.inner.Encode(ctx, texts)
		return encodeErr
	})
	if err != nil {
		if err == circuitbreaker.ErrCircuitOpen || err == circuitbreaker.ErrTooManyConcurrentRequests {
			return nil, Unavailable("vectorindex", "encode.circuit_open", err)
		}
		return nil, err
	}
	return vecs, nil
}

// Stats exposes the underlying breaker's counters.
func (b *CircuitBackend) Stats() circuitbreaker.Stats {
	return b.breaker.GetStats()
}
