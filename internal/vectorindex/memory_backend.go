package vectorindex

import (
	"context"
	"hash/fnv"
	"math"
	"sort"
	"strings"
	"sync"
)

// dimensions used by the hashing-trick encoder. Large enough to keep
// collisions rare for working sets of a few thousand memories.
const dimensions = 256

// MemoryBackend is a deterministic, dependency-free Backend
// implementation: it encodes text with a stable hashing-trick
// bag-of-words vector and serves search via brute-force cosine
// similarity. It requires no external service, so it is the default
// backend and the one exercised by unit tests; it satisfies the exact
// same capability interface a production vector database would.
type MemoryBackend struct {
	mu     sync.RWMutex
	chunks []Chunk
	vecs   [][]float32
}

// NewMemoryBackend creates an empty in-process backend.
func NewMemoryBackend() *MemoryBackend {
	return &MemoryBackend{}
}

// Rebuild replaces the entire index with chunks, matching the
// backend's build-once-and-query contract.
func (b *MemoryBackend) Rebuild(ctx context.Context, chunks []Chunk) error {
	vecs := make([][]float32, len(chunks))
	for i, c := range chunks {
		vecs[i] = encode(c.Text)
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	b.chunks = chunks
	b.vecs = vecs
	return nil
}

// Search ranks indexed chunks by cosine similarity to query, returning
// the top k.
func (b *MemoryBackend) Search(ctx context.Context, query string, k int) ([]Hit, error) {
	qvec := encode(query)

	b.mu.RLock()
	defer b.mu.RUnlock()

	type scored struct {
		text  string
		score float64
	}
	scoredHits := make([]scored, len(b.chunks))
	for i, c := range b.chunks {
		scoredHits[i] = scored{text: c.Text, score: cosine(qvec, b.vecs[i])}
	}
	sort.Slice(scoredHits, func(i, j int) bool { return scoredHits[i].score > scoredHits[j].score })

	if k > len(scoredHits) {
		k = len(scoredHits)
	}
	out := make([]Hit, k)
	for i := 0; i < k; i++ {
		out[i] = Hit{Text: scoredHits[i].text, Score: scoredHits[i].score}
	}
	return out, nil
}

// Encode produces unit-norm hashing-trick vectors for texts.
func (b *MemoryBackend) Encode(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i, t := range texts {
		out[i] = encode(t)
	}
	return out, nil
}

func encode(text string) []float32 {
	vec := make([]float32, dimensions)
	for _, tok := range strings.Fields(strings.ToLower(text)) {
		h := fnv.New32a()
		_, _ = h.Write([]byte(tok))
		idx := h.Sum32() % uint32(dimensions)
		vec[idx]++
	}
	normalize(vec)
	return vec
}

func normalize(vec []float32) {
	var sumSquares float64
	for _, v := range vec {
		sumSquares += float64(v) * float64(v)
	}
	if sumSquares == 0 {
		return
	}
	norm := math.Sqrt(sumSquares)
	for i := range vec {
		vec[i] = float32(float64(vec[i]) / norm)
	}
}

func cosine(a, b []float32) float64 {
	var dot float64
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	for i := 0; i < n; i++ {
		dot += float64(a[i]) * float64(b[i])
	}
	return dot
}
