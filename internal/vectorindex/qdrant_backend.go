package vectorindex

import (
	"context"

	"github.com/qdrant/go-client/qdrant"
)

const defaultCollectionVectorSize = uint64(dimensions)

// QdrantBackend implements Backend against a real Qdrant collection.
// Vectors are produced by the same hashing-trick encoder as
// MemoryBackend; qdrant serves the index/search half of the contract.
type QdrantBackend struct {
	client         *qdrant.Client
	collectionName string
}

// QdrantConfig configures the connection.
type QdrantConfig struct {
	Host       string
	Port       int
	APIKey     string
	UseTLS     bool
	Collection string
}

// NewQdrantBackend connects to Qdrant and ensures the collection
// exists, creating it with cosine distance if missing.
func NewQdrantBackend(ctx context.Context, cfg QdrantConfig) (*QdrantBackend, error) {
	collection := cfg.Collection
	if collection == "" {
		collection = "cogmem_memories"
	}

	client, err := qdrant.NewClient(&qdrant.Config{
		Host:                   cfg.Host,
		Port:                   cfg.Port,
		APIKey:                 cfg.APIKey,
		UseTLS:                 cfg.UseTLS,
		SkipCompatibilityCheck: true,
	})
	if err != nil {
		return nil, Unavailable("vectorindex", "connect", err)
	}

	collections, err := client.ListCollections(ctx)
	if err != nil {
		return nil, Unavailable("vectorindex", "list_collections", err)
	}

	exists := false
	for _, name := range collections {
		if name == collection {
			exists = true
			break
		}
	}
	if !exists {
		if err := client.CreateCollection(ctx, &qdrant.CreateCollection{
			CollectionName: collection,
			VectorsConfig: qdrant.NewVectorsConfig(&qdrant.VectorParams{
				Size:     defaultCollectionVectorSize,
				Distance: qdrant.Distance_Cosine,
			}),
		}); err != nil {
			return nil, Unavailable("vectorindex", "create_collection", err)
		}
	}

	return &QdrantBackend{client: client, collectionName: collection}, nil
}

// Rebuild recreates the collection's points from scratch: drops the
// collection, then upserts one point per chunk. The backend is a
// build-once-and-query index, so every mutation pays the full rebuild.
func (b *QdrantBackend) Rebuild(ctx context.Context, chunks []Chunk) error {
	if err := b.client.DeleteCollection(ctx, b.collectionName); err != nil {
		return Unavailable("vectorindex", "rebuild.delete", err)
	}
	if err := b.client.CreateCollection(ctx, &qdrant.CreateCollection{
		CollectionName: b.collectionName,
		VectorsConfig: qdrant.NewVectorsConfig(&qdrant.VectorParams{
			Size:     defaultCollectionVectorSize,
			Distance: qdrant.Distance_Cosine,
		}),
	}); err != nil {
		return Unavailable("vectorindex", "rebuild.create", err)
	}

	points := make([]*qdrant.PointStruct, len(chunks))
	for i, c := range chunks {
		vec := encode(c.Text)
		points[i] = &qdrant.PointStruct{
			Id:      qdrant.NewIDNum(uint64(i + 1)),
			Vectors: qdrant.NewVectors(vec...),
			Payload: qdrant.NewValueMap(map[string]any{"text": c.Text}),
		}
	}
	if len(points) == 0 {
		return nil
	}
	if _, err := b.client.Upsert(ctx, &qdrant.UpsertPoints{
		CollectionName: b.collectionName,
		Points:         points,
	}); err != nil {
		return Unavailable("vectorindex", "rebuild.upsert", err)
	}
	return nil
}

// Search queries Qdrant for the top k nearest chunks to query.
func (b *QdrantBackend) Search(ctx context.Context, query string, k int) ([]Hit, error) {
	qvec := encode(query)

	limit := uint64(k)
	result, err := b.client.Query(ctx, &qdrant.QueryPoints{
		CollectionName: b.collectionName,
		Query:          qdrant.NewQuery(qvec...),
		Limit:          &limit,
		WithPayload:    qdrant.NewWithPayload(true),
	})
	if err != nil {
		return nil, Unavailable("vectorindex", "search", err)
	}

	hits := make([]Hit, 0, len(result))
	for _, point := range result {
		payload := point.GetPayload()
		text := ""
		if v, ok := payload["text"]; ok {
			text = v.GetStringValue()
		}
		hits = append(hits, Hit{Text: text, Score: float64(point.GetScore())})
	}
	return hits, nil
}

// Encode produces the same hashing-trick vectors MemoryBackend does;
// kept local so the collection's vector size stays consistent with
// whatever produced Rebuild's points.
func (b *QdrantBackend) Encode(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i, t := range texts {
		out[i] = encode(t)
	}
	return out, nil
}
