package chromemdb

import (
	"context"
	"fmt"
	"runtime"
	"sort"
	"strconv"

	"github.com/philippgille/chromem-go"
	"github.com/rs/zerolog/log"
	"github.com/tmc/langchaingo/embeddings"

	"pdfchat/internal/embedding"
	"pdfchat/internal/helper"
	"pdfchat/internal/models"
)

const (
	metaOrd = "ord"
)

// VectorDBManager wraps an in-memory chromem collection holding the chunks of
// one processed document set. It is never persisted.
type VectorDBManager struct {
	db         *chromem.DB
	collection *chromem.Collection
	chunks     []models.Chunk
}

// NewVectorDBManager creates an empty collection whose queries are embedded with embedder.
func NewVectorDBManager(collectionName string, embedder embeddings.Embedder) (*VectorDBManager, error) {
	db := chromem.NewDB()
	embed := func(ctx context.Context, text string) ([]float32, error) {
		return embedder.EmbedQuery(ctx, text)
	}
	c, err := db.CreateCollection(collectionName, nil, embed)
	if err != nil {
		return nil, fmt.Errorf("failed to create collection: %v", err)
	}
	return &VectorDBManager{db: db, collection: c}, nil
}

// Build embeds the ordered chunks and indexes them in a fresh collection.
func Build(ctx context.Context, embedder embeddings.Embedder, chunks []string) (*VectorDBManager, error) {
	if len(chunks) == 0 {
		return nil, fmt.Errorf("no chunks to index")
	}

	vectors, err := embedding.EmbedChunks(ctx, embedder, chunks)
	if err != nil {
		return nil, err
	}

	name, err := helper.GenerateUUID()
	if err != nil {
		return nil, err
	}
	m, err := NewVectorDBManager(name, embedder)
	if err != nil {
		return nil, err
	}

	docs := make([]chromem.Document, len(chunks))
	m.chunks = make([]models.Chunk, len(chunks))
	for i, content := range chunks {
		id := fmt.Sprintf("chunk-%05d", i)
		docs[i] = chromem.Document{
			ID:        id,
			Content:   content,
			Metadata:  map[string]string{metaOrd: strconv.Itoa(i)},
			Embedding: vectors[i],
		}
		m.chunks[i] = models.Chunk{ID: id, Ord: i, Content: content}
	}

	if err := m.CreateDocs(ctx, docs); err != nil {
		return nil, err
	}
	log.Info().Str("collection", name).Int("chunks", m.Count()).Msg("Built vector index")
	return m, nil
}

// add multiple documents
func (m *VectorDBManager) CreateDocs(ctx context.Context, documents []chromem.Document) error {
	err := m.collection.AddDocuments(ctx, documents, runtime.NumCPU())
	if err != nil {
		return fmt.Errorf("failed to add documents: %v", err)
	}
	return nil
}

// SearchWithQueryOptions runs a raw similarity query against the collection
func (m *VectorDBManager) SearchWithQueryOptions(ctx context.Context, opts chromem.QueryOptions) ([]chromem.Result, error) {
	// exit if query or embedding is not provided
	if opts.QueryText == "" && opts.QueryEmbedding == nil {
		return nil, fmt.Errorf("either query or embedding must be provided")
	}

	results, err := m.collection.QueryWithOptions(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to query by similarity: %v", err)
	}
	return results, nil
}

// Retrieve returns up to k chunks most similar to query, best first.
func (m *VectorDBManager) Retrieve(ctx context.Context, query string, k int) ([]models.Chunk, error) {
	if k <= 0 {
		return nil, fmt.Errorf("k must be positive, got %d", k)
	}
	// chromem rejects k larger than the collection
	k = min(k, m.collection.Count())
	if k == 0 {
		return nil, nil
	}

	results, err := m.SearchWithQueryOptions(ctx, chromem.QueryOptions{
		QueryText: query,
		NResults:  k,
	})
	if err != nil {
		return nil, err
	}
	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Similarity > results[j].Similarity
	})

	chunks := make([]models.Chunk, 0, len(results))
	for _, r := range results {
		ord, _ := strconv.Atoi(r.Metadata[metaOrd])
		chunks = append(chunks, models.Chunk{
			ID:      r.ID,
			Ord:     ord,
			Content: r.Content,
			Score:   r.Similarity,
		})
	}
	return chunks, nil
}

// Chunks returns the indexed chunks in document order.
func (m *VectorDBManager) Chunks() []models.Chunk {
	out := make([]models.Chunk, len(m.chunks))
	copy(out, m.chunks)
	return out
}

func (m *VectorDBManager) Count() int {
	return m.collection.Count()
}

// delete collection
func (m *VectorDBManager) DeleteCollection() error {
	err := m.db.DeleteCollection(m.collection.Name)
	if err != nil {
		return fmt.Errorf("failed to drop collection: %v", err)
	}
	m.chunks = nil
	return nil
}
