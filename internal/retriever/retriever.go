package retriever

import (
	"context"
	"fmt"
	"log"

	"github.com/oratohq/orato/internal/classify"
	"github.com/oratohq/orato/internal/embeddings"
	"github.com/oratohq/orato/internal/parser"
	"github.com/oratohq/orato/internal/vectordb"
)

const defaultTopK = 5

// Searcher is the read side of the vector index the retriever depends on.
type Searcher interface {
	Search(ctx context.Context, vector []float32, k int) ([]vectordb.SearchResult, error)
}

// Result is the answer to one query: the chosen fragment, where it lives
// and how the client should display it.
type Result struct {
	Intent     classify.Intent    `json:"intent"`
	Content    string             `json:"content"`
	Slide      int                `json:"slide"`
	BBox       parser.BoundingBox `json:"bbox"`
	Type       parser.ObjectKind  `json:"type"`
	Section    string             `json:"section"`
	Title      string             `json:"title"`
	Similarity float32            `json:"similarity"`
}

// Retriever orchestrates intent classification, query embedding, index
// search, filtering and best-hit selection. It is read-mostly and safe for
// concurrent callers.
type Retriever struct {
	embedder embeddings.Embedder
	index    Searcher
	topK     int
}

// New builds a Retriever; k below 1 falls back to 5.
func New(embedder embeddings.Embedder, index Searcher, k int) *Retriever {
	if k < 1 {
		k = defaultTopK
	}
	return &Retriever{embedder: embedder, index: index, topK: k}
}

// Retrieve answers a query with the single best matching fragment. A nil
// result with a nil error means no match, which is a valid outcome, not a
// failure; errors are reserved for the query pipeline itself failing (for
// example the embedding model being unreachable).
func (r *Retriever) Retrieve(ctx context.Context, query string) (*Result, error) {
	intent := classify.DetectIntent(query)

	vectors, err := r.embedder.Embed(ctx, []string{query})
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}
	if len(vectors) != 1 {
		return nil, fmt.Errorf("%w: got %d vectors for one query", embeddings.ErrEmbedding, len(vectors))
	}

	candidates, err := r.index.Search(ctx, vectors[0], r.topK)
	if err != nil {
		// A temporarily unreachable index looks like "no matches" to the
		// caller; it must not take down the query path.
		log.Printf("retriever: index search degraded to empty: %v", err)
		candidates = nil
	}

	filtered := Filter(candidates, intent)
	if len(filtered) == 0 {
		return nil, nil
	}

	best := filtered[0]
	return &Result{
		Intent:     intent,
		Content:    best.Content,
		Slide:      best.Metadata.Slide,
		BBox:       best.Metadata.BBox,
		Type:       best.Metadata.Type,
		Section:    best.Metadata.Section,
		Title:      best.Metadata.Title,
		Similarity: best.Similarity,
	}, nil
}
