package vectordb

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	chromem "github.com/philippgille/chromem-go"

	"github.com/oratohq/orato/internal/embeddings"
)

// ChromemStore implements Store using chromem-go. The collection lives in
// memory and is written to <dataDir>/<collection>.gob.gz on Persist, so a
// file either fully upserts and persists or leaves the durable state
// untouched.
type ChromemStore struct {
	mu         sync.Mutex // serializes writes and persistence
	db         *chromem.DB
	collection *chromem.Collection
	embedFunc  chromem.EmbeddingFunc
	name       string
	path       string
}

// NewChromemStore creates a store for the named collection, durably backed
// by a file under dataDir. The embedder only backs chromem's embedding
// hook; the pipeline normally supplies precomputed vectors.
func NewChromemStore(name, dataDir string, embedder embeddings.Embedder) (*ChromemStore, error) {
	ef := embeddings.ToChromemFunc(embedder)

	db := chromem.NewDB()
	col, err := db.GetOrCreateCollection(name, nil, ef)
	if err != nil {
		return nil, fmt.Errorf("%w: create collection %q: %w", ErrIndex, name, err)
	}

	return &ChromemStore{
		db:         db,
		collection: col,
		embedFunc:  ef,
		name:       name,
		path:       filepath.Join(dataDir, name+".gob.gz"),
	}, nil
}

func (s *ChromemStore) Upsert(ctx context.Context, records []Record) error {
	if len(records) == 0 {
		return nil
	}

	docs := make([]chromem.Document, len(records))
	for i, rec := range records {
		docs[i] = chromem.Document{
			ID:        rec.ID,
			Content:   rec.Content,
			Embedding: rec.Vector,
			Metadata:  rec.Metadata.toMap(),
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.collection.AddDocuments(ctx, docs, 1); err != nil {
		return fmt.Errorf("%w: upsert %d records: %w", ErrIndex, len(records), err)
	}
	return nil
}

// col reads the collection pointer under the lock; Load may swap it.
func (s *ChromemStore) col() *chromem.Collection {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.collection
}

func (s *ChromemStore) Search(ctx context.Context, vector []float32, k int) ([]SearchResult, error) {
	if k <= 0 {
		k = 5
	}

	col := s.col()

	// chromem-go requires nResults <= collection size.
	count := col.Count()
	if count == 0 {
		return nil, nil
	}
	if k > count {
		k = count
	}

	hits, err := col.QueryEmbedding(ctx, vector, k, nil, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: query: %w", ErrIndex, err)
	}

	results := make([]SearchResult, len(hits))
	for i, hit := range hits {
		results[i] = SearchResult{
			Record: Record{
				ID:       hit.ID,
				Content:  hit.Content,
				Metadata: metadataFromMap(hit.Metadata),
			},
			Similarity: hit.Similarity,
		}
	}
	return results, nil
}

func (s *ChromemStore) Count() int {
	return s.col().Count()
}

func (s *ChromemStore) Persist(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("%w: create data dir: %w", ErrIndex, err)
	}
	if err := s.db.ExportToFile(s.path, true, ""); err != nil {
		return fmt.Errorf("%w: persist to %s: %w", ErrIndex, s.path, err)
	}
	return nil
}

func (s *ChromemStore) Load(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := os.Stat(s.path); os.IsNotExist(err) {
		// Nothing persisted yet; an empty collection is a valid state.
		return nil
	}

	if err := s.db.ImportFromFile(s.path, ""); err != nil {
		return fmt.Errorf("%w: load from %s: %w", ErrIndex, s.path, err)
	}

	col := s.db.GetCollection(s.name, s.embedFunc)
	if col == nil {
		return fmt.Errorf("%w: collection %q not found after load", ErrIndex, s.name)
	}
	s.collection = col
	return nil
}
