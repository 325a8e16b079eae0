package ingest

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/oratohq/orato/internal/embeddings"
	"github.com/oratohq/orato/internal/parser"
	"github.com/oratohq/orato/internal/vectordb"
)

// --- Mock Embedder ---

type mockEmbedder struct {
	err   error
	calls int
}

func (m *mockEmbedder) Embed(_ context.Context, texts []string) ([][]float32, error) {
	m.calls++
	if m.err != nil {
		return nil, m.err
	}
	vectors := make([][]float32, len(texts))
	for i, text := range texts {
		vectors[i] = []float32{float32(len(text)), 1}
	}
	return vectors, nil
}

func (m *mockEmbedder) Dimensions() int { return 2 }
func (m *mockEmbedder) Name() string    { return "mock" }

// --- Mock Store ---

type mockStore struct {
	records   map[string]vectordb.Record
	upserts   int
	persists  int
	upsertErr error
}

func newMockStore() *mockStore {
	return &mockStore{records: make(map[string]vectordb.Record)}
}

func (m *mockStore) Upsert(_ context.Context, records []vectordb.Record) error {
	if m.upsertErr != nil {
		return m.upsertErr
	}
	m.upserts++
	for _, rec := range records {
		m.records[rec.ID] = rec
	}
	return nil
}

func (m *mockStore) Search(_ context.Context, _ []float32, _ int) ([]vectordb.SearchResult, error) {
	return nil, nil
}

func (m *mockStore) Count() int                      { return len(m.records) }
func (m *mockStore) Persist(_ context.Context) error { m.persists++; return nil }
func (m *mockStore) Load(_ context.Context) error    { return nil }

func testPipeline(store vectordb.Store) *Pipeline {
	return NewPipeline(&mockEmbedder{}, store, Assembler{}, NewChunker(300, 50))
}

func slidesFixture() []parser.Slide {
	return []parser.Slide{
		{SequenceID: 1, Title: "Intro", Objects: []parser.Object{
			{ID: "obj_0", Kind: parser.KindText, Text: "Problem: congestion"},
			{ID: "obj_1", Kind: parser.KindImage},
		}},
		{SequenceID: 2, Title: "Long", Objects: []parser.Object{
			{ID: "obj_0", Kind: parser.KindText, Text: strings.Repeat("gradient descent step ", 40)},
		}},
	}
}

func TestPipelineIngest(t *testing.T) {
	store := newMockStore()
	p := testPipeline(store)

	stats, err := p.ingest(context.Background(), slidesFixture(), "deck1")
	if err != nil {
		t.Fatalf("ingest: %v", err)
	}

	if stats.Slides != 2 || stats.Documents != 3 {
		t.Errorf("stats = %+v", stats)
	}
	if stats.Chunks < 4 {
		t.Errorf("chunks = %d, expected the long slide to split", stats.Chunks)
	}
	if store.upserts != 1 {
		t.Errorf("upserts = %d, want one batched upsert", store.upserts)
	}
	if store.persists != 1 {
		t.Errorf("persists = %d, want persist after the upsert", store.persists)
	}

	for id, rec := range store.records {
		if rec.Metadata.DocID != "deck1" {
			t.Errorf("record %s doc id = %q", id, rec.Metadata.DocID)
		}
		if len(rec.Vector) != 2 {
			t.Errorf("record %s vector = %v", id, rec.Vector)
		}
	}
}

// Ingesting the same content twice produces the same record IDs, so the
// second run overwrites rather than duplicates.
func TestPipelineIngestIdempotent(t *testing.T) {
	store := newMockStore()
	p := testPipeline(store)

	if _, err := p.ingest(context.Background(), slidesFixture(), "deck1"); err != nil {
		t.Fatalf("first ingest: %v", err)
	}
	first := store.Count()

	if _, err := p.ingest(context.Background(), slidesFixture(), "deck1"); err != nil {
		t.Fatalf("second ingest: %v", err)
	}
	if store.Count() != first {
		t.Errorf("count after re-ingest = %d, want %d", store.Count(), first)
	}
}

func TestPipelineEmbedFailure(t *testing.T) {
	store := newMockStore()
	embedder := &mockEmbedder{err: embeddings.ErrEmbedding}
	p := NewPipeline(embedder, store, Assembler{}, NewChunker(300, 50))

	_, err := p.ingest(context.Background(), slidesFixture(), "deck1")
	if !errors.Is(err, embeddings.ErrEmbedding) {
		t.Fatalf("error = %v, want ErrEmbedding", err)
	}
	// Nothing may reach the store when embedding fails.
	if store.upserts != 0 || store.persists != 0 {
		t.Errorf("store touched after embed failure: %d upserts, %d persists", store.upserts, store.persists)
	}
}

func TestPipelineUpsertFailureSkipsPersist(t *testing.T) {
	store := newMockStore()
	store.upsertErr = vectordb.ErrIndex
	p := testPipeline(store)

	_, err := p.ingest(context.Background(), slidesFixture(), "deck1")
	if !errors.Is(err, vectordb.ErrIndex) {
		t.Fatalf("error = %v, want ErrIndex", err)
	}
	if store.persists != 0 {
		t.Errorf("persists = %d, want none after failed upsert", store.persists)
	}
}

func TestPipelineEmptyFileIsNoop(t *testing.T) {
	store := newMockStore()
	p := testPipeline(store)

	stats, err := p.ingest(context.Background(), []parser.Slide{{SequenceID: 1, Title: "Page 1"}}, "empty")
	if err != nil {
		t.Fatalf("ingest: %v", err)
	}
	if stats.Chunks != 0 || store.upserts != 0 {
		t.Errorf("stats = %+v, upserts = %d", stats, store.upserts)
	}
}
