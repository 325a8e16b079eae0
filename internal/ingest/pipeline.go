package ingest

import (
	"context"
	"fmt"
	"io"
	"path/filepath"

	"github.com/oratohq/orato/internal/embeddings"
	"github.com/oratohq/orato/internal/parser"
	"github.com/oratohq/orato/internal/vectordb"
)

// Stats summarizes one ingestion run.
type Stats struct {
	Slides    int
	Documents int
	Chunks    int
}

// Pipeline runs the linear ingestion flow for one file: parse, assemble,
// chunk, embed, index. A Pipeline is safe for concurrent use across files;
// the store serializes collection writes internally.
type Pipeline struct {
	embedder  embeddings.Embedder
	store     vectordb.Store
	assembler Assembler
	chunker   Chunker
}

// NewPipeline wires an ingestion pipeline from its collaborators.
func NewPipeline(embedder embeddings.Embedder, store vectordb.Store, assembler Assembler, chunker Chunker) *Pipeline {
	return &Pipeline{
		embedder:  embedder,
		store:     store,
		assembler: assembler,
		chunker:   chunker,
	}
}

// IngestFile ingests the file at path under the given document id.
// Ingesting the same path with the same id again overwrites the earlier
// records. The durable index state is only advanced after the whole file
// has been embedded and upserted, so cancellation mid-file leaves
// previously committed documents intact.
func (p *Pipeline) IngestFile(ctx context.Context, path, docID string) (*Stats, error) {
	slides, err := parser.ParseFile(path)
	if err != nil {
		return nil, err
	}
	return p.ingest(ctx, slides, docID)
}

// IngestReader ingests in-memory file content, dispatching on the file
// extension the same way IngestFile does. This is the entry point for
// transport layers that receive raw bytes.
func (p *Pipeline) IngestReader(ctx context.Context, r io.ReaderAt, size int64, name, docID string) (*Stats, error) {
	slides, err := parser.Parse(r, size, filepath.Ext(name))
	if err != nil {
		return nil, err
	}
	return p.ingest(ctx, slides, docID)
}

func (p *Pipeline) ingest(ctx context.Context, slides []parser.Slide, docID string) (*Stats, error) {
	docs := p.assembler.Assemble(slides)
	chunks := p.chunker.Chunk(docs)

	stats := &Stats{
		Slides:    len(slides),
		Documents: len(docs),
		Chunks:    len(chunks),
	}
	if len(chunks) == 0 {
		return stats, nil
	}

	texts := make([]string, len(chunks))
	for i, chunk := range chunks {
		texts[i] = chunk.Content
	}

	vectors, err := p.embedder.Embed(ctx, texts)
	if err != nil {
		return nil, fmt.Errorf("embed %d chunks: %w", len(chunks), err)
	}
	if len(vectors) != len(chunks) {
		return nil, fmt.Errorf("%w: got %d vectors for %d chunks", embeddings.ErrEmbedding, len(vectors), len(chunks))
	}

	records := make([]vectordb.Record, len(chunks))
	ordinal := make(map[string]int, len(chunks))
	for i, chunk := range chunks {
		meta := chunk.Metadata
		meta.DocID = docID

		key := fmt.Sprintf("%s:s%d:%s", docID, meta.Slide, meta.Object)
		n := ordinal[key]
		ordinal[key] = n + 1

		records[i] = vectordb.Record{
			ID:       fmt.Sprintf("%s:c%d", key, n),
			Vector:   vectors[i],
			Content:  chunk.Content,
			Metadata: meta,
		}
	}

	if err := p.store.Upsert(ctx, records); err != nil {
		return nil, err
	}
	if err := p.store.Persist(ctx); err != nil {
		return nil, err
	}

	return stats, nil
}
