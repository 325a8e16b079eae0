package ingest

import (
	"strings"
	"testing"

	"github.com/oratohq/orato/internal/vectordb"
)

func TestChunkShortDocumentUntouched(t *testing.T) {
	c := NewChunker(300, 50)
	docs := []Document{{Content: "short content", Metadata: vectordb.Metadata{Slide: 1}}}

	chunks := c.Chunk(docs)
	if len(chunks) != 1 || chunks[0].Content != "short content" {
		t.Fatalf("chunks = %+v", chunks)
	}
}

func TestChunkSizeAndReconstruction(t *testing.T) {
	// Word-boundary text long enough for several chunks.
	content := strings.TrimSpace(strings.Repeat("the quick brown fox jumps over the lazy dog ", 30))

	c := NewChunker(300, 50)
	chunks := c.Chunk([]Document{{Content: content}})

	if len(chunks) < 3 {
		t.Fatalf("got %d chunks, want several", len(chunks))
	}
	for i, chunk := range chunks {
		if len(chunk.Content) > 300 {
			t.Errorf("chunk %d has length %d > 300", i, len(chunk.Content))
		}
	}

	// Collapsing the 50-byte overlap reconstructs the original exactly.
	rebuilt := chunks[0].Content
	for _, chunk := range chunks[1:] {
		rebuilt += chunk.Content[50:]
	}
	if rebuilt != content {
		t.Errorf("reconstruction mismatch:\n got %q\nwant %q", rebuilt, content)
	}
}

func TestChunkPrefersParagraphBreaks(t *testing.T) {
	para := strings.Repeat("x", 200)
	content := para + "\n\n" + strings.Repeat("y", 200)

	c := NewChunker(300, 50)
	chunks := c.Chunk([]Document{{Content: content}})

	if len(chunks) != 2 {
		t.Fatalf("got %d chunks, want 2", len(chunks))
	}
	if chunks[0].Content != para+"\n\n" {
		t.Errorf("chunk 0 = %q, want the first paragraph", chunks[0].Content)
	}
}

func TestChunkMetadataIsolated(t *testing.T) {
	content := strings.Repeat("word ", 200)
	c := NewChunker(300, 50)

	chunks := c.Chunk([]Document{{
		Content:  content,
		Metadata: vectordb.Metadata{Slide: 3, Title: "Original", Section: "general"},
	}})
	if len(chunks) < 2 {
		t.Fatalf("got %d chunks, want at least 2", len(chunks))
	}

	// Mutating one chunk's metadata must not leak into its siblings.
	chunks[0].Metadata.Title = "Mutated"
	chunks[0].Metadata.Slide = 99

	if chunks[1].Metadata.Title != "Original" || chunks[1].Metadata.Slide != 3 {
		t.Errorf("sibling metadata changed: %+v", chunks[1].Metadata)
	}
}

func TestChunkHardCutWithoutBoundaries(t *testing.T) {
	content := strings.Repeat("a", 700)
	c := NewChunker(300, 50)

	chunks := c.Chunk([]Document{{Content: content}})
	for i, chunk := range chunks {
		if len(chunk.Content) > 300 {
			t.Errorf("chunk %d has length %d > 300", i, len(chunk.Content))
		}
	}

	rebuilt := chunks[0].Content
	for _, chunk := range chunks[1:] {
		rebuilt += chunk.Content[50:]
	}
	if rebuilt != content {
		t.Errorf("reconstruction mismatch for boundary-free content")
	}
}

func TestNewChunkerClampsOverlap(t *testing.T) {
	c := NewChunker(100, 200)
	if c.overlap >= c.size {
		t.Errorf("overlap %d not clamped below size %d", c.overlap, c.size)
	}
}
