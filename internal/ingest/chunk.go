package ingest

import (
	"strings"
	"unicode/utf8"
)

const (
	defaultChunkSize    = 300
	defaultChunkOverlap = 50
)

// breakSeparators, in preference order: paragraph, line, sentence, word.
// A chunk is cut at the last occurrence of the first separator found in its
// window, falling back to a hard character cut.
var breakSeparators = []string{"\n\n", "\n", ". ", " "}

// Chunker splits documents into bounded, overlapping fragments so embedded
// units stay within the model's effective context size.
type Chunker struct {
	size    int
	overlap int
}

// NewChunker builds a chunker with the given fragment size and overlap in
// bytes. Non-positive size or overlap fall back to the defaults; overlap is
// clamped below size.
func NewChunker(size, overlap int) Chunker {
	if size <= 0 {
		size = defaultChunkSize
	}
	if overlap < 0 {
		overlap = defaultChunkOverlap
	}
	if overlap >= size {
		overlap = size / 2
	}
	return Chunker{size: size, overlap: overlap}
}

// Chunk splits each document's content, copying the parent metadata onto
// every fragment. Metadata is a value type, so fragments of one document
// never alias each other's metadata.
func (c Chunker) Chunk(docs []Document) []Document {
	var chunked []Document
	for _, doc := range docs {
		for _, span := range c.split(doc.Content) {
			chunked = append(chunked, Document{
				Content:  span,
				Metadata: doc.Metadata,
			})
		}
	}
	return chunked
}

// split cuts content into spans of at most size bytes where consecutive
// spans share overlap bytes of trailing context (a byte more when a rune
// boundary pushes the next start back). Concatenating the spans while
// collapsing the shared overlap reproduces the content exactly.
func (c Chunker) split(content string) []string {
	if len(content) <= c.size {
		return []string{content}
	}

	var spans []string
	start := 0
	for start < len(content) {
		if len(content)-start <= c.size {
			spans = append(spans, content[start:])
			break
		}

		cut := c.findBreak(content, start)
		spans = append(spans, content[start:cut])

		next := runeStart(content, cut-c.overlap)
		if next <= start {
			// Overlap would stall the scan; advance without it.
			next = cut
		}
		start = next
	}
	return spans
}

// findBreak picks the cut position for the chunk starting at start,
// preferring the latest boundary in the second half of the window so chunks
// stay reasonably full.
func (c Chunker) findBreak(content string, start int) int {
	end := start + c.size
	window := content[start:end]

	for _, sep := range breakSeparators {
		idx := strings.LastIndex(window, sep)
		if idx >= 0 && idx+len(sep) > c.size/2 {
			return start + idx + len(sep)
		}
	}
	return runeStart(content, end)
}

// runeStart backs pos off to the nearest rune boundary at or before it.
func runeStart(s string, pos int) int {
	if pos < 0 {
		return 0
	}
	for pos > 0 && !utf8.RuneStart(s[pos]) {
		pos--
	}
	return pos
}
