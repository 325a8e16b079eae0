// Package vectordb is the durable nearest-neighbor store for embedded
// slide fragments: vectors plus the metadata needed to locate and display
// the fragment on its source slide.
package vectordb

import (
	"strconv"

	"github.com/oratohq/orato/internal/parser"
)

// Record is the unit persisted in the index. IDs are derived from the
// document, slide, object and chunk they came from, so re-ingesting a file
// overwrites its records instead of duplicating them.
type Record struct {
	ID       string
	Vector   []float32
	Content  string
	Metadata Metadata
}

// Metadata locates a record's content in its source document. It is a
// closed schema rather than a free-form map so the assembler and the result
// filter operate over statically checked fields.
type Metadata struct {
	DocID   string
	Slide   int
	Title   string
	Section string
	Type    parser.ObjectKind
	Object  string
	BBox    parser.BoundingBox
}

// SearchResult pairs a record with its similarity to the query vector.
type SearchResult struct {
	Record
	Similarity float32
}

// toMap flattens Metadata for stores that persist string key-value pairs.
func (m Metadata) toMap() map[string]string {
	return map[string]string{
		"doc_id":  m.DocID,
		"slide":   strconv.Itoa(m.Slide),
		"title":   m.Title,
		"section": m.Section,
		"type":    string(m.Type),
		"object":  m.Object,
		"bbox_x":  formatCoord(m.BBox.X),
		"bbox_y":  formatCoord(m.BBox.Y),
		"bbox_w":  formatCoord(m.BBox.W),
		"bbox_h":  formatCoord(m.BBox.H),
	}
}

func metadataFromMap(m map[string]string) Metadata {
	slide, _ := strconv.Atoi(m["slide"])
	return Metadata{
		DocID:   m["doc_id"],
		Slide:   slide,
		Title:   m["title"],
		Section: m["section"],
		Type:    parser.ObjectKind(m["type"]),
		Object:  m["object"],
		BBox: parser.BoundingBox{
			X: parseCoord(m["bbox_x"]),
			Y: parseCoord(m["bbox_y"]),
			W: parseCoord(m["bbox_w"]),
			H: parseCoord(m["bbox_h"]),
		},
	}
}

func formatCoord(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func parseCoord(s string) float64 {
	v, _ := strconv.ParseFloat(s, 64)
	return v
}
