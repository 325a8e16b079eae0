// Package ingest turns parsed slides into embedded, indexed records: it
// assembles documents from parsed objects, chunks them to embedding size,
// embeds the chunks in batches and writes them to the vector index.
package ingest

import (
	"fmt"

	"github.com/oratohq/orato/internal/classify"
	"github.com/oratohq/orato/internal/parser"
	"github.com/oratohq/orato/internal/vectordb"
)

// Document is one assembled unit of searchable content before chunking and
// embedding. Chunks share its shape; their metadata is an independent copy.
type Document struct {
	Content  string
	Metadata vectordb.Metadata
}

// Assembler converts slide records into documents. Tables are parsed but
// only become documents when IncludeTables is set; by default they are
// considered non-searchable.
type Assembler struct {
	IncludeTables bool
}

// Assemble produces one document per convertible object. Text objects carry
// the slide title as a content prefix and a classified section; images get
// fixed "<title> diagram" content with the fixed section label "image".
// Objects with no content are skipped.
func (a Assembler) Assemble(slides []parser.Slide) []Document {
	var docs []Document

	for _, slide := range slides {
		title := slide.Title
		if title == "" {
			title = fmt.Sprintf("Slide %d", slide.SequenceID)
		}

		for _, obj := range slide.Objects {
			meta := vectordb.Metadata{
				Slide:  slide.SequenceID,
				Title:  title,
				Type:   obj.Kind,
				Object: obj.ID,
				BBox:   obj.BBox,
			}

			switch obj.Kind {
			case parser.KindText:
				if obj.Text == "" {
					continue
				}
				meta.Section = classify.Section(obj.Text, title)
				docs = append(docs, Document{
					Content:  title + "\n" + obj.Text,
					Metadata: meta,
				})

			case parser.KindImage:
				meta.Section = classify.SectionImage
				docs = append(docs, Document{
					Content:  title + " diagram",
					Metadata: meta,
				})

			case parser.KindTable:
				if !a.IncludeTables || obj.Text == "" {
					continue
				}
				meta.Section = classify.Section(obj.Text, title)
				docs = append(docs, Document{
					Content:  title + "\n" + obj.Text,
					Metadata: meta,
				})
			}
		}
	}

	return docs
}
