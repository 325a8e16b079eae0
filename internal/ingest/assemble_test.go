package ingest

import (
	"testing"

	"github.com/oratohq/orato/internal/parser"
)

func sampleSlides() []parser.Slide {
	return []parser.Slide{
		{
			SequenceID: 1,
			Title:      "Intro",
			Objects: []parser.Object{
				{ID: "obj_0", Kind: parser.KindText, Text: "Problem: network congestion", BBox: parser.BoundingBox{X: 0.1, Y: 0.2, W: 0.5, H: 0.1}},
				{ID: "obj_1", Kind: parser.KindImage, BBox: parser.BoundingBox{X: 0.5, Y: 0.5, W: 0.5, H: 0.5}},
				{ID: "obj_2", Kind: parser.KindTable, Text: "a | b\nc | d"},
			},
		},
		{
			SequenceID: 2,
			// No title: downstream label is synthetic.
			Objects: []parser.Object{
				{ID: "obj_0", Kind: parser.KindText, Text: "gradient descent step"},
			},
		},
	}
}

func TestAssembleTextAndImage(t *testing.T) {
	docs := Assembler{}.Assemble(sampleSlides())

	// Tables are skipped by default: two text docs plus one image doc.
	if len(docs) != 3 {
		t.Fatalf("got %d documents, want 3", len(docs))
	}

	text := docs[0]
	if text.Content != "Intro\nProblem: network congestion" {
		t.Errorf("text content = %q", text.Content)
	}
	if text.Metadata.Section != "problem" {
		t.Errorf("text section = %q, want problem", text.Metadata.Section)
	}
	if text.Metadata.Type != parser.KindText || text.Metadata.Slide != 1 {
		t.Errorf("text metadata = %+v", text.Metadata)
	}
	if text.Metadata.BBox != (parser.BoundingBox{X: 0.1, Y: 0.2, W: 0.5, H: 0.1}) {
		t.Errorf("text bbox = %+v", text.Metadata.BBox)
	}

	image := docs[1]
	if image.Content != "Intro diagram" {
		t.Errorf("image content = %q", image.Content)
	}
	// Image documents bypass the section classifier.
	if image.Metadata.Section != "image" {
		t.Errorf("image section = %q, want image", image.Metadata.Section)
	}
	if image.Metadata.Type != parser.KindImage {
		t.Errorf("image type = %q", image.Metadata.Type)
	}

	synthetic := docs[2]
	if synthetic.Metadata.Title != "Slide 2" {
		t.Errorf("fallback title = %q, want Slide 2", synthetic.Metadata.Title)
	}
	if synthetic.Content != "Slide 2\ngradient descent step" {
		t.Errorf("content = %q", synthetic.Content)
	}
}

func TestAssembleIncludeTables(t *testing.T) {
	docs := Assembler{IncludeTables: true}.Assemble(sampleSlides())

	if len(docs) != 4 {
		t.Fatalf("got %d documents, want 4", len(docs))
	}
	table := docs[2]
	if table.Metadata.Type != parser.KindTable {
		t.Fatalf("doc 2 type = %q, want table", table.Metadata.Type)
	}
	if table.Content != "Intro\na | b\nc | d" {
		t.Errorf("table content = %q", table.Content)
	}
	if table.Metadata.Section != "general" {
		t.Errorf("table section = %q, want general", table.Metadata.Section)
	}
}

func TestAssembleSkipsEmptyObjects(t *testing.T) {
	slides := []parser.Slide{{
		SequenceID: 1,
		Title:      "T",
		Objects: []parser.Object{
			{ID: "obj_0", Kind: parser.KindText, Text: ""},
			{ID: "obj_1", Kind: "video"},
		},
	}}

	docs := Assembler{}.Assemble(slides)
	if len(docs) != 0 {
		t.Errorf("docs = %+v, want none", docs)
	}
}
