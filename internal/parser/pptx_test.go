package parser

import (
	"archive/zip"
	"bytes"
	"errors"
	"fmt"
	"strings"
	"testing"
)

// deckBuilder assembles a minimal but well-formed PPTX archive in memory.
type deckBuilder struct {
	slides []string
}

func (b *deckBuilder) addSlide(shapeTree string) {
	b.slides = append(b.slides, fmt.Sprintf(`<?xml version="1.0"?>
<p:sld xmlns:p="http://schemas.openxmlformats.org/presentationml/2006/main"
       xmlns:a="http://schemas.openxmlformats.org/drawingml/2006/main">
  <p:cSld><p:spTree>%s</p:spTree></p:cSld>
</p:sld>`, shapeTree))
}

func (b *deckBuilder) build(t *testing.T) *bytes.Reader {
	t.Helper()

	var sldIDs, rels strings.Builder
	for i := range b.slides {
		fmt.Fprintf(&sldIDs, `<p:sldId id="%d" r:id="rId%d"/>`, 256+i, i+2)
		fmt.Fprintf(&rels, `<Relationship Id="rId%d" Type="http://schemas.openxmlformats.org/officeDocument/2006/relationships/slide" Target="slides/slide%d.xml"/>`, i+2, i+1)
	}

	files := map[string]string{
		"ppt/presentation.xml": fmt.Sprintf(`<?xml version="1.0"?>
<p:presentation xmlns:p="http://schemas.openxmlformats.org/presentationml/2006/main"
                xmlns:r="http://schemas.openxmlformats.org/officeDocument/2006/relationships">
  <p:sldIdLst>%s</p:sldIdLst>
  <p:sldSz cx="9144000" cy="6858000"/>
</p:presentation>`, sldIDs.String()),
		"ppt/_rels/presentation.xml.rels": fmt.Sprintf(`<?xml version="1.0"?>
<Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships">%s</Relationships>`, rels.String()),
	}
	for i, slide := range b.slides {
		files[fmt.Sprintf("ppt/slides/slide%d.xml", i+1)] = slide
	}

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for name, content := range files {
		w, err := zw.Create(name)
		if err != nil {
			t.Fatalf("create %s: %v", name, err)
		}
		if _, err := w.Write([]byte(content)); err != nil {
			t.Fatalf("write %s: %v", name, err)
		}
	}
	if err := zw.Close(); err != nil {
		t.Fatalf("close zip: %v", err)
	}
	return bytes.NewReader(buf.Bytes())
}

func textShape(x, y, cx, cy int64, text string) string {
	return fmt.Sprintf(`<p:sp>
  <p:spPr><a:xfrm><a:off x="%d" y="%d"/><a:ext cx="%d" cy="%d"/></a:xfrm></p:spPr>
  <p:txBody><a:p><a:r><a:t>%s</a:t></a:r></a:p></p:txBody>
</p:sp>`, x, y, cx, cy, text)
}

func picShape(x, y, cx, cy int64) string {
	return fmt.Sprintf(`<p:pic>
  <p:spPr><a:xfrm><a:off x="%d" y="%d"/><a:ext cx="%d" cy="%d"/></a:xfrm></p:spPr>
</p:pic>`, x, y, cx, cy)
}

func tableShape(rows [][]string) string {
	var tbl strings.Builder
	for _, row := range rows {
		tbl.WriteString("<a:tr>")
		for _, cell := range row {
			fmt.Fprintf(&tbl, `<a:tc><a:txBody><a:p><a:r><a:t>%s</a:t></a:r></a:p></a:txBody></a:tc>`, cell)
		}
		tbl.WriteString("</a:tr>")
	}
	return fmt.Sprintf(`<p:graphicFrame>
  <p:xfrm><a:off x="0" y="0"/><a:ext cx="9144000" cy="6858000"/></p:xfrm>
  <a:graphic><a:graphicData><a:tbl>%s</a:tbl></a:graphicData></a:graphic>
</p:graphicFrame>`, tbl.String())
}

func TestParseDeck(t *testing.T) {
	b := &deckBuilder{}
	b.addSlide(
		textShape(0, 0, 9144000, 457200, "Intro") +
			textShape(0, 914400, 9144000, 457200, "Problem: network congestion") +
			picShape(4572000, 3429000, 4572000, 3429000),
	)
	b.addSlide(
		textShape(0, 0, 9144000, 457200, "Training") +
			textShape(0, 914400, 9144000, 457200, "gradient descent step"),
	)

	r := b.build(t)
	slides, err := ParseDeck(r, r.Size())
	if err != nil {
		t.Fatalf("ParseDeck: %v", err)
	}

	if len(slides) != 2 {
		t.Fatalf("got %d slides, want 2", len(slides))
	}

	s1 := slides[0]
	if s1.SequenceID != 1 {
		t.Errorf("slide 1 sequence id = %d", s1.SequenceID)
	}
	if s1.Title != "Intro" {
		t.Errorf("slide 1 title = %q, want Intro", s1.Title)
	}
	if len(s1.Objects) != 3 {
		t.Fatalf("slide 1 has %d objects, want 3", len(s1.Objects))
	}
	if s1.Objects[0].Kind != KindText || s1.Objects[0].Text != "Intro" {
		t.Errorf("object 0 = %+v", s1.Objects[0])
	}
	if s1.Objects[2].Kind != KindImage {
		t.Errorf("object 2 kind = %q, want image", s1.Objects[2].Kind)
	}
	wantBox := BoundingBox{X: 0.5, Y: 0.5, W: 0.5, H: 0.5}
	if s1.Objects[2].BBox != wantBox {
		t.Errorf("image bbox = %+v, want %+v", s1.Objects[2].BBox, wantBox)
	}

	s2 := slides[1]
	if s2.SequenceID != 2 || s2.Title != "Training" {
		t.Errorf("slide 2 = seq %d title %q", s2.SequenceID, s2.Title)
	}
	if len(s2.Objects) != 2 || s2.Objects[1].Text != "gradient descent step" {
		t.Errorf("slide 2 objects = %+v", s2.Objects)
	}
}

func TestParseDeckTableText(t *testing.T) {
	b := &deckBuilder{}
	b.addSlide(tableShape([][]string{
		{"Metric", "Value"},
		{"Latency", "12ms", ""},
		{"", "", ""},
	}))

	r := b.build(t)
	slides, err := ParseDeck(r, r.Size())
	if err != nil {
		t.Fatalf("ParseDeck: %v", err)
	}

	if len(slides) != 1 || len(slides[0].Objects) != 1 {
		t.Fatalf("slides = %+v", slides)
	}
	obj := slides[0].Objects[0]
	if obj.Kind != KindTable {
		t.Fatalf("kind = %q, want table", obj.Kind)
	}
	// Empty cells are dropped, all-empty rows are dropped.
	want := "Metric | Value\nLatency | 12ms"
	if obj.Text != want {
		t.Errorf("table text = %q, want %q", obj.Text, want)
	}
}

func TestParseDeckDropsEmptyShapes(t *testing.T) {
	b := &deckBuilder{}
	b.addSlide(textShape(0, 0, 9144000, 457200, "   ") + // whitespace only
		`<p:sp><p:spPr/></p:sp>`) // no text body at all

	r := b.build(t)
	slides, err := ParseDeck(r, r.Size())
	if err != nil {
		t.Fatalf("ParseDeck: %v", err)
	}
	if len(slides[0].Objects) != 0 {
		t.Errorf("objects = %+v, want none", slides[0].Objects)
	}
	if slides[0].Title != "" {
		t.Errorf("title = %q, want empty", slides[0].Title)
	}
}

func TestParseDeckCorrupt(t *testing.T) {
	data := []byte("this is not a zip archive")
	_, err := ParseDeck(bytes.NewReader(data), int64(len(data)))
	if !errors.Is(err, ErrParse) {
		t.Fatalf("error = %v, want ErrParse", err)
	}
}
