package parser

import (
	"fmt"
	"io"

	"github.com/ledongthuc/pdf"
)

// ParsePDF extracts one Slide per page of a PDF. Each page yields a single
// text object spanning the whole page with a synthetic "Page N" title; a
// page with no extractable text keeps its record with no objects.
func ParsePDF(r io.ReaderAt, size int64) ([]Slide, error) {
	reader, err := pdf.NewReader(r, size)
	if err != nil {
		return nil, fmt.Errorf("%w: open pdf: %w", ErrParse, err)
	}

	total := reader.NumPage()
	slides := make([]Slide, 0, total)
	for i := 1; i <= total; i++ {
		slide := Slide{
			SequenceID: i,
			Title:      fmt.Sprintf("Page %d", i),
		}

		page := reader.Page(i)
		if !page.V.IsNull() {
			raw, err := page.GetPlainText(nil)
			if err != nil {
				// One unreadable page does not fail the document.
				raw = ""
			}
			if text, ok := cleanText(raw); ok {
				slide.Objects = append(slide.Objects, Object{
					ID:   objectID(0),
					Kind: KindText,
					Text: text,
					BBox: BoundingBox{X: 0, Y: 0, W: 1, H: 1},
				})
			}
		}

		slides = append(slides, slide)
	}

	return slides, nil
}
