package parser

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
	"path"
	"strings"
)

// ParseDeck extracts one Slide per deck slide from a PPTX archive.
// PPTX is a ZIP of XML parts: ppt/presentation.xml declares the slide size
// and slide order, ppt/_rels/presentation.xml.rels maps relationship ids to
// slide parts, and each ppt/slides/slideN.xml holds the shape tree.
func ParseDeck(r io.ReaderAt, size int64) ([]Slide, error) {
	zr, err := zip.NewReader(r, size)
	if err != nil {
		return nil, fmt.Errorf("%w: open pptx archive: %w", ErrParse, err)
	}

	pres, err := readPresentation(zr)
	if err != nil {
		return nil, err
	}
	if pres.SlideSize.CX <= 0 || pres.SlideSize.CY <= 0 {
		return nil, fmt.Errorf("%w: presentation has no slide size", ErrParse)
	}

	rels, err := readRelationships(zr)
	if err != nil {
		return nil, err
	}

	var slides []Slide
	for i, ref := range pres.SlideList.Slides {
		target, ok := rels[ref.RID]
		if !ok {
			return nil, fmt.Errorf("%w: unresolved slide relationship %q", ErrParse, ref.RID)
		}
		data, err := readZipFile(zr, path.Join("ppt", target))
		if err != nil {
			return nil, err
		}
		slide, err := parseSlideXML(data, i+1, pres.SlideSize.CX, pres.SlideSize.CY)
		if err != nil {
			return nil, err
		}
		slides = append(slides, slide)
	}

	return slides, nil
}

type presentationXML struct {
	SlideSize struct {
		CX int64 `xml:"cx,attr"`
		CY int64 `xml:"cy,attr"`
	} `xml:"sldSz"`
	SlideList struct {
		Slides []struct {
			RID string `xml:"http://schemas.openxmlformats.org/officeDocument/2006/relationships id,attr"`
		} `xml:"sldId"`
	} `xml:"sldIdLst"`
}

type relationshipsXML struct {
	Relationships []struct {
		ID     string `xml:"Id,attr"`
		Target string `xml:"Target,attr"`
	} `xml:"Relationship"`
}

func readPresentation(zr *zip.Reader) (*presentationXML, error) {
	data, err := readZipFile(zr, "ppt/presentation.xml")
	if err != nil {
		return nil, err
	}
	var pres presentationXML
	if err := xml.Unmarshal(data, &pres); err != nil {
		return nil, fmt.Errorf("%w: decode presentation.xml: %w", ErrParse, err)
	}
	return &pres, nil
}

func readRelationships(zr *zip.Reader) (map[string]string, error) {
	data, err := readZipFile(zr, "ppt/_rels/presentation.xml.rels")
	if err != nil {
		return nil, err
	}
	var rels relationshipsXML
	if err := xml.Unmarshal(data, &rels); err != nil {
		return nil, fmt.Errorf("%w: decode presentation rels: %w", ErrParse, err)
	}
	byID := make(map[string]string, len(rels.Relationships))
	for _, rel := range rels.Relationships {
		byID[rel.ID] = rel.Target
	}
	return byID, nil
}

func readZipFile(zr *zip.Reader, name string) ([]byte, error) {
	for _, f := range zr.File {
		if f.Name != name {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			return nil, fmt.Errorf("%w: open %s: %w", ErrParse, name, err)
		}
		data, err := io.ReadAll(rc)
		rc.Close()
		if err != nil {
			return nil, fmt.Errorf("%w: read %s: %w", ErrParse, name, err)
		}
		return data, nil
	}
	return nil, fmt.Errorf("%w: missing archive part %s", ErrParse, name)
}

// Shape tree XML. Tags match on local names, so p:sp, p:pic and
// p:graphicFrame decode without namespace plumbing.

type xfrmXML struct {
	Off struct {
		X int64 `xml:"x,attr"`
		Y int64 `xml:"y,attr"`
	} `xml:"off"`
	Ext struct {
		CX int64 `xml:"cx,attr"`
		CY int64 `xml:"cy,attr"`
	} `xml:"ext"`
}

type spPrXML struct {
	Xfrm *xfrmXML `xml:"xfrm"`
}

type txBodyXML struct {
	Paragraphs []struct {
		Runs []struct {
			Text string `xml:"t"`
		} `xml:"r"`
	} `xml:"p"`
}

// text joins all runs of all paragraphs, one line per paragraph.
func (b *txBodyXML) text() string {
	var lines []string
	for _, p := range b.Paragraphs {
		var line strings.Builder
		for _, r := range p.Runs {
			line.WriteString(r.Text)
		}
		lines = append(lines, line.String())
	}
	return strings.Join(lines, "\n")
}

type shapeXML struct {
	SpPr   spPrXML    `xml:"spPr"`
	TxBody *txBodyXML `xml:"txBody"`
}

type picXML struct {
	SpPr spPrXML `xml:"spPr"`
}

type graphicFrameXML struct {
	Xfrm  *xfrmXML  `xml:"xfrm"`
	Table *tableXML `xml:"graphic>graphicData>tbl"`
}

type tableXML struct {
	Rows []struct {
		Cells []struct {
			TxBody txBodyXML `xml:"txBody"`
		} `xml:"tc"`
	} `xml:"tr"`
}

// parseSlideXML walks the slide's shape tree in document order, classifying
// each shape as text, image or table. Shapes with no extractable content are
// dropped. The title is resolved only after the full scan.
func parseSlideXML(data []byte, seq int, slideCX, slideCY int64) (Slide, error) {
	slide := Slide{SequenceID: seq}
	var candidates []titleCandidate

	dec := xml.NewDecoder(bytes.NewReader(data))
	shapeIdx := -1
	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return Slide{}, fmt.Errorf("%w: decode slide %d: %w", ErrParse, seq, err)
		}
		se, ok := tok.(xml.StartElement)
		if !ok {
			continue
		}

		switch se.Name.Local {
		case "sp":
			shapeIdx++
			var sp shapeXML
			if err := dec.DecodeElement(&sp, &se); err != nil {
				return Slide{}, fmt.Errorf("%w: decode slide %d shape: %w", ErrParse, seq, err)
			}
			if sp.TxBody == nil {
				continue
			}
			text, ok := cleanText(sp.TxBody.text())
			if !ok {
				continue
			}
			slide.Objects = append(slide.Objects, Object{
				ID:   objectID(shapeIdx),
				Kind: KindText,
				Text: text,
				BBox: normalizeBBox(sp.SpPr.Xfrm, slideCX, slideCY),
			})
			candidates = append(candidates, titleCandidate{text: text, top: shapeTop(sp.SpPr.Xfrm)})

		case "pic":
			shapeIdx++
			var pic picXML
			if err := dec.DecodeElement(&pic, &se); err != nil {
				return Slide{}, fmt.Errorf("%w: decode slide %d picture: %w", ErrParse, seq, err)
			}
			slide.Objects = append(slide.Objects, Object{
				ID:   objectID(shapeIdx),
				Kind: KindImage,
				BBox: normalizeBBox(pic.SpPr.Xfrm, slideCX, slideCY),
			})

		case "graphicFrame":
			shapeIdx++
			var frame graphicFrameXML
			if err := dec.DecodeElement(&frame, &se); err != nil {
				return Slide{}, fmt.Errorf("%w: decode slide %d frame: %w", ErrParse, seq, err)
			}
			if frame.Table == nil {
				continue
			}
			text, ok := cleanText(tableText(frame.Table))
			if !ok {
				continue
			}
			slide.Objects = append(slide.Objects, Object{
				ID:   objectID(shapeIdx),
				Kind: KindTable,
				Text: text,
				BBox: normalizeBBox(frame.Xfrm, slideCX, slideCY),
			})
		}
	}

	slide.Title = detectTitle(candidates)
	return slide, nil
}

func objectID(idx int) string {
	return fmt.Sprintf("obj_%d", idx)
}

// tableText joins the non-empty cells of each row with " | " and rows with
// newlines. Rows whose cells are all empty are dropped.
func tableText(tbl *tableXML) string {
	var rows []string
	for _, row := range tbl.Rows {
		var cells []string
		for _, cell := range row.Cells {
			if text, ok := cleanText(cell.TxBody.text()); ok {
				cells = append(cells, text)
			}
		}
		if len(cells) > 0 {
			rows = append(rows, strings.Join(cells, " | "))
		}
	}
	return strings.Join(rows, "\n")
}

// normalizeBBox divides the shape's EMU geometry by the slide's own size.
// Shapes that inherit their geometry from a layout carry no xfrm and get a
// zero box.
func normalizeBBox(xfrm *xfrmXML, slideCX, slideCY int64) BoundingBox {
	if xfrm == nil {
		return BoundingBox{}
	}
	return BoundingBox{
		X: float64(xfrm.Off.X) / float64(slideCX),
		Y: float64(xfrm.Off.Y) / float64(slideCY),
		W: float64(xfrm.Ext.CX) / float64(slideCX),
		H: float64(xfrm.Ext.CY) / float64(slideCY),
	}
}

func shapeTop(xfrm *xfrmXML) int64 {
	if xfrm == nil {
		return 0
	}
	return xfrm.Off.Y
}
