// Package parser extracts typed, positioned objects from slide decks and
// paginated documents. Each slide or page becomes one Slide record holding
// the objects found on it and a detected title.
package parser

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// Sentinel errors for the two ways an input can be rejected. Callers check
// them with errors.Is; everything wrapped beneath carries the detail.
var (
	// ErrUnsupportedFormat is returned for file extensions the parser does
	// not understand.
	ErrUnsupportedFormat = errors.New("unsupported file format")

	// ErrParse is returned when a supported file cannot be read or decoded.
	ErrParse = errors.New("parse failure")
)

// ObjectKind categorizes a parsed object.
type ObjectKind string

const (
	KindText  ObjectKind = "text"
	KindImage ObjectKind = "image"
	KindTable ObjectKind = "table"
)

// BoundingBox locates an object within its slide or page. All four values
// are normalized to [0,1] relative to the container's own width and height.
type BoundingBox struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	W float64 `json:"w"`
	H float64 `json:"h"`
}

// Object is one extracted shape or region. Text is empty for objects with
// no extractable text (images); whitespace-only text never survives cleaning.
type Object struct {
	ID   string
	Kind ObjectKind
	Text string
	BBox BoundingBox
}

// Slide is one unit of source structure: a slide of a deck or a page of a
// paginated document, keyed by its 1-based sequence number. Title is empty
// when no candidate was found; downstream code falls back to a synthetic
// label.
type Slide struct {
	SequenceID int
	Title      string
	Objects    []Object
}

// ParseFile parses the file at path, dispatching on its extension.
func ParseFile(path string) ([]Slide, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrParse, err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrParse, err)
	}

	return Parse(f, info.Size(), filepath.Ext(path))
}

// Parse parses a source held in r, dispatching on the file extension
// (with or without the leading dot, case-insensitive).
func Parse(r io.ReaderAt, size int64, ext string) ([]Slide, error) {
	switch strings.ToLower(strings.TrimPrefix(ext, ".")) {
	case "pptx":
		return ParseDeck(r, size)
	case "pdf":
		return ParsePDF(r, size)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, ext)
	}
}

// cleanText strips vertical-tab control characters and surrounding
// whitespace. The second return value reports whether any text remains, so
// whitespace-only input is never mistaken for content.
func cleanText(s string) (string, bool) {
	s = strings.ReplaceAll(s, "\x0b", " ")
	s = strings.TrimSpace(s)
	return s, s != ""
}

// titleCandidate is a text object considered for the slide title, with its
// raw vertical offset in source units.
type titleCandidate struct {
	text string
	top  int64
}

// detectTitle picks the title among a slide's text objects: the topmost
// candidate wins, ties broken by longer text. Runs once after the full
// object scan of the slide.
func detectTitle(candidates []titleCandidate) string {
	if len(candidates) == 0 {
		return ""
	}
	sort.SliceStable(candidates, func(i, j int) bool {
		if candidates[i].top != candidates[j].top {
			return candidates[i].top < candidates[j].top
		}
		return len(candidates[i].text) > len(candidates[j].text)
	})
	return candidates[0].text
}
