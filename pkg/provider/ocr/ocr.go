// Package ocr defines the Provider interface for optical character
// recognition backends.
//
// An OCR provider wraps a document analysis service (e.g., Azure Document
// Intelligence) and presents a uniform batch interface: submit a binary
// document or image, get back the recognised text lines per page in reading
// order. Implementations must be safe for concurrent use.
package ocr

import (
	"context"
	"io"
)

// Line is a single recognised text line.
type Line struct {
	// Content is the recognised text of the line.
	Content string
}

// Page holds the recognised lines of one document page in reading order.
type Page struct {
	// Number is the 1-based page number as reported by the backend.
	Number int

	// Lines are the recognised text lines in reading order.
	Lines []Line
}

// Provider is the abstraction over any OCR backend.
//
// Implementations must be safe for concurrent use; multiple documents may be
// analysed in parallel.
type Provider interface {
	// Read submits the document bytes from r for full-text recognition and
	// returns the recognised pages in document order. Supported payloads are
	// PDF and common raster image formats; consult the implementation.
	//
	// Read blocks until the backend completes the analysis or ctx is
	// cancelled. A document in which no text was recognised yields pages with
	// empty Lines (or no pages at all) and a nil error — absence of text is
	// not a failure.
	Read(ctx context.Context, r io.Reader) ([]Page, error)
}

// Text concatenates all recognised lines of pages, each followed by a line
// break, preserving page and in-page line order.
func Text(pages []Page) string {
	var b []byte
	for _, p := range pages {
		for _, l := range p.Lines {
			b = append(b, l.Content...)
			b = append(b, '\n')
		}
	}
	return string(b)
}
