// Package extract is the decode boundary of pdfmath: it turns PDF bytes into
// per-page sequences of positioned text fragments. The concrete
// implementation sits on top of the pdfkit IR pipeline; consumers only see
// the Document/Page interfaces so tests and alternative decoders can slot in.
package extract

import (
	"context"
	"errors"
)

// Fragment is one run of text reported at a vertical position on a page.
// Fragments are produced in extraction order, which is normally
// left-to-right, top-to-bottom but is not corrected when the document's
// content stream says otherwise.
type Fragment struct {
	Text      string
	BaselineY float64
}

// Page gives access to the positioned fragments of a single page.
type Page interface {
	// Fragments extracts the page's text runs in content-stream order.
	Fragments(ctx context.Context) ([]Fragment, error)
}

// Document is an open, decoded document handle. Page indexes are zero-based;
// user-facing page numbers are assigned downstream.
type Document interface {
	PageCount() int
	Page(index int) (Page, error)
	// Close releases the handle. It must be called on every exit path once
	// the document has been opened.
	Close() error
}

// ErrClosed is returned when a Document is used after Close.
var ErrClosed = errors.New("document is closed")

// ErrPageOutOfRange is returned for page indexes outside [0, PageCount).
var ErrPageOutOfRange = errors.New("page index out of range")
