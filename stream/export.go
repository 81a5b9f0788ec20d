package stream

import (
	"errors"
	"fmt"
	"strings"
)

// Collect drains an event channel into the ordered page list. Pages arrive
// in page order and are appended as-is: no reordering, no deduplication.
// Pages received before a terminal error are kept alongside the error.
func Collect(events <-chan Event) ([]Page, error) {
	var pages []Page
	for ev := range events {
		switch e := ev.(type) {
		case PageResult:
			pages = append(pages, e.Page)
		case Error:
			return pages, errors.New(e.Message)
		case Complete:
			return pages, nil
		}
	}
	return pages, errors.New("stream ended without terminal event")
}

// ExportText renders collected pages as the downloadable plain-text
// artifact: every page contributes a `=== Page <n> ===` header block.
func ExportText(pages []Page) string {
	var b strings.Builder
	for _, p := range pages {
		fmt.Fprintf(&b, "\n\n=== Page %d ===\n\n%s", p.Number, p.Content)
	}
	return b.String()
}
