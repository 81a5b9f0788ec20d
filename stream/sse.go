package stream

import (
	"bufio"
	"fmt"
	"io"
	"strings"
)

const ssePrefix = "data: "

// maxEventSize caps a single SSE line. Page events carry a whole page of
// annotated text, so the default bufio.Scanner 64KB token limit is far too
// small for text-dense documents.
const maxEventSize = 16 << 20

// WriteEvent frames one event as an SSE message: `data: <json>` followed by
// a blank line. Flushing is the caller's concern.
func WriteEvent(w io.Writer, ev Event) error {
	payload, err := MarshalEvent(ev)
	if err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "%s%s\n\n", ssePrefix, payload); err != nil {
		return fmt.Errorf("write event: %w", err)
	}
	return nil
}

// EventScanner decodes an SSE byte stream incrementally. Partial trailing
// lines are buffered across reads, so it works against any chunking the
// transport produces. Lines without the `data: ` prefix are skipped.
type EventScanner struct {
	s   *bufio.Scanner
	ev  Event
	err error
}

func NewEventScanner(r io.Reader) *EventScanner {
	s := bufio.NewScanner(r)
	s.Buffer(make([]byte, 0, 64*1024), maxEventSize)
	return &EventScanner{s: s}
}

// Next advances to the next event. It returns false at end of stream or on
// the first decode error; Err tells the two apart.
func (es *EventScanner) Next() bool {
	for es.s.Scan() {
		line := es.s.Text()
		if !strings.HasPrefix(line, ssePrefix) {
			continue
		}
		ev, err := UnmarshalEvent([]byte(strings.TrimPrefix(line, ssePrefix)))
		if err != nil {
			es.err = err
			return false
		}
		es.ev = ev
		return true
	}
	es.err = es.s.Err()
	return false
}

// Event returns the event Next advanced to.
func (es *EventScanner) Event() Event { return es.ev }

// Err returns the first error hit while scanning, nil on clean end of
// stream.
func (es *EventScanner) Err() error { return es.err }
