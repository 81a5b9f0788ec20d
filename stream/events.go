// Package stream carries the typed progress events of a conversion run from
// the page driver to its consumer, and speaks the SSE wire format on both
// ends.
package stream

import (
	"fmt"

	"github.com/bytedance/sonic"
)

// EventType discriminates events on the wire.
type EventType string

const (
	EventProgress EventType = "progress"
	EventPage     EventType = "page"
	EventComplete EventType = "complete"
	EventError    EventType = "error"
)

// Page is one annotated page result. Number starts at 1.
type Page struct {
	Number  int    `json:"pageNumber"`
	Content string `json:"content"`
}

// Event is the tagged union flowing from driver to consumer. Exactly one
// Page event per page; the terminal event is one Complete or one Error,
// never both.
type Event interface {
	Type() EventType
}

// Progress is a human-readable status update.
type Progress struct {
	Message string
}

func (Progress) Type() EventType { return EventProgress }

// PageResult delivers one finished page.
type PageResult struct {
	Page Page
}

func (PageResult) Type() EventType { return EventPage }

// Complete terminates a successful run.
type Complete struct{}

func (Complete) Type() EventType { return EventComplete }

// Error terminates a failed run. Pages delivered before it stay valid.
type Error struct {
	Message string
}

func (Error) Type() EventType { return EventError }

// envelope is the wire form shared by all events.
type envelope struct {
	Type    EventType `json:"type"`
	Message string    `json:"message,omitempty"`
	Data    *Page     `json:"data,omitempty"`
}

// MarshalEvent encodes an event to its JSON wire form.
func MarshalEvent(ev Event) ([]byte, error) {
	env := envelope{Type: ev.Type()}
	switch e := ev.(type) {
	case Progress:
		env.Message = e.Message
	case PageResult:
		page := e.Page
		env.Data = &page
	case Error:
		env.Message = e.Message
	case Complete:
	default:
		return nil, fmt.Errorf("unknown event type %T", ev)
	}
	return sonic.Marshal(env)
}

// UnmarshalEvent decodes one JSON wire event.
func UnmarshalEvent(data []byte) (Event, error) {
	var env envelope
	if err := sonic.Unmarshal(data, &env); err != nil {
		return nil, fmt.Errorf("decode event: %w", err)
	}
	switch env.Type {
	case EventProgress:
		return Progress{Message: env.Message}, nil
	case EventPage:
		if env.Data == nil {
			return nil, fmt.Errorf("page event without data")
		}
		return PageResult{Page: *env.Data}, nil
	case EventComplete:
		return Complete{}, nil
	case EventError:
		return Error{Message: env.Message}, nil
	default:
		return nil, fmt.Errorf("unknown event type %q", env.Type)
	}
}
