package stream

import (
	"context"
	"fmt"
	"time"

	"github.com/wudi/pdfmath/extract"
	"github.com/wudi/pdfmath/lines"
	"github.com/wudi/pdfmath/mathtex"
	"github.com/wudi/pdfmath/observability"
)

// NoFileMessage is the error event message for a run started without a
// document.
const NoFileMessage = "No file provided"

// Driver walks a decoded document page by page, reconstructs and annotates
// each page's text, and emits events in strict page order. Processing is
// sequential on purpose: later pages can be expensive to extract and
// progress has to be visible incrementally.
type Driver struct {
	logger observability.Logger
	tracer observability.Tracer
}

// DriverOption configures a Driver.
type DriverOption func(*Driver)

func WithLogger(l observability.Logger) DriverOption {
	return func(d *Driver) { d.logger = l }
}

func WithTracer(t observability.Tracer) DriverOption {
	return func(d *Driver) { d.tracer = t }
}

func NewDriver(opts ...DriverOption) *Driver {
	d := &Driver{logger: observability.NopLogger{}, tracer: observability.NopTracer()}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Stream starts processing doc and returns the event channel. The channel is
// unbuffered: a slow consumer blocks the producer instead of losing events,
// and event order always matches emission order. The channel is closed after
// the terminal event. A nil doc yields a single error event. The document is
// closed on every exit path, including cancellation.
func (d *Driver) Stream(ctx context.Context, doc extract.Document) <-chan Event {
	out := make(chan Event)
	go func() {
		defer close(out)
		d.run(ctx, doc, out)
	}()
	return out
}

// emit delivers ev unless the context is gone. Returns false when the
// consumer is gone; the caller must then stop producing.
func emit(ctx context.Context, out chan<- Event, ev Event) bool {
	select {
	case out <- ev:
		return true
	case <-ctx.Done():
		return false
	}
}

func (d *Driver) run(ctx context.Context, doc extract.Document, out chan<- Event) {
	if doc == nil {
		emit(ctx, out, Error{Message: NoFileMessage})
		return
	}
	defer doc.Close()

	ctx, span := d.tracer.StartSpan(ctx, "pdfmath.convert")
	defer span.Finish()

	if !emit(ctx, out, Progress{Message: "Loading PDF..."}) {
		return
	}

	total := doc.PageCount()
	span.SetTag("pages", total)
	d.logger.Info("conversion started", observability.Int(observability.MetricPageCount, total))

	if !emit(ctx, out, Progress{Message: fmt.Sprintf("Processing %d pages...", total)}) {
		return
	}

	for i := 0; i < total; i++ {
		if !emit(ctx, out, Progress{Message: fmt.Sprintf("Processing page %d of %d...", i+1, total)}) {
			return
		}
		page, err := d.processPage(ctx, doc, i)
		if err != nil {
			span.SetError(err)
			d.logger.Error("page failed", observability.Int("page", i+1), observability.Error("err", err))
			emit(ctx, out, Error{Message: err.Error()})
			return
		}
		if !emit(ctx, out, PageResult{Page: page}) {
			return
		}
	}

	emit(ctx, out, Complete{})
}

func (d *Driver) processPage(ctx context.Context, doc extract.Document, index int) (Page, error) {
	page, err := doc.Page(index)
	if err != nil {
		return Page{}, fmt.Errorf("page %d: %w", index+1, err)
	}
	frags, err := page.Fragments(ctx)
	if err != nil {
		return Page{}, fmt.Errorf("page %d: %w", index+1, err)
	}

	start := time.Now()
	content := mathtex.Annotate(lines.Reconstruct(frags))
	d.logger.Debug("page annotated",
		observability.Int("page", index+1),
		observability.Int(observability.MetricFragmentCount, len(frags)),
		observability.Int64(observability.MetricAnnotateTime, time.Since(start).Milliseconds()))

	return Page{Number: index + 1, Content: content}, nil
}
