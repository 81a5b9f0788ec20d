package extract

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"time"
	"unicode/utf16"

	"github.com/wudi/pdfkit/coords"
	"github.com/wudi/pdfkit/ir"
	"github.com/wudi/pdfkit/ir/semantic"
	"golang.org/x/text/unicode/norm"

	"github.com/wudi/pdfmath/observability"
)

// PDFDocument is the pdfkit-backed Document implementation. Text positions
// come from virtually executing each page's content operations and tracking
// the text matrix the way a renderer would, without rasterizing anything.
type PDFDocument struct {
	sem    *semantic.Document
	ocr    OCREngine
	logger observability.Logger
	tracer observability.Tracer
	closed bool
}

// Option configures an open document.
type Option func(*PDFDocument)

// WithLogger attaches a structured logger; default is the nop logger.
func WithLogger(l observability.Logger) Option {
	return func(d *PDFDocument) { d.logger = l }
}

// WithTracer attaches a tracer; default is the nop tracer.
func WithTracer(t observability.Tracer) Option {
	return func(d *PDFDocument) { d.tracer = t }
}

// WithOCR enables the OCR fallback for pages that contain no text operators.
func WithOCR(engine OCREngine) Option {
	return func(d *PDFDocument) { d.ocr = engine }
}

// Open parses data through the pdfkit IR pipeline and returns a document
// handle. Malformed input fails here, before any page is touched.
func Open(ctx context.Context, data []byte, opts ...Option) (*PDFDocument, error) {
	d := &PDFDocument{logger: observability.NopLogger{}, tracer: observability.NopTracer()}
	for _, opt := range opts {
		opt(d)
	}

	ctx, span := d.tracer.StartSpan(ctx, "pdfmath.decode")
	defer span.Finish()

	start := time.Now()
	sem, err := ir.NewDefault().Parse(ctx, bytes.NewReader(data))
	if err != nil {
		span.SetError(err)
		return nil, fmt.Errorf("decode pdf: %w", err)
	}
	d.sem = sem
	span.SetTag("pages", len(sem.Pages))
	d.logger.Debug("document decoded",
		observability.Int(observability.MetricPageCount, len(sem.Pages)),
		observability.Int64(observability.MetricDecodeTime, time.Since(start).Milliseconds()))
	return d, nil
}

// NewDocument wraps an already-built semantic document. Used by tests and by
// callers that run the pdfkit pipeline themselves.
func NewDocument(sem *semantic.Document, opts ...Option) *PDFDocument {
	d := &PDFDocument{sem: sem, logger: observability.NopLogger{}, tracer: observability.NopTracer()}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

func (d *PDFDocument) PageCount() int {
	if d.sem == nil {
		return 0
	}
	return len(d.sem.Pages)
}

func (d *PDFDocument) Page(index int) (Page, error) {
	if d.closed {
		return nil, ErrClosed
	}
	if index < 0 || index >= len(d.sem.Pages) {
		return nil, fmt.Errorf("%w: %d of %d", ErrPageOutOfRange, index, len(d.sem.Pages))
	}
	return &pdfPage{doc: d, page: d.sem.Pages[index]}, nil
}

// Close releases the decoded document. Further use returns ErrClosed.
func (d *PDFDocument) Close() error {
	d.closed = true
	d.sem = nil
	return nil
}

type pdfPage struct {
	doc  *PDFDocument
	page *semantic.Page
}

// textState mirrors the slice of PDF text state the baseline walk needs.
type textState struct {
	textMatrix     coords.Matrix
	textLineMatrix coords.Matrix
	leading        float64
	font           *semantic.Font
}

func (p *pdfPage) Fragments(ctx context.Context) ([]Fragment, error) {
	if p.doc.closed {
		return nil, ErrClosed
	}
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}

	frags := p.walk()
	if len(frags) == 0 && p.doc.ocr != nil {
		return p.doc.ocrFragments(ctx, p.page)
	}
	p.doc.logger.Debug("page extracted",
		observability.Int("page", p.page.Index),
		observability.Int(observability.MetricFragmentCount, len(frags)))
	return frags, nil
}

// walk virtually executes the page's content operations, tracking the CTM
// and text matrices, and emits one fragment per show operator. The baseline
// is the text-space origin pushed through TextMatrix * CTM.
func (p *pdfPage) walk() []Fragment {
	var frags []Fragment
	gsStack := []coords.Matrix{}
	ctm := coords.Identity()
	ts := textState{textMatrix: coords.Identity(), textLineMatrix: coords.Identity()}

	var fonts map[string]*semantic.Font
	if p.page.Resources != nil {
		fonts = p.page.Resources.Fonts
	}

	emit := func(text string) {
		text = norm.NFC.String(text)
		if strings.TrimSpace(text) == "" {
			return
		}
		origin := ts.textMatrix.Multiply(ctm).Transform(coords.Point{})
		frags = append(frags, Fragment{Text: text, BaselineY: origin.Y})
	}
	nextLine := func(tx, ty float64) {
		ts.textLineMatrix = coords.Translate(tx, ty).Multiply(ts.textLineMatrix)
		ts.textMatrix = ts.textLineMatrix
	}

	for _, cs := range p.page.Contents {
		for _, op := range cs.Operations {
			switch op.Operator {
			case "q":
				gsStack = append(gsStack, ctm)
			case "Q":
				if n := len(gsStack); n > 0 {
					ctm = gsStack[n-1]
					gsStack = gsStack[:n-1]
				}
			case "cm":
				if len(op.Operands) == 6 {
					ctm = operandMatrix(op.Operands).Multiply(ctm)
				}
			case "BT":
				ts.textMatrix = coords.Identity()
				ts.textLineMatrix = coords.Identity()
			case "Tf":
				if len(op.Operands) == 2 {
					if name, ok := op.Operands[0].(semantic.NameOperand); ok {
						ts.font = fonts[name.Value]
					}
				}
			case "TL":
				if len(op.Operands) == 1 {
					ts.leading = operandFloat(op.Operands[0])
				}
			case "Tm":
				if len(op.Operands) == 6 {
					ts.textLineMatrix = operandMatrix(op.Operands)
					ts.textMatrix = ts.textLineMatrix
				}
			case "Td":
				if len(op.Operands) == 2 {
					nextLine(operandFloat(op.Operands[0]), operandFloat(op.Operands[1]))
				}
			case "TD":
				if len(op.Operands) == 2 {
					ty := operandFloat(op.Operands[1])
					ts.leading = -ty
					nextLine(operandFloat(op.Operands[0]), ty)
				}
			case "T*":
				nextLine(0, -ts.leading)
			case "Tj":
				if len(op.Operands) == 1 {
					if str, ok := op.Operands[0].(semantic.StringOperand); ok {
						emit(decodeShowBytes(ts.font, str.Value))
					}
				}
			case "'":
				if len(op.Operands) == 1 {
					if str, ok := op.Operands[0].(semantic.StringOperand); ok {
						nextLine(0, -ts.leading)
						emit(decodeShowBytes(ts.font, str.Value))
					}
				}
			case `"`:
				if len(op.Operands) == 3 {
					if str, ok := op.Operands[2].(semantic.StringOperand); ok {
						nextLine(0, -ts.leading)
						emit(decodeShowBytes(ts.font, str.Value))
					}
				}
			case "TJ":
				if len(op.Operands) == 1 {
					if arr, ok := op.Operands[0].(semantic.ArrayOperand); ok {
						var b strings.Builder
						for _, item := range arr.Values {
							if str, ok := item.(semantic.StringOperand); ok {
								b.WriteString(decodeShowBytes(ts.font, str.Value))
							}
						}
						emit(b.String())
					}
				}
			}
		}
	}
	return frags
}

func operandMatrix(ops []semantic.Operand) coords.Matrix {
	return coords.Matrix{
		operandFloat(ops[0]), operandFloat(ops[1]),
		operandFloat(ops[2]), operandFloat(ops[3]),
		operandFloat(ops[4]), operandFloat(ops[5]),
	}
}

func operandFloat(op semantic.Operand) float64 {
	if n, ok := op.(semantic.NumberOperand); ok {
		return n.Value
	}
	return 0
}

// decodeShowBytes converts show-operator bytes to text. Fonts with a
// ToUnicode map are decoded through it (two-byte codes for Type0 fonts,
// single-byte otherwise); UTF-16BE strings are detected by BOM; anything
// else passes through as-is, matching what viewers do for unmapped simple
// fonts.
func decodeShowBytes(font *semantic.Font, data []byte) string {
	if len(data) == 0 {
		return ""
	}
	if font != nil && len(font.ToUnicode) > 0 {
		width := 1
		if font.Subtype == "Type0" {
			width = 2
		}
		var b strings.Builder
		for i := 0; i+width <= len(data); i += width {
			code := int(data[i])
			if width == 2 {
				code = int(data[i])<<8 | int(data[i+1])
			}
			if runes, ok := font.ToUnicode[code]; ok {
				b.WriteString(string(runes))
				continue
			}
			b.WriteRune(rune(code))
		}
		return b.String()
	}
	if len(data) >= 2 && data[0] == 0xFE && data[1] == 0xFF {
		return decodeUTF16BE(data[2:])
	}
	return string(data)
}

func decodeUTF16BE(data []byte) string {
	if len(data)%2 != 0 {
		data = data[:len(data)-1]
	}
	if len(data) == 0 {
		return ""
	}
	buf := make([]uint16, len(data)/2)
	for i := range buf {
		buf[i] = uint16(data[2*i])<<8 | uint16(data[2*i+1])
	}
	return string(utf16.Decode(buf))
}
