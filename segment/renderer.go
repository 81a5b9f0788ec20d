package segment

import (
	"bytes"
	"errors"
	"strings"

	treeblood "github.com/wyatt915/goldmark-treeblood"
	"github.com/yuin/goldmark"
	"golang.org/x/net/html"

	"github.com/wudi/pdfmath/observability"
)

// Renderer turns TeX markup into a displayable form. Implementations signal
// failure through the error; callers recover by falling back to the
// segment's literal text, so a failing renderer never aborts a line.
type Renderer interface {
	Render(markup string, display bool) (string, error)
}

// ErrBadMarkup is returned when the markup does not survive conversion.
var ErrBadMarkup = errors.New("markup did not render")

// MathMLRenderer converts TeX to MathML-bearing HTML through goldmark with
// the treeblood extension. treeblood reports unparseable TeX in-band as an
// <merror> element, so output is scanned for it and treated as failure.
type MathMLRenderer struct {
	md goldmark.Markdown
}

func NewMathMLRenderer() *MathMLRenderer {
	return &MathMLRenderer{
		md: goldmark.New(
			goldmark.WithExtensions(
				treeblood.MathML(),
			),
		),
	}
}

func (r *MathMLRenderer) Render(markup string, display bool) (string, error) {
	source := "$" + markup + "$"
	if display {
		source = "$$" + markup + "$$"
	}

	var buf bytes.Buffer
	if err := r.md.Convert([]byte(source), &buf); err != nil {
		return "", err
	}
	out := buf.String()
	if containsMathError(out) {
		return "", ErrBadMarkup
	}
	return out, nil
}

func containsMathError(fragment string) bool {
	tz := html.NewTokenizer(strings.NewReader(fragment))
	for {
		switch tz.Next() {
		case html.ErrorToken:
			return false
		case html.StartTagToken, html.SelfClosingTagToken:
			name, _ := tz.TagName()
			if string(name) == "merror" {
				return true
			}
		}
	}
}

// Rendered is one segment after rendering. Output holds the renderer result
// for math segments that rendered, or the literal text otherwise. Fallback
// marks math segments that did not render.
type Rendered struct {
	Segment
	Output   string
	Fallback bool
}

// NonBreakingSpace is what an entirely empty line renders as, so the line
// keeps its height in the output.
const NonBreakingSpace = "\u00a0"

// RenderLine splits line and renders each math segment independently.
// A render failure downgrades just that segment to its literal form.
func RenderLine(line string, r Renderer, logger observability.Logger) []Rendered {
	if logger == nil {
		logger = observability.NopLogger{}
	}
	segs := Split(line)
	out := make([]Rendered, 0, len(segs))
	for _, seg := range segs {
		rendered := Rendered{Segment: seg}
		switch seg.Kind {
		case Text:
			rendered.Output = seg.Raw
			if line == "" {
				rendered.Output = NonBreakingSpace
			}
		default:
			markup, err := r.Render(seg.Raw, seg.Kind == BlockMath)
			if err != nil {
				logger.Debug("render fallback",
					observability.Int(observability.MetricRenderFallbacks, 1),
					observability.String("markup", seg.Raw),
					observability.Error("err", err))
				rendered.Output = seg.Literal()
				rendered.Fallback = true
				break
			}
			rendered.Output = markup
		}
		out = append(out, rendered)
	}
	return out
}
