// Package segment splits annotated lines at math delimiters and renders the
// math parts to MathML, falling back to the literal text whenever a segment
// does not survive rendering.
package segment

import "regexp"

// Kind discriminates segment content.
type Kind int

const (
	Text Kind = iota
	InlineMath
	BlockMath
)

// Segment is one slice of a line. Raw holds the text itself for Text
// segments and the content between the delimiters for math segments.
type Segment struct {
	Kind Kind
	Raw  string
}

// Literal returns the segment as it appeared in the line, delimiters
// included. Concatenating the literals of Split's output reproduces the
// input line exactly.
func (s Segment) Literal() string {
	switch s.Kind {
	case InlineMath:
		return "$" + s.Raw + "$"
	case BlockMath:
		return "$$" + s.Raw + "$$"
	default:
		return s.Raw
	}
}

var (
	blockRe  = regexp.MustCompile(`\$\$(.+?)\$\$`)
	inlineRe = regexp.MustCompile(`\$(.+?)\$`)
)

// Split cuts one line into text and math segments. Block spans win: when a
// line contains at least one $$...$$ span, only the block scan runs and any
// lone $...$ on the same line stays literal text. Lines without block spans
// get the inline scan instead. A line with no delimiters at all is a single
// text segment, as is an empty line.
func Split(line string) []Segment {
	if line == "" {
		return []Segment{{Kind: Text, Raw: ""}}
	}
	if segs := scan(line, blockRe, BlockMath); segs != nil {
		return segs
	}
	if segs := scan(line, inlineRe, InlineMath); segs != nil {
		return segs
	}
	return []Segment{{Kind: Text, Raw: line}}
}

func scan(line string, re *regexp.Regexp, kind Kind) []Segment {
	matches := re.FindAllStringSubmatchIndex(line, -1)
	if len(matches) == 0 {
		return nil
	}
	var segs []Segment
	last := 0
	for _, m := range matches {
		if m[0] > last {
			segs = append(segs, Segment{Kind: Text, Raw: line[last:m[0]]})
		}
		segs = append(segs, Segment{Kind: kind, Raw: line[m[2]:m[3]]})
		last = m[1]
	}
	if last < len(line) {
		segs = append(segs, Segment{Kind: Text, Raw: line[last:]})
	}
	return segs
}
