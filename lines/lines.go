// Package lines rebuilds logical text lines from positioned page fragments.
// Fragments whose baselines sit within the threshold of each other belong to
// the same line; larger jumps start a new one.
package lines

import (
	"math"
	"regexp"
	"strings"

	"github.com/wudi/pdfmath/extract"
)

// BaselineThreshold is the maximum baseline distance, in PDF user-space
// units, between fragments of the same line. The comparison is strict: a
// delta of exactly the threshold does not break the line.
const BaselineThreshold = 5.0

var spaceRunRe = regexp.MustCompile(` +`)

// Reconstruct joins fragments into newline-delimited text. Fragments are
// consumed in the order given; no reordering happens here, so out-of-order
// extraction shows up as out-of-order lines.
func Reconstruct(frags []extract.Fragment) string {
	var b strings.Builder
	lastY := math.NaN()
	for _, f := range frags {
		if !math.IsNaN(lastY) && math.Abs(f.BaselineY-lastY) > BaselineThreshold {
			b.WriteByte('\n')
		}
		b.WriteString(f.Text)
		b.WriteByte(' ')
		lastY = f.BaselineY
	}
	return strings.TrimSpace(spaceRunRe.ReplaceAllString(b.String(), " "))
}
