package lines

import (
	"strings"
	"testing"

	"github.com/wudi/pdfmath/extract"
)

func frag(text string, y float64) extract.Fragment {
	return extract.Fragment{Text: text, BaselineY: y}
}

func TestReconstructEmpty(t *testing.T) {
	if got := Reconstruct(nil); got != "" {
		t.Fatalf("Reconstruct(nil) = %q, want empty", got)
	}
}

func TestReconstructSingleLine(t *testing.T) {
	frags := []extract.Fragment{
		frag("The", 700), frag("quick", 700.4), frag("fox", 699.8),
	}
	if got := Reconstruct(frags); got != "The quick fox" {
		t.Fatalf("got %q", got)
	}
}

func TestReconstructBreaksOnLargeDelta(t *testing.T) {
	frags := []extract.Fragment{
		frag("first", 700), frag("line", 700),
		frag("second", 680),
	}
	got := Reconstruct(frags)
	if got != "first line \nsecond" {
		t.Fatalf("got %q", got)
	}
}

// Delta of exactly the threshold stays on the same line; the comparison is
// strictly greater-than.
func TestReconstructThresholdIsStrict(t *testing.T) {
	frags := []extract.Fragment{frag("a", 700), frag("b", 695)}
	if got := Reconstruct(frags); strings.Contains(got, "\n") {
		t.Fatalf("delta of exactly 5 broke the line: %q", got)
	}
	frags = []extract.Fragment{frag("a", 700), frag("b", 694.9)}
	if got := Reconstruct(frags); !strings.Contains(got, "\n") {
		t.Fatalf("delta above 5 did not break the line: %q", got)
	}
}

func TestReconstructBreakCountMatchesBoundaries(t *testing.T) {
	frags := []extract.Fragment{
		frag("a", 700), frag("b", 690), frag("c", 689), frag("d", 650), frag("e", 648),
	}
	got := Reconstruct(frags)
	if breaks := strings.Count(got, "\n"); breaks != 2 {
		t.Fatalf("got %d breaks in %q, want 2", breaks, got)
	}
}

func TestReconstructNoReordering(t *testing.T) {
	// Decoder yielded the lower line first; reconstruction must not fix it.
	frags := []extract.Fragment{frag("bottom", 100), frag("top", 700)}
	got := Reconstruct(frags)
	if got != "bottom \ntop" {
		t.Fatalf("got %q", got)
	}
}

func TestReconstructCollapsesSpaces(t *testing.T) {
	frags := []extract.Fragment{frag("a  b", 700), frag("", 700), frag("c", 700)}
	if got := Reconstruct(frags); got != "a b c" {
		t.Fatalf("got %q", got)
	}
}

func TestReconstructUpdatesLastYPerFragment(t *testing.T) {
	// A gradual drift where consecutive deltas stay at or under the
	// threshold never breaks, even though the total drift is large.
	frags := []extract.Fragment{
		frag("a", 700), frag("b", 696), frag("c", 692), frag("d", 688),
	}
	if got := Reconstruct(frags); strings.Contains(got, "\n") {
		t.Fatalf("gradual drift broke the line: %q", got)
	}
}
