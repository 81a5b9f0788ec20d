// Package mathtex turns plain extracted text into text with TeX-style math
// delimiters. Detection is a fixed sequence of heuristic string rewrites,
// not a parser: each rule feeds the next, and the rule order is part of the
// package contract (see Annotate).
package mathtex

import (
	"regexp"
	"strings"
)

var (
	fractionRe    = regexp.MustCompile(`(\d+)/(\d+)`)
	exponentRe    = regexp.MustCompile(`([A-Za-z0-9])\^(\d+)`)
	bracedExpRe   = regexp.MustCompile(`([A-Za-z0-9])\^\{([^}]+)\}`)
	rootParenRe   = regexp.MustCompile(`√\(([^)]+)\)`)
	rootBareRe    = regexp.MustCompile(`√(\d+)`)
	equationRunRe = regexp.MustCompile(`[A-Za-z0-9+\-*/^().\s={}\\]+`)
	equationOpRe  = regexp.MustCompile(`[+\-*/^=]`)
	equationDigRe = regexp.MustCompile(`\d`)
)

// greekLetters maps each recognized Greek letter to its TeX command name.
// The table is fixed: 21 lowercase letters (kappa, omicron and upsilon are
// not in the set) and 10 uppercase ones. Iteration uses greekOrder so
// rewrites are deterministic.
var greekLetters = map[rune]string{
	'α': `\alpha`, 'β': `\beta`, 'γ': `\gamma`, 'δ': `\delta`,
	'ε': `\epsilon`, 'ζ': `\zeta`, 'η': `\eta`, 'θ': `\theta`,
	'ι': `\iota`, 'λ': `\lambda`, 'μ': `\mu`, 'ν': `\nu`,
	'ξ': `\xi`, 'π': `\pi`, 'ρ': `\rho`, 'σ': `\sigma`,
	'τ': `\tau`, 'φ': `\phi`, 'χ': `\chi`, 'ψ': `\psi`, 'ω': `\omega`,
	'Γ': `\Gamma`, 'Δ': `\Delta`, 'Θ': `\Theta`, 'Λ': `\Lambda`,
	'Ξ': `\Xi`, 'Π': `\Pi`, 'Σ': `\Sigma`, 'Φ': `\Phi`,
	'Ψ': `\Psi`, 'Ω': `\Omega`,
}

// operatorSymbols maps each recognized Unicode math operator to its TeX
// command. Fixed 11-entry table.
var operatorSymbols = map[rune]string{
	'≤': `\leq`, '≥': `\geq`, '≠': `\neq`, '±': `\pm`,
	'∞': `\infty`, '∑': `\sum`, '∫': `\int`, '∂': `\partial`,
	'∇': `\nabla`, '×': `\times`, '÷': `\div`,
}

// Rule is one step of the annotation pipeline.
type Rule struct {
	Name  string
	Apply func(string) string
}

// Rules returns the pipeline in its fixed application order. Symbol
// substitution runs before equation detection on purpose: substituted
// formulas already carry '$' and are skipped by the equation rule's guard.
// The flip side is that the equation rule's character class stops at the
// first inserted delimiter, so one logical formula spanning a substituted
// symbol is wrapped as several independent fragments. Known limitation;
// downstream output depends on it staying this way.
func Rules() []Rule {
	return []Rule{
		{Name: "fractions", Apply: Fractions},
		{Name: "exponents", Apply: Exponents},
		{Name: "roots", Apply: Roots},
		{Name: "greek", Apply: GreekLetters},
		{Name: "operators", Apply: OperatorSymbols},
		{Name: "equations", Apply: Equations},
	}
}

// Annotate runs the full rule pipeline over text. It is a pure function and
// never fails; ambiguous input just produces imperfect delimiting.
func Annotate(text string) string {
	for _, rule := range Rules() {
		text = rule.Apply(text)
	}
	return text
}

// Fractions rewrites digit/digit runs as \frac{num}{den}. It adds no
// delimiters of its own.
func Fractions(text string) string {
	return fractionRe.ReplaceAllString(text, `\frac{${1}}{${2}}`)
}

// Exponents braces bare numeric exponents (x^2 -> x^{2}) and normalizes
// already-braced ones to the same form, so the rule is idempotent.
func Exponents(text string) string {
	text = exponentRe.ReplaceAllString(text, `${1}^{${2}}`)
	return bracedExpRe.ReplaceAllString(text, `${1}^{${2}}`)
}

// Roots rewrites √(content) and bare √digits as \sqrt{...}.
func Roots(text string) string {
	text = rootParenRe.ReplaceAllString(text, `\sqrt{${1}}`)
	return rootBareRe.ReplaceAllString(text, `\sqrt{${1}}`)
}

// GreekLetters replaces every table letter with its inline-delimited TeX
// command, letter by letter and independent of context.
func GreekLetters(text string) string {
	return replaceSymbols(text, greekLetters)
}

// OperatorSymbols replaces every table operator with its inline-delimited
// TeX command.
func OperatorSymbols(text string) string {
	return replaceSymbols(text, operatorSymbols)
}

func replaceSymbols(text string, table map[rune]string) string {
	var b strings.Builder
	b.Grow(len(text))
	for _, r := range text {
		if cmd, ok := table[r]; ok {
			b.WriteByte('$')
			b.WriteString(cmd)
			b.WriteByte('$')
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// Equations wraps equation-like runs in block delimiters. A run is a maximal
// substring of equation characters (alphanumerics, arithmetic operators,
// parens, braces, backslash, whitespace) containing '='. The class excludes
// '$', so a run always stops at the first delimiter inserted by an earlier
// rule; runs carrying '$' are additionally guarded against re-wrapping. A
// qualifying run needs at least one operator and one digit. The match is
// wrapped as-is, surrounding whitespace included.
func Equations(text string) string {
	return equationRunRe.ReplaceAllStringFunc(text, func(run string) string {
		if !strings.Contains(run, "=") {
			return run
		}
		if strings.Contains(run, "$") {
			return run
		}
		if !equationOpRe.MatchString(run) || !equationDigRe.MatchString(run) {
			return run
		}
		return "$$" + run + "$$"
	})
}
