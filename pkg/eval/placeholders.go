package eval

import (
	"regexp"
	"strings"
)

var placeholderPattern = regexp.MustCompile(`\{\{([^}]*)\}\}`)

// Placeholder is one {{ }} span inside a template string. Raw includes the
// braces; Expr is the inner expression with surrounding whitespace trimmed.
// Start and End are byte offsets of the span within the source string.
type Placeholder struct {
	Raw   string
	Expr  string
	Start int
	End   int
}

// HasPlaceholder reports whether s contains the opening of a {{ }} span.
func HasPlaceholder(s string) bool {
	return strings.Contains(s, "{{")
}

// Placeholders scans s left to right and returns every {{ }} span in order.
// Malformed openings without a closing brace pair are not matched.
func Placeholders(s string) []Placeholder {
	if !HasPlaceholder(s) {
		return nil
	}

	matches := placeholderPattern.FindAllStringSubmatchIndex(s, -1)
	if len(matches) == 0 {
		return nil
	}

	out := make([]Placeholder, 0, len(matches))
	for _, m := range matches {
		start, end := m[0], m[1]
		out = append(out, Placeholder{
			Raw:   s[start:end],
			Expr:  strings.TrimSpace(s[m[2]:m[3]]),
			Start: start,
			End:   end,
		})
	}
	return out
}
