// Package pageexpr recognizes the reserved page- and section-numbering
// expressions that a compositor resolves during pagination, as opposed to
// general data-binding expressions handled by an evaluator. The recognized
// set is closed: two page counters and four section counters, each with a
// bare spelling and the section counters additionally with a function
// spelling naming an explicit section.
package pageexpr

import "strings"

// Kind identifies which page or section counter an expression refers to.
type Kind string

const (
	KindCurrentPage       Kind = "current-page"
	KindTotalPages        Kind = "total-pages"
	KindSectionBeginPage  Kind = "section-begin-page"
	KindSectionEndPage    Kind = "section-end-page"
	KindSectionPageNumber Kind = "section-page-number"
	KindSectionTotalPages Kind = "section-total-pages"
)

// Ref is a recognized reserved expression. Section is the explicit section
// name extracted from a function spelling; it stays empty for the bare
// section spellings, which bind to whichever section is current when the
// compositor resolves them.
type Ref struct {
	Kind    Kind
	Section string
}

// CurrentSection reports whether the reference binds to the section current
// at resolution time rather than an explicitly named one.
func (r Ref) CurrentSection() bool { return r.Section == "" }

var bareForms = map[string]Kind{
	"currentpage":        KindCurrentPage,
	"page.currentpage":   KindCurrentPage,
	"totalpages":         KindTotalPages,
	"page.totalpages":    KindTotalPages,
	"section.beginpage":  KindSectionBeginPage,
	"section.endpage":    KindSectionEndPage,
	"section.pagenumber": KindSectionPageNumber,
	"section.totalpages": KindSectionTotalPages,
}

var functionForms = []struct {
	prefix string
	kind   Kind
}{
	{"beginpageofsection", KindSectionBeginPage},
	{"endpageofsection", KindSectionEndPage},
	{"pagewithinsection", KindSectionPageNumber},
	{"totalpageswithinsection", KindSectionTotalPages},
}

// Classify reports whether raw is one of the reserved spellings,
// case-insensitively. Anything else (including a function prefix without
// parentheses or with an empty argument) is not reserved and must flow to
// the general evaluator unchanged; classification never fails with an error.
func Classify(raw string) (Ref, bool) {
	expr := strings.TrimSpace(raw)
	if expr == "" {
		return Ref{}, false
	}

	if kind, ok := bareForms[strings.ToLower(expr)]; ok {
		return Ref{Kind: kind}, true
	}

	for _, fn := range functionForms {
		if len(expr) <= len(fn.prefix) {
			continue
		}
		if !strings.EqualFold(expr[:len(fn.prefix)], fn.prefix) {
			continue
		}
		name, ok := functionArg(strings.TrimSpace(expr[len(fn.prefix):]))
		if !ok {
			continue
		}
		return Ref{Kind: fn.kind, Section: name}, true
	}

	return Ref{}, false
}

// functionArg extracts the section name from a single balanced "(...)"
// argument, stripping one layer of matching single or double quotes.
func functionArg(rest string) (string, bool) {
	if len(rest) < 2 || rest[0] != '(' || rest[len(rest)-1] != ')' {
		return "", false
	}
	inner := rest[1 : len(rest)-1]
	if strings.ContainsAny(inner, "()") {
		return "", false
	}
	inner = strings.TrimSpace(inner)
	if len(inner) >= 2 {
		first, last := inner[0], inner[len(inner)-1]
		if (first == '"' && last == '"') || (first == '\'' && last == '\'') {
			inner = inner[1 : len(inner)-1]
		}
	}
	if inner == "" {
		return "", false
	}
	return inner, true
}

var scanTokens = []string{
	"currentpage",
	"totalpages",
	"section.",
	"beginpageofsection",
	"endpageofsection",
	"pagewithinsection",
}

// ContainsAny is the fast pre-filter: it reports whether s contains any of
// the reserved tokens, case-insensitively, letting callers skip Classify on
// strings that cannot hold a reserved expression.
func ContainsAny(s string) bool {
	if s == "" {
		return false
	}
	lowered := strings.ToLower(s)
	for _, tok := range scanTokens {
		if strings.Contains(lowered, tok) {
			return true
		}
	}
	return false
}
