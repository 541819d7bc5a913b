// Package theme maps go-theme selections onto print defaults: a base style
// the layout tree inherits from and page-level settings the template leaves
// unset. Token values are plain strings in the manifest; numeric tokens
// parse here.
package theme

import (
	"fmt"
	"strconv"
	"strings"

	gotheme "github.com/goliatone/go-theme"

	"github.com/platen-io/go-platen/pkg/layout"
	"github.com/platen-io/go-platen/pkg/style"
)

// Token names read from a theme manifest.
const (
	TokenFontFamily     = "font.family"
	TokenFontSize       = "font.size"
	TokenFontWeight     = "font.weight"
	TokenLineHeight     = "font.lineHeight"
	TokenTextColor      = "color.text"
	TokenBackground     = "color.background"
	TokenPageMargin     = "page.margin"
	TokenPageBackground = "page.background"
)

// Tokens flattens a selection's token table, applying the selected variant's
// overrides over the base manifest tokens.
func Tokens(sel *gotheme.Selection) map[string]string {
	if sel == nil || sel.Manifest == nil {
		return nil
	}

	out := make(map[string]string, len(sel.Manifest.Tokens))
	for name, value := range sel.Manifest.Tokens {
		out[name] = value
	}
	if variant, ok := sel.Manifest.Variants[sel.Variant]; ok {
		for name, value := range variant.Tokens {
			out[name] = value
		}
	}
	return out
}

// BaseStyle derives the root inherited style from a selection. Only the
// text-group tokens participate; selections without any of them yield nil.
func BaseStyle(sel *gotheme.Selection) (*style.Properties, error) {
	tokens := Tokens(sel)
	if len(tokens) == 0 {
		return nil, nil
	}

	out := &style.Properties{}
	populated := false

	if v, ok := token(tokens, TokenFontFamily); ok {
		out.FontFamily = &v
		populated = true
	}
	if v, ok := token(tokens, TokenFontWeight); ok {
		out.FontWeight = &v
		populated = true
	}
	if v, ok := token(tokens, TokenTextColor); ok {
		out.Color = &v
		populated = true
	}
	if v, ok := token(tokens, TokenFontSize); ok {
		size, err := parseNumeric(TokenFontSize, v)
		if err != nil {
			return nil, err
		}
		out.FontSize = &size
		populated = true
	}
	if v, ok := token(tokens, TokenLineHeight); ok {
		height, err := parseNumeric(TokenLineHeight, v)
		if err != nil {
			return nil, err
		}
		out.LineHeight = &height
		populated = true
	}

	if !populated {
		return nil, nil
	}
	return out, nil
}

// ApplyPageDefaults fills page settings the template left unset from the
// selection's page tokens. Explicit template values always win.
func ApplyPageDefaults(sel *gotheme.Selection, page *layout.PageSettings) error {
	if page == nil {
		return nil
	}
	tokens := Tokens(sel)
	if len(tokens) == 0 {
		return nil
	}

	if page.Margin == nil {
		if v, ok := token(tokens, TokenPageMargin); ok {
			margin, err := parseNumeric(TokenPageMargin, v)
			if err != nil {
				return err
			}
			page.Margin = &margin
		}
	}

	if page.BackgroundColor == "" {
		if v, ok := token(tokens, TokenPageBackground); ok {
			page.BackgroundColor = v
		} else if v, ok := token(tokens, TokenBackground); ok {
			page.BackgroundColor = v
		}
	}

	return nil
}

func token(tokens map[string]string, name string) (string, bool) {
	value, ok := tokens[name]
	if !ok {
		return "", false
	}
	value = strings.TrimSpace(value)
	if value == "" {
		return "", false
	}
	return value, true
}

func parseNumeric(name, raw string) (float64, error) {
	value, err := strconv.ParseFloat(strings.TrimSuffix(strings.TrimSpace(raw), "pt"), 64)
	if err != nil {
		return 0, fmt.Errorf("theme: token %s: invalid number %q", name, raw)
	}
	return value, nil
}
