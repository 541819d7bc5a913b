// Package content normalizes rich text carried by leaf components: markdown
// converts to HTML, and HTML passed in by template authors is reduced to a
// print-safe element set.
package content

import (
	"bytes"
	"fmt"
	"strings"
	"sync"

	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
)

// markdownInstance is initialized once and reused; the configuration never
// changes and goldmark parsers are safe to share across renders.
var (
	markdownOnce     sync.Once
	markdownInstance goldmark.Markdown
)

func markdownEngine() goldmark.Markdown {
	markdownOnce.Do(func() {
		markdownInstance = goldmark.New(
			goldmark.WithExtensions(
				extension.GFM,
				extension.DefinitionList,
			),
		)
	})
	return markdownInstance
}

// MarkdownHTML converts markdown source to HTML with GFM tables, task lists,
// strikethrough and definition lists enabled. Raw HTML embedded in the
// source is omitted by the engine; blank input yields an empty string.
func MarkdownHTML(source string) (string, error) {
	if strings.TrimSpace(source) == "" {
		return "", nil
	}

	var buf bytes.Buffer
	if err := markdownEngine().Convert([]byte(source), &buf); err != nil {
		return "", fmt.Errorf("content: convert markdown: %w", err)
	}
	return strings.TrimSpace(buf.String()), nil
}

var (
	printPolicyOnce sync.Once
	printPolicy     *bluemonday.Policy
)

// SanitizeHTML reduces author-supplied HTML to the element set a print
// renderer understands: block structure, lists, tables, inline formatting,
// links and images. Script, style and event-handler vectors are removed.
func SanitizeHTML(raw string) string {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return ""
	}
	return strings.TrimSpace(printSanitizer().Sanitize(trimmed))
}

func printSanitizer() *bluemonday.Policy {
	printPolicyOnce.Do(func() {
		policy := bluemonday.StrictPolicy()

		policy.AllowElements(
			"p", "br", "hr", "blockquote", "pre", "div", "span",
			"h1", "h2", "h3", "h4", "h5", "h6",
			"ul", "ol", "li", "dl", "dt", "dd",
			"table", "thead", "tbody", "tfoot", "tr", "th", "td",
			"caption", "colgroup", "col",
			"strong", "em", "b", "i", "u", "s", "del", "ins",
			"sub", "sup", "small", "mark", "code", "kbd", "abbr",
		)

		policy.AllowAttrs("class").Globally()
		policy.AllowAttrs("start", "type").OnElements("ol")
		policy.AllowAttrs("colspan", "rowspan", "align", "valign").OnElements("th", "td")
		policy.AllowAttrs("span").OnElements("col", "colgroup")

		policy.AllowStandardURLs()
		policy.AllowAttrs("href", "title").OnElements("a")
		policy.AllowAttrs("src", "alt", "title", "width", "height").OnElements("img")

		printPolicy = policy
	})
	return printPolicy
}
