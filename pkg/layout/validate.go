package layout

import (
	"fmt"
	"strings"
)

// Validate checks the template's structural rules and returns every
// violation as an author-facing message. It never stops at the first
// problem; an empty result means the template is structurally sound.
func (t *Template) Validate() []string {
	var issues []string

	if t.Content == nil {
		issues = append(issues, "content slot is required")
	}

	issues = append(issues, t.Page.validate()...)

	if t.Header == nil && t.Page.hasHeaderSizing() {
		issues = append(issues, "header height settings are set but the header slot is empty")
	}
	if t.Footer == nil && t.Page.hasFooterSizing() {
		issues = append(issues, "footer height settings are set but the footer slot is empty")
	}

	for _, slot := range NonPaginatingSlots() {
		node := t.SlotNode(slot)
		if node == nil {
			continue
		}
		if kinds := PaginationDependentTypes(node); len(kinds) > 0 {
			issues = append(issues, fmt.Sprintf(
				"%s slot renders once per page and cannot contain pagination-dependent components: %s",
				slot, joinTypes(kinds)))
		}
	}

	return normalizeIssues(issues)
}

func (p PageSettings) validate() []string {
	var issues []string

	if p.Width != nil && *p.Width < 0 {
		issues = append(issues, "page width must not be negative")
	}
	if p.Height != nil && *p.Height < 0 {
		issues = append(issues, "page height must not be negative")
	}

	margins := []struct {
		name  string
		value *float64
	}{
		{"margin", p.Margin},
		{"top margin", p.MarginTop},
		{"right margin", p.MarginRight},
		{"bottom margin", p.MarginBottom},
		{"left margin", p.MarginLeft},
	}
	for _, m := range margins {
		if m.value != nil && *m.value < 0 {
			issues = append(issues, fmt.Sprintf("page %s must not be negative", m.name))
		}
	}

	issues = append(issues, validateBandHeights("header", p.HeaderHeight, p.HeaderMinHeight, p.HeaderMaxHeight)...)
	issues = append(issues, validateBandHeights("footer", p.FooterHeight, p.FooterMinHeight, p.FooterMaxHeight)...)

	return issues
}

func validateBandHeights(band string, fixed, min, max *float64) []string {
	var issues []string

	if fixed != nil && *fixed < 0 {
		issues = append(issues, fmt.Sprintf("%s height must not be negative", band))
	}
	if min != nil && *min < 0 {
		issues = append(issues, fmt.Sprintf("%s minimum height must not be negative", band))
	}
	if max != nil && *max < 0 {
		issues = append(issues, fmt.Sprintf("%s maximum height must not be negative", band))
	}

	if min != nil && max != nil && *min > *max {
		issues = append(issues, fmt.Sprintf("%s minimum height %v exceeds the maximum height %v", band, *min, *max))
	}
	if fixed != nil {
		if min != nil && *fixed < *min {
			issues = append(issues, fmt.Sprintf("%s height %v is below the minimum height %v", band, *fixed, *min))
		}
		if max != nil && *fixed > *max {
			issues = append(issues, fmt.Sprintf("%s height %v is above the maximum height %v", band, *fixed, *max))
		}
	}

	return issues
}

func joinTypes(kinds []ComponentType) string {
	parts := make([]string, len(kinds))
	for i, k := range kinds {
		parts[i] = string(k)
	}
	return strings.Join(parts, ", ")
}

// normalizeIssues trims, drops empties and deduplicates while preserving
// first-encountered order.
func normalizeIssues(issues []string) []string {
	if len(issues) == 0 {
		return nil
	}

	out := make([]string, 0, len(issues))
	seen := make(map[string]struct{}, len(issues))

	for _, issue := range issues {
		trimmed := strings.TrimSpace(issue)
		if trimmed == "" {
			continue
		}
		if _, exists := seen[trimmed]; exists {
			continue
		}
		seen[trimmed] = struct{}{}
		out = append(out, trimmed)
	}

	if len(out) == 0 {
		return nil
	}
	return out
}
