package testsupport

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/platen-io/go-platen/pkg/definition"
	"github.com/platen-io/go-platen/pkg/layout"
	"github.com/platen-io/go-platen/pkg/render"
	"github.com/platen-io/go-platen/pkg/style"
)

// MustParseTemplate parses a definition fixture. Testing helpers fail the
// test on error to keep contract tests concise.
func MustParseTemplate(t *testing.T, path string) *layout.Template {
	t.Helper()

	tpl, err := LoadTemplateFromPath(path)
	if err != nil {
		t.Fatalf("load template: %v", err)
	}
	return tpl
}

// LoadTemplateFromPath parses a definition fixture without requiring
// testing.T, allowing callers to wire fixtures in setup functions.
func LoadTemplateFromPath(path string) (*layout.Template, error) {
	if path == "" {
		return nil, errors.New("testsupport: template path is required")
	}
	tpl, err := definition.ParseFile(path)
	if err != nil {
		return nil, fmt.Errorf("testsupport: parse template: %w", err)
	}
	return tpl, nil
}

// MustReadFixture reads a fixture file and returns its raw bytes.
func MustReadFixture(t *testing.T, path string) []byte {
	t.Helper()

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read fixture: %v", err)
	}
	return data
}

// SampleTemplate returns a small invoice-like template that exercises the
// common shapes: a styled content column, a repeated line, a conditional
// wrapper and a footer with reserved page counters.
func SampleTemplate() *layout.Template {
	lines := layout.Text("{{ lineNo }}. {{ line.description }} x{{ line.qty }}")
	lines.Repeat = &layout.Repeat{Bind: "invoice.lines", As: "line", IndexAs: "lineNo"}

	vipNote := layout.NewWrapper(layout.TypeShowIf, layout.Text("Preferred customer rates applied."))
	vipNote.Props = layout.PropertyBag{layout.PropWhen: "customer.vip"}

	margin := 40.0
	family := "Helvetica"
	size := 10.0

	tpl := &layout.Template{
		Meta: layout.TemplateMeta{Title: "Sample Invoice", Version: "1.0.0"},
		Page: layout.PageSettings{Preset: "a4", Margin: &margin},
		Content: layout.NewContainer(layout.TypeColumn,
			layout.Text("Invoice {{ invoice.number }} for {{ customer.name }}"),
			lines,
			vipNote,
		),
		Footer: layout.Text("Page {{ currentPage }} of {{ totalPages }}"),
	}
	tpl.Content.Meta().Style = &style.Properties{FontFamily: &family, FontSize: &size}
	return tpl
}

// SampleData returns the variables SampleTemplate binds.
func SampleData() map[string]any {
	return map[string]any{
		"invoice": map[string]any{
			"number": "INV-1042",
			"lines": []any{
				map[string]any{"description": "Paper", "qty": 10},
				map[string]any{"description": "Toner", "qty": 2},
			},
		},
		"customer": map[string]any{"name": "Acme Co", "vip": true},
	}
}

// SampleContext returns a render context preloaded with SampleData and the
// snapshots SampleTemplate expects.
func SampleContext() *render.Context {
	return render.NewContext(
		render.WithVariables(SampleData()),
		render.WithTemplateInfo(render.TemplateInfo{Title: "Sample Invoice", Version: "1.0.0"}),
		render.WithDocumentInfo(render.DocumentInfo{Title: "Sample Invoice INV-1042"}),
	)
}

// Context returns a background context for tests.
func Context() context.Context {
	return context.Background()
}

// CompareGolden returns a diff string if the values differ.
func CompareGolden(want, got any) string {
	return cmp.Diff(want, got)
}

// MustReadGolden reads a golden file and returns its raw bytes.
func MustReadGolden(t *testing.T, path string) []byte {
	t.Helper()

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read golden: %v", err)
	}
	return data
}

// WriteMaybeGolden updates a golden file when UPDATE_GOLDENS is set. Returns
// true if the golden was written (test should exit early).
func WriteMaybeGolden(t *testing.T, path string, data []byte) bool {
	t.Helper()

	if os.Getenv("UPDATE_GOLDENS") == "" {
		return false
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir golden dir: %v", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write golden: %v", err)
	}
	return true
}
