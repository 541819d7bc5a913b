package platen_test

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"testing/fstest"

	"github.com/google/go-cmp/cmp"
	gotheme "github.com/goliatone/go-theme"

	platen "github.com/platen-io/go-platen"
	"github.com/platen-io/go-platen/pkg/layout"
)

type stubSelector struct {
	selection *gotheme.Selection
	err       error
	calls     int
}

func (s *stubSelector) Select(name, variant string, _ ...gotheme.QueryOption) (*gotheme.Selection, error) {
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	return s.selection, nil
}

func printSelection() *gotheme.Selection {
	return &gotheme.Selection{
		Theme:   "acme-print",
		Variant: "default",
		Manifest: &gotheme.Manifest{
			Name: "acme-print",
			Tokens: map[string]string{
				"font.family": "Inter",
				"font.size":   "10",
				"page.margin": "48",
			},
		},
	}
}

func contentTemplate(nodes ...layout.Node) *layout.Template {
	return &layout.Template{
		Content: layout.NewContainer(layout.TypeColumn, nodes...),
	}
}

func textsOf(n layout.Node) []string {
	var out []string
	layout.Walk(n, func(node layout.Node) bool {
		if node.Type() == layout.TypeText {
			if s, ok := node.Meta().Props[layout.PropText].(string); ok {
				out = append(out, s)
			}
		}
		return true
	})
	return out
}

func TestEngine_ResolveDefinition(t *testing.T) {
	def := []byte(`{
		"meta": {"title": "Packing List", "version": "1.0.0"},
		"page": {"preset": "a4"},
		"content": {
			"type": "column",
			"children": [
				{"type": "text", "props": {"text": "Order {{ order.id }}"}},
				{
					"type": "text",
					"repeat": {"bind": "order.lines", "as": "line"},
					"props": {"text": "- {{ line }}"}
				}
			]
		}
	}`)

	engine := platen.New()
	out, err := engine.ResolveDefinition(context.Background(), def, map[string]any{
		"order": map[string]any{
			"id":    "SO-88",
			"lines": []any{"bolts", "nuts"},
		},
	})
	if err != nil {
		t.Fatalf("ResolveDefinition: %v", err)
	}

	want := []string{"Order SO-88", "- bolts", "- nuts"}
	if diff := cmp.Diff(want, textsOf(out.Content)); diff != "" {
		t.Errorf("resolved texts mismatch (-want +got):\n%s", diff)
	}
	if out.Meta.Title != "Packing List" {
		t.Errorf("Meta.Title = %q, want definition title", out.Meta.Title)
	}
}

func TestEngine_Resolve_TemplateBuiltinFallsBackToMeta(t *testing.T) {
	tpl := contentTemplate(layout.Text("{{ template.title }} v{{ template.version }}"))
	tpl.Meta = layout.TemplateMeta{Title: "Invoice", Version: "2.1.0"}

	out, err := platen.New().Resolve(context.Background(), tpl, nil)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}

	want := []string{"Invoice v2.1.0"}
	if diff := cmp.Diff(want, textsOf(out.Content)); diff != "" {
		t.Errorf("texts mismatch (-want +got):\n%s", diff)
	}
}

func TestEngine_Resolve_TemplateInfoOptionWins(t *testing.T) {
	tpl := contentTemplate(layout.Text("{{ template.title }} ({{ template.category }})"))
	tpl.Meta = layout.TemplateMeta{Title: "Invoice"}

	engine := platen.New(platen.WithTemplateInfo(platen.TemplateInfo{
		Title:    "Branded Invoice",
		Category: "finance",
	}))
	out, err := engine.Resolve(context.Background(), tpl, nil)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}

	want := []string{"Branded Invoice (finance)"}
	if diff := cmp.Diff(want, textsOf(out.Content)); diff != "" {
		t.Errorf("texts mismatch (-want +got):\n%s", diff)
	}
}

func TestEngine_Resolve_PageSnapshotFromSettings(t *testing.T) {
	margin := 40.0
	tpl := contentTemplate(layout.Text("{{ page.pageWidth }}x{{ page.pageHeight }} content {{ page.contentWidth }}"))
	tpl.Page = layout.PageSettings{Preset: "letter", Margin: &margin}

	out, err := platen.New().Resolve(context.Background(), tpl, nil)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}

	want := []string{"612x792 content 532"}
	if diff := cmp.Diff(want, textsOf(out.Content)); diff != "" {
		t.Errorf("texts mismatch (-want +got):\n%s", diff)
	}
}

func TestEngine_Resolve_PageInfoOptionWins(t *testing.T) {
	tpl := contentTemplate(layout.Text("{{ page.pageWidth }} wide"))
	tpl.Page = layout.PageSettings{Preset: "letter"}

	engine := platen.New(platen.WithPageInfo(platen.PageInfo{PageWidth: 100, PageHeight: 200}))
	out, err := engine.Resolve(context.Background(), tpl, nil)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}

	want := []string{"100 wide"}
	if diff := cmp.Diff(want, textsOf(out.Content)); diff != "" {
		t.Errorf("texts mismatch (-want +got):\n%s", diff)
	}
}

func TestEngine_Resolve_ThemeSelection(t *testing.T) {
	selector := &stubSelector{selection: printSelection()}
	engine := platen.New(platen.WithThemeSelector(selector, "acme-print", "default"))

	tpl := contentTemplate(layout.Text("hello"))
	out, err := engine.Resolve(context.Background(), tpl, nil)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}

	if selector.calls != 1 {
		t.Errorf("selector called %d times, want once at construction", selector.calls)
	}

	family := "Inter"
	size := 10.0
	wantStyle := &platen.Style{FontFamily: &family, FontSize: &size}
	got := out.Content.EffectiveChildren()[0].Meta().Style
	if diff := cmp.Diff(wantStyle, got); diff != "" {
		t.Errorf("leaf style mismatch (-want +got):\n%s", diff)
	}

	if out.Page.Margin == nil || *out.Page.Margin != 48 {
		t.Errorf("resolved page margin = %v, want theme default 48", out.Page.Margin)
	}
	if tpl.Page.Margin != nil {
		t.Error("input template page settings were mutated")
	}
}

func TestEngine_Resolve_BaseStyleOptionWinsOverTheme(t *testing.T) {
	selector := &stubSelector{selection: printSelection()}
	family := "Georgia"
	engine := platen.New(
		platen.WithThemeSelector(selector, "acme-print", "default"),
		platen.WithBaseStyle(&platen.Style{FontFamily: &family}),
	)

	out, err := engine.Resolve(context.Background(), contentTemplate(layout.Text("hi")), nil)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}

	size := 10.0
	wantStyle := &platen.Style{FontFamily: &family, FontSize: &size}
	got := out.Content.EffectiveChildren()[0].Meta().Style
	if diff := cmp.Diff(wantStyle, got); diff != "" {
		t.Errorf("leaf style mismatch (-want +got):\n%s", diff)
	}
}

func TestEngine_Resolve_SelectorErrorSurfaces(t *testing.T) {
	selector := &stubSelector{err: errors.New("manifest missing")}
	engine := platen.New(platen.WithThemeSelector(selector, "broken", ""))

	_, err := engine.Resolve(context.Background(), contentTemplate(layout.Text("x")), nil)
	if err == nil {
		t.Fatal("Resolve with failing selector succeeded, want error")
	}
	if !strings.Contains(err.Error(), `select theme "broken"`) {
		t.Errorf("error = %v, want theme selection failure", err)
	}
}

func TestEngine_Validate(t *testing.T) {
	engine := platen.New()

	if issues := engine.Validate(nil); len(issues) != 1 || issues[0] != "template is required" {
		t.Errorf("Validate(nil) = %v", issues)
	}

	if issues := engine.Validate(&layout.Template{}); len(issues) == 0 {
		t.Error("Validate of empty template returned no issues")
	}

	if issues := engine.Validate(contentTemplate(layout.Text("ok"))); len(issues) != 0 {
		t.Errorf("Validate of valid template = %v, want none", issues)
	}
}

func TestEngine_Resolve_NilTemplate(t *testing.T) {
	_, err := platen.New().Resolve(context.Background(), nil, nil)
	if err == nil {
		t.Fatal("Resolve with nil template succeeded, want error")
	}
	if !strings.Contains(err.Error(), "template is required") {
		t.Errorf("error = %v", err)
	}
}

func TestEngine_ConcurrentResolves(t *testing.T) {
	engine := platen.New()
	tpl := contentTemplate(layout.Text("Hello {{ name }}"))

	const workers = 8
	errs := make(chan error, workers)
	for i := 0; i < workers; i++ {
		go func(i int) {
			name := fmt.Sprintf("user-%d", i)
			out, err := engine.Resolve(context.Background(), tpl, map[string]any{"name": name})
			if err != nil {
				errs <- err
				return
			}
			got := textsOf(out.Content)
			if len(got) != 1 || got[0] != "Hello "+name {
				errs <- fmt.Errorf("worker %d: texts = %v", i, got)
				return
			}
			errs <- nil
		}(i)
	}

	for i := 0; i < workers; i++ {
		if err := <-errs; err != nil {
			t.Error(err)
		}
	}
}

func TestResolveTemplate_OneShot(t *testing.T) {
	out, err := platen.ResolveTemplate(context.Background(), contentTemplate(layout.Text("{{ who }}")), map[string]any{"who": "world"})
	if err != nil {
		t.Fatalf("ResolveTemplate: %v", err)
	}

	want := []string{"world"}
	if diff := cmp.Diff(want, textsOf(out.Content)); diff != "" {
		t.Errorf("texts mismatch (-want +got):\n%s", diff)
	}
}

func TestLoadLibrary(t *testing.T) {
	fsys := fstest.MapFS{
		"invoice.json": &fstest.MapFile{
			Data: []byte(`{"meta": {"title": "Invoice"}, "content": {"type": "column", "children": []}}`),
		},
	}

	lib, err := platen.LoadLibrary(fsys)
	if err != nil {
		t.Fatalf("LoadLibrary: %v", err)
	}

	tpl, ok := lib.Template("invoice")
	if !ok {
		t.Fatalf("library names = %v, want invoice", lib.Names())
	}
	if tpl.Meta.Title != "Invoice" {
		t.Errorf("Meta.Title = %q", tpl.Meta.Title)
	}
}
