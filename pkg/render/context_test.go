package render_test

import (
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/platen-io/go-platen/pkg/render"
	"github.com/platen-io/go-platen/pkg/style"
)

func sptr(s string) *string { return &s }

func TestVariables_CaseInsensitiveLookup(t *testing.T) {
	ctx := render.NewContext(render.WithVariables(map[string]any{
		"CustomerName": "Acme GmbH",
	}))

	for _, name := range []string{"CustomerName", "customername", "CUSTOMERNAME", " customerName "} {
		got, ok := ctx.GetVariable(name)
		if !ok {
			t.Fatalf("GetVariable(%q) not found", name)
		}
		if got != "Acme GmbH" {
			t.Errorf("GetVariable(%q) = %v, want %q", name, got, "Acme GmbH")
		}
	}

	if _, ok := ctx.GetVariable("customer"); ok {
		t.Error("GetVariable(customer) found, want miss")
	}
	if _, ok := ctx.GetVariable("   "); ok {
		t.Error("GetVariable of blank name found, want miss")
	}
}

func TestSetVariable_BlankNameIgnored(t *testing.T) {
	ctx := render.NewContext()
	ctx.SetVariable("  ", "junk")

	if _, ok := ctx.GetVariable(" "); ok {
		t.Error("blank variable name should not be stored")
	}
}

func TestScopes_ShadowingAndRelease(t *testing.T) {
	ctx := render.NewContext(render.WithVariables(map[string]any{"total": 100}))

	release := ctx.EnterScope()
	ctx.SetVariable("Total", 25)

	if got, _ := ctx.GetVariable("total"); got != 25 {
		t.Errorf("inner scope lookup = %v, want 25", got)
	}

	inner := ctx.EnterScope()
	ctx.SetVariable("total", 7)
	if got, _ := ctx.GetVariable("TOTAL"); got != 7 {
		t.Errorf("innermost lookup = %v, want 7", got)
	}
	inner()

	if got, _ := ctx.GetVariable("total"); got != 25 {
		t.Errorf("after popping innermost = %v, want 25", got)
	}
	release()

	if got, _ := ctx.GetVariable("total"); got != 100 {
		t.Errorf("after releasing all scopes = %v, want 100", got)
	}
}

func TestPopScope_EmptyStackIsNoOp(t *testing.T) {
	ctx := render.NewContext(render.WithVariables(map[string]any{"kept": true}))

	ctx.PopScope()
	ctx.PopScope()

	if got, ok := ctx.GetVariable("kept"); !ok || got != true {
		t.Errorf("root variable after stray pops = %v (found %v), want true", got, ok)
	}
}

func TestSetVariable_WritesInnermostScope(t *testing.T) {
	ctx := render.NewContext()

	release := ctx.EnterScope()
	ctx.SetVariable("draft", true)
	release()

	if _, ok := ctx.GetVariable("draft"); ok {
		t.Error("scope-local variable survived PopScope")
	}

	ctx.SetVariable("draft", false)
	if got, _ := ctx.GetVariable("draft"); got != false {
		t.Errorf("root write after pop = %v, want false", got)
	}
}

func TestSetupRepeatIteration(t *testing.T) {
	tests := []struct {
		name      string
		index     int
		count     int
		itemName  string
		indexName string
		wantItem  string
		wantIdx   string
		wantFirst bool
		wantLast  bool
	}{
		{name: "first of three, default names", index: 0, count: 3, wantItem: "item", wantIdx: "index", wantFirst: true},
		{name: "middle of three", index: 1, count: 3, wantItem: "item", wantIdx: "index"},
		{name: "last of three", index: 2, count: 3, wantItem: "item", wantIdx: "index", wantLast: true},
		{name: "single element is first and last", index: 0, count: 1, wantItem: "item", wantIdx: "index", wantFirst: true, wantLast: true},
		{name: "custom names", index: 1, count: 2, itemName: "line", indexName: "lineNo", wantItem: "line", wantIdx: "lineNo", wantLast: true},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			ctx := render.NewContext()
			release := ctx.EnterScope()
			defer release()

			ctx.SetupRepeatIteration(tc.index, tc.count, "payload", tc.itemName, tc.indexName)

			if got, _ := ctx.GetVariable(tc.wantItem); got != "payload" {
				t.Errorf("%s = %v, want payload", tc.wantItem, got)
			}
			if got, _ := ctx.GetVariable(tc.wantIdx); got != tc.index {
				t.Errorf("%s = %v, want %d", tc.wantIdx, got, tc.index)
			}
			if got, _ := ctx.GetVariable("isFirst"); got != tc.wantFirst {
				t.Errorf("isFirst = %v, want %v", got, tc.wantFirst)
			}
			if got, _ := ctx.GetVariable("isLast"); got != tc.wantLast {
				t.Errorf("isLast = %v, want %v", got, tc.wantLast)
			}

			idx, count, active := ctx.Repeating()
			if !active || idx != tc.index || count != tc.count {
				t.Errorf("Repeating() = (%d, %d, %v), want (%d, %d, true)", idx, count, active, tc.index, tc.count)
			}
		})
	}
}

func TestGetAllVariables_InnerScopeWins(t *testing.T) {
	ctx := render.NewContext(render.WithVariables(map[string]any{"Total": 100, "currency": "EUR"}))
	release := ctx.EnterScope()
	defer release()
	ctx.SetVariable("total", 25)

	all := ctx.GetAllVariables()

	if got := all["total"]; got != 25 {
		t.Errorf("all[total] = %v, want 25", got)
	}
	if _, clash := all["Total"]; clash {
		t.Error("shadowed root spelling leaked into the flattened map")
	}
	if got := all["currency"]; got != "EUR" {
		t.Errorf("all[currency] = %v, want EUR", got)
	}
}

func TestGetAllVariables_BuiltinsAuthoritative(t *testing.T) {
	ctx := render.NewContext(render.WithPageInfo(render.PageInfo{CurrentPage: 3, TotalPages: 10}))
	ctx.SetVariable("currentPage", 99)
	ctx.SetVariable("page", "not a page")

	all := ctx.GetAllVariables()

	if got := all["currentPage"]; got != 3 {
		t.Errorf("all[currentPage] = %v, want 3", got)
	}
	if got := all["totalPages"]; got != 10 {
		t.Errorf("all[totalPages] = %v, want 10", got)
	}
	page, ok := all["page"].(map[string]any)
	if !ok {
		t.Fatalf("all[page] = %T, want map[string]any", all["page"])
	}
	if got := page["currentPage"]; got != 3 {
		t.Errorf("page.currentPage = %v, want 3", got)
	}
}

func TestGetAllVariables_RepeatFlags(t *testing.T) {
	ctx := render.NewContext()

	all := ctx.GetAllVariables()
	if got := all["isFirst"]; got != false {
		t.Errorf("isFirst outside repeat = %v, want false", got)
	}
	if got := all["repeatCount"]; got != 0 {
		t.Errorf("repeatCount outside repeat = %v, want 0", got)
	}

	release := ctx.EnterScope()
	defer release()
	ctx.SetupRepeatIteration(0, 4, "row", "", "")

	all = ctx.GetAllVariables()
	if got := all["isFirst"]; got != true {
		t.Errorf("isFirst = %v, want true", got)
	}
	if got := all["isLast"]; got != false {
		t.Errorf("isLast = %v, want false", got)
	}
	if got := all["repeatIndex"]; got != 0 {
		t.Errorf("repeatIndex = %v, want 0", got)
	}
	if got := all["repeatCount"]; got != 4 {
		t.Errorf("repeatCount = %v, want 4", got)
	}
	if got := all["item"]; got != "row" {
		t.Errorf("item = %v, want row", got)
	}
}

func TestGetVariable_Builtins(t *testing.T) {
	ctx := render.NewContext(
		render.WithPageInfo(render.PageInfo{CurrentPage: 2, TotalPages: 5}),
		render.WithSectionInfo(render.SectionInfo{Name: "terms", Title: "Terms", Level: 1, Index: 3}),
	)

	got, ok := ctx.GetVariable("Section")
	if !ok {
		t.Fatal("GetVariable(Section) not found")
	}
	want := map[string]any{"name": "terms", "title": "Terms", "level": 1, "index": 3}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("section mismatch (-want +got):\n%s", diff)
	}

	if v, _ := ctx.GetVariable("currentPage"); v != 2 {
		t.Errorf("currentPage = %v, want 2", v)
	}

	ctx.SetVariable("totalPages", 42)
	if v, _ := ctx.GetVariable("totalPages"); v != 42 {
		t.Errorf("user binding should win over built-ins in lookup order, got %v", v)
	}
}

func TestCreateChildContext(t *testing.T) {
	parent := render.NewContext(
		render.WithVariables(map[string]any{"customer": "Acme"}),
		render.WithSectionInfo(render.SectionInfo{Name: "items", Level: 1}),
		render.WithBaseStyle(&style.Properties{FontFamily: sptr("Inter"), FontSize: fptr(10)}),
	)
	parentRelease := parent.EnterScope()
	defer parentRelease()
	parent.SetVariable("scopeOnly", true)

	child := parent.CreateChildContext(&style.Properties{Color: sptr("#333"), FontSize: fptr(12)})

	if got, _ := child.GetVariable("customer"); got != "Acme" {
		t.Errorf("child root variable = %v, want Acme", got)
	}
	if _, ok := child.GetVariable("scopeOnly"); ok {
		t.Error("parent scope binding leaked into the child context")
	}
	if child.Section.Name != "items" || child.Section.Level != 1 {
		t.Errorf("child section = %+v, want carried from parent", child.Section)
	}

	child.SetVariable("customer", "Globex")
	if got, _ := parent.GetVariable("customer"); got != "Acme" {
		t.Errorf("child write reached the parent: %v", got)
	}

	eff := child.EffectiveStyle()
	wantStyle := &style.Properties{
		FontFamily: sptr("Inter"),
		FontSize:   fptr(12),
		Color:      sptr("#333"),
	}
	if diff := cmp.Diff(wantStyle, eff); diff != "" {
		t.Errorf("effective style mismatch (-want +got):\n%s", diff)
	}
	if parent.EffectiveStyle().FontFamily == eff.FontFamily {
		t.Error("child style aliases the parent's field pointer")
	}
}

func TestCreateChildContext_CarriesRepeatState(t *testing.T) {
	parent := render.NewContext()
	release := parent.EnterScope()
	defer release()
	parent.SetupRepeatIteration(2, 5, "x", "", "")

	child := parent.CreateChildContext(nil)

	idx, count, active := child.Repeating()
	if !active || idx != 2 || count != 5 {
		t.Errorf("child Repeating() = (%d, %d, %v), want (2, 5, true)", idx, count, active)
	}
	if got, _ := child.GetVariable("isFirst"); got != false {
		t.Errorf("child isFirst built-in = %v, want false", got)
	}
}

func TestClone_IndependentIncludingScopes(t *testing.T) {
	src := render.NewContext(render.WithVariables(map[string]any{"a": 1}))
	src.PushScope()
	src.SetVariable("b", 2)

	dst := src.Clone()

	if got, _ := dst.GetVariable("b"); got != 2 {
		t.Errorf("clone lost scope binding: %v", got)
	}

	dst.SetVariable("b", 99)
	if got, _ := src.GetVariable("b"); got != 2 {
		t.Errorf("clone write reached the source: %v", got)
	}

	src.PopScope()
	if got, _ := dst.GetVariable("b"); got != 99 {
		t.Errorf("popping the source affected the clone: %v", got)
	}
}

func TestReset_ClearsEverything(t *testing.T) {
	ctx := render.NewContext(
		render.WithVariables(map[string]any{"a": 1}),
		render.WithPageInfo(render.PageInfo{CurrentPage: 7}),
		render.WithBaseStyle(&style.Properties{Color: sptr("#000")}),
	)
	ctx.PushScope()
	ctx.SetupRepeatIteration(1, 3, "x", "", "")

	ctx.Reset()

	if _, ok := ctx.GetVariable("a"); ok {
		t.Error("root variable survived Reset")
	}
	if ctx.Page.CurrentPage != 0 {
		t.Errorf("Page.CurrentPage = %d, want 0", ctx.Page.CurrentPage)
	}
	if ctx.EffectiveStyle() != nil {
		t.Error("inherited style survived Reset")
	}
	if _, _, active := ctx.Repeating(); active {
		t.Error("repeat state survived Reset")
	}

	ctx.SetVariable("fresh", true)
	if got, _ := ctx.GetVariable("fresh"); got != true {
		t.Errorf("context unusable after Reset: %v", got)
	}
}

func TestTypedGetters(t *testing.T) {
	ctx := render.NewContext(render.WithVariables(map[string]any{
		"name":    "Acme",
		"count":   float64(42),
		"ratio":   0.75,
		"flag":    "true",
		"columns": 3,
	}))

	if got := ctx.StringVar("name", "fallback"); got != "Acme" {
		t.Errorf("StringVar(name) = %q", got)
	}
	if got := ctx.StringVar("columns", "fallback"); got != "3" {
		t.Errorf("StringVar(columns) = %q, want stringified 3", got)
	}
	if got := ctx.StringVar("missing", "fallback"); got != "fallback" {
		t.Errorf("StringVar(missing) = %q, want fallback", got)
	}
	if got := ctx.IntVar("count", -1); got != 42 {
		t.Errorf("IntVar(count) = %d, want 42", got)
	}
	if got := ctx.IntVar("name", -1); got != -1 {
		t.Errorf("IntVar(name) = %d, want default", got)
	}
	if got := ctx.FloatVar("ratio", 0); got != 0.75 {
		t.Errorf("FloatVar(ratio) = %v, want 0.75", got)
	}
	if got := ctx.BoolVar("flag", false); got != true {
		t.Errorf("BoolVar(flag) = %v, want true", got)
	}
	if got := ctx.BoolVar("name", true); got != true {
		t.Errorf("BoolVar(name) = %v, want default true", got)
	}
}

func TestDecodeVariable(t *testing.T) {
	type address struct {
		Street string `json:"street"`
		City   string `json:"city"`
	}

	ctx := render.NewContext(render.WithVariables(map[string]any{
		"billing": map[string]any{"street": "Main St 1", "city": "Berlin"},
		"notes":   "plain text",
	}))

	var addr address
	if !ctx.DecodeVariable("billing", &addr) {
		t.Fatal("DecodeVariable(billing) failed")
	}
	want := address{Street: "Main St 1", City: "Berlin"}
	if diff := cmp.Diff(want, addr); diff != "" {
		t.Errorf("decoded mismatch (-want +got):\n%s", diff)
	}

	var wrong address
	if ctx.DecodeVariable("notes", &wrong) {
		t.Error("DecodeVariable of a plain string into a struct should fail")
	}
	if ctx.DecodeVariable("absent", &wrong) {
		t.Error("DecodeVariable of a missing name should fail")
	}
}

func TestPageInfo_ContentBox(t *testing.T) {
	p := render.PageInfo{
		PageWidth:  595.28,
		PageHeight: 841.89,
		MarginTop:  30, MarginRight: 20, MarginBottom: 30, MarginLeft: 20,
	}
	if got, want := p.ContentWidth(), 555.28; got != want {
		t.Errorf("ContentWidth() = %v, want %v", got, want)
	}
	if got, want := p.ContentHeight(), 781.89; got != want {
		t.Errorf("ContentHeight() = %v, want %v", got, want)
	}

	tiny := render.PageInfo{PageWidth: 10, MarginLeft: 8, MarginRight: 8}
	if got := tiny.ContentWidth(); got != 0 {
		t.Errorf("ContentWidth() with oversized margins = %v, want 0", got)
	}
}

func TestDocumentInfo_MetadataIsolatedInChild(t *testing.T) {
	parent := render.NewContext(render.WithDocumentInfo(render.DocumentInfo{
		Title:     "Invoice 1042",
		CreatedAt: time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC),
		Metadata:  map[string]string{"locale": "de-DE"},
	}))

	child := parent.CreateChildContext(nil)
	child.Document.Metadata["locale"] = "en-US"

	if got := parent.Document.Metadata["locale"]; got != "de-DE" {
		t.Errorf("parent metadata mutated through child: %q", got)
	}
}

func fptr(f float64) *float64 { return &f }
