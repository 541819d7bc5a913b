package basic_test

import (
	"context"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/platen-io/go-platen/pkg/eval/basic"
)

func testVars() map[string]any {
	return map[string]any{
		"customer": map[string]any{
			"name": "Acme GmbH",
			"vip":  true,
		},
		"status":       "draft",
		"count":        3,
		"ratio":        0.5,
		"enabled":      true,
		"disabled":     false,
		"empty":        "",
		"items":        []any{"a", "b"},
		"cta.headline": "Buy now",
	}
}

func TestValue(t *testing.T) {
	tests := []struct {
		name string
		expr string
		want any
	}{
		{name: "dotted lookup", expr: "customer.name", want: "Acme GmbH"},
		{name: "exact dotted key wins", expr: "cta.headline", want: "Buy now"},
		{name: "missing is nil", expr: "nope", want: nil},
		{name: "string literal", expr: `"hello"`, want: "hello"},
		{name: "single quoted literal", expr: "'hello world'", want: "hello world"},
		{name: "number literal", expr: "42", want: float64(42)},
		{name: "negative number", expr: "-1.5", want: float64(-1.5)},
		{name: "bool literal", expr: "TRUE", want: true},
		{name: "null literal", expr: "null", want: nil},
		{name: "equality true", expr: `status == "draft"`, want: true},
		{name: "equality false", expr: `status == "final"`, want: false},
		{name: "bare word literal", expr: "status == draft", want: true},
		{name: "inequality", expr: "count != 4", want: true},
		{name: "number vs numeric string", expr: `count == "3"`, want: true},
		{name: "bool against value", expr: "customer.vip == true", want: true},
		{name: "missing equals null", expr: "nope == null", want: true},
		{name: "present not null", expr: "status != null", want: true},
		{name: "and", expr: "enabled && count == 3", want: true},
		{name: "and short circuit", expr: "disabled && nope.deep.path", want: false},
		{name: "or", expr: "disabled || enabled", want: true},
		{name: "not", expr: "!disabled", want: true},
		{name: "not on empty string", expr: "!empty", want: true},
		{name: "parens", expr: "(disabled || enabled) && count == 3", want: true},
		{name: "collection lookup keeps type", expr: "items", want: []any{"a", "b"}},
		{name: "blank expression", expr: "   ", want: nil},
	}

	e := basic.New()
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, err := e.Value(context.Background(), tc.expr, testVars())
			if err != nil {
				t.Fatalf("Value(%q) error: %v", tc.expr, err)
			}
			if diff := cmp.Diff(tc.want, got); diff != "" {
				t.Errorf("Value(%q) mismatch (-want +got):\n%s", tc.expr, diff)
			}
		})
	}
}

func TestValue_SyntaxErrors(t *testing.T) {
	exprs := []string{
		"a = b",
		"a & b",
		"a | b",
		`"unterminated`,
		"(a == 1",
		"a ==",
		"a b",
		"1x",
	}

	e := basic.New()
	for _, expr := range exprs {
		if _, err := e.Value(context.Background(), expr, testVars()); err == nil {
			t.Errorf("Value(%q) succeeded, want error", expr)
		}
	}
}

func TestPredicate(t *testing.T) {
	tests := []struct {
		expr string
		want bool
	}{
		{expr: "", want: true},
		{expr: "   ", want: true},
		{expr: "enabled", want: true},
		{expr: "disabled", want: false},
		{expr: "empty", want: false},
		{expr: "items", want: true},
		{expr: "nope", want: false},
		{expr: `status == "draft" && customer.vip`, want: true},
		{expr: "count != 3", want: false},
	}

	e := basic.New()
	for _, tc := range tests {
		got, err := e.Predicate(context.Background(), tc.expr, testVars())
		if err != nil {
			t.Fatalf("Predicate(%q) error: %v", tc.expr, err)
		}
		if got != tc.want {
			t.Errorf("Predicate(%q) = %v, want %v", tc.expr, got, tc.want)
		}
	}
}

func TestInterpolate(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{name: "no spans pass through", in: "Grand Total", want: "Grand Total"},
		{name: "single span", in: "Dear {{ customer.name }},", want: "Dear Acme GmbH,"},
		{name: "multiple spans", in: "{{ status }}: {{ count }} items", want: "draft: 3 items"},
		{name: "missing renders empty", in: "[{{ nope }}]", want: "[]"},
		{name: "empty span renders empty", in: "a{{}}b", want: "ab"},
		{name: "expression span", in: "vip: {{ customer.vip == true }}", want: "vip: true"},
		{name: "number formatting", in: "ratio {{ ratio }}", want: "ratio 0.5"},
	}

	e := basic.New()
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, err := e.Interpolate(context.Background(), tc.in, testVars())
			if err != nil {
				t.Fatalf("Interpolate(%q) error: %v", tc.in, err)
			}
			if got != tc.want {
				t.Errorf("Interpolate(%q) = %q, want %q", tc.in, got, tc.want)
			}
		})
	}
}

func TestInterpolate_MalformedExpressionErrors(t *testing.T) {
	e := basic.New()
	if _, err := e.Interpolate(context.Background(), "x {{ a = b }} y", testVars()); err == nil {
		t.Error("Interpolate with malformed span succeeded, want error")
	}
}
