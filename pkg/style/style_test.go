package style_test

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/platen-io/go-platen/pkg/style"
)

func fptr(v float64) *float64 { return &v }
func sptr(v string) *string   { return &v }

func TestMerge_TextAndAlignmentInherit(t *testing.T) {
	parent := &style.Properties{
		FontFamily:      sptr("Inter"),
		FontSize:        fptr(12),
		Color:           sptr("#111111"),
		TextAlign:       sptr(style.AlignJustify),
		AlignHorizontal: sptr(style.AlignCenter),
		AlignVertical:   sptr(style.AlignMiddle),
	}

	t.Run("unset child inherits", func(t *testing.T) {
		got := style.Merge(&style.Properties{}, parent)
		if got.FontSize == nil || *got.FontSize != 12 {
			t.Fatalf("fontSize = %v, want 12", got.FontSize)
		}
		if got.FontFamily == nil || *got.FontFamily != "Inter" {
			t.Fatalf("fontFamily = %v, want Inter", got.FontFamily)
		}
		if got.AlignHorizontal == nil || *got.AlignHorizontal != style.AlignCenter {
			t.Fatalf("alignHorizontal = %v, want center", got.AlignHorizontal)
		}
	})

	t.Run("set child wins", func(t *testing.T) {
		child := &style.Properties{FontSize: fptr(14), Color: sptr("#ff0000")}
		got := style.Merge(child, parent)
		if *got.FontSize != 14 {
			t.Fatalf("fontSize = %v, want 14", *got.FontSize)
		}
		if *got.Color != "#ff0000" {
			t.Fatalf("color = %v, want #ff0000", *got.Color)
		}
		// Unset text fields still fall through to the parent.
		if got.FontFamily == nil || *got.FontFamily != "Inter" {
			t.Fatalf("fontFamily = %v, want Inter", got.FontFamily)
		}
	})
}

func TestMerge_NonInheritingGroupsIgnoreParent(t *testing.T) {
	parents := []*style.Properties{
		nil,
		{},
		{
			Padding:         fptr(20),
			PaddingTop:      fptr(5),
			BackgroundColor: sptr("#eeeeee"),
			BorderWidth:     fptr(3),
			Opacity:         fptr(0.5),
			Width:           fptr(300),
			MinHeight:       fptr(40),
		},
	}

	child := &style.Properties{Padding: fptr(8), Width: fptr(120)}

	for i, parent := range parents {
		got := style.Merge(child, parent)

		want := style.Edges{Top: 8, Right: 8, Bottom: 8, Left: 8}
		if diff := cmp.Diff(want, got.EffectivePadding()); diff != "" {
			t.Fatalf("parent %d: padding mismatch (-want +got):\n%s", i, diff)
		}
		if got.BackgroundColor != nil {
			t.Fatalf("parent %d: backgroundColor leaked from parent: %v", i, *got.BackgroundColor)
		}
		if got.BorderWidth != nil || got.Opacity != nil {
			t.Fatalf("parent %d: visual fields leaked from parent", i)
		}
		if *got.Width != 120 {
			t.Fatalf("parent %d: width = %v, want 120", i, *got.Width)
		}
		if got.MinHeight != nil {
			t.Fatalf("parent %d: minHeight leaked from parent", i)
		}
	}
}

func TestMerge_DoesNotAliasInputs(t *testing.T) {
	child := &style.Properties{FontSize: fptr(10), Padding: fptr(4)}
	parent := &style.Properties{FontFamily: sptr("Georgia")}

	got := style.Merge(child, parent)
	*got.FontSize = 99
	*got.Padding = 99
	*got.FontFamily = "mutated"

	if *child.FontSize != 10 || *child.Padding != 4 {
		t.Fatalf("merge aliased child pointers: fontSize=%v padding=%v", *child.FontSize, *child.Padding)
	}
	if *parent.FontFamily != "Georgia" {
		t.Fatalf("merge aliased parent pointer: fontFamily=%v", *parent.FontFamily)
	}
}

func TestClone_Independent(t *testing.T) {
	orig := &style.Properties{
		FontFamily: sptr("Inter"),
		FontSize:   fptr(11),
		Padding:    fptr(6),
		Width:      fptr(200),
	}

	clone := orig.Clone()
	if diff := cmp.Diff(orig, clone); diff != "" {
		t.Fatalf("clone mismatch (-want +got):\n%s", diff)
	}

	*clone.FontSize = 77
	*clone.Padding = 77
	if *orig.FontSize != 11 || *orig.Padding != 6 {
		t.Fatalf("mutating clone changed original: fontSize=%v padding=%v", *orig.FontSize, *orig.Padding)
	}

	var nilProps *style.Properties
	if nilProps.Clone() != nil {
		t.Fatal("clone of nil should be nil")
	}
}

func TestEffectivePadding_Precedence(t *testing.T) {
	tests := []struct {
		name  string
		props *style.Properties
		want  style.Edges
	}{
		{
			name:  "nil style",
			props: nil,
			want:  style.Edges{},
		},
		{
			name:  "unset resolves to zero",
			props: &style.Properties{},
			want:  style.Edges{},
		},
		{
			name:  "uniform fills all sides",
			props: &style.Properties{Padding: fptr(10)},
			want:  style.Edges{Top: 10, Right: 10, Bottom: 10, Left: 10},
		},
		{
			name: "axes override uniform",
			props: &style.Properties{
				Padding:           fptr(10),
				PaddingHorizontal: fptr(4),
				PaddingVertical:   fptr(2),
			},
			want: style.Edges{Top: 2, Right: 4, Bottom: 2, Left: 4},
		},
		{
			name: "sides override axes and uniform",
			props: &style.Properties{
				Padding:           fptr(10),
				PaddingHorizontal: fptr(4),
				PaddingTop:        fptr(1),
				PaddingLeft:       fptr(7),
			},
			want: style.Edges{Top: 1, Right: 4, Bottom: 10, Left: 7},
		},
		{
			name:  "side alone leaves others zero",
			props: &style.Properties{PaddingBottom: fptr(12)},
			want:  style.Edges{Bottom: 12},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if diff := cmp.Diff(tc.want, tc.props.EffectivePadding()); diff != "" {
				t.Fatalf("padding mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestEffectiveBorder_Precedence(t *testing.T) {
	tests := []struct {
		name  string
		props *style.Properties
		want  style.Edges
	}{
		{
			name:  "unset resolves to zero",
			props: &style.Properties{},
			want:  style.Edges{},
		},
		{
			name:  "uniform width",
			props: &style.Properties{BorderWidth: fptr(1)},
			want:  style.Edges{Top: 1, Right: 1, Bottom: 1, Left: 1},
		},
		{
			name: "per-side overrides uniform",
			props: &style.Properties{
				BorderWidth:  fptr(1),
				BorderBottom: fptr(3),
			},
			want: style.Edges{Top: 1, Right: 1, Bottom: 3, Left: 1},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if diff := cmp.Diff(tc.want, tc.props.EffectiveBorder()); diff != "" {
				t.Fatalf("border mismatch (-want +got):\n%s", diff)
			}
		})
	}
}
