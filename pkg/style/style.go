// Package style defines the partial style property set attached to layout
// nodes and the merge rules that produce a node's effective style. Text and
// alignment properties inherit from ancestors when a node leaves them unset;
// spacing, visual and sizing properties never inherit and always reflect the
// node's own values.
package style

// Alignment values accepted by the alignment properties.
const (
	AlignLeft    = "left"
	AlignCenter  = "center"
	AlignRight   = "right"
	AlignJustify = "justify"

	AlignTop    = "top"
	AlignMiddle = "middle"
	AlignBottom = "bottom"
)

// Properties is a partial style: every field is optional, nil meaning
// "unset". Fields group into text, alignment, spacing, visual and sizing;
// only the first two groups participate in inheritance.
type Properties struct {
	// Text.
	FontFamily     *string  `json:"fontFamily,omitempty"`
	FontSize       *float64 `json:"fontSize,omitempty"`
	FontWeight     *string  `json:"fontWeight,omitempty"`
	FontStyle      *string  `json:"fontStyle,omitempty"`
	Color          *string  `json:"color,omitempty"`
	TextDecoration *string  `json:"textDecoration,omitempty"`
	LineHeight     *float64 `json:"lineHeight,omitempty"`
	LetterSpacing  *float64 `json:"letterSpacing,omitempty"`
	TextAlign      *string  `json:"textAlign,omitempty"`

	// Alignment of the node's content within its box.
	AlignHorizontal *string `json:"alignHorizontal,omitempty"`
	AlignVertical   *string `json:"alignVertical,omitempty"`

	// Spacing. Uniform padding is refined by per-axis values, which are
	// refined by per-side values; see EffectivePadding.
	Padding           *float64 `json:"padding,omitempty"`
	PaddingHorizontal *float64 `json:"paddingHorizontal,omitempty"`
	PaddingVertical   *float64 `json:"paddingVertical,omitempty"`
	PaddingTop        *float64 `json:"paddingTop,omitempty"`
	PaddingRight      *float64 `json:"paddingRight,omitempty"`
	PaddingBottom     *float64 `json:"paddingBottom,omitempty"`
	PaddingLeft       *float64 `json:"paddingLeft,omitempty"`

	// Visual.
	BackgroundColor *string  `json:"backgroundColor,omitempty"`
	BorderColor     *string  `json:"borderColor,omitempty"`
	BorderWidth     *float64 `json:"borderWidth,omitempty"`
	BorderTop       *float64 `json:"borderTop,omitempty"`
	BorderRight     *float64 `json:"borderRight,omitempty"`
	BorderBottom    *float64 `json:"borderBottom,omitempty"`
	BorderLeft      *float64 `json:"borderLeft,omitempty"`
	BorderRadius    *float64 `json:"borderRadius,omitempty"`
	Opacity         *float64 `json:"opacity,omitempty"`

	// Sizing, in points.
	Width     *float64 `json:"width,omitempty"`
	Height    *float64 `json:"height,omitempty"`
	MinWidth  *float64 `json:"minWidth,omitempty"`
	MinHeight *float64 `json:"minHeight,omitempty"`
	MaxWidth  *float64 `json:"maxWidth,omitempty"`
	MaxHeight *float64 `json:"maxHeight,omitempty"`
}

// Edges is a resolved per-side tuple, top/right/bottom/left in points.
type Edges struct {
	Top    float64 `json:"top"`
	Right  float64 `json:"right"`
	Bottom float64 `json:"bottom"`
	Left   float64 `json:"left"`
}

// Merge computes the effective style of a child rendered under parent.
// Text and alignment fields fall back to the parent when the child leaves
// them unset; spacing, visual and sizing fields come from the child alone.
// The result never aliases either input.
func Merge(child, parent *Properties) *Properties {
	c := child
	if c == nil {
		c = &Properties{}
	}
	p := parent
	if p == nil {
		p = &Properties{}
	}

	out := &Properties{}

	// Inheriting groups: child wins, parent fills gaps.
	out.FontFamily = inheritString(c.FontFamily, p.FontFamily)
	out.FontSize = inheritFloat(c.FontSize, p.FontSize)
	out.FontWeight = inheritString(c.FontWeight, p.FontWeight)
	out.FontStyle = inheritString(c.FontStyle, p.FontStyle)
	out.Color = inheritString(c.Color, p.Color)
	out.TextDecoration = inheritString(c.TextDecoration, p.TextDecoration)
	out.LineHeight = inheritFloat(c.LineHeight, p.LineHeight)
	out.LetterSpacing = inheritFloat(c.LetterSpacing, p.LetterSpacing)
	out.TextAlign = inheritString(c.TextAlign, p.TextAlign)
	out.AlignHorizontal = inheritString(c.AlignHorizontal, p.AlignHorizontal)
	out.AlignVertical = inheritString(c.AlignVertical, p.AlignVertical)

	// Non-inheriting groups: the parent is ignored entirely.
	out.Padding = copyFloat(c.Padding)
	out.PaddingHorizontal = copyFloat(c.PaddingHorizontal)
	out.PaddingVertical = copyFloat(c.PaddingVertical)
	out.PaddingTop = copyFloat(c.PaddingTop)
	out.PaddingRight = copyFloat(c.PaddingRight)
	out.PaddingBottom = copyFloat(c.PaddingBottom)
	out.PaddingLeft = copyFloat(c.PaddingLeft)

	out.BackgroundColor = copyString(c.BackgroundColor)
	out.BorderColor = copyString(c.BorderColor)
	out.BorderWidth = copyFloat(c.BorderWidth)
	out.BorderTop = copyFloat(c.BorderTop)
	out.BorderRight = copyFloat(c.BorderRight)
	out.BorderBottom = copyFloat(c.BorderBottom)
	out.BorderLeft = copyFloat(c.BorderLeft)
	out.BorderRadius = copyFloat(c.BorderRadius)
	out.Opacity = copyFloat(c.Opacity)

	out.Width = copyFloat(c.Width)
	out.Height = copyFloat(c.Height)
	out.MinWidth = copyFloat(c.MinWidth)
	out.MinHeight = copyFloat(c.MinHeight)
	out.MaxWidth = copyFloat(c.MaxWidth)
	out.MaxHeight = copyFloat(c.MaxHeight)

	return out
}

// Clone returns a value-identical copy sharing no pointers with p, so merged
// results and derived render contexts never alias mutable state.
func (p *Properties) Clone() *Properties {
	if p == nil {
		return nil
	}

	out := &Properties{}

	out.FontFamily = copyString(p.FontFamily)
	out.FontSize = copyFloat(p.FontSize)
	out.FontWeight = copyString(p.FontWeight)
	out.FontStyle = copyString(p.FontStyle)
	out.Color = copyString(p.Color)
	out.TextDecoration = copyString(p.TextDecoration)
	out.LineHeight = copyFloat(p.LineHeight)
	out.LetterSpacing = copyFloat(p.LetterSpacing)
	out.TextAlign = copyString(p.TextAlign)

	out.AlignHorizontal = copyString(p.AlignHorizontal)
	out.AlignVertical = copyString(p.AlignVertical)

	out.Padding = copyFloat(p.Padding)
	out.PaddingHorizontal = copyFloat(p.PaddingHorizontal)
	out.PaddingVertical = copyFloat(p.PaddingVertical)
	out.PaddingTop = copyFloat(p.PaddingTop)
	out.PaddingRight = copyFloat(p.PaddingRight)
	out.PaddingBottom = copyFloat(p.PaddingBottom)
	out.PaddingLeft = copyFloat(p.PaddingLeft)

	out.BackgroundColor = copyString(p.BackgroundColor)
	out.BorderColor = copyString(p.BorderColor)
	out.BorderWidth = copyFloat(p.BorderWidth)
	out.BorderTop = copyFloat(p.BorderTop)
	out.BorderRight = copyFloat(p.BorderRight)
	out.BorderBottom = copyFloat(p.BorderBottom)
	out.BorderLeft = copyFloat(p.BorderLeft)
	out.BorderRadius = copyFloat(p.BorderRadius)
	out.Opacity = copyFloat(p.Opacity)

	out.Width = copyFloat(p.Width)
	out.Height = copyFloat(p.Height)
	out.MinWidth = copyFloat(p.MinWidth)
	out.MinHeight = copyFloat(p.MinHeight)
	out.MaxWidth = copyFloat(p.MaxWidth)
	out.MaxHeight = copyFloat(p.MaxHeight)

	return out
}

// EffectivePadding resolves the padding fields into a per-side tuple.
// Precedence, least to most specific: uniform, per-axis, per-side. Unset
// resolves to zero.
func (p *Properties) EffectivePadding() Edges {
	var e Edges
	if p == nil {
		return e
	}
	if p.Padding != nil {
		e = Edges{Top: *p.Padding, Right: *p.Padding, Bottom: *p.Padding, Left: *p.Padding}
	}
	if p.PaddingHorizontal != nil {
		e.Right = *p.PaddingHorizontal
		e.Left = *p.PaddingHorizontal
	}
	if p.PaddingVertical != nil {
		e.Top = *p.PaddingVertical
		e.Bottom = *p.PaddingVertical
	}
	if p.PaddingTop != nil {
		e.Top = *p.PaddingTop
	}
	if p.PaddingRight != nil {
		e.Right = *p.PaddingRight
	}
	if p.PaddingBottom != nil {
		e.Bottom = *p.PaddingBottom
	}
	if p.PaddingLeft != nil {
		e.Left = *p.PaddingLeft
	}
	return e
}

// EffectiveBorder resolves border widths into a per-side tuple: the uniform
// width applies everywhere, per-side values override it. Unset resolves to
// zero.
func (p *Properties) EffectiveBorder() Edges {
	var e Edges
	if p == nil {
		return e
	}
	if p.BorderWidth != nil {
		e = Edges{Top: *p.BorderWidth, Right: *p.BorderWidth, Bottom: *p.BorderWidth, Left: *p.BorderWidth}
	}
	if p.BorderTop != nil {
		e.Top = *p.BorderTop
	}
	if p.BorderRight != nil {
		e.Right = *p.BorderRight
	}
	if p.BorderBottom != nil {
		e.Bottom = *p.BorderBottom
	}
	if p.BorderLeft != nil {
		e.Left = *p.BorderLeft
	}
	return e
}

func inheritString(child, parent *string) *string {
	if child != nil {
		return copyString(child)
	}
	return copyString(parent)
}

func inheritFloat(child, parent *float64) *float64 {
	if child != nil {
		return copyFloat(child)
	}
	return copyFloat(parent)
}

func copyString(v *string) *string {
	if v == nil {
		return nil
	}
	out := *v
	return &out
}

func copyFloat(v *float64) *float64 {
	if v == nil {
		return nil
	}
	out := *v
	return &out
}
