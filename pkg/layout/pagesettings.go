package layout

import (
	"sort"
	"strings"

	"github.com/platen-io/go-platen/pkg/style"
)

// Orientation of the page.
type Orientation string

const (
	OrientationPortrait  Orientation = "portrait"
	OrientationLandscape Orientation = "landscape"
)

// Direction is the content flow direction.
type Direction string

const (
	DirectionLTR Direction = "ltr"
	DirectionRTL Direction = "rtl"
)

// PageSize is a page dimension pair in points.
type PageSize struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// DefaultPreset is the page size used when neither a preset nor explicit
// dimensions are given.
const DefaultPreset = "a4"

var pagePresets = map[string]PageSize{
	"a3":      {Width: 841.89, Height: 1190.55},
	"a4":      {Width: 595.28, Height: 841.89},
	"a5":      {Width: 419.53, Height: 595.28},
	"letter":  {Width: 612, Height: 792},
	"legal":   {Width: 612, Height: 1008},
	"tabloid": {Width: 792, Height: 1224},
}

// Presets returns the known page size preset names, sorted.
func Presets() []string {
	names := make([]string, 0, len(pagePresets))
	for name := range pagePresets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// PageSettings declares page geometry and per-page chrome constraints.
// Explicit width/height override the preset; landscape orientation swaps the
// resolved dimensions. Header and footer heights are either fixed or bounded
// by min/max, with fill flags claiming leftover vertical space.
type PageSettings struct {
	Preset      string      `json:"preset,omitempty"`
	Width       *float64    `json:"width,omitempty"`
	Height      *float64    `json:"height,omitempty"`
	Orientation Orientation `json:"orientation,omitempty"`

	// Margin is the uniform fallback refined by the per-side values.
	Margin       *float64 `json:"margin,omitempty"`
	MarginTop    *float64 `json:"marginTop,omitempty"`
	MarginRight  *float64 `json:"marginRight,omitempty"`
	MarginBottom *float64 `json:"marginBottom,omitempty"`
	MarginLeft   *float64 `json:"marginLeft,omitempty"`

	HeaderHeight    *float64 `json:"headerHeight,omitempty"`
	HeaderMinHeight *float64 `json:"headerMinHeight,omitempty"`
	HeaderMaxHeight *float64 `json:"headerMaxHeight,omitempty"`
	HeaderFill      bool     `json:"headerFill,omitempty"`

	FooterHeight    *float64 `json:"footerHeight,omitempty"`
	FooterMinHeight *float64 `json:"footerMinHeight,omitempty"`
	FooterMaxHeight *float64 `json:"footerMaxHeight,omitempty"`
	FooterFill      bool     `json:"footerFill,omitempty"`

	BackgroundColor string `json:"backgroundColor,omitempty"`

	// Continuous disables pagination: the document renders as one page of
	// unbounded height.
	Continuous bool `json:"continuous,omitempty"`

	Direction Direction `json:"direction,omitempty"`
}

// Size resolves the page dimensions: explicit values override the preset
// (unknown or empty presets fall back to A4), then landscape orientation
// swaps width and height.
func (p PageSettings) Size() PageSize {
	size, ok := pagePresets[strings.ToLower(strings.TrimSpace(p.Preset))]
	if !ok {
		size = pagePresets[DefaultPreset]
	}
	if p.Width != nil && *p.Width > 0 {
		size.Width = *p.Width
	}
	if p.Height != nil && *p.Height > 0 {
		size.Height = *p.Height
	}
	if p.Orientation == OrientationLandscape && size.Width < size.Height {
		size.Width, size.Height = size.Height, size.Width
	}
	return size
}

// Margins resolves the four margins, with the uniform value as fallback for
// unset sides. Unset resolves to zero.
func (p PageSettings) Margins() style.Edges {
	var e style.Edges
	if p.Margin != nil {
		e = style.Edges{Top: *p.Margin, Right: *p.Margin, Bottom: *p.Margin, Left: *p.Margin}
	}
	if p.MarginTop != nil {
		e.Top = *p.MarginTop
	}
	if p.MarginRight != nil {
		e.Right = *p.MarginRight
	}
	if p.MarginBottom != nil {
		e.Bottom = *p.MarginBottom
	}
	if p.MarginLeft != nil {
		e.Left = *p.MarginLeft
	}
	return e
}

func (p PageSettings) hasHeaderSizing() bool {
	return p.HeaderHeight != nil || p.HeaderMinHeight != nil || p.HeaderMaxHeight != nil
}

func (p PageSettings) hasFooterSizing() bool {
	return p.FooterHeight != nil || p.FooterMinHeight != nil || p.FooterMaxHeight != nil
}
