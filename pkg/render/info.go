package render

import "time"

// PageInfo is the physical page snapshot the renderer advances as it paints:
// one-based page counters, page box in points, and margins.
type PageInfo struct {
	CurrentPage int
	TotalPages  int

	PageWidth  float64
	PageHeight float64

	MarginTop    float64
	MarginRight  float64
	MarginBottom float64
	MarginLeft   float64

	IsFirstPage bool
	IsLastPage  bool
}

// ContentWidth is the page width minus the horizontal margins, floored at
// zero.
func (p PageInfo) ContentWidth() float64 {
	w := p.PageWidth - p.MarginLeft - p.MarginRight
	if w < 0 {
		return 0
	}
	return w
}

// ContentHeight is the page height minus the vertical margins, floored at
// zero.
func (p PageInfo) ContentHeight() float64 {
	h := p.PageHeight - p.MarginTop - p.MarginBottom
	if h < 0 {
		return 0
	}
	return h
}

func (p PageInfo) asMap() map[string]any {
	return map[string]any{
		"currentPage":   p.CurrentPage,
		"totalPages":    p.TotalPages,
		"pageWidth":     p.PageWidth,
		"pageHeight":    p.PageHeight,
		"contentWidth":  p.ContentWidth(),
		"contentHeight": p.ContentHeight(),
		"marginTop":     p.MarginTop,
		"marginRight":   p.MarginRight,
		"marginBottom":  p.MarginBottom,
		"marginLeft":    p.MarginLeft,
		"isFirstPage":   p.IsFirstPage,
		"isLastPage":    p.IsLastPage,
	}
}

// DocumentInfo describes the document instance being produced.
type DocumentInfo struct {
	Title      string
	Author     string
	Subject    string
	CreatedAt  time.Time
	ModifiedAt time.Time
	Metadata   map[string]string
}

func (d DocumentInfo) clone() DocumentInfo {
	out := d
	if d.Metadata != nil {
		out.Metadata = make(map[string]string, len(d.Metadata))
		for k, v := range d.Metadata {
			out.Metadata[k] = v
		}
	}
	return out
}

func (d DocumentInfo) asMap() map[string]any {
	meta := map[string]string{}
	for k, v := range d.Metadata {
		meta[k] = v
	}
	return map[string]any{
		"title":      d.Title,
		"author":     d.Author,
		"subject":    d.Subject,
		"createdAt":  d.CreatedAt,
		"modifiedAt": d.ModifiedAt,
		"metadata":   meta,
	}
}

// TemplateInfo describes the template the document renders from.
type TemplateInfo struct {
	Title     string
	Version   string
	Author    string
	Category  string
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (t TemplateInfo) asMap() map[string]any {
	return map[string]any{
		"title":     t.Title,
		"version":   t.Version,
		"author":    t.Author,
		"category":  t.Category,
		"createdAt": t.CreatedAt,
		"updatedAt": t.UpdatedAt,
	}
}

// SectionInfo identifies the innermost enclosing section during a descent.
// The resolve pass numbers sections from one: Level is the nesting depth,
// Index the section's document-order ordinal. The zero value means "no
// enclosing section".
type SectionInfo struct {
	Name  string
	Title string
	Level int
	Index int
}

func (s SectionInfo) asMap() map[string]any {
	return map[string]any{
		"name":  s.Name,
		"title": s.Title,
		"level": s.Level,
		"index": s.Index,
	}
}
