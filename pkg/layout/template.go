package layout

import "time"

// Slot names one of the five template regions.
type Slot string

const (
	SlotBackground Slot = "background"
	SlotHeader     Slot = "header"
	SlotContent    Slot = "content"
	SlotFooter     Slot = "footer"
	SlotForeground Slot = "foreground"
)

// NonPaginatingSlots are rendered once per page with no page-break loop of
// their own, so pagination-dependent components are invalid inside them.
func NonPaginatingSlots() []Slot {
	return []Slot{SlotBackground, SlotHeader, SlotFooter, SlotForeground}
}

// TemplateMeta is the descriptive metadata a definition carries.
type TemplateMeta struct {
	Title     string     `json:"title,omitempty"`
	Version   string     `json:"version,omitempty"`
	Author    string     `json:"author,omitempty"`
	Category  string     `json:"category,omitempty"`
	CreatedAt *time.Time `json:"createdAt,omitempty"`
	UpdatedAt *time.Time `json:"updatedAt,omitempty"`
}

// Template binds page settings and the five region subtrees. Content is the
// only paginating region and the only required one.
type Template struct {
	Meta TemplateMeta `json:"meta,omitempty"`
	Page PageSettings `json:"page,omitempty"`

	Background Node `json:"background,omitempty"`
	Header     Node `json:"header,omitempty"`
	Content    Node `json:"content,omitempty"`
	Footer     Node `json:"footer,omitempty"`
	Foreground Node `json:"foreground,omitempty"`
}

// SlotNode returns the subtree installed in the named slot, nil when empty.
func (t *Template) SlotNode(s Slot) Node {
	switch s {
	case SlotBackground:
		return t.Background
	case SlotHeader:
		return t.Header
	case SlotContent:
		return t.Content
	case SlotFooter:
		return t.Footer
	case SlotForeground:
		return t.Foreground
	default:
		return nil
	}
}

// SetSlotNode installs a subtree in the named slot. Unknown slots are
// ignored.
func (t *Template) SetSlotNode(s Slot, n Node) {
	switch s {
	case SlotBackground:
		t.Background = n
	case SlotHeader:
		t.Header = n
	case SlotContent:
		t.Content = n
	case SlotFooter:
		t.Footer = n
	case SlotForeground:
		t.Foreground = n
	}
}

// SlotRef pairs a slot name with its installed subtree.
type SlotRef struct {
	Slot Slot
	Node Node
}

// Slots returns the populated slots in canonical paint order: background,
// header, content, footer, foreground.
func (t *Template) Slots() []SlotRef {
	order := []Slot{SlotBackground, SlotHeader, SlotContent, SlotFooter, SlotForeground}
	out := make([]SlotRef, 0, len(order))
	for _, s := range order {
		if n := t.SlotNode(s); n != nil {
			out = append(out, SlotRef{Slot: s, Node: n})
		}
	}
	return out
}

// Clone duplicates the template, deep-copying every populated subtree.
func (t *Template) Clone() *Template {
	if t == nil {
		return nil
	}
	out := &Template{Meta: t.Meta, Page: t.Page}
	for _, ref := range t.Slots() {
		out.SetSlotNode(ref.Slot, ref.Node.Clone())
	}
	return out
}

// Walk visits n and every descendant in depth-first pre-order, stopping a
// branch when fn returns false.
func Walk(n Node, fn func(Node) bool) {
	if n == nil {
		return
	}
	if !fn(n) {
		return
	}
	for _, child := range n.EffectiveChildren() {
		Walk(child, fn)
	}
}

// ContainsPaginationDependent reports whether the subtree holds any
// pagination-dependent component.
func ContainsPaginationDependent(n Node) bool {
	found := false
	Walk(n, func(node Node) bool {
		if IsPaginationDependent(node.Type()) {
			found = true
			return false
		}
		return true
	})
	return found
}

// PaginationDependentTypes collects the pagination-dependent component kinds
// in the subtree, deduplicated in first-encountered order.
func PaginationDependentTypes(n Node) []ComponentType {
	var out []ComponentType
	seen := make(map[ComponentType]struct{})
	Walk(n, func(node Node) bool {
		t := node.Type()
		if IsPaginationDependent(t) {
			if _, dup := seen[t]; !dup {
				seen[t] = struct{}{}
				out = append(out, t)
			}
		}
		return true
	})
	return out
}
