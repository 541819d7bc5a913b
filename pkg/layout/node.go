// Package layout defines the declarative node tree of a print-document
// template: component types grouped into categories, the three node shapes
// those categories dictate (container, wrapper, leaf), page settings, the
// five-slot template aggregate, and its structural validation. The tree
// declares structure and constraints only; pagination and drawing belong to
// a compositor.
package layout

import (
	"github.com/platen-io/go-platen/internal/convert"
	"github.com/platen-io/go-platen/pkg/style"
)

// Node is one vertex of the layout tree. The concrete shape is one of
// Container, Wrapper or Leaf, keyed by the component's category, so a leaf
// carrying children is unrepresentable.
type Node interface {
	// Type returns the component kind tag.
	Type() ComponentType
	// Meta returns the fields shared by every shape.
	Meta() *NodeMeta
	// EffectiveChildren unifies traversal: the children list for
	// containers, a singleton child for wrappers, empty for leaves.
	EffectiveChildren() []Node
	// Clone duplicates the subtree. Property bags are copied per node
	// (fresh maps, same values); styles are deep copies.
	Clone() Node
}

// NodeMeta carries the fields every node has regardless of shape.
type NodeMeta struct {
	// ID optionally names the node for tooling and error reporting.
	ID string `json:"id,omitempty"`
	// Props is the component's open property bag.
	Props PropertyBag `json:"props,omitempty"`
	// Style is the node's partial style; nil means fully inherited.
	Style *style.Properties `json:"style,omitempty"`
	// VisibleWhen is an expression deciding whether the node renders.
	VisibleWhen string `json:"visibleWhen,omitempty"`
	// Repeat duplicates the node once per element of a bound collection.
	Repeat *Repeat `json:"repeat,omitempty"`
}

// Repeat binds a node to a collection: the node renders once per element,
// with the element and its position exposed as scope variables.
type Repeat struct {
	// Bind is the expression yielding the collection.
	Bind string `json:"bind"`
	// As names the element variable; empty means "item".
	As string `json:"as,omitempty"`
	// IndexAs names the position variable; empty means "index".
	IndexAs string `json:"indexAs,omitempty"`
}

func (r *Repeat) clone() *Repeat {
	if r == nil {
		return nil
	}
	out := *r
	return &out
}

func (m NodeMeta) clone() NodeMeta {
	return NodeMeta{
		ID:          m.ID,
		Props:       m.Props.Clone(),
		Style:       m.Style.Clone(),
		VisibleWhen: m.VisibleWhen,
		Repeat:      m.Repeat.clone(),
	}
}

// Container is the list-shaped node: column, row, stack, grid, table parts.
type Container struct {
	NodeMeta
	Kind     ComponentType
	Children []Node
}

// Wrapper is the single-child node used by every wrapper category.
type Wrapper struct {
	NodeMeta
	Kind  ComponentType
	Child Node
}

// Leaf is the childless content node: text, image, divider, page break.
type Leaf struct {
	NodeMeta
	Kind ComponentType
}

// NewContainer builds a container node of the given kind.
func NewContainer(kind ComponentType, children ...Node) *Container {
	return &Container{Kind: kind, Children: children}
}

// NewWrapper builds a wrapper node of the given kind around child.
func NewWrapper(kind ComponentType, child Node) *Wrapper {
	return &Wrapper{Kind: kind, Child: child}
}

// NewLeaf builds a leaf node of the given kind.
func NewLeaf(kind ComponentType) *Leaf {
	return &Leaf{Kind: kind}
}

// Text builds a text leaf with its content in the property bag.
func Text(content string) *Leaf {
	return &Leaf{Kind: TypeText, NodeMeta: NodeMeta{Props: PropertyBag{PropText: content}}}
}

func (c *Container) Type() ComponentType { return c.Kind }
func (c *Container) Meta() *NodeMeta     { return &c.NodeMeta }

func (c *Container) EffectiveChildren() []Node { return c.Children }

func (c *Container) Clone() Node {
	out := &Container{NodeMeta: c.NodeMeta.clone(), Kind: c.Kind}
	if len(c.Children) > 0 {
		out.Children = make([]Node, len(c.Children))
		for i, child := range c.Children {
			out.Children[i] = child.Clone()
		}
	}
	return out
}

func (w *Wrapper) Type() ComponentType { return w.Kind }
func (w *Wrapper) Meta() *NodeMeta     { return &w.NodeMeta }

func (w *Wrapper) EffectiveChildren() []Node {
	if w.Child == nil {
		return nil
	}
	return []Node{w.Child}
}

func (w *Wrapper) Clone() Node {
	out := &Wrapper{NodeMeta: w.NodeMeta.clone(), Kind: w.Kind}
	if w.Child != nil {
		out.Child = w.Child.Clone()
	}
	return out
}

func (l *Leaf) Type() ComponentType { return l.Kind }
func (l *Leaf) Meta() *NodeMeta     { return &l.NodeMeta }

func (l *Leaf) EffectiveChildren() []Node { return nil }

func (l *Leaf) Clone() Node {
	return &Leaf{NodeMeta: l.NodeMeta.clone(), Kind: l.Kind}
}

// PropertyBag is the open, string-keyed property map on every node. Typed
// accessors convert explicitly and fall back to the caller's default; they
// never fail on missing or mistyped values.
type PropertyBag map[string]any

// Clone returns a fresh map holding the same values. Values themselves are
// not deep-copied.
func (b PropertyBag) Clone() PropertyBag {
	if b == nil {
		return nil
	}
	out := make(PropertyBag, len(b))
	for k, v := range b {
		out[k] = v
	}
	return out
}

// Has reports whether the key is present.
func (b PropertyBag) Has(key string) bool {
	_, ok := b[key]
	return ok
}

// String returns the property as a string, or def when absent or not text.
func (b PropertyBag) String(key, def string) string {
	v, ok := b[key]
	if !ok {
		return def
	}
	s, ok := convert.String(v)
	if !ok {
		return def
	}
	return s
}

// Float returns the property as a float64, or def when absent or
// non-numeric.
func (b PropertyBag) Float(key string, def float64) float64 {
	v, ok := b[key]
	if !ok {
		return def
	}
	f, ok := convert.Float(v)
	if !ok {
		return def
	}
	return f
}

// Int returns the property as an int, or def when absent or non-numeric.
func (b PropertyBag) Int(key string, def int) int {
	v, ok := b[key]
	if !ok {
		return def
	}
	i, ok := convert.Int(v)
	if !ok {
		return def
	}
	return i
}

// Bool returns the property as a bool, or def when absent or not bool-ish.
func (b PropertyBag) Bool(key string, def bool) bool {
	v, ok := b[key]
	if !ok {
		return def
	}
	parsed, ok := convert.Bool(v)
	if !ok {
		return def
	}
	return parsed
}
