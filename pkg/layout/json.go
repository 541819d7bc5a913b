package layout

import (
	"encoding/json"

	"github.com/platen-io/go-platen/pkg/style"
)

// nodeJSON is the marshal-only wire shape shared by the three node kinds.
// Decoding a definition back into nodes is owned by the definition package,
// which enforces category/shape agreement.
type nodeJSON struct {
	Type        ComponentType     `json:"type"`
	ID          string            `json:"id,omitempty"`
	Props       PropertyBag       `json:"props,omitempty"`
	Style       *style.Properties `json:"style,omitempty"`
	VisibleWhen string            `json:"visibleWhen,omitempty"`
	Repeat      *Repeat           `json:"repeat,omitempty"`
	Children    []Node            `json:"children,omitempty"`
	Child       Node              `json:"child,omitempty"`
}

// MarshalJSON emits the container with its children list.
func (c *Container) MarshalJSON() ([]byte, error) {
	return json.Marshal(nodeJSON{
		Type:        c.Kind,
		ID:          c.ID,
		Props:       c.Props,
		Style:       c.Style,
		VisibleWhen: c.VisibleWhen,
		Repeat:      c.Repeat,
		Children:    c.Children,
	})
}

// MarshalJSON emits the wrapper with its single child.
func (w *Wrapper) MarshalJSON() ([]byte, error) {
	return json.Marshal(nodeJSON{
		Type:        w.Kind,
		ID:          w.ID,
		Props:       w.Props,
		Style:       w.Style,
		VisibleWhen: w.VisibleWhen,
		Repeat:      w.Repeat,
		Child:       w.Child,
	})
}

// MarshalJSON emits the leaf without child fields.
func (l *Leaf) MarshalJSON() ([]byte, error) {
	return json.Marshal(nodeJSON{
		Type:        l.Kind,
		ID:          l.ID,
		Props:       l.Props,
		Style:       l.Style,
		VisibleWhen: l.VisibleWhen,
		Repeat:      l.Repeat,
	})
}
