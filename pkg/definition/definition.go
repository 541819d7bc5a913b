// Package definition decodes template definitions from JSON, JSONC or YAML
// into layout trees. Decoding enforces the component catalog: every node's
// type must be registered, and its child shape must match the component's
// category. Problems accumulate into a single ParseError so authors see
// every defect in one pass.
package definition

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/tidwall/jsonc"
	"gopkg.in/yaml.v3"

	"github.com/platen-io/go-platen/internal/labels"
	"github.com/platen-io/go-platen/pkg/layout"
	"github.com/platen-io/go-platen/pkg/style"
)

// ErrMissingContent marks a definition whose required content slot is
// absent or null.
var ErrMissingContent = errors.New("definition: content slot is required")

// ParseError collects every structural issue found while decoding a
// definition. Contract violations additionally carry their sentinel, so
// callers can test with errors.Is.
type ParseError struct {
	Issues []string

	sentinels []error
}

func (e *ParseError) Error() string {
	return "definition: invalid template: " + strings.Join(e.Issues, "; ")
}

func (e *ParseError) Unwrap() []error { return e.sentinels }

// Option configures parsing.
type Option func(*decoder)

// WithRegistry decodes against a custom component registry instead of the
// built-in catalog.
func WithRegistry(reg *layout.Registry) Option {
	return func(d *decoder) {
		if reg != nil {
			d.registry = reg
		}
	}
}

type decoder struct {
	registry  *layout.Registry
	issues    []string
	sentinels []error
}

func (d *decoder) issuef(format string, args ...any) {
	d.issues = append(d.issues, fmt.Sprintf(format, args...))
}

type templateDTO struct {
	Meta       *layout.TemplateMeta `json:"meta"`
	Page       *layout.PageSettings `json:"page"`
	Background *nodeDTO             `json:"background"`
	Header     *nodeDTO             `json:"header"`
	Content    *nodeDTO             `json:"content"`
	Footer     *nodeDTO             `json:"footer"`
	Foreground *nodeDTO             `json:"foreground"`
}

type nodeDTO struct {
	Type        string            `json:"type"`
	ID          string            `json:"id"`
	Props       map[string]any    `json:"props"`
	Style       *style.Properties `json:"style"`
	VisibleWhen string            `json:"visibleWhen"`
	Repeat      *layout.Repeat    `json:"repeat"`
	Children    []*nodeDTO        `json:"children"`
	Child       *nodeDTO          `json:"child"`
}

// Parse decodes a template definition. The input may be JSON, JSONC
// (comments and trailing commas) or YAML; the format is sniffed, not
// declared.
func Parse(data []byte, opts ...Option) (*layout.Template, error) {
	d := &decoder{registry: layout.DefaultRegistry()}
	for _, opt := range opts {
		if opt != nil {
			opt(d)
		}
	}

	dto, err := parseDocument(data)
	if err != nil {
		return nil, err
	}

	tpl := &layout.Template{}
	if dto.Meta != nil {
		tpl.Meta = *dto.Meta
	}
	if dto.Page != nil {
		tpl.Page = *dto.Page
	}
	tpl.Background = d.buildNode(dto.Background, "background")
	tpl.Header = d.buildNode(dto.Header, "header")
	tpl.Content = d.buildNode(dto.Content, "content")
	if dto.Content == nil {
		d.issuef("content slot is required")
		d.sentinels = append(d.sentinels, ErrMissingContent)
	}
	tpl.Footer = d.buildNode(dto.Footer, "footer")
	tpl.Foreground = d.buildNode(dto.Foreground, "foreground")

	if len(d.issues) > 0 {
		return nil, &ParseError{Issues: d.issues, sentinels: d.sentinels}
	}
	return tpl, nil
}

// ParseFile reads and decodes a definition file. A missing meta title falls
// back to a label derived from the file name.
func ParseFile(path string, opts ...Option) (*layout.Template, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("definition: read %s: %w", path, err)
	}

	tpl, err := Parse(data, opts...)
	if err != nil {
		return nil, fmt.Errorf("definition: file %s: %w", path, err)
	}
	if tpl.Meta.Title == "" {
		tpl.Meta.Title = labels.Display(templateName(path))
	}
	return tpl, nil
}

func templateName(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

func parseDocument(data []byte) (*templateDTO, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, errors.New("definition: empty input")
	}

	var dto templateDTO
	if err := json.Unmarshal(jsonc.ToJSON(data), &dto); err == nil {
		return &dto, nil
	}

	// YAML fallback, normalised through JSON so the json struct tags apply.
	var tree any
	if err := yaml.Unmarshal(data, &tree); err != nil {
		return nil, errors.New("definition: input is neither valid JSON nor YAML")
	}
	normalized, err := json.Marshal(tree)
	if err != nil {
		return nil, fmt.Errorf("definition: normalise yaml: %w", err)
	}
	if err := json.Unmarshal(normalized, &dto); err != nil {
		return nil, fmt.Errorf("definition: parse: %w", err)
	}
	return &dto, nil
}

func (d *decoder) buildNode(dto *nodeDTO, path string) layout.Node {
	if dto == nil {
		return nil
	}

	kind := layout.ComponentType(strings.TrimSpace(dto.Type))
	if kind == "" {
		d.issuef("%s: component type is required", path)
		return nil
	}
	desc, err := d.registry.Get(kind)
	if err != nil {
		d.issuef("%s: unknown component type %q", path, kind)
		return nil
	}

	meta := layout.NodeMeta{
		ID:          strings.TrimSpace(dto.ID),
		Props:       propertyBag(dto.Props),
		Style:       dto.Style.Clone(),
		VisibleWhen: strings.TrimSpace(dto.VisibleWhen),
		Repeat:      d.repeat(dto.Repeat, path),
	}

	switch desc.Shape() {
	case layout.ShapeChildren:
		if dto.Child != nil {
			d.issuef("%s: %s takes children, not a single child", path, kind)
		}
		children := make([]layout.Node, 0, len(dto.Children))
		for i, childDTO := range dto.Children {
			childPath := fmt.Sprintf("%s.children[%d]", path, i)
			if childDTO == nil {
				d.issuef("%s: component must not be null", childPath)
				continue
			}
			if child := d.buildNode(childDTO, childPath); child != nil {
				children = append(children, child)
			}
		}
		return &layout.Container{NodeMeta: meta, Kind: kind, Children: children}

	case layout.ShapeChild:
		if len(dto.Children) > 0 {
			d.issuef("%s: %s wraps a single child, not children", path, kind)
		}
		var child layout.Node
		if dto.Child != nil {
			child = d.buildNode(dto.Child, path+".child")
		}
		return &layout.Wrapper{NodeMeta: meta, Kind: kind, Child: child}

	default:
		if dto.Child != nil || len(dto.Children) > 0 {
			d.issuef("%s: %s does not take children", path, kind)
		}
		return &layout.Leaf{NodeMeta: meta, Kind: kind}
	}
}

func (d *decoder) repeat(r *layout.Repeat, path string) *layout.Repeat {
	if r == nil {
		return nil
	}
	out := *r
	out.Bind = strings.TrimSpace(out.Bind)
	if out.Bind == "" {
		d.issuef("%s: repeat requires a bind expression", path)
		return nil
	}
	out.As = strings.TrimSpace(out.As)
	out.IndexAs = strings.TrimSpace(out.IndexAs)
	return &out
}

func propertyBag(props map[string]any) layout.PropertyBag {
	if len(props) == 0 {
		return nil
	}
	bag := make(layout.PropertyBag, len(props))
	for key, value := range props {
		key = strings.TrimSpace(key)
		if key == "" || value == nil {
			continue
		}
		bag[key] = value
	}
	if len(bag) == 0 {
		return nil
	}
	return bag
}
