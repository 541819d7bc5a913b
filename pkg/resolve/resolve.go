// Package resolve walks a validated template and produces the tree a
// compositor consumes: visibility decided, repeat bindings expanded, styles
// merged to their effective values, section info propagated, and textual
// properties interpolated. The reserved page and section spellings stay
// verbatim because only the compositor knows their values.
package resolve

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/platen-io/go-platen/internal/convert"
	"github.com/platen-io/go-platen/internal/labels"
	"github.com/platen-io/go-platen/pkg/content"
	"github.com/platen-io/go-platen/pkg/eval"
	"github.com/platen-io/go-platen/pkg/eval/basic"
	"github.com/platen-io/go-platen/pkg/layout"
	"github.com/platen-io/go-platen/pkg/pageexpr"
	"github.com/platen-io/go-platen/pkg/render"
	"github.com/platen-io/go-platen/pkg/style"
)

// ValidationError reports the structural issues that stopped a resolve
// before any node work started.
type ValidationError struct {
	Issues []string
}

func (e *ValidationError) Error() string {
	return "resolve: template failed validation: " + strings.Join(e.Issues, "; ")
}

// Option configures a Resolver.
type Option func(*Resolver)

// WithEvaluator sets the evaluator handling non-reserved expressions.
func WithEvaluator(ev eval.Evaluator) Option {
	return func(r *Resolver) {
		if ev != nil {
			r.evaluator = ev
		}
	}
}

// WithRegistry resolves against a custom component registry. Trees holding
// types the registry does not know fail node by node.
func WithRegistry(reg *layout.Registry) Option {
	return func(r *Resolver) {
		if reg != nil {
			r.registry = reg
		}
	}
}

// WithContentNormalization toggles markdown conversion and HTML
// sanitization on content leaves. Enabled by default.
func WithContentNormalization(enabled bool) Option {
	return func(r *Resolver) {
		r.normalize = enabled
	}
}

// Resolver turns a template plus a render context into the compositor-ready
// tree. The zero options default to the basic evaluator, the built-in
// component registry and content normalization.
type Resolver struct {
	evaluator eval.Evaluator
	registry  *layout.Registry
	normalize bool
}

// New builds a Resolver.
func New(opts ...Option) *Resolver {
	r := &Resolver{
		evaluator: basic.New(),
		registry:  layout.DefaultRegistry(),
		normalize: true,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(r)
		}
	}
	return r
}

// state carries the per-pass counters shared across slots.
type state struct {
	sections int
}

// ResolveTemplate validates tpl, then resolves every populated slot against
// rc. The input tree is never mutated; the returned template holds fresh
// nodes whose styles are the effective merges and whose string properties
// are interpolated, with reserved page and section expressions untouched.
// A nil rc resolves against an empty context.
func (r *Resolver) ResolveTemplate(ctx context.Context, tpl *layout.Template, rc *render.Context) (*layout.Template, error) {
	if tpl == nil {
		return nil, errors.New("resolve: template is required")
	}
	if issues := tpl.Validate(); len(issues) > 0 {
		return nil, &ValidationError{Issues: issues}
	}
	if rc == nil {
		rc = render.NewContext()
	}

	out := &layout.Template{Meta: tpl.Meta, Page: tpl.Page}
	st := &state{}
	for _, ref := range tpl.Slots() {
		slotRC := rc.CreateChildContext(nil)
		nodes, err := r.resolveNode(ctx, ref.Node, slotRC, st)
		if err != nil {
			return nil, fmt.Errorf("resolve: slot %s: %w", ref.Slot, err)
		}
		out.SetSlotNode(ref.Slot, groupNodes(nodes))
	}
	return out, nil
}

// ResolveNode resolves a standalone subtree, outside the five-slot
// aggregate. Repeat expansion can produce several roots; more than one is
// grouped under an implicit column.
func (r *Resolver) ResolveNode(ctx context.Context, node layout.Node, rc *render.Context) (layout.Node, error) {
	if rc == nil {
		rc = render.NewContext()
	}
	nodes, err := r.resolveNode(ctx, node, rc, &state{})
	if err != nil {
		return nil, fmt.Errorf("resolve: %w", err)
	}
	return groupNodes(nodes), nil
}

// resolveNode applies the per-node pipeline: visibility gate, repeat
// expansion, conditional unwrapping, then single-node resolution. The
// returned slice holds zero nodes for dropped subtrees and one per repeat
// iteration otherwise.
func (r *Resolver) resolveNode(ctx context.Context, node layout.Node, rc *render.Context, st *state) ([]layout.Node, error) {
	if node == nil {
		return nil, nil
	}
	meta := node.Meta()

	if expr := meta.VisibleWhen; expr != "" {
		visible, err := r.evaluator.Predicate(ctx, expr, rc.GetAllVariables())
		if err != nil {
			return nil, fmt.Errorf("%s: visibility: %w", nodeLabel(node), err)
		}
		if !visible {
			return nil, nil
		}
	}

	if rep := meta.Repeat; rep != nil {
		return r.expandRepeat(ctx, node, rep, rc, st)
	}

	if w, ok := node.(*layout.Wrapper); ok && isConditional(w.Kind) {
		return r.resolveConditional(ctx, w, rc, st)
	}

	resolved, err := r.resolveSingle(ctx, node, rc, st)
	if err != nil {
		return nil, err
	}
	if resolved == nil {
		return nil, nil
	}
	return []layout.Node{resolved}, nil
}

// expandRepeat resolves the bound collection and emits one copy of the node
// per element, each under a derived context carrying the iteration
// variables. A binding that fails, is nil, or is not a slice expands to
// zero copies.
func (r *Resolver) expandRepeat(ctx context.Context, node layout.Node, rep *layout.Repeat, rc *render.Context, st *state) ([]layout.Node, error) {
	bound, err := r.evaluator.Value(ctx, rep.Bind, rc.GetAllVariables())
	if err != nil {
		return nil, nil
	}
	items, ok := convert.Slice(bound)
	if !ok {
		return nil, nil
	}

	var out []layout.Node
	for i, item := range items {
		iter := rc.CreateChildContext(nil)
		iter.SetupRepeatIteration(i, len(items), item, rep.As, rep.IndexAs)

		dup := node.Clone()
		dm := dup.Meta()
		dm.Repeat = nil
		dm.VisibleWhen = ""

		resolved, err := r.resolveNode(ctx, dup, iter, st)
		if err != nil {
			return nil, err
		}
		out = append(out, resolved...)
	}
	return out, nil
}

// resolveConditional decides a show-if, hide-if or fallback wrapper and
// unwraps it: the resolved tree carries the child, never the wrapper. A
// fallback whose watched expression cannot be read keeps its child, since
// missing data is exactly what a fallback covers.
func (r *Resolver) resolveConditional(ctx context.Context, w *layout.Wrapper, rc *render.Context, st *state) ([]layout.Node, error) {
	keep := true
	vars := rc.GetAllVariables()

	switch w.Kind {
	case layout.TypeShowIf:
		if expr := strings.TrimSpace(w.Props.String(layout.PropWhen, "")); expr != "" {
			visible, err := r.evaluator.Predicate(ctx, expr, vars)
			if err != nil {
				return nil, fmt.Errorf("%s: condition: %w", nodeLabel(w), err)
			}
			keep = visible
		}
	case layout.TypeHideIf:
		if expr := strings.TrimSpace(w.Props.String(layout.PropWhen, "")); expr != "" {
			hidden, err := r.evaluator.Predicate(ctx, expr, vars)
			if err != nil {
				return nil, fmt.Errorf("%s: condition: %w", nodeLabel(w), err)
			}
			keep = !hidden
		}
	case layout.TypeFallback:
		if expr := strings.TrimSpace(w.Props.String(layout.PropFor, "")); expr != "" {
			watched, err := r.evaluator.Value(ctx, expr, vars)
			if err == nil {
				keep = !convert.Truthy(watched)
			}
		}
	}

	if !keep || w.Child == nil {
		return nil, nil
	}

	childRC := rc
	if w.Style != nil {
		childRC = rc.CreateChildContext(w.Style)
	}
	return r.resolveNode(ctx, w.Child, childRC, st)
}

// resolveSingle produces the resolved copy of one node: effective style,
// interpolated properties, normalized content, section info for section
// subtrees, and recursively resolved children.
func (r *Resolver) resolveSingle(ctx context.Context, node layout.Node, rc *render.Context, st *state) (layout.Node, error) {
	kind := node.Type()
	if _, err := r.registry.Get(kind); err != nil {
		return nil, fmt.Errorf("%s: unregistered component type", nodeLabel(node))
	}
	meta := node.Meta()

	props, err := r.resolveProps(ctx, meta.Props, rc)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", nodeLabel(node), err)
	}

	childRC := rc
	if meta.Style != nil {
		childRC = rc.CreateChildContext(meta.Style)
	}

	if kind == layout.TypeSection {
		if childRC == rc {
			childRC = rc.CreateChildContext(nil)
		}
		st.sections++
		name := strings.TrimSpace(props.String(layout.PropName, ""))
		title := strings.TrimSpace(props.String(layout.PropTitle, ""))
		if title == "" {
			title = labels.Display(name)
		}
		childRC.Section = render.SectionInfo{
			Name:  name,
			Title: title,
			Level: rc.Section.Level + 1,
			Index: st.sections,
		}
	}

	if r.normalize {
		switch kind {
		case layout.TypeMarkdown:
			if src := props.String(layout.PropText, ""); src != "" {
				html, err := content.MarkdownHTML(src)
				if err != nil {
					return nil, fmt.Errorf("%s: markdown: %w", nodeLabel(node), err)
				}
				if props == nil {
					props = layout.PropertyBag{}
				}
				props[layout.PropHTML] = content.SanitizeHTML(html)
			}
		case layout.TypeHTML:
			if raw := props.String(layout.PropHTML, ""); raw != "" {
				props[layout.PropHTML] = content.SanitizeHTML(raw)
			}
		}
	}

	outMeta := layout.NodeMeta{
		ID:    meta.ID,
		Props: props,
		Style: style.Merge(meta.Style, rc.EffectiveStyle()),
	}

	switch n := node.(type) {
	case *layout.Container:
		children, err := r.resolveChildren(ctx, n.Children, childRC, st)
		if err != nil {
			return nil, err
		}
		return &layout.Container{NodeMeta: outMeta, Kind: n.Kind, Children: children}, nil
	case *layout.Wrapper:
		kids, err := r.resolveNode(ctx, n.Child, childRC, st)
		if err != nil {
			return nil, err
		}
		return &layout.Wrapper{NodeMeta: outMeta, Kind: n.Kind, Child: groupNodes(kids)}, nil
	default:
		return &layout.Leaf{NodeMeta: outMeta, Kind: kind}, nil
	}
}

func (r *Resolver) resolveChildren(ctx context.Context, children []layout.Node, rc *render.Context, st *state) ([]layout.Node, error) {
	var out []layout.Node
	for _, child := range children {
		resolved, err := r.resolveNode(ctx, child, rc, st)
		if err != nil {
			return nil, err
		}
		out = append(out, resolved...)
	}
	return out, nil
}

// resolveProps interpolates every string anywhere in the bag, descending
// into nested slices and maps so structured properties like table column
// definitions resolve too.
func (r *Resolver) resolveProps(ctx context.Context, props layout.PropertyBag, rc *render.Context) (layout.PropertyBag, error) {
	if len(props) == 0 {
		return nil, nil
	}
	vars := rc.GetAllVariables()
	out := make(layout.PropertyBag, len(props))
	for key, value := range props {
		resolved, err := r.resolveValue(ctx, value, vars)
		if err != nil {
			return nil, fmt.Errorf("prop %s: %w", key, err)
		}
		out[key] = resolved
	}
	return out, nil
}

func (r *Resolver) resolveValue(ctx context.Context, value any, vars map[string]any) (any, error) {
	switch v := value.(type) {
	case string:
		return r.resolveString(ctx, v, vars)
	case []any:
		out := make([]any, len(v))
		for i, item := range v {
			resolved, err := r.resolveValue(ctx, item, vars)
			if err != nil {
				return nil, err
			}
			out[i] = resolved
		}
		return out, nil
	case map[string]any:
		out := make(map[string]any, len(v))
		for key, item := range v {
			resolved, err := r.resolveValue(ctx, item, vars)
			if err != nil {
				return nil, err
			}
			out[key] = resolved
		}
		return out, nil
	default:
		return value, nil
	}
}

// resolveString interpolates one string property. Strings without reserved
// spans go to the evaluator whole, keeping its full template semantics.
// Strings mixing reserved spans with other content resolve span by span:
// literal text verbatim, reserved spans untouched, everything else
// interpolated.
func (r *Resolver) resolveString(ctx context.Context, s string, vars map[string]any) (string, error) {
	if !eval.HasPlaceholder(s) {
		return s, nil
	}

	spans := eval.Placeholders(s)
	reserved := false
	if pageexpr.ContainsAny(s) {
		for _, span := range spans {
			if _, ok := pageexpr.Classify(span.Expr); ok {
				reserved = true
				break
			}
		}
	}

	if !reserved {
		return r.evaluator.Interpolate(ctx, s, vars)
	}

	var b strings.Builder
	last := 0
	for _, span := range spans {
		b.WriteString(s[last:span.Start])
		if _, ok := pageexpr.Classify(span.Expr); ok {
			b.WriteString(span.Raw)
		} else {
			resolved, err := r.evaluator.Interpolate(ctx, span.Raw, vars)
			if err != nil {
				return "", err
			}
			b.WriteString(resolved)
		}
		last = span.End
	}
	b.WriteString(s[last:])
	return b.String(), nil
}

func groupNodes(nodes []layout.Node) layout.Node {
	switch len(nodes) {
	case 0:
		return nil
	case 1:
		return nodes[0]
	default:
		return layout.NewContainer(layout.TypeColumn, nodes...)
	}
}

func isConditional(kind layout.ComponentType) bool {
	switch kind {
	case layout.TypeShowIf, layout.TypeHideIf, layout.TypeFallback:
		return true
	default:
		return false
	}
}

func nodeLabel(node layout.Node) string {
	if id := node.Meta().ID; id != "" {
		return fmt.Sprintf("%s %q", node.Type(), id)
	}
	return string(node.Type())
}
