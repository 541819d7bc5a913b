// Package render holds the per-render variable environment: a root scope, a
// stack of lexical scopes for loop- and block-local bindings, and the page,
// document, template and section snapshots exposed to expressions. One
// context belongs to one render descent; derived subtrees and repeat
// iterations get independent child copies, and finished contexts can be
// pooled after an explicit reset.
package render

import (
	"strings"

	"github.com/platen-io/go-platen/internal/convert"
	"github.com/platen-io/go-platen/pkg/style"
)

// entry keeps the author's spelling alongside the value; lookup keys are
// lowercased so variable names are case-insensitive.
type entry struct {
	name  string
	value any
}

type scope map[string]entry

// Context is the scoped variable store a render descent reads and mutates.
// It must not be shared by concurrent renders; use Clone, CreateChildContext
// or a Pool to give each render its own.
type Context struct {
	root   scope
	scopes []scope

	Page     PageInfo
	Document DocumentInfo
	Template TemplateInfo
	Section  SectionInfo

	inherited *style.Properties

	repeating   bool
	repeatIndex int
	repeatCount int
}

// Option configures a new Context.
type Option func(*Context)

// WithPageInfo seeds the page snapshot.
func WithPageInfo(info PageInfo) Option {
	return func(c *Context) { c.Page = info }
}

// WithDocumentInfo seeds the document snapshot.
func WithDocumentInfo(info DocumentInfo) Option {
	return func(c *Context) { c.Document = info }
}

// WithTemplateInfo seeds the template snapshot.
func WithTemplateInfo(info TemplateInfo) Option {
	return func(c *Context) { c.Template = info }
}

// WithSectionInfo seeds the section snapshot.
func WithSectionInfo(info SectionInfo) Option {
	return func(c *Context) { c.Section = info }
}

// WithVariables seeds root-scope variables.
func WithVariables(vars map[string]any) Option {
	return func(c *Context) {
		for name, value := range vars {
			c.SetVariable(name, value)
		}
	}
}

// WithBaseStyle seeds the inherited style the tree's root merges against.
func WithBaseStyle(s *style.Properties) Option {
	return func(c *Context) { c.SetBaseStyle(s) }
}

// NewContext builds a context with an empty scope stack.
func NewContext(opts ...Option) *Context {
	c := &Context{root: make(scope)}
	for _, opt := range opts {
		if opt != nil {
			opt(c)
		}
	}
	return c
}

// SetVariable writes to the innermost active scope, or to the root scope
// when no scope is pushed. Names are case-insensitive; blank names are
// ignored.
func (c *Context) SetVariable(name string, value any) {
	name = strings.TrimSpace(name)
	if name == "" {
		return
	}
	key := strings.ToLower(name)
	if len(c.scopes) > 0 {
		c.scopes[len(c.scopes)-1][key] = entry{name: name, value: value}
		return
	}
	c.root[key] = entry{name: name, value: value}
}

// GetVariable walks scopes innermost to outermost, then the root scope, then
// the built-ins. The second result is false when the name is bound nowhere.
func (c *Context) GetVariable(name string) (any, bool) {
	key := strings.ToLower(strings.TrimSpace(name))
	if key == "" {
		return nil, false
	}
	for i := len(c.scopes) - 1; i >= 0; i-- {
		if e, ok := c.scopes[i][key]; ok {
			return e.value, true
		}
	}
	if e, ok := c.root[key]; ok {
		return e.value, true
	}
	return c.builtin(key)
}

// PushScope opens a new innermost scope.
func (c *Context) PushScope() {
	c.scopes = append(c.scopes, make(scope))
}

// PopScope closes the innermost scope. Popping an empty stack is a no-op so
// scope guards stay safe on every exit path.
func (c *Context) PopScope() {
	if len(c.scopes) == 0 {
		return
	}
	c.scopes = c.scopes[:len(c.scopes)-1]
}

// EnterScope pushes a scope and returns its release function, meant for
// defer at the call site.
func (c *Context) EnterScope() func() {
	c.PushScope()
	return c.PopScope
}

// SetupRepeatIteration marks the context as repeating and binds the
// iteration variables into the current scope. Empty itemName and indexName
// default to "item" and "index". isFirst and isLast derive from the index
// and count.
func (c *Context) SetupRepeatIteration(index, count int, item any, itemName, indexName string) {
	if itemName == "" {
		itemName = "item"
	}
	if indexName == "" {
		indexName = "index"
	}

	c.repeating = true
	c.repeatIndex = index
	c.repeatCount = count

	c.SetVariable(itemName, item)
	c.SetVariable(indexName, index)
	c.SetVariable("isFirst", index == 0)
	c.SetVariable("isLast", index == count-1)
}

// Repeating reports whether the context is inside a repeat iteration, along
// with the iteration index and collection size.
func (c *Context) Repeating() (index, count int, active bool) {
	return c.repeatIndex, c.repeatCount, c.repeating
}

// builtinNames are injected into every evaluator payload and shadow user
// variables of the same (case-insensitive) name in GetAllVariables.
var builtinNames = map[string]bool{
	"page":        true,
	"document":    true,
	"template":    true,
	"section":     true,
	"isfirst":     true,
	"islast":      true,
	"repeatindex": true,
	"repeatcount": true,
	"currentpage": true,
	"totalpages":  true,
}

func (c *Context) builtin(key string) (any, bool) {
	switch key {
	case "page":
		return c.Page.asMap(), true
	case "document":
		return c.Document.asMap(), true
	case "template":
		return c.Template.asMap(), true
	case "section":
		return c.Section.asMap(), true
	case "isfirst":
		return c.repeating && c.repeatIndex == 0, true
	case "islast":
		return c.repeating && c.repeatIndex == c.repeatCount-1, true
	case "repeatindex":
		return c.repeatIndex, true
	case "repeatcount":
		return c.repeatCount, true
	case "currentpage":
		return c.Page.CurrentPage, true
	case "totalpages":
		return c.Page.TotalPages, true
	default:
		return nil, false
	}
}

// GetAllVariables flattens the environment for the external evaluator: root
// first, then scopes outer to inner (inner wins, case-insensitively), then
// the built-ins, which are authoritative for their names.
func (c *Context) GetAllVariables() map[string]any {
	merged := make(map[string]entry, len(c.root)+8)
	for key, e := range c.root {
		merged[key] = e
	}
	for _, sc := range c.scopes {
		for key, e := range sc {
			merged[key] = e
		}
	}

	out := make(map[string]any, len(merged)+len(builtinNames))
	for key, e := range merged {
		if builtinNames[key] {
			continue
		}
		out[e.name] = e.value
	}

	out["page"] = c.Page.asMap()
	out["document"] = c.Document.asMap()
	out["template"] = c.Template.asMap()
	out["section"] = c.Section.asMap()
	out["isFirst"] = c.repeating && c.repeatIndex == 0
	out["isLast"] = c.repeating && c.repeatIndex == c.repeatCount-1
	out["repeatIndex"] = c.repeatIndex
	out["repeatCount"] = c.repeatCount
	out["currentPage"] = c.Page.CurrentPage
	out["totalPages"] = c.Page.TotalPages

	return out
}

// EffectiveStyle returns the inherited style in force for the subtree this
// context serves. Callers must not mutate the result's pointers; derive a
// child context instead.
func (c *Context) EffectiveStyle() *style.Properties {
	return c.inherited
}

// SetBaseStyle replaces the inherited style in force for this context's
// subtree. The style is cloned, so pooled contexts can be reconfigured
// without sharing state with the caller.
func (c *Context) SetBaseStyle(s *style.Properties) {
	c.inherited = s.Clone()
}

// CreateChildContext derives the context a styled subtree or repeat
// iteration descends with: nodeStyle merged over the current inherited
// style, copied root variables and info snapshots, carried-over section and
// repeat state, and an empty scope stack.
func (c *Context) CreateChildContext(nodeStyle *style.Properties) *Context {
	return &Context{
		root:        c.copyRoot(),
		Page:        c.Page,
		Document:    c.Document.clone(),
		Template:    c.Template,
		Section:     c.Section,
		inherited:   style.Merge(nodeStyle, c.inherited),
		repeating:   c.repeating,
		repeatIndex: c.repeatIndex,
		repeatCount: c.repeatCount,
	}
}

// Clone returns a fully independent copy including every active scope, for
// branching renders off shared state.
func (c *Context) Clone() *Context {
	out := &Context{
		root:        c.copyRoot(),
		Page:        c.Page,
		Document:    c.Document.clone(),
		Template:    c.Template,
		Section:     c.Section,
		inherited:   c.inherited.Clone(),
		repeating:   c.repeating,
		repeatIndex: c.repeatIndex,
		repeatCount: c.repeatCount,
	}
	if len(c.scopes) > 0 {
		out.scopes = make([]scope, len(c.scopes))
		for i, sc := range c.scopes {
			copied := make(scope, len(sc))
			for key, e := range sc {
				copied[key] = e
			}
			out.scopes[i] = copied
		}
	}
	return out
}

// Reset clears variables and scopes and restores the info snapshots to their
// defaults, readying the context for pooled reuse.
func (c *Context) Reset() {
	c.root = make(scope)
	c.scopes = nil
	c.Page = PageInfo{}
	c.Document = DocumentInfo{}
	c.Template = TemplateInfo{}
	c.Section = SectionInfo{}
	c.inherited = nil
	c.repeating = false
	c.repeatIndex = 0
	c.repeatCount = 0
}

func (c *Context) copyRoot() scope {
	out := make(scope, len(c.root))
	for key, e := range c.root {
		out[key] = e
	}
	return out
}

// StringVar returns the variable as text: strings directly, anything else
// through generic stringification. Absent or nil values yield def.
func (c *Context) StringVar(name, def string) string {
	v, ok := c.GetVariable(name)
	if !ok || v == nil {
		return def
	}
	if s, ok := convert.String(v); ok {
		return s
	}
	return convert.Stringify(v)
}

// FloatVar returns the variable as a float64, or def when absent or not
// numeric.
func (c *Context) FloatVar(name string, def float64) float64 {
	v, ok := c.GetVariable(name)
	if !ok {
		return def
	}
	f, ok := convert.Float(v)
	if !ok {
		return def
	}
	return f
}

// IntVar returns the variable as an int, or def when absent or not numeric.
func (c *Context) IntVar(name string, def int) int {
	v, ok := c.GetVariable(name)
	if !ok {
		return def
	}
	i, ok := convert.Int(v)
	if !ok {
		return def
	}
	return i
}

// BoolVar returns the variable as a bool, or def when absent or not
// bool-ish.
func (c *Context) BoolVar(name string, def bool) bool {
	v, ok := c.GetVariable(name)
	if !ok {
		return def
	}
	b, ok := convert.Bool(v)
	if !ok {
		return def
	}
	return b
}

// DecodeVariable deserializes a structured variable into out (a non-nil
// pointer), reporting success. Missing names and shape mismatches return
// false.
func (c *Context) DecodeVariable(name string, out any) bool {
	v, ok := c.GetVariable(name)
	if !ok {
		return false
	}
	return convert.Decode(v, out)
}
