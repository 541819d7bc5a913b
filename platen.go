// Package platen is the template core behind a declarative print pipeline:
// it parses template definitions into a layout tree, validates them, and
// resolves them against caller data into the static tree a paginating
// compositor consumes. The root package bundles the subpackages behind an
// Engine plus a few type aliases, so most callers need a single import.
package platen

import (
	"context"
	"errors"
	"fmt"
	"io/fs"

	gotheme "github.com/goliatone/go-theme"

	"github.com/platen-io/go-platen/pkg/definition"
	"github.com/platen-io/go-platen/pkg/eval"
	"github.com/platen-io/go-platen/pkg/eval/basic"
	"github.com/platen-io/go-platen/pkg/layout"
	"github.com/platen-io/go-platen/pkg/render"
	"github.com/platen-io/go-platen/pkg/resolve"
	"github.com/platen-io/go-platen/pkg/style"
	"github.com/platen-io/go-platen/pkg/theme"
)

// Template aliases layout.Template, the five-slot tree both Resolve inputs
// and outputs use.
type Template = layout.Template

// Node aliases layout.Node for callers walking resolved trees.
type Node = layout.Node

// PageSettings aliases layout.PageSettings.
type PageSettings = layout.PageSettings

// Style aliases style.Properties, the selectively inherited style set.
type Style = style.Properties

// Evaluator aliases eval.Evaluator so custom expression engines can be
// injected without importing pkg/eval.
type Evaluator = eval.Evaluator

// DocumentInfo aliases render.DocumentInfo, the document snapshot exposed to
// expressions.
type DocumentInfo = render.DocumentInfo

// TemplateInfo aliases render.TemplateInfo.
type TemplateInfo = render.TemplateInfo

// PageInfo aliases render.PageInfo.
type PageInfo = render.PageInfo

// Option customises the engine configuration.
type Option func(*Engine)

// WithEvaluator injects the expression engine used for interpolation,
// visibility and repeat bindings.
func WithEvaluator(ev eval.Evaluator) Option {
	return func(e *Engine) {
		e.evaluator = ev
	}
}

// WithRegistry injects the component registry definitions and trees are
// checked against.
func WithRegistry(reg *layout.Registry) Option {
	return func(e *Engine) {
		e.registry = reg
	}
}

// WithThemeSelector registers a go-theme selector together with the theme
// name and variant to resolve. The selection's tokens feed the base style
// the tree inherits from and fill page settings the template leaves unset.
func WithThemeSelector(sel gotheme.ThemeSelector, name, variant string) Option {
	return func(e *Engine) {
		e.selector = sel
		e.themeName = name
		e.themeVariant = variant
	}
}

// WithDocumentInfo seeds the document snapshot every resolve exposes as the
// document built-in.
func WithDocumentInfo(info render.DocumentInfo) Option {
	return func(e *Engine) {
		e.docInfo = info
	}
}

// WithTemplateInfo seeds the template snapshot. Fields left zero fall back
// to the metadata of the template being resolved.
func WithTemplateInfo(info render.TemplateInfo) Option {
	return func(e *Engine) {
		e.tplInfo = info
	}
}

// WithPageInfo seeds the page snapshot, for callers that already know the
// final pagination. Without it the snapshot derives from the template's page
// settings with zero page counters.
func WithPageInfo(info render.PageInfo) Option {
	return func(e *Engine) {
		e.pageInfo = info
		e.pageInfoSet = true
	}
}

// WithBaseStyle sets the style the content tree inherits from. It wins over
// the theme's base style field by field.
func WithBaseStyle(s *style.Properties) Option {
	return func(e *Engine) {
		e.baseStyle = s.Clone()
	}
}

// WithContentNormalization toggles markdown-to-HTML conversion and HTML
// sanitisation during resolve. Enabled by default.
func WithContentNormalization(enabled bool) Option {
	return func(e *Engine) {
		e.normalize = enabled
	}
}

// Engine wires the definition parser, the resolver and the render-context
// machinery behind one construction call. Missing dependencies are filled
// with the built-in implementations. An engine constructed by New is safe
// for concurrent use; each resolve draws its context from an internal pool.
type Engine struct {
	evaluator eval.Evaluator
	registry  *layout.Registry

	selector     gotheme.ThemeSelector
	themeName    string
	themeVariant string
	selection    *gotheme.Selection
	themeStyle   *style.Properties

	docInfo     render.DocumentInfo
	tplInfo     render.TemplateInfo
	pageInfo    render.PageInfo
	pageInfoSet bool

	baseStyle *style.Properties
	normalize bool

	pool     *render.Pool
	resolver *resolve.Resolver

	initialiseErr   error
	defaultsApplied bool
}

// New constructs an Engine applying any provided options. Construction
// failures (an unresolvable theme, a bad token value) surface from the first
// Resolve call.
func New(options ...Option) *Engine {
	e := &Engine{
		normalize: true,
	}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(e)
	}
	e.applyDefaults()
	return e
}

func (e *Engine) applyDefaults() {
	if e.defaultsApplied {
		return
	}

	if e.evaluator == nil {
		e.evaluator = basic.New()
	}
	if e.registry == nil {
		e.registry = layout.DefaultRegistry()
	}
	if e.pool == nil {
		e.pool = render.NewPool()
	}
	e.resolver = resolve.New(
		resolve.WithEvaluator(e.evaluator),
		resolve.WithRegistry(e.registry),
		resolve.WithContentNormalization(e.normalize),
	)

	if e.selector != nil {
		sel, err := e.selector.Select(e.themeName, e.themeVariant)
		if err != nil {
			e.initialiseErr = fmt.Errorf("platen: select theme %q: %w", e.themeName, err)
		} else if sel != nil {
			base, err := theme.BaseStyle(sel)
			if err != nil {
				e.initialiseErr = fmt.Errorf("platen: %w", err)
			} else {
				e.selection = sel
				e.themeStyle = base
			}
		}
	}

	e.defaultsApplied = true
}

// Validate runs the structural template checks without resolving anything.
// The result is empty for a valid template.
func (e *Engine) Validate(tpl *layout.Template) []string {
	if tpl == nil {
		return []string{"template is required"}
	}
	return tpl.Validate()
}

// Resolve validates tpl and produces its resolved counterpart: data becomes
// the root variable scope, expressions evaluate, repeats expand, styles
// cascade, and reserved page expressions stay verbatim for the compositor.
// The input template is never mutated.
func (e *Engine) Resolve(ctx context.Context, tpl *layout.Template, data map[string]any) (*layout.Template, error) {
	if ctx == nil {
		return nil, errors.New("platen: context is required")
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := e.initialiseErr; err != nil {
		return nil, err
	}
	if !e.defaultsApplied {
		e.applyDefaults()
		if err := e.initialiseErr; err != nil {
			return nil, err
		}
	}
	if tpl == nil {
		return nil, errors.New("platen: template is required")
	}

	work := *tpl
	if e.selection != nil {
		if err := theme.ApplyPageDefaults(e.selection, &work.Page); err != nil {
			return nil, fmt.Errorf("platen: %w", err)
		}
	}

	rc := e.pool.Get()
	defer e.pool.Put(rc)
	e.configure(rc, &work, data)

	return e.resolver.ResolveTemplate(ctx, &work, rc)
}

// ResolveDefinition parses a raw JSON, JSONC or YAML definition and resolves
// it against data in one call.
func (e *Engine) ResolveDefinition(ctx context.Context, def []byte, data map[string]any) (*layout.Template, error) {
	if ctx == nil {
		return nil, errors.New("platen: context is required")
	}
	if err := e.initialiseErr; err != nil {
		return nil, err
	}
	if !e.defaultsApplied {
		e.applyDefaults()
		if err := e.initialiseErr; err != nil {
			return nil, err
		}
	}

	tpl, err := definition.Parse(def, definition.WithRegistry(e.registry))
	if err != nil {
		return nil, err
	}
	return e.Resolve(ctx, tpl, data)
}

// configure seeds a pooled context for one resolve: root variables from
// data, info snapshots from the engine options with template metadata as
// fallback, and the effective base style.
func (e *Engine) configure(rc *render.Context, tpl *layout.Template, data map[string]any) {
	for name, value := range data {
		rc.SetVariable(name, value)
	}

	rc.Document = e.docInfo
	rc.Template = e.templateInfo(tpl.Meta)

	if e.pageInfoSet {
		rc.Page = e.pageInfo
	} else {
		size := tpl.Page.Size()
		margins := tpl.Page.Margins()
		rc.Page = render.PageInfo{
			PageWidth:    size.Width,
			PageHeight:   size.Height,
			MarginTop:    margins.Top,
			MarginRight:  margins.Right,
			MarginBottom: margins.Bottom,
			MarginLeft:   margins.Left,
		}
	}

	if e.baseStyle != nil || e.themeStyle != nil {
		rc.SetBaseStyle(style.Merge(e.baseStyle, e.themeStyle))
	}
}

func (e *Engine) templateInfo(meta layout.TemplateMeta) render.TemplateInfo {
	info := e.tplInfo
	if info.Title == "" {
		info.Title = meta.Title
	}
	if info.Version == "" {
		info.Version = meta.Version
	}
	if info.Author == "" {
		info.Author = meta.Author
	}
	if info.Category == "" {
		info.Category = meta.Category
	}
	if info.CreatedAt.IsZero() && meta.CreatedAt != nil {
		info.CreatedAt = *meta.CreatedAt
	}
	if info.UpdatedAt.IsZero() && meta.UpdatedAt != nil {
		info.UpdatedAt = *meta.UpdatedAt
	}
	return info
}

// ResolveTemplate builds a one-shot engine and resolves tpl against data. It
// is the simplest entry point for callers that already hold a parsed
// template.
func ResolveTemplate(ctx context.Context, tpl *layout.Template, data map[string]any, options ...Option) (*layout.Template, error) {
	return New(options...).Resolve(ctx, tpl, data)
}

// ResolveDefinition parses a raw definition and resolves it against data,
// bypassing the template stage for callers that hold definition bytes.
func ResolveDefinition(ctx context.Context, def []byte, data map[string]any, options ...Option) (*layout.Template, error) {
	return New(options...).ResolveDefinition(ctx, def, data)
}

// ParseDefinition exposes the definition parser from the root package.
func ParseDefinition(def []byte) (*layout.Template, error) {
	return definition.Parse(def)
}

// Library aliases definition.Library, a set of templates keyed by name.
type Library = definition.Library

// LoadLibrary reads every definition under fsys into a named template
// library while keeping the loader implementation hidden from consumers.
func LoadLibrary(fsys fs.FS, options ...definition.Option) (*definition.Library, error) {
	return definition.LoadFS(fsys, options...)
}
