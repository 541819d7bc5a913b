// Package pongo backs the eval.Evaluator seam with a pongo2 template set,
// giving template strings the full engine syntax: filters, tags, arithmetic
// and comparisons beyond what eval/basic covers.
package pongo

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/flosch/pongo2/v6"

	"github.com/platen-io/go-platen/internal/convert"
	"github.com/platen-io/go-platen/pkg/eval"
)

// Option configures the evaluator before construction.
type Option func(*config)

type config struct {
	filters map[string]func(input any, param any) (any, error)
	globals map[string]any
}

// WithFilter registers a custom filter under name. Filters are engine-wide
// in pongo2; registering a name that already exists fails construction.
func WithFilter(name string, fn func(input any, param any) (any, error)) Option {
	return func(cfg *config) {
		name = strings.TrimSpace(name)
		if name == "" || fn == nil {
			return
		}
		if cfg.filters == nil {
			cfg.filters = make(map[string]func(any, any) (any, error))
		}
		cfg.filters[name] = fn
	}
}

// WithGlobals seeds values available to every evaluation, below the
// per-call variables.
func WithGlobals(data map[string]any) Option {
	return func(cfg *config) {
		if len(data) == 0 {
			return
		}
		if cfg.globals == nil {
			cfg.globals = make(map[string]any, len(data))
		}
		for key, value := range data {
			cfg.globals[strings.TrimSpace(key)] = value
		}
	}
}

// Evaluator renders template strings through a dedicated pongo2 set. Parsed
// templates are cached by source, so repeated spans across a document parse
// once.
type Evaluator struct {
	mu    sync.RWMutex
	set   *pongo2.TemplateSet
	cache map[string]*pongo2.Template
}

var _ eval.Evaluator = (*Evaluator)(nil)

// New constructs an Evaluator with the given options.
func New(options ...Option) (*Evaluator, error) {
	cfg := &config{}
	for _, opt := range options {
		if opt != nil {
			opt(cfg)
		}
	}

	e := &Evaluator{
		set:   pongo2.NewSet("platen", pongo2.DefaultLoader),
		cache: make(map[string]*pongo2.Template),
	}

	for name, fn := range cfg.filters {
		if err := registerFilter(name, fn); err != nil {
			return nil, err
		}
	}
	if len(cfg.globals) > 0 {
		if e.set.Globals == nil {
			e.set.Globals = make(pongo2.Context)
		}
		e.set.Globals.Update(pongo2.Context(cfg.globals))
	}

	return e, nil
}

// Interpolate renders raw as a pongo2 template. Strings without template
// syntax pass through untouched.
func (e *Evaluator) Interpolate(_ context.Context, raw string, vars map[string]any) (string, error) {
	if e == nil || e.set == nil {
		return "", errors.New("eval/pongo: evaluator is nil")
	}
	if !eval.HasPlaceholder(raw) && !strings.Contains(raw, "{%") {
		return raw, nil
	}
	return e.render(raw, vars)
}

// Value evaluates expr. Plain dotted paths resolve against vars directly so
// collections and maps keep their types; anything else renders through the
// engine and comes back as a string.
func (e *Evaluator) Value(ctx context.Context, expr string, vars map[string]any) (any, error) {
	expr = strings.TrimSpace(expr)
	if expr == "" {
		return nil, nil
	}
	if value, ok := convert.Lookup(vars, expr); ok {
		return value, nil
	}
	return e.Interpolate(ctx, "{{ "+expr+" }}", vars)
}

// Predicate evaluates expr under the engine's own truthiness via an if tag.
// A blank expression is true.
func (e *Evaluator) Predicate(_ context.Context, expr string, vars map[string]any) (bool, error) {
	expr = strings.TrimSpace(expr)
	if expr == "" {
		return true, nil
	}
	out, err := e.render("{% if "+expr+" %}1{% endif %}", vars)
	if err != nil {
		return false, err
	}
	return out == "1", nil
}

func (e *Evaluator) render(source string, vars map[string]any) (string, error) {
	tmpl, err := e.template(source)
	if err != nil {
		return "", err
	}

	e.mu.RLock()
	out, err := tmpl.Execute(pongo2.Context(vars))
	e.mu.RUnlock()

	if err != nil {
		return "", fmt.Errorf("eval/pongo: execute template: %w", err)
	}
	return out, nil
}

func (e *Evaluator) template(source string) (*pongo2.Template, error) {
	e.mu.RLock()
	if tmpl, ok := e.cache[source]; ok {
		e.mu.RUnlock()
		return tmpl, nil
	}
	e.mu.RUnlock()

	e.mu.Lock()
	defer e.mu.Unlock()

	if tmpl, ok := e.cache[source]; ok {
		return tmpl, nil
	}

	tmpl, err := e.set.FromString(source)
	if err != nil {
		return nil, fmt.Errorf("eval/pongo: parse template: %w", err)
	}
	e.cache[source] = tmpl
	return tmpl, nil
}

func registerFilter(name string, fn func(input any, param any) (any, error)) error {
	filter := func(in *pongo2.Value, param *pongo2.Value) (*pongo2.Value, *pongo2.Error) {
		var paramVal any
		if param != nil {
			paramVal = param.Interface()
		}
		result, err := fn(in.Interface(), paramVal)
		if err != nil {
			return nil, &pongo2.Error{Sender: "custom_filter", OrigError: err}
		}
		return pongo2.AsValue(result), nil
	}

	if pongo2.FilterExists(name) {
		return fmt.Errorf("eval/pongo: filter %q already exists", name)
	}
	if err := pongo2.RegisterFilter(name, filter); err != nil {
		return fmt.Errorf("eval/pongo: register filter %q: %w", name, err)
	}
	return nil
}
