package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/AlecAivazis/survey/v2"
	"github.com/AlecAivazis/survey/v2/terminal"
	gotheme "github.com/goliatone/go-theme"
	"gopkg.in/yaml.v3"

	platen "github.com/platen-io/go-platen"
	"github.com/platen-io/go-platen/pkg/definition"
	"github.com/platen-io/go-platen/pkg/eval"
	"github.com/platen-io/go-platen/pkg/eval/pongo"
	"github.com/platen-io/go-platen/pkg/layout"
	"github.com/platen-io/go-platen/pkg/pageexpr"
)

func main() {
	templatePath := flag.String("template", "", "template definition to load (JSON, JSONC or YAML)")
	dataPath := flag.String("data", "", "JSON file with the variables the template binds")
	mode := flag.String("mode", "resolve", "what to do: validate, resolve or inspect")
	output := flag.String("out", "", "output file (stdout if empty)")
	pretty := flag.Bool("pretty", false, "indent JSON output")
	interactive := flag.Bool("interactive", false, "prompt for template variables missing from the data")
	themeManifest := flag.String("theme-manifest", "", "theme manifest file (JSON or YAML)")
	themeName := flag.String("theme", "", "theme to select from the manifest")
	themeVariant := flag.String("theme-variant", "", "theme variant to select")
	evaluator := flag.String("evaluator", "basic", "expression engine: basic or pongo")
	flag.Parse()

	log.SetFlags(0)

	if *templatePath == "" {
		flag.Usage()
		log.Fatal("missing -template")
	}

	tpl, err := definition.ParseFile(*templatePath)
	if err != nil {
		log.Fatalf("load template: %v", err)
	}

	switch *mode {
	case "validate":
		runValidate(tpl)
	case "inspect":
		runInspect(tpl)
	case "resolve":
		options, err := engineOptions(*evaluator, *themeManifest, *themeName, *themeVariant)
		if err != nil {
			log.Fatalf("%v", err)
		}
		data, err := loadData(*dataPath)
		if err != nil {
			log.Fatalf("%v", err)
		}
		if *interactive {
			if err := promptMissing(tpl, data); err != nil {
				log.Fatalf("%v", err)
			}
		}

		resolved, err := platen.New(options...).Resolve(context.Background(), tpl, data)
		if err != nil {
			log.Fatalf("resolve: %v", err)
		}
		if err := writeTemplate(resolved, *output, *pretty); err != nil {
			log.Fatalf("%v", err)
		}
	default:
		log.Fatalf("unknown mode %q (want validate, resolve or inspect)", *mode)
	}
}

func runValidate(tpl *layout.Template) {
	issues := tpl.Validate()
	if len(issues) == 0 {
		fmt.Println("template is valid")
		return
	}
	for _, issue := range issues {
		fmt.Fprintln(os.Stderr, issue)
	}
	os.Exit(1)
}

func runInspect(tpl *layout.Template) {
	title := tpl.Meta.Title
	if title == "" {
		title = "(untitled)"
	}
	if tpl.Meta.Version != "" {
		title += " v" + tpl.Meta.Version
	}
	fmt.Printf("template: %s\n", title)

	size := tpl.Page.Size()
	margins := tpl.Page.Margins()
	fmt.Printf("page: %gx%gpt, margins %g/%g/%g/%g\n",
		size.Width, size.Height,
		margins.Top, margins.Right, margins.Bottom, margins.Left)

	fmt.Println("slots:")
	for _, ref := range tpl.Slots() {
		counts := make(map[layout.ComponentType]int)
		total := 0
		layout.Walk(ref.Node, func(n layout.Node) bool {
			counts[n.Type()]++
			total++
			return true
		})

		kinds := make([]string, 0, len(counts))
		for kind := range counts {
			kinds = append(kinds, string(kind))
		}
		sort.Strings(kinds)

		parts := make([]string, 0, len(kinds))
		for _, kind := range kinds {
			parts = append(parts, fmt.Sprintf("%s %d", kind, counts[layout.ComponentType(kind)]))
		}
		fmt.Printf("  %s: %d nodes (%s)\n", ref.Slot, total, strings.Join(parts, ", "))

		if kinds := layout.PaginationDependentTypes(ref.Node); len(kinds) > 0 {
			names := make([]string, len(kinds))
			for i, k := range kinds {
				names[i] = string(k)
			}
			fmt.Printf("  %s: pagination-dependent: %s\n", ref.Slot, strings.Join(names, ", "))
		}
	}
}

func engineOptions(evaluator, manifestPath, themeName, themeVariant string) ([]platen.Option, error) {
	var options []platen.Option

	switch evaluator {
	case "", "basic":
	case "pongo":
		engine, err := pongo.New()
		if err != nil {
			return nil, fmt.Errorf("pongo evaluator: %w", err)
		}
		options = append(options, platen.WithEvaluator(engine))
	default:
		return nil, fmt.Errorf("unknown evaluator %q (want basic or pongo)", evaluator)
	}

	if manifestPath != "" {
		manifest, err := loadManifest(manifestPath)
		if err != nil {
			return nil, err
		}
		options = append(options, platen.WithThemeSelector(manifestSelector{manifest: manifest}, themeName, themeVariant))
	}

	return options, nil
}

func loadData(path string) (map[string]any, error) {
	data := make(map[string]any)
	if path == "" {
		return data, nil
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read data: %w", err)
	}
	if err := json.Unmarshal(raw, &data); err != nil {
		return nil, fmt.Errorf("parse data: %w", err)
	}
	return data, nil
}

func writeTemplate(tpl *layout.Template, path string, pretty bool) error {
	var (
		raw []byte
		err error
	)
	if pretty {
		raw, err = json.MarshalIndent(tpl, "", "  ")
	} else {
		raw, err = json.Marshal(tpl)
	}
	if err != nil {
		return fmt.Errorf("encode resolved template: %w", err)
	}

	if path == "" {
		fmt.Println(string(raw))
		return nil
	}
	if err := os.WriteFile(path, raw, 0o644); err != nil {
		return fmt.Errorf("write output: %w", err)
	}
	fmt.Printf("resolved template written to %s\n", path)
	return nil
}

// manifestFile mirrors the token fields of a theme manifest so manifests can
// be authored in JSON or YAML without depending on go-theme's own tags.
type manifestFile struct {
	Name     string                     `json:"name" yaml:"name"`
	Version  string                     `json:"version" yaml:"version"`
	Tokens   map[string]string          `json:"tokens" yaml:"tokens"`
	Variants map[string]manifestVariant `json:"variants" yaml:"variants"`
}

type manifestVariant struct {
	Tokens map[string]string `json:"tokens" yaml:"tokens"`
}

func loadManifest(path string) (*gotheme.Manifest, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read theme manifest: %w", err)
	}

	var file manifestFile
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(raw, &file)
	default:
		err = json.Unmarshal(raw, &file)
	}
	if err != nil {
		return nil, fmt.Errorf("parse theme manifest: %w", err)
	}

	manifest := &gotheme.Manifest{
		Name:    file.Name,
		Version: file.Version,
		Tokens:  file.Tokens,
	}
	if len(file.Variants) > 0 {
		manifest.Variants = make(map[string]gotheme.Variant, len(file.Variants))
		for name, variant := range file.Variants {
			manifest.Variants[name] = gotheme.Variant{Tokens: variant.Tokens}
		}
	}
	return manifest, nil
}

// manifestSelector serves selections out of a single loaded manifest.
type manifestSelector struct {
	manifest *gotheme.Manifest
}

func (s manifestSelector) Select(name, variant string, _ ...gotheme.QueryOption) (*gotheme.Selection, error) {
	if name == "" {
		name = s.manifest.Name
	}
	if name != s.manifest.Name {
		return nil, fmt.Errorf("theme %q not found in manifest (have %q)", name, s.manifest.Name)
	}
	return &gotheme.Selection{Theme: name, Variant: variant, Manifest: s.manifest}, nil
}

func promptMissing(tpl *layout.Template, data map[string]any) error {
	for _, root := range missingRoots(tpl, data) {
		var answer string
		prompt := &survey.Input{
			Message: fmt.Sprintf("Value for %s:", root),
			Help:    "JSON values are decoded; anything else is kept as text",
		}
		if err := survey.AskOne(prompt, &answer); err != nil {
			if errors.Is(err, terminal.InterruptErr) {
				return errors.New("aborted")
			}
			return err
		}
		data[root] = decodeAnswer(answer)
	}
	return nil
}

func decodeAnswer(raw string) any {
	trimmed := strings.TrimSpace(raw)
	var value any
	if err := json.Unmarshal([]byte(trimmed), &value); err == nil {
		return value
	}
	return raw
}

// builtinRoots are always bound by the engine, so they are never prompted.
var builtinRoots = []string{
	"page", "document", "template", "section",
	"isfirst", "islast", "repeatindex", "repeatcount",
	"currentpage", "totalpages",
}

// missingRoots walks the template and collects, in first-appearance order,
// the variable roots its expressions reference that neither data nor the
// engine built-ins provide. Repeat-introduced names only count inside their
// subtree.
func missingRoots(tpl *layout.Template, data map[string]any) []string {
	have := make(map[string]bool, len(data)+len(builtinRoots))
	for name := range data {
		have[strings.ToLower(name)] = true
	}
	for _, name := range builtinRoots {
		have[name] = true
	}

	seen := make(map[string]bool)
	var order []string

	collect := func(expr string, local map[string]bool) {
		for _, root := range identRoots(expr) {
			key := strings.ToLower(root)
			if have[key] || local[key] || seen[key] {
				continue
			}
			seen[key] = true
			order = append(order, root)
		}
	}

	var scanValue func(v any, local map[string]bool)
	scanValue = func(v any, local map[string]bool) {
		switch value := v.(type) {
		case string:
			for _, span := range eval.Placeholders(value) {
				if _, reserved := pageexpr.Classify(span.Expr); reserved {
					continue
				}
				collect(span.Expr, local)
			}
		case []any:
			for _, item := range value {
				scanValue(item, local)
			}
		case map[string]any:
			keys := make([]string, 0, len(value))
			for key := range value {
				keys = append(keys, key)
			}
			sort.Strings(keys)
			for _, key := range keys {
				scanValue(value[key], local)
			}
		}
	}

	var visit func(n layout.Node, local map[string]bool)
	visit = func(n layout.Node, local map[string]bool) {
		if n == nil {
			return
		}
		meta := n.Meta()

		// Visibility and the repeat binding evaluate outside the
		// iteration scope; everything below the repeat sees its names.
		if meta.VisibleWhen != "" {
			collect(meta.VisibleWhen, local)
		}
		childLocal := local
		if meta.Repeat != nil {
			collect(meta.Repeat.Bind, local)

			childLocal = make(map[string]bool, len(local)+2)
			for key := range local {
				childLocal[key] = true
			}
			item := meta.Repeat.As
			if item == "" {
				item = "item"
			}
			index := meta.Repeat.IndexAs
			if index == "" {
				index = "index"
			}
			childLocal[strings.ToLower(item)] = true
			childLocal[strings.ToLower(index)] = true
		}

		switch n.Type() {
		case layout.TypeShowIf, layout.TypeHideIf:
			if when, ok := meta.Props[layout.PropWhen].(string); ok {
				collect(when, childLocal)
			}
		case layout.TypeFallback:
			if watched, ok := meta.Props[layout.PropFor].(string); ok {
				collect(watched, childLocal)
			}
		}

		keys := make([]string, 0, len(meta.Props))
		for key := range meta.Props {
			keys = append(keys, key)
		}
		sort.Strings(keys)
		for _, key := range keys {
			scanValue(meta.Props[key], childLocal)
		}

		for _, child := range n.EffectiveChildren() {
			visit(child, childLocal)
		}
	}

	for _, ref := range tpl.Slots() {
		visit(ref.Node, map[string]bool{})
	}
	return order
}

// exprKeywords are operator and block words the expression engines reserve;
// they never name variables.
var exprKeywords = map[string]bool{
	"true": true, "false": true, "null": true, "nil": true,
	"and": true, "or": true, "not": true, "in": true,
	"if": true, "else": true, "elif": true, "endif": true,
	"for": true, "endfor": true, "loop": true, "empty": true,
}

// identRoots extracts the leading segment of every dotted identifier in
// expr, skipping string literals, function names and filter names.
func identRoots(expr string) []string {
	var roots []string
	var prev byte
	i := 0
	for i < len(expr) {
		c := expr[i]
		switch {
		case c == '\'' || c == '"':
			i = skipQuoted(expr, i)
			prev = c
		case isIdentStart(c):
			start := i
			for i < len(expr) && isIdentPart(expr[i]) {
				i++
			}
			name := expr[start:i]

			next := i
			for next < len(expr) && expr[next] == ' ' {
				next++
			}
			isCall := next < len(expr) && expr[next] == '('
			isFilter := prev == '|'

			if !isCall && !isFilter && !exprKeywords[strings.ToLower(name)] {
				root := name
				if dot := strings.IndexByte(root, '.'); dot >= 0 {
					root = root[:dot]
				}
				roots = append(roots, root)
			}
			prev = expr[i-1]
		default:
			if c != ' ' {
				prev = c
			}
			i++
		}
	}
	return roots
}

func skipQuoted(expr string, start int) int {
	quote := expr[start]
	i := start + 1
	for i < len(expr) && expr[i] != quote {
		i++
	}
	if i < len(expr) {
		i++
	}
	return i
}

func isIdentStart(c byte) bool {
	return c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isIdentPart(c byte) bool {
	return isIdentStart(c) || c == '.' || (c >= '0' && c <= '9')
}
