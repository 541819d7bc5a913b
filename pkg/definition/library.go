package definition

import (
	"fmt"
	"io/fs"
	"path/filepath"
	"sort"
	"strings"

	"github.com/platen-io/go-platen/internal/labels"
	"github.com/platen-io/go-platen/pkg/layout"
)

// Library holds the templates loaded from a filesystem, keyed by file name
// without extension.
type Library struct {
	templates map[string]*layout.Template
}

// Template returns the named template.
func (l *Library) Template(name string) (*layout.Template, bool) {
	if l == nil {
		return nil, false
	}
	tpl, ok := l.templates[name]
	return tpl, ok
}

// Names lists the loaded template names in sorted order.
func (l *Library) Names() []string {
	if l == nil {
		return nil
	}
	names := make([]string, 0, len(l.templates))
	for name := range l.templates {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Empty reports whether the library holds any templates.
func (l *Library) Empty() bool {
	return l == nil || len(l.templates) == 0
}

// LoadFS walks the provided filesystem and parses every definition file
// (.json, .jsonc, .yaml, .yml). When fsys is nil or holds no definitions,
// the returned library is empty.
func LoadFS(fsys fs.FS, opts ...Option) (*Library, error) {
	lib := &Library{templates: make(map[string]*layout.Template)}
	if fsys == nil {
		return lib, nil
	}

	err := fs.WalkDir(fsys, ".", func(path string, entry fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if entry.IsDir() || !isDefinitionFile(path) {
			return nil
		}

		data, err := fs.ReadFile(fsys, path)
		if err != nil {
			return fmt.Errorf("definition: read %s: %w", path, err)
		}

		tpl, err := Parse(data, opts...)
		if err != nil {
			return fmt.Errorf("definition: file %s: %w", path, err)
		}

		name := templateName(path)
		if _, exists := lib.templates[name]; exists {
			return fmt.Errorf("definition: duplicate template %q (file %s)", name, path)
		}
		if tpl.Meta.Title == "" {
			tpl.Meta.Title = labels.Display(name)
		}
		lib.templates[name] = tpl
		return nil
	})
	if err != nil {
		return nil, err
	}

	return lib, nil
}

func isDefinitionFile(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json", ".jsonc", ".yaml", ".yml":
		return true
	default:
		return false
	}
}
