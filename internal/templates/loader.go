// Package templates provides starter code used when scaffolding cannot be generated.
package templates

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/verte-zerg/codetutor/internal/model"
)

// Set resolves templates, preferring user files in dir over the built-in ones.
type Set struct {
	dir string
}

// NewSet returns a Set reading overrides from dir. An empty dir disables overrides.
func NewSet(dir string) *Set {
	return &Set{dir: dir}
}

// For returns the override for lang when one exists and is non-empty, else the built-in template.
func (s *Set) For(lang model.Language) string {
	if s == nil || s.dir == "" || !lang.IsValid() {
		return Default(lang)
	}
	tmpl, err := LoadFile(s.path(lang))
	if err != nil {
		return Default(lang)
	}
	return tmpl
}

func (s *Set) path(lang model.Language) string {
	return filepath.Join(s.dir, string(lang)+".txt")
}

// LoadFile reads a template file. Blank files are rejected.
func LoadFile(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return "", err
		}
		return "", fmt.Errorf("failed to read template: %w", err)
	}
	text := strings.ReplaceAll(string(data), "\r\n", "\n")
	if strings.TrimSpace(text) == "" {
		return "", fmt.Errorf("template is empty")
	}
	if !strings.HasSuffix(text, "\n") {
		text += "\n"
	}
	return text, nil
}
