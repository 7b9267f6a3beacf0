// Package prompts holds the embedded prompt templates tt sends to the
// service. Each template is a markdown file with YAML frontmatter describing
// it; the body is a text/template. Users can override any template by
// dropping a file with the same name under ~/.config/tt/prompts/.
package prompts

import (
	"bytes"
	"embed"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"text/template"

	"github.com/adrg/frontmatter"
)

//go:embed *.md
var builtinFS embed.FS

// Meta is the frontmatter carried by every prompt template.
type Meta struct {
	Description string `yaml:"description"`
	Output      string `yaml:"output"` // "json" or "text"
}

// Load returns the parsed template and its metadata for the given name.
func Load(name string) (*template.Template, Meta, error) {
	data, err := read(name)
	if err != nil {
		return nil, Meta{}, err
	}

	var meta Meta
	body, err := frontmatter.Parse(bytes.NewReader(data), &meta)
	if err != nil {
		// A template without frontmatter is still usable.
		body = data
	}

	tmpl, err := template.New(name).Parse(strings.TrimSpace(string(body)))
	if err != nil {
		return nil, Meta{}, fmt.Errorf("parsing prompt template %s: %w", name, err)
	}
	return tmpl, meta, nil
}

// Execute loads a template and renders it with the given data map.
func Execute(name string, data map[string]string) (string, error) {
	tmpl, _, err := Load(name)
	if err != nil {
		return "", err
	}
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("executing prompt template %s: %w", name, err)
	}
	return buf.String(), nil
}

// List returns the names of all built-in prompt templates.
func List() ([]string, error) {
	entries, err := builtinFS.ReadDir(".")
	if err != nil {
		return nil, err
	}
	var names []string
	for _, e := range entries {
		if !e.IsDir() {
			names = append(names, e.Name())
		}
	}
	return names, nil
}

func read(name string) ([]byte, error) {
	// Check user override first.
	configDir, err := os.UserConfigDir()
	if err == nil {
		userPath := filepath.Join(configDir, "tt", "prompts", name)
		if data, err := os.ReadFile(userPath); err == nil {
			return data, nil
		}
	}

	data, err := builtinFS.ReadFile(name)
	if err != nil {
		return nil, fmt.Errorf("loading prompt template %s: %w", name, err)
	}
	return data, nil
}
