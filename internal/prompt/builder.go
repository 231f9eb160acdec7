// Package prompt renders named prompt templates with textual parameter substitution.
package prompt

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"text/template"
)

// ErrUnknownTemplate is returned by Render for a name that was never registered.
var ErrUnknownTemplate = errors.New("unknown template")

// MissingParamError is returned when a required parameter is absent or blank.
type MissingParamError struct {
	Template string
	Param    string
}

func (e *MissingParamError) Error() string {
	return fmt.Sprintf("template %q: missing required parameter %q", e.Template, e.Param)
}

type entry struct {
	tmpl     *template.Template
	required []string
}

// Builder holds named templates. Parameter values are inserted verbatim; they are
// never parsed as template text.
type Builder struct {
	mu        sync.RWMutex
	templates map[string]*entry
}

// NewBuilder returns a Builder with the built-in templates registered.
func NewBuilder() *Builder {
	b := &Builder{templates: make(map[string]*entry)}
	for _, bt := range builtins {
		if err := b.Register(bt.name, bt.text, bt.required...); err != nil {
			panic(fmt.Sprintf("prompt: builtin %s: %v", bt.name, err))
		}
	}
	return b
}

// Register parses text as a template under name, replacing any existing one.
func (b *Builder) Register(name, text string, required ...string) error {
	if name == "" {
		return errors.New("template name cannot be empty")
	}
	tmpl, err := template.New(name).Option("missingkey=zero").Parse(text)
	if err != nil {
		return fmt.Errorf("parse template %q: %w", name, err)
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	b.templates[name] = &entry{tmpl: tmpl, required: required}
	return nil
}

// Render executes the named template with params. Optional parameters that are
// missing or empty render as empty strings and drop their conditional sections.
func (b *Builder) Render(name string, params map[string]string) (string, error) {
	b.mu.RLock()
	e, ok := b.templates[name]
	b.mu.RUnlock()
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrUnknownTemplate, name)
	}
	for _, p := range e.required {
		if strings.TrimSpace(params[p]) == "" {
			return "", &MissingParamError{Template: name, Param: p}
		}
	}
	if params == nil {
		params = map[string]string{}
	}
	var sb strings.Builder
	if err := e.tmpl.Execute(&sb, params); err != nil {
		return "", fmt.Errorf("render template %q: %w", name, err)
	}
	return sb.String(), nil
}

// Names returns the registered template names in sorted order.
func (b *Builder) Names() []string {
	b.mu.RLock()
	defer b.mu.RUnlock()
	names := make([]string, 0, len(b.templates))
	for n := range b.templates {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}
