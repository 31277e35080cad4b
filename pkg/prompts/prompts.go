// Package prompts renders system prompts from text templates with the sprig function library.
package prompts

import (
	"strings"
	"text/template"

	"github.com/Masterminds/sprig/v3"
	"github.com/cockroachdb/errors"
)

// Template is a parsed prompt template.
type Template struct {
	tmpl *template.Template
}

// New parses the prompt template.
// A key missing from the data is an error when the template is rendered.
func New(name, text string) (*Template, error) {
	tmpl, err := template.New(name).
		Funcs(sprig.TxtFuncMap()).
		Option("missingkey=error").
		Parse(text)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to parse prompt %q", name)
	}
	return &Template{tmpl: tmpl}, nil
}

// Must is like New but panics on error.
func Must(name, text string) *Template {
	t, err := New(name, text)
	if err != nil {
		panic(err)
	}
	return t
}

// Name returns the name of the template.
func (t *Template) Name() string {
	return t.tmpl.Name()
}

// Render executes the template with data.
func (t *Template) Render(data any) (string, error) {
	var sb strings.Builder
	if err := t.tmpl.Execute(&sb, data); err != nil {
		return "", errors.Wrapf(err, "failed to render prompt %q", t.tmpl.Name())
	}
	return sb.String(), nil
}

// Render parses and executes the prompt text.
// Text without template actions is returned as is.
func Render(text string, data any) (string, error) {
	if !strings.Contains(text, "{{") {
		return text, nil
	}
	t, err := New("prompt", text)
	if err != nil {
		return "", err
	}
	return t.Render(data)
}
