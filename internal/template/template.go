// Package template renders the text/template sources used to build prompts.
package template

import (
	"bytes"
	"fmt"
	"strings"
	"text/template"
)

// funcs are available to every template.
var funcs = template.FuncMap{
	"join": strings.Join,
	"inc":  func(i int) int { return i + 1 },
}

// Template is a parsed template that can be executed many times. Missing map
// keys are errors rather than "<no value>".
type Template struct {
	t *template.Template
}

// Parse parses text under name.
func Parse(name, text string) (*Template, error) {
	t, err := template.New(name).Funcs(funcs).Option("missingkey=error").Parse(text)
	if err != nil {
		return nil, fmt.Errorf("template %s: parse: %w", name, err)
	}
	return &Template{t: t}, nil
}

// MustParse is Parse for package-level templates, panicking on error.
func MustParse(name, text string) *Template {
	t, err := Parse(name, text)
	if err != nil {
		panic(err)
	}
	return t
}

// Execute renders the template against data.
func (t *Template) Execute(data any) (string, error) {
	var buf bytes.Buffer
	if err := t.t.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("template %s: render: %w", t.t.Name(), err)
	}
	return buf.String(), nil
}

// Render resolves template expressions in the given string.
// Returns the input unchanged if it contains no template delimiters.
func Render(tmpl string, data any) (string, error) {
	// Fast path: no template delimiters means no work to do.
	if !strings.Contains(tmpl, "{{") {
		return tmpl, nil
	}

	t, err := Parse("", tmpl)
	if err != nil {
		return "", err
	}
	return t.Execute(data)
}
