// Package notifications sends customer messages when a task is picked up or
// completed. Sending is best-effort: the outcome is logged, counted and
// written to the audit log, and never fails the caller.
package notifications

import (
	"bytes"
	"fmt"
	"os"
	"text/template"

	"gopkg.in/yaml.v3"
)

// Templates are text/template sources for each event. Available fields:
// {{.CustomerName}}, {{.OrderReference}}, {{.Category}}, {{.Items}}, {{.PhotoURL}}.
type Templates struct {
	Pickup     string `yaml:"pickup"`
	Completion string `yaml:"completion"`
}

func DefaultTemplates() Templates {
	return Templates{
		Pickup: "Hello {{.CustomerName}}, your {{.Category}} items of order {{.OrderReference}} " +
			"are on their way: {{.Items}}.",
		Completion: "Hello {{.CustomerName}}, your {{.Category}} items of order {{.OrderReference}} " +
			"were delivered. Proof of delivery: {{.PhotoURL}}",
	}
}

// LoadTemplates reads a YAML file and fills missing events from the
// defaults. An empty path yields the defaults.
func LoadTemplates(path string) (Templates, error) {
	t := DefaultTemplates()
	if path == "" {
		return t, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return Templates{}, fmt.Errorf("read notification templates: %w", err)
	}

	var file Templates
	if err = yaml.Unmarshal(data, &file); err != nil {
		return Templates{}, fmt.Errorf("parse notification templates %s: %w", path, err)
	}
	if file.Pickup != "" {
		t.Pickup = file.Pickup
	}
	if file.Completion != "" {
		t.Completion = file.Completion
	}
	return t, nil
}

// message is the data every template is rendered with.
type message struct {
	CustomerName   string
	OrderReference string
	Category       string
	Items          string
	PhotoURL       string
}

type compiled struct {
	pickup     *template.Template
	completion *template.Template
}

func (t Templates) compile() (compiled, error) {
	pickup, err := template.New("pickup").Option("missingkey=error").Parse(t.Pickup)
	if err != nil {
		return compiled{}, fmt.Errorf("pickup template: %w", err)
	}
	completion, err := template.New("completion").Option("missingkey=error").Parse(t.Completion)
	if err != nil {
		return compiled{}, fmt.Errorf("completion template: %w", err)
	}
	return compiled{pickup: pickup, completion: completion}, nil
}

func render(tpl *template.Template, msg message) (string, error) {
	var buf bytes.Buffer
	if err := tpl.Execute(&buf, msg); err != nil {
		return "", err
	}
	return buf.String(), nil
}
