// Package template renders config files as Go templates, so paths and other
// settings can come from the environment:
//
//	base_dir: "{{.env.LEDGER_DIR}}"
package template

import (
	"bytes"
	"fmt"
	"text/template"

	"github.com/reglet-dev/portbridge/domain/ports"
)

type templateConfig struct {
	strict bool
}

func defaultTemplateConfig() templateConfig {
	return templateConfig{
		strict: true,
	}
}

// TemplateOption configures a GoTemplateEngine.
type TemplateOption func(*templateConfig)

// WithStrict enables/disables strict mode for missing keys.
// When enabled (default), rendering fails if a referenced variable is unset.
func WithStrict(enabled bool) TemplateOption {
	return func(c *templateConfig) {
		c.strict = enabled
	}
}

// GoTemplateEngine implements ports.TemplateEngine using text/template.
type GoTemplateEngine struct {
	config templateConfig
}

// NewGoTemplateEngine creates a new GoTemplateEngine.
func NewGoTemplateEngine(opts ...TemplateOption) ports.TemplateEngine {
	cfg := defaultTemplateConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	return &GoTemplateEngine{config: cfg}
}

// Render executes raw with vars available under .env.
func (e *GoTemplateEngine) Render(raw []byte, vars map[string]string) ([]byte, error) {
	tmpl := template.New("config")
	if e.config.strict {
		tmpl = tmpl.Option("missingkey=error")
	} else {
		tmpl = tmpl.Option("missingkey=zero")
	}

	tmpl, err := tmpl.Parse(string(raw))
	if err != nil {
		return nil, fmt.Errorf("failed to parse config template: %w", err)
	}

	if vars == nil {
		vars = map[string]string{}
	}
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, map[string]any{"env": vars}); err != nil {
		return nil, fmt.Errorf("failed to execute config template: %w", err)
	}
	return buf.Bytes(), nil
}
