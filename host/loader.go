package host

import (
	"fmt"
	"os"
	"strings"

	"github.com/reglet-dev/portbridge/application/template"
	"github.com/reglet-dev/portbridge/application/validation"
	"github.com/reglet-dev/portbridge/domain/entities"
	"github.com/reglet-dev/portbridge/domain/errors"
	"github.com/reglet-dev/portbridge/domain/ports"
	"github.com/reglet-dev/portbridge/infrastructure/parser"
)

// loaderConfig holds configuration for the Loader.
type loaderConfig struct {
	templater ports.TemplateEngine
	parser    ports.ConfigParser
	validator ports.ConfigValidator
	vars      map[string]string
}

func defaultLoaderConfig() loaderConfig {
	return loaderConfig{
		templater: template.NewGoTemplateEngine(),
		parser:    parser.NewYamlConfigParser(),
		validator: validation.NewConfigValidator(),
	}
}

// Loader orchestrates the config loading pipeline: template rendering,
// defaults, file overlay, caller overrides, validation.
type Loader struct {
	config loaderConfig
}

// LoaderOption configures the Loader.
type LoaderOption func(*loaderConfig)

// WithParser sets a custom config parser.
func WithParser(p ports.ConfigParser) LoaderOption {
	return func(c *loaderConfig) {
		c.parser = p
	}
}

// WithTemplateEngine sets the engine config files are rendered with.
// Passing nil disables rendering.
func WithTemplateEngine(t ports.TemplateEngine) LoaderOption {
	return func(c *loaderConfig) {
		c.templater = t
	}
}

// WithVariables sets the values available as {{.env.NAME}} in config files.
// Defaults to the process environment.
func WithVariables(vars map[string]string) LoaderOption {
	return func(c *loaderConfig) {
		c.vars = vars
	}
}

// WithValidator sets a custom config validator.
func WithValidator(v ports.ConfigValidator) LoaderOption {
	return func(c *loaderConfig) {
		c.validator = v
	}
}

// NewLoader creates a new Loader with options.
func NewLoader(opts ...LoaderOption) *Loader {
	cfg := defaultLoaderConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	return &Loader{config: cfg}
}

// LoadConfig builds a validated config. data may be nil, in which case only
// the defaults and overrides apply.
func (l *Loader) LoadConfig(data []byte, overrides ...entities.ConfigOption) (*entities.BridgeConfig, error) {
	cfg := entities.DefaultConfig()

	if len(data) > 0 {
		if l.config.templater != nil {
			rendered, err := l.config.templater.Render(data, l.variables())
			if err != nil {
				return nil, &errors.ConfigError{Err: err}
			}
			data = rendered
		}
		if err := l.config.parser.Parse(data, &cfg); err != nil {
			return nil, &errors.ConfigError{Err: err}
		}
	}

	cfg.Apply(overrides...)

	if l.config.validator != nil {
		res, err := l.config.validator.Validate(&cfg)
		if err != nil {
			return nil, &errors.ConfigError{Err: err}
		}
		if !res.Valid {
			msgs := make([]string, 0, len(res.Errors))
			for _, e := range res.Errors {
				msgs = append(msgs, fmt.Sprintf("%s: %s", e.Field, e.Message))
			}
			return nil, &errors.ConfigError{Err: fmt.Errorf("invalid config: %s", strings.Join(msgs, "; "))}
		}
	}

	return &cfg, nil
}

func (l *Loader) variables() map[string]string {
	if l.config.vars != nil {
		return l.config.vars
	}
	env := make(map[string]string)
	for _, kv := range os.Environ() {
		if k, v, ok := strings.Cut(kv, "="); ok {
			env[k] = v
		}
	}
	return env
}
