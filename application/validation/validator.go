// Package validation checks bridge configurations before a run.
package validation

import (
	stdErrors "errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/reglet-dev/portbridge/domain/entities"
	"github.com/reglet-dev/portbridge/domain/ports"
)

// ConfigValidator implements ports.ConfigValidator using struct tags.
type ConfigValidator struct {
	validate *validator.Validate
}

// NewConfigValidator creates a new validator.
func NewConfigValidator() ports.ConfigValidator {
	return &ConfigValidator{
		validate: validator.New(validator.WithRequiredStructEnabled()),
	}
}

// Validate checks cfg and reports every violation. The returned error is
// non-nil only when validation itself could not run.
func (v *ConfigValidator) Validate(cfg *entities.BridgeConfig) (*entities.ValidationResult, error) {
	if cfg == nil {
		return nil, fmt.Errorf("nil config")
	}

	result := &entities.ValidationResult{Valid: true}

	if err := v.validate.Struct(cfg); err != nil {
		var verrs validator.ValidationErrors
		if !stdErrors.As(err, &verrs) {
			return nil, fmt.Errorf("config validation failed: %w", err)
		}
		for _, fe := range verrs {
			result.Valid = false
			result.Errors = append(result.Errors, entities.ValidationError{
				Field:   fieldPath(fe),
				Message: describe(fe),
			})
		}
	}

	v.checkPorts(cfg, result)
	v.checkPaths(cfg, result)
	return result, nil
}

// checkPorts rejects a port name bound in both directions.
func (v *ConfigValidator) checkPorts(cfg *entities.BridgeConfig, result *entities.ValidationResult) {
	inbound := make(map[entities.PortName]struct{}, len(cfg.Inputs))
	for _, in := range cfg.Inputs {
		inbound[in.Port] = struct{}{}
	}
	for i, out := range cfg.Outputs {
		if _, ok := inbound[out.Port]; ok && out.Port != "" {
			result.Valid = false
			result.Errors = append(result.Errors, entities.ValidationError{
				Field:   fmt.Sprintf("outputs[%d].port", i),
				Message: fmt.Sprintf("port %q is also bound as an input", out.Port),
			})
		}
	}
}

// checkPaths rejects an output file that is also an input file.
func (v *ConfigValidator) checkPaths(cfg *entities.BridgeConfig, result *entities.ValidationResult) {
	inputs := make(map[string]struct{}, len(cfg.Inputs))
	for _, in := range cfg.Inputs {
		inputs[in.Path] = struct{}{}
	}
	for i, out := range cfg.Outputs {
		if _, ok := inputs[out.Path]; ok && out.Path != "" {
			result.Valid = false
			result.Errors = append(result.Errors, entities.ValidationError{
				Field:   fmt.Sprintf("outputs[%d].path", i),
				Message: fmt.Sprintf("path %q is also read as an input", out.Path),
			})
		}
	}
}

// fieldPath renders a field error as a yaml-style path, e.g. "inputs[0].port".
func fieldPath(fe validator.FieldError) string {
	ns := fe.Namespace()
	if i := strings.IndexByte(ns, '.'); i >= 0 {
		ns = ns[i+1:]
	}
	parts := strings.Split(ns, ".")
	for i, p := range parts {
		parts[i] = toSnake(p)
	}
	return strings.Join(parts, ".")
}

func toSnake(s string) string {
	var b strings.Builder
	for i, r := range s {
		if r >= 'A' && r <= 'Z' {
			if i > 0 && s[i-1] != '[' {
				b.WriteByte('_')
			}
			b.WriteRune(r - 'A' + 'a')
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

func describe(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "oneof":
		return fmt.Sprintf("must be one of [%s]", fe.Param())
	case "gte":
		return fmt.Sprintf("must be at least %s", fe.Param())
	case "lte":
		return fmt.Sprintf("must be at most %s", fe.Param())
	case "unique":
		return fmt.Sprintf("must not repeat %s", strings.ToLower(fe.Param()))
	default:
		return fmt.Sprintf("failed %q validation", fe.Tag())
	}
}
