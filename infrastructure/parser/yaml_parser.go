// Package parser decodes bridge configuration files.
package parser

import (
	"bytes"
	stdErrors "errors"
	"fmt"
	"io"

	"github.com/reglet-dev/portbridge/domain/entities"
	"github.com/reglet-dev/portbridge/domain/ports"
	"gopkg.in/yaml.v3"
)

// YamlConfigParser implements ConfigParser for YAML.
type YamlConfigParser struct {
	strict bool
}

// ParserOption configures the YAML parser.
type ParserOption func(*YamlConfigParser)

// WithStrict rejects keys that do not map to a config field (default: true).
func WithStrict(strict bool) ParserOption {
	return func(p *YamlConfigParser) {
		p.strict = strict
	}
}

// NewYamlConfigParser creates a new YamlConfigParser.
func NewYamlConfigParser(opts ...ParserOption) ports.ConfigParser {
	p := &YamlConfigParser{strict: true}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Parse unmarshals YAML bytes over base. Keys absent from data keep the value
// already in base; a present list replaces the list in base entirely.
// Empty input leaves base untouched.
func (p *YamlConfigParser) Parse(data []byte, base *entities.BridgeConfig) error {
	if base == nil {
		return fmt.Errorf("nil base config")
	}

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(p.strict)
	if err := dec.Decode(base); err != nil {
		if stdErrors.Is(err, io.EOF) {
			return nil
		}
		return fmt.Errorf("failed to parse config: %w", err)
	}
	return nil
}
