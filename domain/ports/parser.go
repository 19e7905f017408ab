package ports

import "github.com/reglet-dev/portbridge/domain/entities"

// ConfigParser parses raw config bytes over a starting configuration.
type ConfigParser interface {
	// Parse unmarshals data into base; fields absent from data keep their value.
	Parse(data []byte, base *entities.BridgeConfig) error
}
