package ports

import "github.com/reglet-dev/portbridge/domain/entities"

// ConfigValidator validates a bridge configuration.
type ConfigValidator interface {
	// Validate checks the config and reports every violation found.
	Validate(cfg *entities.BridgeConfig) (*entities.ValidationResult, error)
}
