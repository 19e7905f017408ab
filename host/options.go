package host

import (
	"log/slog"

	"github.com/reglet-dev/portbridge/domain/entities"
	"github.com/reglet-dev/portbridge/hostfuncs"
)

// Option defines a functional option for configuring the Executor.
type Option func(*Executor)

// WithMiddleware adds middleware wrapped around every outbound handler of the
// units this executor loads.
func WithMiddleware(mw ...hostfuncs.Middleware) Option {
	return func(e *Executor) {
		e.middleware = append(e.middleware, mw...)
	}
}

// WithLogger sets the logger used for guest log records and runtime events.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Executor) {
		e.logger = logger
	}
}

// WithMaxPayloadSize limits payloads in both directions: inbound payloads
// Send copies into guest memory and payloads the guest emits or logs.
// Zero keeps the default.
func WithMaxPayloadSize(size uint32) Option {
	return func(e *Executor) {
		if size > 0 {
			e.maxPayloadSize = size
		}
	}
}

// unitConfig holds per-unit load settings.
type unitConfig struct {
	descriptor *entities.UnitDescriptor
	name       string
}

// UnitOption configures a single LoadUnit call.
type UnitOption func(*unitConfig)

// WithUnitName names the module instance. Names must be unique per executor.
func WithUnitName(name string) UnitOption {
	return func(c *unitConfig) {
		c.name = name
	}
}

// WithDescriptor declares the unit's ports up front instead of asking the
// guest's "describe" export. The outbound ports are then live during
// _initialize, so emissions made while initializing are delivered.
func WithDescriptor(d entities.UnitDescriptor) UnitOption {
	return func(c *unitConfig) {
		c.descriptor = &d
	}
}
