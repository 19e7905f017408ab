package bridge

import (
	"log/slog"

	"github.com/reglet-dev/portbridge/domain/entities"
	"github.com/reglet-dev/portbridge/domain/ports"
)

type config struct {
	logger      *slog.Logger
	resolver    ports.PathResolver
	inputs      []entities.InputBinding
	outputs     []entities.OutputBinding
	queueSize   int
	watch       bool
	logPayloads bool
}

func defaultConfig() config {
	def := entities.DefaultConfig()
	return config{
		logger:      slog.Default(),
		inputs:      def.Inputs,
		outputs:     def.Outputs,
		queueSize:   def.QueueSize,
		logPayloads: def.LogPayloads,
	}
}

// Option configures a Bridge.
type Option func(*config)

// WithConfig applies the bindings and run settings of a loaded config.
func WithConfig(cfg *entities.BridgeConfig) Option {
	return func(c *config) {
		if cfg == nil {
			return
		}
		c.inputs = cfg.Inputs
		c.outputs = cfg.Outputs
		if cfg.QueueSize > 0 {
			c.queueSize = cfg.QueueSize
		}
		c.watch = cfg.Watch
		c.logPayloads = cfg.LogPayloads
	}
}

// WithInputs replaces the input bindings.
func WithInputs(bindings ...entities.InputBinding) Option {
	return func(c *config) {
		c.inputs = bindings
	}
}

// WithOutputs replaces the output bindings.
func WithOutputs(bindings ...entities.OutputBinding) Option {
	return func(c *config) {
		c.outputs = bindings
	}
}

// WithQueueSize bounds pending writes per output file.
func WithQueueSize(n int) Option {
	return func(c *config) {
		if n > 0 {
			c.queueSize = n
		}
	}
}

// WithWatch keeps the run alive after startup and re-sends an input each time
// its file is written, until the context passed to Run is cancelled.
func WithWatch(enabled bool) Option {
	return func(c *config) {
		c.watch = enabled
	}
}

// WithResolver maps configured input paths to files on disk for watch mode.
// Defaults to the input source when it implements ports.PathResolver.
func WithResolver(r ports.PathResolver) Option {
	return func(c *config) {
		c.resolver = r
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *config) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithLogPayloads toggles logging of every outbound payload.
func WithLogPayloads(enabled bool) Option {
	return func(c *config) {
		c.logPayloads = enabled
	}
}
