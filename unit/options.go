package unit

import (
	"fmt"
	"log/slog"

	"github.com/reglet-dev/portbridge/domain/entities"
	"github.com/reglet-dev/portbridge/hostfuncs"
)

// defaultQueueSize bounds pending asynchronous deliveries.
const defaultQueueSize = 64

type config struct {
	logger       *slog.Logger
	inbound      map[entities.PortName]InboundFunc
	name         string
	inboundOrder []entities.PortName
	outbound     []entities.PortName
	middleware   []hostfuncs.Middleware
	errors       []error
	queueSize    int
	async        bool
}

func defaultConfig() config {
	return config{
		logger:    slog.Default(),
		inbound:   make(map[entities.PortName]InboundFunc),
		name:      "local",
		queueSize: defaultQueueSize,
	}
}

// Option configures a Local unit.
type Option func(*config)

// WithName sets the unit name reported by Describe.
func WithName(name string) Option {
	return func(c *config) {
		if name != "" {
			c.name = name
		}
	}
}

// WithInbound declares an inbound port and the function handling its payloads.
func WithInbound(port entities.PortName, fn InboundFunc) Option {
	return func(c *config) {
		switch {
		case port == "":
			c.errors = append(c.errors, fmt.Errorf("inbound port name cannot be empty"))
		case fn == nil:
			c.errors = append(c.errors, fmt.Errorf("inbound port %q: nil handler", port))
		default:
			if _, exists := c.inbound[port]; exists {
				c.errors = append(c.errors, fmt.Errorf("inbound port %q declared twice", port))
				return
			}
			c.inbound[port] = fn
			c.inboundOrder = append(c.inboundOrder, port)
		}
	}
}

// WithOutbound declares outbound ports.
func WithOutbound(ports ...entities.PortName) Option {
	return func(c *config) {
		c.outbound = append(c.outbound, ports...)
	}
}

// WithAsync queues deliveries and processes them on the unit's own goroutine.
func WithAsync(queueSize int) Option {
	return func(c *config) {
		c.async = true
		if queueSize > 0 {
			c.queueSize = queueSize
		}
	}
}

// WithMiddleware wraps every outbound handler.
func WithMiddleware(mw ...hostfuncs.Middleware) Option {
	return func(c *config) {
		c.middleware = append(c.middleware, mw...)
	}
}

// WithLogger sets the logger for asynchronous delivery failures.
func WithLogger(logger *slog.Logger) Option {
	return func(c *config) {
		if logger != nil {
			c.logger = logger
		}
	}
}
