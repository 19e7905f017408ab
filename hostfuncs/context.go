package hostfuncs

import (
	"context"
)

// PortContext wraps a standard context.Context with dispatch-specific helpers.
// It provides access to the outbound port being dispatched and allows middleware
// to store request-scoped values without polluting the standard context.
type PortContext interface {
	context.Context

	// PortName returns the outbound port being dispatched.
	PortName() string

	// SetValue stores a request-scoped value. Unlike context.WithValue,
	// this mutates the existing PortContext.
	SetValue(key, value any)

	// GetValue retrieves a request-scoped value set by SetValue.
	GetValue(key any) (value any, ok bool)
}

// portContext is the concrete implementation of PortContext.
type portContext struct {
	context.Context
	values map[any]any
	port   string
}

// NewPortContext creates a new PortContext wrapping the given context.
func NewPortContext(ctx context.Context, port string) PortContext {
	return &portContext{
		Context: ctx,
		port:    port,
		values:  make(map[any]any),
	}
}

// PortName returns the outbound port being dispatched.
func (c *portContext) PortName() string {
	return c.port
}

// SetValue stores a request-scoped value.
func (c *portContext) SetValue(key, value any) {
	c.values[key] = value
}

// GetValue retrieves a request-scoped value.
func (c *portContext) GetValue(key any) (any, bool) {
	v, ok := c.values[key]
	return v, ok
}

// PortContextFrom extracts a PortContext from a context.Context.
// If the context is already a PortContext for the same port, it is returned directly.
// Otherwise, a new PortContext is created wrapping the given context.
func PortContextFrom(ctx context.Context, port string) PortContext {
	if pc, ok := ctx.(PortContext); ok && pc.PortName() == port {
		return pc
	}
	return NewPortContext(ctx, port)
}
