package hostfuncs

import (
	"context"
	stdErrors "errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/reglet-dev/portbridge/domain/entities"
	"github.com/reglet-dev/portbridge/domain/errors"
	"github.com/reglet-dev/portbridge/domain/ports"
)

// DefaultMaxPayloadSize limits the size of a single port payload (64MB).
// This prevents a misbehaving module from triggering OOM by claiming huge payloads.
const DefaultMaxPayloadSize = entities.DefaultMaxPayloadSize

// Switchboard routes outbound port emissions to subscribed handlers.
// The set of ports is fixed at construction; subscriptions are persistent and
// may be added at any time.
type Switchboard struct {
	handlers   map[string][]ports.OutboundHandler
	names      []string // sorted for consistent iteration
	middleware []Middleware
	mu         sync.RWMutex
}

// switchboardBuilder accumulates configuration during construction.
type switchboardBuilder struct {
	ports      map[string]struct{}
	middleware []Middleware
	errors     []error
}

// SwitchboardOption is a functional option for configuring a Switchboard.
type SwitchboardOption func(*switchboardBuilder)

// NewSwitchboard creates a Switchboard with the given options.
// Returns an error if any port name is empty or declared twice.
//
// Example usage:
//
//	board, err := NewSwitchboard(
//	    WithMiddleware(PanicRecoveryMiddleware()),
//	    WithPorts("userFilePort", "accountFilePort"),
//	)
func NewSwitchboard(opts ...SwitchboardOption) (*Switchboard, error) {
	b := &switchboardBuilder{
		ports: make(map[string]struct{}),
	}

	for _, opt := range opts {
		opt(b)
	}

	if len(b.errors) > 0 {
		return nil, b.errors[0]
	}

	names := make([]string, 0, len(b.ports))
	handlers := make(map[string][]ports.OutboundHandler, len(b.ports))
	for name := range b.ports {
		names = append(names, name)
		handlers[name] = nil
	}
	sort.Strings(names)

	return &Switchboard{
		handlers:   handlers,
		names:      names,
		middleware: b.middleware,
	}, nil
}

// Subscribe registers a persistent handler on an outbound port.
// The handler is wrapped by the middleware chain (FIFO order).
func (s *Switchboard) Subscribe(port string, handler ports.OutboundHandler) error {
	if handler == nil {
		return fmt.Errorf("handler for %q cannot be nil", port)
	}

	wrapped := handler
	// Apply middleware in reverse order so first middleware wraps outermost
	for i := len(s.middleware) - 1; i >= 0; i-- {
		wrapped = s.middleware[i](wrapped)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	subs, ok := s.handlers[port]
	if !ok {
		return &errors.PortError{Port: port, Direction: entities.Outbound}
	}
	s.handlers[port] = append(subs, wrapped)
	return nil
}

// Dispatch delivers a payload emitted on port to every subscriber, in
// subscription order. An emission on a port without subscribers is dropped.
// Handler errors are joined and returned after all handlers ran.
func (s *Switchboard) Dispatch(ctx context.Context, port string, payload []byte) error {
	s.mu.RLock()
	subs, ok := s.handlers[port]
	subs = append([]ports.OutboundHandler(nil), subs...)
	s.mu.RUnlock()

	if !ok {
		return &errors.PortError{Port: port, Direction: entities.Outbound}
	}

	msg := entities.Message{
		ID:         uuid.NewString(),
		Port:       port,
		Payload:    string(payload),
		ReceivedAt: time.Now(),
	}

	pctx := PortContextFrom(ctx, port)
	var errs []error
	for _, h := range subs {
		if err := h(pctx, msg); err != nil {
			errs = append(errs, err)
		}
	}
	return stdErrors.Join(errs...)
}

// Has returns true if the port is declared.
func (s *Switchboard) Has(port string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.handlers[port]
	return ok
}

// Ports returns a sorted list of all declared ports.
func (s *Switchboard) Ports() []string {
	result := make([]string, len(s.names))
	copy(result, s.names)
	return result
}

// Subscribers returns the number of handlers registered on port.
func (s *Switchboard) Subscribers(port string) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.handlers[port])
}

// addPort declares a port.
// Returns an error if the name is empty or already declared.
func (b *switchboardBuilder) addPort(name string) error {
	if name == "" {
		return fmt.Errorf("port name cannot be empty")
	}
	if _, exists := b.ports[name]; exists {
		return fmt.Errorf("duplicate port name: %q", name)
	}
	b.ports[name] = struct{}{}
	return nil
}

// WithPorts declares outbound ports.
func WithPorts(names ...string) SwitchboardOption {
	return func(b *switchboardBuilder) {
		for _, name := range names {
			if err := b.addPort(name); err != nil {
				b.errors = append(b.errors, err)
			}
		}
	}
}

// WithMiddleware adds middleware to the switchboard.
// Middleware executes in FIFO order (first added wraps first).
func WithMiddleware(mw ...Middleware) SwitchboardOption {
	return func(b *switchboardBuilder) {
		b.middleware = append(b.middleware, mw...)
	}
}
