package guest

import (
	"context"
	"fmt"
	"log/slog"
	"runtime/debug"
	"sync"

	"github.com/reglet-dev/portbridge/domain/entities"
	"github.com/reglet-dev/portbridge/domain/errors"
	wasmcontext "github.com/reglet-dev/portbridge/internal/wasmcontext"
)

// Handler processes one payload delivered on an inbound port.
type Handler func(ctx context.Context, payload string) error

// Status codes returned by deliver.
const (
	StatusOK          int32 = 0
	StatusUnknownPort int32 = 1
	StatusFailed      int32 = 2
)

var registry = struct {
	inbound  map[string]Handler
	name     string
	order    []string
	outbound []string
	sync.RWMutex
}{
	inbound: make(map[string]Handler),
	name:    "unit",
}

// SetName sets the unit name reported to the host.
func SetName(name string) {
	registry.Lock()
	defer registry.Unlock()
	registry.name = name
}

// Handle registers fn for an inbound port.
// Panics on an empty port name, a nil handler or a second registration.
func Handle(port string, fn Handler) {
	if port == "" || fn == nil {
		panic("guest: Handle requires a port name and a handler")
	}
	registry.Lock()
	defer registry.Unlock()
	if _, exists := registry.inbound[port]; exists {
		panic(fmt.Sprintf("guest: inbound port %q registered twice", port))
	}
	registry.inbound[port] = fn
	registry.order = append(registry.order, port)
}

// Declare adds outbound ports. Emit rejects ports that were not declared.
func Declare(ports ...string) {
	registry.Lock()
	defer registry.Unlock()
	for _, p := range ports {
		if p == "" || containsPort(registry.outbound, p) {
			continue
		}
		registry.outbound = append(registry.outbound, p)
	}
}

// Descriptor returns the ports registered so far.
func Descriptor() entities.UnitDescriptor {
	registry.RLock()
	defer registry.RUnlock()
	return entities.UnitDescriptor{
		Name:     registry.name,
		Inbound:  append([]entities.PortName(nil), registry.order...),
		Outbound: append([]entities.PortName(nil), registry.outbound...),
	}
}

// Emit publishes payload on a declared outbound port.
func Emit(port, payload string) error {
	registry.RLock()
	declared := containsPort(registry.outbound, port)
	registry.RUnlock()
	if !declared {
		return &errors.PortError{Port: port, Direction: entities.Outbound}
	}
	return emitToHost(port, payload)
}

// afterPanic runs once a handler panic has been recovered. The wasip1 build
// sets it to release guest memory left pinned by the aborted call.
var afterPanic func()

// dispatch runs the handler for port and maps the outcome to a status code.
// A panicking handler is reported as StatusFailed.
func dispatch(port, payload string) (status int32) {
	registry.RLock()
	fn, ok := registry.inbound[port]
	registry.RUnlock()
	if !ok {
		slog.Warn("guest: delivery on unknown port", "port", port)
		return StatusUnknownPort
	}

	ctx := wasmcontext.BeginDelivery(port)
	defer wasmcontext.ResetContext()

	defer func() {
		if r := recover(); r != nil {
			slog.ErrorContext(ctx, "guest: handler panicked", "panic", fmt.Sprint(r), "stack", string(debug.Stack()))
			if afterPanic != nil {
				afterPanic()
			}
			status = StatusFailed
		}
	}()

	if err := fn(ctx, payload); err != nil {
		slog.ErrorContext(ctx, "guest: handler failed", "error", err)
		return StatusFailed
	}
	return StatusOK
}

func containsPort(ports []string, port string) bool {
	for _, p := range ports {
		if p == port {
			return true
		}
	}
	return false
}
