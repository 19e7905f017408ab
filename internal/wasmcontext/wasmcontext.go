// Package wasmcontext tracks the delivery a guest unit is currently handling.
// The host calls into a guest one delivery at a time, so the current context
// is a process-wide value set on entry to "deliver" and reset on exit.
package wasmcontext

import (
	stdcontext "context"
	"sync"
)

// contextKey is a type alias for context value keys to avoid collisions.
type contextKey string

// PortKey is the context key for the inbound port being handled.
const PortKey contextKey = "port"

// SequenceKey is the context key for the delivery sequence number.
const SequenceKey contextKey = "delivery_seq"

// contextStore holds the current context for the unit's execution.
var contextStore = struct {
	ctx stdcontext.Context
	seq uint64
	sync.RWMutex
}{
	ctx: stdcontext.Background(),
}

// SetCurrentContext sets the current execution context.
func SetCurrentContext(ctx stdcontext.Context) {
	contextStore.Lock()
	defer contextStore.Unlock()
	contextStore.ctx = ctx
}

// GetCurrentContext returns the current execution context, or
// context.Background() outside a delivery.
func GetCurrentContext() stdcontext.Context {
	contextStore.RLock()
	defer contextStore.RUnlock()
	if contextStore.ctx == nil {
		return stdcontext.Background()
	}
	return contextStore.ctx
}

// ResetContext resets the global context to background.
// It should be called (usually via defer) after a delivery completes.
func ResetContext() {
	SetCurrentContext(stdcontext.Background())
}

// BeginDelivery makes a fresh context for a delivery on port the current one
// and returns it. Sequence numbers start at 1.
func BeginDelivery(port string) stdcontext.Context {
	contextStore.Lock()
	defer contextStore.Unlock()
	contextStore.seq++
	ctx := stdcontext.WithValue(stdcontext.Background(), PortKey, port)
	ctx = stdcontext.WithValue(ctx, SequenceKey, contextStore.seq)
	contextStore.ctx = ctx
	return ctx
}

// PortFromContext returns the inbound port a delivery context belongs to.
func PortFromContext(ctx stdcontext.Context) (string, bool) {
	port, ok := ctx.Value(PortKey).(string)
	return port, ok
}

// SequenceFromContext returns the delivery sequence number.
func SequenceFromContext(ctx stdcontext.Context) (uint64, bool) {
	seq, ok := ctx.Value(SequenceKey).(uint64)
	return seq, ok
}
