package hostfuncs

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/reglet-dev/portbridge/domain/entities"
	"github.com/reglet-dev/portbridge/domain/ports"
)

// Middleware is a function that wraps an OutboundHandler to add cross-cutting behavior.
// Middleware executes in FIFO order (first registered wraps first, onion model).
//
// Example usage:
//
//	timing := func(next ports.OutboundHandler) ports.OutboundHandler {
//	    return func(ctx context.Context, msg entities.Message) error {
//	        start := time.Now()
//	        defer func() { slog.Debug("handled", "took", time.Since(start)) }()
//	        return next(ctx, msg)
//	    }
//	}
type Middleware func(next ports.OutboundHandler) ports.OutboundHandler

// PanicRecoveryMiddleware returns a middleware that converts handler panics
// into errors instead of crashing the host (or trapping the guest mid-call).
func PanicRecoveryMiddleware() Middleware {
	return func(next ports.OutboundHandler) ports.OutboundHandler {
		return func(ctx context.Context, msg entities.Message) (err error) {
			defer func() {
				if r := recover(); r != nil {
					err = fmt.Errorf("%s handler: %s", msg.Port, NewPanicError(r).Message)
				}
			}()
			return next(ctx, msg)
		}
	}
}

// LoggingMiddleware returns a middleware that logs every dispatched message at
// debug level, and handler failures at warn level.
func LoggingMiddleware(logger *slog.Logger) Middleware {
	if logger == nil {
		logger = slog.Default()
	}
	return func(next ports.OutboundHandler) ports.OutboundHandler {
		return func(ctx context.Context, msg entities.Message) error {
			port := msg.Port
			if pc, ok := ctx.(PortContext); ok {
				port = pc.PortName()
			}
			start := time.Now()
			err := next(ctx, msg)
			if err != nil {
				logger.WarnContext(ctx, "outbound handler failed", "port", port, "id", msg.ID, "error", err)
				return err
			}
			logger.DebugContext(ctx, "outbound message handled",
				"port", port, "id", msg.ID, "bytes", len(msg.Payload), "took", time.Since(start))
			return nil
		}
	}
}
