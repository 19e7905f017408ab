// Package log provides structured logging (slog) for guest units.
//
// Under GOOS=wasip1 importing this package installs a handler that forwards
// every record to the host's log_message function, where it is re-emitted
// through the host logger. Other builds write the same wire records as JSON
// lines to stderr, which keeps units testable as ordinary Go code.
package log

import (
	"context"
	"encoding/json"
	"log/slog"
	"runtime"
	"strconv"

	"github.com/reglet-dev/portbridge/domain/entities"
	wasmcontext "github.com/reglet-dev/portbridge/internal/wasmcontext"
)

// WasmLogHandler implements slog.Handler to route logs through a host function.
type WasmLogHandler struct {
	send   func([]byte)
	attrs  []entities.LogAttrWire
	prefix string // group prefix, "a.b."
	opts   handlerConfig
}

// HandlerOption configures the WasmLogHandler.
type HandlerOption func(*handlerConfig)

type handlerConfig struct {
	level     slog.Leveler
	addSource bool
}

// defaultHandlerConfig returns the default configuration.
func defaultHandlerConfig() handlerConfig {
	return handlerConfig{
		level: slog.LevelInfo,
	}
}

// WithLevel sets the minimum log level to report.
// Records below this level will be filtered on the guest side.
func WithLevel(level slog.Leveler) HandlerOption {
	return func(c *handlerConfig) {
		c.level = level
	}
}

// WithSource enables reporting of source location (file/line).
func WithSource(enabled bool) HandlerOption {
	return func(c *handlerConfig) {
		c.addSource = enabled
	}
}

// NewHandler creates a new WasmLogHandler with the given options.
func NewHandler(opts ...HandlerOption) *WasmLogHandler {
	cfg := defaultHandlerConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	return &WasmLogHandler{opts: cfg, send: sendToHost}
}

// Enabled reports whether the handler handles records at the given level.
func (h *WasmLogHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.opts.level.Level()
}

// Handle encodes the record and hands it to the host.
func (h *WasmLogHandler) Handle(ctx context.Context, record slog.Record) error {
	data, err := json.Marshal(h.toWire(ctx, record))
	if err != nil {
		return err
	}
	h.send(data)
	return nil
}

// WithAttrs returns a new WasmLogHandler that includes the given attributes.
func (h *WasmLogHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	if len(attrs) == 0 {
		return h
	}
	nh := *h
	nh.attrs = append([]entities.LogAttrWire(nil), h.attrs...)
	for _, a := range attrs {
		nh.attrs = appendAttr(nh.attrs, h.prefix, a)
	}
	return &nh
}

// WithGroup returns a new WasmLogHandler with the given group name.
// Keys of later attributes are qualified with it, e.g. "csv.row".
func (h *WasmLogHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	nh := *h
	nh.prefix = h.prefix + name + "."
	return &nh
}

// toWire builds the wire record, adding the inbound port being handled.
func (h *WasmLogHandler) toWire(ctx context.Context, record slog.Record) entities.LogMessageWire {
	msg := entities.LogMessageWire{
		Level:     record.Level.String(),
		Message:   record.Message,
		Timestamp: record.Time,
	}

	msg.Attrs = append(msg.Attrs, h.attrs...)
	if port, ok := currentPort(ctx); ok {
		msg.Attrs = append(msg.Attrs, entities.LogAttrWire{Key: "port", Type: "string", Value: port})
	}
	if h.opts.addSource && record.PC != 0 {
		frames := runtime.CallersFrames([]uintptr{record.PC})
		f, _ := frames.Next()
		msg.Attrs = append(msg.Attrs, entities.LogAttrWire{
			Key: slog.SourceKey, Type: "string", Value: f.File + ":" + strconv.Itoa(f.Line),
		})
	}

	record.Attrs(func(attr slog.Attr) bool {
		msg.Attrs = appendAttr(msg.Attrs, h.prefix, attr)
		return true
	})
	return msg
}

// appendAttr flattens groups into dotted keys.
func appendAttr(dst []entities.LogAttrWire, prefix string, attr slog.Attr) []entities.LogAttrWire {
	attr.Value = attr.Value.Resolve()
	if attr.Equal(slog.Attr{}) {
		return dst
	}
	if attr.Value.Kind() == slog.KindGroup {
		p := prefix
		if attr.Key != "" {
			p = prefix + attr.Key + "."
		}
		for _, ga := range attr.Value.Group() {
			dst = appendAttr(dst, p, ga)
		}
		return dst
	}
	return append(dst, wireAttr(prefix+attr.Key, attr.Value))
}

// currentPort prefers the port on ctx and falls back to the delivery in progress.
func currentPort(ctx context.Context) (string, bool) {
	if ctx != nil {
		if port, ok := wasmcontext.PortFromContext(ctx); ok {
			return port, true
		}
	}
	return wasmcontext.PortFromContext(wasmcontext.GetCurrentContext())
}
