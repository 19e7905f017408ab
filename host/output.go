package host

import (
	"bytes"
	"context"
	"log/slog"
	"sync"
)

// DefaultMaxLineSize caps one line of guest stdout or stderr (64KB).
// Longer lines are logged in pieces marked truncated.
const DefaultMaxLineSize = 64 * 1024

// outputWriter turns a guest's stdout or stderr into log records, one per
// line. It implements io.Writer for wazero.ModuleConfig.
type outputWriter struct {
	logger *slog.Logger
	unit   string
	stream string
	buf    bytes.Buffer
	limit  int
	mu     sync.Mutex
}

func newOutputWriter(logger *slog.Logger, unit, stream string, limit int) *outputWriter {
	if limit <= 0 {
		limit = DefaultMaxLineSize
	}
	return &outputWriter{logger: logger, unit: unit, stream: stream, limit: limit}
}

// Write always reports len(p) so the guest never sees a short write.
func (w *outputWriter) Write(p []byte) (int, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	n := len(p)
	for len(p) > 0 {
		i := bytes.IndexByte(p, '\n')
		if i < 0 {
			w.buffer(p)
			break
		}
		w.buffer(p[:i])
		w.emit(false)
		p = p[i+1:]
	}
	return n, nil
}

// Flush logs a trailing line that never got its newline.
func (w *outputWriter) Flush() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.buf.Len() > 0 {
		w.emit(false)
	}
}

func (w *outputWriter) buffer(p []byte) {
	for len(p) > 0 {
		room := w.limit - w.buf.Len()
		if len(p) <= room {
			w.buf.Write(p)
			return
		}
		w.buf.Write(p[:room])
		w.emit(true)
		p = p[room:]
	}
}

func (w *outputWriter) emit(truncated bool) {
	attrs := []slog.Attr{slog.String("unit", w.unit), slog.String("stream", w.stream)}
	if truncated {
		attrs = append(attrs, slog.Bool("truncated", true))
	}
	w.logger.LogAttrs(context.Background(), slog.LevelInfo, w.buf.String(), attrs...)
	w.buf.Reset()
}
