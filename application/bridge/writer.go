package bridge

import (
	"context"
	stdErrors "errors"
	"log/slog"
	"sync"

	"github.com/reglet-dev/portbridge/domain/entities"
	"github.com/reglet-dev/portbridge/domain/errors"
	"github.com/reglet-dev/portbridge/domain/ports"
)

var errWriterClosed = stdErrors.New("output writer is closed")

// fileWriter owns one output path. Messages are written strictly in the
// order they were enqueued.
type fileWriter struct {
	sink   ports.OutputSink
	report *entities.Report
	logger *slog.Logger
	fail   func(error)
	queue  chan entities.Message
	path   string
	mu     sync.RWMutex // guards closed and the queue's lifetime
	closed bool
	failed bool
}

func newFileWriter(path string, size int, sink ports.OutputSink, report *entities.Report, logger *slog.Logger, fail func(error)) *fileWriter {
	return &fileWriter{
		sink:   sink,
		report: report,
		logger: logger,
		fail:   fail,
		queue:  make(chan entities.Message, size),
		path:   path,
	}
}

// enqueue blocks while the queue is full. It gives up when ctx ends, which
// happens only once the run has already failed or been stopped.
func (w *fileWriter) enqueue(ctx context.Context, msg entities.Message) error {
	w.mu.RLock()
	defer w.mu.RUnlock()
	if w.closed {
		return errWriterClosed
	}

	select {
	case w.queue <- msg:
		return nil
	case <-ctx.Done():
		return context.Cause(ctx)
	}
}

// close stops accepting messages. run returns after draining the queue.
func (w *fileWriter) close() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if !w.closed {
		w.closed = true
		close(w.queue)
	}
}

// run writes queued messages until close. After the first failure remaining
// messages are discarded.
func (w *fileWriter) run(ctx context.Context) {
	// Writes already queued land even when the run is being stopped.
	ctx = context.WithoutCancel(ctx)

	for msg := range w.queue {
		if w.failed {
			continue
		}

		if err := w.sink.Write(ctx, w.path, msg.Payload); err != nil {
			w.failed = true
			werr := asWriteError(err, msg.Port, w.path)
			w.logger.ErrorContext(ctx, "failed to write output",
				"port", msg.Port, "path", w.path, "id", msg.ID, "error", werr)
			w.fail(werr)
			continue
		}

		w.report.RecordWritten(w.path)
		w.logger.DebugContext(ctx, "output written",
			"port", msg.Port, "path", w.path, "id", msg.ID, "bytes", len(msg.Payload))
	}
}

func asWriteError(err error, port entities.PortName, path string) *errors.WriteError {
	var werr *errors.WriteError
	if stdErrors.As(err, &werr) {
		return &errors.WriteError{Err: werr.Err, Port: port, Path: path}
	}
	return &errors.WriteError{Err: err, Port: port, Path: path}
}
