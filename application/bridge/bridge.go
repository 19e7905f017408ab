package bridge

import (
	"context"
	stdErrors "errors"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/reglet-dev/portbridge/domain/entities"
	"github.com/reglet-dev/portbridge/domain/ports"
)

// ErrAlreadyRan is returned by a second call to Run. Subscriptions on a unit
// are persistent, so a bridge runs once.
var ErrAlreadyRan = stdErrors.New("bridge already ran")

// Bridge wires a unit's ports to an input source and an output sink.
type Bridge struct {
	unit   ports.Unit
	source ports.InputSource
	sink   ports.OutputSink
	cfg    config
	ran    atomic.Bool
}

// New creates a Bridge. Without options it uses the default ledger bindings.
func New(unit ports.Unit, source ports.InputSource, sink ports.OutputSink, opts ...Option) (*Bridge, error) {
	if unit == nil {
		return nil, fmt.Errorf("bridge requires a unit")
	}
	if source == nil || sink == nil {
		return nil, fmt.Errorf("bridge requires an input source and an output sink")
	}

	cfg := defaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.resolver == nil {
		if r, ok := source.(ports.PathResolver); ok {
			cfg.resolver = r
		} else {
			cfg.resolver = absResolver{}
		}
	}

	return &Bridge{unit: unit, source: source, sink: sink, cfg: cfg}, nil
}

// Run subscribes the outputs, delivers the inputs and returns once the unit
// has gone quiet and every queued write has landed. In watch mode it instead
// returns when ctx is cancelled.
//
// The first failed write stops the run and is returned as *errors.WriteError.
// Cancelling ctx is a clean shutdown and returns a nil error.
func (b *Bridge) Run(ctx context.Context) (*entities.Report, error) {
	if !b.ran.CompareAndSwap(false, true) {
		return nil, ErrAlreadyRan
	}

	report := entities.NewReport()
	runCtx, cancel := context.WithCancelCause(ctx)
	defer cancel(nil)

	writers, wg := b.startWriters(runCtx, report, cancel)
	stop := func() {
		for _, w := range writers {
			w.close()
		}
		wg.Wait()
	}

	if err := b.subscribe(runCtx, writers); err != nil {
		stop()
		report.Finish()
		return report, err
	}

	if err := b.deliverInputs(runCtx, report); err != nil {
		cancel(err)
	}

	if b.cfg.watch && runCtx.Err() == nil {
		if err := b.watch(runCtx, report); err != nil {
			cancel(err)
		}
	}

	if q, ok := b.unit.(ports.Quiescer); ok && runCtx.Err() == nil {
		if err := q.Wait(runCtx); err != nil && runCtx.Err() == nil {
			cancel(fmt.Errorf("unit failed: %w", err))
		}
	}

	stop()
	report.Finish()

	err := runError(ctx, runCtx)
	b.cfg.logger.InfoContext(ctx, "run finished",
		"delivered", len(report.Delivered),
		"missing", report.MissingPorts(),
		"took", report.Duration(),
		"failed", err != nil)
	return report, err
}

// startWriters creates one writer per distinct output path.
func (b *Bridge) startWriters(ctx context.Context, report *entities.Report, cancel context.CancelCauseFunc) (map[string]*fileWriter, *sync.WaitGroup) {
	writers := make(map[string]*fileWriter, len(b.cfg.outputs))
	wg := &sync.WaitGroup{}
	for _, out := range b.cfg.outputs {
		if _, ok := writers[out.Path]; ok {
			continue
		}
		w := newFileWriter(out.Path, b.cfg.queueSize, b.sink, report, b.cfg.logger, cancel)
		writers[out.Path] = w
		wg.Add(1)
		go func() {
			defer wg.Done()
			w.run(ctx)
		}()
	}
	return writers, wg
}

// subscribe registers a persistent handler per output binding.
func (b *Bridge) subscribe(ctx context.Context, writers map[string]*fileWriter) error {
	for _, out := range b.cfg.outputs {
		if err := b.unit.Subscribe(out.Port, b.handler(ctx, writers[out.Path])); err != nil {
			return fmt.Errorf("failed to subscribe %s: %w", out.Port, err)
		}
	}
	return nil
}

// handler logs an emission and queues it for writing.
func (b *Bridge) handler(ctx context.Context, w *fileWriter) ports.OutboundHandler {
	return func(_ context.Context, msg entities.Message) error {
		if b.cfg.logPayloads {
			b.cfg.logger.InfoContext(ctx, "output received",
				"port", msg.Port,
				"path", w.path,
				"id", msg.ID,
				"bytes", len(msg.Payload),
				"payload", msg.Payload)
		}
		return w.enqueue(ctx, msg)
	}
}

// runError returns why runCtx ended, or nil when it ended because the caller
// cancelled ctx.
func runError(ctx, runCtx context.Context) error {
	cause := context.Cause(runCtx)
	if cause == nil {
		return nil
	}
	if ctx.Err() != nil && cause == context.Cause(ctx) { //nolint:errorlint // identity check
		return nil
	}
	return cause
}
