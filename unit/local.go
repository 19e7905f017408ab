package unit

import (
	"context"
	stdErrors "errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/reglet-dev/portbridge/domain/entities"
	"github.com/reglet-dev/portbridge/domain/errors"
	"github.com/reglet-dev/portbridge/domain/ports"
	"github.com/reglet-dev/portbridge/hostfuncs"
)

// Emitter publishes payloads on a unit's outbound ports.
type Emitter interface {
	Emit(ctx context.Context, port entities.PortName, payload string) error
}

// InboundFunc handles one payload delivered on an inbound port.
type InboundFunc func(ctx context.Context, payload string, out Emitter) error

type delivery struct {
	ctx     context.Context
	fn      InboundFunc
	port    entities.PortName
	payload string
}

// Local is an in-process Computation Unit.
type Local struct {
	board      *hostfuncs.Switchboard
	logger     *slog.Logger
	inbound    map[entities.PortName]InboundFunc
	queue      chan delivery
	loopDone   chan struct{}
	descriptor entities.UnitDescriptor
	waiters    []chan struct{}
	errs       []error

	closeMu   sync.RWMutex // guards closed and the queue's lifetime
	deliverMu sync.Mutex   // one delivery at a time
	mu        sync.Mutex   // guards pending, waiters, errs
	pending   int
	closed    bool
}

var (
	_ ports.Unit     = (*Local)(nil)
	_ ports.Quiescer = (*Local)(nil)
	_ Emitter        = (*Local)(nil)
)

// New creates a Local unit. With WithAsync the unit owns a goroutine until Close.
func New(opts ...Option) (*Local, error) {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	if len(cfg.errors) > 0 {
		return nil, stdErrors.Join(cfg.errors...)
	}

	board, err := hostfuncs.NewSwitchboard(
		hostfuncs.WithMiddleware(hostfuncs.PanicRecoveryMiddleware()),
		hostfuncs.WithMiddleware(cfg.middleware...),
		hostfuncs.WithPorts(cfg.outbound...),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create switchboard: %w", err)
	}

	l := &Local{
		board:   board,
		logger:  cfg.logger,
		inbound: cfg.inbound,
		descriptor: entities.UnitDescriptor{
			Name:     cfg.name,
			Inbound:  cfg.inboundOrder,
			Outbound: append([]entities.PortName(nil), cfg.outbound...),
		},
	}

	if cfg.async {
		l.queue = make(chan delivery, cfg.queueSize)
		l.loopDone = make(chan struct{})
		go l.loop()
	}
	return l, nil
}

// Describe returns the ports the unit declares.
func (l *Local) Describe() entities.UnitDescriptor {
	return l.descriptor
}

// Send delivers payload on an inbound port. In synchronous mode the inbound
// function runs before Send returns and its error is returned. In asynchronous
// mode Send only enqueues; failures surface from Wait.
func (l *Local) Send(ctx context.Context, port entities.PortName, payload string) error {
	fn, ok := l.inbound[port]
	if !ok {
		return &errors.PortError{Port: port, Direction: entities.Inbound}
	}

	l.closeMu.RLock()
	defer l.closeMu.RUnlock()
	if l.closed {
		return errors.ErrUnitClosed
	}

	d := delivery{ctx: ctx, fn: fn, port: port, payload: payload}
	if l.queue == nil {
		return l.deliver(d)
	}

	l.mu.Lock()
	l.pending++
	l.mu.Unlock()

	// Processing outlives the caller's context; only enqueueing is cancellable.
	d.ctx = context.WithoutCancel(ctx)
	select {
	case l.queue <- d:
		return nil
	case <-ctx.Done():
		l.done(nil)
		return ctx.Err()
	}
}

// Emit dispatches payload to the subscribers of an outbound port.
func (l *Local) Emit(ctx context.Context, port entities.PortName, payload string) error {
	return l.board.Dispatch(ctx, port, []byte(payload))
}

// Subscribe registers a persistent handler for an outbound port.
func (l *Local) Subscribe(port entities.PortName, handler ports.OutboundHandler) error {
	l.closeMu.RLock()
	defer l.closeMu.RUnlock()
	if l.closed {
		return errors.ErrUnitClosed
	}
	return l.board.Subscribe(port, handler)
}

// Wait blocks until every queued delivery has been processed and returns the
// errors they produced since the previous Wait.
func (l *Local) Wait(ctx context.Context) error {
	l.mu.Lock()
	if l.pending == 0 {
		err := l.takeErrs()
		l.mu.Unlock()
		return err
	}
	idle := make(chan struct{})
	l.waiters = append(l.waiters, idle)
	l.mu.Unlock()

	select {
	case <-idle:
		l.mu.Lock()
		defer l.mu.Unlock()
		return l.takeErrs()
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Close stops accepting deliveries. Queued deliveries are still processed;
// no handler fires after Close returns. Close must not be called from an
// inbound function or outbound handler.
func (l *Local) Close(_ context.Context) error {
	l.closeMu.Lock()
	if l.closed {
		l.closeMu.Unlock()
		return nil
	}
	l.closed = true
	if l.queue != nil {
		close(l.queue)
	}
	l.closeMu.Unlock()

	if l.loopDone != nil {
		<-l.loopDone
	}
	return nil
}

func (l *Local) loop() {
	defer close(l.loopDone)
	for d := range l.queue {
		err := l.deliver(d)
		if err != nil {
			l.logger.WarnContext(d.ctx, "unit delivery failed",
				"unit", l.descriptor.Name, "port", d.port, "error", err)
		}
		l.done(err)
	}
}

func (l *Local) deliver(d delivery) error {
	l.deliverMu.Lock()
	defer l.deliverMu.Unlock()

	if err := d.fn(d.ctx, d.payload, l); err != nil {
		return &errors.UnitError{Operation: "deliver", Port: d.port, Err: err}
	}
	return nil
}

// done records the end of an asynchronous delivery and wakes waiters when the
// queue drains.
func (l *Local) done(err error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if err != nil {
		l.errs = append(l.errs, err)
	}
	l.pending--
	if l.pending == 0 {
		for _, w := range l.waiters {
			close(w)
		}
		l.waiters = nil
	}
}

// takeErrs must be called with mu held.
func (l *Local) takeErrs() error {
	err := stdErrors.Join(l.errs...)
	l.errs = nil
	return err
}
