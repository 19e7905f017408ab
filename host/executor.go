package host

import (
	"context"
	"crypto/rand"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync/atomic"

	"github.com/reglet-dev/portbridge/domain/entities"
	"github.com/reglet-dev/portbridge/domain/errors"
	"github.com/reglet-dev/portbridge/hostfuncs"
	wazeroadapter "github.com/reglet-dev/portbridge/infrastructure/wazero"
	"github.com/tetratelabs/wazero"
	"github.com/tetratelabs/wazero/imports/wasi_snapshot_preview1"
)

// Executor manages the wazero runtime that compiled units run in.
type Executor struct {
	runtime        wazero.Runtime
	logger         *slog.Logger
	middleware     []hostfuncs.Middleware
	seq            atomic.Uint64
	maxPayloadSize uint32
}

// NewExecutor creates a new executor with the given options.
func NewExecutor(ctx context.Context, opts ...Option) (*Executor, error) {
	e := &Executor{
		maxPayloadSize: hostfuncs.DefaultMaxPayloadSize,
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.logger == nil {
		e.logger = slog.Default()
	}

	rt := wazero.NewRuntime(ctx)
	if _, err := wasi_snapshot_preview1.Instantiate(ctx, rt); err != nil {
		_ = rt.Close(ctx)
		return nil, fmt.Errorf("failed to instantiate WASI: %w", err)
	}

	if err := wazeroadapter.RegisterWithRuntime(ctx, rt,
		wazeroadapter.WithLogger(e.logger),
		wazeroadapter.WithMaxPayloadSize(e.maxPayloadSize),
	); err != nil {
		_ = rt.Close(ctx)
		return nil, fmt.Errorf("failed to register host functions: %w", err)
	}

	e.runtime = rt
	return e, nil
}

// Close releases resources held by the executor, including every loaded unit.
func (e *Executor) Close(ctx context.Context) error {
	return e.runtime.Close(ctx)
}

// LoadUnit instantiates a compiled unit and performs its single
// initialization call. The returned unit lives until Close.
func (e *Executor) LoadUnit(ctx context.Context, wasmBytes []byte, opts ...UnitOption) (*WasmUnit, error) {
	cfg := unitConfig{}
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.name == "" {
		cfg.name = fmt.Sprintf("unit-%d", e.seq.Add(1))
	}

	stdout := newOutputWriter(e.logger, cfg.name, "stdout", DefaultMaxLineSize)
	stderr := newOutputWriter(e.logger, cfg.name, "stderr", DefaultMaxLineSize)
	modConfig := wazero.NewModuleConfig().
		WithName(cfg.name).
		WithStartFunctions(). // reactor modules: _initialize is called explicitly below
		WithStdout(stdout).
		WithStderr(stderr).
		WithRandSource(rand.Reader).
		WithSysWalltime().
		WithSysNanotime().
		WithSysNanosleep()

	mod, err := e.runtime.InstantiateWithConfig(ctx, wasmBytes, modConfig)
	if err != nil {
		return nil, &errors.UnitError{Operation: "instantiate", Err: err}
	}

	u := &WasmUnit{
		module:         mod,
		name:           cfg.name,
		output:         []*outputWriter{stdout, stderr},
		maxPayloadSize: e.maxPayloadSize,
	}
	if mod.ExportedFunction("deliver") == nil || mod.ExportedFunction("allocate") == nil {
		_ = mod.Close(ctx)
		return nil, &errors.UnitError{Operation: "instantiate", Err: fmt.Errorf("module must export 'deliver' and 'allocate'")}
	}

	if cfg.descriptor != nil {
		if err := u.bind(*cfg.descriptor, e.middleware); err != nil {
			_ = mod.Close(ctx)
			return nil, err
		}
	}

	if init := mod.ExportedFunction("_initialize"); init != nil {
		if _, err := init.Call(u.callContext(ctx)); err != nil {
			_ = mod.Close(ctx)
			return nil, &errors.UnitError{Operation: "initialize", Err: err}
		}
	}

	if cfg.descriptor == nil {
		descriptor, err := u.describe(ctx)
		if err != nil {
			_ = mod.Close(ctx)
			return nil, err
		}
		if err := u.bind(descriptor, e.middleware); err != nil {
			_ = mod.Close(ctx)
			return nil, err
		}
	}

	e.logger.DebugContext(ctx, "unit loaded",
		"unit", cfg.name, "inbound", u.descriptor.Inbound, "outbound", u.descriptor.Outbound)
	return u, nil
}

// describe asks the guest for its ports, defaulting to the ledger layout when
// the guest does not export "describe".
func (u *WasmUnit) describe(ctx context.Context) (entities.UnitDescriptor, error) {
	fn := u.module.ExportedFunction("describe")
	if fn == nil {
		return entities.LedgerDescriptor(), nil
	}

	results, err := fn.Call(u.callContext(ctx))
	if err != nil {
		return entities.UnitDescriptor{}, &errors.UnitError{Operation: "describe", Err: err}
	}
	if len(results) == 0 {
		return entities.UnitDescriptor{}, &errors.UnitError{Operation: "describe", Err: fmt.Errorf("no result")}
	}

	data, err := u.readPacked(results[0])
	u.free(ctx, results[0])
	if err != nil {
		return entities.UnitDescriptor{}, &errors.UnitError{Operation: "describe", Err: err}
	}

	var descriptor entities.UnitDescriptor
	if err := json.Unmarshal(data, &descriptor); err != nil {
		return entities.UnitDescriptor{}, &errors.UnitError{Operation: "describe", Err: fmt.Errorf("failed to decode descriptor: %w", err)}
	}
	return descriptor, nil
}
