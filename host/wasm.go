package host

import (
	"context"
	"fmt"
	"sync"

	"github.com/reglet-dev/portbridge/domain/entities"
	"github.com/reglet-dev/portbridge/domain/errors"
	"github.com/reglet-dev/portbridge/domain/ports"
	"github.com/reglet-dev/portbridge/hostfuncs"
	wazeroadapter "github.com/reglet-dev/portbridge/infrastructure/wazero"
	"github.com/tetratelabs/wazero/api"
)

// deliver status codes returned by the guest.
const (
	statusOK          = 0
	statusUnknownPort = 1
	statusEmitFailed  = 2
)

// WasmUnit is a Computation Unit running as a wazero module instance.
// Calls into the guest are serialized: the module runs on one logical thread.
type WasmUnit struct {
	module     api.Module
	board      *hostfuncs.Switchboard
	name       string
	descriptor entities.UnitDescriptor
	output     []*outputWriter
	mu         sync.Mutex

	maxPayloadSize uint32
	closed     bool
}

var _ ports.Unit = (*WasmUnit)(nil)

// Name returns the module instance name.
func (u *WasmUnit) Name() string {
	return u.name
}

// Describe returns the ports the unit declares.
func (u *WasmUnit) Describe() entities.UnitDescriptor {
	return u.descriptor
}

// Send delivers payload on an inbound port by calling the guest's "deliver"
// export. Emissions the guest makes during the call are dispatched before Send
// returns. A payload over the executor's max payload size is rejected with a
// *errors.UnitError wrapping errors.ErrPayloadTooLarge.
func (u *WasmUnit) Send(ctx context.Context, port entities.PortName, payload string) error {
	if !u.descriptor.HasInbound(port) {
		return &errors.PortError{Port: port, Direction: entities.Inbound}
	}
	if uint64(len(payload)) > uint64(u.maxPayloadSize) {
		return &errors.UnitError{Operation: "deliver", Port: port,
			Err: fmt.Errorf("%w: %d bytes, limit %d", errors.ErrPayloadTooLarge, len(payload), u.maxPayloadSize)}
	}

	u.mu.Lock()
	defer u.mu.Unlock()
	if u.closed {
		return errors.ErrUnitClosed
	}

	callCtx := u.callContext(ctx)

	portPacked, err := u.writeGuest(callCtx, []byte(port))
	if err != nil {
		return &errors.UnitError{Operation: "deliver", Port: port, Err: err}
	}
	defer u.free(callCtx, portPacked)

	payloadPacked, err := u.writeGuest(callCtx, []byte(payload))
	if err != nil {
		return &errors.UnitError{Operation: "deliver", Port: port, Err: err}
	}
	defer u.free(callCtx, payloadPacked)

	results, err := u.module.ExportedFunction("deliver").Call(callCtx, portPacked, payloadPacked)
	if err != nil {
		return &errors.UnitError{Operation: "deliver", Port: port, Err: err}
	}
	if len(results) == 0 {
		return &errors.UnitError{Operation: "deliver", Port: port, Err: fmt.Errorf("no status returned")}
	}

	switch status := uint32(results[0]); status { //nolint:gosec // G115: i32 result
	case statusOK:
		return nil
	case statusUnknownPort:
		return &errors.PortError{Port: port, Direction: entities.Inbound}
	case statusEmitFailed:
		return &errors.UnitError{Operation: "emit", Port: port, Err: fmt.Errorf("guest reported a failed emission")}
	default:
		return &errors.UnitError{Operation: "deliver", Port: port, Err: fmt.Errorf("unexpected status %d", status)}
	}
}

// Subscribe registers a persistent handler for an outbound port.
func (u *WasmUnit) Subscribe(port entities.PortName, handler ports.OutboundHandler) error {
	u.mu.Lock()
	closed := u.closed
	u.mu.Unlock()
	if closed {
		return errors.ErrUnitClosed
	}
	return u.board.Subscribe(port, handler)
}

// Close closes the module instance. It waits for an in-flight Send.
func (u *WasmUnit) Close(ctx context.Context) error {
	u.mu.Lock()
	defer u.mu.Unlock()
	if u.closed {
		return nil
	}
	u.closed = true
	for _, w := range u.output {
		w.Flush()
	}
	return u.module.Close(ctx)
}

// bind creates the switchboard for the declared outbound ports.
func (u *WasmUnit) bind(descriptor entities.UnitDescriptor, mw []hostfuncs.Middleware) error {
	board, err := hostfuncs.NewSwitchboard(
		hostfuncs.WithMiddleware(hostfuncs.PanicRecoveryMiddleware()),
		hostfuncs.WithMiddleware(mw...),
		hostfuncs.WithPorts(descriptor.Outbound...),
	)
	if err != nil {
		return &errors.UnitError{Operation: "describe", Err: err}
	}
	if descriptor.Name == "" {
		descriptor.Name = u.name
	}
	u.descriptor = descriptor
	u.board = board
	return nil
}

// callContext tags ctx with the unit name and binds its switchboard so the
// emit host function can route emissions back to this unit.
func (u *WasmUnit) callContext(ctx context.Context) context.Context {
	ctx = wazeroadapter.WithUnitName(ctx, u.name)
	if u.board != nil {
		ctx = wazeroadapter.WithSwitchboard(ctx, u.board)
	}
	return ctx
}

// writeGuest copies data into guest memory allocated through "allocate" and
// returns the packed pointer and length. Empty data is passed as 0.
func (u *WasmUnit) writeGuest(ctx context.Context, data []byte) (uint64, error) {
	if len(data) == 0 {
		return 0, nil
	}

	resAlloc, err := u.module.ExportedFunction("allocate").Call(ctx, uint64(len(data)))
	if err != nil {
		return 0, fmt.Errorf("failed to allocate in guest: %w", err)
	}
	if len(resAlloc) == 0 {
		return 0, fmt.Errorf("allocate returned no results")
	}
	ptr := uint32(resAlloc[0]) //nolint:gosec // G115: WASM32 pointers are always 32-bit
	if !u.module.Memory().Write(ptr, data) {
		return 0, fmt.Errorf("failed to write to guest memory")
	}
	return wazeroadapter.PackPtrLen(ptr, uint32(len(data))), nil //nolint:gosec // G115: checked against maxPayloadSize in Send
}

// free returns guest memory through "deallocate" when the guest exports it.
func (u *WasmUnit) free(ctx context.Context, packed uint64) {
	if packed == 0 {
		return
	}
	fn := u.module.ExportedFunction("deallocate")
	if fn == nil {
		return
	}
	ptr, length := wazeroadapter.UnpackPtrLen(packed)
	_, _ = fn.Call(ctx, uint64(ptr), uint64(length))
}

// readPacked copies the bytes a packed pointer refers to out of guest memory.
func (u *WasmUnit) readPacked(packed uint64) ([]byte, error) {
	ptr, length := wazeroadapter.UnpackPtrLen(packed)
	if ptr == 0 || length == 0 {
		return nil, fmt.Errorf("null response from unit")
	}
	data, ok := u.module.Memory().Read(ptr, length)
	if !ok {
		return nil, fmt.Errorf("failed to read response from memory")
	}
	out := make([]byte, length)
	copy(out, data)
	return out, nil
}
