package wazero

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/reglet-dev/portbridge/domain/entities"
	"github.com/reglet-dev/portbridge/hostfuncs"
	"github.com/tetratelabs/wazero"
	"github.com/tetratelabs/wazero/api"
)

// ModuleName is the import module name guests use for host functions.
const ModuleName = "portbridge_host"

// AdapterConfig holds configuration for the wazero adapter.
type AdapterConfig struct {
	// Logger receives guest log records. Defaults to slog.Default().
	Logger *slog.Logger

	// MaxPayloadSize limits the size of a payload read from guest memory.
	// Default is 64MB.
	MaxPayloadSize uint32
}

// AdapterOption configures the adapter.
type AdapterOption func(*AdapterConfig)

// WithMaxPayloadSize sets the maximum payload size read from guest memory.
func WithMaxPayloadSize(size uint32) AdapterOption {
	return func(c *AdapterConfig) {
		c.MaxPayloadSize = size
	}
}

// WithLogger sets the logger guest log records are written to.
func WithLogger(logger *slog.Logger) AdapterOption {
	return func(c *AdapterConfig) {
		c.Logger = logger
	}
}

// defaultAdapterConfig returns the default adapter configuration.
func defaultAdapterConfig() AdapterConfig {
	return AdapterConfig{
		MaxPayloadSize: hostfuncs.DefaultMaxPayloadSize,
	}
}

// RegisterWithRuntime instantiates the host module that compiled units import.
// It must be called once per runtime, before any unit is instantiated.
func RegisterWithRuntime(ctx context.Context, runtime wazero.Runtime, opts ...AdapterOption) error {
	cfg := defaultAdapterConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}

	builder := runtime.NewHostModuleBuilder(ModuleName)

	builder.NewFunctionBuilder().
		WithGoModuleFunction(api.GoModuleFunc(func(ctx context.Context, mod api.Module, stack []uint64) {
			handleEmit(ctx, mod, stack, cfg.MaxPayloadSize)
		}), []api.ValueType{api.ValueTypeI64, api.ValueTypeI64}, []api.ValueType{api.ValueTypeI64}).
		Export("emit")

	builder.NewFunctionBuilder().
		WithGoModuleFunction(api.GoModuleFunc(func(ctx context.Context, mod api.Module, stack []uint64) {
			handleLogMessage(ctx, mod, stack, cfg.Logger, cfg.MaxPayloadSize)
		}), []api.ValueType{api.ValueTypeI64}, []api.ValueType{}).
		Export("log_message")

	_, err := builder.Instantiate(ctx)
	if err != nil {
		return fmt.Errorf("failed to instantiate host module %q: %w", ModuleName, err)
	}
	return nil
}

// handleEmit handles an emission from WASM.
// It reads the port name and payload from guest memory and dispatches them.
func handleEmit(ctx context.Context, mod api.Module, stack []uint64, maxPayloadSize uint32) {
	unit := GetUnitName(ctx, mod)
	portPtr, portLen := unpackPtrLen(stack[0])
	payloadPtr, payloadLen := unpackPtrLen(stack[1])

	if payloadLen > maxPayloadSize {
		errMsg := fmt.Sprintf("payload size %d exceeds maximum %d bytes", payloadLen, maxPayloadSize)
		slog.ErrorContext(ctx, "wazero: "+errMsg, "unit", unit)
		stack[0] = writeErrorResponse(ctx, mod, hostfuncs.NewValidationError(errMsg))
		return
	}

	portBytes, ok := mod.Memory().Read(portPtr, portLen)
	if !ok || portLen == 0 {
		stack[0] = writeErrorResponse(ctx, mod, hostfuncs.NewValidationError("invalid port name"))
		return
	}
	port := string(portBytes)

	payload, ok := mod.Memory().Read(payloadPtr, payloadLen)
	if !ok {
		errMsg := "failed to read payload from guest memory"
		slog.ErrorContext(ctx, "wazero: "+errMsg, "unit", unit, "port", port)
		stack[0] = writeErrorResponse(ctx, mod, hostfuncs.NewInternalError(errMsg))
		return
	}

	board, ok := SwitchboardFromContext(ctx)
	if !ok {
		slog.ErrorContext(ctx, "wazero: emission outside a bound call", "unit", unit, "port", port)
		stack[0] = writeErrorResponse(ctx, mod, hostfuncs.NewInternalError("no switchboard bound to call"))
		return
	}

	if err := board.Dispatch(ctx, port, payload); err != nil {
		slog.ErrorContext(ctx, "wazero: emission failed", "unit", unit, "port", port, "error", err)
		stack[0] = writeErrorResponse(ctx, mod, hostfuncs.FromError(err))
		return
	}
	stack[0] = 0
}

// handleLogMessage decodes a guest log record and re-emits it through slog.
func handleLogMessage(ctx context.Context, mod api.Module, stack []uint64, logger *slog.Logger, maxPayloadSize uint32) {
	ptr, length := unpackPtrLen(stack[0])
	if length == 0 || length > maxPayloadSize {
		return
	}
	data, ok := mod.Memory().Read(ptr, length)
	if !ok {
		return
	}

	unit := GetUnitName(ctx, mod)
	var record entities.LogMessageWire
	if err := json.Unmarshal(data, &record); err != nil {
		logger.InfoContext(ctx, "unit log (raw)", "unit", unit, "payload", string(data))
		return
	}

	var level slog.Level
	if err := level.UnmarshalText([]byte(record.Level)); err != nil {
		level = slog.LevelInfo
	}

	attrs := make([]slog.Attr, 0, len(record.Attrs)+1)
	attrs = append(attrs, slog.String("unit", unit))
	for _, a := range record.Attrs {
		attrs = append(attrs, slog.String(a.Key, a.Value))
	}
	logger.LogAttrs(ctx, level, record.Message, attrs...)
}

// writeResponse allocates memory in the guest and writes the response bytes.
// Returns packed ptr+len or 0 on failure.
func writeResponse(ctx context.Context, mod api.Module, data []byte) uint64 {
	allocateFn := mod.ExportedFunction("allocate")
	if allocateFn == nil {
		slog.ErrorContext(ctx, "wazero: guest module missing 'allocate' export")
		return 0
	}

	results, err := allocateFn.Call(ctx, uint64(len(data)))
	if err != nil || len(results) == 0 {
		slog.ErrorContext(ctx, "wazero: failed to call guest allocate", "error", err)
		return 0
	}
	ptr := uint32(results[0]) //nolint:gosec // G115: WASM32 pointers are always 32-bit

	if !mod.Memory().Write(ptr, data) {
		slog.ErrorContext(ctx, "wazero: failed to write response to guest memory")
		return 0
	}

	return packPtrLen(ptr, uint32(len(data))) //nolint:gosec // G115: Data length is bounded by config
}

// writeErrorResponse writes an error response to guest memory.
func writeErrorResponse(ctx context.Context, mod api.Module, errResp hostfuncs.ErrorResponse) uint64 {
	return writeResponse(ctx, mod, errResp.ToJSON())
}

// packPtrLen packs a pointer and length into a single i64.
// Upper 32 bits: pointer, lower 32 bits: length.
func packPtrLen(ptr, length uint32) uint64 {
	return (uint64(ptr) << 32) | uint64(length)
}

// unpackPtrLen unpacks a pointer and length from a packed i64.
func unpackPtrLen(packed uint64) (ptr, length uint32) {
	ptr = uint32(packed >> 32)           //nolint:gosec // G115: Packed format stores 32-bit values
	length = uint32(packed & 0xFFFFFFFF) //nolint:gosec // G115: Packed format stores 32-bit values
	return ptr, length
}

// PackPtrLen is the exported form of packPtrLen for host code calling into guests.
func PackPtrLen(ptr, length uint32) uint64 {
	return packPtrLen(ptr, length)
}

// UnpackPtrLen is the exported form of unpackPtrLen.
func UnpackPtrLen(packed uint64) (ptr, length uint32) {
	return unpackPtrLen(packed)
}
