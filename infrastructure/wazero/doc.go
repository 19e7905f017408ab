// Package wazero provides the host module a compiled Computation Unit imports
// when it runs under the wazero runtime.
//
// The host module "portbridge_host" exports:
//
//   - emit(port i64, payload i64) i64: publishes payload on an outbound port.
//     Both arguments use the packed i64 pointer+length format. Returns 0 on
//     success, otherwise a packed pointer to a JSON hostfuncs.ErrorResponse
//     allocated through the guest's "allocate" export.
//   - log_message(record i64): forwards a JSON entities.LogMessageWire record
//     to the host's slog logger.
//
// Emissions are routed to the Switchboard bound to the calling context, so one
// runtime can host several units:
//
//	err := wazero.RegisterWithRuntime(ctx, runtime, wazero.WithLogger(logger))
//	...
//	callCtx := wazero.WithSwitchboard(ctx, board)
//	_, err = deliver.Call(callCtx, portPacked, payloadPacked)
package wazero
