//go:build wasip1

package log

import (
	"log/slog"

	"github.com/reglet-dev/portbridge/internal/abi"
)

// host_log_message is provided by the portbridge_host module.
//
//go:wasmimport portbridge_host log_message
//nolint:revive // intentional snake_case to match WASM import convention
func host_log_message(messagePacked uint64)

// sendToHost copies the record into guest memory and passes it to the host.
func sendToHost(data []byte) {
	packed := abi.PtrFromBytes(data)
	host_log_message(packed)
	abi.DeallocatePacked(packed)
}

// init configures the default slog handler to use our WasmLogHandler.
func init() {
	slog.SetDefault(slog.New(NewHandler()))
}
