//go:build wasip1

package guest

import (
	"encoding/json"
	"fmt"

	"github.com/reglet-dev/portbridge/hostfuncs"
	"github.com/reglet-dev/portbridge/internal/abi"
	_ "github.com/reglet-dev/portbridge/log" // forward slog records to the host
)

// host_emit is provided by the portbridge_host module. It returns 0 or a
// packed JSON ErrorResponse.
//
//go:wasmimport portbridge_host emit
//nolint:revive // intentional snake_case to match WASM import convention
func host_emit(portPacked, payloadPacked uint64) uint64

func init() {
	afterPanic = abi.FreeAllTracked
}

//go:wasmexport deliver
func deliver(portPacked, payloadPacked uint64) int32 {
	return dispatch(abi.StringFromPtr(portPacked), abi.StringFromPtr(payloadPacked))
}

//go:wasmexport describe
func describe() uint64 {
	data, err := json.Marshal(Descriptor())
	if err != nil {
		return 0
	}
	return abi.PtrFromBytes(data)
}

func emitToHost(port, payload string) error {
	portPacked := abi.PtrFromBytes([]byte(port))
	defer abi.DeallocatePacked(portPacked)
	payloadPacked := abi.PtrFromBytes([]byte(payload))
	defer abi.DeallocatePacked(payloadPacked)

	resp := host_emit(portPacked, payloadPacked)
	if resp == 0 {
		return nil
	}

	data := abi.BytesFromPtr(resp)
	abi.DeallocatePacked(resp)
	var errResp hostfuncs.ErrorResponse
	if err := json.Unmarshal(data, &errResp); err != nil {
		return fmt.Errorf("emit on %s failed: %s", port, string(data))
	}
	return fmt.Errorf("emit on %s failed: %s: %s", port, errResp.Error, errResp.Message)
}
