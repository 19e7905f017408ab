// Package hostfuncs provides the host side of a Computation Unit's outbound ports.
// These implementations have NO WASM runtime dependencies (no wazero/wasmtime).
// The wazero adapter and in-process Go units both dispatch emissions through them.
package hostfuncs
