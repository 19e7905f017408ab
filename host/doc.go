// Package host provides the runtime environment for compiled Computation Units.
//
// It abstracts the underlying WASM engine (wazero), manages the unit lifecycle,
// and handles the low-level ABI interactions (memory allocation, data packing/unpacking).
// A loaded unit is exposed as a ports.Unit: payloads are delivered to its
// inbound ports through the guest's "deliver" export, and emissions arrive
// through the "emit" host function on a per-unit hostfuncs.Switchboard.
//
// Guest ABI (all strings are packed i64 pointer+length values):
//
//	allocate(size i32) i32             required
//	deallocate(ptr i32, size i32)      optional
//	deliver(port i64, payload i64) i32 required; 0 ok, 1 unknown port, 2 emit failed
//	describe() i64                     optional; JSON entities.UnitDescriptor
//	_initialize()                      optional; called once after instantiation
package host
