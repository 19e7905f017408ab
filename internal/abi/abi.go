//go:build wasip1

// Package abi manages guest linear memory shared with the host.
//
// Strings cross the boundary as packed i64 values: pointer in the high 32
// bits, length in the low 32 bits. The host writes inbound payloads into
// buffers it obtains from the exported allocate function and releases them
// with deallocate once the call returns.
package abi

import (
	"fmt"
	"sync"
	"unsafe"
)

// DefaultMaxTotalAllocations caps live allocations made through allocate.
const DefaultMaxTotalAllocations = 100 * 1024 * 1024 // 100 MB

// memoryManager pins allocated slices so the Go GC does not collect memory
// the host still refers to.
var memoryManager = struct {
	ptrs           map[uint32][]byte // ptr -> slice reference
	totalAllocated int
	limit          int
	sync.Mutex
}{
	ptrs:  make(map[uint32][]byte),
	limit: DefaultMaxTotalAllocations,
}

// allocate reserves memory for the host to write into.
// Panics if the allocation would exceed DefaultMaxTotalAllocations.
//
//go:wasmexport allocate
func allocate(size uint32) uint32 {
	if size == 0 {
		return 0
	}

	memoryManager.Lock()
	defer memoryManager.Unlock()

	if memoryManager.totalAllocated+int(size) > memoryManager.limit {
		panic(fmt.Sprintf("abi: memory allocation limit exceeded (requested: %d bytes, current: %d bytes, limit: %d bytes)",
			size, memoryManager.totalAllocated, memoryManager.limit))
	}

	buf := make([]byte, size)
	ptr := uint32(uintptr(unsafe.Pointer(&buf[0])))

	memoryManager.ptrs[ptr] = buf
	memoryManager.totalAllocated += int(size)

	return ptr
}

// deallocate unpins memory. Accounting uses the stored slice length, not
// size; unknown pointers are ignored.
//
//go:wasmexport deallocate
func deallocate(ptr uint32, size uint32) {
	memoryManager.Lock()
	defer memoryManager.Unlock()

	storedSlice, exists := memoryManager.ptrs[ptr]
	if !exists {
		return
	}

	delete(memoryManager.ptrs, ptr)
	memoryManager.totalAllocated -= len(storedSlice)
	if memoryManager.totalAllocated < 0 {
		memoryManager.totalAllocated = 0
	}
}

// FreeAllTracked unpins every allocation. The guest calls it after recovering
// from a handler panic, when buffers pinned mid-call can no longer be released
// by their owners. The host's later deallocate of such a buffer is a no-op.
func FreeAllTracked() {
	memoryManager.Lock()
	defer memoryManager.Unlock()

	for ptr := range memoryManager.ptrs {
		delete(memoryManager.ptrs, ptr)
	}
	memoryManager.totalAllocated = 0
}

// PtrFromBytes copies data into freshly allocated memory and returns the
// packed pointer and length, or 0 for empty data.
func PtrFromBytes(data []byte) uint64 {
	if len(data) == 0 {
		return 0
	}
	size := uint32(len(data))
	ptr := allocate(size)
	copyToMemory(ptr, data)
	return PackPtrLen(ptr, size)
}

// BytesFromPtr returns a copy of the bytes a packed value refers to.
func BytesFromPtr(packed uint64) []byte {
	ptr, length := UnpackPtrLen(packed)
	if ptr == 0 || length == 0 {
		return nil
	}
	return readFromMemory(ptr, length)
}

// StringFromPtr is BytesFromPtr for text; 0 yields "".
func StringFromPtr(packed uint64) string {
	return string(BytesFromPtr(packed))
}

// DeallocatePacked releases memory obtained from PtrFromBytes.
func DeallocatePacked(packed uint64) {
	ptr, length := UnpackPtrLen(packed)
	if ptr != 0 && length > 0 {
		deallocate(ptr, length)
	}
}

// PackPtrLen packs a pointer and length into a single uint64.
// Panics on a null pointer with a non-zero length.
func PackPtrLen(ptr, length uint32) uint64 {
	if ptr == 0 && length > 0 {
		panic(fmt.Sprintf("abi: invalid pack - null pointer (0x0) with non-zero length (%d)", length))
	}
	return (uint64(ptr) << 32) | uint64(length)
}

// UnpackPtrLen unpacks a uint64 into its original pointer and length.
// Panics on a null pointer with a non-zero length.
func UnpackPtrLen(packed uint64) (ptr, length uint32) {
	ptr = uint32(packed >> 32)
	length = uint32(packed)
	if ptr == 0 && length > 0 {
		panic(fmt.Sprintf("abi: invalid unpack - null pointer (0x0) with non-zero length (%d)", length))
	}
	return ptr, length
}

func copyToMemory(ptr uint32, data []byte) {
	//nolint:gosec // G103: Valid unsafe.Pointer use for WASM linear memory access
	dest := unsafe.Slice((*byte)(unsafe.Pointer(uintptr(ptr))), len(data))
	copy(dest, data)
}

func readFromMemory(ptr uint32, length uint32) []byte {
	//nolint:gosec // G103: Valid unsafe.Pointer use for WASM linear memory access
	src := unsafe.Slice((*byte)(unsafe.Pointer(uintptr(ptr))), length)
	data := make([]byte, length)
	copy(data, src)
	return data
}
