//go:build !wasip1

package guest

import (
	"fmt"
	"sync"
)

var hostEmitter = struct {
	fn func(port, payload string) error
	sync.RWMutex
}{}

// SetEmitter installs the function Emit forwards to outside WASM.
// Passing nil detaches it.
func SetEmitter(fn func(port, payload string) error) {
	hostEmitter.Lock()
	defer hostEmitter.Unlock()
	hostEmitter.fn = fn
}

// Deliver hands payload to the handler registered for port, as the host
// would, and returns the resulting status code.
func Deliver(port, payload string) int32 {
	return dispatch(port, payload)
}

func emitToHost(port, payload string) error {
	hostEmitter.RLock()
	fn := hostEmitter.fn
	hostEmitter.RUnlock()
	if fn == nil {
		return fmt.Errorf("guest: no host attached to emit on %s", port)
	}
	return fn(port, payload)
}
