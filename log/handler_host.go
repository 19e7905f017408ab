//go:build !wasip1

package log

import (
	"os"
	"sync"
)

var stderrMu sync.Mutex

// sendToHost writes the wire record as a JSON line to stderr outside WASM.
func sendToHost(data []byte) {
	stderrMu.Lock()
	defer stderrMu.Unlock()
	_, _ = os.Stderr.Write(append(data, '\n'))
}
