// Command portbridge runs a compiled Computation Unit against files on disk.
//
// It streams the configured input files into the unit's inbound ports and
// overwrites an output file each time the unit emits on an outbound port:
//
//	portbridge --module app.wasm
//	portbridge --config portbridge.yaml --watch
//	portbridge schema > portbridge.schema.json
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		stop()
		os.Exit(1)
	}
}
