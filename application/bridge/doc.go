// Package bridge connects a Computation Unit to the file system.
//
// A run subscribes every configured outbound port, starts one single-writer
// queue per output file, reads the configured inputs concurrently and sends
// each one to its inbound port. Emissions are logged and then written in the
// order they were received, so the file always ends up holding the most
// recently received payload. A missing input is reported and skipped; a failed
// write ends the run with a *errors.WriteError.
package bridge
