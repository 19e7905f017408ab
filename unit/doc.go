// Package unit provides Computation Units implemented in Go and run in-process.
//
// A Local unit maps each inbound port to an InboundFunc. Functions emit on
// outbound ports through the Emitter they are handed; emissions are routed to
// subscribers by a hostfuncs.Switchboard exactly as they are for compiled
// units. With WithAsync, deliveries are queued and processed one at a time on
// a single goroutine, and Wait reports when the queue has drained.
package unit
