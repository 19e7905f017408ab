// Package guest is the SDK for writing Computation Units in Go.
//
// A unit registers one Handler per inbound port and declares its outbound
// ports, usually from init:
//
//	func init() {
//	    guest.SetName("ledger")
//	    guest.Declare("userFilePort")
//	    guest.Handle("custDataPort", func(ctx context.Context, csv string) error {
//	        return guest.Emit("userFilePort", toJSON(csv))
//	    })
//	}
//
// Built with GOOS=wasip1 (go build -buildmode=c-shared), the package exports
// deliver and describe, and Emit calls the host's emit function. Other builds
// route Emit to the function installed with SetEmitter, so units can be tested
// as ordinary Go code.
package guest
