package ports

import (
	"context"

	"github.com/reglet-dev/portbridge/domain/entities"
)

// OutboundHandler receives messages a unit emits on an outbound port.
type OutboundHandler func(ctx context.Context, msg entities.Message) error

// Unit is a Computation Unit: an opaque stateful process reachable only
// through named ports. Implementations are constructed once and live for the
// whole host process.
type Unit interface {
	// Describe returns the ports the unit declares.
	Describe() entities.UnitDescriptor

	// Send delivers one payload on an inbound port.
	// Returns *errors.PortError if the port is not declared.
	Send(ctx context.Context, port entities.PortName, payload string) error

	// Subscribe registers a persistent handler for an outbound port.
	// Handlers fire once per emission, in subscription order.
	Subscribe(port entities.PortName, handler OutboundHandler) error

	// Close releases the unit's resources. No handler fires after Close returns.
	Close(ctx context.Context) error
}

// Quiescer is implemented by units that process deliveries asynchronously.
// Wait blocks until no delivery is in flight.
type Quiescer interface {
	Wait(ctx context.Context) error
}
