package entities

import "time"

// PortName identifies a named channel between the host and a Computation Unit.
// Names are fixed when the unit is built; the host never creates ports at runtime.
type PortName = string

// Direction describes which side of a port produces messages.
type Direction string

const (
	// Inbound ports carry payloads from the host into the unit.
	Inbound Direction = "inbound"
	// Outbound ports carry payloads emitted by the unit to the host.
	Outbound Direction = "outbound"
)

// Inbound ports of the ledger unit.
const (
	PortCustData PortName = "custDataPort"
	PortAccData  PortName = "accDataPort"
	PortTxnData  PortName = "txnDataPort"
)

// Outbound ports of the ledger unit.
const (
	PortUserFile    PortName = "userFilePort"
	PortAccountFile PortName = "accountFilePort"
	PortTxFile      PortName = "txFilePort"
	PortUserIDsFile PortName = "userIdsFilePort"
)

// Message is a single payload travelling over a port.
type Message struct {
	// ReceivedAt is when the host observed the message.
	ReceivedAt time.Time `json:"received_at"`

	// ID uniquely identifies the message for log correlation.
	ID string `json:"id"`

	// Port is the port the message travelled on.
	Port PortName `json:"port"`

	// Payload is the verbatim text carried by the message.
	Payload string `json:"payload"`
}

// UnitDescriptor lists the ports a Computation Unit declares.
type UnitDescriptor struct {
	Name     string     `json:"name,omitempty"`
	Inbound  []PortName `json:"inbound"`
	Outbound []PortName `json:"outbound"`
}

// HasInbound reports whether the unit declares the given inbound port.
func (d UnitDescriptor) HasInbound(port PortName) bool {
	return contains(d.Inbound, port)
}

// HasOutbound reports whether the unit declares the given outbound port.
func (d UnitDescriptor) HasOutbound(port PortName) bool {
	return contains(d.Outbound, port)
}

// LedgerDescriptor returns the port layout of the ledger unit the bridge is
// wired for by default.
func LedgerDescriptor() UnitDescriptor {
	return UnitDescriptor{
		Name:     "ledger",
		Inbound:  []PortName{PortCustData, PortAccData, PortTxnData},
		Outbound: []PortName{PortUserFile, PortAccountFile, PortTxFile, PortUserIDsFile},
	}
}

func contains(ports []PortName, port PortName) bool {
	for _, p := range ports {
		if p == port {
			return true
		}
	}
	return false
}
