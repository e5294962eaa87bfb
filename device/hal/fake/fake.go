// Package fake provides an in-memory [hal.Platform] that records every
// operation the engine issues, in order.
package fake

import (
	"fmt"

	"github.com/ardnew/pmausb/device/hal"
	"github.com/ardnew/pmausb/pkg"
)

// Operation names recorded in Platform.Calls.
const (
	OpWriteResponse         = "WriteResponse"
	OpClearReset            = "ClearReset"
	OpClearStatusFlags      = "ClearStatusFlags"
	OpSetConfiguration      = "SetConfiguration"
	OpSetAddress            = "SetAddress"
	OpRequestAck            = "RequestAck"
	OpRespondWithData       = "RespondWithData"
	OpTransmitAck           = "TransmitAck"
	OpReinitializeEndpoints = "ReinitializeEndpoints"
)

// ResponseSlots mirrors the packet-memory space left for a response.
const ResponseSlots = 32

// Setup holds the setup fields the fake reports.
type Setup struct {
	RequestType uint8
	Request     uint8
	Value       uint16
	Index       uint16
	Length      uint16
}

// Platform is a scriptable hal.Platform.
type Platform struct {
	// Inputs, set by the test before invoking the engine.
	Reset     bool
	Complete  bool
	Endpoint  uint8
	Dir       hal.Direction
	Setup     Setup
	ConfigID  uint8
	WriteFail error // returned by WriteResponse when non-nil

	// Observed state.
	Calls     []string
	Response  []uint16 // last staged response
	TxLength  int      // byte count of the last staged response
	Address   uint8
	Addresses []uint8 // every SetAddress argument
	Configs   []uint8 // every SetConfiguration argument
}

var _ hal.Platform = (*Platform)(nil)

// New returns a fake with no pending flags.
func New() *Platform {
	return &Platform{}
}

// Count returns how many times op was recorded.
func (p *Platform) Count(op string) int {
	n := 0
	for _, c := range p.Calls {
		if c == op {
			n++
		}
	}
	return n
}

// IndexOf returns the position of the first op in Calls, or -1.
func (p *Platform) IndexOf(op string) int {
	for i, c := range p.Calls {
		if c == op {
			return i
		}
	}
	return -1
}

// ResetCalls forgets recorded calls and responses.
func (p *Platform) ResetCalls() {
	p.Calls = p.Calls[:0]
	p.Response = nil
	p.TxLength = 0
	p.Addresses = nil
	p.Configs = nil
}

func (p *Platform) record(op string) {
	p.Calls = append(p.Calls, op)
}

// WriteResponse copies values; it fails without recording a write when
// they would overrun the response area.
func (p *Platform) WriteResponse(values []uint16, length int) error {
	if p.WriteFail != nil {
		return p.WriteFail
	}
	if len(values) > ResponseSlots {
		return &pkg.BoundsError{Index: len(values), Limit: ResponseSlots}
	}
	if length > 2*len(values) {
		return fmt.Errorf("length %d exceeds %d staged bytes", length, 2*len(values))
	}
	p.record(OpWriteResponse)
	p.Response = append([]uint16{}, values...)
	p.TxLength = length
	return nil
}

func (p *Platform) ResetRequested() bool { return p.Reset }

func (p *Platform) ClearReset() {
	p.record(OpClearReset)
	p.Reset = false
}

func (p *Platform) ClearStatusFlags() { p.record(OpClearStatusFlags) }

func (p *Platform) TransferComplete() bool { return p.Complete }

func (p *Platform) EndpointID() uint8 { return p.Endpoint }

func (p *Platform) Direction() hal.Direction { return p.Dir }

func (p *Platform) RequestType() uint8 { return p.Setup.RequestType }

func (p *Platform) Request() uint8 { return p.Setup.Request }

func (p *Platform) Value() uint16 { return p.Setup.Value }

func (p *Platform) Index() uint16 { return p.Setup.Index }

func (p *Platform) Length() uint16 { return p.Setup.Length }

func (p *Platform) Configuration() uint8 { return p.ConfigID }

func (p *Platform) SetConfiguration(id uint8) {
	p.record(OpSetConfiguration)
	p.ConfigID = id
	p.Configs = append(p.Configs, id)
}

func (p *Platform) SetAddress(address uint8) {
	p.record(OpSetAddress)
	p.Address = address
	p.Addresses = append(p.Addresses, address)
}

func (p *Platform) RequestAck() { p.record(OpRequestAck) }

func (p *Platform) RespondWithData() { p.record(OpRespondWithData) }

func (p *Platform) TransmitAck() { p.record(OpTransmitAck) }

func (p *Platform) ReinitializeEndpoints() { p.record(OpReinitializeEndpoints) }
