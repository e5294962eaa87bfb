package stm32

import (
	"fmt"
	"log/slog"
)

// Register is one 16-bit peripheral register.
type Register interface {
	Get() uint16
	Set(value uint16)
}

// NumEndpoints is the number of endpoint registers (USB_EP0R..USB_EP7R).
const NumEndpoints = 8

// Registers groups the peripheral registers the adapter touches.
type Registers struct {
	EP     [NumEndpoints]Register // USB_EPnR
	ISTR   Register               // Interrupt status
	DADDR  Register               // Device address
	BTABLE Register               // Buffer table address
}

// ISTR bits. Bits 8-14 are cleared by writing 0; CTR, DIR and EP_ID are
// read-only.
const (
	istrCTR    = 0x8000 // Correct transfer
	istrPMAOVR = 0x4000 // Packet memory overrun
	istrERR    = 0x2000 // Error
	istrWKUP   = 0x1000 // Wakeup
	istrSUSP   = 0x0800 // Suspend
	istrRESET  = 0x0400 // Bus reset
	istrSOF    = 0x0200 // Start of frame
	istrESOF   = 0x0100 // Expected start of frame
	istrDIR    = 0x0010 // Direction of the transaction
	istrEPID   = 0x000F // Endpoint identifier

	istrLatched = istrPMAOVR | istrERR | istrWKUP | istrSUSP | istrRESET | istrSOF | istrESOF
	istrSpurious = istrSUSP | istrSOF | istrESOF
)

// DADDR bits.
const (
	daddrEF  = 0x80 // Enable function
	daddrADD = 0x7F // Device address
)

// USB_EPnR bits.
const (
	epCTRRX  = 0x8000 // Correct transfer for reception (clear on write 0)
	epDTOGRX = 0x4000 // Data toggle RX (toggle on write 1)
	epSTATRX = 0x3000 // Status RX (toggle on write 1)
	epSETUP  = 0x0800 // Setup transaction completed (read-only)
	epTYPE   = 0x0600 // Endpoint type
	epKIND   = 0x0100 // Endpoint kind; STATUS_OUT on control endpoints
	epCTRTX  = 0x0080 // Correct transfer for transmission (clear on write 0)
	epDTOGTX = 0x0040 // Data toggle TX (toggle on write 1)
	epSTATTX = 0x0030 // Status TX (toggle on write 1)
	epEA     = 0x000F // Endpoint address

	epToggle = epDTOGRX | epSTATRX | epDTOGTX | epSTATTX
	epClear  = epCTRRX | epCTRTX
	epRW     = epTYPE | epKIND | epEA
)

// Endpoint types (EP_TYPE field).
const (
	TypeBulk        uint16 = 0x0000
	TypeControl     uint16 = 0x0200
	TypeIsochronous uint16 = 0x0400
	TypeInterrupt   uint16 = 0x0600
)

// EndpointStatus is a 2-bit STAT_TX / STAT_RX code.
type EndpointStatus uint16

// Endpoint status codes.
const (
	StatusDisabled EndpointStatus = iota
	StatusStall
	StatusNAK
	StatusValid
)

// String returns the status name.
func (s EndpointStatus) String() string {
	switch s {
	case StatusDisabled:
		return "DISABLED"
	case StatusStall:
		return "STALL"
	case StatusNAK:
		return "NAK"
	case StatusValid:
		return "VALID"
	default:
		return "INVALID"
	}
}

func statTx(s EndpointStatus) uint16 { return uint16(s&3) << 4 }
func statRx(s EndpointStatus) uint16 { return uint16(s&3) << 12 }

// TxStatus extracts STAT_TX from an endpoint register value.
func TxStatus(reg uint16) EndpointStatus { return EndpointStatus(reg&epSTATTX) >> 4 }

// RxStatus extracts STAT_RX from an endpoint register value.
func RxStatus(reg uint16) EndpointStatus { return EndpointStatus(reg&epSTATRX) >> 12 }

// hex16 formats register values lazily in log records.
type hex16 uint16

func (h hex16) LogValue() slog.Value {
	return slog.StringValue(fmt.Sprintf("0x%04X", uint16(h)))
}
