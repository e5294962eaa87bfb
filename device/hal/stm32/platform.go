package stm32

import (
	"log/slog"

	"github.com/ardnew/pmausb/device/hal"
	"github.com/ardnew/pmausb/pkg"
)

// Packet memory slots. Buffer descriptor addresses are byte offsets into
// packet memory, i.e. twice the slot index.
const (
	SlotTxAddr0  = 0x00 // EP0 transmit buffer address
	SlotTxCount0 = 0x01 // EP0 transmit byte count
	SlotRxAddr0  = 0x02 // EP0 receive buffer address
	SlotRxCount0 = 0x03 // EP0 receive count and buffer size
	SlotTxAddr1  = 0x04 // EP1 transmit buffer address
	SlotTxCount1 = 0x05 // EP1 transmit byte count

	SlotSetup       = 0x10 // requestType | request<<8
	SlotSetupValue  = 0x11
	SlotSetupIndex  = 0x12
	SlotSetupLength = 0x13

	SlotResponse = 0x20 // EP0 transmit buffer
	SlotEP1Tx    = 0x40 // EP1 transmit buffer

	// ResponseSlots is the EP0 transmit buffer size in slots.
	ResponseSlots = SlotEP1Tx - SlotResponse
)

// COUNTn_RX encoding for a 16-byte receive buffer: BL_SIZE=0, NUM_BLOCK=8.
const (
	rxSize16     = 8 << 10
	rxCountMask  = 0x03FF
	txCountMask  = 0x03FF
	bufferTable  = 0x0000
	ep1Address   = 1
	interruptEP  = 1
	controlEP    = 0
	slotsPerByte = 2
)

// bufferDescriptors is the post-reset buffer descriptor table, slots 0-5.
var bufferDescriptors = [...]uint16{
	SlotTxAddr0:  SlotResponse * slotsPerByte,
	SlotTxCount0: 0,
	SlotRxAddr0:  SlotSetup * slotsPerByte,
	SlotRxCount0: rxSize16,
	SlotTxAddr1:  SlotEP1Tx * slotsPerByte,
	SlotTxCount1: 0,
}

// Platform implements hal.Platform for the STM32F1 full-speed USB
// peripheral.
type Platform struct {
	mem    *PacketMemory
	regs   Registers
	ep0    EndpointRegister
	ep1    EndpointRegister
	config uint8
	log    *slog.Logger
}

var _ hal.Platform = (*Platform)(nil)

// NewPlatform binds the adapter to packet memory and peripheral registers.
// A nil logger means pkg.DefaultLogger.
func NewPlatform(mem *PacketMemory, regs Registers, logger *slog.Logger) *Platform {
	return &Platform{
		mem:  mem,
		regs: regs,
		ep0:  NewEndpointRegister(regs.EP[controlEP], controlEP, logger),
		ep1:  NewEndpointRegister(regs.EP[interruptEP], interruptEP, logger),
		log:  pkg.ComponentLogger(logger, pkg.ComponentPlatform),
	}
}

// Memory returns the packet memory view.
func (p *Platform) Memory() *PacketMemory {
	return p.mem
}

// WriteResponse stages values in the EP0 transmit buffer and sets the
// transmit count. Nothing is written when values exceed the buffer.
func (p *Platform) WriteResponse(values []uint16, length int) error {
	if len(values) > ResponseSlots {
		return &pkg.BoundsError{Index: SlotResponse + len(values), Limit: SlotEP1Tx}
	}
	if err := p.mem.WriteAll(SlotResponse, values); err != nil {
		return err
	}
	return p.mem.Write(SlotTxCount0, uint16(length)&txCountMask)
}

func (p *Platform) ResetRequested() bool {
	return p.regs.ISTR.Get()&istrRESET != 0
}

func (p *Platform) ClearReset() {
	p.regs.ISTR.Set(^uint16(istrRESET))
}

func (p *Platform) ClearStatusFlags() {
	p.regs.ISTR.Set(^uint16(istrSpurious))
}

func (p *Platform) TransferComplete() bool {
	return p.regs.ISTR.Get()&istrCTR != 0
}

func (p *Platform) EndpointID() uint8 {
	return uint8(p.regs.ISTR.Get() & istrEPID)
}

// Direction reports DirectionDeviceToHost only for a freshly received SETUP
// packet. IN completions and OUT status packets both close a stage.
func (p *Platform) Direction() hal.Direction {
	if p.regs.ISTR.Get()&istrDIR != 0 && p.ep0.Value()&epSETUP != 0 {
		return hal.DirectionDeviceToHost
	}
	return hal.DirectionHostToDevice
}

func (p *Platform) RequestType() uint8 { return uint8(p.slot(SlotSetup)) }

func (p *Platform) Request() uint8 { return uint8(p.slot(SlotSetup) >> 8) }

func (p *Platform) Value() uint16 { return p.slot(SlotSetupValue) }

func (p *Platform) Index() uint16 { return p.slot(SlotSetupIndex) }

func (p *Platform) Length() uint16 { return p.slot(SlotSetupLength) }

func (p *Platform) Configuration() uint8 { return p.config }

func (p *Platform) SetConfiguration(id uint8) {
	p.config = id
}

func (p *Platform) SetAddress(address uint8) {
	p.regs.DADDR.Set(daddrEF | uint16(address)&daddrADD)
	p.log.Debug("device address set", "address", address&daddrADD)
}

func (p *Platform) RequestAck() {
	if err := p.mem.Write(SlotTxCount0, 0); err != nil {
		panic(err)
	}
	p.ep0.ValidateTxSignalOut()
}

func (p *Platform) RespondWithData() {
	p.ep0.ValidateBothSignalOut()
}

func (p *Platform) TransmitAck() {
	p.ep0.StallTxValidateRx()
}

// ReinitializeEndpoints programs the buffer descriptor table, sets EP0 to
// control (TX=NAK, RX=VALID) and EP1 to interrupt IN at address 1
// (TX=VALID, RX=NAK), then enables the function at address 0.
func (p *Platform) ReinitializeEndpoints() {
	p.regs.BTABLE.Set(bufferTable)
	if err := p.mem.WriteAll(SlotTxAddr0, bufferDescriptors[:]); err != nil {
		panic(err)
	}
	p.ep0.Configure(TypeControl, 0, StatusNAK, StatusValid)
	p.ep1.Configure(TypeInterrupt, ep1Address, StatusValid, StatusNAK)
	p.regs.DADDR.Set(daddrEF)
	p.log.Debug("endpoints reinitialized")
}

// slot reads a fixed setup slot. Those indices are constant and in range;
// a failure is a programming defect.
func (p *Platform) slot(index int) uint16 {
	v, err := p.mem.Read(index)
	if err != nil {
		panic(err)
	}
	return v
}
