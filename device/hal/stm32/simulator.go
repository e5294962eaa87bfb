package stm32

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/ardnew/pmausb/pkg"
)

// endpointRegister models USB_EPnR write semantics: STAT and DTOG toggle
// where 1 is written, CTR flags clear where 0 is written, SETUP is
// read-only and the remaining fields take the written value.
type endpointRegister struct {
	value uint16
}

func (r *endpointRegister) Get() uint16 { return r.value }

func (r *endpointRegister) Set(w uint16) {
	v := r.value ^ w&epToggle
	v &^= epClear &^ w
	v = v&^epRW | w&epRW
	if v&epCTRRX == 0 {
		v &^= epSETUP
	}
	r.value = v
}

// interruptRegister models ISTR. The latched event flags clear where 0 is
// written; CTR, DIR and EP_ID follow the lowest endpoint with a pending
// transfer.
type interruptRegister struct {
	latched uint16
	ep      *[NumEndpoints]endpointRegister
}

func (r *interruptRegister) Get() uint16 {
	v := r.latched
	for n := range r.ep {
		ep := r.ep[n].value
		if ep&epClear == 0 {
			continue
		}
		v |= istrCTR | uint16(n)
		if ep&epCTRRX != 0 {
			v |= istrDIR
		}
		break
	}
	return v
}

func (r *interruptRegister) Set(w uint16) {
	r.latched &= w
}

type plainRegister struct {
	value uint16
}

func (r *plainRegister) Get() uint16  { return r.value }
func (r *plainRegister) Set(w uint16) { r.value = w }

// Simulator is an in-memory USB peripheral. The device side sees it through
// Registers and Memory exactly as firmware sees the hardware; the host side
// injects bus reset and SETUP, IN and OUT tokens on endpoint 0.
//
// Simulator is not safe for concurrent use. Callers run the device
// interrupt handler between host operations.
type Simulator struct {
	mem    *PacketMemory
	ep     [NumEndpoints]endpointRegister
	istr   interruptRegister
	daddr  plainRegister
	btable plainRegister
	log    *slog.Logger
}

// NewSimulator returns a powered, unreset peripheral with zeroed packet
// memory in the given layout.
func NewSimulator(layout Layout, logger *slog.Logger) (*Simulator, error) {
	var (
		mem *PacketMemory
		err error
	)
	switch layout {
	case LayoutGapped:
		mem, err = NewGappedMemory(make(SliceStorage16, 2*SlotCount))
	case LayoutWide:
		mem, err = NewWideMemory(make(SliceStorage32, SlotCount))
	default:
		err = fmt.Errorf("%w: layout %d", pkg.ErrInvalidStorage, layout)
	}
	if err != nil {
		return nil, err
	}
	s := &Simulator{
		mem: mem,
		log: pkg.ComponentLogger(logger, pkg.ComponentSim),
	}
	s.istr.ep = &s.ep
	return s, nil
}

// Memory returns the packet memory shared with the device side.
func (s *Simulator) Memory() *PacketMemory {
	return s.mem
}

// Registers returns the device-side register bank.
func (s *Simulator) Registers() Registers {
	regs := Registers{
		ISTR:   &s.istr,
		DADDR:  &s.daddr,
		BTABLE: &s.btable,
	}
	for n := range s.ep {
		regs.EP[n] = &s.ep[n]
	}
	return regs
}

// Endpoint returns the raw value of endpoint register n.
func (s *Simulator) Endpoint(n int) uint16 {
	return s.ep[n].value
}

// Interrupts returns the current ISTR value.
func (s *Simulator) Interrupts() uint16 {
	return s.istr.Get()
}

// Address returns the function address and whether the function is enabled.
func (s *Simulator) Address() (uint8, bool) {
	v := s.daddr.value
	return uint8(v & daddrADD), v&daddrEF != 0
}

// RaiseFlags latches ISTR event flags, e.g. SOF or SUSP.
func (s *Simulator) RaiseFlags(mask uint16) {
	s.istr.latched |= mask & istrLatched
}

// Pending reports whether an interrupt is waiting for service.
func (s *Simulator) Pending() bool {
	return s.istr.Get()&(istrCTR|istrLatched) != 0
}

// BusReset clears the endpoint and address registers and latches RESET.
func (s *Simulator) BusReset() {
	for n := range s.ep {
		s.ep[n].value = 0
	}
	s.daddr.value = 0
	s.istr.latched |= istrRESET
	s.log.Log(context.Background(), pkg.LevelTrace, "bus reset")
}

// Setup delivers an 8-byte SETUP packet to endpoint 0 at address.
// SETUP is accepted whatever STAT_RX holds, unless the endpoint is
// disabled.
func (s *Simulator) Setup(address uint8, packet [8]byte) error {
	ep, err := s.control(address)
	if err != nil {
		return err
	}
	if RxStatus(ep.value) == StatusDisabled {
		return pkg.ErrNoResponse
	}
	if err := s.receive(packet[:]); err != nil {
		return err
	}
	ep.value = ep.value&^(epSTATRX|epSTATTX) | epCTRRX | epSETUP |
		statRx(StatusNAK) | statTx(StatusNAK)
	s.log.Log(context.Background(), pkg.LevelTrace, "setup", "address", address, "ep0", hex16(ep.value))
	return nil
}

// In issues an IN token to endpoint 0 at address and returns the packet
// the device transmitted.
func (s *Simulator) In(address uint8) ([]byte, error) {
	ep, err := s.control(address)
	if err != nil {
		return nil, err
	}
	if err := handshake(TxStatus(ep.value)); err != nil {
		return nil, err
	}
	data, err := s.transmit()
	if err != nil {
		return nil, err
	}
	ep.value = ep.value&^epSTATTX | epCTRTX | statTx(StatusNAK)
	s.log.Log(context.Background(), pkg.LevelTrace, "in", "address", address, "bytes", len(data), "ep0", hex16(ep.value))
	return data, nil
}

// Out delivers an OUT data packet to endpoint 0 at address. With
// STATUS_OUT set, anything but a zero-length packet is stalled.
func (s *Simulator) Out(address uint8, data []byte) error {
	ep, err := s.control(address)
	if err != nil {
		return err
	}
	if err := handshake(RxStatus(ep.value)); err != nil {
		return err
	}
	if ep.value&epKIND != 0 && len(data) > 0 {
		return pkg.ErrStall
	}
	if err := s.receive(data); err != nil {
		return err
	}
	ep.value = ep.value&^(epSTATRX|epSETUP) | epCTRRX | statRx(StatusNAK)
	s.log.Log(context.Background(), pkg.LevelTrace, "out", "address", address, "bytes", len(data), "ep0", hex16(ep.value))
	return nil
}

func (s *Simulator) control(address uint8) (*endpointRegister, error) {
	current, enabled := s.Address()
	if !enabled || current != address&daddrADD {
		return nil, pkg.ErrNoResponse
	}
	ep := &s.ep[0]
	if ep.value&epTYPE != TypeControl {
		return nil, pkg.ErrNoResponse
	}
	if ep.value&epCTRRX != 0 {
		// Previous reception not yet serviced.
		return nil, pkg.ErrNAK
	}
	return ep, nil
}

func handshake(status EndpointStatus) error {
	switch status {
	case StatusValid:
		return nil
	case StatusStall:
		return pkg.ErrStall
	case StatusNAK:
		return pkg.ErrNAK
	default:
		return pkg.ErrNoResponse
	}
}

// descriptor returns the EP0 buffer slot and count word for one direction.
func (s *Simulator) descriptor(addrSlot int) (int, uint16, error) {
	base := int(s.btable.value) / 2
	addr, err := s.mem.Read(base + addrSlot)
	if err != nil {
		return 0, 0, err
	}
	count, err := s.mem.Read(base + addrSlot + 1)
	if err != nil {
		return 0, 0, err
	}
	return int(addr) / 2, count, nil
}

// receive copies data into the EP0 receive buffer and records its length.
func (s *Simulator) receive(data []byte) error {
	slot, count, err := s.descriptor(SlotRxAddr0)
	if err != nil {
		return err
	}
	if len(data) > rxCapacity(count) {
		return fmt.Errorf("%w: %d bytes for %d-byte buffer", pkg.ErrNAK, len(data), rxCapacity(count))
	}
	words := make([]uint16, (len(data)+1)/2)
	for k, b := range data {
		words[k/2] |= uint16(b) << (8 * (k % 2))
	}
	if err := s.mem.WriteAll(slot, words); err != nil {
		return err
	}
	base := int(s.btable.value) / 2
	return s.mem.Write(base+SlotRxCount0, count&^rxCountMask|uint16(len(data)))
}

// transmit returns the bytes staged in the EP0 transmit buffer.
func (s *Simulator) transmit() ([]byte, error) {
	slot, count, err := s.descriptor(SlotTxAddr0)
	if err != nil {
		return nil, err
	}
	n := int(count & txCountMask)
	words := make([]uint16, (n+1)/2)
	if err := s.mem.ReadAll(slot, words); err != nil {
		return nil, err
	}
	data := make([]byte, n)
	for k := range data {
		data[k] = byte(words[k/2] >> (8 * (k % 2)))
	}
	return data, nil
}

// rxCapacity decodes BL_SIZE and NUM_BLOCK from a COUNTn_RX word.
func rxCapacity(count uint16) int {
	blocks := int(count>>10) & 0x1F
	if count&0x8000 != 0 {
		return (blocks + 1) * 32
	}
	return blocks * 2
}
