package stm32

import (
	"github.com/ardnew/pmausb/pkg"
)

// SlotCount is the number of logical 16-bit packet-memory slots.
const SlotCount = 256

// Layout describes how logical slots map onto physical cells.
type Layout uint8

// Packet memory layouts.
const (
	// LayoutGapped: 2*SlotCount 16-bit cells, data in even cells only.
	LayoutGapped Layout = iota

	// LayoutWide: SlotCount 32-bit cells, data in the low half. The high
	// half is preserved on write.
	LayoutWide
)

// String returns the layout name.
func (l Layout) String() string {
	switch l {
	case LayoutGapped:
		return "gapped"
	case LayoutWide:
		return "wide"
	default:
		return "unknown"
	}
}

// PacketMemory is the logical 16-bit view of the USB packet memory area.
// Every access is bounds-checked before storage is touched.
type PacketMemory struct {
	layout Layout
	half   Storage16
	wide   Storage32
}

// NewGappedMemory returns a LayoutGapped view over s.
func NewGappedMemory(s Storage16) (*PacketMemory, error) {
	if s == nil || s.Len() < 2*SlotCount {
		return nil, pkg.ErrInvalidStorage
	}
	return &PacketMemory{layout: LayoutGapped, half: s}, nil
}

// NewWideMemory returns a LayoutWide view over s.
func NewWideMemory(s Storage32) (*PacketMemory, error) {
	if s == nil || s.Len() < SlotCount {
		return nil, pkg.ErrInvalidStorage
	}
	return &PacketMemory{layout: LayoutWide, wide: s}, nil
}

// Layout returns the physical layout.
func (m *PacketMemory) Layout() Layout {
	return m.layout
}

// Read returns the value of slot index.
func (m *PacketMemory) Read(index int) (uint16, error) {
	if err := checkSlot(index); err != nil {
		return 0, err
	}
	return m.load(index), nil
}

// Write stores v in slot index.
func (m *PacketMemory) Write(index int, v uint16) error {
	if err := checkSlot(index); err != nil {
		return err
	}
	m.store(index, v)
	return nil
}

// WriteAll stores values in consecutive slots from start. Nothing is
// written unless start and start+len(values) are both below SlotCount.
func (m *PacketMemory) WriteAll(start int, values []uint16) error {
	if err := checkRange(start, len(values)); err != nil {
		return err
	}
	for k, v := range values {
		m.store(start+k, v)
	}
	return nil
}

// ReadAll fills out from consecutive slots starting at start, under the
// same bounds rule as WriteAll.
func (m *PacketMemory) ReadAll(start int, out []uint16) error {
	if err := checkRange(start, len(out)); err != nil {
		return err
	}
	for k := range out {
		out[k] = m.load(start + k)
	}
	return nil
}

func (m *PacketMemory) load(index int) uint16 {
	if m.layout == LayoutWide {
		return uint16(m.wide.Load(index))
	}
	return m.half.Load(2 * index)
}

func (m *PacketMemory) store(index int, v uint16) {
	if m.layout == LayoutWide {
		m.wide.Store(index, m.wide.Load(index)&0xFFFF0000|uint32(v))
		return
	}
	m.half.Store(2*index, v)
}

func checkSlot(index int) error {
	if index < 0 || index >= SlotCount {
		return &pkg.BoundsError{Index: index, Limit: SlotCount}
	}
	return nil
}

func checkRange(start, n int) error {
	if err := checkSlot(start); err != nil {
		return err
	}
	if start+n >= SlotCount {
		return &pkg.BoundsError{Index: start + n, Limit: SlotCount}
	}
	return nil
}
