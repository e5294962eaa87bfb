//go:build tinygo && stm32f103

package stm32

import (
	"runtime/volatile"
	"unsafe"
)

// Peripheral base addresses.
const (
	usbBase uintptr = 0x40005C00
	pmaBase uintptr = 0x40006000
)

// USB register offsets.
const (
	offsetEP     = 0x00 // USB_EPnR (array, stride 4)
	offsetCNTR   = 0x40 // Control
	offsetISTR   = 0x44 // Interrupt status
	offsetFNR    = 0x48 // Frame number
	offsetDADDR  = 0x4C // Device address
	offsetBTABLE = 0x50 // Buffer table address
)

const epStride = 4

func usbReg16(offset uintptr) *volatile.Register16 {
	return (*volatile.Register16)(unsafe.Pointer(usbBase + offset))
}

// MMIORegisters returns the register bank of the on-chip peripheral.
// volatile.Register16 already satisfies Register.
func MMIORegisters() Registers {
	regs := Registers{
		ISTR:   usbReg16(offsetISTR),
		DADDR:  usbReg16(offsetDADDR),
		BTABLE: usbReg16(offsetBTABLE),
	}
	for n := range regs.EP {
		regs.EP[n] = usbReg16(offsetEP + uintptr(n)*epStride)
	}
	return regs
}

// ControlRegister returns USB_CNTR for interrupt masking and power control.
func ControlRegister() *volatile.Register16 {
	return usbReg16(offsetCNTR)
}

// mmioStorage16 addresses packet memory as 16-bit cells. On the F1 each
// 16-bit word of the 512-byte area sits at a 32-bit stride.
type mmioStorage16 struct {
	cells *[2 * SlotCount]volatile.Register16
}

func (s mmioStorage16) Len() int              { return len(s.cells) }
func (s mmioStorage16) Load(i int) uint16     { return s.cells[i].Get() }
func (s mmioStorage16) Store(i int, v uint16) { s.cells[i].Set(v) }

// mmioStorage32 addresses packet memory as 32-bit cells.
type mmioStorage32 struct {
	cells *[SlotCount]volatile.Register32
}

func (s mmioStorage32) Len() int              { return len(s.cells) }
func (s mmioStorage32) Load(i int) uint32     { return s.cells[i].Get() }
func (s mmioStorage32) Store(i int, v uint32) { s.cells[i].Set(v) }

// MMIOMemory returns the on-chip packet memory in the given layout.
func MMIOMemory(layout Layout) (*PacketMemory, error) {
	if layout == LayoutWide {
		return NewWideMemory(mmioStorage32{
			cells: (*[SlotCount]volatile.Register32)(unsafe.Pointer(pmaBase)),
		})
	}
	return NewGappedMemory(mmioStorage16{
		cells: (*[2 * SlotCount]volatile.Register16)(unsafe.Pointer(pmaBase)),
	})
}
