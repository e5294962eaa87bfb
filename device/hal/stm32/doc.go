// Package stm32 implements [hal.Platform] for the full-speed USB device
// peripheral of the STM32F1 family.
//
// # Packet memory
//
// [PacketMemory] is a view of SlotCount logical 16-bit slots. Two physical
// layouts are supported:
//
//   - [LayoutGapped]: 16-bit cells, slot k at cell 2k, odd cells unused
//   - [LayoutWide]: 32-bit cells, slot k in the low half of cell k
//
// Buffer descriptors hold byte addresses; slot k is byte address 2k.
// Slots used by the adapter:
//
//	0x00-0x05  buffer descriptor table (EP0 TX, EP0 RX, EP1 TX)
//	0x10-0x13  EP0 receive buffer: received SETUP packet
//	0x20-0x3F  EP0 transmit buffer: staged response
//	0x40-      EP1 transmit buffer
//
// # Endpoint registers
//
// USB_EPnR mixes four write behaviors in one word. STAT and DTOG toggle
// where 1 is written, CTR_RX and CTR_TX clear where 0 is written, SETUP is
// read-only and EA, EP_TYPE and EP_KIND take the written value. A target
// state is reached by reading the register and writing a pattern computed
// from it; [EndpointRegister] names the patterns the adapter needs.
//
// # Backends
//
// Registers are any [Register]. Under TinyGo (build tags tinygo,stm32f103)
// [MMIORegisters] and [MMIOMemory] bind the on-chip peripheral. Elsewhere
// [Simulator] provides registers and packet memory with the same write
// semantics, plus host-side token injection.
package stm32
