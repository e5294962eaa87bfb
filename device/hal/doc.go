// Package hal defines the hardware capability consumed by the
// control-transfer engine in [github.com/ardnew/pmausb/device].
//
// The engine never touches registers or packet memory directly. It queries
// interrupt flags, reads the staged setup packet, writes a response and
// finishes each stage through one of the acknowledgement primitives of
// [Platform]:
//
//   - RequestAck: zero-length status for host-to-device requests
//   - RespondWithData: transmit the staged response
//   - TransmitAck: stall further IN data and accept the next SETUP/OUT
//   - ReinitializeEndpoints: restore the post-reset endpoint state
//
// Implementations:
//
//   - [github.com/ardnew/pmausb/device/hal/stm32]: STM32F1 USB peripheral
//     (MMIO under TinyGo, register-accurate simulator elsewhere)
//   - [github.com/ardnew/pmausb/device/hal/fake]: recording fake for tests
//
// Invocation is single-threaded: the interrupt scheduler guarantees the
// engine, and therefore the Platform, is never re-entered.
package hal
