// Package sim connects a [hal.HostHAL] to the simulated STM32 USB
// peripheral.
//
// Tokens are injected directly into [stm32.Simulator]; after each one the
// device's interrupt entry point is called once if an interrupt is
// pending, so device firmware runs in lockstep with the host.
package sim
