// Package hal defines the bus interface used by the host-side enumerator.
//
// A [HostHAL] owns one bus with one attached device and exposes only what
// enumeration needs: bus reset and complete endpoint 0 control transfers.
// The HAL handles stage sequencing, packetization and handshakes; the
// enumerator in [github.com/ardnew/pmausb/host] implements the request
// logic on top.
//
// The simulated bus in [github.com/ardnew/pmausb/host/hal/sim] connects a
// HostHAL to the register-level peripheral simulator of
// [github.com/ardnew/pmausb/device/hal/stm32].
package hal
