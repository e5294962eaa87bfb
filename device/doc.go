// Package device implements the endpoint 0 control-transfer engine of a
// full-speed USB device.
//
// The engine is interrupt driven and platform-agnostic. It reaches the
// hardware only through [hal.Platform], defined in
// [github.com/ardnew/pmausb/device/hal].
//
// # Interrupt handling
//
// Each call to [Engine.HighPriorityInterrupt] or
// [Engine.LowPriorityInterrupt] does, in order:
//
//  1. On a pending bus reset, reinitialize endpoints and clear the flag.
//  2. Clear the suspend and start-of-frame status flags.
//  3. If no transfer completed, return.
//  4. For endpoint 0, finish a status stage or dispatch a SETUP packet.
//
// # Requests
//
// Only standard device and interface requests are answered:
//
//	0x80 GET_STATUS          0x00 CLEAR_FEATURE     0x01 CLEAR_FEATURE
//	0x80 GET_DESCRIPTOR      0x00 SET_FEATURE       0x01 SET_INTERFACE
//	0x80 GET_CONFIGURATION   0x00 SET_ADDRESS       0x81 GET_STATUS
//	                         0x00 SET_DESCRIPTOR    0x81 GET_INTERFACE
//	                         0x00 SET_CONFIGURATION
//
// Any other request is stalled and reported as a
// [pkg.UnsupportedRequestError]. SET_ADDRESS takes effect after its status
// stage, never before.
//
// # Descriptors
//
// GET_DESCRIPTOR always answers with the device descriptor supplied to
// [NewEngine], truncated to wLength. [WithDescriptorMode] selects the
// fixed 4-byte answer instead.
package device
