package hal

import (
	"context"
)

// SetupPacket represents a USB SETUP packet in the HAL layer.
type SetupPacket struct {
	RequestType uint8  // Request characteristics
	Request     uint8  // Specific request
	Value       uint16 // Request-specific value
	Index       uint16 // Request-specific index
	Length      uint16 // Number of bytes to transfer
}

// SetupPacketSize is the size of a USB SETUP packet in bytes.
const SetupPacketSize = 8

// ParseSetupPacket parses raw bytes into a SetupPacket.
// Returns false if data is too short.
func ParseSetupPacket(data []byte, out *SetupPacket) bool {
	if len(data) < SetupPacketSize {
		return false
	}
	out.RequestType = data[0]
	out.Request = data[1]
	out.Value = uint16(data[2]) | uint16(data[3])<<8
	out.Index = uint16(data[4]) | uint16(data[5])<<8
	out.Length = uint16(data[6]) | uint16(data[7])<<8
	return true
}

// MarshalTo writes the setup packet to buf.
// Returns the number of bytes written (8), or 0 if buf is too small.
func (s *SetupPacket) MarshalTo(buf []byte) int {
	if len(buf) < SetupPacketSize {
		return 0
	}
	buf[0] = s.RequestType
	buf[1] = s.Request
	buf[2] = byte(s.Value)
	buf[3] = byte(s.Value >> 8)
	buf[4] = byte(s.Index)
	buf[5] = byte(s.Index >> 8)
	buf[6] = byte(s.Length)
	buf[7] = byte(s.Length >> 8)
	return SetupPacketSize
}

// Bytes returns the 8-byte wire form.
func (s *SetupPacket) Bytes() [SetupPacketSize]byte {
	var b [SetupPacketSize]byte
	s.MarshalTo(b[:])
	return b
}

// IsIn reports whether the data stage, if any, is device-to-host.
func (s *SetupPacket) IsIn() bool {
	return s.RequestType&0x80 != 0
}

// DeviceAddress represents a USB device address (0-127).
type DeviceAddress uint8

// HostHAL is the host side of a single full-speed bus with one device
// attached. It drives complete control transfers on endpoint 0.
type HostHAL interface {
	// ResetBus signals a bus reset. Afterwards the device answers at
	// address 0.
	ResetBus(ctx context.Context) error

	// ControlTransfer runs the setup, data and status stages of one control
	// transfer to endpoint 0 at addr. For IN transfers data is filled with
	// received bytes; for OUT transfers data is sent. Returns the number of
	// bytes moved in the data stage.
	ControlTransfer(ctx context.Context, addr DeviceAddress, setup *SetupPacket, data []byte) (int, error)
}
