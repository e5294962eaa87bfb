package device

import (
	"encoding/binary"
	"fmt"

	"github.com/ardnew/pmausb/pkg"
)

// Request is a standard request code (USB 2.0 Spec Table 9-4).
type Request uint8

// Standard request codes. RequestUnknown stands for every code outside the
// standard set.
const (
	RequestGetStatus        Request = 0x00
	RequestClearFeature     Request = 0x01
	RequestSetFeature       Request = 0x03
	RequestSetAddress       Request = 0x05
	RequestGetDescriptor    Request = 0x06
	RequestSetDescriptor    Request = 0x07
	RequestGetConfiguration Request = 0x08
	RequestSetConfiguration Request = 0x09
	RequestGetInterface     Request = 0x0A
	RequestSetInterface     Request = 0x0B
	RequestSynchFrame       Request = 0x0C
	RequestUnknown          Request = 0xFF
)

// RequestFromCode maps a raw bRequest value to its Request.
func RequestFromCode(code uint8) Request {
	switch r := Request(code); r {
	case RequestGetStatus, RequestClearFeature, RequestSetFeature,
		RequestSetAddress, RequestGetDescriptor, RequestSetDescriptor,
		RequestGetConfiguration, RequestSetConfiguration,
		RequestGetInterface, RequestSetInterface, RequestSynchFrame:
		return r
	default:
		return RequestUnknown
	}
}

// String returns the USB 2.0 name of the request.
func (r Request) String() string {
	switch r {
	case RequestGetStatus:
		return "GET_STATUS"
	case RequestClearFeature:
		return "CLEAR_FEATURE"
	case RequestSetFeature:
		return "SET_FEATURE"
	case RequestSetAddress:
		return "SET_ADDRESS"
	case RequestGetDescriptor:
		return "GET_DESCRIPTOR"
	case RequestSetDescriptor:
		return "SET_DESCRIPTOR"
	case RequestGetConfiguration:
		return "GET_CONFIGURATION"
	case RequestSetConfiguration:
		return "SET_CONFIGURATION"
	case RequestGetInterface:
		return "GET_INTERFACE"
	case RequestSetInterface:
		return "SET_INTERFACE"
	case RequestSynchFrame:
		return "SYNCH_FRAME"
	default:
		return "UNKNOWN"
	}
}

// SetupRequest is a decoded SETUP packet. It lives for one dispatch.
type SetupRequest struct {
	RequestType uint8   // bmRequestType: direction, type, recipient
	Request     Request // bRequest, decoded
	Code        uint8   // bRequest as received
	Value       uint16  // wValue
	Index       uint16  // wIndex
	Length      uint16  // wLength
}

// SetupPacketSize is the size of a USB SETUP packet in bytes.
const SetupPacketSize = 8

// SetupPacketWords is the size of a USB SETUP packet in 16-bit words.
const SetupPacketWords = SetupPacketSize / 2

// ParseSetupPacket decodes 8 little-endian bytes into out.
func ParseSetupPacket(data []byte, out *SetupRequest) error {
	if len(data) < SetupPacketSize {
		return pkg.ErrSetupPacketTooShort
	}
	out.RequestType = data[0]
	out.Code = data[1]
	out.Request = RequestFromCode(data[1])
	out.Value = binary.LittleEndian.Uint16(data[2:4])
	out.Index = binary.LittleEndian.Uint16(data[4:6])
	out.Length = binary.LittleEndian.Uint16(data[6:8])
	return nil
}

// ParseSetupWords decodes the four packet-memory words of a SETUP packet:
// requestType|request<<8, value, index, length.
func ParseSetupWords(words []uint16, out *SetupRequest) error {
	if len(words) < SetupPacketWords {
		return pkg.ErrSetupPacketTooShort
	}
	out.RequestType = uint8(words[0])
	out.Code = uint8(words[0] >> 8)
	out.Request = RequestFromCode(out.Code)
	out.Value = words[1]
	out.Index = words[2]
	out.Length = words[3]
	return nil
}

// MarshalTo serializes the setup packet to buf.
// Returns the number of bytes written (always 8 if buf is large enough).
func (s *SetupRequest) MarshalTo(buf []byte) int {
	if len(buf) < SetupPacketSize {
		return 0
	}
	buf[0] = s.RequestType
	buf[1] = s.Code
	binary.LittleEndian.PutUint16(buf[2:4], s.Value)
	binary.LittleEndian.PutUint16(buf[4:6], s.Index)
	binary.LittleEndian.PutUint16(buf[6:8], s.Length)
	return SetupPacketSize
}

// IsDeviceToHost returns true if this is a device-to-host transfer.
func (s *SetupRequest) IsDeviceToHost() bool {
	return s.RequestType&RequestTypeDirectionMask == RequestDirectionDeviceToHost
}

// Recipient returns the request recipient.
func (s *SetupRequest) Recipient() uint8 {
	return s.RequestType & RequestTypeRecipientMask
}

// DescriptorType returns the descriptor type from wValue high byte.
func (s *SetupRequest) DescriptorType() uint8 {
	return uint8(s.Value >> 8)
}

// String returns a human-readable representation of the setup packet.
func (s *SetupRequest) String() string {
	dir := "OUT"
	if s.IsDeviceToHost() {
		dir = "IN"
	}
	return fmt.Sprintf("SETUP[%s type=0x%02X] %s(0x%02X) Value=0x%04X Index=0x%04X Length=%d",
		dir, s.RequestType, s.Request, s.Code, s.Value, s.Index, s.Length)
}
