package pkg

import (
	"errors"
	"fmt"
)

// Engine and platform errors.
var (
	// ErrOutOfBounds indicates a packet-memory index or range at or beyond
	// the logical slot count.
	ErrOutOfBounds = errors.New("packet memory index out of bounds")

	// ErrUnsupportedRequest indicates a (requestType, request) pair outside
	// the dispatch table.
	ErrUnsupportedRequest = errors.New("unsupported request")

	// ErrEndpointNotImplemented indicates transfer activity on an endpoint
	// other than endpoint 0.
	ErrEndpointNotImplemented = errors.New("endpoint not implemented")

	// ErrInvalidStorage indicates backing storage too small for a layout.
	ErrInvalidStorage = errors.New("invalid packet memory storage")

	// ErrDescriptorTooShort indicates the descriptor data is too short.
	ErrDescriptorTooShort = errors.New("descriptor too short")

	// ErrDescriptorTypeMismatch indicates the descriptor type does not match expected.
	ErrDescriptorTypeMismatch = errors.New("descriptor type mismatch")

	// ErrSetupPacketTooShort indicates the setup packet data is too short.
	ErrSetupPacketTooShort = errors.New("setup packet too short")

	// ErrUnknownConfigFormat indicates a config file extension with no decoder.
	ErrUnknownConfigFormat = errors.New("unknown config format")
)

// Host-side errors.
var (
	// ErrStall indicates the device stalled endpoint 0.
	ErrStall = errors.New("endpoint stalled")

	// ErrNAK indicates the device was not ready to accept or provide data.
	ErrNAK = errors.New("endpoint NAK")

	// ErrNoResponse indicates no function answered at the addressed device.
	ErrNoResponse = errors.New("no response")

	// ErrShortResponse indicates fewer bytes than required were returned.
	ErrShortResponse = errors.New("short response")

	// ErrEnumerationFailed indicates the enumeration sequence did not complete.
	ErrEnumerationFailed = errors.New("enumeration failed")
)

// BoundsError reports a rejected packet-memory access.
type BoundsError struct {
	Index int // Offending logical index (final index for bulk access)
	Limit int // Exclusive upper bound
}

func (e *BoundsError) Error() string {
	return fmt.Sprintf("packet memory index %d out of bounds [0,%d)", e.Index, e.Limit)
}

// Is reports whether target is ErrOutOfBounds.
func (e *BoundsError) Is(target error) bool {
	return target == ErrOutOfBounds
}

// UnsupportedRequestError carries the setup fields that matched no handler.
type UnsupportedRequestError struct {
	RequestType uint8
	Request     uint8
}

func (e *UnsupportedRequestError) Error() string {
	return fmt.Sprintf("unsupported request: type=0x%02X request=0x%02X", e.RequestType, e.Request)
}

// Is reports whether target is ErrUnsupportedRequest.
func (e *UnsupportedRequestError) Is(target error) bool {
	return target == ErrUnsupportedRequest
}
