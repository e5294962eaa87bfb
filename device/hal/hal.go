package hal

// Direction reports which control stage completed on endpoint 0.
type Direction uint8

// Direction values.
const (
	// DirectionHostToDevice marks a completed status stage: the host has
	// consumed an IN response or sent the zero-length OUT status packet.
	DirectionHostToDevice Direction = iota

	// DirectionDeviceToHost marks a received SETUP packet that the device
	// must answer.
	DirectionDeviceToHost
)

// String returns a human-readable direction name.
func (d Direction) String() string {
	switch d {
	case DirectionHostToDevice:
		return "host-to-device"
	case DirectionDeviceToHost:
		return "device-to-host"
	default:
		return "unknown"
	}
}

// Platform is the hardware capability consumed by the control-transfer
// engine. One implementation exists per target peripheral; tests use an
// in-memory fake.
//
// Implementations must make data passed to WriteResponse visible to the
// peripheral before RespondWithData arms the transmitter, and must keep the
// endpoint status bit patterns of the three acknowledgement operations exact.
type Platform interface {
	// WriteResponse stages values in the endpoint 0 transmit buffer.
	// length is the number of bytes to transmit and never exceeds
	// 2*len(values).
	WriteResponse(values []uint16, length int) error

	// ResetRequested reports a pending bus reset.
	ResetRequested() bool

	// ClearReset acknowledges the bus reset flag.
	ClearReset()

	// ClearStatusFlags clears suspend, start-of-frame and expected
	// start-of-frame flags.
	ClearStatusFlags()

	// TransferComplete reports a completed transfer on any endpoint.
	TransferComplete() bool

	// EndpointID returns the endpoint that raised TransferComplete.
	EndpointID() uint8

	// Direction returns the stage that completed on endpoint 0.
	Direction() Direction

	// Setup packet fields as staged in packet memory.
	RequestType() uint8
	Request() uint8
	Value() uint16
	Index() uint16
	Length() uint16

	// Configuration returns the current configuration id.
	Configuration() uint8

	// SetConfiguration stores the configuration id selected by the host.
	SetConfiguration(id uint8)

	// SetAddress programs the device address register.
	SetAddress(address uint8)

	// RequestAck arms a zero-length IN status packet (validate-tx-signal-out).
	RequestAck()

	// RespondWithData arms the staged response (validate-both-signal-out).
	RespondWithData()

	// TransmitAck closes the transfer (stall-tx-validate-rx). The engine also
	// issues it as the stall fallback for unsupported requests.
	TransmitAck()

	// ReinitializeEndpoints reprograms the buffer descriptor table and the
	// endpoint registers after a bus reset and enables the device function.
	ReinitializeEndpoints()
}
