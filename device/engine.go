package device

import (
	"fmt"
	"log/slog"

	"github.com/ardnew/pmausb/device/hal"
	"github.com/ardnew/pmausb/pkg"
)

// Engine is the endpoint 0 control-transfer state machine.
//
// Both interrupt entry points run the same handler to completion. The caller
// must never invoke them concurrently; the engine mutates its own state and
// the platform without synchronization.
type Engine struct {
	platform hal.Platform
	config   Config
	log      *slog.Logger

	// Immutable copy of the descriptor supplied at construction.
	descriptor [DeviceDescriptorWords]uint16

	// SET_ADDRESS value waiting for its status stage.
	pendingAddress uint8
	addressPending bool

	// Response staging, reused across dispatches.
	response [MaxResponseWords]uint16
}

// NewEngine creates an engine serving desc through p.
func NewEngine(p hal.Platform, desc *DeviceDescriptor, opts ...Option) *Engine {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	return &Engine{
		platform:   p,
		config:     cfg,
		log:        pkg.ComponentLogger(cfg.Logger, pkg.ComponentEngine),
		descriptor: desc.Words(),
	}
}

// HighPriorityInterrupt services the high-priority USB interrupt line.
func (e *Engine) HighPriorityInterrupt() error {
	return e.service()
}

// LowPriorityInterrupt services the low-priority USB interrupt line.
func (e *Engine) LowPriorityInterrupt() error {
	return e.service()
}

// PendingAddress returns the address waiting to be applied, if any.
func (e *Engine) PendingAddress() (uint8, bool) {
	return e.pendingAddress, e.addressPending
}

// service handles one interrupt: reset, spurious flags, then at most one
// endpoint 0 stage.
func (e *Engine) service() error {
	if e.platform.ResetRequested() {
		e.log.Debug("bus reset")
		e.platform.ReinitializeEndpoints()
		e.platform.ClearReset()
		e.platform.SetConfiguration(0)
		e.pendingAddress, e.addressPending = 0, false
	}

	e.platform.ClearStatusFlags()

	if !e.platform.TransferComplete() {
		return nil
	}

	if ep := e.platform.EndpointID(); ep != 0 {
		e.log.Warn("transfer on unimplemented endpoint", "endpoint", ep)
		return fmt.Errorf("%w: %d", pkg.ErrEndpointNotImplemented, ep)
	}

	return e.handleControl()
}

func (e *Engine) handleControl() error {
	switch e.platform.Direction() {
	case hal.DirectionHostToDevice:
		// The new address must not take effect before the status stage of
		// SET_ADDRESS has completed at the old one.
		if e.addressPending {
			e.platform.SetAddress(e.pendingAddress)
			e.log.Debug("address applied", "address", e.pendingAddress)
			e.pendingAddress, e.addressPending = 0, false
		}
		e.platform.TransmitAck()
		return nil

	default:
		var setup SetupRequest
		e.readSetup(&setup)
		return e.dispatch(&setup)
	}
}

func (e *Engine) readSetup(out *SetupRequest) {
	out.RequestType = e.platform.RequestType()
	out.Code = e.platform.Request()
	out.Request = RequestFromCode(out.Code)
	out.Value = e.platform.Value()
	out.Index = e.platform.Index()
	out.Length = e.platform.Length()
}

type dispatchKey struct {
	requestType uint8
	request     Request
}

func (e *Engine) dispatch(setup *SetupRequest) error {
	e.log.Debug("setup received", "request", setup.String())

	switch (dispatchKey{setup.RequestType, setup.Request}) {
	case dispatchKey{RequestTypeDeviceIn, RequestGetStatus}:
		e.response[0] = 0
		return e.respond(setup, e.response[:1])

	case dispatchKey{RequestTypeDeviceOut, RequestClearFeature},
		dispatchKey{RequestTypeDeviceOut, RequestSetFeature},
		dispatchKey{RequestTypeDeviceOut, RequestSetDescriptor},
		dispatchKey{RequestTypeInterfaceOut, RequestClearFeature},
		dispatchKey{RequestTypeInterfaceOut, RequestSetInterface}:
		e.platform.RequestAck()
		return nil

	case dispatchKey{RequestTypeDeviceOut, RequestSetAddress}:
		e.pendingAddress = uint8(setup.Value)
		e.addressPending = true
		e.platform.RequestAck()
		return nil

	case dispatchKey{RequestTypeDeviceIn, RequestGetDescriptor}:
		return e.respondDescriptor(setup)

	case dispatchKey{RequestTypeDeviceIn, RequestGetConfiguration}:
		e.response[0] = uint16(e.platform.Configuration())
		return e.respond(setup, e.response[:1])

	case dispatchKey{RequestTypeDeviceOut, RequestSetConfiguration}:
		e.platform.SetConfiguration(uint8(setup.Value))
		e.platform.RequestAck()
		return nil

	case dispatchKey{RequestTypeInterfaceIn, RequestGetStatus}:
		e.response[0], e.response[1] = 0, 0
		return e.respond(setup, e.response[:2])

	case dispatchKey{RequestTypeInterfaceIn, RequestGetInterface}:
		e.response[0] = 0
		return e.respond(setup, e.response[:1])

	default:
		e.platform.TransmitAck()
		err := &pkg.UnsupportedRequestError{RequestType: setup.RequestType, Request: setup.Code}
		e.log.Warn("request stalled", "error", err)
		return err
	}
}

func (e *Engine) respondDescriptor(setup *SetupRequest) error {
	size := DeviceDescriptorSize
	if e.config.DescriptorMode == DescriptorModePlaceholder {
		size = PlaceholderSize
	}
	n := copy(e.response[:], e.descriptor[:(size+1)/2])
	return e.respondBytes(setup, e.response[:n], size)
}

// respond sends values, capped at wLength.
func (e *Engine) respond(setup *SetupRequest, values []uint16) error {
	return e.respondBytes(setup, values, 2*len(values))
}

// respondBytes stages values before arming the transmitter; the hardware
// would otherwise send stale packet memory.
func (e *Engine) respondBytes(setup *SetupRequest, values []uint16, size int) error {
	if int(setup.Length) < size {
		size = int(setup.Length)
	}
	values = values[:(size+1)/2]
	if err := e.platform.WriteResponse(values, size); err != nil {
		e.platform.TransmitAck()
		return fmt.Errorf("stage response: %w", err)
	}
	e.platform.RespondWithData()
	return nil
}
