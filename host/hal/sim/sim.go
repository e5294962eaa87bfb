package sim

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/ardnew/pmausb/device/hal/stm32"
	"github.com/ardnew/pmausb/host/hal"
	"github.com/ardnew/pmausb/pkg"
)

// MaxPacketSize is the endpoint 0 packet size used for data stages.
const MaxPacketSize = 64

// InterruptFunc services one device interrupt. It is called after every
// bus event that leaves an interrupt pending.
type InterruptFunc func() error

// HAL implements hal.HostHAL on a simulated peripheral. Each token is
// followed by one call to the device interrupt handler, as the hardware
// would raise one interrupt per completed transaction.
type HAL struct {
	sim       *stm32.Simulator
	interrupt InterruptFunc
	log       *slog.Logger

	// Errors returned by the interrupt handler, oldest first.
	deviceErrors []error
}

var _ hal.HostHAL = (*HAL)(nil)

// New connects a host to s. interrupt is the device's interrupt entry
// point. A nil logger means pkg.DefaultLogger.
func New(s *stm32.Simulator, interrupt InterruptFunc, logger *slog.Logger) *HAL {
	return &HAL{
		sim:       s,
		interrupt: interrupt,
		log:       pkg.ComponentLogger(logger, pkg.ComponentHost),
	}
}

// DeviceErrors returns the errors the device interrupt handler reported
// since the last call, and clears them.
func (h *HAL) DeviceErrors() []error {
	errs := h.deviceErrors
	h.deviceErrors = nil
	return errs
}

// ResetBus signals a bus reset and lets the device handle it.
func (h *HAL) ResetBus(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	h.sim.BusReset()
	h.service()
	return nil
}

// ControlTransfer implements hal.HostHAL.
func (h *HAL) ControlTransfer(ctx context.Context, addr hal.DeviceAddress, setup *hal.SetupPacket, data []byte) (int, error) {
	if int(setup.Length) < len(data) {
		data = data[:setup.Length]
	}

	if err := h.sim.Setup(uint8(addr), setup.Bytes()); err != nil {
		return 0, fmt.Errorf("setup stage: %w", err)
	}
	h.service()

	var (
		n   int
		err error
	)
	if setup.IsIn() {
		n, err = h.dataIn(ctx, uint8(addr), data)
	} else {
		n, err = h.dataOut(ctx, uint8(addr), data)
	}
	if err != nil {
		return n, fmt.Errorf("data stage: %w", err)
	}

	if err := ctx.Err(); err != nil {
		return n, err
	}
	if setup.IsIn() {
		err = h.sim.Out(uint8(addr), nil)
	} else {
		var zlp []byte
		zlp, err = h.sim.In(uint8(addr))
		if err == nil && len(zlp) != 0 {
			err = fmt.Errorf("%d-byte status packet", len(zlp))
		}
	}
	if err != nil {
		return n, fmt.Errorf("status stage: %w", err)
	}
	h.service()

	h.log.Debug("control transfer", "address", addr,
		"requestType", setup.RequestType, "request", setup.Request, "bytes", n)
	return n, nil
}

// dataIn reads packets until data is full or a short packet arrives.
func (h *HAL) dataIn(ctx context.Context, addr uint8, data []byte) (int, error) {
	n := 0
	for n < len(data) {
		if err := ctx.Err(); err != nil {
			return n, err
		}
		packet, err := h.sim.In(addr)
		if err != nil {
			return n, err
		}
		h.service()
		n += copy(data[n:], packet)
		if len(packet) < MaxPacketSize {
			break
		}
	}
	return n, nil
}

// dataOut sends data in MaxPacketSize packets.
func (h *HAL) dataOut(ctx context.Context, addr uint8, data []byte) (int, error) {
	n := 0
	for n < len(data) {
		if err := ctx.Err(); err != nil {
			return n, err
		}
		end := min(n+MaxPacketSize, len(data))
		if err := h.sim.Out(addr, data[n:end]); err != nil {
			return n, err
		}
		h.service()
		n = end
	}
	return n, nil
}

func (h *HAL) service() {
	if !h.sim.Pending() {
		return
	}
	if err := h.interrupt(); err != nil {
		h.log.Debug("device interrupt", "error", err)
		h.deviceErrors = append(h.deviceErrors, err)
	}
}
