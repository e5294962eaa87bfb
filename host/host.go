package host

import (
	"context"
	"log/slog"

	"github.com/ardnew/pmausb/host/hal"
	"github.com/ardnew/pmausb/pkg"
)

// DefaultAddress is the address assigned during enumeration unless
// overridden with WithAddress.
const DefaultAddress = 1

// Step records one control transfer issued during enumeration.
type Step struct {
	Name    string
	Address uint8
	Setup   hal.SetupPacket
	Data    []byte // Bytes received or sent in the data stage
	Err     error
}

// Option configures a Host.
type Option func(*Host)

// WithAddress sets the address assigned to the device (1-127).
func WithAddress(address uint8) Option {
	return func(h *Host) {
		if address > 0 && address < 128 {
			h.address = address
		}
	}
}

// WithLogger sets the host logger.
func WithLogger(logger *slog.Logger) Option {
	return func(h *Host) {
		h.log = pkg.ComponentLogger(logger, pkg.ComponentHost)
	}
}

// WithObserver registers a callback invoked after every enumeration step.
func WithObserver(fn func(Step)) Option {
	return func(h *Host) {
		h.observer = fn
	}
}

// Host enumerates the single device attached to a HostHAL.
type Host struct {
	hal      hal.HostHAL
	address  uint8
	log      *slog.Logger
	observer func(Step)
}

// New creates a host on h.
func New(h hal.HostHAL, opts ...Option) *Host {
	host := &Host{
		hal:     h,
		address: DefaultAddress,
		log:     pkg.ComponentLogger(nil, pkg.ComponentHost),
	}
	for _, opt := range opts {
		opt(host)
	}
	return host
}

// transfer runs one control transfer and reports it to the observer.
func (h *Host) transfer(ctx context.Context, name string, addr uint8, setup *hal.SetupPacket, data []byte) (int, error) {
	n, err := h.hal.ControlTransfer(ctx, hal.DeviceAddress(addr), setup, data)
	if h.observer != nil {
		step := Step{Name: name, Address: addr, Setup: *setup, Err: err}
		if n > 0 {
			step.Data = append([]byte(nil), data[:n]...)
		}
		h.observer(step)
	}
	if err != nil {
		h.log.Debug("control transfer failed", "step", name, "address", addr, "error", err)
	}
	return n, err
}
