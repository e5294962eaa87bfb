package host

import (
	"context"
	"fmt"

	"github.com/ardnew/pmausb/device"
	"github.com/ardnew/pmausb/host/hal"
	"github.com/ardnew/pmausb/pkg"
)

// partialDescriptorSize is the prefix read before addressing, enough to
// learn bMaxPacketSize0.
const partialDescriptorSize = 8

// Enumerate resets the bus and walks the device through the standard
// sequence: partial device descriptor, SET_ADDRESS, full device
// descriptor, GET_STATUS, SET_CONFIGURATION with the first configuration,
// and GET_CONFIGURATION to confirm it.
func (h *Host) Enumerate(ctx context.Context) (*Device, error) {
	h.log.Info("starting enumeration", "address", h.address)

	if err := h.hal.ResetBus(ctx); err != nil {
		return nil, fail("reset", err)
	}

	// Read initial device descriptor (just the first 8 bytes to get bMaxPacketSize0)
	var buf [device.DeviceDescriptorSize]byte
	n, err := h.getDescriptor(ctx, 0, device.DescriptorTypeDevice, 0, buf[:partialDescriptorSize])
	if err != nil {
		return nil, fail("partial descriptor", err)
	}
	if n < partialDescriptorSize {
		return nil, fail("partial descriptor", fmt.Errorf("%w: %d bytes", pkg.ErrShortResponse, n))
	}
	if buf[1] != device.DescriptorTypeDevice {
		return nil, fail("partial descriptor", pkg.ErrDescriptorTypeMismatch)
	}
	h.log.Debug("got max packet size", "size", buf[7])

	setup := hal.SetupPacket{
		RequestType: device.RequestTypeDeviceOut,
		Request:     uint8(device.RequestSetAddress),
		Value:       uint16(h.address),
	}
	if _, err := h.transfer(ctx, "set-address", 0, &setup, nil); err != nil {
		return nil, fail("set address", err)
	}
	h.log.Debug("assigned address", "address", h.address)

	dev := &Device{host: h, address: h.address}

	// Now read full device descriptor using the new address
	n, err = h.getDescriptor(ctx, dev.address, device.DescriptorTypeDevice, 0, buf[:])
	if err != nil {
		return nil, fail("device descriptor", err)
	}
	if err := device.ParseDeviceDescriptor(buf[:n], &dev.descriptor); err != nil {
		return nil, fail("device descriptor", err)
	}
	h.log.Debug("device descriptor",
		"vendorID", dev.descriptor.VendorID,
		"productID", dev.descriptor.ProductID,
		"class", dev.descriptor.DeviceClass)

	if dev.status, err = dev.GetStatus(ctx); err != nil {
		return nil, fail("status", err)
	}

	if dev.descriptor.NumConfigurations > 0 {
		if err := dev.SetConfiguration(ctx, 1); err != nil {
			return nil, fail("set configuration", err)
		}
	}

	config, err := dev.GetConfiguration(ctx)
	if err != nil {
		return nil, fail("get configuration", err)
	}

	h.log.Info("enumeration complete", "address", dev.address, "configuration", config)
	return dev, nil
}

func fail(stage string, err error) error {
	return fmt.Errorf("%w: %s: %w", pkg.ErrEnumerationFailed, stage, err)
}
