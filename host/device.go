package host

import (
	"context"
	"fmt"

	"github.com/ardnew/pmausb/device"
	"github.com/ardnew/pmausb/host/hal"
	"github.com/ardnew/pmausb/pkg"
)

// Device is an enumerated device as seen from the host.
type Device struct {
	host    *Host
	address uint8

	descriptor    device.DeviceDescriptor
	status        uint16
	configuration uint8
}

// Address returns the device address.
func (d *Device) Address() uint8 {
	return d.address
}

// Descriptor returns the device descriptor read during enumeration.
func (d *Device) Descriptor() device.DeviceDescriptor {
	return d.descriptor
}

// Status returns the device status read during enumeration.
func (d *Device) Status() uint16 {
	return d.status
}

// Configuration returns the last configuration value read back.
func (d *Device) Configuration() uint8 {
	return d.configuration
}

// ControlTransfer performs a control transfer to the device.
func (d *Device) ControlTransfer(ctx context.Context, setup *hal.SetupPacket, data []byte) (int, error) {
	return d.host.transfer(ctx, "control", d.address, setup, data)
}

// GetDescriptor performs a GET_DESCRIPTOR request.
func (d *Device) GetDescriptor(ctx context.Context, descType, descIndex uint8, data []byte) (int, error) {
	return d.host.getDescriptor(ctx, d.address, descType, descIndex, data)
}

// GetStatus performs a device GET_STATUS request.
func (d *Device) GetStatus(ctx context.Context) (uint16, error) {
	return d.host.getStatus(ctx, d.address, device.RequestTypeDeviceIn, 0)
}

// GetInterfaceStatus performs an interface GET_STATUS request.
func (d *Device) GetInterfaceStatus(ctx context.Context, iface uint8) (uint16, error) {
	return d.host.getStatus(ctx, d.address, device.RequestTypeInterfaceIn, uint16(iface))
}

// GetConfiguration performs a GET_CONFIGURATION request.
func (d *Device) GetConfiguration(ctx context.Context) (uint8, error) {
	var buf [1]byte
	setup := hal.SetupPacket{
		RequestType: device.RequestTypeDeviceIn,
		Request:     uint8(device.RequestGetConfiguration),
		Length:      1,
	}
	n, err := d.host.transfer(ctx, "get-configuration", d.address, &setup, buf[:])
	if err != nil {
		return 0, err
	}
	if n < 1 {
		return 0, pkg.ErrShortResponse
	}
	d.configuration = buf[0]
	return buf[0], nil
}

// SetConfiguration performs a SET_CONFIGURATION request.
func (d *Device) SetConfiguration(ctx context.Context, value uint8) error {
	setup := hal.SetupPacket{
		RequestType: device.RequestTypeDeviceOut,
		Request:     uint8(device.RequestSetConfiguration),
		Value:       uint16(value),
	}
	_, err := d.host.transfer(ctx, "set-configuration", d.address, &setup, nil)
	return err
}

// GetInterface performs a GET_INTERFACE request.
func (d *Device) GetInterface(ctx context.Context, iface uint8) (uint8, error) {
	var buf [1]byte
	setup := hal.SetupPacket{
		RequestType: device.RequestTypeInterfaceIn,
		Request:     uint8(device.RequestGetInterface),
		Index:       uint16(iface),
		Length:      1,
	}
	n, err := d.host.transfer(ctx, "get-interface", d.address, &setup, buf[:])
	if err != nil {
		return 0, err
	}
	if n < 1 {
		return 0, pkg.ErrShortResponse
	}
	return buf[0], nil
}

// SetInterface performs a SET_INTERFACE request.
func (d *Device) SetInterface(ctx context.Context, iface, alt uint8) error {
	setup := hal.SetupPacket{
		RequestType: device.RequestTypeInterfaceOut,
		Request:     uint8(device.RequestSetInterface),
		Value:       uint16(alt),
		Index:       uint16(iface),
	}
	_, err := d.host.transfer(ctx, "set-interface", d.address, &setup, nil)
	return err
}

// ClearFeature performs a device CLEAR_FEATURE request.
func (d *Device) ClearFeature(ctx context.Context, feature uint16) error {
	return d.feature(ctx, device.RequestClearFeature, feature)
}

// SetFeature performs a device SET_FEATURE request.
func (d *Device) SetFeature(ctx context.Context, feature uint16) error {
	return d.feature(ctx, device.RequestSetFeature, feature)
}

func (d *Device) feature(ctx context.Context, req device.Request, feature uint16) error {
	setup := hal.SetupPacket{
		RequestType: device.RequestTypeDeviceOut,
		Request:     uint8(req),
		Value:       feature,
	}
	_, err := d.host.transfer(ctx, req.String(), d.address, &setup, nil)
	return err
}

func (h *Host) getDescriptor(ctx context.Context, addr, descType, descIndex uint8, data []byte) (int, error) {
	setup := hal.SetupPacket{
		RequestType: device.RequestTypeDeviceIn,
		Request:     uint8(device.RequestGetDescriptor),
		Value:       uint16(descType)<<8 | uint16(descIndex),
		Length:      uint16(len(data)),
	}
	return h.transfer(ctx, fmt.Sprintf("get-descriptor(%d)", len(data)), addr, &setup, data)
}

func (h *Host) getStatus(ctx context.Context, addr, requestType uint8, index uint16) (uint16, error) {
	var buf [2]byte
	setup := hal.SetupPacket{
		RequestType: requestType,
		Request:     uint8(device.RequestGetStatus),
		Index:       index,
		Length:      2,
	}
	n, err := h.transfer(ctx, "get-status", addr, &setup, buf[:])
	if err != nil {
		return 0, err
	}
	if n < 2 {
		return 0, pkg.ErrShortResponse
	}
	return uint16(buf[0]) | uint16(buf[1])<<8, nil
}
