package device

import (
	"encoding/binary"

	"github.com/ardnew/pmausb/pkg"
)

// DeviceDescriptor represents a USB device descriptor (18 bytes).
// Length and DescriptorType are implied when encoding.
type DeviceDescriptor struct {
	USBVersion        uint16 // USB specification version (BCD)
	DeviceClass       uint8  // Class code
	DeviceSubClass    uint8  // Subclass code
	DeviceProtocol    uint8  // Protocol code
	MaxPacketSize0    uint8  // Max packet size for EP0
	VendorID          uint16 // Vendor ID
	ProductID         uint16 // Product ID
	DeviceVersion     uint16 // Device release number (BCD)
	ManufacturerIndex uint8  // Index of manufacturer string
	ProductIndex      uint8  // Index of product string
	SerialNumberIndex uint8  // Index of serial number string
	NumConfigurations uint8  // Number of configurations
}

// Device descriptor sizes.
const (
	DeviceDescriptorSize  = 18
	DeviceDescriptorWords = DeviceDescriptorSize / 2
)

// DefaultDeviceDescriptor describes a vendor-less full-speed device using
// the Linux Foundation vendor id.
var DefaultDeviceDescriptor = DeviceDescriptor{
	USBVersion:        0x0200,
	DeviceClass:       ClassPerInterface,
	MaxPacketSize0:    MaxPacketSize0,
	VendorID:          0x1D6B,
	ProductID:         0x0012,
	DeviceVersion:     0x0001,
	ManufacturerIndex: 1,
	ProductIndex:      2,
	SerialNumberIndex: 3,
	NumConfigurations: 1,
}

// MarshalTo serializes the device descriptor to buf.
// Returns the number of bytes written (always 18 if buf is large enough).
func (d *DeviceDescriptor) MarshalTo(buf []byte) int {
	if len(buf) < DeviceDescriptorSize {
		return 0
	}
	buf[0] = DeviceDescriptorSize
	buf[1] = DescriptorTypeDevice
	binary.LittleEndian.PutUint16(buf[2:4], d.USBVersion)
	buf[4] = d.DeviceClass
	buf[5] = d.DeviceSubClass
	buf[6] = d.DeviceProtocol
	buf[7] = d.MaxPacketSize0
	binary.LittleEndian.PutUint16(buf[8:10], d.VendorID)
	binary.LittleEndian.PutUint16(buf[10:12], d.ProductID)
	binary.LittleEndian.PutUint16(buf[12:14], d.DeviceVersion)
	buf[14] = d.ManufacturerIndex
	buf[15] = d.ProductIndex
	buf[16] = d.SerialNumberIndex
	buf[17] = d.NumConfigurations
	return DeviceDescriptorSize
}

// Words returns the descriptor as the nine little-endian 16-bit words the
// packet memory holds: each word packs two consecutive descriptor bytes,
// the earlier byte in the low half.
func (d *DeviceDescriptor) Words() [DeviceDescriptorWords]uint16 {
	var buf [DeviceDescriptorSize]byte
	d.MarshalTo(buf[:])
	var words [DeviceDescriptorWords]uint16
	for i := range words {
		words[i] = binary.LittleEndian.Uint16(buf[2*i:])
	}
	return words
}

// ParseDeviceDescriptor parses a device descriptor from bytes into out.
// Returns an error if the data is too short or the descriptor type is wrong.
func ParseDeviceDescriptor(data []byte, out *DeviceDescriptor) error {
	if len(data) < DeviceDescriptorSize || int(data[0]) < DeviceDescriptorSize {
		return pkg.ErrDescriptorTooShort
	}
	if data[1] != DescriptorTypeDevice {
		return pkg.ErrDescriptorTypeMismatch
	}
	out.USBVersion = binary.LittleEndian.Uint16(data[2:4])
	out.DeviceClass = data[4]
	out.DeviceSubClass = data[5]
	out.DeviceProtocol = data[6]
	out.MaxPacketSize0 = data[7]
	out.VendorID = binary.LittleEndian.Uint16(data[8:10])
	out.ProductID = binary.LittleEndian.Uint16(data[10:12])
	out.DeviceVersion = binary.LittleEndian.Uint16(data[12:14])
	out.ManufacturerIndex = data[14]
	out.ProductIndex = data[15]
	out.SerialNumberIndex = data[16]
	out.NumConfigurations = data[17]
	return nil
}

// DescriptorFromWords parses a descriptor given as packed 16-bit words.
func DescriptorFromWords(words []uint16, out *DeviceDescriptor) error {
	if len(words) < DeviceDescriptorWords {
		return pkg.ErrDescriptorTooShort
	}
	var buf [DeviceDescriptorSize]byte
	for i := 0; i < DeviceDescriptorWords; i++ {
		binary.LittleEndian.PutUint16(buf[2*i:], words[i])
	}
	return ParseDeviceDescriptor(buf[:], out)
}
