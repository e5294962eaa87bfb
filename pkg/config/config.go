// Package config loads device descriptors from YAML, TOML or JSON files.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	toml "github.com/pelletier/go-toml"
	yaml "gopkg.in/yaml.v3"

	"github.com/ardnew/pmausb/device"
	"github.com/ardnew/pmausb/pkg"
)

// Format is a descriptor file encoding.
type Format string

// Supported formats.
const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
	FormatTOML Format = "toml"
)

// Descriptor is the file form of a device descriptor. Keys absent from a
// file keep the values of device.DefaultDeviceDescriptor.
type Descriptor struct {
	USBVersion        uint16 `json:"usb_version" yaml:"usb_version" toml:"usb_version"`
	Class             uint8  `json:"class" yaml:"class" toml:"class"`
	SubClass          uint8  `json:"subclass" yaml:"subclass" toml:"subclass"`
	Protocol          uint8  `json:"protocol" yaml:"protocol" toml:"protocol"`
	MaxPacketSize     uint8  `json:"max_packet_size" yaml:"max_packet_size" toml:"max_packet_size"`
	VendorID          uint16 `json:"vendor_id" yaml:"vendor_id" toml:"vendor_id"`
	ProductID         uint16 `json:"product_id" yaml:"product_id" toml:"product_id"`
	DeviceVersion     uint16 `json:"device_version" yaml:"device_version" toml:"device_version"`
	ManufacturerIndex uint8  `json:"manufacturer_index" yaml:"manufacturer_index" toml:"manufacturer_index"`
	ProductIndex      uint8  `json:"product_index" yaml:"product_index" toml:"product_index"`
	SerialIndex       uint8  `json:"serial_index" yaml:"serial_index" toml:"serial_index"`
	NumConfigurations uint8  `json:"num_configurations" yaml:"num_configurations" toml:"num_configurations"`
}

// FromDevice converts d to its file form.
func FromDevice(d device.DeviceDescriptor) Descriptor {
	return Descriptor{
		USBVersion:        d.USBVersion,
		Class:             d.DeviceClass,
		SubClass:          d.DeviceSubClass,
		Protocol:          d.DeviceProtocol,
		MaxPacketSize:     d.MaxPacketSize0,
		VendorID:          d.VendorID,
		ProductID:         d.ProductID,
		DeviceVersion:     d.DeviceVersion,
		ManufacturerIndex: d.ManufacturerIndex,
		ProductIndex:      d.ProductIndex,
		SerialIndex:       d.SerialNumberIndex,
		NumConfigurations: d.NumConfigurations,
	}
}

// Device converts the file form to a device descriptor.
func (c Descriptor) Device() device.DeviceDescriptor {
	return device.DeviceDescriptor{
		USBVersion:        c.USBVersion,
		DeviceClass:       c.Class,
		DeviceSubClass:    c.SubClass,
		DeviceProtocol:    c.Protocol,
		MaxPacketSize0:    c.MaxPacketSize,
		VendorID:          c.VendorID,
		ProductID:         c.ProductID,
		DeviceVersion:     c.DeviceVersion,
		ManufacturerIndex: c.ManufacturerIndex,
		ProductIndex:      c.ProductIndex,
		SerialNumberIndex: c.SerialIndex,
		NumConfigurations: c.NumConfigurations,
	}
}

// FormatOf returns the format implied by a file extension.
func FormatOf(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return FormatJSON, nil
	case ".yaml", ".yml":
		return FormatYAML, nil
	case ".toml":
		return FormatTOML, nil
	default:
		return "", fmt.Errorf("%w: %q", pkg.ErrUnknownConfigFormat, path)
	}
}

// ParseFormat normalizes a format name.
func ParseFormat(name string) (Format, error) {
	switch strings.ToLower(name) {
	case "json":
		return FormatJSON, nil
	case "yaml", "yml":
		return FormatYAML, nil
	case "toml":
		return FormatTOML, nil
	default:
		return "", fmt.Errorf("%w: %q", pkg.ErrUnknownConfigFormat, name)
	}
}

// Load reads the descriptor file at path, choosing the decoder by
// extension.
func Load(path string) (device.DeviceDescriptor, error) {
	format, err := FormatOf(path)
	if err != nil {
		return device.DeviceDescriptor{}, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return device.DeviceDescriptor{}, err
	}
	d, err := Decode(data, format)
	if err != nil {
		return device.DeviceDescriptor{}, fmt.Errorf("%s: %w", path, err)
	}
	return d, nil
}

// Decode parses data in the given format over the default descriptor.
func Decode(data []byte, format Format) (device.DeviceDescriptor, error) {
	c := FromDevice(device.DefaultDeviceDescriptor)
	var err error
	switch format {
	case FormatJSON:
		err = json.Unmarshal(data, &c)
	case FormatYAML:
		err = yaml.Unmarshal(data, &c)
	case FormatTOML:
		err = toml.Unmarshal(data, &c)
	default:
		err = fmt.Errorf("%w: %q", pkg.ErrUnknownConfigFormat, format)
	}
	if err != nil {
		return device.DeviceDescriptor{}, err
	}
	return c.Device(), nil
}

// Encode renders d in the given format.
func Encode(d device.DeviceDescriptor, format Format) ([]byte, error) {
	c := FromDevice(d)
	switch format {
	case FormatJSON:
		return json.MarshalIndent(c, "", "  ")
	case FormatYAML:
		return yaml.Marshal(c)
	case FormatTOML:
		return toml.Marshal(c)
	default:
		return nil, fmt.Errorf("%w: %q", pkg.ErrUnknownConfigFormat, format)
	}
}
