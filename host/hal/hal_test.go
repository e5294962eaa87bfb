package hal

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseSetupPacket(t *testing.T) {
	data := []byte{
		0x80,       // RequestType (Device-to-Host, Standard, Device)
		0x06,       // Request (GET_DESCRIPTOR)
		0x00, 0x01, // Value (Device Descriptor)
		0x00, 0x00, // Index
		0x12, 0x00, // Length (18)
	}

	var setup SetupPacket
	require.True(t, ParseSetupPacket(data, &setup))

	assert.Equal(t, uint8(0x80), setup.RequestType)
	assert.Equal(t, uint8(0x06), setup.Request)
	assert.Equal(t, uint16(0x0100), setup.Value)
	assert.Zero(t, setup.Index)
	assert.Equal(t, uint16(18), setup.Length)
	assert.True(t, setup.IsIn())
}

func TestParseSetupPacket_TooShort(t *testing.T) {
	var setup SetupPacket
	assert.False(t, ParseSetupPacket([]byte{0x80, 0x06, 0x00}, &setup))
}

func TestSetupPacket_MarshalTo(t *testing.T) {
	setup := SetupPacket{
		RequestType: 0x00,
		Request:     0x05,
		Value:       0x0042,
		Index:       0x1234,
		Length:      0,
	}

	var buf [SetupPacketSize]byte
	require.Equal(t, SetupPacketSize, setup.MarshalTo(buf[:]))
	assert.Equal(t, [SetupPacketSize]byte{0x00, 0x05, 0x42, 0x00, 0x34, 0x12, 0x00, 0x00}, buf)
	assert.Equal(t, buf, setup.Bytes())
	assert.False(t, setup.IsIn())
}

func TestSetupPacket_MarshalTo_TooSmall(t *testing.T) {
	setup := SetupPacket{Request: 0x06}
	assert.Zero(t, setup.MarshalTo(make([]byte, 7)))
}

func BenchmarkParseSetupPacket(b *testing.B) {
	data := []byte{0x80, 0x06, 0x00, 0x01, 0x00, 0x00, 0x12, 0x00}
	var setup SetupPacket

	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		ParseSetupPacket(data, &setup)
	}
}
