package device

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ardnew/pmausb/pkg"
)

func TestParseSetupPacket(t *testing.T) {
	tests := []struct {
		name    string
		data    []byte
		want    SetupRequest
		wantErr bool
	}{
		{
			name: "GET_DESCRIPTOR device",
			data: []byte{0x80, 0x06, 0x00, 0x01, 0x00, 0x00, 0x12, 0x00},
			want: SetupRequest{RequestType: 0x80, Request: RequestGetDescriptor, Code: 0x06, Value: 0x0100, Length: 18},
		},
		{
			name: "SET_ADDRESS",
			data: []byte{0x00, 0x05, 0x05, 0x00, 0x00, 0x00, 0x00, 0x00},
			want: SetupRequest{RequestType: 0x00, Request: RequestSetAddress, Code: 0x05, Value: 5},
		},
		{
			name: "vendor code",
			data: []byte{0x40, 0x42, 0x34, 0x12, 0x01, 0x00, 0x00, 0x00},
			want: SetupRequest{RequestType: 0x40, Request: RequestUnknown, Code: 0x42, Value: 0x1234, Index: 1},
		},
		{
			name:    "too short",
			data:    []byte{0x80, 0x06, 0x00},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got SetupRequest
			err := ParseSetupPacket(tt.data, &got)
			if tt.wantErr {
				assert.ErrorIs(t, err, pkg.ErrSetupPacketTooShort)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)

			var buf [SetupPacketSize]byte
			require.Equal(t, SetupPacketSize, got.MarshalTo(buf[:]))
			assert.Equal(t, tt.data, buf[:])
		})
	}
}

func TestParseSetupWords(t *testing.T) {
	var got SetupRequest
	require.NoError(t, ParseSetupWords([]uint16{0x0680, 0x0100, 0x0000, 0x0040}, &got))
	assert.Equal(t, SetupRequest{
		RequestType: 0x80,
		Request:     RequestGetDescriptor,
		Code:        0x06,
		Value:       0x0100,
		Length:      64,
	}, got)

	assert.ErrorIs(t, ParseSetupWords([]uint16{0, 0}, &got), pkg.ErrSetupPacketTooShort)
}

func TestRequestFromCode(t *testing.T) {
	known := []Request{
		RequestGetStatus, RequestClearFeature, RequestSetFeature, RequestSetAddress,
		RequestGetDescriptor, RequestSetDescriptor, RequestGetConfiguration,
		RequestSetConfiguration, RequestGetInterface, RequestSetInterface, RequestSynchFrame,
	}
	for _, r := range known {
		assert.Equal(t, r, RequestFromCode(uint8(r)), r.String())
		assert.NotEqual(t, "UNKNOWN", r.String())
	}
	for _, code := range []uint8{0x02, 0x04, 0x0D, 0x42, 0xFF} {
		assert.Equal(t, RequestUnknown, RequestFromCode(code), "code 0x%02X", code)
	}
}

func TestSetupRequestString(t *testing.T) {
	s := SetupRequest{RequestType: 0x80, Request: RequestGetDescriptor, Code: 0x06, Value: 0x0100, Length: 18}
	assert.Equal(t, "SETUP[IN type=0x80] GET_DESCRIPTOR(0x06) Value=0x0100 Index=0x0000 Length=18", s.String())
	assert.Equal(t, uint8(DescriptorTypeDevice), s.DescriptorType())
	assert.Equal(t, uint8(RequestRecipientDevice), s.Recipient())
}
