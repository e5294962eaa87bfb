package sim

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	devhal "github.com/ardnew/pmausb/device/hal"
	"github.com/ardnew/pmausb/device/hal/stm32"
	"github.com/ardnew/pmausb/host/hal"
	"github.com/ardnew/pmausb/pkg"
)

// newIdleHAL returns a HAL over a simulator whose device side is driven
// directly by the test through p.
func newIdleHAL(t *testing.T, interrupt InterruptFunc) (*HAL, *stm32.Simulator, *stm32.Platform) {
	t.Helper()
	s, err := stm32.NewSimulator(stm32.LayoutGapped, nil)
	require.NoError(t, err)
	p := stm32.NewPlatform(s.Memory(), s.Registers(), nil)
	return New(s, interrupt, nil), s, p
}

func TestResetBusCallsInterrupt(t *testing.T) {
	calls := 0
	h, s, _ := newIdleHAL(t, func() error { calls++; return nil })

	require.NoError(t, h.ResetBus(context.Background()))
	assert.Equal(t, 1, calls)
	assert.NotZero(t, s.Interrupts())
}

func TestResetBusCanceled(t *testing.T) {
	h, _, _ := newIdleHAL(t, func() error { return nil })
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, h.ResetBus(ctx), context.Canceled)
}

func TestControlTransferNoDevice(t *testing.T) {
	h, _, _ := newIdleHAL(t, func() error { return nil })

	setup := hal.SetupPacket{RequestType: 0x80, Request: 0x06, Value: 0x0100, Length: 18}
	_, err := h.ControlTransfer(context.Background(), 0, &setup, make([]byte, 18))
	assert.ErrorIs(t, err, pkg.ErrNoResponse)
}

func TestControlTransferIn(t *testing.T) {
	var p *stm32.Platform
	h, s, p := newIdleHAL(t, func() error {
		// Minimal device: answer the SETUP with three bytes, close every
		// other stage.
		switch {
		case p.ResetRequested():
			p.ReinitializeEndpoints()
			p.ClearReset()
		case p.Direction() == devhal.DirectionDeviceToHost:
			if err := p.WriteResponse([]uint16{0x0201, 0x0003}, 3); err != nil {
				return err
			}
			p.RespondWithData()
		default:
			p.TransmitAck()
		}
		return nil
	})
	require.NoError(t, h.ResetBus(context.Background()))

	buf := make([]byte, 8)
	setup := hal.SetupPacket{RequestType: 0x80, Request: 0x06, Value: 0x0100, Length: 8}
	n, err := h.ControlTransfer(context.Background(), 0, &setup, buf)
	require.NoError(t, err)
	assert.Equal(t, 3, n)
	assert.Equal(t, []byte{1, 2, 3}, buf[:n])
	assert.False(t, s.Pending())
}

func TestDeviceErrorsCollected(t *testing.T) {
	boom := errors.New("boom")
	h, _, _ := newIdleHAL(t, func() error { return boom })

	require.NoError(t, h.ResetBus(context.Background()))
	assert.Equal(t, []error{boom}, h.DeviceErrors())
	assert.Empty(t, h.DeviceErrors())
}
