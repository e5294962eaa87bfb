package host

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ardnew/pmausb/device"
	"github.com/ardnew/pmausb/device/hal/stm32"
	"github.com/ardnew/pmausb/host/hal"
	"github.com/ardnew/pmausb/host/hal/sim"
	"github.com/ardnew/pmausb/pkg"
)

// bus is a simulated peripheral running the engine, with a host attached.
type bus struct {
	sim    *stm32.Simulator
	engine *device.Engine
	hal    *sim.HAL
}

func newBus(t *testing.T, layout stm32.Layout, opts ...device.Option) *bus {
	t.Helper()
	s, err := stm32.NewSimulator(layout, nil)
	require.NoError(t, err)
	platform := stm32.NewPlatform(s.Memory(), s.Registers(), nil)
	desc := device.DefaultDeviceDescriptor
	eng := device.NewEngine(platform, &desc, opts...)
	return &bus{sim: s, engine: eng, hal: sim.New(s, eng.LowPriorityInterrupt, nil)}
}

// mockHAL fails every operation with err.
type mockHAL struct {
	err   error
	calls int
}

func (m *mockHAL) ResetBus(context.Context) error {
	m.calls++
	return m.err
}

func (m *mockHAL) ControlTransfer(context.Context, hal.DeviceAddress, *hal.SetupPacket, []byte) (int, error) {
	m.calls++
	return 0, m.err
}

func TestEnumerate(t *testing.T) {
	for _, layout := range []stm32.Layout{stm32.LayoutGapped, stm32.LayoutWide} {
		t.Run(layout.String(), func(t *testing.T) {
			b := newBus(t, layout)
			var steps []Step
			h := New(b.hal, WithObserver(func(s Step) { steps = append(steps, s) }))

			dev, err := h.Enumerate(context.Background())
			require.NoError(t, err)

			assert.Equal(t, uint8(DefaultAddress), dev.Address())
			assert.Equal(t, device.DefaultDeviceDescriptor, dev.Descriptor())
			assert.Zero(t, dev.Status())
			assert.Equal(t, uint8(1), dev.Configuration())

			addr, enabled := b.sim.Address()
			assert.Equal(t, uint8(DefaultAddress), addr)
			assert.True(t, enabled)
			_, pending := b.engine.PendingAddress()
			assert.False(t, pending)
			assert.Empty(t, b.hal.DeviceErrors())

			names := make([]string, len(steps))
			for i, s := range steps {
				names[i] = s.Name
				assert.NoError(t, s.Err, s.Name)
			}
			assert.Equal(t, []string{
				"get-descriptor(8)",
				"set-address",
				"get-descriptor(18)",
				"get-status",
				"set-configuration",
				"get-configuration",
			}, names)

			var full [device.DeviceDescriptorSize]byte
			device.DefaultDeviceDescriptor.MarshalTo(full[:])
			assert.Equal(t, full[:8], steps[0].Data)
			assert.Zero(t, steps[1].Address, "SET_ADDRESS is sent to the default address")
			assert.Equal(t, full[:], steps[2].Data)
		})
	}
}

func TestEnumerateWithAddress(t *testing.T) {
	b := newBus(t, stm32.LayoutGapped)
	dev, err := New(b.hal, WithAddress(42)).Enumerate(context.Background())
	require.NoError(t, err)
	assert.Equal(t, uint8(42), dev.Address())

	addr, _ := b.sim.Address()
	assert.Equal(t, uint8(42), addr)
}

func TestWithAddressIgnoresInvalid(t *testing.T) {
	assert.Equal(t, uint8(DefaultAddress), New(nil, WithAddress(0)).address)
	assert.Equal(t, uint8(DefaultAddress), New(nil, WithAddress(200)).address)
}

func TestEnumerateTwice(t *testing.T) {
	b := newBus(t, stm32.LayoutWide)
	h := New(b.hal, WithAddress(3))

	_, err := h.Enumerate(context.Background())
	require.NoError(t, err)

	// The reset returns the device to address 0, unconfigured.
	dev, err := h.Enumerate(context.Background())
	require.NoError(t, err)
	assert.Equal(t, uint8(1), dev.Configuration())
}

func TestEnumeratePlaceholderDescriptorFails(t *testing.T) {
	b := newBus(t, stm32.LayoutGapped, device.WithDescriptorMode(device.DescriptorModePlaceholder))

	_, err := New(b.hal).Enumerate(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, pkg.ErrEnumerationFailed)
	assert.ErrorIs(t, err, pkg.ErrShortResponse)
}

func TestEnumerateResetFailure(t *testing.T) {
	boom := errors.New("boom")
	m := &mockHAL{err: boom}

	_, err := New(m).Enumerate(context.Background())
	assert.ErrorIs(t, err, pkg.ErrEnumerationFailed)
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 1, m.calls)
}

func TestEnumerateCanceled(t *testing.T) {
	b := newBus(t, stm32.LayoutGapped)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := New(b.hal).Enumerate(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestSetAddressDeferredUntilStatus(t *testing.T) {
	b := newBus(t, stm32.LayoutGapped)
	require.NoError(t, b.hal.ResetBus(context.Background()))

	setup := hal.SetupPacket{
		RequestType: device.RequestTypeDeviceOut,
		Request:     uint8(device.RequestSetAddress),
		Value:       5,
	}
	require.NoError(t, b.sim.Setup(0, setup.Bytes()))
	require.NoError(t, b.engine.LowPriorityInterrupt())

	addr, _ := b.sim.Address()
	assert.Zero(t, addr, "address must not change before the status stage")
	pendingAddr, pending := b.engine.PendingAddress()
	assert.True(t, pending)
	assert.Equal(t, uint8(5), pendingAddr)

	_, err := b.sim.In(5)
	assert.ErrorIs(t, err, pkg.ErrNoResponse, "status stage still runs at the old address")

	zlp, err := b.sim.In(0)
	require.NoError(t, err)
	assert.Empty(t, zlp)
	require.NoError(t, b.engine.LowPriorityInterrupt())

	addr, _ = b.sim.Address()
	assert.Equal(t, uint8(5), addr)
	_, pending = b.engine.PendingAddress()
	assert.False(t, pending)
}

func TestUnsupportedRequestStallsAndRecovers(t *testing.T) {
	b := newBus(t, stm32.LayoutGapped)
	dev, err := New(b.hal).Enumerate(context.Background())
	require.NoError(t, err)

	buf := make([]byte, 2)
	setup := hal.SetupPacket{
		RequestType: 0x82,
		Request:     uint8(device.RequestSynchFrame),
		Length:      2,
	}
	_, err = dev.ControlTransfer(context.Background(), &setup, buf)
	assert.ErrorIs(t, err, pkg.ErrStall)

	devErrs := b.hal.DeviceErrors()
	require.Len(t, devErrs, 1)
	var unsupported *pkg.UnsupportedRequestError
	require.ErrorAs(t, devErrs[0], &unsupported)
	assert.Equal(t, uint8(0x82), unsupported.RequestType)
	assert.Equal(t, uint8(0x0C), unsupported.Request)

	status, err := dev.GetStatus(context.Background())
	require.NoError(t, err)
	assert.Zero(t, status)
}

func TestInterfaceAndFeatureRequests(t *testing.T) {
	b := newBus(t, stm32.LayoutWide)
	dev, err := New(b.hal).Enumerate(context.Background())
	require.NoError(t, err)
	ctx := context.Background()

	status, err := dev.GetInterfaceStatus(ctx, 0)
	require.NoError(t, err)
	assert.Zero(t, status)

	alt, err := dev.GetInterface(ctx, 0)
	require.NoError(t, err)
	assert.Zero(t, alt)

	assert.NoError(t, dev.SetInterface(ctx, 0, 0))
	assert.NoError(t, dev.SetFeature(ctx, 1))
	assert.NoError(t, dev.ClearFeature(ctx, 1))

	n, err := dev.GetDescriptor(ctx, device.DescriptorTypeConfiguration, 0, make([]byte, 9))
	require.NoError(t, err)
	assert.Equal(t, 9, n, "every descriptor request is answered with the device descriptor")

	assert.NoError(t, dev.SetConfiguration(ctx, 0))
	config, err := dev.GetConfiguration(ctx)
	require.NoError(t, err)
	assert.Zero(t, config)
	assert.Empty(t, b.hal.DeviceErrors())
}
