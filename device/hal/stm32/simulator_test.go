package stm32

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ardnew/pmausb/pkg"
)

func TestSimulatorInvalidLayout(t *testing.T) {
	_, err := NewSimulator(Layout(7), nil)
	assert.ErrorIs(t, err, pkg.ErrInvalidStorage)
}

func TestSimulatorNoResponseBeforeEnable(t *testing.T) {
	sim, err := NewSimulator(LayoutGapped, nil)
	require.NoError(t, err)

	assert.ErrorIs(t, sim.Setup(0, getDescriptor), pkg.ErrNoResponse)

	sim.BusReset()
	assert.True(t, sim.Pending())
	assert.ErrorIs(t, sim.Setup(0, getDescriptor), pkg.ErrNoResponse,
		"endpoint 0 is not a control endpoint until reinitialized")
}

func TestSimulatorAddressFilter(t *testing.T) {
	sim, p := newSimPlatform(t, LayoutGapped)
	resetPlatform(sim, p)
	p.SetAddress(9)

	assert.ErrorIs(t, sim.Setup(0, getDescriptor), pkg.ErrNoResponse)
	assert.NoError(t, sim.Setup(9, getDescriptor))
}

func TestSimulatorHandshakes(t *testing.T) {
	sim, p := newSimPlatform(t, LayoutGapped)
	resetPlatform(sim, p)

	_, err := sim.In(0)
	assert.ErrorIs(t, err, pkg.ErrNAK, "TX is NAK after reinitialization")

	p.TransmitAck()
	_, err = sim.In(0)
	assert.ErrorIs(t, err, pkg.ErrStall)

	require.NoError(t, sim.Setup(0, getDescriptor))
	assert.ErrorIs(t, sim.Setup(0, getDescriptor), pkg.ErrNAK, "unserviced reception")
}

func TestSimulatorStatusOutRejectsData(t *testing.T) {
	sim, p := newSimPlatform(t, LayoutGapped)
	resetPlatform(sim, p)
	require.NoError(t, sim.Setup(0, getDescriptor))
	p.RespondWithData()

	assert.ErrorIs(t, sim.Out(0, []byte{1}), pkg.ErrStall)
	assert.NoError(t, sim.Out(0, nil))
}

func TestSimulatorOutTooLarge(t *testing.T) {
	sim, p := newSimPlatform(t, LayoutGapped)
	resetPlatform(sim, p)

	err := sim.Out(0, make([]byte, 17))
	assert.ErrorIs(t, err, pkg.ErrNAK)
}

func TestSimulatorInterruptLowestEndpoint(t *testing.T) {
	sim, _ := newSimPlatform(t, LayoutGapped)
	sim.ep[3].value = epCTRTX
	sim.ep[2].value = epCTRRX

	istr := sim.Interrupts()
	assert.Equal(t, uint16(istrCTR|istrDIR|2), istr)
}

func TestSimulatorRaiseFlagsIgnoresDerivedBits(t *testing.T) {
	sim, _ := newSimPlatform(t, LayoutGapped)
	sim.RaiseFlags(istrCTR | istrDIR | istrSOF)

	assert.Equal(t, uint16(istrSOF), sim.Interrupts())
	assert.True(t, sim.Pending())
}

func TestRxCapacity(t *testing.T) {
	assert.Equal(t, 16, rxCapacity(0x2000))
	assert.Equal(t, 64, rxCapacity(0x8400))
	assert.Equal(t, 0, rxCapacity(0))
}
