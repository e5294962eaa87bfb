package stm32

import (
	"log/slog"

	"github.com/ardnew/pmausb/pkg"
)

// Written patterns keep EA and EP_TYPE by writing them back, select the
// STAT bits to flip by XOR against the target, leave DTOG untouched by
// writing 0 and clear both CTR flags by writing 0.
const (
	keepStatTx   = epTYPE | epEA | epSTATTX
	keepStatBoth = epTYPE | epEA | epSTATTX | epSTATRX
	keepConfig   = epToggle
)

// StallTxValidateRxPattern returns the word that moves an endpoint holding
// current to TX=STALL, RX=VALID and clears EP_KIND.
func StallTxValidateRxPattern(current uint16) uint16 {
	return current&keepStatBoth ^ (statTx(StatusStall) | statRx(StatusValid))
}

// ValidateTxSignalOutPattern returns the word that moves an endpoint holding
// current to TX=VALID with STATUS_OUT set, RX unchanged.
func ValidateTxSignalOutPattern(current uint16) uint16 {
	return current&keepStatTx ^ statTx(StatusValid) | epKIND
}

// ValidateBothSignalOutPattern returns the word that moves an endpoint
// holding current to TX=VALID, RX=VALID with STATUS_OUT set.
func ValidateBothSignalOutPattern(current uint16) uint16 {
	return current&keepStatBoth ^ (statTx(StatusValid) | statRx(StatusValid)) | epKIND
}

// ConfigurePattern returns the word that reprograms an endpoint holding
// current to the given type, address and status pair with both data
// toggles reset to DATA0.
func ConfigurePattern(current uint16, typ uint16, address uint8, tx, rx EndpointStatus) uint16 {
	return current&keepConfig ^ (statTx(tx) | statRx(rx)) | typ&epTYPE | uint16(address)&epEA
}

// EndpointRegister exposes the named operations on one toggle-on-write
// endpoint register.
type EndpointRegister struct {
	reg Register
	num int
	log *slog.Logger
}

// NewEndpointRegister wraps reg, the register of endpoint num.
func NewEndpointRegister(reg Register, num int, logger *slog.Logger) EndpointRegister {
	return EndpointRegister{
		reg: reg,
		num: num,
		log: pkg.ComponentLogger(logger, pkg.ComponentEndpoint),
	}
}

// Value returns the raw register value.
func (e EndpointRegister) Value() uint16 {
	return e.reg.Get()
}

// StallTxValidateRx rejects further IN data and accepts OUT/SETUP.
func (e EndpointRegister) StallTxValidateRx() {
	e.apply("stall-tx-validate-rx", StallTxValidateRxPattern)
}

// ValidateTxSignalOut arms the transmitter and expects an OUT status.
func (e EndpointRegister) ValidateTxSignalOut() {
	e.apply("validate-tx-signal-out", ValidateTxSignalOutPattern)
}

// ValidateBothSignalOut re-arms both directions and expects an OUT status.
func (e EndpointRegister) ValidateBothSignalOut() {
	e.apply("validate-both-signal-out", ValidateBothSignalOutPattern)
}

// Configure sets type, address and status, resetting the data toggles.
func (e EndpointRegister) Configure(typ uint16, address uint8, tx, rx EndpointStatus) {
	e.apply("configure", func(current uint16) uint16 {
		return ConfigurePattern(current, typ, address, tx, rx)
	})
}

func (e EndpointRegister) apply(op string, pattern func(uint16) uint16) {
	current := e.reg.Get()
	written := pattern(current)
	e.reg.Set(written)
	e.log.Debug(op, "endpoint", e.num, "read", hex16(current), "wrote", hex16(written))
}
