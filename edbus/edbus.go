// Package edbus drives the row bus of a controllerless ED060-class e-paper
// panel, such as the GDE060BA, through GPIO pins.
//
// The panel exposes its source drivers as an 8-bit data bus clocked by CL,
// framed by SPH and latched by LE, and its gate drivers as a shift register
// started by SPV and stepped by CKV. Three supply enables bring up the
// logic supply (SMPS), the negative rails (VNEG) and the positive rails
// (VPOS), in that order.
//
// Bus implements gde060ba.Transport.
package edbus

import (
	"errors"
	"fmt"
	"time"

	"periph.io/x/conn/v3/gpio"
)

// Pins is the set of GPIO lines wired to the panel.
type Pins struct {
	CL    gpio.PinOut // Source clock
	LE    gpio.PinOut // Source latch enable
	OE    gpio.PinOut // Source output enable
	SPH   gpio.PinOut // Source start pulse
	GMODE gpio.PinOut // Gate output mode
	SPV   gpio.PinOut // Gate start pulse
	CKV   gpio.PinOut // Gate clock

	D [8]gpio.PinOut // Data bus, D[0] is the least significant bit

	SMPS gpio.PinOut // Logic supply enable
	VNEG gpio.PinOut // Negative rails enable
	VPOS gpio.PinOut // Positive rails enable
}

// Bus is a GPIO row bus.
type Bus struct {
	p          Pins
	powerDelay time.Duration
	powered    bool
}

// New returns a Bus on pins. All pins must be set.
func New(pins Pins, powerDelay time.Duration) (*Bus, error) {
	for name, p := range pins.named() {
		if p == nil {
			return nil, fmt.Errorf("edbus: pin %s not set", name)
		}
	}
	b := &Bus{p: pins, powerDelay: powerDelay}
	eh := errorHandler{}
	b.idle(&eh)
	eh.out(b.p.SMPS, gpio.Low)
	eh.out(b.p.VNEG, gpio.Low)
	eh.out(b.p.VPOS, gpio.Low)
	if eh.err != nil {
		return nil, fmt.Errorf("edbus: %w", eh.err)
	}
	return b, nil
}

// named returns the pins by signal name.
func (p *Pins) named() map[string]gpio.PinOut {
	m := map[string]gpio.PinOut{
		"CL": p.CL, "LE": p.LE, "OE": p.OE, "SPH": p.SPH,
		"GMODE": p.GMODE, "SPV": p.SPV, "CKV": p.CKV,
		"SMPS": p.SMPS, "VNEG": p.VNEG, "VPOS": p.VPOS,
	}
	for i, d := range p.D {
		m[fmt.Sprintf("D%d", i)] = d
	}
	return m
}

// idle drives all control and data lines to their resting level.
func (b *Bus) idle(eh *errorHandler) {
	eh.out(b.p.CL, gpio.Low)
	eh.out(b.p.LE, gpio.Low)
	eh.out(b.p.OE, gpio.Low)
	eh.out(b.p.SPH, gpio.High)
	eh.out(b.p.GMODE, gpio.Low)
	eh.out(b.p.SPV, gpio.High)
	eh.out(b.p.CKV, gpio.Low)
	for _, d := range b.p.D {
		eh.out(d, gpio.Low)
	}
}

// PowerOn brings the supplies up in order, waiting powerDelay after each.
func (b *Bus) PowerOn() error {
	if b.powered {
		return errors.New("edbus: already powered on")
	}
	eh := errorHandler{}
	for _, p := range []gpio.PinOut{b.p.SMPS, b.p.VNEG, b.p.VPOS} {
		eh.out(p, gpio.High)
		if eh.err == nil {
			time.Sleep(b.powerDelay)
		}
	}
	eh.out(b.p.GMODE, gpio.High)
	if eh.err != nil {
		return fmt.Errorf("edbus: power on: %w", eh.err)
	}
	b.powered = true
	return nil
}

// PowerOff takes the supplies down in reverse order and idles the bus.
func (b *Bus) PowerOff() error {
	if !b.powered {
		return errors.New("edbus: not powered on")
	}
	b.powered = false
	eh := errorHandler{}
	b.idle(&eh)
	for _, p := range []gpio.PinOut{b.p.VPOS, b.p.VNEG, b.p.SMPS} {
		eh.out(p, gpio.Low)
		if eh.err == nil {
			time.Sleep(b.powerDelay)
		}
	}
	if eh.err != nil {
		return fmt.Errorf("edbus: power off: %w", eh.err)
	}
	return nil
}

// StartScan loads the gate shift register so that the next row lands on the
// first gate line.
func (b *Bus) StartScan() error {
	if !b.powered {
		return errors.New("edbus: scan started while powered off")
	}
	eh := errorHandler{}
	eh.out(b.p.GMODE, gpio.High)
	eh.pulse(b.p.CKV)
	eh.out(b.p.SPV, gpio.Low)
	eh.pulse(b.p.CKV)
	eh.out(b.p.SPV, gpio.High)
	eh.pulse(b.p.CKV)
	if eh.err != nil {
		return fmt.Errorf("edbus: start scan: %w", eh.err)
	}
	return nil
}

// SendRow clocks width/4 bytes of row into the source drivers, latches them
// and steps the gate driver, which outputs the previously latched row.
func (b *Bus) SendRow(row []byte, width int) error {
	if !b.powered {
		return errors.New("edbus: row sent while powered off")
	}
	n := width / 4
	if len(row) < n {
		return fmt.Errorf("edbus: row of %d bytes for %d pixels", len(row), width)
	}
	eh := errorHandler{}
	eh.out(b.p.SPH, gpio.Low)
	for _, v := range row[:n] {
		b.data(&eh, v)
		eh.pulse(b.p.CL)
	}
	eh.out(b.p.SPH, gpio.High)
	eh.pulse(b.p.CL)
	eh.pulse(b.p.LE)

	eh.out(b.p.CKV, gpio.Low)
	eh.out(b.p.OE, gpio.High)
	eh.out(b.p.CKV, gpio.High)
	eh.out(b.p.OE, gpio.Low)
	if eh.err != nil {
		return fmt.Errorf("edbus: send row: %w", eh.err)
	}
	return nil
}

// data puts v on the data bus.
func (b *Bus) data(eh *errorHandler, v byte) {
	for i, d := range b.p.D {
		eh.out(d, gpio.Level(v&(1<<i) != 0))
	}
}

// Halt implements conn.Resource. It powers the panel off if needed.
func (b *Bus) Halt() error {
	if !b.powered {
		return nil
	}
	return b.PowerOff()
}

func (b *Bus) String() string {
	return fmt.Sprintf("edbus.Bus{CL: %s, CKV: %s}", b.p.CL, b.p.CKV)
}

// errorHandler is a wrapper for error management.
type errorHandler struct {
	err error
}

func (eh *errorHandler) out(p gpio.PinOut, l gpio.Level) {
	if eh.err != nil {
		return
	}
	eh.err = p.Out(l)
}

func (eh *errorHandler) pulse(p gpio.PinOut) {
	eh.out(p, gpio.High)
	eh.out(p, gpio.Low)
}
