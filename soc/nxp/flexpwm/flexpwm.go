// NXP FlexPWM driver
// https://github.com/usbarmory/tamago
//
// Copyright (c) WithSecure Corporation
// https://foundry.withsecure.com
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

// Package flexpwm implements a driver for the NXP FlexPWM pulse-width
// modulation engine, adopting the following reference specification:
//   - IMXRT1060RM - i.MX RT1060 Processor Reference Manual - Rev 3 2021/01
//
// FlexPWM submodules generate a complementary pair of PWM outputs (A/B) from
// a single duty cycle value, with independent output polarity inversion per
// channel. A PWM value drives one submodule; Engine composes two submodules
// of the same PWM instance into the C1/C2 pair feeding an H-bridge
// transducer array.
//
// This package is only meant to be used with `GOOS=tamago GOARCH=arm` as
// supported by the TamaGo framework for bare metal Go on ARM SoCs, see
// https://github.com/usbarmory/tamago.
package flexpwm

import (
	"sync"

	"github.com/usbarmory/tamago/internal/reg"
)

// FlexPWM submodule registers, 32-bit access should be avoided as all
// registers are 16-bit.
const (
	PWMx_SMCNT  = 0x00
	PWMx_SMINIT = 0x02
	PWMx_SMCTRL2 = 0x04
	CTRL2_CLK_SEL = 4
	CTRL2_INIT_SEL = 0

	PWMx_SMCTRL = 0x06
	CTRL_LDMOD = 11
	CTRL_FULL  = 2

	PWMx_SMVAL0 = 0x0c
	PWMx_SMVAL1 = 0x0e
	PWMx_SMVAL2 = 0x10
	PWMx_SMVAL3 = 0x12
	PWMx_SMVAL4 = 0x14
	PWMx_SMVAL5 = 0x16

	PWMx_SMOCTRL = 0x18
	OCTRL_POLB   = 1
	OCTRL_POLA   = 0

	PWMx_MCTRL = 0x80
	MCTRL_RUN  = 0
	MCTRL_LDOK = 4

	PWMx_OUTEN = 0x86
	OUTEN_PWMB_EN = 4
	OUTEN_PWMA_EN = 0

	PWMx_SMSTS   = 0x1a
	STS_CMPF     = 8

	PWMx_SMINTEN = 0x1c
	INTEN_CMPIE  = 8
)

// Channel identifiers for a submodule's complementary output pair.
const (
	ChannelA = 0
	ChannelB = 1
)

// PWM represents a FlexPWM submodule instance driving one complementary
// output pair.
type PWM struct {
	sync.Mutex

	// Submodule index
	Index int
	// Base register (submodule register bank base)
	Base uint32
	// Instance is the PWM instance shared register bank base (MCTRL,
	// OUTEN), common to all submodules of the same FlexPWM instance.
	Instance uint32
	// Clock gate register
	CCGR uint32
	// Clock gate
	CG int
	// ClockSrc returns the frequency, in Hz, of the clock feeding this
	// submodule's counter.
	ClockSrc func() uint32

	// period value latched at Init, computed to yield the carrier
	// frequency passed to Init
	period uint16
}

// Init initializes a FlexPWM submodule for edge-aligned complementary pair
// generation at the given carrier frequency, with the submodule counter
// clocked directly from ClockSrc() (prescaler divide-by-1).
func (hw *PWM) Init(freq uint32) {
	hw.Lock()
	defer hw.Unlock()

	if hw.Base == 0 || hw.Instance == 0 || hw.CCGR == 0 {
		panic("invalid PWM module instance")
	}

	// enable clock
	reg.SetN(hw.CCGR, hw.CG, 0b11, 0b11)

	clk := hw.ClockSrc()
	hw.period = uint16(clk/freq) - 1

	// counter initial value
	reg.Write16(hw.Base+PWMx_SMINIT, 0)

	// counter final value (sets the carrier period)
	reg.Write16(hw.Base+PWMx_SMVAL1, hw.period)

	// complementary pair: channel A asserts from VAL2 to VAL3, channel B
	// mirrors it inverted, duty updates (SetDutyCycle) write VAL2
	reg.Write16(hw.Base+PWMx_SMVAL0, 0)
	reg.Write16(hw.Base+PWMx_SMVAL2, 0)
	reg.Write16(hw.Base+PWMx_SMVAL3, hw.period)

	// full reload on every PWM period
	reg.Clear16(hw.Base+PWMx_SMCTRL, CTRL_LDMOD)
	reg.Set16(hw.Base+PWMx_SMCTRL, CTRL_FULL)

	// enable both channel outputs
	reg.Set16(hw.Instance+PWMx_OUTEN, OUTEN_PWMA_EN+hw.Index)
	reg.Set16(hw.Instance+PWMx_OUTEN, OUTEN_PWMB_EN+hw.Index)
}

// SetDutyCycle updates the duty cycle register for the complementary pair.
// duty is expressed in submodule counter ticks, in the range [0, period];
// larger values are clamped to period.
// The new value takes effect at the next PWM period boundary once latched
// with Load.
func (hw *PWM) SetDutyCycle(duty uint16) {
	if duty > hw.period {
		duty = hw.period
	}

	reg.Write16(hw.Base+PWMx_SMVAL2, duty)
}

// Period returns the submodule counter final value corresponding to one
// full PWM carrier period.
func (hw *PWM) Period() uint16 {
	return hw.period
}

// SetPolarity inverts (true) or restores (false) the output polarity of an
// individual channel of the complementary pair.
func (hw *PWM) SetPolarity(channel int, invert bool) {
	var pos int

	switch channel {
	case ChannelA:
		pos = OCTRL_POLA
	case ChannelB:
		pos = OCTRL_POLB
	default:
		return
	}

	reg.SetTo16(hw.Base+PWMx_SMOCTRL, pos, invert)
}

// Load latches the pending register writes (duty cycle, polarity) so they
// take effect at the next PWM period boundary.
func (hw *PWM) Load() {
	reg.Set16(hw.Instance+PWMx_MCTRL, MCTRL_LDOK+hw.Index)
}

// Run starts (true) or stops (false) the submodule counter.
func (hw *PWM) Run(enable bool) {
	reg.SetTo16(hw.Instance+PWMx_MCTRL, MCTRL_RUN+hw.Index, enable)
}
