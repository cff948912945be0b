// NXP FlexPWM complementary-pair PWM engine
// https://github.com/usbarmory/tamago
//
// Copyright (c) WithSecure Corporation
// https://foundry.withsecure.com
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

package flexpwm

import (
	"github.com/usbarmory/tamago/internal/reg"
)

// Engine drives two FlexPWM submodules as the complementary C1/C2 output
// pair feeding an H-bridge transducer array. C1's primary output is
// active-high, C2's is active-low; both receive the same duty value every
// period. Output gating is implemented by flipping each submodule's
// complementary-output polarity rather than stopping the counter, so the
// compare-match interrupt cadence (and therefore the sample clock) is
// never disturbed.
type Engine struct {
	C1 *PWM
	C2 *PWM
}

// NewEngine constructs a PWM engine from the two submodules driving C1 and
// C2. Both must already reference the same PWM instance base/clock gate.
func NewEngine(c1, c2 *PWM) *Engine {
	return &Engine{C1: c1, C2: c2}
}

// Init brings up both submodules at the given carrier frequency, sets C1
// primary polarity active-high and C2 active-low, enables both channel
// outputs including their complementary pair, sets both duties to
// MaxDuty()/2, and leaves the output gated disabled (matching the muted
// power-up state required at the foreground handoff).
func (e *Engine) Init(freq uint32) {
	e.C1.Init(freq)
	e.C2.Init(freq)

	// primary polarity: C1 active-high (default, no inversion), C2
	// active-low
	reg.Clear16(e.C1.Base+PWMx_SMOCTRL, OCTRL_POLA)
	reg.Set16(e.C2.Base+PWMx_SMOCTRL, OCTRL_POLA)

	e.SetEnabled(false)
	e.SetDuty(e.MaxDuty() / 2)

	e.C1.Load()
	e.C2.Load()
	e.C1.Run(true)
	e.C2.Run(true)
}

// MaxDuty returns the duty resolution, the submodule period plus one.
func (e *Engine) MaxDuty() uint16 {
	return e.C1.Period() + 1
}

// SetDuty writes the same duty value to both C1 and C2, clamped by the
// underlying submodule to [0, MaxDuty()-1], its period.
func (e *Engine) SetDuty(duty uint16) {
	e.C1.SetDutyCycle(duty)
	e.C2.SetDutyCycle(duty)
	e.C1.Load()
	e.C2.Load()
}

// SetEnabled gates the bridge output by reprogramming the complementary
// output polarity of both channels: when enabled, C1's complementary
// output is the inverse of C1's primary and C2's complementary output is
// the inverse of C2's primary, so the bridge swings across the load. When
// disabled, each channel's primary and complementary outputs are made
// identical, holding both bridge sides at the same level and the load at
// 0V.
func (e *Engine) SetEnabled(enabled bool) {
	if enabled {
		reg.Set16(e.C1.Base+PWMx_SMOCTRL, OCTRL_POLB)
		reg.Clear16(e.C2.Base+PWMx_SMOCTRL, OCTRL_POLB)
	} else {
		reg.Clear16(e.C1.Base+PWMx_SMOCTRL, OCTRL_POLB)
		reg.Set16(e.C2.Base+PWMx_SMOCTRL, OCTRL_POLB)
	}

	e.C1.Load()
	e.C2.Load()
}

// ClearPeriodFlag clears C1's compare-match flag, acknowledging the
// interrupt that invoked the sample pump.
func (e *Engine) ClearPeriodFlag() {
	reg.Clear16(e.C1.Base+PWMx_SMSTS, STS_CMPF)
}

// ListenPeriod enables the compare-match interrupt on C1, the one-shot
// call made once at startup before interrupts are unmasked.
func (e *Engine) ListenPeriod() {
	reg.Set16(e.C1.Base+PWMx_SMINTEN, INTEN_CMPIE)
}
