// Output gating policy
//
// Copyright (c) WithSecure Corporation
// https://foundry.withsecure.com
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

// Package gating implements the zero-run silence detector that parks the
// PWM output in its non-radiating state during prolonged silence, and
// re-arms it on the first non-silent sample.
package gating

import "math"

// NoSignalSamples is the number of consecutive zero samples after which the
// output is disabled, nominally 500 ms at 40 kHz.
const NoSignalSamples = 20000

// Driver is the minimal PWM surface the gating policy needs to actuate.
type Driver interface {
	SetEnabled(enabled bool)
}

// Policy holds the zero-run counter for one PWM driver. It is not
// safe for concurrent use; it is owned exclusively by the sample pump.
type Policy struct {
	pwm     Driver
	zeroRun uint64
}

// New returns a Policy initialised in the muted power-up state: the
// counter starts above NoSignalSamples, so the first silent sample
// disables the output and only a non-zero sample enables it. New itself
// does not call SetEnabled.
func New(pwm Driver) *Policy {
	return &Policy{
		pwm:     pwm,
		zeroRun: NoSignalSamples + 1,
	}
}

// Update feeds one dequeued sample through the gating policy, enabling or
// disabling the PWM output as needed. Cheap enough, and called often
// enough, that redundant SetEnabled calls at an already-correct state are
// an accepted cost: they guarantee the output is never left mismatched if
// its enable state is perturbed by anything else.
func (g *Policy) Update(sample int16) {
	if sample == 0 {
		if g.zeroRun < math.MaxUint64 {
			g.zeroRun++
		}

		if g.zeroRun > NoSignalSamples {
			g.pwm.SetEnabled(false)
		}

		return
	}

	g.pwm.SetEnabled(true)
	g.zeroRun = 0
}

// ZeroRun returns the current zero-run counter, exposed for testing.
func (g *Policy) ZeroRun() uint64 {
	return g.zeroRun
}
