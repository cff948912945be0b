// Sample pump
//
// Copyright (c) WithSecure Corporation
// https://foundry.withsecure.com
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

// Package pump implements the timer compare-match handler that drains one
// sample per PWM period from the sample ring, rescales it into a duty
// value, and drives the gating policy and PWM engine.
package pump

import (
	"log"

	"github.com/usbarmory/tamago/gating"
	"github.com/usbarmory/tamago/ring"
)

// Amplify narrows the input range before mapping it to duty, expanding
// clipping headroom when non-zero. Left at 0: the source firmware this was
// ported from documents the parameter but never enables it, and a non-zero
// value requires the caller to add saturation to the duty computation (see
// scaleDuty) to keep the result inside [0, maxDuty]. Intent of a non-zero
// value was never demonstrated, so none is added here.
const Amplify = 0

// PWM is the driver surface the sample pump needs to actuate. MaxDuty is
// the duty resolution negotiated at startup (timer auto-reload value + 1).
type PWM interface {
	gating.Driver
	SetDuty(duty uint16)
	MaxDuty() uint16
	ClearPeriodFlag()
}

// Pump holds the per-ISR private state of the sample pump: the ring
// consumer, the PWM engine, and the gating policy. A Pump is constructed
// once at startup and handed exclusively to the timer interrupt context;
// after that no other context may touch it.
type Pump struct {
	cons *ring.Consumer
	pwm  PWM
	gate *gating.Policy

	lastUnderruns uint64
}

// New constructs a Pump over the given ring consumer and PWM engine.
func New(cons *ring.Consumer, pwm PWM) *Pump {
	return &Pump{
		cons: cons,
		pwm:  pwm,
		gate: gating.New(pwm),
	}
}

// Tick runs one sample-pump cycle: clear the period flag, dequeue a
// sample, update gating, compute duty, and write it to both PWM channels.
// Must complete within one PWM period (25 µs at 40 kHz); it performs no
// allocation and no blocking call, and the only logging is the
// non-blocking underrun notice.
func (p *Pump) Tick() {
	p.pwm.ClearPeriodFlag()

	v := p.cons.Dequeue()

	if p.cons.Underruns != p.lastUnderruns {
		p.lastUnderruns = p.cons.Underruns
		log.Print("pump: underrun")
	}

	p.gate.Update(v)

	duty := scaleDuty(v, p.pwm.MaxDuty())
	p.pwm.SetDuty(duty)
}

// scaleDuty linearly rescales a full-range i16 sample onto [0, maxDuty].
// All arithmetic is carried in a signed 32-bit type to avoid overflow; the
// result is narrowed to the duty register width only at the end. A zero
// sample maps to maxDuty/2 when Amplify is 0, the bridge-balanced state.
func scaleDuty(sample int16, maxDuty uint16) uint16 {
	const amplify = Amplify

	min := int32(-32768) + amplify
	max := int32(32767) - amplify

	duty := (int32(maxDuty) * (int32(sample) - min)) / (max - min)

	return uint16(duty)
}
