package pump

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"pgregory.net/rapid"

	"github.com/usbarmory/tamago/ring"
)

type fakePWM struct {
	duty       uint16
	maxDuty    uint16
	enabled    bool
	cleared    int
}

func (p *fakePWM) SetEnabled(enabled bool)    { p.enabled = enabled }
func (p *fakePWM) SetDuty(duty uint16)        { p.duty = duty }
func (p *fakePWM) MaxDuty() uint16            { return p.maxDuty }
func (p *fakePWM) ClearPeriodFlag()           { p.cleared++ }

func newFixture() (*Pump, *ring.Producer, *fakePWM) {
	r := &ring.Ring{}
	prod, cons := ring.Split(r)
	pwm := &fakePWM{maxDuty: 1000}

	return New(cons, pwm), prod, pwm
}

func TestTickClearsPeriodFlagEveryCall(t *testing.T) {
	p, _, pwm := newFixture()

	p.Tick()
	p.Tick()

	assert.Equal(t, 2, pwm.cleared)
}

func TestDutyMonotonic(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		p, prod, pwm := newFixture()

		a := rapid.Int16().Draw(t, "a")
		b := rapid.Int16Range(a, 32767).Draw(t, "b")

		prod.Enqueue(a)
		p.Tick()
		da := pwm.duty

		prod.Enqueue(b)
		p.Tick()
		db := pwm.duty

		assert.LessOrEqual(t, da, db, "duty must not decrease as the sample value increases")
	})
}

func TestDutyBounds(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		p, prod, pwm := newFixture()

		s := rapid.Int16().Draw(t, "s")

		prod.Enqueue(s)
		p.Tick()

		assert.GreaterOrEqual(t, pwm.duty, uint16(0))
		assert.LessOrEqual(t, pwm.duty, pwm.maxDuty)
	})
}

func TestMidscaleZeroSample(t *testing.T) {
	p, prod, pwm := newFixture()

	prod.Enqueue(0)
	p.Tick()

	assert.Equal(t, pwm.maxDuty/2, pwm.duty)
}

func TestUnderrunSynthesizesMutedMidscale(t *testing.T) {
	p, _, pwm := newFixture()

	// empty ring: every Tick underruns and synthesizes zero
	p.Tick()
	assert.Equal(t, pwm.maxDuty/2, pwm.duty)
	assert.False(t, pwm.enabled, "a synthesized zero sample must gate the output off eventually, never on")
}

func TestGatingDisablesAfterSilenceRun(t *testing.T) {
	p, prod, pwm := newFixture()

	prod.Enqueue(1)
	p.Tick()
	assert.True(t, pwm.enabled)

	for i := 0; i < 20001; i++ {
		prod.Enqueue(0)
		p.Tick()
	}

	assert.False(t, pwm.enabled)
}
