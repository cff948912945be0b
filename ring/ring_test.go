package ring

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"pgregory.net/rapid"
)

func TestSplitIndependentHandles(t *testing.T) {
	r := &Ring{}
	prod, cons := Split(r)

	assert.True(t, prod.Enqueue(1))
	assert.Equal(t, int16(1), cons.Dequeue())
}

func TestFIFOOrder(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		samples := rapid.SliceOfN(rapid.Int16(), 0, Capacity-1).Draw(t, "samples")

		r := &Ring{}
		prod, cons := Split(r)

		for _, s := range samples {
			assert.True(t, prod.Enqueue(s))
		}

		for _, want := range samples {
			assert.Equal(t, want, cons.Dequeue())
		}

		assert.Zero(t, prod.Overruns)
		assert.Zero(t, cons.Underruns)
	})
}

func TestCapacityBound(t *testing.T) {
	r := &Ring{}
	prod, _ := Split(r)

	for i := 0; i < Capacity-1; i++ {
		assert.True(t, prod.Enqueue(int16(i)), "enqueue %d should fit within capacity", i)
	}

	assert.False(t, prod.Enqueue(0), "the ring holds at most Capacity-1 samples, one slot distinguishes full from empty")
	assert.Equal(t, uint64(1), prod.Overruns)
}

func TestOverrunDropsNewest(t *testing.T) {
	r := &Ring{}
	prod, cons := Split(r)

	for i := 0; i < Capacity-1; i++ {
		prod.Enqueue(int16(i))
	}

	assert.False(t, prod.Enqueue(9999))

	// the dropped sample never displaces what was already queued
	assert.Equal(t, int16(0), cons.Dequeue())
}

func TestUnderrunSynthesizesZero(t *testing.T) {
	r := &Ring{}
	_, cons := Split(r)

	assert.Equal(t, int16(0), cons.Dequeue())
	assert.Equal(t, uint64(1), cons.Underruns)
}

func TestLenTracksOccupancy(t *testing.T) {
	r := &Ring{}
	prod, cons := Split(r)

	assert.Equal(t, 0, r.Len())

	prod.Enqueue(1)
	prod.Enqueue(2)
	assert.Equal(t, 2, r.Len())

	cons.Dequeue()
	assert.Equal(t, 1, r.Len())
}
