// Sample ring buffer
//
// Copyright (c) WithSecure Corporation
// https://foundry.withsecure.com
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

// Package ring implements a fixed-capacity single-producer/single-consumer
// queue of 16-bit PCM samples, used to hand audio data from the USB
// interrupt context to the PWM sample pump without locks or allocation.
//
// The queue is portable Go (no tamago build constraints) so it can be
// exercised by host-side tests independently of the target hardware.
package ring

import "sync/atomic"

// Capacity is the size of the ring's backing array, sized for jitter
// tolerance between USB micro-frame delivery and the 40 kHz sample cadence
// (~102 ms at 40 kHz). One slot is kept free to tell a full ring from an
// empty one, so the ring holds at most Capacity-1 samples.
const Capacity = 4096

// Ring is a bounded SPSC queue of signed 16-bit PCM samples.
//
// Exactly one producer handle and one consumer handle must be taken from a
// Ring (see Split); after that, head is written only by the consumer and
// read only by the producer, and tail is written only by the producer and
// read only by the consumer. The atomic load/store pairs on head and tail
// establish the happens-before relationship needed for safe handoff across
// interrupt contexts without a mutex.
type Ring struct {
	buf  [Capacity]int16
	head uint32 // next slot to dequeue, owned by consumer
	tail uint32 // next slot to enqueue, owned by producer
}

// Producer is the enqueue-only handle to a Ring, held by the USB interrupt
// context.
type Producer struct {
	r *Ring

	// Overruns counts samples dropped because the ring was full.
	Overruns uint64
}

// Consumer is the dequeue-only handle to a Ring, held by the timer
// interrupt context.
type Consumer struct {
	r *Ring

	// Underruns counts dequeues that found the ring empty.
	Underruns uint64
}

// Split partitions a Ring into its producer and consumer handles. It must
// be called exactly once; the caller owns handing each half to its
// respective context.
func Split(r *Ring) (*Producer, *Consumer) {
	return &Producer{r: r}, &Consumer{r: r}
}

func (r *Ring) load(p *uint32) uint32 {
	return atomic.LoadUint32(p)
}

func (r *Ring) store(p *uint32, v uint32) {
	atomic.StoreUint32(p, v)
}

// Enqueue inserts a sample, returning false (overrun) if the ring is full.
// On overrun the newest sample is dropped; existing contents are left
// unchanged. Wait-free, allocation-free, safe to call from an interrupt
// context disjoint from the consumer.
func (p *Producer) Enqueue(s int16) bool {
	r := p.r

	tail := r.load(&r.tail)
	head := r.load(&r.head)

	next := (tail + 1) % Capacity
	if next == head {
		p.Overruns++
		return false
	}

	r.buf[tail] = s
	r.store(&r.tail, next)

	return true
}

// Dequeue removes the oldest sample, returning 0 (underrun) if the ring is
// empty. Wait-free, allocation-free, safe to call from an interrupt context
// disjoint from the producer.
func (c *Consumer) Dequeue() int16 {
	r := c.r

	head := r.load(&r.head)
	tail := r.load(&r.tail)

	if head == tail {
		c.Underruns++
		return 0
	}

	s := r.buf[head]
	r.store(&r.head, (head+1)%Capacity)

	return s
}

// Len returns the number of samples currently queued. It is a snapshot and
// may be stale by the time the caller observes it.
func (r *Ring) Len() int {
	tail := r.load(&r.tail)
	head := r.load(&r.head)

	return int((tail - head + Capacity) % Capacity)
}
