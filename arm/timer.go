// ARM Generic Timer support
// https://github.com/usbarmory/tamago
//
// Copyright (c) WithSecure Corporation
// https://foundry.withsecure.com
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

package arm

// nanoseconds
const refFreq int64 = 1000000000

// defined in cpu.s
func read_cntpct() int64

// InitGenericTimers initializes the ARM Cortex-A Generic Timer, the base
// argument is unused on targets where the counter is only accessible through
// a coprocessor register (kept for API symmetry with memory-mapped variants).
func (cpu *CPU) InitGenericTimers(base uint32, freq int64) {
	cpu.timerMultiplier = refFreq / freq
	cpu.timerFn = read_cntpct
}

// GetTime returns the system time in nanoseconds.
func (cpu *CPU) GetTime() int64 {
	return cpu.timerFn() * cpu.timerMultiplier
}
