// ARM processor support
// https://github.com/usbarmory/tamago
//
// Copyright (c) WithSecure Corporation
// https://foundry.withsecure.com
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

// Package arm provides support for ARM architecture specific operations on
// bare metal targets.
//
// This package is only meant to be used with `GOOS=tamago GOARCH=arm` as
// supported by the TamaGo framework for bare metal Go on ARM SoCs, see
// https://github.com/usbarmory/tamago.
package arm

import (
	_ "unsafe"
)

// ARM processor modes (p1136, B1.1.2, ARMv7-A Architecture Reference Manual).
const (
	USR_MODE = 0b10000
	FIQ_MODE = 0b10001
	IRQ_MODE = 0b10010
	SVC_MODE = 0b10011
	MON_MODE = 0b10110
	ABT_MODE = 0b10111
	HYP_MODE = 0b11010
	UND_MODE = 0b11011
	SYS_MODE = 0b11111
)

// defined in cpu.s
func read_cpsr() uint32
func vfp_enable()

// CPU instance.
type CPU struct {
	// timer multiplier
	timerMultiplier int64
	// timer function
	timerFn func() int64
	// non-secure state
	nonSecure bool
	// start of RAM, as passed to Init()
	ramStart uint32
	// cache enable state
	cacheEnabled bool
}

// Mode returns the CPU execution mode.
func (cpu *CPU) Mode() int {
	return int(read_cpsr() & 0x1f)
}

// NonSecure returns whether the CPU is executing in TrustZone Non-Secure
// world.
func (cpu *CPU) NonSecure() bool {
	return cpu.nonSecure
}

// ModeName returns the mnemonic for a specific processor mode.
func ModeName(mode int) string {
	switch mode {
	case USR_MODE:
		return "USR"
	case FIQ_MODE:
		return "FIQ"
	case IRQ_MODE:
		return "IRQ"
	case SVC_MODE:
		return "SVC"
	case MON_MODE:
		return "MON"
	case ABT_MODE:
		return "ABT"
	case HYP_MODE:
		return "HYP"
	case UND_MODE:
		return "UND"
	case SYS_MODE:
		return "SYS"
	}

	return "unknown"
}

// EnableVFP enables the Floating Point Unit.
func (cpu *CPU) EnableVFP() {
	vfp_enable()
}

// EnableSMP is a no-op on this single-core target: it does not change
// symmetric multiprocessing awareness, whatever state the boot ROM left.
func (cpu *CPU) EnableSMP() {
	// no-op on single-core targets, kept for API parity with multi-core
	// capable SoCs.
}

// Init performs initial processor configuration, the ramStart argument
// records the base address of the region the Go runtime has been relocated
// to (used only for bookkeeping on this single flat-mapped target).
func (cpu *CPU) Init(ramStart uint32) {
	cpu.nonSecure = cpu.Mode() != SYS_MODE
	cpu.ramStart = ramStart
}

// InitMMU is a no-op on this target: the firmware runs out of a single flat
// identity-mapped region and has no need for the page table partitioning
// (cached/uncached/device regions) that general purpose tamago targets set
// up for peripheral and DMA memory isolation. Kept for API parity with the
// board initialization sequence.
func (cpu *CPU) InitMMU() {
}

// EnableCache records that the cache is enabled, as reported by
// CacheEnabled. It does not write the system control register or otherwise
// change the cache configuration of the processor.
func (cpu *CPU) EnableCache() {
	cpu.cacheEnabled = true
}

// CacheEnabled returns whether EnableCache has been called.
func (cpu *CPU) CacheEnabled() bool {
	return cpu.cacheEnabled
}

// Busyloop spins the CPU for the given number of iterations, used for short
// hardware settling delays where a scheduler yield would be too coarse
// (e.g. PLL/regulator ramp-up during clock configuration).
//
// defined in cpu.s
func Busyloop(n uint32)
