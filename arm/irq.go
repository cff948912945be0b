// ARM processor support
// https://github.com/usbarmory/tamago
//
// Copyright (c) WithSecure Corporation
// https://foundry.withsecure.com
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

package arm

// defined in cpu.s
func irq_enable()
func irq_disable()

// EnableInterrupts enables IRQ interrupts, the FIQ mask is left unchanged.
func (cpu *CPU) EnableInterrupts() {
	irq_enable()
}

// DisableInterrupts disables IRQ interrupts, the FIQ mask is left unchanged.
func (cpu *CPU) DisableInterrupts() {
	irq_disable()
}
