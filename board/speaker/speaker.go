// Parametric speaker board support for tamago/arm
// https://github.com/usbarmory/tamago
//
// Copyright (c) WithSecure Corporation
// https://foundry.withsecure.com
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

// Package speaker provides hardware initialization, automatically on
// import, for the parametric ultrasonic speaker driver board: an i.MX6UL
// target wired to an H-bridge transducer array through four PWM outputs,
// and to a USB host through the integrated USB 2.0 device controller.
//
// This package is only meant to be used with `GOOS=tamago GOARCH=arm` as
// supported by the TamaGo framework for bare metal Go on ARM SoCs, see
// https://github.com/usbarmory/tamago.
package speaker

import (
	"github.com/usbarmory/tamago/soc/nxp/imx6ul"

	_ "unsafe"
)

// PWMFrequency is the carrier frequency, fixed equal to the audio sample
// rate so exactly one timer interrupt occurs per sample.
const PWMFrequency = 40000

// Peripheral instances
var (
	ARM   = imx6ul.ARM
	GIC   = imx6ul.GIC
	GPIO1 = imx6ul.GPIO1
	USB1  = imx6ul.USB1

	// PWM1 drives the complementary C1/C2 output pair feeding the
	// H-bridge transducer array; its SetEnabled also mirrors state onto
	// the status LED (see led.go).
	PWM1 = engine{imx6ul.PWM1}
)

// Interrupt identifiers and priorities. Lower values preempt higher ones;
// PriorityPWM sits above PriorityUSB so the sample pump always preempts the
// USB endpoint handler, never the reverse.
const (
	USB1_IRQ = imx6ul.USB1_IRQ
	PWM1_IRQ = imx6ul.PWM1_IRQ

	PriorityPWM = 0x00
	PriorityUSB = 0x10 // 16
)

// Init takes care of the lower level SoC initialization triggered early in
// runtime setup.
//
//go:linkname Init runtime.hwinit
func Init() {
	imx6ul.Init()
	initStatusLED()
}
