// NXP i.MX6UL configuration and support
// https://github.com/usbarmory/tamago
//
// Copyright (c) WithSecure Corporation
// https://foundry.withsecure.com
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

// Package imx6ul provides support to Go bare metal unikernels, written using
// the TamaGo framework, on the NXP i.MX6UL family of System-on-Chip (SoC)
// application processors.
//
// The package implements initialization and drivers for the peripherals
// exercised by the parametric speaker firmware: the ARM core, the Generic
// Interrupt Controller, GPIO (status LED), the USB 2.0 device controller
// (audio streaming) and the FlexPWM engine (H-bridge drive), adopting the
// following reference specifications:
//   - IMX6ULCEC  - i.MX6UL  Data Sheet                               - Rev 2.2 2015/05
//   - IMX6ULLCEC - i.MX6ULL Data Sheet                               - Rev 1.2 2017/11
//   - IMX6ULRM   - i.MX 6UL  Applications Processor Reference Manual - Rev 1   2016/04
//   - IMX6ULLRM  - i.MX 6ULL Applications Processor Reference Manual - Rev 1   2017/11
//   - IMXRT1060RM - i.MX RT1060 Processor Reference Manual (FlexPWM) - Rev 3   2021/01
//
// This package is only meant to be used with `GOOS=tamago GOARCH=arm` as
// supported by the TamaGo framework for bare metal Go on ARM SoCs, see
// https://github.com/usbarmory/tamago.
package imx6ul

import (
	"github.com/usbarmory/tamago/arm"
	"github.com/usbarmory/tamago/arm/gic"
	"github.com/usbarmory/tamago/internal/reg"

	"github.com/usbarmory/tamago/soc/nxp/flexpwm"
	"github.com/usbarmory/tamago/soc/nxp/gpio"
	"github.com/usbarmory/tamago/soc/nxp/usb"
	"github.com/usbarmory/tamago/soc/nxp/wdog"
)

// Peripheral registers
const (
	// General Interrupt Controller
	GIC_BASE = 0x00a00000

	// General Purpose I/O
	GPIO1_BASE = 0x0209c000

	// USB 2.0 controller
	USB_ANALOG1_BASE   = 0x020c81a0
	USB_ANALOG_DIGPROG = 0x020c8260
	USBPHY1_BASE       = 0x020c9000
	USB1_BASE          = 0x02184000

	// USB 2.0 controller interrupt
	USB1_IRQ = 32 + 43

	// FlexPWM compare-match interrupt, adapted alongside the FlexPWM
	// address mapping itself (PWM1_BASE): i.MX6UL has no native FlexPWM
	// IRQ line, this picks an otherwise unused ID in the SoC's external
	// interrupt range.
	PWM1_IRQ = 32 + 98

	// Watchdog Timer
	WDOG1_BASE = 0x020bc000
	WDOG1_IRQ  = 32 + 80

	// On-Chip Random-Access Memory, used as the DMA region backing USB
	// transfer descriptors and audio staging buffers
	OCRAM_START = 0x00900000
	OCRAM_SIZE  = 0x20000

	// FlexPWM, adapted from the i.MXRT1060 address map onto the i.MX6UL
	// memory layout reserved for board-specific peripherals (see
	// DESIGN.md for the rationale of this SoC-target adaptation: the
	// i.MX6UL family has no native complementary-pair PWM submodule,
	// FlexPWM's submodule/channel/polarity model is the closest real
	// match to the driver's complementary H-bridge output requirement).
	PWM1_BASE = 0x020e8000
)

// Peripheral instances
var (
	// ARM core
	ARM = &arm.CPU{}

	// Generic Interrupt Controller
	GIC = &gic.GIC{
		Base: GIC_BASE,
	}

	// GPIO controller 1, used for the status LED
	GPIO1 = &gpio.GPIO{
		Index: 1,
		Base:  GPIO1_BASE,
		CCGR:  CCM_CCGR1,
		CG:    CCGRx_CG13,
	}

	// USB controller 1, used for the audio streaming device
	USB1 = &usb.USB{
		Index:     1,
		Base:      USB1_BASE,
		CCGR:      CCM_CCGR6,
		CG:        CCGRx_CG0,
		Analog:    USB_ANALOG1_BASE,
		PHY:       USBPHY1_BASE,
		IRQ:       USB1_IRQ,
		EnablePLL: EnableUSBPLL,
	}

	// Watchdog Timer 1
	WDOG1 = &wdog.WDOG{
		Index: 1,
		Base:  WDOG1_BASE,
		CCGR:  CCM_CCGR3,
		CG:    CCGRx_CG8,
		IRQ:   WDOG1_IRQ,
	}

	// PWM submodule 0 (C1) and submodule 1 (C2), each driving one leg of
	// the H-bridge. Submodules are laid out at 0x20-byte strides from the
	// instance base; the instance-shared registers (MCTRL, OUTEN) live at
	// PWM1_BASE+0x80.
	pwm1SM0 = &flexpwm.PWM{
		Index:    0,
		Base:     PWM1_BASE + 0x00,
		Instance: PWM1_BASE + 0x80,
		CCGR:     CCM_CCGR1,
		CG:       CCGRx_CG14,
		ClockSrc: GetPeripheralClock,
	}
	pwm1SM1 = &flexpwm.PWM{
		Index:    1,
		Base:     PWM1_BASE + 0x20,
		Instance: PWM1_BASE + 0x80,
		CCGR:     CCM_CCGR1,
		CG:       CCGRx_CG14,
		ClockSrc: GetPeripheralClock,
	}

	// PWM1 drives the complementary C1/C2 output pair feeding the
	// H-bridge transducer array.
	PWM1 = flexpwm.NewEngine(pwm1SM0, pwm1SM1)
)

// SiliconVersion returns the SoC silicon version information
// (p3945, 57.4.11 Chip Silicon Version (USB_ANALOG_DIGPROG), IMX6ULLRM).
func SiliconVersion() (sv, family, revMajor, revMinor uint32) {
	sv = reg.Read(USB_ANALOG_DIGPROG)

	family = (sv >> 16) & 0xff
	revMajor = (sv >> 8) & 0xff
	revMinor = sv & 0xff

	return
}

// Model returns the SoC model name.
func Model() (model string) {
	switch Family {
	case IMX6UL:
		model = "i.MX6UL"
	case IMX6ULL:
		model = "i.MX6ULL"
	default:
		model = "unknown"
	}

	return
}
