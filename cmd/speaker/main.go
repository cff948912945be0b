// Parametric ultrasonic speaker firmware
// https://github.com/usbarmory/tamago
//
// Copyright (c) WithSecure Corporation
// https://foundry.withsecure.com
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

// Command speaker is the parametric ultrasonic speaker driver firmware: it
// receives 40 kHz/16-bit mono PCM over USB Audio Class 1.0 and drives an
// H-bridge transducer array through a complementary PWM carrier at the same
// rate, one sample decoded and written out per carrier period.
package main

import (
	"log"
	"runtime"

	"github.com/usbarmory/tamago/audio"
	"github.com/usbarmory/tamago/board/speaker"
	"github.com/usbarmory/tamago/pump"
	"github.com/usbarmory/tamago/ring"
)

var sink *pump.Pump

// init runs in the foreground, pre-World-loop context and performs all
// one-time peripheral bring-up: bus buffer, PWM carrier, GIC and USB
// controller. No goroutine started here may observe a half-initialized
// peripheral, since nothing else runs until init returns.
func init() {
	buf := &ring.Ring{}
	prod, cons := ring.Split(buf)

	speaker.PWM1.Init(speaker.PWMFrequency)
	speaker.PWM1.ListenPeriod()

	sink = pump.New(cons, speaker.PWM1)

	dev := audio.NewDevice(prod)
	speaker.USB1.Init()
	speaker.USB1.DeviceMode()
	speaker.USB1.Device = dev

	speaker.GIC.Init(true, false)
	speaker.GIC.EnableInterrupt(speaker.PWM1_IRQ, true)
	speaker.GIC.EnableInterrupt(speaker.USB1_IRQ, true)
	speaker.GIC.SetPriority(speaker.PWM1_IRQ, speaker.PriorityPWM)
	speaker.GIC.SetPriority(speaker.USB1_IRQ, speaker.PriorityUSB)

	speaker.ARM.EnableInterrupts()
}

// pumpLoop polls for, and acknowledges, each PWM compare-match interrupt and
// runs exactly one sample pump tick per period. GetInterrupt is a single
// immediate register read, not a blocking wait, so every iteration yields to
// the cooperative scheduler via runtime.Gosched, the same discipline
// soc/nxp/usb's endpoint handler uses for its own polling loop. USB1_IRQ is
// enabled and prioritized alongside PWM1_IRQ so the two reflect their
// intended relative priority, but the endpoint handler (speaker.USB1.Start)
// drains the controller by polling its status register rather than waiting
// on this channel; a stray USB1_IRQ delivered here is acknowledged and
// dropped.
func pumpLoop() {
	for {
		id, end := speaker.GIC.GetInterrupt(true)

		if id != speaker.PWM1_IRQ {
			if end != nil {
				close(end)
			}
			runtime.Gosched()
			continue
		}

		sink.Tick()
		close(end)
		runtime.Gosched()
	}
}

func main() {
	go pumpLoop()
	go speaker.USB1.Start()

	log.Printf("speaker: parametric ultrasonic speaker driver ready")

	for {
		runtime.Gosched()
	}
}
