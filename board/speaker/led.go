// Parametric speaker board support for tamago/arm
// https://github.com/usbarmory/tamago
//
// Copyright (c) WithSecure Corporation
// https://foundry.withsecure.com
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

package speaker

import (
	"github.com/usbarmory/tamago/soc/nxp/flexpwm"
	"github.com/usbarmory/tamago/soc/nxp/gpio"
)

// Status LED pin, an optional debug indicator of the gating policy's
// output-enable state: lit while the bridge is driving the load, off
// during silence and at power-up.
const statusLEDPin = 3

var statusLED *gpio.Pin

func initStatusLED() {
	led, err := GPIO1.Init(statusLEDPin)
	if err != nil {
		return
	}

	led.Out()
	led.Low()

	statusLED = led
}

// engine wraps a flexpwm.Engine so that SetEnabled, in addition to gating
// the bridge output, reflects the new state on the status LED. All other
// methods (Init, ListenPeriod, SetDuty, MaxDuty, ClearPeriodFlag) are
// promoted unchanged from the embedded Engine.
type engine struct {
	*flexpwm.Engine
}

// SetEnabled gates the bridge output and mirrors the new state on the
// status LED, when one was successfully initialized.
func (e engine) SetEnabled(enabled bool) {
	e.Engine.SetEnabled(enabled)

	if statusLED == nil {
		return
	}

	if enabled {
		statusLED.High()
	} else {
		statusLED.Low()
	}
}
