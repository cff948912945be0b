// USB Audio Class sink
//
// Copyright (c) WithSecure Corporation
// https://foundry.withsecure.com
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

// Package audio assembles the USB Audio Class 1.0 descriptor set for a
// single-channel 40 kHz/16-bit speaker output device, and wires its
// isochronous OUT endpoint into a ring buffer producer.
package audio

import (
	"encoding/binary"
	"log"

	"github.com/usbarmory/tamago/ring"
	"github.com/usbarmory/tamago/soc/nxp/usb"
)

// VendorID and ProductID identify the device on the USB bus.
const (
	VendorID  = 0x16c0
	ProductID = 0x27e0
)

// SampleRate is the single, discrete sample rate this device advertises
// and accepts.
const SampleRate = 40000

// frameSize is the maximum packet size advertised for the isochronous OUT
// endpoint, sized for one full-speed isochronous frame. Received bytes reach
// receive in buffers allocated by the usb package, not in a stack buffer.
const frameSize = 1024

// Manufacturer and Product are the free-form USB string descriptors.
const (
	Manufacturer = "WithSecure"
	Product      = "Parametric Speaker"
)

// NewDevice builds the USB device descriptor tree for the parametric
// speaker: one configuration, one Audio Control interface (no feature
// unit, streaming only) and one Audio Streaming interface with a single
// isochronous OUT endpoint, wired to enqueue decoded samples into prod.
func NewDevice(prod *ring.Producer) *usb.Device {
	dev := &usb.Device{}

	desc := &usb.DeviceDescriptor{}
	desc.SetDefaults()
	desc.DeviceClass = 0 // defined at interface level
	desc.VendorId = VendorID
	desc.ProductId = ProductID
	dev.Descriptor = desc

	dev.SetLanguageCodes([]uint16{0x0409})
	desc.Manufacturer = dev.AddString(Manufacturer)
	desc.Product = dev.AddString(Product)

	qual := &usb.DeviceQualifierDescriptor{}
	qual.SetDefaults()
	dev.Qualifier = qual

	conf := &usb.ConfigurationDescriptor{}
	conf.SetDefaults()

	ac := audioControlInterface(0)
	conf.AddInterface(ac)

	as := audioStreamingInterface(1, ac.InterfaceNumber, prod)
	conf.AddInterface(as)

	dev.AddConfiguration(conf)

	return dev
}

func audioControlInterface(number uint8) *usb.InterfaceDescriptor {
	iface := &usb.InterfaceDescriptor{}
	iface.SetDefaults()
	iface.InterfaceNumber = number
	iface.InterfaceClass = 0x01 // AUDIO
	iface.InterfaceSubClass = usb.AUDIOCONTROL

	input := &usb.InputTerminalDescriptor{}
	input.SetDefaults()
	input.TerminalID = 1
	input.TerminalType = usb.TERMINAL_USB_STREAMING

	output := &usb.OutputTerminalDescriptor{}
	output.SetDefaults()
	output.TerminalID = 2
	output.TerminalType = usb.TERMINAL_SPEAKER
	output.SourceID = input.TerminalID

	header := &usb.AudioControlHeaderDescriptor{}
	header.SetDefaults()
	header.InterfaceNumbers = number + 1
	header.TotalLength = uint16(header.Length) + uint16(input.Length) + uint16(output.Length)

	iface.ClassDescriptors = []usb.Descriptor{header, input, output}

	return iface
}

func audioStreamingInterface(number uint8, terminalLink uint8, prod *ring.Producer) *usb.InterfaceDescriptor {
	iface := &usb.InterfaceDescriptor{}
	iface.SetDefaults()
	iface.InterfaceNumber = number
	iface.InterfaceClass = 0x01 // AUDIO
	iface.InterfaceSubClass = usb.AUDIOSTREAMING

	general := &usb.AudioStreamingGeneralDescriptor{}
	general.SetDefaults()
	general.TerminalLink = 2 // output terminal ID

	format := &usb.FormatTypeIDescriptor{}
	format.SetDefaults()
	format.SamplingFrequency = SampleRate

	iface.ClassDescriptors = []usb.Descriptor{general, format}

	ep := &usb.EndpointDescriptor{}
	ep.SetDefaults()
	ep.EndpointAddress = 0x01 // OUT
	ep.Attributes = 0x05     // isochronous, asynchronous
	ep.MaxPacketSize = frameSize
	ep.Interval = 1
	ep.Function = receive(prod)

	epClass := &usb.AudioStreamingEndpointDescriptor{}
	epClass.SetDefaults()
	ep.ClassDescriptors = []usb.Descriptor{epClass}

	iface.Endpoints = []*usb.EndpointDescriptor{ep}

	return iface
}

// receive decodes little-endian 16-bit PCM samples out of each received
// isochronous transfer and enqueues them into prod. A trailing odd byte,
// which USB Audio framing should never produce, is discarded rather than
// causing a fault. Overruns are reported but do not block or retry.
func receive(prod *ring.Producer) usb.EndpointFunction {
	return func(buf []byte, err error) ([]byte, error) {
		if err != nil || len(buf) == 0 {
			return nil, nil
		}

		n := len(buf) - (len(buf) % 2)

		for i := 0; i < n; i += 2 {
			v := int16(binary.LittleEndian.Uint16(buf[i : i+2]))

			if !prod.Enqueue(v) {
				log.Print("audio: overrun")
			}
		}

		return nil, nil
	}
}
