// USB Audio Class 1.0 descriptor support
// https://github.com/usbarmory/tamago
//
// Copyright (c) WithSecure Corporation
// https://foundry.withsecure.com
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

package usb

import (
	"bytes"
	"encoding/binary"
)

// Audio Class-specific descriptor types
// (USB Device Class Definition for Audio Devices, release 1.0, Table A-4).
const (
	CS_UNDEFINED     = 0x20
	CS_DEVICE        = 0x21
	CS_CONFIGURATION = 0x22
	CS_STRING        = 0x23
	CS_INTERFACE     = 0x24
	CS_ENDPOINT      = 0x25
)

// Audio Class-specific AC interface descriptor subtypes (Table A-5).
const (
	AC_HEADER           = 0x01
	AC_INPUT_TERMINAL   = 0x02
	AC_OUTPUT_TERMINAL  = 0x03
	AC_FEATURE_UNIT     = 0x06
)

// Audio Class-specific AS interface descriptor subtypes (Table A-6).
const (
	AS_GENERAL      = 0x01
	AS_FORMAT_TYPE  = 0x02
)

// Audio Class-specific endpoint descriptor subtype (Table A-9).
const (
	EP_GENERAL = 0x01
)

// Audio format type codes (Table A-10).
const (
	FORMAT_TYPE_I = 0x01
)

// Audio data format tag (USB Device Class Definition for Audio Data
// Formats, release 1.0, Table A-2).
const (
	PCM = 0x0001
)

// Audio Class interface subclasses (Table A-2).
const (
	AUDIOCONTROL   = 0x01
	AUDIOSTREAMING = 0x02
)

// Terminal types (Terminal Types release 1.0, Table 2-1, Table 2-3).
const (
	TERMINAL_USB_STREAMING = 0x0101
	TERMINAL_SPEAKER       = 0x0301
)

// AudioControlHeaderDescriptor implements
// Table 4-2: Class-Specific AC Interface Header Descriptor.
type AudioControlHeaderDescriptor struct {
	Length            uint8
	DescriptorType    uint8
	DescriptorSubtype uint8
	bcdADC            uint16
	TotalLength       uint16
	InCollection      uint8
	InterfaceNumbers  uint8
}

// SetDefaults initializes default values for the AC header descriptor.
func (d *AudioControlHeaderDescriptor) SetDefaults() {
	d.Length = 9
	d.DescriptorType = CS_INTERFACE
	d.DescriptorSubtype = AC_HEADER
	d.bcdADC = 0x0100
	d.TotalLength = uint16(d.Length)
	d.InCollection = 1
}

// Bytes converts the descriptor structure to byte array format.
func (d *AudioControlHeaderDescriptor) Bytes() []byte {
	buf := new(bytes.Buffer)
	binary.Write(buf, binary.LittleEndian, d)
	return buf.Bytes()
}

// InputTerminalDescriptor implements
// Table 4-3: Input Terminal Descriptor.
type InputTerminalDescriptor struct {
	Length             uint8
	DescriptorType     uint8
	DescriptorSubtype  uint8
	TerminalID         uint8
	TerminalType       uint16
	AssocTerminal      uint8
	NrChannels         uint8
	ChannelConfig      uint16
	ChannelNames       uint8
	Terminal           uint8
}

// SetDefaults initializes default values for the input terminal descriptor.
func (d *InputTerminalDescriptor) SetDefaults() {
	d.Length = 12
	d.DescriptorType = CS_INTERFACE
	d.DescriptorSubtype = AC_INPUT_TERMINAL
	d.NrChannels = 1
}

// Bytes converts the descriptor structure to byte array format.
func (d *InputTerminalDescriptor) Bytes() []byte {
	buf := new(bytes.Buffer)
	binary.Write(buf, binary.LittleEndian, d)
	return buf.Bytes()
}

// OutputTerminalDescriptor implements
// Table 4-4: Output Terminal Descriptor.
type OutputTerminalDescriptor struct {
	Length            uint8
	DescriptorType    uint8
	DescriptorSubtype uint8
	TerminalID        uint8
	TerminalType      uint16
	AssocTerminal     uint8
	SourceID          uint8
	Terminal          uint8
}

// SetDefaults initializes default values for the output terminal
// descriptor.
func (d *OutputTerminalDescriptor) SetDefaults() {
	d.Length = 9
	d.DescriptorType = CS_INTERFACE
	d.DescriptorSubtype = AC_OUTPUT_TERMINAL
}

// Bytes converts the descriptor structure to byte array format.
func (d *OutputTerminalDescriptor) Bytes() []byte {
	buf := new(bytes.Buffer)
	binary.Write(buf, binary.LittleEndian, d)
	return buf.Bytes()
}

// AudioStreamingGeneralDescriptor implements
// Table 4-19: Class-Specific AS General Interface Descriptor.
type AudioStreamingGeneralDescriptor struct {
	Length            uint8
	DescriptorType    uint8
	DescriptorSubtype uint8
	TerminalLink      uint8
	Delay             uint8
	FormatTag         uint16
}

// SetDefaults initializes default values for the AS general descriptor.
func (d *AudioStreamingGeneralDescriptor) SetDefaults() {
	d.Length = 7
	d.DescriptorType = CS_INTERFACE
	d.DescriptorSubtype = AS_GENERAL
	d.FormatTag = PCM
}

// Bytes converts the descriptor structure to byte array format.
func (d *AudioStreamingGeneralDescriptor) Bytes() []byte {
	buf := new(bytes.Buffer)
	binary.Write(buf, binary.LittleEndian, d)
	return buf.Bytes()
}

// FormatTypeIDescriptor implements
// Table 2-1: Type I Format Type Descriptor (Audio Data Formats).
//
// SamplingFrequency carries a single discrete sampling frequency
// (SamFreqType 1), laid out as a 3-byte little-endian value per
// the class specification, so the field is written out as raw bytes rather
// than a fixed-width integer.
type FormatTypeIDescriptor struct {
	Length            uint8
	DescriptorType    uint8
	DescriptorSubtype uint8
	FormatType        uint8
	NrChannels        uint8
	SubFrameSize      uint8
	BitResolution     uint8
	SamFreqType       uint8
	SamplingFrequency uint32
}

// SetDefaults initializes default values for the Type I format descriptor.
func (d *FormatTypeIDescriptor) SetDefaults() {
	d.Length = 11
	d.DescriptorType = CS_INTERFACE
	d.DescriptorSubtype = AS_FORMAT_TYPE
	d.FormatType = FORMAT_TYPE_I
	d.NrChannels = 1
	d.SubFrameSize = 2
	d.BitResolution = 16
	d.SamFreqType = 1
}

// Bytes converts the descriptor structure to byte array format, encoding
// SamplingFrequency as a 3-byte little-endian field.
func (d *FormatTypeIDescriptor) Bytes() []byte {
	buf := new(bytes.Buffer)

	binary.Write(buf, binary.LittleEndian, d.Length)
	binary.Write(buf, binary.LittleEndian, d.DescriptorType)
	binary.Write(buf, binary.LittleEndian, d.DescriptorSubtype)
	binary.Write(buf, binary.LittleEndian, d.FormatType)
	binary.Write(buf, binary.LittleEndian, d.NrChannels)
	binary.Write(buf, binary.LittleEndian, d.SubFrameSize)
	binary.Write(buf, binary.LittleEndian, d.BitResolution)
	binary.Write(buf, binary.LittleEndian, d.SamFreqType)

	freq := make([]byte, 4)
	binary.LittleEndian.PutUint32(freq, d.SamplingFrequency)
	buf.Write(freq[0:3])

	return buf.Bytes()
}

// AudioStreamingEndpointDescriptor implements
// Table 4-21: Class-Specific AS Isochronous Audio Data Endpoint Descriptor.
type AudioStreamingEndpointDescriptor struct {
	Length            uint8
	DescriptorType    uint8
	DescriptorSubtype uint8
	Attributes        uint8
	LockDelayUnits    uint8
	LockDelay         uint16
}

// SetDefaults initializes default values for the AS endpoint descriptor.
func (d *AudioStreamingEndpointDescriptor) SetDefaults() {
	d.Length = 7
	d.DescriptorType = CS_ENDPOINT
	d.DescriptorSubtype = EP_GENERAL
}

// Bytes converts the descriptor structure to byte array format.
func (d *AudioStreamingEndpointDescriptor) Bytes() []byte {
	buf := new(bytes.Buffer)
	binary.Write(buf, binary.LittleEndian, d)
	return buf.Bytes()
}
