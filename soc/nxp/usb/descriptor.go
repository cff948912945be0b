// USB descriptor support
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
	"errors"
)

// USB descriptor lengths (p279, Table 9-5, USB2.0)
const (
	DeviceDescriptorLength        = 18
	ConfigurationDescriptorLength = 9
	InterfaceDescriptorLength     = 9
	EndpointDescriptorLength      = 7
	DeviceQualifierDescriptorLength = 10
	InterfaceAssociationDescriptorLength = 8
)

// DeviceDescriptor implements
// p290, Table 9-8. Standard Device Descriptor, USB2.0.
type DeviceDescriptor struct {
	Length            uint8
	DescriptorType    uint8
	bcdUSB            uint16
	DeviceClass       uint8
	DeviceSubClass    uint8
	DeviceProtocol    uint8
	MaxPacketSize0    uint8
	VendorId          uint16
	ProductId         uint16
	bcdDevice         uint16
	Manufacturer      uint8
	Product           uint8
	SerialNumber      uint8
	NumConfigurations uint8
}

// SetDefaults initializes default values for the USB device descriptor.
func (d *DeviceDescriptor) SetDefaults() {
	d.Length = DeviceDescriptorLength
	d.DescriptorType = DEVICE
	d.bcdUSB = 0x0200
	d.MaxPacketSize0 = 64
	d.NumConfigurations = 1
}

// Bytes converts the descriptor structure to byte array format.
func (d *DeviceDescriptor) Bytes() []byte {
	buf := new(bytes.Buffer)
	binary.Write(buf, binary.LittleEndian, d)
	return buf.Bytes()
}

// ConfigurationDescriptor implements
// p293, Table 9-10. Standard Configuration Descriptor, USB2.0.
type ConfigurationDescriptor struct {
	Length             uint8
	DescriptorType     uint8
	TotalLength        uint16
	NumInterfaces      uint8
	ConfigurationValue uint8
	Configuration      uint8
	Attributes         uint8
	MaxPower           uint8

	Interfaces []*InterfaceDescriptor `json:"-"`
}

// SetDefaults initializes default values for the USB configuration
// descriptor.
func (d *ConfigurationDescriptor) SetDefaults() {
	d.Length = ConfigurationDescriptorLength
	d.DescriptorType = CONFIGURATION
	d.TotalLength = uint16(d.Length)
	d.ConfigurationValue = 1
	// bus powered
	d.Attributes = 0x80
	d.MaxPower = 250
}

// AddInterface adds an interface descriptor to a configuration descriptor.
func (d *ConfigurationDescriptor) AddInterface(iface *InterfaceDescriptor) {
	d.Interfaces = append(d.Interfaces, iface)
	d.NumInterfaces = uint8(len(d.Interfaces))
	d.TotalLength = uint16(d.Length)

	for _, iface := range d.Interfaces {
		d.TotalLength += uint16(len(iface.Bytes()))
	}
}

// Bytes converts the descriptor structure, along with its interfaces, to
// byte array format.
func (d *ConfigurationDescriptor) Bytes() []byte {
	buf := new(bytes.Buffer)

	d.TotalLength = uint16(d.Length)

	for _, iface := range d.Interfaces {
		d.TotalLength += uint16(len(iface.Bytes()))
	}

	binary.Write(buf, binary.LittleEndian, d.Length)
	binary.Write(buf, binary.LittleEndian, d.DescriptorType)
	binary.Write(buf, binary.LittleEndian, d.TotalLength)
	binary.Write(buf, binary.LittleEndian, d.NumInterfaces)
	binary.Write(buf, binary.LittleEndian, d.ConfigurationValue)
	binary.Write(buf, binary.LittleEndian, d.Configuration)
	binary.Write(buf, binary.LittleEndian, d.Attributes)
	binary.Write(buf, binary.LittleEndian, d.MaxPower)

	for _, iface := range d.Interfaces {
		buf.Write(iface.Bytes())
	}

	return buf.Bytes()
}

// InterfaceAssociationDescriptor implements
// Interface Association Descriptor, USB ECN 2003.
type InterfaceAssociationDescriptor struct {
	Length           uint8
	DescriptorType   uint8
	FirstInterface   uint8
	InterfaceCount   uint8
	FunctionClass    uint8
	FunctionSubClass uint8
	FunctionProtocol uint8
	Function         uint8
}

// SetDefaults initializes default values for the USB Interface Association
// Descriptor.
func (d *InterfaceAssociationDescriptor) SetDefaults() {
	d.Length = InterfaceAssociationDescriptorLength
	d.DescriptorType = INTERFACE_ASSOCIATION
	d.InterfaceCount = 1
}

// Bytes converts the descriptor structure to byte array format.
func (d *InterfaceAssociationDescriptor) Bytes() []byte {
	buf := new(bytes.Buffer)
	binary.Write(buf, binary.LittleEndian, d)
	return buf.Bytes()
}

// InterfaceDescriptor implements
// p296, Table 9-12. Standard Interface Descriptor, USB2.0.
type InterfaceDescriptor struct {
	Length            uint8
	DescriptorType    uint8
	InterfaceNumber   uint8
	AlternateSetting  uint8
	NumEndpoints      uint8
	InterfaceClass    uint8
	InterfaceSubClass uint8
	InterfaceProtocol uint8
	Interface         uint8

	ClassDescriptors []Descriptor         `json:"-"`
	Endpoints        []*EndpointDescriptor `json:"-"`

	IAD *InterfaceAssociationDescriptor `json:"-"`
}

// Descriptor is the common interface implemented by class-specific
// functional descriptors embedded within an interface descriptor.
type Descriptor interface {
	Bytes() []byte
}

// SetDefaults initializes default values for the USB interface descriptor.
func (d *InterfaceDescriptor) SetDefaults() {
	d.Length = InterfaceDescriptorLength
	d.DescriptorType = INTERFACE
}

// Bytes converts the descriptor structure, along with its class-specific
// descriptors and endpoints, to byte array format.
func (d *InterfaceDescriptor) Bytes() []byte {
	buf := new(bytes.Buffer)

	d.NumEndpoints = uint8(len(d.Endpoints))

	if d.IAD != nil {
		buf.Write(d.IAD.Bytes())
	}

	binary.Write(buf, binary.LittleEndian, d.Length)
	binary.Write(buf, binary.LittleEndian, d.DescriptorType)
	binary.Write(buf, binary.LittleEndian, d.InterfaceNumber)
	binary.Write(buf, binary.LittleEndian, d.AlternateSetting)
	binary.Write(buf, binary.LittleEndian, d.NumEndpoints)
	binary.Write(buf, binary.LittleEndian, d.InterfaceClass)
	binary.Write(buf, binary.LittleEndian, d.InterfaceSubClass)
	binary.Write(buf, binary.LittleEndian, d.InterfaceProtocol)
	binary.Write(buf, binary.LittleEndian, d.Interface)

	for _, desc := range d.ClassDescriptors {
		buf.Write(desc.Bytes())
	}

	for _, ep := range d.Endpoints {
		buf.Write(ep.Bytes())
	}

	return buf.Bytes()
}

// EndpointFunction is invoked on every transfer handled by the endpoint it
// is attached to. On an IN endpoint it is invoked to obtain the next buffer
// to transmit, on an OUT endpoint it receives the buffer just received.
type EndpointFunction func(buf []byte, err error) ([]byte, error)

// EndpointDescriptor implements
// p297, Table 9-13. Standard Endpoint Descriptor, USB2.0.
type EndpointDescriptor struct {
	Length          uint8
	DescriptorType  uint8
	EndpointAddress uint8
	Attributes      uint8
	MaxPacketSize   uint16
	Interval        uint8

	// Zero controls Zero Length Termination for this endpoint's queue
	// head.
	Zero bool `json:"-"`

	// Function is invoked by the endpoint polling goroutine for each
	// transfer.
	Function EndpointFunction `json:"-"`

	// ClassDescriptors holds class-specific descriptors following this
	// endpoint descriptor (e.g. the Audio Class AS isochronous data
	// endpoint descriptor).
	ClassDescriptors []Descriptor `json:"-"`
}

// SetDefaults initializes default values for the USB endpoint descriptor.
func (d *EndpointDescriptor) SetDefaults() {
	d.Length = EndpointDescriptorLength
	d.DescriptorType = ENDPOINT
}

// Number returns the endpoint number.
func (d *EndpointDescriptor) Number() int {
	return int(d.EndpointAddress & 0b1111)
}

// Direction returns the endpoint direction (IN or OUT).
func (d *EndpointDescriptor) Direction() int {
	return int(d.EndpointAddress >> 7)
}

// TransferType returns the endpoint transfer type.
func (d *EndpointDescriptor) TransferType() int {
	return int(d.Attributes & 0b11)
}

// Bytes converts the descriptor structure to byte array format.
func (d *EndpointDescriptor) Bytes() []byte {
	buf := new(bytes.Buffer)

	binary.Write(buf, binary.LittleEndian, d.Length)
	binary.Write(buf, binary.LittleEndian, d.DescriptorType)
	binary.Write(buf, binary.LittleEndian, d.EndpointAddress)
	binary.Write(buf, binary.LittleEndian, d.Attributes)
	binary.Write(buf, binary.LittleEndian, d.MaxPacketSize)
	binary.Write(buf, binary.LittleEndian, d.Interval)

	for _, desc := range d.ClassDescriptors {
		buf.Write(desc.Bytes())
	}

	return buf.Bytes()
}

// StringDescriptor implements
// p296, Table 9-15. String Descriptor, USB2.0.
type StringDescriptor struct {
	Length         uint8
	DescriptorType uint8
	String         []byte
}

// SetDefaults initializes default values for the USB string descriptor.
func (d *StringDescriptor) SetDefaults() {
	d.Length = 2
	d.DescriptorType = STRING
}

// SetLanguageCodes sets the language codes for string descriptor index 0.
func (d *StringDescriptor) SetLanguageCodes(codes []uint16) {
	buf := new(bytes.Buffer)
	binary.Write(buf, binary.LittleEndian, codes)

	d.String = buf.Bytes()
	d.Length = uint8(2 + len(d.String))
}

// SetString encodes a string into the descriptor as UTF-16LE.
func (d *StringDescriptor) SetString(s string) {
	buf := new(bytes.Buffer)

	for _, r := range s {
		binary.Write(buf, binary.LittleEndian, uint16(r))
	}

	d.String = buf.Bytes()
	d.Length = uint8(2 + len(d.String))
}

// Bytes converts the descriptor structure to byte array format.
func (d *StringDescriptor) Bytes() []byte {
	buf := new(bytes.Buffer)

	binary.Write(buf, binary.LittleEndian, d.Length)
	binary.Write(buf, binary.LittleEndian, d.DescriptorType)
	buf.Write(d.String)

	return buf.Bytes()
}

// DeviceQualifierDescriptor implements
// p295, Table 9-11. Device Qualifier Descriptor, USB2.0.
type DeviceQualifierDescriptor struct {
	Length            uint8
	DescriptorType    uint8
	bcdUSB            uint16
	DeviceClass       uint8
	DeviceSubClass    uint8
	DeviceProtocol    uint8
	MaxPacketSize0    uint8
	NumConfigurations uint8
	Reserved          uint8
}

// SetDefaults initializes default values for the USB device qualifier
// descriptor.
func (d *DeviceQualifierDescriptor) SetDefaults() {
	d.Length = DeviceQualifierDescriptorLength
	d.DescriptorType = DEVICE_QUALIFIER
	d.bcdUSB = 0x0200
	d.MaxPacketSize0 = 64
	d.NumConfigurations = 1
}

// Bytes converts the descriptor structure to byte array format.
func (d *DeviceQualifierDescriptor) Bytes() []byte {
	buf := new(bytes.Buffer)
	binary.Write(buf, binary.LittleEndian, d)
	return buf.Bytes()
}

// SetupFunction is invoked on every control transfer directed at the
// device, before standard request handling. Returning done == true
// short-circuits standard request processing for this transfer.
type SetupFunction func(setup *SetupData) (in []byte, ack bool, done bool, err error)

// Device represents a USB device configuration.
type Device struct {
	Descriptor *DeviceDescriptor
	Qualifier  *DeviceQualifierDescriptor

	Configurations []*ConfigurationDescriptor
	Strings        [][]byte

	ConfigurationValue uint8
	AlternateSetting   uint8

	// Setup, when set, is invoked for every control transfer before
	// standard request handling (class-specific requests).
	Setup SetupFunction `json:"-"`
}

func (d *Device) setStringDescriptor(s *StringDescriptor) (index uint8) {
	d.Strings = append(d.Strings, s.Bytes())
	return uint8(len(d.Strings) - 1)
}

// SetLanguageCodes sets the string descriptor at index 0 to the supported
// language codes.
func (d *Device) SetLanguageCodes(codes []uint16) {
	s := &StringDescriptor{}
	s.SetDefaults()
	s.SetLanguageCodes(codes)

	if len(d.Strings) == 0 {
		d.Strings = append(d.Strings, nil)
	}

	d.Strings[0] = s.Bytes()
}

// AddString adds a string descriptor, returning its index.
func (d *Device) AddString(str string) (index uint8) {
	s := &StringDescriptor{}
	s.SetDefaults()
	s.SetString(str)

	if len(d.Strings) == 0 {
		d.Strings = append(d.Strings, nil)
	}

	return d.setStringDescriptor(s)
}

// AddConfiguration adds a configuration descriptor to the device.
func (d *Device) AddConfiguration(conf *ConfigurationDescriptor) {
	d.Configurations = append(d.Configurations, conf)
}

// Configuration returns the configuration descriptor at wIndex, in wire
// format.
func (d *Device) Configuration(wIndex uint16) (conf []byte, err error) {
	if int(wIndex) >= len(d.Configurations) {
		return nil, errors.New("invalid configuration index")
	}

	return d.Configurations[wIndex].Bytes(), nil
}
