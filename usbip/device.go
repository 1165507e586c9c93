package usbip

import (
	"encoding/binary"

	"github.com/efficientgo/core/errors"
)

// USBID is a vendor or product ID under the USB standard.
type USBID uint16

const (
	devicePathFieldSize = 256
	busIDFieldSize      = 32
)

// deviceInfo is the fixed 312-byte device block shared by OP_REP_DEVLIST
// entries and OP_REP_IMPORT.
type deviceInfo struct {
	Path               [devicePathFieldSize]byte
	BusID              [busIDFieldSize]byte
	BusNum             uint32
	DevNum             uint32
	Speed              uint32
	Vendor             uint16
	Product            uint16
	BCDDevice          uint16
	DeviceClass        uint8
	DeviceSubclass     uint8
	DeviceProtocol     uint8
	ConfigurationValue uint8
	NumConfigurations  uint8
	NumInterfaces      uint8
}

// InterfaceDescriptor describes one interface of an exported device.
type InterfaceDescriptor struct {
	Class    uint8
	Subclass uint8
	Protocol uint8
}

// interfaceWire is the 4-byte on-wire form: the class triple plus one
// padding byte.
type interfaceWire struct {
	Class    uint8
	Subclass uint8
	Protocol uint8
	_        uint8
}

// DeviceDescriptor describes one device exported by a USB/IP server. The
// interface count on the wire is derived from len(Interfaces).
type DeviceDescriptor struct {
	Path               string
	BusID              string
	BusNum             uint32
	DevNum             uint32
	Speed              uint32
	Vendor             USBID
	Product            USBID
	BCDDevice          uint16
	DeviceClass        uint8
	DeviceSubclass     uint8
	DeviceProtocol     uint8
	ConfigurationValue uint8
	NumConfigurations  uint8
	Interfaces         []InterfaceDescriptor
}

func readDeviceDescriptor(d *Decoder) (DeviceDescriptor, error) {
	var w deviceInfo
	if err := binary.Read(d.r, binary.BigEndian, &w); err != nil {
		return DeviceDescriptor{}, errors.Wrap(err, "failed to read device fields")
	}
	path, err := fixStringFromWire(w.Path[:])
	if err != nil {
		return DeviceDescriptor{}, errors.Wrap(err, "bad device path")
	}
	busID, err := fixStringFromWire(w.BusID[:])
	if err != nil {
		return DeviceDescriptor{}, errors.Wrap(err, "bad device busid")
	}
	dev := DeviceDescriptor{
		Path:               path,
		BusID:              busID,
		BusNum:             w.BusNum,
		DevNum:             w.DevNum,
		Speed:              w.Speed,
		Vendor:             USBID(w.Vendor),
		Product:            USBID(w.Product),
		BCDDevice:          w.BCDDevice,
		DeviceClass:        w.DeviceClass,
		DeviceSubclass:     w.DeviceSubclass,
		DeviceProtocol:     w.DeviceProtocol,
		ConfigurationValue: w.ConfigurationValue,
		NumConfigurations:  w.NumConfigurations,
	}
	if w.NumInterfaces > 0 {
		dev.Interfaces = make([]InterfaceDescriptor, w.NumInterfaces)
	}
	for i := range dev.Interfaces {
		var iw interfaceWire
		if err := binary.Read(d.r, binary.BigEndian, &iw); err != nil {
			return DeviceDescriptor{}, errors.Wrap(err, "device entry ended early")
		}
		dev.Interfaces[i] = InterfaceDescriptor{
			Class:    iw.Class,
			Subclass: iw.Subclass,
			Protocol: iw.Protocol,
		}
	}
	return dev, nil
}

func writeDeviceDescriptor(e *Encoder, dev *DeviceDescriptor) error {
	if len(dev.Interfaces) > 0xff {
		return protocolErrorf("device %q has %d interfaces; the count field is one byte", dev.BusID, len(dev.Interfaces))
	}
	w := deviceInfo{
		BusNum:             dev.BusNum,
		DevNum:             dev.DevNum,
		Speed:              dev.Speed,
		Vendor:             uint16(dev.Vendor),
		Product:            uint16(dev.Product),
		BCDDevice:          dev.BCDDevice,
		DeviceClass:        dev.DeviceClass,
		DeviceSubclass:     dev.DeviceSubclass,
		DeviceProtocol:     dev.DeviceProtocol,
		ConfigurationValue: dev.ConfigurationValue,
		NumConfigurations:  dev.NumConfigurations,
		NumInterfaces:      uint8(len(dev.Interfaces)),
	}
	if err := fixStringToWire(w.Path[:], dev.Path); err != nil {
		return errors.Wrap(err, "bad device path")
	}
	if err := fixStringToWire(w.BusID[:], dev.BusID); err != nil {
		return errors.Wrap(err, "bad device busid")
	}
	if err := binary.Write(e.w, binary.BigEndian, &w); err != nil {
		return errors.Wrap(err, "failed to write device fields")
	}
	for _, itf := range dev.Interfaces {
		iw := interfaceWire{
			Class:    itf.Class,
			Subclass: itf.Subclass,
			Protocol: itf.Protocol,
		}
		if err := binary.Write(e.w, binary.BigEndian, &iw); err != nil {
			return errors.Wrap(err, "failed to write interface fields")
		}
	}
	return nil
}
