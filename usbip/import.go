package usbip

import (
	"encoding/binary"

	"github.com/efficientgo/core/errors"
)

// ReqImport asks the server to attach the device with the given bus ID.
type ReqImport struct {
	BusID string
}

func (*ReqImport) Op() Op { return OpReqImport }

func (p *ReqImport) readBody(d *Decoder) error {
	// reserved field, consumed and ignored
	if _, err := d.readU32(); err != nil {
		return errors.Wrap(err, "failed to read reserved field")
	}
	busID, err := readFixString(d.r, busIDFieldSize)
	if err != nil {
		return errors.Wrap(err, "bad busid")
	}
	p.BusID = busID
	return nil
}

func (p *ReqImport) writeBody(e *Encoder) error {
	if err := e.writeU32(0); err != nil {
		return errors.Wrap(err, "failed to write reserved field")
	}
	return writeFixString(e.w, p.BusID, busIDFieldSize)
}

// RepImport is the server's reply to ReqImport. The device fields are
// present on the wire only when Status is zero; a non-zero status yields a
// short 8-byte message and all device fields keep their zero values.
type RepImport struct {
	Status             uint32
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
	NumInterfaces      uint8
}

func (*RepImport) Op() Op { return OpRepImport }

func (p *RepImport) readBody(d *Decoder) error {
	status, err := d.readU32()
	if err != nil {
		return errors.Wrap(err, "failed to read status")
	}
	p.Status = status
	if status != 0 {
		return nil
	}
	var w deviceInfo
	if err := binary.Read(d.r, binary.BigEndian, &w); err != nil {
		return errors.Wrap(err, "failed to read device fields")
	}
	if p.Path, err = fixStringFromWire(w.Path[:]); err != nil {
		return errors.Wrap(err, "bad device path")
	}
	if p.BusID, err = fixStringFromWire(w.BusID[:]); err != nil {
		return errors.Wrap(err, "bad device busid")
	}
	p.BusNum = w.BusNum
	p.DevNum = w.DevNum
	p.Speed = w.Speed
	p.Vendor = USBID(w.Vendor)
	p.Product = USBID(w.Product)
	p.BCDDevice = w.BCDDevice
	p.DeviceClass = w.DeviceClass
	p.DeviceSubclass = w.DeviceSubclass
	p.DeviceProtocol = w.DeviceProtocol
	p.ConfigurationValue = w.ConfigurationValue
	p.NumConfigurations = w.NumConfigurations
	p.NumInterfaces = w.NumInterfaces
	return nil
}

func (p *RepImport) writeBody(e *Encoder) error {
	if err := e.writeU32(p.Status); err != nil {
		return errors.Wrap(err, "failed to write status")
	}
	if p.Status != 0 {
		return nil
	}
	w := deviceInfo{
		BusNum:             p.BusNum,
		DevNum:             p.DevNum,
		Speed:              p.Speed,
		Vendor:             uint16(p.Vendor),
		Product:            uint16(p.Product),
		BCDDevice:          p.BCDDevice,
		DeviceClass:        p.DeviceClass,
		DeviceSubclass:     p.DeviceSubclass,
		DeviceProtocol:     p.DeviceProtocol,
		ConfigurationValue: p.ConfigurationValue,
		NumConfigurations:  p.NumConfigurations,
		NumInterfaces:      p.NumInterfaces,
	}
	if err := fixStringToWire(w.Path[:], p.Path); err != nil {
		return errors.Wrap(err, "bad device path")
	}
	if err := fixStringToWire(w.BusID[:], p.BusID); err != nil {
		return errors.Wrap(err, "bad device busid")
	}
	if err := binary.Write(e.w, binary.BigEndian, &w); err != nil {
		return errors.Wrap(err, "failed to write device fields")
	}
	return nil
}
