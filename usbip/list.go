package usbip

import (
	"github.com/efficientgo/core/errors"
)

// ReqDevList asks the server for its exportable device list. The message
// carries no payload beyond a reserved status field.
type ReqDevList struct{}

func (*ReqDevList) Op() Op { return OpReqDevList }

func (*ReqDevList) readBody(d *Decoder) error {
	// reserved field, consumed and ignored
	if _, err := d.readU32(); err != nil {
		return errors.Wrap(err, "failed to read reserved field")
	}
	return nil
}

func (*ReqDevList) writeBody(e *Encoder) error {
	return e.writeU32(0)
}

// RepDevList is the server's exportable device list.
type RepDevList struct {
	Status  uint32
	Devices []DeviceDescriptor
}

func (*RepDevList) Op() Op { return OpRepDevList }

func (p *RepDevList) readBody(d *Decoder) error {
	status, err := d.readU32()
	if err != nil {
		return errors.Wrap(err, "failed to read status")
	}
	numDevices, err := d.readU32()
	if err != nil {
		return errors.Wrap(err, "failed to read device count")
	}
	p.Status = status
	// the count is peer-controlled, so grow the slice as entries arrive
	// instead of trusting it for a single allocation
	for i := uint32(0); i < numDevices; i++ {
		dev, err := readDeviceDescriptor(d)
		if err != nil {
			return err
		}
		p.Devices = append(p.Devices, dev)
	}
	return nil
}

func (p *RepDevList) writeBody(e *Encoder) error {
	if err := e.writeU32(p.Status); err != nil {
		return errors.Wrap(err, "failed to write status")
	}
	if err := e.writeU32(uint32(len(p.Devices))); err != nil {
		return errors.Wrap(err, "failed to write device count")
	}
	for i := range p.Devices {
		if err := writeDeviceDescriptor(e, &p.Devices[i]); err != nil {
			return err
		}
	}
	return nil
}
