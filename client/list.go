package client

import (
	"github.com/efficientgo/core/errors"

	"github.com/MatthiasValvekens/vusbip/usbip"
)

// List asks the server for its exportable devices.
func (c *Connection) List() ([]usbip.DeviceDescriptor, error) {
	if err := c.armDeadline(); err != nil {
		return nil, err
	}

	if err := usbip.WritePacket(c.conn, &usbip.ReqDevList{}); err != nil {
		return nil, errors.Wrap(err, "failed to write devlist command")
	}

	pkt, err := usbip.ReadPacket(c.conn)
	if err != nil {
		return nil, errors.Wrap(err, "failed to read response to devlist command")
	}

	rep, ok := pkt.(*usbip.RepDevList)
	if !ok {
		return nil, errors.Newf("unexpected %s response to devlist command", pkt.Op())
	}
	if rep.Status != 0 {
		return nil, errors.Newf("devlist command returned status 0x%08x", rep.Status)
	}

	return rep.Devices, nil
}
