package client

import (
	"github.com/efficientgo/core/errors"

	"github.com/MatthiasValvekens/vusbip/usbip"
)

// Import asks the server to attach the device with the given bus ID.
func (c *Connection) Import(busID string) (*usbip.RepImport, error) {
	if err := c.armDeadline(); err != nil {
		return nil, err
	}

	if err := usbip.WritePacket(c.conn, &usbip.ReqImport{BusID: busID}); err != nil {
		return nil, errors.Wrap(err, "failed to write import command")
	}

	pkt, err := usbip.ReadPacket(c.conn)
	if err != nil {
		return nil, errors.Wrap(err, "failed to read import response")
	}

	rep, ok := pkt.(*usbip.RepImport)
	if !ok {
		return nil, errors.Newf("unexpected %s response to import command", pkt.Op())
	}
	if rep.Status != 0 {
		return nil, errors.Newf("import command returned status 0x%08x", rep.Status)
	}
	if rep.BusID != busID {
		return nil, errors.New("import command returned unexpected busId")
	}

	return rep, nil
}
