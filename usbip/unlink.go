package usbip

import (
	"encoding/binary"

	"github.com/efficientgo/core/errors"
)

// CmdUnlink cancels the in-flight transfer identified by UnlinkSeqnum. The
// wire form pads the command area to the common 48-byte command header.
type CmdUnlink struct {
	Seqnum       uint32
	DevID        uint32
	Direction    Direction
	Ep           uint32
	UnlinkSeqnum uint32
}

type cmdUnlinkWire struct {
	Seqnum       uint32
	DevID        uint32
	Direction    uint32
	Ep           uint32
	UnlinkSeqnum uint32
	_            [24]byte
}

func (*CmdUnlink) Op() Op { return OpCmdUnlink }

func (p *CmdUnlink) readBody(d *Decoder) error {
	var w cmdUnlinkWire
	if err := binary.Read(d.r, binary.BigEndian, &w); err != nil {
		return errors.Wrap(err, "failed to read unlink fields")
	}
	direction, err := parseDirection(w.Direction)
	if err != nil {
		return err
	}
	p.Seqnum = w.Seqnum
	p.DevID = w.DevID
	p.Direction = direction
	p.Ep = w.Ep
	p.UnlinkSeqnum = w.UnlinkSeqnum
	return nil
}

func (p *CmdUnlink) writeBody(e *Encoder) error {
	w := cmdUnlinkWire{
		Seqnum:       p.Seqnum,
		DevID:        p.DevID,
		Direction:    uint32(p.Direction),
		Ep:           p.Ep,
		UnlinkSeqnum: p.UnlinkSeqnum,
	}
	return errors.Wrap(binary.Write(e.w, binary.BigEndian, &w), "failed to write unlink fields")
}

// RetUnlink reports the outcome of a cancellation request.
type RetUnlink struct {
	Seqnum    uint32
	DevID     uint32
	Direction Direction
	Ep        uint32
	Status    uint32
}

type retUnlinkWire struct {
	Seqnum    uint32
	DevID     uint32
	Direction uint32
	Ep        uint32
	Status    uint32
	_         [24]byte
}

func (*RetUnlink) Op() Op { return OpRetUnlink }

func (p *RetUnlink) readBody(d *Decoder) error {
	var w retUnlinkWire
	if err := binary.Read(d.r, binary.BigEndian, &w); err != nil {
		return errors.Wrap(err, "failed to read unlink reply fields")
	}
	direction, err := parseDirection(w.Direction)
	if err != nil {
		return err
	}
	p.Seqnum = w.Seqnum
	p.DevID = w.DevID
	p.Direction = direction
	p.Ep = w.Ep
	p.Status = w.Status
	return nil
}

func (p *RetUnlink) writeBody(e *Encoder) error {
	w := retUnlinkWire{
		Seqnum:    p.Seqnum,
		DevID:     p.DevID,
		Direction: uint32(p.Direction),
		Ep:        p.Ep,
		Status:    p.Status,
	}
	return errors.Wrap(binary.Write(e.w, binary.BigEndian, &w), "failed to write unlink reply fields")
}
