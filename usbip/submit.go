package usbip

import (
	"encoding/binary"
	"io"

	"github.com/efficientgo/core/errors"
	"github.com/go-kit/log/level"
)

// CmdSubmit carries one USB transfer request from client to server. Data is
// the outgoing transfer buffer; on the wire it is present if and only if
// Direction is DirOut, with length equal to BufferLength.
type CmdSubmit struct {
	Seqnum        uint32
	DevID         uint32
	Direction     Direction
	Ep            uint32
	TransferFlags TransferFlags
	BufferLength  uint32
	StartFrame    uint32
	NumPackets    uint32
	Interval      uint32
	Setup         [8]byte
	Data          []byte
}

type cmdSubmitWire struct {
	Seqnum        uint32
	DevID         uint32
	Direction     uint32
	Ep            uint32
	TransferFlags uint32
	BufferLength  uint32
	StartFrame    uint32
	NumPackets    uint32
	Interval      uint32
	Setup         [8]byte
}

func (*CmdSubmit) Op() Op { return OpCmdSubmit }

func (p *CmdSubmit) readBody(d *Decoder) error {
	var w cmdSubmitWire
	if err := binary.Read(d.r, binary.BigEndian, &w); err != nil {
		return errors.Wrap(err, "failed to read submit fields")
	}
	direction, err := parseDirection(w.Direction)
	if err != nil {
		return err
	}
	flags, err := parseTransferFlags(w.TransferFlags)
	if err != nil {
		return err
	}
	_ = level.Debug(d.logger).Log(
		"op", OpCmdSubmit,
		"seqnum", w.Seqnum,
		"devid", w.DevID,
		"direction", direction,
		"ep", w.Ep,
		"transfer_flags", w.TransferFlags,
		"buffer_length", w.BufferLength,
		"start_frame", w.StartFrame,
		"num_packets", w.NumPackets,
		"interval", w.Interval,
	)
	p.Seqnum = w.Seqnum
	p.DevID = w.DevID
	p.Direction = direction
	p.Ep = w.Ep
	p.TransferFlags = flags
	p.BufferLength = w.BufferLength
	p.StartFrame = w.StartFrame
	p.NumPackets = w.NumPackets
	p.Interval = w.Interval
	p.Setup = w.Setup
	if direction == DirOut {
		p.Data = make([]byte, w.BufferLength)
		if _, err := io.ReadFull(d.r, p.Data); err != nil {
			return errors.Wrap(err, "failed to read transfer buffer")
		}
	}
	return nil
}

func (p *CmdSubmit) writeBody(e *Encoder) error {
	w := cmdSubmitWire{
		Seqnum:        p.Seqnum,
		DevID:         p.DevID,
		Direction:     uint32(p.Direction),
		Ep:            p.Ep,
		TransferFlags: uint32(p.TransferFlags),
		BufferLength:  p.BufferLength,
		StartFrame:    p.StartFrame,
		NumPackets:    p.NumPackets,
		Interval:      p.Interval,
		Setup:         p.Setup,
	}
	if err := binary.Write(e.w, binary.BigEndian, &w); err != nil {
		return errors.Wrap(err, "failed to write submit fields")
	}
	// the buffer is written whenever present; keeping Data consistent with
	// Direction and BufferLength is the caller's job
	if p.Data != nil {
		if _, err := e.w.Write(p.Data); err != nil {
			return errors.Wrap(err, "failed to write transfer buffer")
		}
	}
	return nil
}

// RetSubmit reports completion of a submitted transfer. Data carries the
// incoming transfer buffer; on the wire it is present if and only if
// Direction is DirIn, with length equal to ActualLength.
type RetSubmit struct {
	Seqnum       uint32
	DevID        uint32
	Direction    Direction
	Ep           uint32
	Status       uint32
	ActualLength uint32
	StartFrame   uint32
	NumPackets   uint32
	ErrorCount   uint32
	Setup        [8]byte
	Data         []byte
}

type retSubmitWire struct {
	Seqnum       uint32
	DevID        uint32
	Direction    uint32
	Ep           uint32
	Status       uint32
	ActualLength uint32
	StartFrame   uint32
	NumPackets   uint32
	ErrorCount   uint32
	Setup        [8]byte
}

func (*RetSubmit) Op() Op { return OpRetSubmit }

func (p *RetSubmit) readBody(d *Decoder) error {
	var w retSubmitWire
	if err := binary.Read(d.r, binary.BigEndian, &w); err != nil {
		return errors.Wrap(err, "failed to read submit reply fields")
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
	p.ActualLength = w.ActualLength
	p.StartFrame = w.StartFrame
	p.NumPackets = w.NumPackets
	p.ErrorCount = w.ErrorCount
	p.Setup = w.Setup
	if direction == DirIn {
		p.Data = make([]byte, w.ActualLength)
		if _, err := io.ReadFull(d.r, p.Data); err != nil {
			return errors.Wrap(err, "failed to read transfer buffer")
		}
	}
	return nil
}

func (p *RetSubmit) writeBody(e *Encoder) error {
	w := retSubmitWire{
		Seqnum:       p.Seqnum,
		DevID:        p.DevID,
		Direction:    uint32(p.Direction),
		Ep:           p.Ep,
		Status:       p.Status,
		ActualLength: p.ActualLength,
		StartFrame:   p.StartFrame,
		NumPackets:   p.NumPackets,
		ErrorCount:   p.ErrorCount,
		Setup:        p.Setup,
	}
	if err := binary.Write(e.w, binary.BigEndian, &w); err != nil {
		return errors.Wrap(err, "failed to write submit reply fields")
	}
	if p.Data != nil {
		if _, err := e.w.Write(p.Data); err != nil {
			return errors.Wrap(err, "failed to write transfer buffer")
		}
	}
	return nil
}
