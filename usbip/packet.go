// Package usbip implements the USB/IP wire protocol: the binary message
// format exchanged between a client importing remote USB devices and the
// server exporting them. The package is a pure codec; it owns no sockets
// and keeps no state between calls.
package usbip

import (
	"encoding/binary"
	"fmt"
	"io"

	"github.com/efficientgo/core/errors"
	"github.com/go-kit/log"
)

// Op identifies a packet variant by its 4-byte big-endian wire tag.
type Op uint32

const (
	OpReqDevList Op = 0x01118005
	OpRepDevList Op = 0x01110005
	OpReqImport  Op = 0x01118003
	OpRepImport  Op = 0x01110003
	OpCmdSubmit  Op = 0x00000001
	OpCmdUnlink  Op = 0x00000002
	OpRetSubmit  Op = 0x00000003
	OpRetUnlink  Op = 0x00000004
)

var opNames = map[Op]string{
	OpReqDevList: "OP_REQ_DEVLIST",
	OpRepDevList: "OP_REP_DEVLIST",
	OpReqImport:  "OP_REQ_IMPORT",
	OpRepImport:  "OP_REP_IMPORT",
	OpCmdSubmit:  "USBIP_CMD_SUBMIT",
	OpCmdUnlink:  "USBIP_CMD_UNLINK",
	OpRetSubmit:  "USBIP_RET_SUBMIT",
	OpRetUnlink:  "USBIP_RET_UNLINK",
}

func (op Op) String() string {
	if name, ok := opNames[op]; ok {
		return name
	}
	return fmt.Sprintf("0x%08x", uint32(op))
}

// Packet is a single USB/IP message. The set of implementations is closed:
// one type per operation tag.
type Packet interface {
	// Op returns the operation tag identifying this packet variant.
	Op() Op

	readBody(d *Decoder) error
	writeBody(e *Encoder) error
}

// packetConstructors maps every known tag to a constructor for the matching
// variant. Decode fails with UnknownOpError on any tag not listed here.
var packetConstructors = map[Op]func() Packet{
	OpReqDevList: func() Packet { return &ReqDevList{} },
	OpRepDevList: func() Packet { return &RepDevList{} },
	OpReqImport:  func() Packet { return &ReqImport{} },
	OpRepImport:  func() Packet { return &RepImport{} },
	OpCmdSubmit:  func() Packet { return &CmdSubmit{} },
	OpRetSubmit:  func() Packet { return &RetSubmit{} },
	OpCmdUnlink:  func() Packet { return &CmdUnlink{} },
	OpRetUnlink:  func() Packet { return &RetUnlink{} },
}

// Decoder reads packets from a byte stream. It performs blocking sequential
// reads only and never buffers beyond the packet being decoded.
type Decoder struct {
	r      io.Reader
	logger log.Logger
}

func NewDecoder(r io.Reader) *Decoder {
	return &Decoder{r: r, logger: log.NewNopLogger()}
}

// WithLogger attaches a logger receiving field-level trace output during
// decoding. The logger has no effect on the decode result.
func (d *Decoder) WithLogger(logger log.Logger) *Decoder {
	if logger != nil {
		d.logger = logger
	}
	return d
}

// Decode reads exactly one packet from the stream. On failure no packet
// value is returned; if the failure is a protocol error the tagged message
// was consumed up to the offending field and the stream may be reused,
// otherwise the connection should be considered dead.
func (d *Decoder) Decode() (Packet, error) {
	var tag uint32
	if err := binary.Read(d.r, binary.BigEndian, &tag); err != nil {
		return nil, errors.Wrap(err, "failed to read operation tag")
	}
	construct, ok := packetConstructors[Op(tag)]
	if !ok {
		return nil, &UnknownOpError{Tag: tag}
	}
	pkt := construct()
	if err := pkt.readBody(d); err != nil {
		return nil, errors.Wrapf(err, "failed to decode %s", pkt.Op())
	}
	return pkt, nil
}

func (d *Decoder) readU32() (uint32, error) {
	var v uint32
	err := binary.Read(d.r, binary.BigEndian, &v)
	return v, err
}

// Encoder writes packets to a byte stream.
type Encoder struct {
	w io.Writer
}

func NewEncoder(w io.Writer) *Encoder {
	return &Encoder{w: w}
}

// Encode writes p's exact wire representation, tag first. A failed encode
// may leave a partial packet behind; the caller must not reuse the stream
// without resynchronizing.
func (e *Encoder) Encode(p Packet) error {
	if err := binary.Write(e.w, binary.BigEndian, uint32(p.Op())); err != nil {
		return errors.Wrapf(err, "failed to write %s tag", p.Op())
	}
	if err := p.writeBody(e); err != nil {
		return errors.Wrapf(err, "failed to encode %s", p.Op())
	}
	return nil
}

func (e *Encoder) writeU32(v uint32) error {
	return binary.Write(e.w, binary.BigEndian, v)
}

// ReadPacket decodes a single packet from r.
func ReadPacket(r io.Reader) (Packet, error) {
	return NewDecoder(r).Decode()
}

// WritePacket encodes a single packet to w.
func WritePacket(w io.Writer, p Packet) error {
	return NewEncoder(w).Encode(p)
}
