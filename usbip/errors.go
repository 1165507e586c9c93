package usbip

import (
	stderrors "errors"
	"fmt"
)

// ProtocolError reports a message whose bytes were read successfully but
// violate the protocol: a bad enumeration value, illegal flag bits, or a
// malformed fixed-width string. It is recoverable at the message boundary;
// the connection may continue with the next packet.
type ProtocolError struct {
	Reason string
}

func (e *ProtocolError) Error() string { return e.Reason }

func protocolErrorf(format string, args ...interface{}) error {
	return &ProtocolError{Reason: fmt.Sprintf(format, args...)}
}

// UnknownOpError reports an operation tag outside the known set. Decoding
// stops after the 4 tag bytes; nothing further is consumed.
type UnknownOpError struct {
	Tag uint32
}

func (e *UnknownOpError) Error() string {
	return fmt.Sprintf("unknown operation tag 0x%08x", e.Tag)
}

// IsProtocolError reports whether err is recoverable at the message
// boundary. Anything else (short reads, broken pipes) is fatal to the
// connection carrying the stream.
func IsProtocolError(err error) bool {
	var pe *ProtocolError
	var ue *UnknownOpError
	return stderrors.As(err, &pe) || stderrors.As(err, &ue)
}
