package usbip

import (
	"bytes"
	"io"

	"github.com/efficientgo/core/errors"
)

func isASCII(buf []byte) bool {
	for _, b := range buf {
		if b > 0x7f {
			return false
		}
	}
	return true
}

// fixStringFromWire interprets a fixed-width field as an ASCII string
// terminated by the first NUL (or running to the end of the field).
func fixStringFromWire(buf []byte) (string, error) {
	if !isASCII(buf) {
		return "", protocolErrorf("fixed-width string field is not ASCII")
	}
	end := bytes.IndexByte(buf, 0)
	if end < 0 {
		end = len(buf)
	}
	return string(buf[:end]), nil
}

// fixStringToWire copies s into the fixed-width field dst, NUL-padded. One
// byte is reserved for the terminator; an over-long or non-ASCII value is
// rejected rather than truncated, since silent truncation would desync the
// receiver's fixed-offset parsing.
func fixStringToWire(dst []byte, s string) error {
	if len(s) > len(dst)-1 {
		return protocolErrorf("string %q does not fit in %d-byte field", s, len(dst))
	}
	if !isASCII([]byte(s)) {
		return protocolErrorf("string %q is not ASCII", s)
	}
	for i := range dst {
		dst[i] = 0
	}
	copy(dst, s)
	return nil
}

// readFixString reads an exactly size-byte string field from the stream.
func readFixString(r io.Reader, size int) (string, error) {
	buf := make([]byte, size)
	if _, err := io.ReadFull(r, buf); err != nil {
		return "", errors.Wrap(err, "failed to read fixed-width string field")
	}
	return fixStringFromWire(buf)
}

// writeFixString writes s as a size-byte NUL-padded string field.
func writeFixString(w io.Writer, s string, size int) error {
	buf := make([]byte, size)
	if err := fixStringToWire(buf, s); err != nil {
		return err
	}
	if _, err := w.Write(buf); err != nil {
		return errors.Wrap(err, "failed to write fixed-width string field")
	}
	return nil
}
