package usbip

import (
	"bytes"
	"strings"
	"testing"
)

func TestReadFixString(t *testing.T) {
	for _, tc := range []struct {
		name    string
		data    []byte
		size    int
		want    string
		wantErr bool
	}{
		{
			name: "padded",
			data: []byte{'a', 'b', 'c', 0, 0},
			size: 5,
			want: "abc",
		},
		{
			name: "full width without terminator",
			data: []byte{'a', 'b', 'c'},
			size: 3,
			want: "abc",
		},
		{
			name: "stops at first nul",
			data: []byte{'a', 0, 'c', 0, 0},
			size: 5,
			want: "a",
		},
		{
			name:    "non-ascii",
			data:    []byte{'a', 0xc3, 0xa9, 0, 0},
			size:    5,
			wantErr: true,
		},
		{
			name:    "short read",
			data:    []byte{'a', 'b'},
			size:    5,
			wantErr: true,
		},
	} {
		t.Run(tc.name, func(t *testing.T) {
			got, err := readFixString(bytes.NewReader(tc.data), tc.size)
			if (err != nil) != tc.wantErr {
				t.Fatalf("unexpected error state: %v", err)
			}
			if err != nil {
				return
			}
			if got != tc.want {
				t.Errorf("got %q; want %q", got, tc.want)
			}
		})
	}
}

func TestWriteFixString(t *testing.T) {
	var buf bytes.Buffer
	if err := writeFixString(&buf, "abc", 5); err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(buf.Bytes(), []byte{97, 98, 99, 0, 0}) {
		t.Errorf("got %v; want abc plus two nul bytes", buf.Bytes())
	}
}

func TestWriteFixStringBoundary(t *testing.T) {
	// one byte is reserved for the terminator, so width-1 is the longest
	// value that fits
	var buf bytes.Buffer
	exact := strings.Repeat("x", 31)
	if err := writeFixString(&buf, exact, 32); err != nil {
		t.Fatalf("length 31 should fit in a 32-byte field: %v", err)
	}
	got, err := readFixString(bytes.NewReader(buf.Bytes()), 32)
	if err != nil {
		t.Fatal(err)
	}
	if got != exact {
		t.Errorf("round trip mismatch: got %q", got)
	}

	err = writeFixString(&buf, strings.Repeat("x", 32), 32)
	if err == nil {
		t.Error("length 32 must not fit in a 32-byte field")
	}
	if !IsProtocolError(err) {
		t.Errorf("over-long string should be a protocol error, got %v", err)
	}
}

func TestWriteFixStringASCIIGuard(t *testing.T) {
	var buf bytes.Buffer
	err := writeFixString(&buf, "caf\xc3\xa9", 32)
	if err == nil {
		t.Fatal("non-ASCII string must be rejected")
	}
	if !IsProtocolError(err) {
		t.Errorf("non-ASCII string should be a protocol error, got %v", err)
	}
}
