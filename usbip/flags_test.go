package usbip

import "testing"

func TestParseDirection(t *testing.T) {
	for _, tc := range []struct {
		value   uint32
		want    Direction
		wantErr bool
	}{
		{value: 0, want: DirOut},
		{value: 1, want: DirIn},
		{value: 2, wantErr: true},
		{value: 0xffffffff, wantErr: true},
	} {
		got, err := parseDirection(tc.value)
		if (err != nil) != tc.wantErr {
			t.Errorf("value %#x: unexpected error state: %v", tc.value, err)
			continue
		}
		if err != nil {
			if !IsProtocolError(err) {
				t.Errorf("value %#x: want protocol error, got %v", tc.value, err)
			}
			continue
		}
		if got != tc.want {
			t.Errorf("value %#x: got %v; want %v", tc.value, got, tc.want)
		}
	}
}

func TestParseTransferFlags(t *testing.T) {
	for _, tc := range []struct {
		value   uint32
		wantErr bool
	}{
		{value: 0},
		{value: uint32(FlagShortNotOk | FlagISOASAP)},
		{value: uint32(transferFlagsMask)},
		// 0x008 and 0x010 are holes in the flag vocabulary
		{value: 0x008, wantErr: true},
		{value: 0x010, wantErr: true},
		{value: 0x400, wantErr: true},
		{value: 0x80000001, wantErr: true},
	} {
		got, err := parseTransferFlags(tc.value)
		if (err != nil) != tc.wantErr {
			t.Errorf("value %#x: unexpected error state: %v", tc.value, err)
			continue
		}
		if err != nil {
			if !IsProtocolError(err) {
				t.Errorf("value %#x: want protocol error, got %v", tc.value, err)
			}
			continue
		}
		if uint32(got) != tc.value {
			t.Errorf("value %#x: got back %#x", tc.value, uint32(got))
		}
	}
}
