package usbip

// Direction of a USB transfer relative to the host issuing the command.
type Direction uint32

const (
	DirOut Direction = 0
	DirIn  Direction = 1
)

func (d Direction) String() string {
	switch d {
	case DirOut:
		return "out"
	case DirIn:
		return "in"
	}
	return "invalid"
}

func parseDirection(v uint32) (Direction, error) {
	switch Direction(v) {
	case DirOut, DirIn:
		return Direction(v), nil
	}
	return 0, protocolErrorf("invalid direction value 0x%08x", v)
}

// TransferFlags is the URB transfer flag bit-set modifying how a transfer
// is executed.
type TransferFlags uint32

const (
	FlagShortNotOk       TransferFlags = 0x001
	FlagISOASAP          TransferFlags = 0x002
	FlagNoTransferDMAMap TransferFlags = 0x004
	FlagNoFSBR           TransferFlags = 0x020
	FlagZeroPacket       TransferFlags = 0x040
	FlagNoInterrupt      TransferFlags = 0x080
	FlagFreeBuffer       TransferFlags = 0x100
	FlagDirMask          TransferFlags = 0x200

	transferFlagsMask = FlagShortNotOk | FlagISOASAP | FlagNoTransferDMAMap |
		FlagNoFSBR | FlagZeroPacket | FlagNoInterrupt | FlagFreeBuffer | FlagDirMask
)

// Has reports whether all bits in flag are set.
func (f TransferFlags) Has(flag TransferFlags) bool {
	return f&flag == flag
}

func parseTransferFlags(v uint32) (TransferFlags, error) {
	if v&^uint32(transferFlagsMask) != 0 {
		return 0, protocolErrorf("invalid transfer flag bits 0x%08x", v)
	}
	return TransferFlags(v), nil
}
