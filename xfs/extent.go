package xfs

import (
	"encoding/binary"

	"github.com/davidminor/uint128"
)

// Extent is a decoded in-inode extent descriptor: a contiguous run of
// physical blocks backing a contiguous range of a file's logical blocks.
type Extent struct {
	LogicalOffset uint64
	AbsoluteBlock uint64
	Count         uint32
	Unwritten     bool
}

// packedExtentSize is the fixed 128-bit (16-byte) width of one packed
// extent descriptor.
const packedExtentSize = 16

// decodePackedExtent unpacks one big-endian packed extent descriptor: a
// 1-bit unwritten flag, a 54-bit logical offset, a 52-bit absolute block
// number split into an AG index and a block-within-AG (the split point
// depends on agBlockLog), and a 21-bit length. ok is false for the
// reserved all-zero "unused slot" encoding.
//
// The 52-bit absolute block field straddles the high/low 64-bit halves of
// the 128-bit value, the same way xfs_bmbt_rec_t's startblock does; the
// combining arithmetic below (9 low bits of the high half, 43 high bits of
// the low half) mirrors that on-disk layout.
func decodePackedExtent(raw []byte, agBlocks uint32, agBlockLog uint8) (Extent, bool) {
	if len(raw) < packedExtentSize {
		return Extent{}, false
	}

	allZero := true
	for _, b := range raw[:packedExtentSize] {
		if b != 0 {
			allZero = false
			break
		}
	}
	if allZero {
		return Extent{}, false
	}

	u := uint128.Uint128{
		H: binary.BigEndian.Uint64(raw[0:8]),
		L: binary.BigEndian.Uint64(raw[8:16]),
	}

	unwritten := u.H>>63 != 0
	logicalOffset := (u.H >> 9) & mask64(54)

	absBlockHigh := u.H & mask64(9)
	absBlock := (absBlockHigh << 43) | (u.L >> 21)

	ablock := absBlock & mask64(uint(agBlockLog))
	aag := absBlock >> uint(agBlockLog)

	length := uint32(u.L & mask64(21))

	return Extent{
		LogicalOffset: logicalOffset,
		AbsoluteBlock: aag*uint64(agBlocks) + ablock,
		Count:         length,
		Unwritten:     unwritten,
	}, true
}

func mask64(n uint) uint64 {
	if n >= 64 {
		return ^uint64(0)
	}
	return (uint64(1) << n) - 1
}
