package xfs

import "encoding/binary"

const (
	magicIABT = "IABT" // old format inode btree, 16-byte header
	magicIAB3 = "IAB3" // v3 format inode btree, 56-byte header

	headerSizeIABT = 16
	headerSizeIAB3 = 56

	leafRecordSize = 16
	ptrSize        = 4
)

// btreeHeader is the decoded common prefix of an inode btree block: magic
// recognized, level, record count and the header size implied by the
// format, needed to locate the record/pointer array that follows.
type btreeHeader struct {
	level      uint16
	numrecs    uint16
	headerSize int
	recognized bool
}

// decodeBtreeHeader inspects the first bytes of a btree block. An
// unrecognized magic is not an error: the caller skips the block rather
// than aborting the walk over it.
func decodeBtreeHeader(block []byte) btreeHeader {
	if len(block) < 8 {
		return btreeHeader{}
	}
	magic := string(block[0:4])

	var headerSize int
	switch magic {
	case magicIABT:
		headerSize = headerSizeIABT
	case magicIAB3:
		headerSize = headerSizeIAB3
	default:
		return btreeHeader{}
	}

	return btreeHeader{
		level:      binary.BigEndian.Uint16(block[4:6]),
		numrecs:    binary.BigEndian.Uint16(block[6:8]),
		headerSize: headerSize,
		recognized: true,
	}
}

// childPointers returns the numrecs child block numbers (relative to AG)
// of an internal node. The pointer array begins at (blockSize+headerSize)/2,
// after the key array that occupies the first half of the block.
func (h btreeHeader) childPointers(block []byte, blockSize int) []uint32 {
	start := (blockSize + h.headerSize) / 2
	ptrs := make([]uint32, 0, h.numrecs)
	for i := 0; i < int(h.numrecs); i++ {
		off := start + i*ptrSize
		if off+ptrSize > len(block) {
			break
		}
		ptrs = append(ptrs, binary.BigEndian.Uint32(block[off:off+ptrSize]))
	}
	return ptrs
}

// leafAGIStarts returns the agi_start field (starting inode number of a
// 64-inode chunk) of each of the numrecs leaf records.
func (h btreeHeader) leafAGIStarts(block []byte) []uint32 {
	starts := make([]uint32, 0, h.numrecs)
	for i := 0; i < int(h.numrecs); i++ {
		off := h.headerSize + i*leafRecordSize
		if off+4 > len(block) {
			break
		}
		starts = append(starts, binary.BigEndian.Uint32(block[off:off+4]))
	}
	return starts
}
