package xfs

import "encoding/binary"

// agiMagic is "XAGI", the magic number every AG inode information sector
// starts with.
const agiMagic = 0x58414749

// AGI is the decoded AG inode information sector: the subset of fields the
// inode btree walk needs, at the byte offsets the real xfs_agi_t struct
// uses.
type AGI struct {
	Magicnum  uint32
	Seqno     uint32
	Length    uint32
	Count     uint32
	Root      uint32
	Level     uint32
	Freecount uint32
	Newino    uint32
}

// decodeAGI parses an AG inode information sector. ok is false when the
// magic doesn't match, signalling the caller to skip this AG rather than
// trust a garbage root pointer.
func decodeAGI(sector []byte) (AGI, bool) {
	if len(sector) < 36 {
		return AGI{}, false
	}
	magic := binary.BigEndian.Uint32(sector[0:4])
	if magic != agiMagic {
		return AGI{}, false
	}
	return AGI{
		Magicnum:  magic,
		Seqno:     binary.BigEndian.Uint32(sector[8:12]),
		Length:    binary.BigEndian.Uint32(sector[12:16]),
		Count:     binary.BigEndian.Uint32(sector[16:20]),
		Root:      binary.BigEndian.Uint32(sector[20:24]),
		Level:     binary.BigEndian.Uint32(sector[24:28]),
		Freecount: binary.BigEndian.Uint32(sector[28:32]),
		Newino:    binary.BigEndian.Uint32(sector[32:36]),
	}, true
}
