package xfs

import (
	"encoding/binary"
	"io"

	"golang.org/x/xerrors"
)

// Conservative default used to size the very first read, before the
// superblock itself has told us the real sector size. 512 bytes is the
// smallest sector XFS supports and is always enough to contain the
// superblock fields this package cares about.
const defaultSectorSize = 512

// Geometry is the immutable set of filesystem parameters read once from
// the superblock. It is never reassigned after construction; every
// traversal function takes it as an explicit argument rather than reaching
// for package-global state.
type Geometry struct {
	BlockSize      uint32
	SectorSize     uint16
	InodeSize      uint16
	InodesPerBlock uint16
	AGBlocks       uint32
	AGCount        uint32
	DataBlocks     uint64
	AGBlockLog     uint8
	InodeCount     uint64
}

// AGByteOffset returns the absolute byte offset of the start of AG ag.
func (g Geometry) AGByteOffset(ag uint32) int64 {
	return int64(ag) * int64(g.AGBlocks) * int64(g.BlockSize)
}

// BlockByteOffset returns the absolute byte offset of block-within-AG blk
// inside AG ag.
func (g Geometry) BlockByteOffset(ag uint32, blk uint32) int64 {
	return g.AGByteOffset(ag) + int64(blk)*int64(g.BlockSize)
}

// ParseSuperBlock reads sector 0 of the image and extracts geometry. r must
// be positioned so that offset 0 is the start of the image (callers
// typically pass an io.SectionReader based at the start of the file).
func ParseSuperBlock(r io.ReaderAt) (Geometry, error) {
	buf := make([]byte, defaultSectorSize)
	n, err := r.ReadAt(buf, 0)
	if err != nil && err != io.EOF {
		return Geometry{}, xerrors.Errorf("failed to read superblock: %w", err)
	}
	if n < defaultSectorSize {
		return Geometry{}, xerrors.Errorf("image shorter than one sector: read %d of %d bytes", n, defaultSectorSize)
	}

	var g Geometry
	g.BlockSize = binary.BigEndian.Uint32(buf[4:8])
	g.DataBlocks = binary.BigEndian.Uint64(buf[8:16])
	g.AGBlocks = binary.BigEndian.Uint32(buf[84:88])
	g.AGCount = binary.BigEndian.Uint32(buf[88:92])
	g.SectorSize = binary.BigEndian.Uint16(buf[102:104])
	g.InodeSize = binary.BigEndian.Uint16(buf[104:106])
	g.InodesPerBlock = binary.BigEndian.Uint16(buf[106:108])
	g.AGBlockLog = buf[124]
	g.InodeCount = binary.BigEndian.Uint64(buf[128:136])

	if g.BlockSize == 0 || g.AGBlocks == 0 || g.InodesPerBlock == 0 {
		return Geometry{}, xerrors.New("impossible geometry: zero block size, AG size, or inodes-per-block")
	}

	return g, nil
}
