// Package utils provides a positioned random-access view over a
// filesystem image, reading fixed-size blocks and sectors at computed
// byte offsets.
package utils

import (
	"fmt"
	"io"

	"golang.org/x/xerrors"
)

const (
	BlockSize  = 4096
	SectorSize = 512
)

var allowedSectorSize = []int{512, 4096}

// ChunkReader reads fixed-size blocks and sectors from an io.ReaderAt at
// caller-supplied byte offsets. It holds no position of its own: every read
// is addressed explicitly, so a ChunkReader may safely be shared by
// concurrent callers even though nothing in this codebase currently does
// so.
type ChunkReader struct {
	r          io.ReaderAt
	blockSize  int
	sectorSize int
}

// NewChunkReader builds a ChunkReader over r using the block and sector
// sizes read from the image's own superblock, validated against the sector
// sizes XFS actually uses. A zero blockSize falls back to the package
// default.
func NewChunkReader(r io.ReaderAt, blockSize, sectorSize int) (*ChunkReader, error) {
	valid := false
	for _, s := range allowedSectorSize {
		if s == sectorSize {
			valid = true
			break
		}
	}
	if !valid {
		return nil, fmt.Errorf("failed to instantiate chunk reader, invalid sector size: %d", sectorSize)
	}
	if blockSize == 0 {
		blockSize = BlockSize
	}

	return &ChunkReader{
		r:          r,
		blockSize:  blockSize,
		sectorSize: sectorSize,
	}, nil
}

// ReadBlock reads one block-sized chunk at absolute byte offset off.
func (c *ChunkReader) ReadBlock(off int64) ([]byte, error) {
	buf := make([]byte, c.blockSize)
	n, err := c.r.ReadAt(buf, off)
	if err != nil && err != io.EOF {
		return nil, xerrors.Errorf("failed to read block at offset %d: %w", off, err)
	}
	if n != c.blockSize {
		return nil, fmt.Errorf("block size error at offset %d, expected(%d), actual(%d)", off, c.blockSize, n)
	}
	return buf, nil
}

// ReadSector reads one sector-sized chunk at absolute byte offset off.
func (c *ChunkReader) ReadSector(off int64) ([]byte, error) {
	buf := make([]byte, c.sectorSize)
	n, err := c.r.ReadAt(buf, off)
	if err != nil && err != io.EOF {
		return nil, xerrors.Errorf("failed to read sector at offset %d: %w", off, err)
	}
	if n != c.sectorSize {
		return nil, fmt.Errorf("sector size error at offset %d, read %d byte", off, n)
	}
	return buf, nil
}
