// Package blockcopy transfers fixed-size blocks directly from a source
// image into recovered files using positioned reads and writes.
package blockcopy

import (
	"io"
	"os"

	"golang.org/x/xerrors"
)

// Copier reads fixed-size blocks from a source image at arbitrary block
// numbers and writes them into destination files at arbitrary byte
// offsets.
type Copier struct {
	src       io.ReaderAt
	blockSize int64
}

// New builds a Copier reading blockSize-sized blocks from src.
func New(src io.ReaderAt, blockSize uint32) *Copier {
	return &Copier{src: src, blockSize: int64(blockSize)}
}

// CopyBlocks reads count consecutive blocks starting at srcBlock and writes
// them to dstOffset bytes into the file at dstPath, creating it if
// necessary. The destination is never truncated, so repeated calls for the
// same file accumulate extents without clobbering bytes an earlier call
// already wrote.
func (c *Copier) CopyBlocks(dstPath string, srcBlock uint64, dstOffset int64, count uint32) error {
	flags := os.O_CREATE | os.O_WRONLY
	f, err := os.OpenFile(dstPath, flags, 0o644)
	if err != nil {
		return xerrors.Errorf("failed to open destination file: %w", err)
	}
	defer f.Close()

	buf := make([]byte, c.blockSize)
	srcOff := int64(srcBlock) * c.blockSize

	for i := uint32(0); i < count; i++ {
		n, err := c.src.ReadAt(buf, srcOff)
		if err != nil && err != io.EOF {
			return xerrors.Errorf("failed to read source block %d: %w", srcBlock+uint64(i), err)
		}
		if _, err := f.WriteAt(buf[:n], dstOffset); err != nil {
			return xerrors.Errorf("failed to write recovered bytes: %w", err)
		}
		srcOff += c.blockSize
		dstOffset += int64(n)
	}
	return nil
}

// ReadProbe reads up to len(buf) bytes starting at srcBlock without
// touching any destination file, for sniffing content type ahead of a
// full copy.
func (c *Copier) ReadProbe(srcBlock uint64, buf []byte) (int, error) {
	n, err := c.src.ReadAt(buf, int64(srcBlock)*c.blockSize)
	if err != nil && err != io.EOF {
		return n, xerrors.Errorf("failed to read probe block %d: %w", srcBlock, err)
	}
	return n, nil
}
