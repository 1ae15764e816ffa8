package xfs

import (
	"encoding/binary"
	"sort"
	"time"

	"golang.org/x/xerrors"

	"github.com/bkdwt/xfs-undelete/xfs/utils"
)

// inodeMagic is the 2-byte "IN" magic every live or freed inode slot
// starts with.
var inodeMagic = [2]byte{'I', 'N'}

// deletedSignature is the 8-byte pattern (magic, plus zeroed version/format
// and freed-regular-file mode bits) observed on a freshly deleted
// regular-file inode whose on-disk image still carries its extent map.
// This is empirical rather than documented XFS behavior, so other XFS
// versions may stamp a different version/format/mode encoding on the same
// post-deletion state; additional accepted signatures would need to be
// added here to cover them.
var deletedSignature = [8]byte{0x49, 0x4E, 0x00, 0x00, 0x03, 0x02, 0x00, 0x00}

const (
	ctimeOffset      = 48
	inodeNumOffset   = 152
	extentArrayStart = 176

	unrepresentableLogicalByte = uint64(1)<<63 - 1
)

// RecoveredInode is a deleted inode whose surviving extent map passed every
// validity check.
type RecoveredInode struct {
	Ino     uint64
	Ctime   time.Time
	Extents []Extent // ordered by LogicalOffset ascending; Extents[0].LogicalOffset == 0
}

// ScanOptions configures a Scanner.
type ScanOptions struct {
	// MinCtime skips any inode whose change time is strictly earlier. The
	// zero Time means no filter is applied.
	MinCtime time.Time

	// OnProgress is called for every candidate "IN"-magic slot seen,
	// before the deleted-signature check. It is advisory and must not
	// affect recovery output.
	OnProgress func(ino uint64, percentExamined float64)
}

// Scanner iterates the fixed-size inode slots of a cluster block, filters
// for the deleted signature, decodes change time and packed extents, and
// hands surviving candidates to a caller-supplied callback.
type Scanner struct {
	cr       *utils.ChunkReader
	geo      Geometry
	opts     ScanOptions
	examined uint64
}

// NewScanner builds a Scanner over geo using cr for block reads.
func NewScanner(cr *utils.ChunkReader, geo Geometry, opts ScanOptions) *Scanner {
	return &Scanner{cr: cr, geo: geo, opts: opts}
}

// ScanClusterBlock reads the inode cluster block at (ag, clusterBlock) and
// invokes onCandidate for every surviving deleted inode, in slot-offset
// ascending order.
func (s *Scanner) ScanClusterBlock(ag uint32, clusterBlock uint32, onCandidate func(RecoveredInode) error) error {
	off := s.geo.BlockByteOffset(ag, clusterBlock)
	block, err := s.cr.ReadBlock(off)
	if err != nil {
		return xerrors.Errorf("failed to read inode cluster block: %w", err)
	}

	inodeSize := int(s.geo.InodeSize)
	if inodeSize == 0 {
		return xerrors.New("zero inode size")
	}

	for slot := 0; slot+inodeSize <= len(block); slot += inodeSize {
		s.examine(block[slot:slot+inodeSize], onCandidate)
	}
	return nil
}

func (s *Scanner) examine(slot []byte, onCandidate func(RecoveredInode) error) {
	if len(slot) < extentArrayStart {
		return
	}
	if slot[0] != inodeMagic[0] || slot[1] != inodeMagic[1] {
		return
	}

	s.examined++
	ino := binary.BigEndian.Uint64(slot[inodeNumOffset : inodeNumOffset+8])
	if s.opts.OnProgress != nil {
		percent := 0.0
		if s.geo.InodeCount > 0 {
			percent = float64(s.examined) / float64(s.geo.InodeCount) * 100
		}
		s.opts.OnProgress(ino, percent)
	}

	for i, b := range deletedSignature {
		if slot[i] != b {
			return
		}
	}

	ctimeSeconds := binary.BigEndian.Uint32(slot[ctimeOffset : ctimeOffset+4])
	if !s.opts.MinCtime.IsZero() && int64(ctimeSeconds) < s.opts.MinCtime.Unix() {
		return
	}

	extents := s.decodeExtents(slot)
	if len(extents) == 0 {
		return
	}
	if _, hasZero := extents[0]; !hasZero {
		return
	}

	ordered := make([]Extent, 0, len(extents))
	for _, e := range extents {
		ordered = append(ordered, e)
	}
	sort.Slice(ordered, func(i, j int) bool {
		return ordered[i].LogicalOffset < ordered[j].LogicalOffset
	})

	recovered := RecoveredInode{
		Ino:     ino,
		Ctime:   time.Unix(int64(ctimeSeconds), 0),
		Extents: ordered,
	}

	if onCandidate != nil {
		if err := onCandidate(recovered); err != nil {
			return
		}
	}
}

// decodeExtents walks the in-inode extent array, discarding unwritten
// extents, extents whose start block plus length is at or beyond the
// filesystem's data block count, and extents whose logical byte offset overflows a signed 64-bit file
// size. Surviving extents are keyed by logical offset, so a duplicate
// offset keeps whichever copy was decoded last.
func (s *Scanner) decodeExtents(slot []byte) map[uint64]Extent {
	extents := make(map[uint64]Extent)

	for off := extentArrayStart; off+packedExtentSize <= len(slot); off += packedExtentSize {
		extent, ok := decodePackedExtent(slot[off:off+packedExtentSize], s.geo.AGBlocks, s.geo.AGBlockLog)
		if !ok {
			continue
		}
		if extent.Unwritten {
			continue
		}
		if extent.AbsoluteBlock+uint64(extent.Count) >= s.geo.DataBlocks {
			continue
		}
		if bs := uint64(s.geo.BlockSize); bs != 0 && extent.LogicalOffset > (unrepresentableLogicalByte-1)/bs {
			continue
		}
		extents[extent.LogicalOffset] = extent
	}
	return extents
}
