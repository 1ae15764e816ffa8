package xfs

import (
	"golang.org/x/xerrors"

	"github.com/bkdwt/xfs-undelete/xfs/utils"
)

// agiSectorIndex is which sector (counted from the AG's own base) holds the
// AG inode information record.
const agiSectorIndex = 2

// clusterVisitor is called once per inode cluster block discovered by the
// tree walk, in AG-major, tree-preorder order.
type clusterVisitor func(ag uint32, clusterBlock uint32) error

// worklistItem is one pending node to decode during the iterative walk.
// Using an explicit worklist rather than recursion means a pathologically
// deep inode btree cannot blow the Go stack.
type worklistItem struct {
	ag    uint32
	block uint32
}

// WalkAGs walks the inode B+tree of every allocation group in geo and
// invokes visit for every inode cluster block it discovers. A single AG's
// AGI sector failing to read is skipped rather than treated as fatal —
// only a failure reading the image structurally, or the caller's visit
// function, can abort the walk early.
func WalkAGs(cr *utils.ChunkReader, geo Geometry, visit clusterVisitor) error {
	for ag := uint32(0); ag < geo.AGCount; ag++ {
		root, err := readAGIRoot(cr, geo, ag)
		if err != nil {
			continue
		}
		if err := walkInodeBtree(cr, geo, ag, root, visit); err != nil {
			return xerrors.Errorf("failed walking AG %d: %w", ag, err)
		}
	}
	return nil
}

// readAGIRoot reads the AG inode information sector at offset
// agiSectorIndex*sectorSize within the AG, validates its magic, and
// extracts agi_root.
func readAGIRoot(cr *utils.ChunkReader, geo Geometry, ag uint32) (uint32, error) {
	off := geo.AGByteOffset(ag) + int64(agiSectorIndex)*int64(geo.SectorSize)
	sector, err := cr.ReadSector(off)
	if err != nil {
		return 0, xerrors.Errorf("failed to read AGI sector: %w", err)
	}
	agi, ok := decodeAGI(sector)
	if !ok {
		return 0, xerrors.New("AGI sector magic mismatch")
	}
	return agi.Root, nil
}

// walkInodeBtree performs an iterative pre-order walk over the inode
// btree rooted at (ag, root), emitting cluster blocks for every leaf
// record it finds.
func walkInodeBtree(cr *utils.ChunkReader, geo Geometry, ag uint32, root uint32, visit clusterVisitor) error {
	visited := newVisitedCache()
	pending := []worklistItem{{ag: ag, block: root}}

	for len(pending) > 0 {
		item := pending[len(pending)-1]
		pending = pending[:len(pending)-1]

		if !visited.Add(item, nil) {
			continue
		}

		off := geo.BlockByteOffset(item.ag, item.block)
		block, err := cr.ReadBlock(off)
		if err != nil {
			return xerrors.Errorf("failed to read btree block: %w", err)
		}

		hdr := decodeBtreeHeader(block)
		if !hdr.recognized {
			continue
		}

		if hdr.level > 0 {
			// push in reverse so the leftmost child is popped first
			children := hdr.childPointers(block, int(geo.BlockSize))
			for i := len(children) - 1; i >= 0; i-- {
				pending = append(pending, worklistItem{ag: item.ag, block: children[i]})
			}
			continue
		}

		if err := emitLeafClusters(geo, item.ag, hdr.leafAGIStarts(block), visit); err != nil {
			return err
		}
	}
	return nil
}

// emitLeafClusters expands each leaf record's 64-inode chunk (starting at
// agi_start) into cluster block numbers and hands each one to visit.
func emitLeafClusters(geo Geometry, ag uint32, agiStarts []uint32, visit clusterVisitor) error {
	const chunkSize = 64
	inopblock := uint32(geo.InodesPerBlock)

	for _, agiStart := range agiStarts {
		for i := uint32(0); i < chunkSize; i += inopblock {
			clusterBlock := (agiStart + i) / inopblock
			if err := visit(ag, clusterBlock); err != nil {
				return err
			}
		}
	}
	return nil
}
