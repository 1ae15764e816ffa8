package xfs

import (
	"encoding/binary"
	"testing"

	"github.com/bkdwt/xfs-undelete/xfs/utils"
)

func writeAGI(sector []byte, root uint32) {
	binary.BigEndian.PutUint32(sector[0:4], agiMagic)
	binary.BigEndian.PutUint32(sector[20:24], root)
}

func writeEmptyLeaf(buf []byte) {
	copy(buf, magicIABT)
	binary.BigEndian.PutUint16(buf[4:6], 0) // level 0: leaf
	binary.BigEndian.PutUint16(buf[6:8], 0) // numrecs 0
}

// TestWalkAGsEmptyAGI is scenario S1: every AG's inode btree root is an
// empty leaf, so the walk must visit zero cluster blocks and return no
// error.
func TestWalkAGsEmptyAGI(t *testing.T) {
	const (
		blockSize  = 4096
		sectorSize = 512
		agBlocks   = 16
		agCount    = 4
	)
	geo := Geometry{
		BlockSize:      blockSize,
		SectorSize:     sectorSize,
		InodeSize:      512,
		InodesPerBlock: 8,
		AGBlocks:       agBlocks,
		AGCount:        agCount,
		DataBlocks:     uint64(agBlocks) * agCount,
		AGBlockLog:     4,
	}

	image := make([]byte, int(agBlocks)*blockSize*agCount)
	for ag := uint32(0); ag < agCount; ag++ {
		agBase := geo.AGByteOffset(ag)
		agiSector := image[agBase+2*sectorSize : agBase+3*sectorSize]
		writeAGI(agiSector, 1)

		rootBlock := image[agBase+blockSize : agBase+2*blockSize]
		writeEmptyLeaf(rootBlock)
	}

	cr, err := utils.NewChunkReader(newBytesReaderAt(image), blockSize, sectorSize)
	if err != nil {
		t.Fatal(err)
	}

	visited := 0
	err = WalkAGs(cr, geo, func(ag, clusterBlock uint32) error {
		visited++
		return nil
	})
	if err != nil {
		t.Fatal(err)
	}
	if visited != 0 {
		t.Errorf("expected zero visited cluster blocks, got %d", visited)
	}
}

// TestWalkAGsLeafExpandsClusters exercises a single non-empty leaf record
// and checks that the inode chunk it names expands into the expected
// cluster block numbers.
func TestWalkAGsLeafExpandsClusters(t *testing.T) {
	const (
		blockSize      = 4096
		sectorSize     = 512
		agBlocks       = 16
		inodesPerBlock = 8
	)
	geo := Geometry{
		BlockSize:      blockSize,
		SectorSize:     sectorSize,
		InodeSize:      512,
		InodesPerBlock: inodesPerBlock,
		AGBlocks:       agBlocks,
		AGCount:        1,
		DataBlocks:     agBlocks,
		AGBlockLog:     4,
	}

	image := make([]byte, int(agBlocks)*blockSize)
	writeAGI(image[2*sectorSize:3*sectorSize], 1)

	leaf := image[blockSize : 2*blockSize]
	copy(leaf, magicIABT)
	binary.BigEndian.PutUint16(leaf[4:6], 0) // leaf level
	binary.BigEndian.PutUint16(leaf[6:8], 1) // one record
	binary.BigEndian.PutUint32(leaf[headerSizeIABT:headerSizeIABT+4], 0) // agi_start = 0

	cr, err := utils.NewChunkReader(newBytesReaderAt(image), blockSize, sectorSize)
	if err != nil {
		t.Fatal(err)
	}

	var clusters []uint32
	err = WalkAGs(cr, geo, func(ag, clusterBlock uint32) error {
		clusters = append(clusters, clusterBlock)
		return nil
	})
	if err != nil {
		t.Fatal(err)
	}

	// a 64-inode chunk at inodesPerBlock=8 covers 8 cluster blocks: 0..7
	if len(clusters) != 8 {
		t.Fatalf("expected 8 cluster blocks, got %d: %v", len(clusters), clusters)
	}
	for i, c := range clusters {
		if c != uint32(i) {
			t.Errorf("cluster[%d]: expected %d, actual %d", i, i, c)
		}
	}
}
