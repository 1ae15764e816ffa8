package xfs

import (
	"encoding/binary"
	"testing"
)

func TestDecodeBtreeHeaderUnrecognized(t *testing.T) {
	block := make([]byte, 32)
	copy(block, "XXXX")
	hdr := decodeBtreeHeader(block)
	if hdr.recognized {
		t.Error("expected unrecognized magic to yield recognized=false")
	}
}

func TestDecodeBtreeHeaderIABT(t *testing.T) {
	block := make([]byte, 128)
	copy(block, magicIABT)
	binary.BigEndian.PutUint16(block[4:6], 2)  // level
	binary.BigEndian.PutUint16(block[6:8], 3) // numrecs

	hdr := decodeBtreeHeader(block)
	if !hdr.recognized {
		t.Fatal("expected IABT magic to be recognized")
	}
	if hdr.level != 2 {
		t.Errorf("level: expected 2, actual %d", hdr.level)
	}
	if hdr.numrecs != 3 {
		t.Errorf("numrecs: expected 3, actual %d", hdr.numrecs)
	}
	if hdr.headerSize != headerSizeIABT {
		t.Errorf("headerSize: expected %d, actual %d", headerSizeIABT, hdr.headerSize)
	}
}

func TestChildPointers(t *testing.T) {
	const blockSize = 128
	block := make([]byte, blockSize)
	copy(block, magicIABT)
	binary.BigEndian.PutUint16(block[6:8], 2) // numrecs

	hdr := btreeHeader{numrecs: 2, headerSize: headerSizeIABT, recognized: true}
	start := (blockSize + headerSizeIABT) / 2
	binary.BigEndian.PutUint32(block[start:start+4], 10)
	binary.BigEndian.PutUint32(block[start+4:start+8], 11)

	ptrs := hdr.childPointers(block, blockSize)
	if len(ptrs) != 2 || ptrs[0] != 10 || ptrs[1] != 11 {
		t.Errorf("unexpected pointers: %v", ptrs)
	}
}

func TestLeafAGIStarts(t *testing.T) {
	block := make([]byte, 128)
	hdr := btreeHeader{numrecs: 2, headerSize: headerSizeIABT, recognized: true}
	binary.BigEndian.PutUint32(block[headerSizeIABT:headerSizeIABT+4], 64)
	binary.BigEndian.PutUint32(block[headerSizeIABT+leafRecordSize:headerSizeIABT+leafRecordSize+4], 128)

	starts := hdr.leafAGIStarts(block)
	if len(starts) != 2 || starts[0] != 64 || starts[1] != 128 {
		t.Errorf("unexpected agi starts: %v", starts)
	}
}
