package core

import (
	"encoding/binary"
	"fmt"
)

// Compression kinds a sector can declare. Only CompressionNone and
// CompressionOodle1 are decoded; the rest are recognised so a load can
// fail with a precise "unsupported" reason instead of a generic parse
// error.
const (
	CompressionNone     uint32 = 0
	CompressionOodle1   uint32 = 1
	CompressionOodle0   uint32 = 2
	CompressionBitknit1 uint32 = 3
	CompressionBitknit2 uint32 = 4
)

// SectorSize is the on-disk size of one SectorDesc record.
const SectorSize = 44

// SectorDesc describes one sector of a GR2 file: where its bytes live
// in the source buffer, how they are compressed, and where its fix-up
// and marshal tables live.
type SectorDesc struct {
	CompressType  uint32
	DataOffset    uint32
	CompressedLen uint32
	DecompressLen uint32
	Alignment     uint32
	OodleStop0    uint32
	OodleStop1    uint32
	FixupOffset   uint32
	FixupCount    uint32
	MarshalOffset uint32
	MarshalCount  uint32
}

// ParseSectorDesc reads one sector descriptor from data. The caller
// must have already word-swapped data on endianness mismatch.
func ParseSectorDesc(data []byte) (SectorDesc, error) {
	if len(data) < SectorSize {
		return SectorDesc{}, fmt.Errorf("core: %d bytes is not enough for a sector descriptor", len(data))
	}
	u := binary.LittleEndian.Uint32
	return SectorDesc{
		CompressType:  u(data[0:4]),
		DataOffset:    u(data[4:8]),
		CompressedLen: u(data[8:12]),
		DecompressLen: u(data[12:16]),
		Alignment:     u(data[16:20]),
		OodleStop0:    u(data[20:24]),
		OodleStop1:    u(data[24:28]),
		FixupOffset:   u(data[28:32]),
		FixupCount:    u(data[32:36]),
		MarshalOffset: u(data[36:40]),
		MarshalCount:  u(data[40:44]),
	}, nil
}

// SourceLen is the number of bytes this sector occupies in the source
// file: the decompressed length when uncompressed, else the
// compressed length.
func (s SectorDesc) SourceLen() uint32 {
	if s.CompressType == CompressionNone {
		return s.DecompressLen
	}
	return s.CompressedLen
}

// FixUpSize is the on-disk size of one FixUp record.
const FixUpSize = 12

// FixUp rewrites a pointer embedded in decompressed sector data to
// point at another (sector, offset) pair once it has been resolved
// through the virtual-pointer table.
type FixUp struct {
	SrcOffset uint32
	DstSector uint32
	DstOffset uint32
}

// ParseFixUp reads one fix-up record from data.
func ParseFixUp(data []byte) (FixUp, error) {
	if len(data) < FixUpSize {
		return FixUp{}, fmt.Errorf("core: %d bytes is not enough for a fix-up record", len(data))
	}
	u := binary.LittleEndian.Uint32
	return FixUp{
		SrcOffset: u(data[0:4]),
		DstSector: u(data[4:8]),
		DstOffset: u(data[8:12]),
	}, nil
}

// MarshalSize is the on-disk size of one Marshal record.
const MarshalSize = 16

// Marshal describes a run of count consecutive typed elements at
// src_offset whose bytes must be swapped per the type descriptor found
// at (dst_sector, dst_offset).
type Marshal struct {
	Count     uint32
	SrcOffset uint32
	DstSector uint32
	DstOffset uint32
}

// ParseMarshal reads one marshal record from data.
func ParseMarshal(data []byte) (Marshal, error) {
	if len(data) < MarshalSize {
		return Marshal{}, fmt.Errorf("core: %d bytes is not enough for a marshal record", len(data))
	}
	u := binary.LittleEndian.Uint32
	return Marshal{
		Count:     u(data[0:4]),
		SrcOffset: u(data[4:8]),
		DstSector: u(data[8:12]),
		DstOffset: u(data[12:16]),
	}, nil
}
