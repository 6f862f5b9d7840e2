// Package gr2test assembles synthetic GR2 byte buffers field-by-field
// for tests: a header, a file info block, sector descriptors, fix-up
// and marshal records, and type-node descriptors. Fixtures are built
// by hand rather than through a round-trip writer, since this module
// has no GR2 writer.
package gr2test

import (
	"encoding/binary"
	"math"
)

// MagicLE32F6 is the little-endian/32-bit-pointer/format-6 magic, the
// first entry of internal/core's magic registry.
var MagicLE32F6 = [16]byte{
	0xb8, 0x67, 0xb0, 0xca, 0xf8, 0x6d, 0xb1, 0x0f,
	0x84, 0x72, 0x8c, 0x7e, 0x5e, 0x19, 0x00, 0x1e,
}

// MagicBE32F6 is the big-endian/32-bit-pointer/format-6 magic.
var MagicBE32F6 = [16]byte{
	0xca, 0xb0, 0x67, 0xb8, 0x0f, 0xb1, 0x6d, 0xf8,
	0x7e, 0x8c, 0x72, 0x84, 0x1e, 0x00, 0x19, 0x5e,
}

// MagicLE32F7 is the little-endian/32-bit-pointer/format-7/extra-16
// magic.
var MagicLE32F7 = [16]byte{
	0x29, 0xde, 0x6c, 0xc0, 0xba, 0xa4, 0x53, 0x2b,
	0x25, 0xf5, 0xb7, 0xa5, 0xf6, 0x66, 0xe2, 0xee,
}

func u32(b []byte, v uint32) { binary.LittleEndian.PutUint32(b, v) }

// Header encodes the fixed 32-byte GR2 header.
func Header(magic [16]byte, sizeWithSectors, format uint32) []byte {
	b := make([]byte, 32)
	copy(b[0:16], magic[:])
	u32(b[16:20], sizeWithSectors)
	u32(b[20:24], format)
	return b
}

// FileInfo encodes a file-info block. Its total length is 40+len(extra)
// bytes; pass a 16-byte extra for the 0x38 layout or a 32-byte extra
// for the 0x48 (extra-16-flag) layout.
func FileInfo(format int32, totalSize, crc32, fileInfoSize, sectorCount uint32, typeSector, typePos, rootSector, rootPos, tag uint32, extra []byte) []byte {
	b := make([]byte, 40+len(extra))
	u32(b[0:4], uint32(format))
	u32(b[4:8], totalSize)
	u32(b[8:12], crc32)
	u32(b[12:16], fileInfoSize)
	u32(b[16:20], sectorCount)
	u32(b[20:24], typeSector)
	u32(b[24:28], typePos)
	u32(b[28:32], rootSector)
	u32(b[32:36], rootPos)
	u32(b[36:40], tag)
	copy(b[40:], extra)
	return b
}

// SectorDesc encodes one 44-byte sector descriptor.
func SectorDesc(compression, dataOffset, compressedLen, decompressedLen, alignment, oodleStop0, oodleStop1, fixupOffset, fixupCount, marshalOffset, marshalCount uint32) []byte {
	b := make([]byte, 44)
	fields := [...]uint32{
		compression, dataOffset, compressedLen, decompressedLen, alignment,
		oodleStop0, oodleStop1, fixupOffset, fixupCount, marshalOffset, marshalCount,
	}
	for i, f := range fields {
		u32(b[i*4:i*4+4], f)
	}
	return b
}

// FixUp encodes one 12-byte fix-up record.
func FixUp(srcOffset, dstSector, dstOffset uint32) []byte {
	b := make([]byte, 12)
	u32(b[0:4], srcOffset)
	u32(b[4:8], dstSector)
	u32(b[8:12], dstOffset)
	return b
}

// Marshal encodes one 16-byte marshal record.
func Marshal(count, srcOffset, dstSector, dstOffset uint32) []byte {
	b := make([]byte, 16)
	u32(b[0:4], count)
	u32(b[4:8], srcOffset)
	u32(b[8:12], dstSector)
	u32(b[12:16], dstOffset)
	return b
}

// TypeNode32 encodes one 32-bit type-node descriptor: a type id, a
// name pointer field and a children pointer field, and a signed array
// size. In a full container (built through Header/FileInfo/SectorDesc
// and loaded with gr2.Load), namePtr/childrenPtr are normally left 0
// and a FixUp record targeting this field's offset is what the loader
// turns into a virtual-pointer handle. A test driving
// internal/types.Parser directly, with no fix-up pass, instead passes
// an already-encoded vptr.Table handle here.
func TypeNode32(typ uint32, namePtr, childrenPtr uint32, arraySize int32) []byte {
	b := make([]byte, 4+4+4+4+12+4)
	u32(b[0:4], typ)
	u32(b[4:8], namePtr)
	u32(b[8:12], childrenPtr)
	u32(b[12:16], uint32(arraySize))
	return b
}

// TypeNode64 encodes one 64-bit type-node descriptor: an 8-byte name
// pointer, an 8-byte children pointer followed by 8 bytes of padding,
// a signed array size, 12 extra bytes, and an 8-byte trailing field.
func TypeNode64(typ uint32, namePtr, childrenPtr uint64, arraySize int32) []byte {
	b := make([]byte, 4+8+8+8+4+12+8)
	u32(b[0:4], typ)
	binary.LittleEndian.PutUint64(b[4:12], namePtr)
	binary.LittleEndian.PutUint64(b[12:20], childrenPtr)
	// 8 bytes padding already zero at b[20:28]
	u32(b[28:32], uint32(arraySize))
	return b
}

// TypeTerminator is the 4-byte type==0 descriptor that ends a
// null-terminated type-node sequence; ParseTypeNode stops reading as
// soon as it sees the leading type field, so it needs no further
// padding even in a 64-bit stream.
func TypeTerminator() []byte { return make([]byte, 4) }

// CString encodes s as a null-terminated byte string.
func CString(s string) []byte {
	b := make([]byte, len(s)+1)
	copy(b, s)
	return b
}

// Float32LE encodes one little-endian float32.
func Float32LE(v float32) []byte {
	b := make([]byte, 4)
	binary.LittleEndian.PutUint32(b, math.Float32bits(v))
	return b
}

// Concat joins byte slices into one buffer.
func Concat(parts ...[]byte) []byte {
	var total int
	for _, p := range parts {
		total += len(p)
	}
	out := make([]byte, 0, total)
	for _, p := range parts {
		out = append(out, p...)
	}
	return out
}

// Pad returns n zero bytes, for padding a sector's data stream out to
// an offset a later field (a name or children pointer target) needs.
func Pad(n int) []byte { return make([]byte, n) }
