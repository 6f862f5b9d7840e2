// Package core implements the GR2 container mechanics: magic
// classification, header/file-info/sector parsing, byte-swapping and
// the diagnostic CRC32 check.
package core

import "bytes"

// Magic flag bits, one per axis the registry can vary on.
const (
	FlagBigEndian uint8 = 1 << iota
	FlagBit64
	FlagExtra16
)

// magicEntry pairs a raw 16-byte magic with the flags it encodes. The
// bytes are the little-endian encoding of the four uint32 magic words
// as they appear on disk; a big-endian file's magic is the word-swap
// (Swap1) of its little-endian counterpart, not an independently
// chosen value.
type magicEntry struct {
	magic [16]byte
	flags uint8
}

// magicTable enumerates the known GR2 magics. Extending support for a
// new combination (64-bit pointers, big-endian format 7, ...) means
// appending an entry here.
var magicTable = []magicEntry{
	{ // Little Endian 32-bit File Format 6
		magic: [16]byte{0xb8, 0x67, 0xb0, 0xca, 0xf8, 0x6d, 0xb1, 0x0f, 0x84, 0x72, 0x8c, 0x7e, 0x5e, 0x19, 0x00, 0x1e},
		flags: 0,
	},
	{ // Big Endian 32-bit File Format 6
		magic: [16]byte{0xca, 0xb0, 0x67, 0xb8, 0x0f, 0xb1, 0x6d, 0xf8, 0x7e, 0x8c, 0x72, 0x84, 0x1e, 0x00, 0x19, 0x5e},
		flags: FlagBigEndian,
	},
	{ // Little Endian 32-bit File Format 7 (Granny 2.9)
		magic: [16]byte{0x29, 0xde, 0x6c, 0xc0, 0xba, 0xa4, 0x53, 0x2b, 0x25, 0xf5, 0xb7, 0xa5, 0xf6, 0x66, 0xe2, 0xee},
		flags: FlagExtra16,
	},
}

// LookupMagic returns the flags for a 16-byte magic, or ok=false if it
// is not in the registry.
func LookupMagic(magic [16]byte) (flags uint8, ok bool) {
	for _, e := range magicTable {
		if bytes.Equal(e.magic[:], magic[:]) {
			return e.flags, true
		}
	}
	return 0, false
}

// EncodeMagic returns the canonical magic bytes for a flag combination,
// or ok=false if no registry entry carries exactly those flags.
func EncodeMagic(flags uint8) (magic [16]byte, ok bool) {
	for _, e := range magicTable {
		if e.flags == flags {
			return e.magic, true
		}
	}
	return [16]byte{}, false
}
