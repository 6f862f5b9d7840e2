package core

import (
	"encoding/binary"
	"fmt"
)

// HeaderSize is the fixed on-disk size of Header: 16-byte magic,
// size-with-sectors, format, and 8 extra bytes.
const HeaderSize = 32

// Header is the first structure in every GR2 file.
type Header struct {
	Magic           [16]byte
	SizeWithSectors uint32
	Format          uint32
	Extra           [8]byte
}

// ParseHeader reads the 32-byte header from the start of data. Only
// SizeWithSectors needs endianness correction; Format is validated
// against zero and is swap-invariant there.
func ParseHeader(data []byte) (Header, error) {
	if len(data) < HeaderSize {
		return Header{}, fmt.Errorf("core: %d bytes is not enough for a header", len(data))
	}

	var h Header
	copy(h.Magic[:], data[0:16])
	h.SizeWithSectors = binary.LittleEndian.Uint32(data[16:20])
	h.Format = binary.LittleEndian.Uint32(data[20:24])
	copy(h.Extra[:], data[24:32])
	return h, nil
}
