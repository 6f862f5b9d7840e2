// Package oodle implements the Oodle-1 adaptive arithmetic decoder
// used to decompress GR2 sectors.
package oodle

import (
	"encoding/binary"
	"fmt"
)

// ParameterSize is the on-disk size of one Parameter record. The
// format packs decoded_value_max/backref_value_max and
// decoded_count/padding/highbit_count into two LSB-first bitfield
// words ahead of a 4-byte sizes_count array; the fields are unpacked
// here by explicit masking rather than anything layout-dependent.
const ParameterSize = 12

// Parameter seeds one Dictionary: the value ranges its windows expect
// and the symbol-count caps used to size them.
type Parameter struct {
	DecodedValueMax uint32 // 9 bits
	BackrefValueMax uint32 // 23 bits
	DecodedCount    uint16 // 9 bits
	HighbitCount    uint16 // 13 bits
	SizesCount      [4]uint8
}

// ParseParameter reads one Parameter record from data.
func ParseParameter(data []byte) (Parameter, error) {
	if len(data) < ParameterSize {
		return Parameter{}, fmt.Errorf("oodle: %d bytes is not enough for a parameter record", len(data))
	}

	word1 := binary.LittleEndian.Uint32(data[0:4])
	word2 := binary.LittleEndian.Uint32(data[4:8])

	p := Parameter{
		DecodedValueMax: word1 & 0x1FF,
		BackrefValueMax: (word1 >> 9) & 0x7FFFFF,
		DecodedCount:    uint16(word2 & 0x1FF),
		HighbitCount:    uint16((word2 >> 19) & 0x1FFF),
	}
	copy(p.SizesCount[:], data[8:12])
	return p, nil
}
