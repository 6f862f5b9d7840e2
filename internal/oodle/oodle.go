package oodle

import "fmt"

// Decompress runs the full Oodle-1 pipeline for one sector: three
// Parameter records (36 bytes) describing three independently-seeded
// dictionaries, followed by the arithmetic-coded stream that fills
// out up to the sector's two stop offsets and its full decompressed
// length.
func Decompress(compressed []byte, out []byte, stop0, stop1 uint32) error {
	if len(compressed) == 0 {
		return nil
	}

	if len(compressed) < 3*ParameterSize+1 {
		return fmt.Errorf("oodle: compressed payload too short for parameter header")
	}
	// The stops come from an untrusted sector descriptor. The block
	// loop decodes until pos reaches each stop, so every stop must lie
	// inside the output buffer and the stops must be ordered, or the
	// literal path would write past the end.
	if uint64(stop0) > uint64(stop1) || uint64(stop1) > uint64(len(out)) {
		return fmt.Errorf("oodle: stop offsets (%d, %d) outside the %d-byte output", stop0, stop1, len(out))
	}

	var params [3]Parameter
	for i := range params {
		p, err := ParseParameter(compressed[i*ParameterSize:])
		if err != nil {
			return err
		}
		params[i] = p
	}

	decoder := NewDecoder(compressed[3*ParameterSize:])

	stops := [3]uint32{stop0, stop1, uint32(len(out))}
	pos := 0
	for i := 0; i < 3; i++ {
		dict := NewDictionary(params[i])
		for pos < int(stops[i]) {
			n, err := dict.DecompressBlock(decoder, out, pos)
			if err != nil {
				return err
			}
			pos += n
		}
	}

	return nil
}
