package oodle

// Decoder is the arithmetic-coding engine a Dictionary draws symbols
// from. It owns a byte cursor into the compressed stream alongside its
// numerator/denominator state.
type Decoder struct {
	numer, denom, nextDenom uint32
	stream                  []byte
	pos                     int
}

// NewDecoder initialises a decoder positioned at the start of stream.
func NewDecoder(stream []byte) *Decoder {
	return &Decoder{
		numer:  uint32(stream[0]) >> 1,
		denom:  0x80,
		stream: stream,
	}
}

// byteAt reads the stream, treating everything past its end as zero. A
// malformed sector can demand more output than its compressed bytes
// encode; draining zeros keeps the draw loop total instead of running
// off the buffer, and the block decoder's own bounds checks stop the
// output.
func (d *Decoder) byteAt(i int) byte {
	if i >= len(d.stream) {
		return 0
	}
	return d.stream[i]
}

// Decode draws a value in [0, max) without committing it. A
// subsequent Commit (or DecodeCommit) finalises the draw.
func (d *Decoder) Decode(max uint16) uint16 {
	for d.denom <= 0x800000 {
		d.numer <<= 8
		d.numer |= (uint32(d.byteAt(d.pos)) << 7) & 0x80
		d.numer |= (uint32(d.byteAt(d.pos+1)) >> 1) & 0x7f
		d.pos++
		d.denom <<= 8
	}

	d.nextDenom = d.denom / uint32(max)
	v := d.numer / d.nextDenom
	if v > uint32(max)-1 {
		v = uint32(max) - 1
	}
	return uint16(v)
}

// Commit finalises a draw of val out of max with escape width err.
func (d *Decoder) Commit(max, val, err uint16) uint16 {
	d.numer -= d.nextDenom * uint32(val)

	if uint32(val)+uint32(err) < uint32(max) {
		d.denom = d.nextDenom * uint32(err)
	} else {
		d.denom -= d.nextDenom * uint32(val)
	}
	return val
}

// DecodeCommit draws and commits a single value out of max with the
// default escape width of 1.
func (d *Decoder) DecodeCommit(max uint16) uint16 {
	return d.Commit(max, d.Decode(max), 1)
}
