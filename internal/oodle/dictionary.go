package oodle

import "fmt"

// Dictionary owns the five window groups a single Oodle-1 stream
// range is decoded against: one low-bit window, one high-bit window, a
// per-high-bit array of mid-bit windows, four decoded-byte windows
// keyed by output-address alignment, and 65 back-reference-size
// windows.
type Dictionary struct {
	decodedSize uint32
	backrefSize uint32

	decodedValueMax uint32
	backrefValueMax uint32
	lowbitValueMax  uint32
	midbitValueMax  uint32
	highbitValueMax uint32

	lowbitWindow  WeighWindow
	highbitWindow WeighWindow
	midbitWindows []WeighWindow

	decodedWindows []WeighWindow
	sizeWindows    []WeighWindow
}

// NewDictionary builds a fresh dictionary from one sector parameter
// record. Each of the three Oodle-1 ranges in a sector gets its own
// dictionary, seeded independently.
func NewDictionary(p Parameter) *Dictionary {
	d := &Dictionary{
		decodedValueMax: p.DecodedValueMax,
		backrefValueMax: p.BackrefValueMax,
	}
	d.lowbitValueMax = min(d.backrefValueMax+1, 4)
	d.midbitValueMax = min(d.backrefValueMax/4+1, 256)
	d.highbitValueMax = d.backrefValueMax/1024 + 1

	d.lowbitWindow.Init(d.lowbitValueMax-1, uint16(d.lowbitValueMax))
	d.highbitWindow.Init(d.highbitValueMax-1, p.HighbitCount+1)

	d.midbitWindows = make([]WeighWindow, d.highbitValueMax)
	for i := range d.midbitWindows {
		d.midbitWindows[i].Init(d.midbitValueMax-1, uint16(d.midbitValueMax))
	}

	d.decodedWindows = make([]WeighWindow, 4)
	for i := range d.decodedWindows {
		d.decodedWindows[i].Init(d.decodedValueMax-1, p.DecodedCount)
	}

	d.sizeWindows = make([]WeighWindow, 4*16+1)
	idx := 0
	for i := 0; i < 4; i++ {
		for j := 0; j < 16; j++ {
			d.sizeWindows[idx].Init(64, uint16(p.SizesCount[3-i]))
			idx++
		}
	}
	d.sizeWindows[idx].Init(64, uint16(p.SizesCount[0]))

	return d
}

// backrefSizeTable maps the low tail of a back-reference length symbol
// (>= 61) to its true byte count.
var backrefSizeTable = [4]uint32{128, 192, 256, 512}

// DecompressBlock decodes one block of output at out[pos:], returning
// the number of bytes written. It either copies a back-reference run
// from earlier output or emits a single literal byte.
func (d *Dictionary) DecompressBlock(decoder *Decoder, out []byte, pos int) (int, error) {
	sizeWin := &d.sizeWindows[d.backrefSize]
	idx, val, err := sizeWin.TryDecode(decoder)
	if err != nil {
		return 0, err
	}
	if idx != -1 {
		val = decoder.DecodeCommit(65)
		sizeWin.SetValue(idx, val)
	}
	d.backrefSize = uint32(val)

	if d.backrefSize > 0 {
		var backrefSize uint32
		if d.backrefSize < 61 {
			backrefSize = d.backrefSize + 1
		} else {
			backrefSize = backrefSizeTable[d.backrefSize-61]
		}
		backrefRange := min(d.backrefValueMax, d.decodedSize)

		lowIdx, lowVal, err := d.lowbitWindow.TryDecode(decoder)
		if err != nil {
			return 0, err
		}
		if lowIdx != -1 {
			lowVal = decoder.DecodeCommit(uint16(d.lowbitValueMax))
			d.lowbitWindow.SetValue(lowIdx, lowVal)
		}

		highIdx, highVal, err := d.highbitWindow.TryDecode(decoder)
		if err != nil {
			return 0, err
		}
		if highIdx != -1 {
			highVal = decoder.DecodeCommit(uint16(backrefRange/1024 + 1))
			d.highbitWindow.SetValue(highIdx, highVal)
		}

		midWin := &d.midbitWindows[highVal]
		midIdx, midVal, err := midWin.TryDecode(decoder)
		if err != nil {
			return 0, err
		}
		if midIdx != -1 {
			midVal = decoder.DecodeCommit(uint16(min(backrefRange/4+1, 256)))
			midWin.SetValue(midIdx, midVal)
		}

		backrefOffset := (uint32(highVal) << 10) + (uint32(midVal) << 2) + uint32(lowVal) + 1

		d.decodedSize += backrefSize

		if int(backrefOffset) > pos {
			return 0, fmt.Errorf("oodle: back-reference offset %d exceeds %d bytes emitted so far", backrefOffset, pos)
		}
		if pos+int(backrefSize) > len(out) {
			return 0, fmt.Errorf("oodle: back-reference run overruns output buffer")
		}

		// Byte-at-a-time: when backrefOffset < backrefSize the source
		// window must itself be read from bytes this same loop wrote,
		// reproducing the source window rather than a flat copy.
		for i := 0; i < int(backrefSize); i++ {
			out[pos+i] = out[pos+i-int(backrefOffset)]
		}

		return int(backrefSize), nil
	}

	win := &d.decodedWindows[pos%4]
	litIdx, litVal, err := win.TryDecode(decoder)
	if err != nil {
		return 0, err
	}
	if litIdx != -1 {
		litVal = decoder.DecodeCommit(uint16(d.decodedValueMax))
		win.SetValue(litIdx, litVal)
	}

	out[pos] = byte(litVal & 0xff)
	d.decodedSize++
	return 1, nil
}
