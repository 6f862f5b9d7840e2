package oodle

import (
	"bytes"
	"testing"
)

// fixtureParameter encodes one 12-byte parameter record with
// decoded_value_max=256, backref_value_max=4095, decoded_count=20,
// highbit_count=8, sizes_count={40,40,40,40}. The round-trip fixtures
// below repeat it for all three ranges.
var fixtureParameter = []byte{0x00, 0xFF, 0x1F, 0x00, 0x14, 0x00, 0x40, 0x00, 40, 40, 40, 40}

func fixturePayload(stream []byte) []byte {
	payload := make([]byte, 0, 3*ParameterSize+len(stream))
	for i := 0; i < 3; i++ {
		payload = append(payload, fixtureParameter...)
	}
	return append(payload, stream...)
}

func TestDecompressAllZeroStreamEmitsZeros(t *testing.T) {
	out := make([]byte, 16)
	out[3] = 0xFF // overwritten by the decode
	if err := Decompress(fixturePayload(make([]byte, 16)), out, 0, 16); err != nil {
		t.Fatalf("Decompress: %v", err)
	}
	for i, b := range out {
		if b != 0 {
			t.Fatalf("out[%d] = %d, want 0 (an all-zero bit stream decodes to all-zero literals)", i, b)
		}
	}
}

func TestDecompressLiteralsAndOverlappingBackref(t *testing.T) {
	// Hand-assembled bit stream: decoding it against fixtureParameter
	// yields three literal blocks (197, 170, 199) followed by one
	// back-reference block of 9 bytes at offset 1, the overlapping
	// copy that replicates the previous literal. Every size and
	// decoded window goes through its promote-new-symbol path along
	// the way.
	stream := []byte{
		3, 11, 40, 100, 46, 106, 27, 2,
		116, 145, 102, 40, 212, 221, 103, 188,
		40, 98, 73, 214, 154, 249, 19, 17,
	}

	out := make([]byte, 12)
	if err := Decompress(fixturePayload(stream), out, 12, 12); err != nil {
		t.Fatalf("Decompress: %v", err)
	}

	want := []byte{197, 170, 199, 199, 199, 199, 199, 199, 199, 199, 199, 199}
	if !bytes.Equal(out, want) {
		t.Fatalf("Decompress output = %v, want %v", out, want)
	}
}

func TestDecompressEmptyIsNoop(t *testing.T) {
	out := make([]byte, 16)
	if err := Decompress(nil, out, 0, 0); err != nil {
		t.Fatalf("Decompress(nil, ...) = %v, want nil (a zero-length compressed payload is a valid no-op)", err)
	}
}

func TestDecompressRejectsTruncatedParameterHeader(t *testing.T) {
	// Fewer than 3*ParameterSize+1 bytes can never hold the three
	// Parameter records the format requires before any bitstream data.
	short := make([]byte, 3*ParameterSize)
	out := make([]byte, 4)
	if err := Decompress(short, out, 0, 0); err == nil {
		t.Fatalf("expected an error decompressing a payload too short for its parameter header")
	}
}

func TestDecompressRejectsStopsOutsideOutput(t *testing.T) {
	compressed := make([]byte, 3*ParameterSize+4)
	out := make([]byte, 4)

	if err := Decompress(compressed, out, 8, 8); err == nil {
		t.Fatalf("expected an error for a stop offset past the output buffer")
	}
	if err := Decompress(compressed, out, 3, 1); err == nil {
		t.Fatalf("expected an error for stop offsets out of order")
	}
}

func TestParseParameterRoundTrip(t *testing.T) {
	// Hand-pack the same two bitfield words ParseParameter unpacks:
	// word1 = decoded_value_max(9 bits) | backref_value_max(23 bits) << 9
	// word2 = decoded_count(9 bits) | highbit_count(13 bits) << 19
	word1 := uint32(0x15) | (uint32(0x123456)&0x7FFFFF)<<9
	word2 := uint32(0x101) | (uint32(0x1FA3)&0x1FFF)<<19

	data := make([]byte, ParameterSize)
	data[0], data[1], data[2], data[3] = byte(word1), byte(word1>>8), byte(word1>>16), byte(word1>>24)
	data[4], data[5], data[6], data[7] = byte(word2), byte(word2>>8), byte(word2>>16), byte(word2>>24)
	data[8], data[9], data[10], data[11] = 10, 20, 30, 40

	p, err := ParseParameter(data)
	if err != nil {
		t.Fatalf("ParseParameter: %v", err)
	}
	if p.DecodedValueMax != 0x15 {
		t.Fatalf("DecodedValueMax = %#x, want 0x15", p.DecodedValueMax)
	}
	if p.BackrefValueMax != 0x123456 {
		t.Fatalf("BackrefValueMax = %#x, want 0x123456", p.BackrefValueMax)
	}
	if p.DecodedCount != 0x101 {
		t.Fatalf("DecodedCount = %#x, want 0x101", p.DecodedCount)
	}
	if p.HighbitCount != 0x1FA3 {
		t.Fatalf("HighbitCount = %#x, want 0x1FA3", p.HighbitCount)
	}
	if p.SizesCount != ([4]uint8{10, 20, 30, 40}) {
		t.Fatalf("SizesCount = %v, want [10 20 30 40]", p.SizesCount)
	}
}

func TestParseParameterTooShort(t *testing.T) {
	if _, err := ParseParameter(make([]byte, ParameterSize-1)); err == nil {
		t.Fatalf("expected an error for a truncated parameter record")
	}
}

func TestNewDecoderInitialState(t *testing.T) {
	stream := []byte{0xFF, 0, 0, 0, 0, 0, 0, 0}
	d := NewDecoder(stream)
	if d.denom != 0x80 {
		t.Fatalf("initial denom = %#x, want 0x80", d.denom)
	}
	if d.numer != uint32(stream[0])>>1 {
		t.Fatalf("initial numer = %#x, want %#x", d.numer, uint32(stream[0])>>1)
	}
	if d.pos != 0 {
		t.Fatalf("initial pos = %d, want 0", d.pos)
	}
}

func TestDecoderRefillsBeforeFirstDecode(t *testing.T) {
	// The refill loop's trip count depends only on the fixed initial
	// denom (0x80) and the 0x800000 threshold, never on stream
	// contents, so the post-refill denom is deterministic regardless
	// of the bytes supplied.
	stream := make([]byte, 8)
	d := NewDecoder(stream)
	_ = d.Decode(2)
	if d.denom != 0x80000000 {
		t.Fatalf("denom after first Decode = %#x, want 0x80000000", d.denom)
	}
}

func TestWeighWindowInitialState(t *testing.T) {
	var w WeighWindow
	w.Init(10, 5)
	if w.weightTotal != 4 {
		t.Fatalf("weightTotal = %d, want 4", w.weightTotal)
	}
	if w.countCap != 6 {
		t.Fatalf("countCap = %d, want 6 (countCap+1)", w.countCap)
	}
	if len(w.ranges) != 2 || w.ranges[0] != 0 || w.ranges[1] != 0x4000 {
		t.Fatalf("ranges = %v, want [0 0x4000]", w.ranges)
	}
	if len(w.weights) != 1 || w.weights[0] != 4 {
		t.Fatalf("weights = %v, want [4]", w.weights)
	}
	if len(w.values) != 1 || w.values[0] != 0 {
		t.Fatalf("values = %v, want [0]", w.values)
	}
	if w.threshIncrease != 4 || w.threshRangeRebuild != 8 {
		t.Fatalf("threshIncrease=%d threshRangeRebuild=%d, want 4 and 8", w.threshIncrease, w.threshRangeRebuild)
	}
}

func TestWeighWindowInitThreshIncreaseCapSmallAlphabet(t *testing.T) {
	var w WeighWindow
	w.Init(64, 5) // maxValue == 64 takes the <=64 branch
	if w.threshIncreaseCap != 128 {
		t.Fatalf("threshIncreaseCap = %d, want 128 for maxValue<=64", w.threshIncreaseCap)
	}
}

func TestNewDictionaryWindowSizing(t *testing.T) {
	p := Parameter{DecodedValueMax: 256, BackrefValueMax: 2047, DecodedCount: 10, HighbitCount: 3}
	d := NewDictionary(p)

	wantLowbit := uint32(4) // min(backrefValueMax+1, 4)
	if d.lowbitValueMax != wantLowbit {
		t.Fatalf("lowbitValueMax = %d, want %d", d.lowbitValueMax, wantLowbit)
	}
	wantMidbit := uint32(2047/4 + 1)
	if d.midbitValueMax != wantMidbit {
		t.Fatalf("midbitValueMax = %d, want %d", d.midbitValueMax, wantMidbit)
	}
	wantHighbit := uint32(2047/1024 + 1)
	if d.highbitValueMax != wantHighbit {
		t.Fatalf("highbitValueMax = %d, want %d", d.highbitValueMax, wantHighbit)
	}
	if len(d.midbitWindows) != int(wantHighbit) {
		t.Fatalf("len(midbitWindows) = %d, want %d", len(d.midbitWindows), wantHighbit)
	}
	if len(d.decodedWindows) != 4 {
		t.Fatalf("len(decodedWindows) = %d, want 4", len(d.decodedWindows))
	}
	if len(d.sizeWindows) != 65 {
		t.Fatalf("len(sizeWindows) = %d, want 65", len(d.sizeWindows))
	}
}

func TestBackrefSizeTableCoversTailSymbols(t *testing.T) {
	want := [4]uint32{128, 192, 256, 512}
	if backrefSizeTable != want {
		t.Fatalf("backrefSizeTable = %v, want %v", backrefSizeTable, want)
	}
}
