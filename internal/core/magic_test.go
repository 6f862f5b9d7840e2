package core

import "testing"

func TestLookupMagicKnownEntries(t *testing.T) {
	le32f6 := [16]byte{0xb8, 0x67, 0xb0, 0xca, 0xf8, 0x6d, 0xb1, 0x0f, 0x84, 0x72, 0x8c, 0x7e, 0x5e, 0x19, 0x00, 0x1e}
	flags, ok := LookupMagic(le32f6)
	if !ok {
		t.Fatalf("expected LE/32-bit/format-6 magic to be known")
	}
	if flags != 0 {
		t.Fatalf("LE/32-bit/format-6 flags = %#x, want 0", flags)
	}

	be32f6 := [16]byte{0xca, 0xb0, 0x67, 0xb8, 0x0f, 0xb1, 0x6d, 0xf8, 0x7e, 0x8c, 0x72, 0x84, 0x1e, 0x00, 0x19, 0x5e}
	flags, ok = LookupMagic(be32f6)
	if !ok || flags != FlagBigEndian {
		t.Fatalf("BE/32-bit/format-6 flags = %#x (ok=%v), want FlagBigEndian", flags, ok)
	}

	le32f7 := [16]byte{0x29, 0xde, 0x6c, 0xc0, 0xba, 0xa4, 0x53, 0x2b, 0x25, 0xf5, 0xb7, 0xa5, 0xf6, 0x66, 0xe2, 0xee}
	flags, ok = LookupMagic(le32f7)
	if !ok || flags != FlagExtra16 {
		t.Fatalf("LE/32-bit/format-7 flags = %#x (ok=%v), want FlagExtra16", flags, ok)
	}
}

func TestLookupMagicUnknown(t *testing.T) {
	var zero [16]byte
	if _, ok := LookupMagic(zero); ok {
		t.Fatalf("an all-zero magic should not be in the registry")
	}
}

func TestEncodeMagicRoundTrip(t *testing.T) {
	magic, ok := EncodeMagic(FlagBigEndian)
	if !ok {
		t.Fatalf("EncodeMagic(FlagBigEndian) should find the registered BE entry")
	}
	flags, ok := LookupMagic(magic)
	if !ok || flags != FlagBigEndian {
		t.Fatalf("round trip through EncodeMagic/LookupMagic lost flags: got %#x", flags)
	}
}

func TestEncodeMagicUnknownCombination(t *testing.T) {
	if _, ok := EncodeMagic(FlagBigEndian | FlagBit64 | FlagExtra16); ok {
		t.Fatalf("an unregistered flag combination should not encode")
	}
}
