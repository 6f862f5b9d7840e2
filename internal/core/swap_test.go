package core

import (
	"bytes"
	"testing"
)

func TestSwap1ReversesEachGroup(t *testing.T) {
	data := []byte{0x01, 0x02, 0x03, 0x04, 0xA, 0xB, 0xC, 0xD}
	Swap1(data)
	want := []byte{0x04, 0x03, 0x02, 0x01, 0xD, 0xC, 0xB, 0xA}
	if !bytes.Equal(data, want) {
		t.Fatalf("Swap1 = %x, want %x", data, want)
	}
}

func TestSwap1IsSelfInverse(t *testing.T) {
	orig := []byte{1, 2, 3, 4, 5, 6, 7, 8}
	data := append([]byte(nil), orig...)
	Swap1(data)
	Swap1(data)
	if !bytes.Equal(data, orig) {
		t.Fatalf("Swap1 twice = %x, want original %x", data, orig)
	}
}

func TestSwap2SwapsPairs(t *testing.T) {
	data := []byte{0x01, 0x02, 0x03, 0x04}
	Swap2(data)
	want := []byte{0x02, 0x01, 0x04, 0x03}
	if !bytes.Equal(data, want) {
		t.Fatalf("Swap2 = %x, want %x", data, want)
	}
}

func TestSwap2IsSelfInverse(t *testing.T) {
	orig := []byte{1, 2, 3, 4, 5, 6, 7, 8}
	data := append([]byte(nil), orig...)
	Swap2(data)
	Swap2(data)
	if !bytes.Equal(data, orig) {
		t.Fatalf("Swap2 twice = %x, want original %x", data, orig)
	}
}

func TestSwapShortLengthIsNoop(t *testing.T) {
	data := []byte{1, 2, 3}
	orig := append([]byte(nil), data...)
	Swap1(data)
	if !bytes.Equal(data, orig) {
		t.Fatalf("Swap1 on <4 bytes should be a no-op, got %x", data)
	}
	Swap2(data)
	if !bytes.Equal(data, orig) {
		t.Fatalf("Swap2 on <4 bytes should be a no-op, got %x", data)
	}
}

func TestSwapTrailingBytesUntouched(t *testing.T) {
	data := []byte{1, 2, 3, 4, 5, 6}
	Swap1(data)
	want := []byte{4, 3, 2, 1, 5, 6}
	if !bytes.Equal(data, want) {
		t.Fatalf("Swap1 trailing bytes should be untouched, got %x want %x", data, want)
	}
}

func TestSwapUint32(t *testing.T) {
	if got := SwapUint32(0x01020304); got != 0x04030201 {
		t.Fatalf("SwapUint32(0x01020304) = %#x, want 0x04030201", got)
	}
}
