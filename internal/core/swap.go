package core

import (
	"encoding/binary"
	"unsafe"
)

// HostIsBigEndian reports the host's native byte order by inspecting
// the first byte of the in-memory layout of the integer 1.
func HostIsBigEndian() bool {
	var x uint16 = 1
	return *(*byte)(unsafe.Pointer(&x)) != 1
}

// Swap1 reverses each 4-byte group in place: [b0 b1 b2 b3] -> [b3 b2 b1 b0].
// Lengths below 4 are a no-op; trailing bytes outside a full group are
// left untouched.
func Swap1(data []byte) {
	n := len(data) / 4
	for i := 0; i < n; i++ {
		g := data[i*4 : i*4+4]
		g[0], g[1], g[2], g[3] = g[3], g[2], g[1], g[0]
	}
}

// Swap2 swaps byte pairs within each 4-byte group in place:
// [b0 b1 b2 b3] -> [b1 b0 b3 b2]. Lengths below 4 are a no-op; trailing
// bytes outside a full group are left untouched.
func Swap2(data []byte) {
	n := len(data) / 4
	for i := 0; i < n; i++ {
		g := data[i*4 : i*4+4]
		g[0], g[1], g[2], g[3] = g[1], g[0], g[3], g[2]
	}
}

// SwapUint32 byte-reverses a single little-endian uint32 value,
// equivalent to Swap1 applied to its 4-byte encoding.
func SwapUint32(v uint32) uint32 {
	buf := make([]byte, 4)
	binary.LittleEndian.PutUint32(buf, v)
	Swap1(buf)
	return binary.LittleEndian.Uint32(buf)
}
