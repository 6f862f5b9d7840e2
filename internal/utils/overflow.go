// Package utils provides small helpers shared across the container and
// type-parser packages: overflow-checked arithmetic over untrusted
// file-derived offsets/lengths, and a scratch-buffer pool for the
// container reader's small fixed-size copies.
package utils

import (
	"fmt"
	"math"
)

// SafeAdd adds two uint64 values, returning an error instead of
// silently wrapping if the sum would overflow. Every sector/fix-up/
// marshal bounds check in internal/core combines offsets and lengths
// read from an untrusted file, so raw + is not safe here.
func SafeAdd(a, b uint64) (uint64, error) {
	if a > math.MaxUint64-b {
		return 0, fmt.Errorf("utils: %d + %d overflows uint64", a, b)
	}
	return a + b, nil
}

// SafeMultiply multiplies two uint64 values, returning an error
// instead of wrapping on overflow.
func SafeMultiply(a, b uint64) (uint64, error) {
	if a == 0 || b == 0 {
		return 0, nil
	}
	if a > math.MaxUint64/b {
		return 0, fmt.Errorf("utils: %d * %d overflows uint64", a, b)
	}
	return a * b, nil
}

// CheckBounds reports whether [offset, offset+length) lies entirely
// inside a buffer of size total, failing safe (false) on any overflow
// in the addition rather than wrapping around to a small sum.
func CheckBounds(offset, length, total uint64) bool {
	end, err := SafeAdd(offset, length)
	if err != nil {
		return false
	}
	return end <= total
}
