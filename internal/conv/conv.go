// Package conv provides checked integer conversion helpers for the tracking DFA.
//
// These functions perform bounds checking before narrowing integer conversions
// to prevent silent overflow. They panic on overflow since this indicates a
// programming error (e.g., an automaton too large for the internal encodings).
package conv

import "math"

// IntToInt32 safely converts an int to int32.
// Panics if n is outside the int32 range.
//
//go:inline
func IntToInt32(n int) int32 {
	if n < math.MinInt32 || n > math.MaxInt32 {
		panic("integer overflow: int value out of int32 range")
	}
	return int32(n)
}

// IntToField converts n to an unsigned bit field of the given width.
// Panics if n < 0 or n does not fit in width bits.
func IntToField(n int, width uint) uint64 {
	if n < 0 || uint64(n) >= uint64(1)<<width {
		panic("integer overflow: value does not fit in bit field")
	}
	return uint64(n)
}

// PackPair packs two int32-representable values into one uint64.
// hi occupies bits 32-63, lo occupies bits 0-31 (two's complement).
func PackPair(hi, lo int) uint64 {
	return uint64(uint32(IntToInt32(hi)))<<32 | uint64(uint32(IntToInt32(lo)))
}

// UnpackPair is the inverse of PackPair.
func UnpackPair(v uint64) (hi, lo int) {
	//nolint:gosec // G115: truncation to 32 bits is the encoding
	return int(int32(uint32(v >> 32))), int(int32(uint32(v)))
}
