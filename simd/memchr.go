package simd

import (
	"encoding/binary"
	"math/bits"
)

// Memchr returns the index of the first instance of needle in haystack,
// or -1 if needle is not present in haystack.
//
// Equivalent to bytes.IndexByte.
//
// Example:
//
//	pos := simd.Memchr([]byte("hello world"), 'o')
//	// pos == 4
func Memchr(haystack []byte, needle byte) int {
	if len(haystack) == 0 {
		return -1
	}
	if wide && len(haystack) >= wideMin {
		return memchrWide(haystack, needle)
	}
	return memchrSWAR(haystack, needle, 0)
}

// memchrSWAR scans haystack[from:] 8 bytes at a time.
func memchrSWAR(haystack []byte, needle byte, from int) int {
	n := len(haystack)
	mask := uint64(needle) * lo8
	idx := from
	for idx+8 <= n {
		// XOR makes matching bytes 0x00
		hit := zeroBytes(binary.LittleEndian.Uint64(haystack[idx:]) ^ mask)
		if hit != 0 {
			return idx + bits.TrailingZeros64(hit)/8
		}
		idx += 8
	}
	for ; idx < n; idx++ {
		if haystack[idx] == needle {
			return idx
		}
	}
	return -1
}

// memchrWide checks four words per iteration and only pinpoints the byte
// once any of them reports a hit.
func memchrWide(haystack []byte, needle byte) int {
	n := len(haystack)
	mask := uint64(needle) * lo8
	idx := 0
	for idx+32 <= n {
		a := zeroBytes(binary.LittleEndian.Uint64(haystack[idx:]) ^ mask)
		b := zeroBytes(binary.LittleEndian.Uint64(haystack[idx+8:]) ^ mask)
		c := zeroBytes(binary.LittleEndian.Uint64(haystack[idx+16:]) ^ mask)
		d := zeroBytes(binary.LittleEndian.Uint64(haystack[idx+24:]) ^ mask)
		if a|b|c|d != 0 {
			switch {
			case a != 0:
				return idx + bits.TrailingZeros64(a)/8
			case b != 0:
				return idx + 8 + bits.TrailingZeros64(b)/8
			case c != 0:
				return idx + 16 + bits.TrailingZeros64(c)/8
			default:
				return idx + 24 + bits.TrailingZeros64(d)/8
			}
		}
		idx += 32
	}
	return memchrSWAR(haystack, needle, idx)
}
