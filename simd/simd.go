// Package simd provides word-parallel byte search primitives used by the
// tracking DFA for its bulk index-of operations: fast-forwarding through
// self-loop states and locating inner literals.
//
// All routines are pure Go. They process 8 bytes per step using SWAR
// (SIMD Within A Register) arithmetic on uint64 words. On CPUs with wide
// vector units and fast unaligned loads (AVX2 on x86-64, ASIMD on arm64) the
// loops are unrolled to 32 bytes per iteration, which lets the compiler keep
// four independent words in flight.
package simd

import "golang.org/x/sys/cpu"

// CPU feature detection flags set at package initialization.
var (
	// wide selects the 32-bytes-per-iteration loops.
	wide = cpu.X86.HasAVX2 || cpu.ARM64.HasASIMD
)

// wideMin is the haystack length below which the unrolled loops do not pay
// for their setup.
const wideMin = 64

// Wide reports whether the unrolled 32-byte loops are in use.
func Wide() bool {
	return wide
}

const (
	lo8 = 0x0101010101010101
	hi8 = 0x8080808080808080
)

// zeroBytes returns a word with the high bit set in every byte of v that is zero.
//
// Formula (Hacker's Delight): (v - 0x01..01) & ^v & 0x80..80
func zeroBytes(v uint64) uint64 {
	return (v - lo8) & ^v & hi8
}
