package simd

import "bytes"

// Memmem returns the index of the first instance of needle in haystack,
// or -1 if needle is not present in haystack.
//
// Equivalent to bytes.Index. Candidates are located with Memchr on the last
// byte of the needle, then verified in full.
//
// Example:
//
//	pos := simd.Memmem([]byte("aaaaaabaaaa"), []byte("aab"))
//	// pos == 5
func Memmem(haystack, needle []byte) int {
	needleLen := len(needle)
	haystackLen := len(haystack)

	// Empty needle matches at start (mimics bytes.Index behavior)
	if needleLen == 0 {
		return 0
	}
	if haystackLen == 0 || needleLen > haystackLen {
		return -1
	}
	if needleLen == 1 {
		return Memchr(haystack, needle[0])
	}

	last := needleLen - 1
	rare := needle[last]

	// The last needle byte can't occur at an index below last.
	searchStart := last
	for searchStart < haystackLen {
		pos := Memchr(haystack[searchStart:], rare)
		if pos == -1 {
			return -1
		}
		pos += searchStart
		start := pos - last
		if bytes.Equal(haystack[start:pos+1], needle) {
			return start
		}
		searchStart = pos + 1
	}
	return -1
}
