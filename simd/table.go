package simd

// MemchrInTable finds the first byte where table[byte] is true.
// Returns position or -1 if not found.
func MemchrInTable(haystack []byte, table *[256]bool) int {
	if len(haystack) == 0 || table == nil {
		return -1
	}
	return scanTable(haystack, table, true)
}

// MemchrNotInTable finds the first byte where table[byte] is false.
// Returns position or -1 if all bytes have table[byte] == true.
//
// This is the primitive behind self-loop fast-forwarding: the table holds the
// bytes that keep the automaton in its current state.
func MemchrNotInTable(haystack []byte, table *[256]bool) int {
	if len(haystack) == 0 || table == nil {
		return -1
	}
	return scanTable(haystack, table, false)
}

// scanTable returns the first index i with table[haystack[i]] == want.
func scanTable(haystack []byte, table *[256]bool, want bool) int {
	idx := 0
	if wide {
		// One combined test per 8 bytes; the common case is a long run of
		// bytes that all stay in (or out of) the set.
		for idx+8 <= len(haystack) {
			h := haystack[idx : idx+8 : idx+8]
			if table[h[0]] == want || table[h[1]] == want ||
				table[h[2]] == want || table[h[3]] == want ||
				table[h[4]] == want || table[h[5]] == want ||
				table[h[6]] == want || table[h[7]] == want {
				break
			}
			idx += 8
		}
	}
	for ; idx < len(haystack); idx++ {
		if table[haystack[idx]] == want {
			return idx
		}
	}
	return -1
}
