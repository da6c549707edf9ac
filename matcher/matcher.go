// Package matcher provides the character tests attached to tracking DFA
// transitions.
//
// A transition selects its successor with a Matcher. States with a large
// fan-out replace the per-transition list with a single Tree: one sorted
// boundary array shared by all transitions, searched by bisection.
package matcher

import (
	"sort"
)

// MaxCodePoint is the largest code point any input encoding produces.
const MaxCodePoint = 0x10FFFF

// Matcher reports whether a code point selects a transition.
// Implementations are immutable and safe for concurrent use.
type Matcher interface {
	Match(cp int) bool
}

// Char matches exactly one code point.
type Char int

// Match implements Matcher.
func (c Char) Match(cp int) bool { return cp == int(c) }

// Range matches the inclusive code point range [Lo, Hi].
type Range struct {
	Lo, Hi int
}

// Match implements Matcher.
func (r Range) Match(cp int) bool { return cp >= r.Lo && cp <= r.Hi }

// Ranges matches any of a sorted list of disjoint ranges.
// Use NewRanges to build a normalized value.
type Ranges []Range

// NewRanges sorts and merges the given ranges.
// Overlapping and adjacent ranges are coalesced.
func NewRanges(rs ...Range) Ranges {
	out := make(Ranges, 0, len(rs))
	for _, r := range rs {
		if r.Lo <= r.Hi {
			out = append(out, r)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Lo < out[j].Lo })

	merged := out[:0]
	for _, r := range out {
		if n := len(merged); n > 0 && r.Lo <= merged[n-1].Hi+1 {
			if r.Hi > merged[n-1].Hi {
				merged[n-1].Hi = r.Hi
			}
			continue
		}
		merged = append(merged, r)
	}
	return merged
}

// Match implements Matcher using binary search.
func (rs Ranges) Match(cp int) bool {
	lo, hi := 0, len(rs)
	for lo < hi {
		mid := int(uint(lo+hi) >> 1)
		switch {
		case cp < rs[mid].Lo:
			hi = mid
		case cp > rs[mid].Hi:
			lo = mid + 1
		default:
			return true
		}
	}
	return false
}

// Table matches code points below 256 by bitmap lookup.
// Code points at or above 256 never match.
type Table [4]uint64

// NewTable builds a table matching every byte-range code point m matches.
func NewTable(m Matcher) *Table {
	var t Table
	for b := 0; b < 256; b++ {
		if m.Match(b) {
			t[b>>6] |= 1 << (uint(b) & 63)
		}
	}
	return &t
}

// Match implements Matcher.
func (t *Table) Match(cp int) bool {
	if cp < 0 || cp >= 256 {
		return false
	}
	return t[cp>>6]&(1<<(uint(cp)&63)) != 0
}

// Not inverts another matcher.
type Not struct {
	M Matcher
}

// Match implements Matcher.
func (n Not) Match(cp int) bool { return !n.M.Match(cp) }

// Any matches every code point.
type Any struct{}

// Match implements Matcher.
func (Any) Match(int) bool { return true }
