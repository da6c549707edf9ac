// Package prefilter provides fast literal finders for the tracking DFA's
// inner-literal states.
//
// An inner-literal state does not match characters one by one. It jumps the
// cursor straight to the next occurrence of a literal that every match must
// contain, and lets the automaton verify the surroundings. The finder used
// for the jump is selected from the literal set:
//   - Single byte → memchr (SWAR byte search)
//   - Single substring → memmem (memchr on the last byte + verification)
//   - Several alternatives → Aho-Corasick automaton
//
// Example usage:
//
//	pf := prefilter.New([][]byte{[]byte("foo"), []byte("bar")})
//	start, end := pf.FindMatch([]byte("xx bar foo"), 0)
//	// start == 3, end == 6
package prefilter

import (
	"github.com/coregx/ahocorasick"

	"github.com/coregx/tdfa/simd"
)

// Prefilter finds literal occurrences in a byte haystack.
type Prefilter interface {
	// Find returns the index of the first literal occurrence starting at or
	// after start, or -1 if there is none.
	Find(haystack []byte, start int) int

	// FindMatch returns the bounds of the first literal occurrence starting
	// at or after start, or (-1, -1). The matched bytes are haystack[s:e].
	FindMatch(haystack []byte, start int) (s, e int)
}

// New builds the best finder for the given literal alternatives.
//
// Returns nil if literals is empty or contains an empty literal, since an
// empty literal matches everywhere and there is nothing to skip.
func New(literals [][]byte) Prefilter {
	if len(literals) == 0 {
		return nil
	}
	for _, lit := range literals {
		if len(lit) == 0 {
			return nil
		}
	}

	if len(literals) == 1 {
		lit := literals[0]
		if len(lit) == 1 {
			return &memchrPrefilter{needle: lit[0]}
		}
		return newMemmemPrefilter(lit)
	}

	builder := ahocorasick.NewBuilder()
	for _, lit := range literals {
		builder.AddPattern(lit)
	}
	auto, err := builder.Build()
	if err != nil {
		// The automaton can't be built; scan for each literal instead.
		return newMultiMemmem(literals)
	}
	return &ahoCorasickPrefilter{auto: auto}
}

// memchrPrefilter wraps simd.Memchr as a Prefilter.
type memchrPrefilter struct {
	needle byte
}

// Find implements Prefilter.Find using simd.Memchr.
func (p *memchrPrefilter) Find(haystack []byte, start int) int {
	if start < 0 || start >= len(haystack) {
		return -1
	}
	idx := simd.Memchr(haystack[start:], p.needle)
	if idx == -1 {
		return -1
	}
	return start + idx
}

// FindMatch implements Prefilter.FindMatch.
func (p *memchrPrefilter) FindMatch(haystack []byte, start int) (int, int) {
	pos := p.Find(haystack, start)
	if pos == -1 {
		return -1, -1
	}
	return pos, pos + 1
}

// memmemPrefilter wraps simd.Memmem as a Prefilter.
type memmemPrefilter struct {
	needle []byte
}

// newMemmemPrefilter copies needle to prevent aliasing.
func newMemmemPrefilter(needle []byte) *memmemPrefilter {
	needleCopy := make([]byte, len(needle))
	copy(needleCopy, needle)
	return &memmemPrefilter{needle: needleCopy}
}

// Find implements Prefilter.Find using simd.Memmem.
func (p *memmemPrefilter) Find(haystack []byte, start int) int {
	if start < 0 || start >= len(haystack) {
		return -1
	}
	idx := simd.Memmem(haystack[start:], p.needle)
	if idx == -1 {
		return -1
	}
	return start + idx
}

// FindMatch implements Prefilter.FindMatch.
func (p *memmemPrefilter) FindMatch(haystack []byte, start int) (int, int) {
	pos := p.Find(haystack, start)
	if pos == -1 {
		return -1, -1
	}
	return pos, pos + len(p.needle)
}

// ahoCorasickPrefilter searches several literals in one pass.
type ahoCorasickPrefilter struct {
	auto *ahocorasick.Automaton
}

// Find implements Prefilter.Find.
func (p *ahoCorasickPrefilter) Find(haystack []byte, start int) int {
	s, _ := p.FindMatch(haystack, start)
	return s
}

// FindMatch implements Prefilter.FindMatch.
func (p *ahoCorasickPrefilter) FindMatch(haystack []byte, start int) (int, int) {
	if start < 0 || start >= len(haystack) {
		return -1, -1
	}
	m := p.auto.Find(haystack, start)
	if m == nil {
		return -1, -1
	}
	return m.Start, m.End
}

// multiMemmem is the fallback when the Aho-Corasick automaton can't be built.
// It returns the leftmost occurrence, preferring earlier literals on ties.
type multiMemmem struct {
	finders []*memmemPrefilter
}

func newMultiMemmem(literals [][]byte) *multiMemmem {
	m := &multiMemmem{finders: make([]*memmemPrefilter, len(literals))}
	for i, lit := range literals {
		m.finders[i] = newMemmemPrefilter(lit)
	}
	return m
}

// Find implements Prefilter.Find.
func (m *multiMemmem) Find(haystack []byte, start int) int {
	s, _ := m.FindMatch(haystack, start)
	return s
}

// FindMatch implements Prefilter.FindMatch.
func (m *multiMemmem) FindMatch(haystack []byte, start int) (int, int) {
	bestStart, bestEnd := -1, -1
	for _, f := range m.finders {
		s, e := f.FindMatch(haystack, start)
		if s != -1 && (bestStart == -1 || s < bestStart) {
			bestStart, bestEnd = s, e
		}
	}
	return bestStart, bestEnd
}
