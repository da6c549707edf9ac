package input

import (
	"unicode/utf16"

	"github.com/coregx/tdfa/matcher"
)

// UTF16Input is a slice of UTF-16 code units.
// Unpaired surrogates decode as themselves.
type UTF16Input []uint16

// NewUTF16 encodes s as UTF-16.
func NewUTF16(s string) UTF16Input {
	return UTF16Input(utf16.Encode([]rune(s)))
}

// Encoding implements Input.
func (UTF16Input) Encoding() Encoding { return UTF16 }

// Len implements Input.
func (s UTF16Input) Len() int { return len(s) }

// Read implements Input.
func (s UTF16Input) Read(i int) (int, int) {
	u := rune(s[i])
	if utf16.IsSurrogate(u) && u < 0xDC00 && i+1 < len(s) {
		if r := utf16.DecodeRune(u, rune(s[i+1])); r != 0xFFFD {
			return int(r), i + 2
		}
	}
	return int(u), i + 1
}

// ReadBack implements Input.
func (s UTF16Input) ReadBack(i int) (int, int) {
	u := rune(s[i-1])
	if utf16.IsSurrogate(u) && u >= 0xDC00 && i >= 2 {
		if r := utf16.DecodeRune(rune(s[i-2]), u); r != 0xFFFD {
			return int(r), i - 2
		}
	}
	return int(u), i - 1
}

// IndexOfNot implements Input. Surrogates always stop the scan.
func (s UTF16Input) IndexOfNot(from, to int, a *matcher.Accel) int {
	for i := from; i < to; i++ {
		u := s[i]
		if u < 0x100 {
			if !a.Latin1[u] {
				return i
			}
			continue
		}
		if utf16.IsSurrogate(rune(u)) || !a.Loop.Match(int(u)) {
			return i
		}
	}
	return to
}

// IndexOfLiteral implements Input.
func (s UTF16Input) IndexOfLiteral(from, to int, lit *Literal) (int, int) {
	return indexOfUnits(s[:to], from, lit.utf16)
}

// UTF32Input is a slice of code points.
type UTF32Input []rune

// Encoding implements Input.
func (UTF32Input) Encoding() Encoding { return UTF32 }

// Len implements Input.
func (s UTF32Input) Len() int { return len(s) }

// Read implements Input.
func (s UTF32Input) Read(i int) (int, int) { return int(s[i]), i + 1 }

// ReadBack implements Input.
func (s UTF32Input) ReadBack(i int) (int, int) { return int(s[i-1]), i - 1 }

// IndexOfNot implements Input.
func (s UTF32Input) IndexOfNot(from, to int, a *matcher.Accel) int {
	for i := from; i < to; i++ {
		r := s[i]
		if r >= 0 && r < 0x100 {
			if !a.Latin1[r] {
				return i
			}
			continue
		}
		if !a.Loop.Match(int(r)) {
			return i
		}
	}
	return to
}

// IndexOfLiteral implements Input.
func (s UTF32Input) IndexOfLiteral(from, to int, lit *Literal) (int, int) {
	return indexOfUnits(s[:to], from, lit.utf32)
}

// indexOfUnits finds the leftmost occurrence of any alternative at or after
// from. Earlier alternatives win ties.
func indexOfUnits[T uint16 | rune](h []T, from int, alts [][]T) (int, int) {
	for i := from; i < len(h); i++ {
		for _, alt := range alts {
			if len(alt) > len(h)-i || h[i] != alt[0] {
				continue
			}
			if equalUnits(h[i:i+len(alt)], alt) {
				return i, i + len(alt)
			}
		}
	}
	return -1, -1
}

func equalUnits[T uint16 | rune](a, b []T) bool {
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
