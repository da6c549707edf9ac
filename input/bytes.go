package input

import (
	"unicode/utf8"

	"github.com/coregx/tdfa/matcher"
	"github.com/coregx/tdfa/simd"
)

// Latin1Input is a byte slice read as Latin-1.
type Latin1Input []byte

// Encoding implements Input.
func (Latin1Input) Encoding() Encoding { return Latin1 }

// Len implements Input.
func (b Latin1Input) Len() int { return len(b) }

// Read implements Input.
func (b Latin1Input) Read(i int) (int, int) { return int(b[i]), i + 1 }

// ReadBack implements Input.
func (b Latin1Input) ReadBack(i int) (int, int) { return int(b[i-1]), i - 1 }

// IndexOfNot implements Input.
func (b Latin1Input) IndexOfNot(from, to int, a *matcher.Accel) int {
	idx := simd.MemchrNotInTable(b[from:to], &a.Latin1)
	if idx < 0 {
		return to
	}
	return from + idx
}

// IndexOfLiteral implements Input.
func (b Latin1Input) IndexOfLiteral(from, to int, lit *Literal) (int, int) {
	if lit.latin1 == nil {
		return -1, -1
	}
	return lit.latin1.FindMatch(b[:to], from)
}

// UTF8Input is a byte slice holding UTF-8 text.
// Invalid sequences decode as utf8.RuneError, one byte at a time.
type UTF8Input []byte

// Encoding implements Input.
func (UTF8Input) Encoding() Encoding { return UTF8 }

// Len implements Input.
func (b UTF8Input) Len() int { return len(b) }

// Read implements Input.
func (b UTF8Input) Read(i int) (int, int) {
	if c := b[i]; c < utf8.RuneSelf {
		return int(c), i + 1
	}
	r, size := utf8.DecodeRune(b[i:])
	return int(r), i + size
}

// ReadBack implements Input.
func (b UTF8Input) ReadBack(i int) (int, int) {
	if c := b[i-1]; c < utf8.RuneSelf {
		return int(c), i - 1
	}
	r, size := utf8.DecodeLastRune(b[:i])
	return int(r), i - size
}

// IndexOfNot implements Input. Non-ASCII bytes always stop the scan.
func (b UTF8Input) IndexOfNot(from, to int, a *matcher.Accel) int {
	idx := simd.MemchrNotInTable(b[from:to], &a.ASCII)
	if idx < 0 {
		return to
	}
	return from + idx
}

// IndexOfLiteral implements Input.
func (b UTF8Input) IndexOfLiteral(from, to int, lit *Literal) (int, int) {
	if lit.utf8 == nil {
		return -1, -1
	}
	return lit.utf8.FindMatch(b[:to], from)
}
