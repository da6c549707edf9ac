// Package input provides the input sources a tracking DFA reads from.
//
// The executor never decodes raw bytes itself. It reads code points through
// the Input interface, which hides the string encoding and offers bulk
// index-of primitives for the executor's fast paths.
//
// All indices are measured in code units of the encoding: bytes for Latin-1
// and UTF-8, uint16 units for UTF-16 and runes for UTF-32.
package input

import (
	"fmt"

	"github.com/coregx/tdfa/matcher"
)

// Encoding identifies the code unit format of an input.
type Encoding uint8

const (
	// Latin1 inputs hold one byte per code point (U+0000..U+00FF).
	Latin1 Encoding = iota

	// UTF8 inputs hold variable length UTF-8 sequences.
	UTF8

	// UTF16 inputs hold uint16 units with surrogate pairs.
	UTF16

	// UTF32 inputs hold one rune per code point.
	UTF32
)

// String returns the encoding name.
func (e Encoding) String() string {
	switch e {
	case Latin1:
		return "Latin1"
	case UTF8:
		return "UTF8"
	case UTF16:
		return "UTF16"
	case UTF32:
		return "UTF32"
	default:
		return fmt.Sprintf("UnknownEncoding(%d)", e)
	}
}

// NumClasses is the number of code point classes any encoding uses.
const NumClasses = 4

// Class returns the encoding-specific class of a code point.
//
// Transitions can carry one matcher per class so that each matcher only needs
// to cover the code points the encoding can produce in that class:
//   - Latin1: always 0
//   - UTF8: encoded length minus one (0..3)
//   - UTF16, UTF32: 0 for Latin-1, 1 for the rest of the BMP, 2 for astral
func (e Encoding) Class(cp int) int {
	switch e {
	case UTF8:
		switch {
		case cp < 0x80:
			return 0
		case cp < 0x800:
			return 1
		case cp < 0x10000:
			return 2
		default:
			return 3
		}
	case UTF16, UTF32:
		switch {
		case cp < 0x100:
			return 0
		case cp < 0x10000:
			return 1
		default:
			return 2
		}
	default:
		return 0
	}
}

// Input is a random-access source of code points.
//
// Implementations are read-only views; the same Input may be searched by
// concurrent calls.
type Input interface {
	// Encoding returns the code unit format.
	Encoding() Encoding

	// Len returns the input length in code units.
	Len() int

	// Read decodes the code point starting at i and returns it with the index
	// of the next code point. Requires 0 <= i < Len().
	Read(i int) (cp, next int)

	// ReadBack decodes the code point ending at i and returns it with the
	// index where it starts. Requires 0 < i <= Len().
	ReadBack(i int) (cp, prev int)

	// IndexOfNot returns the first index in [from, to) holding a code point
	// that may not stay in the loop described by a, or to if all of them do.
	// Implementations may stop early at any code point they cannot classify
	// cheaply.
	IndexOfNot(from, to int, a *matcher.Accel) int

	// IndexOfLiteral returns the bounds of the leftmost occurrence of any of
	// lit's alternatives lying within [from, to), or (-1, -1).
	IndexOfLiteral(from, to int, lit *Literal) (start, end int)
}
