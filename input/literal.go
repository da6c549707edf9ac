package input

import (
	"unicode/utf16"

	"github.com/coregx/tdfa/prefilter"
)

// Literal is a set of literal alternatives pre-encoded for every encoding.
// An inner-literal state jumps to the leftmost occurrence of any of them.
type Literal struct {
	alts   []string
	latin1 prefilter.Prefilter
	utf8   prefilter.Prefilter
	utf16  [][]uint16
	utf32  [][]rune
}

// NewLiteral encodes the given non-empty alternatives.
// Alternatives that contain code points above U+00FF can't occur in Latin-1
// input and are left out of the Latin-1 finder.
func NewLiteral(alts ...string) *Literal {
	lit := &Literal{alts: append([]string(nil), alts...)}

	var latin1, utf8 [][]byte
	for _, a := range alts {
		runes := []rune(a)
		utf8 = append(utf8, []byte(a))
		lit.utf16 = append(lit.utf16, utf16.Encode(runes))
		lit.utf32 = append(lit.utf32, runes)
		if enc, ok := encodeLatin1(runes); ok {
			latin1 = append(latin1, enc)
		}
	}
	lit.utf8 = prefilter.New(utf8)
	lit.latin1 = prefilter.New(latin1)
	return lit
}

// Alternatives returns the literal alternatives.
func (l *Literal) Alternatives() []string { return l.alts }

// MinLen returns the length in code points of the shortest alternative.
func (l *Literal) MinLen() int {
	n := -1
	for _, r := range l.utf32 {
		if n < 0 || len(r) < n {
			n = len(r)
		}
	}
	return n
}

func encodeLatin1(runes []rune) ([]byte, bool) {
	out := make([]byte, len(runes))
	for i, r := range runes {
		if r < 0 || r > 0xFF {
			return nil, false
		}
		out[i] = byte(r)
	}
	return out, true
}
