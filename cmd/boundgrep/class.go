package main

import (
	"fmt"
	"unicode/utf8"

	"github.com/coregx/tdfa/matcher"
)

// parseClass parses a bracket-less character class such as "a-z0-9_" or
// "^ \t". A leading '^' negates the class and '\' escapes the next character.
func parseClass(s string) (matcher.Matcher, error) {
	if s == "" {
		return nil, fmt.Errorf("empty character class")
	}
	negate := false
	if s[0] == '^' && len(s) > 1 {
		negate = true
		s = s[1:]
	}

	var runes []rune
	var escaped []bool
	for i := 0; i < len(s); {
		r, n := utf8.DecodeRuneInString(s[i:])
		if r == utf8.RuneError && n == 1 {
			return nil, fmt.Errorf("invalid UTF-8 in class at byte %d", i)
		}
		i += n
		if r == '\\' {
			if i == len(s) {
				return nil, fmt.Errorf("trailing backslash in class")
			}
			r, n = utf8.DecodeRuneInString(s[i:])
			i += n
			runes = append(runes, unescape(r))
			escaped = append(escaped, true)
			continue
		}
		runes = append(runes, r)
		escaped = append(escaped, false)
	}

	var ranges []matcher.Range
	for i := 0; i < len(runes); i++ {
		lo := runes[i]
		if i+2 < len(runes) && runes[i+1] == '-' && !escaped[i+1] {
			hi := runes[i+2]
			if hi < lo {
				return nil, fmt.Errorf("invalid range %c-%c", lo, hi)
			}
			ranges = append(ranges, matcher.Range{Lo: int(lo), Hi: int(hi)})
			i += 2
			continue
		}
		ranges = append(ranges, matcher.Range{Lo: int(lo), Hi: int(lo)})
	}

	var m matcher.Matcher = matcher.NewRanges(ranges...)
	if negate {
		m = matcher.Not{M: m}
	}
	return m, nil
}

func unescape(r rune) rune {
	switch r {
	case 't':
		return '\t'
	case 'n':
		return '\n'
	case 'r':
		return '\r'
	}
	return r
}
