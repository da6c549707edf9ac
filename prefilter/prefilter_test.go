package prefilter

import (
	"testing"
)

func lits(ss ...string) [][]byte {
	out := make([][]byte, len(ss))
	for i, s := range ss {
		out[i] = []byte(s)
	}
	return out
}

func TestNewSelection(t *testing.T) {
	tests := []struct {
		name     string
		literals [][]byte
		wantType string
	}{
		{name: "none", literals: nil, wantType: "nil"},
		{name: "empty literal", literals: lits(""), wantType: "nil"},
		{name: "single byte", literals: lits("x"), wantType: "memchr"},
		{name: "substring", literals: lits("foo"), wantType: "memmem"},
		{name: "alternatives", literals: lits("foo", "bar"), wantType: "ahocorasick"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pf := New(tt.literals)
			var got string
			switch pf.(type) {
			case nil:
				got = "nil"
			case *memchrPrefilter:
				got = "memchr"
			case *memmemPrefilter:
				got = "memmem"
			case *ahoCorasickPrefilter:
				got = "ahocorasick"
			default:
				got = "other"
			}
			if got != tt.wantType {
				t.Errorf("New() type = %s, want %s", got, tt.wantType)
			}
		})
	}
}

func TestFindMatch(t *testing.T) {
	tests := []struct {
		name      string
		literals  [][]byte
		haystack  string
		start     int
		wantStart int
		wantEnd   int
	}{
		{name: "memchr hit", literals: lits("@"), haystack: "user@host", start: 0, wantStart: 4, wantEnd: 5},
		{name: "memchr after start", literals: lits("a"), haystack: "abca", start: 1, wantStart: 3, wantEnd: 4},
		{name: "memchr miss", literals: lits("z"), haystack: "abc", start: 0, wantStart: -1, wantEnd: -1},
		{name: "memmem hit", literals: lits("foo"), haystack: "xxfooxx", start: 0, wantStart: 2, wantEnd: 5},
		{name: "memmem start past", literals: lits("foo"), haystack: "xxfooxx", start: 3, wantStart: -1, wantEnd: -1},
		{name: "start out of range", literals: lits("foo"), haystack: "foo", start: 3, wantStart: -1, wantEnd: -1},
		{name: "alternatives leftmost", literals: lits("foo", "bar"), haystack: "xx bar foo", start: 0, wantStart: 3, wantEnd: 6},
		{name: "alternatives from start", literals: lits("foo", "bar"), haystack: "xx bar foo", start: 4, wantStart: 7, wantEnd: 10},
		{name: "alternatives miss", literals: lits("foo", "bar"), haystack: "baz", start: 0, wantStart: -1, wantEnd: -1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pf := New(tt.literals)
			s, e := pf.FindMatch([]byte(tt.haystack), tt.start)
			if s != tt.wantStart || e != tt.wantEnd {
				t.Errorf("FindMatch() = (%d, %d), want (%d, %d)", s, e, tt.wantStart, tt.wantEnd)
			}
			if got := pf.Find([]byte(tt.haystack), tt.start); got != tt.wantStart {
				t.Errorf("Find() = %d, want %d", got, tt.wantStart)
			}
		})
	}
}

func TestMultiMemmemFallback(t *testing.T) {
	m := newMultiMemmem(lits("cd", "ab", "b"))
	s, e := m.FindMatch([]byte("xxabcd"), 0)
	if s != 2 || e != 4 {
		t.Errorf("FindMatch() = (%d, %d), want (2, 4)", s, e)
	}
}
