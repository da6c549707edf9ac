package matcher

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestNewRanges(t *testing.T) {
	tests := []struct {
		name string
		in   []Range
		want Ranges
	}{
		{name: "empty", in: nil, want: Ranges{}},
		{name: "sorted", in: []Range{{5, 6}, {1, 2}}, want: Ranges{{1, 2}, {5, 6}}},
		{name: "overlap", in: []Range{{1, 5}, {3, 9}}, want: Ranges{{1, 9}}},
		{name: "adjacent", in: []Range{{1, 2}, {3, 4}}, want: Ranges{{1, 4}}},
		{name: "contained", in: []Range{{1, 10}, {3, 4}}, want: Ranges{{1, 10}}},
		{name: "inverted dropped", in: []Range{{4, 3}, {7, 7}}, want: Ranges{{7, 7}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := NewRanges(tt.in...)
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("NewRanges() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestMatchers(t *testing.T) {
	digits := NewRanges(Range{'0', '9'}, Range{0x660, 0x669})
	tests := []struct {
		name string
		m    Matcher
		cp   int
		want bool
	}{
		{name: "char hit", m: Char('a'), cp: 'a', want: true},
		{name: "char miss", m: Char('a'), cp: 'b', want: false},
		{name: "range low", m: Range{'a', 'z'}, cp: 'a', want: true},
		{name: "range high", m: Range{'a', 'z'}, cp: 'z', want: true},
		{name: "range out", m: Range{'a', 'z'}, cp: '{', want: false},
		{name: "ranges ascii", m: digits, cp: '5', want: true},
		{name: "ranges arabic", m: digits, cp: 0x665, want: true},
		{name: "ranges gap", m: digits, cp: 'a', want: false},
		{name: "table hit", m: NewTable(Range{'a', 'c'}), cp: 'b', want: true},
		{name: "table wide", m: NewTable(Any{}), cp: 0x100, want: false},
		{name: "not", m: Not{Char('x')}, cp: 'y', want: true},
		{name: "any", m: Any{}, cp: MaxCodePoint, want: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.m.Match(tt.cp); got != tt.want {
				t.Errorf("Match(%#x) = %v, want %v", tt.cp, got, tt.want)
			}
		})
	}
}

func TestTreeFind(t *testing.T) {
	tree, err := NewTree([]Ranges{
		NewRanges(Range{'a', 'f'}),
		NewRanges(Range{'0', '9'}, Range{'g', 'z'}),
		NewRanges(Range{0x10000, MaxCodePoint}),
	})
	if err != nil {
		t.Fatalf("NewTree() error = %v", err)
	}

	tests := []struct {
		cp   int
		want int
	}{
		{0, -1},
		{'/', -1},
		{'0', 1},
		{'9', 1},
		{':', -1},
		{'a', 0},
		{'f', 0},
		{'g', 1},
		{'z', 1},
		{'{', -1},
		{0xFFFF, -1},
		{0x10000, 2},
		{MaxCodePoint, 2},
	}
	for _, tt := range tests {
		if got := tree.Find(tt.cp); got != tt.want {
			t.Errorf("Find(%#x) = %d, want %d", tt.cp, got, tt.want)
		}
	}
}

func TestTreeAgreesWithRanges(t *testing.T) {
	sets := []Ranges{
		NewRanges(Range{'a', 'a'}, Range{'c', 'c'}, Range{'e', 'e'}),
		NewRanges(Range{'b', 'b'}, Range{'d', 'd'}),
		NewRanges(Range{0, 0x20}),
	}
	tree, err := NewTree(sets)
	if err != nil {
		t.Fatalf("NewTree() error = %v", err)
	}
	for cp := 0; cp < 0x200; cp++ {
		want := -1
		for i, rs := range sets {
			if rs.Match(cp) {
				want = i
				break
			}
		}
		if got := tree.Find(cp); got != want {
			t.Fatalf("Find(%#x) = %d, want %d", cp, got, want)
		}
	}
}

func TestTreeOverlap(t *testing.T) {
	_, err := NewTree([]Ranges{
		NewRanges(Range{'a', 'm'}),
		NewRanges(Range{'k', 'z'}),
	})
	if err == nil {
		t.Error("NewTree() with overlapping ranges: expected error")
	}
}

func TestNewAccel(t *testing.T) {
	a := NewAccel(Not{Char('\n')})
	if !a.Latin1[0xE9] {
		t.Error("Latin1[0xE9] = false, want true")
	}
	if a.ASCII[0xE9] {
		t.Error("ASCII[0xE9] = true, want false")
	}
	if a.Latin1['\n'] || a.ASCII['\n'] {
		t.Error("newline must stop the scan")
	}
	if !a.ASCII['x'] {
		t.Error("ASCII['x'] = false, want true")
	}
}
