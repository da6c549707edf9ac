package matcher

import (
	"fmt"
	"sort"
)

// Tree holds all transitions of one state in a single sorted boundary array.
//
// Bounds is strictly ascending. Slot i covers the code points in
// [Bounds[i-1], Bounds[i]), with implicit outer boundaries 0 and
// MaxCodePoint+1, so len(Slots) == len(Bounds)+1. A slot holds the index of
// the selected transition, or -1 if no transition matches.
type Tree struct {
	Bounds []int
	Slots  []int
}

// NewTree merges the given per-transition range lists into a Tree.
// Transition i owns ranges[i]; ranges of different transitions must not
// overlap.
func NewTree(ranges []Ranges) (*Tree, error) {
	type span struct{ lo, hi, slot int }
	var spans []span
	for i, rs := range ranges {
		for _, r := range rs {
			spans = append(spans, span{r.Lo, r.Hi, i})
		}
	}
	sort.Slice(spans, func(a, b int) bool { return spans[a].lo < spans[b].lo })

	t := &Tree{Slots: []int{-1}}
	next := 0
	for _, s := range spans {
		if s.lo < next {
			return nil, fmt.Errorf("matcher: overlapping ranges at %#x", s.lo)
		}
		if s.lo > next {
			t.Bounds = append(t.Bounds, s.lo)
			t.Slots = append(t.Slots, s.slot)
		} else {
			// Range starts at the current boundary: overwrite the open slot.
			t.Slots[len(t.Slots)-1] = s.slot
		}
		next = s.hi + 1
		if next <= MaxCodePoint {
			t.Bounds = append(t.Bounds, next)
			t.Slots = append(t.Slots, -1)
		}
	}
	return t, nil
}

// Find returns the slot of the range containing cp.
func (t *Tree) Find(cp int) int {
	return t.find(cp, 0, len(t.Bounds))
}

// find bisects Bounds[lo:hi]. The answer is Slots[k] where k is the number
// of bounds <= cp.
func (t *Tree) find(cp, lo, hi int) int {
	if lo == hi {
		return t.Slots[lo]
	}
	mid := int(uint(lo+hi) >> 1)
	if cp < t.Bounds[mid] {
		return t.find(cp, lo, mid)
	}
	return t.find(cp, mid+1, hi)
}
