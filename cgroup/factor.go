package cgroup

import (
	"slices"
)

// Factor splits sibling branches into a common prefix and per-branch
// remainders such that applying common and then remainder i is equivalent to
// applying branches[i].
//
// Operations are only hoisted where that keeps the application order intact:
//   - reorders are hoisted when identical in every branch
//   - copies are hoisted when identical and the reorders were hoisted
//   - writes and clears are hoisted when every branch performs them and both
//     reorders and copies were hoisted
//   - last-group tags are hoisted when identical and everything before them
//     was hoisted
//
// A write to a slot that every branch also clears is dropped, since the clear
// follows it. FinalRow always stays with the branches.
func Factor(branches []*PartialTransition) (*PartialTransition, []*PartialTransition) {
	common := &PartialTransition{FinalRow: -1}
	rest := make([]*PartialTransition, len(branches))
	for i, b := range branches {
		c := *b
		rest[i] = &c
	}
	if len(branches) < 2 {
		return common, rest
	}

	first := branches[0]
	if !allEqual(branches, func(p *PartialTransition) []int { return p.Reorder }) {
		return common, rest
	}
	common.Reorder = slices.Clone(first.Reorder)
	for _, r := range rest {
		r.Reorder = nil
	}

	if !allEqual(branches, func(p *PartialTransition) []int { return p.Copies }) {
		return common, rest
	}
	common.Copies = slices.Clone(first.Copies)
	for _, r := range rest {
		r.Copies = nil
	}

	writes := make([]slotSet, len(branches))
	clears := make([]slotSet, len(branches))
	for i, b := range branches {
		writes[i] = newSlotSet(b.Updates)
		clears[i] = newSlotSet(b.Clears)
	}
	commonClears := intersect(clears)
	commonWrites := intersect(writes).minus(commonClears)
	common.Updates = commonWrites.ops()
	common.Clears = commonClears.ops()
	for i, r := range rest {
		r.Updates = writes[i].minus(commonWrites).minus(commonClears).ops()
		r.Clears = clears[i].minus(commonClears).ops()
	}

	if allEqual(branches, func(p *PartialTransition) []int { return p.LastGroup }) {
		common.LastGroup = slices.Clone(first.LastGroup)
		for _, r := range rest {
			r.LastGroup = nil
		}
	}
	return common, rest
}

func allEqual(ps []*PartialTransition, field func(*PartialTransition) []int) bool {
	want := field(ps[0])
	for _, p := range ps[1:] {
		if !slices.Equal(want, field(p)) {
			return false
		}
	}
	return true
}

type slot struct{ row, slot int }

type slotSet map[slot]struct{}

func newSlotSet(ops []IndexOp) slotSet {
	s := slotSet{}
	for _, op := range ops {
		for _, x := range op.Slots {
			s[slot{op.Row, x}] = struct{}{}
		}
	}
	return s
}

func intersect(sets []slotSet) slotSet {
	out := slotSet{}
	for k := range sets[0] {
		in := true
		for _, s := range sets[1:] {
			if _, ok := s[k]; !ok {
				in = false
				break
			}
		}
		if in {
			out[k] = struct{}{}
		}
	}
	return out
}

func (s slotSet) minus(o slotSet) slotSet {
	out := slotSet{}
	for k := range s {
		if _, ok := o[k]; !ok {
			out[k] = struct{}{}
		}
	}
	return out
}

// ops returns the set in canonical form: rows ascending, slots ascending.
func (s slotSet) ops() []IndexOp {
	if len(s) == 0 {
		return nil
	}
	byRow := map[int][]int{}
	for k := range s {
		byRow[k.row] = append(byRow[k.row], k.slot)
	}
	rows := make([]int, 0, len(byRow))
	for r := range byRow {
		rows = append(rows, r)
	}
	slices.Sort(rows)
	out := make([]IndexOp, len(rows))
	for i, r := range rows {
		slots := byRow[r]
		slices.Sort(slots)
		out[i] = IndexOp{Row: r, Slots: slots}
	}
	return out
}

// Interner deduplicates structurally equal partial transitions.
type Interner struct {
	buckets map[uint64][]*PartialTransition
	n       int
}

// NewInterner creates an empty interner.
func NewInterner() *Interner {
	return &Interner{buckets: make(map[uint64][]*PartialTransition)}
}

// Intern returns the canonical instance equal to p.
func (in *Interner) Intern(p *PartialTransition) *PartialTransition {
	if p.IsEmpty() {
		return Empty
	}
	h := p.Hash()
	for _, q := range in.buckets[h] {
		if q.Equal(p) {
			return q
		}
	}
	in.buckets[h] = append(in.buckets[h], p)
	in.n++
	return p
}

// Len returns the number of distinct transitions interned.
func (in *Interner) Len() int { return in.n }
