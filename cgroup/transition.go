package cgroup

import (
	"fmt"
	"hash/fnv"
	"slices"
	"strings"
)

// IndexOp writes to (or clears) a set of slots of one row.
type IndexOp struct {
	Row   int
	Slots []int
}

// PartialTransition describes the capture-table edits of one DFA transition.
//
// Apply performs them in this order: reorder rows, copy rows, write the
// current index, clear slots, write last-group tags. Copies therefore see the
// reordered rows, and writes land in their final positions.
type PartialTransition struct {
	// Reorder lists pairs (a, b) of logical rows to exchange, in order.
	Reorder []int

	// Copies lists pairs (src, dst): row dst becomes a copy of row src.
	Copies []int

	// Updates lists slots that receive the current index.
	Updates []IndexOp

	// Clears lists slots reset to Unset.
	Clears []IndexOp

	// LastGroup lists pairs (row, group) written to the last-group slot.
	LastGroup []int

	// FinalRow is the row exported by ApplyFinal, or -1.
	FinalRow int
}

// Empty is the partial transition that changes nothing.
var Empty = &PartialTransition{FinalRow: -1}

// IsEmpty reports whether p performs no edits.
func (p *PartialTransition) IsEmpty() bool {
	return len(p.Reorder) == 0 && len(p.Copies) == 0 && len(p.Updates) == 0 &&
		len(p.Clears) == 0 && len(p.LastGroup) == 0 && p.FinalRow < 0
}

// Apply performs the edits on the table. index is the value written by
// Updates.
func (p *PartialTransition) Apply(s *Storage, index int) {
	for i := 0; i+1 < len(p.Reorder); i += 2 {
		s.swapRows(p.Reorder[i], p.Reorder[i+1])
	}
	for i := 0; i+1 < len(p.Copies); i += 2 {
		copy(s.Row(p.Copies[i+1]), s.Row(p.Copies[i]))
	}
	for _, u := range p.Updates {
		row := s.Row(u.Row)
		for _, slot := range u.Slots {
			row[slot] = index
		}
	}
	for _, c := range p.Clears {
		row := s.Row(c.Row)
		for _, slot := range c.Slots {
			row[slot] = Unset
		}
	}
	last := s.width - 1
	for i := 0; i+1 < len(p.LastGroup); i += 2 {
		s.Row(p.LastGroup[i])[last] = p.LastGroup[i+1]
	}
}

// ApplyFlat performs the edits on a single-row table. Rows are ignored, and
// reorders and copies are no-ops on one row.
func (p *PartialTransition) ApplyFlat(row []int, index int) {
	for _, u := range p.Updates {
		for _, slot := range u.Slots {
			row[slot] = index
		}
	}
	for _, c := range p.Clears {
		for _, slot := range c.Slots {
			row[slot] = Unset
		}
	}
	if n := len(p.LastGroup); n >= 2 {
		row[len(row)-1] = p.LastGroup[n-1]
	}
}

// ApplyFinal exports row FinalRow into s.Result, then applies the writes,
// clears and last-group tags addressed to that row on the exported copy.
// The table itself is left untouched.
func (p *PartialTransition) ApplyFinal(s *Storage, index int) {
	copy(s.Result, s.Row(p.FinalRow))
	p.applyRow(s.Result, p.FinalRow, index)
}

// ExportFlat copies a single-row table into dst and applies the edits.
func (p *PartialTransition) ExportFlat(dst, row []int, index int) {
	copy(dst, row)
	p.ApplyFlat(dst, index)
}

func (p *PartialTransition) applyRow(row []int, r, index int) {
	for _, u := range p.Updates {
		if u.Row != r {
			continue
		}
		for _, slot := range u.Slots {
			row[slot] = index
		}
	}
	for _, c := range p.Clears {
		if c.Row != r {
			continue
		}
		for _, slot := range c.Slots {
			row[slot] = Unset
		}
	}
	for i := 0; i+1 < len(p.LastGroup); i += 2 {
		if p.LastGroup[i] == r {
			row[len(row)-1] = p.LastGroup[i+1]
		}
	}
}

// Validate checks that every row and slot reference fits a table of the
// given shape.
func (p *PartialTransition) Validate(rows, width int, trackLastGroup bool) error {
	checkRows := func(what string, pairs []int) error {
		if len(pairs)%2 != 0 {
			return fmt.Errorf("cgroup: odd %s list", what)
		}
		for _, r := range pairs {
			if r < 0 || r >= rows {
				return fmt.Errorf("cgroup: %s row %d out of range", what, r)
			}
		}
		return nil
	}
	if err := checkRows("reorder", p.Reorder); err != nil {
		return err
	}
	if err := checkRows("copy", p.Copies); err != nil {
		return err
	}
	groupSlots := width
	if trackLastGroup {
		groupSlots--
	}
	for _, ops := range [][]IndexOp{p.Updates, p.Clears} {
		for _, op := range ops {
			if op.Row < 0 || op.Row >= rows {
				return fmt.Errorf("cgroup: row %d out of range", op.Row)
			}
			for _, slot := range op.Slots {
				if slot < 0 || slot >= groupSlots {
					return fmt.Errorf("cgroup: slot %d out of range", slot)
				}
			}
		}
	}
	if len(p.LastGroup) > 0 {
		if !trackLastGroup {
			return fmt.Errorf("cgroup: last-group tag without a last-group slot")
		}
		if len(p.LastGroup)%2 != 0 {
			return fmt.Errorf("cgroup: odd last-group list")
		}
		for i := 0; i < len(p.LastGroup); i += 2 {
			if r := p.LastGroup[i]; r < 0 || r >= rows {
				return fmt.Errorf("cgroup: last-group row %d out of range", r)
			}
		}
	}
	if p.FinalRow >= rows {
		return fmt.Errorf("cgroup: final row %d out of range", p.FinalRow)
	}
	return nil
}

// Equal reports whether p and q are structurally identical.
func (p *PartialTransition) Equal(q *PartialTransition) bool {
	if p == q {
		return true
	}
	return p.FinalRow == q.FinalRow &&
		slices.Equal(p.Reorder, q.Reorder) &&
		slices.Equal(p.Copies, q.Copies) &&
		equalIndexOps(p.Updates, q.Updates) &&
		equalIndexOps(p.Clears, q.Clears) &&
		slices.Equal(p.LastGroup, q.LastGroup)
}

func equalIndexOps(a, b []IndexOp) bool {
	return slices.EqualFunc(a, b, func(x, y IndexOp) bool {
		return x.Row == y.Row && slices.Equal(x.Slots, y.Slots)
	})
}

// Hash returns a structural FNV-1a hash consistent with Equal.
func (p *PartialTransition) Hash() uint64 {
	h := fnv.New64a()
	var buf [8]byte
	put := func(v int) {
		u := uint64(v)
		for i := range buf {
			buf[i] = byte(u >> (8 * i))
		}
		h.Write(buf[:])
	}
	list := func(xs []int) {
		put(len(xs))
		for _, x := range xs {
			put(x)
		}
	}
	ops := func(xs []IndexOp) {
		put(len(xs))
		for _, x := range xs {
			put(x.Row)
			list(x.Slots)
		}
	}
	list(p.Reorder)
	list(p.Copies)
	ops(p.Updates)
	ops(p.Clears)
	list(p.LastGroup)
	put(p.FinalRow)
	return h.Sum64()
}

// String returns a compact description, mainly for test failures.
func (p *PartialTransition) String() string {
	var b strings.Builder
	b.WriteString("{")
	if len(p.Reorder) > 0 {
		fmt.Fprintf(&b, " reorder%v", p.Reorder)
	}
	if len(p.Copies) > 0 {
		fmt.Fprintf(&b, " copy%v", p.Copies)
	}
	for _, u := range p.Updates {
		fmt.Fprintf(&b, " set r%d%v", u.Row, u.Slots)
	}
	for _, c := range p.Clears {
		fmt.Fprintf(&b, " clear r%d%v", c.Row, c.Slots)
	}
	if len(p.LastGroup) > 0 {
		fmt.Fprintf(&b, " last%v", p.LastGroup)
	}
	if p.FinalRow >= 0 {
		fmt.Fprintf(&b, " final r%d", p.FinalRow)
	}
	b.WriteString(" }")
	return b.String()
}
