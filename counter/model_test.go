package counter

import (
	"math/rand/v2"
	"slices"
)

// model is the naive reference: one explicit set per cell.
type model struct {
	desc  Descriptor
	cells []map[int]bool
}

func newModel(d Descriptor) *model {
	m := &model{desc: d, cells: make([]map[int]bool, d.Cells)}
	for i := range m.cells {
		m.cells[i] = map[int]bool{}
	}
	return m
}

func (m *model) produce(op Op) map[int]bool {
	out := map[int]bool{}
	switch op.Kind() {
	case Set1:
		out[1] = true
	case SetMin:
		out[max(m.desc.Min, 1)] = true
	case Nop:
		for v := range m.cells[op.Src()] {
			out[v] = true
		}
	case Inc:
		c := m.desc.Cap()
		for v := range m.cells[op.Src()] {
			switch {
			case v+1 <= c:
				out[v+1] = true
			case m.desc.Saturating():
				out[c] = true
			}
		}
	}
	return out
}

func (m *model) apply(op Op) {
	v := m.produce(op)
	dst, src := op.Dst(), op.Src()
	switch op.Modifier() {
	case Overwrite:
		m.cells[dst] = v
	case Union:
		for x := range v {
			m.cells[dst][x] = true
		}
	case Move:
		m.cells[dst] = v
		m.cells[src] = map[int]bool{}
	case Swap:
		m.cells[src], m.cells[dst] = m.cells[dst], v
	}
}

func (m *model) values(cell int) []int {
	var out []int
	for v := range m.cells[cell] {
		out = append(out, v)
	}
	slices.Sort(out)
	return out
}

func (m *model) query(q Query, cell int) bool {
	for v := range m.cells[cell] {
		if m.desc.contains(q, v) {
			return true
		}
	}
	return false
}

// family restricts randomly generated operations to what a group of
// representations can execute.
type family uint8

const (
	// familyGeneral uses every well-formed operation.
	familyGeneral family = iota
	// familyNoUnion never combines sets, so cells hold at most one value.
	familyNoUnion
	// familyList uses in-place increments and cross-cell Move/Swap only.
	familyList
	// familyPrefix pairs every increment with Set1/Union on the same cell.
	familyPrefix
)

func (f family) String() string {
	return [...]string{"general", "no-union", "list", "prefix"}[f]
}

// variants returns the representations exercised by a family for d.
func (f family) variants(d Descriptor) []Variant {
	var out []Variant
	switch f {
	case familyNoUnion:
		out = append(out, VariantScalar)
	case familyPrefix:
		out = append(out, VariantScalarMax)
	}
	if d.Cap() <= maxBitset1Bound {
		out = append(out, VariantBitset1)
	}
	if d.Cap() <= maxBitset2Bound {
		out = append(out, VariantBitset2)
	}
	return append(out, VariantBitsetWithOffset, VariantList)
}

func pick[T any](r *rand.Rand, xs ...T) T {
	return xs[r.IntN(len(xs))]
}

// genStep returns one step of a random operation sequence for a single
// tracker. Increments are weighted heavily so that long sequences cross
// word boundaries.
func genStep(r *rand.Rand, f family, cells int) []Op {
	c1 := r.IntN(cells)
	c2 := (c1 + 1 + r.IntN(cells-1)) % cells

	switch f {
	case familyPrefix:
		switch r.IntN(6) {
		case 0:
			return []Op{NewOp(Set1, pick(r, Overwrite, Union), 0, c1, 0)}
		case 1:
			return []Op{NewOp(Nop, pick(r, Overwrite, Union, Move, Swap), 0, c1, c2)}
		default:
			return []Op{NewOp(Inc, Overwrite, 0, c1, c1), NewOp(Set1, Union, 0, c1, 0)}
		}
	case familyList:
		switch r.IntN(8) {
		case 0:
			return []Op{NewOp(pick(r, Set1, SetMin), pick(r, Overwrite, Union), 0, c1, 0)}
		case 1:
			return []Op{NewOp(pick(r, Nop, Inc), pick(r, Move, Swap), 0, c1, c2)}
		default:
			return []Op{NewOp(Inc, Overwrite, 0, c1, c1)}
		}
	}

	mods := []Modifier{Overwrite, Union, Move, Swap}
	setMods := []Modifier{Overwrite, Union}
	if f == familyNoUnion {
		mods = []Modifier{Overwrite, Move, Swap}
		setMods = []Modifier{Overwrite}
	}
	switch r.IntN(8) {
	case 0:
		return []Op{NewOp(pick(r, Set1, SetMin), pick(r, setMods...), 0, c1, 0)}
	case 1, 2:
		mod := pick(r, mods...)
		src := c1
		if mod == Move || mod == Swap || r.IntN(2) == 0 {
			src = c2
		}
		return []Op{NewOp(pick(r, Nop, Inc), mod, 0, c1, src)}
	default:
		return []Op{NewOp(Inc, Overwrite, 0, c1, c1)}
	}
}
