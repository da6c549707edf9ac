package counter

import "sort"

// List tracks quantifiers too large for a bitset.
//
// A cell stores a running offset in the fixed arena and a sorted ascending
// key list in the dynamic arena; each key k stands for value offset-k. An
// increment bumps the offset and touches at most the front of the list.
// Saturated values collapse into a single key.
//
// Merging two lists is not O(1), so unions of cells and copies between
// cells are not supported. Move and Swap exchange whole lists.
type List struct {
	desc    Descriptor
	base    int
	dynBase int
}

// Descriptor implements Tracker.
func (t *List) Descriptor() Descriptor { return t.desc }

// Supports implements Tracker.
func (t *List) Supports(op Op) bool {
	if !op.wellFormed() {
		return false
	}
	if op.IsSet() {
		return true
	}
	switch op.Modifier() {
	case Overwrite:
		return op.Dst() == op.Src()
	case Union:
		return false
	default:
		return true
	}
}

// Init implements Tracker.
func (t *List) Init(d *Data) {
	clear(d.Fixed[t.base : t.base+t.desc.Cells])
	for c := 0; c < t.desc.Cells; c++ {
		d.Dynamic[t.dynBase+c] = d.Dynamic[t.dynBase+c][:0]
	}
}

func (t *List) keys(cell int, d *Data) []int {
	return d.Dynamic[t.dynBase+cell]
}

func (t *List) offset(cell int, d *Data) int {
	return int(d.Fixed[t.base+cell])
}

// Apply implements Tracker.
func (t *List) Apply(op Op, d *Data) {
	dst := op.Dst()
	switch op.Kind() {
	case Set1, SetMin:
		v := 1
		if op.Kind() == SetMin {
			v = max(t.desc.Min, 1)
		}
		if op.Modifier() == Union && len(t.keys(dst, d)) > 0 {
			t.insert(dst, v, d)
			return
		}
		d.Fixed[t.base+dst] = uint64(v)
		d.Dynamic[t.dynBase+dst] = append(t.keys(dst, d)[:0], 0)
		return
	}

	if src := op.Src(); src != dst {
		fd, fs := t.base+dst, t.base+src
		dd, ds := t.dynBase+dst, t.dynBase+src
		d.Fixed[fd], d.Fixed[fs] = d.Fixed[fs], d.Fixed[fd]
		d.Dynamic[dd], d.Dynamic[ds] = d.Dynamic[ds], d.Dynamic[dd]
		if op.Modifier() == Move {
			d.Dynamic[ds] = d.Dynamic[ds][:0]
		}
	}
	if op.Kind() == Inc {
		t.inc(dst, d)
	}
}

// insert adds value v to a non-empty cell.
func (t *List) insert(cell, v int, d *Data) {
	keys := t.keys(cell, d)
	k := t.offset(cell, d) - v
	if k < keys[0] {
		// v is above every current value: rebase so that v gets key 0.
		shift := -k
		if k >= 0 {
			shift = 0
		}
		for i := range keys {
			keys[i] += shift
		}
		d.Fixed[t.base+cell] = uint64(t.offset(cell, d) + shift)
		k += shift
		keys = append(keys, 0)
		copy(keys[1:], keys)
		keys[0] = k
		d.Dynamic[t.dynBase+cell] = keys
		return
	}
	i := sort.SearchInts(keys, k)
	if i < len(keys) && keys[i] == k {
		return
	}
	keys = append(keys, 0)
	copy(keys[i+1:], keys[i:])
	keys[i] = k
	d.Dynamic[t.dynBase+cell] = keys
}

// inc adds one to every value of the cell.
func (t *List) inc(cell int, d *Data) {
	off := t.offset(cell, d) + 1
	d.Fixed[t.base+cell] = uint64(off)
	keys := t.keys(cell, d)
	if len(keys) == 0 {
		return
	}
	c := t.desc.Cap()
	if off-keys[0] <= c {
		return
	}
	if !t.desc.Saturating() {
		d.Dynamic[t.dynBase+cell] = keys[1:]
		return
	}
	capKey := off - c
	if len(keys) > 1 && keys[1] == capKey {
		d.Dynamic[t.dynBase+cell] = keys[1:]
		return
	}
	keys[0] = capKey
}

// AnyLtMin implements Tracker.
func (t *List) AnyLtMin(cell int, d *Data) bool {
	keys := t.keys(cell, d)
	return len(keys) > 0 && t.offset(cell, d)-keys[len(keys)-1] < t.desc.Min
}

// AnyGeMin implements Tracker.
func (t *List) AnyGeMin(cell int, d *Data) bool {
	keys := t.keys(cell, d)
	return len(keys) > 0 && t.offset(cell, d)-keys[0] >= t.desc.Min
}

// AnyLtMax implements Tracker.
func (t *List) AnyLtMax(cell int, d *Data) bool {
	keys := t.keys(cell, d)
	return len(keys) > 0 && (t.desc.Saturating() || t.offset(cell, d)-keys[len(keys)-1] < t.desc.Max)
}

// Values implements Tracker.
func (t *List) Values(cell int, d *Data) []int {
	keys := t.keys(cell, d)
	off := t.offset(cell, d)
	out := make([]int, 0, len(keys))
	for i := len(keys) - 1; i >= 0; i-- {
		out = append(out, off-keys[i])
	}
	if len(out) == 0 {
		return nil
	}
	return out
}
