package counter

import "math/bits"

// Bitset tracks quantifiers with a cap of at most 128 in one or two words
// per cell. Bit i stands for value i+1.
type Bitset struct {
	desc  Descriptor
	base  int
	words int

	all   [2]uint64 // values 1..cap
	sat   [2]uint64 // value cap, if saturating
	ltMin [2]uint64
	geMin [2]uint64
	ltMax [2]uint64
}

func newBitset(d Descriptor, base, words int) *Bitset {
	t := &Bitset{desc: d, base: base, words: words}
	c := d.Cap()
	for v := 1; v <= c; v++ {
		setBit(&t.all, v-1)
		if d.contains(AnyLtMin, v) {
			setBit(&t.ltMin, v-1)
		}
		if d.contains(AnyGeMin, v) {
			setBit(&t.geMin, v-1)
		}
		if d.contains(AnyLtMax, v) {
			setBit(&t.ltMax, v-1)
		}
	}
	if d.Saturating() {
		setBit(&t.sat, c-1)
	}
	return t
}

func setBit(w *[2]uint64, i int) {
	w[i>>6] |= 1 << (uint(i) & 63)
}

// Descriptor implements Tracker.
func (t *Bitset) Descriptor() Descriptor { return t.desc }

// Init implements Tracker.
func (t *Bitset) Init(d *Data) {
	clear(d.Fixed[t.base : t.base+t.desc.Cells*t.words])
}

// Supports implements Tracker. Every well-formed operation is a handful of
// word operations.
func (t *Bitset) Supports(op Op) bool { return op.wellFormed() }

func (t *Bitset) load(cell int, d *Data) [2]uint64 {
	var w [2]uint64
	copy(w[:t.words], d.Fixed[t.base+cell*t.words:])
	return w
}

func (t *Bitset) store(cell int, w [2]uint64, d *Data) {
	copy(d.Fixed[t.base+cell*t.words:t.base+(cell+1)*t.words], w[:t.words])
}

// inc shifts every value up by one. Values above the cap are dropped, or kept
// at the cap when saturating.
func (t *Bitset) inc(w [2]uint64) [2]uint64 {
	carry := w[0] >> 63
	w[1] = (w[1]<<1 | carry | w[1]&t.sat[1]) & t.all[1]
	w[0] = (w[0]<<1 | w[0]&t.sat[0]) & t.all[0]
	return w
}

// Apply implements Tracker.
func (t *Bitset) Apply(op Op, d *Data) {
	dst := op.Dst()
	var v [2]uint64
	switch op.Kind() {
	case Set1:
		setBit(&v, 0)
	case SetMin:
		setBit(&v, max(t.desc.Min, 1)-1)
	default:
		v = t.load(op.Src(), d)
		if op.Kind() == Inc {
			v = t.inc(v)
		}
	}

	switch op.Modifier() {
	case Overwrite:
		t.store(dst, v, d)
	case Union:
		old := t.load(dst, d)
		t.store(dst, [2]uint64{old[0] | v[0], old[1] | v[1]}, d)
	case Move:
		t.store(op.Src(), [2]uint64{}, d)
		t.store(dst, v, d)
	case Swap:
		old := t.load(dst, d)
		t.store(dst, v, d)
		t.store(op.Src(), old, d)
	}
}

func (t *Bitset) any(cell int, mask [2]uint64, d *Data) bool {
	w := t.load(cell, d)
	return w[0]&mask[0] != 0 || w[1]&mask[1] != 0
}

// AnyLtMin implements Tracker.
func (t *Bitset) AnyLtMin(cell int, d *Data) bool { return t.any(cell, t.ltMin, d) }

// AnyGeMin implements Tracker.
func (t *Bitset) AnyGeMin(cell int, d *Data) bool { return t.any(cell, t.geMin, d) }

// AnyLtMax implements Tracker.
func (t *Bitset) AnyLtMax(cell int, d *Data) bool { return t.any(cell, t.ltMax, d) }

// Values implements Tracker.
func (t *Bitset) Values(cell int, d *Data) []int {
	var out []int
	for i, w := range t.load(cell, d) {
		for w != 0 {
			b := bits.TrailingZeros64(w)
			out = append(out, i*64+b+1)
			w &= w - 1
		}
	}
	return out
}
