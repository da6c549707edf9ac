package counter

import "math/bits"

// BitsetWithOffset tracks quantifiers with a cap of up to 1024.
//
// A cell is a sliding bitset: bit i stands for value offset-i, so an
// increment only bumps the offset and new values enter at bit 0. Each cell
// caches its lowest set bit (largest value) and highest set bit (smallest
// value) so the range queries are O(1). When the offset passes cap+63 the
// lowest word is necessarily empty and is dropped.
//
// Cells are reached through an indirection table so that Move and Swap only
// exchange slot numbers. The table has one extra slot used as scratch space.
//
// Arena layout: cells+1 indirection entries, then cells+1 slots of
// [offset, minBit, maxBit, words...]. minBit == -1 marks an empty slot.
type BitsetWithOffset struct {
	desc     Descriptor
	base     int
	words    int
	slotSize int
}

const (
	slotOffset = iota
	slotMinBit
	slotMaxBit
	slotWords
)

func newBitsetWithOffset(d Descriptor, base int) *BitsetWithOffset {
	words := (d.Cap()+63)/64 + 1
	return &BitsetWithOffset{
		desc:     d,
		base:     base,
		words:    words,
		slotSize: slotWords + words,
	}
}

func (t *BitsetWithOffset) size() int {
	return (t.desc.Cells + 1) * (1 + t.slotSize)
}

// Descriptor implements Tracker.
func (t *BitsetWithOffset) Descriptor() Descriptor { return t.desc }

// Supports implements Tracker.
func (t *BitsetWithOffset) Supports(op Op) bool { return op.wellFormed() }

func (t *BitsetWithOffset) slot(p int, d *Data) []uint64 {
	start := t.base + t.desc.Cells + 1 + p*t.slotSize
	return d.Fixed[start : start+t.slotSize]
}

func (t *BitsetWithOffset) cell(c int, d *Data) []uint64 {
	return t.slot(int(d.Fixed[t.base+c]), d)
}

// Init implements Tracker.
func (t *BitsetWithOffset) Init(d *Data) {
	for c := 0; c <= t.desc.Cells; c++ {
		d.Fixed[t.base+c] = uint64(c)
		markEmpty(t.slot(c, d))
	}
}

func markEmpty(s []uint64) {
	s[slotMinBit] = ^uint64(0)
	s[slotMaxBit] = ^uint64(0)
}

func isEmpty(s []uint64) bool { return s[slotMinBit] == ^uint64(0) }

func minBit(s []uint64) int { return int(int64(s[slotMinBit])) }

func maxBit(s []uint64) int { return int(int64(s[slotMaxBit])) }

func offset(s []uint64) int { return int(s[slotOffset]) }

func setBounds(s []uint64, lo, hi int) {
	s[slotMinBit] = uint64(lo)
	s[slotMaxBit] = uint64(hi)
}

// setConst overwrites the slot with {v}.
func (t *BitsetWithOffset) setConst(s []uint64, v int) {
	clear(s[slotWords:])
	s[slotOffset] = uint64(v)
	s[slotWords] = 1
	setBounds(s, 0, 0)
}

// insert adds v to the slot, realigning the window if v is above the offset.
func (t *BitsetWithOffset) insert(s []uint64, v int) {
	if isEmpty(s) {
		t.setConst(s, v)
		return
	}
	lo, hi := minBit(s), maxBit(s)
	b := offset(s) - v
	if b < 0 {
		shiftLeft(s[slotWords:], -b)
		lo, hi = lo-b, hi-b
		s[slotOffset] = uint64(v)
		b = 0
	}
	w := s[slotWords:]
	w[b>>6] |= 1 << (uint(b) & 63)
	setBounds(s, min(lo, b), max(hi, b))
}

// inc adds one to every value of the slot.
func (t *BitsetWithOffset) inc(s []uint64) {
	if isEmpty(s) {
		return
	}
	c := t.desc.Cap()
	off := offset(s) + 1
	lo, hi := minBit(s), maxBit(s)
	w := s[slotWords:]

	// At most the largest value can have passed the cap.
	if off-lo > c {
		w[lo>>6] &^= 1 << (uint(lo) & 63)
		switch {
		case t.desc.Saturating():
			n := lo + 1
			w[n>>6] |= 1 << (uint(n) & 63)
			lo, hi = n, max(hi, n)
		case lo == hi:
			markEmpty(s)
			s[slotOffset] = uint64(off)
			return
		default:
			lo = nextSetBit(w, lo+1)
		}
	}

	if off > c+63 {
		copy(w, w[1:])
		w[len(w)-1] = 0
		off -= 64
		lo -= 64
		hi -= 64
	}
	s[slotOffset] = uint64(off)
	setBounds(s, lo, hi)
}

// union merges src into dst. Both slots are realigned to the larger offset.
func (t *BitsetWithOffset) union(dst, src []uint64) {
	if isEmpty(src) {
		return
	}
	if isEmpty(dst) {
		copy(dst, src)
		return
	}
	offD, offS := offset(dst), offset(src)
	lo, hi := minBit(dst), maxBit(dst)
	if offD < offS {
		delta := offS - offD
		shiftLeft(dst[slotWords:], delta)
		lo, hi = lo+delta, hi+delta
		offD = offS
		dst[slotOffset] = uint64(offD)
	}
	delta := offD - offS
	orShifted(dst[slotWords:], src[slotWords:], delta)
	setBounds(dst, min(lo, minBit(src)+delta), max(hi, maxBit(src)+delta))
}

// Apply implements Tracker.
func (t *BitsetWithOffset) Apply(op Op, d *Data) {
	dst, src := op.Dst(), op.Src()
	switch op.Kind() {
	case Set1, SetMin:
		v := 1
		if op.Kind() == SetMin {
			v = max(t.desc.Min, 1)
		}
		if op.Modifier() == Union {
			t.insert(t.cell(dst, d), v)
		} else {
			t.setConst(t.cell(dst, d), v)
		}
		return
	}
	isInc := op.Kind() == Inc

	switch op.Modifier() {
	case Overwrite:
		if dst != src {
			copy(t.cell(dst, d), t.cell(src, d))
		}
		if isInc {
			t.inc(t.cell(dst, d))
		}
	case Union:
		if !isInc && dst == src {
			return
		}
		scratch := t.cell(t.desc.Cells, d)
		copy(scratch, t.cell(src, d))
		if isInc {
			t.inc(scratch)
		}
		t.union(t.cell(dst, d), scratch)
	case Move, Swap:
		ind := d.Fixed[t.base : t.base+t.desc.Cells]
		ind[dst], ind[src] = ind[src], ind[dst]
		if op.Modifier() == Move {
			markEmpty(t.cell(src, d))
		}
		if isInc {
			t.inc(t.cell(dst, d))
		}
	}
}

// AnyLtMin implements Tracker.
func (t *BitsetWithOffset) AnyLtMin(cell int, d *Data) bool {
	s := t.cell(cell, d)
	return !isEmpty(s) && offset(s)-maxBit(s) < t.desc.Min
}

// AnyGeMin implements Tracker.
func (t *BitsetWithOffset) AnyGeMin(cell int, d *Data) bool {
	s := t.cell(cell, d)
	return !isEmpty(s) && offset(s)-minBit(s) >= t.desc.Min
}

// AnyLtMax implements Tracker.
func (t *BitsetWithOffset) AnyLtMax(cell int, d *Data) bool {
	s := t.cell(cell, d)
	return !isEmpty(s) && (t.desc.Saturating() || offset(s)-maxBit(s) < t.desc.Max)
}

// Values implements Tracker.
func (t *BitsetWithOffset) Values(cell int, d *Data) []int {
	s := t.cell(cell, d)
	if isEmpty(s) {
		return nil
	}
	off := offset(s)
	var out []int
	w := s[slotWords:]
	for i := len(w) - 1; i >= 0; i-- {
		x := w[i]
		for x != 0 {
			b := 63 - bits.LeadingZeros64(x)
			out = append(out, off-(i*64+b))
			x &^= 1 << uint(b)
		}
	}
	return out
}

// nextSetBit returns the index of the first set bit at or after from.
// A set bit must exist.
func nextSetBit(w []uint64, from int) int {
	i := from >> 6
	x := w[i] &^ (1<<(uint(from)&63) - 1)
	for x == 0 {
		i++
		x = w[i]
	}
	return i*64 + bits.TrailingZeros64(x)
}

// shiftLeft shifts the multiword value w left by n bits in place.
// Bits shifted past the top word are discarded.
func shiftLeft(w []uint64, n int) {
	ws, bs := n>>6, uint(n)&63
	for i := len(w) - 1; i >= 0; i-- {
		w[i] = shiftedWord(w, i-ws, bs)
	}
}

// orShifted ORs src shifted left by n bits into dst.
func orShifted(dst, src []uint64, n int) {
	ws, bs := n>>6, uint(n)&63
	for i := len(dst) - 1; i >= ws; i-- {
		dst[i] |= shiftedWord(src, i-ws, bs)
	}
}

// shiftedWord returns word j of w shifted left by bs bits, with the carry
// from word j-1.
func shiftedWord(w []uint64, j int, bs uint) uint64 {
	if j < 0 {
		return 0
	}
	hi := w[j] << bs
	if bs == 0 || j == 0 {
		return hi
	}
	return hi | w[j-1]>>(64-bs)
}
