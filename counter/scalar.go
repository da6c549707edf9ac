package counter

// Scalar tracks quantifiers that are never re-entered while active.
// A cell holds at most one value, stored directly; zero means empty.
type Scalar struct {
	desc Descriptor
	base int
}

// Descriptor implements Tracker.
func (t *Scalar) Descriptor() Descriptor { return t.desc }

// Init implements Tracker.
func (t *Scalar) Init(d *Data) {
	clear(d.Fixed[t.base : t.base+t.desc.Cells])
}

// Supports implements Tracker. Unions could produce two values.
func (t *Scalar) Supports(op Op) bool {
	return op.wellFormed() && op.Modifier() != Union
}

func (t *Scalar) inc(v uint64) uint64 {
	if v == 0 {
		return 0
	}
	v++
	if t.desc.Saturating() {
		return min(v, uint64(t.desc.Cap()))
	}
	if v > uint64(t.desc.Cap()) {
		return 0
	}
	return v
}

// Apply implements Tracker.
func (t *Scalar) Apply(op Op, d *Data) {
	cells := d.Fixed[t.base : t.base+t.desc.Cells]
	dst := op.Dst()
	switch op.Kind() {
	case Set1:
		cells[dst] = 1
		return
	case SetMin:
		cells[dst] = uint64(max(t.desc.Min, 1))
		return
	}

	src := op.Src()
	v := cells[src]
	if op.Kind() == Inc {
		v = t.inc(v)
	}
	switch op.Modifier() {
	case Move:
		cells[src] = 0
	case Swap:
		cells[src] = cells[dst]
	}
	cells[dst] = v
}

// AnyLtMin implements Tracker.
func (t *Scalar) AnyLtMin(cell int, d *Data) bool {
	v := d.Fixed[t.base+cell]
	return v != 0 && int(v) < t.desc.Min
}

// AnyGeMin implements Tracker.
func (t *Scalar) AnyGeMin(cell int, d *Data) bool {
	v := d.Fixed[t.base+cell]
	return v != 0 && int(v) >= t.desc.Min
}

// AnyLtMax implements Tracker.
func (t *Scalar) AnyLtMax(cell int, d *Data) bool {
	v := d.Fixed[t.base+cell]
	return v != 0 && (t.desc.Saturating() || int(v) < t.desc.Max)
}

// Values implements Tracker.
func (t *Scalar) Values(cell int, d *Data) []int {
	if v := d.Fixed[t.base+cell]; v != 0 {
		return []int{int(v)}
	}
	return nil
}

// ScalarMax tracks quantifiers whose cell is always a prefix {1..m}: every
// increment is followed by re-entering the quantifier with Set1/Union on the
// same cell. The cell stores m; zero means empty.
//
// Between an Inc and the matching Set1/Union the stored value stands for
// {1..m} rather than {2..m}. Guards are evaluated before a transition's ops,
// so the difference is never observed.
type ScalarMax struct {
	desc Descriptor
	base int
}

// Descriptor implements Tracker.
func (t *ScalarMax) Descriptor() Descriptor { return t.desc }

// Init implements Tracker.
func (t *ScalarMax) Init(d *Data) {
	clear(d.Fixed[t.base : t.base+t.desc.Cells])
}

// Supports implements Tracker.
func (t *ScalarMax) Supports(op Op) bool {
	if !op.wellFormed() {
		return false
	}
	switch op.Kind() {
	case Set1:
		return true
	case SetMin:
		// {min} is a prefix only when it is {1}.
		return t.desc.Min <= 1
	case Inc:
		return op.Modifier() == Overwrite && op.Dst() == op.Src()
	default:
		return true
	}
}

// Apply implements Tracker.
func (t *ScalarMax) Apply(op Op, d *Data) {
	cells := d.Fixed[t.base : t.base+t.desc.Cells]
	dst := op.Dst()
	switch op.Kind() {
	case Set1, SetMin:
		if op.Modifier() == Union {
			cells[dst] = max(cells[dst], 1)
		} else {
			cells[dst] = 1
		}
	case Inc:
		if m := cells[dst]; m != 0 {
			cells[dst] = min(m+1, uint64(t.desc.Cap()))
		}
	default:
		src := op.Src()
		v := cells[src]
		switch op.Modifier() {
		case Union:
			cells[dst] = max(cells[dst], v)
			return
		case Move:
			cells[src] = 0
		case Swap:
			cells[src] = cells[dst]
		}
		cells[dst] = v
	}
}

// AnyLtMin implements Tracker.
func (t *ScalarMax) AnyLtMin(cell int, d *Data) bool {
	return d.Fixed[t.base+cell] != 0 && t.desc.Min > 1
}

// AnyGeMin implements Tracker.
func (t *ScalarMax) AnyGeMin(cell int, d *Data) bool {
	m := d.Fixed[t.base+cell]
	return m != 0 && int(m) >= t.desc.Min
}

// AnyLtMax implements Tracker.
func (t *ScalarMax) AnyLtMax(cell int, d *Data) bool {
	return d.Fixed[t.base+cell] != 0 && (t.desc.Saturating() || t.desc.Max > 1)
}

// Values implements Tracker.
func (t *ScalarMax) Values(cell int, d *Data) []int {
	m := int(d.Fixed[t.base+cell])
	if m == 0 {
		return nil
	}
	out := make([]int, m)
	for i := range out {
		out[i] = i + 1
	}
	return out
}
