// Package counter implements the counter trackers of the tracking DFA.
//
// A bounded quantifier such as a{3,7} is not unrolled into automaton states.
// Instead each quantifier owns a tracker with one cell per NFA state that can
// be inside the quantifier. A cell holds the set of counter values reachable
// along the different paths merged into the current DFA state. Transitions
// update cells with encoded Ops and test them with encoded Guards.
//
// Several representations are available, and Build picks the cheapest one that
// can represent every operation the automaton uses on a quantifier:
//   - ScalarMax: the set is always {1..m}
//   - Scalar: the set never holds more than one value
//   - Bitset: one or two words, bit i for value i+1
//   - BitsetWithOffset: a sliding bitset for bounds up to 1024
//   - List: sorted values for anything larger
//
// Trackers are immutable. All mutable state lives in a Data arena owned by
// the caller, so one set of trackers serves any number of concurrent searches.
package counter

import (
	"errors"
	"fmt"
)

var (
	// ErrTooExpensive is returned by Build when the estimated counter memory
	// exceeds the configured ceiling.
	ErrTooExpensive = errors.New("counter: trackers too expensive")

	// ErrUnsupportedOps is returned by Build when no tracker representation
	// supports every operation used on a quantifier.
	ErrUnsupportedOps = errors.New("counter: operations not representable")

	// ErrInvalidDescriptor is returned by Build for malformed descriptors or
	// operations that address missing trackers or cells.
	ErrInvalidDescriptor = errors.New("counter: invalid descriptor")
)

// Descriptor is the compile-time configuration of one quantifier.
type Descriptor struct {
	// Min is the quantifier minimum.
	Min int

	// Max is the quantifier maximum, or -1 if unbounded.
	Max int

	// Cells is the number of cells (NFA states inside the quantifier).
	Cells int

	// ReenteredWithSet1 is set when every increment of the quantifier is
	// followed by a Set1/Union on the same cell, so that the set is always
	// a prefix {1..m}.
	ReenteredWithSet1 bool

	// NeverReentered is set when the quantifier is never re-entered while
	// active, so that a cell never holds more than one value.
	NeverReentered bool
}

// Saturating reports whether the counter is unbounded. Values of a
// saturating counter stop growing once they reach Cap.
func (d Descriptor) Saturating() bool { return d.Max == -1 }

// UpperBound returns max(Min, Max) for bounded counters and Min otherwise.
func (d Descriptor) UpperBound() int {
	if d.Max == -1 || d.Max < d.Min {
		return d.Min
	}
	return d.Max
}

// Cap returns the largest value a cell can hold.
func (d Descriptor) Cap() int {
	return max(d.UpperBound(), 1)
}

// MemoryEstimate returns the estimated match-time memory in bytes.
func (d Descriptor) MemoryEstimate() int {
	return d.Cells * d.UpperBound() * 4
}

func (d Descriptor) validate() error {
	switch {
	case d.Cells < 1 || d.Cells > MaxCells:
		return fmt.Errorf("%w: %d cells", ErrInvalidDescriptor, d.Cells)
	case d.Min < 0:
		return fmt.Errorf("%w: negative minimum %d", ErrInvalidDescriptor, d.Min)
	case d.Max < -1 || (d.Max != -1 && d.Max < d.Min):
		return fmt.Errorf("%w: maximum %d below minimum %d", ErrInvalidDescriptor, d.Max, d.Min)
	}
	return nil
}

// contains reports whether value v satisfies query q for descriptor d.
func (d Descriptor) contains(q Query, v int) bool {
	switch q {
	case AnyLtMin:
		return v < d.Min
	case AnyGeMin:
		return v >= d.Min
	default:
		return d.Saturating() || v < d.Max
	}
}

// Data is the mutable arena of one search.
//
// Fixed holds every tracker's fixed-size cells; Dynamic holds one growable
// slice per cell of list trackers. Each tracker owns the ranges Build
// assigned to it.
type Data struct {
	Fixed   []uint64
	Dynamic [][]int
}

// Layout records the arena size required by a set of trackers.
type Layout struct {
	Fixed   int
	Dynamic int
}

// NewData allocates an arena for the layout. Trackers must still be
// initialized with Init before use.
func (l Layout) NewData() *Data {
	return &Data{
		Fixed:   make([]uint64, l.Fixed),
		Dynamic: make([][]int, l.Dynamic),
	}
}

// Tracker is the contract every counter representation implements.
type Tracker interface {
	// Descriptor returns the quantifier configuration.
	Descriptor() Descriptor

	// Init resets every owned cell to the empty set.
	Init(d *Data)

	// Apply executes one operation. The op must be supported.
	Apply(op Op, d *Data)

	// AnyLtMin reports whether some value of the cell is below Min.
	AnyLtMin(cell int, d *Data) bool

	// AnyGeMin reports whether some value of the cell is at least Min.
	AnyGeMin(cell int, d *Data) bool

	// AnyLtMax reports whether some value of the cell is below Max, or the
	// cell is non-empty and the counter is unbounded.
	AnyLtMax(cell int, d *Data) bool

	// Supports reports whether the representation can execute op exactly.
	Supports(op Op) bool

	// Values returns the cell contents in ascending order.
	Values(cell int, d *Data) []int
}

// Variant names a tracker representation.
type Variant uint8

const (
	VariantScalarMax Variant = iota
	VariantScalar
	VariantBitset1
	VariantBitset2
	VariantBitsetWithOffset
	VariantList
)

// String returns the variant name.
func (v Variant) String() string {
	switch v {
	case VariantScalarMax:
		return "ScalarMax"
	case VariantScalar:
		return "Scalar"
	case VariantBitset1:
		return "Bitset1"
	case VariantBitset2:
		return "Bitset2"
	case VariantBitsetWithOffset:
		return "BitsetWithOffset"
	case VariantList:
		return "List"
	default:
		return fmt.Sprintf("UnknownVariant(%d)", v)
	}
}

// Largest bounds served by the bitset representations.
const (
	maxBitset1Bound = 64
	maxBitset2Bound = 128
	maxOffsetBound  = 64 * 16
)

// Candidates returns the representations applicable to d, in order of
// preference.
func Candidates(d Descriptor) []Variant {
	var out []Variant
	if d.ReenteredWithSet1 {
		out = append(out, VariantScalarMax)
	}
	if d.NeverReentered {
		out = append(out, VariantScalar)
	}
	switch c := d.Cap(); {
	case c <= maxBitset1Bound:
		out = append(out, VariantBitset1)
	case c <= maxBitset2Bound:
		out = append(out, VariantBitset2)
	case c <= maxOffsetBound:
		out = append(out, VariantBitsetWithOffset)
	}
	return append(out, VariantList)
}

// New creates a tracker of the given variant whose arena ranges start at the
// given offsets. It returns the tracker and the arena sizes it occupies.
func New(v Variant, d Descriptor, fixedBase, dynBase int) (Tracker, Layout) {
	switch v {
	case VariantScalarMax:
		return &ScalarMax{desc: d, base: fixedBase}, Layout{Fixed: d.Cells}
	case VariantScalar:
		return &Scalar{desc: d, base: fixedBase}, Layout{Fixed: d.Cells}
	case VariantBitset1, VariantBitset2:
		t := newBitset(d, fixedBase, int(v-VariantBitset1)+1)
		return t, Layout{Fixed: d.Cells * t.words}
	case VariantBitsetWithOffset:
		t := newBitsetWithOffset(d, fixedBase)
		return t, Layout{Fixed: t.size()}
	default:
		return &List{desc: d, base: fixedBase, dynBase: dynBase}, Layout{Fixed: d.Cells, Dynamic: d.Cells}
	}
}

// Build validates the descriptors and creates one tracker per descriptor.
//
// ops lists every operation the automaton can execute. For each descriptor
// the first candidate representation that supports all operations targeting
// it is chosen. maxMemory bounds the summed MemoryEstimate; zero or negative
// means unlimited.
func Build(descs []Descriptor, ops []Op, maxMemory int) ([]Tracker, Layout, error) {
	if len(descs) > MaxTrackers {
		return nil, Layout{}, fmt.Errorf("%w: %d trackers", ErrInvalidDescriptor, len(descs))
	}
	total := 0
	for i, d := range descs {
		if err := d.validate(); err != nil {
			return nil, Layout{}, fmt.Errorf("tracker %d: %w", i, err)
		}
		total += d.MemoryEstimate()
	}
	if maxMemory > 0 && total > maxMemory {
		return nil, Layout{}, fmt.Errorf("%w: %d bytes, limit %d", ErrTooExpensive, total, maxMemory)
	}

	byTracker := make([][]Op, len(descs))
	for _, op := range ops {
		t := op.Tracker()
		if t >= len(descs) {
			return nil, Layout{}, fmt.Errorf("%w: op %v addresses missing tracker", ErrInvalidDescriptor, op)
		}
		cells := descs[t].Cells
		if op.Dst() >= cells || (!op.IsSet() && op.Src() >= cells) {
			return nil, Layout{}, fmt.Errorf("%w: op %v addresses missing cell", ErrInvalidDescriptor, op)
		}
		if !op.wellFormed() {
			return nil, Layout{}, fmt.Errorf("%w: malformed op %v", ErrUnsupportedOps, op)
		}
		byTracker[t] = append(byTracker[t], op)
	}

	trackers := make([]Tracker, len(descs))
	var layout Layout
	for i, d := range descs {
		var chosen Tracker
		for _, v := range Candidates(d) {
			t, size := New(v, d, layout.Fixed, layout.Dynamic)
			if supportsAll(t, byTracker[i]) {
				chosen = t
				layout.Fixed += size.Fixed
				layout.Dynamic += size.Dynamic
				break
			}
		}
		if chosen == nil {
			return nil, Layout{}, fmt.Errorf("tracker %d: %w", i, ErrUnsupportedOps)
		}
		trackers[i] = chosen
	}
	return trackers, layout, nil
}

func supportsAll(t Tracker, ops []Op) bool {
	for _, op := range ops {
		if !t.Supports(op) {
			return false
		}
	}
	return true
}

// InitAll resets every tracker's cells.
func InitAll(trackers []Tracker, d *Data) {
	for _, t := range trackers {
		t.Init(d)
	}
}

// ApplyAll executes ops in order.
func ApplyAll(trackers []Tracker, ops []Op, d *Data) {
	for _, op := range ops {
		trackers[op.Tracker()].Apply(op, d)
	}
}

// Check evaluates one guard.
func Check(trackers []Tracker, g Guard, d *Data) bool {
	t := trackers[g.Tracker()]
	var r bool
	switch g.Query() {
	case AnyLtMin:
		r = t.AnyLtMin(g.Cell(), d)
	case AnyGeMin:
		r = t.AnyGeMin(g.Cell(), d)
	default:
		r = t.AnyLtMax(g.Cell(), d)
	}
	return r != g.Negated()
}

// CheckAll reports whether every guard holds.
func CheckAll(trackers []Tracker, guards []Guard, d *Data) bool {
	for _, g := range guards {
		if !Check(trackers, g, d) {
			return false
		}
	}
	return true
}

// Horizon returns the number of repetitions after which repeating ops no
// longer changes any observable cell contents. Only meaningful for in-place
// op lists.
func Horizon(trackers []Tracker, ops []Op) int {
	h := 0
	for _, op := range ops {
		h = max(h, trackers[op.Tracker()].Descriptor().Cap()+1)
	}
	return h
}

// Replay executes the in-place op list n times, stopping early once the
// repetitions can no longer change the result.
func Replay(trackers []Tracker, ops []Op, n, horizon int, d *Data) {
	n = min(n, horizon)
	for i := 0; i < n; i++ {
		ApplyAll(trackers, ops, d)
	}
}
