package counter

import (
	"fmt"

	"github.com/coregx/tdfa/internal/conv"
)

// Kind is the value transformation of an Op.
type Kind uint8

const (
	// Nop copies the source set unchanged.
	Nop Kind = iota

	// Set1 produces the set {1}.
	Set1

	// SetMin produces the set {max(min, 1)}.
	SetMin

	// Inc adds one to every value of the source set.
	Inc
)

// String returns the kind name.
func (k Kind) String() string {
	switch k {
	case Nop:
		return "Nop"
	case Set1:
		return "Set1"
	case SetMin:
		return "SetMin"
	case Inc:
		return "Inc"
	default:
		return fmt.Sprintf("UnknownKind(%d)", k)
	}
}

// Modifier says how the produced set is combined with the destination cell.
type Modifier uint8

const (
	// Overwrite replaces the destination set.
	Overwrite Modifier = iota

	// Union adds the produced values to the destination set.
	Union

	// Move replaces the destination set and empties the source cell.
	Move

	// Swap replaces the destination set and stores its old contents in the
	// source cell.
	Swap
)

// String returns the modifier name.
func (m Modifier) String() string {
	switch m {
	case Overwrite:
		return "Overwrite"
	case Union:
		return "Union"
	case Move:
		return "Move"
	case Swap:
		return "Swap"
	default:
		return fmt.Sprintf("UnknownModifier(%d)", m)
	}
}

// Op bit layout.
const (
	kindBits    = 2
	modBits     = 2
	trackerBits = 16
	cellBits    = 20

	modShift     = kindBits
	trackerShift = modShift + modBits
	dstShift     = trackerShift + trackerBits
	srcShift     = dstShift + cellBits

	trackerMask = 1<<trackerBits - 1
	cellMask    = 1<<cellBits - 1
)

// MaxTrackers is the number of trackers an Op or Guard can address.
const MaxTrackers = 1 << trackerBits

// MaxCells is the number of cells per tracker an Op or Guard can address.
const MaxCells = 1 << cellBits

// Op is one encoded counter operation.
//
// Layout (low to high): kind (2 bits), modifier (2 bits), tracker index
// (16 bits), destination cell (20 bits), source cell (20 bits).
// Set1 and SetMin ignore the source cell.
type Op uint64

// NewOp encodes an operation. Panics if an index does not fit its field.
func NewOp(kind Kind, mod Modifier, tracker, dst, src int) Op {
	return Op(uint64(kind) |
		uint64(mod)<<modShift |
		conv.IntToField(tracker, trackerBits)<<trackerShift |
		conv.IntToField(dst, cellBits)<<dstShift |
		conv.IntToField(src, cellBits)<<srcShift)
}

// Kind returns the value transformation.
func (o Op) Kind() Kind { return Kind(o & 3) }

// Modifier returns the combination mode.
func (o Op) Modifier() Modifier { return Modifier(o >> modShift & 3) }

// Tracker returns the index of the tracker the op targets.
func (o Op) Tracker() int { return int(o >> trackerShift & trackerMask) }

// Dst returns the destination cell.
func (o Op) Dst() int { return int(o >> dstShift & cellMask) }

// Src returns the source cell.
func (o Op) Src() int { return int(o >> srcShift & cellMask) }

// IsSet reports whether the op produces a constant set.
func (o Op) IsSet() bool {
	k := o.Kind()
	return k == Set1 || k == SetMin
}

// InPlace reports whether the op only reads and writes its destination cell.
func (o Op) InPlace() bool {
	m := o.Modifier()
	if m != Overwrite && m != Union {
		return false
	}
	return o.IsSet() || o.Dst() == o.Src()
}

// wellFormed rejects combinations without a defined meaning: constant sets
// can't be moved or swapped, and a cell can't be moved or swapped with itself.
func (o Op) wellFormed() bool {
	switch o.Modifier() {
	case Move, Swap:
		return !o.IsSet() && o.Dst() != o.Src()
	}
	return true
}

// String returns a readable form such as "Inc/Union t0 c2<-c1".
func (o Op) String() string {
	if o.IsSet() {
		return fmt.Sprintf("%v/%v t%d c%d", o.Kind(), o.Modifier(), o.Tracker(), o.Dst())
	}
	return fmt.Sprintf("%v/%v t%d c%d<-c%d", o.Kind(), o.Modifier(), o.Tracker(), o.Dst(), o.Src())
}

// Query is a range test on a cell.
type Query uint8

const (
	// AnyLtMin is true if some value is below the minimum.
	AnyLtMin Query = iota

	// AnyGeMin is true if some value reached the minimum.
	AnyGeMin

	// AnyLtMax is true if some value is below the maximum, or the cell is
	// non-empty and the counter is unbounded.
	AnyLtMax
)

// String returns the query name.
func (q Query) String() string {
	switch q {
	case AnyLtMin:
		return "AnyLtMin"
	case AnyGeMin:
		return "AnyGeMin"
	case AnyLtMax:
		return "AnyLtMax"
	default:
		return fmt.Sprintf("UnknownQuery(%d)", q)
	}
}

const negateBit = 1 << 2

// Guard is one encoded range test guarding a transition or a final state.
//
// Layout: query (bits 0-1), negation (bit 2), tracker (bits 4-19), cell
// (bits 20-39).
type Guard uint64

// NewGuard encodes a guard. Panics if an index does not fit its field.
func NewGuard(q Query, negate bool, tracker, cell int) Guard {
	g := uint64(q) |
		conv.IntToField(tracker, trackerBits)<<trackerShift |
		conv.IntToField(cell, cellBits)<<dstShift
	if negate {
		g |= negateBit
	}
	return Guard(g)
}

// Query returns the range test.
func (g Guard) Query() Query { return Query(g & 3) }

// Negated reports whether the test result is inverted.
func (g Guard) Negated() bool { return g&negateBit != 0 }

// Tracker returns the index of the tracker the guard reads.
func (g Guard) Tracker() int { return int(g >> trackerShift & trackerMask) }

// Cell returns the cell the guard reads.
func (g Guard) Cell() int { return int(g >> dstShift & cellMask) }

// String returns a readable form such as "!AnyLtMax t0 c1".
func (g Guard) String() string {
	neg := ""
	if g.Negated() {
		neg = "!"
	}
	return fmt.Sprintf("%s%v t%d c%d", neg, g.Query(), g.Tracker(), g.Cell())
}
