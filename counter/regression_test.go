package counter

import (
	"fmt"
	"slices"
	"testing"

	"github.com/google/go-cmp/cmp"
)

// regressionTracker runs several representations of the same quantifier side
// by side in one arena and fails the test as soon as they disagree.
//
// The set of representations is fixed at construction: only variants that
// support every operation of the automaton are included.
type regressionTracker struct {
	tb       testing.TB
	desc     Descriptor
	variants []Variant
	trackers []Tracker
}

func newRegressionTracker(tb testing.TB, d Descriptor, variants []Variant, ops []Op, fixedBase, dynBase int) (*regressionTracker, Layout) {
	tb.Helper()
	r := &regressionTracker{tb: tb, desc: d}
	var layout Layout
	for _, v := range variants {
		t, size := New(v, d, fixedBase+layout.Fixed, dynBase+layout.Dynamic)
		if !supportsAll(t, ops) {
			continue
		}
		r.variants = append(r.variants, v)
		r.trackers = append(r.trackers, t)
		layout.Fixed += size.Fixed
		layout.Dynamic += size.Dynamic
	}
	if len(r.trackers) == 0 {
		tb.Fatalf("no representation of %+v supports the operations", d)
	}
	return r, layout
}

func (r *regressionTracker) Descriptor() Descriptor { return r.desc }

func (r *regressionTracker) Init(d *Data) {
	for _, t := range r.trackers {
		t.Init(d)
	}
}

func (r *regressionTracker) Apply(op Op, d *Data) {
	for _, t := range r.trackers {
		t.Apply(op, d)
	}
}

func (r *regressionTracker) Supports(op Op) bool {
	return slices.ContainsFunc(r.trackers, func(t Tracker) bool { return t.Supports(op) })
}

func (r *regressionTracker) agree(name string, cell int, f func(Tracker) bool) bool {
	r.tb.Helper()
	want := f(r.trackers[0])
	for i, t := range r.trackers[1:] {
		if got := f(t); got != want {
			r.tb.Fatalf("%s(cell %d): %v = %v, %v = %v", name, cell, r.variants[0], want, r.variants[i+1], got)
		}
	}
	return want
}

func (r *regressionTracker) AnyLtMin(cell int, d *Data) bool {
	return r.agree("AnyLtMin", cell, func(t Tracker) bool { return t.AnyLtMin(cell, d) })
}

func (r *regressionTracker) AnyGeMin(cell int, d *Data) bool {
	return r.agree("AnyGeMin", cell, func(t Tracker) bool { return t.AnyGeMin(cell, d) })
}

func (r *regressionTracker) AnyLtMax(cell int, d *Data) bool {
	return r.agree("AnyLtMax", cell, func(t Tracker) bool { return t.AnyLtMax(cell, d) })
}

func (r *regressionTracker) Values(cell int, d *Data) []int {
	r.tb.Helper()
	want := r.trackers[0].Values(cell, d)
	for i, t := range r.trackers[1:] {
		if diff := cmp.Diff(want, t.Values(cell, d)); diff != "" {
			r.tb.Fatalf("Values(cell %d): %v vs %v (-first +other):\n%s", cell, r.variants[0], r.variants[i+1], diff)
		}
	}
	return want
}

func (r *regressionTracker) String() string {
	return fmt.Sprintf("regression%v", r.variants)
}

func TestRegressionTrackerInBuildArena(t *testing.T) {
	d := Descriptor{Min: 2, Max: 40, Cells: 2}
	loop := []Op{
		NewOp(Set1, Union, 0, 0, 0),
		NewOp(Inc, Overwrite, 0, 0, 0),
	}
	swap := NewOp(Nop, Swap, 0, 1, 0)
	rt, layout := newRegressionTracker(t, d, familyGeneral.variants(d), append(loop, swap), 0, 0)
	if len(rt.trackers) != 4 {
		t.Fatalf("regression tracker runs %v, want 4 variants", rt.variants)
	}

	data := layout.NewData()
	trackers := []Tracker{rt}
	InitAll(trackers, data)
	for i := 0; i < 10; i++ {
		ApplyAll(trackers, loop, data)
	}
	ApplyAll(trackers, []Op{swap}, data)

	for cell := 0; cell < d.Cells; cell++ {
		rt.AnyLtMin(cell, data)
		rt.AnyGeMin(cell, data)
		rt.AnyLtMax(cell, data)
	}
	if diff := cmp.Diff([]int{2, 3, 4, 5, 6, 7, 8, 9, 10, 11}, rt.Values(1, data)); diff != "" {
		t.Errorf("Values(1) mismatch (-want +got):\n%s", diff)
	}
	if got := rt.Values(0, data); got != nil {
		t.Errorf("Values(0) = %v, want empty", got)
	}
}
