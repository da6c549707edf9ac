package tracking

import (
	"github.com/coregx/tdfa/cgroup"
	"github.com/coregx/tdfa/counter"
	"github.com/coregx/tdfa/input"
)

// Stats counts executor events. The counters of nested searches (find-start
// and literal prefix validation) are added to those of the outer call.
type Stats struct {
	// Steps is the number of driver loop iterations.
	Steps uint64

	// FastForwards is the number of self-loop scans that skipped input.
	FastForwards uint64

	// LiteralCandidates is the number of literal occurrences examined by
	// inner-literal states.
	LiteralCandidates uint64

	// FindStartRuns is the number of backward find-start searches.
	FindStartRuns uint64
}

// Locals holds the mutable data of one search.
//
// Locals are reusable across searches of the executor that created them but
// must not be used by two searches at the same time. All buffers are
// allocated by NewLocals; a search allocates only its returned capture slice.
type Locals struct {
	in input.Input

	// Call bounds. from is where reading starts; bound is where a backward
	// search stops unless it switches to a prefix state.
	from, bound          int
	regionFrom, regionTo int

	index    int
	limit    int
	inPrefix bool

	lastTransition int
	lastIndex      int

	result    int
	hasResult bool

	// Inner-literal restart point, or -1.
	restart      int
	restartState int

	steps int

	counters *counter.Data

	// Simple capture mode: the live row and the exported result.
	row      []int
	exported []int

	// Generic capture mode.
	table *cgroup.Storage

	findStart *Locals
	prefixes  []*Locals

	stats *Stats
}

// NewLocals allocates the scratch data for one search, including that of
// nested sub-searches.
func (e *Executor) NewLocals() *Locals {
	return e.newLocals(&Stats{})
}

func (e *Executor) newLocals(stats *Stats) *Locals {
	l := &Locals{
		counters: e.layout.NewData(),
		restart:  -1,
		stats:    stats,
	}
	switch e.a.Props.CaptureMode {
	case CaptureSimple:
		l.row = make([]int, e.width)
		l.exported = make([]int, e.width)
	case CaptureGeneric:
		l.table = cgroup.NewStorage(e.a.CaptureRows, e.width)
	}
	if e.findStart != nil {
		l.findStart = e.findStart.newLocals(stats)
	}
	for _, p := range e.prefixes {
		l.prefixes = append(l.prefixes, p.newLocals(stats))
	}
	return l
}

// Stats returns the events counted since the last ResetStats.
func (l *Locals) Stats() Stats { return *l.stats }

// ResetStats zeroes the event counters.
func (l *Locals) ResetStats() { *l.stats = Stats{} }

func (l *Locals) setup(in input.Input, from, bound, regionFrom, regionTo int) {
	l.in = in
	l.from, l.bound = from, bound
	l.regionFrom, l.regionTo = regionFrom, regionTo
	l.steps = 0
}

// reset prepares the data for a run of e.
func (l *Locals) reset(e *Executor) {
	l.result, l.hasResult = NoMatch, false
	l.restart = -1
	l.inPrefix = false
	if e.a.Props.Forward {
		l.limit = l.regionTo
	} else {
		l.limit = l.bound
	}
	counter.InitAll(e.trackers, l.counters)
	switch {
	case l.row != nil:
		for i := range l.row {
			l.row[i] = cgroup.Unset
			l.exported[i] = cgroup.Unset
		}
	case l.table != nil:
		l.table.Reset()
	}
}

func (l *Locals) store(result int) {
	l.result, l.hasResult = result, true
}

// position is the index a plain result records. Past the switch to a
// backward prefix state the match starts at the boundary; the prefix states
// only check the text before it.
func (l *Locals) position() int {
	if l.inPrefix {
		return l.bound
	}
	return l.index
}

// atEnd reports whether no input remains in the reading direction.
func (l *Locals) atEnd(forward bool) bool {
	if forward {
		return l.index >= l.limit
	}
	return l.index <= l.limit
}
