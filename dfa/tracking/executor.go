package tracking

import (
	"context"
	"errors"
	"math"
	"slices"

	"github.com/coregx/tdfa/cgroup"
	"github.com/coregx/tdfa/counter"
	"github.com/coregx/tdfa/input"
	"github.com/coregx/tdfa/internal/conv"
	"github.com/coregx/tdfa/matcher"
)

// NoMatch is the result index reported when there is no match.
const NoMatch = -2

// noMatchValue is the packed form of NoMatch.
var noMatchValue = conv.PackPair(0, NoMatch)

// End returns the end index (or trace-finder result id) of a packed match
// result, or NoMatch.
func End(v uint64) int {
	_, lo := conv.UnpackPair(v)
	return lo
}

// Start returns the start index of a packed match result. It is only
// meaningful for automata with a find-start automaton.
func Start(v uint64) int {
	hi, _ := conv.UnpackPair(v)
	return hi
}

// Executor runs searches over a validated automaton.
// It is immutable and safe for concurrent use; per-call data lives in Locals.
type Executor struct {
	a   *Automaton
	cfg Config

	trackers []counter.Tracker
	layout   counter.Layout

	// width of a capture row.
	width int

	// loops[i] is the fast-forward data of state i, or nil.
	loops []*fastLoop

	findStart *Executor

	// prefixes are the literal prefix executors; prefixSlot maps a state
	// index to its slot, or -1.
	prefixes   []*Executor
	prefixSlot []int
}

// fastLoop describes how a self-loop skipped by fast-forward is replayed.
type fastLoop struct {
	accel    *matcher.Accel
	id       int
	guards   []counter.Guard
	ops      []counter.Op
	horizon  int
	captures *cgroup.PartialTransition

	// stepwise is set when the loop side effects have no closed form. The
	// loop is then replayed one skipped code point at a time.
	stepwise bool
}

// newFastLoop returns the fast-forward data of state st, or nil. Backward
// automata never fast-forward.
func newFastLoop(a *Automaton, trackers []counter.Tracker, st State) *fastLoop {
	node := st.base()
	if node.IndexOf == nil || !a.Props.Forward {
		return nil
	}
	loop := &node.Transitions[node.LoopToSelf]
	ff := &fastLoop{
		accel:    node.IndexOf,
		id:       loop.ID,
		guards:   loop.Guards,
		ops:      loop.Ops,
		captures: loop.Captures,
		stepwise: !closedForm(a, st, loop),
	}
	if !ff.stepwise {
		ff.horizon = counter.Horizon(trackers, loop.Ops)
	}
	return ff
}

// closedForm reports whether repeating the self-loop n times can be
// computed without stepping. Counter ops must be in place so that repeating
// them converges, and capture edits must neither reorder nor copy rows so
// that repeating them equals applying them once at the last position. The
// loop can't be guarded, and a final guard must not flip while looping.
func closedForm(a *Automaton, st State, loop *Transition) bool {
	node := st.base()
	if len(loop.Guards) > 0 {
		return false
	}
	for _, op := range loop.Ops {
		if !op.InPlace() {
			return false
		}
		if op.IsSet() && len(node.FinalGuards) > 0 {
			return false
		}
	}
	if len(loop.Ops) > 0 {
		for _, g := range node.FinalGuards {
			if g.Query() != counter.AnyGeMin || g.Negated() || !a.Counters[g.Tracker()].Saturating() {
				return false
			}
		}
	}
	noMoves := func(p *cgroup.PartialTransition) bool {
		return p == nil || len(p.Reorder) == 0 && len(p.Copies) == 0
	}
	switch s := st.(type) {
	case *SimpleCGState:
		return noMoves(loop.Captures)
	case *GenericCGState:
		if s.Dispatch != nil {
			if b, ok := s.Dispatch.Lookup(loop.ID); ok {
				return noMoves(s.Dispatch.Common) && noMoves(b)
			}
		}
	}
	return true
}

// New validates a and builds its counter trackers and nested executors.
//
// Resource limits are enforced here: an automaton above any limit of cfg is
// rejected with an ErrUnsupportedPattern-kind error, and a search never
// fails because of them.
func New(a *Automaton, cfg Config) (*Executor, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	p, err := validate(a, &cfg)
	if err != nil {
		return nil, err
	}

	trackers, layout, err := counter.Build(a.Counters, p.ops, cfg.MaxCounterMemory)
	if err != nil {
		if errors.Is(err, counter.ErrInvalidDescriptor) {
			return nil, &Error{Kind: InvalidAutomaton, Message: "invalid counter configuration", Cause: err}
		}
		return nil, unsupportedf(err, "counter trackers rejected")
	}

	e := &Executor{
		a:          a,
		cfg:        cfg,
		trackers:   trackers,
		layout:     layout,
		loops:      make([]*fastLoop, len(a.States)),
		prefixSlot: make([]int, len(a.States)),
	}
	if m := a.Props.CaptureMode; m == CaptureSimple || m == CaptureGeneric {
		e.width = cgroup.Width(a.CaptureGroups, a.TrackLastGroup)
	}

	for i, st := range a.States {
		e.prefixSlot[i] = -1
		if cfg.FastForward {
			e.loops[i] = newFastLoop(a, trackers, st)
		}
		if s, ok := st.(*InnerLiteralState); ok && s.Prefix != nil {
			if s.Prefix.Props.Encoding != a.Props.Encoding {
				return nil, invalidf("state %d: literal prefix automaton encoding %v, want %v",
					i, s.Prefix.Props.Encoding, a.Props.Encoding)
			}
			sub, err := New(s.Prefix, cfg)
			if err != nil {
				return nil, wrapState(i, err)
			}
			e.prefixSlot[i] = len(e.prefixes)
			e.prefixes = append(e.prefixes, sub)
		}
	}

	if a.FindStart != nil {
		sub, err := New(a.FindStart, cfg)
		if err != nil {
			return nil, err
		}
		e.findStart = sub
	}
	return e, nil
}

// Automaton returns the automaton the executor runs.
func (e *Executor) Automaton() *Automaton { return e.a }

// Trackers returns the counter trackers chosen for the automaton.
func (e *Executor) Trackers() []counter.Tracker { return e.trackers }

// FindsStart reports whether Match results carry a start index.
func (e *Executor) FindsStart() bool { return e.findStart != nil }

// Match runs a search without capture groups. The result packs the end
// index (low 32 bits) and, if FindsStart, the start index (high 32 bits).
// End reports NoMatch if there is no match. For trace-finder automata the
// end is the result id.
//
// from is where reading starts: the search start of a forward automaton, the
// match end of a backward one. Reading never leaves [regionFrom, regionTo),
// and a forward automaton may read up to PrefixLength code points before from.
func (e *Executor) Match(ctx context.Context, l *Locals, in input.Input, from, regionFrom, regionTo int) (uint64, error) {
	if m := e.a.Props.CaptureMode; m == CaptureSimple || m == CaptureGeneric {
		return noMatchValue, argumentf("Match on an automaton in capture mode %v", m)
	}
	ok, err := e.search(ctx, l, in, from, regionFrom, regionTo)
	if err != nil || !ok || !l.hasResult {
		return noMatchValue, err
	}

	start := 0
	if e.findStart != nil {
		l.stats.FindStartRuns++
		s, err := e.findStart.runNested(ctx, l.findStart, in, l.result, from, regionFrom, regionTo)
		if err != nil {
			return noMatchValue, err
		}
		if s == NoMatch {
			internalf("no start found for the match ending at %d", l.result)
		}
		start = s
	}
	return conv.PackPair(start, l.result), nil
}

// Captures runs a search with capture groups. It returns nil if there is no
// match, otherwise a fresh slice of cgroup.Width(CaptureGroups,
// TrackLastGroup) elements holding the start and end of each group, -1 for
// groups that did not participate.
func (e *Executor) Captures(ctx context.Context, l *Locals, in input.Input, from, regionFrom, regionTo int) ([]int, error) {
	m := e.a.Props.CaptureMode
	if m != CaptureSimple && m != CaptureGeneric {
		return nil, argumentf("Captures on an automaton in capture mode %v", m)
	}
	ok, err := e.search(ctx, l, in, from, regionFrom, regionTo)
	if err != nil || !ok || !l.hasResult {
		return nil, err
	}
	if m == CaptureGeneric {
		return slices.Clone(l.table.Result), nil
	}
	return slices.Clone(l.exported), nil
}

// search checks the arguments and runs the automaton. It reports false if
// the input is too short to hold a match.
func (e *Executor) search(ctx context.Context, l *Locals, in input.Input, from, regionFrom, regionTo int) (bool, error) {
	if l == nil || in == nil {
		return false, argumentf("nil locals or input")
	}
	if in.Len() > math.MaxInt32 {
		return false, argumentf("input of %d code units is too long", in.Len())
	}
	if regionFrom < 0 || regionFrom > from || from > regionTo || regionTo > in.Len() {
		return false, argumentf("invalid bounds: from %d, region [%d, %d), input length %d",
			from, regionFrom, regionTo, in.Len())
	}
	if in.Encoding() != e.a.Props.Encoding {
		return false, argumentf("input encoding %v, automaton encoding %v", in.Encoding(), e.a.Props.Encoding)
	}

	l.result, l.hasResult = NoMatch, false
	remaining := regionTo - from
	if !e.a.Props.Forward {
		remaining = from - regionFrom
	}
	if remaining < e.a.MinResultLength {
		return false, nil
	}
	l.setup(in, from, regionFrom, regionFrom, regionTo)
	return true, e.run(ctx, l)
}

// runNested runs a backward sub-search from start, stopping at bound unless
// a prefix state takes over. It returns the recorded result or NoMatch.
func (e *Executor) runNested(ctx context.Context, l *Locals, in input.Input, start, bound, regionFrom, regionTo int) (int, error) {
	if start-regionFrom < e.a.MinResultLength {
		return NoMatch, nil
	}
	l.setup(in, start, bound, regionFrom, regionTo)
	if err := e.run(ctx, l); err != nil {
		return NoMatch, err
	}
	return l.result, nil
}

func (e *Executor) run(ctx context.Context, l *Locals) error {
	l.reset(e)
	cur := e.enter(l)
	for {
		if err := e.loop(ctx, l, cur); err != nil {
			return err
		}
		if l.hasResult || l.restart < 0 {
			return nil
		}
		// The run after an inner literal died: look for the next occurrence.
		l.index, cur = l.restart, l.restartState
		l.restart = -1
		counter.InitAll(e.trackers, l.counters)
	}
}

// enter selects the entry state, rewinding over the look-behind prefix.
func (e *Executor) enter(l *Locals) int {
	a := e.a
	init := a.States[0].(*InitialState)
	p := a.PrefixLength

	start, rewound := l.from, 0
	for rewound < p && start > l.regionFrom {
		_, start = l.in.ReadBack(start)
		rewound++
	}
	half := 0
	if a.Props.Forward && start == l.regionFrom || !a.Props.Forward && start == l.regionTo {
		half = 1
	}
	k := half*(p+1) + p - rewound

	l.index = start
	l.lastIndex = l.from
	l.lastTransition = -1
	if len(init.EntryTransitionIDs) > 0 {
		l.lastTransition = init.EntryTransitionIDs[k]
	}
	if len(init.EntryCaptures) > 0 {
		if c := init.EntryCaptures[k]; c != nil {
			if l.table != nil {
				c.Apply(l.table, l.from)
			} else {
				c.ApplyFlat(l.row, l.from)
			}
		}
	}
	return init.Entries[k]
}

// loop is the driver loop. It returns when the dead state is reached, no
// transition matches, or the input is exhausted.
func (e *Executor) loop(ctx context.Context, l *Locals, cur int) error {
	a := e.a
	fwd := a.Props.Forward
	for cur >= 0 {
		l.stats.Steps++
		if l.steps++; l.steps >= e.cfg.InterruptCheckInterval {
			l.steps = 0
			if ctx != nil {
				if err := ctx.Err(); err != nil {
					return &Error{Kind: Interrupted, Message: "search interrupted", Cause: err}
				}
			}
		}

		st := a.States[cur]
		if s, ok := st.(*InnerLiteralState); ok {
			next, err := e.innerLiteral(ctx, l, cur, s)
			if err != nil {
				return err
			}
			cur = next
			continue
		}
		node := st.base()

		e.beforeEnteringState(l, st)

		if ff := e.loops[cur]; ff != nil {
			post := l.in.IndexOfNot(l.index, l.limit, ff.accel)
			if post > l.index && e.afterFastForwardSearch(l, st, ff, post) {
				continue
			}
		}

		if !fwd && !l.inPrefix && node.BackwardPrefixState >= 0 && l.index <= l.bound {
			l.inPrefix = true
			l.limit = l.regionFrom
			cur = node.BackwardPrefixState
			continue
		}

		if l.atEnd(fwd) {
			e.atEndOfInput(l, st)
			return nil
		}
		if len(node.Transitions) == 0 {
			return nil
		}

		var cp, next int
		if fwd {
			cp, next = l.in.Read(l.index)
		} else {
			cp, next = l.in.ReadBack(l.index)
		}
		ti := e.selectTransition(l, node, cp)
		if ti < 0 {
			return nil
		}
		t := &node.Transitions[ti]
		counter.ApplyAll(e.trackers, t.Ops, l.counters)
		if t.Captures != nil {
			t.Captures.ApplyFlat(l.row, l.index)
		}
		l.lastTransition, l.lastIndex = t.ID, l.index
		l.index = next
		cur = t.Target
	}
	return nil
}

func (e *Executor) selectTransition(l *Locals, node *Node, cp int) int {
	if node.Tree != nil {
		return node.Tree.Find(cp)
	}
	class := e.a.Props.Encoding.Class(cp)
	for i := range node.Transitions {
		t := &node.Transitions[i]
		if t.matches(cp, class) && counter.CheckAll(e.trackers, t.Guards, l.counters) {
			return i
		}
	}
	return -1
}

func (e *Executor) finalGuards(l *Locals, node *Node) bool {
	return counter.CheckAll(e.trackers, node.FinalGuards, l.counters)
}

// beforeEnteringState applies the entry edits of st and records a result if
// st is final.
func (e *Executor) beforeEnteringState(l *Locals, st State) {
	switch s := st.(type) {
	case *PlainState:
		if s.Final && e.finalGuards(l, &s.Node) {
			l.store(l.position())
		}
	case *SimpleCGState:
		if s.Final && e.finalGuards(l, &s.Node) {
			s.FinalCaptures.ExportFlat(l.exported, l.row, l.index)
			l.store(l.index)
		}
	case *GenericCGState:
		if s.Dispatch != nil {
			s.Dispatch.Apply(l.table, l.lastTransition, l.lastIndex)
		}
		if s.Final && e.finalGuards(l, &s.Node) {
			if !s.FinalExport.ApplyFinal(l.table, l.lastTransition, l.index) {
				internalf("state %d: no final export for transition %d", s.ID, l.lastTransition)
			}
			l.store(l.index)
		}
	case *TraceFinderState:
		if s.Final && e.finalGuards(l, &s.Node) {
			l.store(s.Result)
		}
	}
}

// afterFastForwardSearch accounts for the self-loop having been taken on
// the code points in [l.index, post) and reports whether any was consumed.
// The entry edits of the last iteration are left to the driver loop, which
// re-enters the state.
//
// In closed form, inputs only skip single-unit code points, so post-l.index
// is the number of iterations. Counter ops are replayed up to their horizon.
// Capture edits without row moves are idempotent, so they are applied once,
// at the last skipped position; in generic mode this happens through the
// dispatch when the state is re-entered.
func (e *Executor) afterFastForwardSearch(l *Locals, st State, ff *fastLoop, post int) bool {
	if ff.stepwise {
		if !e.replayLoop(l, st, ff, post) {
			return false
		}
		l.stats.FastForwards++
		return true
	}
	l.stats.FastForwards++
	_, last := l.in.ReadBack(post)
	counter.Replay(e.trackers, ff.ops, post-l.index, ff.horizon, l.counters)
	if ff.captures != nil {
		ff.captures.ApplyFlat(l.row, last)
	}
	l.lastTransition, l.lastIndex = ff.id, last
	l.index = post
	return true
}

// replayLoop takes the self-loop on each code point of [l.index, post) the
// way the driver loop does, minus transition selection. It stops where a
// loop guard fails and reports whether it consumed anything.
func (e *Executor) replayLoop(l *Locals, st State, ff *fastLoop, post int) bool {
	moved := false
	for l.index < post && counter.CheckAll(e.trackers, ff.guards, l.counters) {
		if moved {
			e.beforeEnteringState(l, st)
		}
		_, next := l.in.Read(l.index)
		counter.ApplyAll(e.trackers, ff.ops, l.counters)
		if ff.captures != nil {
			ff.captures.ApplyFlat(l.row, l.index)
		}
		l.lastTransition, l.lastIndex = ff.id, l.index
		l.index = next
		moved = true
	}
	return moved
}

// atEndOfInput records the anchored result of st, if any.
func (e *Executor) atEndOfInput(l *Locals, st State) {
	node := st.base()
	if !node.AnchoredFinal || !e.finalGuards(l, node) {
		return
	}
	switch s := st.(type) {
	case *PlainState:
		l.store(l.position())
	case *SimpleCGState:
		s.AnchoredFinalCaptures.ExportFlat(l.exported, l.row, l.index)
		l.store(l.index)
	case *GenericCGState:
		if !s.AnchoredExport.ApplyFinal(l.table, l.lastTransition, l.index) {
			internalf("state %d: no anchored export for transition %d", s.ID, l.lastTransition)
		}
		l.store(l.index)
	case *TraceFinderState:
		l.store(s.AnchoredResult)
	}
}

// innerLiteral moves to the next occurrence of the state's literal whose
// prefix validates, and returns the state following it, or -1.
func (e *Executor) innerLiteral(ctx context.Context, l *Locals, cur int, s *InnerLiteralState) (int, error) {
	for from := l.index; ; {
		start, end := l.in.IndexOfLiteral(from, l.limit, s.Literal)
		if start < 0 {
			l.restart = -1
			return -1, nil
		}
		l.stats.LiteralCandidates++
		if slot := e.prefixSlot[cur]; slot >= 0 {
			r, err := e.prefixes[slot].runNested(ctx, l.prefixes[slot], l.in, start, l.from, l.regionFrom, l.regionTo)
			if err != nil {
				return -1, err
			}
			if r == NoMatch {
				from = start + 1
				continue
			}
		}
		l.restart, l.restartState = start+1, cur
		l.index = end
		return s.Next, nil
	}
}
