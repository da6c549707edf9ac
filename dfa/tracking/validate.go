package tracking

import (
	"fmt"

	"github.com/coregx/tdfa/cgroup"
	"github.com/coregx/tdfa/counter"
	"github.com/coregx/tdfa/internal/sparse"
)

// plan is what validation learns about an automaton.
type plan struct {
	// ops are all counter operations of all transitions.
	ops []counter.Op

	// reachable holds the states reachable from the initial state.
	reachable *sparse.SparseSet

	// incoming[i] lists the ids of the transitions entering state i,
	// including entry pseudo-transitions. Only filled in generic mode.
	incoming [][]int
}

func validate(a *Automaton, cfg *Config) (*plan, error) {
	if a == nil || len(a.States) == 0 {
		return nil, invalidf("automaton has no states")
	}
	n := len(a.States)
	if n > cfg.MaxStates {
		return nil, unsupportedf(nil, "%d states exceed the limit of %d", n, cfg.MaxStates)
	}
	if _, ok := a.States[0].(*InitialState); !ok {
		return nil, invalidf("state 0 is %T, want *InitialState", a.States[0])
	}
	if err := validateProps(a); err != nil {
		return nil, err
	}

	total, maxID := 0, -1
	for i, st := range a.States {
		if st == nil {
			return nil, invalidf("state %d is nil", i)
		}
		for _, t := range st.base().Transitions {
			if t.ID < 0 {
				return nil, invalidf("state %d: negative transition id %d", i, t.ID)
			}
			maxID = max(maxID, t.ID)
		}
		total += len(st.base().Transitions)
	}
	if total > cfg.MaxTransitions {
		return nil, unsupportedf(nil, "%d transitions exceed the limit of %d", total, cfg.MaxTransitions)
	}

	p := &plan{}
	ids := sparse.NewSparseSet(maxID + 1)
	for i, st := range a.States {
		if err := validateState(a, i, st); err != nil {
			return nil, err
		}
		for _, t := range st.base().Transitions {
			if !ids.Insert(t.ID) {
				return nil, invalidf("state %d: duplicate transition id %d", i, t.ID)
			}
			p.ops = append(p.ops, t.Ops...)
		}
	}

	p.reachable = reachable(a)
	if a.Props.CaptureMode == CaptureGeneric {
		p.incoming = incoming(a, p.reachable)
		if err := validateExports(a, p); err != nil {
			return nil, err
		}
	}
	return p, nil
}

func validateProps(a *Automaton) error {
	props := a.Props
	if a.PrefixLength < 0 || a.MinResultLength < 0 {
		return invalidf("negative prefix or minimum result length")
	}
	if !props.Forward {
		if a.PrefixLength > 0 {
			return invalidf("backward automaton with a look-behind prefix")
		}
		if props.CaptureMode == CaptureSimple || props.CaptureMode == CaptureGeneric {
			return invalidf("backward automaton with capture tracking")
		}
	}
	switch props.CaptureMode {
	case CaptureSimple, CaptureGeneric:
		if a.CaptureGroups < 1 {
			return invalidf("capture mode %v without capture groups", props.CaptureMode)
		}
		if props.CaptureMode == CaptureGeneric && a.CaptureRows < 1 {
			return invalidf("generic capture mode without capture rows")
		}
	case CaptureNone, CaptureTraceFinder:
	default:
		return invalidf("unknown capture mode %d", props.CaptureMode)
	}
	if f := a.FindStart; f != nil {
		if !props.Forward || !props.Searching || props.CaptureMode != CaptureNone {
			return invalidf("find-start automaton on a non-searching or capturing automaton")
		}
		if f.Props.Forward || f.Props.CaptureMode != CaptureNone {
			return invalidf("find-start automaton must be backward and non-capturing")
		}
		if f.Props.Encoding != props.Encoding {
			return invalidf("find-start automaton encoding %v, want %v", f.Props.Encoding, props.Encoding)
		}
	}
	return nil
}

func validateState(a *Automaton, i int, st State) error {
	n := len(a.States)
	mode := a.Props.CaptureMode
	node := st.base()

	switch s := st.(type) {
	case *InitialState:
		if i != 0 {
			return invalidf("state %d: initial state not at index 0", i)
		}
		return validateInitial(a, s)
	case *PlainState:
		if mode != CaptureNone && mode != CaptureTraceFinder {
			return invalidf("state %d: plain state in capture mode %v", i, mode)
		}
		if mode == CaptureTraceFinder && (node.Final || node.AnchoredFinal) {
			return invalidf("state %d: final plain state in trace-finder mode", i)
		}
	case *SimpleCGState:
		if mode != CaptureSimple {
			return invalidf("state %d: simple capture state in capture mode %v", i, mode)
		}
		if node.Final && s.FinalCaptures == nil || node.AnchoredFinal && s.AnchoredFinalCaptures == nil {
			return invalidf("state %d: final state without final captures", i)
		}
		for _, p := range []*cgroup.PartialTransition{s.FinalCaptures, s.AnchoredFinalCaptures} {
			if err := validateCaptures(a, p, 1); err != nil {
				return wrapState(i, err)
			}
		}
	case *GenericCGState:
		if mode != CaptureGeneric {
			return invalidf("state %d: generic capture state in capture mode %v", i, mode)
		}
		if node.Final && s.FinalExport == nil || node.AnchoredFinal && s.AnchoredExport == nil {
			return invalidf("state %d: final state without export node", i)
		}
		for _, d := range []*cgroup.DispatchNode{s.Dispatch, s.FinalExport, s.AnchoredExport} {
			if err := validateDispatch(a, d); err != nil {
				return wrapState(i, err)
			}
		}
	case *TraceFinderState:
		if mode != CaptureTraceFinder {
			return invalidf("state %d: trace-finder state in capture mode %v", i, mode)
		}
		if s.Result < -1 || s.AnchoredResult < -1 {
			return invalidf("state %d: invalid result id", i)
		}
		if node.Final != (s.Result >= 0) || node.AnchoredFinal != (s.AnchoredResult >= 0) {
			return invalidf("state %d: final flags disagree with result ids", i)
		}
		if s.Result >= 0 && s.AnchoredResult >= 0 && s.Result < s.AnchoredResult {
			return invalidf("state %d: anchored result %d is shadowed by result %d", i, s.AnchoredResult, s.Result)
		}
	case *InnerLiteralState:
		if mode != CaptureNone || !a.Props.Searching || !a.Props.Forward {
			return invalidf("state %d: inner-literal state needs a forward searching automaton without captures", i)
		}
		if s.Literal == nil || s.Literal.MinLen() <= 0 {
			return invalidf("state %d: inner-literal state without a literal", i)
		}
		if s.Next <= 0 || s.Next >= n {
			return invalidf("state %d: literal successor %d out of range", i, s.Next)
		}
		if _, ok := a.States[s.Next].(*InnerLiteralState); ok {
			return invalidf("state %d: literal successor is an inner-literal state", i)
		}
		if p := s.Prefix; p != nil && (p.Props.Forward || p.Props.CaptureMode != CaptureNone) {
			return invalidf("state %d: literal prefix automaton must be backward and non-capturing", i)
		}
		if len(node.Transitions) > 0 || node.Final || node.AnchoredFinal {
			return invalidf("state %d: inner-literal state with transitions or final flags", i)
		}
		return nil
	default:
		return invalidf("state %d: unknown state type %T", i, st)
	}

	for j := range node.Transitions {
		t := &node.Transitions[j]
		if t.Target < -1 || t.Target == 0 || t.Target >= n {
			return invalidf("state %d: transition %d target %d out of range", i, j, t.Target)
		}
		if node.Tree == nil && t.Match == nil && !hasClassMatch(t) {
			return invalidf("state %d: transition %d has no matcher", i, j)
		}
		if node.Tree != nil && len(t.Guards) > 0 {
			return invalidf("state %d: guarded transition in a tree-matched state", i)
		}
		if err := validateGuards(a, t.Guards); err != nil {
			return wrapState(i, err)
		}
		if t.Captures != nil {
			if mode != CaptureSimple {
				return invalidf("state %d: transition captures in capture mode %v", i, mode)
			}
			if err := validateCaptures(a, t.Captures, 1); err != nil {
				return wrapState(i, err)
			}
		}
	}
	if node.Tree != nil {
		for _, slot := range node.Tree.Slots {
			if slot >= len(node.Transitions) {
				return invalidf("state %d: tree slot %d out of range", i, slot)
			}
		}
	}
	if err := validateGuards(a, node.FinalGuards); err != nil {
		return wrapState(i, err)
	}
	if node.LoopToSelf >= 0 {
		if node.LoopToSelf >= len(node.Transitions) || node.Transitions[node.LoopToSelf].Target != i {
			return invalidf("state %d: self-loop %d is not a transition to itself", i, node.LoopToSelf)
		}
	}
	if node.IndexOf != nil && node.LoopToSelf < 0 {
		return invalidf("state %d: index-of table without a self-loop", i)
	}
	if b := node.BackwardPrefixState; b >= 0 {
		if a.Props.Forward || b == 0 || b >= n {
			return invalidf("state %d: invalid backward prefix state %d", i, b)
		}
	}
	return nil
}

func validateInitial(a *Automaton, s *InitialState) error {
	n := len(a.States)
	want := 2 * (a.PrefixLength + 1)
	if len(s.Entries) != want {
		return invalidf("initial state has %d entries, want %d", len(s.Entries), want)
	}
	for _, e := range s.Entries {
		if e < -1 || e == 0 || e >= n {
			return invalidf("initial state: entry %d out of range", e)
		}
	}
	if len(s.Transitions) > 0 || s.Final || s.AnchoredFinal {
		return invalidf("initial state with transitions or final flags")
	}
	switch len(s.EntryTransitionIDs) {
	case 0:
		if a.Props.CaptureMode == CaptureGeneric {
			return invalidf("generic capture mode without entry transition ids")
		}
	case want:
		for _, id := range s.EntryTransitionIDs {
			if id < 0 {
				return invalidf("initial state: negative entry transition id %d", id)
			}
		}
	default:
		return invalidf("initial state has %d entry transition ids, want %d", len(s.EntryTransitionIDs), want)
	}
	switch len(s.EntryCaptures) {
	case 0:
	case want:
		if a.Props.CaptureMode != CaptureSimple && a.Props.CaptureMode != CaptureGeneric {
			return invalidf("entry captures without capture tracking")
		}
		for _, p := range s.EntryCaptures {
			if err := validateCaptures(a, p, captureRows(a)); err != nil {
				return err
			}
		}
	default:
		return invalidf("initial state has %d entry captures, want %d", len(s.EntryCaptures), want)
	}
	return nil
}

func validateGuards(a *Automaton, guards []counter.Guard) error {
	for _, g := range guards {
		t := g.Tracker()
		if t >= len(a.Counters) || g.Cell() >= a.Counters[t].Cells {
			return invalidf("guard %v addresses a missing counter cell", g)
		}
	}
	return nil
}

func captureRows(a *Automaton) int {
	if a.Props.CaptureMode == CaptureGeneric {
		return a.CaptureRows
	}
	return 1
}

func validateCaptures(a *Automaton, p *cgroup.PartialTransition, rows int) error {
	if p == nil {
		return nil
	}
	w := cgroup.Width(a.CaptureGroups, a.TrackLastGroup)
	if err := p.Validate(rows, w, a.TrackLastGroup); err != nil {
		return &Error{Kind: InvalidAutomaton, Message: "invalid capture transition", Cause: err}
	}
	return nil
}

func validateDispatch(a *Automaton, d *cgroup.DispatchNode) error {
	if d == nil {
		return nil
	}
	if err := validateCaptures(a, d.Common, a.CaptureRows); err != nil {
		return err
	}
	for _, id := range d.IDs() {
		b, _ := d.Lookup(id)
		if err := validateCaptures(a, b, a.CaptureRows); err != nil {
			return err
		}
	}
	return nil
}

func hasClassMatch(t *Transition) bool {
	for _, m := range t.ClassMatch {
		if m != nil {
			return true
		}
	}
	return false
}

func wrapState(i int, err error) error {
	if e, ok := err.(*Error); ok {
		return &Error{Kind: e.Kind, Message: fmt.Sprintf("state %d: %s", i, e.Message), Cause: e.Cause}
	}
	return err
}

// reachable walks the automaton from the initial state, using the sparse
// set as work queue.
func reachable(a *Automaton) *sparse.SparseSet {
	seen := sparse.NewSparseSet(len(a.States))
	seen.Insert(0)
	for k := 0; k < seen.Len(); k++ {
		for _, s := range a.States[seen.At(k)].Successors() {
			seen.Insert(s)
		}
	}
	return seen
}

func incoming(a *Automaton, seen *sparse.SparseSet) [][]int {
	in := make([][]int, len(a.States))
	init := a.States[0].(*InitialState)
	for k, e := range init.Entries {
		if e >= 0 {
			in[e] = append(in[e], init.EntryTransitionIDs[k])
		}
	}
	for _, i := range seen.Values() {
		for _, t := range a.States[i].base().Transitions {
			if t.Target >= 0 {
				in[t.Target] = append(in[t.Target], t.ID)
			}
		}
	}
	return in
}

// validateExports checks that every reachable generic final state can export
// a result whichever transition entered it.
func validateExports(a *Automaton, p *plan) error {
	for _, i := range p.reachable.Values() {
		s, ok := a.States[i].(*GenericCGState)
		if !ok {
			continue
		}
		for _, id := range p.incoming[i] {
			if s.Final && !exports(s.FinalExport, id) {
				return invalidf("state %d: no final export for transition %d", i, id)
			}
			if s.AnchoredFinal && !exports(s.AnchoredExport, id) {
				return invalidf("state %d: no anchored export for transition %d", i, id)
			}
		}
	}
	return nil
}

func exports(d *cgroup.DispatchNode, id int) bool {
	b, ok := d.Lookup(id)
	return ok && b.FinalRow >= 0
}
