// Package pattern builds tracking automata for a few fixed pattern shapes.
//
// It is not a regex compiler. Each builder lays out the states, counter
// operations and capture edits for one shape by hand, the way a generator
// would emit them.
package pattern

import (
	"fmt"

	"github.com/coregx/tdfa/cgroup"
	"github.com/coregx/tdfa/counter"
	"github.com/coregx/tdfa/dfa/tracking"
	"github.com/coregx/tdfa/input"
	"github.com/coregx/tdfa/matcher"
)

// Shorthands for the single counter cell used by every shape.
var (
	set1    = counter.NewOp(counter.Set1, counter.Overwrite, 0, 0, 0)
	join1   = counter.NewOp(counter.Set1, counter.Union, 0, 0, 0)
	inc     = counter.NewOp(counter.Inc, counter.Overwrite, 0, 0, 0)
	geMin   = counter.NewGuard(counter.AnyGeMin, false, 0, 0)
	ltMax   = counter.NewGuard(counter.AnyLtMax, false, 0, 0)
	noGuard []counter.Guard
)

func checkBounds(min, max int) error {
	if min < 0 || max < -1 || max != -1 && max < min {
		return fmt.Errorf("pattern: invalid repetition bounds {%d,%d}", min, max)
	}
	if max == 0 {
		return fmt.Errorf("pattern: empty repetition {%d,%d}", min, max)
	}
	return nil
}

// loopGuards returns the guard of the repetition loop. An unbounded loop is
// always allowed to continue.
func loopGuards(max int) []counter.Guard {
	if max == -1 {
		return noGuard
	}
	return []counter.Guard{ltMax}
}

func plain(id int) *tracking.PlainState {
	return &tracking.PlainState{Node: tracking.NewNode(id)}
}

func initial(entries ...int) *tracking.InitialState {
	return &tracking.InitialState{Node: tracking.NewNode(0), Entries: entries}
}

// Repeat returns an anchored automaton for set{min,max}, max -1 meaning
// unbounded. The longest match wins. Unbounded repetitions fast-forward over
// runs of set.
func Repeat(set matcher.Matcher, min, max int, enc input.Encoding) (*tracking.Automaton, error) {
	if err := checkBounds(min, max); err != nil {
		return nil, err
	}
	first := plain(1)
	first.Final = min == 0
	first.Transitions = []tracking.Transition{
		{ID: 0, Target: 2, Match: set, Ops: []counter.Op{set1}},
	}

	loop := plain(2)
	loop.Final = true
	loop.FinalGuards = []counter.Guard{geMin}
	loop.Transitions = []tracking.Transition{
		{ID: 1, Target: 2, Match: set, Guards: loopGuards(max), Ops: []counter.Op{inc}},
	}
	loop.LoopToSelf = 0
	if max == -1 {
		loop.IndexOf = matcher.NewAccel(set)
	}

	return &tracking.Automaton{
		States:          []tracking.State{initial(1, 1), first, loop},
		Props:           tracking.Properties{Forward: true, Encoding: enc},
		Counters:        []counter.Descriptor{{Min: min, Max: max, Cells: 1, NeverReentered: true}},
		MinResultLength: min,
	}, nil
}

// SearchRepeatThen returns a searching automaton for set{min,max} followed by
// one code point of then, with a find-start automaton. set and then must be
// disjoint. The match with the leftmost end is reported, starting as far
// left as possible.
func SearchRepeatThen(set, then matcher.Matcher, min, max int, enc input.Encoding) (*tracking.Automaton, error) {
	if err := checkBounds(min, max); err != nil {
		return nil, err
	}
	if min == 0 {
		return nil, fmt.Errorf("pattern: searching repetition needs a minimum of at least 1")
	}

	// 1: no run yet; 2: inside a run of set; 3: matched.
	scan := plain(1)
	scan.Transitions = []tracking.Transition{
		{ID: 0, Target: 2, Match: set, Ops: []counter.Op{set1}},
		{ID: 1, Target: 1, Match: matcher.Not{M: set}},
	}
	scan.LoopToSelf = 1
	scan.IndexOf = matcher.NewAccel(matcher.Not{M: set})

	run := plain(2)
	run.Transitions = []tracking.Transition{
		// Every position of the run may start a new repetition.
		{ID: 2, Target: 2, Match: set, Ops: []counter.Op{inc, join1}},
		{ID: 3, Target: 3, Match: then, Guards: []counter.Guard{geMin}},
		{ID: 4, Target: 1, Match: matcher.Any{}},
	}
	run.LoopToSelf = 0

	done := plain(3)
	done.Final = true

	findStart, err := backwardRepeat([]matcher.Matcher{then}, set, min, max, enc)
	if err != nil {
		return nil, err
	}
	return &tracking.Automaton{
		States: []tracking.State{initial(1, 1), scan, run, done},
		Props:  tracking.Properties{Forward: true, Searching: true, Encoding: enc},
		Counters: []counter.Descriptor{
			{Min: min, Max: max, Cells: 1, ReenteredWithSet1: true},
		},
		MinResultLength: min + 1,
		FindStart:       findStart,
	}, nil
}

// backwardRepeat returns a backward automaton reading the code points of
// suffix from right to left, then the longest run of set{min,max}.
// suffix[len(suffix)-1] is read first.
func backwardRepeat(suffix []matcher.Matcher, set matcher.Matcher, min, max int, enc input.Encoding) (*tracking.Automaton, error) {
	if err := checkBounds(min, max); err != nil {
		return nil, err
	}
	k := len(suffix)
	states := []tracking.State{initial(1, 1)}
	id := 0
	for j := 0; j < k; j++ {
		s := plain(j + 1)
		s.Transitions = []tracking.Transition{
			{ID: id, Target: j + 2, Match: suffix[k-1-j]},
		}
		id++
		states = append(states, s)
	}

	first := plain(k + 1)
	first.Final = min == 0
	first.Transitions = []tracking.Transition{
		{ID: id, Target: k + 2, Match: set, Ops: []counter.Op{set1}},
	}
	loop := plain(k + 2)
	loop.Final = true
	loop.FinalGuards = []counter.Guard{geMin}
	loop.Transitions = []tracking.Transition{
		{ID: id + 1, Target: k + 2, Match: set, Guards: loopGuards(max), Ops: []counter.Op{inc}},
	}
	loop.LoopToSelf = 0
	states = append(states, first, loop)

	return &tracking.Automaton{
		States:          states,
		Props:           tracking.Properties{Encoding: enc},
		Counters:        []counter.Descriptor{{Min: min, Max: max, Cells: 1, NeverReentered: true}},
		MinResultLength: min + k,
	}, nil
}

// PrefixedLiteral returns a searching automaton for set{min,max} followed by
// the literal lit. It jumps between occurrences of lit and validates the
// repetition before each one with a backward sub-automaton. The match with
// the leftmost end is reported, starting as far left as possible.
func PrefixedLiteral(set matcher.Matcher, min, max int, lit string, enc input.Encoding) (*tracking.Automaton, error) {
	if err := checkBounds(min, max); err != nil {
		return nil, err
	}
	if min == 0 || lit == "" {
		return nil, fmt.Errorf("pattern: prefixed literal needs a non-empty literal and a minimum of at least 1")
	}
	prefix, err := backwardRepeat(nil, set, min, max, enc)
	if err != nil {
		return nil, err
	}
	var suffix []matcher.Matcher
	for _, r := range lit {
		suffix = append(suffix, matcher.Char(r))
	}
	findStart, err := backwardRepeat(suffix, set, min, max, enc)
	if err != nil {
		return nil, err
	}

	jump := &tracking.InnerLiteralState{
		Node:    tracking.NewNode(1),
		Literal: input.NewLiteral(lit),
		Prefix:  prefix,
		Next:    2,
	}
	done := plain(2)
	done.Final = true

	return &tracking.Automaton{
		States:          []tracking.State{initial(1, 1), jump, done},
		Props:           tracking.Properties{Forward: true, Searching: true, Encoding: enc},
		MinResultLength: min + len(suffix),
		FindStart:       findStart,
	}, nil
}

// GroupRepeatThen returns an anchored automaton for (set{min,})then with one
// capture group, tracked in the given capture mode (CaptureSimple or
// CaptureGeneric). set and then must be disjoint. The result is
// [start, end, group start, group end].
func GroupRepeatThen(set, then matcher.Matcher, min int, mode tracking.CaptureMode, enc input.Encoding) (*tracking.Automaton, error) {
	if min < 1 {
		return nil, fmt.Errorf("pattern: group repetition needs a minimum of at least 1")
	}
	a := &tracking.Automaton{
		Props:           tracking.Properties{Forward: true, CaptureMode: mode, Encoding: enc},
		Counters:        []counter.Descriptor{{Min: min, Max: -1, Cells: 1, NeverReentered: true}},
		CaptureGroups:   2,
		CaptureRows:     1,
		MinResultLength: min + 1,
	}

	write := func(slots ...int) *cgroup.PartialTransition {
		return &cgroup.PartialTransition{Updates: []cgroup.IndexOp{{Row: 0, Slots: slots}}, FinalRow: -1}
	}
	export := &cgroup.PartialTransition{Updates: []cgroup.IndexOp{{Row: 0, Slots: []int{1}}}, FinalRow: 0}

	transitions := func(s int) []tracking.Transition {
		switch s {
		case 1:
			return []tracking.Transition{{ID: 0, Target: 2, Match: set, Ops: []counter.Op{set1}}}
		case 2:
			return []tracking.Transition{
				{ID: 1, Target: 2, Match: set, Ops: []counter.Op{inc}},
				{ID: 2, Target: 3, Match: then, Guards: []counter.Guard{geMin}},
			}
		}
		return nil
	}
	node := func(s int) tracking.Node {
		n := tracking.NewNode(s)
		n.Transitions = transitions(s)
		if s == 2 {
			n.LoopToSelf = 0
			n.IndexOf = matcher.NewAccel(set)
		}
		n.Final = s == 3
		return n
	}

	init := initial(1, 1)
	switch mode {
	case tracking.CaptureSimple:
		init.EntryCaptures = []*cgroup.PartialTransition{write(0), write(0)}
		first := &tracking.SimpleCGState{Node: node(1)}
		first.Transitions[0].Captures = write(2)
		run := &tracking.SimpleCGState{Node: node(2)}
		run.Transitions[1].Captures = write(3)
		done := &tracking.SimpleCGState{Node: node(3), FinalCaptures: export}
		a.States = []tracking.State{init, first, run, done}

	case tracking.CaptureGeneric:
		const entryID = 100
		init.EntryTransitionIDs = []int{entryID, entryID}
		dispatch := func(id int, p *cgroup.PartialTransition) *cgroup.DispatchNode {
			d, err := cgroup.NewDispatchNode([]int{id}, []*cgroup.PartialTransition{p}, nil)
			if err != nil {
				panic(err)
			}
			return d
		}
		exportNode, err := cgroup.NewExportNode([]int{2}, []*cgroup.PartialTransition{export}, nil)
		if err != nil {
			return nil, err
		}
		first := &tracking.GenericCGState{Node: node(1), Dispatch: dispatch(entryID, write(0))}
		run := &tracking.GenericCGState{Node: node(2), Dispatch: dispatch(0, write(2))}
		done := &tracking.GenericCGState{Node: node(3), Dispatch: dispatch(2, write(3)), FinalExport: exportNode}
		a.States = []tracking.State{init, first, run, done}

	default:
		return nil, fmt.Errorf("pattern: capture mode %v is not a capture tracking mode", mode)
	}
	return a, nil
}
