// Package tracking implements a DFA interpreter with bounded-quantifier
// counter tracking and capture-group tracking.
//
// An Automaton is immutable, compiled data: states, transitions, matchers,
// counter descriptors and capture-group partial transitions. New validates it
// and prepares an Executor that is safe for concurrent use. All mutable search
// data lives in Locals, which must not be shared between concurrent calls.
//
// Transition semantics:
//
//   - In state S, the transitions are tried in order; the first one whose
//     matcher accepts the current code point and whose counter guards hold is
//     taken. If a Tree is present it selects the transition directly.
//   - Taking a transition applies its counter operations, then (simple
//     capture mode) its capture edits at the position of the consumed code
//     point, then moves to the target. Target -1 is the dead state.
//   - Entering a final state whose final guards hold records a result at the
//     current index. Anchored-final states record a result only at the end
//     of the input.
package tracking

import (
	"github.com/coregx/tdfa/cgroup"
	"github.com/coregx/tdfa/counter"
	"github.com/coregx/tdfa/input"
	"github.com/coregx/tdfa/matcher"
)

// CaptureMode selects what a search reports.
type CaptureMode uint8

const (
	// CaptureNone reports match positions only.
	CaptureNone CaptureMode = iota

	// CaptureSimple tracks captures in a single row, edited eagerly on every
	// transition. Used when at most one NFA state is live at a time.
	CaptureSimple

	// CaptureGeneric tracks captures in a table of rows, edited on entering a
	// state through a dispatch on the transition that was taken.
	CaptureGeneric

	// CaptureTraceFinder reports a precomputed result id instead of positions.
	CaptureTraceFinder
)

// String returns a human-readable capture mode name
func (m CaptureMode) String() string {
	switch m {
	case CaptureNone:
		return "None"
	case CaptureSimple:
		return "Simple"
	case CaptureGeneric:
		return "Generic"
	case CaptureTraceFinder:
		return "TraceFinder"
	default:
		return "Unknown"
	}
}

// Properties are the automaton-wide execution flags.
type Properties struct {
	// Forward is true for left-to-right automata.
	Forward bool

	// Searching is true if the automaton finds matches starting anywhere
	// after the start index, false if matches must start at it.
	Searching bool

	CaptureMode CaptureMode

	// Encoding is the input encoding the matchers were built for.
	Encoding input.Encoding
}

// Automaton is a compiled tracking DFA.
type Automaton struct {
	// States[0] must be the *InitialState.
	States []State

	Props Properties

	// Counters describes one counter tracker per bounded quantifier.
	Counters []counter.Descriptor

	// CaptureGroups is the number of capture groups including group 0.
	CaptureGroups int

	// TrackLastGroup adds a slot recording the last matched group.
	TrackLastGroup bool

	// CaptureRows is the number of rows of the generic capture table.
	// Simple capture mode always uses one row.
	CaptureRows int

	// PrefixLength is the number of code points a forward automaton reads
	// before the start index (look-behind).
	PrefixLength int

	// MinResultLength is a lower bound on the length of any match, in code
	// points.
	MinResultLength int

	// FindStart is a backward automaton run from the end of a match found by
	// a searching automaton to compute its start. Optional.
	FindStart *Automaton
}

// Transition is an outgoing edge of a state.
type Transition struct {
	// ID identifies the transition in generic capture dispatch nodes. IDs are
	// unique within the automaton and non-negative.
	ID int

	// Target is the successor state index, or -1 for the dead state.
	Target int

	// Match selects the code points that take the transition.
	Match matcher.Matcher

	// ClassMatch optionally overrides Match per encoding class
	// (see input.Encoding.Class).
	ClassMatch [input.NumClasses]matcher.Matcher

	// Guards must all hold for the transition to be taken.
	Guards []counter.Guard

	// Ops are applied when the transition is taken.
	Ops []counter.Op

	// Captures are the capture edits of simple capture mode. Optional.
	Captures *cgroup.PartialTransition
}

func (t *Transition) matches(cp, class int) bool {
	if m := t.ClassMatch[class]; m != nil {
		return m.Match(cp)
	}
	return t.Match != nil && t.Match.Match(cp)
}

// Node holds the fields shared by all state variants.
type Node struct {
	// ID is a stable identifier, used in error messages.
	ID int

	Transitions []Transition

	// Tree, if set, maps every code point to a transition index (or -1).
	// Transitions of a tree-matched state cannot carry guards.
	Tree *matcher.Tree

	Final         bool
	AnchoredFinal bool

	// FinalGuards must all hold for a result to be recorded.
	FinalGuards []counter.Guard

	// LoopToSelf is the index of the self-loop transition, or -1.
	LoopToSelf int

	// IndexOf enables the fast-forward scan over the self-loop. It must accept
	// exactly the code points for which the self-loop transition is selected
	// when its guards hold. Guards are still evaluated while skipping.
	IndexOf *matcher.Accel

	// BackwardPrefixState is, for backward automata, the state to switch to
	// once the search start is reached, after which reading continues down
	// to the region start. -1 if none.
	BackwardPrefixState int
}

// NewNode returns a node with no transitions, self-loop or prefix state.
func NewNode(id int) Node {
	return Node{ID: id, LoopToSelf: -1, BackwardPrefixState: -1}
}

// Successors returns the indices of the states reachable in one step.
// The dead state is omitted.
func (n *Node) Successors() []int {
	var out []int
	for i := range n.Transitions {
		if t := n.Transitions[i].Target; t >= 0 {
			out = append(out, t)
		}
	}
	return out
}

// IsFinal reports whether entering the state may record a result.
func (n *Node) IsFinal() bool { return n.Final }

// IsAnchoredFinal reports whether the state records a result at the end of
// the input.
func (n *Node) IsAnchoredFinal() bool { return n.AnchoredFinal }

// HasLoopToSelf reports whether the state has a self-loop transition.
func (n *Node) HasLoopToSelf() bool { return n.LoopToSelf >= 0 }

// State is a DFA state. It is implemented by *PlainState, *SimpleCGState,
// *GenericCGState, *TraceFinderState, *InnerLiteralState and *InitialState.
type State interface {
	Successors() []int
	IsFinal() bool
	IsAnchoredFinal() bool
	HasLoopToSelf() bool

	base() *Node
}

// PlainState records the current index as the result.
type PlainState struct {
	Node
}

func (s *PlainState) base() *Node { return &s.Node }

// SimpleCGState exports the single capture row as the result.
type SimpleCGState struct {
	Node

	// FinalCaptures are applied to the exported row when a result is
	// recorded on entering the state.
	FinalCaptures *cgroup.PartialTransition

	// AnchoredFinalCaptures are applied to the exported row when a result is
	// recorded at the end of the input.
	AnchoredFinalCaptures *cgroup.PartialTransition
}

func (s *SimpleCGState) base() *Node { return &s.Node }

// GenericCGState edits the capture table on entry according to the
// transition that was taken to reach it.
type GenericCGState struct {
	Node

	// Dispatch holds the table edits keyed by incoming transition ID.
	// It is applied at the position of the consumed code point. An ID with
	// no branch means no edits.
	Dispatch *cgroup.DispatchNode

	// FinalExport exports the result keyed by incoming transition ID. Every
	// branch must set FinalRow.
	FinalExport *cgroup.DispatchNode

	// AnchoredExport is FinalExport for results at the end of the input.
	AnchoredExport *cgroup.DispatchNode
}

func (s *GenericCGState) base() *Node { return &s.Node }

// TraceFinderState records a precomputed result id.
// Lower ids have higher priority.
type TraceFinderState struct {
	Node

	// Result is recorded on entering a final state, or -1.
	Result int

	// AnchoredResult is recorded at the end of the input, or -1.
	AnchoredResult int
}

// NewTraceFinderState returns a trace-finder state. If the unanchored
// result has priority over the anchored one the anchored result can never be
// reported, so it is dropped and the state is no longer anchored-final.
func NewTraceFinderState(n Node, result, anchoredResult int) *TraceFinderState {
	s := &TraceFinderState{Node: n, Result: result, AnchoredResult: anchoredResult}
	s.Final = result >= 0
	s.AnchoredFinal = anchoredResult >= 0
	if result >= 0 && anchoredResult >= 0 && result < anchoredResult {
		s.AnchoredResult = -1
		s.AnchoredFinal = false
	}
	return s
}

func (s *TraceFinderState) base() *Node { return &s.Node }

// InnerLiteralState jumps to the next occurrence of a literal instead of
// matching code points.
type InnerLiteralState struct {
	Node

	Literal *input.Literal

	// Prefix is a backward automaton validating the text before the literal,
	// from the literal start down to the search start. Optional.
	Prefix *Automaton

	// Next is the state entered right after the literal.
	Next int
}

// Successors returns the state following the literal.
func (s *InnerLiteralState) Successors() []int { return []int{s.Next} }

func (s *InnerLiteralState) base() *Node { return &s.Node }

// InitialState selects the first state of a search.
//
// Entries has 2×(PrefixLength+1) elements. The entry index is
// half×(PrefixLength+1) + missing, where half is 1 when the search starts
// at the region boundary (region start for forward automata, region end for
// backward ones) and missing is the number of prefix code points that could
// not be read before the start index.
type InitialState struct {
	Node

	// Entries are the successor state indices, -1 meaning no match.
	Entries []int

	// EntryTransitionIDs are the transition IDs seen by the dispatch of the
	// entry state in generic capture mode. Optional.
	EntryTransitionIDs []int

	// EntryCaptures are applied at the start index. Optional.
	EntryCaptures []*cgroup.PartialTransition
}

// Successors returns the entry states.
func (s *InitialState) Successors() []int {
	var out []int
	for _, e := range s.Entries {
		if e >= 0 {
			out = append(out, e)
		}
	}
	return out
}

func (s *InitialState) base() *Node { return &s.Node }
