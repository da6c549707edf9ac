package tracking

import (
	"context"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/coregx/tdfa/input"
	"github.com/coregx/tdfa/matcher"
)

func mustNew(t *testing.T, a *Automaton) *Executor {
	t.Helper()
	e, err := New(a, DefaultConfig())
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	return e
}

func end(t *testing.T, e *Executor, s string, from, regionFrom int) int {
	t.Helper()
	v, err := e.Match(context.Background(), e.NewLocals(), input.UTF8Input(s), from, regionFrom, len(s))
	if err != nil {
		t.Fatalf("Match(%q) error = %v", s, err)
	}
	return End(v)
}

func TestNewTraceFinderState(t *testing.T) {
	tests := []struct {
		name               string
		result, anchored   int
		wantFinal          bool
		wantAnchoredFinal  bool
		wantAnchoredResult int
	}{
		{"anchored has priority", 1, 0, true, true, 0},
		{"unanchored has priority", 0, 1, true, false, -1},
		{"anchored only", -1, 2, false, true, 2},
		{"unanchored only", 3, -1, true, false, -1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewTraceFinderState(NewNode(1), tt.result, tt.anchored)
			if s.IsFinal() != tt.wantFinal || s.IsAnchoredFinal() != tt.wantAnchoredFinal {
				t.Errorf("final = %v, anchored final = %v, want %v, %v",
					s.IsFinal(), s.IsAnchoredFinal(), tt.wantFinal, tt.wantAnchoredFinal)
			}
			if s.AnchoredResult != tt.wantAnchoredResult {
				t.Errorf("AnchoredResult = %d, want %d", s.AnchoredResult, tt.wantAnchoredResult)
			}
		})
	}
}

// traceFinder reports result 1 after "a" followed by more input and
// anchoredResult at the end of "a".
func traceFinder(result, anchoredResult int) *Automaton {
	first := NewNode(1)
	first.Transitions = []Transition{{ID: 0, Target: 2, Match: matcher.Char('a')}}
	second := NewNode(2)
	second.Transitions = []Transition{{ID: 1, Target: 3, Match: matcher.Char('b')}}
	return &Automaton{
		States: []State{
			&InitialState{Node: NewNode(0), Entries: []int{1, 1}},
			&PlainState{Node: first},
			NewTraceFinderState(second, result, anchoredResult),
			&PlainState{Node: NewNode(3)},
		},
		Props: Properties{Forward: true, CaptureMode: CaptureTraceFinder, Encoding: input.UTF8},
	}
}

func TestTraceFinderPriority(t *testing.T) {
	tests := []struct {
		result, anchored int
		input            string
		want             int
	}{
		{1, 0, "a", 0},
		{1, 0, "ab", 1},
		{0, 1, "a", 0},
		{-1, 2, "a", 2},
		{-1, 2, "ab", NoMatch},
		{1, 0, "b", NoMatch},
	}
	for _, tt := range tests {
		e := mustNew(t, traceFinder(tt.result, tt.anchored))
		if got := end(t, e, tt.input, 0, 0); got != tt.want {
			t.Errorf("results (%d, %d): Match(%q) = %d, want %d", tt.result, tt.anchored, tt.input, got, tt.want)
		}
	}
}

// lookBehind matches "a" preceded by "x".
func lookBehind() *Automaton {
	prefix := NewNode(1)
	prefix.Transitions = []Transition{{ID: 0, Target: 2, Match: matcher.Char('x')}}
	body := NewNode(2)
	body.Transitions = []Transition{{ID: 1, Target: 3, Match: matcher.Char('a')}}
	done := NewNode(3)
	done.Final = true
	return &Automaton{
		States: []State{
			// Entries: rewound fully or missing the prefix, unanchored then anchored.
			&InitialState{Node: NewNode(0), Entries: []int{1, -1, 1, -1}},
			&PlainState{Node: prefix},
			&PlainState{Node: body},
			&PlainState{Node: done},
		},
		Props:           Properties{Forward: true, Encoding: input.UTF8},
		PrefixLength:    1,
		MinResultLength: 1,
	}
}

func TestLookBehindEntries(t *testing.T) {
	e := mustNew(t, lookBehind())
	tests := []struct {
		input            string
		from, regionFrom int
		want             int
	}{
		{"xa", 1, 0, 2},
		{"yxa", 2, 0, 3},
		{"ya", 1, 0, NoMatch},
		{"a", 0, 0, NoMatch},
		{"xa", 1, 1, NoMatch},
	}
	for _, tt := range tests {
		if got := end(t, e, tt.input, tt.from, tt.regionFrom); got != tt.want {
			t.Errorf("Match(%q, from %d, region from %d) = %d, want %d",
				tt.input, tt.from, tt.regionFrom, got, tt.want)
		}
	}
}

// backwardWithPrefix reads "b", then a run of "a" down to the search start,
// then requires an "x" right before the search start.
func backwardWithPrefix() *Automaton {
	n := func(id, target int, c rune) Node {
		n := NewNode(id)
		n.Transitions = []Transition{{ID: id, Target: target, Match: matcher.Char(c)}}
		return n
	}
	run := n(3, 3, 'a')
	run.LoopToSelf = 0
	run.BackwardPrefixState = 4
	done := NewNode(5)
	done.Final = true
	return &Automaton{
		States: []State{
			&InitialState{Node: NewNode(0), Entries: []int{1, 1}},
			&PlainState{Node: n(1, 2, 'b')},
			&PlainState{Node: n(2, 3, 'a')},
			&PlainState{Node: run},
			&PlainState{Node: n(4, 5, 'x')},
			&PlainState{Node: done},
		},
		Props: Properties{Encoding: input.UTF8},
	}
}

func TestBackwardPrefixState(t *testing.T) {
	e := mustNew(t, backwardWithPrefix())
	tests := []struct {
		input string
		bound int
		want  int
	}{
		{"xaab", 1, 1},
		{"yaab", 1, NoMatch},
		{"xaab", 2, NoMatch},
		{"xaab", 0, NoMatch},
		{"zxaab", 2, 2},
	}
	for _, tt := range tests {
		l := e.NewLocals()
		in := input.UTF8Input(tt.input)
		got, err := e.runNested(context.Background(), l, in, len(tt.input), tt.bound, 0, len(tt.input))
		if err != nil {
			t.Fatalf("runNested(%q) error = %v", tt.input, err)
		}
		if got != tt.want {
			t.Errorf("runNested(%q, bound %d) = %d, want %d", tt.input, tt.bound, got, tt.want)
		}
	}
}

func TestTreeTransitions(t *testing.T) {
	tree, err := matcher.NewTree([]matcher.Ranges{
		{{Lo: '0', Hi: '9'}},
		{{Lo: 'a', Hi: 'z'}, {Lo: 'A', Hi: 'Z'}},
	})
	if err != nil {
		t.Fatalf("NewTree() error = %v", err)
	}
	dispatch := NewNode(1)
	dispatch.Tree = tree
	dispatch.Transitions = []Transition{{ID: 0, Target: 2}, {ID: 1, Target: -1}}
	digit := NewNode(2)
	digit.Final = true
	a := &Automaton{
		States: []State{
			&InitialState{Node: NewNode(0), Entries: []int{1, 1}},
			&PlainState{Node: dispatch},
			&PlainState{Node: digit},
		},
		Props: Properties{Forward: true, Encoding: input.UTF8},
	}
	e := mustNew(t, a)

	for _, tt := range []struct {
		input string
		want  int
	}{
		{"7", 1},
		{"q", NoMatch},
		{"Q", NoMatch},
		{"!", NoMatch},
		{"é", NoMatch},
	} {
		if got := end(t, e, tt.input, 0, 0); got != tt.want {
			t.Errorf("Match(%q) = %d, want %d", tt.input, got, tt.want)
		}
	}
}

func TestClassMatch(t *testing.T) {
	// One transition, matching ASCII letters through Match and two-byte
	// UTF-8 sequences through the class override.
	n := NewNode(1)
	n.Transitions = []Transition{{ID: 0, Target: 2, Match: matcher.Range{Lo: 'a', Hi: 'z'}}}
	n.Transitions[0].ClassMatch[1] = matcher.Any{}
	done := NewNode(2)
	done.Final = true
	e := mustNew(t, &Automaton{
		States: []State{
			&InitialState{Node: NewNode(0), Entries: []int{1, 1}},
			&PlainState{Node: n},
			&PlainState{Node: done},
		},
		Props: Properties{Forward: true, Encoding: input.UTF8},
	})

	for _, tt := range []struct {
		input string
		want  int
	}{
		{"k", 1},
		{"é", 2},
		{"€", NoMatch},
		{"K", NoMatch},
	} {
		if got := end(t, e, tt.input, 0, 0); got != tt.want {
			t.Errorf("Match(%q) = %d, want %d", tt.input, got, tt.want)
		}
	}
}

func TestSuccessors(t *testing.T) {
	a := lookBehind()
	tests := []struct {
		state int
		want  []int
	}{
		{0, []int{1, 1}},
		{1, []int{2}},
		{3, nil},
	}
	for _, tt := range tests {
		if diff := cmp.Diff(tt.want, a.States[tt.state].Successors()); diff != "" {
			t.Errorf("state %d successors mismatch (-want +got):\n%s", tt.state, diff)
		}
	}

	lit := &InnerLiteralState{Node: NewNode(1), Literal: input.NewLiteral("x"), Next: 2}
	if diff := cmp.Diff([]int{2}, lit.Successors()); diff != "" {
		t.Errorf("inner literal successors mismatch (-want +got):\n%s", diff)
	}
	if lit.HasLoopToSelf() {
		t.Error("inner literal state has a self-loop")
	}
}
