// Package tdfa runs compiled tracking DFAs: deterministic automata that count
// bounded repetitions such as a{3,7} with counter trackers instead of
// unrolling them, and that track capture groups without backtracking.
//
// Automata are produced by a generator (see internal/pattern for a few
// hand-built shapes) and compiled once:
//
//	a, _ := pattern.Repeat(matcher.Char('a'), 2, 4, input.UTF8)
//	re := tdfa.MustCompile(a)
//	start, end := re.FindFrom(input.UTF8Input("aaaaa"), 0) // 0, 4
//
// A Regex is safe for concurrent use. Per-call scratch data is pooled.
package tdfa

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"

	"github.com/coregx/tdfa/dfa/tracking"
	"github.com/coregx/tdfa/input"
)

// Regex is a compiled tracking DFA.
//
// A Regex is safe to use concurrently from multiple goroutines, except for
// ResetStats.
type Regex struct {
	// stats is first to keep its uint64 fields 64-bit aligned for atomic
	// operations on 32-bit platforms.
	stats Stats

	exec   *tracking.Executor
	locals sync.Pool
}

// Stats counts searches and executor events.
type Stats struct {
	// Searches counts position searches (Match, FindFrom and friends)
	Searches uint64

	// CaptureSearches counts capture-group searches
	CaptureSearches uint64

	// Matches counts searches that found a match
	Matches uint64

	// Steps counts driver loop iterations
	Steps uint64

	// FastForwards counts self-loop scans that skipped input
	FastForwards uint64

	// LiteralCandidates counts literal occurrences examined by inner-literal states
	LiteralCandidates uint64

	// FindStartRuns counts backward searches for a match start
	FindStartRuns uint64

	// Interrupted counts searches cancelled through their context
	Interrupted uint64
}

// Compile validates an automaton and prepares it for searching with the
// default configuration.
func Compile(a *tracking.Automaton) (*Regex, error) {
	return CompileWithConfig(a, tracking.DefaultConfig())
}

// CompileWithConfig is Compile with a custom configuration.
//
// Example:
//
//	cfg := tracking.DefaultConfig().WithMaxCounterMemory(1 << 20)
//	re, err := tdfa.CompileWithConfig(a, cfg)
func CompileWithConfig(a *tracking.Automaton, cfg tracking.Config) (*Regex, error) {
	exec, err := tracking.New(a, cfg)
	if err != nil {
		return nil, err
	}
	r := &Regex{exec: exec}
	r.locals.New = func() any { return exec.NewLocals() }
	return r, nil
}

// MustCompile is like Compile but panics if the automaton is rejected.
func MustCompile(a *tracking.Automaton) *Regex {
	r, err := Compile(a)
	if err != nil {
		panic("tdfa: Compile: " + err.Error())
	}
	return r
}

// Executor returns the underlying executor.
func (r *Regex) Executor() *tracking.Executor { return r.exec }

// Match reports whether the input contains a match starting at 0 (anchored
// automata) or anywhere (searching automata).
func (r *Regex) Match(in input.Input) bool {
	_, end := r.FindFrom(in, 0)
	return end >= 0
}

// MatchString is Match on a UTF-8 string. The automaton must be built for
// UTF-8.
func (r *Regex) MatchString(s string) bool {
	return r.Match(input.UTF8Input(s))
}

// MatchContext is Match with cooperative cancellation.
func (r *Regex) MatchContext(ctx context.Context, in input.Input) (bool, error) {
	_, end, err := r.FindFromContext(ctx, in, 0)
	return end >= 0, err
}

// FindFrom returns the bounds of the match found from index from, or
// (-1, -1). The start is from for anchored automata and -1 for searching
// automata without a find-start automaton. Backward automata read from the
// match end, so for them from is the returned end.
//
// FindFrom panics if from is outside [0, in.Len()] or the automaton tracks
// capture groups.
func (r *Regex) FindFrom(in input.Input, from int) (start, end int) {
	start, end, err := r.FindFromContext(context.Background(), in, from)
	if err != nil {
		panic(err)
	}
	return start, end
}

// FindFromContext is FindFrom with cooperative cancellation. Invalid
// arguments are reported as errors.
func (r *Regex) FindFromContext(ctx context.Context, in input.Input, from int) (start, end int, err error) {
	v, err := r.match(ctx, in, from)
	if err != nil {
		return -1, -1, err
	}
	end = tracking.End(v)
	if end == tracking.NoMatch {
		return -1, -1, nil
	}
	switch {
	case !r.exec.Automaton().Props.Forward:
		// A backward automaton reads from the match end and reports its start.
		return end, from, nil
	case r.exec.FindsStart():
		start = tracking.Start(v)
	case r.exec.Automaton().Props.Searching:
		start = -1
	default:
		start = from
	}
	return start, end, nil
}

// ResultID returns the result id reported by a trace-finder automaton, or -1.
func (r *Regex) ResultID(ctx context.Context, in input.Input, from int) (int, error) {
	v, err := r.match(ctx, in, from)
	if err != nil {
		return -1, err
	}
	if id := tracking.End(v); id != tracking.NoMatch {
		return id, nil
	}
	return -1, nil
}

func (r *Regex) match(ctx context.Context, in input.Input, from int) (uint64, error) {
	atomic.AddUint64(&r.stats.Searches, 1)
	l := r.get()
	defer r.put(l)
	v, err := r.exec.Match(ctx, l, in, from, 0, inputLen(in))
	if err != nil {
		r.count(err)
		return v, err
	}
	if tracking.End(v) != tracking.NoMatch {
		atomic.AddUint64(&r.stats.Matches, 1)
	}
	return v, nil
}

// Captures returns the capture-group bounds of the match found from index
// from: start and end of each group, -1 for groups that did not
// participate, followed by the last matched group if tracked. It returns nil
// if there is no match.
//
// Captures panics if from is outside [0, in.Len()] or the automaton does not
// track capture groups.
func (r *Regex) Captures(in input.Input, from int) []int {
	caps, err := r.CapturesContext(context.Background(), in, from)
	if err != nil {
		panic(err)
	}
	return caps
}

// CapturesContext is Captures with cooperative cancellation. Invalid
// arguments are reported as errors.
func (r *Regex) CapturesContext(ctx context.Context, in input.Input, from int) ([]int, error) {
	atomic.AddUint64(&r.stats.CaptureSearches, 1)
	l := r.get()
	defer r.put(l)
	caps, err := r.exec.Captures(ctx, l, in, from, 0, inputLen(in))
	if err != nil {
		r.count(err)
		return nil, err
	}
	if caps != nil {
		atomic.AddUint64(&r.stats.Matches, 1)
	}
	return caps, nil
}

// FindAllIndex returns the bounds of successive non-overlapping matches, at
// most n of them (all if n < 0). Anchored automata are tried at every
// position; searching automata continue after each match. Searching automata
// without a find-start automaton report -1 as start.
func (r *Regex) FindAllIndex(in input.Input, n int) [][]int {
	var out [][]int
	searching := r.exec.Automaton().Props.Searching
	for pos := 0; pos <= in.Len() && (n < 0 || len(out) < n); {
		start, end := r.FindFrom(in, pos)
		if end < 0 {
			if searching || pos == in.Len() {
				break
			}
			_, pos = in.Read(pos)
			continue
		}
		out = append(out, []int{start, end})
		switch {
		case end > pos:
			pos = end
		case pos < in.Len():
			_, pos = in.Read(pos)
		default:
			return out
		}
	}
	return out
}

// Stats returns execution statistics.
//
// Example:
//
//	stats := re.Stats()
//	println("fast-forwards:", stats.FastForwards)
func (r *Regex) Stats() Stats {
	return Stats{
		Searches:          atomic.LoadUint64(&r.stats.Searches),
		CaptureSearches:   atomic.LoadUint64(&r.stats.CaptureSearches),
		Matches:           atomic.LoadUint64(&r.stats.Matches),
		Steps:             atomic.LoadUint64(&r.stats.Steps),
		FastForwards:      atomic.LoadUint64(&r.stats.FastForwards),
		LiteralCandidates: atomic.LoadUint64(&r.stats.LiteralCandidates),
		FindStartRuns:     atomic.LoadUint64(&r.stats.FindStartRuns),
		Interrupted:       atomic.LoadUint64(&r.stats.Interrupted),
	}
}

// ResetStats resets execution statistics to zero.
// It must not run concurrently with searches.
func (r *Regex) ResetStats() {
	r.stats = Stats{}
}

func (r *Regex) get() *tracking.Locals {
	return r.locals.Get().(*tracking.Locals)
}

// put folds the executor counters of l into the regex stats and returns l
// to the pool.
func (r *Regex) put(l *tracking.Locals) {
	s := l.Stats()
	l.ResetStats()
	atomic.AddUint64(&r.stats.Steps, s.Steps)
	atomic.AddUint64(&r.stats.FastForwards, s.FastForwards)
	atomic.AddUint64(&r.stats.LiteralCandidates, s.LiteralCandidates)
	atomic.AddUint64(&r.stats.FindStartRuns, s.FindStartRuns)
	r.locals.Put(l)
}

func (r *Regex) count(err error) {
	if errors.Is(err, tracking.ErrInterrupted) {
		atomic.AddUint64(&r.stats.Interrupted, 1)
	}
}

func inputLen(in input.Input) int {
	if in == nil {
		return 0
	}
	return in.Len()
}
