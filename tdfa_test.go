package tdfa

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"

	"github.com/coregx/tdfa/dfa/tracking"
	"github.com/coregx/tdfa/input"
	"github.com/coregx/tdfa/internal/pattern"
	"github.com/coregx/tdfa/matcher"
)

func mustRegex(t *testing.T, a *tracking.Automaton, err error) *Regex {
	t.Helper()
	require.NoError(t, err)
	re, err := Compile(a)
	require.NoError(t, err)
	return re
}

func TestFindFrom(t *testing.T) {
	a, err := pattern.Repeat(matcher.Char('a'), 2, 4, input.UTF8)
	bounded := mustRegex(t, a, err)
	a, err = pattern.SearchRepeatThen(matcher.Char('a'), matcher.Char('b'), 2, 3, input.UTF8)
	search := mustRegex(t, a, err)

	tests := []struct {
		name       string
		re         *Regex
		input      string
		from       int
		start, end int
	}{
		{"anchored", bounded, "aaaaa", 0, 0, 4},
		{"anchored from", bounded, "baaa", 1, 1, 4},
		{"anchored too short", bounded, "ab", 0, -1, -1},
		{"search", search, "aaaab", 0, 1, 5},
		{"search from", search, "aab aaab", 1, 4, 8},
		{"search none", search, "abab", 0, -1, -1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			start, end := tt.re.FindFrom(input.UTF8Input(tt.input), tt.from)
			if start != tt.start || end != tt.end {
				t.Errorf("FindFrom(%q, %d) = (%d, %d), want (%d, %d)", tt.input, tt.from, start, end, tt.start, tt.end)
			}
		})
	}
}

func TestMatchString(t *testing.T) {
	a, err := pattern.Repeat(matcher.Char('a'), 2, 4, input.UTF8)
	re := mustRegex(t, a, err)
	tests := []struct {
		input string
		want  bool
	}{
		{"aa", true},
		{"aaaaaa", true},
		{"a", false},
		{"", false},
		{"baa", false},
	}
	for _, tt := range tests {
		if got := re.MatchString(tt.input); got != tt.want {
			t.Errorf("MatchString(%q) = %v, want %v", tt.input, got, tt.want)
		}
	}
}

func TestFindAllIndex(t *testing.T) {
	a, err := pattern.Repeat(matcher.Char('a'), 2, 4, input.UTF8)
	anchored := mustRegex(t, a, err)
	a, err = pattern.SearchRepeatThen(matcher.Char('a'), matcher.Char('b'), 2, 3, input.UTF8)
	search := mustRegex(t, a, err)

	tests := []struct {
		name  string
		re    *Regex
		input string
		n     int
		want  [][]int
	}{
		{"anchored", anchored, "aa b aaa", -1, [][]int{{0, 2}, {5, 8}}},
		{"anchored longest", anchored, "aaaaa", -1, [][]int{{0, 4}}},
		{"anchored limit", anchored, "aa b aaa", 1, [][]int{{0, 2}}},
		{"anchored none", anchored, "a b a", -1, nil},
		{"search", search, "aab aaab xab", -1, [][]int{{0, 3}, {4, 8}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.re.FindAllIndex(input.UTF8Input(tt.input), tt.n)
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("FindAllIndex(%q, %d) mismatch (-want +got):\n%s", tt.input, tt.n, diff)
			}
		})
	}
}

func TestCaptures(t *testing.T) {
	for _, mode := range []tracking.CaptureMode{tracking.CaptureSimple, tracking.CaptureGeneric} {
		t.Run(mode.String(), func(t *testing.T) {
			a, err := pattern.GroupRepeatThen(matcher.Char('a'), matcher.Char('b'), 1, mode, input.UTF8)
			re := mustRegex(t, a, err)
			if diff := cmp.Diff([]int{0, 4, 0, 3}, re.Captures(input.UTF8Input("aaab"), 0)); diff != "" {
				t.Errorf("Captures(aaab) mismatch (-want +got):\n%s", diff)
			}
			if got := re.Captures(input.UTF8Input("aaa"), 0); got != nil {
				t.Errorf("Captures(aaa) = %v, want nil", got)
			}
		})
	}
}

func TestStats(t *testing.T) {
	a, err := pattern.Repeat(matcher.Char('a'), 1, -1, input.UTF8)
	re := mustRegex(t, a, err)
	re.MatchString("aaaaaaaa")
	re.MatchString("b")

	stats := re.Stats()
	if stats.Searches != 2 {
		t.Errorf("Searches = %d, want 2", stats.Searches)
	}
	if stats.Matches != 1 {
		t.Errorf("Matches = %d, want 1", stats.Matches)
	}
	if stats.FastForwards == 0 {
		t.Error("FastForwards = 0, want > 0")
	}
	if stats.Steps == 0 {
		t.Error("Steps = 0, want > 0")
	}

	re.ResetStats()
	if diff := cmp.Diff(Stats{}, re.Stats()); diff != "" {
		t.Errorf("Stats() after ResetStats mismatch (-want +got):\n%s", diff)
	}
}

func TestLiteralStats(t *testing.T) {
	a, err := pattern.PrefixedLiteral(matcher.Range{Lo: '0', Hi: '9'}, 2, 3, "-id", input.UTF8)
	re := mustRegex(t, a, err)
	start, end := re.FindFrom(input.UTF8Input("x1-id 123-id"), 0)
	if start != 6 || end != 12 {
		t.Errorf("FindFrom() = (%d, %d), want (6, 12)", start, end)
	}
	stats := re.Stats()
	if stats.LiteralCandidates != 2 {
		t.Errorf("LiteralCandidates = %d, want 2", stats.LiteralCandidates)
	}
	if stats.FindStartRuns != 1 {
		t.Errorf("FindStartRuns = %d, want 1", stats.FindStartRuns)
	}
}

func TestContextCancelled(t *testing.T) {
	a, err := pattern.Repeat(matcher.Char('a'), 1, 1000, input.UTF8)
	require.NoError(t, err)
	re, err := CompileWithConfig(a, tracking.DefaultConfig().WithInterruptCheckInterval(1))
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	ok, err := re.MatchContext(ctx, input.UTF8Input("aaaa"))
	if ok || !errors.Is(err, tracking.ErrInterrupted) {
		t.Errorf("MatchContext() = (%v, %v), want (false, ErrInterrupted)", ok, err)
	}
	if got := re.Stats().Interrupted; got != 1 {
		t.Errorf("Interrupted = %d, want 1", got)
	}
}

func TestInvalidUse(t *testing.T) {
	a, err := pattern.Repeat(matcher.Char('a'), 1, 2, input.UTF8)
	re := mustRegex(t, a, err)

	_, _, err = re.FindFromContext(context.Background(), input.UTF8Input("a"), 5)
	if !errors.Is(err, tracking.ErrInvalidArgument) {
		t.Errorf("FindFromContext(from 5) error = %v, want ErrInvalidArgument", err)
	}
	_, err = re.CapturesContext(context.Background(), input.UTF8Input("a"), 0)
	if !errors.Is(err, tracking.ErrInvalidArgument) {
		t.Errorf("CapturesContext() error = %v, want ErrInvalidArgument", err)
	}
	require.Panics(t, func() { re.FindFrom(input.UTF8Input("a"), -1) })
}

func TestCompileErrors(t *testing.T) {
	if _, err := Compile(nil); !errors.Is(err, tracking.ErrInvalidAutomaton) {
		t.Errorf("Compile(nil) error = %v, want ErrInvalidAutomaton", err)
	}
	a, err := pattern.Repeat(matcher.Char('a'), 1, 2, input.UTF8)
	require.NoError(t, err)
	if _, err := CompileWithConfig(a, tracking.DefaultConfig().WithMaxStates(0)); !errors.Is(err, tracking.ErrInvalidConfig) {
		t.Errorf("CompileWithConfig(MaxStates 0) error = %v, want ErrInvalidConfig", err)
	}
	require.Panics(t, func() { MustCompile(nil) })
}

func TestConcurrentSearches(t *testing.T) {
	a, err := pattern.SearchRepeatThen(matcher.Char('a'), matcher.Char('b'), 2, 3, input.UTF8)
	re := mustRegex(t, a, err)
	const goroutines = 8
	const iterations = 200

	var wg sync.WaitGroup
	errs := make(chan string, goroutines)
	for g := 0; g < goroutines; g++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < iterations; i++ {
				if start, end := re.FindFrom(input.UTF8Input("xx aaaab"), 0); start != 4 || end != 8 {
					errs <- "unexpected match bounds"
					return
				}
			}
		}()
	}
	wg.Wait()
	close(errs)
	for msg := range errs {
		t.Error(msg)
	}
	if got := re.Stats().Searches; got != goroutines*iterations {
		t.Errorf("Searches = %d, want %d", got, goroutines*iterations)
	}
}
