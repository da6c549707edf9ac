// Command boundgrep prints the lines of files holding bounded repetitions of
// a character class, such as 3 to 5 digits, optionally followed by a
// terminator character or a literal.
package main

import (
	"errors"
	"fmt"
	"io/fs"
	"log"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/alecthomas/kong"
	"github.com/fatih/color"

	"github.com/coregx/tdfa"
	"github.com/coregx/tdfa/dfa/tracking"
	"github.com/coregx/tdfa/input"
	"github.com/coregx/tdfa/internal/pattern"
	"github.com/coregx/tdfa/matcher"
)

var (
	matchColor = color.New(color.FgRed)
	groupColor = color.New(color.FgGreen)
)

var cli struct {
	Class   string   `arg:"" name:"class" help:"Character class to repeat, e.g. 0-9 or ^a-z"`
	Paths   []string `arg:"" optional:"" name:"path" help:"Paths to search" type:"path"`
	Min     int      `short:"m" default:"1" help:"Minimum number of repetitions"`
	Max     int      `short:"M" default:"-1" help:"Maximum number of repetitions, -1 for unbounded"`
	Then    string   `short:"t" help:"Character that must follow the repetition"`
	Literal string   `short:"l" help:"Literal that must follow the repetition"`
	Capture bool     `short:"c" help:"Highlight the repetition as a capture group (requires --then, ignores --max)"`
	Stats   bool     `help:"Print search statistics to stderr"`
}

// searcher finds the matches of one line as [start, end] pairs, optionally
// followed by the bounds of the capture group.
type searcher func(line input.UTF8Input) [][]int

func main() {
	kong.Parse(&cli,
		kong.Name("boundgrep"),
		kong.Description("Recursively searches for lines holding bounded repetitions of a character class."),
		kong.UsageOnError(),
	)

	re, err := compile()
	if err != nil {
		log.Fatalf("failed to build automaton: %v", err)
	}
	search := newSearcher(re)

	if len(cli.Paths) == 0 {
		cli.Paths = []string{"."}
	}
	for _, path := range cli.Paths {
		info, err := os.Lstat(path)
		if err != nil {
			log.Fatalf("%s: %v", path, err)
		}
		if info.IsDir() {
			err = searchDir(path, search)
		} else {
			err = searchFile(path, search)
		}
		if err != nil {
			log.Fatalf("%v", err)
		}
	}

	if cli.Stats {
		s := re.Stats()
		fmt.Fprintf(os.Stderr, "searches=%d captures=%d matches=%d steps=%d fast-forwards=%d literal-candidates=%d find-start-runs=%d\n",
			s.Searches, s.CaptureSearches, s.Matches, s.Steps, s.FastForwards, s.LiteralCandidates, s.FindStartRuns)
	}
}

func compile() (*tdfa.Regex, error) {
	set, err := parseClass(cli.Class)
	if err != nil {
		return nil, err
	}
	then, err := thenMatcher()
	if err != nil {
		return nil, err
	}

	var a *tracking.Automaton
	switch {
	case cli.Capture:
		if then == nil {
			return nil, errors.New("--capture requires --then")
		}
		a, err = pattern.GroupRepeatThen(set, then, cli.Min, tracking.CaptureSimple, input.UTF8)
	case cli.Literal != "":
		a, err = pattern.PrefixedLiteral(set, cli.Min, cli.Max, cli.Literal, input.UTF8)
	case then != nil:
		a, err = pattern.SearchRepeatThen(set, then, cli.Min, cli.Max, input.UTF8)
	default:
		a, err = pattern.Repeat(set, cli.Min, cli.Max, input.UTF8)
	}
	if err != nil {
		return nil, err
	}
	return tdfa.Compile(a)
}

func thenMatcher() (matcher.Matcher, error) {
	if cli.Then == "" {
		return nil, nil
	}
	r, n := utf8.DecodeRuneInString(cli.Then)
	if n != len(cli.Then) {
		return nil, fmt.Errorf("--then must be a single character, got %q", cli.Then)
	}
	return matcher.Char(r), nil
}

func newSearcher(re *tdfa.Regex) searcher {
	if cli.Capture {
		return func(line input.UTF8Input) [][]int {
			var out [][]int
			for pos := 0; pos < len(line); {
				caps := re.Captures(line, pos)
				if caps == nil {
					_, pos = line.Read(pos)
					continue
				}
				out = append(out, caps[:4])
				pos = caps[1]
			}
			return out
		}
	}
	return func(line input.UTF8Input) [][]int {
		var out [][]int
		for _, m := range re.FindAllIndex(line, -1) {
			// Empty matches and matches without a known start are not shown.
			if m[0] >= 0 && m[1] > m[0] {
				out = append(out, m)
			}
		}
		return out
	}
}

func searchDir(root string, search searcher) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return nil
			}
			return err
		}
		if !d.Type().IsRegular() {
			return nil
		}
		return searchFile(path, search)
	})
}

func searchFile(path string, search searcher) error {
	content, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	printedHeader := false
	for i, line := range strings.Split(string(content), "\n") {
		matches := search(input.UTF8Input(line))
		if len(matches) == 0 {
			continue
		}
		if !printedHeader {
			printedHeader = true
			fmt.Println(path, ":")
		}
		fmt.Printf("%d:%s\n", i+1, highlight(line, matches))
	}
	if printedHeader {
		fmt.Println()
	}
	return nil
}

// highlight colors the matches of line. A match carrying group bounds has
// its group colored separately.
func highlight(line string, matches [][]int) string {
	var out strings.Builder
	last := 0
	for _, m := range matches {
		out.WriteString(line[last:m[0]])
		if len(m) >= 4 && m[2] >= 0 {
			matchColor.Fprint(&out, line[m[0]:m[2]])
			groupColor.Fprint(&out, line[m[2]:m[3]])
			matchColor.Fprint(&out, line[m[3]:m[1]])
		} else {
			matchColor.Fprint(&out, line[m[0]:m[1]])
		}
		last = m[1]
	}
	out.WriteString(line[last:])
	return out.String()
}
