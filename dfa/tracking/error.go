package tracking

import "fmt"

// Error types for tracking DFA operations

// ErrUnsupportedPattern indicates that an automaton exceeds a resource limit:
// too many states or transitions, counter trackers above the memory ceiling,
// or counter operations no tracker can represent.
//
// It is always reported by New, never during a search.
var ErrUnsupportedPattern = &Error{
	Kind:    UnsupportedPattern,
	Message: "pattern not supported by the tracking DFA",
}

// ErrInvalidAutomaton indicates malformed automaton tables.
// This is a defect in whatever produced the automaton.
var ErrInvalidAutomaton = &Error{
	Kind:    InvalidAutomaton,
	Message: "invalid tracking DFA automaton",
}

// ErrInvalidArgument indicates inconsistent search bounds or a search entry
// point that does not fit the automaton's capture mode.
var ErrInvalidArgument = &Error{
	Kind:    InvalidArgument,
	Message: "invalid search argument",
}

// ErrInterrupted indicates that the search context was cancelled.
// The context error is available through errors.Unwrap.
var ErrInterrupted = &Error{
	Kind:    Interrupted,
	Message: "search interrupted",
}

// ErrInvalidConfig indicates that the provided configuration is invalid.
var ErrInvalidConfig = &Error{
	Kind:    InvalidConfig,
	Message: "invalid tracking DFA configuration",
}

// ErrorKind classifies tracking DFA errors into categories
type ErrorKind uint8

const (
	// UnsupportedPattern indicates a resource limit was exceeded
	UnsupportedPattern ErrorKind = iota

	// InvalidAutomaton indicates malformed automaton tables
	InvalidAutomaton

	// InvalidArgument indicates inconsistent call arguments
	InvalidArgument

	// Interrupted indicates the search was cancelled
	Interrupted

	// InvalidConfig indicates configuration validation failed
	InvalidConfig

	// Internal indicates a broken internal invariant.
	// Errors of this kind are raised with panic, never returned.
	Internal
)

// String returns a human-readable error kind name
func (k ErrorKind) String() string {
	switch k {
	case UnsupportedPattern:
		return "UnsupportedPattern"
	case InvalidAutomaton:
		return "InvalidAutomaton"
	case InvalidArgument:
		return "InvalidArgument"
	case Interrupted:
		return "Interrupted"
	case InvalidConfig:
		return "InvalidConfig"
	case Internal:
		return "Internal"
	default:
		return fmt.Sprintf("UnknownErrorKind(%d)", k)
	}
}

// Error represents an error that occurred during tracking DFA operations
type Error struct {
	Kind    ErrorKind
	Message string
	Cause   error // Optional underlying error
}

// Error implements the error interface
func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

// Unwrap returns the underlying error (for errors.Is/As)
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is implements error comparison for errors.Is
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Kind == t.Kind
}

func invalidf(format string, args ...any) error {
	return &Error{Kind: InvalidAutomaton, Message: fmt.Sprintf(format, args...)}
}

func unsupportedf(cause error, format string, args ...any) error {
	return &Error{Kind: UnsupportedPattern, Message: fmt.Sprintf(format, args...), Cause: cause}
}

func argumentf(format string, args ...any) error {
	return &Error{Kind: InvalidArgument, Message: fmt.Sprintf(format, args...)}
}

// internalf panics with an Internal error. A broken invariant must never be
// turned into a wrong search result.
func internalf(format string, args ...any) {
	panic(&Error{Kind: Internal, Message: fmt.Sprintf(format, args...)})
}
