package generator

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrImpossibleForSolver means every attempt ended stuck or timed out.
	ErrImpossibleForSolver = errors.New("generator: no attempt produced a layout the solver could complete")
	// ErrCancelled means the caller's context was cancelled.
	ErrCancelled = errors.New("generator: cancelled")
	// ErrTimeout means the overall generation timeout elapsed, or the last
	// attempt's final validation ran out of resolver time.
	ErrTimeout = errors.New("generator: timed out")
	// ErrInvalidConfiguration means the input was rejected before any search.
	ErrInvalidConfiguration = errors.New("generator: invalid configuration")
)

// AttemptOutcome is the result of one placement attempt.
type AttemptOutcome int

const (
	OutcomeSuccess AttemptOutcome = iota
	OutcomeStuck
	OutcomeTimedOut
)

func (o AttemptOutcome) String() string {
	switch o {
	case OutcomeSuccess:
		return "success"
	case OutcomeStuck:
		return "stuck"
	case OutcomeTimedOut:
		return "timed out"
	default:
		return "unknown"
	}
}

// GenerationError is the error returned by Generate. Kind is one of the
// package sentinels and is matched by errors.Is.
type GenerationError struct {
	Kind error
	// Attempts counts the attempts actually run.
	Attempts int
	// Layout is the last unsolvable layout, for ImpossibleForSolver and for
	// a Timeout caused by the resolver budget.
	Layout *LayoutDescription
	// Problems lists what was wrong, for InvalidConfiguration.
	Problems []string
	// Err is an underlying cause, if any.
	Err error
}

func (e *GenerationError) Error() string {
	var b strings.Builder
	b.WriteString(e.Kind.Error())
	if e.Attempts > 0 {
		fmt.Fprintf(&b, " after %d attempt(s)", e.Attempts)
	}
	if len(e.Problems) > 0 {
		b.WriteString(": ")
		b.WriteString(strings.Join(e.Problems, "; "))
	}
	if e.Err != nil {
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	}
	return b.String()
}

// Is matches the sentinel kind.
func (e *GenerationError) Is(target error) bool {
	return target == e.Kind
}

func (e *GenerationError) Unwrap() error {
	return e.Err
}

func invalidConfiguration(problems []string, err error) *GenerationError {
	return &GenerationError{Kind: ErrInvalidConfiguration, Problems: problems, Err: err}
}
