package mir

import (
	"fmt"

	"github.com/pkg/errors"
)

// ErrorKind is the closed taxonomy of user-triggerable lowering failures
// (§7). Anything outside this set that the lowerer discovers about its own
// internal state (a nil HIR child slot a parser with a real grammar could
// never have produced, a switch default over a case analysis that was
// supposed to be exhaustive) is an invariant violation and panics instead
// of returning a LowerError - panicking is reserved for conditions that
// indicate a bug in this package, not in the program being lowered.
type ErrorKind string

const (
	KindSigInvariantError   ErrorKind = "SigInvariantError"
	KindDuplicateCallable   ErrorKind = "DuplicateCallable"
	KindUnsupportedPattern  ErrorKind = "UnsupportedPattern"
	KindTypeMismatch        ErrorKind = "TypeMismatch"
	KindMissingValue        ErrorKind = "MissingValue"
	KindInvalidReturn       ErrorKind = "InvalidReturn"
	KindUnresolvedTarget    ErrorKind = "UnresolvedTarget"
	KindInvariantViolation  ErrorKind = "InvariantViolation"
	KindNotImplemented      ErrorKind = "NotImplemented"
)

// LowerError is the single concrete error type every exported entry point
// in this package returns. Function/Block/StmtIndex pin the error to the
// exact point of failure for test assertions (P9) without requiring full
// source spans, which this subsystem never carries (§7, §9 non-goals).
type LowerError struct {
	Kind       ErrorKind
	Detail     string
	Function   string
	Block      *BasicBlockId
	StmtIndex  *int
}

func (e *LowerError) Error() string {
	loc := e.Function
	if e.Block != nil {
		loc = fmt.Sprintf("%s/bb%d", loc, *e.Block)
	}
	if e.StmtIndex != nil {
		loc = fmt.Sprintf("%s#%d", loc, *e.StmtIndex)
	}
	if loc == "" {
		return fmt.Sprintf("%s: %s", e.Kind, e.Detail)
	}
	return fmt.Sprintf("%s: %s (%s)", e.Kind, e.Detail, loc)
}

func newError(kind ErrorKind, fn string, detail string) error {
	return errors.WithStack(&LowerError{Kind: kind, Function: fn, Detail: detail})
}

func newErrorf(kind ErrorKind, fn string, format string, args ...any) error {
	return newError(kind, fn, fmt.Sprintf(format, args...))
}

// wrapStage attaches which pipeline stage produced an error, the way the
// teacher's own fmt.Errorf("failed to lower function %s: %w", ...) chains
// a frame onto an inner cause, except routed through pkg/errors so the
// original *LowerError survives errors.Cause/errors.As unwrapping.
func wrapStage(stage string, err error) error {
	if err == nil {
		return nil
	}
	return errors.WithMessage(err, stage)
}
