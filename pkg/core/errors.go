package core

import (
	"errors"
	"fmt"
	"time"

	"github.com/jdziat/packaging-lines/pkg/security"
)

// Chain errors
var (
	ErrInconsistentChain   = errors.New("lines: inconsistent chain state")
	ErrMissingLineContext  = errors.New("lines: line has no start time")
	ErrDurationComputation = errors.New("lines: duration computation failed")
	ErrNilJob              = errors.New("lines: nil job")
	ErrNilProduct          = errors.New("lines: job has no product")
	ErrJobAssigned         = errors.New("lines: job is assigned to another line")
	ErrNegativeDuration    = errors.New("lines: negative duration")
)

// Validation errors
var (
	ErrInvalidID       = security.ErrInvalidID
	ErrIDTooLong       = security.ErrIDTooLong
	ErrInvalidQuantity = security.ErrInvalidQuantity
	ErrDuplicateID     = errors.New("lines: duplicate identifier")
)

// ChainError reports a malformed chain segment found while propagating.
// It unwraps to ErrInconsistentChain or ErrMissingLineContext.
type ChainError struct {
	JobID  string
	LineID string
	Reason string
	Err    error
}

func (e *ChainError) Error() string {
	if e.JobID == "" {
		return fmt.Sprintf("%v: line %s: %s", e.Err, e.LineID, e.Reason)
	}
	return fmt.Sprintf("%v: job %s: %s", e.Err, e.JobID, e.Reason)
}

func (e *ChainError) Unwrap() error {
	return e.Err
}

func inconsistent(job *Job, format string, args ...any) error {
	return &ChainError{JobID: job.id, LineID: lineID(job.line), Reason: fmt.Sprintf(format, args...), Err: ErrInconsistentChain}
}

// DurationError reports a job whose production duration could not be determined.
// It unwraps to both ErrDurationComputation and the calculator's error, if any.
type DurationError struct {
	JobID    string
	Duration time.Duration
	Err      error
}

func (e *DurationError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%v: job %s: %v", ErrDurationComputation, e.JobID, e.Err)
	}
	return fmt.Sprintf("%v: job %s: invalid duration %v", ErrDurationComputation, e.JobID, e.Duration)
}

func (e *DurationError) Unwrap() []error {
	if e.Err == nil {
		return []error{ErrDurationComputation}
	}
	return []error{ErrDurationComputation, e.Err}
}

func lineID(l *Line) string {
	if l == nil {
		return ""
	}
	return l.id
}
