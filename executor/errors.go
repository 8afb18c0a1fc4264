package executor

import (
	"errors"
	"fmt"
	"time"
)

// Kind classifies executor failures
type Kind int

const (
	KindInvalidArgument Kind = iota + 1
	KindTimeout
	KindExecutionFailure
)

func (k Kind) String() string {
	switch k {
	case KindInvalidArgument:
		return "invalid_argument"
	case KindTimeout:
		return "timeout"
	case KindExecutionFailure:
		return "execution_failure"
	default:
		return "unknown"
	}
}

// Sentinel errors for errors.Is matching against *Error
var (
	ErrInvalidArgument  = errors.New("invalid argument")
	ErrTimeout          = errors.New("command timed out")
	ErrExecutionFailure = errors.New("command execution failed")
)

// Error is returned by Executor.Execute for every failure path.
// Command is empty for validation failures.
type Error struct {
	Kind    Kind
	Command string
	Elapsed time.Duration
	Timeout time.Duration
	Err     error
}

func (e *Error) Error() string {
	switch e.Kind {
	case KindInvalidArgument:
		return fmt.Sprintf("%s: %v", ErrInvalidArgument, e.Err)
	case KindTimeout:
		return fmt.Sprintf("%s after %.3fs (timeout %s): %s", ErrTimeout, e.Elapsed.Seconds(), e.Timeout, e.Command)
	default:
		if e.Command == "" {
			return fmt.Sprintf("%s: %v", ErrExecutionFailure, e.Err)
		}
		return fmt.Sprintf("%s after %.3fs: %s: %v", ErrExecutionFailure, e.Elapsed.Seconds(), e.Command, e.Err)
	}
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is reports whether target is the sentinel matching e.Kind
func (e *Error) Is(target error) bool {
	switch target {
	case ErrInvalidArgument:
		return e.Kind == KindInvalidArgument
	case ErrTimeout:
		return e.Kind == KindTimeout
	case ErrExecutionFailure:
		return e.Kind == KindExecutionFailure
	}
	return false
}

func invalidArgument(err error) *Error {
	return &Error{Kind: KindInvalidArgument, Err: err}
}
