package executor

import "time"

// Outcome labels how an Execute call ended
type Outcome string

const (
	OutcomeSuccess         Outcome = "success"
	OutcomeNonZeroExit     Outcome = "nonzero_exit"
	OutcomeTimeout         Outcome = "timeout"
	OutcomeInvalidArgument Outcome = "invalid_argument"
	OutcomeFailure         Outcome = "failure"
)

// Observer receives executor telemetry. Implementations must be safe for concurrent use.
type Observer interface {
	CommandCompleted(outcome Outcome, elapsed time.Duration)
	ProcessesChanged(active, available int)
}

type noopObserver struct{}

func (noopObserver) CommandCompleted(Outcome, time.Duration) {}

func (noopObserver) ProcessesChanged(int, int) {}
