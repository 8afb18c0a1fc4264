package executor

import (
	"time"

	"go.uber.org/zap"
)

// Stats is a point-in-time view of the executor
type Stats struct {
	ActiveCount       int
	MaxConcurrent     int
	AvailableSlots    int
	DefaultTimeout    time.Duration
	MaxArgumentLength int
	MaxArguments      int
}

// Stats reads the current configuration and occupancy. Safe to call concurrently with Execute.
func (e *Executor) Stats() Stats {
	return Stats{
		ActiveCount:       e.active.len(),
		MaxConcurrent:     cap(e.gate),
		AvailableSlots:    cap(e.gate) - len(e.gate),
		DefaultTimeout:    e.config.DefaultTimeout,
		MaxArgumentLength: e.config.MaxArgLength,
		MaxArguments:      e.config.MaxArgs,
	}
}

// Shutdown waits up to timeout for the processes currently in flight to
// finish, then kills whatever is left. New calls to Execute are not blocked.
func (e *Executor) Shutdown(timeout time.Duration) {
	handles := e.active.snapshot()
	if len(handles) == 0 {
		e.logger.Info("executor shutdown: no active processes")
		return
	}

	e.logger.Info("executor shutdown: waiting for active processes",
		zap.Int("count", len(handles)),
		zap.Duration("timeout", timeout))

	deadline := time.NewTimer(timeout)
	defer deadline.Stop()

wait:
	for _, h := range handles {
		select {
		case <-h.done:
		case <-deadline.C:
			break wait
		}
	}

	killed := 0
	for _, h := range handles {
		if h.finished() {
			continue
		}
		killed++
		if err := h.kill(); err != nil {
			e.logger.Warn("executor shutdown: failed to kill process",
				zap.String("command", h.command),
				zap.Int("pid", h.proc.Pid()),
				zap.Error(err))
		}
	}

	if killed > 0 {
		e.logger.Warn("executor shutdown: killed remaining processes", zap.Int("count", killed))
		return
	}
	e.logger.Info("executor shutdown: all processes finished")
}
