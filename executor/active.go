package executor

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// handle tracks one in-flight process from spawn until its executor call returns
type handle struct {
	id      uuid.UUID
	proc    Process
	command string
	started time.Time

	// done is closed once Wait has returned; out and err are valid afterwards
	done     chan struct{}
	out      Output
	err      error
	killOnce sync.Once
	killErr  error
}

func newHandle(proc Process, command string, started time.Time) *handle {
	return &handle{
		id:      uuid.New(),
		proc:    proc,
		command: command,
		started: started,
		done:    make(chan struct{}),
	}
}

// wait collects the process result and closes done
func (h *handle) wait() {
	h.out, h.err = h.proc.Wait()
	close(h.done)
}

func (h *handle) finished() bool {
	select {
	case <-h.done:
		return true
	default:
		return false
	}
}

// kill is safe to call from both the timeout path and shutdown
func (h *handle) kill() error {
	h.killOnce.Do(func() {
		h.killErr = h.proc.Kill()
	})
	return h.killErr
}

// activeSet is the registry of in-flight process handles
type activeSet struct {
	mu      sync.Mutex
	handles map[uuid.UUID]*handle
}

func newActiveSet() *activeSet {
	return &activeSet{handles: make(map[uuid.UUID]*handle)}
}

func (s *activeSet) add(h *handle) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.handles[h.id] = h
	return len(s.handles)
}

func (s *activeSet) remove(h *handle) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.handles, h.id)
	return len(s.handles)
}

func (s *activeSet) len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.handles)
}

func (s *activeSet) snapshot() []*handle {
	s.mu.Lock()
	defer s.mu.Unlock()
	handles := make([]*handle, 0, len(s.handles))
	for _, h := range s.handles {
		handles = append(handles, h)
	}
	return handles
}
