package executor

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
)

// Default executor settings
const (
	DefaultBinary        = "container"
	DefaultTimeout       = 300 * time.Second
	DefaultMaxConcurrent = 10
	DefaultKillGrace     = 5 * time.Second
)

// Config holds the executor limits
type Config struct {
	Binary         string
	DefaultTimeout time.Duration
	MaxConcurrent  int
	MaxArgLength   int
	MaxArgs        int
}

// DefaultConfig returns the documented defaults
func DefaultConfig() Config {
	return Config{
		Binary:         DefaultBinary,
		DefaultTimeout: DefaultTimeout,
		MaxConcurrent:  DefaultMaxConcurrent,
		MaxArgLength:   DefaultMaxArgLength,
		MaxArgs:        DefaultMaxArgs,
	}
}

// Request is one command invocation: the subcommand with its flags and values
type Request struct {
	Args []string
	// Timeout overrides the default timeout when positive
	Timeout time.Duration
}

// Executor is the only component that spawns external processes. It bounds
// concurrency, enforces timeouts and tracks in-flight processes so they can
// be drained on shutdown. It is safe for concurrent use.
type Executor struct {
	logger    *zap.Logger
	config    Config
	validator *Validator
	starter   Starter
	observer  Observer
	killGrace time.Duration

	gate   chan struct{}
	active *activeSet
}

// Option defines a functional option for Executor
type Option func(*Executor)

// WithStarter sets the Starter used to spawn processes
func WithStarter(starter Starter) Option {
	return func(e *Executor) {
		e.starter = starter
	}
}

// WithObserver sets the telemetry Observer
func WithObserver(observer Observer) Option {
	return func(e *Executor) {
		if observer != nil {
			e.observer = observer
		}
	}
}

// WithKillGrace sets how long a killed process is awaited before giving up
func WithKillGrace(d time.Duration) Option {
	return func(e *Executor) {
		e.killGrace = d
	}
}

// New creates an Executor. Zero or negative limits fall back to the defaults.
func New(logger *zap.Logger, config Config, opts ...Option) *Executor {
	if config.Binary == "" {
		config.Binary = DefaultBinary
	}
	if config.DefaultTimeout <= 0 {
		config.DefaultTimeout = DefaultTimeout
	}
	if config.MaxConcurrent <= 0 {
		config.MaxConcurrent = DefaultMaxConcurrent
	}

	validator := NewValidator(config.MaxArgLength, config.MaxArgs)
	config.MaxArgLength = validator.MaxLength()
	config.MaxArgs = validator.MaxArgs()

	executor := &Executor{
		logger:    logger,
		config:    config,
		validator: validator,
		starter:   ExecStarter{},
		observer:  noopObserver{},
		killGrace: DefaultKillGrace,
		gate:      make(chan struct{}, config.MaxConcurrent),
		active:    newActiveSet(),
	}

	for _, opt := range opts {
		opt(executor)
	}

	return executor
}

// Execute validates req, runs the external binary and returns its result.
// A non-zero exit code is not an error. Errors are *Error values; nothing is retried.
func (e *Executor) Execute(ctx context.Context, req Request) (Result, error) {
	args, err := e.validator.ValidateArgs(req.Args)
	if err != nil {
		e.logger.Error("argument validation failed", zap.Error(err))
		e.observer.CommandCompleted(OutcomeInvalidArgument, 0)
		return Result{}, invalidArgument(err)
	}

	argv := make([]string, 0, len(args)+1)
	argv = append(argv, e.config.Binary)
	argv = append(argv, args...)
	command := strings.Join(argv, " ")

	if err := e.acquire(ctx); err != nil {
		e.logger.Warn("gave up waiting for an execution slot", zap.String("command", command), zap.Error(err))
		e.observer.CommandCompleted(OutcomeFailure, 0)
		return Result{}, &Error{
			Kind:    KindExecutionFailure,
			Command: command,
			Err:     fmt.Errorf("waiting for execution slot: %w", err),
		}
	}
	defer e.release()

	timeout := e.effectiveTimeout(req.Timeout)
	e.logger.Info("executing command", zap.String("command", command), zap.Duration("timeout", timeout))

	started := time.Now()
	proc, err := e.starter.Start(e.config.Binary, args)
	if err != nil {
		elapsed := time.Since(started)
		e.logger.Error("command execution failed",
			zap.String("command", command),
			zap.Duration("elapsed", elapsed),
			zap.Error(err),
			zap.Stack("stack"))
		e.observer.CommandCompleted(OutcomeFailure, elapsed)
		return Result{}, &Error{
			Kind:    KindExecutionFailure,
			Command: command,
			Elapsed: elapsed,
			Err:     fmt.Errorf("failed to start process: %w", err),
		}
	}

	h := newHandle(proc, command, started)
	e.track(h)
	defer e.untrack(h)

	go h.wait()

	return e.await(ctx, h, timeout)
}

// await races process completion against the timeout and the caller's context.
// Once the timer fires the call is committed to the timeout error.
func (e *Executor) await(ctx context.Context, h *handle, timeout time.Duration) (Result, error) {
	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case <-h.done:
		return e.collect(h)

	case <-timer.C:
		e.terminate(h, "timeout")
		elapsed := time.Since(h.started)
		e.logger.Error("command timed out",
			zap.String("command", h.command),
			zap.Duration("timeout", timeout),
			zap.Duration("elapsed", elapsed))
		e.observer.CommandCompleted(OutcomeTimeout, elapsed)
		return Result{}, &Error{
			Kind:    KindTimeout,
			Command: h.command,
			Elapsed: elapsed,
			Timeout: timeout,
			Err:     context.DeadlineExceeded,
		}

	case <-ctx.Done():
		// a process that has already exited reports its result
		if h.finished() {
			return e.collect(h)
		}
		e.terminate(h, "canceled")
		elapsed := time.Since(h.started)
		e.logger.Warn("command canceled by caller",
			zap.String("command", h.command),
			zap.Duration("elapsed", elapsed),
			zap.Error(ctx.Err()))
		e.observer.CommandCompleted(OutcomeFailure, elapsed)
		return Result{}, &Error{
			Kind:    KindExecutionFailure,
			Command: h.command,
			Elapsed: elapsed,
			Err:     ctx.Err(),
		}
	}
}

func (e *Executor) collect(h *handle) (Result, error) {
	elapsed := time.Since(h.started)

	if h.err != nil {
		e.logger.Error("command execution failed",
			zap.String("command", h.command),
			zap.Duration("elapsed", elapsed),
			zap.Error(h.err),
			zap.Stack("stack"))
		e.observer.CommandCompleted(OutcomeFailure, elapsed)
		return Result{}, &Error{
			Kind:    KindExecutionFailure,
			Command: h.command,
			Elapsed: elapsed,
			Err:     h.err,
		}
	}

	result := Result{
		Stdout:   decodeText(h.out.Stdout),
		Stderr:   decodeText(h.out.Stderr),
		ExitCode: h.out.ExitCode,
		Command:  h.command,
		Duration: elapsed,
	}

	if result.Success() {
		e.logger.Info("command completed successfully",
			zap.String("command", h.command),
			zap.Duration("elapsed", elapsed))
		e.observer.CommandCompleted(OutcomeSuccess, elapsed)
	} else {
		e.logger.Warn("command failed",
			zap.String("command", h.command),
			zap.Int("exit_code", result.ExitCode),
			zap.String("stderr", strings.TrimSpace(result.Stderr)),
			zap.Duration("elapsed", elapsed))
		e.observer.CommandCompleted(OutcomeNonZeroExit, elapsed)
	}

	return result, nil
}

// terminate kills the process and waits, bounded by killGrace, for it to be reaped.
// A failed kill is logged, never returned.
func (e *Executor) terminate(h *handle, reason string) {
	if err := h.kill(); err != nil {
		e.logger.Warn("failed to kill process",
			zap.String("command", h.command),
			zap.Int("pid", h.proc.Pid()),
			zap.String("reason", reason),
			zap.Error(err))
	}

	grace := time.NewTimer(e.killGrace)
	defer grace.Stop()

	select {
	case <-h.done:
	case <-grace.C:
		e.logger.Warn("process still running after kill",
			zap.String("command", h.command),
			zap.Int("pid", h.proc.Pid()),
			zap.Duration("grace", e.killGrace))
	}
}

func (e *Executor) effectiveTimeout(override time.Duration) time.Duration {
	if override > 0 {
		return override
	}
	return e.config.DefaultTimeout
}

func (e *Executor) acquire(ctx context.Context) error {
	select {
	case e.gate <- struct{}{}:
		e.notify()
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (e *Executor) release() {
	<-e.gate
	e.notify()
}

func (e *Executor) track(h *handle) {
	e.active.add(h)
	e.notify()
}

func (e *Executor) untrack(h *handle) {
	e.active.remove(h)
	e.notify()
}

func (e *Executor) notify() {
	e.observer.ProcessesChanged(e.active.len(), cap(e.gate)-len(e.gate))
}
