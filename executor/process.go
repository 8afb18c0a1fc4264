package executor

import (
	"bytes"
	"errors"
	"os"
	"os/exec"
	"time"
)

// NoExitCode marks a process that did not report an exit status, for example
// because it was terminated by a signal
const NoExitCode = -1

// DefaultWaitDelay bounds how long Wait keeps reading output after the
// process has exited, in case descendants still hold the pipes open
const DefaultWaitDelay = 2 * time.Second

// Output holds what a finished process produced
type Output struct {
	Stdout   []byte
	Stderr   []byte
	ExitCode int
}

// Process is a handle to a started external process
type Process interface {
	Pid() int
	// Wait blocks until the process exits. A non-zero exit status is not an error.
	Wait() (Output, error)
	Kill() error
}

// Starter spawns external processes
type Starter interface {
	Start(name string, args []string) (Process, error)
}

// ExecStarter implements Starter using os/exec. Stdin is /dev/null and
// stdout/stderr are captured into separate buffers.
type ExecStarter struct {
	WaitDelay time.Duration
}

// Start launches name with args
func (s ExecStarter) Start(name string, args []string) (Process, error) {
	cmd := exec.Command(name, args...) //nolint:gosec // arguments pass the Validator before reaching here

	p := &execProcess{cmd: cmd}
	cmd.Stdout = &p.stdout
	cmd.Stderr = &p.stderr
	cmd.WaitDelay = s.WaitDelay
	if cmd.WaitDelay <= 0 {
		cmd.WaitDelay = DefaultWaitDelay
	}
	configureProcAttr(cmd)

	if err := cmd.Start(); err != nil {
		return nil, err
	}
	return p, nil
}

type execProcess struct {
	cmd    *exec.Cmd
	stdout bytes.Buffer
	stderr bytes.Buffer
}

func (p *execProcess) Pid() int {
	return p.cmd.Process.Pid
}

func (p *execProcess) Wait() (Output, error) {
	err := p.cmd.Wait()
	if p.cmd.ProcessState == nil {
		return Output{}, err
	}

	out := Output{
		Stdout:   p.stdout.Bytes(),
		Stderr:   p.stderr.Bytes(),
		ExitCode: p.cmd.ProcessState.ExitCode(),
	}

	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) || errors.Is(err, exec.ErrWaitDelay) {
			return out, nil
		}
		return out, err
	}
	return out, nil
}

// Kill sends SIGKILL to the process and, where supported, its process group.
// The group is signalled even after the leader has exited so orphaned
// descendants do not outlive the call.
func (p *execProcess) Kill() error {
	err := p.cmd.Process.Kill()
	killGroup(p.cmd.Process.Pid)
	if errors.Is(err, os.ErrProcessDone) {
		return nil
	}
	return err
}
