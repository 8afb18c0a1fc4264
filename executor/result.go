package executor

import (
	"fmt"
	"strings"
	"time"
)

// Result is the normalized outcome of a command that ran to completion
type Result struct {
	Stdout   string
	Stderr   string
	ExitCode int
	Command  string
	Duration time.Duration
}

// Success reports whether the command exited with status 0
func (r Result) Success() bool {
	return r.ExitCode == 0
}

// Format renders the result for a tool response. Both streams and the exit
// code are always recoverable from the text.
func (r Result) Format() string {
	var b strings.Builder

	if r.Success() {
		fmt.Fprintf(&b, "Command executed successfully:\n%s\n", r.Command)
	} else {
		fmt.Fprintf(&b, "Command failed with exit code %s:\n%s\n", r.exitCodeText(), r.Command)
	}

	if r.Duration > 0 {
		fmt.Fprintf(&b, "Duration: %.3fs\n\n", r.Duration.Seconds())
	} else {
		b.WriteString("\n")
	}

	if r.Success() {
		if r.Stdout != "" {
			fmt.Fprintf(&b, "Output:\n%s", r.Stdout)
		}
		if r.Stderr != "" {
			fmt.Fprintf(&b, "\nWarnings/Info:\n%s", r.Stderr)
		}
		return b.String()
	}

	if r.Stderr != "" {
		fmt.Fprintf(&b, "Error:\n%s", r.Stderr)
	}
	if r.Stdout != "" {
		fmt.Fprintf(&b, "\nOutput:\n%s", r.Stdout)
	}
	return b.String()
}

func (r Result) exitCodeText() string {
	if r.ExitCode == NoExitCode {
		return "unknown (terminated by signal)"
	}
	return fmt.Sprintf("%d", r.ExitCode)
}

// decodeText converts captured bytes to text, replacing invalid UTF-8 sequences
func decodeText(b []byte) string {
	if len(b) == 0 {
		return ""
	}
	return strings.ToValidUTF8(string(b), "\uFFFD")
}
