//go:build unix

package executor

import (
	"os/exec"
	"syscall"
)

// configureProcAttr puts the child in its own process group so a kill also
// reaches anything it spawned
func configureProcAttr(cmd *exec.Cmd) {
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}
}

func killGroup(pid int) {
	_ = syscall.Kill(-pid, syscall.SIGKILL)
}
