//go:build !unix

package executor

import "os/exec"

func configureProcAttr(*exec.Cmd) {}

func killGroup(int) {}
