//go:build unix

package utils

import (
	"os/exec"
	"syscall"
)

// ConfigureHiddenProcAttr runs the command in a separate process group on
// Unix systems, so a Ctrl+C aimed at the CLI does not reach it.
func ConfigureHiddenProcAttr(cmd *exec.Cmd) {
	cmd.SysProcAttr = &syscall.SysProcAttr{
		Setpgid: true,
		Pgid:    0,
	}
}
