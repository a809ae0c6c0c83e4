//go:build unix

package osutil

import (
	"os/exec"
	"syscall"
)

// SetProcessGroup runs cmd in a new process group so the whole tree spawned
// by a package runner (npx -> node -> installer) can be signalled at once.
func SetProcessGroup(cmd *exec.Cmd) {
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}
}

// SetProcessGroupKill makes context cancellation kill the whole group.
// Call after SetProcessGroup and before cmd.Start().
func SetProcessGroupKill(cmd *exec.Cmd) {
	cmd.Cancel = func() error {
		return syscall.Kill(-cmd.Process.Pid, syscall.SIGKILL)
	}
}
