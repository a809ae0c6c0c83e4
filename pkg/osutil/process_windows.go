//go:build windows

package osutil

import (
	"os"
	"os/exec"
)

// SetProcessGroup is a no-op on Windows.
func SetProcessGroup(_ *exec.Cmd) {}

// SetProcessGroupKill terminates only the direct child on Windows; there is
// no process group to signal.
func SetProcessGroupKill(cmd *exec.Cmd) {
	cmd.Cancel = func() error {
		return cmd.Process.Signal(os.Kill)
	}
}
