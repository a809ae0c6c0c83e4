package gsd

import (
	"context"
	"fmt"
	"os/exec"
	"strings"

	"github.com/gsd-antigravity/gsd-converter/pkg/logger"
	"github.com/gsd-antigravity/gsd-converter/pkg/osutil"
	"github.com/pkg/errors"
)

// Installer lays down a fresh GSD bundle in the source directory.
type Installer interface {
	Install(ctx context.Context) error
}

const (
	npxCommand = "npx"
	// GSDPackage is the npm package that produces the .claude/ bundle.
	GSDPackage = "get-shit-done-cc"
)

var npxArgs = []string{"-y", GSDPackage, "--claude", "--local", "--force-statusline"}

// InstallError reports a failed installer run. ExitCode is what the
// converter process should exit with.
type InstallError struct {
	Command  string
	ExitCode int
	Output   string
	Err      error
}

func (e *InstallError) Error() string {
	return fmt.Sprintf("failed to run %s: %v", e.Command, e.Err)
}

func (e *InstallError) Unwrap() error {
	return e.Err
}

// NpxInstaller runs the GSD package through npx, non-interactively and
// locally, so the bundle ends up in ./.claude of the working directory.
type NpxInstaller struct {
	command string
	args    []string
	dir     string
}

// InstallerOption configures an NpxInstaller.
type InstallerOption func(*NpxInstaller)

// WithCommand replaces the executable and its arguments.
func WithCommand(command string, args ...string) InstallerOption {
	return func(i *NpxInstaller) {
		i.command = command
		i.args = args
	}
}

// WithWorkDir runs the installer in dir instead of the current directory.
func WithWorkDir(dir string) InstallerOption {
	return func(i *NpxInstaller) {
		i.dir = dir
	}
}

// NewNpxInstaller creates an installer for the fixed npx invocation.
func NewNpxInstaller(opts ...InstallerOption) *NpxInstaller {
	i := &NpxInstaller{
		command: npxCommand,
		args:    append([]string(nil), npxArgs...),
	}
	for _, opt := range opts {
		opt(i)
	}
	return i
}

// CommandLine returns the invocation as a single display string.
func (i *NpxInstaller) CommandLine() string {
	return strings.Join(append([]string{i.command}, i.args...), " ")
}

// Install runs the installer to completion. Any failure, including a missing
// executable, is returned as *InstallError; there is no retry.
func (i *NpxInstaller) Install(ctx context.Context) error {
	log := logger.G(ctx).WithField("command", i.CommandLine())
	log.Info("running fresh GSD installation")

	cmd := exec.CommandContext(ctx, i.command, i.args...)
	cmd.Dir = i.dir
	osutil.SetProcessGroup(cmd)
	osutil.SetProcessGroupKill(cmd)

	output, err := cmd.CombinedOutput()
	if err != nil {
		exitCode := 1
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) && exitErr.ExitCode() > 0 {
			exitCode = exitErr.ExitCode()
		}
		return &InstallError{
			Command:  i.command + " installation",
			ExitCode: exitCode,
			Output:   string(output),
			Err:      err,
		}
	}

	log.Debug(string(output))
	log.Info("GSD installed successfully")
	return nil
}
