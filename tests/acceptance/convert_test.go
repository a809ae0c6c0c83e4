package acceptance

import (
	"errors"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"
)

// fakeNpx installs an npx replacement on PATH that runs script instead of
// downloading get-shit-done-cc.
func fakeNpx(t *testing.T, script string) []string {
	t.Helper()
	binDir := t.TempDir()
	npx := filepath.Join(binDir, "npx")
	if err := os.WriteFile(npx, []byte("#!/bin/sh\n"+script), 0o755); err != nil {
		t.Fatalf("failed to write fake npx: %v", err)
	}
	return append(os.Environ(), "PATH="+binDir+string(os.PathListSeparator)+os.Getenv("PATH"))
}

const installBundle = `set -e
mkdir -p .claude/commands/gsd .claude/get-shit-done/workflows .claude/get-shit-done/bin
printf '1.4.0\n' > .claude/get-shit-done/VERSION
printf -- '---\ndescription: "Plan the next phase"\n---\nUse @./.claude/get-shit-done/workflows/plan.md with Claude.\n' > .claude/commands/gsd/plan-phase.md
printf 'Workflow for Claude Code\n' > .claude/get-shit-done/workflows/plan.md
printf '// tools\n' > .claude/get-shit-done/bin/gsd-tools.cjs
`

func TestConvertCommand(t *testing.T) {
	requireBinary(t)
	if _, err := exec.LookPath("sh"); err != nil {
		t.Skip("sh not available")
	}

	dir := t.TempDir()
	cmd := exec.Command(binaryPath, "convert", "--log-level", "warn")
	cmd.Dir = dir
	cmd.Env = fakeNpx(t, installBundle)

	output, err := cmd.CombinedOutput()
	if err != nil {
		t.Fatalf("convert failed: %v\n%s", err, output)
	}

	if !strings.Contains(string(output), "not installed -> 1.4.0") {
		t.Errorf("summary should report the version change. Got: %s", output)
	}

	skillDir := filepath.Join(dir, ".agent", "skills", "gsd")
	plan, err := os.ReadFile(filepath.Join(skillDir, "references", "commands", "plan-phase.md"))
	if err != nil {
		t.Fatalf("command not migrated: %v", err)
	}
	if want := "Use @references/workflows/plan.md with Antigravity."; !strings.Contains(string(plan), want) {
		t.Errorf("command not refactored, want %q in:\n%s", want, plan)
	}

	skill, err := os.ReadFile(filepath.Join(skillDir, "SKILL.md"))
	if err != nil {
		t.Fatalf("SKILL.md not written: %v", err)
	}
	if !strings.HasPrefix(string(skill), "---\nname: gsd\n") {
		t.Errorf("unexpected SKILL.md:\n%s", skill)
	}
}

func TestConvertCommandInstallerFailure(t *testing.T) {
	requireBinary(t)
	if _, err := exec.LookPath("sh"); err != nil {
		t.Skip("sh not available")
	}

	dir := t.TempDir()
	cmd := exec.Command(binaryPath, "convert")
	cmd.Dir = dir
	cmd.Env = fakeNpx(t, "echo 'registry unreachable' >&2\nexit 5\n")

	output, err := cmd.CombinedOutput()

	var exitErr *exec.ExitError
	if !errors.As(err, &exitErr) {
		t.Fatalf("expected convert to fail, got %v\n%s", err, output)
	}
	if exitErr.ExitCode() != 5 {
		t.Errorf("expected exit code 5, got %d", exitErr.ExitCode())
	}
	if !strings.Contains(string(output), "registry unreachable") {
		t.Errorf("installer output should be shown. Got: %s", output)
	}
}

func TestInitThenCommands(t *testing.T) {
	requireBinary(t)

	dir := t.TempDir()
	cmd := exec.Command(binaryPath, "init", dir)
	if output, err := cmd.CombinedOutput(); err != nil {
		t.Fatalf("init failed: %v\n%s", err, output)
	}

	cmd = exec.Command(binaryPath, "skills", "--path", filepath.Join(dir, ".agent", "skills"))
	output, err := cmd.CombinedOutput()
	if err != nil {
		t.Fatalf("skills failed: %v\n%s", err, output)
	}
	if !strings.Contains(string(output), "gsd-converter") {
		t.Errorf("installed converter skill should be listed. Got: %s", output)
	}

	cmd = exec.Command(binaryPath, "commands", "missing", "--path", filepath.Join(dir, ".agent", "skills"))
	if output, err := cmd.CombinedOutput(); err == nil {
		t.Errorf("commands on a missing skill should fail. Got: %s", output)
	}
}
