package main

import (
	"fmt"
	"io"
	"os"

	"github.com/gsd-antigravity/gsd-converter/pkg/presenter"
	"github.com/gsd-antigravity/gsd-converter/pkg/toolsopt"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

var optimizeCmd = &cobra.Command{
	Use:   "optimize-tools <file>",
	Short: "Optimize a gsd-tools.cjs helper script in place",
	Long: `Condense the header of gsd-tools.cjs, convert it to 2-space indentation, and
add --include support to its init commands. Running it again on an optimized
file changes nothing.

Examples:
  gsd-converter optimize-tools .agent/skills/gsd/bin/gsd-tools.cjs
  gsd-converter optimize-tools gsd-tools.cjs --dry-run`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		dryRun, _ := cmd.Flags().GetBool("dry-run")
		path := args[0]

		if dryRun {
			data, err := os.ReadFile(path)
			if err != nil {
				return errors.Wrapf(err, "failed to read %s", path)
			}
			optimized, report := toolsopt.Optimize(string(data))
			fmt.Fprint(cmd.OutOrStdout(), toolsopt.Diff(path, string(data), optimized))
			if !presenter.IsQuiet() {
				writeSteps(cmd.ErrOrStderr(), report)
			}
			return nil
		}

		report, err := toolsopt.OptimizeFile(cmd.Context(), path)
		if err != nil {
			return err
		}

		if !presenter.IsQuiet() {
			writeSteps(presenter.Default().Writer(), report)
		}
		if !report.Changed() {
			presenter.Info("Already optimized, nothing to do")
			return nil
		}
		presenter.Success(fmt.Sprintf("Optimized %s (%d lines, %d bytes)", path, report.Lines, report.Bytes))
		return nil
	},
}

func init() {
	optimizeCmd.Flags().Bool("dry-run", false, "Print a unified diff instead of writing the file")
	rootCmd.AddCommand(withTracing(optimizeCmd))
}

func writeSteps(w io.Writer, report *toolsopt.Report) {
	for _, step := range report.Steps {
		mark := "-"
		if step.Applied {
			mark = "+"
		}
		fmt.Fprintf(w, "  %s %-14s %s\n", mark, step.Name, step.Detail)
	}
}
