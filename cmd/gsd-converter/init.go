package main

import (
	"fmt"

	"github.com/gsd-antigravity/gsd-converter/pkg/presenter"
	"github.com/gsd-antigravity/gsd-converter/pkg/scaffold"
	"github.com/spf13/cobra"
)

var initCmd = &cobra.Command{
	Use:   "init [project-dir]",
	Short: "Install the gsd-converter skill into a project",
	Long: `Install the gsd-converter skill (SKILL.md and the SKILL.md template used by
"convert") into <project-dir>/.agent/skills/gsd-converter/. Existing files are
overwritten. project-dir defaults to the current directory.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		dir := "."
		if len(args) > 0 {
			dir = args[0]
		}

		written, err := scaffold.Install(cmd.Context(), dir)
		if err != nil {
			return err
		}

		for _, path := range written {
			presenter.Success(fmt.Sprintf("Installed %s", path))
		}
		presenter.Info("To build the GSD skill, run:\n  gsd-converter convert gsd")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(withTracing(initCmd))
}
