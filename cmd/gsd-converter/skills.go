package main

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/gsd-antigravity/gsd-converter/pkg/presenter"
	"github.com/gsd-antigravity/gsd-converter/pkg/skills"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var skillsCmd = &cobra.Command{
	Use:   "skills",
	Short: "List the skills installed for Antigravity",
	Long:  `List every skill under the skills directory (--path) that has a valid SKILL.md.`,
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		dir := viper.GetString("path")
		if dir == "" {
			dir = skills.DefaultSkillsDir
		}

		discovery, err := skills.NewDiscovery(skills.WithSkillDirs(dir))
		if err != nil {
			return errors.Wrap(err, "failed to initialize skill discovery")
		}

		list, err := discovery.ListSkills()
		if err != nil {
			return errors.Wrap(err, "failed to discover skills")
		}

		if len(list) == 0 {
			presenter.Info(fmt.Sprintf("No skills installed in %s", dir))
			return nil
		}

		return writeSkills(cmd.OutOrStdout(), list)
	},
}

func init() {
	rootCmd.AddCommand(withTracing(skillsCmd))
}

func writeSkills(w io.Writer, list []*skills.Skill) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "NAME\tDIRECTORY\tDESCRIPTION")
	fmt.Fprintln(tw, "----\t---------\t-----------")

	for _, skill := range list {
		description := skill.Description
		if runes := []rune(description); len(runes) > 60 {
			description = string(runes[:57]) + "..."
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\n", skill.Name, skill.Directory, description)
	}
	return tw.Flush()
}
