package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/gsd-antigravity/gsd-converter/pkg/gsd"
	"github.com/gsd-antigravity/gsd-converter/pkg/skills"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// CommandsConfig holds the settings of the commands listing.
type CommandsConfig struct {
	SkillName string
	SkillsDir string
	Format    string
}

// NewCommandsConfig returns the default listing settings.
func NewCommandsConfig() *CommandsConfig {
	return &CommandsConfig{
		SkillName: gsd.DefaultSkillName,
		SkillsDir: NewConvertConfig().SkillsDir,
		Format:    "table",
	}
}

var commandsCmd = &cobra.Command{
	Use:   "commands [skill-name]",
	Short: "List the commands of a converted skill",
	Long: `List the gsd: commands indexed from references/commands/ of a converted skill,
with the description taken from each command's frontmatter.

Examples:
  gsd-converter commands
  gsd-converter commands my-gsd --format json`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		config := getCommandsConfigFromFlags(cmd, args)

		commands, err := skillCommands(cmd.Context(), config)
		if err != nil {
			return err
		}
		return writeCommands(cmd.OutOrStdout(), commands, config.Format)
	},
}

func init() {
	defaults := NewCommandsConfig()
	commandsCmd.Flags().StringP("format", "o", defaults.Format, "Output format (table, json, yaml)")
	rootCmd.AddCommand(withTracing(commandsCmd))
}

func getCommandsConfigFromFlags(cmd *cobra.Command, args []string) *CommandsConfig {
	config := NewCommandsConfig()
	if len(args) > 0 {
		config.SkillName = args[0]
	}
	if path := viper.GetString("path"); path != "" {
		config.SkillsDir = path
	}
	if format, err := cmd.Flags().GetString("format"); err == nil {
		config.Format = format
	}
	return config
}

// skillCommands resolves the named skill through its SKILL.md and indexes
// its commands.
func skillCommands(ctx context.Context, config *CommandsConfig) ([]gsd.Command, error) {
	discovery, err := skills.NewDiscovery(skills.WithSkillDirs(config.SkillsDir))
	if err != nil {
		return nil, errors.Wrap(err, "failed to initialize skill discovery")
	}

	skill, err := discovery.GetSkill(config.SkillName)
	if err != nil {
		return nil, errors.Wrapf(err, "no converted skill in %s", config.SkillsDir)
	}

	return gsd.ScanCommands(ctx, skill.Directory), nil
}

func writeCommands(w io.Writer, commands []gsd.Command, format string) error {
	switch format {
	case "json":
		data, err := json.MarshalIndent(commands, "", "  ")
		if err != nil {
			return errors.Wrap(err, "failed to encode commands")
		}
		_, err = fmt.Fprintln(w, string(data))
		return err
	case "yaml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(commands); err != nil {
			return errors.Wrap(err, "failed to encode commands")
		}
		return enc.Close()
	case "table", "":
		tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
		fmt.Fprintln(tw, "TRIGGER\tDESCRIPTION")
		fmt.Fprintln(tw, "-------\t-----------")
		for _, c := range commands {
			fmt.Fprintf(tw, "gsd:%s\t%s\n", c.Name, c.Description)
		}
		return tw.Flush()
	default:
		return errors.Errorf("unsupported format %q (want table, json or yaml)", format)
	}
}
