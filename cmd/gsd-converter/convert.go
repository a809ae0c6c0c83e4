package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/gsd-antigravity/gsd-converter/pkg/gsd"
	"github.com/gsd-antigravity/gsd-converter/pkg/presenter"
	"github.com/gsd-antigravity/gsd-converter/pkg/scaffold"
	"github.com/gsd-antigravity/gsd-converter/pkg/skills"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// ConvertConfig holds the settings of a conversion run.
type ConvertConfig struct {
	SkillName     string
	SkillsDir     string
	SourceDir     string
	Template      string
	OptimizeTools bool
}

// NewConvertConfig returns the default conversion settings.
func NewConvertConfig() *ConvertConfig {
	return &ConvertConfig{
		SkillName:     gsd.DefaultSkillName,
		SkillsDir:     skills.DefaultSkillsDir,
		SourceDir:     gsd.DefaultSourceDir,
		Template:      "",
		OptimizeTools: false,
	}
}

// newInstaller builds the installer for a source directory. The npx
// installer writes .claude/ into its working directory.
var newInstaller = func(sourceDir string) gsd.Installer {
	return gsd.NewNpxInstaller(gsd.WithWorkDir(filepath.Dir(sourceDir)))
}

var convertCmd = &cobra.Command{
	Use:   "convert [skill-name]",
	Short: "Rebuild the GSD Antigravity skill",
	Long: `Rebuild .agent/skills/<skill-name>/ (default "gsd") from a fresh GSD install.

The existing skill directory is deleted without confirmation. The steps are:

  1. npx -y get-shit-done-cc --claude --local --force-statusline
  2. copy commands, workflows, references, agents, templates and bin/ out of .claude/
  3. rewrite .claude paths and Claude branding in markdown and JSON files
  4. render SKILL.md from the skill template

Examples:
  gsd-converter convert
  gsd-converter convert my-gsd --path .agent/skills
  gsd-converter convert --optimize-tools`,
	Args: cobra.MaximumNArgs(1),
	RunE: runConvert,
}

func init() {
	rootCmd.AddCommand(withTracing(convertCmd))
	withTracing(rootCmd)
}

func getConvertConfig(args []string) *ConvertConfig {
	config := NewConvertConfig()
	if len(args) > 0 {
		config.SkillName = args[0]
	}
	if path := viper.GetString("path"); path != "" {
		config.SkillsDir = path
	}
	if source := viper.GetString("source"); source != "" {
		config.SourceDir = source
	}
	config.Template = viper.GetString("template")
	config.OptimizeTools = viper.GetBool("optimize_tools")
	return config
}

// templateSearchPaths lists SKILL.md template candidates in lookup order: the
// explicit --template, the assets directory next to the binary, and the copy
// installed by "gsd-converter init".
func templateSearchPaths(config *ConvertConfig) []string {
	var paths []string
	if config.Template != "" {
		paths = append(paths, config.Template)
	}
	if exe, err := os.Executable(); err == nil {
		paths = append(paths, filepath.Join(filepath.Dir(exe), "..", "assets", gsd.TemplateFile))
	}
	return append(paths, scaffold.TemplatePath(config.SkillsDir))
}

func runConvert(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	config := getConvertConfig(args)

	converter, err := gsd.NewConverter(
		gsd.WithSkillName(config.SkillName),
		gsd.WithSkillsDir(config.SkillsDir),
		gsd.WithSourceDir(config.SourceDir),
		gsd.WithTemplatePaths(templateSearchPaths(config)...),
		gsd.WithInstaller(newInstaller(config.SourceDir)),
		gsd.WithOptimizeTools(config.OptimizeTools),
	)
	if err != nil {
		return err
	}

	presenter.Section(fmt.Sprintf("Converting GSD into %s", converter.TargetDir()))

	result, err := converter.Run(ctx)
	if err != nil {
		return err
	}

	presentResult(result)
	return nil
}

func presentResult(result *gsd.Result) {
	for _, warning := range result.Warnings {
		presenter.Warning(warning.Error())
	}
	if skipped := result.Migration.Skipped(); len(skipped) > 0 {
		sources := make([]string, 0, len(skipped))
		for _, m := range skipped {
			sources = append(sources, m.Source)
		}
		presenter.Warning("Not found in source: " + strings.Join(sources, ", "))
	}
	if result.Descriptor.Fallback {
		presenter.Warning("Skill template not found, wrote a minimal SKILL.md")
	}

	items := []presenter.Item{
		{Label: "Skill", Value: result.SkillName},
		{Label: "Location", Value: result.TargetDir},
		{Label: "GSD Version", Value: fmt.Sprintf("%s -> %s", result.OldVersion, result.NewVersion)},
		{Label: "Files", Value: fmt.Sprintf("%d copied, %d rewritten", result.Migration.Files(), len(result.Refactor.Changed))},
		{Label: "Commands", Value: fmt.Sprintf("%d", len(result.Commands))},
	}
	if result.Tools != nil {
		items = append(items, presenter.Item{Label: "gsd-tools.cjs", Value: fmt.Sprintf("%d lines", result.Tools.Lines)})
	}
	presenter.Separator()
	presenter.Summary(items...)
	presenter.Success(fmt.Sprintf("Conversion complete. Skill '%s' is ready in %s", result.SkillName, result.TargetDir))
}

// exitCodeFor maps a fatal error to the process exit code. Installer failures
// keep the installer's own exit code.
func exitCodeFor(err error) int {
	var installErr *gsd.InstallError
	if errors.As(err, &installErr) && installErr.ExitCode > 0 {
		return installErr.ExitCode
	}
	return 1
}

func installOutput(err error) string {
	var installErr *gsd.InstallError
	if errors.As(err, &installErr) {
		return installErr.Output
	}
	return ""
}
