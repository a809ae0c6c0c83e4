package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/gsd-antigravity/gsd-converter/pkg/logger"
	"github.com/gsd-antigravity/gsd-converter/pkg/presenter"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func init() {
	// Environment variables
	viper.SetEnvPrefix("GSD_CONVERTER")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	viper.AutomaticEnv()

	// Config file support
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath("$HOME/.gsd-converter")
	viper.AddConfigPath(".")

	// Load config file if it exists (ignore errors if it doesn't)
	_ = viper.ReadInConfig()

	defaults := NewConvertConfig()

	// Add global flags
	flags := rootCmd.PersistentFlags()
	flags.String("path", defaults.SkillsDir, "Directory the skill is written under")
	flags.String("source", defaults.SourceDir, "Directory the GSD installer populates")
	flags.String("template", defaults.Template, "SKILL.md template to render (searched before the bundled one)")
	flags.Bool("optimize-tools", defaults.OptimizeTools, "Optimize bin/gsd-tools.cjs after migration")
	flags.String("log-level", "info", "Log level (panic, fatal, error, warn, info, debug, trace)")
	flags.String("log-format", "fmt", "Log format (fmt, json)")
	flags.BoolP("quiet", "q", false, "Only print errors")

	// Bind flags to viper
	viper.BindPFlag("path", flags.Lookup("path"))
	viper.BindPFlag("source", flags.Lookup("source"))
	viper.BindPFlag("template", flags.Lookup("template"))
	viper.BindPFlag("optimize_tools", flags.Lookup("optimize-tools"))
	viper.BindPFlag("log_level", flags.Lookup("log-level"))
	viper.BindPFlag("log_format", flags.Lookup("log-format"))
	viper.BindPFlag("quiet", flags.Lookup("quiet"))
}

var rootCmd = &cobra.Command{
	Use:   "gsd-converter [skill-name]",
	Short: "Convert the GSD command bundle into an Antigravity skill",
	Long: `gsd-converter installs the latest get-shit-done-cc release into .claude/ and
rebuilds it as an Antigravity skill under .agent/skills/<skill-name>/.

Without a subcommand it behaves like "gsd-converter convert".`,
	Args:          cobra.MaximumNArgs(1),
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
		if err := configureOutput(); err != nil {
			return err
		}
		return startTracing(cmd.Context())
	},
	RunE: runConvert,
}

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)

	err := rootCmd.ExecuteContext(ctx)
	if shutdownErr := stopTracing(context.Background()); shutdownErr != nil {
		logger.G(ctx).WithError(shutdownErr).Warn("failed to shut down tracing")
	}
	cancel()

	if err != nil {
		reportError(err)
		os.Exit(exitCodeFor(err))
	}
}

// configureOutput applies the logging and quiet settings shared by every
// subcommand.
func configureOutput() error {
	presenter.SetQuiet(viper.GetBool("quiet"))
	return logger.Configure(viper.GetString("log_level"), viper.GetString("log_format"))
}

// reportError prints a fatal error, including captured installer output.
func reportError(err error) {
	if out := installOutput(err); out != "" {
		fmt.Fprint(os.Stderr, out)
	}
	presenter.Error(err, "")
}
