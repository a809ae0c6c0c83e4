package main

import (
	"fmt"

	"github.com/gsd-antigravity/gsd-converter/pkg/version"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version information",
	Long:  `Print the version information of gsd-converter in JSON format.`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		info, err := version.Get().JSON()
		if err != nil {
			return errors.Wrap(err, "error formatting version info")
		}
		fmt.Fprintln(cmd.OutOrStdout(), info)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
