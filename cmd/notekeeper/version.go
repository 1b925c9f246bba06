package main

import (
	"cmp"
	"fmt"

	"github.com/spf13/cobra"
)

var (
	// version holds the build version set via ldflags.
	version string
	// buildDate holds the build timestamp set via ldflags.
	buildDate string
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the build version and date",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "Build version: %s\n", cmp.Or(version, "N/A"))
		fmt.Fprintf(cmd.OutOrStdout(), "Build date: %s\n", cmp.Or(buildDate, "N/A"))
	},
}

func init() {
	// No config is needed to print the version.
	versionCmd.PersistentPreRun = func(cmd *cobra.Command, args []string) {}
	rootCmd.AddCommand(versionCmd)
}
