package main

import (
	"fmt"
	"os"

	"github.com/MakeNowJust/heredoc/v2"
	"github.com/spf13/cobra"

	"github.com/atinyakov/NoteKeeper/internal/config"
	"github.com/atinyakov/NoteKeeper/internal/logger"
)

var (
	options = config.Default()
	log     = logger.New()
)

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "notekeeper",
	Short: "Keep short notes with search and colour themes",
	Long: heredoc.Doc(`
		NoteKeeper stores short titled notes in a local file or a database.
		Use the shell command for an interactive session or serve for the HTTP view API.
	`),
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return options.Resolve(cmd.Flags())
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = log.Log.Sync()
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main().
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	options.RegisterFlags(rootCmd.PersistentFlags())
}
