package main

import (
	"os"
	"path/filepath"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/term"

	"github.com/atinyakov/NoteKeeper/internal/app"
	"github.com/atinyakov/NoteKeeper/internal/client/shell"
)

var (
	historyFile string
	noColor     bool
)

var shellCmd = &cobra.Command{
	Use:   "shell",
	Short: "Start an interactive note session",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		// Without a log file the shell stays quiet so logs do not mix with the session.
		if options.LogFile != "" {
			if err := log.Init(options.LogLevel, options.LogFile); err != nil {
				return err
			}
		}
		a, err := app.New(cmd.Context(), options, log.Log)
		if err != nil {
			return err
		}
		defer func() {
			if err := a.Close(); err != nil {
				log.Log.Error("close failed", zap.Error(err))
			}
		}()

		if noColor || !term.IsTerminal(int(os.Stdout.Fd())) {
			lipgloss.SetColorProfile(termenv.Ascii)
		}

		rl, err := shell.NewReadline(historyFile)
		if err != nil {
			return err
		}
		defer rl.Close()

		sh := shell.New(rl, rl.Stdout(), a.Notes, a.View, a.Themes, a.Notifications, log.Log.Named("shell"))
		return sh.Run(cmd.Context())
	},
}

func init() {
	rootCmd.AddCommand(shellCmd)

	history := ""
	if home, err := os.UserHomeDir(); err == nil {
		history = filepath.Join(home, ".notekeeper_history")
	}
	shellCmd.Flags().BoolVar(&noColor, "no-color", false, "disable colours")
	shellCmd.Flags().StringVar(&historyFile, "history", history, "readline history file; empty disables history")
}
