package main

import (
	"context"
	"errors"
	nethttp "net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/atinyakov/NoteKeeper/internal/app"
	"github.com/atinyakov/NoteKeeper/internal/server/handler/http"
)

const shutdownTimeout = 5 * time.Second

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the HTTP view API",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		var outputs []string
		if options.LogFile != "" {
			outputs = append(outputs, options.LogFile)
		}
		if err := log.Init(options.LogLevel, outputs...); err != nil {
			return err
		}
		zapLogger := log.Log

		a, err := app.New(ctx, options, zapLogger)
		if err != nil {
			zapLogger.Error("cannot start", zap.Error(err))
			return err
		}

		router := http.NewRouter(
			&http.NotesHandler{Notes: a.Notes},
			&http.StateHandler{View: a.View},
			&http.ThemeHandler{Themes: a.Themes},
			&http.NotificationHandler{Source: a.Notifications},
			zapLogger,
		)
		server := &nethttp.Server{
			Addr:              options.Address,
			Handler:           router,
			ReadHeaderTimeout: 5 * time.Second,
		}

		errCh := make(chan error, 1)
		go func() {
			zapLogger.Info("starting HTTP server", zap.String("addr", options.Address))
			errCh <- server.ListenAndServe()
		}()

		select {
		case err = <-errCh:
		case <-ctx.Done():
			zapLogger.Info("shutting down")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()
			err = server.Shutdown(shutdownCtx)
		}

		// Pending mutations are flushed before the store is released.
		waitCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if werr := a.Notes.WaitIdle(waitCtx); werr != nil {
			zapLogger.Warn("pending changes not applied", zap.Error(werr))
		}
		if cerr := a.Close(); cerr != nil {
			zapLogger.Error("close failed", zap.Error(cerr))
		}

		if errors.Is(err, nethttp.ErrServerClosed) {
			return nil
		}
		return err
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
}
