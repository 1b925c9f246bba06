// Package app wires the storage backend, note service, theme selector and
// view model from configuration.
package app

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/atinyakov/NoteKeeper/internal/config"
	"github.com/atinyakov/NoteKeeper/internal/db"
	"github.com/atinyakov/NoteKeeper/internal/notify"
	"github.com/atinyakov/NoteKeeper/internal/repository"
	"github.com/atinyakov/NoteKeeper/internal/service"
	"github.com/atinyakov/NoteKeeper/internal/storage"
	"github.com/atinyakov/NoteKeeper/internal/theme"
	"github.com/atinyakov/NoteKeeper/internal/view"
)

// pendingLimit bounds the notifications kept for a view that never drains them.
const pendingLimit = 50

// App is a fully wired note application.
type App struct {
	Notes         *service.NoteService
	Themes        *theme.Selector
	View          *view.Model
	Notifications *notify.Queue

	closeStore func() error
}

// New opens the configured store, restores the saved notes and returns the
// ready application.
func New(ctx context.Context, opts *config.Options, log *zap.Logger) (*App, error) {
	store, closeStore, err := OpenStore(opts)
	if err != nil {
		return nil, err
	}
	log.Info("store opened", zap.String("store", opts.Store))

	queue := notify.NewQueue(pendingLimit)
	repo := repository.NewNoteRepository(store, log.Named("repository"))
	notes := service.NewNoteService(repo,
		notify.Multi{queue, notify.NewLog(log.Named("notify"))},
		service.WithDelay(opts.Delay),
		service.WithLogger(log.Named("notes")),
	)
	notes.Initialize(ctx)

	themes := theme.NewSelector(theme.Palettes, opts.Palette)

	return &App{
		Notes:         notes,
		Themes:        themes,
		View:          view.NewModel(notes, themes),
		Notifications: queue,
		closeStore:    closeStore,
	}, nil
}

// OpenStore creates the key-value store selected by opts. The returned
// function releases it.
func OpenStore(opts *config.Options) (storage.Store, func() error, error) {
	noop := func() error { return nil }

	switch opts.Store {
	case config.StoreMemory:
		return storage.NewMemoryStore(), noop, nil
	case config.StoreFile:
		fs, err := storage.NewFileStore(opts.StoragePath)
		if err != nil {
			return nil, nil, err
		}
		return fs, noop, nil
	case config.StorePostgres, config.StoreSQLite:
		driver := db.DriverPostgres
		if opts.Store == config.StoreSQLite {
			driver = db.DriverSQLite
		}
		conn, err := db.Open(driver, opts.DatabaseDSN)
		if err != nil {
			return nil, nil, err
		}
		return storage.NewSQLStore(conn), conn.Close, nil
	default:
		return nil, nil, fmt.Errorf("unknown store %q", opts.Store)
	}
}

// Close stops pending mutations and releases the store.
func (a *App) Close() error {
	a.Notes.Close()
	return a.closeStore()
}
