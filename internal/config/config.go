// Package config provides functionality for managing configuration options
// for the application using command-line flags, a JSON config file and
// environment variables.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/spf13/pflag"
)

// Supported key-value store backends.
const (
	StoreMemory   = "memory"
	StoreFile     = "file"
	StorePostgres = "postgres"
	StoreSQLite   = "sqlite"
)

// Options holds the configuration values for the application.
type Options struct {
	// Address defines the HTTP view API listening address (ip:port).
	Address string `json:"address"`

	// Store selects the key-value backend: memory, file, postgres or sqlite.
	Store string `json:"store"`

	// DatabaseDSN is the connection string for the postgres and sqlite stores.
	DatabaseDSN string `json:"database_dsn"`

	// StoragePath is the JSON file used by the file store.
	StoragePath string `json:"storage_path"`

	// Delay is the simulated latency before a mutation takes effect.
	Delay time.Duration `json:"-"`

	// Palette is the preferred theme id; unknown ids fall back to the first palette.
	Palette int `json:"palette"`

	// LogLevel is the zap level name.
	LogLevel string `json:"log_level"`

	// LogFile redirects logs to a file; empty means stderr.
	LogFile string `json:"log_file"`

	// Config is the path to the Config file.
	Config string `json:"-"`
}

// fileOptions is the on-disk shape; the delay is written as a duration string.
type fileOptions struct {
	*Options
	Delay string `json:"delay"`
}

// Default returns the built-in configuration.
func Default() *Options {
	return &Options{
		Address:     "localhost:8080",
		Store:       StoreFile,
		StoragePath: "notes.json",
		Delay:       3 * time.Second,
		LogLevel:    "info",
		Config:      "config.json",
	}
}

// RegisterFlags binds the options to fs. Flag defaults are the current values.
func (o *Options) RegisterFlags(fs *pflag.FlagSet) {
	fs.StringVarP(&o.Address, "address", "a", o.Address, "view API listen address (ip:port)")
	fs.StringVarP(&o.Store, "store", "s", o.Store, "storage backend: memory, file, postgres, sqlite")
	fs.StringVarP(&o.DatabaseDSN, "dsn", "d", o.DatabaseDSN, "database DSN for postgres or sqlite")
	fs.StringVar(&o.StoragePath, "path", o.StoragePath, "file store location")
	fs.DurationVar(&o.Delay, "delay", o.Delay, "simulated latency before a change takes effect")
	fs.IntVar(&o.Palette, "palette", o.Palette, "preferred palette id")
	fs.StringVar(&o.LogLevel, "log-level", o.LogLevel, "log level: debug, info, warn, error")
	fs.StringVar(&o.LogFile, "log-file", o.LogFile, "write logs to this file instead of stderr")
	fs.StringVarP(&o.Config, "config", "c", o.Config, "path to config file")
}

// Resolve layers the config file and the environment over the defaults.
// Flags that were set explicitly on fs win over both.
func (o *Options) Resolve(fs *pflag.FlagSet) error {
	changed := map[string]string{}
	if fs != nil {
		fs.Visit(func(f *pflag.Flag) {
			changed[f.Name] = f.Value.String()
		})
	}

	if _, ok := changed["config"]; !ok {
		if configPath := os.Getenv("CONFIG"); configPath != "" {
			o.Config = configPath
		}
	}

	if err := o.loadFile(); err != nil {
		return err
	}
	if err := o.applyEnv(); err != nil {
		return err
	}

	for name, value := range changed {
		if err := fs.Set(name, value); err != nil {
			return fmt.Errorf("reapply flag --%s: %w", name, err)
		}
	}

	return o.Validate()
}

func (o *Options) loadFile() error {
	if o.Config == "" {
		return nil
	}
	data, err := os.ReadFile(o.Config)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("error while reading config file: %w", err)
	}

	fo := fileOptions{Options: o}
	if err := json.Unmarshal(data, &fo); err != nil {
		return fmt.Errorf("error while parsing config file: %w", err)
	}
	if fo.Delay != "" {
		d, err := time.ParseDuration(fo.Delay)
		if err != nil {
			return fmt.Errorf("config file delay: %w", err)
		}
		o.Delay = d
	}
	return nil
}

func (o *Options) applyEnv() error {
	if v := os.Getenv("SERVER_ADDRESS"); v != "" {
		o.Address = v
	}
	if v := os.Getenv("NOTES_STORE"); v != "" {
		o.Store = v
	}
	if v := os.Getenv("DATABASE_DSN"); v != "" {
		o.DatabaseDSN = v
	}
	if v := os.Getenv("NOTES_PATH"); v != "" {
		o.StoragePath = v
	}
	if v := os.Getenv("NOTES_DELAY"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("NOTES_DELAY: %w", err)
		}
		o.Delay = d
	}
	if v := os.Getenv("NOTES_PALETTE"); v != "" {
		id, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("NOTES_PALETTE: %w", err)
		}
		o.Palette = id
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		o.LogLevel = v
	}
	return nil
}

// Validate checks that the selected store has what it needs.
func (o *Options) Validate() error {
	switch o.Store {
	case StoreMemory:
	case StoreFile:
		if o.StoragePath == "" {
			return errors.New("file store requires a storage path")
		}
	case StorePostgres, StoreSQLite:
		if o.DatabaseDSN == "" {
			return fmt.Errorf("%s store requires a DSN", o.Store)
		}
	default:
		return fmt.Errorf("unknown store %q", o.Store)
	}
	if o.Delay < 0 {
		return fmt.Errorf("negative delay %s", o.Delay)
	}
	return nil
}

// Parse builds options from command-line arguments, the config file and the
// environment.
func Parse(args []string) (*Options, error) {
	o := Default()
	fs := pflag.NewFlagSet("notekeeper", pflag.ContinueOnError)
	o.RegisterFlags(fs)
	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if err := o.Resolve(fs); err != nil {
		return nil, err
	}
	return o, nil
}
