package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// FileStore keeps all keys in one JSON object on disk. Every Set rewrites the
// file through a temporary file and a rename.
type FileStore struct {
	path   string
	mu     sync.Mutex
	values map[string]string
}

// NewFileStore opens the store at path. A missing file yields an empty store;
// a file that is not a JSON object of strings is an error.
func NewFileStore(path string) (*FileStore, error) {
	fs := &FileStore{path: path, values: make(map[string]string)}
	if err := fs.load(); err != nil {
		return nil, err
	}
	return fs, nil
}

func (fs *FileStore) load() error {
	f, err := os.Open(fs.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("open store file: %w", err)
	}
	defer f.Close()

	if err := json.NewDecoder(f).Decode(&fs.values); err != nil {
		return fmt.Errorf("decode store file %s: %w", fs.path, err)
	}
	if fs.values == nil {
		fs.values = make(map[string]string)
	}
	return nil
}

// Path returns the file backing the store.
func (fs *FileStore) Path() string {
	return fs.path
}

func (fs *FileStore) Get(_ context.Context, key string) (string, bool, error) {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	v, ok := fs.values[key]
	return v, ok, nil
}

func (fs *FileStore) Set(_ context.Context, key, value string) error {
	fs.mu.Lock()
	defer fs.mu.Unlock()

	prev, had := fs.values[key]
	fs.values[key] = value
	if err := fs.save(); err != nil {
		if had {
			fs.values[key] = prev
		} else {
			delete(fs.values, key)
		}
		return err
	}
	return nil
}

func (fs *FileStore) save() error {
	dir := filepath.Dir(fs.path)
	tmp, err := os.CreateTemp(dir, filepath.Base(fs.path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if err := json.NewEncoder(tmp).Encode(fs.values); err != nil {
		tmp.Close()
		return fmt.Errorf("encode store file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Rename(tmp.Name(), fs.path); err != nil {
		return fmt.Errorf("replace store file: %w", err)
	}
	return nil
}
