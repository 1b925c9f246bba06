// Package repository provides the persistence adapter that stores the note
// collection as one JSON snapshot in a key-value store.
package repository

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/atinyakov/NoteKeeper/internal/models"
	"github.com/atinyakov/NoteKeeper/internal/storage"
)

// NotesKey is the key holding the serialized collection.
const NotesKey = "notes"

var (
	// ErrSnapshotMissing means no snapshot has been saved yet.
	ErrSnapshotMissing = errors.New("snapshot missing")
	// ErrSnapshotCorrupt means the stored value is not a JSON array of notes.
	ErrSnapshotCorrupt = errors.New("snapshot corrupt")
	// ErrSnapshotWrite wraps failures to store a snapshot.
	ErrSnapshotWrite = errors.New("snapshot write failed")
)

// NoteRepository reads and writes the note collection under NotesKey.
type NoteRepository struct {
	store storage.Store
	log   *zap.Logger
}

// NewNoteRepository creates a NoteRepository on top of store. A nil logger
// disables logging.
func NewNoteRepository(store storage.Store, log *zap.Logger) *NoteRepository {
	if log == nil {
		log = zap.NewNop()
	}
	return &NoteRepository{store: store, log: log}
}

// Load returns the last saved collection. ok is false when nothing usable is
// stored: a missing key, a failed read or a malformed value are all treated
// as absent.
func (r *NoteRepository) Load(ctx context.Context) ([]models.Note, bool) {
	raw, found, err := r.store.Get(ctx, NotesKey)
	if err != nil {
		r.log.Warn("failed to read notes snapshot", zap.Error(err))
		return nil, false
	}
	if !found {
		r.log.Debug("no notes snapshot", zap.Error(ErrSnapshotMissing))
		return nil, false
	}

	notes, err := Decode(raw)
	if err != nil {
		r.log.Warn("ignoring notes snapshot", zap.Error(err))
		return nil, false
	}
	return notes, true
}

// Save overwrites the stored snapshot with notes.
func (r *NoteRepository) Save(ctx context.Context, notes []models.Note) error {
	raw, err := Encode(notes)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrSnapshotWrite, err)
	}
	if err := r.store.Set(ctx, NotesKey, raw); err != nil {
		return fmt.Errorf("%w: %w", ErrSnapshotWrite, err)
	}
	return nil
}

// Encode serializes notes as a JSON array. A nil slice encodes as [].
func Encode(notes []models.Note) (string, error) {
	if notes == nil {
		notes = []models.Note{}
	}
	b, err := json.Marshal(notes)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// Decode parses a snapshot. Anything other than a JSON array of note objects
// yields ErrSnapshotCorrupt.
func Decode(raw string) ([]models.Note, error) {
	trimmed := bytes.TrimSpace([]byte(raw))
	if len(trimmed) == 0 || trimmed[0] != '[' {
		return nil, fmt.Errorf("%w: not a JSON array", ErrSnapshotCorrupt)
	}

	notes := []models.Note{}
	if err := json.Unmarshal(trimmed, &notes); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSnapshotCorrupt, err)
	}
	return notes, nil
}
