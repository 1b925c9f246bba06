// Package view composes the state shown to the user: the canonical
// collection narrowed by the search query, the loading flag, the theme and
// the modal intents.
package view

import (
	"sync"

	"github.com/atinyakov/NoteKeeper/internal/models"
	"github.com/atinyakov/NoteKeeper/internal/search"
	"github.com/atinyakov/NoteKeeper/internal/service"
	"github.com/atinyakov/NoteKeeper/internal/theme"
)

// NoteSource provides the canonical state.
type NoteSource interface {
	Snapshot() service.Snapshot
}

// State is what a view renders.
type State struct {
	// Notes is the visible subset, in display order.
	Notes []models.Note `json:"notes"`
	// Total is the size of the unfiltered collection.
	Total int `json:"total"`
	// Loading is true while a mutation is pending; the list is hidden meanwhile.
	Loading bool           `json:"loading"`
	Query   string         `json:"query"`
	Theme   theme.Palette  `json:"theme"`
	Intents models.Intents `json:"intents"`
}

// Model holds the search query of one view. The visible list is derived on
// every read, so it always reflects the latest collection and query.
type Model struct {
	notes  NoteSource
	themes *theme.Selector

	mu    sync.RWMutex
	query string
}

// NewModel creates a Model with an empty query.
func NewModel(notes NoteSource, themes *theme.Selector) *Model {
	return &Model{notes: notes, themes: themes}
}

// SetQuery replaces the search query.
func (m *Model) SetQuery(q string) {
	m.mu.Lock()
	m.query = q
	m.mu.Unlock()
}

// Query returns the current search query.
func (m *Model) Query() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.query
}

// State derives the view state for the stored query.
func (m *Model) State() State {
	return m.StateFor(m.Query())
}

// StateFor derives the view state for q without storing it.
func (m *Model) StateFor(q string) State {
	snap := m.notes.Snapshot()
	return State{
		Notes:   search.Filter(snap.Notes, q),
		Total:   len(snap.Notes),
		Loading: snap.Busy,
		Query:   q,
		Theme:   m.themes.Current(),
		Intents: snap.Intents,
	}
}
