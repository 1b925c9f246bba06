package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/atinyakov/NoteKeeper/internal/models"
	"github.com/atinyakov/NoteKeeper/internal/theme"
	"github.com/atinyakov/NoteKeeper/internal/view"
)

// ViewModel derives the rendered state for a search query.
type ViewModel interface {
	StateFor(query string) view.State
}

// StateHandler serves the derived view state.
type StateHandler struct {
	View ViewModel
}

// State handles GET /api/state?q=.
func (h *StateHandler) State(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.View.StateFor(r.URL.Query().Get("q")))
}

// ThemeSelector lists palettes and changes the current one.
type ThemeSelector interface {
	List() []theme.Palette
	Select(id int) (theme.Palette, error)
}

// ThemeHandler handles palette requests.
type ThemeHandler struct {
	Themes ThemeSelector
}

// List handles GET /api/themes.
func (h *ThemeHandler) List(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, h.Themes.List())
}

// Select handles PUT /api/theme with a body of {"id": n}.
func (h *ThemeHandler) Select(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ID int `json:"id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid body", http.StatusBadRequest)
		return
	}

	p, err := h.Themes.Select(req.ID)
	if errors.Is(err, theme.ErrUnknownPalette) {
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

// NotificationSource hands out pending notifications once.
type NotificationSource interface {
	Drain() []models.Notification
}

// NotificationHandler serves pending notifications.
type NotificationHandler struct {
	Source NotificationSource
}

// Drain handles GET /api/notifications. Each notification is returned once.
func (h *NotificationHandler) Drain(w http.ResponseWriter, _ *http.Request) {
	pending := h.Source.Drain()
	if pending == nil {
		pending = []models.Notification{}
	}
	writeJSON(w, http.StatusOK, pending)
}
