// Package http provides the HTTP view API: note mutations, selection
// intents, derived view state, themes and pending notifications.
package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/atinyakov/NoteKeeper/internal/models"
	"github.com/atinyakov/NoteKeeper/internal/service"
)

// NoteService defines the note operations required by the NotesHandler.
type NoteService interface {
	// Create appends the note after the configured delay; nil cancels.
	Create(ctx context.Context, note *models.Note) error
	// Update replaces the note with the same id after the delay; nil cancels.
	Update(ctx context.Context, note *models.Note) error
	// Remove deletes notes with the id after the delay.
	Remove(ctx context.Context, id string) error
	// Get looks a note up by id.
	Get(id string) (models.Note, bool)
	SelectForEdit(note models.Note)
	SelectForPreview(note models.Note)
	CloseEditor()
	ClosePreview()
}

// NotesHandler handles HTTP requests that change notes or selection.
type NotesHandler struct {
	Notes NoteService
}

// Create handles POST /api/notes. The body is a note; an empty id is
// replaced by a fresh UUID. A JSON null body is a cancelled form and yields
// 204. Accepted notes are returned with 202 because they become visible
// only after the delay.
func (h *NotesHandler) Create(w http.ResponseWriter, r *http.Request) {
	note, ok := decodeNote(w, r)
	if !ok {
		return
	}
	if note == nil {
		_ = h.Notes.Create(r.Context(), nil)
		w.WriteHeader(http.StatusNoContent)
		return
	}
	if note.ID == "" {
		note.ID = uuid.NewString()
	}

	if err := h.Notes.Create(r.Context(), note); err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusAccepted, note)
}

// Update handles PUT /api/notes/{id}. The id in the path wins over the body.
// A JSON null body cancels the edit. The editor is closed either way.
func (h *NotesHandler) Update(w http.ResponseWriter, r *http.Request) {
	note, ok := decodeNote(w, r)
	if !ok {
		return
	}
	defer h.Notes.CloseEditor()

	if note == nil {
		_ = h.Notes.Update(r.Context(), nil)
		w.WriteHeader(http.StatusNoContent)
		return
	}
	note.ID = chi.URLParam(r, "id")

	if err := h.Notes.Update(r.Context(), note); err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusAccepted, note)
}

// Delete handles DELETE /api/notes/{id}. Unknown ids are accepted too.
func (h *NotesHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.Notes.Remove(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusAccepted)
}

// Edit handles POST /api/notes/{id}/edit by opening the editor on the note.
func (h *NotesHandler) Edit(w http.ResponseWriter, r *http.Request) {
	note, found := h.Notes.Get(chi.URLParam(r, "id"))
	if !found {
		http.Error(w, "note not found", http.StatusNotFound)
		return
	}
	h.Notes.SelectForEdit(note)
	w.WriteHeader(http.StatusNoContent)
}

// Preview handles POST /api/notes/{id}/preview by opening the details view.
func (h *NotesHandler) Preview(w http.ResponseWriter, r *http.Request) {
	note, found := h.Notes.Get(chi.URLParam(r, "id"))
	if !found {
		http.Error(w, "note not found", http.StatusNotFound)
		return
	}
	h.Notes.SelectForPreview(note)
	w.WriteHeader(http.StatusNoContent)
}

// CloseEditor handles DELETE /api/editor.
func (h *NotesHandler) CloseEditor(w http.ResponseWriter, _ *http.Request) {
	h.Notes.CloseEditor()
	w.WriteHeader(http.StatusNoContent)
}

// ClosePreview handles DELETE /api/preview.
func (h *NotesHandler) ClosePreview(w http.ResponseWriter, _ *http.Request) {
	h.Notes.ClosePreview()
	w.WriteHeader(http.StatusNoContent)
}

func decodeNote(w http.ResponseWriter, r *http.Request) (*models.Note, bool) {
	var note *models.Note
	if err := json.NewDecoder(r.Body).Decode(&note); err != nil {
		http.Error(w, "invalid body", http.StatusBadRequest)
		return nil, false
	}
	return note, true
}

func writeServiceError(w http.ResponseWriter, err error) {
	if errors.Is(err, service.ErrClosed) {
		http.Error(w, err.Error(), http.StatusServiceUnavailable)
		return
	}
	http.Error(w, err.Error(), http.StatusInternalServerError)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
