package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/atinyakov/NoteKeeper/internal/middleware"
)

// NewRouter constructs and returns an HTTP handler that serves the view API.
//
// Routes:
//
//	GET    /api/state               → stateHandler.State
//	POST   /api/notes               → notesHandler.Create
//	PUT    /api/notes/{id}          → notesHandler.Update
//	DELETE /api/notes/{id}          → notesHandler.Delete
//	POST   /api/notes/{id}/edit     → notesHandler.Edit
//	POST   /api/notes/{id}/preview  → notesHandler.Preview
//	DELETE /api/editor              → notesHandler.CloseEditor
//	DELETE /api/preview             → notesHandler.ClosePreview
//	GET    /api/themes              → themeHandler.List
//	PUT    /api/theme               → themeHandler.Select
//	GET    /api/notifications       → notificationHandler.Drain
//
// Middleware chain (applied in order):
//  1. Recoverer: turns panics into 500s
//  2. AllowContentType("application/json"): rejects non-JSON bodies
//  3. WithRequestLogging(logger): logs each request
func NewRouter(
	notesHandler *NotesHandler,
	stateHandler *StateHandler,
	themeHandler *ThemeHandler,
	notificationHandler *NotificationHandler,
	logger *zap.Logger,
) http.Handler {
	r := chi.NewRouter()

	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.AllowContentType("application/json"))
	r.Use(middleware.WithRequestLogging(logger))

	r.Route("/api", func(r chi.Router) {
		r.Get("/state", stateHandler.State)

		r.Route("/notes", func(r chi.Router) {
			r.Post("/", notesHandler.Create)
			r.Put("/{id}", notesHandler.Update)
			r.Delete("/{id}", notesHandler.Delete)
			r.Post("/{id}/edit", notesHandler.Edit)
			r.Post("/{id}/preview", notesHandler.Preview)
		})
		r.Delete("/editor", notesHandler.CloseEditor)
		r.Delete("/preview", notesHandler.ClosePreview)

		r.Get("/themes", themeHandler.List)
		r.Put("/theme", themeHandler.Select)

		r.Get("/notifications", notificationHandler.Drain)
	})

	return r
}
