// Package search derives the visible subset of the note collection from a
// free-text query.
package search

import (
	"strings"

	"github.com/atinyakov/NoteKeeper/internal/models"
)

// Filter returns, in order, the notes whose title or description contains
// query, ignoring case. An empty query matches every note. The input slice
// is never modified.
func Filter(notes []models.Note, query string) []models.Note {
	q := strings.ToLower(query)
	out := make([]models.Note, 0, len(notes))
	for _, n := range notes {
		if Matches(n, q) {
			out = append(out, n)
		}
	}
	return out
}

// Matches reports whether n matches an already lower-cased query.
func Matches(n models.Note, lowerQuery string) bool {
	if lowerQuery == "" {
		return true
	}
	return strings.Contains(strings.ToLower(n.Title), lowerQuery) ||
		strings.Contains(strings.ToLower(n.Desc), lowerQuery)
}
