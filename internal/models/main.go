// Package models defines the core data structures for notes, notifications
// and view intents.
package models

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Note is a single user-authored record.
type Note struct {
	// ID is the unique identifier assigned when the note is created.
	ID string
	// Title is the display string shown on the note card.
	Title string
	// Desc is the body of the note.
	Desc string
	// Extra holds unknown fields read from a snapshot; they are written back as is.
	Extra map[string]json.RawMessage
}

const (
	fieldID    = "id"
	fieldTitle = "title"
	fieldDesc  = "desc"
)

// MarshalJSON writes the note as {id, title, desc} plus any extra fields.
func (n Note) MarshalJSON() ([]byte, error) {
	out := make(map[string]any, len(n.Extra)+3)
	for k, v := range n.Extra {
		out[k] = v
	}
	out[fieldID] = n.ID
	out[fieldTitle] = n.Title
	out[fieldDesc] = n.Desc
	return json.Marshal(out)
}

// UnmarshalJSON reads a note object. A numeric id is kept as its decimal
// text and null strings decode to "".
func (n *Note) UnmarshalJSON(data []byte) error {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return fmt.Errorf("note: %w", err)
	}
	if fields == nil {
		return fmt.Errorf("note: not an object")
	}

	var note Note
	for k, raw := range fields {
		var err error
		switch k {
		case fieldID:
			note.ID, err = decodeID(raw)
		case fieldTitle:
			note.Title, err = decodeString(raw)
		case fieldDesc:
			note.Desc, err = decodeString(raw)
		default:
			if note.Extra == nil {
				note.Extra = make(map[string]json.RawMessage)
			}
			note.Extra[k] = raw
		}
		if err != nil {
			return fmt.Errorf("note field %q: %w", k, err)
		}
	}
	*n = note
	return nil
}

func decodeString(raw json.RawMessage) (string, error) {
	if bytes.Equal(bytes.TrimSpace(raw), []byte("null")) {
		return "", nil
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return "", err
	}
	return s, nil
}

func decodeID(raw json.RawMessage) (string, error) {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return "", err
	}
	switch id := v.(type) {
	case nil:
		return "", nil
	case string:
		return id, nil
	case json.Number:
		return id.String(), nil
	default:
		return "", fmt.Errorf("unsupported id type %T", v)
	}
}

// Severity is the display style of a notification.
type Severity string

const (
	// SeveritySuccess styles a completed creation.
	SeveritySuccess Severity = "success"
	// SeverityInfo styles a completed edit.
	SeverityInfo Severity = "info"
	// SeverityError styles deletions and failures alike; it carries no outcome.
	SeverityError Severity = "error"
)

// NotificationKind says which outcome a notification reports.
type NotificationKind string

const (
	// NoteCreated reports that a note was appended.
	NoteCreated NotificationKind = "created"
	// NoteUpdated reports that an edit was applied.
	NoteUpdated NotificationKind = "updated"
	// NoteDeleted reports that a removal was applied.
	NoteDeleted NotificationKind = "deleted"
	// OperationFailed reports a failure such as a snapshot that could not be saved.
	OperationFailed NotificationKind = "failed"
)

// Notification is an outcome event emitted by the note service.
type Notification struct {
	Kind     NotificationKind `json:"kind"`
	Severity Severity         `json:"severity"`
	Message  string           `json:"message"`
}

// Intents tells the view layer which modals should be open.
type Intents struct {
	// EditorOpen is true while the create/edit form is shown.
	EditorOpen bool `json:"editorOpen"`
	// Editing is the note loaded into the form; nil means a new note.
	Editing *Note `json:"editing,omitempty"`
	// PreviewOpen is true while the details view is shown.
	PreviewOpen bool `json:"previewOpen"`
	// Previewing is the note shown in the details view.
	Previewing *Note `json:"previewing,omitempty"`
}
