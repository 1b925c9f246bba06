// Package service implements the note collection controller: it owns the
// canonical note list, the edit/preview selection and the busy flag, and
// applies create, update and delete after a simulated latency, persisting
// the collection and emitting a notification each time.
package service

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/atinyakov/NoteKeeper/internal/models"
)

// DefaultDelay is the latency applied before a mutation takes effect.
const DefaultDelay = 3 * time.Second

// Notification messages shown for each outcome.
const (
	MsgCreated    = "Note added successfully!"
	MsgUpdated    = "Note edited successfully!"
	MsgDeleted    = "Note deleted successfully!"
	MsgSaveFailed = "Failed to save notes!"
)

// ErrClosed is returned by mutations submitted after Close.
var ErrClosed = errors.New("note service closed")

// NoteRepository defines the persistence operations needed by the NoteService.
type NoteRepository interface {
	// Load returns the last saved collection, or ok == false when none is usable.
	Load(ctx context.Context) (notes []models.Note, ok bool)
	// Save overwrites the saved collection.
	Save(ctx context.Context, notes []models.Note) error
}

// Notifier receives outcome events. It is called with the service lock held
// and must not call back into the service.
type Notifier interface {
	Notify(n models.Notification)
}

// Scheduler runs f once after d. The returned stop function cancels a call
// that has not started yet.
type Scheduler interface {
	AfterFunc(d time.Duration, f func()) (stop func() bool)
}

type timerScheduler struct{}

func (timerScheduler) AfterFunc(d time.Duration, f func()) func() bool {
	return time.AfterFunc(d, f).Stop
}

// Snapshot is a point-in-time copy of the service state.
type Snapshot struct {
	// Notes is the canonical collection in display order.
	Notes []models.Note
	// Busy is true while a mutation waits for its delay to elapse.
	Busy bool
	// Intents are the modal states requested from the view layer.
	Intents models.Intents
}

type operation struct {
	ctx    context.Context
	apply  func(notes []models.Note) []models.Note
	after  func()
	result models.Notification
}

// NoteService is the note collection controller. It is safe for concurrent use.
//
// Mutations are queued: each one waits for the delay after the previous one
// completes and is applied to the collection as that previous one left it,
// so effects always land in submission order.
type NoteService struct {
	repo      NoteRepository
	notifier  Notifier
	scheduler Scheduler
	delay     time.Duration
	log       *zap.Logger

	mu      sync.Mutex
	notes   []models.Note
	intents models.Intents
	queue   []operation
	stop    func() bool
	idle    chan struct{}
	closed  bool
}

// Option configures a NoteService.
type Option func(*NoteService)

// WithDelay sets the simulated latency. Negative values are treated as zero.
func WithDelay(d time.Duration) Option {
	return func(s *NoteService) {
		if d < 0 {
			d = 0
		}
		s.delay = d
	}
}

// WithScheduler replaces time.AfterFunc, mostly for tests.
func WithScheduler(sch Scheduler) Option {
	return func(s *NoteService) { s.scheduler = sch }
}

// WithLogger sets the logger.
func WithLogger(log *zap.Logger) Option {
	return func(s *NoteService) { s.log = log }
}

// NewNoteService constructs a NoteService with an empty collection.
// Call Initialize to hydrate it from repo.
func NewNoteService(repo NoteRepository, notifier Notifier, opts ...Option) *NoteService {
	idle := make(chan struct{})
	close(idle)

	s := &NoteService{
		repo:      repo,
		notifier:  notifier,
		scheduler: timerScheduler{},
		delay:     DefaultDelay,
		log:       zap.NewNop(),
		idle:      idle,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Initialize replaces the collection with the saved snapshot when one is
// available and leaves it untouched otherwise.
func (s *NoteService) Initialize(ctx context.Context) {
	notes, ok := s.repo.Load(ctx)

	s.mu.Lock()
	defer s.mu.Unlock()
	if !ok {
		s.log.Info("starting with an empty collection")
		return
	}
	s.notes = notes
	s.log.Info("notes restored", zap.Int("count", len(notes)))
}

// Create appends candidate after the delay. A nil candidate means the form
// was cancelled and nothing happens.
func (s *NoteService) Create(ctx context.Context, candidate *models.Note) error {
	if candidate == nil {
		return nil
	}
	note := *candidate
	return s.submit(ctx, operation{
		apply: func(notes []models.Note) []models.Note {
			return append(notes, note)
		},
		result: models.Notification{Kind: models.NoteCreated, Severity: models.SeveritySuccess, Message: MsgCreated},
	})
}

// Update replaces the notes whose id matches candidate after the delay and
// clears the edit selection. Nothing is inserted when no note matches. A nil
// candidate is a cancelled form and does nothing.
func (s *NoteService) Update(ctx context.Context, candidate *models.Note) error {
	if candidate == nil {
		return nil
	}
	note := *candidate
	return s.submit(ctx, operation{
		apply: func(notes []models.Note) []models.Note {
			for i := range notes {
				if notes[i].ID == note.ID {
					notes[i] = note
				}
			}
			return notes
		},
		after: func() {
			s.intents.Editing = nil
		},
		result: models.Notification{Kind: models.NoteUpdated, Severity: models.SeverityInfo, Message: MsgUpdated},
	})
}

// Remove drops every note with the given id after the delay. The deleted
// notification uses error severity for styling only.
func (s *NoteService) Remove(ctx context.Context, id string) error {
	return s.submit(ctx, operation{
		apply: func(notes []models.Note) []models.Note {
			kept := make([]models.Note, 0, len(notes))
			for _, n := range notes {
				if n.ID != id {
					kept = append(kept, n)
				}
			}
			return kept
		},
		result: models.Notification{Kind: models.NoteDeleted, Severity: models.SeverityError, Message: MsgDeleted},
	})
}

func (s *NoteService) submit(ctx context.Context, op operation) error {
	// The effect runs after the caller may have returned, so only the
	// context values are kept.
	op.ctx = context.WithoutCancel(ctx)

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrClosed
	}
	if len(s.queue) == 0 {
		s.idle = make(chan struct{})
	}
	s.queue = append(s.queue, op)
	s.log.Debug("mutation queued",
		zap.String("kind", string(op.result.Kind)),
		zap.Int("pending", len(s.queue)),
	)
	if len(s.queue) == 1 {
		s.scheduleLocked()
	}
	return nil
}

func (s *NoteService) scheduleLocked() {
	s.stop = s.scheduler.AfterFunc(s.delay, s.fire)
}

func (s *NoteService) fire() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed || len(s.queue) == 0 {
		return
	}
	op := s.queue[0]
	s.queue[0] = operation{}
	s.queue = s.queue[1:]

	s.notes = op.apply(s.notes)
	if op.after != nil {
		op.after()
	}

	saveErr := s.repo.Save(op.ctx, cloneNotes(s.notes))
	s.log.Info("mutation applied",
		zap.String("kind", string(op.result.Kind)),
		zap.Int("count", len(s.notes)),
	)
	s.notifier.Notify(op.result)
	if saveErr != nil {
		s.log.Error("failed to save notes", zap.Error(saveErr))
		s.notifier.Notify(models.Notification{
			Kind:     models.OperationFailed,
			Severity: models.SeverityError,
			Message:  MsgSaveFailed,
		})
	}

	if len(s.queue) > 0 {
		s.scheduleLocked()
		return
	}
	s.stop = nil
	close(s.idle)
}

// SelectForEdit loads note into the editor and asks the view to open it.
func (s *NoteService) SelectForEdit(note models.Note) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.intents.Editing = &note
	s.intents.EditorOpen = true
}

// SelectForPreview asks the view to show note. The edit selection is kept.
func (s *NoteService) SelectForPreview(note models.Note) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.intents.Previewing = &note
	s.intents.PreviewOpen = true
}

// OpenEditor opens an empty editor for a new note.
func (s *NoteService) OpenEditor() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.intents.Editing = nil
	s.intents.EditorOpen = true
}

// CloseEditor hides the editor.
func (s *NoteService) CloseEditor() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.intents.EditorOpen = false
}

// ClosePreview hides the details view.
func (s *NoteService) ClosePreview() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.intents.PreviewOpen = false
	s.intents.Previewing = nil
}

// Get returns the first note with the given id.
func (s *NoteService) Get(id string) (models.Note, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, n := range s.notes {
		if n.ID == id {
			return n, true
		}
	}
	return models.Note{}, false
}

// Busy reports whether a mutation is waiting for its delay.
func (s *NoteService) Busy() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.queue) > 0
}

// Snapshot returns a copy of the current state.
func (s *NoteService) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	intents := s.intents
	if intents.Editing != nil {
		n := *intents.Editing
		intents.Editing = &n
	}
	if intents.Previewing != nil {
		n := *intents.Previewing
		intents.Previewing = &n
	}
	return Snapshot{
		Notes:   cloneNotes(s.notes),
		Busy:    len(s.queue) > 0,
		Intents: intents,
	}
}

// WaitIdle blocks until no mutation is pending or ctx is done.
func (s *NoteService) WaitIdle(ctx context.Context) error {
	s.mu.Lock()
	idle := s.idle
	s.mu.Unlock()

	select {
	case <-idle:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Close drops pending mutations and suppresses callbacks that fire later.
func (s *NoteService) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return
	}
	s.closed = true
	if s.stop != nil {
		s.stop()
		s.stop = nil
	}
	if len(s.queue) > 0 {
		s.log.Warn("dropping pending mutations", zap.Int("pending", len(s.queue)))
		s.queue = nil
		close(s.idle)
	}
}

func cloneNotes(notes []models.Note) []models.Note {
	out := make([]models.Note, len(notes))
	copy(out, notes)
	return out
}
