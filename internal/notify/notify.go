// Package notify delivers note service outcome events to whatever presents
// them: a queue drained by the view, the log, or both.
package notify

import (
	"sync"

	"go.uber.org/zap"

	"github.com/atinyakov/NoteKeeper/internal/models"
)

// Emitter receives notifications. Implementations must not call back into
// the note service.
type Emitter interface {
	Notify(n models.Notification)
}

// EmitterFunc adapts a function to Emitter.
type EmitterFunc func(models.Notification)

func (f EmitterFunc) Notify(n models.Notification) { f(n) }

// Multi fans a notification out to every emitter in order.
type Multi []Emitter

func (m Multi) Notify(n models.Notification) {
	for _, e := range m {
		e.Notify(n)
	}
}

// Queue holds notifications until the view drains them. When limit is
// positive only the newest limit notifications are kept.
type Queue struct {
	mu      sync.Mutex
	limit   int
	pending []models.Notification
}

// NewQueue creates a Queue. A limit of zero keeps everything.
func NewQueue(limit int) *Queue {
	return &Queue{limit: limit}
}

func (q *Queue) Notify(n models.Notification) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.pending = append(q.pending, n)
	if q.limit > 0 && len(q.pending) > q.limit {
		q.pending = append([]models.Notification(nil), q.pending[len(q.pending)-q.limit:]...)
	}
}

// Drain returns the pending notifications, oldest first, and empties the queue.
func (q *Queue) Drain() []models.Notification {
	q.mu.Lock()
	defer q.mu.Unlock()
	out := q.pending
	q.pending = nil
	return out
}

// Len returns the number of pending notifications.
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.pending)
}

// Log writes every notification to a zap logger.
type Log struct {
	log *zap.Logger
}

// NewLog creates a Log emitter.
func NewLog(log *zap.Logger) *Log {
	return &Log{log: log}
}

func (l *Log) Notify(n models.Notification) {
	fields := []zap.Field{
		zap.String("kind", string(n.Kind)),
		zap.String("severity", string(n.Severity)),
	}
	if n.Kind == models.OperationFailed {
		l.log.Error(n.Message, fields...)
		return
	}
	l.log.Info(n.Message, fields...)
}
