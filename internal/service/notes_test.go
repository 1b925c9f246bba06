package service

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/atinyakov/NoteKeeper/internal/models"
	"github.com/atinyakov/NoteKeeper/internal/notify"
)

// manualScheduler records scheduled callbacks and runs them on demand.
type manualScheduler struct {
	mu    sync.Mutex
	tasks []*task
}

type task struct {
	d       time.Duration
	f       func()
	stopped bool
}

func (m *manualScheduler) AfterFunc(d time.Duration, f func()) func() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	t := &task{d: d, f: f}
	m.tasks = append(m.tasks, t)
	return func() bool {
		m.mu.Lock()
		defer m.mu.Unlock()
		if t.stopped {
			return false
		}
		t.stopped = true
		return true
	}
}

// fireNext runs the oldest live callback and reports whether one ran.
func (m *manualScheduler) fireNext() bool {
	m.mu.Lock()
	var next *task
	for len(m.tasks) > 0 {
		t := m.tasks[0]
		m.tasks = m.tasks[1:]
		if !t.stopped {
			t.stopped = true
			next = t
			break
		}
	}
	m.mu.Unlock()

	if next == nil {
		return false
	}
	next.f()
	return true
}

func (m *manualScheduler) pending() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, t := range m.tasks {
		if !t.stopped {
			n++
		}
	}
	return n
}

// mockRepo records saved snapshots.
type mockRepo struct {
	loaded  []models.Note
	hasLoad bool
	saveErr error
	saves   [][]models.Note
}

func (r *mockRepo) Load(context.Context) ([]models.Note, bool) {
	return r.loaded, r.hasLoad
}

func (r *mockRepo) Save(_ context.Context, notes []models.Note) error {
	r.saves = append(r.saves, notes)
	return r.saveErr
}

func (r *mockRepo) lastSave() []models.Note {
	if len(r.saves) == 0 {
		return nil
	}
	return r.saves[len(r.saves)-1]
}

var (
	shopping = models.Note{ID: "1", Title: "Shopping", Desc: "milk"}
	work     = models.Note{ID: "2", Title: "Work", Desc: "report"}
)

func newTestService(t *testing.T, initial ...models.Note) (*NoteService, *mockRepo, *manualScheduler, *notify.Queue) {
	t.Helper()
	repo := &mockRepo{}
	if initial != nil {
		repo.loaded = initial
		repo.hasLoad = true
	}
	sch := &manualScheduler{}
	q := notify.NewQueue(0)
	svc := NewNoteService(repo, q, WithScheduler(sch), WithDelay(3*time.Second))
	svc.Initialize(context.Background())
	return svc, repo, sch, q
}

func TestInitialize(t *testing.T) {
	svc, _, _, _ := newTestService(t, shopping)
	assert.Equal(t, []models.Note{shopping}, svc.Snapshot().Notes)

	empty, _, _, _ := newTestService(t)
	assert.Empty(t, empty.Snapshot().Notes)
}

func TestCreate_Scenario(t *testing.T) {
	ctx := context.Background()
	svc, repo, sch, q := newTestService(t, shopping)

	require.NoError(t, svc.Create(ctx, &work))

	// nothing is visible until the delay elapses
	snap := svc.Snapshot()
	assert.True(t, snap.Busy)
	assert.Equal(t, []models.Note{shopping}, snap.Notes)
	assert.Empty(t, repo.saves)
	assert.Zero(t, q.Len())
	require.Equal(t, 1, sch.pending())
	assert.Equal(t, 3*time.Second, sch.tasks[0].d)

	require.True(t, sch.fireNext())

	snap = svc.Snapshot()
	assert.False(t, snap.Busy)
	assert.Equal(t, []models.Note{shopping, work}, snap.Notes)
	assert.Equal(t, snap.Notes, repo.lastSave())
	assert.Equal(t, []models.Notification{{
		Kind: models.NoteCreated, Severity: models.SeveritySuccess, Message: "Note added successfully!",
	}}, q.Drain())
}

func TestUpdate_Scenario(t *testing.T) {
	ctx := context.Background()
	svc, repo, sch, q := newTestService(t, shopping, work)

	svc.SelectForEdit(shopping)
	edited := models.Note{ID: "1", Title: "Shopping List", Desc: "milk,eggs"}
	require.NoError(t, svc.Update(ctx, &edited))
	assert.NotNil(t, svc.Snapshot().Intents.Editing, "selection is kept until the delay elapses")

	require.True(t, sch.fireNext())

	snap := svc.Snapshot()
	assert.Equal(t, []models.Note{edited, work}, snap.Notes, "position is unchanged")
	assert.Nil(t, snap.Intents.Editing)
	assert.Equal(t, snap.Notes, repo.lastSave())
	assert.Equal(t, []models.Notification{{
		Kind: models.NoteUpdated, Severity: models.SeverityInfo, Message: "Note edited successfully!",
	}}, q.Drain())
}

func TestRemove_Scenario(t *testing.T) {
	svc, repo, sch, q := newTestService(t, shopping, work)

	require.NoError(t, svc.Remove(context.Background(), "1"))
	assert.True(t, svc.Busy())
	require.True(t, sch.fireNext())

	assert.Equal(t, []models.Note{work}, svc.Snapshot().Notes)
	assert.Equal(t, []models.Note{work}, repo.lastSave())
	got := q.Drain()
	require.Len(t, got, 1)
	assert.Equal(t, models.NoteDeleted, got[0].Kind)
	assert.Equal(t, models.SeverityError, got[0].Severity)
	assert.Equal(t, "Note deleted successfully!", got[0].Message)
}

func TestRemove_AllMatching(t *testing.T) {
	dup := models.Note{ID: "1", Title: "dup"}
	svc, _, sch, _ := newTestService(t, shopping, work, dup)

	require.NoError(t, svc.Remove(context.Background(), "1"))
	sch.fireNext()

	assert.Equal(t, []models.Note{work}, svc.Snapshot().Notes)
}

func TestNilCandidateIsCancel(t *testing.T) {
	ctx := context.Background()
	svc, repo, sch, q := newTestService(t, shopping)
	svc.SelectForEdit(shopping)

	require.NoError(t, svc.Create(ctx, nil))
	require.NoError(t, svc.Update(ctx, nil))

	snap := svc.Snapshot()
	assert.False(t, snap.Busy)
	assert.Equal(t, []models.Note{shopping}, snap.Notes)
	assert.NotNil(t, snap.Intents.Editing)
	assert.Zero(t, sch.pending())
	assert.Empty(t, repo.saves)
	assert.Zero(t, q.Len())
}

func TestUpdate_UnknownID(t *testing.T) {
	svc, repo, sch, q := newTestService(t, shopping)
	svc.SelectForEdit(shopping)

	ghost := models.Note{ID: "404", Title: "ghost"}
	require.NoError(t, svc.Update(context.Background(), &ghost))
	sch.fireNext()

	snap := svc.Snapshot()
	assert.Equal(t, []models.Note{shopping}, snap.Notes, "no insertion")
	assert.Nil(t, snap.Intents.Editing)
	assert.Equal(t, []models.Note{shopping}, repo.lastSave())
	got := q.Drain()
	require.Len(t, got, 1)
	assert.Equal(t, models.NoteUpdated, got[0].Kind)
}

func TestRemove_UnknownID(t *testing.T) {
	svc, repo, sch, q := newTestService(t, shopping)

	require.NoError(t, svc.Remove(context.Background(), "404"))
	sch.fireNext()

	assert.Equal(t, []models.Note{shopping}, svc.Snapshot().Notes)
	assert.Len(t, repo.saves, 1)
	got := q.Drain()
	require.Len(t, got, 1)
	assert.Equal(t, models.NoteDeleted, got[0].Kind)
}

func TestSaveFailureKeepsMutation(t *testing.T) {
	svc, repo, sch, q := newTestService(t, shopping)
	repo.saveErr = errors.New("quota exceeded")

	require.NoError(t, svc.Create(context.Background(), &work))
	sch.fireNext()

	assert.Equal(t, []models.Note{shopping, work}, svc.Snapshot().Notes)
	assert.False(t, svc.Busy())
	got := q.Drain()
	require.Len(t, got, 2)
	assert.Equal(t, models.NoteCreated, got[0].Kind)
	assert.Equal(t, models.OperationFailed, got[1].Kind)
	assert.Equal(t, models.SeverityError, got[1].Severity)
}

func TestOverlappingMutationsAreQueued(t *testing.T) {
	ctx := context.Background()
	svc, repo, sch, q := newTestService(t, shopping)

	third := models.Note{ID: "3", Title: "Third"}
	require.NoError(t, svc.Create(ctx, &work))
	require.NoError(t, svc.Create(ctx, &third))
	require.NoError(t, svc.Remove(ctx, "1"))
	assert.Equal(t, 1, sch.pending(), "only the head of the queue waits on a timer")

	require.True(t, sch.fireNext())
	assert.Equal(t, []models.Note{shopping, work}, svc.Snapshot().Notes)
	assert.True(t, svc.Busy())

	require.True(t, sch.fireNext())
	assert.Equal(t, []models.Note{shopping, work, third}, svc.Snapshot().Notes)
	assert.True(t, svc.Busy())

	require.True(t, sch.fireNext())
	assert.Equal(t, []models.Note{work, third}, svc.Snapshot().Notes)
	assert.False(t, svc.Busy())
	assert.False(t, sch.fireNext())

	assert.Len(t, repo.saves, 3)
	assert.Equal(t, svc.Snapshot().Notes, repo.lastSave())
	kinds := []models.NotificationKind{}
	for _, n := range q.Drain() {
		kinds = append(kinds, n.Kind)
	}
	assert.Equal(t, []models.NotificationKind{models.NoteCreated, models.NoteCreated, models.NoteDeleted}, kinds)
}

func TestPersistedSnapshotMatchesMemory(t *testing.T) {
	ctx := context.Background()
	svc, repo, sch, _ := newTestService(t)
	rnd := rand.New(rand.NewSource(7))

	for i := 0; i < 200; i++ {
		id := fmt.Sprint(rnd.Intn(10))
		switch rnd.Intn(3) {
		case 0:
			require.NoError(t, svc.Create(ctx, &models.Note{ID: id, Title: "t" + id}))
		case 1:
			require.NoError(t, svc.Update(ctx, &models.Note{ID: id, Title: fmt.Sprint("u", i)}))
		case 2:
			require.NoError(t, svc.Remove(ctx, id))
		}
		require.True(t, sch.fireNext())
		assert.Equal(t, svc.Snapshot().Notes, repo.lastSave(), "step %d", i)
	}
}

func TestCreate_CandidateIsCopied(t *testing.T) {
	svc, _, sch, _ := newTestService(t)

	n := models.Note{ID: "1", Title: "before"}
	require.NoError(t, svc.Create(context.Background(), &n))
	n.Title = "after"
	sch.fireNext()

	got, ok := svc.Get("1")
	require.True(t, ok)
	assert.Equal(t, "before", got.Title)
}

func TestMutationOutlivesCallerContext(t *testing.T) {
	svc, repo, sch, _ := newTestService(t)

	ctx, cancel := context.WithCancel(context.Background())
	require.NoError(t, svc.Create(ctx, &work))
	cancel()
	sch.fireNext()

	assert.Equal(t, []models.Note{work}, svc.Snapshot().Notes)
	assert.Len(t, repo.saves, 1)
}

func TestClose(t *testing.T) {
	ctx := context.Background()
	svc, repo, sch, q := newTestService(t, shopping)

	require.NoError(t, svc.Create(ctx, &work))
	late := sch.tasks[0].f
	svc.Close()
	svc.Close()

	assert.False(t, svc.Busy())
	assert.False(t, sch.fireNext(), "pending timer is stopped")
	late()
	assert.Equal(t, []models.Note{shopping}, svc.Snapshot().Notes)
	assert.Empty(t, repo.saves)
	assert.Zero(t, q.Len())

	assert.ErrorIs(t, svc.Create(ctx, &work), ErrClosed)
	assert.ErrorIs(t, svc.Remove(ctx, "1"), ErrClosed)
	assert.NoError(t, svc.WaitIdle(ctx))
}

func TestWaitIdle(t *testing.T) {
	repo := &mockRepo{}
	svc := NewNoteService(repo, notify.NewQueue(0), WithDelay(10*time.Millisecond))

	assert.NoError(t, svc.WaitIdle(context.Background()), "idle service returns at once")

	require.NoError(t, svc.Create(context.Background(), &shopping))
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	require.NoError(t, svc.WaitIdle(ctx))

	assert.Equal(t, []models.Note{shopping}, svc.Snapshot().Notes)
	assert.False(t, svc.Busy())
}

func TestWaitIdle_ContextDone(t *testing.T) {
	svc, _, _, _ := newTestService(t)
	require.NoError(t, svc.Create(context.Background(), &shopping))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, svc.WaitIdle(ctx), context.Canceled)
}

func TestIntents(t *testing.T) {
	svc, _, _, _ := newTestService(t, shopping, work)

	svc.OpenEditor()
	in := svc.Snapshot().Intents
	assert.True(t, in.EditorOpen)
	assert.Nil(t, in.Editing)

	svc.SelectForEdit(shopping)
	svc.SelectForPreview(work)
	in = svc.Snapshot().Intents
	assert.True(t, in.EditorOpen)
	assert.Equal(t, &shopping, in.Editing)
	assert.True(t, in.PreviewOpen)
	assert.Equal(t, &work, in.Previewing)

	svc.ClosePreview()
	svc.CloseEditor()
	in = svc.Snapshot().Intents
	assert.False(t, in.PreviewOpen)
	assert.Nil(t, in.Previewing)
	assert.False(t, in.EditorOpen)
	assert.Equal(t, &shopping, in.Editing, "closing the editor keeps the selection")
}

func TestSnapshotIsCopy(t *testing.T) {
	svc, _, _, _ := newTestService(t, shopping)
	svc.SelectForEdit(shopping)

	snap := svc.Snapshot()
	snap.Notes[0].Title = "mutated"
	snap.Intents.Editing.Title = "mutated"

	again := svc.Snapshot()
	assert.Equal(t, "Shopping", again.Notes[0].Title)
	assert.Equal(t, "Shopping", again.Intents.Editing.Title)
}

func TestNegativeDelay(t *testing.T) {
	sch := &manualScheduler{}
	svc := NewNoteService(&mockRepo{}, notify.NewQueue(0), WithScheduler(sch), WithDelay(-time.Second))
	require.NoError(t, svc.Create(context.Background(), &shopping))
	assert.Equal(t, time.Duration(0), sch.tasks[0].d)
}
