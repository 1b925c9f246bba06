package view

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/atinyakov/NoteKeeper/internal/models"
	"github.com/atinyakov/NoteKeeper/internal/service"
	"github.com/atinyakov/NoteKeeper/internal/theme"
)

type fakeSource struct {
	snap service.Snapshot
}

func (f *fakeSource) Snapshot() service.Snapshot { return f.snap }

func TestModel_State(t *testing.T) {
	src := &fakeSource{snap: service.Snapshot{
		Notes: []models.Note{
			{ID: "1", Title: "Shopping", Desc: "milk"},
			{ID: "2", Title: "Work", Desc: "report"},
		},
		Busy: true,
	}}
	m := NewModel(src, theme.NewSelector(theme.Palettes, 2))

	st := m.State()
	assert.Len(t, st.Notes, 2)
	assert.Equal(t, 2, st.Total)
	assert.True(t, st.Loading)
	assert.Equal(t, "rose-palette", st.Theme.Name)

	m.SetQuery("MILK")
	st = m.State()
	assert.Equal(t, "MILK", st.Query)
	assert.Equal(t, []models.Note{{ID: "1", Title: "Shopping", Desc: "milk"}}, st.Notes)
	assert.Equal(t, 2, st.Total)
}

func TestModel_RecomputesOnCollectionChange(t *testing.T) {
	src := &fakeSource{}
	m := NewModel(src, theme.NewSelector(theme.Palettes, 0))
	m.SetQuery("work")
	assert.Empty(t, m.State().Notes)

	src.snap.Notes = []models.Note{{ID: "2", Title: "Work"}}
	assert.Len(t, m.State().Notes, 1)
}

func TestModel_StateForDoesNotStoreQuery(t *testing.T) {
	m := NewModel(&fakeSource{}, theme.NewSelector(theme.Palettes, 0))
	m.SetQuery("a")
	assert.Equal(t, "b", m.StateFor("b").Query)
	assert.Equal(t, "a", m.Query())
}

func TestModel_ThemeChange(t *testing.T) {
	themes := theme.NewSelector(theme.Palettes, 0)
	m := NewModel(&fakeSource{}, themes)

	_, err := themes.Select(4)
	assert.NoError(t, err)
	assert.Equal(t, "black-palette", m.State().Theme.Name)
}
