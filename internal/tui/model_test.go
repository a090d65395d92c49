package tui

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/MKhiriev/go-study-sync/internal/adapter"
	"github.com/MKhiriev/go-study-sync/models"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeTab struct {
	title   string
	items   []row
	st      models.SyncStatus
	created [][]string
	removed []string
	err     error
	ch      chan struct{}
}

func (f *fakeTab) name() string              { return f.title }
func (f *fakeTab) rows() []row               { return f.items }
func (f *fakeTab) status() models.SyncStatus { return f.st }
func (f *fakeTab) fields() []string          { return []string{"Title", "Description"} }
func (f *fakeTab) changes() <-chan struct{}  { return f.ch }
func (f *fakeTab) remove(_ context.Context, id string) error {
	f.removed = append(f.removed, id)
	return f.err
}
func (f *fakeTab) create(_ context.Context, values []string) error {
	f.created = append(f.created, values)
	return f.err
}

type fakeSyncer struct {
	calls int
	err   error
}

func (f *fakeSyncer) Initialize(context.Context) error { return nil }
func (f *fakeSyncer) SyncAll(context.Context) error    { f.calls++; return f.err }
func (f *fakeSyncer) DrainAll(context.Context) error   { return nil }
func (f *fakeSyncer) Statuses() map[string]models.SyncStatus {
	return nil
}

type fakeReviews struct {
	due    []*models.Flashcard
	graded map[string]int
}

func (f *fakeReviews) Due(time.Time) []*models.Flashcard { return f.due }
func (f *fakeReviews) Grade(_ context.Context, id string, grade int) (*models.Flashcard, error) {
	if f.graded == nil {
		f.graded = make(map[string]int)
	}
	f.graded[id] = grade
	return &models.Flashcard{Record: models.Record{ID: id}}, nil
}

type staticNetwork bool

func (s staticNetwork) Online() bool { return bool(s) }

func newTestModel(tabs ...tab) (model, *fakeSyncer, *fakeReviews) {
	syncer := &fakeSyncer{}
	reviews := &fakeReviews{}
	m := newModel(context.Background(), dependencies{
		tabs:    tabs,
		network: staticNetwork(true),
		syncer:  syncer,
		reviews: reviews,
	})
	return m, syncer, reviews
}

func press(t *testing.T, m model, keys ...string) (model, tea.Cmd) {
	t.Helper()
	var cmd tea.Cmd
	for _, k := range keys {
		var msg tea.KeyMsg
		switch k {
		case "enter":
			msg = tea.KeyMsg{Type: tea.KeyEnter}
		case "esc":
			msg = tea.KeyMsg{Type: tea.KeyEsc}
		case "tab":
			msg = tea.KeyMsg{Type: tea.KeyTab}
		case "down":
			msg = tea.KeyMsg{Type: tea.KeyDown}
		case "up":
			msg = tea.KeyMsg{Type: tea.KeyUp}
		case " ":
			msg = tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}}
		default:
			msg = tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(k)}
		}
		updated, c := m.Update(msg)
		m = updated.(model)
		cmd = c
	}
	return m, cmd
}

// run executes cmd and feeds its message back into the model.
func run(t *testing.T, m model, cmd tea.Cmd) model {
	t.Helper()
	require.NotNil(t, cmd)
	updated, _ := m.Update(cmd())
	return updated.(model)
}

func decks() *fakeTab {
	return &fakeTab{title: "Decks", items: []row{{id: "d1", title: "Go"}, {id: "temp_x", title: "SQL", pending: true}}}
}

func TestModel_SwitchTabs(t *testing.T) {
	m, _, _ := newTestModel(decks(), &fakeTab{title: "Notes"})

	m, _ = press(t, m, "tab")
	assert.Equal(t, 1, m.active)

	m, _ = press(t, m, "tab")
	assert.Equal(t, 0, m.active, "wraps around")

	m, _ = press(t, m, "2")
	assert.Equal(t, 1, m.active)

	m, _ = press(t, m, "9")
	assert.Equal(t, 1, m.active, "out of range digit is ignored")
}

func TestModel_CursorStaysInRange(t *testing.T) {
	m, _, _ := newTestModel(decks())

	m, _ = press(t, m, "down", "down", "down")
	assert.Equal(t, 1, m.cursor[0])

	m, _ = press(t, m, "up", "up")
	assert.Equal(t, 0, m.cursor[0])
}

func TestModel_ChangeClampsCursor(t *testing.T) {
	tab := decks()
	tab.ch = make(chan struct{}, 1)
	m, _, _ := newTestModel(tab)
	m, _ = press(t, m, "down")

	tab.items = tab.items[:1]
	updated, cmd := m.Update(changedMsg{tab: 0})
	m = updated.(model)

	assert.Equal(t, 0, m.cursor[0])
	assert.NotNil(t, cmd, "keeps listening for changes")
}

func TestModel_CreateFlow(t *testing.T) {
	tab := decks()
	m, _, _ := newTestModel(tab)

	m, _ = press(t, m, "n")
	require.Equal(t, modeCreate, m.mode)

	m, _ = press(t, m, "B", "i", "o", "tab", "c", "e", "l", "l", "s")
	m, cmd := press(t, m, "enter")
	assert.True(t, m.form.saving)

	m = run(t, m, cmd)

	assert.Equal(t, modeList, m.mode)
	assert.Equal(t, "Saved", m.status)
	require.Len(t, tab.created, 1)
	assert.Equal(t, []string{"Bio", "cells"}, tab.created[0])
}

func TestModel_CreateErrorKeepsForm(t *testing.T) {
	tab := decks()
	tab.err = errors.New("title is required")
	m, _, _ := newTestModel(tab)

	m, _ = press(t, m, "n")
	m, cmd := press(t, m, "enter")
	m = run(t, m, cmd)

	assert.Equal(t, modeCreate, m.mode)
	assert.False(t, m.form.saving)
	assert.Equal(t, "title is required", m.form.err)

	m, _ = press(t, m, "esc")
	assert.Equal(t, modeList, m.mode)
}

func TestModel_DeleteNeedsConfirmation(t *testing.T) {
	tab := decks()
	m, _, _ := newTestModel(tab)

	m, _ = press(t, m, "down", "d")
	require.Equal(t, modeConfirmDelete, m.mode)

	m, _ = press(t, m, "n")
	assert.Equal(t, modeList, m.mode)
	assert.Empty(t, tab.removed)

	m, _ = press(t, m, "d")
	m, cmd := press(t, m, "y")
	m = run(t, m, cmd)

	assert.Equal(t, []string{"temp_x"}, tab.removed)
	assert.Equal(t, "Deleted", m.status)
}

func TestModel_Sync(t *testing.T) {
	m, syncer, _ := newTestModel(decks())

	m, cmd := press(t, m, "s")
	assert.True(t, m.syncing)

	_, again := press(t, m, "s")
	assert.Nil(t, again, "no second sync while one is running")

	m = run(t, m, cmd)
	assert.False(t, m.syncing)
	assert.Equal(t, 1, syncer.calls)
	assert.Equal(t, "Sync finished", m.status)
}

func TestModel_SyncOfflineIsHumanized(t *testing.T) {
	m, syncer, _ := newTestModel(decks())
	syncer.err = adapter.ErrNetwork

	m, cmd := press(t, m, "s")
	m = run(t, m, cmd)

	assert.Contains(t, m.errMsg, "unreachable")
}

func TestModel_CopyID(t *testing.T) {
	var copied string
	orig := copyToClipboard
	copyToClipboard = func(s string) error { copied = s; return nil }
	t.Cleanup(func() { copyToClipboard = orig })

	m, _, _ := newTestModel(decks())
	m, _ = press(t, m, "c")

	assert.Equal(t, "d1", copied)
	assert.Contains(t, m.status, "d1")
}

func TestModel_Review(t *testing.T) {
	m, _, reviews := newTestModel(decks())
	reviews.due = []*models.Flashcard{
		{Record: models.Record{ID: "f1"}, Front: "2+2", Back: "four"},
		{Record: models.Record{ID: "f2"}, Front: "3+3", Back: "6"},
	}

	m, _ = press(t, m, "r")
	require.Equal(t, modeReview, m.mode)

	m, _ = press(t, m, " ")
	assert.True(t, m.review.revealed)
	assert.Contains(t, m.View(), "four")

	m, cmd := press(t, m, "5")
	m = run(t, m, cmd)
	assert.Equal(t, 5, reviews.graded["f1"])
	assert.Equal(t, 1, m.review.idx)
	assert.False(t, m.review.revealed)

	m, cmd = press(t, m, "7")
	assert.Nil(t, cmd, "grades above 5 are ignored")

	m, cmd = press(t, m, "0")
	m = run(t, m, cmd)
	assert.Equal(t, 0, reviews.graded["f2"])
	assert.Contains(t, m.View(), "2 card(s) reviewed")

	m, _ = press(t, m, "esc")
	assert.Equal(t, modeList, m.mode)
}

func TestModel_Notifications(t *testing.T) {
	ch := make(chan models.Notification, 1)
	m, _, _ := newTestModel(decks())
	m.deps.notifications = ch

	updated, cmd := m.Update(notificationMsg{n: models.Notification{Level: models.NotifyError, Collection: "decks", Message: "dropped"}})
	m = updated.(model)
	assert.Equal(t, "decks: dropped", m.errMsg)
	assert.NotNil(t, cmd)

	updated, _ = m.Update(notificationMsg{n: models.Notification{Level: models.NotifySuccess, Message: "synced"}})
	m = updated.(model)
	assert.Equal(t, "synced", m.status)
}

func TestModel_ViewShowsStatusAndPending(t *testing.T) {
	tab := decks()
	now := time.Date(2026, 1, 2, 3, 4, 5, 0, time.Local)
	tab.st = models.SyncStatus{Phase: models.PhaseIdle, PendingCount: 2, LastSyncAt: &now}
	m, _, _ := newTestModel(tab)

	view := m.View()

	assert.Contains(t, view, "online")
	assert.Contains(t, view, "pending: 2")
	assert.Contains(t, view, "03:04:05")
	assert.Contains(t, view, "not synced")
}

func TestModel_BuildInfo(t *testing.T) {
	m, _, _ := newTestModel(decks())
	m.deps.buildInfo = models.NewAppBuildInfo("1.0.0", "", "abc")

	m, _ = press(t, m, "v")
	require.Equal(t, modeBuildInfo, m.mode)
	assert.Contains(t, m.View(), "1.0.0")

	m, _ = press(t, m, "esc")
	assert.Equal(t, modeList, m.mode)
}

func TestModel_Quit(t *testing.T) {
	m, _, _ := newTestModel(decks())

	_, cmd := press(t, m, "q")

	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())
}
