// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/MKhiriev/go-study-sync/internal/service"
	"github.com/MKhiriev/go-study-sync/models"
	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
)

const statusTick = time.Second

// copyToClipboard is replaced in tests.
var copyToClipboard = clipboard.WriteAll

type mode int

const (
	modeList mode = iota
	modeCreate
	modeConfirmDelete
	modeReview
	modeBuildInfo
)

type connectivity interface {
	Online() bool
}

type dependencies struct {
	tabs          []tab
	network       connectivity
	syncer        service.ClientSyncService
	reviews       service.ReviewService
	notifications <-chan models.Notification
	buildInfo     models.AppBuildInfo
}

type model struct {
	ctx  context.Context
	deps dependencies

	active int
	cursor []int

	mode    mode
	form    formModel
	review  reviewModel
	pending string // id awaiting delete confirmation

	spinner spinner.Model
	syncing bool
	status  string
	errMsg  string

	now func() time.Time
}

func newModel(ctx context.Context, deps dependencies) model {
	s := spinner.New()
	s.Spinner = spinner.MiniDot

	return model{
		ctx:     ctx,
		deps:    deps,
		cursor:  make([]int, len(deps.tabs)),
		spinner: s,
		now:     time.Now,
	}
}

func (m model) Init() tea.Cmd {
	cmds := []tea.Cmd{m.spinner.Tick, tick(), waitForNotification(m.deps.notifications)}
	for i, t := range m.deps.tabs {
		cmds = append(cmds, waitForChange(i, t.changes()))
	}
	return tea.Batch(cmds...)
}

func waitForChange(i int, ch <-chan struct{}) tea.Cmd {
	if ch == nil {
		return nil
	}
	return func() tea.Msg {
		if _, ok := <-ch; !ok {
			return nil
		}
		return changedMsg{tab: i}
	}
}

func waitForNotification(ch <-chan models.Notification) tea.Cmd {
	if ch == nil {
		return nil
	}
	return func() tea.Msg {
		n, ok := <-ch
		if !ok {
			return nil
		}
		return notificationMsg{n: n}
	}
}

func tick() tea.Cmd {
	return tea.Tick(statusTick, func(time.Time) tea.Msg { return tickMsg{} })
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case changedMsg:
		m.clampCursor(msg.tab)
		return m, waitForChange(msg.tab, m.deps.tabs[msg.tab].changes())
	case notificationMsg:
		if msg.n.Level == models.NotifyError || msg.n.Level == models.NotifyWarning {
			m.errMsg = notificationText(msg.n)
		} else {
			m.status = notificationText(msg.n)
		}
		return m, waitForNotification(m.deps.notifications)
	case tickMsg:
		return m, tick()
	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	case syncDoneMsg:
		m.syncing = false
		if msg.err != nil {
			m.errMsg = humanizeError(msg.err)
			return m, nil
		}
		m.errMsg = ""
		m.status = "Sync finished"
		return m, nil
	case createDoneMsg:
		m.form.saving = false
		if msg.err != nil {
			m.form.err = humanizeError(msg.err)
			return m, nil
		}
		m.mode = modeList
		m.errMsg = ""
		m.status = "Saved"
		m.clampCursor(m.active)
		return m, nil
	case deleteDoneMsg:
		if msg.err != nil {
			m.errMsg = humanizeError(msg.err)
			return m, nil
		}
		m.errMsg = ""
		m.status = "Deleted"
		m.clampCursor(m.active)
		return m, nil
	case gradeDoneMsg:
		if msg.err != nil {
			m.review.grading = false
			m.errMsg = humanizeError(msg.err)
			return m, nil
		}
		m.errMsg = ""
		m.review = m.review.next()
		return m, nil
	}

	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		if m.mode == modeCreate {
			var cmd tea.Cmd
			m.form, cmd = m.form.update(msg)
			return m, cmd
		}
		return m, nil
	}

	if keyMsg.String() == "ctrl+c" {
		return m, tea.Quit
	}

	switch m.mode {
	case modeCreate:
		return m.updateCreate(keyMsg)
	case modeConfirmDelete:
		return m.updateConfirmDelete(keyMsg)
	case modeReview:
		return m.updateReview(keyMsg)
	case modeBuildInfo:
		if key.Matches(keyMsg, keys.esc) || key.Matches(keyMsg, keys.buildInfo) {
			m.mode = modeList
		}
		return m, nil
	default:
		return m.updateList(keyMsg)
	}
}

func (m model) updateList(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if len(m.deps.tabs) == 0 {
		if key.Matches(msg, keys.quit) {
			return m, tea.Quit
		}
		return m, nil
	}

	rows := m.deps.tabs[m.active].rows()

	switch {
	case key.Matches(msg, keys.quit):
		return m, tea.Quit
	case key.Matches(msg, keys.up):
		if m.cursor[m.active] > 0 {
			m.cursor[m.active]--
		}
	case key.Matches(msg, keys.down):
		if m.cursor[m.active] < len(rows)-1 {
			m.cursor[m.active]++
		}
	case key.Matches(msg, keys.nextTab):
		m.active = (m.active + 1) % len(m.deps.tabs)
		m.clampCursor(m.active)
	case key.Matches(msg, keys.prevTab):
		m.active = (m.active - 1 + len(m.deps.tabs)) % len(m.deps.tabs)
		m.clampCursor(m.active)
	case len(msg.String()) == 1 && msg.String() >= "1" && msg.String() <= "9":
		if i := int(msg.String()[0] - '1'); i < len(m.deps.tabs) {
			m.active = i
			m.clampCursor(m.active)
		}
	case key.Matches(msg, keys.newItem):
		t := m.deps.tabs[m.active]
		m.form = newForm(t.name(), t.fields())
		m.mode = modeCreate
		return m, nil
	case key.Matches(msg, keys.delete):
		r, ok := m.selected()
		if !ok {
			m.status = "Nothing selected"
			return m, nil
		}
		m.pending = r.id
		m.mode = modeConfirmDelete
	case key.Matches(msg, keys.sync):
		if m.syncing {
			return m, nil
		}
		m.syncing = true
		m.status = "Syncing..."
		m.errMsg = ""
		return m, m.cmdSync()
	case key.Matches(msg, keys.copy):
		r, ok := m.selected()
		if !ok {
			m.status = "Nothing to copy"
			return m, nil
		}
		if err := copyToClipboard(r.id); err != nil {
			m.errMsg = fmt.Sprintf("Copy failed: %v", err)
			return m, nil
		}
		m.status = "Copied id " + r.id
	case key.Matches(msg, keys.review):
		if m.deps.reviews == nil {
			return m, nil
		}
		m.review = reviewModel{cards: m.deps.reviews.Due(m.now())}
		m.errMsg = ""
		m.mode = modeReview
	case key.Matches(msg, keys.buildInfo):
		m.mode = modeBuildInfo
	}

	return m, nil
}

func (m model) updateCreate(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, keys.esc):
		m.mode = modeList
		return m, nil
	case isSubmit(msg):
		if m.form.saving {
			return m, nil
		}
		m.form.saving = true
		m.form.err = ""
		return m, m.cmdCreate(m.deps.tabs[m.active], m.form.values())
	}

	var cmd tea.Cmd
	m.form, cmd = m.form.update(msg)
	return m, cmd
}

func (m model) updateConfirmDelete(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, keys.yes):
		id := m.pending
		m.pending = ""
		m.mode = modeList
		return m, m.cmdDelete(m.deps.tabs[m.active], id)
	case key.Matches(msg, keys.no):
		m.pending = ""
		m.mode = modeList
	}
	return m, nil
}

func (m model) updateReview(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if key.Matches(msg, keys.esc) {
		m.mode = modeList
		m.errMsg = ""
		return m, nil
	}

	card, ok := m.review.current()
	if !ok || m.review.grading {
		return m, nil
	}

	if key.Matches(msg, keys.reveal) {
		m.review.revealed = !m.review.revealed
		return m, nil
	}

	if grade, ok := gradeFromKey(msg.String()); ok {
		m.review.grading = true
		return m, m.cmdGrade(card.ID, grade)
	}

	return m, nil
}

func (m model) selected() (row, bool) {
	if len(m.deps.tabs) == 0 {
		return row{}, false
	}
	rows := m.deps.tabs[m.active].rows()
	i := m.cursor[m.active]
	if i < 0 || i >= len(rows) {
		return row{}, false
	}
	return rows[i], true
}

func (m *model) clampCursor(tabIdx int) {
	if tabIdx < 0 || tabIdx >= len(m.deps.tabs) {
		return
	}
	n := len(m.deps.tabs[tabIdx].rows())
	if m.cursor[tabIdx] >= n {
		m.cursor[tabIdx] = n - 1
	}
	if m.cursor[tabIdx] < 0 {
		m.cursor[tabIdx] = 0
	}
}

func (m model) cmdSync() tea.Cmd {
	ctx, syncer := m.ctx, m.deps.syncer
	return func() tea.Msg {
		return syncDoneMsg{err: syncer.SyncAll(ctx)}
	}
}

func (m model) cmdCreate(t tab, values []string) tea.Cmd {
	ctx := m.ctx
	return func() tea.Msg {
		return createDoneMsg{err: t.create(ctx, values)}
	}
}

func (m model) cmdDelete(t tab, id string) tea.Cmd {
	ctx := m.ctx
	return func() tea.Msg {
		return deleteDoneMsg{err: t.remove(ctx, id)}
	}
}

func (m model) cmdGrade(id string, grade int) tea.Cmd {
	ctx, reviews := m.ctx, m.deps.reviews
	return func() tea.Msg {
		card, err := reviews.Grade(ctx, id, grade)
		return gradeDoneMsg{card: card, err: err}
	}
}

func notificationText(n models.Notification) string {
	if n.Collection == "" {
		return n.Message
	}
	return n.Collection + ": " + n.Message
}

func (m model) View() string {
	switch m.mode {
	case modeCreate:
		return m.form.View()
	case modeConfirmDelete:
		r, _ := m.selected()
		return renderConfirmDelete(r.title)
	case modeReview:
		return m.review.View(m.errMsg)
	case modeBuildInfo:
		return renderBuildInfoWindow(m.deps.buildInfo)
	}

	if len(m.deps.tabs) == 0 {
		return renderPage("STUDY SYNC", "No collections", "q: quit")
	}

	var b strings.Builder

	for i, t := range m.deps.tabs {
		label := fmt.Sprintf("%d %s", i+1, t.name())
		if i == m.active {
			b.WriteString(activeTabStyle.Render(label))
		} else {
			b.WriteString(tabStyle.Render(label))
		}
		b.WriteString("   ")
	}
	b.WriteString("\n\n")

	t := m.deps.tabs[m.active]
	online := m.deps.network != nil && m.deps.network.Online()
	b.WriteString(renderStatusBar(online, t.status()))
	if m.syncing {
		b.WriteString("  ")
		b.WriteString(m.spinner.View())
	}
	b.WriteString("\n\n")

	rows := t.rows()
	if len(rows) == 0 {
		b.WriteString("No records\n")
	}
	for i, r := range rows {
		cursor := "  "
		if i == m.cursor[m.active] {
			cursor = "> "
		}
		line := cursor + fitText(r.title, 40)
		if r.detail != "" {
			line += "  " + helpStyle.Render(fitText(r.detail, 30))
		}
		if r.pending {
			line += "  " + pendingStyle.Render("(not synced)")
		}
		b.WriteString(line)
		b.WriteString("\n")
	}

	if m.status != "" {
		b.WriteString("\n")
		b.WriteString(m.status)
		b.WriteString("\n")
	}
	if m.errMsg != "" {
		b.WriteString("\n")
		b.WriteString(errorStyle.Render(m.errMsg))
		b.WriteString("\n")
	}

	return renderPage("STUDY SYNC", b.String(),
		"tab: next  n: new  d: delete  s: sync  c: copy id  r: review  v: about  q: quit")
}
