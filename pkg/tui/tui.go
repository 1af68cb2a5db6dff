// Package tui hosts the Bubble Tea week browser for rollcall.
package tui

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/v2/textinput"
	tea "github.com/charmbracelet/bubbletea/v2"
	"github.com/charmbracelet/lipgloss/v2"
	"github.com/muesli/reflow/wordwrap"

	"tableflip.dev/rollcall/pkg/app"
	"tableflip.dev/rollcall/pkg/cache"
	"tableflip.dev/rollcall/pkg/glyph"
	"tableflip.dev/rollcall/pkg/schedule"
	"tableflip.dev/rollcall/pkg/store"
	"tableflip.dev/rollcall/pkg/timeutil"
)

type mode int

const (
	modeNormal mode = iota
	modeInput
)

type action int

const (
	actionNone action = iota
	actionAdd
	actionReplace
)

// Model drives the interactive week browser. Mutations are applied to the
// cached view first and persisted asynchronously; a rejected write rolls the
// view back.
type Model struct {
	svc   *app.Service
	views *cache.Store
	ctrl  *cache.Controller

	streamID  string
	weekStart schedule.Date

	view   []*schedule.Entry
	days   [][]*schedule.Entry
	cursor int

	// pending holds the mutation keys with a write in flight. A second
	// mutation on the same key is refused until the first settles.
	pending map[string]struct{}

	mode          mode
	action        action
	input         textinput.Model
	replaceTarget *schedule.Entry

	status string

	watchCh     <-chan store.Event
	watchCancel context.CancelFunc

	width  int
	height int

	ctx    context.Context
	cancel context.CancelFunc
}

// New builds the week browser anchored on the current week.
func New(svc *app.Service, streamID string) *Model {
	ti := textinput.New()
	ti.Placeholder = "Subject"
	ti.CharLimit = 128
	ti.Prompt = "> "

	start, _ := timeutil.WeekOf(time.Now())
	views := cache.NewStore()
	ctrl := cache.NewController(views)
	ctrl.LogTo = io.Discard

	ctx, cancel := context.WithCancel(context.Background())

	return &Model{
		svc:       svc,
		views:     views,
		ctrl:      ctrl,
		streamID:  streamID,
		weekStart: start,
		pending:   make(map[string]struct{}),
		mode:      modeNormal,
		action:    actionNone,
		input:     ti,
		ctx:       ctx,
		cancel:    cancel,
	}
}

func (m *Model) weekEnd() schedule.Date { return m.weekStart.Next(6) }

func (m *Model) viewKey() cache.Key {
	return cache.ViewKey(m.streamID, m.weekStart, m.weekEnd())
}

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd {
	return tea.Batch(m.loadWeek(), startWatchCmd(m.ctx, m.svc))
}

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
	case errMsg:
		m.status = "ERR: " + msg.err.Error()
	case weekLoadedMsg:
		if msg.err != nil {
			m.status = "ERR: " + msg.err.Error()
			break
		}
		if m.views.CompleteFetch(msg.fetchCtx, msg.key, msg.view) {
			m.syncFromCache()
		}
	case mutationDoneMsg:
		delete(m.pending, msg.mutationKey)
		if msg.err != nil {
			m.ctrl.Rollback(msg.viewKey, msg.snapshot)
			m.syncFromCache()
			m.status = "ERR: " + msg.err.Error()
			break
		}
		if msg.refetch {
			m.views.Invalidate(msg.viewKey)
			cmds = append(cmds, m.loadWeek())
		}
		m.status = msg.note
	case watchStartedMsg:
		if msg.err != nil {
			m.status = "ERR: watch " + msg.err.Error()
			break
		}
		m.stopWatch()
		m.watchCh = msg.ch
		m.watchCancel = msg.cancel
		cmds = append(cmds, m.waitForWatch())
	case watchEventMsg:
		// Another process touched the store; refetch unless a write of
		// ours is still settling.
		if len(m.pending) == 0 {
			m.views.Invalidate(m.viewKey())
			cmds = append(cmds, m.loadWeek())
		}
		cmds = append(cmds, m.waitForWatch())
	case watchStoppedMsg:
		m.stopWatch()
		cmds = append(cmds, startWatchCmd(m.ctx, m.svc))
	case tea.KeyPressMsg:
		cmds = append(cmds, m.handleKey(msg))
	}

	return m, tea.Batch(cmds...)
}

func (m *Model) handleKey(msg tea.KeyPressMsg) tea.Cmd {
	if m.mode == modeInput {
		return m.handleInputKey(msg)
	}
	switch msg.String() {
	case "q", "ctrl+c":
		m.cancel()
		m.stopWatch()
		return tea.Quit
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
	case "down", "j":
		if m.cursor < len(m.view)-1 {
			m.cursor++
		}
	case "left", "h":
		m.weekStart = m.weekStart.Next(-7)
		m.cursor = 0
		return m.loadWeek()
	case "right", "l":
		m.weekStart = m.weekStart.Next(7)
		m.cursor = 0
		return m.loadWeek()
	case "g":
		m.cursor = 0
	case "G":
		if len(m.view) > 0 {
			m.cursor = len(m.view) - 1
		}
	case "o":
		return m.mark(schedule.StatusOccurred)
	case "m":
		return m.mark(schedule.StatusMissed)
	case "c":
		return m.cancelClass()
	case "r":
		if t := m.current(); t != nil {
			m.replaceTarget = t.Clone()
			m.beginInput(actionReplace, "Replacement subject")
		}
	case "a":
		m.beginInput(actionAdd, "Subject to add")
	case "R":
		m.views.Invalidate(m.viewKey())
		return m.loadWeek()
	case "t":
		start, _ := timeutil.WeekOf(time.Now())
		m.weekStart = start
		m.cursor = 0
		return m.loadWeek()
	}
	return nil
}

func (m *Model) handleInputKey(msg tea.KeyPressMsg) tea.Cmd {
	switch msg.String() {
	case "esc":
		m.endInput()
		return nil
	case "enter":
		subject := strings.TrimSpace(m.input.Value())
		act := m.action
		target := m.replaceTarget
		m.endInput()
		if subject == "" {
			return nil
		}
		switch act {
		case actionAdd:
			return m.addSubject(subject)
		case actionReplace:
			return m.replaceClass(target, subject)
		}
		return nil
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return cmd
}

func (m *Model) beginInput(a action, placeholder string) {
	m.mode = modeInput
	m.action = a
	m.input.Placeholder = placeholder
	m.input.SetValue("")
	m.input.Focus()
}

func (m *Model) endInput() {
	m.mode = modeNormal
	m.action = actionNone
	m.replaceTarget = nil
	m.input.Blur()
}

func (m *Model) current() *schedule.Entry {
	if m.cursor < 0 || m.cursor >= len(m.view) {
		return nil
	}
	return m.view[m.cursor]
}

// syncFromCache re-reads the cached view so the model always renders what the
// cache holds, never a private copy that could drift.
func (m *Model) syncFromCache() {
	view, ok := m.views.Get(m.viewKey())
	if !ok {
		m.view = nil
		m.days = nil
		return
	}
	m.view = view
	m.days = schedule.GroupByDay(view)
	if m.cursor >= len(m.view) {
		m.cursor = len(m.view) - 1
	}
	if m.cursor < 0 {
		m.cursor = 0
	}
}

// leaseKey identifies an occurrence independent of its rendered status. The
// mutation key embeds status, so keying the pending set on it directly would
// free the lease the moment the optimistic patch flips the entry.
func leaseKey(e *schedule.Entry) string {
	if e == nil {
		return ""
	}
	norm := e.Clone()
	norm.Status = ""
	return schedule.MutationKey(norm)
}

// lease reserves the mutation key, refusing a second mutation while one is in
// flight on the same occurrence.
func (m *Model) lease(key string) bool {
	if _, busy := m.pending[key]; busy {
		m.status = "change already in flight for this occurrence"
		return false
	}
	m.pending[key] = struct{}{}
	return true
}

func (m *Model) mark(status schedule.Status) tea.Cmd {
	target := m.current()
	if target == nil {
		return nil
	}
	mkey := leaseKey(target)
	if !m.lease(mkey) {
		return nil
	}
	vkey := m.viewKey()

	// The resolver ranks the target among look-alikes by pointer identity
	// within the day group, so it must see the rendered entry itself.
	snapshot, ok := m.ctrl.MarkAttendance(vkey, cache.MarkParams{
		Target:   target,
		DayGroup: schedule.DayGroup(m.view, target.Date),
		Status:   status,
	})
	if !ok {
		delete(m.pending, mkey)
		return m.loadWeek()
	}
	m.syncFromCache()
	m.status = fmt.Sprintf("%s %s", target.SubjectName, status)

	tgt := app.Target{
		RecordID:     target.RecordID,
		Date:         target.Date,
		SubjectName:  target.SubjectName,
		SubjectIndex: target.SubjectIndex,
	}
	streamID := m.streamID
	return func() tea.Msg {
		_, err := m.svc.Mark(m.ctx, streamID, tgt, status)
		return mutationDoneMsg{
			mutationKey: mkey,
			viewKey:     vkey,
			snapshot:    snapshot,
			err:         err,
			note:        fmt.Sprintf("%s %s", tgt.SubjectName, status),
		}
	}
}

func (m *Model) cancelClass() tea.Cmd {
	target := m.current()
	if target == nil {
		return nil
	}
	mkey := leaseKey(target)
	if !m.lease(mkey) {
		return nil
	}
	vkey := m.viewKey()

	snapshot, ok := m.ctrl.CancelClass(vkey, cache.CancelParams{
		Target:   target,
		DayGroup: schedule.DayGroup(m.view, target.Date),
	})
	if !ok {
		delete(m.pending, mkey)
		return m.loadWeek()
	}
	m.syncFromCache()
	m.status = target.SubjectName + " cancelled"

	tgt := app.Target{
		RecordID:     target.RecordID,
		Date:         target.Date,
		SubjectName:  target.SubjectName,
		SubjectIndex: target.SubjectIndex,
	}
	streamID := m.streamID
	return func() tea.Msg {
		_, err := m.svc.Cancel(m.ctx, streamID, tgt)
		return mutationDoneMsg{
			mutationKey: mkey,
			viewKey:     vkey,
			snapshot:    snapshot,
			err:         err,
			note:        tgt.SubjectName + " cancelled",
		}
	}
}

func (m *Model) replaceClass(target *schedule.Entry, with string) tea.Cmd {
	if target == nil {
		return nil
	}
	mkey := leaseKey(target)
	if !m.lease(mkey) {
		return nil
	}
	vkey := m.viewKey()

	snapshot, ok := m.ctrl.ReplaceClass(vkey, cache.ReplaceParams{
		Original: cache.Occurrence{
			Date:         target.Date,
			SubjectName:  target.SubjectName,
			SubjectIndex: target.SubjectIndex,
		},
		SubjectName: with,
		StartTime:   target.StartTime,
		EndTime:     target.EndTime,
	})
	if !ok {
		delete(m.pending, mkey)
		return m.loadWeek()
	}
	m.syncFromCache()
	m.status = target.SubjectName + " replaced by " + with

	tgt := app.Target{
		RecordID:     target.RecordID,
		Date:         target.Date,
		SubjectName:  target.SubjectName,
		SubjectIndex: target.SubjectIndex,
	}
	repl := app.Replacement{
		SubjectName: with,
		StartTime:   target.StartTime,
		EndTime:     target.EndTime,
	}
	streamID := m.streamID
	return func() tea.Msg {
		_, err := m.svc.Replace(m.ctx, streamID, tgt, repl)
		return mutationDoneMsg{
			mutationKey: mkey,
			viewKey:     vkey,
			snapshot:    snapshot,
			err:         err,
			// The synthetic entry has no record identity until
			// refetched.
			refetch: true,
			note:    tgt.SubjectName + " replaced by " + with,
		}
	}
}

func (m *Model) addSubject(subject string) tea.Cmd {
	day := m.weekStart
	if t := m.current(); t != nil {
		day = t.Date
	}
	pin := &schedule.Entry{Date: day, SubjectName: subject, IsAdded: true}
	mkey := leaseKey(pin)
	if !m.lease(mkey) {
		return nil
	}
	vkey := m.viewKey()

	snapshot, ok := m.ctrl.AddSubject(vkey, cache.AddParams{
		Date:        day,
		SubjectName: subject,
	})
	if !ok {
		delete(m.pending, mkey)
		return m.loadWeek()
	}
	m.syncFromCache()
	m.status = subject + " added"

	add := app.Addition{Date: day, SubjectName: subject}
	streamID := m.streamID
	return func() tea.Msg {
		_, err := m.svc.Add(m.ctx, streamID, add)
		return mutationDoneMsg{
			mutationKey: mkey,
			viewKey:     vkey,
			snapshot:    snapshot,
			err:         err,
			refetch:     true,
			note:        subject + " added",
		}
	}
}

func (m *Model) loadWeek() tea.Cmd {
	key := m.viewKey()
	if view, ok := m.views.Get(key); ok {
		m.view = view
		m.days = schedule.GroupByDay(view)
		return nil
	}
	fetchCtx := m.views.BeginFetch(m.ctx, key)
	svc := m.svc
	streamID := m.streamID
	start, end := m.weekStart, m.weekEnd()
	return func() tea.Msg {
		view, err := svc.Week(fetchCtx, streamID, start, end)
		return weekLoadedMsg{key: key, fetchCtx: fetchCtx, view: view, err: err}
	}
}

func (m *Model) stopWatch() {
	if m.watchCancel != nil {
		m.watchCancel()
		m.watchCancel = nil
	}
	m.watchCh = nil
}

func (m *Model) waitForWatch() tea.Cmd {
	ch := m.watchCh
	if ch == nil {
		return nil
	}
	return func() tea.Msg {
		ev, ok := <-ch
		if !ok {
			return watchStoppedMsg{}
		}
		return watchEventMsg{event: ev}
	}
}

var (
	titleStyle    = lipgloss.NewStyle().Bold(true).Underline(true)
	dayStyle      = lipgloss.NewStyle().Bold(true)
	cursorStyle   = lipgloss.NewStyle().Reverse(true)
	pendingStyle  = lipgloss.NewStyle().Faint(true)
	statusStyle   = lipgloss.NewStyle().Faint(true)
	occurredStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	cancelStyle   = lipgloss.NewStyle().Faint(true).Strikethrough(true)
)

// View implements tea.Model.
func (m *Model) View() string {
	b := strings.Builder{}
	b.WriteString(titleStyle.Render(fmt.Sprintf("%s  %s .. %s", m.streamID, m.weekStart.ISO(), m.weekEnd().ISO())))
	b.WriteString("\n\n")

	idx := 0
	for _, day := range m.days {
		d := day[0].Date
		b.WriteString(dayStyle.Render(fmt.Sprintf("%s %s", timeutil.DayName(d.DayOfWeek()), d.ISO())))
		b.WriteString("\n")
		for _, e := range day {
			line := m.entryLine(e)
			if idx == m.cursor && m.mode == modeNormal {
				line = cursorStyle.Render(line)
			}
			b.WriteString("  " + line + "\n")
			idx++
		}
		b.WriteString("\n")
	}
	if len(m.days) == 0 {
		b.WriteString("no classes this week\n\n")
	}

	if m.mode == modeInput {
		b.WriteString(m.input.View())
		b.WriteString("\n")
	}
	if m.status != "" {
		b.WriteString(statusStyle.Render(m.status))
		b.WriteString("\n")
	}
	help := "o occurred · m missed · c cancel · r replace · a add · h/l week · q quit"
	if m.width > 0 {
		help = wordwrap.String(help, m.width)
	}
	b.WriteString(statusStyle.Render(help))
	return b.String()
}

func (m *Model) entryLine(e *schedule.Entry) string {
	when := e.StartTime
	if when == "" {
		when = "--:--"
	}
	line := fmt.Sprintf("%s %s  %s", glyph.ForEntry(e), when, e.SubjectName)
	if e.SubjectIndex > 0 {
		line += fmt.Sprintf(" #%d", e.SubjectIndex)
	}
	if e.CourseCode != "" {
		line += " (" + e.CourseCode + ")"
	}
	if e.IsReplacement && e.OriginalSubjectName != "" {
		line += " was " + e.OriginalSubjectName
	}
	if _, busy := m.pending[leaseKey(e)]; busy {
		return pendingStyle.Render(line + " …")
	}
	switch e.Status {
	case schedule.StatusOccurred:
		return occurredStyle.Render(line)
	case schedule.StatusCancelled:
		return cancelStyle.Render(line)
	}
	return line
}

// Run launches the week browser.
func Run(svc *app.Service, streamID string) error {
	p := tea.NewProgram(New(svc, streamID), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
