// Package tui renders a lookup controller as an interactive terminal
// application.
package tui

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	log "github.com/sirupsen/logrus"

	"github.com/frobware/ghlookup/lookup"
	"github.com/frobware/ghlookup/view"
)

// Controller is the part of lookup.Controller the UI drives.
type Controller interface {
	SetHandle(handle string)
	Snapshot() lookup.State
	Subscribe() (<-chan lookup.State, func())
}

// Trigger selects when an edited handle is sent to the controller.
type Trigger string

const (
	// TriggerSubmit looks up the handle when enter is pressed.
	TriggerSubmit Trigger = "submit"
	// TriggerBlur looks up the handle when focus leaves the input.
	TriggerBlur Trigger = "blur"
)

const defaultNotificationTTL = 3 * time.Second

type Options struct {
	Trigger         Trigger
	NotificationTTL time.Duration
	Clipboard       view.Clipboard
	Browser         view.Browser
	Logger          *log.Entry
}

type focus int

const (
	focusInput focus = iota
	focusTable
)

type stateMsg struct {
	state lookup.State
}

type closedMsg struct{}

type noticeExpiredMsg struct {
	id int
}

// Model is the bubbletea model for the lookup screen.
type Model struct {
	ctrl        Controller
	updates     <-chan lookup.State
	unsubscribe func()

	trigger   Trigger
	ttl       time.Duration
	clipboard view.Clipboard
	browser   view.Browser
	log       *log.Entry

	state    lookup.State
	input    textinput.Model
	table    table.Model
	focus    focus
	expanded bool

	notice   *view.Notification
	noticeID int

	width  int
	height int
}

// New subscribes to ctrl and builds the initial model. Call Close when
// the model is no longer rendered.
func New(ctrl Controller, opts Options) Model {
	updates, unsubscribe := ctrl.Subscribe()
	state := ctrl.Snapshot()

	entry := opts.Logger
	if entry == nil {
		entry = log.NewEntry(log.StandardLogger())
	}
	trigger := opts.Trigger
	if trigger == "" {
		trigger = TriggerSubmit
	}
	ttl := opts.NotificationTTL
	if ttl <= 0 {
		ttl = defaultNotificationTTL
	}
	cb := opts.Clipboard
	if cb == nil {
		cb = view.SystemClipboard{}
	}

	input := textinput.New()
	input.Placeholder = "GitHub handle"
	input.Prompt = "@ "
	input.CharLimit = 100
	input.SetValue(state.Handle)
	input.Focus()

	m := Model{
		ctrl:        ctrl,
		updates:     updates,
		unsubscribe: unsubscribe,
		trigger:     trigger,
		ttl:         ttl,
		clipboard:   cb,
		browser:     opts.Browser,
		log:         entry,
		state:       state,
		input:       input,
		table:       newTable(),
		focus:       focusInput,
	}
	m.setRows()
	return m
}

// Close stops listening to the controller.
func (m Model) Close() {
	m.unsubscribe()
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, waitForState(m.updates))
}

func waitForState(updates <-chan lookup.State) tea.Cmd {
	return func() tea.Msg {
		s, ok := <-updates
		if !ok {
			return closedMsg{}
		}
		return stateMsg{state: s}
	}
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.table.SetWidth(msg.Width)
		m.table.SetHeight(max(3, msg.Height-chromeHeight))
		return m, nil

	case stateMsg:
		m.state = msg.state
		m.setRows()
		return m, waitForState(m.updates)

	case closedMsg:
		return m, tea.Quit

	case noticeExpiredMsg:
		if msg.id == m.noticeID {
			m.notice = nil
		}
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c":
			return m, tea.Quit
		case "tab", "shift+tab":
			return m.toggleFocus()
		}
		if m.focus == focusInput {
			return m.updateInput(msg)
		}
		return m.updateTable(msg)
	}

	return m, nil
}

func (m Model) updateInput(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "enter":
		if m.trigger == TriggerSubmit {
			m.ctrl.SetHandle(m.input.Value())
			return m, nil
		}
		return m.toggleFocus()
	case "esc":
		return m.toggleFocus()
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m Model) updateTable(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "esc":
		return m, tea.Quit
	case "/", "i":
		return m.toggleFocus()
	case "p", " ":
		m.expanded = !m.expanded
		return m, nil
	case "enter", "o":
		return m.open()
	case "c", "y":
		return m.copy()
	}

	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)
	return m, cmd
}

func (m Model) toggleFocus() (tea.Model, tea.Cmd) {
	if m.focus == focusInput {
		m.input.Blur()
		m.table.Focus()
		m.focus = focusTable
		if m.trigger == TriggerBlur {
			m.ctrl.SetHandle(m.input.Value())
		}
		return m, nil
	}

	m.table.Blur()
	m.focus = focusInput
	return m, m.input.Focus()
}

func (m Model) selected() (lookup.Repository, bool) {
	i := m.table.Cursor()
	if i < 0 || i >= len(m.state.Repositories) {
		return lookup.Repository{}, false
	}
	return m.state.Repositories[i], true
}

func (m Model) open() (tea.Model, tea.Cmd) {
	repo, ok := m.selected()
	if !ok {
		return m, nil
	}
	if m.browser == nil {
		return m.notify(view.Notification{Title: "No browser configured"})
	}
	if err := view.Open(m.browser, repo); err != nil {
		m.log.WithError(err).WithField("repository", repo.Name).Error("open failed")
		return m.notify(view.Notification{Title: "Could not open", Description: repo.HTMLURL})
	}
	return m, nil
}

func (m Model) copy() (tea.Model, tea.Cmd) {
	repo, ok := m.selected()
	if !ok {
		return m, nil
	}
	n, err := view.CopyCloneURL(m.clipboard, repo)
	if err != nil {
		m.log.WithError(err).WithField("repository", repo.Name).Error("copy failed")
		return m.notify(view.Notification{Title: "Could not copy", Description: repo.CloneURL})
	}
	return m.notify(n)
}

func (m Model) notify(n view.Notification) (tea.Model, tea.Cmd) {
	m.noticeID++
	m.notice = &n
	id := m.noticeID
	return m, tea.Tick(m.ttl, func(time.Time) tea.Msg {
		return noticeExpiredMsg{id: id}
	})
}

func (m *Model) setRows() {
	m.table.SetRows(rows(m.state.Repositories))
	if n := len(m.state.Repositories); m.table.Cursor() >= n {
		m.table.SetCursor(max(0, n-1))
	}
}

// Run shows the lookup screen until the user quits or ctx is done.
func Run(ctx context.Context, ctrl Controller, opts Options) error {
	m := New(ctrl, opts)
	defer m.Close()

	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx))
	if _, err := p.Run(); err != nil {
		if errors.Is(err, tea.ErrProgramKilled) {
			return nil
		}
		return fmt.Errorf("terminal UI failed: %w", err)
	}
	return nil
}
