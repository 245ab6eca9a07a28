package tui

import (
	"errors"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	log "github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/frobware/ghlookup/lookup"
)

type fakeController struct {
	state       lookup.State
	handles     []string
	updates     chan lookup.State
	unsubscribe int
}

func newFakeController(s lookup.State) *fakeController {
	return &fakeController{state: s, updates: make(chan lookup.State, 1)}
}

func (f *fakeController) SetHandle(handle string) { f.handles = append(f.handles, handle) }
func (f *fakeController) Snapshot() lookup.State  { return f.state }

func (f *fakeController) Subscribe() (<-chan lookup.State, func()) {
	return f.updates, func() { f.unsubscribe++ }
}

type fakeClipboard struct {
	text string
	err  error
}

func (f *fakeClipboard) WriteAll(text string) error {
	if f.err != nil {
		return f.err
	}
	f.text = text
	return nil
}

type fakeBrowser struct {
	opened []string
}

func (f *fakeBrowser) Browse(url string) error {
	f.opened = append(f.opened, url)
	return nil
}

var settledState = lookup.State{
	Handle: "all4x",
	Cycle:  1,
	Profile: &lookup.Profile{
		Login:    "all4x",
		Name:     "Alex",
		Location: "Lisbon",
		Bio:      "writes Go",
	},
	Repositories: []lookup.Repository{
		{Name: "dotfiles", Language: "Shell", HTMLURL: "https://github.com/all4x/dotfiles", CloneURL: "https://github.com/all4x/dotfiles.git"},
		{Name: "ghlookup", Language: "Go", HTMLURL: "https://github.com/all4x/ghlookup", CloneURL: "https://github.com/all4x/ghlookup.git"},
	},
	ProfileStatus:      lookup.StatusSettled,
	RepositoriesStatus: lookup.StatusSettled,
}

func quietLogger() *log.Entry {
	logger, _ := test.NewNullLogger()
	return log.NewEntry(logger)
}

func newModel(t *testing.T, ctrl *fakeController, opts Options) (Model, *fakeClipboard, *fakeBrowser) {
	t.Helper()

	cb := &fakeClipboard{}
	b := &fakeBrowser{}
	if opts.Clipboard == nil {
		opts.Clipboard = cb
	}
	if opts.Browser == nil {
		opts.Browser = b
	}
	opts.Logger = quietLogger()
	return New(ctrl, opts), cb, b
}

func key(s string) tea.KeyMsg {
	switch s {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "tab":
		return tea.KeyMsg{Type: tea.KeyTab}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	case "down":
		return tea.KeyMsg{Type: tea.KeyDown}
	case "ctrl+c":
		return tea.KeyMsg{Type: tea.KeyCtrlC}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func update(t *testing.T, m Model, msg tea.Msg) (Model, tea.Cmd) {
	t.Helper()
	next, cmd := m.Update(msg)
	nm, ok := next.(Model)
	require.True(t, ok)
	return nm, cmd
}

func isQuit(cmd tea.Cmd) bool {
	if cmd == nil {
		return false
	}
	_, ok := cmd().(tea.QuitMsg)
	return ok
}

func TestNew_InitialState(t *testing.T) {
	ctrl := newFakeController(settledState)
	m, _, _ := newModel(t, ctrl, Options{})

	assert.Equal(t, "all4x", m.input.Value())
	assert.Equal(t, focusInput, m.focus)
	assert.Equal(t, TriggerSubmit, m.trigger)
	assert.Equal(t, defaultNotificationTTL, m.ttl)
	assert.Len(t, m.table.Rows(), 2)

	m.Close()
	assert.Equal(t, 1, ctrl.unsubscribe)
}

func TestUpdate_StateMessageRefreshesRows(t *testing.T) {
	ctrl := newFakeController(lookup.State{Handle: "all4x"})
	m, _, _ := newModel(t, ctrl, Options{})
	assert.Empty(t, m.table.Rows())

	m, cmd := update(t, m, stateMsg{state: settledState})
	assert.Len(t, m.table.Rows(), 2)
	assert.Equal(t, "dotfiles", m.table.Rows()[0][0])

	// The returned command keeps listening for the next state.
	require.NotNil(t, cmd)
	next := settledState
	next.Cycle = 2
	ctrl.updates <- next
	msg := cmd()
	assert.Equal(t, stateMsg{state: next}, msg)
}

func TestUpdate_ClosedSubscriptionQuits(t *testing.T) {
	ctrl := newFakeController(settledState)
	m, _, _ := newModel(t, ctrl, Options{})

	close(ctrl.updates)
	msg := waitForState(m.updates)()
	assert.Equal(t, closedMsg{}, msg)

	_, cmd := update(t, m, msg)
	assert.True(t, isQuit(cmd))
}

func TestUpdate_SubmitTrigger(t *testing.T) {
	ctrl := newFakeController(settledState)
	m, _, _ := newModel(t, ctrl, Options{Trigger: TriggerSubmit})

	m.input.SetValue("octocat")
	m, _ = update(t, m, key("tab"))
	assert.Empty(t, ctrl.handles, "leaving the input must not look up in submit mode")

	m, _ = update(t, m, key("tab"))
	m, _ = update(t, m, key("enter"))
	assert.Equal(t, []string{"octocat"}, ctrl.handles)
	assert.Equal(t, focusInput, m.focus)
}

func TestUpdate_BlurTrigger(t *testing.T) {
	ctrl := newFakeController(settledState)
	m, _, _ := newModel(t, ctrl, Options{Trigger: TriggerBlur})

	m.input.SetValue("octocat")
	m, _ = update(t, m, key("enter"))
	assert.Equal(t, []string{"octocat"}, ctrl.handles)
	assert.Equal(t, focusTable, m.focus)

	m, _ = update(t, m, key("/"))
	assert.Equal(t, focusInput, m.focus)
	m, _ = update(t, m, key("esc"))
	assert.Equal(t, []string{"octocat", "octocat"}, ctrl.handles)
	assert.Equal(t, focusTable, m.focus)
}

func TestUpdate_TypingDoesNotTriggerActions(t *testing.T) {
	ctrl := newFakeController(settledState)
	m, cb, _ := newModel(t, ctrl, Options{})

	m.input.SetValue("")
	for _, r := range "qcop" {
		var cmd tea.Cmd
		m, cmd = update(t, m, key(string(r)))
		assert.False(t, isQuit(cmd))
	}
	assert.Equal(t, "qcop", m.input.Value())
	assert.Empty(t, cb.text)
	assert.False(t, m.expanded)
}

func TestUpdate_CopyShowsNotification(t *testing.T) {
	ctrl := newFakeController(settledState)
	m, cb, _ := newModel(t, ctrl, Options{NotificationTTL: time.Millisecond})

	m, _ = update(t, m, key("tab"))
	m, _ = update(t, m, key("down"))
	m, cmd := update(t, m, key("c"))

	assert.Equal(t, "https://github.com/all4x/ghlookup.git", cb.text)
	require.NotNil(t, m.notice)
	assert.Equal(t, "Copied to clipboard!", m.notice.Title)
	assert.Equal(t, "https://github.com/all4x/ghlookup.git", m.notice.Description)
	assert.Contains(t, m.View(), "Copied to clipboard!")

	require.NotNil(t, cmd)
	expired := cmd()
	assert.Equal(t, noticeExpiredMsg{id: 1}, expired)

	m, _ = update(t, m, expired)
	assert.Nil(t, m.notice)
}

func TestUpdate_StaleNotificationExpiryIsIgnored(t *testing.T) {
	ctrl := newFakeController(settledState)
	m, _, _ := newModel(t, ctrl, Options{})

	m, _ = update(t, m, key("tab"))
	m, _ = update(t, m, key("c"))
	m, _ = update(t, m, key("c"))
	require.Equal(t, 2, m.noticeID)

	m, _ = update(t, m, noticeExpiredMsg{id: 1})
	assert.NotNil(t, m.notice)
	m, _ = update(t, m, noticeExpiredMsg{id: 2})
	assert.Nil(t, m.notice)
}

func TestUpdate_CopyFailure(t *testing.T) {
	ctrl := newFakeController(settledState)
	m, _, _ := newModel(t, ctrl, Options{Clipboard: &fakeClipboard{err: errors.New("no xclip")}})

	m, _ = update(t, m, key("tab"))
	m, _ = update(t, m, key("c"))
	require.NotNil(t, m.notice)
	assert.Equal(t, "Could not copy", m.notice.Title)
}

func TestUpdate_Open(t *testing.T) {
	ctrl := newFakeController(settledState)
	m, _, b := newModel(t, ctrl, Options{})

	m, _ = update(t, m, key("tab"))
	m, _ = update(t, m, key("o"))
	m, _ = update(t, m, key("down"))
	_, _ = update(t, m, key("enter"))

	assert.Equal(t, []string{
		"https://github.com/all4x/dotfiles",
		"https://github.com/all4x/ghlookup",
	}, b.opened)
}

func TestUpdate_ActionsWithoutRepositories(t *testing.T) {
	ctrl := newFakeController(lookup.State{Handle: "ghost", ProfileStatus: lookup.StatusSettled, RepositoriesStatus: lookup.StatusSettled})
	m, cb, b := newModel(t, ctrl, Options{})

	m, _ = update(t, m, key("tab"))
	m, cmd := update(t, m, key("c"))
	assert.Nil(t, cmd)
	_, _ = update(t, m, key("o"))

	assert.Empty(t, cb.text)
	assert.Empty(t, b.opened)
}

func TestUpdate_ExpandProfile(t *testing.T) {
	ctrl := newFakeController(settledState)
	m, _, _ := newModel(t, ctrl, Options{})

	assert.NotContains(t, m.View(), "writes Go")

	m, _ = update(t, m, key("tab"))
	m, _ = update(t, m, key("p"))
	assert.True(t, m.expanded)
	assert.Contains(t, m.View(), "writes Go")
	assert.Contains(t, m.View(), "Lisbon")

	m, _ = update(t, m, key("p"))
	assert.False(t, m.expanded)
}

func TestUpdate_Quit(t *testing.T) {
	ctrl := newFakeController(settledState)
	m, _, _ := newModel(t, ctrl, Options{})

	_, cmd := update(t, m, key("ctrl+c"))
	assert.True(t, isQuit(cmd))

	m, _ = update(t, m, key("tab"))
	_, cmd = update(t, m, key("q"))
	assert.True(t, isQuit(cmd))
}

func TestUpdate_CursorClampedWhenListShrinks(t *testing.T) {
	ctrl := newFakeController(settledState)
	m, _, _ := newModel(t, ctrl, Options{})

	m, _ = update(t, m, key("tab"))
	m, _ = update(t, m, key("down"))
	require.Equal(t, 1, m.table.Cursor())

	shrunk := settledState
	shrunk.Repositories = settledState.Repositories[:1]
	m, _ = update(t, m, stateMsg{state: shrunk})
	assert.Equal(t, 0, m.table.Cursor())
}

func TestView(t *testing.T) {
	tests := []struct {
		name     string
		state    lookup.State
		contains []string
		excludes []string
	}{
		{
			name:     "settled",
			state:    settledState,
			contains: []string{"AL", "Alex", "https://github.com/all4x.png", "dotfiles", "ghlookup"},
			excludes: []string{"This user has no repositories."},
		},
		{
			name: "loading",
			state: lookup.State{
				Handle:             "all4x",
				ProfileStatus:      lookup.StatusLoading,
				RepositoriesStatus: lookup.StatusLoading,
			},
			contains: []string{"Loading profile...", "Loading repositories..."},
		},
		{
			name: "failed lookup",
			state: lookup.State{
				Handle:             "ghost",
				ProfileStatus:      lookup.StatusSettled,
				RepositoriesStatus: lookup.StatusSettled,
			},
			contains: []string{"No profile for ghost", "This user has no repositories."},
			excludes: []string{"ghost.png"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, _, _ := newModel(t, newFakeController(tt.state), Options{})
			out := m.View()
			for _, s := range tt.contains {
				assert.Contains(t, out, s)
			}
			for _, s := range tt.excludes {
				assert.NotContains(t, out, s)
			}
		})
	}
}

func TestUpdate_WindowSize(t *testing.T) {
	m, _, _ := newModel(t, newFakeController(settledState), Options{})

	m, _ = update(t, m, tea.WindowSizeMsg{Width: 120, Height: 40})
	assert.Equal(t, 120, m.width)
	assert.Equal(t, 40, m.height)
	assert.Equal(t, 120, m.table.Width())
}
