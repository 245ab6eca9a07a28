package tui

import (
	"strings"

	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/lipgloss"

	"github.com/frobware/ghlookup/lookup"
	"github.com/frobware/ghlookup/view"
)

// Lines taken by everything except the repository table.
const chromeHeight = 12

var (
	avatarStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("230")).
			Background(lipgloss.Color("62")).
			Padding(0, 1)

	titleStyle = lipgloss.NewStyle().Bold(true)

	dimStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))

	loadingStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))

	panelStyle = lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("240")).
			Padding(0, 1)

	noticeStyle = lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("42")).
			Padding(0, 1)

	tableStyle = lipgloss.NewStyle().
			BorderStyle(lipgloss.NormalBorder()).
			BorderForeground(lipgloss.Color("240"))
)

func columns() []table.Column {
	return []table.Column{
		{Title: "Name", Width: 28},
		{Title: "Language", Width: 12},
		{Title: "Link", Width: 48},
	}
}

func newTable() table.Model {
	t := table.New(
		table.WithColumns(columns()),
		table.WithHeight(10),
		table.WithFocused(false),
	)

	s := table.DefaultStyles()
	s.Header = s.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color("240")).
		BorderBottom(true).
		Bold(true)
	s.Selected = s.Selected.
		Foreground(lipgloss.Color("229")).
		Background(lipgloss.Color("57")).
		Bold(false)
	t.SetStyles(s)

	return t
}

func rows(repos []lookup.Repository) []table.Row {
	out := make([]table.Row, 0, len(repos))
	for _, r := range repos {
		out = append(out, table.Row{r.Name, r.Language, r.HTMLURL})
	}
	return out
}

func (m Model) View() string {
	var b strings.Builder

	b.WriteString(m.header())
	b.WriteString("\n\n")
	b.WriteString(m.input.View())
	b.WriteString("\n\n")

	if m.state.RepositoriesStatus == lookup.StatusLoading {
		b.WriteString(loadingStyle.Render("Loading repositories..."))
	} else if len(m.state.Repositories) == 0 {
		b.WriteString(dimStyle.Render(view.EmptyMessage))
	} else {
		b.WriteString(tableStyle.Render(m.table.View()))
	}
	b.WriteString("\n")

	if m.notice != nil {
		b.WriteString(noticeStyle.Render(titleStyle.Render(m.notice.Title) + "\n" + m.notice.Description))
		b.WriteString("\n")
	}

	b.WriteString(dimStyle.Render(m.help()))
	return b.String()
}

func (m Model) header() string {
	p := m.state.Profile
	if p == nil {
		if m.state.ProfileStatus == lookup.StatusLoading {
			return loadingStyle.Render("Loading profile...")
		}
		return dimStyle.Render("No profile for " + m.state.Handle)
	}

	name := p.Name
	if name == "" {
		name = p.Login
	}
	line := lipgloss.JoinHorizontal(lipgloss.Center,
		avatarStyle.Render(view.FallbackLabel(p.Login)),
		" ",
		titleStyle.Render(name),
		" ",
		dimStyle.Render(view.AvatarURL(p.Login)),
	)
	if !m.expanded {
		return line
	}

	var details []string
	details = append(details, "Login: "+p.Login)
	if p.Location != "" {
		details = append(details, "Location: "+p.Location)
	}
	if p.Bio != "" {
		details = append(details, "Bio: "+p.Bio)
	}
	return line + "\n" + panelStyle.Render(strings.Join(details, "\n"))
}

func (m Model) help() string {
	if m.focus == focusInput {
		if m.trigger == TriggerBlur {
			return "tab: look up and browse repositories  ctrl+c: quit"
		}
		return "enter: look up  tab: browse repositories  ctrl+c: quit"
	}
	return "↑/↓: move  o: open  c: copy clone URL  p: profile  /: edit handle  q: quit"
}
