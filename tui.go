package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

var (
	titleStyle = lipgloss.NewStyle().Bold(true).
			Foreground(lipgloss.Color("#083d77")).
			Background(lipgloss.Color("#f4f1de")).
			Padding(0, 1)
	errorStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#b00020"))
	helpStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	linkStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#0c4006")).Background(lipgloss.Color("#f4f1de"))
)

type snapshotMsg Snapshot

type refreshDoneMsg struct{ err error }

// TuiModel renders the gallery in a terminal. It mirrors the state through
// snapshots delivered by its subscription; the search box writes back to the
// state on every keystroke.
type TuiModel struct {
	ctx     context.Context
	gallery *Gallery
	updates chan Snapshot

	search  textinput.Model
	spinner spinner.Model
	table   table.Model

	snap Snapshot
	view View
}

// NewTuiModel subscribes a new model to the gallery state. The returned
// function drops the subscription.
func NewTuiModel(ctx context.Context, gallery *Gallery) (TuiModel, func()) {
	ti := textinput.New()
	ti.Prompt = "Search by Description: "
	ti.Placeholder = "type to filter"
	ti.CharLimit = 100
	ti.Width = 50
	ti.Focus()

	sp := spinner.New()
	sp.Spinner = spinner.Dot

	t := table.New(
		table.WithColumns([]table.Column{
			{Title: "Description", Width: 40},
			{Title: "Thumbnail", Width: 36},
			{Title: "URL", Width: 36},
		}),
		table.WithFocused(true),
		table.WithHeight(12),
	)
	styles := table.DefaultStyles()
	styles.Header = styles.Header.Bold(true).Foreground(lipgloss.Color("#f4f1de")).Background(lipgloss.Color("#083d77"))
	styles.Selected = styles.Selected.Foreground(lipgloss.Color("#083d77")).Background(lipgloss.Color("#f4f1de"))
	t.SetStyles(styles)

	updates := make(chan Snapshot, 1)
	unsubscribe := gallery.State().Subscribe(func(s Snapshot) {
		// Keep only the newest snapshot; notifications are serialized.
		select {
		case updates <- s:
		default:
			select {
			case <-updates:
			default:
			}
			updates <- s
		}
	})

	m := TuiModel{
		ctx:     ctx,
		gallery: gallery,
		updates: updates,
		search:  ti,
		spinner: sp,
		table:   t,
		snap:    gallery.State().Snapshot(),
	}
	m.reproject()
	return m, unsubscribe
}

func (m TuiModel) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, m.spinner.Tick, m.waitForSnapshot(), m.refresh())
}

func (m TuiModel) waitForSnapshot() tea.Cmd {
	return func() tea.Msg {
		select {
		case s := <-m.updates:
			return snapshotMsg(s)
		case <-m.ctx.Done():
			return nil
		}
	}
}

func (m TuiModel) refresh() tea.Cmd {
	return func() tea.Msg {
		return refreshDoneMsg{err: m.gallery.Refresh(m.ctx)}
	}
}

func (m *TuiModel) reproject() {
	m.view = Project(m.snap)
	rows := make([]table.Row, len(m.view.Rows))
	for i, r := range m.view.Rows {
		rows[i] = table.Row{r.Description, r.ThumbnailUrl, r.PageUrl}
	}
	m.table.SetRows(rows)
	if len(rows) > 0 && m.table.Cursor() >= len(rows) {
		m.table.SetCursor(len(rows) - 1)
	}
}

func (m TuiModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "esc":
			m.gallery.Close()
			return m, tea.Quit
		case "ctrl+r":
			return m, m.refresh()
		case "up", "down", "pgup", "pgdown":
			m.table, cmd = m.table.Update(msg)
			return m, cmd
		}
		before := m.search.Value()
		m.search, cmd = m.search.Update(msg)
		if term := m.search.Value(); term != before {
			m.gallery.State().SetSearchTerm(term)
			m.snap.SearchTerm = term
			m.reproject()
		}
		return m, cmd

	case snapshotMsg:
		m.snap = Snapshot(msg)
		m.snap.SearchTerm = m.search.Value()
		m.reproject()
		return m, m.waitForSnapshot()

	case refreshDoneMsg:
		return m, nil

	case spinner.TickMsg:
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case tea.WindowSizeMsg:
		m.table.SetHeight(max(msg.Height-10, 3))
		return m, nil
	}

	m.search, cmd = m.search.Update(msg)
	return m, cmd
}

// hyperlink wraps label in an OSC 8 escape so supporting terminals open url
// in the browser.
func hyperlink(url, label string) string {
	return "\x1b]8;;" + url + "\x1b\\" + label + "\x1b]8;;\x1b\\"
}

func (m TuiModel) View() string {
	var sb strings.Builder
	sb.WriteString(titleStyle.Render("Unsplash Photo Gallery"))
	sb.WriteString("\n\n")
	sb.WriteString(m.search.View())
	sb.WriteString("\n\n")

	switch {
	case m.view.Loading():
		sb.WriteString(m.spinner.View())
		sb.WriteString(" Loading photos...\n")
	case m.view.Failed():
		sb.WriteString(errorStyle.Render(m.view.Message))
		sb.WriteString("\n")
	default:
		sb.WriteString(m.table.View())
		sb.WriteString("\n")
		if cursor := m.table.Cursor(); cursor >= 0 && cursor < len(m.view.Rows) {
			row := m.view.Rows[cursor]
			sb.WriteString(linkStyle.Render(hyperlink(row.PageUrl, row.LinkLabel)))
			sb.WriteString(" " + row.PageUrl + "\n")
		}
		sb.WriteString(helpStyle.Render(fmt.Sprintf("%d of %d photos", len(m.view.Rows), len(m.snap.Photos))))
		sb.WriteString("\n")
	}

	sb.WriteString(helpStyle.Render("↑/↓ select • ctrl+r refresh • esc quit"))
	return sb.String()
}
