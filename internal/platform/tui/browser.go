package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/vovakirdan/space-dodge/internal/storage"
)

// Browser layout constants
const (
	browserMaxSessions = 100 // Max sessions to load
	browserChromeRows  = 8   // Rows taken by title, borders, help
)

// BrowserKeyMap defines the key bindings for the session browser.
type BrowserKeyMap struct {
	Up   key.Binding
	Down key.Binding
	Open key.Binding
	Back key.Binding
	Quit key.Binding
}

// ShortHelp returns key bindings for the short help view.
func (k BrowserKeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Up, k.Down, k.Open, k.Back, k.Quit}
}

// FullHelp returns key bindings for the full help view.
func (k BrowserKeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.Open},
		{k.Back, k.Quit},
	}
}

// DefaultBrowserKeyMap returns default key bindings.
func DefaultBrowserKeyMap() BrowserKeyMap {
	return BrowserKeyMap{
		Up: key.NewBinding(
			key.WithKeys("up", "k"),
			key.WithHelp("up/k", "scroll up"),
		),
		Down: key.NewBinding(
			key.WithKeys("down", "j"),
			key.WithHelp("down/j", "scroll down"),
		),
		Open: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "show blocks"),
		),
		Back: key.NewBinding(
			key.WithKeys("esc", "b"),
			key.WithHelp("esc/b", "back"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
	}
}

// SessionBrowserModel is the Bubble Tea model for browsing recorded sessions
// and drilling into their per-minute metric blocks.
type SessionBrowserModel struct {
	store    *storage.Store
	subject  string // Empty matches all subjects
	sessions []storage.SessionRow
	blocks   []storage.BlockRow

	viewingBlocks bool
	openSessionID string

	table    table.Model
	help     help.Model
	keys     BrowserKeyMap
	width    int
	height   int
	quitting bool
	loadErr  error
}

// NewSessionBrowserModel creates a browser showing the most recent sessions.
func NewSessionBrowserModel(store *storage.Store, subject string, width, height int) SessionBrowserModel {
	h := help.New()
	h.ShowAll = false

	m := SessionBrowserModel{
		store:   store,
		subject: subject,
		keys:    DefaultBrowserKeyMap(),
		help:    h,
		width:   width,
		height:  height,
	}

	m.loadSessions()
	m.table = m.createSessionTable()
	return m
}

// createSessionTable creates the sessions table.
func (m *SessionBrowserModel) createSessionTable() table.Model {
	columns := []table.Column{
		{Title: "Session", Width: 30},
		{Title: "Subject", Width: 10},
		{Title: "Started", Width: 16},
		{Title: "Dur", Width: 7},
		{Title: "Diff", Width: 5},
		{Title: "Lives", Width: 5},
	}

	rows := make([]table.Row, len(m.sessions))
	for i, s := range m.sessions {
		dur, diff, lives := "open", "-", "-"
		if s.Ended {
			dur = fmt.Sprintf("%.0fs", s.DurationSec)
			diff = fmt.Sprintf("%.2f", s.FinalDifficulty)
			lives = fmt.Sprintf("%d", s.LivesRemaining)
		}
		rows[i] = table.Row{
			s.SessionID,
			s.SubjectID,
			s.StartedAt.Local().Format("2006-01-02 15:04"),
			dur,
			diff,
			lives,
		}
	}

	return m.buildTable(columns, rows)
}

// createBlockTable creates the blocks table for the open session.
func (m *SessionBrowserModel) createBlockTable() table.Model {
	columns := []table.Column{
		{Title: "Block", Width: 5},
		{Title: "Dur", Width: 7},
		{Title: "Diff", Width: 5},
		{Title: "Spd", Width: 5},
		{Title: "Spawn", Width: 5},
		{Title: "Avoid", Width: 5},
		{Title: "Hits", Width: 4},
		{Title: "Near", Width: 4},
		{Title: "SR", Width: 5},
	}

	rows := make([]table.Row, len(m.blocks))
	for i, b := range m.blocks {
		sr := "-"
		if b.SuccessRate != nil {
			sr = fmt.Sprintf("%.0f%%", *b.SuccessRate*100)
		}
		rows[i] = table.Row{
			fmt.Sprintf("%d", b.BlockIndex),
			fmt.Sprintf("%.1fs", b.DurationSec),
			fmt.Sprintf("%.2f", b.DifficultyAvg),
			fmt.Sprintf("%.2f", b.SpeedScaleAvg),
			fmt.Sprintf("%d", b.Spawned),
			fmt.Sprintf("%d", b.Avoided),
			fmt.Sprintf("%d", b.Hits),
			fmt.Sprintf("%d", b.NearMisses),
			sr,
		}
	}

	return m.buildTable(columns, rows)
}

// buildTable assembles a styled table sized to the terminal.
func (m *SessionBrowserModel) buildTable(columns []table.Column, rows []table.Row) table.Model {
	height := m.height - browserChromeRows
	if height < 3 {
		height = 3
	}

	t := table.New(
		table.WithColumns(columns),
		table.WithRows(rows),
		table.WithFocused(true),
		table.WithHeight(height),
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

// loadSessions loads the most recent sessions.
func (m *SessionBrowserModel) loadSessions() {
	sessions, err := m.store.ListSessions(m.subject, browserMaxSessions)
	if err != nil {
		m.loadErr = err
		m.sessions = nil
		return
	}
	m.loadErr = nil
	m.sessions = sessions
}

// loadBlocks loads the blocks of one session.
func (m *SessionBrowserModel) loadBlocks(sessionID string) {
	blocks, err := m.store.BlocksForSession(sessionID)
	if err != nil {
		m.loadErr = err
		m.blocks = nil
		return
	}
	m.loadErr = nil
	m.blocks = blocks
}

// Init initializes the browser model.
func (m SessionBrowserModel) Init() tea.Cmd {
	return nil
}

// Update handles messages for the browser.
func (m SessionBrowserModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Quit):
			m.quitting = true
			return m, tea.Quit

		case key.Matches(msg, m.keys.Back):
			if m.viewingBlocks {
				// Back to the session list, cursor position is rebuilt
				m.viewingBlocks = false
				m.table = m.createSessionTable()
				return m, nil
			}
			m.quitting = true
			return m, tea.Quit

		case key.Matches(msg, m.keys.Open):
			if !m.viewingBlocks && len(m.sessions) > 0 {
				idx := m.table.Cursor()
				if idx >= 0 && idx < len(m.sessions) {
					m.openSessionID = m.sessions[idx].SessionID
					m.loadBlocks(m.openSessionID)
					m.viewingBlocks = true
					m.table = m.createBlockTable()
				}
			}
			return m, nil

		case key.Matches(msg, m.keys.Up), key.Matches(msg, m.keys.Down):
			// Pass to table for scrolling
			m.table, cmd = m.table.Update(msg)
			return m, cmd
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		if m.viewingBlocks {
			m.table = m.createBlockTable()
		} else {
			m.table = m.createSessionTable()
		}
		m.help.Width = msg.Width
		return m, nil
	}

	m.table, cmd = m.table.Update(msg)
	return m, cmd
}

// View renders the browser.
func (m SessionBrowserModel) View() string {
	if m.quitting {
		return ""
	}

	var b strings.Builder

	titleStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("229")).
		MarginBottom(1)

	title := "SESSIONS"
	if m.subject != "" {
		title = fmt.Sprintf("SESSIONS - %s", m.subject)
	}
	if m.viewingBlocks {
		title = fmt.Sprintf("BLOCKS - %s", m.openSessionID)
	}
	b.WriteString(titleStyle.Render(title))
	b.WriteString("\n\n")

	tableStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("240")).
		Padding(0, 1)
	b.WriteString(tableStyle.Render(m.renderTableContent()))

	b.WriteString("\n")
	helpStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("241"))
	b.WriteString(helpStyle.Render(m.help.View(m.keys)))

	return b.String()
}

// renderTableContent renders the table or an empty-state message.
func (m SessionBrowserModel) renderTableContent() string {
	emptyStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("241")).
		Italic(true).
		Padding(2, 4)

	if m.loadErr != nil {
		return emptyStyle.Render(fmt.Sprintf("Could not load telemetry:\n%v", m.loadErr))
	}
	if !m.viewingBlocks && len(m.sessions) == 0 {
		return emptyStyle.Render("No sessions recorded yet.\nRun 'dodge play' to record the first one.")
	}
	if m.viewingBlocks && len(m.blocks) == 0 {
		return emptyStyle.Render("No blocks recorded for this session.")
	}

	return m.table.View()
}

// RunSessionBrowser runs the interactive session browser and blocks until the
// user quits.
func RunSessionBrowser(store *storage.Store, subject string, width, height int) error {
	model := NewSessionBrowserModel(store, subject, width, height)

	p := tea.NewProgram(
		model,
		tea.WithAltScreen(),
	)

	_, err := p.Run()
	return err
}
