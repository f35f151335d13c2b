package display

import (
	"fmt"
	"slices"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/lox/lastcard/internal/game"
)

// maxLogLines bounds the scrollback kept by the dashboard
const maxLogLines = 1000

type eventKind int

const (
	eventStart eventKind = iota
	eventChange
	eventEnd
)

// snapshotMsg carries a monitor callback into the Bubble Tea loop
type snapshotMsg struct {
	table string
	kind  eventKind
	snap  *game.Snapshot
}

// logMsg is a line written by the server logger
type logMsg string

// TUIModel is the Bubble Tea model of the operator dashboard. It shows the
// full view of one watched table above a scrolling event log.
type TUIModel struct {
	// UI components
	logViewport viewport.Model
	input       textinput.Model

	// State
	tables   map[string]*game.Snapshot
	turns    map[string]int
	order    []string
	watching string
	gameLog  []string
	status   string
	quitting bool

	styles *Styles
	frame  *TUIStyles

	// Dimensions
	width  int
	height int
}

// TUIStyles contains the pane styling
type TUIStyles struct {
	LogPane   lipgloss.Style
	TablePane lipgloss.Style
	Header    lipgloss.Style
	Help      lipgloss.Style
	Error     lipgloss.Style
}

// NewTUIModel creates a dashboard model rendering through r
func NewTUIModel(r *lipgloss.Renderer) *TUIModel {
	frame := &TUIStyles{
		LogPane: r.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#626262")).
			Padding(0, 1),
		TablePane: r.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#04B575")).
			Padding(0, 1),
		Header: r.NewStyle().
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4")).
			Padding(0, 1).
			Bold(true),
		Help: r.NewStyle().
			Foreground(lipgloss.Color("#626262")),
		Error: r.NewStyle().
			Foreground(lipgloss.Color("#FF6B6B")).
			Bold(true),
	}

	vp := viewport.New(100, 15)
	vp.SetContent("")

	ti := textinput.New()
	ti.Placeholder = "watch <table>, clear, quit"
	ti.Focus()
	ti.CharLimit = 100
	ti.Width = 100
	ti.Prompt = "> "

	return &TUIModel{
		logViewport: vp,
		input:       ti,
		tables:      make(map[string]*game.Snapshot),
		turns:       make(map[string]int),
		styles:      NewStyles(r),
		frame:       frame,
	}
}

// Init initializes the TUI model
func (m *TUIModel) Init() tea.Cmd {
	return textinput.Blink
}

// Update handles messages in the TUI
func (m *TUIModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.updateDimensions()

	case snapshotMsg:
		m.observe(msg)

	case logMsg:
		m.AddLogEntry(m.frame.Help.Render(string(msg)))

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "esc":
			m.quitting = true
			return m, tea.Quit
		case "tab":
			m.cycle()
		case "enter":
			cmd := m.processCommand(strings.TrimSpace(m.input.Value()))
			m.input.SetValue("")
			if cmd != nil {
				return m, cmd
			}
		case "pgup":
			m.logViewport.HalfPageUp()
		case "pgdown":
			m.logViewport.HalfPageDown()
		}
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	cmds = append(cmds, cmd)

	return m, tea.Batch(cmds...)
}

// observe records a snapshot and logs a line for it
func (m *TUIModel) observe(msg snapshotMsg) {
	if _, ok := m.tables[msg.table]; !ok {
		m.order = append(m.order, msg.table)
		slices.Sort(m.order)
	}
	m.tables[msg.table] = msg.snap
	if m.watching == "" {
		m.watching = msg.table
	}

	prefix := m.styles.Table.Render("[" + msg.table + "]")
	s := msg.snap
	switch msg.kind {
	case eventStart:
		m.turns[msg.table] = s.TurnNumber
		m.AddLogEntry(fmt.Sprintf("%s match %s started", prefix, s.MatchID))
	case eventChange:
		if m.turns[msg.table] == s.TurnNumber {
			return
		}
		m.turns[msg.table] = s.TurnNumber
		m.AddLogEntry(prefix + " " + Summary(m.styles, s))
	case eventEnd:
		delete(m.turns, msg.table)
		if s.Winner != game.NoSeat {
			m.AddLogEntry(fmt.Sprintf("%s %s wins match %s", prefix, m.styles.Winner.Render(s.Seats[s.Winner].Name), s.MatchID))
		}
	}
}

func (m *TUIModel) cycle() {
	if len(m.order) == 0 {
		return
	}
	i := slices.Index(m.order, m.watching)
	m.watching = m.order[(i+1)%len(m.order)]
}

// processCommand handles a line typed into the input
func (m *TUIModel) processCommand(input string) tea.Cmd {
	parts := strings.Fields(input)
	m.status = ""
	if len(parts) == 0 {
		return nil
	}

	switch strings.ToLower(parts[0]) {
	case "watch", "w":
		if len(parts) < 2 {
			m.status = "usage: watch <table>"
			return nil
		}
		if _, ok := m.tables[parts[1]]; !ok {
			m.status = fmt.Sprintf("no match seen at table %q", parts[1])
			return nil
		}
		m.watching = parts[1]
	case "clear":
		m.ClearLog()
	case "quit", "q":
		m.quitting = true
		return tea.Quit
	default:
		m.status = fmt.Sprintf("unknown command %q", parts[0])
	}
	return nil
}

// Watching returns the table shown in the table pane
func (m *TUIModel) Watching() string {
	return m.watching
}

// View renders the TUI
func (m *TUIModel) View() string {
	if m.quitting {
		return ""
	}

	width := max(m.width-4, 20)
	header := m.frame.Header.Render("lastcard")
	table := m.frame.TablePane.Width(width).Render(m.renderTable())
	logPane := m.frame.LogPane.Width(width).Render(m.logViewport.View())

	footer := m.input.View() + "\n"
	if m.status != "" {
		footer += m.frame.Error.Render(m.status)
	} else {
		footer += m.frame.Help.Render("Tab next table • PgUp/PgDn scroll • Ctrl+C to quit")
	}

	return lipgloss.JoinVertical(lipgloss.Left, header, table, logPane, footer)
}

// renderTable renders the watched table with every hand face up
func (m *TUIModel) renderTable() string {
	s, ok := m.tables[m.watching]
	if !ok {
		return "Waiting for a match to start"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%s  match %s  %s  turn %d\n",
		m.styles.Table.Render(m.watching), s.MatchID, s.Status, s.TurnNumber)

	top := "-"
	if s.TopCard != nil {
		top = m.styles.Card(*s.TopCard)
	}
	fmt.Fprintf(&b, "Top: %s  colour %s  deck %d  discard %d\n",
		top, m.styles.Color(s.Color), s.DeckSize, s.DiscardSize)

	for i, seat := range s.Seats {
		marker := "  "
		if i == s.Current && s.Status == game.StatusPlaying {
			marker = m.styles.Current.Render("▶ ")
		}
		name := seat.Name
		if seat.Disconnected {
			name = m.styles.Away.Render(name)
		}
		fmt.Fprintf(&b, "%s%-20s %2d  %s", marker, name, seat.HandSize, m.styles.Hand(seat.Hand))
		if seat.HasDeclared {
			b.WriteString("  last card!")
		}
		b.WriteString("\n")
	}
	return strings.TrimRight(b.String(), "\n")
}

// updateDimensions updates component dimensions based on terminal size
func (m *TUIModel) updateDimensions() {
	if m.height <= 0 || m.width <= 0 {
		return
	}

	// Header, table pane with up to ten seats, input and help lines
	reserved := 1 + 16 + 2
	logHeight := max(m.height-reserved, 3)

	m.logViewport.Width = m.width - 4
	m.logViewport.Height = logHeight - 2
	m.input.Width = m.width - 8
}

// AddLogEntry adds an entry to the event log
func (m *TUIModel) AddLogEntry(entry string) {
	m.gameLog = append(m.gameLog, entry)
	if len(m.gameLog) > maxLogLines {
		m.gameLog = m.gameLog[len(m.gameLog)-maxLogLines:]
	}
	m.logViewport.SetContent(strings.Join(m.gameLog, "\n"))

	if m.logViewport.Height > 0 && m.logViewport.Width > 0 {
		m.logViewport.GotoBottom()
	}
}

// ClearLog clears the event log
func (m *TUIModel) ClearLog() {
	m.gameLog = nil
	m.logViewport.SetContent("")
}
