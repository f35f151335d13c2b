package display

import (
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/lox/lastcard/internal/game"
)

// Dashboard runs the operator TUI. It satisfies server.MatchMonitor, and as
// an io.Writer it can take the server log so that log lines land in the
// event pane instead of corrupting the screen.
type Dashboard struct {
	model   *TUIModel
	program *tea.Program
}

// NewDashboard creates a dashboard; extra options are passed to Bubble Tea
func NewDashboard(opts ...tea.ProgramOption) *Dashboard {
	model := NewTUIModel(lipgloss.DefaultRenderer())
	opts = append([]tea.ProgramOption{tea.WithAltScreen()}, opts...)

	return &Dashboard{
		model:   model,
		program: tea.NewProgram(model, opts...),
	}
}

// Run blocks until the user quits or Quit is called
func (d *Dashboard) Run() error {
	_, err := d.program.Run()
	return err
}

// Quit stops the program
func (d *Dashboard) Quit() {
	d.program.Quit()
}

// Write forwards one or more log lines to the event pane
func (d *Dashboard) Write(p []byte) (int, error) {
	for line := range strings.SplitSeq(strings.TrimRight(string(p), "\n"), "\n") {
		d.program.Send(logMsg(line))
	}
	return len(p), nil
}

func (d *Dashboard) OnMatchStart(table string, s *game.Snapshot) {
	d.program.Send(snapshotMsg{table: table, kind: eventStart, snap: s})
}

func (d *Dashboard) OnStateChange(table string, s *game.Snapshot) {
	d.program.Send(snapshotMsg{table: table, kind: eventChange, snap: s})
}

func (d *Dashboard) OnMatchEnd(table string, s *game.Snapshot) {
	d.program.Send(snapshotMsg{table: table, kind: eventEnd, snap: s})
}
