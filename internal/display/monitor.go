package display

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/charmbracelet/lipgloss"
	"github.com/lox/lastcard/internal/game"
	"github.com/muesli/termenv"
)

// Monitor writes a line per match event. It satisfies server.MatchMonitor.
type Monitor struct {
	mu     sync.Mutex
	writer io.Writer
	styles *Styles
	turns  map[string]int
}

// MonitorOption configures a Monitor
type MonitorOption func(*monitorOptions)

type monitorOptions struct {
	profile *termenv.Profile
}

// WithProfile forces a colour profile instead of detecting one from the
// writer. termenv.Ascii disables styling.
func WithProfile(p termenv.Profile) MonitorOption {
	return func(o *monitorOptions) {
		o.profile = &p
	}
}

// NewMonitor creates a monitor writing to w, or stdout when w is nil
func NewMonitor(w io.Writer, opts ...MonitorOption) *Monitor {
	if w == nil {
		w = os.Stdout
	}
	var o monitorOptions
	for _, opt := range opts {
		opt(&o)
	}

	renderer := lipgloss.NewRenderer(w)
	if o.profile != nil {
		renderer.SetColorProfile(*o.profile)
	}

	return &Monitor{
		writer: w,
		styles: NewStyles(renderer),
		turns:  make(map[string]int),
	}
}

// OnMatchStart prints the opening card and seats
func (m *Monitor) OnMatchStart(table string, s *game.Snapshot) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.turns[table] = s.TurnNumber

	names := make([]string, len(s.Seats))
	for i, seat := range s.Seats {
		names[i] = seat.Name
	}
	m.printf(table, "match %s started %s %s opens %s",
		s.MatchID, strings.Join(names, ", "), m.sep(), m.top(s))
}

// OnStateChange prints one line per new turn
func (m *Monitor) OnStateChange(table string, s *game.Snapshot) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.turns[table] == s.TurnNumber {
		return
	}
	m.turns[table] = s.TurnNumber
	m.printf(table, "%s", Summary(m.styles, s))
}

// OnMatchEnd prints the winner
func (m *Monitor) OnMatchEnd(table string, s *game.Snapshot) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.turns, table)

	if s.Winner == game.NoSeat {
		m.printf(table, "match %s ended without a winner", s.MatchID)
		return
	}
	winner := s.Seats[s.Winner]
	m.printf(table, "%s wins match %s after %d turns",
		m.styles.Winner.Render(winner.Name), s.MatchID, s.TurnNumber)
}

// Summary renders a snapshot on one line: turn, active seat, top card and
// every seat's card count.
func Summary(styles *Styles, s *game.Snapshot) string {
	var b strings.Builder
	fmt.Fprintf(&b, "turn %d ", s.TurnNumber)
	if s.Paused {
		b.WriteString("paused ")
	}
	b.WriteString(styles.Separator.Render("|"))
	b.WriteString(" top ")
	if s.TopCard != nil {
		b.WriteString(styles.Card(*s.TopCard))
		if s.TopCard.IsWild() {
			fmt.Fprintf(&b, " (%s)", styles.Color(s.Color))
		}
	} else {
		b.WriteString("-")
	}
	direction := "→"
	if s.Direction < 0 {
		direction = "←"
	}
	fmt.Fprintf(&b, " %s %s", direction, styles.Separator.Render("|"))

	for i, seat := range s.Seats {
		name := seat.Name
		switch {
		case i == s.Current:
			name = styles.Current.Render(name)
		case seat.Disconnected:
			name = styles.Away.Render(name)
		}
		fmt.Fprintf(&b, " %s:%d", name, seat.HandSize)
		if seat.HasDeclared {
			b.WriteString("!")
		}
	}
	fmt.Fprintf(&b, " %s deck %d", styles.Separator.Render("|"), s.DeckSize)
	return b.String()
}

func (m *Monitor) top(s *game.Snapshot) string {
	if s.TopCard == nil {
		return "-"
	}
	return m.styles.Card(*s.TopCard)
}

func (m *Monitor) sep() string {
	return m.styles.Separator.Render("|")
}

func (m *Monitor) printf(table, format string, args ...any) {
	prefix := m.styles.Table.Render("[" + table + "]")
	fmt.Fprintf(m.writer, "%s %s\n", prefix, fmt.Sprintf(format, args...))
}
