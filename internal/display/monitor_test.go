package display

import (
	"bytes"
	"strings"
	"sync"
	"testing"

	"github.com/charmbracelet/lipgloss"
	"github.com/lox/lastcard/internal/deck"
	"github.com/lox/lastcard/internal/game"
	"github.com/muesli/termenv"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func snapshot(top string, turn int) *game.Snapshot {
	card, err := deck.ParseCard(top)
	if err != nil {
		panic(err)
	}
	return &game.Snapshot{
		MatchID:    "m1",
		Status:     game.StatusPlaying,
		TopCard:    &card,
		Color:      deck.Blue,
		Direction:  1,
		TurnNumber: turn,
		Winner:     game.NoSeat,
		DeckSize:   93,
		Seats: []game.SeatView{
			{Seat: 0, Name: "alice", HandSize: 7},
			{Seat: 1, Name: "bob", HandSize: 7},
		},
	}
}

func renderer(p termenv.Profile) *lipgloss.Renderer {
	r := lipgloss.NewRenderer(&bytes.Buffer{})
	r.SetColorProfile(p)
	return r
}

func plainMonitor(buf *bytes.Buffer) *Monitor {
	return NewMonitor(buf, WithProfile(termenv.Ascii))
}

func TestMonitorLifecycle(t *testing.T) {
	var buf bytes.Buffer
	m := plainMonitor(&buf)

	m.OnMatchStart("main", snapshot("r5", 1))
	s := snapshot("r7", 2)
	s.Current = 1
	s.Seats[0].HandSize = 6
	m.OnStateChange("main", s)
	// Same turn again is not repeated
	m.OnStateChange("main", s)

	end := snapshot("r1", 9)
	end.Status = game.StatusFinished
	end.Winner = 0
	m.OnMatchEnd("main", end)

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "[main] match m1 started alice, bob | opens r5", lines[0])
	assert.Equal(t, "[main] turn 2 | top r7 → | alice:6 bob:7 | deck 93", lines[1])
	assert.Equal(t, "[main] alice wins match m1 after 9 turns", lines[2])
}

func TestMonitorNoWinner(t *testing.T) {
	var buf bytes.Buffer
	m := plainMonitor(&buf)
	m.OnMatchEnd("duel", snapshot("g1", 3))
	assert.Equal(t, "[duel] match m1 ended without a winner\n", buf.String())
}

func TestSummary(t *testing.T) {
	styles := NewStyles(renderer(termenv.Ascii))

	t.Run("wild shows bound colour", func(t *testing.T) {
		s := snapshot("W+4", 4)
		s.Direction = -1
		s.Paused = true
		s.Seats[1].HandSize = 1
		s.Seats[1].HasDeclared = true
		s.Seats[1].Disconnected = true
		assert.Equal(t, "turn 4 paused | top W+4 (blue) ← | alice:7 bob:1! | deck 93", Summary(styles, s))
	})

	t.Run("no top card", func(t *testing.T) {
		s := snapshot("r1", 0)
		s.TopCard = nil
		assert.Contains(t, Summary(styles, s), "top - →")
	})
}

func TestStylesHand(t *testing.T) {
	styles := NewStyles(renderer(termenv.Ascii))
	assert.Equal(t, "r5 gS W", styles.Hand(deck.MustParseCards("r5 gS W")))
	assert.Equal(t, "", styles.Hand(nil))

	colored := NewStyles(renderer(termenv.TrueColor))
	assert.NotEqual(t, "r5", colored.Card(deck.MustParseCards("r5")[0]))
	assert.Contains(t, colored.Card(deck.MustParseCards("r5")[0]), "r5")
}

func TestMonitorConcurrentTables(t *testing.T) {
	var buf bytes.Buffer
	var mu sync.Mutex
	m := NewMonitor(writerFunc(func(p []byte) (int, error) {
		mu.Lock()
		defer mu.Unlock()
		return buf.Write(p)
	}), WithProfile(termenv.Ascii))

	var wg sync.WaitGroup
	for _, table := range []string{"a", "b", "c"} {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for turn := 2; turn < 12; turn++ {
				m.OnStateChange(table, snapshot("r1", turn))
			}
		}()
	}
	wg.Wait()
	assert.Equal(t, 30, strings.Count(buf.String(), "\n"))
}

type writerFunc func([]byte) (int, error)

func (f writerFunc) Write(p []byte) (int, error) { return f(p) }
