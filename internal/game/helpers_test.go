package game

import (
	"context"
	"fmt"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"
	"github.com/lox/lastcard/internal/deck"
	"github.com/lox/lastcard/internal/randutil"
	"github.com/stretchr/testify/require"
)

// stackedDeck builds a full deck that deals hands[i] to seat i, then reveals
// opening, then hands out draws in order. The rest of the deck sits below
// them in standard order.
func stackedDeck(t *testing.T, hands []string, opening string, draws string) *deck.Deck {
	t.Helper()

	var order []deck.Card
	for _, h := range hands {
		order = append(order, deck.MustParseCards(h)...)
	}
	order = append(order, deck.MustParseCards(opening)...)
	order = append(order, deck.MustParseCards(draws)...)

	rest := deck.Standard()
	for _, c := range order {
		found := false
		for i, r := range rest {
			if r == c {
				rest = append(rest[:i], rest[i+1:]...)
				found = true
				break
			}
		}
		require.True(t, found, "deck has no more %s", c)
	}

	cards := rest
	for i := len(order) - 1; i >= 0; i-- {
		cards = append(cards, order[i])
	}
	return deck.NewStacked(cards, randutil.New(1))
}

type harness struct {
	t      *testing.T
	clock  *quartz.Mock
	engine *Engine
	ids    []string

	mu       sync.Mutex
	starts   []TurnStart
	timeouts []TurnTimeout
	changes  int
}

func seatIDs(n int) ([]string, []string, []string) {
	ids := make([]string, n)
	names := make([]string, n)
	wallets := make([]string, n)
	for i := range ids {
		ids[i] = fmt.Sprintf("conn-%d", i)
		names[i] = fmt.Sprintf("player%d", i)
		wallets[i] = fmt.Sprintf("wallet-%d", i)
	}
	return ids, names, wallets
}

// newHarness deals hands (one short-form string per seat) with the given
// opening card and draw order. The match is still dealing.
func newHarness(t *testing.T, hands []string, opening, draws string, opts ...Option) *harness {
	t.Helper()

	h := &harness{t: t, clock: quartz.NewMock(t)}
	ids, names, wallets := seatIDs(len(hands))
	h.ids = ids

	handSize := len(deck.MustParseCards(hands[0]))
	base := []Option{
		WithClock(h.clock),
		WithRand(randutil.New(1)),
		WithLogger(log.New(io.Discard)),
		WithMatchID("test-match"),
		WithHandSize(handSize),
		WithDeck(stackedDeck(t, hands, opening, draws)),
		WithHooks(Hooks{
			OnTurnStart: func(s TurnStart) {
				h.mu.Lock()
				defer h.mu.Unlock()
				h.starts = append(h.starts, s)
			},
			OnTurnTimeout: func(to TurnTimeout) {
				h.mu.Lock()
				defer h.mu.Unlock()
				h.timeouts = append(h.timeouts, to)
			},
			OnStateChange: func() {
				h.mu.Lock()
				defer h.mu.Unlock()
				h.changes++
			},
		}),
	}

	e, err := New(ids, names, wallets, append(base, opts...)...)
	require.NoError(t, err)
	h.engine = e
	return h
}

// start reveals the opening card and waits out the opening delay, leaving
// seat 0 with a running clock.
func (h *harness) start() {
	h.t.Helper()
	res := h.engine.DrawFirstCard()
	require.True(h.t, res.Success, res.Message)
	h.advance(DefaultTiming().Opening)
}

func (h *harness) advance(d time.Duration) {
	h.t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	h.clock.Advance(d).MustWait(ctx)
}

// settle waits out the delay between a play and the next seat's clock
func (h *harness) settle() {
	h.t.Helper()
	h.advance(DefaultTiming().Settle)
}

func (h *harness) state() *Snapshot {
	return h.engine.FullState()
}

func (h *harness) hand(seat int) []deck.Card {
	return h.state().Seat(seat).Hand
}

func (h *harness) lastStart() TurnStart {
	h.t.Helper()
	h.mu.Lock()
	defer h.mu.Unlock()
	require.NotEmpty(h.t, h.starts)
	return h.starts[len(h.starts)-1]
}

func (h *harness) startCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.starts)
}

func (h *harness) timeoutEvents() []TurnTimeout {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]TurnTimeout(nil), h.timeouts...)
}

func (h *harness) stateChanges() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.changes
}

func (h *harness) play(seat, index int, chosen deck.Color) Result {
	return h.engine.PlayCard(h.ids[seat], index, chosen)
}

func requireOK(t *testing.T, res Result) {
	t.Helper()
	require.True(t, res.Success, "expected success, got %v", res.Err)
	require.NoError(t, res.Err)
	require.NotNil(t, res.State)
}
