package game

import (
	"encoding/json"
	"errors"
	"io"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"
	"github.com/lox/lastcard/internal/deck"
	"github.com/lox/lastcard/internal/randutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewValidation(t *testing.T) {
	quiet := WithLogger(log.New(io.Discard))

	tests := []struct {
		name    string
		ids     []string
		names   []string
		wallets []string
		opts    []Option
	}{
		{"one seat", []string{"a"}, []string{"A"}, []string{""}, nil},
		{"eleven seats", make([]string, 11), make([]string, 11), make([]string, 11), nil},
		{"names short", []string{"a", "b"}, []string{"A"}, []string{"", ""}, nil},
		{"wallets short", []string{"a", "b"}, []string{"A", "B"}, []string{""}, nil},
		{"empty id", []string{"a", ""}, []string{"A", "B"}, []string{"", ""}, nil},
		{"duplicate id", []string{"a", "a"}, []string{"A", "B"}, []string{"", ""}, nil},
		{"hand too large", []string{"a", "b"}, []string{"A", "B"}, []string{"", ""}, []Option{WithHandSize(54)}},
		{"hand empty", []string{"a", "b"}, []string{"A", "B"}, []string{"", ""}, []Option{WithHandSize(0)}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(tt.ids, tt.names, tt.wallets, append(tt.opts, quiet)...)
			assert.Error(t, err)
		})
	}
}

func TestNewDeals(t *testing.T) {
	ids, names, wallets := seatIDs(4)
	e, err := New(ids, names, wallets,
		WithClock(quartz.NewMock(t)),
		WithRand(randutil.New(42)),
		WithLogger(log.New(io.Discard)))
	require.NoError(t, err)

	s := e.FullState()
	assert.Equal(t, StatusDealing, s.Status)
	assert.Len(t, s.Seats, 4)
	for i, seat := range s.Seats {
		assert.Len(t, seat.Hand, DefaultHandSize, "seat %d", i)
		assert.Equal(t, names[i], seat.Name)
		assert.Equal(t, wallets[i], seat.Wallet)
		assert.Equal(t, ids[i], seat.ID)
	}
	assert.Equal(t, deck.Size-4*DefaultHandSize, s.DeckSize)
	assert.Equal(t, 0, s.DiscardSize)
	assert.Nil(t, s.TopCard)
	assert.Equal(t, NoSeat, s.Winner)
	assert.Equal(t, deck.Size, s.CardCount())
	assert.NotEmpty(t, e.MatchID())
}

func TestNewSameSeedSameDeal(t *testing.T) {
	ids, names, wallets := seatIDs(3)
	deal := func() *Snapshot {
		e, err := New(ids, names, wallets,
			WithClock(quartz.NewMock(t)),
			WithSeed(7),
			WithLogger(log.New(io.Discard)))
		require.NoError(t, err)
		return e.FullState()
	}
	a, b := deal(), deal()
	for i := range a.Seats {
		assert.Equal(t, a.Seats[i].Hand, b.Seats[i].Hand)
	}
	assert.Equal(t, a.Deck, b.Deck)
}

func TestActionsBeforeStart(t *testing.T) {
	h := newHarness(t, []string{"r1", "r2"}, "r5", "")

	for _, res := range []Result{
		h.play(0, 0, deck.Wild),
		h.engine.DrawCard(h.ids[0]),
		h.engine.EndTurn(h.ids[0]),
		h.engine.CallDeclaration(h.ids[0]),
	} {
		assert.False(t, res.Success)
		assert.ErrorIs(t, res.Err, ErrGameNotInPlayingState)
		assert.Nil(t, res.State)
	}
}

func TestDrawFirstCard(t *testing.T) {
	h := newHarness(t, []string{"r1 g2", "b3 y4"}, "g5", "")

	res := h.engine.DrawFirstCard()
	requireOK(t, res)
	assert.Equal(t, StatusPlaying, res.State.Status)
	assert.Equal(t, deck.NewCard(deck.Green, deck.Five), *res.State.TopCard)
	assert.Equal(t, deck.Green, res.State.Color)
	assert.Equal(t, 0, res.State.Current)
	assert.Equal(t, 1, res.State.Direction)
	assert.Nil(t, res.State.TurnExpiresAt, "clock waits for the opening delay")
	assert.Equal(t, 0, h.startCount())

	start := h.clock.Now()
	h.advance(DefaultTiming().Opening)
	ts := h.lastStart()
	assert.Equal(t, 0, ts.SeatIndex)
	assert.Equal(t, h.ids[0], ts.SeatID)
	assert.WithinDuration(t, start.Add(DefaultTiming().Opening), ts.ServerNow, 0)
	assert.WithinDuration(t, ts.ServerNow.Add(DefaultTiming().Turn), ts.ExpiresAt, 0)

	again := h.engine.DrawFirstCard()
	assert.ErrorIs(t, again.Err, ErrAlreadyStarted)
}

func TestOpeningCard(t *testing.T) {
	t.Run("wild draw four goes back into the deck", func(t *testing.T) {
		h := newHarness(t, []string{"r1", "r2"}, "W+4 b7", "")
		h.start()

		s := h.state()
		assert.Equal(t, deck.NewCard(deck.Blue, deck.Seven), *s.TopCard)
		assert.Equal(t, deck.Blue, s.Color)
		assert.Equal(t, 1, s.DiscardSize)
		assert.Contains(t, s.Deck, deck.NewCard(deck.Wild, deck.DrawFour))
		assert.Equal(t, deck.Size, s.CardCount())
	})

	t.Run("wild binds the fallback color", func(t *testing.T) {
		h := newHarness(t, []string{"r1", "r2"}, "W", "")
		h.start()

		s := h.state()
		assert.Equal(t, deck.NewCard(deck.Wild, deck.ChangeColor), *s.TopCard)
		assert.Equal(t, FallbackColor, s.Color)
	})

	t.Run("action card has no effect", func(t *testing.T) {
		h := newHarness(t, []string{"r1", "r2", "r3"}, "gS", "")
		h.start()

		s := h.state()
		assert.Equal(t, 0, s.Current)
		assert.Equal(t, 1, s.Direction)
		assert.Len(t, s.Seat(0).Hand, 1)
	})
}

func TestPublicStateRedaction(t *testing.T) {
	h := newHarness(t, []string{"r1 r2", "g1 g2", "b1 b2"}, "r5", "")
	h.start()

	s := h.engine.PublicState(h.ids[1])
	assert.Equal(t, 1, s.Viewer)
	assert.Equal(t, deck.MustParseCards("g1 g2"), s.Seat(1).Hand)
	assert.Equal(t, h.ids[1], s.Seat(1).ID)
	for _, seat := range []int{0, 2} {
		assert.Nil(t, s.Seat(seat).Hand)
		assert.Empty(t, s.Seat(seat).ID)
		assert.Equal(t, 2, s.Seat(seat).HandSize)
	}
	assert.Nil(t, s.Deck)
	assert.Nil(t, s.Discard)
	assert.Equal(t, deck.Size, s.CardCount())

	spectator := h.engine.PublicState("nobody")
	assert.Equal(t, NoSeat, spectator.Viewer)
	for _, seat := range spectator.Seats {
		assert.Nil(t, seat.Hand)
	}

	raw, err := json.Marshal(s)
	require.NoError(t, err)
	assert.NotContains(t, string(raw), `"deck":`)
	assert.Contains(t, string(raw), `"status":"playing"`)
	assert.Contains(t, string(raw), `"currentColor":"red"`)
}

func TestSnapshotIsolated(t *testing.T) {
	h := newHarness(t, []string{"r1 r2", "g1 g2"}, "r5", "")
	h.start()

	s := h.state()
	s.Seats[0].Hand[0] = deck.NewCard(deck.Wild, deck.DrawFour)
	s.Deck = nil

	fresh := h.state()
	assert.Equal(t, deck.MustParseCards("r1 r2"), fresh.Seat(0).Hand)
	assert.NotEmpty(t, fresh.Deck)
}

func TestSnapshotSeatOutOfRange(t *testing.T) {
	h := newHarness(t, []string{"r1 r2", "g1 g2"}, "r5", "")
	s := h.state()

	assert.Equal(t, 1, s.Seat(1).Seat)
	for _, i := range []int{-1, 2, 10} {
		view := s.Seat(i)
		assert.Equal(t, NoSeat, view.Seat, "seat %d", i)
		assert.Empty(t, view.Hand)
	}
}

func TestHooksMayReenterEngine(t *testing.T) {
	ids, names, wallets := seatIDs(2)
	mClock := quartz.NewMock(t)

	var e *Engine
	var seen []Status
	e, err := New(ids, names, wallets,
		WithClock(mClock),
		WithRand(randutil.New(3)),
		WithLogger(log.New(io.Discard)),
		WithHooks(Hooks{
			OnStateChange: func() {
				seen = append(seen, e.PublicState(ids[0]).Status)
			},
		}))
	require.NoError(t, err)

	res := e.DrawFirstCard()
	requireOK(t, res)
	assert.Equal(t, []Status{StatusPlaying}, seen)
}

func TestResultErrorsAreSentinels(t *testing.T) {
	assert.True(t, errors.Is(ErrHoldingPlayableCard, ErrCardNotPlayable))
	assert.True(t, errors.Is(ErrWildDrawFourRestricted, ErrCardNotPlayable))
}
