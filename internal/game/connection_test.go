package game

import (
	"testing"
	"time"

	"github.com/lox/lastcard/internal/deck"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDisconnect(t *testing.T) {
	h := newHarness(t, threeSeats, "r5", "")
	h.start()
	deadline := h.lastStart().ExpiresAt

	res := h.engine.HandlePlayerDisconnect(h.ids[0])
	requireOK(t, res)
	seat := res.State.Seat(0)
	assert.True(t, seat.Disconnected)
	assert.Equal(t, "player0"+disconnectedSuffix, seat.Name)
	assert.Len(t, seat.Hand, 3)
	require.NotNil(t, res.State.TurnExpiresAt, "clock keeps running")
	assert.WithinDuration(t, deadline, *res.State.TurnExpiresAt, 0)

	again := h.engine.HandlePlayerDisconnect(h.ids[0])
	requireOK(t, again)
	assert.Equal(t, "player0"+disconnectedSuffix, again.State.Seat(0).Name)

	assert.ErrorIs(t, h.engine.HandlePlayerDisconnect("ghost").Err, ErrPlayerNotFound)
}

func TestDisconnectWhileDealing(t *testing.T) {
	h := newHarness(t, threeSeats, "r5", "")

	res := h.engine.HandlePlayerDisconnect(h.ids[2])
	requireOK(t, res)
	assert.Equal(t, StatusDealing, res.State.Status)
	assert.True(t, res.State.Seat(2).Disconnected)
}

func TestReconnectKeepsRemainingTime(t *testing.T) {
	h := newHarness(t, threeSeats, "r5", "")
	h.start()
	deadline := h.lastStart().ExpiresAt

	h.advance(5 * time.Second)
	requireOK(t, h.engine.HandlePlayerDisconnect(h.ids[0]))
	h.advance(3 * time.Second)

	res := h.engine.HandleSeatReconnect(0, "conn-0-again")
	requireOK(t, res)
	seat := res.State.Seat(0)
	assert.False(t, seat.Disconnected)
	assert.Equal(t, "player0", seat.Name)
	assert.Equal(t, "conn-0-again", seat.ID)
	assert.Equal(t, 0, res.State.Current)
	require.NotNil(t, res.State.TurnExpiresAt)
	assert.WithinDuration(t, deadline, *res.State.TurnExpiresAt, 0)

	assert.ErrorIs(t, h.engine.DrawCard(h.ids[0]).Err, ErrPlayerNotFound)
	requireOK(t, h.engine.PlayCard("conn-0-again", 0, deck.Wild))

	// Seat 0 would have timed out 7s from now; nothing happens.
	h.settle()
	assert.Empty(t, h.timeoutEvents())
}

func TestReconnectMatching(t *testing.T) {
	t.Run("by previous handle", func(t *testing.T) {
		h := newHarness(t, threeSeats, "r5", "")
		h.start()
		requireOK(t, h.engine.HandlePlayerDisconnect(h.ids[1]))

		res := h.engine.HandlePlayerReconnect(h.ids[1], "", "fresh")
		requireOK(t, res)
		assert.Equal(t, "fresh", res.State.Seat(1).ID)
		assert.Equal(t, "player1", res.State.Seat(1).Name)
		assert.Equal(t, 1, h.engine.SeatOf("fresh"))
	})

	t.Run("by original name", func(t *testing.T) {
		h := newHarness(t, threeSeats, "r5", "")
		h.start()
		requireOK(t, h.engine.HandlePlayerDisconnect(h.ids[2]))

		res := h.engine.HandlePlayerReconnect("stale-handle", "player2", "fresh")
		requireOK(t, res)
		assert.Equal(t, "fresh", res.State.Seat(2).ID)
		assert.False(t, res.State.Seat(2).Disconnected)
	})

	t.Run("name only matches disconnected seats", func(t *testing.T) {
		h := newHarness(t, threeSeats, "r5", "")
		h.start()

		res := h.engine.HandlePlayerReconnect("stale-handle", "player2", "fresh")
		assert.ErrorIs(t, res.Err, ErrPlayerNotFound)
	})

	t.Run("seat out of range", func(t *testing.T) {
		h := newHarness(t, threeSeats, "r5", "")
		assert.ErrorIs(t, h.engine.HandleSeatReconnect(3, "x").Err, ErrPlayerNotFound)
		assert.ErrorIs(t, h.engine.HandleSeatReconnect(-1, "x").Err, ErrPlayerNotFound)
	})

	t.Run("handle held by another seat", func(t *testing.T) {
		h := newHarness(t, threeSeats, "r5", "")
		res := h.engine.HandleSeatReconnect(0, h.ids[1])
		assert.ErrorIs(t, res.Err, ErrPlayerNotFound)
		assert.Equal(t, 0, h.engine.SeatOf(h.ids[0]))
	})
}
