package game

import (
	"fmt"
	"time"

	"github.com/lox/lastcard/internal/deck"
)

// Status is the match lifecycle. It only moves forward.
type Status uint8

const (
	StatusDealing Status = iota
	StatusPlaying
	StatusFinished
)

func (s Status) String() string {
	switch s {
	case StatusDealing:
		return "dealing"
	case StatusPlaying:
		return "playing"
	case StatusFinished:
		return "finished"
	default:
		return "unknown"
	}
}

func (s Status) MarshalText() ([]byte, error) {
	if s > StatusFinished {
		return nil, fmt.Errorf("invalid status: %d", s)
	}
	return []byte(s.String()), nil
}

// NoSeat marks an unset seat index, such as the winner of an unfinished match
const NoSeat = -1

// SeatView is one seat as seen by a snapshot's viewer. Hand is nil when the
// viewer may not see it; HandSize is always set.
type SeatView struct {
	Seat         int         `json:"seat"`
	ID           string      `json:"id,omitempty"`
	Name         string      `json:"name"`
	Wallet       string      `json:"wallet,omitempty"`
	HandSize     int         `json:"handSize"`
	Hand         []deck.Card `json:"hand,omitempty"`
	HasDeclared  bool        `json:"hasDeclared"`
	Disconnected bool        `json:"disconnected"`
}

// Snapshot is an immutable copy of the match built on demand. Nothing in it
// aliases engine state.
type Snapshot struct {
	MatchID   string     `json:"matchId"`
	Status    Status     `json:"status"`
	Seats     []SeatView `json:"seats"`
	Viewer    int        `json:"viewer"`
	TopCard   *deck.Card `json:"topCard,omitempty"`
	Color     deck.Color `json:"currentColor"`
	Current   int        `json:"currentSeat"`
	Direction int        `json:"direction"`
	Winner    int        `json:"winner"`

	DeckSize    int `json:"deckSize"`
	DiscardSize int `json:"discardSize"`
	// Deck and Discard are only filled in by FullState
	Deck    []deck.Card `json:"deck,omitempty"`
	Discard []deck.Card `json:"discard,omitempty"`

	HasDrawnPlayableCard  bool `json:"hasDrawnPlayableCard"`
	HasPlayedCardThisTurn bool `json:"hasPlayedCardThisTurn"`
	WaitingForDeclaration bool `json:"waitingForDeclaration"`
	Paused                bool `json:"paused"`
	TurnNumber            int  `json:"turnNumber"`

	TurnExpiresAt *time.Time `json:"turnExpiresAt,omitempty"`
	ServerNow     time.Time  `json:"serverNow"`
}

// CardCount is the number of cards across deck, discard pile and hands
func (s *Snapshot) CardCount() int {
	n := s.DeckSize + s.DiscardSize
	for _, seat := range s.Seats {
		n += seat.HandSize
	}
	return n
}

// Seat returns the view of seat i. An index outside the table yields an
// empty view with Seat set to NoSeat.
func (s *Snapshot) Seat(i int) SeatView {
	if i < 0 || i >= len(s.Seats) {
		return SeatView{Seat: NoSeat}
	}
	return s.Seats[i]
}

// viewAll is the viewer index of a snapshot showing every hand
const viewAll = -2

// snapshot must be called with e.mu held. viewer is a seat index, NoSeat for
// a spectator or viewAll for the server's own view.
func (e *Engine) snapshot(viewer int) *Snapshot {
	s := &Snapshot{
		MatchID:               e.matchID,
		Status:                e.status,
		Viewer:                viewer,
		Color:                 e.color,
		Current:               e.current,
		Direction:             e.direction,
		Winner:                e.winner,
		DeckSize:              e.deck.Len(),
		DiscardSize:           e.discard.Len(),
		HasDrawnPlayableCard:  e.drawnPlayable,
		HasPlayedCardThisTurn: e.playedThisTurn,
		WaitingForDeclaration: e.waitingForDeclaration,
		Paused:                e.paused,
		TurnNumber:            e.turnNumber,
		ServerNow:             e.clock.Now(),
	}
	if top, ok := e.discard.Top(); ok {
		s.TopCard = &top
	}
	if expiresAt, ok := e.timer.ExpiresAt(); ok {
		s.TurnExpiresAt = &expiresAt
	}

	s.Seats = make([]SeatView, len(e.players))
	for i, p := range e.players {
		view := SeatView{
			Seat:         i,
			Name:         p.Name,
			Wallet:       p.Wallet,
			HandSize:     len(p.Hand),
			HasDeclared:  p.HasDeclared,
			Disconnected: p.Disconnected,
		}
		if viewer == viewAll || viewer == i {
			view.ID = p.ID
			view.Hand = append([]deck.Card(nil), p.Hand...)
		}
		s.Seats[i] = view
	}

	if viewer == viewAll {
		s.Deck = e.deck.Cards()
		s.Discard = e.discard.Cards()
	}
	return s
}

// FullState returns a snapshot with every hand and the deck order. It is for
// the server's own use and must never be sent to a client.
func (e *Engine) FullState() *Snapshot {
	var s *Snapshot
	e.run(func() {
		s = e.snapshot(viewAll)
	})
	return s
}

// PublicState returns the snapshot seatID is allowed to see: its own hand and
// only the sizes of the others. An unknown seatID gets the spectator view.
func (e *Engine) PublicState(seatID string) *Snapshot {
	var s *Snapshot
	e.run(func() {
		s = e.snapshot(e.seatByID(seatID))
	})
	return s
}
