// Package rules decides whether a card may be played. Every function is pure:
// it looks only at the card, the top of the discard pile, the colour currently
// in force and, for wild-draw-four, the rest of the hand.
package rules

import (
	"errors"
	"fmt"

	"github.com/lox/lastcard/internal/deck"
)

var (
	// ErrCardNotPlayable is returned for a card matching neither colour nor value
	ErrCardNotPlayable = errors.New("card not playable")

	// ErrWildDrawFourRestricted is returned when a wild-draw-four is played by a
	// hand that still holds a card of the current colour
	ErrWildDrawFourRestricted = fmt.Errorf("%w: wild draw four is only allowed without a card of the current color", ErrCardNotPlayable)
)

// Check returns nil if card can be played on top, or the reason it can't
func Check(card, top deck.Card, current deck.Color, hand []deck.Card) error {
	switch card.Value {
	case deck.DrawFour:
		for _, held := range hand {
			if !held.IsWild() && held.Color == current {
				return ErrWildDrawFourRestricted
			}
		}
		return nil
	case deck.ChangeColor:
		return nil
	case deck.Back:
		return ErrCardNotPlayable
	}

	if !card.Color.IsPlayable() {
		return ErrCardNotPlayable
	}
	if card.Color == current {
		return nil
	}
	// A wild top card binds only a colour; its face never matches a coloured card.
	if !top.IsWild() && card.Value == top.Value {
		return nil
	}
	return ErrCardNotPlayable
}

// CanPlayCard reports whether card may be played on top with the given colour
// in force. hand is the player's full hand, including card itself.
func CanPlayCard(card, top deck.Card, current deck.Color, hand []deck.Card) bool {
	return Check(card, top, current, hand) == nil
}

// HasPlayableCard returns true if any card in hand can legally be played
func HasPlayableCard(hand []deck.Card, top deck.Card, current deck.Color) bool {
	for _, c := range hand {
		if CanPlayCard(c, top, current, hand) {
			return true
		}
	}
	return false
}

// PlayableIndices returns the hand positions that can legally be played
func PlayableIndices(hand []deck.Card, top deck.Card, current deck.Color) []int {
	var indices []int
	for i, c := range hand {
		if CanPlayCard(c, top, current, hand) {
			indices = append(indices, i)
		}
	}
	return indices
}
