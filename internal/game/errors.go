package game

import (
	"errors"
	"fmt"

	"github.com/lox/lastcard/internal/rules"
)

// Errors returned in Result.Err when an intent is rejected. None of them
// change match state.
var (
	ErrNotYourTurn           = errors.New("not your turn")
	ErrInvalidCardIndex      = errors.New("invalid card index")
	ErrCardNotPlayable       = rules.ErrCardNotPlayable
	ErrMustDeclareFirst      = errors.New("must declare last card first")
	ErrMustPlayDrawnCard     = errors.New("must play the drawn card or end the turn")
	ErrGameNotInPlayingState = errors.New("game is not in playing state")
	ErrPlayerNotFound        = errors.New("player not found")

	// ErrWildDrawFourRestricted wraps ErrCardNotPlayable
	ErrWildDrawFourRestricted = rules.ErrWildDrawFourRestricted

	// ErrHoldingPlayableCard rejects a draw while a legal play is in hand
	ErrHoldingPlayableCard = fmt.Errorf("%w: a playable card is already in hand", ErrCardNotPlayable)

	ErrCannotEndTurn  = errors.New("nothing to end: no playable card was drawn")
	ErrCannotDeclare  = errors.New("can only declare while holding exactly one undeclared card")
	ErrAlreadyStarted = errors.New("first card already drawn")
	ErrDeckExhausted  = errors.New("no cards left to draw")
)
