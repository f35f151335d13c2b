package game

import (
	"time"

	"github.com/lox/lastcard/internal/deck"
	"github.com/lox/lastcard/internal/rules"
)

// DrawFirstCard reveals the opening card and starts the match. A
// wild-draw-four is never used as the opening card; it goes back into the
// deck and another card is revealed. An opening wild binds FallbackColor.
// Opening action cards have no effect and seat 0 always starts.
func (e *Engine) DrawFirstCard() (res Result) {
	e.run(func() {
		res = e.drawFirstCard()
	})
	return res
}

func (e *Engine) drawFirstCard() Result {
	if e.status != StatusDealing {
		return fail(ErrAlreadyStarted)
	}

	card, ok := e.deck.Deal()
	for ok && card.Value == deck.DrawFour {
		e.deck.Bury(card)
		card, ok = e.deck.Deal()
	}
	if !ok {
		e.logger.Error("Deck empty before the opening card")
		return fail(ErrDeckExhausted)
	}

	e.discard.Push(card)
	e.color = card.Color
	if !card.Color.IsPlayable() {
		e.color = FallbackColor
	}
	e.status = StatusPlaying
	e.current = 0
	e.direction = 1
	e.turnNumber = 1
	e.timer.ArmAfter(e.timing.Opening, e.current, e.timing.Turn)
	e.changed()

	e.logger.Info("Opening card", "card", card, "color", e.color)
	return e.succeed("Opening card " + card.String())
}

// PlayCard plays the card at cardIndex from playerID's hand. chosen is the
// colour to bind when the card is a wild; anything but a playable colour
// falls back to FallbackColor. It is ignored for coloured cards.
func (e *Engine) PlayCard(playerID string, cardIndex int, chosen deck.Color) (res Result) {
	e.run(func() {
		res = e.playCard(playerID, cardIndex, chosen)
	})
	return res
}

func (e *Engine) playCard(playerID string, cardIndex int, chosen deck.Color) Result {
	seat, err := e.activeSeat(playerID)
	if err != nil {
		return fail(err)
	}
	if e.waitingForDeclaration {
		return fail(ErrMustDeclareFirst)
	}
	p := e.players[seat]
	if len(p.Hand) == 1 && !p.HasDeclared && e.playedThisTurn {
		return fail(ErrMustDeclareFirst)
	}
	if cardIndex < 0 || cardIndex >= len(p.Hand) {
		return fail(ErrInvalidCardIndex)
	}
	card := p.Hand[cardIndex]
	if err := rules.Check(card, e.topCard(), e.color, p.Hand); err != nil {
		return fail(err)
	}

	p.take(cardIndex)
	e.playedThisTurn = true
	e.drawnPlayable = false
	e.discard.Push(card)
	e.color = card.Color
	if card.IsWild() {
		e.color = chosen
		if !chosen.IsPlayable() {
			e.color = FallbackColor
		}
	}
	e.changed()
	e.logger.Debug("Card played", "seat", seat, "card", card, "color", e.color, "left", len(p.Hand))

	if len(p.Hand) == 0 {
		e.finish(seat)
		return e.succeed(p.Name + " wins")
	}

	continuation := len(e.players) == 2 && card.IsAction()
	if len(p.Hand) == 1 && !p.HasDeclared && !continuation {
		e.waitingForDeclaration = true
		if card.IsAction() {
			e.pendingEffect = &card
		}
		return e.succeed("Played " + card.String() + ", declare last card")
	}

	e.advance(e.resolve(seat, card), e.timing.Settle)
	return e.succeed("Played " + card.String())
}

// DrawCard draws one card for a seat with no legal play. If the drawn card
// can be played the seat keeps its turn with the time it had left;
// otherwise the turn passes.
func (e *Engine) DrawCard(playerID string) (res Result) {
	e.run(func() {
		res = e.drawCard(playerID)
	})
	return res
}

func (e *Engine) drawCard(playerID string) Result {
	seat, err := e.activeSeat(playerID)
	if err != nil {
		return fail(err)
	}
	if e.waitingForDeclaration {
		return fail(ErrMustDeclareFirst)
	}
	if e.drawnPlayable {
		return fail(ErrMustPlayDrawnCard)
	}
	p := e.players[seat]
	top := e.topCard()
	if rules.HasPlayableCard(p.Hand, top, e.color) {
		return fail(ErrHoldingPlayableCard)
	}

	remaining := e.remaining()
	card, err := e.drawOne(seat)
	if err != nil {
		return fail(ErrDeckExhausted)
	}
	e.changed()

	if rules.CanPlayCard(card, top, e.color, p.Hand) {
		e.drawnPlayable = true
		e.timer.Arm(seat, remaining)
		e.logger.Debug("Drew playable card", "seat", seat, "card", card, "remaining", remaining)
		return e.succeed("Drew " + card.String() + ", play it or end the turn")
	}

	e.logger.Debug("Drew card", "seat", seat, "card", card)
	e.advance(e.seatAfter(seat, 1), e.timing.Settle)
	return e.succeed("Drew " + card.String())
}

// EndTurn passes on a playable card that was just drawn
func (e *Engine) EndTurn(playerID string) (res Result) {
	e.run(func() {
		res = e.endTurn(playerID)
	})
	return res
}

func (e *Engine) endTurn(playerID string) Result {
	seat, err := e.activeSeat(playerID)
	if err != nil {
		return fail(err)
	}
	if !e.drawnPlayable {
		return fail(ErrCannotEndTurn)
	}
	e.drawnPlayable = false
	e.changed()
	e.advance(e.seatAfter(seat, 1), 0)
	return e.succeed("Turn ended")
}

// CallDeclaration announces that the seat is down to its last card
func (e *Engine) CallDeclaration(playerID string) (res Result) {
	e.run(func() {
		res = e.callDeclaration(playerID)
	})
	return res
}

func (e *Engine) callDeclaration(playerID string) Result {
	seat, err := e.activeSeat(playerID)
	if err != nil {
		return fail(err)
	}
	p := e.players[seat]
	if len(p.Hand) != 1 || p.HasDeclared {
		return fail(ErrCannotDeclare)
	}

	p.HasDeclared = true
	e.waitingForDeclaration = false
	e.changed()
	e.logger.Debug("Last card declared", "seat", seat)

	next := e.seatAfter(seat, 1)
	if e.pendingEffect != nil {
		next = e.resolve(seat, *e.pendingEffect)
	}
	e.advance(next, e.timing.Settle)
	return e.succeed(p.Name + " declared last card")
}

// activeSeat resolves playerID to the seat whose turn it is
func (e *Engine) activeSeat(playerID string) (int, error) {
	if e.status != StatusPlaying {
		return NoSeat, ErrGameNotInPlayingState
	}
	seat := e.seatByID(playerID)
	if seat == NoSeat {
		return NoSeat, ErrPlayerNotFound
	}
	if seat != e.current {
		return NoSeat, ErrNotYourTurn
	}
	return seat, nil
}

// resolve applies the effect of card played from seat and returns the seat
// that plays next. Draw penalties do not stack: the victim draws and loses
// its turn.
func (e *Engine) resolve(seat int, card deck.Card) int {
	switch card.Value {
	case deck.Skip:
		return e.seatAfter(seat, 2)
	case deck.Reverse:
		e.direction = -e.direction
		if len(e.players) == 2 {
			return seat
		}
		return e.seatAfter(seat, 1)
	case deck.DrawTwo, deck.DrawFour:
		victim := e.seatAfter(seat, 1)
		e.drawPenalty(victim, card.DrawPenalty())
		return e.seatAfter(seat, 2)
	}
	return e.seatAfter(seat, 1)
}

// advance hands the turn to seat and starts its clock after delay. Handing
// the turn back to the seat that just played keeps its played-this-turn mark.
func (e *Engine) advance(seat int, delay time.Duration) {
	continuation := seat == e.current && e.playedThisTurn
	e.timer.Cancel()

	e.current = seat
	e.turnNumber++
	e.drawnPlayable = false
	e.waitingForDeclaration = false
	e.pendingEffect = nil
	if !continuation {
		e.playedThisTurn = false
	}
	e.changed()

	if delay > 0 {
		e.timer.ArmAfter(delay, seat, e.timing.Turn)
	} else {
		e.timer.Arm(seat, e.timing.Turn)
	}
}

func (e *Engine) finish(seat int) {
	e.timer.Cancel()
	e.status = StatusFinished
	e.winner = seat
	e.drawnPlayable = false
	e.waitingForDeclaration = false
	e.pendingEffect = nil
	e.changed()
	e.logger.Info("Match finished", "winner", seat, "name", e.players[seat].Name, "turns", e.turnNumber)
}

// remaining is the time a seat keeps after an intermediate action. Before the
// clock has started, that is a full turn.
func (e *Engine) remaining() time.Duration {
	if e.timer.Armed() {
		return e.timer.Remaining()
	}
	return e.timing.Turn
}

// drawOne moves a card from the deck to seat's hand, reshuffling the discard
// pile into the deck when it runs out.
func (e *Engine) drawOne(seat int) (deck.Card, error) {
	if e.deck.IsEmpty() {
		if err := deck.Reshuffle(e.deck, &e.discard, e.rng); err != nil {
			e.logger.Error("Cannot reshuffle discard pile", "seat", seat, "error", err)
			return deck.Card{}, err
		}
		e.logger.Debug("Reshuffled discard pile", "deck", e.deck.Len())
	}
	card, _ := e.deck.Deal()
	e.players[seat].give(card)
	return card, nil
}

// drawPenalty draws n cards for seat, stopping early if the cards run out
func (e *Engine) drawPenalty(seat, n int) {
	for i := 0; i < n; i++ {
		if _, err := e.drawOne(seat); err != nil {
			e.logger.Error("Penalty cut short", "seat", seat, "drawn", i, "owed", n)
			return
		}
	}
	e.changed()
}
