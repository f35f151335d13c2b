package game

import "github.com/lox/lastcard/internal/turn"

// handleTurnTimeout runs under the engine lock when the turn clock expires.
// The penalty depends on what the seat was doing:
//
//   - waiting to declare its last card: draw two
//   - deciding on a playable drawn card: the turn simply ends
//   - anything else: draw one
//
// The turn then passes to the next connected seat. If every seat is
// disconnected the match pauses until one comes back.
func (e *Engine) handleTurnTimeout(exp turn.Expired) {
	if !e.timer.Claim(exp.Generation) {
		e.logger.Debug("Dropping stale turn timeout", "seat", exp.Seat, "generation", exp.Generation)
		return
	}
	if e.status != StatusPlaying || exp.Seat != e.current {
		return
	}

	seat := e.current
	p := e.players[seat]
	e.logger.Info("Turn timed out", "seat", seat, "name", p.Name,
		"waitingForDeclaration", e.waitingForDeclaration, "drawnPlayable", e.drawnPlayable)
	if e.hooks.OnTurnTimeout != nil {
		hook := e.hooks.OnTurnTimeout
		event := TurnTimeout{SeatID: p.ID, SeatIndex: seat}
		e.outbox = append(e.outbox, func() { hook(event) })
	}

	next := e.seatAfter(seat, 1)
	switch {
	case e.waitingForDeclaration:
		e.waitingForDeclaration = false
		e.drawPenalty(seat, 2)
		if e.pendingEffect != nil {
			next = e.resolve(seat, *e.pendingEffect)
		}
	case e.drawnPlayable:
		e.drawnPlayable = false
	default:
		e.drawPenalty(seat, 1)
	}
	e.playedThisTurn = false
	e.changed()

	next, ok := e.nextConnected(next)
	if !ok {
		e.pause()
		return
	}
	e.advance(next, e.timing.Settle)
}

// pause leaves the turn with the current seat and the clock stopped
func (e *Engine) pause() {
	e.timer.Cancel()
	e.paused = true
	e.drawnPlayable = false
	e.waitingForDeclaration = false
	e.pendingEffect = nil
	e.changed()
	e.logger.Warn("All seats disconnected, match paused", "seat", e.current)
}

// resume restarts the clock for the first connected seat from the current one
func (e *Engine) resume() {
	next, ok := e.nextConnected(e.current)
	if !ok {
		return
	}
	e.paused = false
	e.playedThisTurn = false
	e.logger.Info("Match resumed", "seat", next)
	e.advance(next, 0)
}
