package game

// HandlePlayerDisconnect marks a seat offline. The seat keeps its cards and,
// if it is the active seat, its running clock.
func (e *Engine) HandlePlayerDisconnect(playerID string) (res Result) {
	e.run(func() {
		seat := e.seatByID(playerID)
		if seat == NoSeat {
			res = fail(ErrPlayerNotFound)
			return
		}
		p := e.players[seat]
		if !p.Disconnected {
			p.disconnect()
			e.changed()
			e.logger.Info("Seat disconnected", "seat", seat, "name", p.OriginalName)
		}
		res = e.succeed(p.OriginalName + " disconnected")
	})
	return res
}

// HandleSeatReconnect gives seat a new connection handle. The seat index is
// the canonical way to identify a returning player.
func (e *Engine) HandleSeatReconnect(seat int, newID string) (res Result) {
	e.run(func() {
		if seat < 0 || seat >= len(e.players) {
			res = fail(ErrPlayerNotFound)
			return
		}
		res = e.reconnect(seat, newID)
	})
	return res
}

// HandlePlayerReconnect finds a returning player by the handle it last used,
// falling back to its display name among disconnected seats. Name matching
// takes the first match and cannot tell apart seats that share a name;
// prefer HandleSeatReconnect when the seat is known.
func (e *Engine) HandlePlayerReconnect(previousID, name, newID string) (res Result) {
	e.run(func() {
		seat := e.seatByID(previousID)
		if seat == NoSeat && name != "" {
			for i, p := range e.players {
				if p.Disconnected && p.OriginalName == name {
					seat = i
					break
				}
			}
		}
		if seat == NoSeat {
			res = fail(ErrPlayerNotFound)
			return
		}
		res = e.reconnect(seat, newID)
	})
	return res
}

func (e *Engine) reconnect(seat int, newID string) Result {
	if newID == "" {
		return fail(ErrPlayerNotFound)
	}
	if other := e.seatByID(newID); other != NoSeat && other != seat {
		e.logger.Warn("Reconnect handle already in use", "seat", seat, "holder", other)
		return fail(ErrPlayerNotFound)
	}

	p := e.players[seat]
	p.reconnect(newID)
	e.changed()
	e.logger.Info("Seat reconnected", "seat", seat, "name", p.Name)

	if e.paused && e.status == StatusPlaying {
		e.resume()
	}
	return e.succeed(p.Name + " reconnected")
}
