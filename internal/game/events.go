package game

import "time"

// TurnStart is sent whenever a seat's clock starts, including re-arms with the
// remaining time after a playable draw.
type TurnStart struct {
	SeatID    string
	SeatIndex int
	ExpiresAt time.Time
	ServerNow time.Time
}

// TurnTimeout is sent when a seat runs out of time, before its penalty is applied
type TurnTimeout struct {
	SeatID    string
	SeatIndex int
}

// Hooks are the engine's outward notifications. They are dispatched after the
// engine lock is released, in the order the events happened, so a hook may
// call back into the engine. OnStateChange always comes first for a mutation.
type Hooks struct {
	OnTurnStart   func(TurnStart)
	OnTurnTimeout func(TurnTimeout)
	OnStateChange func()
}
