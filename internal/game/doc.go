// Package game implements the authoritative state machine of one match of
// the shedding card game: seats, hands, the draw and discard piles, turn
// order and the single turn clock.
//
// # Basic Usage
//
// Create an engine for the seated connections and reveal the opening card:
//
//	e, err := game.New(ids, names, wallets,
//	    game.WithLogger(logger),
//	    game.WithHooks(game.Hooks{OnStateChange: broadcast}))
//	if err != nil {
//	    return err
//	}
//	e.DrawFirstCard()
//
// Each client intent maps to one method, which validates, mutates and
// returns a Result:
//
//	res := e.PlayCard(id, 2, deck.Blue)
//	if errors.Is(res.Err, game.ErrNotYourTurn) {
//	    // tell the client
//	}
//
// # Deterministic Testing
//
// The clock and random source are injectable. Tests drive turn deadlines
// with a quartz mock clock and script the deal with a stacked deck:
//
//	mClock := quartz.NewMock(t)
//	e, _ := game.New(ids, names, wallets,
//	    game.WithClock(mClock),
//	    game.WithDeck(deck.NewStacked(cards, randutil.New(1))))
//
// # Concurrency
//
// Every method and every timer callback runs under one lock. Hooks are
// queued during a mutation and called after the lock is released, so they
// may call back into the engine. Snapshots returned by FullState and
// PublicState share no memory with the engine.
package game
