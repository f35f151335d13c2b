package game

import (
	"fmt"
	"math/rand/v2"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"
	"github.com/lox/lastcard/internal/deck"
	"github.com/lox/lastcard/internal/matchid"
	"github.com/lox/lastcard/internal/randutil"
	"github.com/lox/lastcard/internal/turn"
)

// Result is returned by every intent. On success State is the server's full
// snapshot after the mutation; on failure Err holds one of the package's
// sentinel errors and nothing changed.
type Result struct {
	Success bool
	Message string
	Err     error
	State   *Snapshot
}

// Engine is the authoritative state of one match.
//
// All methods are safe for concurrent use. Each runs under the engine lock,
// as do turn timer callbacks, so exactly one mutation is in flight at a time.
// Hooks are queued while the lock is held and dispatched after it is released.
type Engine struct {
	mu     sync.Mutex
	outbox []func()
	dirty  bool

	matchID  string
	logger   *log.Logger
	clock    quartz.Clock
	rng      *rand.Rand
	timer    *turn.Controller
	timing   Timing
	hooks    Hooks
	handSize int
	total    int

	players []*Player
	deck    *deck.Deck
	discard deck.Pile

	status    Status
	current   int
	direction int
	winner    int
	color     deck.Color

	drawnPlayable         bool
	playedThisTurn        bool
	waitingForDeclaration bool
	pendingEffect         *deck.Card
	paused                bool
	turnNumber            int
}

// New deals a match for the given seats. The three slices are index aligned:
// seat i has handle seatIDs[i], display name seatNames[i] and wallet
// seatWallets[i]. The match starts in StatusDealing; call DrawFirstCard to
// begin play.
func New(seatIDs, seatNames, seatWallets []string, opts ...Option) (*Engine, error) {
	n := len(seatIDs)
	if n < MinSeats || n > MaxSeats {
		return nil, fmt.Errorf("need between %d and %d seats, got %d", MinSeats, MaxSeats, n)
	}
	if len(seatNames) != n || len(seatWallets) != n {
		return nil, fmt.Errorf("seat slices differ in length: %d ids, %d names, %d wallets",
			n, len(seatNames), len(seatWallets))
	}
	seen := make(map[string]bool, n)
	for i, id := range seatIDs {
		if id == "" {
			return nil, fmt.Errorf("seat %d has an empty id", i)
		}
		if seen[id] {
			return nil, fmt.Errorf("duplicate seat id %q", id)
		}
		seen[id] = true
	}

	o := options{
		timing:   DefaultTiming(),
		handSize: DefaultHandSize,
	}
	for _, opt := range opts {
		opt(&o)
	}
	if o.handSize < 1 || n*o.handSize >= deck.Size {
		return nil, fmt.Errorf("cannot deal %d cards to %d seats", o.handSize, n)
	}
	if o.clock == nil {
		o.clock = quartz.NewReal()
	}
	if o.logger == nil {
		o.logger = log.Default()
	}
	if o.matchID == "" {
		o.matchID = matchid.New()
	}
	if o.rng == nil {
		if o.seed == 0 {
			o.seed = randutil.NewSeed()
		}
		o.rng = randutil.New(o.seed)
	}
	if o.deck == nil {
		o.deck = deck.New(o.rng)
	}
	if o.deck.Len() < n*o.handSize+1 {
		return nil, fmt.Errorf("deck holds %d cards, need at least %d", o.deck.Len(), n*o.handSize+1)
	}

	e := &Engine{
		matchID:   o.matchID,
		logger:    o.logger.WithPrefix("engine").With("match", o.matchID),
		clock:     o.clock,
		rng:       o.rng,
		timing:    o.timing,
		hooks:     o.hooks,
		handSize:  o.handSize,
		deck:      o.deck,
		total:     o.deck.Len(),
		status:    StatusDealing,
		direction: 1,
		winner:    NoSeat,
		color:     FallbackColor,
	}
	e.timer = turn.New(e.clock, turn.Hooks{
		OnStart:  e.turnStarted,
		OnExpire: e.handleTurnTimeout,
	}, turn.WithSerializer(e.run))

	e.players = make([]*Player, n)
	for i := range seatIDs {
		e.players[i] = &Player{
			Seat:   i,
			ID:     seatIDs[i],
			Name:   seatNames[i],
			Wallet: seatWallets[i],
			Hand:   e.deck.DealN(o.handSize),
		}
	}

	e.logger.Info("Match dealt", "seats", n, "handSize", o.handSize, "seed", o.seed)
	return e, nil
}

// MatchID returns the match identifier
func (e *Engine) MatchID() string {
	return e.matchID
}

// Status returns the lifecycle status
func (e *Engine) Status() Status {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.status
}

// SeatOf returns the seat index of a handle, or NoSeat
func (e *Engine) SeatOf(playerID string) int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.seatByID(playerID)
}

// Stop cancels any pending timer. The engine stays readable.
func (e *Engine) Stop() {
	e.run(func() {
		e.timer.Cancel()
	})
}

// run executes f under the engine lock, then dispatches whatever hooks f
// queued once the lock is released.
func (e *Engine) run(f func()) {
	e.mu.Lock()
	f()
	e.checkConservation()
	pending := e.drain()
	e.mu.Unlock()

	for _, hook := range pending {
		hook()
	}
}

func (e *Engine) drain() []func() {
	var pending []func()
	if e.dirty && e.hooks.OnStateChange != nil {
		pending = append(pending, e.hooks.OnStateChange)
	}
	e.dirty = false
	pending = append(pending, e.outbox...)
	e.outbox = nil
	return pending
}

func (e *Engine) changed() {
	e.dirty = true
}

func (e *Engine) checkConservation() {
	n := e.deck.Len() + e.discard.Len()
	for _, p := range e.players {
		n += len(p.Hand)
	}
	if n != e.total {
		e.logger.Error("Card conservation violated", "cards", n, "expected", e.total)
	}
}

// turnStarted runs inside the controller, under the engine lock
func (e *Engine) turnStarted(s turn.Started) {
	if s.Seat < 0 || s.Seat >= len(e.players) {
		return
	}
	event := TurnStart{
		SeatID:    e.players[s.Seat].ID,
		SeatIndex: s.Seat,
		ExpiresAt: s.ExpiresAt,
		ServerNow: s.ServerNow,
	}
	e.logger.Debug("Turn started", "seat", s.Seat, "remaining", s.Remaining())
	if e.hooks.OnTurnStart != nil {
		hook := e.hooks.OnTurnStart
		e.outbox = append(e.outbox, func() { hook(event) })
	}
}

func (e *Engine) seatByID(id string) int {
	if id == "" {
		return NoSeat
	}
	for i, p := range e.players {
		if p.ID == id {
			return i
		}
	}
	return NoSeat
}

// seatAfter returns the seat steps places from seat in the current direction
func (e *Engine) seatAfter(seat, steps int) int {
	n := len(e.players)
	return ((seat+e.direction*steps)%n + n) % n
}

// nextConnected returns the first connected seat starting at seat, inclusive
func (e *Engine) nextConnected(seat int) (int, bool) {
	for i := 0; i < len(e.players); i++ {
		candidate := e.seatAfter(seat, i)
		if !e.players[candidate].Disconnected {
			return candidate, true
		}
	}
	return seat, false
}

func (e *Engine) topCard() deck.Card {
	top, _ := e.discard.Top()
	return top
}

func (e *Engine) succeed(message string) Result {
	return Result{Success: true, Message: message, State: e.snapshot(viewAll)}
}

func fail(err error) Result {
	return Result{Message: err.Error(), Err: err}
}
