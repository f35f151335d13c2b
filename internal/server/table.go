package server

import (
	"errors"
	"fmt"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/lox/lastcard/internal/deck"
	"github.com/lox/lastcard/internal/game"
	"github.com/lox/lastcard/internal/matchid"
)

var (
	ErrTableFull       = errors.New("table is full")
	ErrTableNotFound   = errors.New("table not found")
	ErrMatchNotStarted = errors.New("match has not started")
	ErrSeatMismatch    = errors.New("handle does not match seat")
	ErrNameRequired    = errors.New("name required")
)

// seat is a joined player. conn is nil while the player is away.
type seat struct {
	handle string
	name   string
	wallet string
	conn   *Connection
}

// Table seats players in join order and starts a match once every seat is
// taken. The engine is never called with mu held: its hooks run on the
// calling goroutine and take mu themselves. Hooks hold broadcast while they
// snapshot and queue, so the last state a seat receives is the newest.
type Table struct {
	name    string
	size    int
	opts    []game.Option
	logger  *log.Logger
	monitor MatchMonitor

	broadcast sync.Mutex

	mu     sync.Mutex
	seats  []*seat
	engine *game.Engine
	ended  bool
}

// NewTable creates an empty table. opts are passed to every engine it starts.
func NewTable(name string, size int, logger *log.Logger, monitor MatchMonitor, opts ...game.Option) *Table {
	if monitor == nil {
		monitor = NullMonitor{}
	}
	return &Table{
		name:    name,
		size:    size,
		opts:    opts,
		logger:  logger.WithPrefix("table").With("table", name),
		monitor: monitor,
	}
}

// Name returns the table name
func (t *Table) Name() string {
	return t.name
}

// Info summarises the table for listings
func (t *Table) Info() TableInfo {
	t.mu.Lock()
	defer t.mu.Unlock()

	info := TableInfo{
		Name:   t.name,
		Seats:  t.size,
		Seated: len(t.seats),
		Status: "waiting",
	}
	if t.engine != nil {
		info.MatchID = t.engine.MatchID()
		info.Status = t.engine.Status().String()
	}
	return info
}

// Engine returns the running match, if any
func (t *Table) Engine() *game.Engine {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.engine
}

// Join seats c, or hands a returning player its seat back
func (t *Table) Join(c *Connection, data JoinData) (JoinedData, error) {
	if data.Handle != "" {
		return t.rejoin(c, data)
	}
	if data.Name == "" {
		return JoinedData{}, ErrNameRequired
	}

	t.mu.Lock()
	if t.engine != nil && t.ended {
		t.logger.Info("Clearing finished match", "match", t.engine.MatchID())
		t.engine = nil
		t.ended = false
		t.seats = nil
	}
	if t.engine != nil || len(t.seats) >= t.size {
		t.mu.Unlock()
		return JoinedData{}, ErrTableFull
	}

	s := &seat{handle: matchid.NewHandle(), name: data.Name, wallet: data.Wallet, conn: c}
	t.seats = append(t.seats, s)
	index := len(t.seats) - 1
	c.seat(t, s.handle)
	joined := JoinedData{
		Table:  t.name,
		Seat:   index,
		Handle: s.handle,
		Seated: len(t.seats),
		Seats:  t.size,
	}
	t.logger.Info("Player seated", "seat", index, "name", data.Name, "seated", len(t.seats))

	if len(t.seats) < t.size {
		t.mu.Unlock()
		return joined, nil
	}

	engine, err := t.newEngine()
	if err != nil {
		t.seats = t.seats[:index]
		t.mu.Unlock()
		return JoinedData{}, err
	}
	t.engine = engine
	joined.MatchID = engine.MatchID()
	t.mu.Unlock()

	return joined, nil
}

// Start reveals the opening card once the table is full. It is called after
// the last joiner has been told its seat.
func (t *Table) Start() {
	e := t.Engine()
	if e == nil || e.Status() != game.StatusDealing {
		return
	}
	res := e.DrawFirstCard()
	if !res.Success {
		t.logger.Error("Failed to start match", "error", res.Err)
		return
	}
	t.logger.Info("Match started", "match", e.MatchID())
	t.monitor.OnMatchStart(t.name, res.State)
}

// newEngine must be called with mu held
func (t *Table) newEngine() (*game.Engine, error) {
	ids := make([]string, len(t.seats))
	names := make([]string, len(t.seats))
	wallets := make([]string, len(t.seats))
	for i, s := range t.seats {
		ids[i] = s.handle
		names[i] = s.name
		wallets[i] = s.wallet
	}

	opts := append([]game.Option{
		game.WithLogger(t.logger),
		game.WithMatchID(matchid.New()),
	}, t.opts...)
	opts = append(opts, game.WithHooks(game.Hooks{
		OnStateChange: t.stateChanged,
		OnTurnStart:   t.turnStarted,
		OnTurnTimeout: t.turnTimedOut,
	}))

	e, err := game.New(ids, names, wallets, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create match: %w", err)
	}
	return e, nil
}

func (t *Table) rejoin(c *Connection, data JoinData) (JoinedData, error) {
	t.mu.Lock()
	e := t.engine
	index := -1
	for i, s := range t.seats {
		if s.handle == data.Handle {
			index = i
			break
		}
	}
	t.mu.Unlock()

	if index >= 0 && data.Seat != nil && *data.Seat != index {
		return JoinedData{}, ErrSeatMismatch
	}
	if index < 0 && e == nil {
		return JoinedData{}, game.ErrPlayerNotFound
	}

	handle := matchid.NewHandle()
	if e != nil {
		var res game.Result
		if index >= 0 {
			res = e.HandleSeatReconnect(index, handle)
		} else {
			// Unknown handle: fall back to the display name
			res = e.HandlePlayerReconnect(data.Handle, data.Name, handle)
			index = e.SeatOf(handle)
		}
		if !res.Success {
			return JoinedData{}, res.Err
		}
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	if t.engine != e || index < 0 || index >= len(t.seats) {
		return JoinedData{}, game.ErrPlayerNotFound
	}
	s := t.seats[index]
	s.handle = handle
	s.conn = c
	c.seat(t, handle)
	t.logger.Info("Player rejoined", "seat", index, "name", s.name)

	joined := JoinedData{
		Table:  t.name,
		Seat:   index,
		Handle: handle,
		Seated: len(t.seats),
		Seats:  t.size,
	}
	if e != nil {
		joined.MatchID = e.MatchID()
	}
	return joined, nil
}

// Leave is called when c's socket closes
func (t *Table) Leave(c *Connection) {
	handle := c.Handle()

	t.mu.Lock()
	e := t.engine
	found := false
	for i, s := range t.seats {
		if s.handle != handle || s.conn != c {
			continue
		}
		found = true
		if e == nil {
			// Before the match starts the seat is simply given up
			t.seats = append(t.seats[:i], t.seats[i+1:]...)
			t.logger.Info("Player left before the match", "name", s.name)
		} else {
			s.conn = nil
		}
		break
	}
	t.mu.Unlock()

	if found && e != nil {
		e.HandlePlayerDisconnect(handle)
	}
}

// Intent forwards an in-match action from c to the engine
func (t *Table) Intent(c *Connection, typ MessageType, data PlayCardData) (game.Result, error) {
	e := t.Engine()
	if e == nil {
		return game.Result{}, ErrMatchNotStarted
	}
	handle := c.Handle()

	switch typ {
	case MessageTypePlayCard:
		color := deck.Wild
		if data.Color != "" {
			if parsed, err := deck.ParseColor(data.Color); err == nil {
				color = parsed
			}
		}
		return e.PlayCard(handle, data.Index, color), nil
	case MessageTypeDrawCard:
		return e.DrawCard(handle), nil
	case MessageTypeEndTurn:
		return e.EndTurn(handle), nil
	case MessageTypeCallDeclaration:
		return e.CallDeclaration(handle), nil
	}
	return game.Result{}, fmt.Errorf("unknown intent %q", typ)
}

// State returns the view c is allowed to see
func (t *Table) State(c *Connection) (*game.Snapshot, error) {
	e := t.Engine()
	if e == nil {
		return nil, ErrMatchNotStarted
	}
	return e.PublicState(c.Handle()), nil
}

// Stop cancels the running match clock
func (t *Table) Stop() {
	if e := t.Engine(); e != nil {
		e.Stop()
	}
}

// connected returns the seats that currently have a socket
func (t *Table) connected() (*game.Engine, []*seat) {
	t.mu.Lock()
	defer t.mu.Unlock()
	seats := make([]*seat, 0, len(t.seats))
	for _, s := range t.seats {
		if s.conn != nil {
			seats = append(seats, &seat{handle: s.handle, conn: s.conn})
		}
	}
	return t.engine, seats
}

func (t *Table) stateChanged() {
	e, full := t.broadcastState()
	if e == nil || full.Status != game.StatusFinished {
		return
	}

	t.mu.Lock()
	first := !t.ended
	t.ended = true
	t.mu.Unlock()
	if first {
		e.Stop()
		t.logger.Info("Match won", "match", full.MatchID, "seat", full.Winner, "name", full.Seats[full.Winner].Name)
		t.monitor.OnMatchEnd(t.name, full)
	}
}

// broadcastState sends each connected seat its view and returns the full
// state taken alongside
func (t *Table) broadcastState() (*game.Engine, *game.Snapshot) {
	t.broadcast.Lock()
	defer t.broadcast.Unlock()

	e, seats := t.connected()
	if e == nil {
		return nil, nil
	}
	for _, s := range seats {
		s.conn.send(MessageTypeState, e.PublicState(s.handle))
	}

	full := e.FullState()
	if full.Status != game.StatusFinished {
		t.monitor.OnStateChange(t.name, full)
	}
	return e, full
}

func (t *Table) turnStarted(ev game.TurnStart) {
	t.broadcast.Lock()
	defer t.broadcast.Unlock()

	_, seats := t.connected()
	data := TurnStartData{Seat: ev.SeatIndex, ExpiresAt: ev.ExpiresAt, ServerNow: ev.ServerNow}
	for _, s := range seats {
		s.conn.send(MessageTypeTurnStart, data)
	}
}

func (t *Table) turnTimedOut(ev game.TurnTimeout) {
	t.broadcast.Lock()
	defer t.broadcast.Unlock()

	_, seats := t.connected()
	data := TurnTimeoutData{Seat: ev.SeatIndex}
	for _, s := range seats {
		s.conn.send(MessageTypeTurnTimeout, data)
	}
}
