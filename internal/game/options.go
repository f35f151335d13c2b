package game

import (
	"math/rand/v2"
	"time"

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"
	"github.com/lox/lastcard/internal/deck"
	"github.com/lox/lastcard/internal/turn"
)

const (
	MinSeats = 2
	MaxSeats = 10

	// DefaultHandSize is the number of cards dealt to each seat
	DefaultHandSize = 7
)

// FallbackColor is bound when a wild is played without a valid colour choice
const FallbackColor = deck.Red

// Timing controls the match clock
type Timing struct {
	// Turn is the length of a fresh turn
	Turn time.Duration
	// Settle delays the next seat's clock after a play or draw so clients can
	// animate it
	Settle time.Duration
	// Opening delays the first turn after the opening card is revealed
	Opening time.Duration
}

// DefaultTiming returns the standard match clock
func DefaultTiming() Timing {
	return Timing{
		Turn:    turn.DefaultDuration,
		Settle:  time.Second,
		Opening: 2 * time.Second,
	}
}

type options struct {
	clock    quartz.Clock
	rng      *rand.Rand
	seed     int64
	logger   *log.Logger
	hooks    Hooks
	timing   Timing
	matchID  string
	handSize int
	deck     *deck.Deck
}

// Option configures an Engine
type Option func(*options)

// WithClock sets the clock driving turn deadlines
func WithClock(clock quartz.Clock) Option {
	return func(o *options) {
		o.clock = clock
	}
}

// WithRand sets the random source for shuffling
func WithRand(rng *rand.Rand) Option {
	return func(o *options) {
		o.rng = rng
	}
}

// WithSeed builds the random source from seed, which is logged at match start
func WithSeed(seed int64) Option {
	return func(o *options) {
		o.seed = seed
	}
}

func WithLogger(logger *log.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// WithHooks registers the outward notifications
func WithHooks(hooks Hooks) Option {
	return func(o *options) {
		o.hooks = hooks
	}
}

func WithTiming(timing Timing) Option {
	return func(o *options) {
		o.timing = timing
	}
}

func WithMatchID(id string) Option {
	return func(o *options) {
		o.matchID = id
	}
}

// WithHandSize overrides the number of cards dealt per seat
func WithHandSize(n int) Option {
	return func(o *options) {
		o.handSize = n
	}
}

// WithDeck replaces the shuffled deck. Hands are dealt from it in seat order,
// which lets tests script a match with deck.NewStacked.
func WithDeck(d *deck.Deck) Option {
	return func(o *options) {
		o.deck = d
	}
}
