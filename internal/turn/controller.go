// Package turn owns the single wall-clock deadline of a match.
//
// A Controller holds at most one pending callback: either the expiry of the
// current turn or a deferred re-arm waiting for a settle delay to pass. Every
// Arm, ArmAfter and Cancel bumps a generation counter, and every callback
// carries the generation it was scheduled under, so a callback that fires
// after being superseded notices and does nothing.
//
// A Controller is not safe for concurrent use. Its owner serializes calls and
// passes the same serialization to WithSerializer so that timer callbacks run
// inside it too.
package turn

import (
	"time"

	"github.com/coder/quartz"
)

// DefaultDuration is the length of a fresh turn
const DefaultDuration = 15 * time.Second

// Started describes a freshly armed deadline
type Started struct {
	Seat       int
	ExpiresAt  time.Time
	ServerNow  time.Time
	Generation uint64
}

// Remaining returns the duration between ServerNow and ExpiresAt
func (s Started) Remaining() time.Duration {
	return s.ExpiresAt.Sub(s.ServerNow)
}

// Expired describes a deadline that passed while still armed
type Expired struct {
	Seat       int
	Generation uint64
}

// Hooks are invoked from inside the serializer
type Hooks struct {
	OnStart  func(Started)
	OnExpire func(Expired)
}

// Serializer runs f with exclusive access to the controller
type Serializer func(f func())

// Option configures a Controller
type Option func(*Controller)

// WithSerializer routes timer callbacks through s
func WithSerializer(s Serializer) Option {
	return func(c *Controller) {
		c.serialize = s
	}
}

// Controller manages the turn deadline
type Controller struct {
	clock     quartz.Clock
	hooks     Hooks
	serialize Serializer

	timer      *quartz.Timer
	generation uint64
	seat       int
	expiresAt  time.Time
	settling   bool
}

// New creates an unarmed controller
func New(clock quartz.Clock, hooks Hooks, opts ...Option) *Controller {
	c := &Controller{
		clock:     clock,
		hooks:     hooks,
		serialize: func(f func()) { f() },
		seat:      -1,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Arm starts a deadline of d for seat, replacing anything pending, and
// invokes OnStart before returning.
func (c *Controller) Arm(seat int, d time.Duration) Started {
	c.stop()
	c.generation++
	gen := c.generation

	now := c.clock.Now()
	c.seat = seat
	c.expiresAt = now.Add(d)
	c.timer = c.clock.AfterFunc(d, func() {
		c.serialize(func() { c.expire(gen) })
	}, "turn", "expiry")

	started := Started{
		Seat:       seat,
		ExpiresAt:  c.expiresAt,
		ServerNow:  now,
		Generation: gen,
	}
	if c.hooks.OnStart != nil {
		c.hooks.OnStart(started)
	}
	return started
}

// ArmAfter cancels the current deadline and arms a new one for seat once
// delay has passed. It returns the generation of the deferred arm.
func (c *Controller) ArmAfter(delay time.Duration, seat int, d time.Duration) uint64 {
	c.stop()
	c.generation++
	gen := c.generation

	c.seat = seat
	c.settling = true
	c.timer = c.clock.AfterFunc(delay, func() {
		c.serialize(func() {
			if gen != c.generation {
				return
			}
			c.settling = false
			c.Arm(seat, d)
		})
	}, "turn", "settle")
	return gen
}

// Cancel clears any pending callback and the deadline. Safe to call when
// nothing is armed.
func (c *Controller) Cancel() {
	c.stop()
	c.generation++
}

// Claim reports whether gen is still the current generation, and if so
// consumes it so no other holder of gen can act on it. Expiry handlers call it
// to drop callbacks raced by a just-processed action.
func (c *Controller) Claim(gen uint64) bool {
	if gen != c.generation {
		return false
	}
	c.stop()
	c.generation++
	return true
}

// Armed reports whether a deadline is running
func (c *Controller) Armed() bool {
	return !c.expiresAt.IsZero()
}

// Settling reports whether a deferred arm is waiting on its delay
func (c *Controller) Settling() bool {
	return c.settling
}

// Idle reports whether nothing is armed or pending
func (c *Controller) Idle() bool {
	return !c.Armed() && !c.settling
}

// Seat returns the seat of the current or pending deadline, or -1
func (c *Controller) Seat() int {
	return c.seat
}

// Generation returns the current generation
func (c *Controller) Generation() uint64 {
	return c.generation
}

// ExpiresAt returns the current deadline, if armed
func (c *Controller) ExpiresAt() (time.Time, bool) {
	return c.expiresAt, !c.expiresAt.IsZero()
}

// Remaining returns the time left before the deadline, or zero when unarmed
func (c *Controller) Remaining() time.Duration {
	if c.expiresAt.IsZero() {
		return 0
	}
	if r := c.expiresAt.Sub(c.clock.Now()); r > 0 {
		return r
	}
	return 0
}

// Now returns the controller's clock reading
func (c *Controller) Now() time.Time {
	return c.clock.Now()
}

func (c *Controller) expire(gen uint64) {
	if gen != c.generation || c.expiresAt.IsZero() {
		return
	}
	seat := c.seat
	c.timer = nil
	c.expiresAt = time.Time{}
	c.seat = -1
	if c.hooks.OnExpire != nil {
		c.hooks.OnExpire(Expired{Seat: seat, Generation: gen})
	}
}

func (c *Controller) stop() {
	if c.timer != nil {
		c.timer.Stop()
		c.timer = nil
	}
	c.expiresAt = time.Time{}
	c.settling = false
	c.seat = -1
}
