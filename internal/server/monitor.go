package server

import "github.com/lox/lastcard/internal/game"

// MatchMonitor receives notifications about match progress. Snapshots are
// full server views and must not be forwarded to clients.
type MatchMonitor interface {
	// OnMatchStart is called once the opening card is revealed
	OnMatchStart(table string, s *game.Snapshot)

	// OnStateChange is called after every mutation while the match runs
	OnStateChange(table string, s *game.Snapshot)

	// OnMatchEnd is called once when a seat wins
	OnMatchEnd(table string, s *game.Snapshot)
}

// NullMonitor is a no-op implementation.
type NullMonitor struct{}

func (NullMonitor) OnMatchStart(string, *game.Snapshot)  {}
func (NullMonitor) OnStateChange(string, *game.Snapshot) {}
func (NullMonitor) OnMatchEnd(string, *game.Snapshot)    {}
