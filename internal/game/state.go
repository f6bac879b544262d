package game

import (
	"github.com/foxseedlab/reactzero/internal/scoring"
	"github.com/google/uuid"
)

type State int

const (
	StateLobby State = iota
	StateConfirming
	StateCountdown
	StateCapturing
	StateScoring
	StatePersisted
	StateClosed
	StateAborted
)

func (s State) String() string {
	switch s {
	case StateLobby:
		return "lobby"
	case StateConfirming:
		return "confirming"
	case StateCountdown:
		return "countdown"
	case StateCapturing:
		return "capturing"
	case StateScoring:
		return "scoring"
	case StatePersisted:
		return "persisted"
	case StateClosed:
		return "closed"
	case StateAborted:
		return "aborted"
	default:
		return "unknown"
	}
}

// Signal is what ended the lobby.
type Signal int

const (
	SignalNone Signal = iota
	SignalStarted
	SignalCancelled
	SignalCapReached
	SignalTimedOut
)

func (s Signal) String() string {
	switch s {
	case SignalStarted:
		return "started"
	case SignalCancelled:
		return "cancelled"
	case SignalCapReached:
		return "cap_reached"
	case SignalTimedOut:
		return "timed_out"
	default:
		return "none"
	}
}

// Outcome describes how a session ended. GameID is uuid.Nil when the game was never persisted.
// Err is nil for completed sessions and for lobbies that were cancelled or timed out.
type Outcome struct {
	GameID  uuid.UUID
	State   State
	Trail   []State
	Signal  Signal
	Ranking []scoring.Entry
	Err     error
}

func (o *Outcome) enter(s State) {
	o.State = s
	o.Trail = append(o.Trail, s)
}
