package repository

import (
	"time"

	"github.com/google/uuid"
)

// Completion records whether a game reached its finished state.
type Completion struct {
	at   time.Time
	done bool
}

func Completed(at time.Time) Completion {
	return Completion{at: at, done: true}
}

func Pending() Completion {
	return Completion{}
}

func (c Completion) FinishedAt() (time.Time, bool) {
	return c.at, c.done
}

func (c Completion) IsCompleted() bool {
	return c.done
}

type Game struct {
	ID        uuid.UUID
	GuildID   string
	StartedBy string
	CreatedAt time.Time
	StartedAt *time.Time
	Finish    Completion
}

type ScoreRecord struct {
	ParticipantID    string
	GameID           uuid.UUID
	SignedOffset     time.Duration
	Score            int64
	AlgorithmVersion int
}

// PointEntry is one persisted score joined with its game's timestamps.
type PointEntry struct {
	UserID       string
	Score        int64
	SignedOffset time.Duration
	GameID       uuid.UUID
	CreatedAt    time.Time
	Finish       Completion
}
