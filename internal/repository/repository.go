package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
)

type CreateGameInput struct {
	GuildID   string
	StartedBy string
	CreatedAt time.Time
}

type UserPointsQuery struct {
	GuildID string
	UserID  string
	From    time.Time
	To      time.Time
}

// RankingQuery filters by UserID and the finish time range only when they are set.
type RankingQuery struct {
	GuildID string
	UserID  string
	From    *time.Time
	To      *time.Time
	Offset  int
	Limit   int
}

type GameRepository interface {
	UpsertGuild(ctx context.Context, guildID string) error
	CreateGame(ctx context.Context, input CreateGameInput) (*Game, error)
	MarkGameStarted(ctx context.Context, gameID uuid.UUID, at time.Time) error
	MarkGameFinished(ctx context.Context, gameID uuid.UUID, at time.Time) error
	CreateScoreRecord(ctx context.Context, record ScoreRecord) error
}

type StatsRepository interface {
	ListUserPoints(ctx context.Context, q UserPointsQuery) ([]PointEntry, error)
	ListRanking(ctx context.Context, q RankingQuery) ([]PointEntry, error)
}

type SettingRepository interface {
	ListSettings(ctx context.Context) (map[string]string, error)
	UpsertSetting(ctx context.Context, key, value string) error
}

type Repository interface {
	GameRepository
	StatsRepository
	SettingRepository
}
