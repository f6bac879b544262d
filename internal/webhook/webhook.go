package webhook

import (
	"context"
	"time"
)

type RankingEntry struct {
	Rank        int    `json:"rank"`
	UserID      string `json:"user_id"`
	DisplayName string `json:"display_name"`
	OffsetNS    int64  `json:"offset_ns"`
	Score       int64  `json:"score"`
}

type ResultPayload struct {
	GameID     string         `json:"game_id"`
	GuildID    string         `json:"guild_id"`
	ChannelID  string         `json:"channel_id"`
	StartedBy  string         `json:"started_by"`
	FinishedAt time.Time      `json:"finished_at"`
	Rankings   []RankingEntry `json:"rankings"`
}

// Sender publishes finished game results. Failures never affect the game outcome.
type Sender interface {
	SendResult(ctx context.Context, payload ResultPayload) error
}
