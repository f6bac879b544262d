package command

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/foxseedlab/reactzero/internal/discord"
	"github.com/foxseedlab/reactzero/internal/game"
	"github.com/foxseedlab/reactzero/internal/settings"
	"github.com/foxseedlab/reactzero/internal/stats"
)

const (
	CommandStart   = "start"
	CommandPoints  = "points"
	CommandRanking = "ranking"
	CommandConfig  = "config"

	optionMaxParticipants = "参加者数の上限"
	optionUser            = "ユーザー"
	optionDate            = "日付"
	optionRank            = "順位"
	optionFrom            = "日付ここから"
	optionTo              = "日付ここまで"
	optionKey             = "設定項目"
	optionValue           = "値"
)

type GameStarter interface {
	Start(req game.StartRequest)
}

type StatsQuerier interface {
	Points(ctx context.Context, req stats.PointsRequest) (string, error)
	Ranking(ctx context.Context, req stats.RankingRequest) (string, error)
}

type SettingsEditor interface {
	Get(key string) (string, error)
	Set(ctx context.Context, userID, key, value string) (string, string, error)
}

// Router dispatches slash commands for the configured guild.
type Router struct {
	guildID  string
	games    GameStarter
	stats    StatsQuerier
	settings SettingsEditor
}

func NewRouter(guildID string, games GameStarter, sq StatsQuerier, se SettingsEditor) *Router {
	return &Router{guildID: guildID, games: games, stats: sq, settings: se}
}

func SlashCommandDefinitions() []discord.SlashCommandDefinition {
	return []discord.SlashCommandDefinition{
		{
			Name:        CommandStart,
			Description: slashCommandStartDescription,
			Options: []discord.CommandOption{
				{Name: optionMaxParticipants, Description: optionMaxParticipantsDescription, Type: discord.CommandOptionInteger},
			},
		},
		{
			Name:        CommandPoints,
			Description: slashCommandPointsDescription,
			Options: []discord.CommandOption{
				{Name: optionUser, Description: optionUserDescription, Type: discord.CommandOptionUser, Required: true},
				{Name: optionDate, Description: optionDateDescription, Type: discord.CommandOptionString, Required: true},
			},
		},
		{
			Name:        CommandRanking,
			Description: slashCommandRankingDescription,
			Options: []discord.CommandOption{
				{Name: optionRank, Description: optionRankDescription, Type: discord.CommandOptionInteger},
				{Name: optionUser, Description: optionUserDescription, Type: discord.CommandOptionUser},
				{Name: optionFrom, Description: optionFromDescription, Type: discord.CommandOptionString},
				{Name: optionTo, Description: optionToDescription, Type: discord.CommandOptionString},
			},
		},
		{
			Name:        CommandConfig,
			Description: slashCommandConfigDescription,
			Options: []discord.CommandOption{
				{Name: optionKey, Description: optionKeyDescription, Type: discord.CommandOptionString, Required: true},
				{Name: optionValue, Description: optionValueDescription, Type: discord.CommandOptionString},
			},
		},
	}
}

// CommandNames lists the registered command names for logging.
func CommandNames() []string {
	defs := SlashCommandDefinitions()
	names := make([]string, 0, len(defs))
	for _, d := range defs {
		names = append(names, d.Name)
	}
	return names
}

func (r *Router) HandleSlashCommand(event discord.SlashCommandEvent) {
	slog.Info("slash command received", "command", event.CommandName, "guild_id", event.GuildID, "channel_id", event.ChannelID, "user_id", event.UserID)
	if event.GuildID != r.guildID {
		respondEphemeral(event, messageEphemeralWrongGuild)
		return
	}
	ctx := context.Background()
	switch event.CommandName {
	case CommandStart:
		r.handleStart(event)
	case CommandPoints:
		r.handlePoints(ctx, event)
	case CommandRanking:
		r.handleRanking(ctx, event)
	case CommandConfig:
		r.handleConfig(ctx, event)
	default:
		respondEphemeral(event, messageEphemeralUnknownCommand)
	}
}

func (r *Router) handleStart(event discord.SlashCommandEvent) {
	requested, ok := intOption(event, optionMaxParticipants)
	if !ok {
		respondEphemeral(event, messageEphemeralInvalidNumber)
		return
	}
	respondEphemeral(event, messageGameCreated)
	r.games.Start(game.StartRequest{
		GuildID:      event.GuildID,
		ChannelID:    event.ChannelID,
		UserID:       event.UserID,
		RequestedCap: requested,
	})
}

func (r *Router) handlePoints(ctx context.Context, event discord.SlashCommandEvent) {
	userID := event.Options[optionUser]
	date := event.Options[optionDate]
	if userID == "" || date == "" {
		respondEphemeral(event, messageEphemeralMissingOption)
		return
	}
	text, err := r.stats.Points(ctx, stats.PointsRequest{GuildID: event.GuildID, UserID: userID, Date: date})
	if err != nil {
		respondQueryError(event, err)
		return
	}
	respond(event, text)
}

func (r *Router) handleRanking(ctx context.Context, event discord.SlashCommandEvent) {
	rank, ok := intOption(event, optionRank)
	if !ok {
		respondEphemeral(event, messageEphemeralInvalidNumber)
		return
	}
	text, err := r.stats.Ranking(ctx, stats.RankingRequest{
		GuildID: event.GuildID,
		UserID:  event.Options[optionUser],
		Rank:    rank,
		From:    event.Options[optionFrom],
		To:      event.Options[optionTo],
	})
	if err != nil {
		respondQueryError(event, err)
		return
	}
	respond(event, text)
}

func (r *Router) handleConfig(ctx context.Context, event discord.SlashCommandEvent) {
	key := strings.TrimSpace(event.Options[optionKey])
	value, hasValue := event.Options[optionValue]
	if !hasValue || value == "" {
		current, err := r.settings.Get(key)
		if err != nil {
			respondEphemeral(event, messageEphemeralUnknownKey)
			return
		}
		respond(event, fmt.Sprintf(messageConfigValueFormat, key, current))
		return
	}

	before, after, err := r.settings.Set(ctx, event.UserID, key, value)
	switch {
	case err == nil:
		respond(event, fmt.Sprintf(messageConfigChangedFormat, key, before, after))
	case errors.Is(err, settings.ErrUnknownKey):
		respondEphemeral(event, messageEphemeralUnknownKey)
	case errors.Is(err, settings.ErrNotAdmin):
		respondEphemeral(event, messageEphemeralNotAdmin)
	default:
		if !errors.Is(err, settings.ErrInvalidValue) {
			slog.Error("failed to change setting", "error", err, "key", key, "user_id", event.UserID)
		}
		respond(event, fmt.Sprintf(messageConfigFailedFormat, key, before, value))
	}
}

// intOption returns 0 when the option is absent.
func intOption(event discord.SlashCommandEvent, name string) (int, bool) {
	raw, ok := event.Options[name]
	if !ok || raw == "" {
		return 0, true
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, false
	}
	return n, true
}

func respondQueryError(event discord.SlashCommandEvent, err error) {
	var ve *stats.ValidationError
	if errors.As(err, &ve) {
		respondEphemeral(event, stats.InvalidDateMessage())
		return
	}
	slog.Error("stats query failed", "error", err, "command", event.CommandName)
	respondEphemeral(event, messageEphemeralQueryFailed)
}

func respond(event discord.SlashCommandEvent, content string) {
	if event.Respond == nil {
		return
	}
	if err := event.Respond(content); err != nil {
		slog.Warn("failed to respond to slash command", "error", err, "command", event.CommandName)
	}
}

func respondEphemeral(event discord.SlashCommandEvent, content string) {
	if event.RespondEphemeral == nil {
		return
	}
	if err := event.RespondEphemeral(content); err != nil {
		slog.Warn("failed to send ephemeral response", "error", err, "command", event.CommandName)
	}
}
