package command

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/foxseedlab/reactzero/internal/discord"
	"github.com/foxseedlab/reactzero/internal/game"
	"github.com/foxseedlab/reactzero/internal/settings"
	"github.com/foxseedlab/reactzero/internal/stats"
)

type mockGameStarter struct {
	started []game.StartRequest
}

func (m *mockGameStarter) Start(req game.StartRequest) {
	m.started = append(m.started, req)
}

type mockStats struct {
	pointsReq  stats.PointsRequest
	rankingReq stats.RankingRequest
	text       string
	err        error
}

func (m *mockStats) Points(_ context.Context, req stats.PointsRequest) (string, error) {
	m.pointsReq = req
	return m.text, m.err
}

func (m *mockStats) Ranking(_ context.Context, req stats.RankingRequest) (string, error) {
	m.rankingReq = req
	return m.text, m.err
}

type mockSettings struct {
	values map[string]string
	setErr error
}

func (m *mockSettings) Get(key string) (string, error) {
	v, ok := m.values[key]
	if !ok {
		return "", settings.ErrUnknownKey
	}
	return v, nil
}

func (m *mockSettings) Set(_ context.Context, _, key, value string) (string, string, error) {
	before := m.values[key]
	if m.setErr != nil {
		return before, "", m.setErr
	}
	m.values[key] = value
	return before, value, nil
}

type responses struct {
	public    []string
	ephemeral []string
}

func newEvent(command string, options map[string]string, got *responses) discord.SlashCommandEvent {
	return discord.SlashCommandEvent{
		GuildID:     "guild-1",
		ChannelID:   "channel-1",
		CommandName: command,
		UserID:      "user-1",
		Options:     options,
		Respond: func(content string) error {
			got.public = append(got.public, content)
			return nil
		},
		RespondEphemeral: func(content string) error {
			got.ephemeral = append(got.ephemeral, content)
			return nil
		},
	}
}

func newTestRouter() (*Router, *mockGameStarter, *mockStats, *mockSettings) {
	games := &mockGameStarter{}
	sq := &mockStats{text: "ok"}
	se := &mockSettings{values: map[string]string{settings.KeyReactSymbol: "🔴"}}
	return NewRouter("guild-1", games, sq, se), games, sq, se
}

func TestHandleSlashCommand_WrongGuild(t *testing.T) {
	router, games, _, _ := newTestRouter()
	var got responses
	ev := newEvent(CommandStart, nil, &got)
	ev.GuildID = "other"

	router.HandleSlashCommand(ev)

	if len(games.started) != 0 {
		t.Fatalf("expected no game, got %d", len(games.started))
	}
	if len(got.ephemeral) != 1 || got.ephemeral[0] != messageEphemeralWrongGuild {
		t.Fatalf("unexpected responses: %+v", got)
	}
}

func TestHandleSlashCommand_StartPassesCap(t *testing.T) {
	router, games, _, _ := newTestRouter()
	var got responses

	router.HandleSlashCommand(newEvent(CommandStart, map[string]string{optionMaxParticipants: "3"}, &got))

	if len(games.started) != 1 {
		t.Fatalf("expected one game, got %d", len(games.started))
	}
	want := game.StartRequest{GuildID: "guild-1", ChannelID: "channel-1", UserID: "user-1", RequestedCap: 3}
	if games.started[0] != want {
		t.Fatalf("unexpected start request: %+v", games.started[0])
	}
	if len(got.ephemeral) != 1 || got.ephemeral[0] != messageGameCreated {
		t.Fatalf("unexpected responses: %+v", got)
	}
}

func TestHandleSlashCommand_StartRejectsInvalidCap(t *testing.T) {
	router, games, _, _ := newTestRouter()
	var got responses

	router.HandleSlashCommand(newEvent(CommandStart, map[string]string{optionMaxParticipants: "many"}, &got))

	if len(games.started) != 0 {
		t.Fatal("expected no game for invalid cap")
	}
	if len(got.ephemeral) != 1 || got.ephemeral[0] != messageEphemeralInvalidNumber {
		t.Fatalf("unexpected responses: %+v", got)
	}
}

func TestHandleSlashCommand_PointsInvalidDate(t *testing.T) {
	router, _, sq, _ := newTestRouter()
	sq.err = &stats.ValidationError{Input: "2022/01/01x", Err: stats.ErrInvalidDate}
	var got responses

	router.HandleSlashCommand(newEvent(CommandPoints, map[string]string{optionUser: "user-2", optionDate: "2022/01/01x"}, &got))

	if sq.pointsReq.UserID != "user-2" {
		t.Fatalf("unexpected points request: %+v", sq.pointsReq)
	}
	if len(got.public) != 0 {
		t.Fatalf("expected no public response, got %v", got.public)
	}
	if len(got.ephemeral) != 1 || got.ephemeral[0] != stats.InvalidDateMessage() {
		t.Fatalf("unexpected responses: %+v", got)
	}
}

func TestHandleSlashCommand_PointsQueryFailure(t *testing.T) {
	router, _, sq, _ := newTestRouter()
	sq.err = fmt.Errorf("failed to list points: %w", errors.New("db down"))
	var got responses

	router.HandleSlashCommand(newEvent(CommandPoints, map[string]string{optionUser: "user-2", optionDate: "2022/1/1"}, &got))

	if len(got.ephemeral) != 1 || got.ephemeral[0] != messageEphemeralQueryFailed {
		t.Fatalf("unexpected responses: %+v", got)
	}
}

func TestHandleSlashCommand_RankingForwardsFilters(t *testing.T) {
	router, _, sq, _ := newTestRouter()
	var got responses

	router.HandleSlashCommand(newEvent(CommandRanking, map[string]string{
		optionRank: "11",
		optionFrom: "2022/1/1",
		optionTo:   "2022/1/31",
	}, &got))

	want := stats.RankingRequest{GuildID: "guild-1", Rank: 11, From: "2022/1/1", To: "2022/1/31"}
	if sq.rankingReq != want {
		t.Fatalf("unexpected ranking request: %+v", sq.rankingReq)
	}
	if len(got.public) != 1 || got.public[0] != "ok" {
		t.Fatalf("unexpected responses: %+v", got)
	}
}

func TestHandleSlashCommand_ConfigShowsValue(t *testing.T) {
	router, _, _, _ := newTestRouter()
	var got responses

	router.HandleSlashCommand(newEvent(CommandConfig, map[string]string{optionKey: settings.KeyReactSymbol}, &got))

	if len(got.public) != 1 || got.public[0] != "react_symbol:🔴" {
		t.Fatalf("unexpected responses: %+v", got)
	}
}

func TestHandleSlashCommand_ConfigUnknownKey(t *testing.T) {
	router, _, _, _ := newTestRouter()
	var got responses

	router.HandleSlashCommand(newEvent(CommandConfig, map[string]string{optionKey: "nope"}, &got))

	if len(got.ephemeral) != 1 || got.ephemeral[0] != messageEphemeralUnknownKey {
		t.Fatalf("unexpected responses: %+v", got)
	}
}

func TestHandleSlashCommand_ConfigSet(t *testing.T) {
	router, _, _, se := newTestRouter()
	var got responses

	router.HandleSlashCommand(newEvent(CommandConfig, map[string]string{optionKey: settings.KeyReactSymbol, optionValue: "🟢"}, &got))

	if len(got.public) != 1 || got.public[0] != "設定を変更しました。 react_symbol: 🔴 -> 🟢" {
		t.Fatalf("unexpected responses: %+v", got)
	}
	if se.values[settings.KeyReactSymbol] != "🟢" {
		t.Fatalf("setting not stored: %v", se.values)
	}
}

func TestHandleSlashCommand_ConfigRequiresAdmin(t *testing.T) {
	router, _, _, se := newTestRouter()
	se.setErr = settings.ErrNotAdmin
	var got responses

	router.HandleSlashCommand(newEvent(CommandConfig, map[string]string{optionKey: settings.KeyReactSymbol, optionValue: "🟢"}, &got))

	if len(got.ephemeral) != 1 || got.ephemeral[0] != messageEphemeralNotAdmin {
		t.Fatalf("unexpected responses: %+v", got)
	}
}

func TestHandleSlashCommand_ConfigInvalidValue(t *testing.T) {
	router, _, _, se := newTestRouter()
	se.setErr = fmt.Errorf("%w: %q is not an emoji", settings.ErrInvalidValue, "abc")
	var got responses

	router.HandleSlashCommand(newEvent(CommandConfig, map[string]string{optionKey: settings.KeyReactSymbol, optionValue: "abc"}, &got))

	if len(got.public) != 1 || got.public[0] != "設定の変更に失敗しました。 react_symbol: 🔴 -> abc" {
		t.Fatalf("unexpected responses: %+v", got)
	}
}

func TestSlashCommandDefinitions(t *testing.T) {
	names := CommandNames()
	want := []string{CommandStart, CommandPoints, CommandRanking, CommandConfig}
	if fmt.Sprint(names) != fmt.Sprint(want) {
		t.Fatalf("unexpected command names: %v", names)
	}
	for _, def := range SlashCommandDefinitions() {
		if def.Description == "" {
			t.Fatalf("command %s has no description", def.Name)
		}
	}
}
