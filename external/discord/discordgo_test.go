package discord

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"testing"

	"github.com/bwmarrin/discordgo"
	discordpkg "github.com/foxseedlab/reactzero/internal/discord"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type roundTripFunc func(req *http.Request) (*http.Response, error)

func (f roundTripFunc) RoundTrip(req *http.Request) (*http.Response, error) {
	return f(req)
}

func newTestSession(t *testing.T, rt roundTripFunc) *discordgo.Session {
	t.Helper()
	s, err := discordgo.New("Bot test-token")
	if err != nil {
		t.Fatalf("failed to create session: %v", err)
	}
	if rt != nil {
		s.Client = &http.Client{Transport: rt}
	}
	return s
}

func jsonResponse(status int, body string) *http.Response {
	return &http.Response{
		StatusCode: status,
		Status:     fmt.Sprintf("%d %s", status, http.StatusText(status)),
		Body:       io.NopCloser(strings.NewReader(body)),
		Header:     http.Header{"Content-Type": []string{"application/json"}},
	}
}

func TestEmojiAPIName(t *testing.T) {
	assert.Equal(t, "🔴", emojiAPIName("🔴"))
	assert.Equal(t, "countdown:123456789012345678", emojiAPIName("<:countdown:123456789012345678>"))
	assert.Equal(t, "spin:123456789012345678", emojiAPIName("<a:spin:123456789012345678>"))
}

func TestListReactionUsers_Paginates(t *testing.T) {
	var afters []string
	s := newTestSession(t, func(req *http.Request) (*http.Response, error) {
		if !strings.Contains(req.URL.Path, "/channels/channel-1/messages/message-1/reactions/") {
			t.Fatalf("unexpected request path: %s", req.URL.Path)
		}
		after := req.URL.Query().Get("after")
		afters = append(afters, after)
		if after == "" {
			users := make([]map[string]any, 0, reactionPageSize)
			for i := 0; i < reactionPageSize; i++ {
				users = append(users, map[string]any{"id": fmt.Sprintf("u%03d", i), "username": "x"})
			}
			b, _ := json.Marshal(users)
			return jsonResponse(http.StatusOK, string(b)), nil
		}
		return jsonResponse(http.StatusOK, `[{"id":"bot-1","username":"bot","bot":true}]`), nil
	})

	c := &Client{session: s}
	users, err := c.ListReactionUsers(discordpkg.Message{ChannelID: "channel-1", ID: "message-1"}, "👍")

	require.NoError(t, err)
	require.Len(t, users, reactionPageSize+1)
	assert.Equal(t, []string{"", "u099"}, afters)
	assert.Equal(t, discordpkg.User{ID: "bot-1", IsBot: true}, users[reactionPageSize])
}

func TestListReactionUsers_PropagatesRESTError(t *testing.T) {
	s := newTestSession(t, func(req *http.Request) (*http.Response, error) {
		return jsonResponse(http.StatusNotFound, `{"message":"Unknown Message","code":10008}`), nil
	})

	c := &Client{session: s}
	_, err := c.ListReactionUsers(discordpkg.Message{ChannelID: "channel-1", ID: "message-1"}, "👍")

	assert.Error(t, err)
}

func TestResolveUserIsBot_UsesMemberPayloadFirst(t *testing.T) {
	s := newTestSession(t, func(req *http.Request) (*http.Response, error) {
		t.Fatalf("unexpected REST call: %s %s", req.Method, req.URL.String())
		return nil, nil
	})
	c := &Client{session: s}

	assert.True(t, c.resolveUserIsBot("guild-1", "user-1", &discordgo.Member{User: &discordgo.User{ID: "user-1", Bot: true}}))
	assert.False(t, c.resolveUserIsBot("guild-1", "user-2", &discordgo.Member{User: &discordgo.User{ID: "user-2"}}))
}

func TestResolveUserIsBot_FallsBackToUserAPI(t *testing.T) {
	s := newTestSession(t, func(req *http.Request) (*http.Response, error) {
		if !strings.HasSuffix(req.URL.Path, "/users/user-9") {
			t.Fatalf("unexpected request path: %s", req.URL.Path)
		}
		return jsonResponse(http.StatusOK, `{"id":"user-9","username":"helper","bot":true}`), nil
	})
	c := &Client{session: s}

	assert.True(t, c.resolveUserIsBot("guild-1", "user-9", nil))
}

func TestMemberDisplayName_PrefersNickFromState(t *testing.T) {
	s := newTestSession(t, func(req *http.Request) (*http.Response, error) {
		t.Fatalf("unexpected REST call: %s %s", req.Method, req.URL.String())
		return nil, nil
	})
	require.NoError(t, s.State.GuildAdd(&discordgo.Guild{ID: "guild-1"}))
	require.NoError(t, s.State.MemberAdd(&discordgo.Member{
		GuildID: "guild-1",
		Nick:    "nick",
		User:    &discordgo.User{ID: "user-1", Username: "name", GlobalName: "global"},
	}))
	require.NoError(t, s.State.MemberAdd(&discordgo.Member{
		GuildID: "guild-1",
		User:    &discordgo.User{ID: "user-2", Username: "name2", GlobalName: "global2"},
	}))

	c := &Client{session: s}

	assert.Equal(t, "nick", c.MemberDisplayName("guild-1", "user-1"))
	assert.Equal(t, "global2", c.MemberDisplayName("guild-1", "user-2"))
}

func TestMemberDisplayName_EmptyWhenUnknown(t *testing.T) {
	s := newTestSession(t, func(req *http.Request) (*http.Response, error) {
		return jsonResponse(http.StatusNotFound, `{"message":"Unknown Member","code":10007}`), nil
	})
	c := &Client{session: s}

	assert.Equal(t, "", c.MemberDisplayName("guild-1", "ghost"))
}

func TestCommandOptionValues(t *testing.T) {
	got := commandOptionValues([]*discordgo.ApplicationCommandInteractionDataOption{
		{Name: "順位", Type: discordgo.ApplicationCommandOptionInteger, Value: float64(3)},
		{Name: "ユーザー", Type: discordgo.ApplicationCommandOptionUser, Value: "user-1"},
		{Name: "日付", Type: discordgo.ApplicationCommandOptionString, Value: "2026/1/2"},
	})

	assert.Equal(t, map[string]string{"順位": "3", "ユーザー": "user-1", "日付": "2026/1/2"}, got)
}

func TestSameCommand_DetectsOptionChanges(t *testing.T) {
	def := discordpkg.SlashCommandDefinition{
		Name:        "start",
		Description: "d",
		Options:     []discordpkg.CommandOption{{Name: "n", Description: "o", Type: discordpkg.CommandOptionInteger}},
	}
	want := applicationCommand(def)
	existing := applicationCommand(def)
	assert.True(t, sameCommand(existing, want))

	existing.Options[0].Required = true
	assert.False(t, sameCommand(existing, want))
}
