package discord

import (
	"context"
	"fmt"
	"log/slog"
	"regexp"
	"strconv"
	"sync"

	"github.com/bwmarrin/discordgo"
	discordpkg "github.com/foxseedlab/reactzero/internal/discord"
	"github.com/jonboulle/clockwork"
)

const reactionPageSize = 100

var customEmojiPattern = regexp.MustCompile(`^<a?:(\w+):(\d+)>$`)

type Client struct {
	session   *discordgo.Session
	token     string
	botUserID string
	clock     clockwork.Clock

	closeOnce sync.Once
	closed    chan struct{}
}

func NewClient(token string, clock clockwork.Clock) discordpkg.Client {
	return &Client{
		token:  token,
		clock:  clock,
		closed: make(chan struct{}),
	}
}

func (c *Client) Connect(ctx context.Context) error {
	_ = ctx
	s, err := discordgo.New("Bot " + c.token)
	if err != nil {
		return err
	}
	c.session = s
	s.Identify.Intents = discordgo.MakeIntent(discordgo.IntentsGuilds | discordgo.IntentsGuildMessages | discordgo.IntentsGuildMessageReactions)
	if err := s.Open(); err != nil {
		return err
	}
	userID, err := c.GetBotUserID()
	if err != nil {
		return err
	}
	c.botUserID = userID
	return nil
}

func (c *Client) Close() error {
	c.closeOnce.Do(func() { close(c.closed) })
	if c.session != nil {
		return c.session.Close()
	}
	return nil
}

func (c *Client) SendMessage(channelID, content string) (discordpkg.Message, error) {
	m, err := c.session.ChannelMessageSend(channelID, content)
	if err != nil {
		return discordpkg.Message{}, err
	}
	return discordpkg.Message{ChannelID: m.ChannelID, ID: m.ID}, nil
}

func (c *Client) SendMessageWithButtons(channelID, content string, buttons []discordpkg.Button) (discordpkg.Message, error) {
	components := make([]discordgo.MessageComponent, 0, len(buttons))
	for _, b := range buttons {
		components = append(components, discordgo.Button{
			CustomID: b.CustomID,
			Label:    b.Label,
			Style:    buttonStyle(b.Style),
		})
	}
	m, err := c.session.ChannelMessageSendComplex(channelID, &discordgo.MessageSend{
		Content:    content,
		Components: []discordgo.MessageComponent{discordgo.ActionsRow{Components: components}},
	})
	if err != nil {
		return discordpkg.Message{}, err
	}
	return discordpkg.Message{ChannelID: m.ChannelID, ID: m.ID}, nil
}

// EditMessage replaces the content and removes any components.
func (c *Client) EditMessage(msg discordpkg.Message, content string) error {
	edit := discordgo.NewMessageEdit(msg.ChannelID, msg.ID).SetContent(content)
	edit.Components = &[]discordgo.MessageComponent{}
	_, err := c.session.ChannelMessageEditComplex(edit)
	return err
}

func (c *Client) DeleteMessage(msg discordpkg.Message) error {
	return c.session.ChannelMessageDelete(msg.ChannelID, msg.ID)
}

func (c *Client) AddReaction(msg discordpkg.Message, emoji string) error {
	return c.session.MessageReactionAdd(msg.ChannelID, msg.ID, emojiAPIName(emoji))
}

func (c *Client) ListReactionUsers(msg discordpkg.Message, emoji string) ([]discordpkg.User, error) {
	apiName := emojiAPIName(emoji)
	users := make([]discordpkg.User, 0)
	after := ""
	for {
		page, err := c.session.MessageReactions(msg.ChannelID, msg.ID, apiName, reactionPageSize, "", after)
		if err != nil {
			return nil, err
		}
		for _, u := range page {
			if u == nil || u.ID == "" {
				continue
			}
			users = append(users, discordpkg.User{ID: u.ID, IsBot: u.Bot})
		}
		if len(page) < reactionPageSize {
			return users, nil
		}
		after = page[len(page)-1].ID
	}
}

func (c *Client) RegisterReactionAddHandler(handler func(discordpkg.ReactionEvent)) {
	c.session.AddHandler(func(s *discordgo.Session, r *discordgo.MessageReactionAdd) {
		receivedAt := c.clock.Now()
		if r == nil || r.MessageReaction == nil || r.UserID == "" {
			return
		}
		handler(discordpkg.ReactionEvent{
			GuildID:    r.GuildID,
			ChannelID:  r.ChannelID,
			MessageID:  r.MessageID,
			UserID:     r.UserID,
			UserIsBot:  c.resolveUserIsBot(r.GuildID, r.UserID, r.Member),
			Emoji:      r.Emoji.MessageFormat(),
			ReceivedAt: receivedAt,
		})
	})
}

func (c *Client) RegisterComponentHandler(handler func(discordpkg.ComponentEvent)) {
	c.session.AddHandler(func(s *discordgo.Session, ic *discordgo.InteractionCreate) {
		if ic == nil || ic.Type != discordgo.InteractionMessageComponent || ic.Message == nil {
			return
		}
		data := ic.MessageComponentData()
		userID := interactionUserID(ic)
		if userID == "" {
			return
		}
		handler(discordpkg.ComponentEvent{
			GuildID:   ic.GuildID,
			ChannelID: ic.ChannelID,
			MessageID: ic.Message.ID,
			CustomID:  data.CustomID,
			UserID:    userID,
			Acknowledge: func() error {
				return s.InteractionRespond(ic.Interaction, &discordgo.InteractionResponse{
					Type: discordgo.InteractionResponseDeferredMessageUpdate,
				})
			},
			RespondEphemeral: func(content string) error {
				return respond(s, ic, content, discordgo.MessageFlagsEphemeral)
			},
		})
	})
}

func (c *Client) RegisterSlashCommandHandler(handler func(discordpkg.SlashCommandEvent)) {
	c.session.AddHandler(func(s *discordgo.Session, ic *discordgo.InteractionCreate) {
		if ic == nil || ic.Type != discordgo.InteractionApplicationCommand {
			return
		}
		data := ic.ApplicationCommandData()
		if data.Name == "" {
			return
		}
		userID := interactionUserID(ic)
		if userID == "" {
			return
		}
		slog.Info("slash command interaction received", "guild_id", ic.GuildID, "channel_id", ic.ChannelID, "command", data.Name, "user_id", userID)
		handler(discordpkg.SlashCommandEvent{
			GuildID:     ic.GuildID,
			ChannelID:   ic.ChannelID,
			CommandName: data.Name,
			UserID:      userID,
			Options:     commandOptionValues(data.Options),
			Respond: func(content string) error {
				return respond(s, ic, content, 0)
			},
			RespondEphemeral: func(content string) error {
				slog.Info("responding to slash interaction", "command", data.Name, "guild_id", ic.GuildID, "channel_id", ic.ChannelID, "user_id", userID)
				return respond(s, ic, content, discordgo.MessageFlagsEphemeral)
			},
		})
	})
}

func respond(s *discordgo.Session, ic *discordgo.InteractionCreate, content string, flags discordgo.MessageFlags) error {
	return s.InteractionRespond(ic.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Content: content,
			Flags:   flags,
		},
	})
}

func interactionUserID(ic *discordgo.InteractionCreate) string {
	if ic.Member != nil && ic.Member.User != nil {
		return ic.Member.User.ID
	}
	if ic.User != nil {
		return ic.User.ID
	}
	return ""
}

func commandOptionValues(opts []*discordgo.ApplicationCommandInteractionDataOption) map[string]string {
	values := make(map[string]string, len(opts))
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		switch opt.Type {
		case discordgo.ApplicationCommandOptionInteger:
			values[opt.Name] = strconv.FormatInt(opt.IntValue(), 10)
		case discordgo.ApplicationCommandOptionUser:
			values[opt.Name] = fmt.Sprint(opt.Value)
		default:
			values[opt.Name] = opt.StringValue()
		}
	}
	return values
}

func (c *Client) UpsertGuildSlashCommands(guildID string, defs []discordpkg.SlashCommandDefinition) error {
	appID := c.applicationID()
	if appID == "" {
		return fmt.Errorf("discord application id is not available")
	}
	existing, err := c.session.ApplicationCommands(appID, guildID)
	if err != nil {
		return err
	}
	existingByName := make(map[string]*discordgo.ApplicationCommand, len(existing))
	for _, cmd := range existing {
		if cmd == nil || cmd.Name == "" {
			continue
		}
		existingByName[cmd.Name] = cmd
	}
	for _, def := range defs {
		if err := c.upsertGuildSlashCommand(appID, guildID, def, existingByName); err != nil {
			return err
		}
	}
	return nil
}

func (c *Client) upsertGuildSlashCommand(appID, guildID string, def discordpkg.SlashCommandDefinition, existingByName map[string]*discordgo.ApplicationCommand) error {
	if def.Name == "" {
		return nil
	}
	payload := applicationCommand(def)
	cmd, ok := existingByName[def.Name]
	if !ok {
		_, err := c.session.ApplicationCommandCreate(appID, guildID, payload)
		return err
	}
	if sameCommand(cmd, payload) {
		return nil
	}
	_, err := c.session.ApplicationCommandEdit(appID, guildID, cmd.ID, payload)
	return err
}

func applicationCommand(def discordpkg.SlashCommandDefinition) *discordgo.ApplicationCommand {
	opts := make([]*discordgo.ApplicationCommandOption, 0, len(def.Options))
	for _, o := range def.Options {
		opts = append(opts, &discordgo.ApplicationCommandOption{
			Type:        optionType(o.Type),
			Name:        o.Name,
			Description: o.Description,
			Required:    o.Required,
		})
	}
	return &discordgo.ApplicationCommand{
		Name:        def.Name,
		Description: def.Description,
		Options:     opts,
	}
}

func sameCommand(existing, want *discordgo.ApplicationCommand) bool {
	if existing.Description != want.Description || len(existing.Options) != len(want.Options) {
		return false
	}
	for i, o := range existing.Options {
		w := want.Options[i]
		if o == nil || o.Name != w.Name || o.Type != w.Type || o.Description != w.Description || o.Required != w.Required {
			return false
		}
	}
	return true
}

func optionType(t discordpkg.CommandOptionType) discordgo.ApplicationCommandOptionType {
	switch t {
	case discordpkg.CommandOptionInteger:
		return discordgo.ApplicationCommandOptionInteger
	case discordpkg.CommandOptionUser:
		return discordgo.ApplicationCommandOptionUser
	default:
		return discordgo.ApplicationCommandOptionString
	}
}

func buttonStyle(s discordpkg.ButtonStyle) discordgo.ButtonStyle {
	switch s {
	case discordpkg.ButtonSuccess:
		return discordgo.SuccessButton
	case discordpkg.ButtonDanger:
		return discordgo.DangerButton
	default:
		return discordgo.PrimaryButton
	}
}

// emojiAPIName converts "<:name:id>" to the "name:id" form the reaction endpoints expect.
// Unicode emoji pass through unchanged.
func emojiAPIName(symbol string) string {
	m := customEmojiPattern.FindStringSubmatch(symbol)
	if m == nil {
		return symbol
	}
	return m[1] + ":" + m[2]
}

func (c *Client) GetBotUserID() (string, error) {
	if c.botUserID != "" {
		return c.botUserID, nil
	}
	if c.session == nil {
		return "", fmt.Errorf("discord session is not initialized")
	}
	if c.session.State != nil && c.session.State.User != nil && c.session.State.User.ID != "" {
		c.botUserID = c.session.State.User.ID
		return c.botUserID, nil
	}
	u, err := c.session.User("@me")
	if err != nil {
		return "", err
	}
	c.botUserID = u.ID
	return c.botUserID, nil
}

func (c *Client) MemberDisplayName(guildID, userID string) string {
	member := c.resolveGuildMember(guildID, userID)
	if member != nil {
		if member.Nick != "" {
			return member.Nick
		}
		if member.User != nil {
			return preferredDiscordName(member.User.GlobalName, member.User.Username, "")
		}
	}
	return ""
}

func (c *Client) resolveUserIsBot(guildID, userID string, member *discordgo.Member) bool {
	if member != nil && member.User != nil {
		return member.User.Bot
	}
	if isBot, ok := c.botFlagFromSessionState(guildID, userID); ok {
		return isBot
	}
	return c.botFlagFromUserAPI(userID)
}

func (c *Client) botFlagFromSessionState(guildID, userID string) (bool, bool) {
	if c.session == nil || c.session.State == nil {
		return false, false
	}
	if c.session.State.User != nil && c.session.State.User.ID == userID {
		return true, true
	}
	member, err := c.session.State.Member(guildID, userID)
	if err == nil && member != nil && member.User != nil {
		return member.User.Bot, true
	}
	return false, false
}

func (c *Client) botFlagFromUserAPI(userID string) bool {
	u, err := c.session.User(userID)
	if err != nil {
		return false
	}
	return u.Bot
}

func (c *Client) resolveGuildMember(guildID, userID string) *discordgo.Member {
	if c.session == nil {
		return nil
	}
	if c.session.State != nil {
		member, err := c.session.State.Member(guildID, userID)
		if err == nil && member != nil {
			return member
		}
	}
	member, err := c.session.GuildMember(guildID, userID)
	if err != nil {
		return nil
	}
	return member
}

func preferredDiscordName(globalName, username, fallback string) string {
	if globalName != "" {
		return globalName
	}
	if username != "" {
		return username
	}
	return fallback
}

func (c *Client) applicationID() string {
	if c.session == nil || c.session.State == nil {
		return ""
	}
	if c.session.State.Application != nil && c.session.State.Application.ID != "" {
		return c.session.State.Application.ID
	}
	if c.session.State.User != nil {
		return c.session.State.User.ID
	}
	return ""
}

// Run blocks until Close is called; discordgo delivers events on its own goroutines.
func (c *Client) Run() error {
	<-c.closed
	return nil
}
