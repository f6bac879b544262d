package discord

import (
	"context"
	"time"
)

type CommandOptionType int

const (
	CommandOptionString CommandOptionType = iota + 1
	CommandOptionInteger
	CommandOptionUser
)

type CommandOption struct {
	Name        string
	Description string
	Type        CommandOptionType
	Required    bool
}

type SlashCommandDefinition struct {
	Name        string
	Description string
	Options     []CommandOption
}

// SlashCommandEvent carries option values as strings; user options hold the user id.
type SlashCommandEvent struct {
	GuildID          string
	ChannelID        string
	CommandName      string
	UserID           string
	Options          map[string]string
	Respond          func(content string) error
	RespondEphemeral func(content string) error
}

type ButtonStyle int

const (
	ButtonPrimary ButtonStyle = iota + 1
	ButtonSuccess
	ButtonDanger
)

type Button struct {
	CustomID string
	Label    string
	Style    ButtonStyle
}

// ComponentEvent is a button press. Acknowledge must be called once unless
// RespondEphemeral is used instead.
type ComponentEvent struct {
	GuildID          string
	ChannelID        string
	MessageID        string
	CustomID         string
	UserID           string
	Acknowledge      func() error
	RespondEphemeral func(content string) error
}

// ReactionEvent is a reaction add. ReceivedAt is stamped before any other processing.
type ReactionEvent struct {
	GuildID    string
	ChannelID  string
	MessageID  string
	UserID     string
	UserIsBot  bool
	Emoji      string
	ReceivedAt time.Time
}

type Message struct {
	ChannelID string
	ID        string
}

type User struct {
	ID    string
	IsBot bool
}

type Client interface {
	Connect(ctx context.Context) error
	Close() error
	GetBotUserID() (string, error)
	UpsertGuildSlashCommands(guildID string, defs []SlashCommandDefinition) error
	RegisterSlashCommandHandler(handler func(SlashCommandEvent))
	RegisterComponentHandler(handler func(ComponentEvent))
	RegisterReactionAddHandler(handler func(ReactionEvent))
	SendMessage(channelID, content string) (Message, error)
	SendMessageWithButtons(channelID, content string, buttons []Button) (Message, error)
	EditMessage(msg Message, content string) error
	DeleteMessage(msg Message) error
	AddReaction(msg Message, emoji string) error
	ListReactionUsers(msg Message, emoji string) ([]User, error)
	MemberDisplayName(guildID, userID string) string
	Run() error
}
