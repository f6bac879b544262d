package config

import (
	"fmt"
	"regexp"
	"time"
)

const (
	DefaultTimezone          = "Asia/Tokyo"
	DefaultLobbyTimeout      = 48 * time.Hour
	DefaultPreCountdownDelay = 5 * time.Second
	DefaultCaptureWindow     = 12 * time.Second
)

var utcZonePattern = regexp.MustCompile(`^(Z|[+-]00|[+-]00:?00)$`)

type Config struct {
	Env               string
	DiscordToken      string
	DiscordGuildID    string
	DatabaseURL       string
	BotAdminUserIDs   []string
	Timezone          string
	LobbyTimeout      time.Duration
	PreCountdownDelay time.Duration
	CaptureWindow     time.Duration
	MetricsAddr       string
	ResultWebhookURL  string
}

func (c *Config) Validate() error {
	for _, req := range c.requiredFieldChecks() {
		if req.value == "" {
			return fmt.Errorf("%s is required", req.name)
		}
	}
	if c.LobbyTimeout <= 0 {
		return fmt.Errorf("LOBBY_TIMEOUT must be positive, got %s", c.LobbyTimeout)
	}
	if c.PreCountdownDelay < 0 {
		return fmt.Errorf("PRE_COUNTDOWN_DELAY must not be negative, got %s", c.PreCountdownDelay)
	}
	if c.CaptureWindow <= 0 {
		return fmt.Errorf("CAPTURE_WINDOW must be positive, got %s", c.CaptureWindow)
	}
	if _, err := c.Location(); err != nil {
		return fmt.Errorf("TIMEZONE is invalid: %w", err)
	}
	return nil
}

type requiredEnvField struct {
	name  string
	value string
}

func (c *Config) requiredFieldChecks() []requiredEnvField {
	return []requiredEnvField{
		{name: "DISCORD_TOKEN", value: c.DiscordToken},
		{name: "DISCORD_GUILD_ID", value: c.DiscordGuildID},
		{name: "DATABASE_URL", value: c.DatabaseURL},
		{name: "TIMEZONE", value: c.Timezone},
	}
}

func (c *Config) IsDevelopment() bool {
	return c.Env == "development"
}

// Location resolves Timezone. Zero offsets such as "Z" or "+00:00" map to UTC.
func (c *Config) Location() (*time.Location, error) {
	if utcZonePattern.MatchString(c.Timezone) {
		return time.UTC, nil
	}
	return time.LoadLocation(c.Timezone)
}

// AdminUserIDs keeps only entries that look like Discord user ids.
func (c *Config) AdminUserIDs() []string {
	ids := make([]string, 0, len(c.BotAdminUserIDs))
	for _, id := range c.BotAdminUserIDs {
		if len(id) < 16 || len(id) > 20 {
			continue
		}
		ids = append(ids, id)
	}
	return ids
}
