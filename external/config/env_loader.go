package config

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/caarlos0/env/v11"
	internalconfig "github.com/foxseedlab/reactzero/internal/config"
	"github.com/joho/godotenv"
)

type envConfig struct {
	Env               string        `env:"ENV" envDefault:"production"`
	DiscordToken      string        `env:"DISCORD_TOKEN,required"`
	DiscordGuildID    string        `env:"DISCORD_GUILD_ID,required"`
	DatabaseURL       string        `env:"DATABASE_URL,required"`
	BotAdminUsers     []string      `env:"BOT_ADMIN_USERS" envSeparator:","`
	Timezone          string        `env:"TIMEZONE" envDefault:"Asia/Tokyo"`
	LobbyTimeout      time.Duration `env:"LOBBY_TIMEOUT" envDefault:"48h"`
	PreCountdownDelay time.Duration `env:"PRE_COUNTDOWN_DELAY" envDefault:"5s"`
	CaptureWindow     time.Duration `env:"CAPTURE_WINDOW" envDefault:"12s"`
	MetricsAddr       string        `env:"METRICS_ADDR"`
	ResultWebhookURL  string        `env:"RESULT_WEBHOOK_URL"`
}

// LoadDotEnv reads .env files into the process environment. A missing file is not an error.
func LoadDotEnv(filenames ...string) {
	if err := godotenv.Load(filenames...); err != nil {
		slog.Warn("could not load .env file; using process environment only", "error", err)
	}
}

func Load() (*internalconfig.Config, error) {
	var raw envConfig
	if err := env.Parse(&raw); err != nil {
		return nil, fmt.Errorf("environment variables are invalid or missing: %w", err)
	}

	cfg := &internalconfig.Config{
		Env:               raw.Env,
		DiscordToken:      raw.DiscordToken,
		DiscordGuildID:    raw.DiscordGuildID,
		DatabaseURL:       raw.DatabaseURL,
		BotAdminUserIDs:   raw.BotAdminUsers,
		Timezone:          raw.Timezone,
		LobbyTimeout:      raw.LobbyTimeout,
		PreCountdownDelay: raw.PreCountdownDelay,
		CaptureWindow:     raw.CaptureWindow,
		MetricsAddr:       raw.MetricsAddr,
		ResultWebhookURL:  raw.ResultWebhookURL,
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}
