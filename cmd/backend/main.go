package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	configloader "github.com/foxseedlab/reactzero/external/config"
	"github.com/foxseedlab/reactzero/external/discord"
	repositoryimpl "github.com/foxseedlab/reactzero/external/repository"
	webhookimpl "github.com/foxseedlab/reactzero/external/webhook"
	"github.com/foxseedlab/reactzero/internal/command"
	"github.com/foxseedlab/reactzero/internal/config"
	discordpkg "github.com/foxseedlab/reactzero/internal/discord"
	"github.com/foxseedlab/reactzero/internal/game"
	"github.com/foxseedlab/reactzero/internal/reaction"
	"github.com/foxseedlab/reactzero/internal/settings"
	"github.com/foxseedlab/reactzero/internal/stats"
	"github.com/jonboulle/clockwork"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/samber/do/v2"
)

const (
	discordConnectTimeout = 20 * time.Second
	settingsLoadTimeout   = 10 * time.Second
	metricsShutdownGrace  = 5 * time.Second
)

func main() {
	configloader.LoadDotEnv()

	slog.Info("startup: loading configuration")
	cfg := mustLoadConfig()
	initLogger(cfg)
	slog.Info("startup: configuration loaded", "env", cfg.Env)

	slog.Info("startup: building dependency graph")
	injector := setupDI(cfg)

	stopMetrics := startMetricsServer(cfg.MetricsAddr)

	slog.Info("startup: launching discord bot")
	err := runBot(cfg, injector)
	stopMetrics()
	if err != nil {
		slog.Error("discord bot stopped", "error", err)
		os.Exit(1)
	}
}

func mustLoadConfig() *config.Config {
	cfg, err := configloader.Load()
	if err != nil {
		slog.Error("config validation failed", "error", err)
		os.Exit(1)
	}
	return cfg
}

func initLogger(cfg *config.Config) {
	logLevel := slog.LevelInfo
	if cfg.IsDevelopment() {
		logLevel = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: logLevel})))
}

func setupDI(cfg *config.Config) do.Injector {
	injector := do.New()

	do.ProvideValue(injector, cfg)
	do.ProvideValue[clockwork.Clock](injector, clockwork.NewRealClock())
	repositoryimpl.RegisterDI(injector)
	discord.RegisterDI(injector)
	webhookimpl.RegisterDI(injector)
	reaction.RegisterDI(injector)
	settings.RegisterDI(injector)
	stats.RegisterDI(injector)
	game.RegisterDI(injector)
	command.RegisterDI(injector)

	return injector
}

// startMetricsServer serves /metrics when addr is set and returns its shutdown func.
func startMetricsServer(addr string) func() {
	if addr == "" {
		return func() {}
	}
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	go func() {
		slog.Info("startup: serving metrics", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("metrics server failed", "error", err)
		}
	}()
	return func() {
		ctx, cancel := context.WithTimeout(context.Background(), metricsShutdownGrace)
		defer cancel()
		if err := srv.Shutdown(ctx); err != nil {
			slog.Error("metrics server shutdown failed", "error", err)
		}
	}
}

func runBot(cfg *config.Config, injector do.Injector) error {
	dc, err := do.Invoke[discordpkg.Client](injector)
	if err != nil {
		return fmt.Errorf("resolve discord client: %w", err)
	}
	tunables, err := do.Invoke[*settings.Service](injector)
	if err != nil {
		return fmt.Errorf("resolve settings service: %w", err)
	}
	orchestrator, err := do.Invoke[*game.Orchestrator](injector)
	if err != nil {
		return fmt.Errorf("resolve game orchestrator: %w", err)
	}
	router, err := do.Invoke[*command.Router](injector)
	if err != nil {
		return fmt.Errorf("resolve command router: %w", err)
	}

	settingsCtx, cancelSettings := context.WithTimeout(context.Background(), settingsLoadTimeout)
	if err := tunables.Reload(settingsCtx); err != nil {
		slog.Warn("failed to load settings; using defaults", "error", err)
	}
	cancelSettings()

	ctx, cancel := context.WithTimeout(context.Background(), discordConnectTimeout)
	defer cancel()

	slog.Info("startup: connecting to discord gateway")
	if err := dc.Connect(ctx); err != nil {
		return fmt.Errorf("connect discord: %w", err)
	}
	slog.Info("startup: discord connected")
	defer func() {
		if err := dc.Close(); err != nil {
			slog.Error("discord close failed", "error", err)
		}
	}()

	botUserID, err := dc.GetBotUserID()
	if err != nil {
		return fmt.Errorf("resolve bot user id: %w", err)
	}
	orchestrator.SetBotUserID(botUserID)

	if err := dc.UpsertGuildSlashCommands(cfg.DiscordGuildID, command.SlashCommandDefinitions()); err != nil {
		return fmt.Errorf("upsert slash commands for guild %s: %w", cfg.DiscordGuildID, err)
	}

	dc.RegisterReactionAddHandler(orchestrator.HandleReaction)
	dc.RegisterComponentHandler(orchestrator.HandleComponent)
	dc.RegisterSlashCommandHandler(router.HandleSlashCommand)
	slog.Info("discord handlers registered", "guild_id", cfg.DiscordGuildID, "commands", command.CommandNames())

	done := make(chan struct{})
	go func() {
		slog.Info("startup: entering discord run loop")
		if err := dc.Run(); err != nil {
			slog.Error("discord run failed", "error", err)
		}
		close(done)
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	select {
	case <-sigCh:
		slog.Info("shutting down")
	case <-done:
	}
	return nil
}
