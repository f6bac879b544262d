package command

import (
	"github.com/foxseedlab/reactzero/internal/config"
	"github.com/foxseedlab/reactzero/internal/game"
	"github.com/foxseedlab/reactzero/internal/settings"
	"github.com/foxseedlab/reactzero/internal/stats"
	"github.com/samber/do/v2"
)

func RegisterDI(injector do.Injector) {
	do.Provide(injector, func(i do.Injector) (*Router, error) {
		cfg := do.MustInvoke[*config.Config](i)
		orchestrator := do.MustInvoke[*game.Orchestrator](i)
		statsService := do.MustInvoke[*stats.Service](i)
		settingsService := do.MustInvoke[*settings.Service](i)
		return NewRouter(cfg.DiscordGuildID, orchestrator, statsService, settingsService), nil
	})
}
