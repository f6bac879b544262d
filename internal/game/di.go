package game

import (
	"github.com/foxseedlab/reactzero/internal/config"
	"github.com/foxseedlab/reactzero/internal/discord"
	"github.com/foxseedlab/reactzero/internal/reaction"
	"github.com/foxseedlab/reactzero/internal/repository"
	"github.com/foxseedlab/reactzero/internal/settings"
	"github.com/foxseedlab/reactzero/internal/webhook"
	"github.com/jonboulle/clockwork"
	"github.com/samber/do/v2"
)

func RegisterDI(injector do.Injector) {
	do.Provide(injector, func(i do.Injector) (*Orchestrator, error) {
		cfg := do.MustInvoke[*config.Config](i)
		loc, err := cfg.Location()
		if err != nil {
			return nil, err
		}
		opts := Options{
			LobbyTimeout:      cfg.LobbyTimeout,
			PreCountdownDelay: cfg.PreCountdownDelay,
			CaptureWindow:     cfg.CaptureWindow,
			Location:          loc,
		}
		repo := do.MustInvoke[repository.GameRepository](i)
		dc := do.MustInvoke[discord.Client](i)
		store := do.MustInvoke[*reaction.Store](i)
		tunables := do.MustInvoke[*settings.Service](i)
		wh := do.MustInvoke[webhook.Sender](i)
		clock := do.MustInvoke[clockwork.Clock](i)
		return NewOrchestrator(opts, repo, dc, store, tunables, wh, clock), nil
	})
}
