package stats

import (
	"github.com/foxseedlab/reactzero/internal/config"
	"github.com/foxseedlab/reactzero/internal/discord"
	"github.com/foxseedlab/reactzero/internal/repository"
	"github.com/samber/do/v2"
)

func RegisterDI(injector do.Injector) {
	do.Provide(injector, func(i do.Injector) (*Service, error) {
		cfg := do.MustInvoke[*config.Config](i)
		repo := do.MustInvoke[repository.StatsRepository](i)
		dc := do.MustInvoke[discord.Client](i)
		loc, err := cfg.Location()
		if err != nil {
			return nil, err
		}
		return NewService(repo, dc, loc), nil
	})
}
