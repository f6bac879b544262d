package settings

import (
	"github.com/foxseedlab/reactzero/internal/config"
	"github.com/foxseedlab/reactzero/internal/repository"
	"github.com/samber/do/v2"
)

func RegisterDI(injector do.Injector) {
	do.Provide(injector, func(i do.Injector) (*Service, error) {
		cfg := do.MustInvoke[*config.Config](i)
		repo := do.MustInvoke[repository.SettingRepository](i)
		return NewService(repo, cfg.AdminUserIDs()), nil
	})
}
