package discord

import (
	"github.com/foxseedlab/reactzero/internal/config"
	discordpkg "github.com/foxseedlab/reactzero/internal/discord"
	"github.com/jonboulle/clockwork"
	"github.com/samber/do/v2"
)

func RegisterDI(injector do.Injector) {
	do.Provide(injector, func(i do.Injector) (discordpkg.Client, error) {
		c := do.MustInvoke[*config.Config](i)
		clock := do.MustInvoke[clockwork.Clock](i)
		return NewClient(c.DiscordToken, clock), nil
	})
}
