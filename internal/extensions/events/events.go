// Package events logs gateway lifecycle events and keeps the guilds table in
// step with the guilds the bot is present in.
package events

import (
	"context"
	"time"

	"github.com/MyelinBots/guildbot-go/internal/db/repositories/guild"
	"github.com/MyelinBots/guildbot-go/internal/extension"
	"github.com/MyelinBots/guildbot-go/internal/gateway"
)

const Name = "events"

type Extension struct {
	now func() time.Time
}

func New() *Extension {
	return &Extension{now: time.Now}
}

func (e *Extension) Name() string {
	return Name
}

func (e *Extension) Setup(_ context.Context, host extension.Host) error {
	logger := host.Logger().With().Str("extension", Name).Logger()
	repo := guild.NewGuildRepository(host.Sessions())
	gw := host.Gateway()

	host.AddListener(extension.Listener{
		OnReady: func(ctx context.Context, r gateway.Ready) {
			logger.Info().
				Str("user", r.Self.Name).
				Str("user_id", r.Self.ID).
				Int("guilds", r.Guilds).
				Msg("gateway ready")
		},
		OnGuildAvailable: func(ctx context.Context, g gateway.Guild) {
			if _, err := repo.Upsert(ctx, gw, g.ID, g.Name, e.now().UTC()); err != nil {
				logger.Error().Err(err).Str("guild_id", g.ID).Msg("failed to record guild")
				return
			}
			logger.Info().Str("guild_id", g.ID).Str("guild", g.Name).Msg("guild available")
		},
		OnGuildRemoved: func(ctx context.Context, g gateway.Guild) {
			if err := repo.MarkLeft(ctx, gw, g.ID, e.now().UTC()); err != nil {
				logger.Error().Err(err).Str("guild_id", g.ID).Msg("failed to record guild removal")
				return
			}
			logger.Info().Str("guild_id", g.ID).Str("guild", g.Name).Msg("guild removed")
		},
	})
	return nil
}
