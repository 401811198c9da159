// Package core provides the built-in chat commands. It is loaded under the
// extension name "commands".
package core

import (
	"context"
	"fmt"
	"runtime"
	"sort"
	"strings"
	"time"

	"github.com/MyelinBots/guildbot-go/internal/db/repositories/guild"
	"github.com/MyelinBots/guildbot-go/internal/extension"
	"github.com/MyelinBots/guildbot-go/internal/services/commands"
	"github.com/MyelinBots/guildbot-go/internal/services/context_manager"
)

const Name = "commands"

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
	cfg := host.Config()
	loc, err := cfg.AppConfig.Location()
	if err != nil {
		return fmt.Errorf("loading time zone: %w", err)
	}
	started := e.now()
	repo := guild.NewGuildRepository(host.Sessions())

	cmds := []commands.Command{
		{
			Name:        "ping",
			Description: "check that the bot is alive",
			Handler: func(ctx context.Context, req commands.Request) error {
				return req.Reply(ctx, "Pong!")
			},
		},
		{
			Name:        "help",
			Description: "list the available commands",
			Handler: func(ctx context.Context, req commands.Request) error {
				return req.Reply(ctx, helpText(cfg.AppConfig.CommandPrefix, host.Commands(), context_manager.IsOwner(ctx)))
			},
		},
		{
			Name:        "time",
			Description: "show the current time in the bot's time zone",
			Handler: func(ctx context.Context, req commands.Request) error {
				now := e.now().In(loc)
				return req.Reply(ctx, fmt.Sprintf("It is %s (%s).", now.Format("2006-01-02 15:04:05"), loc.String()))
			},
		},
		{
			Name:        "about",
			Description: "show version and runtime information",
			Handler: func(ctx context.Context, req commands.Request) error {
				return req.Reply(ctx, fmt.Sprintf("%s %s on %s | %s %s/%s | up %s",
					cfg.AppConfig.APPName,
					cfg.AppConfig.Version,
					host.Gateway(),
					runtime.Version(),
					runtime.GOOS,
					runtime.GOARCH,
					e.now().Sub(started).Truncate(time.Second),
				))
			},
		},
		{
			Name:        "guilds",
			Description: "count the guilds the bot is in",
			Handler: func(ctx context.Context, req commands.Request) error {
				n, err := repo.CountActive(ctx, host.Gateway())
				if err != nil {
					_ = req.Reply(ctx, "Could not read the guild list right now.")
					return err
				}
				return req.Reply(ctx, fmt.Sprintf("I am in %d guild(s).", n))
			},
		},
		{
			Name:        "extensions",
			Description: "list loaded extensions",
			OwnerOnly:   true,
			Handler: func(ctx context.Context, req commands.Request) error {
				names := host.Extensions()
				sort.Strings(names)
				if len(names) == 0 {
					return req.Reply(ctx, "No extensions loaded.")
				}
				return req.Reply(ctx, "Loaded extensions: "+strings.Join(names, ", "))
			},
		},
		{
			Name:        "shutdown",
			Description: "stop the bot",
			OwnerOnly:   true,
			Handler: func(ctx context.Context, req commands.Request) error {
				err := req.Reply(ctx, "Shutting down.")
				host.Shutdown()
				return err
			},
		},
	}

	for _, cmd := range cmds {
		if err := host.AddCommand(cmd); err != nil {
			return err
		}
	}
	return nil
}

func helpText(prefix string, cmds []commands.Command, owner bool) string {
	var b strings.Builder
	b.WriteString("Commands:")
	for _, cmd := range cmds {
		if cmd.OwnerOnly && !owner {
			continue
		}
		fmt.Fprintf(&b, "\n%s%s - %s", prefix, cmd.Name, cmd.Description)
	}
	return b.String()
}
