package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/MyelinBots/guildbot-go/config"
	"github.com/MyelinBots/guildbot-go/internal/bot"
	"github.com/MyelinBots/guildbot-go/internal/extension"
	"github.com/MyelinBots/guildbot-go/internal/extensions/core"
	"github.com/MyelinBots/guildbot-go/internal/extensions/events"
	"github.com/MyelinBots/guildbot-go/internal/gateway"
	"github.com/MyelinBots/guildbot-go/internal/gateway/discord"
	"github.com/MyelinBots/guildbot-go/internal/gateway/irc"
	"github.com/MyelinBots/guildbot-go/internal/healthcheck"
	"github.com/MyelinBots/guildbot-go/internal/logging"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

type rootOptions struct {
	envFile    string
	extensions []string
}

func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return NewRootCommand().ExecuteContext(ctx)
}

func NewRootCommand() *cobra.Command {
	opts := &rootOptions{}
	root := &cobra.Command{
		Use:           "guildbot",
		Short:         "Chat bot with a database backed extension host",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBot(cmd, opts)
		},
	}
	root.PersistentFlags().StringVar(&opts.envFile, "env-file", ".env", "dotenv file read before the environment")
	root.Flags().StringSliceVar(&opts.extensions, "extension", bot.InitialExtensions, "extensions loaded on the first ready event")

	root.AddCommand(
		newRunCommand(opts),
		newMigrateCommand(opts),
		newDBCommand(opts),
	)
	return root
}

func newRunCommand(opts *rootOptions) *cobra.Command {
	run := &cobra.Command{
		Use:   "run",
		Short: "Connect to the chat gateway and serve commands",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBot(cmd, opts)
		},
	}
	run.Flags().StringSliceVar(&opts.extensions, "extension", bot.InitialExtensions, "extensions loaded on the first ready event")
	return run
}

// load reads the settings and builds the process logger.
func load(cmd *cobra.Command, opts *rootOptions) (config.Config, zerolog.Logger, error) {
	cfg, err := config.Load(opts.envFile)
	if err != nil {
		return config.Config{}, zerolog.Nop(), err
	}
	logger, err := logging.New(cfg.AppConfig.LogLevel, cfg.AppConfig.IsProduction(), cmd.OutOrStdout())
	if err != nil {
		return config.Config{}, zerolog.Nop(), err
	}
	return cfg, logger, nil
}

func runBot(cmd *cobra.Command, opts *rootOptions) error {
	ctx := cmd.Context()
	cfg, logger, err := load(cmd, opts)
	if err != nil {
		return err
	}

	if cfg.DBConfig.AutoMigrate {
		if err := migrateUp(cfg, logger); err != nil {
			return err
		}
	}

	gw, err := newGateway(cfg, logger)
	if err != nil {
		return err
	}

	registry := extension.NewRegistry(events.New(), core.New())
	client, err := bot.New(cfg, logger, gw, registry, bot.WithInitialExtensions(opts.extensions...))
	if err != nil {
		return err
	}

	healthcheck.StartHealthcheck(ctx, cfg.AppConfig, client.State().Engine(), logger)
	return client.Run(ctx)
}

func newGateway(cfg config.Config, logger zerolog.Logger) (gateway.Gateway, error) {
	reconnect := cfg.AppConfig.Reconnect
	switch cfg.AppConfig.Gateway {
	case discord.Name:
		return discord.New(cfg.DiscordConfig, reconnect, logger)
	case irc.Name:
		return irc.New(cfg.IRCConfig, reconnect, logger), nil
	default:
		return nil, fmt.Errorf("unknown gateway %q", cfg.AppConfig.Gateway)
	}
}
