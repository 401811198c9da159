package bot

import (
	"context"
	"runtime"
	"sync"

	"github.com/MyelinBots/guildbot-go/config"
	"github.com/MyelinBots/guildbot-go/internal/db"
	"github.com/MyelinBots/guildbot-go/internal/extension"
	"github.com/MyelinBots/guildbot-go/internal/gateway"
	"github.com/MyelinBots/guildbot-go/internal/logging"
	"github.com/MyelinBots/guildbot-go/internal/services/commands"
	"github.com/MyelinBots/guildbot-go/internal/services/context_manager"
	"github.com/MyelinBots/guildbot-go/internal/state"
	"github.com/rs/zerolog"
)

// InitialExtensions are loaded, in order, the first time the gateway is ready.
var InitialExtensions = []string{"events", "commands"}

type Client struct {
	cfg        config.Config
	logger     zerolog.Logger
	gateway    gateway.Gateway
	registry   *extension.Registry
	state      *state.State
	controller commands.CommandController

	initialExtensions []string

	setupOnce sync.Once
	closeOnce sync.Once

	mu        sync.RWMutex
	listeners []extension.Listener

	doneOnce  sync.Once
	done      chan struct{}
	closedErr error
}

type Option func(*Client)

func WithInitialExtensions(names ...string) Option {
	return func(c *Client) { c.initialExtensions = names }
}

// WithEngine uses an already opened engine instead of opening one from the
// database settings.
func WithEngine(engine *db.DB) Option {
	return func(c *Client) { c.state.Set(engine) }
}

// New builds the client and runs its startup: the database engine is opened
// and framework logging is routed through logger.
func New(cfg config.Config, logger zerolog.Logger, gw gateway.Gateway, registry *extension.Registry, opts ...Option) (*Client, error) {
	c := &Client{
		cfg:               cfg,
		logger:            logger.With().Str("component", "bot_client").Logger(),
		gateway:           gw,
		registry:          registry,
		state:             state.New(),
		initialExtensions: InitialExtensions,
		done:              make(chan struct{}),
	}
	c.controller = commands.NewCommandController(cfg.AppConfig.CommandPrefix, cfg.AppConfig.OwnerID, c.Send)

	for _, opt := range opts {
		opt(c)
	}

	if err := c.setupDB(); err != nil {
		return nil, err
	}
	logging.Intercept(logger)
	return c, nil
}

func (c *Client) setupDB() error {
	if c.state.Engine() != nil {
		return nil
	}
	engine, err := db.Open(c.cfg.DBConfig, c.logger)
	if err != nil {
		return err
	}
	c.state.Set(engine)
	return nil
}

// Run connects to the gateway and blocks until ctx is done, a shutdown is
// requested or the gateway closes for good. The client is closed on return.
func (c *Client) Run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	defer c.Close()

	c.logger.Info().Str("gateway", c.gateway.Name()).Msg("connecting")
	if err := c.gateway.Open(ctx, c); err != nil {
		return err
	}

	select {
	case <-ctx.Done():
		c.logger.Info().Msg("context done, shutting down")
		return nil
	case <-c.done:
		return c.closedErr
	}
}

// Close disconnects from the gateway and disposes the database engine. Only
// the first call does anything; failures are logged.
func (c *Client) Close() error {
	c.closeOnce.Do(func() {
		if err := c.gateway.Close(); err != nil {
			c.logger.Error().Err(err).Str("task", "shutdown").Msg("failed to close gateway")
		}
		c.state.Shutdown(c.logger)
	})
	return nil
}

func (c *Client) State() *state.State {
	return c.state
}

func (c *Client) stop(err error) {
	c.doneOnce.Do(func() {
		c.closedErr = err
		close(c.done)
	})
}

// setupHook runs once, on the first ready event.
func (c *Client) setupHook(ctx context.Context, r gateway.Ready) {
	c.logger.Info().Msgf("Logged in as %s.", r.Self.Name)
	c.logger.Info().Msgf("Gateway library: %s", r.Library)
	c.logger.Info().Msgf("Go version: %s", runtime.Version())
	c.logger.Info().Msgf("Logger filter level: %s", c.cfg.AppConfig.LogLevel)
	c.logger.Info().Msgf("Running on: %s/%s", runtime.GOOS, runtime.GOARCH)

	c.loadExtensions(ctx)
}

func (c *Client) loadExtensions(ctx context.Context) {
	for _, name := range c.initialExtensions {
		if err := c.registry.LoadExtension(ctx, c, name); err != nil {
			c.logger.Error().Err(err).Str("task", "load_extensions").Str("extension", name).Msg("failed to load extension")
			continue
		}
		c.logger.Info().Str("extension", name).Msg("loaded extension")
	}
}

func (c *Client) snapshot() []extension.Listener {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return append([]extension.Listener(nil), c.listeners...)
}

// gateway.Sink

func (c *Client) Ready(ctx context.Context, r gateway.Ready) {
	c.setupOnce.Do(func() { c.setupHook(ctx, r) })
	for _, l := range c.snapshot() {
		if l.OnReady != nil {
			l.OnReady(ctx, r)
		}
	}
}

func (c *Client) Message(ctx context.Context, m gateway.Message) {
	ctx, requestID := context_manager.WithRequestID(ctx)

	handled, err := c.controller.HandleCommand(ctx, m)
	if err != nil {
		c.logger.Error().Err(err).
			Str("request_id", requestID).
			Str("channel_id", m.ChannelID).
			Str("author", m.Author.Name).
			Msg("command failed")
	} else if handled {
		c.logger.Debug().Str("request_id", requestID).Str("author", m.Author.Name).Msg("command handled")
	}

	for _, l := range c.snapshot() {
		if l.OnMessage != nil {
			l.OnMessage(ctx, m)
		}
	}
}

func (c *Client) GuildAvailable(ctx context.Context, g gateway.Guild) {
	for _, l := range c.snapshot() {
		if l.OnGuildAvailable != nil {
			l.OnGuildAvailable(ctx, g)
		}
	}
}

func (c *Client) GuildRemoved(ctx context.Context, g gateway.Guild) {
	for _, l := range c.snapshot() {
		if l.OnGuildRemoved != nil {
			l.OnGuildRemoved(ctx, g)
		}
	}
}

func (c *Client) Closed(err error) {
	c.logger.Warn().Err(err).Msg("gateway closed")
	c.stop(err)
}

// extension.Host

func (c *Client) Logger() zerolog.Logger {
	return c.logger
}

func (c *Client) Config() config.Config {
	return c.cfg
}

func (c *Client) Gateway() string {
	return c.gateway.Name()
}

func (c *Client) Sessions() db.SessionFactory {
	return c.state.Sessions()
}

func (c *Client) AddCommand(cmd commands.Command) error {
	return c.controller.AddCommand(cmd)
}

func (c *Client) Commands() []commands.Command {
	return c.controller.Commands()
}

func (c *Client) AddListener(l extension.Listener) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.listeners = append(c.listeners, l)
}

func (c *Client) Send(ctx context.Context, channelID, content string) error {
	return c.gateway.Send(ctx, channelID, content)
}

func (c *Client) Extensions() []string {
	return c.registry.Loaded()
}

func (c *Client) Shutdown() {
	c.logger.Info().Msg("shutdown requested")
	c.stop(nil)
}
