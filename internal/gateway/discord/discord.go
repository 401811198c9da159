package discord

//go:generate mockgen -source=discord.go -destination=mock_session_test.go -package=discord Session

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/MyelinBots/guildbot-go/config"
	"github.com/MyelinBots/guildbot-go/internal/gateway"
	"github.com/bwmarrin/discordgo"
	"github.com/rs/zerolog"
)

const Name = "discord"

var ErrDisconnected = errors.New("discord: disconnected")

// Session is the part of *discordgo.Session the gateway drives.
type Session interface {
	AddHandler(handler interface{}) func()
	Open() error
	Close() error
	ChannelMessageSend(channelID string, content string, options ...discordgo.RequestOption) (*discordgo.Message, error)
}

type Gateway struct {
	session   Session
	reconnect bool
	logger    zerolog.Logger

	mu       sync.Mutex
	selfID   string
	removers []func()
	closing  atomic.Bool
}

// Intents are guilds and guild messages; message content is privileged and
// must be enabled for the application before it can be requested.
func Intents(messageContent bool) discordgo.Intent {
	intents := discordgo.IntentsGuilds | discordgo.IntentsGuildMessages
	if messageContent {
		intents |= discordgo.IntentsMessageContent
	}
	return intents
}

func New(cfg config.DiscordConfig, reconnect bool, logger zerolog.Logger) (*Gateway, error) {
	s, err := discordgo.New("Bot " + cfg.Token)
	if err != nil {
		return nil, fmt.Errorf("creating discord session: %w", err)
	}
	s.Identify.Intents = Intents(cfg.MessageContent)
	s.ShouldReconnectOnError = reconnect
	s.LogLevel = discordgo.LogWarning
	return NewWithSession(s, reconnect, logger), nil
}

func NewWithSession(s Session, reconnect bool, logger zerolog.Logger) *Gateway {
	return &Gateway{
		session:   s,
		reconnect: reconnect,
		logger:    logger.With().Str("gateway", Name).Logger(),
	}
}

func (g *Gateway) Name() string {
	return Name
}

func (g *Gateway) Open(ctx context.Context, sink gateway.Sink) error {
	g.mu.Lock()
	g.removers = append(g.removers,
		g.session.AddHandler(func(_ *discordgo.Session, r *discordgo.Ready) { g.onReady(ctx, sink, r) }),
		g.session.AddHandler(func(_ *discordgo.Session, m *discordgo.MessageCreate) { g.onMessage(ctx, sink, m) }),
		g.session.AddHandler(func(_ *discordgo.Session, e *discordgo.GuildCreate) { g.onGuildCreate(ctx, sink, e) }),
		g.session.AddHandler(func(_ *discordgo.Session, e *discordgo.GuildDelete) { g.onGuildDelete(ctx, sink, e) }),
		g.session.AddHandler(func(_ *discordgo.Session, _ *discordgo.Disconnect) { g.onDisconnect(sink) }),
	)
	g.mu.Unlock()

	if err := g.session.Open(); err != nil {
		g.removeHandlers()
		return fmt.Errorf("opening discord gateway: %w", err)
	}
	return nil
}

func (g *Gateway) Send(_ context.Context, channelID, content string) error {
	_, err := g.session.ChannelMessageSend(channelID, content)
	return err
}

func (g *Gateway) Close() error {
	if !g.closing.CompareAndSwap(false, true) {
		return nil
	}
	g.removeHandlers()
	return g.session.Close()
}

func (g *Gateway) removeHandlers() {
	g.mu.Lock()
	defer g.mu.Unlock()
	for _, remove := range g.removers {
		remove()
	}
	g.removers = nil
}

func (g *Gateway) onReady(ctx context.Context, sink gateway.Sink, r *discordgo.Ready) {
	if r == nil || r.User == nil {
		return
	}
	g.mu.Lock()
	g.selfID = r.User.ID
	g.mu.Unlock()

	sink.Ready(ctx, gateway.Ready{
		Self:    toUser(r.User),
		Guilds:  len(r.Guilds),
		Library: "discordgo " + discordgo.VERSION,
	})
}

func (g *Gateway) onMessage(ctx context.Context, sink gateway.Sink, m *discordgo.MessageCreate) {
	if m == nil || m.Message == nil || m.Author == nil {
		return
	}
	g.mu.Lock()
	self := g.selfID
	g.mu.Unlock()
	if m.Author.ID == self || m.Author.Bot {
		return
	}

	sink.Message(ctx, gateway.Message{
		ID:        m.ID,
		GuildID:   m.GuildID,
		ChannelID: m.ChannelID,
		Author:    toUser(m.Author),
		Content:   m.Content,
		Time:      m.Timestamp,
	})
}

func (g *Gateway) onGuildCreate(ctx context.Context, sink gateway.Sink, e *discordgo.GuildCreate) {
	if e == nil || e.Guild == nil || e.Unavailable {
		return
	}
	sink.GuildAvailable(ctx, gateway.Guild{ID: e.ID, Name: e.Name})
}

// onGuildDelete ignores outages; only a real removal is reported.
func (g *Gateway) onGuildDelete(ctx context.Context, sink gateway.Sink, e *discordgo.GuildDelete) {
	if e == nil || e.Guild == nil || e.Unavailable {
		return
	}
	name := e.Name
	if name == "" && e.BeforeDelete != nil {
		name = e.BeforeDelete.Name
	}
	sink.GuildRemoved(ctx, gateway.Guild{ID: e.ID, Name: name})
}

func (g *Gateway) onDisconnect(sink gateway.Sink) {
	if g.closing.Load() {
		return
	}
	if g.reconnect {
		g.logger.Warn().Msg("disconnected, waiting for discordgo to reconnect")
		return
	}
	sink.Closed(ErrDisconnected)
}

func toUser(u *discordgo.User) gateway.User {
	return gateway.User{ID: u.ID, Name: u.Username, Bot: u.Bot}
}
