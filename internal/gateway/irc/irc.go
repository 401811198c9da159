package irc

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"net"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/MyelinBots/guildbot-go/config"
	"github.com/MyelinBots/guildbot-go/internal/gateway"
	irc "github.com/fluffle/goirc/client"
	"github.com/fluffle/goirc/state"
	"github.com/rs/zerolog"
)

const Name = "irc"

var ErrDisconnected = errors.New("irc: disconnected")

const maxReconnects = 5

// Conn is the part of *irc.Conn the gateway drives.
type Conn interface {
	HandleFunc(name string, fn irc.HandlerFunc) irc.Remover
	Connect() error
	Connected() bool
	Join(channel string, key ...string)
	Privmsg(t, msg string)
	Raw(rawline string)
	Quit(msg ...string)
	Me() *state.Nick
}

type Gateway struct {
	cfg       config.IRCConfig
	reconnect bool
	logger    zerolog.Logger
	conn      Conn

	reconnectDelay time.Duration

	mu         sync.Mutex
	identified bool
	removers   []irc.Remover
	closing    atomic.Bool
}

func New(cfg config.IRCConfig, reconnect bool, logger zerolog.Logger) *Gateway {
	ircConfig := irc.NewConfig(cfg.Nick)
	ircConfig.SSL = cfg.SSL
	ircConfig.SSLConfig = &tls.Config{ServerName: cfg.Host}
	ircConfig.Server = net.JoinHostPort(cfg.Host, strconv.Itoa(cfg.Port))

	return NewWithConn(irc.Client(ircConfig), cfg, reconnect, logger)
}

func NewWithConn(conn Conn, cfg config.IRCConfig, reconnect bool, logger zerolog.Logger) *Gateway {
	return &Gateway{
		cfg:            cfg,
		reconnect:      reconnect,
		logger:         logger.With().Str("gateway", Name).Logger(),
		conn:           conn,
		reconnectDelay: 5 * time.Second,
	}
}

func (g *Gateway) Name() string {
	return Name
}

func (g *Gateway) Open(ctx context.Context, sink gateway.Sink) error {
	joinAll := irc.HandlerFunc(func(conn *irc.Conn, line *irc.Line) { g.joinChannels() })

	g.mu.Lock()
	g.removers = append(g.removers,
		g.conn.HandleFunc(irc.CONNECTED, func(conn *irc.Conn, line *irc.Line) { g.onConnected(ctx, sink) }),
		// some networks only accept JOIN after the MOTD (376) or its absence (422)
		g.conn.HandleFunc("376", joinAll),
		g.conn.HandleFunc("422", joinAll),
		g.conn.HandleFunc(irc.JOIN, func(conn *irc.Conn, line *irc.Line) { g.onJoin(ctx, sink, line) }),
		g.conn.HandleFunc(irc.PART, func(conn *irc.Conn, line *irc.Line) { g.onPart(ctx, sink, line) }),
		g.conn.HandleFunc(irc.KICK, func(conn *irc.Conn, line *irc.Line) { g.onKick(ctx, sink, line) }),
		g.conn.HandleFunc(irc.INVITE, func(conn *irc.Conn, line *irc.Line) { g.onInvite(line) }),
		g.conn.HandleFunc(irc.PRIVMSG, func(conn *irc.Conn, line *irc.Line) { g.onPrivmsg(ctx, sink, line) }),
		g.conn.HandleFunc(irc.DISCONNECTED, func(conn *irc.Conn, line *irc.Line) { g.onDisconnected(ctx, sink) }),
	)
	g.mu.Unlock()

	if err := g.conn.Connect(); err != nil {
		g.removeHandlers()
		return fmt.Errorf("connecting to %s: %w", g.cfg.Host, err)
	}
	return nil
}

// Send writes one PRIVMSG per line; IRC messages cannot carry newlines.
func (g *Gateway) Send(_ context.Context, channelID, content string) error {
	if !g.conn.Connected() {
		return ErrDisconnected
	}
	for _, line := range strings.Split(content, "\n") {
		if line = strings.TrimRight(line, "\r"); line != "" {
			g.conn.Privmsg(channelID, line)
		}
	}
	return nil
}

func (g *Gateway) Close() error {
	if !g.closing.CompareAndSwap(false, true) {
		return nil
	}
	if g.conn.Connected() {
		g.conn.Quit("shutting down")
	}
	g.removeHandlers()
	return nil
}

func (g *Gateway) removeHandlers() {
	g.mu.Lock()
	defer g.mu.Unlock()
	for _, r := range g.removers {
		if r != nil {
			r.Remove()
		}
	}
	g.removers = nil
}

func (g *Gateway) me() string {
	if n := g.conn.Me(); n != nil {
		return n.Nick
	}
	return g.cfg.Nick
}

func (g *Gateway) joinChannels() {
	for _, channel := range g.cfg.Channels {
		g.logger.Debug().Str("channel", channel).Msg("joining channel")
		g.conn.Join(channel)
	}
}

func (g *Gateway) onConnected(ctx context.Context, sink gateway.Sink) {
	g.logger.Info().Str("host", g.cfg.Host).Msg("connected")
	g.joinChannels()
	me := g.me()
	sink.Ready(ctx, gateway.Ready{
		Self:    gateway.User{ID: me, Name: me},
		Guilds:  len(g.cfg.Channels),
		Library: "goirc",
	})
}

func (g *Gateway) onJoin(ctx context.Context, sink gateway.Sink, line *irc.Line) {
	if line == nil || len(line.Args) < 1 || !strings.EqualFold(line.Nick, g.me()) {
		return
	}
	channel := line.Args[0]
	g.logger.Info().Str("channel", channel).Msg("joined")
	g.identify()
	sink.GuildAvailable(ctx, gateway.Guild{ID: channel, Name: channel})
}

func (g *Gateway) onPart(ctx context.Context, sink gateway.Sink, line *irc.Line) {
	if line == nil || len(line.Args) < 1 || !strings.EqualFold(line.Nick, g.me()) {
		return
	}
	sink.GuildRemoved(ctx, gateway.Guild{ID: line.Args[0], Name: line.Args[0]})
}

func (g *Gateway) onKick(ctx context.Context, sink gateway.Sink, line *irc.Line) {
	if line == nil || len(line.Args) < 2 || !strings.EqualFold(line.Args[1], g.me()) {
		return
	}
	g.logger.Warn().Str("channel", line.Args[0]).Str("by", line.Nick).Msg("kicked")
	sink.GuildRemoved(ctx, gateway.Guild{ID: line.Args[0], Name: line.Args[0]})
}

func (g *Gateway) onInvite(line *irc.Line) {
	if line == nil || len(line.Args) < 2 {
		return
	}
	g.logger.Info().Str("channel", line.Args[1]).Str("by", line.Nick).Msg("invited")
	g.conn.Join(line.Args[1])
}

func (g *Gateway) onPrivmsg(ctx context.Context, sink gateway.Sink, line *irc.Line) {
	if line == nil || len(line.Args) < 2 || strings.EqualFold(line.Nick, g.me()) {
		return
	}
	msg := gateway.Message{
		ChannelID: line.Target(),
		Author:    gateway.User{ID: line.Nick, Name: line.Nick},
		Content:   line.Text(),
		Time:      line.Time,
	}
	if line.Public() {
		msg.GuildID = line.Args[0]
	}
	sink.Message(ctx, msg)
}

func (g *Gateway) onDisconnected(ctx context.Context, sink gateway.Sink) {
	g.mu.Lock()
	g.identified = false
	g.mu.Unlock()

	if g.closing.Load() {
		return
	}
	if !g.reconnect {
		sink.Closed(ErrDisconnected)
		return
	}
	go g.reconnectLoop(ctx, sink)
}

func (g *Gateway) reconnectLoop(ctx context.Context, sink gateway.Sink) {
	var err error
	for attempt := 1; attempt <= maxReconnects; attempt++ {
		select {
		case <-ctx.Done():
			return
		case <-time.After(time.Duration(attempt) * g.reconnectDelay):
		}
		if g.closing.Load() {
			return
		}
		g.logger.Info().Int("attempt", attempt).Msg("reconnecting")
		if err = g.conn.Connect(); err == nil {
			return
		}
		g.logger.Warn().Err(err).Int("attempt", attempt).Msg("reconnect failed")
	}
	sink.Closed(fmt.Errorf("%w: %v", ErrDisconnected, err))
}

// identify sends the NickServ command once per connection.
func (g *Gateway) identify() {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.identified || g.cfg.NickservPassword == "" {
		return
	}
	g.conn.Raw(fmt.Sprintf(g.cfg.NickservCommand, g.cfg.NickservPassword))
	g.identified = true
}
