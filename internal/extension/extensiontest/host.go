// Package extensiontest provides an in-memory extension.Host for tests.
package extensiontest

import (
	"context"
	"sync"

	"github.com/MyelinBots/guildbot-go/config"
	"github.com/MyelinBots/guildbot-go/internal/db"
	"github.com/MyelinBots/guildbot-go/internal/extension"
	"github.com/MyelinBots/guildbot-go/internal/gateway"
	"github.com/MyelinBots/guildbot-go/internal/services/commands"
	"github.com/rs/zerolog"
)

type Host struct {
	Cfg            config.Config
	GatewayName    string
	SessionFactory db.SessionFactory
	Log            zerolog.Logger
	Controller     commands.CommandController
	Loaded         []string

	mu            sync.Mutex
	listeners     []extension.Listener
	sent          []string
	shutdownCalls int
}

func NewHost(cfg config.Config, sessions db.SessionFactory) *Host {
	h := &Host{
		Cfg:            cfg,
		GatewayName:    cfg.AppConfig.Gateway,
		SessionFactory: sessions,
		Log:            zerolog.Nop(),
	}
	h.Controller = commands.NewCommandController(cfg.AppConfig.CommandPrefix, cfg.AppConfig.OwnerID, h.Send)
	return h
}

func (h *Host) Logger() zerolog.Logger      { return h.Log }
func (h *Host) Config() config.Config       { return h.Cfg }
func (h *Host) Gateway() string             { return h.GatewayName }
func (h *Host) Sessions() db.SessionFactory { return h.SessionFactory }
func (h *Host) Extensions() []string        { return h.Loaded }

func (h *Host) AddCommand(cmd commands.Command) error { return h.Controller.AddCommand(cmd) }
func (h *Host) Commands() []commands.Command         { return h.Controller.Commands() }

func (h *Host) AddListener(l extension.Listener) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.listeners = append(h.listeners, l)
}

func (h *Host) Send(_ context.Context, channelID, content string) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.sent = append(h.sent, channelID+": "+content)
	return nil
}

func (h *Host) Shutdown() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.shutdownCalls++
}

// Sent returns every message sent so far.
func (h *Host) Sent() []string {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]string(nil), h.sent...)
}

func (h *Host) LastSent() string {
	sent := h.Sent()
	if len(sent) == 0 {
		return ""
	}
	return sent[len(sent)-1]
}

func (h *Host) ShutdownCalls() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.shutdownCalls
}

// Run sends a command message from author through the controller.
func (h *Host) Run(ctx context.Context, authorID, content string) (bool, error) {
	return h.Controller.HandleCommand(ctx, gateway.Message{
		ChannelID: "test-channel",
		Author:    gateway.User{ID: authorID, Name: authorID},
		Content:   content,
	})
}

func (h *Host) Ready(ctx context.Context, r gateway.Ready) {
	for _, l := range h.snapshot() {
		if l.OnReady != nil {
			l.OnReady(ctx, r)
		}
	}
}

func (h *Host) GuildAvailable(ctx context.Context, g gateway.Guild) {
	for _, l := range h.snapshot() {
		if l.OnGuildAvailable != nil {
			l.OnGuildAvailable(ctx, g)
		}
	}
}

func (h *Host) GuildRemoved(ctx context.Context, g gateway.Guild) {
	for _, l := range h.snapshot() {
		if l.OnGuildRemoved != nil {
			l.OnGuildRemoved(ctx, g)
		}
	}
}

func (h *Host) snapshot() []extension.Listener {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]extension.Listener(nil), h.listeners...)
}
