// Package extension loads named units of command and event handling into a
// running bot.
package extension

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/MyelinBots/guildbot-go/config"
	"github.com/MyelinBots/guildbot-go/internal/db"
	"github.com/MyelinBots/guildbot-go/internal/gateway"
	"github.com/MyelinBots/guildbot-go/internal/services/commands"
	"github.com/rs/zerolog"
)

var (
	ErrUnknownExtension = errors.New("unknown extension")
	ErrAlreadyLoaded    = errors.New("extension already loaded")
)

// Listener receives gateway events after the bot handled them. Nil fields are
// skipped.
type Listener struct {
	OnReady          func(ctx context.Context, r gateway.Ready)
	OnMessage        func(ctx context.Context, m gateway.Message)
	OnGuildAvailable func(ctx context.Context, g gateway.Guild)
	OnGuildRemoved   func(ctx context.Context, g gateway.Guild)
}

// Host is what the bot exposes to extensions.
type Host interface {
	Logger() zerolog.Logger
	Config() config.Config
	Gateway() string
	Sessions() db.SessionFactory
	AddCommand(cmd commands.Command) error
	Commands() []commands.Command
	AddListener(l Listener)
	Send(ctx context.Context, channelID, content string) error
	Extensions() []string
	Shutdown()
}

type Extension interface {
	Name() string
	Setup(ctx context.Context, host Host) error
}

// Func adapts a setup function into an Extension.
type Func struct {
	ExtensionName string
	SetupFunc     func(ctx context.Context, host Host) error
}

func (f Func) Name() string { return f.ExtensionName }

func (f Func) Setup(ctx context.Context, host Host) error { return f.SetupFunc(ctx, host) }

type Registry struct {
	mu         sync.Mutex
	extensions map[string]Extension
	loaded     map[string]bool
}

func NewRegistry(extensions ...Extension) *Registry {
	r := &Registry{
		extensions: make(map[string]Extension),
		loaded:     make(map[string]bool),
	}
	for _, ext := range extensions {
		r.Register(ext)
	}
	return r
}

// Register makes an extension loadable by name. A later registration with the
// same name replaces the earlier one.
func (r *Registry) Register(ext Extension) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.extensions[ext.Name()] = ext
}

// LoadExtension runs the setup of one extension. A panicking setup is
// reported as an error.
func (r *Registry) LoadExtension(ctx context.Context, host Host, name string) (err error) {
	r.mu.Lock()
	ext, ok := r.extensions[name]
	loaded := r.loaded[name]
	if ok && !loaded {
		r.loaded[name] = true
	}
	r.mu.Unlock()

	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownExtension, name)
	}
	if loaded {
		return fmt.Errorf("%w: %s", ErrAlreadyLoaded, name)
	}

	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("extension %s panicked: %v", name, p)
		}
		if err != nil {
			r.mu.Lock()
			delete(r.loaded, name)
			r.mu.Unlock()
		}
	}()
	return ext.Setup(ctx, host)
}

// Loaded lists the extensions whose setup succeeded, in no particular order.
func (r *Registry) Loaded() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	names := make([]string, 0, len(r.loaded))
	for name := range r.loaded {
		names = append(names, name)
	}
	return names
}
