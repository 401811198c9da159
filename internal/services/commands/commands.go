package commands

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/MyelinBots/guildbot-go/internal/gateway"
	"github.com/MyelinBots/guildbot-go/internal/services/context_manager"
)

var ErrDuplicateCommand = errors.New("command already registered")

// Replier sends a message to a channel on the active gateway.
type Replier func(ctx context.Context, channelID, content string) error

type Request struct {
	Message gateway.Message
	Name    string
	Args    []string

	reply Replier
}

// Reply answers in the channel the command came from.
func (r Request) Reply(ctx context.Context, content string) error {
	return r.reply(ctx, r.Message.ChannelID, content)
}

type Handler func(ctx context.Context, req Request) error

type Command struct {
	Name        string
	Description string
	OwnerOnly   bool
	Handler     Handler
}

type CommandController interface {
	HandleCommand(ctx context.Context, msg gateway.Message) (bool, error)
	AddCommand(cmd Command) error
	Commands() []Command
	Prefix() string
}

type CommandControllerImpl struct {
	prefix  string
	ownerID string
	reply   Replier

	mu       sync.RWMutex
	commands map[string]Command
}

func NewCommandController(prefix, ownerID string, reply Replier) CommandController {
	return &CommandControllerImpl{
		prefix:   prefix,
		ownerID:  ownerID,
		reply:    reply,
		commands: make(map[string]Command),
	}
}

// HandleCommand parses a message and dispatches to the matching handler. It
// reports whether the message was a known command.
func (c *CommandControllerImpl) HandleCommand(ctx context.Context, msg gateway.Message) (bool, error) {
	content := strings.TrimSpace(msg.Content)
	if !strings.HasPrefix(content, c.prefix) {
		return false, nil
	}

	fields := strings.Fields(content[len(c.prefix):])
	if len(fields) == 0 {
		return false, nil
	}
	name := strings.ToLower(fields[0])

	c.mu.RLock()
	cmd, exists := c.commands[name]
	c.mu.RUnlock()
	if !exists {
		return false, nil
	}

	owner := c.ownerID != "" && strings.EqualFold(msg.Author.ID, c.ownerID)
	ctx = context_manager.SetNickContext(ctx, msg.Author.Name)
	ctx = context_manager.SetOwnerContext(ctx, owner)

	req := Request{Message: msg, Name: name, Args: fields[1:], reply: c.reply}
	if cmd.OwnerOnly && !owner {
		return true, req.Reply(ctx, "Only the bot owner can use this command.")
	}

	if err := cmd.Handler(ctx, req); err != nil {
		return true, fmt.Errorf("command %s: %w", name, err)
	}
	return true, nil
}

func (c *CommandControllerImpl) AddCommand(cmd Command) error {
	name := strings.ToLower(cmd.Name)
	if name == "" || cmd.Handler == nil {
		return fmt.Errorf("command needs a name and a handler")
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if _, exists := c.commands[name]; exists {
		return fmt.Errorf("%w: %s", ErrDuplicateCommand, name)
	}
	cmd.Name = name
	c.commands[name] = cmd
	return nil
}

// Commands lists the registered commands by name.
func (c *CommandControllerImpl) Commands() []Command {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]Command, 0, len(c.commands))
	for _, cmd := range c.commands {
		out = append(out, cmd)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

func (c *CommandControllerImpl) Prefix() string {
	return c.prefix
}
