// Package gateway is the boundary between the bot and a chat network. A
// Gateway owns the connection; inbound events are pushed into a Sink.
package gateway

//go:generate mockgen -source=gateway.go -destination=mocks/mock_gateway.go -package=mocks

import (
	"context"
	"time"
)

type User struct {
	ID   string
	Name string
	Bot  bool
}

// Guild is a place the bot is present in: a Discord server or an IRC channel.
type Guild struct {
	ID   string
	Name string
}

type Message struct {
	ID        string
	GuildID   string
	ChannelID string
	Author    User
	Content   string
	Time      time.Time
}

type Ready struct {
	Self    User
	Guilds  int
	Library string
}

type Sink interface {
	Ready(ctx context.Context, r Ready)
	Message(ctx context.Context, m Message)
	GuildAvailable(ctx context.Context, g Guild)
	GuildRemoved(ctx context.Context, g Guild)
	// Closed is called when the connection is gone for good.
	Closed(err error)
}

type Gateway interface {
	Name() string
	Open(ctx context.Context, sink Sink) error
	Send(ctx context.Context, channelID, content string) error
	Close() error
}
