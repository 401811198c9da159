package discord

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/MyelinBots/guildbot-go/internal/gateway"
	"github.com/MyelinBots/guildbot-go/internal/gateway/mocks"
	"github.com/bwmarrin/discordgo"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

type handlers struct {
	ready       func(*discordgo.Session, *discordgo.Ready)
	message     func(*discordgo.Session, *discordgo.MessageCreate)
	guildCreate func(*discordgo.Session, *discordgo.GuildCreate)
	guildDelete func(*discordgo.Session, *discordgo.GuildDelete)
	disconnect  func(*discordgo.Session, *discordgo.Disconnect)
	removed     int
}

func openGateway(t *testing.T, reconnect bool) (*Gateway, *MockSession, *mocks.MockSink, *handlers) {
	t.Helper()
	ctrl := gomock.NewController(t)
	session := NewMockSession(ctrl)
	sink := mocks.NewMockSink(ctrl)
	h := &handlers{}

	session.EXPECT().AddHandler(gomock.Any()).Times(5).DoAndReturn(func(handler any) func() {
		switch fn := handler.(type) {
		case func(*discordgo.Session, *discordgo.Ready):
			h.ready = fn
		case func(*discordgo.Session, *discordgo.MessageCreate):
			h.message = fn
		case func(*discordgo.Session, *discordgo.GuildCreate):
			h.guildCreate = fn
		case func(*discordgo.Session, *discordgo.GuildDelete):
			h.guildDelete = fn
		case func(*discordgo.Session, *discordgo.Disconnect):
			h.disconnect = fn
		default:
			t.Fatalf("unexpected handler type %T", handler)
		}
		return func() { h.removed++ }
	})
	session.EXPECT().Open().Return(nil)

	g := NewWithSession(session, reconnect, zerolog.Nop())
	require.NoError(t, g.Open(context.Background(), sink))
	return g, session, sink, h
}

func TestIntents(t *testing.T) {
	base := Intents(false)
	assert.NotZero(t, base&discordgo.IntentsGuilds)
	assert.NotZero(t, base&discordgo.IntentsGuildMessages)
	assert.Zero(t, base&discordgo.IntentsMessageContent)

	assert.NotZero(t, Intents(true)&discordgo.IntentsMessageContent)
}

func TestReadyAndMessages(t *testing.T) {
	g, _, sink, h := openGateway(t, true)
	assert.Equal(t, Name, g.Name())

	sink.EXPECT().Ready(gomock.Any(), gomock.Any()).Do(func(_ context.Context, r gateway.Ready) {
		assert.Equal(t, "42", r.Self.ID)
		assert.Equal(t, "guildbot", r.Self.Name)
		assert.Equal(t, 2, r.Guilds)
		assert.Contains(t, r.Library, discordgo.VERSION)
	})
	h.ready(nil, &discordgo.Ready{
		User:   &discordgo.User{ID: "42", Username: "guildbot", Bot: true},
		Guilds: []*discordgo.Guild{{ID: "1"}, {ID: "2"}},
	})

	ts := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	sink.EXPECT().Message(gomock.Any(), gateway.Message{
		ID:        "m1",
		GuildID:   "1",
		ChannelID: "c1",
		Author:    gateway.User{ID: "7", Name: "alice"},
		Content:   "/ping",
		Time:      ts,
	})
	h.message(nil, &discordgo.MessageCreate{Message: &discordgo.Message{
		ID: "m1", GuildID: "1", ChannelID: "c1", Content: "/ping", Timestamp: ts,
		Author: &discordgo.User{ID: "7", Username: "alice"},
	}})

	// own messages and other bots are dropped
	h.message(nil, &discordgo.MessageCreate{Message: &discordgo.Message{
		ID: "m2", ChannelID: "c1", Content: "pong", Author: &discordgo.User{ID: "42", Bot: true},
	}})
	h.message(nil, &discordgo.MessageCreate{Message: &discordgo.Message{
		ID: "m3", ChannelID: "c1", Content: "/ping", Author: &discordgo.User{ID: "99", Bot: true},
	}})
}

func TestGuildEvents(t *testing.T) {
	_, _, sink, h := openGateway(t, true)

	sink.EXPECT().GuildAvailable(gomock.Any(), gateway.Guild{ID: "1", Name: "Cat Cafe"})
	h.guildCreate(nil, &discordgo.GuildCreate{Guild: &discordgo.Guild{ID: "1", Name: "Cat Cafe"}})
	h.guildCreate(nil, &discordgo.GuildCreate{Guild: &discordgo.Guild{ID: "2", Unavailable: true}})

	sink.EXPECT().GuildRemoved(gomock.Any(), gateway.Guild{ID: "1", Name: "Cat Cafe"})
	h.guildDelete(nil, &discordgo.GuildDelete{
		Guild:        &discordgo.Guild{ID: "1"},
		BeforeDelete: &discordgo.Guild{ID: "1", Name: "Cat Cafe"},
	})
	// outage
	h.guildDelete(nil, &discordgo.GuildDelete{Guild: &discordgo.Guild{ID: "3", Unavailable: true}})
}

func TestDisconnectWithoutReconnect(t *testing.T) {
	g, session, sink, h := openGateway(t, false)

	sink.EXPECT().Closed(ErrDisconnected)
	h.disconnect(nil, &discordgo.Disconnect{})

	session.EXPECT().Close().Return(nil)
	require.NoError(t, g.Close())
	assert.Equal(t, 5, h.removed)

	// closing twice does not touch the session again
	require.NoError(t, g.Close())
	h.disconnect(nil, &discordgo.Disconnect{})
}

func TestDisconnectWithReconnectIsQuiet(t *testing.T) {
	_, _, _, h := openGateway(t, true)
	h.disconnect(nil, &discordgo.Disconnect{})
}

func TestSend(t *testing.T) {
	g, session, _, _ := openGateway(t, true)

	session.EXPECT().ChannelMessageSend("c1", "pong").Return(&discordgo.Message{ID: "r1"}, nil)
	require.NoError(t, g.Send(context.Background(), "c1", "pong"))

	boom := errors.New("rate limited")
	session.EXPECT().ChannelMessageSend("c1", "pong").Return(nil, boom)
	assert.ErrorIs(t, g.Send(context.Background(), "c1", "pong"), boom)
}

func TestOpenFailureRemovesHandlers(t *testing.T) {
	ctrl := gomock.NewController(t)
	session := NewMockSession(ctrl)
	removed := 0
	session.EXPECT().AddHandler(gomock.Any()).Times(5).Return(func() { removed++ })
	session.EXPECT().Open().Return(errors.New("invalid token"))

	g := NewWithSession(session, true, zerolog.Nop())
	err := g.Open(context.Background(), mocks.NewMockSink(ctrl))
	require.Error(t, err)
	assert.Equal(t, 5, removed)
}
