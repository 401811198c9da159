package core

import (
	"context"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"github.com/MyelinBots/guildbot-go/config"
	"github.com/MyelinBots/guildbot-go/internal/db"
	"github.com/MyelinBots/guildbot-go/internal/db/repositories/guild"
	"github.com/MyelinBots/guildbot-go/internal/extension/extensiontest"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setup(t *testing.T) (*extensiontest.Host, *db.DB, *Extension) {
	t.Helper()
	dbCfg := config.DBConfig{Scheme: "sqlite", Base: filepath.Join(t.TempDir(), "core.db"), Echo: false}

	m, err := db.NewMigrator(dbCfg, zerolog.Nop())
	require.NoError(t, err)
	require.NoError(t, m.Up())
	require.NoError(t, m.Close())

	engine, err := db.Open(dbCfg, zerolog.Nop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = engine.Close() })

	cfg := config.Config{AppConfig: config.AppConfig{
		APPName:       "guildbot",
		Version:       "1.2.3",
		OwnerID:       "owner",
		CommandPrefix: "/",
		TimeZone:      "Asia/Tokyo",
		Gateway:       "discord",
	}}
	host := extensiontest.NewHost(cfg, engine.SessionFactory())
	host.Loaded = []string{"events", "commands"}

	ext := New()
	now := time.Date(2026, 10, 17, 0, 0, 0, 0, time.UTC)
	ext.now = func() time.Time { return now }
	require.NoError(t, ext.Setup(context.Background(), host))
	return host, engine, ext
}

func run(t *testing.T, host *extensiontest.Host, author, content string) string {
	t.Helper()
	handled, err := host.Run(context.Background(), author, content)
	require.NoError(t, err)
	require.True(t, handled, content)
	return host.LastSent()
}

func TestPing(t *testing.T) {
	host, _, ext := setup(t)
	assert.Equal(t, "commands", ext.Name())
	assert.Equal(t, "test-channel: Pong!", run(t, host, "u1", "/ping"))
}

func TestTimeUsesConfiguredZone(t *testing.T) {
	host, _, _ := setup(t)
	assert.Equal(t, "test-channel: It is 2026-10-17 09:00:00 (Asia/Tokyo).", run(t, host, "u1", "/time"))
}

func TestAbout(t *testing.T) {
	host, _, ext := setup(t)
	start := ext.now()
	ext.now = func() time.Time { return start.Add(90 * time.Second) }

	out := run(t, host, "u1", "/about")
	assert.Contains(t, out, "guildbot 1.2.3 on discord")
	assert.Contains(t, out, runtime.Version())
	assert.Contains(t, out, "up 1m30s")
}

func TestHelpHidesOwnerCommands(t *testing.T) {
	host, _, _ := setup(t)

	out := run(t, host, "u1", "/help")
	assert.Contains(t, out, "/ping - check that the bot is alive")
	assert.NotContains(t, out, "/shutdown")

	out = run(t, host, "owner", "/help")
	assert.Contains(t, out, "/shutdown - stop the bot")
	assert.Contains(t, out, "/extensions")
}

func TestGuilds(t *testing.T) {
	host, engine, _ := setup(t)
	repo := guild.NewGuildRepository(engine.SessionFactory())
	_, err := repo.Upsert(context.Background(), "discord", "1", "a", time.Now())
	require.NoError(t, err)
	_, err = repo.Upsert(context.Background(), "discord", "2", "b", time.Now())
	require.NoError(t, err)

	assert.Equal(t, "test-channel: I am in 2 guild(s).", run(t, host, "u1", "/guilds"))
}

func TestGuildsWithClosedEngine(t *testing.T) {
	host, engine, _ := setup(t)
	require.NoError(t, engine.Close())

	handled, err := host.Run(context.Background(), "u1", "/guilds")
	assert.True(t, handled)
	assert.ErrorIs(t, err, db.ErrClosed)
	assert.Contains(t, host.LastSent(), "Could not read")
}

func TestExtensionsOwnerOnly(t *testing.T) {
	host, _, _ := setup(t)

	assert.Contains(t, run(t, host, "u1", "/extensions"), "Only the bot owner")
	assert.Equal(t, "test-channel: Loaded extensions: commands, events", run(t, host, "owner", "/extensions"))
}

func TestShutdown(t *testing.T) {
	host, _, _ := setup(t)

	run(t, host, "u1", "/shutdown")
	assert.Equal(t, 0, host.ShutdownCalls())

	assert.Equal(t, "test-channel: Shutting down.", run(t, host, "owner", "/shutdown"))
	assert.Equal(t, 1, host.ShutdownCalls())
}

func TestSetupTwiceFailsOnDuplicates(t *testing.T) {
	host, _, ext := setup(t)
	assert.Error(t, ext.Setup(context.Background(), host))
}
