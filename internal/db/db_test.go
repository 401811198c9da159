package db

import (
	"bytes"
	"context"
	"path/filepath"
	"testing"

	"github.com/MyelinBots/guildbot-go/config"
	"github.com/MyelinBots/guildbot-go/internal/services/context_manager"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func tempConfig(t *testing.T) config.DBConfig {
	t.Helper()
	return config.DBConfig{
		Scheme: "sqlite",
		Base:   filepath.Join(t.TempDir(), "bot.db"),
		Echo:   false,
	}
}

func TestOpenAndClose(t *testing.T) {
	ctx := context.Background()
	engine, err := Open(tempConfig(t), zerolog.Nop())
	require.NoError(t, err)
	require.NotNil(t, engine)
	assert.Equal(t, "sqlite", engine.Driver())

	require.NoError(t, engine.Ping(ctx))

	session, err := engine.SessionFactory()(ctx)
	require.NoError(t, err)
	var one int
	require.NoError(t, session.Raw("SELECT 1").Scan(&one).Error)
	assert.Equal(t, 1, one)

	require.NoError(t, engine.Close())
	assert.True(t, engine.Closed())

	_, err = engine.Session(ctx)
	assert.ErrorIs(t, err, ErrClosed)
	assert.ErrorIs(t, engine.Ping(ctx), ErrClosed)

	// second close is a no-op
	assert.NoError(t, engine.Close())
}

func TestOpenUnknownScheme(t *testing.T) {
	_, err := Open(config.DBConfig{Scheme: "oracle", Base: "x"}, zerolog.Nop())
	assert.Error(t, err)
}

func TestNilEngineIsClosed(t *testing.T) {
	var engine *DB
	_, err := engine.Session(context.Background())
	assert.ErrorIs(t, err, ErrClosed)
}

func TestMigratorUpDown(t *testing.T) {
	cfg := tempConfig(t)

	m, err := NewMigrator(cfg, zerolog.Nop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = m.Close() })

	v, dirty, err := m.Version()
	require.NoError(t, err)
	assert.Equal(t, uint(0), v)
	assert.False(t, dirty)

	require.NoError(t, m.Up())
	// already applied
	require.NoError(t, m.Up())

	v, _, err = m.Version()
	require.NoError(t, err)
	assert.Equal(t, uint(1), v)

	engine, err := Open(cfg, zerolog.Nop())
	require.NoError(t, err)
	defer engine.Close()
	assert.True(t, engine.DB.Migrator().HasTable("guilds"))

	require.NoError(t, m.Down())
	assert.False(t, engine.DB.Migrator().HasTable("guilds"))
}

func TestFailedQueryLogsRequestID(t *testing.T) {
	var buf bytes.Buffer
	engine, err := Open(tempConfig(t), zerolog.New(&buf).Level(zerolog.WarnLevel))
	require.NoError(t, err)
	defer engine.Close()

	ctx, id := context_manager.WithRequestID(context.Background())
	session, err := engine.Session(ctx)
	require.NoError(t, err)
	require.Error(t, session.Exec("SELECT * FROM missing_table").Error)

	assert.Contains(t, buf.String(), `"request_id":"`+id+`"`)
	assert.Contains(t, buf.String(), "missing_table")
}
