package state

import (
	"context"
	"sync"

	"github.com/MyelinBots/guildbot-go/internal/db"
	"github.com/rs/zerolog"
	"gorm.io/gorm"
)

// State holds the engine handle and its session factory for the lifetime of
// the bot.
type State struct {
	mu       sync.RWMutex
	engine   *db.DB
	sessions db.SessionFactory
}

func New() *State {
	return &State{}
}

func (s *State) Set(engine *db.DB) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.engine = engine
	s.sessions = engine.SessionFactory()
}

func (s *State) Engine() *db.DB {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.engine
}

// Sessions returns the session factory. Before Set it always fails with
// db.ErrClosed.
func (s *State) Sessions() db.SessionFactory {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.sessions == nil {
		return func(context.Context) (*gorm.DB, error) { return nil, db.ErrClosed }
	}
	return s.sessions
}

// Shutdown disposes the engine. Errors are logged, never returned.
func (s *State) Shutdown(logger zerolog.Logger) {
	engine := s.Engine()
	if engine == nil {
		return
	}

	logger.Info().Msg("closing database connection")
	if err := engine.Close(); err != nil {
		logger.Error().Err(err).Str("task", "shutdown").Msg("failed to close database connection")
		return
	}
	logger.Info().Msg("database connection closed")
}
