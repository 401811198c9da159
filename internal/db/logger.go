package db

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/MyelinBots/guildbot-go/internal/services/context_manager"
	"github.com/rs/zerolog"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

const slowThreshold = 200 * time.Millisecond

// GormLogger sends gorm output to zerolog, each gorm level to the matching
// zerolog level. Statements carry the request id of the context they ran on.
type GormLogger struct {
	logger zerolog.Logger
	level  gormlogger.LogLevel
	slow   time.Duration
}

// NewGormLogger logs every statement when echo is on, otherwise only slow
// queries, warnings and errors.
func NewGormLogger(logger zerolog.Logger, echo bool) *GormLogger {
	level := gormlogger.Warn
	if echo {
		level = gormlogger.Info
	}
	return &GormLogger{
		logger: logger.With().Str("source", "gorm").Logger(),
		level:  level,
		slow:   slowThreshold,
	}
}

func (l *GormLogger) LogMode(level gormlogger.LogLevel) gormlogger.Interface {
	clone := *l
	clone.level = level
	return &clone
}

func (l *GormLogger) Info(ctx context.Context, msg string, data ...interface{}) {
	if l.level >= gormlogger.Info {
		l.event(ctx, l.logger.Info()).Msg(fmt.Sprintf(msg, data...))
	}
}

func (l *GormLogger) Warn(ctx context.Context, msg string, data ...interface{}) {
	if l.level >= gormlogger.Warn {
		l.event(ctx, l.logger.Warn()).Msg(fmt.Sprintf(msg, data...))
	}
}

func (l *GormLogger) Error(ctx context.Context, msg string, data ...interface{}) {
	if l.level >= gormlogger.Error {
		l.event(ctx, l.logger.Error()).Msg(fmt.Sprintf(msg, data...))
	}
}

func (l *GormLogger) Trace(ctx context.Context, begin time.Time, fc func() (string, int64), err error) {
	if l.level <= gormlogger.Silent {
		return
	}
	elapsed := time.Since(begin)

	switch {
	case err != nil && l.level >= gormlogger.Error && !errors.Is(err, gorm.ErrRecordNotFound):
		sql, rows := fc()
		l.event(ctx, l.logger.Error()).Err(err).
			Dur("elapsed", elapsed).Int64("rows", rows).Str("sql", sql).
			Msg("query failed")
	case l.slow > 0 && elapsed > l.slow && l.level >= gormlogger.Warn:
		sql, rows := fc()
		l.event(ctx, l.logger.Warn()).
			Dur("elapsed", elapsed).Int64("rows", rows).Str("sql", sql).
			Msgf("slow query over %s", l.slow)
	case l.level >= gormlogger.Info:
		sql, rows := fc()
		l.event(ctx, l.logger.Info()).
			Dur("elapsed", elapsed).Int64("rows", rows).Str("sql", sql).
			Msg("query")
	}
}

func (l *GormLogger) event(ctx context.Context, e *zerolog.Event) *zerolog.Event {
	if id := context_manager.GetRequestID(ctx); id != "" {
		e = e.Str("request_id", id)
	}
	return e
}
