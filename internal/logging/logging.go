// Package logging builds the process logger and routes the logs of the chat
// frameworks and the ORM into it.
package logging

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/bwmarrin/discordgo"
	irclog "github.com/fluffle/goirc/logging"
	"github.com/rs/zerolog"
)

// ParseLevel maps a settings log level (NOTSET, DEBUG, INFO, WARNING, ERROR,
// FATAL) to a zerolog level.
func ParseLevel(level string) (zerolog.Level, error) {
	switch strings.ToUpper(level) {
	case "NOTSET":
		return zerolog.TraceLevel, nil
	case "DEBUG":
		return zerolog.DebugLevel, nil
	case "INFO":
		return zerolog.InfoLevel, nil
	case "WARNING", "WARN":
		return zerolog.WarnLevel, nil
	case "ERROR":
		return zerolog.ErrorLevel, nil
	case "FATAL":
		return zerolog.FatalLevel, nil
	default:
		return zerolog.NoLevel, fmt.Errorf("unknown log level %q", level)
	}
}

// New returns a logger writing to w (stdout when nil). Production loggers
// emit JSON, development loggers a human readable console format.
func New(level string, production bool, w io.Writer) (zerolog.Logger, error) {
	lvl, err := ParseLevel(level)
	if err != nil {
		return zerolog.Nop(), err
	}
	if w == nil {
		w = os.Stdout
	}
	if !production {
		w = zerolog.ConsoleWriter{Out: w, TimeFormat: time.DateTime, NoColor: w != os.Stdout}
	}
	return zerolog.New(w).Level(lvl).With().Timestamp().Logger(), nil
}

// Intercept routes the discordgo and goirc package loggers into logger.
func Intercept(logger zerolog.Logger) {
	discordLogger := logger.With().Str("source", "discordgo").Logger()
	discordgo.Logger = func(msgL, caller int, format string, a ...interface{}) {
		discordLogger.WithLevel(discordLevel(msgL)).Msgf(format, a...)
	}

	irclog.SetLogger(ircLogger{logger: logger.With().Str("source", "goirc").Logger()})
}

func discordLevel(msgL int) zerolog.Level {
	switch msgL {
	case discordgo.LogError:
		return zerolog.ErrorLevel
	case discordgo.LogWarning:
		return zerolog.WarnLevel
	case discordgo.LogInformational:
		return zerolog.InfoLevel
	default:
		return zerolog.DebugLevel
	}
}

type ircLogger struct {
	logger zerolog.Logger
}

func (l ircLogger) Debug(f string, a ...interface{}) { l.logger.Debug().Msgf(f, a...) }
func (l ircLogger) Info(f string, a ...interface{})  { l.logger.Info().Msgf(f, a...) }
func (l ircLogger) Warn(f string, a ...interface{})  { l.logger.Warn().Msgf(f, a...) }
func (l ircLogger) Error(f string, a ...interface{}) { l.logger.Error().Msgf(f, a...) }
