package db

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/MyelinBots/guildbot-go/config"
	"github.com/rs/zerolog"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

var ErrClosed = errors.New("database engine is closed")

// SessionFactory hands out context bound sessions on the engine.
type SessionFactory func(ctx context.Context) (*gorm.DB, error)

// DB is the engine handle: a pooled gorm connection that is closed at most once.
type DB struct {
	DB     *gorm.DB
	driver string

	once   sync.Once
	closed atomic.Bool
}

func Open(cfg config.DBConfig, logger zerolog.Logger) (*DB, error) {
	driver, err := cfg.Driver()
	if err != nil {
		return nil, err
	}
	dsn, err := cfg.DSN()
	if err != nil {
		return nil, err
	}

	var dialector gorm.Dialector
	switch driver {
	case "postgres":
		dialector = postgres.Open(dsn)
	case "sqlite":
		dialector = sqlite.Open(dsn)
	}

	gdb, err := gorm.Open(dialector, &gorm.Config{
		Logger: NewGormLogger(logger, cfg.Echo),
	})
	if err != nil {
		return nil, fmt.Errorf("opening %s database: %w", driver, err)
	}

	if driver == "sqlite" {
		// one writer; also keeps ":memory:" databases on a single connection
		sqlDB, err := gdb.DB()
		if err != nil {
			return nil, err
		}
		sqlDB.SetMaxOpenConns(1)
	}

	return &DB{DB: gdb, driver: driver}, nil
}

func (d *DB) Driver() string {
	return d.driver
}

// Session returns a new session bound to ctx.
func (d *DB) Session(ctx context.Context) (*gorm.DB, error) {
	if d == nil || d.closed.Load() {
		return nil, ErrClosed
	}
	return d.DB.WithContext(ctx).Session(&gorm.Session{}), nil
}

func (d *DB) SessionFactory() SessionFactory {
	return d.Session
}

func (d *DB) Ping(ctx context.Context) error {
	if d == nil || d.closed.Load() {
		return ErrClosed
	}
	sqlDB, err := d.DB.DB()
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	return sqlDB.PingContext(ctx)
}

// Close disposes the connection pool. Only the first call does any work.
func (d *DB) Close() error {
	var err error
	d.once.Do(func() {
		d.closed.Store(true)
		sqlDB, dbErr := d.DB.DB()
		if dbErr != nil {
			err = dbErr
			return
		}
		err = sqlDB.Close()
	})
	return err
}

func (d *DB) Closed() bool {
	return d.closed.Load()
}
