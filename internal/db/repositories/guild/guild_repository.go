package guild

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/MyelinBots/guildbot-go/internal/db"
	"gorm.io/gorm"
)

type GuildRepository interface {
	Upsert(ctx context.Context, gateway, guildID, name string, t time.Time) (*Guild, error)
	MarkLeft(ctx context.Context, gateway, guildID string, t time.Time) error
	Get(ctx context.Context, gateway, guildID string) (*Guild, error)
	ListActive(ctx context.Context, gateway string) ([]*Guild, error)
	CountActive(ctx context.Context, gateway string) (int64, error)
}

type GuildRepositoryImpl struct {
	sessions db.SessionFactory
}

func NewGuildRepository(sessions db.SessionFactory) GuildRepository {
	return &GuildRepositoryImpl{sessions: sessions}
}

func norm(s string) string { return strings.ToLower(strings.TrimSpace(s)) }

// Upsert records that the bot is present in a guild. A guild that was left
// before gets a fresh joined_at.
func (r *GuildRepositoryImpl) Upsert(ctx context.Context, gateway, guildID, name string, t time.Time) (*Guild, error) {
	tx, err := r.sessions(ctx)
	if err != nil {
		return nil, err
	}
	gateway, guildID = norm(gateway), norm(guildID)

	var existing Guild
	err = tx.Where("gateway = ? AND guild_id = ?", gateway, guildID).First(&existing).Error
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
		g := &Guild{Gateway: gateway, GuildID: guildID, Name: name, JoinedAt: t}
		if err := tx.Create(g).Error; err != nil {
			return nil, err
		}
		return g, nil
	}

	if !existing.Active() {
		existing.JoinedAt = t
		existing.LeftAt = nil
	}
	if name != "" {
		existing.Name = name
	}
	if err := tx.Save(&existing).Error; err != nil {
		return nil, err
	}
	return &existing, nil
}

func (r *GuildRepositoryImpl) MarkLeft(ctx context.Context, gateway, guildID string, t time.Time) error {
	tx, err := r.sessions(ctx)
	if err != nil {
		return err
	}
	return tx.Model(&Guild{}).
		Where("gateway = ? AND guild_id = ? AND left_at IS NULL", norm(gateway), norm(guildID)).
		Update("left_at", &t).Error
}

// Get returns nil without error when the guild was never seen.
func (r *GuildRepositoryImpl) Get(ctx context.Context, gateway, guildID string) (*Guild, error) {
	tx, err := r.sessions(ctx)
	if err != nil {
		return nil, err
	}
	var g Guild
	err = tx.Where("gateway = ? AND guild_id = ?", norm(gateway), norm(guildID)).First(&g).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &g, nil
}

func (r *GuildRepositoryImpl) ListActive(ctx context.Context, gateway string) ([]*Guild, error) {
	tx, err := r.sessions(ctx)
	if err != nil {
		return nil, err
	}
	var guilds []*Guild
	if err := tx.
		Where("gateway = ? AND left_at IS NULL", norm(gateway)).
		Order("joined_at ASC").
		Find(&guilds).Error; err != nil {
		return nil, err
	}
	return guilds, nil
}

func (r *GuildRepositoryImpl) CountActive(ctx context.Context, gateway string) (int64, error) {
	tx, err := r.sessions(ctx)
	if err != nil {
		return 0, err
	}
	var n int64
	err = tx.Model(&Guild{}).Where("gateway = ? AND left_at IS NULL", norm(gateway)).Count(&n).Error
	return n, err
}
