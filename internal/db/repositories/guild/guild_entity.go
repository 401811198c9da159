package guild

import "time"

type Guild struct {
	Gateway   string     `gorm:"column:gateway;type:varchar(32);primaryKey" json:"gateway"`
	GuildID   string     `gorm:"column:guild_id;type:varchar(64);primaryKey" json:"guild_id"`
	Name      string     `gorm:"column:name;type:varchar(200);not null;default:''" json:"name"`
	JoinedAt  time.Time  `gorm:"column:joined_at;not null" json:"joined_at"`
	LeftAt    *time.Time `gorm:"column:left_at;index:idx_guilds_left_at" json:"left_at,omitempty"`
	CreatedAt time.Time  `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt time.Time  `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}

func (Guild) TableName() string {
	return "guilds"
}

func (g *Guild) Active() bool {
	return g.LeftAt == nil
}
