package models

import "github.com/google/uuid"

// Guild is a parish group (choir, youth guild, mothers' union, ...).
type Guild struct {
	Base
	Name        string `gorm:"uniqueIndex;not null" json:"name"`
	Description string `json:"description,omitempty"`

	// Relationships
	Members   []GuildMembership `gorm:"foreignKey:GuildID" json:"-"`
	Documents []Document        `gorm:"foreignKey:GuildID" json:"-"`
}

func (Guild) TableName() string {
	return "guilds"
}

type GuildMembership struct {
	UserID  uuid.UUID `gorm:"type:uuid;primaryKey" json:"user_id"`
	GuildID uuid.UUID `gorm:"type:uuid;primaryKey" json:"guild_id"`

	User  *User  `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
	Guild *Guild `gorm:"foreignKey:GuildID;constraint:OnDelete:CASCADE" json:"-"`
}

func (GuildMembership) TableName() string {
	return "guild_memberships"
}
