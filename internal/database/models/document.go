package models

import "github.com/google/uuid"

// Document is a file shared with a guild (or parish-wide when GuildID is nil).
type Document struct {
	Base
	Title   string     `gorm:"not null" json:"title"`
	FileURL string     `gorm:"not null" json:"file_url"`
	GuildID *uuid.UUID `gorm:"type:uuid;index" json:"guild_id,omitempty"`

	Guild *Guild `gorm:"foreignKey:GuildID" json:"guild,omitempty"`
}

func (Document) TableName() string {
	return "documents"
}
