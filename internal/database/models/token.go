package models

import (
	"time"

	"github.com/google/uuid"
)

// SetupToken is a one-time credential that lets a user set their initial or
// replacement password. Only a bcrypt hash of the secret is stored; the
// plaintext is delivered by email and never persisted. A user has at most
// one live token: issuing a new one deletes any existing rows first.
type SetupToken struct {
	Base
	UserID    uuid.UUID `gorm:"type:uuid;not null;index" json:"user_id"`
	TokenHash string    `gorm:"not null" json:"-"`
	ExpiresAt time.Time `gorm:"not null;index" json:"expires_at"`

	User *User `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
}

func (SetupToken) TableName() string {
	return "setup_tokens"
}

// Expired reports whether the token's validity window has passed.
func (t *SetupToken) Expired(now time.Time) bool {
	return !t.ExpiresAt.After(now)
}

// OTPCode is a one-time numeric passcode for the email login path. Keyed by
// email so a fresh request replaces the previous code. Stored hashed, like
// setup tokens.
type OTPCode struct {
	Base
	Email     string    `gorm:"uniqueIndex;not null" json:"email"`
	CodeHash  string    `gorm:"not null" json:"-"`
	ExpiresAt time.Time `gorm:"not null;index" json:"expires_at"`
}

func (OTPCode) TableName() string {
	return "otp_codes"
}

func (c *OTPCode) Expired(now time.Time) bool {
	return !c.ExpiresAt.After(now)
}
