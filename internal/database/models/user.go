package models

// User roles
const (
	RoleAdmin  = "admin"
	RoleMember = "member"
)

type User struct {
	Base
	Email string `gorm:"uniqueIndex;not null" json:"email"`

	// PasswordHash is nil until the user completes password setup via a
	// setup token or is seeded with a password directly.
	PasswordHash *string `json:"-"`

	Role     string `gorm:"default:'member'" json:"role"` // admin, member
	IsActive bool   `gorm:"default:true" json:"is_active"`

	// Relationships
	Profile *Profile `gorm:"foreignKey:UserID" json:"profile,omitempty"`
}

func (User) TableName() string {
	return "users"
}

// HasPassword reports whether the user has completed password setup.
func (u *User) HasPassword() bool {
	return u.PasswordHash != nil && *u.PasswordHash != ""
}
