package models

import (
	"time"

	"github.com/google/uuid"
)

// Profile holds the family census record kept for each parish member.
type Profile struct {
	Base
	UserID uuid.UUID `gorm:"type:uuid;uniqueIndex;not null" json:"user_id"`

	Title        string     `json:"title,omitempty"`
	FirstName    string     `gorm:"not null" json:"first_name"`
	MiddleName   string     `json:"middle_name,omitempty"`
	Surname      string     `gorm:"not null" json:"surname"`
	Gender       string     `json:"gender,omitempty"`
	DateOfBirth  *time.Time `json:"date_of_birth,omitempty"`
	MaritalStatus string    `json:"marital_status,omitempty"`
	Address      string     `json:"address,omitempty"`
	Phone        string     `json:"phone,omitempty"`
	EmailAddress string     `json:"email_address,omitempty"`

	// Church record fields
	PlaceOfBaptism    string `json:"place_of_baptism,omitempty"`
	BaptismNumber     string `json:"baptism_number,omitempty"`
	TypeOfMarriage    string `json:"type_of_marriage,omitempty"`
	PlaceOfMarriage   string `json:"place_of_marriage,omitempty"`
	MarriageNumber    string `json:"marriage_number,omitempty"`
	MarriedTo         string `json:"married_to,omitempty"`
	SectionName       string `json:"section_name,omitempty"`
	ChurchSupportCard string `json:"church_support_card,omitempty"`

	Occupation string `json:"occupation,omitempty"`
	Skills     string `json:"skills,omitempty"`
	Profession string `json:"profession,omitempty"`
	Comments   string `json:"comments,omitempty"`

	User *User `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
}

func (Profile) TableName() string {
	return "profiles"
}

// FullName is the display name used in listings and emails.
func (p *Profile) FullName() string {
	if p.MiddleName != "" {
		return p.FirstName + " " + p.MiddleName + " " + p.Surname
	}
	return p.FirstName + " " + p.Surname
}
