package dto

import (
	"time"

	"github.com/stagnes/parish-hub/internal/api/validation"
)

// ProfileFields is the census payload shared by user creation, admin
// updates, and profile self-service. DateOfBirth is an ISO date string.
type ProfileFields struct {
	Title             string `json:"title,omitempty"`
	FirstName         string `json:"first_name"`
	MiddleName        string `json:"middle_name,omitempty"`
	Surname           string `json:"surname"`
	Gender            string `json:"gender,omitempty"`
	DateOfBirth       string `json:"date_of_birth,omitempty"`
	MaritalStatus     string `json:"marital_status,omitempty"`
	Address           string `json:"address,omitempty"`
	Phone             string `json:"phone,omitempty"`
	PlaceOfBaptism    string `json:"place_of_baptism,omitempty"`
	BaptismNumber     string `json:"baptism_number,omitempty"`
	TypeOfMarriage    string `json:"type_of_marriage,omitempty"`
	PlaceOfMarriage   string `json:"place_of_marriage,omitempty"`
	MarriageNumber    string `json:"marriage_number,omitempty"`
	MarriedTo         string `json:"married_to,omitempty"`
	SectionName       string `json:"section_name,omitempty"`
	ChurchSupportCard string `json:"church_support_card,omitempty"`
	Occupation        string `json:"occupation,omitempty"`
	Skills            string `json:"skills,omitempty"`
	Profession        string `json:"profession,omitempty"`
	Comments          string `json:"comments,omitempty"`
}

func (p ProfileFields) validate(errors map[string]string) {
	if p.FirstName == "" {
		errors["first_name"] = "First name is required"
	}
	if p.Surname == "" {
		errors["surname"] = "Surname is required"
	}
	if p.DateOfBirth != "" {
		if _, err := time.Parse("2006-01-02", p.DateOfBirth); err != nil {
			errors["date_of_birth"] = "Date of birth must be YYYY-MM-DD"
		}
	}
}

// BirthDate returns the parsed date of birth, or nil when unset. Call only
// after Validate has passed.
func (p ProfileFields) BirthDate() *time.Time {
	if p.DateOfBirth == "" {
		return nil
	}
	t, err := time.Parse("2006-01-02", p.DateOfBirth)
	if err != nil {
		return nil
	}
	return &t
}

type CreateUserRequest struct {
	Email string `json:"email"`
	Role  string `json:"role,omitempty"`
	ProfileFields
}

func (r CreateUserRequest) Validate() map[string]string {
	errors := make(map[string]string)

	if r.Email == "" {
		errors["email"] = "Email is required"
	} else if !validation.IsValidEmail(r.Email) {
		errors["email"] = "Invalid email format"
	}
	if r.Role != "" && r.Role != "admin" && r.Role != "member" {
		errors["role"] = "Role must be admin or member"
	}
	r.ProfileFields.validate(errors)

	return errors
}

type UpdateUserRequest struct {
	Email string `json:"email,omitempty"`
	ProfileFields
}

func (r UpdateUserRequest) Validate() map[string]string {
	errors := make(map[string]string)
	if r.Email != "" && !validation.IsValidEmail(r.Email) {
		errors["email"] = "Invalid email format"
	}
	r.ProfileFields.validate(errors)
	return errors
}

type UpdateProfileRequest struct {
	ProfileFields
}

func (r UpdateProfileRequest) Validate() map[string]string {
	errors := make(map[string]string)
	r.ProfileFields.validate(errors)
	return errors
}

// UserListItem is the admin users listing row; Status is derived from
// whether the user has completed password setup.
type UserListItem struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Role      string    `json:"role"`
	Guild     string    `json:"guild,omitempty"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
