// Package provisioning implements the token-based account setup workflow:
// issuing one-time setup tokens, redeeming them for an initial password,
// and the admin-facing create/resend operations built on top.
package provisioning

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/stagnes/parish-hub/internal/auth"
	"github.com/stagnes/parish-hub/internal/database/models"
	"github.com/stagnes/parish-hub/internal/mailer"
)

var (
	ErrUserNotFound = errors.New("user not found")
	ErrEmailTaken   = errors.New("email already exists")

	// ErrTokenInvalid covers wrong, expired, and already-consumed tokens
	// alike so the response never reveals which applied.
	ErrTokenInvalid = errors.New("invalid or expired token")

	ErrPasswordTooShort = fmt.Errorf("password must be at least %d characters", auth.MinPasswordLength)
)

// secretBytes gives 256 bits of entropy, hex-encoded to 64 characters.
const secretBytes = 32

type Service struct {
	db       *gorm.DB
	mailer   mailer.Mailer
	baseURL  string
	validity time.Duration
}

func NewService(db *gorm.DB, m mailer.Mailer, baseURL string, validity time.Duration) *Service {
	return &Service{db: db, mailer: m, baseURL: baseURL, validity: validity}
}

func generateSecret() (string, error) {
	buf := make([]byte, secretBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generating token secret: %w", err)
	}
	return hex.EncodeToString(buf), nil
}

// Issue creates a fresh setup token for user inside the caller's
// transaction and emails the setup link. Any existing tokens for the user
// are deleted first, keeping at most one live token per user. An email
// failure propagates and rolls back the enclosing transaction.
func (s *Service) Issue(ctx context.Context, tx *gorm.DB, user *models.User, displayName string) error {
	secret, err := generateSecret()
	if err != nil {
		return err
	}
	tokenHash, err := auth.HashPassword(secret)
	if err != nil {
		return err
	}

	if err := tx.Where("user_id = ?", user.ID).Delete(&models.SetupToken{}).Error; err != nil {
		return err
	}

	token := models.SetupToken{
		UserID:    user.ID,
		TokenHash: tokenHash,
		ExpiresAt: time.Now().Add(s.validity),
	}
	if err := tx.Create(&token).Error; err != nil {
		return err
	}

	if displayName == "" {
		displayName = "User"
	}
	setupLink := fmt.Sprintf("%s/set-password?token=%s", s.baseURL, secret)
	body := fmt.Sprintf(`<p>Hello %s,</p>
<p>An account has been created for you in the St. Agnes Parish Management System.</p>
<p>Please click the link below to set up your password:</p>
<p><a href="%s">%s</a></p>
<p>This link will expire in %d hours. If you did not request this, please ignore this email.</p>`,
		displayName, setupLink, setupLink, int(s.validity.Hours()))

	return s.mailer.Send(ctx, user.Email, "Set Up Your St. Agnes Parish Account", body)
}

// ProfileInput carries the family census fields accepted on user creation
// and profile updates.
type ProfileInput struct {
	Title             string
	FirstName         string
	MiddleName        string
	Surname           string
	Gender            string
	DateOfBirth       *time.Time
	MaritalStatus     string
	Address           string
	Phone             string
	PlaceOfBaptism    string
	BaptismNumber     string
	TypeOfMarriage    string
	PlaceOfMarriage   string
	MarriageNumber    string
	MarriedTo         string
	SectionName       string
	ChurchSupportCard string
	Occupation        string
	Skills            string
	Profession        string
	Comments          string
}

// Apply copies the input onto a profile record owned by userID.
func (in ProfileInput) Apply(p *models.Profile, userID uuid.UUID, email string) {
	p.UserID = userID
	p.EmailAddress = email
	p.Title = in.Title
	p.FirstName = in.FirstName
	p.MiddleName = in.MiddleName
	p.Surname = in.Surname
	p.Gender = in.Gender
	p.DateOfBirth = in.DateOfBirth
	p.MaritalStatus = in.MaritalStatus
	p.Address = in.Address
	p.Phone = in.Phone
	p.PlaceOfBaptism = in.PlaceOfBaptism
	p.BaptismNumber = in.BaptismNumber
	p.TypeOfMarriage = in.TypeOfMarriage
	p.PlaceOfMarriage = in.PlaceOfMarriage
	p.MarriageNumber = in.MarriageNumber
	p.MarriedTo = in.MarriedTo
	p.SectionName = in.SectionName
	p.ChurchSupportCard = in.ChurchSupportCard
	p.Occupation = in.Occupation
	p.Skills = in.Skills
	p.Profession = in.Profession
	p.Comments = in.Comments
}

type CreateUserInput struct {
	Email   string
	Role    string
	Profile ProfileInput
}

// CreateUser provisions a new member: user record with no password, role,
// census profile, setup token, and notification, all in one transaction.
func (s *Service) CreateUser(ctx context.Context, input CreateUserInput) (*models.User, error) {
	role := input.Role
	if role == "" {
		role = models.RoleMember
	}

	var user models.User
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		user = models.User{
			Email:        input.Email,
			PasswordHash: nil, // set via token redemption
			Role:         role,
			IsActive:     true,
		}
		if err := tx.Create(&user).Error; err != nil {
			return err
		}

		var profile models.Profile
		input.Profile.Apply(&profile, user.ID, user.Email)
		if err := tx.Create(&profile).Error; err != nil {
			return err
		}
		user.Profile = &profile

		return s.Issue(ctx, tx, &user, input.Profile.FirstName)
	})
	if err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrEmailTaken
		}
		return nil, err
	}

	return &user, nil
}

// ResendSetup issues a replacement token for an existing user, acting as a
// password reset trigger when a password is already set.
func (s *Service) ResendSetup(ctx context.Context, userID uuid.UUID) error {
	var user models.User
	if err := s.db.WithContext(ctx).Preload("Profile").First(&user, userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrUserNotFound
		}
		return err
	}

	displayName := ""
	if user.Profile != nil {
		displayName = user.Profile.FirstName
	}

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return s.Issue(ctx, tx, &user, displayName)
	})
}

// SetPassword redeems a setup token: it locates the matching live token,
// sets the user's password, and consumes the token atomically.
//
// Because only a salted hash of each secret is stored there is no key to
// look the token up by; every unexpired token is compared with bcrypt's own
// check. Fine while outstanding tokens stay a small, pruned set; a public
// selector column would be the fix if volume ever grows.
func (s *Service) SetPassword(ctx context.Context, plainToken, newPassword string) error {
	if len(newPassword) < auth.MinPasswordLength {
		return ErrPasswordTooShort
	}

	var candidates []models.SetupToken
	if err := s.db.WithContext(ctx).
		Where("expires_at > ?", time.Now()).
		Find(&candidates).Error; err != nil {
		return err
	}

	var matched *models.SetupToken
	for i := range candidates {
		if bcrypt.CompareHashAndPassword([]byte(candidates[i].TokenHash), []byte(plainToken)) == nil {
			matched = &candidates[i]
			break
		}
	}
	if matched == nil {
		return ErrTokenInvalid
	}

	passwordHash, err := auth.HashPassword(newPassword)
	if err != nil {
		return err
	}

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Delete(&models.SetupToken{}, matched.ID)
		if res.Error != nil {
			return res.Error
		}
		// Already consumed by a concurrent redemption.
		if res.RowsAffected == 0 {
			return ErrTokenInvalid
		}

		return tx.Model(&models.User{}).
			Where("id = ?", matched.UserID).
			Update("password_hash", passwordHash).Error
	})
}
