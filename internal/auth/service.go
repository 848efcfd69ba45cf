package auth

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/stagnes/parish-hub/internal/database/models"
	"github.com/stagnes/parish-hub/internal/mailer"
)

var (
	ErrUserNotFound       = errors.New("user not found")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInactiveUser       = errors.New("user is inactive")
)

type Service struct {
	db          *gorm.DB
	jwt         *JWTService
	mailer      mailer.Mailer
	otpValidity time.Duration
}

func NewService(db *gorm.DB, jwt *JWTService, m mailer.Mailer, otpValidity time.Duration) *Service {
	return &Service{db: db, jwt: jwt, mailer: m, otpValidity: otpValidity}
}

type LoginInput struct {
	Email    string
	Password string
}

type AuthResponse struct {
	Token              string       `json:"token"`
	User               *models.User `json:"user"`
	NeedsPasswordSetup bool         `json:"needs_password_setup,omitempty"`
}

func (s *Service) Login(ctx context.Context, input LoginInput) (*AuthResponse, error) {
	var user models.User
	if err := s.db.WithContext(ctx).
		Preload("Profile").
		Where("email = ?", input.Email).
		First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	if !user.IsActive {
		return nil, ErrInactiveUser
	}

	// A user who never completed setup has no hash to compare against.
	if !user.HasPassword() || !CheckPassword(input.Password, *user.PasswordHash) {
		return nil, ErrInvalidCredentials
	}

	token, err := s.jwt.GenerateToken(user.ID, user.Email, user.Role)
	if err != nil {
		return nil, err
	}

	return &AuthResponse{
		Token: token,
		User:  &user,
	}, nil
}

func (s *Service) GetUserByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	var user models.User
	if err := s.db.WithContext(ctx).
		Preload("Profile").
		First(&user, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return &user, nil
}
