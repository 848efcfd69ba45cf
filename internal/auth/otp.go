package auth

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"time"

	"gorm.io/gorm"

	"github.com/stagnes/parish-hub/internal/database/models"
)

// ErrOTPInvalid covers wrong, expired, and already-used codes alike so the
// response never reveals which applied.
var ErrOTPInvalid = errors.New("invalid or expired OTP")

// generateOTP returns a 6-digit numeric passcode.
func generateOTP() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(900000))
	if err != nil {
		return "", fmt.Errorf("generating otp: %w", err)
	}
	return fmt.Sprintf("%06d", n.Int64()+100000), nil
}

// RequestOTP generates a fresh passcode for an existing user, replaces any
// previous code for that email, and delivers it. A delivery failure rolls
// the stored code back.
func (s *Service) RequestOTP(ctx context.Context, email string) error {
	var user models.User
	if err := s.db.WithContext(ctx).Where("email = ?", email).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrUserNotFound
		}
		return err
	}

	code, err := generateOTP()
	if err != nil {
		return err
	}
	codeHash, err := HashPassword(code)
	if err != nil {
		return err
	}

	expiresAt := time.Now().Add(s.otpValidity)

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("email = ?", email).Delete(&models.OTPCode{}).Error; err != nil {
			return err
		}

		otp := models.OTPCode{
			Email:     email,
			CodeHash:  codeHash,
			ExpiresAt: expiresAt,
		}
		if err := tx.Create(&otp).Error; err != nil {
			return err
		}

		body := fmt.Sprintf(`<p>Your OTP is: <b>%s</b>.</p>
<p>This code will expire in %d hours.</p>
<p>If you did not request this OTP, please ignore this email.</p>`,
			code, int(s.otpValidity.Hours()))

		return s.mailer.Send(ctx, email, "Your Login OTP", body)
	})
}

// VerifyOTP checks the submitted passcode and, on success, consumes it and
// returns a session. Users without a password yet get a short-lived session
// restricted to password setup.
func (s *Service) VerifyOTP(ctx context.Context, email, code string) (*AuthResponse, error) {
	var otp models.OTPCode
	if err := s.db.WithContext(ctx).Where("email = ?", email).First(&otp).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrOTPInvalid
		}
		return nil, err
	}

	if otp.Expired(time.Now()) || !CheckPassword(code, otp.CodeHash) {
		return nil, ErrOTPInvalid
	}

	var user models.User
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("email = ?", email).Delete(&models.OTPCode{}).Error; err != nil {
			return err
		}
		return tx.Preload("Profile").Where("email = ?", email).First(&user).Error
	})
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrOTPInvalid
		}
		return nil, err
	}

	if !user.HasPassword() {
		token, err := s.jwt.GenerateSetupSession(user.ID, user.Email)
		if err != nil {
			return nil, err
		}
		return &AuthResponse{
			Token:              token,
			User:               &user,
			NeedsPasswordSetup: true,
		}, nil
	}

	token, err := s.jwt.GenerateToken(user.ID, user.Email, user.Role)
	if err != nil {
		return nil, err
	}
	return &AuthResponse{Token: token, User: &user}, nil
}
