package auth

import "golang.org/x/crypto/bcrypt"

// bcryptCost matches the work factor used for setup tokens and OTP codes.
const bcryptCost = 10

// MinPasswordLength is enforced before any write on every password-set path.
const MinPasswordLength = 8

func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

func CheckPassword(password, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}
