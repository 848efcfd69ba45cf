package dto

import "github.com/stagnes/parish-hub/internal/api/validation"

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (r LoginRequest) Validate() map[string]string {
	errors := make(map[string]string)

	if r.Email == "" {
		errors["email"] = "Email is required"
	}
	if r.Password == "" {
		errors["password"] = "Password is required"
	}

	return errors
}

type OTPRequest struct {
	Email string `json:"email"`
}

func (r OTPRequest) Validate() map[string]string {
	errors := make(map[string]string)

	if r.Email == "" {
		errors["email"] = "Email is required"
	}

	return errors
}

type VerifyOTPRequest struct {
	Email string `json:"email"`
	OTP   string `json:"otp"`
}

func (r VerifyOTPRequest) Validate() map[string]string {
	errors := make(map[string]string)

	if r.Email == "" {
		errors["email"] = "Email is required"
	}
	if r.OTP == "" {
		errors["otp"] = "OTP is required"
	} else if !validation.IsValidOTP(r.OTP) {
		errors["otp"] = "OTP must be a 6-digit code"
	}

	return errors
}

type SetPasswordRequest struct {
	Token    string `json:"token"`
	Password string `json:"password"`
}

func (r SetPasswordRequest) Validate() map[string]string {
	errors := make(map[string]string)

	if r.Token == "" {
		errors["token"] = "Token is required"
	}
	if r.Password == "" {
		errors["password"] = "Password is required"
	} else if ok, msg := validation.IsValidPassword(r.Password); !ok {
		errors["password"] = msg
	}

	return errors
}

type AuthResponse struct {
	Token              string  `json:"token"`
	NeedsPasswordSetup bool    `json:"needs_password_setup,omitempty"`
	User               UserDTO `json:"user"`
}

type UserDTO struct {
	ID     string `json:"id"`
	Email  string `json:"email"`
	Name   string `json:"name,omitempty"`
	Role   string `json:"role"`
	Status string `json:"status,omitempty"`
}
