package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/stagnes/parish-hub/internal/api/dto"
	"github.com/stagnes/parish-hub/internal/auth"
	"github.com/stagnes/parish-hub/internal/database/models"
	"github.com/stagnes/parish-hub/internal/provisioning"
)

type AuthHandler struct {
	authService *auth.Service
	prov        *provisioning.Service
}

func NewAuthHandler(authService *auth.Service, prov *provisioning.Service) *AuthHandler {
	return &AuthHandler{authService: authService, prov: prov}
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req dto.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "Invalid request body"})
		return
	}

	if errs := req.Validate(); len(errs) > 0 {
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "Validation failed", Details: errs})
		return
	}

	resp, err := h.authService.Login(r.Context(), auth.LoginInput{
		Email:    req.Email,
		Password: req.Password,
	})

	if err != nil {
		switch {
		case errors.Is(err, auth.ErrInvalidCredentials):
			writeJSON(w, http.StatusUnauthorized, dto.ErrorResponse{Error: "Invalid credentials"})
		case errors.Is(err, auth.ErrInactiveUser):
			writeJSON(w, http.StatusForbidden, dto.ErrorResponse{Error: "Account is inactive"})
		default:
			writeJSON(w, http.StatusInternalServerError, dto.ErrorResponse{Error: "Login failed"})
		}
		return
	}

	setSessionCookie(w, resp.Token)
	writeJSON(w, http.StatusOK, dto.AuthResponse{
		Token: resp.Token,
		User:  userDTO(resp.User),
	})
}

func (h *AuthHandler) RequestOTP(w http.ResponseWriter, r *http.Request) {
	var req dto.OTPRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "Invalid request body"})
		return
	}

	if errs := req.Validate(); len(errs) > 0 {
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "Validation failed", Details: errs})
		return
	}

	if err := h.authService.RequestOTP(r.Context(), req.Email); err != nil {
		switch {
		case errors.Is(err, auth.ErrUserNotFound):
			writeJSON(w, http.StatusNotFound, dto.ErrorResponse{Error: "User not found"})
		default:
			writeJSON(w, http.StatusInternalServerError, dto.ErrorResponse{Error: "Failed to send OTP email"})
		}
		return
	}

	writeJSON(w, http.StatusOK, dto.SuccessResponse{Message: "OTP sent successfully. Check your email."})
}

func (h *AuthHandler) VerifyOTP(w http.ResponseWriter, r *http.Request) {
	var req dto.VerifyOTPRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "Invalid request body"})
		return
	}

	if errs := req.Validate(); len(errs) > 0 {
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "Validation failed", Details: errs})
		return
	}

	resp, err := h.authService.VerifyOTP(r.Context(), req.Email, req.OTP)
	if err != nil {
		switch {
		case errors.Is(err, auth.ErrOTPInvalid):
			writeJSON(w, http.StatusUnauthorized, dto.ErrorResponse{Error: "Invalid or expired OTP"})
		default:
			writeJSON(w, http.StatusInternalServerError, dto.ErrorResponse{Error: "OTP verification failed"})
		}
		return
	}

	if !resp.NeedsPasswordSetup {
		setSessionCookie(w, resp.Token)
	}
	writeJSON(w, http.StatusOK, dto.AuthResponse{
		Token:              resp.Token,
		NeedsPasswordSetup: resp.NeedsPasswordSetup,
		User:               userDTO(resp.User),
	})
}

func (h *AuthHandler) SetPassword(w http.ResponseWriter, r *http.Request) {
	var req dto.SetPasswordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "Invalid request body"})
		return
	}

	if errs := req.Validate(); len(errs) > 0 {
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "Validation failed", Details: errs})
		return
	}

	if err := h.prov.SetPassword(r.Context(), req.Token, req.Password); err != nil {
		switch {
		case errors.Is(err, provisioning.ErrPasswordTooShort):
			writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "Password must be at least 8 characters"})
		case errors.Is(err, provisioning.ErrTokenInvalid):
			writeJSON(w, http.StatusUnauthorized, dto.ErrorResponse{Error: "Invalid or expired token"})
		default:
			writeJSON(w, http.StatusInternalServerError, dto.ErrorResponse{Error: "Failed to set password"})
		}
		return
	}

	writeJSON(w, http.StatusOK, dto.SuccessResponse{Message: "Password set successfully. You can now log in."})
}

func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, &http.Cookie{
		Name:     "token",
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		MaxAge:   -1,
	})

	writeJSON(w, http.StatusOK, dto.SuccessResponse{Message: "Logged out"})
}

func setSessionCookie(w http.ResponseWriter, token string) {
	http.SetCookie(w, &http.Cookie{
		Name:     "token",
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		Secure:   false, // Set to true in production with HTTPS
		SameSite: http.SameSiteLaxMode,
		MaxAge:   86400, // 24 hours
	})
}

func userDTO(user *models.User) dto.UserDTO {
	d := dto.UserDTO{
		ID:    user.ID.String(),
		Email: user.Email,
		Role:  user.Role,
	}
	if user.Profile != nil {
		d.Name = user.Profile.FullName()
	}
	return d
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
