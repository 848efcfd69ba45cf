package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"gorm.io/gorm"

	"github.com/stagnes/parish-hub/internal/api/dto"
	"github.com/stagnes/parish-hub/internal/api/middleware"
	"github.com/stagnes/parish-hub/internal/auth"
	"github.com/stagnes/parish-hub/internal/database/models"
)

type ProfileHandler struct {
	db          *gorm.DB
	authService *auth.Service
}

func NewProfileHandler(db *gorm.DB, authService *auth.Service) *ProfileHandler {
	return &ProfileHandler{db: db, authService: authService}
}

// Me returns the authenticated user with profile.
func (h *ProfileHandler) Me(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	user, err := h.authService.GetUserByID(r.Context(), userID)
	if err != nil {
		if errors.Is(err, auth.ErrUserNotFound) {
			writeJSON(w, http.StatusNotFound, dto.ErrorResponse{Error: "User not found"})
			return
		}
		writeJSON(w, http.StatusInternalServerError, dto.ErrorResponse{Error: "Failed to fetch user"})
		return
	}

	writeJSON(w, http.StatusOK, user)
}

// GetProfile returns the user's own census profile, or null when no census
// record exists yet.
func (h *ProfileHandler) GetProfile(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	var profile models.Profile
	err := h.db.WithContext(r.Context()).Where("user_id = ?", userID).First(&profile).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		writeJSON(w, http.StatusOK, nil)
		return
	}
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, dto.ErrorResponse{Error: "Failed to fetch profile"})
		return
	}

	writeJSON(w, http.StatusOK, profile)
}

// UpdateProfile upserts the user's own census profile.
func (h *ProfileHandler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	email := middleware.GetUserEmail(r.Context())

	var req dto.UpdateProfileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "Invalid request body"})
		return
	}

	if errs := req.Validate(); len(errs) > 0 {
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "Validation failed", Details: errs})
		return
	}

	input := profileInput(req.ProfileFields)

	var profile models.Profile
	err := h.db.WithContext(r.Context()).Transaction(func(tx *gorm.DB) error {
		err := tx.Where("user_id = ?", userID).First(&profile).Error
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			input.Apply(&profile, userID, email)
			return tx.Create(&profile).Error
		case err != nil:
			return err
		default:
			input.Apply(&profile, userID, email)
			return tx.Save(&profile).Error
		}
	})
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, dto.ErrorResponse{Error: "Failed to update profile"})
		return
	}

	writeJSON(w, http.StatusOK, profile)
}
