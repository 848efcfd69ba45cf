package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/stagnes/parish-hub/internal/api/dto"
	"github.com/stagnes/parish-hub/internal/api/middleware"
	"github.com/stagnes/parish-hub/internal/database/models"
	"github.com/stagnes/parish-hub/internal/provisioning"
)

type UserHandler struct {
	db   *gorm.DB
	prov *provisioning.Service
}

func NewUserHandler(db *gorm.DB, prov *provisioning.Service) *UserHandler {
	return &UserHandler{db: db, prov: prov}
}

// List returns all users with their derived setup status for the admin table.
func (h *UserHandler) List(w http.ResponseWriter, r *http.Request) {
	var users []models.User
	if err := h.db.WithContext(r.Context()).
		Preload("Profile").
		Order("created_at DESC").
		Find(&users).Error; err != nil {
		writeJSON(w, http.StatusInternalServerError, dto.ErrorResponse{Error: "Failed to fetch users"})
		return
	}

	// Primary guild name per user in one query.
	type membershipRow struct {
		UserID uuid.UUID
		Name   string
	}
	var memberships []membershipRow
	h.db.WithContext(r.Context()).
		Table("guild_memberships").
		Select("guild_memberships.user_id, guilds.name").
		Joins("JOIN guilds ON guilds.id = guild_memberships.guild_id").
		Scan(&memberships)
	guildByUser := make(map[uuid.UUID]string, len(memberships))
	for _, m := range memberships {
		if _, ok := guildByUser[m.UserID]; !ok {
			guildByUser[m.UserID] = m.Name
		}
	}

	items := make([]dto.UserListItem, 0, len(users))
	for _, u := range users {
		name := u.Email
		if u.Profile != nil && u.Profile.FirstName != "" {
			name = u.Profile.FullName()
		}
		status := "Pending Setup"
		if u.HasPassword() {
			status = "Active"
		}
		items = append(items, dto.UserListItem{
			ID:        u.ID.String(),
			Name:      name,
			Email:     u.Email,
			Role:      u.Role,
			Guild:     guildByUser[u.ID],
			Status:    status,
			CreatedAt: u.CreatedAt,
			UpdatedAt: u.UpdatedAt,
		})
	}

	writeJSON(w, http.StatusOK, items)
}

// Create provisions a new member and emails them a password-setup link.
func (h *UserHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req dto.CreateUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "Invalid request body"})
		return
	}

	if errs := req.Validate(); len(errs) > 0 {
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "Validation failed", Details: errs})
		return
	}

	user, err := h.prov.CreateUser(r.Context(), provisioning.CreateUserInput{
		Email:   req.Email,
		Role:    req.Role,
		Profile: profileInput(req.ProfileFields),
	})
	if err != nil {
		switch {
		case errors.Is(err, provisioning.ErrEmailTaken):
			writeJSON(w, http.StatusConflict, dto.ErrorResponse{Error: "Email already exists"})
		default:
			writeJSON(w, http.StatusInternalServerError, dto.ErrorResponse{Error: "Failed to create user"})
		}
		return
	}

	writeJSON(w, http.StatusCreated, userDTO(user))
}

// Update edits a user's email and census profile.
func (h *UserHandler) Update(w http.ResponseWriter, r *http.Request) {
	userID, err := uuid.Parse(chi.URLParam(r, "userID"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "Invalid user ID"})
		return
	}

	var req dto.UpdateUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "Invalid request body"})
		return
	}

	if errs := req.Validate(); len(errs) > 0 {
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "Validation failed", Details: errs})
		return
	}

	var user models.User
	txErr := h.db.WithContext(r.Context()).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&user, userID).Error; err != nil {
			return err
		}

		if req.Email != "" && req.Email != user.Email {
			user.Email = req.Email
			if err := tx.Model(&user).Update("email", req.Email).Error; err != nil {
				return err
			}
		}

		var profile models.Profile
		input := profileInput(req.ProfileFields)
		err := tx.Where("user_id = ?", user.ID).First(&profile).Error
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			input.Apply(&profile, user.ID, user.Email)
			return tx.Create(&profile).Error
		case err != nil:
			return err
		default:
			input.Apply(&profile, user.ID, user.Email)
			return tx.Save(&profile).Error
		}
	})
	if txErr != nil {
		switch {
		case errors.Is(txErr, gorm.ErrRecordNotFound):
			writeJSON(w, http.StatusNotFound, dto.ErrorResponse{Error: "User not found"})
		case errors.Is(txErr, gorm.ErrDuplicatedKey):
			writeJSON(w, http.StatusConflict, dto.ErrorResponse{Error: "Email already exists"})
		default:
			writeJSON(w, http.StatusInternalServerError, dto.ErrorResponse{Error: "Failed to update user"})
		}
		return
	}

	writeJSON(w, http.StatusOK, userDTO(&user))
}

// Delete removes a user; related rows cascade. Admins cannot delete
// themselves.
func (h *UserHandler) Delete(w http.ResponseWriter, r *http.Request) {
	userID, err := uuid.Parse(chi.URLParam(r, "userID"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "Invalid user ID"})
		return
	}

	if middleware.GetUserID(r.Context()) == userID {
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "Cannot delete your own account"})
		return
	}

	res := h.db.WithContext(r.Context()).Delete(&models.User{}, userID)
	if res.Error != nil {
		writeJSON(w, http.StatusInternalServerError, dto.ErrorResponse{Error: "Failed to delete user"})
		return
	}
	if res.RowsAffected == 0 {
		writeJSON(w, http.StatusNotFound, dto.ErrorResponse{Error: "User not found"})
		return
	}

	writeJSON(w, http.StatusOK, dto.SuccessResponse{Message: "User deleted successfully"})
}

// ResendSetup issues a fresh password-setup token and email for a user.
func (h *UserHandler) ResendSetup(w http.ResponseWriter, r *http.Request) {
	userID, err := uuid.Parse(chi.URLParam(r, "userID"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "Invalid user ID"})
		return
	}

	if err := h.prov.ResendSetup(r.Context(), userID); err != nil {
		switch {
		case errors.Is(err, provisioning.ErrUserNotFound):
			writeJSON(w, http.StatusNotFound, dto.ErrorResponse{Error: "User not found"})
		default:
			writeJSON(w, http.StatusInternalServerError, dto.ErrorResponse{Error: "Failed to send setup email"})
		}
		return
	}

	writeJSON(w, http.StatusOK, dto.SuccessResponse{Message: "Password setup email sent successfully."})
}

func profileInput(f dto.ProfileFields) provisioning.ProfileInput {
	return provisioning.ProfileInput{
		Title:             f.Title,
		FirstName:         f.FirstName,
		MiddleName:        f.MiddleName,
		Surname:           f.Surname,
		Gender:            f.Gender,
		DateOfBirth:       f.BirthDate(),
		MaritalStatus:     f.MaritalStatus,
		Address:           f.Address,
		Phone:             f.Phone,
		PlaceOfBaptism:    f.PlaceOfBaptism,
		BaptismNumber:     f.BaptismNumber,
		TypeOfMarriage:    f.TypeOfMarriage,
		PlaceOfMarriage:   f.PlaceOfMarriage,
		MarriageNumber:    f.MarriageNumber,
		MarriedTo:         f.MarriedTo,
		SectionName:       f.SectionName,
		ChurchSupportCard: f.ChurchSupportCard,
		Occupation:        f.Occupation,
		Skills:            f.Skills,
		Profession:        f.Profession,
		Comments:          f.Comments,
	}
}
