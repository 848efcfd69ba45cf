package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/stagnes/parish-hub/internal/api/dto"
	"github.com/stagnes/parish-hub/internal/database/models"
)

type GuildHandler struct {
	db *gorm.DB
}

func NewGuildHandler(db *gorm.DB) *GuildHandler {
	return &GuildHandler{db: db}
}

func (h *GuildHandler) List(w http.ResponseWriter, r *http.Request) {
	var guilds []models.Guild
	if err := h.db.WithContext(r.Context()).
		Order("name ASC").
		Find(&guilds).Error; err != nil {
		writeJSON(w, http.StatusInternalServerError, dto.ErrorResponse{Error: "Failed to fetch guilds"})
		return
	}

	// Member counts in one query.
	type countRow struct {
		GuildID uuid.UUID
		Count   int64
	}
	var counts []countRow
	h.db.WithContext(r.Context()).
		Table("guild_memberships").
		Select("guild_id, COUNT(*) as count").
		Group("guild_id").
		Scan(&counts)
	countByGuild := make(map[uuid.UUID]int64, len(counts))
	for _, c := range counts {
		countByGuild[c.GuildID] = c.Count
	}

	items := make([]dto.GuildListItem, 0, len(guilds))
	for _, g := range guilds {
		items = append(items, dto.GuildListItem{
			ID:          g.ID.String(),
			Name:        g.Name,
			Description: g.Description,
			MemberCount: countByGuild[g.ID],
		})
	}

	writeJSON(w, http.StatusOK, items)
}

func (h *GuildHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req dto.CreateGuildRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "Invalid request body"})
		return
	}

	if errs := req.Validate(); len(errs) > 0 {
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "Validation failed", Details: errs})
		return
	}

	guild := models.Guild{
		Name:        req.Name,
		Description: req.Description,
	}
	if err := h.db.WithContext(r.Context()).Create(&guild).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			writeJSON(w, http.StatusConflict, dto.ErrorResponse{Error: "A guild with this name already exists"})
			return
		}
		writeJSON(w, http.StatusInternalServerError, dto.ErrorResponse{Error: "Failed to create guild"})
		return
	}

	writeJSON(w, http.StatusCreated, guild)
}

func (h *GuildHandler) Update(w http.ResponseWriter, r *http.Request) {
	guildID, err := uuid.Parse(chi.URLParam(r, "guildID"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "Invalid guild ID"})
		return
	}

	var req dto.UpdateGuildRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "Invalid request body"})
		return
	}

	if errs := req.Validate(); len(errs) > 0 {
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "Validation failed", Details: errs})
		return
	}

	updates := map[string]interface{}{}
	if req.Name != nil {
		updates["name"] = *req.Name
	}
	if req.Description != nil {
		updates["description"] = *req.Description
	}

	res := h.db.WithContext(r.Context()).
		Model(&models.Guild{}).
		Where("id = ?", guildID).
		Updates(updates)
	if res.Error != nil {
		if errors.Is(res.Error, gorm.ErrDuplicatedKey) {
			writeJSON(w, http.StatusConflict, dto.ErrorResponse{Error: "A guild with this name already exists"})
			return
		}
		writeJSON(w, http.StatusInternalServerError, dto.ErrorResponse{Error: "Failed to update guild"})
		return
	}
	if res.RowsAffected == 0 {
		writeJSON(w, http.StatusNotFound, dto.ErrorResponse{Error: "Guild not found"})
		return
	}

	var guild models.Guild
	if err := h.db.WithContext(r.Context()).First(&guild, guildID).Error; err != nil {
		writeJSON(w, http.StatusInternalServerError, dto.ErrorResponse{Error: "Failed to fetch guild"})
		return
	}
	writeJSON(w, http.StatusOK, guild)
}

func (h *GuildHandler) Delete(w http.ResponseWriter, r *http.Request) {
	guildID, err := uuid.Parse(chi.URLParam(r, "guildID"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "Invalid guild ID"})
		return
	}

	res := h.db.WithContext(r.Context()).Delete(&models.Guild{}, guildID)
	if res.Error != nil {
		writeJSON(w, http.StatusInternalServerError, dto.ErrorResponse{Error: "Failed to delete guild"})
		return
	}
	if res.RowsAffected == 0 {
		writeJSON(w, http.StatusNotFound, dto.ErrorResponse{Error: "Guild not found"})
		return
	}

	writeJSON(w, http.StatusOK, dto.SuccessResponse{Message: "Guild deleted successfully"})
}
