package handlers

import (
	"net/http"
	"strconv"

	"gorm.io/gorm"

	"github.com/stagnes/parish-hub/internal/api/dto"
	"github.com/stagnes/parish-hub/internal/api/middleware"
	"github.com/stagnes/parish-hub/internal/database/models"
)

const (
	defaultDocumentsPageSize = 10
	maxDocumentsPageSize     = 100
)

type DocumentHandler struct {
	db *gorm.DB
}

func NewDocumentHandler(db *gorm.DB) *DocumentHandler {
	return &DocumentHandler{db: db}
}

type documentListResponse struct {
	Documents   []models.Document `json:"documents"`
	TotalPages  int64             `json:"total_pages"`
	CurrentPage int               `json:"current_page"`
}

// List returns documents visible to the requesting user: parish-wide ones
// plus those shared with the user's guild, newest first, paginated.
func (h *DocumentHandler) List(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	if page < 1 {
		page = 1
	}
	pageSize, _ := strconv.Atoi(r.URL.Query().Get("page_size"))
	if pageSize < 1 {
		pageSize = defaultDocumentsPageSize
	}
	if pageSize > maxDocumentsPageSize {
		pageSize = maxDocumentsPageSize
	}

	var membership models.GuildMembership
	hasGuild := h.db.WithContext(r.Context()).
		Where("user_id = ?", userID).
		First(&membership).Error == nil

	query := h.db.WithContext(r.Context()).Model(&models.Document{})
	if hasGuild {
		query = query.Where("guild_id = ? OR guild_id IS NULL", membership.GuildID)
	} else {
		query = query.Where("guild_id IS NULL")
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		writeJSON(w, http.StatusInternalServerError, dto.ErrorResponse{Error: "Failed to fetch documents"})
		return
	}

	var documents []models.Document
	if err := query.
		Order("created_at DESC").
		Offset((page - 1) * pageSize).
		Limit(pageSize).
		Find(&documents).Error; err != nil {
		writeJSON(w, http.StatusInternalServerError, dto.ErrorResponse{Error: "Failed to fetch documents"})
		return
	}

	totalPages := (total + int64(pageSize) - 1) / int64(pageSize)

	writeJSON(w, http.StatusOK, documentListResponse{
		Documents:   documents,
		TotalPages:  totalPages,
		CurrentPage: page,
	})
}
