package handlers

import (
	"net/http"

	"gorm.io/gorm"

	"github.com/stagnes/parish-hub/internal/api/middleware"
	"github.com/stagnes/parish-hub/internal/database/models"
)

type DashboardHandler struct {
	db *gorm.DB
}

func NewDashboardHandler(db *gorm.DB) *DashboardHandler {
	return &DashboardHandler{db: db}
}

type dashboardSummary struct {
	GuildName     *string `json:"guild_name"`
	GuildStatus   string  `json:"guild_status"`
	DocumentCount int64   `json:"document_count"`
}

// Summary returns the member dashboard widgets: guild membership and the
// number of documents available to the user.
func (h *DashboardHandler) Summary(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	summary := dashboardSummary{
		GuildStatus: "No Guild Assigned",
	}

	var membership models.GuildMembership
	err := h.db.WithContext(r.Context()).
		Preload("Guild").
		Where("user_id = ?", userID).
		First(&membership).Error
	if err == nil && membership.Guild != nil {
		summary.GuildName = &membership.Guild.Name
		summary.GuildStatus = "Active Member"
	}

	h.db.WithContext(r.Context()).Model(&models.Document{}).Count(&summary.DocumentCount)

	writeJSON(w, http.StatusOK, summary)
}
