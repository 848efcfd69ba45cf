package handlers_test

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stagnes/parish-hub/internal/api/handlers"
	"github.com/stagnes/parish-hub/internal/api/middleware"
	"github.com/stagnes/parish-hub/internal/database/models"
	"github.com/stagnes/parish-hub/internal/testutil"
)

func setupDocumentTestRouter(t *testing.T) (*chi.Mux, *testEnv) {
	env := newTestEnv(t)

	handler := handlers.NewDocumentHandler(env.DB)

	r := chi.NewRouter()
	r.Group(func(r chi.Router) {
		r.Use(middleware.Auth(env.JWTService))
		r.Get("/api/v1/documents", handler.List)
	})

	return r, env
}

func createDocument(t *testing.T, env *testEnv, title string, guildID *uuid.UUID) {
	t.Helper()
	require.NoError(t, env.DB.Create(&models.Document{
		Title:   title,
		FileURL: "https://files.example.com/" + title + ".pdf",
		GuildID: guildID,
	}).Error)
}

type documentListBody struct {
	Documents   []models.Document `json:"documents"`
	TotalPages  int64             `json:"total_pages"`
	CurrentPage int               `json:"current_page"`
}

func TestDocumentHandler_List(t *testing.T) {
	router, env := setupDocumentTestRouter(t)

	choir := testutil.CreateTestGuild(t, env.DB, "Choir")
	ushers := testutil.CreateTestGuild(t, env.DB, "Ushers")

	createDocument(t, env, "parish-bulletin", nil)
	createDocument(t, env, "choir-hymnal", &choir.ID)
	createDocument(t, env, "usher-roster", &ushers.ID)

	choirMember := testutil.CreateTestUser(t, env.DB, models.RoleMember)
	require.NoError(t, env.DB.Create(&models.GuildMembership{
		UserID:  choirMember.ID,
		GuildID: choir.ID,
	}).Error)
	choirToken := testutil.GenerateTestToken(t, env.JWTService, choirMember)

	loner := testutil.CreateTestUser(t, env.DB, models.RoleMember)
	lonerToken := testutil.GenerateTestToken(t, env.JWTService, loner)

	list := func(t *testing.T, token, query string) documentListBody {
		t.Helper()
		req := testutil.AuthenticatedRequest(t, "GET", "/api/v1/documents"+query, token, nil)
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)
		require.Equal(t, http.StatusOK, rr.Code)

		var body documentListBody
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
		return body
	}

	t.Run("guild member sees parish-wide plus own guild", func(t *testing.T) {
		body := list(t, choirToken, "")
		require.Len(t, body.Documents, 2)

		titles := []string{body.Documents[0].Title, body.Documents[1].Title}
		assert.Contains(t, titles, "parish-bulletin")
		assert.Contains(t, titles, "choir-hymnal")
	})

	t.Run("member without a guild sees only parish-wide", func(t *testing.T) {
		body := list(t, lonerToken, "")
		require.Len(t, body.Documents, 1)
		assert.Equal(t, "parish-bulletin", body.Documents[0].Title)
	})

	t.Run("paginates at ten per page", func(t *testing.T) {
		for i := 0; i < 12; i++ {
			createDocument(t, env, fmt.Sprintf("notice-%02d", i), nil)
		}

		first := list(t, lonerToken, "?page=1")
		assert.Len(t, first.Documents, 10)
		assert.EqualValues(t, 2, first.TotalPages)
		assert.Equal(t, 1, first.CurrentPage)

		second := list(t, lonerToken, "?page=2")
		assert.Len(t, second.Documents, 3)
		assert.Equal(t, 2, second.CurrentPage)
	})

	t.Run("honors page_size", func(t *testing.T) {
		body := list(t, lonerToken, "?page_size=5")
		assert.Len(t, body.Documents, 5)
		assert.EqualValues(t, 3, body.TotalPages)
	})
}

func TestDashboardHandler_Summary(t *testing.T) {
	env := newTestEnv(t)

	handler := handlers.NewDashboardHandler(env.DB)

	r := chi.NewRouter()
	r.Group(func(r chi.Router) {
		r.Use(middleware.Auth(env.JWTService))
		r.Get("/api/v1/dashboard/summary", handler.Summary)
	})

	choir := testutil.CreateTestGuild(t, env.DB, "Choir")
	createDocument(t, env, "bulletin", nil)

	type summaryBody struct {
		GuildName     *string `json:"guild_name"`
		GuildStatus   string  `json:"guild_status"`
		DocumentCount int64   `json:"document_count"`
	}

	fetch := func(t *testing.T, token string) summaryBody {
		t.Helper()
		req := testutil.AuthenticatedRequest(t, "GET", "/api/v1/dashboard/summary", token, nil)
		rr := httptest.NewRecorder()
		r.ServeHTTP(rr, req)
		require.Equal(t, http.StatusOK, rr.Code)

		var body summaryBody
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
		return body
	}

	t.Run("guild member", func(t *testing.T) {
		member := testutil.CreateTestUser(t, env.DB, models.RoleMember)
		require.NoError(t, env.DB.Create(&models.GuildMembership{
			UserID:  member.ID,
			GuildID: choir.ID,
		}).Error)
		token := testutil.GenerateTestToken(t, env.JWTService, member)

		body := fetch(t, token)
		require.NotNil(t, body.GuildName)
		assert.Equal(t, "Choir", *body.GuildName)
		assert.Equal(t, "Active Member", body.GuildStatus)
		assert.EqualValues(t, 1, body.DocumentCount)
	})

	t.Run("member without a guild", func(t *testing.T) {
		loner := testutil.CreateTestUser(t, env.DB, models.RoleMember)
		token := testutil.GenerateTestToken(t, env.JWTService, loner)

		body := fetch(t, token)
		assert.Nil(t, body.GuildName)
		assert.Equal(t, "No Guild Assigned", body.GuildStatus)
	})
}
