package handlers_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stagnes/parish-hub/internal/api/dto"
	"github.com/stagnes/parish-hub/internal/api/handlers"
	"github.com/stagnes/parish-hub/internal/api/middleware"
	"github.com/stagnes/parish-hub/internal/database/models"
	"github.com/stagnes/parish-hub/internal/testutil"
)

func setupGuildTestRouter(t *testing.T) (*chi.Mux, *testEnv, string) {
	env := newTestEnv(t)

	handler := handlers.NewGuildHandler(env.DB)

	r := chi.NewRouter()
	r.Route("/api/v1/admin/guilds", func(r chi.Router) {
		r.Use(middleware.Auth(env.JWTService))
		r.Use(middleware.RequireRole(models.RoleAdmin))

		r.Get("/", handler.List)
		r.Post("/", handler.Create)
		r.Put("/{guildID}", handler.Update)
		r.Delete("/{guildID}", handler.Delete)
	})

	admin := testutil.CreateTestUser(t, env.DB, models.RoleAdmin)
	adminToken := testutil.GenerateTestToken(t, env.JWTService, admin)

	return r, env, adminToken
}

func TestGuildHandler_Create(t *testing.T) {
	router, _, adminToken := setupGuildTestRouter(t)

	t.Run("creates a guild", func(t *testing.T) {
		body := map[string]string{
			"name":        "Youth Guild",
			"description": "Parish youth fellowship",
		}

		req := testutil.AuthenticatedRequest(t, "POST", "/api/v1/admin/guilds", adminToken, body)
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusCreated, rr.Code)

		var guild models.Guild
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &guild))
		assert.Equal(t, "Youth Guild", guild.Name)
	})

	t.Run("duplicate name", func(t *testing.T) {
		body := map[string]string{"name": "Youth Guild"}

		req := testutil.AuthenticatedRequest(t, "POST", "/api/v1/admin/guilds", adminToken, body)
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusConflict, rr.Code)
	})

	t.Run("missing name", func(t *testing.T) {
		req := testutil.AuthenticatedRequest(t, "POST", "/api/v1/admin/guilds", adminToken, map[string]string{})
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})
}

func TestGuildHandler_List(t *testing.T) {
	router, env, adminToken := setupGuildTestRouter(t)

	choir := testutil.CreateTestGuild(t, env.DB, "Choir")
	testutil.CreateTestGuild(t, env.DB, "Ushers")

	member := testutil.CreateTestUser(t, env.DB, models.RoleMember)
	require.NoError(t, env.DB.Create(&models.GuildMembership{
		UserID:  member.ID,
		GuildID: choir.ID,
	}).Error)

	req := testutil.AuthenticatedRequest(t, "GET", "/api/v1/admin/guilds", adminToken, nil)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)

	var items []dto.GuildListItem
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &items))
	require.Len(t, items, 2)

	byName := make(map[string]dto.GuildListItem, len(items))
	for _, it := range items {
		byName[it.Name] = it
	}
	assert.EqualValues(t, 1, byName["Choir"].MemberCount)
	assert.EqualValues(t, 0, byName["Ushers"].MemberCount)
}

func TestGuildHandler_Update(t *testing.T) {
	router, env, adminToken := setupGuildTestRouter(t)

	guild := testutil.CreateTestGuild(t, env.DB, "Old Name")

	t.Run("renames the guild", func(t *testing.T) {
		body := map[string]string{"name": "New Name"}

		req := testutil.AuthenticatedRequest(t, "PUT", "/api/v1/admin/guilds/"+guild.ID.String(), adminToken, body)
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)

		require.Equal(t, http.StatusOK, rr.Code)

		var updated models.Guild
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &updated))
		assert.Equal(t, "New Name", updated.Name)
	})

	t.Run("unknown guild", func(t *testing.T) {
		body := map[string]string{"name": "Whatever"}

		req := testutil.AuthenticatedRequest(t, "PUT", "/api/v1/admin/guilds/00000000-0000-0000-0000-000000000001", adminToken, body)
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusNotFound, rr.Code)
	})

	t.Run("name collision", func(t *testing.T) {
		testutil.CreateTestGuild(t, env.DB, "Taken")
		body := map[string]string{"name": "Taken"}

		req := testutil.AuthenticatedRequest(t, "PUT", "/api/v1/admin/guilds/"+guild.ID.String(), adminToken, body)
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusConflict, rr.Code)
	})
}

func TestGuildHandler_Delete(t *testing.T) {
	router, env, adminToken := setupGuildTestRouter(t)

	guild := testutil.CreateTestGuild(t, env.DB, "Doomed")

	t.Run("deletes the guild", func(t *testing.T) {
		req := testutil.AuthenticatedRequest(t, "DELETE", "/api/v1/admin/guilds/"+guild.ID.String(), adminToken, nil)
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusOK, rr.Code)

		var count int64
		env.DB.Model(&models.Guild{}).Where("id = ?", guild.ID).Count(&count)
		assert.Zero(t, count)
	})

	t.Run("unknown guild", func(t *testing.T) {
		req := testutil.AuthenticatedRequest(t, "DELETE", "/api/v1/admin/guilds/"+guild.ID.String(), adminToken, nil)
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusNotFound, rr.Code)
	})
}
