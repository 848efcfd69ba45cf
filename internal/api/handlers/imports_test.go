package handlers_test

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/stagnes/parish-hub/internal/api/handlers"
	"github.com/stagnes/parish-hub/internal/api/middleware"
	"github.com/stagnes/parish-hub/internal/database/models"
	"github.com/stagnes/parish-hub/internal/importer"
	"github.com/stagnes/parish-hub/internal/testutil"
)

func setupImportTestRouter(t *testing.T) (*chi.Mux, *testEnv, string) {
	env := newTestEnv(t)

	im := importer.New(env.DB, env.Prov, slog.Default())
	handler := handlers.NewImportHandler(im)

	r := chi.NewRouter()
	r.Group(func(r chi.Router) {
		r.Use(middleware.Auth(env.JWTService))
		r.Use(middleware.RequireRole(models.RoleAdmin))
		r.Post("/api/v1/admin/upload-users", handler.UploadUsers)
	})

	admin := testutil.CreateTestUser(t, env.DB, models.RoleAdmin)
	adminToken := testutil.GenerateTestToken(t, env.JWTService, admin)

	return r, env, adminToken
}

// uploadRequest builds a multipart request carrying the given file content.
func uploadRequest(t *testing.T, token, filename string, content []byte) *http.Request {
	t.Helper()

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("file", filename)
	require.NoError(t, err)
	_, err = part.Write(content)
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req, err := http.NewRequest("POST", "/api/v1/admin/upload-users", &buf)
	require.NoError(t, err)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+token)
	return req
}

func memberWorkbook(t *testing.T, rows [][]interface{}) []byte {
	t.Helper()

	f := excelize.NewFile()
	defer f.Close()

	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		require.NoError(t, f.SetSheetRow("Sheet1", cell, &row))
	}

	buf, err := f.WriteToBuffer()
	require.NoError(t, err)
	return buf.Bytes()
}

func TestImportHandler_UploadUsers(t *testing.T) {
	router, env, adminToken := setupImportTestRouter(t)

	t.Run("imports a valid workbook", func(t *testing.T) {
		content := memberWorkbook(t, [][]interface{}{
			{"email", "firstname", "surname"},
			{"row-one@example.com", "Row", "One"},
			{"", "Row", "Two"},
		})

		req := uploadRequest(t, adminToken, "members.xlsx", content)
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)

		require.Equal(t, http.StatusOK, rr.Code)

		var resp struct {
			Message string            `json:"message"`
			Details *importer.Summary `json:"details"`
		}
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
		assert.Equal(t, "Processed 2 users. Success: 1, Failed: 1", resp.Message)
		require.NotNil(t, resp.Details)
		assert.Len(t, resp.Details.Errors, 1)

		var count int64
		env.DB.Model(&models.User{}).Where("email = ?", "row-one@example.com").Count(&count)
		assert.EqualValues(t, 1, count)
		assert.Len(t, env.Mailer.SentTo("row-one@example.com"), 1)
	})

	t.Run("rejects non-Excel files", func(t *testing.T) {
		req := uploadRequest(t, adminToken, "members.csv", []byte("email,firstname\n"))
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})

	t.Run("rejects an empty workbook", func(t *testing.T) {
		content := memberWorkbook(t, [][]interface{}{
			{"email", "firstname", "surname"},
		})

		req := uploadRequest(t, adminToken, "empty.xlsx", content)
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})

	t.Run("rejects a missing file field", func(t *testing.T) {
		var buf bytes.Buffer
		mw := multipart.NewWriter(&buf)
		require.NoError(t, mw.Close())

		req, err := http.NewRequest("POST", "/api/v1/admin/upload-users", &buf)
		require.NoError(t, err)
		req.Header.Set("Content-Type", mw.FormDataContentType())
		req.Header.Set("Authorization", "Bearer "+adminToken)

		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})
}
