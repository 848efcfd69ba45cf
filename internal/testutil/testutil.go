package testutil

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/stagnes/parish-hub/internal/auth"
	"github.com/stagnes/parish-hub/internal/database/models"
)

// SetupTestDB creates an in-memory SQLite database for testing
func SetupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	if err != nil {
		t.Fatalf("failed to create test database: %v", err)
	}

	// Run migrations
	err = db.AutoMigrate(
		&models.User{},
		&models.Profile{},
		&models.SetupToken{},
		&models.OTPCode{},
		&models.Guild{},
		&models.GuildMembership{},
		&models.Document{},
	)
	if err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}

	return db
}

// CleanupTestDB closes the test database connection
func CleanupTestDB(t *testing.T, db *gorm.DB) {
	t.Helper()
	sqlDB, err := db.DB()
	if err != nil {
		t.Logf("warning: failed to get sql.DB: %v", err)
		return
	}
	sqlDB.Close()
}

// CreateTestUser creates an active user with a password already set
func CreateTestUser(t *testing.T, db *gorm.DB, role string) *models.User {
	t.Helper()

	hash, err := auth.HashPassword("testpassword123")
	if err != nil {
		t.Fatalf("failed to hash password: %v", err)
	}

	user := &models.User{
		Base: models.Base{
			ID: uuid.New(),
		},
		Email:        "test-" + uuid.New().String()[:8] + "@example.com",
		PasswordHash: &hash,
		Role:         role,
		IsActive:     true,
	}

	if err := db.Create(user).Error; err != nil {
		t.Fatalf("failed to create test user: %v", err)
	}

	return user
}

// CreatePendingUser creates a user who has not completed password setup
func CreatePendingUser(t *testing.T, db *gorm.DB, email string) *models.User {
	t.Helper()

	user := &models.User{
		Base: models.Base{
			ID: uuid.New(),
		},
		Email:    email,
		Role:     models.RoleMember,
		IsActive: true,
	}

	if err := db.Create(user).Error; err != nil {
		t.Fatalf("failed to create pending user: %v", err)
	}

	return user
}

// CreateTestGuild creates a guild with a unique name
func CreateTestGuild(t *testing.T, db *gorm.DB, name string) *models.Guild {
	t.Helper()

	guild := &models.Guild{
		Base: models.Base{
			ID: uuid.New(),
		},
		Name: name,
	}
	if err := db.Create(guild).Error; err != nil {
		t.Fatalf("failed to create test guild: %v", err)
	}
	return guild
}

// CreateTestJWTService creates a JWT service for testing
func CreateTestJWTService() *auth.JWTService {
	return auth.NewJWTService("test-secret-key-for-testing", 24*time.Hour)
}

// GenerateTestToken generates a valid JWT token for the given user
func GenerateTestToken(t *testing.T, jwtService *auth.JWTService, user *models.User) string {
	t.Helper()

	token, err := jwtService.GenerateToken(user.ID, user.Email, user.Role)
	if err != nil {
		t.Fatalf("failed to generate test token: %v", err)
	}
	return token
}

// AuthenticatedRequest builds a JSON request carrying the user's bearer token
func AuthenticatedRequest(t *testing.T, method, path, token string, body interface{}) *http.Request {
	t.Helper()

	req := UnauthenticatedRequest(t, method, path, body)
	req.Header.Set("Authorization", "Bearer "+token)
	return req
}

// UnauthenticatedRequest builds a JSON request with no credentials
func UnauthenticatedRequest(t *testing.T, method, path string, body interface{}) *http.Request {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("failed to encode request body: %v", err)
		}
	}

	req, err := http.NewRequest(method, path, &buf)
	if err != nil {
		t.Fatalf("failed to create request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	return req
}

// SentEmail is one message recorded by the fake mailer
type SentEmail struct {
	To      string
	Subject string
	Body    string
}

// FakeMailer records sent email and can be told to fail, which exercises
// the rollback-on-delivery-failure paths.
type FakeMailer struct {
	mu       sync.Mutex
	Sent     []SentEmail
	FailFor  map[string]bool // fail sends to these addresses
	FailNext bool            // fail the next send regardless of address
}

func NewFakeMailer() *FakeMailer {
	return &FakeMailer{FailFor: make(map[string]bool)}
}

func (m *FakeMailer) Send(ctx context.Context, to, subject, htmlBody string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.FailNext {
		m.FailNext = false
		return fmt.Errorf("sending email to %s: delivery failed", to)
	}
	if m.FailFor[to] {
		return fmt.Errorf("sending email to %s: delivery failed", to)
	}

	m.Sent = append(m.Sent, SentEmail{To: to, Subject: subject, Body: htmlBody})
	return nil
}

// LastSent returns the most recently recorded email, or nil
func (m *FakeMailer) LastSent() *SentEmail {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.Sent) == 0 {
		return nil
	}
	return &m.Sent[len(m.Sent)-1]
}

// SentTo returns every recorded email addressed to the given recipient
func (m *FakeMailer) SentTo(to string) []SentEmail {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []SentEmail
	for _, e := range m.Sent {
		if e.To == to {
			out = append(out, e)
		}
	}
	return out
}
