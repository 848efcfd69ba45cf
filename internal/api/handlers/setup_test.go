package handlers_test

import (
	"testing"
	"time"

	"gorm.io/gorm"

	"github.com/stagnes/parish-hub/internal/auth"
	"github.com/stagnes/parish-hub/internal/provisioning"
	"github.com/stagnes/parish-hub/internal/testutil"
)

// testEnv wires the services every handler test needs against an in-memory
// database and a recording mailer.
type testEnv struct {
	DB          *gorm.DB
	Mailer      *testutil.FakeMailer
	JWTService  *auth.JWTService
	AuthService *auth.Service
	Prov        *provisioning.Service
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	db := testutil.SetupTestDB(t)
	t.Cleanup(func() { testutil.CleanupTestDB(t, db) })

	mailer := testutil.NewFakeMailer()
	jwtService := testutil.CreateTestJWTService()

	return &testEnv{
		DB:          db,
		Mailer:      mailer,
		JWTService:  jwtService,
		AuthService: auth.NewService(db, jwtService, mailer, time.Hour),
		Prov:        provisioning.NewService(db, mailer, "http://localhost:3000", 72*time.Hour),
	}
}

// newMemberInput builds the minimal valid member-creation input.
func newMemberInput(email, firstName, surname string) provisioning.CreateUserInput {
	return provisioning.CreateUserInput{
		Email: email,
		Profile: provisioning.ProfileInput{
			FirstName: firstName,
			Surname:   surname,
		},
	}
}
