//go:build ignore

package main

import (
	"errors"
	"fmt"
	"log"
	"os"

	"github.com/joho/godotenv"
	"gorm.io/gorm"

	"github.com/stagnes/parish-hub/internal/auth"
	"github.com/stagnes/parish-hub/internal/database"
	"github.com/stagnes/parish-hub/internal/database/models"
	"github.com/stagnes/parish-hub/pkg/config"
	"github.com/stagnes/parish-hub/pkg/util"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger := util.NewLogger(cfg.Server.Env)

	db, err := database.Connect(&cfg.Database, logger)
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}

	// Run migrations
	if err := database.AutoMigrate(db); err != nil {
		log.Fatalf("failed to run migrations: %v", err)
	}

	email := os.Getenv("ADMIN_EMAIL")
	password := os.Getenv("ADMIN_PASSWORD")

	if email == "" {
		email = "admin@example.com"
	}
	if password == "" {
		password = "password123"
	}
	if len(password) < auth.MinPasswordLength {
		log.Fatalf("admin password must be at least %d characters", auth.MinPasswordLength)
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		log.Fatalf("failed to hash password: %v", err)
	}

	err = db.Transaction(func(tx *gorm.DB) error {
		var user models.User
		err := tx.Where("email = ?", email).First(&user).Error
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			user = models.User{
				Email:        email,
				PasswordHash: &hash,
				Role:         models.RoleAdmin,
				IsActive:     true,
			}
			if err := tx.Create(&user).Error; err != nil {
				return err
			}
			profile := models.Profile{
				UserID:       user.ID,
				FirstName:    "Admin",
				Surname:      "User",
				EmailAddress: email,
			}
			return tx.Create(&profile).Error
		case err != nil:
			return err
		default:
			// Existing user: make sure the role is admin, leave the password alone
			return tx.Model(&user).Update("role", models.RoleAdmin).Error
		}
	})
	if err != nil {
		log.Fatalf("failed to seed admin user: %v", err)
	}

	fmt.Printf("Seeded admin user %s\n", email)
}
