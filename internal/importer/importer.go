// Package importer runs the bulk member import: each spreadsheet row is
// processed in its own transaction so one bad row never affects the rest.
package importer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"gorm.io/gorm"

	"github.com/stagnes/parish-hub/internal/database/models"
	"github.com/stagnes/parish-hub/internal/provisioning"
)

// Summary reports the outcome of a bulk import. Partial failure is not an
// error; only an unreadable or empty workbook fails the whole operation.
type Summary struct {
	Succeeded int      `json:"succeeded"`
	Failed    int      `json:"failed"`
	Errors    []string `json:"errors,omitempty"`
}

type Importer struct {
	db     *gorm.DB
	prov   *provisioning.Service
	logger *slog.Logger
}

func New(db *gorm.DB, prov *provisioning.Service, logger *slog.Logger) *Importer {
	return &Importer{db: db, prov: prov, logger: logger}
}

// Import processes rows in input order. Per row: create or fetch the user
// by email, upsert the census profile, issue a setup token (replacing any
// existing one), and send the setup email, all in one transaction.
// Re-importing an email updates the existing records instead of
// duplicating them.
func (im *Importer) Import(ctx context.Context, rows []MemberRow) (*Summary, error) {
	if len(rows) == 0 {
		return nil, ErrEmptyWorkbook
	}

	summary := &Summary{}
	for _, row := range rows {
		if err := row.Validate(); err != nil {
			summary.Failed++
			summary.Errors = append(summary.Errors,
				fmt.Sprintf("row %d (%s): %v", row.Position, row.Identity(), err))
			continue
		}

		if err := im.importRow(ctx, row); err != nil {
			im.logger.Error("import row failed", "row", row.Position, "email", row.Email, "error", err)
			summary.Failed++
			summary.Errors = append(summary.Errors,
				fmt.Sprintf("row %d (%s): %v", row.Position, row.Identity(), err))
			continue
		}

		summary.Succeeded++
	}

	return summary, nil
}

func (im *Importer) importRow(ctx context.Context, row MemberRow) error {
	return im.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var user models.User
		err := tx.Where("email = ?", row.Email).First(&user).Error
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			user = models.User{
				Email:        row.Email,
				PasswordHash: nil, // set via token redemption
				Role:         models.RoleMember,
				IsActive:     true,
			}
			if err := tx.Create(&user).Error; err != nil {
				return err
			}
		case err != nil:
			return err
		}

		input := provisioning.ProfileInput{
			Title:      row.Title,
			FirstName:  row.FirstName,
			MiddleName: row.MiddleName,
			Surname:    row.Surname,
			Gender:     row.Gender,
		}

		var profile models.Profile
		err = tx.Where("user_id = ?", user.ID).First(&profile).Error
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			input.Apply(&profile, user.ID, user.Email)
			if err := tx.Create(&profile).Error; err != nil {
				return err
			}
		case err != nil:
			return err
		default:
			input.Apply(&profile, user.ID, user.Email)
			if err := tx.Save(&profile).Error; err != nil {
				return err
			}
		}

		return im.prov.Issue(ctx, tx, &user, row.FirstName)
	})
}
