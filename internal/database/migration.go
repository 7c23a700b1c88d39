package database

import (
	"fmt"

	"github.com/hunzan/working-hours-e/internal/models"

	"gorm.io/gorm"
)

// AutoMigrate runs database schema migrations for all models.
func AutoMigrate(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&models.Teacher{},
		&models.Case{},
		&models.CaseService{},
		&models.Session{},
	); err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}
	return nil
}
