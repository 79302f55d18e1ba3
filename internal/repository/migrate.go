package repository

import (
	"payee-confirmation-backend/internal/models"

	"gorm.io/gorm"
)

func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.Submission{},
		&models.Batch{},
	)
}
