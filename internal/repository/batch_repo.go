package repository

import (
	"context"
	"errors"

	"payee-confirmation-backend/internal/models"

	"gorm.io/gorm"
)

type BatchRepository struct {
	db *gorm.DB
}

func NewBatchRepository(db *gorm.DB) *BatchRepository {
	return &BatchRepository{db: db}
}

// Activate stores b as the active batch and deactivates the previous one.
func (r *BatchRepository) Activate(ctx context.Context, b *models.Batch) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.Model(&models.Batch{}).
			Where("active = ?", true).
			Update("active", false).Error
		if err != nil {
			return err
		}
		b.Active = true
		return tx.Create(b).Error
	})
}

// Active returns the active batch, or nil when nothing was ever uploaded.
func (r *BatchRepository) Active(ctx context.Context) (*models.Batch, error) {
	var batch models.Batch
	err := r.db.WithContext(ctx).
		Where("active = ?", true).
		Order("uploaded_at DESC").
		First(&batch).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &batch, nil
}

// List returns every uploaded batch, newest first.
func (r *BatchRepository) List(ctx context.Context) ([]models.Batch, error) {
	var batches []models.Batch
	err := r.db.WithContext(ctx).Order("uploaded_at DESC").Find(&batches).Error
	return batches, err
}
