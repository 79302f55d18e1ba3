package repository

import (
	"context"
	"errors"

	"payee-confirmation-backend/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type SubmissionRepository struct {
	db *gorm.DB
}

func NewSubmissionRepository(db *gorm.DB) *SubmissionRepository {
	return &SubmissionRepository{db: db}
}

// Insert writes the submission unless one with the same id already exists,
// and reports whether a row was written. The check and the write are a
// single statement guarded by the primary key.
func (r *SubmissionRepository) Insert(ctx context.Context, s *models.Submission) (bool, error) {
	result := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "id"}},
			DoNothing: true,
		}).
		Create(s)
	if result.Error != nil {
		if IsDuplicateKeyErr(result.Error) {
			return false, nil
		}
		return false, result.Error
	}
	return result.RowsAffected == 1, nil
}

// List returns every submission in insertion order.
func (r *SubmissionRepository) List(ctx context.Context) ([]models.Submission, error) {
	var submissions []models.Submission
	err := r.db.WithContext(ctx).
		Order("created_at ASC").
		Order("id ASC").
		Find(&submissions).Error
	return submissions, err
}

// IDs returns the token of every submission.
func (r *SubmissionRepository) IDs(ctx context.Context) ([]string, error) {
	var ids []string
	err := r.db.WithContext(ctx).Model(&models.Submission{}).Pluck("id", &ids).Error
	return ids, err
}

// Get returns the submission for id, or nil when there is none.
func (r *SubmissionRepository) Get(ctx context.Context, id string) (*models.Submission, error) {
	var submission models.Submission
	err := r.db.WithContext(ctx).First(&submission, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &submission, nil
}
