package models

import (
	"time"

	"gorm.io/datatypes"
)

type Batch struct {
	ID             string         `gorm:"primaryKey;size:36" json:"id"`
	Filename       string         `json:"filename"`
	Path           string         `json:"path"`
	Format         string         `json:"format"`
	Columns        datatypes.JSON `json:"columns"`
	RowCount       int            `json:"row_count"`
	TokensAssigned int            `json:"tokens_assigned"`
	Active         bool           `gorm:"index" json:"active"`
	UploadedAt     time.Time      `gorm:"index" json:"uploaded_at"`
}
