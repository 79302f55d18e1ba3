package models

import "time"

// Submission is the banking detail a payee confirmed for one token.
// The primary key is the token, so a second insert for the same id is rejected.
type Submission struct {
	ID          string    `gorm:"primaryKey;size:64" json:"id"`
	Name        string    `json:"name"`
	Email       string    `json:"email"`
	Title       string    `json:"title"`
	Fee         int64     `json:"fee"`
	Bank        string    `json:"bank"`
	Account     string    `json:"account"`
	AccountName string    `json:"account_name"`
	SubmittedAt time.Time `json:"submitted_at"`
	CreatedAt   time.Time `gorm:"index" json:"-"`
}
