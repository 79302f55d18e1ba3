package models

// BatchRow is one payee of an uploaded batch. It is read from the batch file
// and never stored in the database.
type BatchRow struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Title string `json:"title"`
	Fee   int64  `json:"fee"`
}
