package reconciliation

import (
	"strconv"
	"time"

	"payee-confirmation-backend/internal/models"
)

type Status string

const (
	StatusResponded Status = "responded"
	StatusPending   Status = "pending"
)

const (
	StatusColumn      = "status"
	SubmittedAtLayout = "2006-01-02 15:04"
)

// Columns is the union of submission and batch row fields, in export order.
var Columns = []string{"id", "name", "email", "title", "fee", "bank", "account", "account_name", "submitted_at"}

// Row carries every column of Columns. Pending rows leave the
// submission-only fields empty.
type Row struct {
	Status      Status `json:"status"`
	ID          string `json:"id"`
	Name        string `json:"name"`
	Email       string `json:"email"`
	Title       string `json:"title"`
	Fee         int64  `json:"fee"`
	Bank        string `json:"bank"`
	Account     string `json:"account"`
	AccountName string `json:"account_name"`
	SubmittedAt string `json:"submitted_at"`
}

// Values returns the row in Columns order.
func (r Row) Values() []string {
	return []string{
		r.ID,
		r.Name,
		r.Email,
		r.Title,
		strconv.FormatInt(r.Fee, 10),
		r.Bank,
		r.Account,
		r.AccountName,
		r.SubmittedAt,
	}
}

type Summary struct {
	Total     int `json:"total"`
	Responded int `json:"responded"`
	Pending   int `json:"pending"`
}

// Result is responded rows in ledger order followed by pending rows in batch
// order.
type Result struct {
	Rows []Row `json:"rows"`
}

// Header returns the column names, led by status when withStatus is set.
func (r Result) Header(withStatus bool) []string {
	if !withStatus {
		return append([]string(nil), Columns...)
	}
	return append([]string{StatusColumn}, Columns...)
}

func (r Result) Summary() Summary {
	s := Summary{Total: len(r.Rows)}
	for _, row := range r.Rows {
		switch row.Status {
		case StatusResponded:
			s.Responded++
		case StatusPending:
			s.Pending++
		}
	}
	return s
}

// Merge classifies the batch against the ledger. Every submission becomes a
// responded row; every batch row whose id has no submission becomes a
// pending row.
func Merge(batch []models.BatchRow, submissions []models.Submission) Result {
	rows := make([]Row, 0, len(submissions)+len(batch))
	responded := make(map[string]struct{}, len(submissions))

	for _, s := range submissions {
		responded[s.ID] = struct{}{}
		rows = append(rows, respondedRow(s))
	}
	rows = append(rows, pendingRows(batch, responded)...)

	return Result{Rows: rows}
}

// PendingOnly is Merge restricted to pending rows.
func PendingOnly(batch []models.BatchRow, submissions []models.Submission) Result {
	responded := make(map[string]struct{}, len(submissions))
	for _, s := range submissions {
		responded[s.ID] = struct{}{}
	}
	return Result{Rows: pendingRows(batch, responded)}
}

func pendingRows(batch []models.BatchRow, responded map[string]struct{}) []Row {
	rows := make([]Row, 0, len(batch))
	for _, b := range batch {
		if _, ok := responded[b.ID]; ok {
			continue
		}
		rows = append(rows, Row{
			Status: StatusPending,
			ID:     b.ID,
			Name:   b.Name,
			Email:  b.Email,
			Title:  b.Title,
			Fee:    b.Fee,
		})
	}
	return rows
}

func respondedRow(s models.Submission) Row {
	row := Row{
		Status:      StatusResponded,
		ID:          s.ID,
		Name:        s.Name,
		Email:       s.Email,
		Title:       s.Title,
		Fee:         s.Fee,
		Bank:        s.Bank,
		Account:     s.Account,
		AccountName: s.AccountName,
	}
	if !s.SubmittedAt.IsZero() {
		row.SubmittedAt = s.SubmittedAt.In(time.Local).Format(SubmittedAtLayout)
	}
	return row
}
