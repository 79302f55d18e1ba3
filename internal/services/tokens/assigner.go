package tokens

import (
	"payee-confirmation-backend/internal/batchfile"
	"payee-confirmation-backend/internal/models"

	"github.com/google/uuid"
)

// Length of a confirmation token.
const Length = 8

// Generator returns a candidate token.
type Generator func() string

// NewToken derives a token from a random 128-bit uuid.
func NewToken() string {
	return uuid.New().String()[:Length]
}

// Reserved reports whether a token is already in use outside the batch,
// typically by a submission recorded for an earlier batch.
type Reserved func(token string) bool

type Assigner struct {
	generate Generator
	reserved Reserved
}

func NewAssigner() *Assigner {
	return &Assigner{generate: NewToken}
}

// NewAssignerWithGenerator is used by tests that need predictable tokens.
func NewAssignerWithGenerator(gen Generator) *Assigner {
	return &Assigner{generate: gen}
}

// WithReserved returns a copy of a that also avoids tokens r reports as taken.
func (a *Assigner) WithReserved(r Reserved) *Assigner {
	c := *a
	c.reserved = r
	return &c
}

// Assign gives every row without an id a fresh token that no other row of the
// batch uses, and returns how many rows it filled. Existing ids are never
// changed, so a fully tokenized batch is left as is.
func (a *Assigner) Assign(rows []models.BatchRow) int {
	taken := make(map[string]struct{}, len(rows))
	for _, r := range rows {
		if r.ID != "" {
			taken[r.ID] = struct{}{}
		}
	}

	assigned := 0
	for i := range rows {
		if rows[i].ID != "" {
			continue
		}
		token := a.generate()
		for a.inUse(taken, token) {
			token = a.generate()
		}
		taken[token] = struct{}{}
		rows[i].ID = token
		assigned++
	}
	return assigned
}

func (a *Assigner) inUse(taken map[string]struct{}, token string) bool {
	if _, dup := taken[token]; dup {
		return true
	}
	return a.reserved != nil && a.reserved(token)
}

type FileResult struct {
	Table    *batchfile.Table
	Rows     []models.BatchRow
	Assigned int
}

// AssignFile tokenizes the batch file at path. The file is rewritten, with id
// as its first column, only when at least one token was assigned.
func (a *Assigner) AssignFile(path string) (*FileResult, error) {
	table, format, err := batchfile.ReadFile(path)
	if err != nil {
		return nil, err
	}
	rows, err := table.Rows()
	if err != nil {
		return nil, err
	}

	assigned := a.Assign(rows)
	if assigned == 0 {
		return &FileResult{Table: table, Rows: rows}, nil
	}

	if err := batchfile.RewriteWithIDs(path, format, table, rows); err != nil {
		return nil, err
	}
	return &FileResult{Table: table.WithIDs(rows), Rows: rows, Assigned: assigned}, nil
}
