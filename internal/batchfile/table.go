package batchfile

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"payee-confirmation-backend/internal/models"
)

// Column headers of a batch file.
const (
	ColumnID     = "id"
	ColumnAuthor = "Author"
	ColumnEmail  = "E-mail"
	ColumnTitle  = "Title"
	ColumnFee    = "Fee"
)

var RequiredColumns = []string{ColumnAuthor, ColumnEmail, ColumnTitle, ColumnFee}

var (
	ErrUnsupportedFormat = errors.New("unsupported batch file format")
	ErrMalformed         = errors.New("malformed batch file")
	ErrMissingColumns    = errors.New("batch is missing required columns")
	ErrInvalidFee        = errors.New("invalid fee")
	ErrDuplicateID       = errors.New("duplicate id in batch")
)

// IsValidation reports whether err describes a bad batch file rather than an
// I/O failure.
func IsValidation(err error) bool {
	return errors.Is(err, ErrUnsupportedFormat) ||
		errors.Is(err, ErrMalformed) ||
		errors.Is(err, ErrMissingColumns) ||
		errors.Is(err, ErrInvalidFee) ||
		errors.Is(err, ErrDuplicateID)
}

// Table is a decoded batch file: the header row followed by the data records.
// Blank records are dropped while decoding, so Records[i] maps to row i of Rows.
type Table struct {
	Header  []string
	Records [][]string

	// comma is the CSV delimiter the file was read with.
	comma rune
	// lines holds the 1-based source row of the header followed by each
	// record. Only decoded tables carry it.
	lines []int
}

// Index returns the position of the named column, matched case-insensitively,
// or -1 when the header lacks it.
func (t *Table) Index(name string) int {
	for i, h := range t.Header {
		if strings.EqualFold(strings.TrimSpace(h), name) {
			return i
		}
	}
	return -1
}

// Rows validates the table and maps every record to a batch row.
func (t *Table) Rows() ([]models.BatchRow, error) {
	idx := make(map[string]int, len(RequiredColumns))
	var missing []string
	for _, col := range RequiredColumns {
		i := t.Index(col)
		if i < 0 {
			missing = append(missing, col)
			continue
		}
		idx[col] = i
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("%w: %s", ErrMissingColumns, strings.Join(missing, ", "))
	}

	idCol := t.Index(ColumnID)
	seen := make(map[string]int, len(t.Records))
	rows := make([]models.BatchRow, 0, len(t.Records))

	for n, rec := range t.Records {
		line := n + 2 // header is line 1

		fee, err := parseFee(cell(rec, idx[ColumnFee]))
		if err != nil {
			return nil, fmt.Errorf("%w on row %d: %v", ErrInvalidFee, line, err)
		}

		row := models.BatchRow{
			Name:  cell(rec, idx[ColumnAuthor]),
			Email: cell(rec, idx[ColumnEmail]),
			Title: cell(rec, idx[ColumnTitle]),
			Fee:   fee,
		}
		if idCol >= 0 {
			row.ID = cell(rec, idCol)
		}
		if row.ID != "" {
			if prev, ok := seen[row.ID]; ok {
				return nil, fmt.Errorf("%w: %q on rows %d and %d", ErrDuplicateID, row.ID, prev, line)
			}
			seen[row.ID] = line
		}

		rows = append(rows, row)
	}

	return rows, nil
}

// WithIDs returns a copy of the table whose first column is id, filled from
// rows. Any existing id column is moved; every other column keeps its values.
func (t *Table) WithIDs(rows []models.BatchRow) *Table {
	idCol := t.Index(ColumnID)

	header := make([]string, 0, len(t.Header)+1)
	header = append(header, ColumnID)
	for i, h := range t.Header {
		if i != idCol {
			header = append(header, h)
		}
	}

	records := make([][]string, len(t.Records))
	for n, rec := range t.Records {
		out := make([]string, 0, len(header))
		if n < len(rows) {
			out = append(out, rows[n].ID)
		} else {
			out = append(out, "")
		}
		for i := range t.Header {
			if i != idCol {
				out = append(out, cell(rec, i))
			}
		}
		records[n] = out
	}

	return &Table{Header: header, Records: records, comma: t.comma}
}

func cell(rec []string, i int) string {
	if i < 0 || i >= len(rec) {
		return ""
	}
	return strings.TrimSpace(rec[i])
}

func parseFee(raw string) (int64, error) {
	s := strings.ReplaceAll(strings.TrimSpace(raw), ",", "")
	if s == "" {
		return 0, errors.New("fee is empty")
	}

	fee, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		// spreadsheets often hand back whole numbers as "1200.0"
		f, ferr := strconv.ParseFloat(s, 64)
		if ferr != nil && !errors.Is(ferr, strconv.ErrRange) || math.IsNaN(f) || f != math.Trunc(f) {
			return 0, fmt.Errorf("%q is not a whole number", raw)
		}
		if f < 0 {
			return 0, fmt.Errorf("%q is negative", raw)
		}
		// 2^63 itself does not fit
		if f >= math.MaxInt64 {
			return 0, fmt.Errorf("%q is too large", raw)
		}
		fee = int64(f)
	}
	if fee < 0 {
		return 0, fmt.Errorf("%q is negative", raw)
	}
	return fee, nil
}

func isBlank(rec []string) bool {
	for _, v := range rec {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}
