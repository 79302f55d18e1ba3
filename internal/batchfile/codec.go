package batchfile

import (
	"bufio"
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"payee-confirmation-backend/internal/models"

	"github.com/xuri/excelize/v2"
)

type Format string

const (
	FormatCSV  Format = "csv"
	FormatXLSX Format = "xlsx"
)

// FormatOf picks the codec from the file extension.
func FormatOf(filename string) (Format, error) {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".csv":
		return FormatCSV, nil
	case ".xlsx":
		return FormatXLSX, nil
	default:
		return "", fmt.Errorf("%w: %q (expected .xlsx or .csv)", ErrUnsupportedFormat, filepath.Base(filename))
	}
}

// Decode reads a whole batch file. The first non-blank record is the header.
func Decode(format Format, r io.Reader) (*Table, error) {
	var (
		records [][]string
		comma   = ','
		err     error
	)
	switch format {
	case FormatCSV:
		records, comma, err = decodeCSV(r)
	case FormatXLSX:
		records, err = decodeXLSX(r)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}

	// records[i] is source row i+1; for xlsx that is the sheet row number
	t := &Table{comma: comma}
	for i, rec := range records {
		if isBlank(rec) {
			continue
		}
		t.lines = append(t.lines, i+1)
		if t.Header == nil {
			t.Header = rec
			continue
		}
		t.Records = append(t.Records, rec)
	}
	return t, nil
}

// Encode writes the table in the given format.
func Encode(format Format, w io.Writer, t *Table) error {
	switch format {
	case FormatCSV:
		return encodeCSV(w, t)
	case FormatXLSX:
		return encodeXLSX(w, t)
	default:
		return fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
	}
}

// ReadFile decodes the batch file at path.
func ReadFile(path string) (*Table, Format, error) {
	format, err := FormatOf(path)
	if err != nil {
		return nil, "", err
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, "", err
	}
	defer f.Close()

	t, err := Decode(format, f)
	if err != nil {
		return nil, "", err
	}
	return t, format, nil
}

// WriteFile replaces the batch file at path with t.
func WriteFile(path string, format Format, t *Table) error {
	return replaceFile(path, func(w io.Writer) error {
		return Encode(format, w, t)
	})
}

// RewriteWithIDs stores the ids of rows in the batch file at path, which t
// was decoded from, as its first column. A CSV file is re-encoded with its
// own delimiter. A workbook is edited in place: only the id column of the
// first sheet changes, other sheets, cell types and styles are kept.
func RewriteWithIDs(path string, format Format, t *Table, rows []models.BatchRow) error {
	switch format {
	case FormatCSV:
		return WriteFile(path, format, t.WithIDs(rows))
	case FormatXLSX:
		return replaceFile(path, func(w io.Writer) error {
			return writeXLSXIDs(path, w, t, rows)
		})
	default:
		return fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
	}
}

// replaceFile writes to a temporary file next to path and renames it over
// the original.
func replaceFile(path string, write func(io.Writer) error) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	if err := write(tmp); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}

func decodeCSV(r io.Reader) ([][]string, rune, error) {
	br := bufio.NewReader(r)

	reader := csv.NewReader(br)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	// Sniff the delimiter from the header line
	sample, _ := br.Peek(1024)
	sample = bytes.TrimPrefix(sample, []byte("\xef\xbb\xbf"))
	firstLine, _, _ := bytes.Cut(sample, []byte("\n"))
	if !bytes.Contains(firstLine, []byte(",")) && bytes.Contains(firstLine, []byte("\t")) {
		reader.Comma = '\t'
	}

	records, err := reader.ReadAll()
	if err != nil {
		return nil, 0, err
	}
	if len(records) > 0 && len(records[0]) > 0 {
		records[0][0] = strings.TrimPrefix(records[0][0], "\ufeff")
	}
	return records, reader.Comma, nil
}

func encodeCSV(w io.Writer, t *Table) error {
	writer := csv.NewWriter(w)
	if t.comma != 0 {
		writer.Comma = t.comma
	}
	if err := writer.Write(t.Header); err != nil {
		return err
	}
	if err := writer.WriteAll(t.Records); err != nil {
		return err
	}
	return writer.Error()
}

func decodeXLSX(r io.Reader) ([][]string, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, nil
	}
	return f.GetRows(sheets[0])
}

func encodeXLSX(w io.Writer, t *Table) error {
	f := excelize.NewFile()
	defer f.Close()

	sheet := f.GetSheetName(0)
	feeCol := t.Index(ColumnFee)

	write := func(rowNum int, values []string) error {
		cells := make([]interface{}, len(values))
		for i, v := range values {
			cells[i] = v
			if i == feeCol && rowNum > 1 {
				if n, err := strconv.ParseInt(v, 10, 64); err == nil {
					cells[i] = n
				}
			}
		}
		ref, err := excelize.CoordinatesToCellName(1, rowNum)
		if err != nil {
			return err
		}
		return f.SetSheetRow(sheet, ref, &cells)
	}

	if err := write(1, t.Header); err != nil {
		return err
	}
	for i, rec := range t.Records {
		if err := write(i+2, rec); err != nil {
			return err
		}
	}
	return f.Write(w)
}

// writeXLSXIDs opens the workbook at src, puts id in column A of the first
// sheet and writes the result to w. An existing id column is moved there.
func writeXLSXIDs(src string, w io.Writer, t *Table, rows []models.BatchRow) error {
	if len(t.lines) != len(t.Records)+1 {
		return errors.New("batch table does not come from a decoded workbook")
	}

	f, err := excelize.OpenFile(src)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return fmt.Errorf("%w: workbook has no sheets", ErrMalformed)
	}
	sheet := sheets[0]

	if err := f.InsertCols(sheet, "A", 1); err != nil {
		return err
	}
	if idCol := t.Index(ColumnID); idCol >= 0 {
		// shifted right by the inserted column
		old, err := excelize.ColumnNumberToName(idCol + 2)
		if err != nil {
			return err
		}
		if err := f.RemoveCol(sheet, old); err != nil {
			return err
		}
	}

	set := func(line int, value string) error {
		ref, err := excelize.CoordinatesToCellName(1, line)
		if err != nil {
			return err
		}
		return f.SetCellStr(sheet, ref, value)
	}
	if err := set(t.lines[0], ColumnID); err != nil {
		return err
	}
	for i := range t.Records {
		var id string
		if i < len(rows) {
			id = rows[i].ID
		}
		if err := set(t.lines[i+1], id); err != nil {
			return err
		}
	}
	return f.Write(w)
}
