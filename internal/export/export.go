package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"payee-confirmation-backend/internal/services/reconciliation"

	"github.com/xuri/excelize/v2"
)

type Format string

const (
	FormatCSV  Format = "csv"
	FormatXLSX Format = "xlsx"
)

// ParseFormat accepts "csv" or "xlsx"; empty means xlsx.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "xlsx":
		return FormatXLSX, nil
	case "csv":
		return FormatCSV, nil
	default:
		return "", fmt.Errorf("unsupported export format %q", s)
	}
}

func (f Format) ContentType() string {
	if f == FormatCSV {
		return "text/csv; charset=utf-8"
	}
	return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
}

func (f Format) Extension() string {
	return "." + string(f)
}

// Write renders res. withStatus adds the leading status column used by the
// reconciled export; the pending export leaves it out.
func Write(w io.Writer, format Format, res reconciliation.Result, withStatus bool) error {
	switch format {
	case FormatCSV:
		return WriteCSV(w, res, withStatus)
	case FormatXLSX:
		return WriteXLSX(w, res, withStatus)
	default:
		return fmt.Errorf("unsupported export format %q", format)
	}
}

func WriteCSV(w io.Writer, res reconciliation.Result, withStatus bool) error {
	writer := csv.NewWriter(w)
	if err := writer.Write(res.Header(withStatus)); err != nil {
		return err
	}
	for _, row := range res.Rows {
		if err := writer.Write(record(row, withStatus)); err != nil {
			return err
		}
	}
	writer.Flush()
	return writer.Error()
}

const sheetName = "Reconciliation"

var statusFill = map[reconciliation.Status]string{
	reconciliation.StatusResponded: "#E2EFDA",
	reconciliation.StatusPending:   "#FFF2CC",
}

// WriteXLSX writes a single sheet with a bold frozen header, the fee as a
// number and, when withStatus is set, a status cell coloured by status.
func WriteXLSX(w io.Writer, res reconciliation.Result, withStatus bool) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), sheetName); err != nil {
		return err
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font:   &excelize.Font{Bold: true},
		Fill:   excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"#DDEBF7"}},
		Border: []excelize.Border{{Type: "bottom", Color: "#9BC2E6", Style: 1}},
	})
	if err != nil {
		return err
	}
	statusStyles := make(map[reconciliation.Status]int, len(statusFill))
	for status, color := range statusFill {
		id, err := f.NewStyle(&excelize.Style{
			Fill: excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{color}},
		})
		if err != nil {
			return err
		}
		statusStyles[status] = id
	}

	header := res.Header(withStatus)
	widths := make([]int, len(header))
	track := func(i int, v string) {
		if n := utf8.RuneCountInString(v); n > widths[i] {
			widths[i] = n
		}
	}

	headerCells := make([]interface{}, len(header))
	for i, h := range header {
		headerCells[i] = h
		track(i, h)
	}
	if err := f.SetSheetRow(sheetName, "A1", &headerCells); err != nil {
		return err
	}
	last, err := excelize.CoordinatesToCellName(len(header), 1)
	if err != nil {
		return err
	}
	if err := f.SetCellStyle(sheetName, "A1", last, headerStyle); err != nil {
		return err
	}

	feeCol := indexOf(header, "fee")
	for n, row := range res.Rows {
		values := record(row, withStatus)
		cells := make([]interface{}, len(values))
		for i, v := range values {
			cells[i] = v
			track(i, v)
		}
		cells[feeCol] = row.Fee

		ref, err := excelize.CoordinatesToCellName(1, n+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheetName, ref, &cells); err != nil {
			return err
		}
		if withStatus {
			if err := f.SetCellStyle(sheetName, ref, ref, statusStyles[row.Status]); err != nil {
				return err
			}
		}
	}

	for i, width := range widths {
		col, err := excelize.ColumnNumberToName(i + 1)
		if err != nil {
			return err
		}
		if err := f.SetColWidth(sheetName, col, col, float64(min(width, 60)+2)); err != nil {
			return err
		}
	}
	err = f.SetPanes(sheetName, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	})
	if err != nil {
		return err
	}

	return f.Write(w)
}

func record(row reconciliation.Row, withStatus bool) []string {
	if !withStatus {
		return row.Values()
	}
	return append([]string{string(row.Status)}, row.Values()...)
}

func indexOf(header []string, name string) int {
	for i, h := range header {
		if h == name {
			return i
		}
	}
	return -1
}
