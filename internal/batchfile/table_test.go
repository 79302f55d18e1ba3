package batchfile

import (
	"bytes"
	"strings"
	"testing"

	"payee-confirmation-backend/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decodeCSVString(t *testing.T, s string) *Table {
	t.Helper()
	table, err := Decode(FormatCSV, strings.NewReader(s))
	require.NoError(t, err)
	return table
}

func TestRows_MapsRequiredColumns(t *testing.T) {
	table := decodeCSVString(t, "Author,E-mail,Title,Fee\nAlice,a@x.com,T1,100\nBob,b@x.com,T2,\"1,200\"\n")

	rows, err := table.Rows()
	require.NoError(t, err)
	assert.Equal(t, []models.BatchRow{
		{Name: "Alice", Email: "a@x.com", Title: "T1", Fee: 100},
		{Name: "Bob", Email: "b@x.com", Title: "T2", Fee: 1200},
	}, rows)
}

func TestRows_HeadersAreCaseInsensitive(t *testing.T) {
	table := decodeCSVString(t, " author , e-mail ,TITLE,fee,ID\nAlice,a@x.com,T1,100.0,ab12cd34\n")

	rows, err := table.Rows()
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "ab12cd34", rows[0].ID)
	assert.Equal(t, int64(100), rows[0].Fee)
}

func TestRows_MissingColumns(t *testing.T) {
	table := decodeCSVString(t, "Author,Title\nAlice,T1\n")

	_, err := table.Rows()
	require.ErrorIs(t, err, ErrMissingColumns)
	assert.Contains(t, err.Error(), "E-mail")
	assert.Contains(t, err.Error(), "Fee")
	assert.True(t, IsValidation(err))
}

func TestRows_EmptyFileHasNoColumns(t *testing.T) {
	table := decodeCSVString(t, "")

	_, err := table.Rows()
	assert.ErrorIs(t, err, ErrMissingColumns)
}

func TestRows_HeaderOnlyIsAnEmptyBatch(t *testing.T) {
	table := decodeCSVString(t, "Author,E-mail,Title,Fee\n")

	rows, err := table.Rows()
	require.NoError(t, err)
	assert.Empty(t, rows)
}

func TestRows_InvalidFee(t *testing.T) {
	cases := map[string]string{
		"negative": "-5",
		"fraction": "10.5",
		"text":     "ten",
		"empty":    "",
	}
	for name, fee := range cases {
		t.Run(name, func(t *testing.T) {
			table := decodeCSVString(t, "Author,E-mail,Title,Fee\nAlice,a@x.com,T1,"+fee+"\n")

			_, err := table.Rows()
			require.ErrorIs(t, err, ErrInvalidFee)
			assert.Contains(t, err.Error(), "row 2")
		})
	}
}

func TestRows_DuplicateID(t *testing.T) {
	table := decodeCSVString(t, "id,Author,E-mail,Title,Fee\nab12cd34,Alice,a@x.com,T1,1\nab12cd34,Bob,b@x.com,T2,2\n")

	_, err := table.Rows()
	assert.ErrorIs(t, err, ErrDuplicateID)
}

func TestDecode_SkipsBlankLinesAndBOM(t *testing.T) {
	table := decodeCSVString(t, "\ufeffAuthor,E-mail,Title,Fee\n,,,\nAlice,a@x.com,T1,1\n\n")

	assert.Equal(t, "Author", table.Header[0])
	assert.Len(t, table.Records, 1)
}

func TestDecode_TabDelimited(t *testing.T) {
	table := decodeCSVString(t, "Author\tE-mail\tTitle\tFee\nAlice\ta@x.com\tT1\t7\n")

	rows, err := table.Rows()
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, int64(7), rows[0].Fee)
}

func TestWithIDs_PutsIDFirstAndKeepsOtherColumns(t *testing.T) {
	table := decodeCSVString(t, "Author,E-mail,Title,Fee,Note\nAlice,a@x.com,T1,1,first\nBob,b@x.com,T2,2,\n")
	rows, err := table.Rows()
	require.NoError(t, err)
	rows[0].ID = "aaaaaaaa"
	rows[1].ID = "bbbbbbbb"

	out := table.WithIDs(rows)

	assert.Equal(t, []string{"id", "Author", "E-mail", "Title", "Fee", "Note"}, out.Header)
	assert.Equal(t, []string{"aaaaaaaa", "Alice", "a@x.com", "T1", "1", "first"}, out.Records[0])
	assert.Equal(t, []string{"bbbbbbbb", "Bob", "b@x.com", "T2", "2", ""}, out.Records[1])
}

func TestWithIDs_MovesExistingIDColumn(t *testing.T) {
	table := decodeCSVString(t, "Author,id,E-mail,Title,Fee\nAlice,,a@x.com,T1,1\n")
	rows, err := table.Rows()
	require.NoError(t, err)
	rows[0].ID = "aaaaaaaa"

	out := table.WithIDs(rows)

	assert.Equal(t, []string{"id", "Author", "E-mail", "Title", "Fee"}, out.Header)
	assert.Equal(t, []string{"aaaaaaaa", "Alice", "a@x.com", "T1", "1"}, out.Records[0])
}

func TestXLSX_EncodeDecode(t *testing.T) {
	in := &Table{
		Header:  []string{"id", "Author", "E-mail", "Title", "Fee"},
		Records: [][]string{{"ab12cd34", "Alice", "a@x.com", "T1", "100"}},
	}

	var buf bytes.Buffer
	require.NoError(t, Encode(FormatXLSX, &buf, in))

	out, err := Decode(FormatXLSX, &buf)
	require.NoError(t, err)
	rows, err := out.Rows()
	require.NoError(t, err)
	assert.Equal(t, []models.BatchRow{{ID: "ab12cd34", Name: "Alice", Email: "a@x.com", Title: "T1", Fee: 100}}, rows)
}

func TestDecode_CorruptXLSX(t *testing.T) {
	_, err := Decode(FormatXLSX, strings.NewReader("not a zip"))
	assert.ErrorIs(t, err, ErrMalformed)
}

func TestFormatOf(t *testing.T) {
	f, err := FormatOf("payees.XLSX")
	require.NoError(t, err)
	assert.Equal(t, FormatXLSX, f)

	f, err = FormatOf("/tmp/payees.csv")
	require.NoError(t, err)
	assert.Equal(t, FormatCSV, f)

	_, err = FormatOf("payees.xls")
	assert.ErrorIs(t, err, ErrUnsupportedFormat)
}
