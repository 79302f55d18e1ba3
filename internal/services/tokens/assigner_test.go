package tokens

import (
	"os"
	"path/filepath"
	"testing"

	"payee-confirmation-backend/internal/batchfile"
	"payee-confirmation-backend/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func sequence(tokens ...string) Generator {
	i := 0
	return func() string {
		t := tokens[i%len(tokens)]
		i++
		return t
	}
}

func TestNewToken(t *testing.T) {
	seen := make(map[string]struct{})
	for i := 0; i < 1000; i++ {
		tok := NewToken()
		require.Len(t, tok, Length)
		seen[tok] = struct{}{}
	}
	assert.Greater(t, len(seen), 990)
}

func TestAssign_FillsOnlyMissingIDs(t *testing.T) {
	rows := []models.BatchRow{
		{Name: "Alice"},
		{ID: "keep0001", Name: "Bob"},
		{Name: "Carol"},
	}

	n := NewAssignerWithGenerator(sequence("aaaaaaaa", "bbbbbbbb")).Assign(rows)

	assert.Equal(t, 2, n)
	assert.Equal(t, "aaaaaaaa", rows[0].ID)
	assert.Equal(t, "keep0001", rows[1].ID)
	assert.Equal(t, "bbbbbbbb", rows[2].ID)
}

func TestAssign_RegeneratesOnCollision(t *testing.T) {
	rows := []models.BatchRow{
		{ID: "aaaaaaaa"},
		{},
		{},
	}

	n := NewAssignerWithGenerator(sequence("aaaaaaaa", "bbbbbbbb", "bbbbbbbb", "cccccccc")).Assign(rows)

	assert.Equal(t, 2, n)
	assert.Equal(t, []string{"aaaaaaaa", "bbbbbbbb", "cccccccc"}, []string{rows[0].ID, rows[1].ID, rows[2].ID})
}

func TestAssign_FullyTokenizedIsUnchanged(t *testing.T) {
	rows := []models.BatchRow{{ID: "aaaaaaaa"}, {ID: "bbbbbbbb"}}

	n := NewAssigner().Assign(rows)

	assert.Zero(t, n)
	assert.Equal(t, "aaaaaaaa", rows[0].ID)
	assert.Equal(t, "bbbbbbbb", rows[1].ID)
}

func TestAssign_UniqueAcrossLargeBatch(t *testing.T) {
	rows := make([]models.BatchRow, 5000)

	n := NewAssigner().Assign(rows)

	require.Equal(t, len(rows), n)
	seen := make(map[string]struct{}, len(rows))
	for _, r := range rows {
		require.Len(t, r.ID, Length)
		seen[r.ID] = struct{}{}
	}
	assert.Len(t, seen, len(rows))
}

func TestAssignFile_RewritesOnce(t *testing.T) {
	path := filepath.Join(t.TempDir(), "payees.csv")
	require.NoError(t, os.WriteFile(path, []byte("Author,E-mail,Title,Fee\nAlice,a@x.com,T1,100\nBob,b@x.com,T2,200\n"), 0o644))

	a := NewAssigner()
	first, err := a.AssignFile(path)
	require.NoError(t, err)
	assert.Equal(t, 2, first.Assigned)

	table, _, err := batchfile.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"id", "Author", "E-mail", "Title", "Fee"}, table.Header)
	assert.Equal(t, first.Rows[0].ID, table.Records[0][0])
	assert.Equal(t, first.Rows[1].ID, table.Records[1][0])

	before, err := os.ReadFile(path)
	require.NoError(t, err)

	second, err := a.AssignFile(path)
	require.NoError(t, err)
	assert.Zero(t, second.Assigned)
	assert.Equal(t, first.Rows, second.Rows)

	after, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, before, after)
}

func TestAssignFile_XLSX(t *testing.T) {
	path := filepath.Join(t.TempDir(), "payees.xlsx")
	require.NoError(t, batchfile.WriteFile(path, batchfile.FormatXLSX, &batchfile.Table{
		Header:  []string{"Author", "E-mail", "Title", "Fee"},
		Records: [][]string{{"Alice", "a@x.com", "T1", "100"}},
	}))

	res, err := NewAssignerWithGenerator(sequence("ab12cd34")).AssignFile(path)
	require.NoError(t, err)
	assert.Equal(t, 1, res.Assigned)

	table, format, err := batchfile.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, batchfile.FormatXLSX, format)
	rows, err := table.Rows()
	require.NoError(t, err)
	assert.Equal(t, []models.BatchRow{{ID: "ab12cd34", Name: "Alice", Email: "a@x.com", Title: "T1", Fee: 100}}, rows)
}

func TestAssignFile_InvalidBatchIsNotRewritten(t *testing.T) {
	path := filepath.Join(t.TempDir(), "payees.csv")
	content := []byte("Author,Title\nAlice,T1\n")
	require.NoError(t, os.WriteFile(path, content, 0o644))

	_, err := NewAssigner().AssignFile(path)
	require.ErrorIs(t, err, batchfile.ErrMissingColumns)

	after, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, content, after)
}

func TestAssign_SkipsReservedTokens(t *testing.T) {
	rows := []models.BatchRow{{}, {ID: "aaaaaaaa"}}
	reserved := func(token string) bool { return token == "aaaaaaaa" || token == "bbbbbbbb" }

	a := NewAssignerWithGenerator(sequence("aaaaaaaa", "bbbbbbbb", "cccccccc")).WithReserved(reserved)
	n := a.Assign(rows)

	assert.Equal(t, 1, n)
	assert.Equal(t, "cccccccc", rows[0].ID)
	assert.Equal(t, "aaaaaaaa", rows[1].ID, "existing ids are kept even when reserved")
}

func TestWithReserved_LeavesOriginalUntouched(t *testing.T) {
	base := NewAssignerWithGenerator(sequence("aaaaaaaa", "bbbbbbbb"))
	_ = base.WithReserved(func(string) bool { return true })

	rows := []models.BatchRow{{}}
	base.Assign(rows)

	assert.Equal(t, "aaaaaaaa", rows[0].ID)
}

func TestAssignFile_KeepsWorkbookSheetsAndCellTypes(t *testing.T) {
	path := filepath.Join(t.TempDir(), "payees.xlsx")
	f := excelize.NewFile()
	require.NoError(t, f.SetSheetName("Sheet1", "Payees"))
	_, err := f.NewSheet("Notes")
	require.NoError(t, err)
	require.NoError(t, f.SetSheetRow("Payees", "A1", &[]interface{}{"Author", "E-mail", "Title", "Fee", "Pages"}))
	require.NoError(t, f.SetSheetRow("Payees", "A2", &[]interface{}{"Alice", "a@x.com", "T1", 100, 12}))
	require.NoError(t, f.SaveAs(path))
	require.NoError(t, f.Close())

	res, err := NewAssignerWithGenerator(sequence("ab12cd34")).AssignFile(path)
	require.NoError(t, err)
	assert.Equal(t, 1, res.Assigned)
	assert.Equal(t, []string{"id", "Author", "E-mail", "Title", "Fee", "Pages"}, res.Table.Header)

	out, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer out.Close()

	assert.Equal(t, []string{"Payees", "Notes"}, out.GetSheetList())
	id, err := out.GetCellValue("Payees", "A2")
	require.NoError(t, err)
	assert.Equal(t, "ab12cd34", id)
	pages, err := out.GetCellValue("Payees", "F2")
	require.NoError(t, err)
	assert.Equal(t, "12", pages)
	pagesType, err := out.GetCellType("Payees", "F2")
	require.NoError(t, err)
	assert.NotEqual(t, excelize.CellTypeSharedString, pagesType)
}

func TestAssignFile_KeepsTabDelimiter(t *testing.T) {
	path := filepath.Join(t.TempDir(), "payees.csv")
	require.NoError(t, os.WriteFile(path, []byte("Author\tE-mail\tTitle\tFee\nAlice\ta@x.com\tT1\t100\n"), 0o644))

	_, err := NewAssignerWithGenerator(sequence("ab12cd34")).AssignFile(path)
	require.NoError(t, err)

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "id\tAuthor\tE-mail\tTitle\tFee\nab12cd34\tAlice\ta@x.com\tT1\t100\n", string(content))
}
