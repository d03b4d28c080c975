package excel

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"goeda/domain/core"
	"goeda/domain/table"
	apperrors "goeda/internal/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoadCSV(t *testing.T) {
	path := writeFile(t, "sales.csv", "Region,Units Sold,Total Revenue,Order Date\n"+
		"Asia,10,2533.54,5/28/2010\n"+
		"Europe,,unknown,8/22/2012\n"+
		"\n"+
		"Asia,4,100,\n")

	tbl, err := Load(DefaultSourceConfig(path), nil)
	require.NoError(t, err)

	assert.Equal(t, "sales", tbl.Name)
	assert.Equal(t, []string{"Region", "Units Sold", "Total Revenue", "Order Date"}, tbl.Columns)
	assert.Equal(t, 3, tbl.Len())

	units, err := tbl.Column("Units Sold")
	require.NoError(t, err)
	assert.Equal(t, table.ValueTypeNumeric, units[0].Type)
	assert.True(t, units[1].IsMissing())

	// one non-numeric cell keeps the whole column as text
	revenue, err := tbl.Column("Total Revenue")
	require.NoError(t, err)
	assert.Equal(t, table.ValueTypeString, revenue[0].Type)
	assert.Equal(t, "unknown", revenue[1].Str)

	dates, err := tbl.Column("Order Date")
	require.NoError(t, err)
	assert.Equal(t, table.ValueTypeString, dates[0].Type)
	assert.True(t, dates[2].IsMissing())
}

func TestLoadCSVNATokens(t *testing.T) {
	path := writeFile(t, "heart.csv", "age,chol,sex\n63,233,male\nNA,250,N/A\n41,NaN,female\n")

	tbl, err := Load(DefaultSourceConfig(path), nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"age", "chol"}, tbl.NumericColumns())

	age, _ := tbl.Column("age")
	assert.True(t, age[1].IsMissing())
	chol, _ := tbl.Column("chol")
	assert.True(t, chol[2].IsMissing())
	assert.Equal(t, 250.0, chol[1].Num)
	sex, _ := tbl.Column("sex")
	assert.True(t, sex[1].IsMissing())
	assert.Equal(t, 1, tbl.MissingCount("sex"))
}

func TestLoadCSVEmptyFieldRecords(t *testing.T) {
	path := writeFile(t, "gaps.csv", "a,b\n1,2\n,\n\n3,4\n")

	tbl, err := Load(DefaultSourceConfig(path), nil)
	require.NoError(t, err)
	require.Equal(t, 3, tbl.Len(), "empty lines are skipped, records of empty fields are kept")
	assert.True(t, tbl.Rows[1][0].IsMissing())
	assert.True(t, tbl.Rows[1][1].IsMissing())
	assert.Equal(t, []string{"a", "b"}, tbl.NumericColumns())
}

func TestLoadCSVByteOrderMark(t *testing.T) {
	path := writeFile(t, "bom.csv", "\ufeffid,value\n1,2\n")

	tbl, err := Load(DefaultSourceConfig(path), nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"id", "value"}, tbl.Columns)
	assert.Equal(t, 0, tbl.ColumnIndex("id"))
}

func TestLoadCSVHeaderMangling(t *testing.T) {
	path := writeFile(t, "dup.csv", " id ,,id,id\n1,2,3,4\n5,6\n")

	tbl, err := Load(DefaultSourceConfig(path), nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"id", "Unnamed: 1", "id.1", "id.2"}, tbl.Columns)
	assert.Equal(t, 2, tbl.Len())
	assert.True(t, tbl.Rows[1][3].IsMissing(), "short rows are padded")
}

func TestLoadTSVDelimiter(t *testing.T) {
	path := writeFile(t, "heart.tsv", "age\tsex\n63\t1\n37\t1\n")

	tbl, err := Load(DefaultSourceConfig(path), nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"age", "sex"}, tbl.Columns)
	assert.Equal(t, []string{"age", "sex"}, tbl.NumericColumns())
}

func TestLoadXLSX(t *testing.T) {
	path := filepath.Join(t.TempDir(), "entertainer.xlsx")
	f := excelize.NewFile()
	sheet := f.GetSheetName(0)
	require.NoError(t, f.SetSheetRow(sheet, "A1", &[]interface{}{"Entertainer", "Birth Year", "Gender"}))
	require.NoError(t, f.SetSheetRow(sheet, "A2", &[]interface{}{"Adele", 1988, "F"}))
	require.NoError(t, f.SetSheetRow(sheet, "A3", &[]interface{}{"Prince", 1958}))
	_, err := f.NewSheet("Other")
	require.NoError(t, err)
	require.NoError(t, f.SetCellValue("Other", "A1", "ignored"))
	require.NoError(t, f.SaveAs(path))
	require.NoError(t, f.Close())

	tbl, err := Load(DefaultSourceConfig(path), nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"Entertainer", "Birth Year", "Gender"}, tbl.Columns)
	require.Equal(t, 2, tbl.Len())
	assert.Equal(t, 1958.0, tbl.Rows[1][1].Num)
	assert.True(t, tbl.Rows[1][2].IsMissing())

	cfg := DefaultSourceConfig(path)
	cfg.Sheet = "Other"
	other, err := Load(cfg, nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"ignored"}, other.Columns)
	assert.Equal(t, 0, other.Len())
}

func TestLoadFailures(t *testing.T) {
	tests := []struct {
		name     string
		path     func(t *testing.T) string
		sentinel error
	}{
		{
			name: "missing file",
			path: func(t *testing.T) string { return filepath.Join(t.TempDir(), "absent.csv") },
		},
		{
			name:     "unsupported extension",
			path:     func(t *testing.T) string { return writeFile(t, "data.json", "{}") },
			sentinel: core.ErrUnsupportedFormat,
		},
		{
			name:     "empty file",
			path:     func(t *testing.T) string { return writeFile(t, "empty.csv", "\n\n") },
			sentinel: core.ErrEmptyTable,
		},
		{
			name:     "row wider than header",
			path:     func(t *testing.T) string { return writeFile(t, "wide.csv", "a,b\n1,2,3\n") },
			sentinel: core.ErrRowWidth,
		},
		{
			name: "unterminated quote",
			path: func(t *testing.T) string { return writeFile(t, "bad.csv", "a,b\n\"1,2\n") },
		},
		{
			name: "corrupt workbook",
			path: func(t *testing.T) string { return writeFile(t, "bad.xlsx", "not a zip") },
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := tt.path(t)
			tbl, err := Load(DefaultSourceConfig(path), nil)
			require.Error(t, err)
			assert.Nil(t, tbl)
			assert.Equal(t, apperrors.CodeLoadFailed, apperrors.GetCode(err))
			assert.Contains(t, err.Error(), path)
			if tt.sentinel != nil {
				assert.True(t, errors.Is(err, tt.sentinel), "expected %v in %v", tt.sentinel, err)
			}
		})
	}
}

func TestNormalizeHeaders(t *testing.T) {
	assert.Equal(t, []string{"a", "a.1", "a.1.1", "Unnamed: 3"}, normalizeHeaders([]string{"a", "a", "a.1", ""}))
}
