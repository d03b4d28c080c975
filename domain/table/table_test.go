package table

import (
	"math"
	"testing"
	"time"

	"goeda/domain/core"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleTable(t *testing.T) *Table {
	t.Helper()
	tbl := New("sales", []string{"Region", "Units", "Order Date"})
	day := time.Date(2010, 5, 28, 0, 0, 0, 0, time.UTC)
	require.NoError(t, tbl.AppendRow([]Value{NewString("Asia"), NewNumeric(10), NewDate(day)}))
	require.NoError(t, tbl.AppendRow([]Value{NewString("Europe"), Missing(), NewDate(day.AddDate(0, 1, 0))}))
	require.NoError(t, tbl.AppendRow([]Value{NewString("Asia"), NewNumeric(2.5), Missing()}))
	return tbl
}

func TestValueConstructors(t *testing.T) {
	tests := []struct {
		name    string
		value   Value
		missing bool
		render  string
	}{
		{"empty string is missing", NewString(""), true, ""},
		{"string", NewString("Asia"), false, "Asia"},
		{"integer number", NewNumeric(42), false, "42"},
		{"fractional number", NewNumeric(0.125), false, "0.125"},
		{"NaN is missing", NewNumeric(math.NaN()), true, ""},
		{"infinity is missing", NewNumeric(math.Inf(1)), true, ""},
		{"midnight date", NewDate(time.Date(2012, 1, 2, 0, 0, 0, 0, time.UTC)), false, "2012-01-02"},
		{"date with time", NewDate(time.Date(2012, 1, 2, 13, 4, 5, 0, time.UTC)), false, "2012-01-02 13:04:05"},
		{"zero date is missing", NewDate(time.Time{}), true, ""},
		{"zero value is missing", Value{}, true, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.missing, tt.value.IsMissing())
			assert.Equal(t, tt.render, tt.value.String())
		})
	}
}

func TestValueEqual(t *testing.T) {
	assert.True(t, NewNumeric(1).Equal(NewNumeric(1)))
	assert.False(t, NewNumeric(1).Equal(NewString("1")))
	assert.True(t, Missing().Equal(Value{}))
	assert.False(t, Missing().Equal(NewString("x")))
}

func TestAppendRowEnforcesWidth(t *testing.T) {
	tbl := New("t", []string{"a", "b"})
	err := tbl.AppendRow([]Value{NewString("x")})
	require.Error(t, err)
	assert.ErrorIs(t, err, core.ErrRowWidth)
	assert.Equal(t, 0, tbl.Len())
}

func TestColumnAccess(t *testing.T) {
	tbl := sampleTable(t)

	assert.Equal(t, 1, tbl.ColumnIndex("Units"))
	assert.False(t, tbl.HasColumn("Profit"))

	units, err := tbl.Column("Units")
	require.NoError(t, err)
	assert.Len(t, units, 3)
	assert.True(t, units[1].IsMissing())

	_, err = tbl.Column("Profit")
	assert.True(t, core.IsColumnNotFound(err))

	floats, err := tbl.Floats("Units")
	require.NoError(t, err)
	assert.Equal(t, []float64{10, 2.5}, floats)

	assert.Equal(t, 1, tbl.MissingCount("Order Date"))
}

func TestSetColumnReplacesOrAppends(t *testing.T) {
	tbl := sampleTable(t)

	require.NoError(t, tbl.SetColumn("Units", []Value{NewNumeric(1), NewNumeric(2), NewNumeric(3)}))
	assert.Equal(t, 3, tbl.Width())
	assert.Equal(t, "2", tbl.Rows[1][1].String())

	require.NoError(t, tbl.SetColumn("Flag", []Value{NewString("y"), NewString("n"), Missing()}))
	assert.Equal(t, []string{"Region", "Units", "Order Date", "Flag"}, tbl.Columns)
	for _, row := range tbl.Rows {
		assert.Len(t, row, 4)
	}

	assert.Error(t, tbl.SetColumn("Short", []Value{NewString("x")}))
}

func TestCloneIsDeep(t *testing.T) {
	tbl := sampleTable(t)
	clone := tbl.Clone()
	clone.Rows[0][0] = NewString("Africa")
	clone.Columns[0] = "Area"

	assert.Equal(t, "Asia", tbl.Rows[0][0].String())
	assert.Equal(t, "Region", tbl.Columns[0])
}

func TestNumericColumns(t *testing.T) {
	tbl := sampleTable(t)
	require.NoError(t, tbl.SetColumn("Empty", []Value{Missing(), Missing(), Missing()}))
	assert.Equal(t, []string{"Units"}, tbl.NumericColumns())
}

func TestColumnType(t *testing.T) {
	tbl := sampleTable(t)
	require.NoError(t, tbl.SetColumn("Empty", []Value{Missing(), Missing(), Missing()}))
	require.NoError(t, tbl.SetColumn("Mixed", []Value{NewNumeric(1), NewString("x"), Missing()}))

	assert.Equal(t, ValueTypeString, tbl.ColumnType("Region"))
	assert.Equal(t, ValueTypeNumeric, tbl.ColumnType("Units"))
	assert.Equal(t, ValueTypeDate, tbl.ColumnType("Order Date"))
	assert.Equal(t, ValueTypeMissing, tbl.ColumnType("Empty"))
	assert.Equal(t, ValueTypeString, tbl.ColumnType("Mixed"))
	assert.Equal(t, ValueTypeMissing, tbl.ColumnType("nope"))
}

func TestRowKeyDistinguishesTypes(t *testing.T) {
	a := RowKey([]Value{NewNumeric(1), NewString("x")})
	b := RowKey([]Value{NewString("1"), NewString("x")})
	c := RowKey([]Value{NewNumeric(1), NewString("x")})
	assert.NotEqual(t, a, b)
	assert.Equal(t, a, c)

	_, ok := CellKey(Missing())
	assert.False(t, ok)
}

func TestRowKeyCellBoundaries(t *testing.T) {
	tests := []struct {
		name string
		a, b []Value
	}{
		{"separator inside text", []Value{NewString("a\x1fsb"), NewString("c")}, []Value{NewString("a"), NewString("b\x1fsc")}},
		{"shifted text", []Value{NewString("ab"), NewString("c")}, []Value{NewString("a"), NewString("bc")}},
		{"digits that look like a prefix", []Value{NewString("1:x"), NewString("y")}, []Value{NewString("1"), NewString("x1:y")}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.NotEqual(t, RowKey(tt.a), RowKey(tt.b))
		})
	}
}

func TestRecordsAndFingerprint(t *testing.T) {
	tbl := sampleTable(t)
	records := tbl.Records()
	require.Len(t, records, 4)
	assert.Equal(t, []string{"Region", "Units", "Order Date"}, records[0])
	assert.Equal(t, []string{"Europe", "", "2010-06-28"}, records[2])

	clone := tbl.Clone()
	assert.Equal(t, tbl.Fingerprint(), clone.Fingerprint())
	clone.Rows[2][1] = NewNumeric(3)
	assert.NotEqual(t, tbl.Fingerprint(), clone.Fingerprint())
}

func TestFilter(t *testing.T) {
	tbl := sampleTable(t)
	asia := tbl.Filter(func(row []Value) bool { return row[0].Str == "Asia" })
	assert.Equal(t, 2, asia.Len())
	assert.Equal(t, 3, tbl.Len())
}
