package analysis

import (
	"testing"
	"time"

	"goeda/domain/core"
	"goeda/domain/table"
	"goeda/internal/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func s(v string) table.Value  { return table.NewString(v) }
func n(v float64) table.Value { return table.NewNumeric(v) }

func build(t *testing.T, columns []string, rows ...[]table.Value) *table.Table {
	t.Helper()
	tbl := table.New("test", columns)
	for _, row := range rows {
		require.NoError(t, tbl.AppendRow(row))
	}
	return tbl
}

func salesTable(t *testing.T) *table.Table {
	return build(t, []string{"Region", "Month", "Total Revenue"},
		[]table.Value{s("Europe"), n(10), n(100)},
		[]table.Value{s("Asia"), n(2), n(50)},
		[]table.Value{s("Europe"), n(2), n(25)},
		[]table.Value{s("Africa"), n(10), table.Missing()},
		[]table.Value{table.Missing(), n(1), n(5)},
	)
}

func TestGroupBy(t *testing.T) {
	tbl := salesTable(t)

	tests := []struct {
		name   string
		by     string
		agg    Aggregation
		keys   []string
		values []float64
	}{
		{"sum by month sorts numerically", "Month", AggSum, []string{"1", "2", "10"}, []float64{5, 75, 100}},
		{"mean by region skips missing", "Region", AggMean, []string{"Asia", "Europe"}, []float64{50, 62.5}},
		{"count by region", "Region", AggCount, []string{"Asia", "Europe"}, []float64{1, 2}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			series, err := GroupBy(tbl, tt.by, "Total Revenue", tt.agg)
			require.NoError(t, err)
			assert.Equal(t, tt.keys, series.Labels())
			assert.InDeltaSlice(t, tt.values, series.Values, 1e-9)
			assert.Equal(t, tt.by, series.Dimension)
		})
	}
}

func TestGroupByDateKeys(t *testing.T) {
	later := time.Date(2012, 3, 1, 0, 0, 0, 0, time.UTC)
	earlier := time.Date(2010, 1, 1, 0, 0, 0, 0, time.UTC)
	tbl := build(t, []string{"d", "v"},
		[]table.Value{table.NewDate(later), n(1)},
		[]table.Value{table.NewDate(earlier), n(2)},
	)
	series, err := GroupBy(tbl, "d", "v", AggSum)
	require.NoError(t, err)
	assert.Equal(t, []string{"2010-01-01", "2012-03-01"}, series.Labels())
}

func TestGroupByMissingColumn(t *testing.T) {
	_, err := GroupBy(salesTable(t), "Country", "Total Revenue", AggSum)
	require.Error(t, err)
	assert.True(t, core.IsColumnNotFound(err))

	_, err = GroupBy(salesTable(t), "Region", "Profit", AggSum)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Profit")
}

func TestSeriesSortByValue(t *testing.T) {
	series := &Series{
		Keys:   []table.Value{s("a"), s("b"), s("c"), s("d")},
		Values: []float64{2, 5, 2, 1},
	}
	series.SortByValue(true)
	assert.Equal(t, []string{"b", "a", "c", "d"}, series.Labels())
	assert.Equal(t, []float64{5, 2, 2, 1}, series.Values)

	series.SortByValue(false)
	assert.Equal(t, []string{"d", "a", "c", "b"}, series.Labels())
}

func TestValueCounts(t *testing.T) {
	tbl := build(t, []string{"country"},
		[]table.Value{s("UK")},
		[]table.Value{s("USA")},
		[]table.Value{s("UK")},
		[]table.Value{table.Missing()},
		[]table.Value{s("Canada")},
	)
	counts, err := ValueCounts(tbl, "country")
	require.NoError(t, err)
	assert.Equal(t, []string{"UK", "Canada", "USA"}, counts.Labels())
	assert.Equal(t, []float64{2, 1, 1}, counts.Values)
}

func TestCrossCount(t *testing.T) {
	tbl := build(t, []string{"sex", "target"},
		[]table.Value{n(1), n(0)},
		[]table.Value{n(1), n(1)},
		[]table.Value{n(0), n(1)},
		[]table.Value{n(1), n(1)},
	)
	ct, err := CrossCount(tbl, "sex", "target")
	require.NoError(t, err)
	assert.Equal(t, []string{"0", "1"}, ct.RowLabels())
	assert.Equal(t, []string{"0", "1"}, ct.ColLabels())
	assert.Equal(t, [][]float64{{0, 1}, {1, 2}}, ct.Counts)

	_, err = CrossCount(tbl, "sex", "cp")
	assert.Equal(t, errors.CodeConfigInvalid, errors.GetCode(err))
}

func TestParseAggregation(t *testing.T) {
	for in, want := range map[string]Aggregation{"": AggSum, "SUM": AggSum, "avg": AggMean, "count": AggCount} {
		got, err := ParseAggregation(in)
		require.NoError(t, err)
		assert.Equal(t, want, got, in)
	}
	_, err := ParseAggregation("median")
	assert.Error(t, err)
}
