package analysis

import (
	"math"
	"testing"

	"goeda/domain/core"
	"goeda/domain/table"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDescribe(t *testing.T) {
	tbl := build(t, []string{"age", "name", "chol"},
		[]table.Value{n(1), s("a"), n(200)},
		[]table.Value{n(2), s("b"), table.Missing()},
		[]table.Value{n(3), s("c"), n(240)},
		[]table.Value{n(4), s("d"), n(220)},
	)

	desc, err := Describe(tbl)
	require.NoError(t, err)
	require.Len(t, desc.Columns, 2)
	assert.Equal(t, 4, desc.Rows)

	age := desc.Columns[0]
	assert.Equal(t, "age", age.Column)
	assert.Equal(t, 4, age.Count)
	assert.InDelta(t, 2.5, age.Mean, 1e-9)
	assert.InDelta(t, 1.2909944, age.Std, 1e-6)
	assert.Equal(t, 1.0, age.Min)
	assert.InDelta(t, 1.75, age.Q25, 1e-9)
	assert.InDelta(t, 2.5, age.Median, 1e-9)
	assert.InDelta(t, 3.25, age.Q75, 1e-9)
	assert.Equal(t, 4.0, age.Max)
	assert.InDelta(t, 0, age.Skewness, 1e-9)
	assert.Len(t, age.Values(), len(DescribeStatistics))

	chol := desc.Columns[1]
	assert.Equal(t, 3, chol.Count)
	assert.InDelta(t, 220, chol.Median, 1e-9)
}

func TestDescribeNoNumericColumns(t *testing.T) {
	_, err := Describe(build(t, []string{"name"}, []table.Value{s("a")}))
	require.Error(t, err)
	assert.ErrorIs(t, err, core.ErrInsufficientData)
}

func TestSummarizeSingleValue(t *testing.T) {
	summary, err := SummarizeColumn("x", []float64{7})
	require.NoError(t, err)
	assert.True(t, math.IsNaN(summary.Std))
	assert.Equal(t, 7.0, summary.Q25)
	assert.Equal(t, 7.0, summary.Q75)
}

func TestSummarizeOutliers(t *testing.T) {
	summary, err := SummarizeColumn("x", []float64{1, 2, 3, 4, 5, 6, 7, 8, 100})
	require.NoError(t, err)
	assert.Equal(t, 1, summary.Outliers)
	assert.Greater(t, summary.Skewness, 2.0)
}
