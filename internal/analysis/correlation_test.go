package analysis

import (
	"math"
	"testing"

	"goeda/domain/core"
	"goeda/domain/table"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCorrelation(t *testing.T) {
	tbl := build(t, []string{"x", "label", "up", "down", "flat"},
		[]table.Value{n(1), s("a"), n(2), n(30), n(5)},
		[]table.Value{n(2), s("b"), n(4), n(20), n(5)},
		[]table.Value{n(3), s("c"), n(6), n(10), n(5)},
		[]table.Value{n(4), s("d"), table.Missing(), n(0), n(5)},
	)

	corr, err := Correlation(tbl)
	require.NoError(t, err)
	assert.Equal(t, []string{"x", "up", "down", "flat"}, corr.Labels)
	assert.Equal(t, 4, corr.Size())

	assert.InDelta(t, 1, corr.At(0, 0), 1e-9)
	assert.InDelta(t, 1, corr.At(0, 1), 1e-9, "pairwise-complete rows only")
	assert.InDelta(t, -1, corr.At(0, 2), 1e-9)
	assert.InDelta(t, corr.At(0, 2), corr.At(2, 0), 1e-12)
	assert.True(t, math.IsNaN(corr.At(0, 3)), "zero variance")
	assert.True(t, math.IsNaN(corr.At(3, 3)))

	a, b, r, ok := corr.Strongest()
	require.True(t, ok)
	assert.NotEqual(t, a, b)
	assert.NotContains(t, []string{a, b}, "flat")
	assert.InDelta(t, 1, math.Abs(r), 1e-9)
}

func TestCorrelationNeedsTwoColumns(t *testing.T) {
	_, err := Correlation(build(t, []string{"x", "y"}, []table.Value{n(1), s("a")}))
	require.Error(t, err)
	assert.ErrorIs(t, err, core.ErrInsufficientData)
}
