package analysis

import (
	"testing"

	"goeda/domain/core"
	"goeda/domain/table"
	"goeda/internal/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKeyMetrics(t *testing.T) {
	m, err := KeyMetrics(salesTable(t), "Total Revenue")
	require.NoError(t, err)

	assert.Equal(t, "Total Revenue", m.Measure)
	assert.InDelta(t, 180.0, m.Total, 1e-9)
	assert.InDelta(t, 45.0, m.Mean, 1e-9)
	assert.Equal(t, 5, m.Rows)
	assert.Equal(t, 4, m.Values)
}

func TestKeyMetricsErrors(t *testing.T) {
	_, err := KeyMetrics(salesTable(t), "Profit")
	assert.Equal(t, errors.CodeConfigInvalid, errors.GetCode(err))

	empty := build(t, []string{"x"}, []table.Value{table.Missing()})
	_, err = KeyMetrics(empty, "x")
	assert.Equal(t, errors.CodeAnalysisFailed, errors.GetCode(err))
	assert.ErrorIs(t, err, core.ErrInsufficientData)
}
