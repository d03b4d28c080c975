package analysis

import (
	"math"

	"goeda/domain/core"
	"goeda/domain/table"
	"goeda/internal/errors"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"
)

// CorrelationMatrix holds pairwise Pearson coefficients between numeric columns
type CorrelationMatrix struct {
	Labels []string
	Matrix *mat.SymDense
}

// At returns the coefficient for columns i and j
func (c *CorrelationMatrix) At(i, j int) float64 {
	return c.Matrix.At(i, j)
}

// Size returns the number of columns correlated
func (c *CorrelationMatrix) Size() int {
	return len(c.Labels)
}

// Strongest returns the off-diagonal pair with the largest absolute coefficient
func (c *CorrelationMatrix) Strongest() (a, b string, r float64, ok bool) {
	best := -1.0
	for i := 0; i < c.Size(); i++ {
		for j := i + 1; j < c.Size(); j++ {
			v := c.At(i, j)
			if math.IsNaN(v) {
				continue
			}
			if math.Abs(v) > best {
				best = math.Abs(v)
				a, b, r, ok = c.Labels[i], c.Labels[j], v, true
			}
		}
	}
	return a, b, r, ok
}

// Correlation computes Pearson correlation over all numeric columns using
// pairwise-complete observations. Pairs without variance are NaN.
func Correlation(t *table.Table) (*CorrelationMatrix, error) {
	labels := t.NumericColumns()
	if len(labels) < 2 {
		return nil, errors.AnalysisFailed("correlation of "+t.Name+" needs at least two numeric columns", core.ErrInsufficientData)
	}

	columns := make([][]table.Value, len(labels))
	for i, col := range labels {
		values, err := t.Column(col)
		if err != nil {
			return nil, errors.AnalysisFailed("correlation", err)
		}
		columns[i] = values
	}

	sym := mat.NewSymDense(len(labels), nil)
	for i := range labels {
		for j := i; j < len(labels); j++ {
			sym.SetSym(i, j, pairwiseCorrelation(columns[i], columns[j]))
		}
	}

	return &CorrelationMatrix{Labels: labels, Matrix: sym}, nil
}

func pairwiseCorrelation(a, b []table.Value) float64 {
	x := make([]float64, 0, len(a))
	y := make([]float64, 0, len(b))
	for i := range a {
		xv, okx := a[i].Float()
		yv, oky := b[i].Float()
		if okx && oky {
			x = append(x, xv)
			y = append(y, yv)
		}
	}
	if len(x) < 2 {
		return math.NaN()
	}
	if stat.Variance(x, nil) == 0 || stat.Variance(y, nil) == 0 {
		return math.NaN()
	}
	return stat.Correlation(x, y, nil)
}
