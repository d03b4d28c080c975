package analysis

import (
	"goeda/domain/core"
	"goeda/domain/table"
	"goeda/internal/errors"

	"github.com/montanaflynn/stats"
	"gonum.org/v1/gonum/floats"
)

// Metrics are the headline numbers of one measure
type Metrics struct {
	Measure string  `json:"measure"`
	Total   float64 `json:"total"`
	Mean    float64 `json:"mean"`
	Rows    int     `json:"rows"`
	Values  int     `json:"values"`
}

// KeyMetrics totals and averages measure over the non-missing cells of t
func KeyMetrics(t *table.Table, measure string) (*Metrics, error) {
	data, err := t.Floats(measure)
	if err != nil {
		return nil, errors.MissingColumn(measure)
	}
	if len(data) == 0 {
		return nil, errors.AnalysisFailed("key metrics of "+measure, core.ErrInsufficientData)
	}

	mean, err := stats.Mean(data)
	if err != nil {
		return nil, errors.AnalysisFailed("key metrics of "+measure, err)
	}

	return &Metrics{
		Measure: measure,
		Total:   floats.Sum(data),
		Mean:    mean,
		Rows:    t.Len(),
		Values:  len(data),
	}, nil
}
