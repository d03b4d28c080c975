package analysis

import (
	"math"
	"sort"

	"goeda/domain/core"
	"goeda/domain/table"
	"goeda/internal/errors"

	"github.com/montanaflynn/stats"
)

// ColumnSummary holds describe statistics for one numeric column
type ColumnSummary struct {
	Column   string  `json:"column"`
	Count    int     `json:"count"`
	Mean     float64 `json:"mean"`
	Std      float64 `json:"std"`
	Min      float64 `json:"min"`
	Q25      float64 `json:"q25"`
	Median   float64 `json:"median"`
	Q75      float64 `json:"q75"`
	Max      float64 `json:"max"`
	Skewness float64 `json:"skewness"`
	Outliers int     `json:"outliers"`
}

// Description is the describe table of a whole table
type Description struct {
	Table   string          `json:"table"`
	Rows    int             `json:"rows"`
	Columns []ColumnSummary `json:"columns"`
}

// DescribeStatistics lists the row labels of a describe table, in order
var DescribeStatistics = []string{"count", "mean", "std", "min", "25%", "50%", "75%", "max"}

// Values returns the statistics in DescribeStatistics order
func (c ColumnSummary) Values() []float64 {
	return []float64{float64(c.Count), c.Mean, c.Std, c.Min, c.Q25, c.Median, c.Q75, c.Max}
}

// Describe summarizes every numeric column of t
func Describe(t *table.Table) (*Description, error) {
	cols := t.NumericColumns()
	if len(cols) == 0 {
		return nil, errors.AnalysisFailed("describe "+t.Name, core.ErrInsufficientData)
	}

	desc := &Description{Table: t.Name, Rows: t.Len()}
	for _, col := range cols {
		data, err := t.Floats(col)
		if err != nil {
			return nil, errors.AnalysisFailed("describe "+col, err)
		}
		summary, err := SummarizeColumn(col, data)
		if err != nil {
			return nil, errors.AnalysisFailed("describe "+col, err)
		}
		desc.Columns = append(desc.Columns, summary)
	}
	return desc, nil
}

// SummarizeColumn computes describe statistics over non-missing values
func SummarizeColumn(name string, data []float64) (ColumnSummary, error) {
	summary := ColumnSummary{Column: name, Count: len(data)}
	if len(data) == 0 {
		return summary, core.ErrInsufficientData
	}

	mean, err := stats.Mean(data)
	if err != nil {
		return summary, err
	}
	min, err := stats.Min(data)
	if err != nil {
		return summary, err
	}
	max, err := stats.Max(data)
	if err != nil {
		return summary, err
	}

	// Sample standard deviation, undefined for a single value
	std := math.NaN()
	if len(data) > 1 {
		if std, err = stats.StandardDeviationSample(data); err != nil {
			return summary, err
		}
	}

	sorted := append([]float64(nil), data...)
	sort.Float64s(sorted)

	summary.Mean = mean
	summary.Std = std
	summary.Min = min
	summary.Max = max
	summary.Q25 = quantile(sorted, 0.25)
	summary.Median = quantile(sorted, 0.5)
	summary.Q75 = quantile(sorted, 0.75)
	summary.Skewness = skewness(data, mean, std)
	summary.Outliers = countOutliers(data, summary.Q25, summary.Q75)
	return summary, nil
}

// quantile interpolates linearly between closest ranks of sorted data
func quantile(sorted []float64, p float64) float64 {
	if len(sorted) == 0 {
		return math.NaN()
	}
	pos := p * float64(len(sorted)-1)
	lo := math.Floor(pos)
	hi := math.Ceil(pos)
	if lo == hi {
		return sorted[int(lo)]
	}
	return sorted[int(lo)] + (pos-lo)*(sorted[int(hi)]-sorted[int(lo)])
}

// skewness computes sample skewness using the adjusted Fisher-Pearson coefficient
func skewness(data []float64, mean, stdDev float64) float64 {
	if len(data) < 3 || stdDev == 0 || math.IsNaN(stdDev) {
		return 0
	}

	n := float64(len(data))
	sumCubedDeviations := 0.0
	for _, x := range data {
		deviation := x - mean
		sumCubedDeviations += deviation * deviation * deviation
	}

	// m3 / s^3 with the sample standard deviation, scaled by n^2/((n-1)(n-2))
	return sumCubedDeviations / (stdDev * stdDev * stdDev) * n / ((n - 1) * (n - 2))
}

// countOutliers counts values outside 1.5 IQR of the quartiles
func countOutliers(data []float64, q25, q75 float64) int {
	iqr := q75 - q25
	lowerBound := q25 - 1.5*iqr
	upperBound := q75 + 1.5*iqr

	outlierCount := 0
	for _, x := range data {
		if x < lowerBound || x > upperBound {
			outlierCount++
		}
	}
	return outlierCount
}
