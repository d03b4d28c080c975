// Package dataset merges cleaned tables on a shared key column
package dataset

import (
	"fmt"
	"strings"
	"time"

	"goeda/domain/table"
	"goeda/internal"
	"goeda/internal/errors"
)

// MergeConfig holds configuration for merge operations
type MergeConfig struct {
	Key         string `yaml:"key,omitempty" json:"key,omitempty"` // empty: first column common to all tables
	LeftSuffix  string `yaml:"left_suffix,omitempty" json:"left_suffix,omitempty"`
	RightSuffix string `yaml:"right_suffix,omitempty" json:"right_suffix,omitempty"`
}

// DefaultMergeConfig returns the pandas-style _x/_y suffixes and no fixed key
func DefaultMergeConfig() MergeConfig {
	return MergeConfig{LeftSuffix: "_x", RightSuffix: "_y"}
}

// MergeResult contains the result of a merge operation
type MergeResult struct {
	Table         *table.Table  `json:"-"`
	Key           string        `json:"key"`
	InputRows     []int         `json:"input_rows"`
	RowCount      int           `json:"row_count"`
	ColumnCount   int           `json:"column_count"`
	ExecutionTime time.Duration `json:"execution_time"`
}

// Merger handles dataset merging operations
type Merger struct {
	config MergeConfig
	logger *internal.Logger
}

// NewMerger creates a new dataset merger
func NewMerger(config MergeConfig, logger *internal.Logger) *Merger {
	defaults := DefaultMergeConfig()
	if config.LeftSuffix == "" {
		config.LeftSuffix = defaults.LeftSuffix
	}
	if config.RightSuffix == "" {
		config.RightSuffix = defaults.RightSuffix
	}
	if logger == nil {
		logger = internal.DefaultLogger
	}
	return &Merger{config: config, logger: logger}
}

// Merge inner-joins all tables left to right on the configured or discovered key
func (m *Merger) Merge(tables ...*table.Table) (*MergeResult, error) {
	startTime := time.Now()
	if len(tables) == 0 {
		return nil, errors.InvalidInput("no tables to merge")
	}

	key := m.config.Key
	if key == "" {
		common := CommonColumns(tables...)
		if len(common) == 0 {
			return nil, errors.NoCommonColumn()
		}
		key = common[0]
	}

	result := &MergeResult{Key: key}
	for _, t := range tables {
		result.InputRows = append(result.InputRows, t.Len())
	}

	m.logger.Info("[Merger] Merging %d tables on %q", len(tables), key)

	merged := tables[0]
	if !merged.HasColumn(key) {
		return nil, errors.MissingColumn(key)
	}
	for _, right := range tables[1:] {
		next, err := m.innerMerge(merged, right, key)
		if err != nil {
			return nil, err
		}
		m.logger.Debug("[Merger] %s + %s: %d rows", merged.Name, right.Name, next.Len())
		merged = next
	}
	if len(tables) == 1 {
		merged = merged.Clone()
	}

	result.Table = merged
	result.RowCount = merged.Len()
	result.ColumnCount = merged.Width()
	result.ExecutionTime = time.Since(startTime)

	m.logger.Info("[Merger] Merge completed: %d rows, %d columns in %v", result.RowCount, result.ColumnCount, result.ExecutionTime)
	return result, nil
}

// CommonColumns returns the columns present in every table, in the first table's order
func CommonColumns(tables ...*table.Table) []string {
	if len(tables) == 0 {
		return nil
	}
	var common []string
	for _, col := range tables[0].Columns {
		inAll := true
		for _, t := range tables[1:] {
			if !t.HasColumn(col) {
				inAll = false
				break
			}
		}
		if inAll {
			common = append(common, col)
		}
	}
	return common
}

// InnerMerge joins left and right on key with the default suffixes
func InnerMerge(left, right *table.Table, key string) (*table.Table, error) {
	return NewMerger(DefaultMergeConfig(), nil).innerMerge(left, right, key)
}

// MergeAll folds InnerMerge over tables; an empty key selects the first common column
func MergeAll(tables []*table.Table, key string) (*table.Table, error) {
	config := DefaultMergeConfig()
	config.Key = key
	result, err := NewMerger(config, nil).Merge(tables...)
	if err != nil {
		return nil, err
	}
	return result.Table, nil
}

// innerMerge keeps left row order; each left row pairs with every matching
// right row in right order. Missing keys never match.
func (m *Merger) innerMerge(left, right *table.Table, key string) (*table.Table, error) {
	leftKey := left.ColumnIndex(key)
	if leftKey < 0 {
		return nil, errors.MissingColumn(key)
	}
	rightKey := right.ColumnIndex(key)
	if rightKey < 0 {
		return nil, errors.MissingColumn(key)
	}

	columns := make([]string, 0, left.Width()+right.Width()-1)
	for _, col := range left.Columns {
		if col != key && right.HasColumn(col) {
			col += m.config.LeftSuffix
		}
		columns = append(columns, col)
	}
	rightCols := make([]int, 0, right.Width()-1)
	for j, col := range right.Columns {
		if j == rightKey {
			continue
		}
		if left.HasColumn(col) {
			col += m.config.RightSuffix
		}
		columns = append(columns, col)
		rightCols = append(rightCols, j)
	}
	if dup := firstDuplicate(columns); dup != "" {
		return nil, errors.ConfigInvalid(fmt.Sprintf("merged column %q would be ambiguous", dup))
	}

	index := make(map[string][]int, right.Len())
	for i, row := range right.Rows {
		if k, ok := table.CellKey(row[rightKey]); ok {
			index[k] = append(index[k], i)
		}
	}

	out := table.New(mergedName(left.Name, right.Name), columns)
	for _, lrow := range left.Rows {
		k, ok := table.CellKey(lrow[leftKey])
		if !ok {
			continue
		}
		for _, ri := range index[k] {
			row := make([]table.Value, 0, len(columns))
			row = append(row, lrow...)
			for _, j := range rightCols {
				row = append(row, right.Rows[ri][j])
			}
			if err := out.AppendRow(row); err != nil {
				return nil, errors.Wrap(err, "building merged row")
			}
		}
	}
	return out, nil
}

func mergedName(left, right string) string {
	if left == "" {
		return right
	}
	if right == "" {
		return left
	}
	return left + "+" + right
}

func firstDuplicate(columns []string) string {
	seen := make(map[string]bool, len(columns))
	for _, col := range columns {
		if seen[col] {
			return col
		}
		seen[col] = true
	}
	return ""
}

// Describe renders a one-line account of a merge for logs and reports
func (r *MergeResult) Describe() string {
	rows := make([]string, len(r.InputRows))
	for i, n := range r.InputRows {
		rows[i] = fmt.Sprint(n)
	}
	return fmt.Sprintf("inner merge on %q: %s -> %d rows", r.Key, strings.Join(rows, " x "), r.RowCount)
}
