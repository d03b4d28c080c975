package cleaner

import (
	"fmt"
	"strings"

	"goeda/adapters/datareadiness/coercer"
	"goeda/domain/table"
	"goeda/internal"
	"goeda/internal/errors"
)

// Config declares how one table is cleaned. Numeric columns accept only plain
// numbers unless LenientNumeric allows currency symbols, thousands groups,
// (negatives), percent signs and decimal commas.
type Config struct {
	NormalizeColumns   string   `yaml:"normalize_columns,omitempty" json:"normalize_columns,omitempty"`
	RequiredColumns    []string `yaml:"required_columns,omitempty" json:"required_columns,omitempty"`
	NumericColumns     []string `yaml:"numeric_columns,omitempty" json:"numeric_columns,omitempty"`
	DateColumns        []string `yaml:"date_columns,omitempty" json:"date_columns,omitempty"`
	DateColumnPattern  string   `yaml:"date_column_pattern,omitempty" json:"date_column_pattern,omitempty"`
	SerialDates        bool     `yaml:"serial_dates,omitempty" json:"serial_dates,omitempty"`
	DeriveCalendarFrom string   `yaml:"derive_calendar_from,omitempty" json:"derive_calendar_from,omitempty"`
	CalendarPrefix     string   `yaml:"calendar_prefix,omitempty" json:"calendar_prefix,omitempty"`
	LenientNumeric     bool     `yaml:"lenient_numeric,omitempty" json:"lenient_numeric,omitempty"`
}

const NormalizeLower = "lower"

// Validate checks option values that do not depend on the data
func (c Config) Validate() error {
	switch c.NormalizeColumns {
	case "", NormalizeLower:
	default:
		return errors.ConfigInvalid(fmt.Sprintf("unknown normalize_columns mode %q", c.NormalizeColumns))
	}
	return nil
}

// CalendarColumns returns the names of the derived year, month and year-month columns
func (c Config) CalendarColumns() (year, month, yearMonth string) {
	return c.CalendarPrefix + "Year", c.CalendarPrefix + "Month", c.CalendarPrefix + "YearMonth"
}

// OperationKind names one cleaning step
type OperationKind string

const (
	OpNormalizeColumns OperationKind = "normalize_columns"
	OpDropDuplicates   OperationKind = "drop_duplicates"
	OpForwardFill      OperationKind = "forward_fill"
	OpCoerceDate       OperationKind = "coerce_date"
	OpCoerceNumeric    OperationKind = "coerce_numeric"
	OpDeriveCalendar   OperationKind = "derive_calendar"
	OpDropRows         OperationKind = "drop_rows"
)

// Operation records one step applied to a table
type Operation struct {
	Kind   OperationKind `json:"kind"`
	Column string        `json:"column,omitempty"`
	Count  int           `json:"count"`
	Reason string        `json:"reason"`
}

// Summary describes what a Clean call changed
type Summary struct {
	Table             string         `json:"table"`
	InputRows         int            `json:"input_rows"`
	DuplicatesRemoved int            `json:"duplicates_removed"`
	CellsFilled       int            `json:"cells_filled"`
	CoercionFailures  map[string]int `json:"coercion_failures"`
	RowsDropped       int            `json:"rows_dropped"`
	OutputRows        int            `json:"output_rows"`
	Operations        []Operation    `json:"operations"`
}

func (s *Summary) record(kind OperationKind, column string, count int, reason string) {
	s.Operations = append(s.Operations, Operation{Kind: kind, Column: column, Count: count, Reason: reason})
}

// Cleaner deduplicates, fills and coerces tables
type Cleaner struct {
	config  Config
	coercer *coercer.TypeCoercer
	logger  *internal.Logger
}

// New creates a cleaner for one configuration
func New(config Config, logger *internal.Logger) *Cleaner {
	if logger == nil {
		logger = internal.DefaultLogger
	}
	cc := coercer.DefaultCoercionConfig()
	cc.SerialDates = config.SerialDates
	cc.LenientNumeric = config.LenientNumeric
	return &Cleaner{
		config:  config,
		coercer: coercer.NewTypeCoercer(cc),
		logger:  logger,
	}
}

// Clean returns a cleaned copy of t; t itself is left untouched
func (c *Cleaner) Clean(t *table.Table) (*table.Table, *Summary, error) {
	if t == nil {
		return nil, nil, errors.InvalidInput("nil table")
	}
	if err := c.config.Validate(); err != nil {
		return nil, nil, err
	}

	out := t.Clone()
	summary := &Summary{
		Table:            t.Name,
		InputRows:        t.Len(),
		CoercionFailures: map[string]int{},
	}

	if c.config.NormalizeColumns == NormalizeLower {
		out.RenameColumns(func(name string) string { return strings.ToLower(strings.TrimSpace(name)) })
		summary.record(OpNormalizeColumns, "", out.Width(), "lower-case column names")
	}

	if err := c.checkRequired(out); err != nil {
		return nil, nil, err
	}

	out, summary.DuplicatesRemoved = dropDuplicates(out)
	summary.record(OpDropDuplicates, "", summary.DuplicatesRemoved, "exact duplicate rows")

	summary.CellsFilled += c.forwardFill(out, summary)

	for _, col := range c.dateColumns(out) {
		failed := c.coerceColumn(out, col, c.coercer.CoerceDate)
		summary.CoercionFailures[col] += failed
		summary.record(OpCoerceDate, col, failed, "unparseable dates set missing")
	}

	if c.config.DeriveCalendarFrom != "" {
		if err := c.deriveCalendar(out); err != nil {
			return nil, nil, err
		}
		summary.record(OpDeriveCalendar, c.config.DeriveCalendarFrom, out.Len(), "year, month and year-month parts")
	}

	numeric := c.presentColumns(out, c.config.NumericColumns, "numeric")
	for _, col := range numeric {
		failed := c.coerceColumn(out, col, c.coercer.CoerceNumeric)
		summary.CoercionFailures[col] += failed
		summary.record(OpCoerceNumeric, col, failed, "non-numeric values set missing")
	}

	if len(numeric) > 0 {
		before := out.Len()
		out = dropMissing(out, numeric)
		summary.RowsDropped = before - out.Len()
		summary.record(OpDropRows, strings.Join(numeric, ","), summary.RowsDropped, "missing numeric value")
	}

	summary.CellsFilled += c.forwardFill(out, summary)
	summary.OutputRows = out.Len()

	c.logger.Info("[Cleaner] %s: %d -> %d rows (%d duplicates, %d dropped, %d cells filled)",
		t.Name, summary.InputRows, summary.OutputRows, summary.DuplicatesRemoved, summary.RowsDropped, summary.CellsFilled)
	for col, n := range summary.CoercionFailures {
		if n > 0 {
			c.logger.Debug("[Cleaner] %s: %d values in %q could not be coerced", t.Name, n, col)
		}
	}

	return out, summary, nil
}

func (c *Cleaner) checkRequired(t *table.Table) error {
	required := append([]string{}, c.config.RequiredColumns...)
	if c.config.DeriveCalendarFrom != "" {
		required = append(required, c.config.DeriveCalendarFrom)
	}
	for _, col := range required {
		if !t.HasColumn(col) {
			return errors.MissingColumn(col)
		}
	}
	return nil
}

// presentColumns filters declared columns down to those in t, warning about the rest
func (c *Cleaner) presentColumns(t *table.Table, declared []string, kind string) []string {
	present := make([]string, 0, len(declared))
	for _, col := range declared {
		if !t.HasColumn(col) {
			c.logger.Warn("[Cleaner] %s: declared %s column %q not found, skipping", t.Name, kind, col)
			continue
		}
		present = append(present, col)
	}
	return present
}

// dateColumns returns explicit date columns plus those matching the pattern, in table order
func (c *Cleaner) dateColumns(t *table.Table) []string {
	explicit := make(map[string]bool)
	for _, col := range c.presentColumns(t, c.config.DateColumns, "date") {
		explicit[col] = true
	}
	pattern := strings.ToLower(c.config.DateColumnPattern)

	var cols []string
	for _, col := range t.Columns {
		if explicit[col] || (pattern != "" && strings.Contains(strings.ToLower(col), pattern)) {
			cols = append(cols, col)
		}
	}
	return cols
}

// coerceColumn applies fn to every cell and returns how many non-missing cells became missing
func (c *Cleaner) coerceColumn(t *table.Table, col string, fn func(table.Value) table.Value) int {
	idx := t.ColumnIndex(col)
	failed := 0
	for _, row := range t.Rows {
		before := row[idx]
		row[idx] = fn(before)
		if !before.IsMissing() && row[idx].IsMissing() {
			failed++
		}
	}
	return failed
}

func (c *Cleaner) deriveCalendar(t *table.Table) error {
	source, err := t.Column(c.config.DeriveCalendarFrom)
	if err != nil {
		return errors.MissingColumn(c.config.DeriveCalendarFrom)
	}

	years := make([]table.Value, len(source))
	months := make([]table.Value, len(source))
	yearMonths := make([]table.Value, len(source))
	for i, v := range source {
		v = c.coercer.CoerceDate(v)
		if v.IsMissing() {
			years[i], months[i], yearMonths[i] = table.Missing(), table.Missing(), table.Missing()
			continue
		}
		years[i] = table.NewNumeric(float64(v.Time.Year()))
		months[i] = table.NewNumeric(float64(v.Time.Month()))
		yearMonths[i] = table.NewString(v.Time.Format("2006-01"))
	}

	year, month, yearMonth := c.config.CalendarColumns()
	for _, col := range []struct {
		name   string
		values []table.Value
	}{{year, years}, {month, months}, {yearMonth, yearMonths}} {
		if err := t.SetColumn(col.name, col.values); err != nil {
			return errors.Wrapf(err, "deriving %s", col.name)
		}
	}
	return nil
}

// forwardFill propagates the last non-missing value down each column
func (c *Cleaner) forwardFill(t *table.Table, summary *Summary) int {
	total := 0
	for j, col := range t.Columns {
		var last table.Value
		have := false
		filled := 0
		for _, row := range t.Rows {
			if row[j].IsMissing() {
				if have {
					row[j] = last
					filled++
				}
				continue
			}
			last = row[j]
			have = true
		}
		if filled > 0 {
			summary.record(OpForwardFill, col, filled, "missing value replaced by preceding value")
		}
		total += filled
	}
	return total
}

// dropDuplicates keeps the first occurrence of every exact row
func dropDuplicates(t *table.Table) (*table.Table, int) {
	seen := make(map[string]bool, t.Len())
	out := t.Filter(func(row []table.Value) bool {
		key := table.RowKey(row)
		if seen[key] {
			return false
		}
		seen[key] = true
		return true
	})
	return out, t.Len() - out.Len()
}

func dropMissing(t *table.Table, columns []string) *table.Table {
	idx := make([]int, len(columns))
	for i, col := range columns {
		idx[i] = t.ColumnIndex(col)
	}
	return t.Filter(func(row []table.Value) bool {
		for _, j := range idx {
			if row[j].IsMissing() {
				return false
			}
		}
		return true
	})
}
