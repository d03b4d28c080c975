package report

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"goeda/domain/table"
	"goeda/internal/analysis"

	"github.com/xuri/excelize/v2"
)

// WriteCSV persists a table with its header, replacing any existing file
func WriteCSV(path string, t *table.Table) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0644)
	if err != nil {
		return fmt.Errorf("failed to open file: %w", err)
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	for i, record := range t.Records() {
		if err := writer.Write(record); err != nil {
			return fmt.Errorf("failed to write record %d: %w", i, err)
		}
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		return err
	}
	return file.Close()
}

// ChartKind selects the native spreadsheet chart type
type ChartKind string

const (
	ChartLine ChartKind = "line"
	ChartBar  ChartKind = "bar"
)

// WorkbookChart is a series written to its own sheet with a native chart
type WorkbookChart struct {
	Name   string
	Title  string
	Kind   ChartKind
	Series *analysis.Series
}

// WriteWorkbook writes one sheet per table followed by one sheet per chart
func WriteWorkbook(path string, tables []*table.Table, charts []WorkbookChart) error {
	if len(tables) == 0 && len(charts) == 0 {
		return fmt.Errorf("workbook %s has nothing to write", path)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	f := excelize.NewFile()
	defer f.Close()

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"DDEBF7"}},
	})
	if err != nil {
		return err
	}

	names := newSheetNames()
	first := true
	addSheet := func(name string) (string, error) {
		sheet := names.next(name)
		if first {
			first = false
			return sheet, f.SetSheetName(f.GetSheetName(0), sheet)
		}
		_, err := f.NewSheet(sheet)
		return sheet, err
	}

	for _, t := range tables {
		sheet, err := addSheet(t.Name)
		if err != nil {
			return err
		}
		if err := writeTableSheet(f, sheet, t, headerStyle); err != nil {
			return fmt.Errorf("sheet %s: %w", sheet, err)
		}
	}

	for _, c := range charts {
		if c.Series == nil || c.Series.Len() == 0 {
			continue
		}
		sheet, err := addSheet(c.Name)
		if err != nil {
			return err
		}
		if err := writeChartSheet(f, sheet, c, headerStyle); err != nil {
			return fmt.Errorf("sheet %s: %w", sheet, err)
		}
	}

	f.SetActiveSheet(0)
	return f.SaveAs(path)
}

func writeTableSheet(f *excelize.File, sheet string, t *table.Table, headerStyle int) error {
	header := make([]interface{}, len(t.Columns))
	for i, c := range t.Columns {
		header[i] = c
	}
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return err
	}
	if len(t.Columns) > 0 {
		last, _ := excelize.CoordinatesToCellName(len(t.Columns), 1)
		if err := f.SetCellStyle(sheet, "A1", last, headerStyle); err != nil {
			return err
		}
	}

	for r, row := range t.Rows {
		cells := make([]interface{}, len(row))
		for i, v := range row {
			cells[i] = cellValue(v)
		}
		cell, _ := excelize.CoordinatesToCellName(1, r+2)
		if err := f.SetSheetRow(sheet, cell, &cells); err != nil {
			return err
		}
	}
	return nil
}

func writeChartSheet(f *excelize.File, sheet string, c WorkbookChart, headerStyle int) error {
	s := c.Series
	measure := s.Measure
	if measure == "" {
		measure = string(s.Agg)
	}
	if err := f.SetSheetRow(sheet, "A1", &[]interface{}{s.Dimension, measure}); err != nil {
		return err
	}
	if err := f.SetCellStyle(sheet, "A1", "B1", headerStyle); err != nil {
		return err
	}
	for i := range s.Keys {
		cell, _ := excelize.CoordinatesToCellName(1, i+2)
		if err := f.SetSheetRow(sheet, cell, &[]interface{}{cellValue(s.Keys[i]), s.Values[i]}); err != nil {
			return err
		}
	}

	chartType := excelize.Line
	if c.Kind == ChartBar {
		chartType = excelize.Col
	}
	title := c.Title
	if title == "" {
		title = s.Name
	}
	ref := quoteSheet(sheet)
	lastRow := s.Len() + 1
	return f.AddChart(sheet, "D2", &excelize.Chart{
		Type: chartType,
		Series: []excelize.ChartSeries{{
			Name:       fmt.Sprintf("%s!$B$1", ref),
			Categories: fmt.Sprintf("%s!$A$2:$A$%d", ref, lastRow),
			Values:     fmt.Sprintf("%s!$B$2:$B$%d", ref, lastRow),
		}},
		Title:  []excelize.RichTextRun{{Text: title}},
		Legend: excelize.ChartLegend{Position: "none"},
	})
}

func cellValue(v table.Value) interface{} {
	switch v.Type {
	case table.ValueTypeNumeric:
		return v.Num
	case table.ValueTypeMissing:
		return nil
	default:
		return v.String()
	}
}

func quoteSheet(name string) string {
	return "'" + strings.ReplaceAll(name, "'", "''") + "'"
}

// sheetNames hands out unique names within the 31 character sheet limit
type sheetNames struct {
	used map[string]bool
}

func newSheetNames() *sheetNames {
	return &sheetNames{used: make(map[string]bool)}
}

var sheetNameReplacer = strings.NewReplacer(":", "_", "\\", "_", "/", "_", "?", "_", "*", "_", "[", "(", "]", ")")

func (n *sheetNames) next(name string) string {
	base := strings.Trim(sheetNameReplacer.Replace(strings.TrimSpace(name)), "'")
	if base == "" {
		base = "Sheet"
	}
	base = truncateRunes(base, excelize.MaxSheetNameLength)

	candidate := base
	for i := 2; n.used[strings.ToLower(candidate)]; i++ {
		suffix := fmt.Sprintf(" (%d)", i)
		candidate = truncateRunes(base, excelize.MaxSheetNameLength-len(suffix)) + suffix
	}
	n.used[strings.ToLower(candidate)] = true
	return candidate
}

func truncateRunes(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max])
}
