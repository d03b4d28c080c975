package excel

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"goeda/adapters/datareadiness/coercer"
	"goeda/domain/core"
	"goeda/domain/table"
	"goeda/internal"
	apperrors "goeda/internal/errors"

	"github.com/xuri/excelize/v2"
)

// DataReader handles reading Excel and CSV files
type DataReader struct {
	config  SourceConfig
	coercer *coercer.TypeCoercer
	logger  *internal.Logger
}

// NewDataReader creates a new data reader that handles both Excel and CSV files
func NewDataReader(config SourceConfig, logger *internal.Logger) *DataReader {
	if logger == nil {
		logger = internal.DefaultLogger
	}
	return &DataReader{
		config:  config,
		coercer: coercer.NewTypeCoercer(config.CoercionConfig),
		logger:  logger,
	}
}

// Load reads one source with a throwaway reader
func Load(config SourceConfig, logger *internal.Logger) (*table.Table, error) {
	return NewDataReader(config, logger).Load()
}

// Load reads the file and builds a typed table. Every failure is returned as
// a LOAD_FAILED error naming the path.
func (r *DataReader) Load() (*table.Table, error) {
	data, err := r.ReadData()
	if err != nil {
		return nil, apperrors.LoadFailed(r.config.FilePath, err)
	}

	t, err := r.BuildTable(data)
	if err != nil {
		return nil, apperrors.LoadFailed(r.config.FilePath, err)
	}

	r.logger.Info("[DataReader] Data loaded successfully from %s", r.config.FilePath)
	r.logger.Debug("[DataReader] Columns: %s", strings.Join(t.Columns, ", "))
	return t, nil
}

// ReadData reads data from Excel or CSV files into structured format
func (r *DataReader) ReadData() (*SourceData, error) {
	format, err := r.config.ResolveFormat()
	if err != nil {
		return nil, fmt.Errorf("%w: %s", err, r.config.FilePath)
	}

	r.logger.Debug("[DataReader] Starting to read %s file: %s", format, r.config.FilePath)

	if _, err := os.Stat(r.config.FilePath); err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%s file not found: %s", strings.ToUpper(string(format)), r.config.FilePath)
		}
		return nil, err
	}

	switch format {
	case FormatCSV:
		return r.readCSVData()
	case FormatXLSX:
		return r.readExcelData()
	default:
		return nil, fmt.Errorf("%w: %s", core.ErrUnsupportedFormat, format)
	}
}

// readExcelData reads one worksheet; the first sheet unless one is configured
func (r *DataReader) readExcelData() (*SourceData, error) {
	startTime := time.Now()
	f, err := excelize.OpenFile(r.config.FilePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open Excel file: %w", err)
	}
	defer f.Close()
	r.logger.Trace("[DataReader] Excel file opened in %.2fms", float64(time.Since(startTime).Nanoseconds())/1e6)

	sheet := r.config.Sheet
	if sheet == "" {
		sheets := f.GetSheetList()
		if len(sheets) == 0 {
			return nil, fmt.Errorf("workbook has no sheets")
		}
		sheet = sheets[0]
	}

	readStart := time.Now()
	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %s: %w", sheet, err)
	}
	r.logger.Debug("[DataReader] %s read in %.2fms (%d rows)", sheet, float64(time.Since(readStart).Nanoseconds())/1e6, len(rows))

	// formatted but empty cells below the data pad the sheet with blank rows
	for len(rows) > 0 && isBlankRow(rows[len(rows)-1]) {
		rows = rows[:len(rows)-1]
	}
	return r.processRows(rows)
}

// readCSVData reads delimited text into structured format
func (r *DataReader) readCSVData() (*SourceData, error) {
	file, err := os.Open(r.config.FilePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open CSV file: %w", err)
	}
	defer file.Close()

	return r.readCSV(file)
}

func (r *DataReader) readCSV(src io.Reader) (*SourceData, error) {
	reader := csv.NewReader(src)
	reader.Comma = r.config.ResolveDelimiter()
	reader.FieldsPerRecord = -1

	readStart := time.Now()
	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV file: %w", err)
	}
	r.logger.Debug("[DataReader] CSV file read in %.2fms (%d rows)", float64(time.Since(readStart).Nanoseconds())/1e6, len(rows))

	return r.processRows(rows)
}

// processRows turns raw string rows into SourceData: the first non-empty row
// is the header and short rows are padded. Zero-length records are skipped; a
// record of empty fields is kept as a row of missing cells.
func (r *DataReader) processRows(rows [][]string) (*SourceData, error) {
	start := 0
	for start < len(rows) && isBlankRow(rows[start]) {
		start++
	}
	if start == len(rows) {
		return nil, core.ErrEmptyTable
	}

	headers := normalizeHeaders(rows[start])

	dataRows := make([][]string, 0, len(rows)-start-1)
	for i := start + 1; i < len(rows); i++ {
		row := rows[i]
		if len(row) == 0 {
			continue
		}
		if len(row) > len(headers) {
			if !isBlankRow(row[len(headers):]) {
				return nil, core.NewRowWidthError(i+1, len(row), len(headers))
			}
			row = row[:len(headers)]
		}

		padded := make([]string, len(headers))
		for j, cell := range row {
			padded[j] = strings.TrimSpace(cell)
		}
		dataRows = append(dataRows, padded)
	}

	r.logger.Debug("[DataReader] File processed (%d columns, %d rows)", len(headers), len(dataRows))

	return &SourceData{
		Headers: headers,
		Rows:    dataRows,
	}, nil
}

// BuildTable converts SourceData into a typed table. A column becomes numeric
// only when every non-NA cell is a plain number.
func (r *DataReader) BuildTable(data *SourceData) (*table.Table, error) {
	name := r.config.Name
	if name == "" {
		name = DefaultSourceConfig(r.config.FilePath).Name
	}
	t := table.New(name, data.Headers)

	numeric := make([]bool, len(data.Headers))
	for j := range data.Headers {
		numeric[j] = r.isNumericColumn(data, j)
	}

	for _, raw := range data.Rows {
		row := make([]table.Value, len(data.Headers))
		for j, cell := range raw {
			switch {
			case r.coercer.IsNA(cell):
				row[j] = table.Missing()
			case numeric[j]:
				row[j] = r.coercer.InferValue(cell)
			default:
				row[j] = table.NewString(strings.TrimSpace(cell))
			}
		}
		if err := t.AppendRow(row); err != nil {
			return nil, err
		}
	}

	return t, nil
}

func (r *DataReader) isNumericColumn(data *SourceData, col int) bool {
	seen := false
	for _, row := range data.Rows {
		cell := row[col]
		if r.coercer.IsNA(cell) {
			continue
		}
		if _, ok := coercer.ParseStrict(cell); !ok {
			return false
		}
		seen = true
	}
	return seen
}

// normalizeHeaders trims names, labels blank headers "Unnamed: i" and
// suffixes repeats with .1, .2, ...
func normalizeHeaders(raw []string) []string {
	headers := make([]string, len(raw))
	seen := make(map[string]int, len(raw))
	for i, h := range raw {
		h = strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))
		if h == "" {
			h = fmt.Sprintf("Unnamed: %d", i)
		}
		base := h
		for seen[h] > 0 {
			h = fmt.Sprintf("%s.%d", base, seen[base])
			seen[base]++
		}
		seen[h]++
		headers[i] = h
	}
	return headers
}

func isBlankRow(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}
