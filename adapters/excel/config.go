package excel

import (
	"path/filepath"
	"strings"

	"goeda/adapters/datareadiness/coercer"
	"goeda/domain/core"
)

// Format names the on-disk layout of a source
type Format string

const (
	FormatCSV  Format = "csv"
	FormatXLSX Format = "xlsx"
)

// SourceConfig holds configuration for one tabular source
type SourceConfig struct {
	Name           string                 `json:"name"`
	FilePath       string                 `json:"file_path"`
	Format         Format                 `json:"format"`    // empty: inferred from the extension
	Sheet          string                 `json:"sheet"`     // xlsx only, empty: first sheet
	Delimiter      rune                   `json:"delimiter"` // csv only, zero: comma
	CoercionConfig coercer.CoercionConfig `json:"coercion_config"`
}

// DefaultSourceConfig returns sensible defaults for a file path
func DefaultSourceConfig(path string) SourceConfig {
	return SourceConfig{
		Name:           strings.TrimSuffix(filepath.Base(path), filepath.Ext(path)),
		FilePath:       path,
		CoercionConfig: coercer.DefaultCoercionConfig(),
	}
}

// ResolveFormat returns the declared format or infers it from the file extension
func (c SourceConfig) ResolveFormat() (Format, error) {
	if c.Format != "" {
		switch Format(strings.ToLower(string(c.Format))) {
		case FormatCSV, "tsv", "txt":
			return FormatCSV, nil
		case FormatXLSX, "xlsm", "excel":
			return FormatXLSX, nil
		default:
			return "", core.ErrUnsupportedFormat
		}
	}

	switch strings.ToLower(filepath.Ext(c.FilePath)) {
	case ".csv", ".tsv", ".txt":
		return FormatCSV, nil
	case ".xlsx", ".xlsm":
		return FormatXLSX, nil
	default:
		return "", core.ErrUnsupportedFormat
	}
}

// ResolveDelimiter returns the CSV field separator
func (c SourceConfig) ResolveDelimiter() rune {
	if c.Delimiter != 0 {
		return c.Delimiter
	}
	if strings.EqualFold(filepath.Ext(c.FilePath), ".tsv") || strings.EqualFold(string(c.Format), "tsv") {
		return '\t'
	}
	return ','
}
