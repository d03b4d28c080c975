package coercer

import (
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"

	"goeda/domain/table"

	"github.com/xuri/excelize/v2"
)

// TypeCoercer handles deterministic type coercion of raw cells
type TypeCoercer struct {
	config CoercionConfig
	na     map[string]struct{}
}

// CoercionConfig defines the coercion thresholds and rules
type CoercionConfig struct {
	NumericThreshold float64  `json:"numeric_threshold" yaml:"numeric_threshold"` // share of values that must parse as numbers
	DateThreshold    float64  `json:"date_threshold" yaml:"date_threshold"`       // share of values that must parse as dates
	NormalizeStrings bool     `json:"normalize_strings" yaml:"normalize_strings"` // collapse whitespace, strip control characters
	SerialDates      bool     `json:"serial_dates" yaml:"serial_dates"`           // numbers in date columns are Excel serial dates
	LenientNumeric   bool     `json:"lenient_numeric" yaml:"lenient_numeric"`     // accept currency, grouping, (neg), % and decimal commas
	NATokens         []string `json:"na_tokens" yaml:"na_tokens"`                 // cell texts read as missing, besides empty text
}

// DefaultNATokens are the cell texts pandas read_csv treats as NaN
var DefaultNATokens = []string{
	"#N/A", "#N/A N/A", "#NA", "-1.#IND", "-1.#QNAN", "-NaN", "-nan",
	"1.#IND", "1.#QNAN", "<NA>", "N/A", "NA", "NULL", "NaN", "None",
	"n/a", "nan", "null",
}

// DefaultCoercionConfig returns sensible defaults
func DefaultCoercionConfig() CoercionConfig {
	return CoercionConfig{
		NumericThreshold: 1.0, // every non-empty value, like pandas read_csv
		DateThreshold:    0.8,
		NormalizeStrings: true,
		NATokens:         DefaultNATokens,
	}
}

// NewTypeCoercer creates a coercer with the given config
func NewTypeCoercer(config CoercionConfig) *TypeCoercer {
	na := make(map[string]struct{}, len(config.NATokens))
	for _, tok := range config.NATokens {
		na[tok] = struct{}{}
	}
	return &TypeCoercer{config: config, na: na}
}

// IsNA reports whether raw cell text stands for a missing value
func (c *TypeCoercer) IsNA(raw string) bool {
	s := strings.TrimSpace(raw)
	if s == "" {
		return true
	}
	_, ok := c.na[s]
	return ok
}

// Config returns the active configuration
func (c *TypeCoercer) Config() CoercionConfig {
	return c.config
}

var strictNumber = regexp.MustCompile(`^[+-]?(\d+\.?\d*|\.\d+)([eE][+-]?\d+)?$`)

// ParseStrict accepts only plain decimal or scientific notation, the forms a
// CSV reader treats as numbers without any cleanup
func ParseStrict(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	if !strictNumber.MatchString(s) {
		return 0, false
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsInf(f, 0) || math.IsNaN(f) {
		return 0, false
	}
	return f, true
}

// InferValue converts a raw cell as read from a file: numbers when the text is
// a plain number, otherwise a (normalized) string. Empty text and NA tokens
// are missing.
func (c *TypeCoercer) InferValue(raw string) table.Value {
	if c.IsNA(raw) {
		return table.Missing()
	}
	if f, ok := ParseStrict(raw); ok {
		return table.NewNumeric(f)
	}
	return c.coerceToString(raw)
}

// CoerceNumeric converts a cell to a number; anything unparseable is missing.
// Only plain numbers parse unless LenientNumeric is set.
func (c *TypeCoercer) CoerceNumeric(v table.Value) table.Value {
	switch v.Type {
	case table.ValueTypeNumeric:
		return v
	case table.ValueTypeString:
		parse := ParseStrict
		if c.config.LenientNumeric {
			parse = c.tryParseNumeric
		}
		if f, ok := parse(v.Str); ok {
			return table.NewNumeric(f)
		}
	}
	return table.Missing()
}

// CoerceDate converts a cell to a date; anything unparseable is missing
func (c *TypeCoercer) CoerceDate(v table.Value) table.Value {
	switch v.Type {
	case table.ValueTypeDate:
		return v
	case table.ValueTypeNumeric:
		if c.config.SerialDates {
			if t, err := excelize.ExcelDateToTime(v.Num, false); err == nil {
				return table.NewDate(t)
			}
		}
	case table.ValueTypeString:
		if t, ok := c.tryParseTimestamp(v.Str); ok {
			return table.NewDate(t)
		}
	}
	return table.Missing()
}

// AnalyzeTypeDistribution analyzes a sample to determine the best column type
func (c *TypeCoercer) AnalyzeTypeDistribution(values []table.Value) TypeAnalysis {
	analysis := TypeAnalysis{
		TotalCount: len(values),
	}

	for _, val := range values {
		if val.IsMissing() {
			continue
		}
		analysis.ValidCount++

		switch val.Type {
		case table.ValueTypeNumeric:
			analysis.NumericCount++
			continue
		case table.ValueTypeDate:
			analysis.DateCount++
			continue
		}

		if _, ok := c.tryParseNumeric(val.Str); ok {
			analysis.NumericCount++
		}
		if _, ok := c.tryParseTimestamp(val.Str); ok {
			analysis.DateCount++
		}
	}

	if analysis.ValidCount > 0 {
		analysis.NumericRatio = float64(analysis.NumericCount) / float64(analysis.ValidCount)
		analysis.DateRatio = float64(analysis.DateCount) / float64(analysis.ValidCount)
	}

	analysis.RecommendedType = c.determineRecommendedType(analysis)

	return analysis
}

// coerceToString converts to a normalized string value
func (c *TypeCoercer) coerceToString(strVal string) table.Value {
	if c.config.NormalizeStrings {
		strVal = c.normalizeString(strVal)
	}
	return table.NewString(strVal)
}

// tryParseNumeric parses with lenient rules: currency symbols, thousands
// separators, parentheses for negatives, percent signs and European decimals
func (c *TypeCoercer) tryParseNumeric(strVal string) (float64, bool) {
	cleanVal := strings.TrimSpace(strVal)
	if cleanVal == "" {
		return 0, false
	}

	// (123) -> -123
	isNegative := false
	if strings.HasPrefix(cleanVal, "(") && strings.HasSuffix(cleanVal, ")") {
		cleanVal = strings.TrimSuffix(strings.TrimPrefix(cleanVal, "("), ")")
		isNegative = true
	}

	for _, symbol := range []string{"USD", "EUR", "GBP", "JPY", "$", "€", "£", "¥"} {
		cleanVal = strings.ReplaceAll(cleanVal, symbol, "")
	}
	cleanVal = strings.TrimSpace(strings.TrimSuffix(cleanVal, "%"))

	hasComma := strings.Contains(cleanVal, ",")
	hasPeriod := strings.Contains(cleanVal, ".")
	hasSpace := strings.Contains(cleanVal, " ")

	switch {
	case hasComma && (hasPeriod || hasSpace):
		// 1.234,56 or 1 234,56 when the comma comes last, else 1,234.56
		commaIdx := strings.LastIndex(cleanVal, ",")
		periodIdx := strings.LastIndex(cleanVal, ".")
		if commaIdx > periodIdx {
			cleanVal = strings.ReplaceAll(cleanVal, ".", "")
			cleanVal = strings.ReplaceAll(cleanVal, " ", "")
			cleanVal = strings.ReplaceAll(cleanVal, ",", ".")
		} else {
			cleanVal = strings.ReplaceAll(cleanVal, ",", "")
		}
	case hasComma:
		// 1,234 and 12,345,678 are thousands groups; 3,5 is a decimal comma
		if isThousandsGrouped(cleanVal) {
			cleanVal = strings.ReplaceAll(cleanVal, ",", "")
		} else if strings.Count(cleanVal, ",") == 1 {
			cleanVal = strings.ReplaceAll(cleanVal, ",", ".")
		}
	default:
		cleanVal = strings.ReplaceAll(cleanVal, " ", "")
	}

	if isNegative {
		if strings.HasPrefix(cleanVal, "-") {
			return 0, false
		}
		cleanVal = "-" + cleanVal
	}

	return ParseStrict(cleanVal)
}

var thousandsGrouped = regexp.MustCompile(`^[+-]?\d{1,3}(,\d{3})+$`)

func isThousandsGrouped(s string) bool {
	return thousandsGrouped.MatchString(s)
}

// Common date layouts, tried in order. Month-first slash dates win over
// day-first ones, matching pandas' default.
var timestampFormats = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
	"1/2/2006 15:04",
	"1/2/2006",
	"2006/01/02",
	"02-Jan-2006",
	"2 Jan 2006",
	"January 2, 2006",
	"Jan 2, 2006",
	"01-02-06",
}

// tryParseTimestamp attempts to parse a date with multiple formats
func (c *TypeCoercer) tryParseTimestamp(strVal string) (time.Time, bool) {
	strVal = strings.TrimSpace(strVal)
	if strVal == "" {
		return time.Time{}, false
	}

	for _, format := range timestampFormats {
		if t, err := time.Parse(format, strVal); err == nil {
			return t, true
		}
	}

	return time.Time{}, false
}

var whitespaceRun = regexp.MustCompile(`\s+`)

// normalizeString applies deterministic string normalization. Case is kept:
// category labels are displayed as-is in charts.
func (c *TypeCoercer) normalizeString(s string) string {
	s = strings.TrimSpace(s)
	s = whitespaceRun.ReplaceAllString(s, " ")
	return strings.Map(func(r rune) rune {
		if r < 32 || r == 127 {
			return -1
		}
		return r
	}, s)
}

// determineRecommendedType chooses the best type based on analysis
func (c *TypeCoercer) determineRecommendedType(analysis TypeAnalysis) table.ValueType {
	if analysis.ValidCount == 0 {
		return table.ValueTypeMissing
	}
	if analysis.NumericRatio >= c.config.NumericThreshold {
		return table.ValueTypeNumeric
	}
	if analysis.DateRatio >= c.config.DateThreshold {
		return table.ValueTypeDate
	}
	return table.ValueTypeString
}

// TypeAnalysis contains the results of type distribution analysis
type TypeAnalysis struct {
	TotalCount      int             `json:"total_count"`
	ValidCount      int             `json:"valid_count"`
	NumericCount    int             `json:"numeric_count"`
	DateCount       int             `json:"date_count"`
	NumericRatio    float64         `json:"numeric_ratio"`
	DateRatio       float64         `json:"date_ratio"`
	RecommendedType table.ValueType `json:"recommended_type"`
}
