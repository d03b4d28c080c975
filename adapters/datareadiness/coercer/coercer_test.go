package coercer

import (
	"testing"
	"time"

	"goeda/domain/table"

	"github.com/stretchr/testify/assert"
)

func TestParseStrict(t *testing.T) {
	tests := []struct {
		in   string
		want float64
		ok   bool
	}{
		{"42", 42, true},
		{"-3.5", -3.5, true},
		{" 1e3 ", 1000, true},
		{".5", 0.5, true},
		{"1,000", 0, false},
		{"$10", 0, false},
		{"NaN", 0, false},
		{"Inf", 0, false},
		{"abc", 0, false},
		{"", 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, ok := ParseStrict(tt.in)
			assert.Equal(t, tt.ok, ok)
			if tt.ok {
				assert.InDelta(t, tt.want, got, 1e-9)
			}
		})
	}
}

func TestInferValue(t *testing.T) {
	c := NewTypeCoercer(DefaultCoercionConfig())

	assert.Equal(t, table.NewNumeric(12.5), c.InferValue("12.5"))
	assert.Equal(t, table.NewString("Sub-Saharan Africa"), c.InferValue("  Sub-Saharan   Africa "))
	assert.True(t, c.InferValue("").IsMissing())
	assert.True(t, c.InferValue("   ").IsMissing())
	assert.Equal(t, table.ValueTypeString, c.InferValue("1,000").Type)
	assert.True(t, c.InferValue("NaN").IsMissing())
	assert.True(t, c.InferValue("#N/A").IsMissing())
}

func TestIsNA(t *testing.T) {
	c := NewTypeCoercer(DefaultCoercionConfig())

	for _, raw := range []string{"", "  ", "NA", "N/A", "n/a", "NaN", "nan", "null", "NULL", "None", "#N/A", "<NA>", " NA "} {
		assert.True(t, c.IsNA(raw), "%q", raw)
	}
	for _, raw := range []string{"0", "Na", "none", "NAN", "North America"} {
		assert.False(t, c.IsNA(raw), "%q", raw)
	}

	bare := NewTypeCoercer(CoercionConfig{})
	assert.True(t, bare.IsNA(""))
	assert.False(t, bare.IsNA("NA"), "no tokens configured")
}

func TestCoerceNumericStrictByDefault(t *testing.T) {
	c := NewTypeCoercer(DefaultCoercionConfig())

	assert.Equal(t, table.NewNumeric(2533.54), c.CoerceNumeric(table.NewString("2533.54")))
	assert.Equal(t, table.NewNumeric(-1e3), c.CoerceNumeric(table.NewString(" -1e3 ")))
	for _, raw := range []string{"$1,200.50", "3,5", "12%", "(40)", "1,000"} {
		assert.True(t, c.CoerceNumeric(table.NewString(raw)).IsMissing(), raw)
	}
}

func TestCoerceNumericLenient(t *testing.T) {
	cfg := DefaultCoercionConfig()
	cfg.LenientNumeric = true
	c := NewTypeCoercer(cfg)

	tests := []struct {
		name    string
		in      table.Value
		want    float64
		missing bool
	}{
		{"already numeric", table.NewNumeric(7), 7, false},
		{"currency", table.NewString("$45,000"), 45000, false},
		{"parentheses negative", table.NewString("(123.50)"), -123.5, false},
		{"european decimal", table.NewString("1.234,56"), 1234.56, false},
		{"us thousands", table.NewString("1,234.56"), 1234.56, false},
		{"thousands only", table.NewString("12,345,678"), 12345678, false},
		{"decimal comma", table.NewString("3,5"), 3.5, false},
		{"percent", table.NewString("15%"), 15, false},
		{"text", table.NewString("N/A"), 0, true},
		{"garbage", table.NewString("twelve"), 0, true},
		{"date cell", table.NewDate(time.Now()), 0, true},
		{"missing", table.Missing(), 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := c.CoerceNumeric(tt.in)
			if tt.missing {
				assert.True(t, got.IsMissing(), "expected missing, got %v", got)
				return
			}
			f, ok := got.Float()
			assert.True(t, ok)
			assert.InDelta(t, tt.want, f, 1e-9)
		})
	}
}

func TestCoerceDate(t *testing.T) {
	c := NewTypeCoercer(DefaultCoercionConfig())

	tests := []struct {
		in   string
		want time.Time
	}{
		{"2010-05-28", time.Date(2010, 5, 28, 0, 0, 0, 0, time.UTC)},
		{"5/28/2010", time.Date(2010, 5, 28, 0, 0, 0, 0, time.UTC)},
		{"2012/07/04", time.Date(2012, 7, 4, 0, 0, 0, 0, time.UTC)},
		{"15-Mar-2015", time.Date(2015, 3, 15, 0, 0, 0, 0, time.UTC)},
		{"2014-01-02 10:30:00", time.Date(2014, 1, 2, 10, 30, 0, 0, time.UTC)},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got := c.CoerceDate(table.NewString(tt.in))
			assert.Equal(t, table.ValueTypeDate, got.Type)
			assert.True(t, tt.want.Equal(got.Time), "got %v", got.Time)
		})
	}

	assert.True(t, c.CoerceDate(table.NewString("not a date")).IsMissing())
	assert.True(t, c.CoerceDate(table.NewNumeric(40000)).IsMissing(), "serial dates are off by default")
}

func TestCoerceDateSerial(t *testing.T) {
	cfg := DefaultCoercionConfig()
	cfg.SerialDates = true
	c := NewTypeCoercer(cfg)

	got := c.CoerceDate(table.NewNumeric(40326))
	assert.Equal(t, table.ValueTypeDate, got.Type)
	assert.Equal(t, "2010-05-28", got.String())
}

func TestAnalyzeTypeDistribution(t *testing.T) {
	c := NewTypeCoercer(DefaultCoercionConfig())

	numeric := c.AnalyzeTypeDistribution([]table.Value{
		table.NewNumeric(1), table.NewString("$2"), table.Missing(), table.NewNumeric(3),
	})
	assert.Equal(t, 4, numeric.TotalCount)
	assert.Equal(t, 3, numeric.ValidCount)
	assert.Equal(t, table.ValueTypeNumeric, numeric.RecommendedType)

	dates := c.AnalyzeTypeDistribution([]table.Value{
		table.NewString("2010-01-01"), table.NewString("2/3/2011"), table.NewString("2012-12-12"),
		table.NewString("2013-01-05"), table.NewString("oops"),
	})
	assert.InDelta(t, 0.8, dates.DateRatio, 1e-9)
	assert.Equal(t, table.ValueTypeDate, dates.RecommendedType)

	text := c.AnalyzeTypeDistribution([]table.Value{table.NewString("USA"), table.NewString("UK")})
	assert.Equal(t, table.ValueTypeString, text.RecommendedType)

	empty := c.AnalyzeTypeDistribution([]table.Value{table.Missing()})
	assert.Equal(t, table.ValueTypeMissing, empty.RecommendedType)
}
