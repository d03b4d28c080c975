package table

import (
	"math"
	"strconv"
	"time"
)

// ValueType defines the storage type for a cell
type ValueType string

const (
	ValueTypeString  ValueType = "string"
	ValueTypeNumeric ValueType = "numeric"
	ValueTypeDate    ValueType = "date"
	ValueTypeMissing ValueType = "missing"
)

// Value is a typed table cell. The zero Value is missing.
type Value struct {
	Type ValueType `json:"type"`
	Str  string    `json:"str,omitempty"`
	Num  float64   `json:"num,omitempty"`
	Time time.Time `json:"time,omitempty"`
}

// Missing returns a missing value
func Missing() Value {
	return Value{Type: ValueTypeMissing}
}

// NewString creates a string value; the empty string is missing
func NewString(s string) Value {
	if s == "" {
		return Missing()
	}
	return Value{Type: ValueTypeString, Str: s}
}

// NewNumeric creates a numeric value; NaN and infinities are missing
func NewNumeric(n float64) Value {
	if math.IsNaN(n) || math.IsInf(n, 0) {
		return Missing()
	}
	return Value{Type: ValueTypeNumeric, Num: n}
}

// NewDate creates a date value; the zero time is missing
func NewDate(t time.Time) Value {
	if t.IsZero() {
		return Missing()
	}
	return Value{Type: ValueTypeDate, Time: t}
}

// IsMissing reports whether the cell holds no value
func (v Value) IsMissing() bool {
	return v.Type == "" || v.Type == ValueTypeMissing
}

// IsNumeric reports whether the cell holds a number
func (v Value) IsNumeric() bool {
	return v.Type == ValueTypeNumeric
}

// Float returns the numeric content
func (v Value) Float() (float64, bool) {
	if v.Type != ValueTypeNumeric {
		return 0, false
	}
	return v.Num, true
}

// String renders the cell the way it is persisted
func (v Value) String() string {
	switch v.Type {
	case ValueTypeString:
		return v.Str
	case ValueTypeNumeric:
		return strconv.FormatFloat(v.Num, 'f', -1, 64)
	case ValueTypeDate:
		if v.Time.Hour() == 0 && v.Time.Minute() == 0 && v.Time.Second() == 0 && v.Time.Nanosecond() == 0 {
			return v.Time.Format("2006-01-02")
		}
		return v.Time.Format("2006-01-02 15:04:05")
	default:
		return ""
	}
}

// Equal compares type and content
func (v Value) Equal(o Value) bool {
	if v.IsMissing() || o.IsMissing() {
		return v.IsMissing() && o.IsMissing()
	}
	if v.Type != o.Type {
		return false
	}
	switch v.Type {
	case ValueTypeNumeric:
		return v.Num == o.Num
	case ValueTypeDate:
		return v.Time.Equal(o.Time)
	default:
		return v.Str == o.Str
	}
}

// key is a type-tagged rendering used for hashing rows and join keys
func (v Value) key() string {
	if v.IsMissing() {
		return "\x00"
	}
	return string(v.Type[0]) + v.String()
}
