package core

import (
	"errors"
	"fmt"
)

// Domain errors - centralized error definitions
var (
	// Shape errors
	ErrColumnNotFound   = errors.New("column not found")
	ErrNoCommonColumn   = errors.New("no common column")
	ErrEmptyTable       = errors.New("table has no header row")
	ErrRowWidth         = errors.New("row width does not match column count")
	ErrInsufficientData = errors.New("insufficient data for analysis")

	// Input errors
	ErrUnsupportedFormat = errors.New("unsupported file format")
	ErrProfileNotFound   = errors.New("profile not found")
)

// Error constructors with context
func NewColumnNotFoundError(table, column string) error {
	if table == "" {
		return fmt.Errorf("%w: %q", ErrColumnNotFound, column)
	}
	return fmt.Errorf("%w: %q in table %s", ErrColumnNotFound, column, table)
}

func NewRowWidthError(row, got, want int) error {
	return fmt.Errorf("%w: row %d has %d cells, want %d", ErrRowWidth, row, got, want)
}

// Error checking helpers
func IsColumnNotFound(err error) bool {
	return errors.Is(err, ErrColumnNotFound)
}

func IsShapeError(err error) bool {
	return errors.Is(err, ErrColumnNotFound) ||
		errors.Is(err, ErrNoCommonColumn) ||
		errors.Is(err, ErrEmptyTable) ||
		errors.Is(err, ErrRowWidth)
}
