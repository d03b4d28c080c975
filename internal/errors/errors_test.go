package errors

import (
	stderrors "errors"
	"fmt"
	"testing"

	"goeda/domain/core"

	"github.com/stretchr/testify/assert"
)

func TestWrapKeepsCode(t *testing.T) {
	base := ConfigInvalid("bad profile")
	wrapped := Wrap(base, "loading profiles")

	assert.Equal(t, CodeConfigInvalid, GetCode(wrapped))
	assert.Equal(t, "loading profiles: bad profile", wrapped.Error())
	assert.True(t, IsAppError(wrapped))
}

func TestWrapPlainError(t *testing.T) {
	wrapped := Wrapf(fmt.Errorf("disk full"), "writing %s", "out.csv")
	assert.Equal(t, CodeInternalError, GetCode(wrapped))
	assert.Equal(t, "writing out.csv: disk full", wrapped.Error())
	assert.Nil(t, Wrap(nil, "nothing"))
}

func TestGetCodeUnknown(t *testing.T) {
	assert.Equal(t, "UNKNOWN", GetCode(fmt.Errorf("plain")))
	assert.False(t, IsAppError(fmt.Errorf("plain")))
}

func TestMissingColumnMatchesSentinel(t *testing.T) {
	err := Wrap(MissingColumn("Order Date"), "cleaning sales")
	assert.True(t, stderrors.Is(err, core.ErrColumnNotFound))
	assert.Equal(t, CodeConfigInvalid, GetCode(err))
	assert.Contains(t, err.Error(), `"Order Date"`)
}

func TestNoCommonColumn(t *testing.T) {
	err := NoCommonColumn()
	assert.True(t, stderrors.Is(err, core.ErrNoCommonColumn))
	assert.Equal(t, CodeConfigInvalid, err.Code)
}

func TestStageConstructors(t *testing.T) {
	cause := fmt.Errorf("boom")
	tests := []struct {
		name string
		err  *AppError
		code string
	}{
		{"load", LoadFailed("a.csv", cause), CodeLoadFailed},
		{"analysis", AnalysisFailed("grouping", cause), CodeAnalysisFailed},
		{"report", ReportFailed("chart", cause), CodeReportFailed},
		{"with code", WithCode(CodeInvalidInput, cause, "bad").(*AppError), CodeInvalidInput},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.code, tt.err.Code)
			assert.ErrorIs(t, tt.err, cause)
		})
	}
}
