package errors

import (
	stderrors "errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConstructors(t *testing.T) {
	cause := stderrors.New("unexpected end of JSON input")

	tests := []struct {
		name      string
		err       *StandardError
		code      ErrorCode
		message   string
		retryable bool
		bpmnCode  string
		category  string
	}{
		{"argument", NewArgumentError("expected 3 arguments, got 1"), ErrCodeInvalidArguments, "Invalid arguments", false, "REPORT_INPUT_INVALID", "INPUT"},
		{"input parse", NewInputParseError(cause), ErrCodeInputParseFailed, "Invalid JSON data", false, "REPORT_INPUT_INVALID", "INPUT"},
		{"processing", NewProcessingError(cause), ErrCodeReportGenerationFailed, "Failed to generate report", false, "REPORT_GENERATION_FAILED", "PROCESSING"},
		{"external", NewExternalServiceError("zeebe", cause), ErrCodeExternalService, "External service 'zeebe' error", true, "EXTERNAL_SERVICE_ERROR", "INFRASTRUCTURE"},
		{"timeout", NewTimeoutError("zeebe", cause), ErrCodeTimeout, "Service 'zeebe' timeout", true, "TIMEOUT_ERROR", "INFRASTRUCTURE"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.code, tt.err.Code)
			assert.Equal(t, tt.message, tt.err.Message)
			assert.Equal(t, tt.retryable, tt.err.Retryable)
			assert.Equal(t, tt.category, GetErrorCategory(tt.code))

			bpmn := ConvertToBPMNError(tt.err)
			assert.Equal(t, tt.bpmnCode, bpmn.Code)
			assert.Equal(t, string(tt.code), bpmn.ToErrorVariables()["originalErrorCode"])
		})
	}
}

func TestStandardError_Unwrap(t *testing.T) {
	cause := stderrors.New("disk full")
	err := fmt.Errorf("fill: %w", NewProcessingError(cause))

	assert.ErrorIs(t, err, cause)
	assert.True(t, HasCode(err, ErrCodeReportGenerationFailed))
	assert.False(t, HasCode(err, ErrCodeInputParseFailed))
	assert.Contains(t, err.Error(), "disk full")
}

func TestNormalize(t *testing.T) {
	processing := NewProcessingError(stderrors.New("boom"))
	assert.Same(t, processing, Normalize(fmt.Errorf("wrapped: %w", processing)))

	plain := Normalize(stderrors.New("boom"))
	assert.Equal(t, ErrCodeInternal, plain.Code)
	assert.Equal(t, "REPORT_GENERATION_FAILED", ConvertToBPMNError(plain).Code)
}

func TestRetryPolicy(t *testing.T) {
	assert.False(t, IsRetryableErrorCode(ErrCodeReportGenerationFailed))
	assert.False(t, IsRetryableErrorCode(ErrCodeInputParseFailed))
	assert.True(t, IsRetryableErrorCode(ErrCodeExternalService))

	bpmn := ConvertToBPMNError(NewProcessingError(stderrors.New("x")))
	require.NotNil(t, bpmn)
	assert.Zero(t, bpmn.Retries)
	assert.Equal(t, 3, ConvertToBPMNError(NewExternalServiceError("zeebe", stderrors.New("x"))).Retries)
}

func TestShouldRetry(t *testing.T) {
	transient := NewExternalServiceError("zeebe", stderrors.New("unavailable"))
	timeout := NewTimeoutError("zeebe", stderrors.New("deadline exceeded"))
	flaggedReport := NewProcessingError(stderrors.New("x"))
	flaggedReport.Retryable = true

	tests := []struct {
		name    string
		err     *StandardError
		retries int32
		want    bool
	}{
		{"transient with retries left", transient, 3, true},
		{"timeout with retries left", timeout, 1, true},
		{"transient with no retries left", transient, 0, false},
		{"input error", NewInputParseError(stderrors.New("x")), 3, false},
		{"report error", NewProcessingError(stderrors.New("x")), 3, false},
		{"report error marked retryable", flaggedReport, 3, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, shouldRetry(tt.err, tt.retries))
		})
	}
}
