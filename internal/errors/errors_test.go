package errors

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestConstructors(t *testing.T) {
	cause := fmt.Errorf("boom")

	tests := []struct {
		name       string
		err        *AppError
		wantType   ErrorType
		wantStatus int
	}{
		{"validation", NewValidationError("bad", nil), ErrorTypeValidation, http.StatusBadRequest},
		{"network", NewNetworkError("net", cause), ErrorTypeNetwork, http.StatusBadGateway},
		{"processing", NewProcessingError("proc", cause), ErrorTypeProcessing, http.StatusUnprocessableEntity},
		{"timeout", NewTimeoutError("slow", cause), ErrorTypeTimeout, http.StatusGatewayTimeout},
		{"not found", NewNotFoundError("missing", nil), ErrorTypeNotFound, http.StatusNotFound},
		{"internal", NewInternalError("oops", cause), ErrorTypeInternal, http.StatusInternalServerError},
		{"capture", NewCaptureError("no frame", cause), ErrorTypeCapture, http.StatusInternalServerError},
		{"model load", NewModelLoadError("no cascade", cause), ErrorTypeModelLoad, http.StatusServiceUnavailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.wantType, tt.err.Type)
			assert.Equal(t, tt.wantStatus, tt.err.StatusCode)
			assert.True(t, IsType(tt.err, tt.wantType))
		})
	}
}

func TestIsType_Wrapped(t *testing.T) {
	err := fmt.Errorf("capture handler: %w", NewCaptureError("Failed to capture image from webcam", nil))

	assert.True(t, IsType(err, ErrorTypeCapture))
	assert.False(t, IsType(err, ErrorTypeTimeout))
	assert.Equal(t, http.StatusInternalServerError, GetStatusCode(err))
}

func TestGetStatusCode_PlainError(t *testing.T) {
	assert.Equal(t, http.StatusInternalServerError, GetStatusCode(fmt.Errorf("plain")))
	assert.False(t, IsType(fmt.Errorf("plain"), ErrorTypeInternal))
}

func TestAppError_Unwrap(t *testing.T) {
	cause := fmt.Errorf("root cause")
	err := NewProcessingError("ocr failed", cause)

	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "root cause")
	assert.Equal(t, "not_found: missing", NewNotFoundError("missing", nil).Error())
}
