// internal/api/handlers_test.go
package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	apperrors "scenario-builder/internal/errors"
	"scenario-builder/internal/services"
)

func newErrorTestHandler() *Handler {
	return &Handler{
		respond: NewResponseHelper(),
		logger:  zap.NewNop(),
	}
}

func decodeEnvelope(t *testing.T, rec *httptest.ResponseRecorder) APIResponse {
	t.Helper()
	var resp APIResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	return resp
}

func TestMapErrorAppErrors(t *testing.T) {
	gin.SetMode(gin.TestMode)

	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
	}{
		{
			name:       "validation",
			err:        apperrors.NewValidationError("candidate index 7 out of range", nil),
			wantStatus: http.StatusBadRequest,
			wantCode:   "VALIDATION_ERROR",
		},
		{
			name:       "not found",
			err:        apperrors.NewNotFoundError("no saved scenarios for this project", nil),
			wantStatus: http.StatusNotFound,
			wantCode:   "NOT_FOUND",
		},
		{
			name:       "wrapped app error",
			err:        fmt.Errorf("using existing metadata: %w", apperrors.NewNotFoundError("no saved metadata for this project", nil)),
			wantStatus: http.StatusNotFound,
			wantCode:   "NOT_FOUND",
		},
		{
			name:       "processing",
			err:        apperrors.NewProcessingError("compositing the frame failed", errors.New("draw")),
			wantStatus: http.StatusInternalServerError,
			wantCode:   "PROCESSING_ERROR",
		},
	}

	h := newErrorTestHandler()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(rec)

			h.mapError(c, tt.err)

			assert.Equal(t, tt.wantStatus, rec.Code)
			resp := decodeEnvelope(t, rec)
			assert.False(t, resp.Success)
			require.NotNil(t, resp.Error)
			assert.Equal(t, tt.wantCode, resp.Error.Code)
			assert.NotEmpty(t, resp.Error.Message)
		})
	}
}

func TestMapErrorSentinels(t *testing.T) {
	gin.SetMode(gin.TestMode)
	h := newErrorTestHandler()

	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	h.mapError(c, services.ErrNoSelection)

	assert.Equal(t, http.StatusConflict, rec.Code)
	resp := decodeEnvelope(t, rec)
	require.NotNil(t, resp.Error)
	assert.Equal(t, ErrorNoScenarioSelected, resp.Error.Code)
}

func TestStatusForAppError(t *testing.T) {
	assert.Equal(t, http.StatusBadRequest, statusForAppError(apperrors.ErrorTypeValidation))
	assert.Equal(t, http.StatusNotFound, statusForAppError(apperrors.ErrorTypeNotFound))
	assert.Equal(t, http.StatusConflict, statusForAppError(apperrors.ErrorTypeConflict))
	assert.Equal(t, http.StatusGatewayTimeout, statusForAppError(apperrors.ErrorTypeTimeout))
	assert.Equal(t, http.StatusServiceUnavailable, statusForAppError(apperrors.ErrorTypeUnavailable))
	assert.Equal(t, http.StatusInternalServerError, statusForAppError(apperrors.ErrorTypeError))
}
