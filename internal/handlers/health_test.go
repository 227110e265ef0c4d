package handlers

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

func TestGetHealth(t *testing.T) {
	tests := []struct {
		pingErr        error
		name           string
		expectedStatus string
		expectedCode   int
	}{
		{name: "healthy", expectedCode: http.StatusOK, expectedStatus: "healthy"},
		{name: "database down", pingErr: errors.New("connection refused"), expectedCode: http.StatusServiceUnavailable, expectedStatus: "unhealthy"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tr := newTestRouter(t)
			tr.health.On("PingContext", mock.Anything).Return(tt.pingErr)

			rec := tr.do(httptest.NewRequest(http.MethodGet, "/health", nil))

			assert.Equal(t, tt.expectedCode, rec.Code)
			resp := decode[healthResponse](t, rec)
			assert.Equal(t, tt.expectedStatus, resp.Status)
		})
	}
}
