package controller

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Out-of-range values parse cleanly, so the handler has to build the error
// itself instead of wrapping the nil parse error.
func TestPopularProductsRejectsOutOfRangeParams(t *testing.T) {
	tests := []struct {
		name     string
		target   string
		expected string
	}{
		{
			name:     "given days below one should reject with explicit message",
			target:   "/reports/popular-products?days=0",
			expected: "days=0 must be at least 1",
		},
		{
			name:     "given negative days should reject with explicit message",
			target:   "/reports/popular-products?days=-7",
			expected: "days=-7 must be at least 1",
		},
		{
			name:     "given limit below one should reject with explicit message",
			target:   "/reports/popular-products?limit=0",
			expected: "limit=0 must be at least 1",
		},
		{
			name:     "given unparseable days should reject with parse error",
			target:   "/reports/popular-products?days=soon",
			expected: "failed parsing days=soon",
		},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			router := mux.NewRouter()
			AttachReportController(router, nil)

			recorder := httptest.NewRecorder()
			request := httptest.NewRequest(http.MethodGet, test.target, nil)
			router.ServeHTTP(recorder, request)

			assert.Equal(t, http.StatusBadRequest, recorder.Code)
			body := map[string]interface{}{}
			require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &body))
			assert.Equal(t, "failed", body["status"])
			assert.Contains(t, body["message"], test.expected)
			assert.NotContains(t, body["message"], "%!w(<nil>)")
		})
	}
}
