package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRateLimit(t *testing.T) {
	h := RateLimit(0.001, 2)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))

	serve := func(method string) *httptest.ResponseRecorder {
		w := httptest.NewRecorder()
		h.ServeHTTP(w, httptest.NewRequest(method, "/api/wallet/funds", nil))
		return w
	}

	assert.Equal(t, http.StatusNoContent, serve(http.MethodPost).Code)
	assert.Equal(t, http.StatusNoContent, serve(http.MethodPost).Code)

	w := serve(http.MethodPost)
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Equal(t, "1", w.Header().Get("Retry-After"))

	assert.Equal(t, http.StatusNoContent, serve(http.MethodGet).Code, "reads are not limited")
}
