package middleware_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/subwayline/subwayline/internal/api/middleware"
)

func TestCORS_Preflight(t *testing.T) {
	handler := middleware.CORS(middleware.CORSConfig{AllowedOrigins: []string{"https://ops.subwayline.dev"}})(statusHandler(http.StatusOK))

	req := httptest.NewRequest(http.MethodOptions, "/v1/lines", http.NoBody)
	req.Header.Set("Origin", "https://ops.subwayline.dev")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, "https://ops.subwayline.dev", rec.Header().Get("Access-Control-Allow-Origin"))
	assert.Contains(t, rec.Header().Get("Access-Control-Allow-Methods"), http.MethodPost)
}

func TestCORS_UnknownOrigin(t *testing.T) {
	handler := middleware.CORS(middleware.CORSConfig{AllowedOrigins: []string{"https://ops.subwayline.dev"}})(statusHandler(http.StatusOK))

	req := httptest.NewRequest(http.MethodGet, "/v1/lines", http.NoBody)
	req.Header.Set("Origin", "https://elsewhere.example")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))
}
