package middlewares_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	mw "github.com/5w1tchy/bookshelf-api/internal/api/middlewares"
)

func corsRequest(method, origin string) *http.Request {
	req := httptest.NewRequest(method, "/books", nil)
	if origin != "" {
		req.Header.Set("Origin", origin)
	}
	return req
}

func TestCors_AllowedOrigin(t *testing.T) {
	h := mw.Cors([]string{"https://app.example"})(http.HandlerFunc(ok))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, corsRequest(http.MethodGet, "https://app.example"))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "https://app.example", rec.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "Origin", rec.Header().Get("Vary"))
}

func TestCors_BlockedOrigin(t *testing.T) {
	h := mw.Cors([]string{"https://app.example"})(http.HandlerFunc(ok))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, corsRequest(http.MethodGet, "https://evil.example"))

	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Contains(t, rec.Body.String(), `"status":"fail"`)
}

func TestCors_NoOriginPassesThrough(t *testing.T) {
	h := mw.Cors([]string{"https://app.example"})(http.HandlerFunc(ok))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, corsRequest(http.MethodGet, ""))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestCors_WildcardPreflight(t *testing.T) {
	h := mw.Cors([]string{"*"})(http.HandlerFunc(ok))

	req := corsRequest(http.MethodOptions, "https://anything.example")
	req.Header.Set("Access-Control-Request-Method", http.MethodPut)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
	assert.Contains(t, rec.Header().Get("Access-Control-Allow-Methods"), http.MethodPut)
}
