package middlewares_test

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	mw "github.com/5w1tchy/bookshelf-api/internal/api/middlewares"
)

func TestResponseTime(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		time.Sleep(10 * time.Millisecond)
		w.WriteHeader(http.StatusOK)
	})

	rec := httptest.NewRecorder()
	mw.ResponseTime(handler).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/test", nil))

	d, err := time.ParseDuration(rec.Header().Get("X-Response-Time"))
	require.NoError(t, err)
	assert.GreaterOrEqual(t, d, 10*time.Millisecond)
}

func TestResponseTime_WithWrite(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("test response"))
	})

	rec := httptest.NewRecorder()
	mw.ResponseTime(handler).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/test", nil))

	assert.NotEmpty(t, rec.Header().Get("X-Response-Time"))
}

func TestResponseTime_NothingWritten(t *testing.T) {
	rec := httptest.NewRecorder()
	mw.ResponseTime(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {})).
		ServeHTTP(rec, httptest.NewRequest(http.MethodHead, "/test", nil))

	assert.NotEmpty(t, rec.Header().Get("X-Response-Time"))
}
