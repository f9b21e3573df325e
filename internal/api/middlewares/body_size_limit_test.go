package middlewares_test

import (
	"bytes"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	mw "github.com/5w1tchy/bookshelf-api/internal/api/middlewares"
)

func readAll(w http.ResponseWriter, r *http.Request) {
	if _, err := io.ReadAll(r.Body); err != nil {
		http.Error(w, "body too large", http.StatusRequestEntityTooLarge)
		return
	}
	w.WriteHeader(http.StatusOK)
}

func TestBodySizeLimit(t *testing.T) {
	wrapped := mw.BodySizeLimit(1024)(http.HandlerFunc(readAll))

	tests := []struct {
		method string
		size   int
		want   int
	}{
		{http.MethodPost, 10, http.StatusOK},
		{http.MethodPost, 2048, http.StatusRequestEntityTooLarge},
		{http.MethodPut, 2048, http.StatusRequestEntityTooLarge},
		{http.MethodPatch, 2048, http.StatusRequestEntityTooLarge},
		{http.MethodGet, 2048, http.StatusOK},
		{http.MethodDelete, 2048, http.StatusOK},
	}
	for _, tc := range tests {
		req := httptest.NewRequest(tc.method, "/test", bytes.NewReader(bytes.Repeat([]byte("a"), tc.size)))
		rec := httptest.NewRecorder()
		wrapped.ServeHTTP(rec, req)
		assert.Equal(t, tc.want, rec.Code, "%s %d bytes", tc.method, tc.size)
	}
}

func TestBodySizeLimit_ExactLimit(t *testing.T) {
	wrapped := mw.BodySizeLimit(4)(http.HandlerFunc(readAll))

	rec := httptest.NewRecorder()
	wrapped.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/test", strings.NewReader("abcd")))
	assert.Equal(t, http.StatusOK, rec.Code)
}
