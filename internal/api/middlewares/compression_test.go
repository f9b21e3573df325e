package middlewares_test

import (
	"compress/gzip"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	mw "github.com/5w1tchy/bookshelf-api/internal/api/middlewares"
)

func hello(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Length", "5")
	_, _ = w.Write([]byte("hello"))
}

func TestCompression_Gzip(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Accept-Encoding", "gzip, deflate")
	rec := httptest.NewRecorder()

	mw.Compression(http.HandlerFunc(hello)).ServeHTTP(rec, req)

	assert.Equal(t, "gzip", rec.Header().Get("Content-Encoding"))
	assert.Equal(t, "Accept-Encoding", rec.Header().Get("Vary"))
	assert.Empty(t, rec.Header().Get("Content-Length"))

	zr, err := gzip.NewReader(rec.Body)
	require.NoError(t, err)
	body, err := io.ReadAll(zr)
	require.NoError(t, err)
	assert.Equal(t, "hello", string(body))
}

func TestCompression_Identity(t *testing.T) {
	rec := httptest.NewRecorder()
	mw.Compression(http.HandlerFunc(hello)).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Empty(t, rec.Header().Get("Content-Encoding"))
	assert.Equal(t, "hello", rec.Body.String())
}

func TestCompression_RefusedByQuality(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Accept-Encoding", "br, gzip;q=0")
	rec := httptest.NewRecorder()

	mw.Compression(http.HandlerFunc(hello)).ServeHTTP(rec, req)

	assert.Empty(t, rec.Header().Get("Content-Encoding"))
	assert.Equal(t, "hello", rec.Body.String())
}

func TestCompression_PassesThrough(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
		wantEnc string
	}{
		{"no content", func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusNoContent)
		}, ""},
		{"already encoded", func(w http.ResponseWriter, _ *http.Request) {
			w.Header().Set("Content-Encoding", "br")
			_, _ = w.Write([]byte("raw"))
		}, "br"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.Header.Set("Accept-Encoding", "gzip")
			rec := httptest.NewRecorder()

			mw.Compression(tt.handler).ServeHTTP(rec, req)

			assert.Equal(t, tt.wantEnc, rec.Header().Get("Content-Encoding"))
		})
	}
}

func TestCompression_ErrorStatusIsCompressed(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Accept-Encoding", "gzip")
	rec := httptest.NewRecorder()

	mw.Compression(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte("missing"))
	})).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
	zr, err := gzip.NewReader(rec.Body)
	require.NoError(t, err)
	body, err := io.ReadAll(zr)
	require.NoError(t, err)
	assert.Equal(t, "missing", string(body))
}
