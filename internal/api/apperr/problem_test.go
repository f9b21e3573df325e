package apperr

import (
	"bytes"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/5w1tchy/bookshelf-api/internal/logger"
)

func TestWrite_Problem(t *testing.T) {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/books/x", nil)

	Write(rec, req, fmt.Errorf("wrapped: %w", New(http.StatusNotFound, "Buku tidak ditemukan", nil)))

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.JSONEq(t, `{"status":"fail","message":"Buku tidak ditemukan"}`, rec.Body.String())
}

func TestWrite_UnknownErrorIsLogged500(t *testing.T) {
	var buf bytes.Buffer
	l := slog.New(slog.NewTextHandler(&buf, nil))

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/books", nil)
	req = req.WithContext(logger.WithContext(req.Context(), l))

	Write(rec, req, errors.New("db down"))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.JSONEq(t, `{"status":"fail","message":"`+MsgInternal+`"}`, rec.Body.String())
	assert.Contains(t, buf.String(), "db down")
	assert.Contains(t, buf.String(), "path=/books")
}

func TestWrite_MaxBytes(t *testing.T) {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/books", nil)

	Write(rec, req, fmt.Errorf("decode: %w", &http.MaxBytesError{Limit: 10}))

	assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
	assert.Contains(t, rec.Body.String(), MsgTooLarge)
}

func TestProblem_Unwrap(t *testing.T) {
	cause := errors.New("cause")
	p := New(http.StatusBadRequest, "bad", cause)
	assert.ErrorIs(t, p, cause)
	assert.Equal(t, "bad: cause", p.Error())
}

func TestWriteStatus(t *testing.T) {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPatch, "/books", nil)

	WriteStatus(rec, req, http.StatusMethodNotAllowed, "Metode tidak diizinkan")

	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
	assert.JSONEq(t, `{"status":"fail","message":"Metode tidak diizinkan"}`, rec.Body.String())
}
