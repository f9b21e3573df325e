package httpx

import (
	"errors"
	"io"
	"net/http"

	jsoniter "github.com/json-iterator/go"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

const (
	StatusSuccess = "success"
	StatusFail    = "fail"
)

// Envelope is the body of every response.
type Envelope struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
	Data    any    `json:"data,omitempty"`
}

func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func Success(w http.ResponseWriter, status int, message string, data any) {
	WriteJSON(w, status, Envelope{Status: StatusSuccess, Message: message, Data: data})
}

func OK(w http.ResponseWriter, data any) {
	Success(w, http.StatusOK, "", data)
}

func Fail(w http.ResponseWriter, status int, message string) {
	WriteJSON(w, status, Envelope{Status: StatusFail, Message: message})
}

// ErrEmptyBody is returned by DecodeJSON when the request has no body.
var ErrEmptyBody = errors.New("empty request body")

// DecodeJSON decodes the request body into v. Bodies cut short by
// http.MaxBytesReader surface as *http.MaxBytesError.
func DecodeJSON(r *http.Request, v any) error {
	if r.Body == nil {
		return ErrEmptyBody
	}
	err := json.NewDecoder(r.Body).Decode(v)
	if errors.Is(err, io.EOF) {
		return ErrEmptyBody
	}
	return err
}
