package apperr

import (
	"errors"
	"net/http"

	"github.com/5w1tchy/bookshelf-api/internal/api/httpx"
	"github.com/5w1tchy/bookshelf-api/internal/logger"
)

// MsgInternal is the message sent for errors that carry no client-facing text.
const MsgInternal = "Terjadi kegagalan pada server kami"

// MsgTooLarge is sent when the body exceeds the configured limit.
const MsgTooLarge = "Ukuran payload terlalu besar"

// Problem is an error that already knows how it should be answered.
type Problem struct {
	Status  int
	Message string
	Err     error
}

func (p *Problem) Error() string {
	if p.Err != nil {
		return p.Message + ": " + p.Err.Error()
	}
	return p.Message
}

func (p *Problem) Unwrap() error { return p.Err }

func New(status int, message string, err error) *Problem {
	return &Problem{Status: status, Message: message, Err: err}
}

// Write answers err with the fail envelope. Errors that are not a *Problem
// become a 500; every 5xx is logged with the request-scoped logger.
func Write(w http.ResponseWriter, r *http.Request, err error) {
	p := &Problem{Status: http.StatusInternalServerError, Message: MsgInternal, Err: err}

	var pe *Problem
	var mbe *http.MaxBytesError
	switch {
	case errors.As(err, &pe):
		p = pe
	case errors.As(err, &mbe):
		p = &Problem{Status: http.StatusRequestEntityTooLarge, Message: MsgTooLarge, Err: err}
	}
	if p.Status == 0 {
		p.Status = http.StatusInternalServerError
	}

	if p.Status >= http.StatusInternalServerError {
		logger.FromContext(r.Context()).ErrorContext(r.Context(), "request failed",
			"method", r.Method,
			"path", r.URL.Path,
			"status", p.Status,
			"error", err,
		)
	}
	httpx.Fail(w, p.Status, p.Message)
}

// WriteStatus answers with status and message directly.
func WriteStatus(w http.ResponseWriter, r *http.Request, status int, message string) {
	Write(w, r, New(status, message, nil))
}
