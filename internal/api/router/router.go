package router

import (
	"net/http"

	"github.com/5w1tchy/bookshelf-api/internal/api/apperr"
	"github.com/5w1tchy/bookshelf-api/internal/api/handlers"
	"github.com/5w1tchy/bookshelf-api/internal/api/handlers/books"
)

const (
	msgNotFound         = "Halaman tidak ditemukan"
	msgMethodNotAllowed = "Metode tidak diizinkan"
)

// Router mounts the API. db may be nil when no database backs the service.
func Router(svc books.Service, db handlers.Pinger) http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /healthz", handlers.Health(db))
	books.Register(mux, svc)

	return unmatched(mux)
}

// unmatched answers requests no route accepts with the fail envelope
// instead of the mux's plain-text 404/405, keeping the Allow header.
func unmatched(mux *http.ServeMux) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, pattern := mux.Handler(r); pattern != "" {
			mux.ServeHTTP(w, r)
			return
		}

		rec := &discardWriter{header: http.Header{}, status: http.StatusNotFound}
		mux.ServeHTTP(rec, r)

		if rec.status == http.StatusMethodNotAllowed {
			if allow := rec.header.Get("Allow"); allow != "" {
				w.Header().Set("Allow", allow)
			}
			apperr.WriteStatus(w, r, http.StatusMethodNotAllowed, msgMethodNotAllowed)
			return
		}
		apperr.WriteStatus(w, r, http.StatusNotFound, msgNotFound)
	})
}

// discardWriter records the status and headers the mux would have sent.
type discardWriter struct {
	header http.Header
	status int
}

func (d *discardWriter) Header() http.Header         { return d.header }
func (d *discardWriter) Write(b []byte) (int, error) { return len(b), nil }
func (d *discardWriter) WriteHeader(code int)        { d.status = code }
