package books

import (
	"net/http"

	"github.com/5w1tchy/bookshelf-api/internal/api/apperr"
	"github.com/5w1tchy/bookshelf-api/internal/api/httpx"
)

func get(svc Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		b, err := svc.Get(r.Context(), r.PathValue("bookId"))
		if err != nil {
			apperr.Write(w, r, mapError(err, msgNotFound))
			return
		}
		httpx.OK(w, bookData{Book: b})
	}
}

// byName returns the first book whose name matches the name query exactly.
func byName(svc Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		b, err := svc.FindByName(r.Context(), r.URL.Query().Get("name"))
		if err != nil {
			apperr.Write(w, r, mapError(err, msgNotFound))
			return
		}
		httpx.OK(w, bookData{Book: b})
	}
}
