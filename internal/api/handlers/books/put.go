package books

import (
	"net/http"

	"github.com/5w1tchy/bookshelf-api/internal/api/apperr"
	"github.com/5w1tchy/bookshelf-api/internal/api/httpx"
	"github.com/5w1tchy/bookshelf-api/internal/logger"
)

func put(svc Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		defer r.Body.Close()
		bookID := r.PathValue("bookId")

		p, err := decodePayload(r)
		if err != nil {
			apperr.Write(w, r, err)
			return
		}

		if err := svc.Update(r.Context(), bookID, p); err != nil {
			apperr.Write(w, r, mapError(err, msgUpdateNotFound))
			return
		}

		logger.FromContext(r.Context()).InfoContext(r.Context(), "book updated", "book_id", bookID)
		httpx.Success(w, http.StatusOK, msgUpdated, nil)
	}
}
