package books

import (
	"net/http"

	"github.com/5w1tchy/bookshelf-api/internal/api/apperr"
	"github.com/5w1tchy/bookshelf-api/internal/api/httpx"
	"github.com/5w1tchy/bookshelf-api/internal/logger"
)

func create(svc Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		defer r.Body.Close()

		p, err := decodePayload(r)
		if err != nil {
			apperr.Write(w, r, err)
			return
		}

		bookID, err := svc.Insert(r.Context(), p)
		if err != nil {
			apperr.Write(w, r, mapError(err, msgNotFound))
			return
		}

		logger.FromContext(r.Context()).InfoContext(r.Context(), "book created", "book_id", bookID)
		httpx.Success(w, http.StatusCreated, msgCreated, createdData{BookID: bookID})
	}
}
