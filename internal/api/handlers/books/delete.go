package books

import (
	"net/http"

	"github.com/5w1tchy/bookshelf-api/internal/api/apperr"
	"github.com/5w1tchy/bookshelf-api/internal/api/httpx"
	"github.com/5w1tchy/bookshelf-api/internal/logger"
)

func del(svc Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		bookID := r.PathValue("bookId")

		if err := svc.Delete(r.Context(), bookID); err != nil {
			apperr.Write(w, r, mapError(err, msgDeleteNotFound))
			return
		}

		logger.FromContext(r.Context()).InfoContext(r.Context(), "book deleted", "book_id", bookID)
		httpx.Success(w, http.StatusOK, msgDeleted, nil)
	}
}
