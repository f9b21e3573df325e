package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/5w1tchy/bookshelf-api/internal/api/apperr"
	"github.com/5w1tchy/bookshelf-api/internal/api/httpx"
)

const msgUnhealthy = "Layanan tidak tersedia"

// Pinger checks a backing dependency.
type Pinger interface {
	PingContext(ctx context.Context) error
}

// Health reports liveness. When db is set it must answer a ping within a
// second.
func Health(db Pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if db != nil {
			ctx, cancel := context.WithTimeout(r.Context(), time.Second)
			defer cancel()
			if err := db.PingContext(ctx); err != nil {
				apperr.Write(w, r, apperr.New(http.StatusServiceUnavailable, msgUnhealthy, err))
				return
			}
		}
		httpx.Success(w, http.StatusOK, "", nil)
	}
}
