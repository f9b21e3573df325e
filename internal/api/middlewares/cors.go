package middlewares

import (
	"net/http"
	"slices"

	"github.com/5w1tchy/bookshelf-api/internal/api/httpx"
	"github.com/5w1tchy/bookshelf-api/internal/logger"
)

const msgOriginNotAllowed = "Origin tidak diizinkan"

// Cors answers preflights and rejects origins outside allowed. A "*" entry
// allows any origin.
func Cors(allowed []string) Middleware {
	wildcard := slices.Contains(allowed, "*")
	isAllowed := func(origin string) bool {
		return wildcard || slices.Contains(allowed, origin)
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			origin := r.Header.Get("Origin")
			if origin == "" {
				next.ServeHTTP(w, r)
				return
			}
			if !isAllowed(origin) {
				logger.FromContext(r.Context()).WarnContext(r.Context(), "cors origin blocked",
					"origin", origin, "method", r.Method, "path", r.URL.Path)
				httpx.Fail(w, http.StatusForbidden, msgOriginNotAllowed)
				return
			}

			h := w.Header()
			if wildcard {
				h.Set("Access-Control-Allow-Origin", "*")
			} else {
				h.Set("Access-Control-Allow-Origin", origin)
				h.Add("Vary", "Origin")
			}
			h.Set("Access-Control-Expose-Headers",
				"X-Request-ID, X-RateLimit-Policy, X-RateLimit-Limit, X-RateLimit-Remaining, Retry-After, X-Response-Time")

			if r.Method == http.MethodOptions && r.Header.Get("Access-Control-Request-Method") != "" {
				h.Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
				h.Set("Access-Control-Allow-Headers", "Content-Type, X-Request-ID")
				h.Set("Access-Control-Max-Age", "3600")
				h.Add("Vary", "Access-Control-Request-Method")
				h.Add("Vary", "Access-Control-Request-Headers")
				w.WriteHeader(http.StatusNoContent)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
