package middlewares

import (
	"net/http"
	"slices"
	"strings"
)

// HPPOptions configures HTTP parameter pollution filtering. Repeated
// parameters collapse to their first value and parameters outside Whitelist
// are dropped.
type HPPOptions struct {
	CheckQuery                  bool
	CheckBody                   bool
	CheckBodyOnlyForContentType string
	Whitelist                   []string
}

func HPP(opts HPPOptions) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if opts.CheckBody && r.Method == http.MethodPost && isContentType(r, opts.CheckBodyOnlyForContentType) {
				filterBodyParams(r, opts.Whitelist)
			}
			if opts.CheckQuery && r.URL.RawQuery != "" {
				filterQueryParams(r, opts.Whitelist)
			}
			next.ServeHTTP(w, r)
		})
	}
}

func isContentType(r *http.Request, contentType string) bool {
	return strings.Contains(r.Header.Get("Content-Type"), contentType)
}

func filterBodyParams(r *http.Request, whitelist []string) {
	if err := r.ParseForm(); err != nil {
		return
	}
	for k, v := range r.Form {
		if !slices.Contains(whitelist, k) {
			delete(r.Form, k)
			continue
		}
		if len(v) > 1 {
			r.Form.Set(k, v[0])
		}
	}
}

func filterQueryParams(r *http.Request, whitelist []string) {
	query := r.URL.Query()
	for k, v := range query {
		if !slices.Contains(whitelist, k) {
			query.Del(k)
			continue
		}
		if len(v) > 1 {
			query.Set(k, v[0])
		}
	}
	r.URL.RawQuery = query.Encode()
}

// DefaultHPPOptions whitelists the query parameters the books API reads.
func DefaultHPPOptions() HPPOptions {
	return HPPOptions{
		CheckQuery:                  true,
		CheckBody:                   true,
		CheckBodyOnlyForContentType: "application/x-www-form-urlencoded",
		Whitelist:                   []string{"name", "reading", "finished"},
	}
}
