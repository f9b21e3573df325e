package books

import (
	"net/http"
	"strings"

	"github.com/5w1tchy/bookshelf-api/internal/api/apperr"
	"github.com/5w1tchy/bookshelf-api/internal/api/httpx"
	storebooks "github.com/5w1tchy/bookshelf-api/internal/store/books"
)

func list(svc Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		f := storebooks.Filter{
			Name:     q.Get("name"),
			Reading:  parseFlag(q.Get("reading")),
			Finished: parseFlag(q.Get("finished")),
		}

		items, err := svc.List(r.Context(), f)
		if err != nil {
			apperr.Write(w, r, err)
			return
		}
		httpx.OK(w, listData{Books: items})
	}
}

// parseFlag accepts 1/true and 0/false. Anything else leaves the filter unset.
func parseFlag(v string) *bool {
	var b bool
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "1", "true":
		b = true
	case "0", "false":
		b = false
	default:
		return nil
	}
	return &b
}
