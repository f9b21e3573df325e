package books

import "net/http"

// Register mounts the book routes on mux.
func Register(mux *http.ServeMux, svc Service) {
	mux.Handle("POST /books", create(svc))
	mux.Handle("GET /books", list(svc))
	mux.Handle("GET /books/by-name", byName(svc))
	mux.Handle("GET /books/{bookId}", get(svc))
	mux.Handle("PUT /books/{bookId}", put(svc))
	mux.Handle("DELETE /books/{bookId}", del(svc))
}
