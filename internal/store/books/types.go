package books

import "errors"

var (
	ErrNotFound = errors.New("book not found")
	ErrConflict = errors.New("book id already exists")
)

// Filter narrows List results. Nil/empty fields are not applied; the
// remaining ones compose conjunctively.
type Filter struct {
	Name     string // case-insensitive substring of the book name
	Reading  *bool
	Finished *bool
}
