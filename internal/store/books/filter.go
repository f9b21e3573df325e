package books

import (
	"strings"

	"github.com/5w1tchy/bookshelf-api/internal/models"
	"golang.org/x/text/cases"
)

// fold applies Unicode case folding so the name filter ignores case beyond ASCII.
func fold(s string) string {
	return cases.Fold().String(s)
}

// Match reports whether b satisfies every populated field of f.
func (f Filter) Match(b models.Book) bool {
	if f.Name != "" && !strings.Contains(fold(b.Name), fold(f.Name)) {
		return false
	}
	if f.Reading != nil && b.Reading != *f.Reading {
		return false
	}
	if f.Finished != nil && b.Finished() != *f.Finished {
		return false
	}
	return true
}
