package registry

import (
	"errors"
	"fmt"

	"github.com/5w1tchy/bookshelf-api/internal/store/books"
)

var (
	ErrNotFound     = books.ErrNotFound
	ErrNameRequired = errors.New("name is required for lookup")
	ErrInsertFailed = errors.New("inserted book could not be resolved")
)

// Op names the mutation a validation failure belongs to.
type Op string

const (
	OpInsert Op = "insert"
	OpUpdate Op = "update"
)

// Reason enumerates why a payload was rejected. Checks run in declaration
// order and the first failing one is reported.
type Reason int

const (
	ReasonMissingPayload Reason = iota + 1
	ReasonMissingName
	ReasonYearNotNumber
	ReasonPageCountNotNumber
	ReasonReadPageNotNumber
	ReasonReadPageExceedsPageCount
	ReasonNegativePages
)

func (r Reason) String() string {
	switch r {
	case ReasonMissingPayload:
		return "missing payload"
	case ReasonMissingName:
		return "missing name"
	case ReasonYearNotNumber:
		return "year is not a number"
	case ReasonPageCountNotNumber:
		return "pageCount is not a number"
	case ReasonReadPageNotNumber:
		return "readPage is not a number"
	case ReasonNegativePages:
		return "page numbers must not be negative"
	case ReasonReadPageExceedsPageCount:
		return "readPage exceeds pageCount"
	default:
		return fmt.Sprintf("reason(%d)", int(r))
	}
}

type ValidationError struct {
	Op     Op
	Reason Reason
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s book: %s", e.Op, e.Reason)
}

func invalid(op Op, r Reason) error {
	return &ValidationError{Op: op, Reason: r}
}

// ReasonOf extracts the validation reason from err, if any.
func ReasonOf(err error) (Reason, bool) {
	var ve *ValidationError
	if errors.As(err, &ve) {
		return ve.Reason, true
	}
	return 0, false
}
