package books

import (
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
)

const (
	sqlstateUniqueViolation = "23505"
	sqlstateCheckViolation  = "23514"
)

// mapPGError folds well-known SQLSTATEs into the store's sentinel errors.
func mapPGError(err error) error {
	var pg *pgconn.PgError
	if !errors.As(err, &pg) {
		return err
	}
	switch pg.Code {
	case sqlstateUniqueViolation:
		return fmt.Errorf("%w: %s", ErrConflict, pg.ConstraintName)
	case sqlstateCheckViolation:
		return fmt.Errorf("constraint %s violated: %w", pg.ConstraintName, err)
	default:
		return err
	}
}
