package postgres

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
)

// uniqueViolation is the Postgres error code for a duplicate key.
const uniqueViolation = "23505"

// isUniqueViolation reports whether err is a unique-constraint failure.
// Stores translate these into forum.ErrConflict so services can decide
// between regenerate (invite codes) and refetch (conversation pairs)
// without depending on pgconn.
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolation
}
