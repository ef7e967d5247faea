package dberrors

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
)

// PostgreSQL error codes the repositories care about
const (
	codeForeignKeyViolation       = "23503"
	codeCheckViolation            = "23514"
	codeInvalidTextRepresentation = "22P02"
)

// ForeignKeyViolation reports whether err is a foreign key violation and
// returns the violated constraint name.
func ForeignKeyViolation(err error) (string, bool) {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == codeForeignKeyViolation {
		return pgErr.ConstraintName, true
	}
	return "", false
}

// IsInvalidInput reports whether the database rejected a value itself,
// either a CHECK constraint or a malformed literal such as a bad uuid.
func IsInvalidInput(err error) bool {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return false
	}
	return pgErr.Code == codeCheckViolation || pgErr.Code == codeInvalidTextRepresentation
}
