package postgres

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"

	"ridebook/storage"
)

const (
	codeUndefinedTable  = "42P01"
	codeUniqueViolation = "23505"
)

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == codeUniqueViolation
}

// wrapMissingRelation tags undefined-table failures with storage.ErrMissingRelation.
func wrapMissingRelation(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == codeUndefinedTable {
		return fmt.Errorf("%w: %s", storage.ErrMissingRelation, pgErr.Message)
	}
	return err
}

// validID reports whether id can be compared against a UUID column.
// Malformed ids are treated as missing rows.
func validID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}
