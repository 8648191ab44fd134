package repository

import (
	"database/sql"
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
)

// PostgreSQL SQLSTATE codes surfaced as domain errors.
const (
	pgUniqueViolation   = "23505"
	pgCheckViolation    = "23514"
	pgNotNullViolation  = "23502"
	pgInvalidTextFormat = "22P02"
)

// Errors names the domain errors a package reports for common database failures.
// A nil field leaves the matching failure unchanged.
type Errors struct {
	NotFound  error
	Duplicate error
	Invalid   error
}

// Map translates a database error into the matching domain error.
// sql.ErrNoRows maps to NotFound, unique violations to Duplicate, and
// check, not-null, and malformed-input violations to Invalid.
func (e Errors) Map(err error) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, sql.ErrNoRows) {
		return orErr(e.NotFound, err)
	}

	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return err
	}

	switch pgErr.Code {
	case pgUniqueViolation:
		return orErr(e.Duplicate, err)
	case pgCheckViolation, pgNotNullViolation, pgInvalidTextFormat:
		return orErr(e.Invalid, err)
	}
	return err
}

func orErr(domain, original error) error {
	if domain == nil {
		return original
	}
	return domain
}
