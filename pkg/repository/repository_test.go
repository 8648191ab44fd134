package repository_test

import (
	"database/sql"
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/JaimeStill/folio/pkg/repository"
)

var (
	errNotFound  = errors.New("not found")
	errDuplicate = errors.New("duplicate")
	errInvalid   = errors.New("invalid")
)

func TestErrorsMap(t *testing.T) {
	domain := repository.Errors{
		NotFound:  errNotFound,
		Duplicate: errDuplicate,
		Invalid:   errInvalid,
	}
	passthrough := errors.New("connection reset")
	foreignKey := &pgconn.PgError{Code: "23503"}

	tests := []struct {
		name string
		err  error
		want error
	}{
		{"nil", nil, nil},
		{"no rows", sql.ErrNoRows, errNotFound},
		{"wrapped no rows", fmt.Errorf("find: %w", sql.ErrNoRows), errNotFound},
		{"unique violation", &pgconn.PgError{Code: "23505"}, errDuplicate},
		{"check violation", &pgconn.PgError{Code: "23514"}, errInvalid},
		{"not null violation", &pgconn.PgError{Code: "23502"}, errInvalid},
		{"invalid text", &pgconn.PgError{Code: "22P02"}, errInvalid},
		{"foreign key passthrough", foreignKey, foreignKey},
		{"other passthrough", passthrough, passthrough},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := domain.Map(tt.err)
			if got != tt.want {
				t.Errorf("Map(%v) = %v, want %v", tt.err, got, tt.want)
			}
		})
	}
}

func TestErrorsMapUnsetField(t *testing.T) {
	domain := repository.Errors{NotFound: errNotFound}
	pgErr := &pgconn.PgError{Code: "23505"}

	if got := domain.Map(pgErr); got != pgErr {
		t.Errorf("Map() with unset Duplicate = %v, want original error", got)
	}
}
