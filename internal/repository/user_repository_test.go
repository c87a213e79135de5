package repository

import (
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
)

func TestMapPgError(t *testing.T) {
	emailTaken := &pgconn.PgError{Code: uniqueViolation, ConstraintName: "users_email_key"}

	tests := []struct {
		name string
		in   error
		want error
	}{
		{"no rows", pgx.ErrNoRows, ErrNotFound},
		{"wrapped no rows", fmt.Errorf("scan: %w", pgx.ErrNoRows), ErrNotFound},
		{"email unique violation", emailTaken, ErrDuplicateEmail},
		{"wrapped email unique violation", fmt.Errorf("insert: %w", emailTaken), ErrDuplicateEmail},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, mapPgError(tt.in))
		})
	}
}

func TestMapPgErrorPassesOtherErrorsThrough(t *testing.T) {
	assert.NoError(t, mapPgError(nil))

	passthrough := []error{
		&pgconn.PgError{Code: uniqueViolation, ConstraintName: "roles_name_key"},
		&pgconn.PgError{Code: "23503", ConstraintName: "users_email_key"},
		errors.New("connection reset"),
	}
	for _, err := range passthrough {
		assert.Same(t, err, mapPgError(err))
	}
}
