package repository

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
)

// Missing rows are reported with pgx.ErrNoRows by every implementation.
var (
	ErrVersionConflict   = errors.New("document was modified concurrently")
	ErrDuplicateNumber   = errors.New("process or tracking number already taken")
	ErrDuplicate         = errors.New("record violates a uniqueness constraint")
	ErrReferenceNotFound = errors.New("referenced record does not exist")
)

const (
	pgUniqueViolation     = "23505"
	pgForeignKeyViolation = "23503"
)

var numberConstraints = map[string]struct{}{
	"documents_process_number_key":  {},
	"documents_tracking_number_key": {},
}

func translate(err error) error {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return err
	}
	switch pgErr.Code {
	case pgUniqueViolation:
		if _, ok := numberConstraints[pgErr.ConstraintName]; ok {
			return ErrDuplicateNumber
		}
		return ErrDuplicate
	case pgForeignKeyViolation:
		return ErrReferenceNotFound
	}
	return err
}
