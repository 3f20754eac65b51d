// Package repository provides data access layer implementations for the application.
package repository

import (
	"errors"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

// ErrInvalidReference reports a write that points at a row that does not exist.
var ErrInvalidReference = errors.New("referenced record does not exist")

// ErrDuplicate reports a write that violates a unique constraint.
var ErrDuplicate = errors.New("record already exists")

const (
	pgUniqueViolation     = "23505"
	pgForeignKeyViolation = "23503"
)

func isForeignKeyViolation(err error) bool {
	if errors.Is(err, gorm.ErrForeignKeyViolated) {
		return true
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == pgForeignKeyViolation
	}
	return strings.Contains(err.Error(), "FOREIGN KEY constraint failed")
}

func isUniqueViolation(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == pgUniqueViolation
	}
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}

// translateWriteError maps constraint violations to repository sentinels.
func translateWriteError(err error) error {
	switch {
	case err == nil:
		return nil
	case isForeignKeyViolation(err):
		return errors.Join(ErrInvalidReference, err)
	case isUniqueViolation(err):
		return errors.Join(ErrDuplicate, err)
	default:
		return err
	}
}
