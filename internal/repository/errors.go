package repository

import (
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
)

var (
	ErrNotFound     = errors.New("resource not found")
	ErrDuplicate    = errors.New("duplicate resource")
	ErrInvalidInput = errors.New("invalid input data")
	ErrNotEnough    = errors.New("insufficient stock")
	ErrUnauthorized = errors.New("unauthorized")
	ErrConflict     = errors.New("resource is still referenced")
)

// InsufficientStockError names the product whose stock could not cover a line.
// Available is the stock read at the start of the transaction.
type InsufficientStockError struct {
	ProductID string
	Requested int
	Available int
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("%s: product %s requested %d, available %d",
		ErrNotEnough, e.ProductID, e.Requested, e.Available)
}

func (e *InsufficientStockError) Unwrap() error {
	return ErrNotEnough
}

const (
	pgUniqueViolation     = "23505"
	pgForeignKeyViolation = "23503"
	pgCheckViolation      = "23514"
)

// translatePgError maps constraint violations to sentinels and leaves everything
// else untouched.
func translatePgError(err error, what string) error {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return err
	}

	switch pgErr.Code {
	case pgUniqueViolation:
		return fmt.Errorf("%w: %s already exists", ErrDuplicate, what)
	case pgForeignKeyViolation:
		return fmt.Errorf("%w: %s (%s)", ErrConflict, what, pgErr.ConstraintName)
	case pgCheckViolation:
		return fmt.Errorf("%w: %s violates %s", ErrInvalidInput, what, pgErr.ConstraintName)
	}

	return err
}
