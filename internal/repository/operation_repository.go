package repository

import (
	"context"
	"fmt"
	"shop-service/internal/models"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"
)

type execer interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

type operationRepo struct {
	db DBTX
}

func NewOperationRepository(db DBTX) OperationRepository {
	return &operationRepo{db: db}
}

var validOperationTypes = map[models.OperationType]bool{
	models.OperationOutgoing:   true,
	models.OperationIncoming:   true,
	models.OperationAdjustment: true,
}

func (r *operationRepo) Create(ctx context.Context, o *models.Operation) error {
	if o == nil {
		return fmt.Errorf("%w: operation cannot be nil", ErrInvalidInput)
	}
	if o.ProductID == "" {
		return fmt.Errorf("%w: product ID cannot be empty", ErrInvalidInput)
	}
	if o.ChangeQuant == 0 {
		return fmt.Errorf("%w: the variable quantity cannot be 0", ErrInvalidInput)
	}
	if !validOperationTypes[o.OperationType] {
		return fmt.Errorf("%w: invalid operation type '%s'", ErrInvalidInput, o.OperationType)
	}

	return insertOperation(ctx, r.db, o)
}

// insertOperation appends a ledger row. Callers inside a transaction pass the tx.
func insertOperation(ctx context.Context, db execer, o *models.Operation) error {
	if o.OperationID == "" {
		o.OperationID = uuid.NewString()
	}
	if o.CreatedAt.IsZero() {
		o.CreatedAt = time.Now().UTC()
	}

	sql := `INSERT INTO operations (
		operation_id,
		product_id,
		order_id,
		operation_type,
		change_quant,
		created_at
		) VALUES ($1, $2, $3, $4, $5, $6)
	`

	_, err := db.Exec(ctx, sql,
		o.OperationID,
		o.ProductID,
		o.OrderID,
		string(o.OperationType),
		o.ChangeQuant,
		o.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create operation: %w", translatePgError(err, "operation"))
	}
	return nil
}

// decrementStock takes qty units from a product only when enough are left.
// It reports false without error when the guard rejected the update.
func decrementStock(ctx context.Context, db execer, productID string, qty int, now time.Time) (bool, error) {
	sql := `UPDATE products
		SET stock = stock - $1, updated_at = $2
		WHERE product_id = $3 AND stock >= $1
	`

	result, err := db.Exec(ctx, sql, qty, now, productID)
	if err != nil {
		return false, fmt.Errorf("failed to update stock of product %s: %w", productID, err)
	}

	return result.RowsAffected() == 1, nil
}

// restoreStock gives qty units back. There is no upper bound.
func restoreStock(ctx context.Context, db execer, productID string, qty int, now time.Time) error {
	sql := `UPDATE products
		SET stock = stock + $1, updated_at = $2
		WHERE product_id = $3
	`

	result, err := db.Exec(ctx, sql, qty, now, productID)
	if err != nil {
		return fmt.Errorf("failed to restore stock of product %s: %w", productID, err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("%w: product %s", ErrNotFound, productID)
	}

	return nil
}

func (r *operationRepo) GetByProductID(ctx context.Context, productID string) ([]models.Operation, error) {
	if productID == "" {
		return nil, fmt.Errorf("%w: product ID cannot be empty", ErrInvalidInput)
	}

	sql := `SELECT
		operation_id,
		product_id,
		order_id,
		operation_type,
		change_quant,
		created_at
		FROM operations
		WHERE product_id = $1
		ORDER BY created_at, operation_id
		`

	return r.query(ctx, sql, productID)
}

func (r *operationRepo) GetByOrderID(ctx context.Context, orderID string) ([]models.Operation, error) {
	if orderID == "" {
		return nil, fmt.Errorf("%w: order ID cannot be empty", ErrInvalidInput)
	}

	sql := `SELECT
		operation_id,
		product_id,
		order_id,
		operation_type,
		change_quant,
		created_at
		FROM operations
		WHERE order_id = $1
		ORDER BY created_at, operation_id
		`

	return r.query(ctx, sql, orderID)
}

func (r *operationRepo) query(ctx context.Context, sql string, arg string) ([]models.Operation, error) {
	rows, err := r.db.Query(ctx, sql, arg)
	if err != nil {
		return nil, fmt.Errorf("failed to get operations: %w", err)
	}

	defer rows.Close()

	operations := []models.Operation{}

	for rows.Next() {
		var o models.Operation
		var orderID pgtype.Text
		var opType string

		err := rows.Scan(&o.OperationID,
			&o.ProductID,
			&orderID,
			&opType,
			&o.ChangeQuant,
			&o.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan operations: %w", err)
		}

		if orderID.Valid {
			o.OrderID = &orderID.String
		}
		o.OperationType = models.OperationType(opType)

		operations = append(operations, o)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to complete rows iteration: %w", err)
	}

	return operations, nil
}
