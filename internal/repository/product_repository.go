package repository

import (
	"context"
	"errors"
	"fmt"
	"shop-service/internal/models"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
)

type productRepo struct {
	db DBTX
}

func NewProductRepository(db DBTX) ProductRepository {
	return &productRepo{db: db}
}

func validateProduct(p *models.Product) error {
	if p.ShopID == "" {
		return fmt.Errorf("%w: shop ID cannot be empty", ErrInvalidInput)
	}
	if p.Name == "" {
		return fmt.Errorf("%w: product name required", ErrInvalidInput)
	}
	if p.Price < 0 {
		return fmt.Errorf("%w: product price cannot be negative", ErrInvalidInput)
	}
	if p.Stock < 0 {
		return fmt.Errorf("%w: product stock cannot be negative", ErrInvalidInput)
	}
	return nil
}

// Create inserts the product and, when it starts with stock, an incoming ledger row.
func (r *productRepo) Create(ctx context.Context, p *models.Product) error {
	if err := validateProduct(p); err != nil {
		return err
	}

	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to create transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	sql := `
		INSERT INTO products (
			product_id,
			shop_id,
			supplier_id,
			name,
			price,
			stock,
			created_at,
			updated_at
	) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`

	now := time.Now().UTC().Truncate(time.Microsecond)
	p.ProductID = uuid.NewString()
	p.CreatedAt = now
	p.UpdatedAt = now

	_, err = tx.Exec(ctx, sql,
		p.ProductID,
		p.ShopID,
		p.SupplierID,
		p.Name,
		p.Price,
		p.Stock,
		p.CreatedAt,
		p.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create product: %w", translatePgError(err, "product"))
	}

	if p.Stock > 0 {
		err = insertOperation(ctx, tx, &models.Operation{
			ProductID:     p.ProductID,
			OperationType: models.OperationIncoming,
			ChangeQuant:   p.Stock,
			CreatedAt:     now,
		})
		if err != nil {
			return err
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

const productColumns = `
			product_id,
			shop_id,
			supplier_id,
			name,
			price,
			stock,
			created_at,
			updated_at`

func scanProduct(row pgx.Row) (*models.Product, error) {
	var p models.Product
	var supplierID pgtype.Text

	err := row.Scan(
		&p.ProductID,
		&p.ShopID,
		&supplierID,
		&p.Name,
		&p.Price,
		&p.Stock,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	p.SupplierID = textPtr(supplierID)
	return &p, nil
}

func (r *productRepo) GetByID(ctx context.Context, shopID, id string) (*models.Product, error) {
	if shopID == "" || id == "" {
		return nil, fmt.Errorf("%w: ID cannot be empty", ErrInvalidInput)
	}

	sql := `SELECT` + productColumns + `
		FROM products WHERE product_id = $1 AND shop_id = $2
		`

	product, err := scanProduct(r.db.QueryRow(ctx, sql, id, shopID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get product by id %s: %w", id, err)
	}

	return product, nil
}

func (r *productRepo) GetByShopID(ctx context.Context, shopID string) ([]models.Product, error) {
	if shopID == "" {
		return nil, fmt.Errorf("%w: shop ID cannot be empty", ErrInvalidInput)
	}

	sql := `SELECT` + productColumns + `
		FROM products
		WHERE shop_id = $1
		ORDER BY created_at DESC, product_id
	`

	rows, err := r.db.Query(ctx, sql, shopID)
	if err != nil {
		return nil, fmt.Errorf("failed to get products of shop %s: %w", shopID, err)
	}

	defer rows.Close()

	products := []models.Product{}

	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan products: %w", err)
		}
		products = append(products, *p)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to complete row iteration: %w", err)
	}

	return products, nil
}

// Update overwrites the editable fields. A changed stock is recorded as an
// adjustment with the delta. A non-zero p.UpdatedAt must match the stored
// updated_at, otherwise the write is refused with ErrConflict.
func (r *productRepo) Update(ctx context.Context, p *models.Product) error {
	if err := validateProduct(p); err != nil {
		return err
	}
	if p.ProductID == "" {
		return fmt.Errorf("%w: ID cannot be empty", ErrInvalidInput)
	}

	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to create transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	var oldStock int
	var lastUpdate time.Time
	err = tx.QueryRow(ctx,
		`SELECT stock, updated_at FROM products WHERE product_id = $1 AND shop_id = $2 FOR UPDATE`,
		p.ProductID, p.ShopID,
	).Scan(&oldStock, &lastUpdate)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrNotFound
		}
		return fmt.Errorf("failed to lock product %s: %w", p.ProductID, err)
	}

	if !p.UpdatedAt.IsZero() && !sameInstant(p.UpdatedAt, lastUpdate) {
		return fmt.Errorf("%w: product %s changed since it was read", ErrConflict, p.ProductID)
	}

	sql := `
	UPDATE products
	SET
		name = $1,
		price = $2,
		stock = $3,
		supplier_id = $4,
		updated_at = $5
	WHERE product_id = $6 AND shop_id = $7
	RETURNING created_at, updated_at
	`

	now := time.Now().UTC()

	err = tx.QueryRow(ctx, sql,
		p.Name,
		p.Price,
		p.Stock,
		p.SupplierID,
		now,
		p.ProductID,
		p.ShopID,
	).Scan(&p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrNotFound
		}
		return fmt.Errorf("failed to update product %s: %w", p.ProductID, translatePgError(err, "product"))
	}

	if delta := p.Stock - oldStock; delta != 0 {
		err = insertOperation(ctx, tx, &models.Operation{
			ProductID:     p.ProductID,
			OperationType: models.OperationAdjustment,
			ChangeQuant:   delta,
			CreatedAt:     now,
		})
		if err != nil {
			return err
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

// Delete fails with ErrConflict while order items still reference the product.
func (r *productRepo) Delete(ctx context.Context, shopID, id string) error {
	if shopID == "" || id == "" {
		return fmt.Errorf("%w: ID cannot be empty", ErrInvalidInput)
	}

	sql := `DELETE FROM products WHERE product_id = $1 AND shop_id = $2`

	result, err := r.db.Exec(ctx, sql, id, shopID)
	if err != nil {
		return fmt.Errorf("failed to delete product %s: %w", id, translatePgError(err, "product"))
	}

	if result.RowsAffected() == 0 {
		return ErrNotFound
	}

	return nil
}

// sameInstant compares at the microsecond precision Postgres stores.
func sameInstant(a, b time.Time) bool {
	return a.Truncate(time.Microsecond).Equal(b.Truncate(time.Microsecond))
}
