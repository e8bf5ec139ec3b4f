package repository

import (
	"context"
	"fmt"
	"shop-service/internal/models"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
)

type supplierRepo struct {
	db DBTX
}

func NewSupplierRepository(db DBTX) SupplierRepository {
	return &supplierRepo{db: db}
}

func (r *supplierRepo) CreateForShop(ctx context.Context, shopID string, s *models.Supplier) error {
	if shopID == "" {
		return fmt.Errorf("%w: shop ID cannot be empty", ErrInvalidInput)
	}
	if s.Name == "" {
		return fmt.Errorf("%w: supplier name required", ErrInvalidInput)
	}

	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to create transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	now := time.Now().UTC()
	s.SupplierID = uuid.NewString()
	s.CreatedAt = now
	s.UpdatedAt = now

	sql := `
		INSERT INTO suppliers (
			supplier_id,
			name,
			email,
			phone,
			address,
			created_at,
			updated_at
	) VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	_, err = tx.Exec(ctx, sql,
		s.SupplierID,
		s.Name,
		s.Email,
		s.Phone,
		s.Address,
		s.CreatedAt,
		s.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create supplier: %w", translatePgError(err, "supplier"))
	}

	_, err = tx.Exec(ctx,
		`INSERT INTO shop_suppliers (shop_id, supplier_id) VALUES ($1, $2)`,
		shopID, s.SupplierID,
	)
	if err != nil {
		return fmt.Errorf("failed to link supplier: %w", translatePgError(err, "shop supplier"))
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

func (r *supplierRepo) GetByShopID(ctx context.Context, shopID string) ([]models.Supplier, error) {
	sql := `
	SELECT
		sp.supplier_id,
		sp.name,
		sp.email,
		sp.phone,
		sp.address,
		sp.created_at,
		sp.updated_at
	FROM suppliers sp
	JOIN shop_suppliers ss ON ss.supplier_id = sp.supplier_id
	WHERE ss.shop_id = $1
	ORDER BY sp.name, sp.supplier_id
	`

	rows, err := r.db.Query(ctx, sql, shopID)
	if err != nil {
		return nil, fmt.Errorf("failed to get suppliers of shop %s: %w", shopID, err)
	}

	defer rows.Close()

	suppliers := []models.Supplier{}

	for rows.Next() {
		var s models.Supplier
		var email, phone, address pgtype.Text

		err := rows.Scan(&s.SupplierID,
			&s.Name,
			&email,
			&phone,
			&address,
			&s.CreatedAt,
			&s.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan suppliers: %w", err)
		}

		s.Email = textPtr(email)
		s.Phone = textPtr(phone)
		s.Address = textPtr(address)
		suppliers = append(suppliers, s)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to complete row iteration: %w", err)
	}

	return suppliers, nil
}

func (r *supplierRepo) IsLinked(ctx context.Context, shopID, supplierID string) (bool, error) {
	var linked bool
	err := r.db.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM shop_suppliers WHERE shop_id = $1 AND supplier_id = $2)`,
		shopID, supplierID,
	).Scan(&linked)
	if err != nil {
		return false, fmt.Errorf("failed to check supplier link: %w", err)
	}
	return linked, nil
}

// Unlink removes the shop link only. The supplier row stays for other shops.
func (r *supplierRepo) Unlink(ctx context.Context, shopID, supplierID string) error {
	result, err := r.db.Exec(ctx,
		`DELETE FROM shop_suppliers WHERE shop_id = $1 AND supplier_id = $2`,
		shopID, supplierID,
	)
	if err != nil {
		return fmt.Errorf("failed to unlink supplier %s: %w", supplierID, err)
	}

	if result.RowsAffected() == 0 {
		return ErrNotFound
	}

	return nil
}
