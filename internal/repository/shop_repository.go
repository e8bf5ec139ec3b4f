package repository

import (
	"context"
	"errors"
	"fmt"
	"shop-service/internal/models"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

type shopRepo struct {
	db DBTX
}

func NewShopRepository(db DBTX) ShopRepository {
	return &shopRepo{db: db}
}

// CreateWithOwner inserts the shop and the owner link together.
func (r *shopRepo) CreateWithOwner(ctx context.Context, s *models.Shop, ownerID string) error {
	if s.Name == "" {
		return fmt.Errorf("%w: shop name required", ErrInvalidInput)
	}
	if ownerID == "" {
		return fmt.Errorf("%w: owner ID cannot be empty", ErrInvalidInput)
	}

	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to create transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	now := time.Now().UTC()
	s.ShopID = uuid.NewString()
	s.CreatedAt = now
	s.UpdatedAt = now

	_, err = tx.Exec(ctx,
		`INSERT INTO shops (shop_id, name, created_at, updated_at) VALUES ($1, $2, $3, $4)`,
		s.ShopID, s.Name, s.CreatedAt, s.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create shop: %w", translatePgError(err, "shop"))
	}

	_, err = tx.Exec(ctx,
		`INSERT INTO shop_users (shop_id, user_id, role, created_at) VALUES ($1, $2, $3, $4)`,
		s.ShopID, ownerID, string(models.ShopRoleOwner), now,
	)
	if err != nil {
		return fmt.Errorf("failed to link shop owner: %w", translatePgError(err, "shop user"))
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

func (r *shopRepo) GetByID(ctx context.Context, id string) (*models.Shop, error) {
	if id == "" {
		return nil, fmt.Errorf("%w: ID cannot be empty", ErrInvalidInput)
	}

	var s models.Shop
	err := r.db.QueryRow(ctx,
		`SELECT shop_id, name, created_at, updated_at FROM shops WHERE shop_id = $1`,
		id,
	).Scan(&s.ShopID, &s.Name, &s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get shop %s: %w", id, err)
	}

	return &s, nil
}

func (r *shopRepo) GetByUserID(ctx context.Context, userID string) ([]models.Shop, error) {
	sql := `
	SELECT s.shop_id, s.name, s.created_at, s.updated_at
	FROM shops s
	JOIN shop_users su ON su.shop_id = s.shop_id
	WHERE su.user_id = $1
	ORDER BY s.created_at DESC, s.shop_id
	`

	rows, err := r.db.Query(ctx, sql, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get shops of user %s: %w", userID, err)
	}

	defer rows.Close()

	shops := []models.Shop{}

	for rows.Next() {
		var s models.Shop
		if err := rows.Scan(&s.ShopID, &s.Name, &s.CreatedAt, &s.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan shops: %w", err)
		}
		shops = append(shops, s)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to complete row iteration: %w", err)
	}

	return shops, nil
}

// Delete removes the shop's orders first: order_items restrict product deletion,
// so the products cascade must not run while items still exist.
func (r *shopRepo) Delete(ctx context.Context, id string) error {
	if id == "" {
		return fmt.Errorf("%w: ID cannot be empty", ErrInvalidInput)
	}

	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to create transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `DELETE FROM orders WHERE shop_id = $1`, id); err != nil {
		return fmt.Errorf("failed to delete orders of shop %s: %w", id, err)
	}

	result, err := tx.Exec(ctx, `DELETE FROM shops WHERE shop_id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete shop %s: %w", id, translatePgError(err, "shop"))
	}

	if result.RowsAffected() == 0 {
		return ErrNotFound
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

func (r *shopRepo) GetMembership(ctx context.Context, shopID, userID string) (*models.ShopUser, error) {
	if shopID == "" || userID == "" {
		return nil, ErrNotFound
	}

	var link models.ShopUser
	var role string

	err := r.db.QueryRow(ctx,
		`SELECT shop_id, user_id, role, created_at FROM shop_users WHERE shop_id = $1 AND user_id = $2`,
		shopID, userID,
	).Scan(&link.ShopID, &link.UserID, &role, &link.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get membership: %w", err)
	}

	link.Role = models.ShopRole(role)
	return &link, nil
}

func (r *shopRepo) AddMember(ctx context.Context, link *models.ShopUser) error {
	if link.ShopID == "" || link.UserID == "" {
		return fmt.Errorf("%w: shop ID and user ID are required", ErrInvalidInput)
	}
	if !link.Role.Valid() {
		return fmt.Errorf("%w: invalid role '%s'", ErrInvalidInput, link.Role)
	}

	if link.CreatedAt.IsZero() {
		link.CreatedAt = time.Now().UTC()
	}

	_, err := r.db.Exec(ctx,
		`INSERT INTO shop_users (shop_id, user_id, role, created_at) VALUES ($1, $2, $3, $4)`,
		link.ShopID, link.UserID, string(link.Role), link.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to add member: %w", translatePgError(err, "shop member"))
	}

	return nil
}
