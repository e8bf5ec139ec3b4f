package repository

import (
	"context"
	"fmt"
	"shop-service/internal/models"

	"github.com/jackc/pgx/v5/pgtype"
)

type dashboardRepo struct {
	db DBTX
}

func NewDashboardRepository(db DBTX) DashboardRepository {
	return &dashboardRepo{db: db}
}

// Load reads the rows of every shop the user is linked to. A non-empty shopID
// narrows it to that shop.
func (r *dashboardRepo) Load(ctx context.Context, userID, shopID string) (*models.DashboardSource, error) {
	if userID == "" {
		return nil, fmt.Errorf("%w: user ID cannot be empty", ErrInvalidInput)
	}

	var scope pgtype.Text
	if shopID != "" {
		scope = pgtype.Text{String: shopID, Valid: true}
	}

	src := &models.DashboardSource{}

	if err := r.loadShops(ctx, src, userID, scope); err != nil {
		return nil, err
	}
	if err := r.loadSuppliers(ctx, src, userID, scope); err != nil {
		return nil, err
	}
	if err := r.loadProducts(ctx, src, userID, scope); err != nil {
		return nil, err
	}
	if err := r.loadOrders(ctx, src, userID, scope); err != nil {
		return nil, err
	}

	return src, nil
}

func (r *dashboardRepo) loadShops(ctx context.Context, src *models.DashboardSource, userID string, scope pgtype.Text) error {
	sql := `
	SELECT s.shop_id, s.name, s.created_at, s.updated_at
	FROM shops s
	JOIN shop_users su ON su.shop_id = s.shop_id
	WHERE su.user_id = $1 AND ($2::uuid IS NULL OR s.shop_id = $2::uuid)
	ORDER BY s.name, s.shop_id
	`

	rows, err := r.db.Query(ctx, sql, userID, scope)
	if err != nil {
		return fmt.Errorf("failed to get dashboard shops: %w", err)
	}

	defer rows.Close()

	src.Shops = []models.Shop{}
	for rows.Next() {
		var s models.Shop
		if err := rows.Scan(&s.ShopID, &s.Name, &s.CreatedAt, &s.UpdatedAt); err != nil {
			return fmt.Errorf("failed to scan dashboard shops: %w", err)
		}
		src.Shops = append(src.Shops, s)
	}

	return rows.Err()
}

func (r *dashboardRepo) loadSuppliers(ctx context.Context, src *models.DashboardSource, userID string, scope pgtype.Text) error {
	sql := `
	SELECT DISTINCT ss.supplier_id
	FROM shop_suppliers ss
	JOIN shop_users su ON su.shop_id = ss.shop_id
	WHERE su.user_id = $1 AND ($2::uuid IS NULL OR ss.shop_id = $2::uuid)
	ORDER BY ss.supplier_id
	`

	rows, err := r.db.Query(ctx, sql, userID, scope)
	if err != nil {
		return fmt.Errorf("failed to get dashboard suppliers: %w", err)
	}

	defer rows.Close()

	src.SupplierIDs = []string{}
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return fmt.Errorf("failed to scan dashboard suppliers: %w", err)
		}
		src.SupplierIDs = append(src.SupplierIDs, id)
	}

	return rows.Err()
}

func (r *dashboardRepo) loadProducts(ctx context.Context, src *models.DashboardSource, userID string, scope pgtype.Text) error {
	sql := `
	SELECT
		p.product_id,
		p.shop_id,
		s.name,
		p.supplier_id,
		sp.name,
		p.price,
		p.stock,
		p.created_at
	FROM products p
	JOIN shops s ON s.shop_id = p.shop_id
	JOIN shop_users su ON su.shop_id = p.shop_id
	LEFT JOIN suppliers sp ON sp.supplier_id = p.supplier_id
	WHERE su.user_id = $1 AND ($2::uuid IS NULL OR p.shop_id = $2::uuid)
	ORDER BY p.created_at, p.product_id
	`

	rows, err := r.db.Query(ctx, sql, userID, scope)
	if err != nil {
		return fmt.Errorf("failed to get dashboard products: %w", err)
	}

	defer rows.Close()

	src.Products = []models.DashboardProduct{}
	for rows.Next() {
		var p models.DashboardProduct
		var supplierID, supplierName pgtype.Text

		err := rows.Scan(&p.ProductID,
			&p.ShopID,
			&p.ShopName,
			&supplierID,
			&supplierName,
			&p.Price,
			&p.Stock,
			&p.CreatedAt,
		)
		if err != nil {
			return fmt.Errorf("failed to scan dashboard products: %w", err)
		}

		p.SupplierID = textPtr(supplierID)
		p.SupplierName = textPtr(supplierName)
		src.Products = append(src.Products, p)
	}

	return rows.Err()
}

func (r *dashboardRepo) loadOrders(ctx context.Context, src *models.DashboardSource, userID string, scope pgtype.Text) error {
	sql := `
	SELECT o.shop_id, o.status, o.total_amount
	FROM orders o
	JOIN shop_users su ON su.shop_id = o.shop_id
	WHERE su.user_id = $1 AND ($2::uuid IS NULL OR o.shop_id = $2::uuid)
	`

	rows, err := r.db.Query(ctx, sql, userID, scope)
	if err != nil {
		return fmt.Errorf("failed to get dashboard orders: %w", err)
	}

	defer rows.Close()

	src.Orders = []models.DashboardOrder{}
	for rows.Next() {
		var o models.DashboardOrder
		var status string
		if err := rows.Scan(&o.ShopID, &status, &o.TotalAmount); err != nil {
			return fmt.Errorf("failed to scan dashboard orders: %w", err)
		}
		o.Status = models.OrderStatus(status)
		src.Orders = append(src.Orders, o)
	}

	return rows.Err()
}
