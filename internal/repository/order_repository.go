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

type orderRepo struct {
	db DBTX
}

func NewOrderRepository(db DBTX) OrderRepository {
	return &orderRepo{db: db}
}

// CreateOrder prices the request against the shop's catalog and writes the order,
// its items, the stock decrements and the ledger rows in one transaction.
func (r *orderRepo) CreateOrder(ctx context.Context, userID string, req models.OrderRequest) (*models.Order, []models.OrderItem, error) {
	if userID == "" {
		return nil, nil, fmt.Errorf("%w: user ID cannot be empty", ErrInvalidInput)
	}
	if req.ShopID == "" {
		return nil, nil, fmt.Errorf("%w: shop ID cannot be empty", ErrInvalidInput)
	}
	if len(req.Items) == 0 {
		return nil, nil, fmt.Errorf("%w: order must contain at least one item", ErrInvalidInput)
	}

	status := req.Status
	if status == "" {
		status = models.OrderPending
	}
	if !status.Valid() {
		return nil, nil, fmt.Errorf("%w: invalid status '%s'", ErrInvalidInput, status)
	}

	tx, err := r.db.Begin(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	catalog, err := loadCatalog(ctx, tx, req.ShopID, uniqueProductIDs(req.Items))
	if err != nil {
		return nil, nil, err
	}

	draft, err := priceOrder(req, catalog)
	if err != nil {
		return nil, nil, err
	}

	movements := aggregateLines(draft.items)
	if err := checkStock(movements, catalog); err != nil {
		return nil, nil, err
	}

	now := time.Now().UTC()

	order := &models.Order{
		OrderID:     uuid.NewString(),
		TotalAmount: draft.total,
		Status:      status,
		ShopID:      req.ShopID,
		SupplierID:  draft.supplierID,
		UserID:      userID,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	insert := `INSERT INTO orders (
	order_id,
	total_amount,
	status,
	shop_id,
	supplier_id,
	user_id,
	created_at,
	updated_at
	) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`

	_, err = tx.Exec(ctx, insert,
		order.OrderID,
		order.TotalAmount,
		string(order.Status),
		order.ShopID,
		order.SupplierID,
		order.UserID,
		order.CreatedAt,
		order.UpdatedAt,
	)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create order: %w", translatePgError(err, "order"))
	}

	items := draft.items
	insertItemSQL := `INSERT INTO order_items (order_item_id, order_id, product_id, quantity, price, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	for i := range items {
		items[i].OrderItemID = uuid.NewString()
		items[i].OrderID = order.OrderID
		items[i].CreatedAt = now

		_, err = tx.Exec(ctx, insertItemSQL,
			items[i].OrderItemID,
			items[i].OrderID,
			items[i].ProductID,
			items[i].Quantity,
			items[i].Price,
			items[i].CreatedAt,
		)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to create order item: %w", translatePgError(err, "order item"))
		}
	}

	for _, m := range movements {
		ok, err := decrementStock(ctx, tx, m.productID, m.quantity, now)
		if err != nil {
			return nil, nil, err
		}
		if !ok {
			return nil, nil, &InsufficientStockError{
				ProductID: m.productID,
				Requested: m.quantity,
				Available: catalog[m.productID].Stock,
			}
		}

		err = insertOperation(ctx, tx, &models.Operation{
			ProductID:     m.productID,
			OrderID:       &order.OrderID,
			OperationType: models.OperationOutgoing,
			ChangeQuant:   -m.quantity,
			CreatedAt:     now,
		})
		if err != nil {
			return nil, nil, err
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return order, items, nil
}

// loadCatalog reads the referenced products of one shop. Products of other shops
// are simply absent from the result.
func loadCatalog(ctx context.Context, tx pgx.Tx, shopID string, productIDs []string) (map[string]models.Product, error) {
	sql := ` SELECT
	product_id,
	name,
	price,
	stock,
	supplier_id
	FROM products
	WHERE shop_id = $1 AND product_id = ANY($2::uuid[])
	`

	rows, err := tx.Query(ctx, sql, shopID, productIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to get products information: %w", err)
	}

	defer rows.Close()

	catalog := make(map[string]models.Product, len(productIDs))

	for rows.Next() {
		var p models.Product
		var supplierID pgtype.Text

		err := rows.Scan(&p.ProductID,
			&p.Name,
			&p.Price,
			&p.Stock,
			&supplierID,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan product data: %w", err)
		}

		p.ShopID = shopID
		if supplierID.Valid {
			id := supplierID.String
			p.SupplierID = &id
		}
		catalog[p.ProductID] = p
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to complete row iteration: %w", err)
	}

	return catalog, nil
}

// DeleteOrder removes an order of a shop and gives every item's quantity back to
// stock. It returns the removed items.
func (r *orderRepo) DeleteOrder(ctx context.Context, shopID, id string) ([]models.OrderItem, error) {
	if shopID == "" || id == "" {
		return nil, fmt.Errorf("%w: shop ID and order ID are required", ErrInvalidInput)
	}

	tx, err := r.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to create transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	var orderID string
	err = tx.QueryRow(ctx,
		`SELECT order_id FROM orders WHERE order_id = $1 AND shop_id = $2 FOR UPDATE`,
		id, shopID,
	).Scan(&orderID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to lock order %s: %w", id, err)
	}

	items, err := queryItems(ctx, tx, []string{orderID})
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()

	for _, m := range aggregateLines(items) {
		if err := restoreStock(ctx, tx, m.productID, m.quantity, now); err != nil {
			return nil, err
		}

		err = insertOperation(ctx, tx, &models.Operation{
			ProductID:     m.productID,
			OrderID:       &orderID,
			OperationType: models.OperationIncoming,
			ChangeQuant:   m.quantity,
			CreatedAt:     now,
		})
		if err != nil {
			return nil, err
		}
	}

	if _, err := tx.Exec(ctx, `DELETE FROM order_items WHERE order_id = $1`, orderID); err != nil {
		return nil, fmt.Errorf("failed to delete order items %s: %w", orderID, err)
	}

	result, err := tx.Exec(ctx, `DELETE FROM orders WHERE order_id = $1`, orderID)
	if err != nil {
		return nil, fmt.Errorf("failed to delete order %s: %w", orderID, err)
	}
	if result.RowsAffected() == 0 {
		return nil, ErrNotFound
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return items, nil
}

const orderWithRelationsSQL = `SELECT
	o.order_id,
	o.total_amount,
	o.status,
	o.shop_id,
	o.supplier_id,
	o.user_id,
	o.created_at,
	o.updated_at,
	u.email,
	u.name,
	u.role,
	u.created_at,
	u.updated_at,
	s.name,
	s.created_at,
	s.updated_at,
	sp.name,
	sp.email,
	sp.phone,
	sp.address,
	sp.created_at,
	sp.updated_at
	FROM orders o
	JOIN users u ON u.user_id = o.user_id
	JOIN shops s ON s.shop_id = o.shop_id
	LEFT JOIN suppliers sp ON sp.supplier_id = o.supplier_id
`

func scanOrderWithRelations(row pgx.Row) (*models.OrderWithRelations, error) {
	var o models.OrderWithRelations
	var status, userRole string
	var supplierID, userName pgtype.Text
	var spName, spEmail, spPhone, spAddress pgtype.Text
	var spCreated, spUpdated pgtype.Timestamptz

	err := row.Scan(
		&o.OrderID,
		&o.TotalAmount,
		&status,
		&o.ShopID,
		&supplierID,
		&o.UserID,
		&o.CreatedAt,
		&o.UpdatedAt,
		&o.User.Email,
		&userName,
		&userRole,
		&o.User.CreatedAt,
		&o.User.UpdatedAt,
		&o.Shop.Name,
		&o.Shop.CreatedAt,
		&o.Shop.UpdatedAt,
		&spName,
		&spEmail,
		&spPhone,
		&spAddress,
		&spCreated,
		&spUpdated,
	)
	if err != nil {
		return nil, err
	}

	o.Status = models.OrderStatus(status)
	o.User.UserID = o.UserID
	o.User.Name = textPtr(userName)
	o.User.Role = models.UserRole(userRole)
	o.Shop.ShopID = o.ShopID
	o.OrderItems = []models.OrderItem{}

	if supplierID.Valid {
		o.SupplierID = &supplierID.String
		o.Supplier = &models.Supplier{
			SupplierID: supplierID.String,
			Name:       spName.String,
			Email:      textPtr(spEmail),
			Phone:      textPtr(spPhone),
			Address:    textPtr(spAddress),
			CreatedAt:  spCreated.Time,
			UpdatedAt:  spUpdated.Time,
		}
	}

	return &o, nil
}

func (r *orderRepo) GetByID(ctx context.Context, shopID, id string) (*models.OrderWithRelations, error) {
	if shopID == "" || id == "" {
		return nil, fmt.Errorf("%w: shop ID and order ID are required", ErrInvalidInput)
	}

	sql := orderWithRelationsSQL + ` WHERE o.order_id = $1 AND o.shop_id = $2`

	order, err := scanOrderWithRelations(r.db.QueryRow(ctx, sql, id, shopID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get order %s: %w", id, err)
	}

	items, err := queryItems(ctx, r.db, []string{order.OrderID})
	if err != nil {
		return nil, err
	}
	order.OrderItems = items

	return order, nil
}

// GetByShopID returns the shop's orders only when userID is linked to the shop.
// Without a link the result is empty.
func (r *orderRepo) GetByShopID(ctx context.Context, userID, shopID string) ([]models.OrderWithRelations, error) {
	if userID == "" || shopID == "" {
		return []models.OrderWithRelations{}, nil
	}

	sql := orderWithRelationsSQL + ` WHERE o.shop_id = $1
	AND EXISTS (
		SELECT 1 FROM shop_users su
		WHERE su.shop_id = o.shop_id AND su.user_id = $2
	)
	ORDER BY o.created_at, o.order_id`

	rows, err := r.db.Query(ctx, sql, shopID, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get orders by shop %s: %w", shopID, err)
	}

	defer rows.Close()

	orders := []models.OrderWithRelations{}
	index := map[string]int{}

	for rows.Next() {
		o, err := scanOrderWithRelations(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan orders by shop: %w", err)
		}
		index[o.OrderID] = len(orders)
		orders = append(orders, *o)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to complete row iteration: %w", err)
	}

	if len(orders) == 0 {
		return orders, nil
	}

	ids := make([]string, 0, len(orders))
	for _, o := range orders {
		ids = append(ids, o.OrderID)
	}

	items, err := queryItems(ctx, r.db, ids)
	if err != nil {
		return nil, err
	}

	for _, item := range items {
		i := index[item.OrderID]
		orders[i].OrderItems = append(orders[i].OrderItems, item)
	}

	return orders, nil
}

type querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

func queryItems(ctx context.Context, db querier, orderIDs []string) ([]models.OrderItem, error) {
	sql := `SELECT
	order_item_id,
	order_id,
	product_id,
	quantity,
	price,
	created_at
	FROM order_items
	WHERE order_id = ANY($1::uuid[])
	ORDER BY created_at, order_item_id
	`

	rows, err := db.Query(ctx, sql, orderIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to get order items: %w", err)
	}

	defer rows.Close()

	items := []models.OrderItem{}

	for rows.Next() {
		var item models.OrderItem

		err := rows.Scan(&item.OrderItemID,
			&item.OrderID,
			&item.ProductID,
			&item.Quantity,
			&item.Price,
			&item.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan order item: %w", err)
		}

		items = append(items, item)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration: %w", err)
	}

	return items, nil
}

func (r *orderRepo) UpdateStatus(ctx context.Context, shopID, id string, status models.OrderStatus) error {
	if status == "" {
		return fmt.Errorf("%w: status cannot be empty", ErrInvalidInput)
	}

	if !status.Valid() {
		return fmt.Errorf("%w: invalid status '%s'", ErrInvalidInput, status)
	}

	sql := `UPDATE orders
		SET status = $1, updated_at = $2
		WHERE order_id = $3 AND shop_id = $4
		`

	result, err := r.db.Exec(ctx, sql, string(status), time.Now().UTC(), id, shopID)
	if err != nil {
		return fmt.Errorf("update status order %s: %w", id, err)
	}

	if result.RowsAffected() == 0 {
		return ErrNotFound
	}

	return nil
}

func textPtr(t pgtype.Text) *string {
	if !t.Valid {
		return nil
	}
	s := t.String
	return &s
}
