package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"shop-service/internal/models"

	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const orderID = "dddddddd-dddd-dddd-dddd-dddddddddddd"

func newMock(t *testing.T) pgxmock.PgxPoolIface {
	t.Helper()

	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(mock.Close)

	return mock
}

func catalogRows() *pgxmock.Rows {
	return pgxmock.NewRows([]string{"product_id", "name", "price", "stock", "supplier_id"}).
		AddRow(productA, "A", int64(1000), 5, supplier).
		AddRow(productB, "B", int64(250), 3, nil)
}

func TestCreateOrder(t *testing.T) {
	mock := newMock(t)
	repo := NewOrderRepository(mock)

	mock.ExpectBegin()
	mock.ExpectQuery("FROM products WHERE shop_id").
		WithArgs(shopID, []string{productA, productB}).
		WillReturnRows(catalogRows())
	mock.ExpectExec("INSERT INTO orders").
		WithArgs(pgxmock.AnyArg(), int64(3500), "PENDING", shopID, pgxmock.AnyArg(), userID, pgxmock.AnyArg(), pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectExec("INSERT INTO order_items").
		WithArgs(pgxmock.AnyArg(), pgxmock.AnyArg(), productA, 3, int64(1000), pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectExec("INSERT INTO order_items").
		WithArgs(pgxmock.AnyArg(), pgxmock.AnyArg(), productB, 2, int64(250), pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectExec("UPDATE products SET stock = stock -").
		WithArgs(3, pgxmock.AnyArg(), productA).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	mock.ExpectExec("INSERT INTO operations").
		WithArgs(pgxmock.AnyArg(), productA, pgxmock.AnyArg(), "outgoing", -3, pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectExec("UPDATE products SET stock = stock -").
		WithArgs(2, pgxmock.AnyArg(), productB).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	mock.ExpectExec("INSERT INTO operations").
		WithArgs(pgxmock.AnyArg(), productB, pgxmock.AnyArg(), "outgoing", -2, pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectCommit()

	order, items, err := repo.CreateOrder(context.Background(), userID, models.OrderRequest{
		ShopID: shopID,
		Items: []models.OrderItemRequest{
			{ProductID: productA, Quantity: 3},
			{ProductID: productB, Quantity: 2},
		},
	})
	require.NoError(t, err)

	assert.Equal(t, int64(3500), order.TotalAmount)
	assert.Equal(t, models.OrderPending, order.Status)
	assert.Equal(t, shopID, order.ShopID)
	assert.Equal(t, userID, order.UserID)
	require.NotNil(t, order.SupplierID)
	assert.Equal(t, supplier, *order.SupplierID)

	require.Len(t, items, 2)
	for _, item := range items {
		assert.Equal(t, order.OrderID, item.OrderID)
		assert.NotEmpty(t, item.OrderItemID)
	}

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateOrderRejectsShortStockBeforeWriting(t *testing.T) {
	mock := newMock(t)
	repo := NewOrderRepository(mock)

	mock.ExpectBegin()
	mock.ExpectQuery("FROM products WHERE shop_id").
		WithArgs(shopID, []string{productA, productB}).
		WillReturnRows(catalogRows())
	mock.ExpectRollback()

	_, _, err := repo.CreateOrder(context.Background(), userID, models.OrderRequest{
		ShopID: shopID,
		Items: []models.OrderItemRequest{
			{ProductID: productA, Quantity: 1},
			{ProductID: productB, Quantity: 4},
		},
	})

	var stockErr *InsufficientStockError
	require.True(t, errors.As(err, &stockErr))
	assert.Equal(t, productB, stockErr.ProductID)
	assert.Equal(t, 4, stockErr.Requested)
	assert.Equal(t, 3, stockErr.Available)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateOrderRollsBackWhenGuardedDecrementFails(t *testing.T) {
	mock := newMock(t)
	repo := NewOrderRepository(mock)

	mock.ExpectBegin()
	mock.ExpectQuery("FROM products WHERE shop_id").
		WithArgs(shopID, []string{productA, productB}).
		WillReturnRows(catalogRows())
	mock.ExpectExec("INSERT INTO orders").
		WithArgs(pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectExec("INSERT INTO order_items").
		WithArgs(pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectExec("INSERT INTO order_items").
		WithArgs(pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectExec("UPDATE products SET stock = stock -").
		WithArgs(3, pgxmock.AnyArg(), productA).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	mock.ExpectExec("INSERT INTO operations").
		WithArgs(pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	// a concurrent order took the stock after the catalog was read
	mock.ExpectExec("UPDATE products SET stock = stock -").
		WithArgs(3, pgxmock.AnyArg(), productB).
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))
	mock.ExpectRollback()

	_, _, err := repo.CreateOrder(context.Background(), userID, models.OrderRequest{
		ShopID: shopID,
		Items: []models.OrderItemRequest{
			{ProductID: productA, Quantity: 3},
			{ProductID: productB, Quantity: 3},
		},
	})

	var stockErr *InsufficientStockError
	require.True(t, errors.As(err, &stockErr))
	assert.Equal(t, productB, stockErr.ProductID)
	assert.ErrorIs(t, err, ErrNotEnough)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateOrderUnknownProduct(t *testing.T) {
	mock := newMock(t)
	repo := NewOrderRepository(mock)

	mock.ExpectBegin()
	mock.ExpectQuery("FROM products WHERE shop_id").
		WithArgs(shopID, []string{productC}).
		WillReturnRows(pgxmock.NewRows([]string{"product_id", "name", "price", "stock", "supplier_id"}))
	mock.ExpectRollback()

	_, _, err := repo.CreateOrder(context.Background(), userID, models.OrderRequest{
		ShopID: shopID,
		Items:  []models.OrderItemRequest{{ProductID: productC, Quantity: 1}},
	})
	assert.ErrorIs(t, err, ErrNotFound)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateOrderEmptyItemsTouchesNothing(t *testing.T) {
	mock := newMock(t)
	repo := NewOrderRepository(mock)

	_, _, err := repo.CreateOrder(context.Background(), userID, models.OrderRequest{ShopID: shopID})
	assert.ErrorIs(t, err, ErrInvalidInput)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateOrderInvalidStatus(t *testing.T) {
	mock := newMock(t)
	repo := NewOrderRepository(mock)

	_, _, err := repo.CreateOrder(context.Background(), userID, models.OrderRequest{
		ShopID: shopID,
		Status: "LOST",
		Items:  []models.OrderItemRequest{{ProductID: productA, Quantity: 1}},
	})
	assert.ErrorIs(t, err, ErrInvalidInput)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func itemRows() *pgxmock.Rows {
	now := time.Now().UTC()
	return pgxmock.NewRows([]string{"order_item_id", "order_id", "product_id", "quantity", "price", "created_at"}).
		AddRow("e1e1e1e1-0000-0000-0000-000000000001", orderID, productA, 2, int64(1000), now).
		AddRow("e1e1e1e1-0000-0000-0000-000000000002", orderID, productB, 1, int64(250), now).
		AddRow("e1e1e1e1-0000-0000-0000-000000000003", orderID, productA, 1, int64(1000), now)
}

func TestDeleteOrderRestoresStock(t *testing.T) {
	mock := newMock(t)
	repo := NewOrderRepository(mock)

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT order_id FROM orders").
		WithArgs(orderID, shopID).
		WillReturnRows(pgxmock.NewRows([]string{"order_id"}).AddRow(orderID))
	mock.ExpectQuery("FROM order_items").
		WithArgs([]string{orderID}).
		WillReturnRows(itemRows())
	mock.ExpectExec("UPDATE products SET stock = stock \\+").
		WithArgs(3, pgxmock.AnyArg(), productA).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	mock.ExpectExec("INSERT INTO operations").
		WithArgs(pgxmock.AnyArg(), productA, pgxmock.AnyArg(), "incoming", 3, pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectExec("UPDATE products SET stock = stock \\+").
		WithArgs(1, pgxmock.AnyArg(), productB).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	mock.ExpectExec("INSERT INTO operations").
		WithArgs(pgxmock.AnyArg(), productB, pgxmock.AnyArg(), "incoming", 1, pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectExec("DELETE FROM order_items").
		WithArgs(orderID).
		WillReturnResult(pgxmock.NewResult("DELETE", 3))
	mock.ExpectExec("DELETE FROM orders").
		WithArgs(orderID).
		WillReturnResult(pgxmock.NewResult("DELETE", 1))
	mock.ExpectCommit()

	items, err := repo.DeleteOrder(context.Background(), shopID, orderID)
	require.NoError(t, err)
	assert.Len(t, items, 3)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDeleteOrderNotInShop(t *testing.T) {
	mock := newMock(t)
	repo := NewOrderRepository(mock)

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT order_id FROM orders").
		WithArgs(orderID, shopID).
		WillReturnError(pgx.ErrNoRows)
	mock.ExpectRollback()

	_, err := repo.DeleteOrder(context.Background(), shopID, orderID)
	assert.ErrorIs(t, err, ErrNotFound)

	assert.NoError(t, mock.ExpectationsWereMet())
}

var relationColumns = []string{
	"order_id", "total_amount", "status", "shop_id", "supplier_id", "user_id", "created_at", "updated_at",
	"email", "name", "role", "created_at", "updated_at",
	"name", "created_at", "updated_at",
	"name", "email", "phone", "address", "created_at", "updated_at",
}

func TestGetByShopIDEagerLoads(t *testing.T) {
	mock := newMock(t)
	repo := NewOrderRepository(mock)

	now := time.Now().UTC()
	mock.ExpectQuery("FROM orders o").
		WithArgs(shopID, userID).
		WillReturnRows(pgxmock.NewRows(relationColumns).AddRow(
			orderID, int64(2250), "PENDING", shopID, supplier, userID, now, now,
			"owner@example.com", nil, "USER", now, now,
			"Shop One", now, now,
			"Supplier One", nil, nil, nil, now, now,
		))
	mock.ExpectQuery("FROM order_items").
		WithArgs([]string{orderID}).
		WillReturnRows(itemRows())

	orders, err := repo.GetByShopID(context.Background(), userID, shopID)
	require.NoError(t, err)
	require.Len(t, orders, 1)

	o := orders[0]
	assert.Equal(t, orderID, o.OrderID)
	assert.Equal(t, "owner@example.com", o.User.Email)
	assert.Nil(t, o.User.Name)
	assert.Equal(t, "Shop One", o.Shop.Name)
	require.NotNil(t, o.Supplier)
	assert.Equal(t, "Supplier One", o.Supplier.Name)
	assert.Len(t, o.OrderItems, 3)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetByShopIDWithoutLinkIsEmpty(t *testing.T) {
	mock := newMock(t)
	repo := NewOrderRepository(mock)

	mock.ExpectQuery("FROM orders o").
		WithArgs(shopID, userID).
		WillReturnRows(pgxmock.NewRows(relationColumns))

	orders, err := repo.GetByShopID(context.Background(), userID, shopID)
	require.NoError(t, err)
	assert.NotNil(t, orders)
	assert.Empty(t, orders)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetOrderByIDNotFound(t *testing.T) {
	mock := newMock(t)
	repo := NewOrderRepository(mock)

	mock.ExpectQuery("FROM orders o").
		WithArgs(orderID, shopID).
		WillReturnError(pgx.ErrNoRows)

	_, err := repo.GetByID(context.Background(), shopID, orderID)
	assert.ErrorIs(t, err, ErrNotFound)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateStatus(t *testing.T) {
	t.Run("valid", func(t *testing.T) {
		mock := newMock(t)
		repo := NewOrderRepository(mock)

		mock.ExpectExec("UPDATE orders SET status").
			WithArgs("SHIPPED", pgxmock.AnyArg(), orderID, shopID).
			WillReturnResult(pgxmock.NewResult("UPDATE", 1))

		assert.NoError(t, repo.UpdateStatus(context.Background(), shopID, orderID, models.OrderShipped))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("unknown status", func(t *testing.T) {
		mock := newMock(t)
		repo := NewOrderRepository(mock)

		err := repo.UpdateStatus(context.Background(), shopID, orderID, "ARCHIVED")
		assert.ErrorIs(t, err, ErrInvalidInput)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("missing order", func(t *testing.T) {
		mock := newMock(t)
		repo := NewOrderRepository(mock)

		mock.ExpectExec("UPDATE orders SET status").
			WithArgs("CANCELLED", pgxmock.AnyArg(), orderID, shopID).
			WillReturnResult(pgxmock.NewResult("UPDATE", 0))

		err := repo.UpdateStatus(context.Background(), shopID, orderID, models.OrderCancelled)
		assert.ErrorIs(t, err, ErrNotFound)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestGetByShopIDRepeatedQueryIsStable(t *testing.T) {
	mock := newMock(t)
	repo := NewOrderRepository(mock)

	now := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	for i := 0; i < 2; i++ {
		mock.ExpectQuery("FROM orders o").
			WithArgs(shopID, userID).
			WillReturnRows(pgxmock.NewRows(relationColumns).AddRow(
				orderID, int64(2250), "PENDING", shopID, supplier, userID, now, now,
				"owner@example.com", nil, "USER", now, now,
				"Shop One", now, now,
				"Supplier One", nil, nil, nil, now, now,
			))
		mock.ExpectQuery("FROM order_items").
			WithArgs([]string{orderID}).
			WillReturnRows(itemRows())
	}

	first, err := repo.GetByShopID(context.Background(), userID, shopID)
	require.NoError(t, err)
	second, err := repo.GetByShopID(context.Background(), userID, shopID)
	require.NoError(t, err)

	assert.Equal(t, first, second)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSequentialOrdersDrainStock(t *testing.T) {
	mock := newMock(t)
	repo := NewOrderRepository(mock)
	columns := []string{"product_id", "name", "price", "stock", "supplier_id"}
	req := models.OrderRequest{
		ShopID: shopID,
		Items:  []models.OrderItemRequest{{ProductID: productA, Quantity: 3}},
	}

	mock.ExpectBegin()
	mock.ExpectQuery("FROM products WHERE shop_id").
		WithArgs(shopID, []string{productA}).
		WillReturnRows(pgxmock.NewRows(columns).AddRow(productA, "A", int64(1000), 5, supplier))
	mock.ExpectExec("INSERT INTO orders").
		WithArgs(anyArgs(8)...).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectExec("INSERT INTO order_items").
		WithArgs(pgxmock.AnyArg(), pgxmock.AnyArg(), productA, 3, int64(1000), pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectExec("UPDATE products SET stock = stock -").
		WithArgs(3, pgxmock.AnyArg(), productA).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	mock.ExpectExec("INSERT INTO operations").
		WithArgs(pgxmock.AnyArg(), productA, pgxmock.AnyArg(), "outgoing", -3, pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectCommit()

	// The second order sees the stock left by the first.
	mock.ExpectBegin()
	mock.ExpectQuery("FROM products WHERE shop_id").
		WithArgs(shopID, []string{productA}).
		WillReturnRows(pgxmock.NewRows(columns).AddRow(productA, "A", int64(1000), 2, supplier))
	mock.ExpectRollback()

	_, _, err := repo.CreateOrder(context.Background(), userID, req)
	require.NoError(t, err)

	_, _, err = repo.CreateOrder(context.Background(), userID, req)

	var stockErr *InsufficientStockError
	require.True(t, errors.As(err, &stockErr))
	assert.Equal(t, productA, stockErr.ProductID)
	assert.Equal(t, 3, stockErr.Requested)
	assert.Equal(t, 2, stockErr.Available)

	assert.NoError(t, mock.ExpectationsWereMet())
}
