package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"shop-service/internal/models"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pashagolub/pgxmock/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func anyArgs(n int) []any {
	args := make([]any, n)
	for i := range args {
		args[i] = pgxmock.AnyArg()
	}
	return args
}

func TestCreateProductWritesOpeningStock(t *testing.T) {
	mock := newMock(t)
	repo := NewProductRepository(mock)

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO products").
		WithArgs(pgxmock.AnyArg(), shopID, pgxmock.AnyArg(), "Tea", int64(450), 12, pgxmock.AnyArg(), pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectExec("INSERT INTO operations").
		WithArgs(pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), "incoming", 12, pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectCommit()

	p := &models.Product{ShopID: shopID, Name: "Tea", Price: 450, Stock: 12}
	require.NoError(t, repo.Create(context.Background(), p))
	assert.NotEmpty(t, p.ProductID)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateProductWithoutStockSkipsLedger(t *testing.T) {
	mock := newMock(t)
	repo := NewProductRepository(mock)

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO products").
		WithArgs(anyArgs(8)...).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectCommit()

	require.NoError(t, repo.Create(context.Background(), &models.Product{ShopID: shopID, Name: "Mug"}))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateProductValidation(t *testing.T) {
	repo := NewProductRepository(newMock(t))

	tests := []struct {
		name string
		p    models.Product
	}{
		{"missing name", models.Product{ShopID: shopID, Price: 1}},
		{"negative price", models.Product{ShopID: shopID, Name: "x", Price: -1}},
		{"negative stock", models.Product{ShopID: shopID, Name: "x", Stock: -1}},
		{"missing shop", models.Product{Name: "x"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := repo.Create(context.Background(), &tt.p)
			assert.ErrorIs(t, err, ErrInvalidInput)
		})
	}
}

func TestUpdateProductRecordsAdjustment(t *testing.T) {
	mock := newMock(t)
	repo := NewProductRepository(mock)

	now := time.Now().UTC()

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT stock, updated_at FROM products").
		WithArgs(productA, shopID).
		WillReturnRows(pgxmock.NewRows([]string{"stock", "updated_at"}).AddRow(10, now.Add(-time.Hour)))
	mock.ExpectQuery("UPDATE products").
		WithArgs("A", int64(1000), 7, pgxmock.AnyArg(), pgxmock.AnyArg(), productA, shopID).
		WillReturnRows(pgxmock.NewRows([]string{"created_at", "updated_at"}).AddRow(now, now))
	mock.ExpectExec("INSERT INTO operations").
		WithArgs(pgxmock.AnyArg(), productA, pgxmock.AnyArg(), "adjustment", -3, pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectCommit()

	p := &models.Product{ProductID: productA, ShopID: shopID, Name: "A", Price: 1000, Stock: 7}
	require.NoError(t, repo.Update(context.Background(), p))
	assert.Equal(t, now, p.UpdatedAt)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateProductSameStockNoLedgerRow(t *testing.T) {
	mock := newMock(t)
	repo := NewProductRepository(mock)

	now := time.Now().UTC()

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT stock, updated_at FROM products").
		WithArgs(productA, shopID).
		WillReturnRows(pgxmock.NewRows([]string{"stock", "updated_at"}).AddRow(7, now.Add(-time.Hour)))
	mock.ExpectQuery("UPDATE products").
		WithArgs(anyArgs(7)...).
		WillReturnRows(pgxmock.NewRows([]string{"created_at", "updated_at"}).AddRow(now, now))
	mock.ExpectCommit()

	p := &models.Product{ProductID: productA, ShopID: shopID, Name: "A", Price: 1200, Stock: 7}
	require.NoError(t, repo.Update(context.Background(), p))

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateProductNotInShop(t *testing.T) {
	mock := newMock(t)
	repo := NewProductRepository(mock)

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT stock, updated_at FROM products").
		WithArgs(productA, shopID).
		WillReturnError(pgx.ErrNoRows)
	mock.ExpectRollback()

	err := repo.Update(context.Background(), &models.Product{ProductID: productA, ShopID: shopID, Name: "A"})
	assert.ErrorIs(t, err, ErrNotFound)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateProductStaleRead(t *testing.T) {
	mock := newMock(t)
	repo := NewProductRepository(mock)

	readAt := time.Date(2024, 3, 1, 12, 0, 0, 123456000, time.UTC)
	afterOrder := readAt.Add(2 * time.Second)

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT stock, updated_at FROM products").
		WithArgs(productA, shopID).
		WillReturnRows(pgxmock.NewRows([]string{"stock", "updated_at"}).AddRow(2, afterOrder))
	mock.ExpectRollback()

	// Built from a read taken before an order moved stock from 5 to 2.
	p := &models.Product{ProductID: productA, ShopID: shopID, Name: "A", Price: 1000, Stock: 5, UpdatedAt: readAt}
	err := repo.Update(context.Background(), p)
	assert.ErrorIs(t, err, ErrConflict)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateProductMatchingReadIsAccepted(t *testing.T) {
	mock := newMock(t)
	repo := NewProductRepository(mock)

	stored := time.Date(2024, 3, 1, 12, 0, 0, 123456000, time.UTC)
	now := time.Now().UTC()

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT stock, updated_at FROM products").
		WithArgs(productA, shopID).
		WillReturnRows(pgxmock.NewRows([]string{"stock", "updated_at"}).AddRow(5, stored))
	mock.ExpectQuery("UPDATE products").
		WithArgs(anyArgs(7)...).
		WillReturnRows(pgxmock.NewRows([]string{"created_at", "updated_at"}).AddRow(now, now))
	mock.ExpectExec("INSERT INTO operations").
		WithArgs(pgxmock.AnyArg(), productA, pgxmock.AnyArg(), "adjustment", 1, pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectCommit()

	// Client echoes the value with nanoseconds Postgres does not keep.
	p := &models.Product{ProductID: productA, ShopID: shopID, Name: "A", Price: 1000, Stock: 6, UpdatedAt: stored.Add(789)}
	require.NoError(t, repo.Update(context.Background(), p))

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDeleteProductReferencedByOrder(t *testing.T) {
	mock := newMock(t)
	repo := NewProductRepository(mock)

	mock.ExpectExec("DELETE FROM products").
		WithArgs(productA, shopID).
		WillReturnError(&pgconn.PgError{Code: "23503", ConstraintName: "order_items_product_id_fkey"})

	err := repo.Delete(context.Background(), shopID, productA)
	assert.ErrorIs(t, err, ErrConflict)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDeleteProductMissing(t *testing.T) {
	mock := newMock(t)
	repo := NewProductRepository(mock)

	mock.ExpectExec("DELETE FROM products").
		WithArgs(productA, shopID).
		WillReturnResult(pgxmock.NewResult("DELETE", 0))

	err := repo.Delete(context.Background(), shopID, productA)
	assert.ErrorIs(t, err, ErrNotFound)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetProductsByShopReturnsEmptySlice(t *testing.T) {
	mock := newMock(t)
	repo := NewProductRepository(mock)

	mock.ExpectQuery("FROM products").
		WithArgs(shopID).
		WillReturnRows(pgxmock.NewRows([]string{"product_id", "shop_id", "supplier_id", "name", "price", "stock", "created_at", "updated_at"}))

	products, err := repo.GetByShopID(context.Background(), shopID)
	require.NoError(t, err)
	assert.NotNil(t, products)
	assert.Empty(t, products)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTranslatePgError(t *testing.T) {
	tests := []struct {
		code string
		want error
	}{
		{"23505", ErrDuplicate},
		{"23503", ErrConflict},
		{"23514", ErrInvalidInput},
	}

	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			err := translatePgError(&pgconn.PgError{Code: tt.code}, "thing")
			assert.ErrorIs(t, err, tt.want)
		})
	}

	plain := errors.New("connection reset")
	assert.Equal(t, plain, translatePgError(plain, "thing"))
}
