package repository

import (
	"context"
	"shop-service/internal/models"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// DBTX is the subset of *pgxpool.Pool used by the repositories.
type DBTX interface {
	Begin(ctx context.Context) (pgx.Tx, error)
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

type ProductRepository interface {
	Create(ctx context.Context, product *models.Product) error
	GetByID(ctx context.Context, shopID, id string) (*models.Product, error)
	GetByShopID(ctx context.Context, shopID string) ([]models.Product, error)
	Update(ctx context.Context, product *models.Product) error
	Delete(ctx context.Context, shopID, id string) error
}

type OrderRepository interface {
	CreateOrder(ctx context.Context, userID string, req models.OrderRequest) (*models.Order, []models.OrderItem, error)
	DeleteOrder(ctx context.Context, shopID, id string) ([]models.OrderItem, error)
	GetByID(ctx context.Context, shopID, id string) (*models.OrderWithRelations, error)
	GetByShopID(ctx context.Context, userID, shopID string) ([]models.OrderWithRelations, error)
	UpdateStatus(ctx context.Context, shopID, id string, status models.OrderStatus) error
}

type OperationRepository interface {
	Create(ctx context.Context, operation *models.Operation) error
	GetByProductID(ctx context.Context, productID string) ([]models.Operation, error)
	GetByOrderID(ctx context.Context, orderID string) ([]models.Operation, error)
}

type ShopRepository interface {
	CreateWithOwner(ctx context.Context, shop *models.Shop, ownerID string) error
	GetByID(ctx context.Context, id string) (*models.Shop, error)
	GetByUserID(ctx context.Context, userID string) ([]models.Shop, error)
	Delete(ctx context.Context, id string) error

	GetMembership(ctx context.Context, shopID, userID string) (*models.ShopUser, error)
	AddMember(ctx context.Context, link *models.ShopUser) error
}

type SupplierRepository interface {
	CreateForShop(ctx context.Context, shopID string, supplier *models.Supplier) error
	GetByShopID(ctx context.Context, shopID string) ([]models.Supplier, error)
	IsLinked(ctx context.Context, shopID, supplierID string) (bool, error)
	Unlink(ctx context.Context, shopID, supplierID string) error
}

type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id string) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
}

type SessionRepository interface {
	Create(ctx context.Context, session *models.Session) error
	GetValid(ctx context.Context, token string, now time.Time) (*models.Session, error)
	Delete(ctx context.Context, token string) error
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
}

type DashboardRepository interface {
	Load(ctx context.Context, userID, shopID string) (*models.DashboardSource, error)
}
