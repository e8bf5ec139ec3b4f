package service

import (
	"context"
	"io"
	"log/slog"

	"shop-service/internal/models"
	"shop-service/internal/repository"
)

const (
	shopID     = "aaaaaaaa-aaaa-aaaa-aaaa-aaaaaaaaaaaa"
	ownerID    = "bbbbbbbb-bbbb-bbbb-bbbb-bbbbbbbbbbbb"
	staffID    = "dddddddd-dddd-dddd-dddd-dddddddddddd"
	strangerID = "eeeeeeee-eeee-eeee-eeee-eeeeeeeeeeee"
	productA   = "11111111-1111-1111-1111-111111111111"
	productB   = "22222222-2222-2222-2222-222222222222"
	orderID    = "ffffffff-ffff-ffff-ffff-ffffffffffff"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// fakeShops knows one shop with an owner and a staff member.
type fakeShops struct {
	repository.ShopRepository
	deleted []string
	added   []models.ShopUser
}

func (f *fakeShops) GetMembership(_ context.Context, shop, user string) (*models.ShopUser, error) {
	if shop != shopID {
		return nil, repository.ErrNotFound
	}
	switch user {
	case ownerID:
		return &models.ShopUser{ShopID: shop, UserID: user, Role: models.ShopRoleOwner}, nil
	case staffID:
		return &models.ShopUser{ShopID: shop, UserID: user, Role: models.ShopRoleStaff}, nil
	}
	return nil, repository.ErrNotFound
}

func (f *fakeShops) GetByID(_ context.Context, id string) (*models.Shop, error) {
	return &models.Shop{ShopID: id, Name: "Shop One"}, nil
}

func (f *fakeShops) Delete(_ context.Context, id string) error {
	f.deleted = append(f.deleted, id)
	return nil
}

func (f *fakeShops) AddMember(_ context.Context, link *models.ShopUser) error {
	f.added = append(f.added, *link)
	return nil
}

type fakeOrders struct {
	repository.OrderRepository
	created   int
	items     []models.OrderItem
	createErr error
	getErr    error
}

func (f *fakeOrders) CreateOrder(_ context.Context, userID string, req models.OrderRequest) (*models.Order, []models.OrderItem, error) {
	if f.createErr != nil {
		return nil, nil, f.createErr
	}
	f.created++
	return &models.Order{OrderID: orderID, ShopID: req.ShopID, UserID: userID, TotalAmount: 100}, f.items, nil
}

func (f *fakeOrders) DeleteOrder(_ context.Context, _, _ string) ([]models.OrderItem, error) {
	return f.items, nil
}

func (f *fakeOrders) GetByID(_ context.Context, shop, id string) (*models.OrderWithRelations, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	return &models.OrderWithRelations{Order: models.Order{OrderID: id, ShopID: shop}}, nil
}

func (f *fakeOrders) GetByShopID(_ context.Context, _, _ string) ([]models.OrderWithRelations, error) {
	return []models.OrderWithRelations{}, nil
}

type fakeOps struct {
	repository.OperationRepository
}

func (fakeOps) GetByOrderID(_ context.Context, id string) ([]models.Operation, error) {
	return []models.Operation{{OrderID: &id, OperationType: models.OperationOutgoing, ChangeQuant: -1}}, nil
}

func (fakeOps) GetByProductID(_ context.Context, id string) ([]models.Operation, error) {
	return []models.Operation{{ProductID: id, OperationType: models.OperationIncoming, ChangeQuant: 5}}, nil
}

type recordingInvalidator struct {
	shopID     string
	productIDs []string
	calls      int
}

func (r *recordingInvalidator) Invalidate(_ context.Context, shopID string, productIDs ...string) {
	r.calls++
	r.shopID = shopID
	r.productIDs = productIDs
}

type fakeProducts struct {
	repository.ProductRepository
	created []models.Product
}

func (f *fakeProducts) Create(_ context.Context, p *models.Product) error {
	p.ProductID = productA
	f.created = append(f.created, *p)
	return nil
}

func (f *fakeProducts) GetByID(_ context.Context, shop, id string) (*models.Product, error) {
	return &models.Product{ProductID: id, ShopID: shop, Name: "Tea"}, nil
}

type fakeSuppliers struct {
	repository.SupplierRepository
	linked map[string]bool
}

func (f fakeSuppliers) IsLinked(_ context.Context, _, supplierID string) (bool, error) {
	return f.linked[supplierID], nil
}

type fakeUsers struct {
	repository.UserRepository
	byEmail map[string]models.User
}

func (f fakeUsers) GetByEmail(_ context.Context, email string) (*models.User, error) {
	u, ok := f.byEmail[email]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &u, nil
}
