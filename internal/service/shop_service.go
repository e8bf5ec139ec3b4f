package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"shop-service/internal/models"
	"shop-service/internal/repository"
)

type ShopService struct {
	shops     repository.ShopRepository
	users     repository.UserRepository
	suppliers repository.SupplierRepository
	access    membership
	logger    *slog.Logger
}

func NewShopService(shops repository.ShopRepository, users repository.UserRepository, suppliers repository.SupplierRepository, logger *slog.Logger) *ShopService {
	return &ShopService{
		shops:     shops,
		users:     users,
		suppliers: suppliers,
		access:    membership{shops: shops},
		logger:    logger,
	}
}

func (s *ShopService) Create(ctx context.Context, userID, name string) (*models.Shop, error) {
	shop := &models.Shop{Name: name}
	if err := validateInput(shop); err != nil {
		return nil, err
	}

	if err := s.shops.CreateWithOwner(ctx, shop, userID); err != nil {
		return nil, err
	}

	s.logger.Info("shop created", "shop_id", shop.ShopID, "owner_id", userID)
	return shop, nil
}

// List returns the user's shops, newest first.
func (s *ShopService) List(ctx context.Context, userID string) ([]models.Shop, error) {
	return s.shops.GetByUserID(ctx, userID)
}

func (s *ShopService) Get(ctx context.Context, userID, shopID string) (*models.Shop, error) {
	if _, err := s.access.forRead(ctx, shopID, userID); err != nil {
		return nil, err
	}
	return s.shops.GetByID(ctx, shopID)
}

// Delete is limited to owners. Products, orders and links go with the shop.
func (s *ShopService) Delete(ctx context.Context, userID, shopID string) error {
	if err := s.access.owner(ctx, shopID, userID); err != nil {
		return err
	}

	if err := s.shops.Delete(ctx, shopID); err != nil {
		return err
	}

	s.logger.Info("shop deleted", "shop_id", shopID, "user_id", userID)
	return nil
}

type AddMemberRequest struct {
	Email string          `json:"email" validate:"required,email"`
	Role  models.ShopRole `json:"role" validate:"required,oneof=owner manager staff"`
}

func (s *ShopService) AddMember(ctx context.Context, userID, shopID string, req AddMemberRequest) (*models.ShopUser, error) {
	if err := s.access.owner(ctx, shopID, userID); err != nil {
		return nil, err
	}
	if err := validateInput(req); err != nil {
		return nil, err
	}

	user, err := s.users.GetByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("%w: no user with email %s", repository.ErrNotFound, req.Email)
		}
		return nil, err
	}

	link := &models.ShopUser{ShopID: shopID, UserID: user.UserID, Role: req.Role}
	if err := s.shops.AddMember(ctx, link); err != nil {
		return nil, err
	}

	s.logger.Info("shop member added", "shop_id", shopID, "user_id", user.UserID, "role", req.Role)
	return link, nil
}

func (s *ShopService) CreateSupplier(ctx context.Context, userID, shopID string, supplier *models.Supplier) error {
	if _, err := s.access.forWrite(ctx, shopID, userID); err != nil {
		return err
	}
	if err := validateInput(supplier); err != nil {
		return err
	}

	if err := s.suppliers.CreateForShop(ctx, shopID, supplier); err != nil {
		return err
	}

	s.logger.Info("supplier created", "supplier_id", supplier.SupplierID, "shop_id", shopID)
	return nil
}

func (s *ShopService) ListSuppliers(ctx context.Context, userID, shopID string) ([]models.Supplier, error) {
	if _, err := s.access.forRead(ctx, shopID, userID); err != nil {
		return nil, err
	}
	return s.suppliers.GetByShopID(ctx, shopID)
}

func (s *ShopService) UnlinkSupplier(ctx context.Context, userID, shopID, supplierID string) error {
	if _, err := s.access.forWrite(ctx, shopID, userID); err != nil {
		return err
	}

	if err := s.suppliers.Unlink(ctx, shopID, supplierID); err != nil {
		return err
	}

	s.logger.Info("supplier unlinked", "supplier_id", supplierID, "shop_id", shopID)
	return nil
}
