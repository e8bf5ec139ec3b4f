package service

import (
	"context"
	"fmt"
	"log/slog"

	"shop-service/internal/models"
	"shop-service/internal/repository"
)

type ProductService struct {
	products  repository.ProductRepository
	ops       repository.OperationRepository
	suppliers repository.SupplierRepository
	access    membership
	logger    *slog.Logger
}

func NewProductService(products repository.ProductRepository, ops repository.OperationRepository, suppliers repository.SupplierRepository, shops repository.ShopRepository, logger *slog.Logger) *ProductService {
	return &ProductService{
		products:  products,
		ops:       ops,
		suppliers: suppliers,
		access:    membership{shops: shops},
		logger:    logger,
	}
}

func (s *ProductService) checkSupplier(ctx context.Context, p *models.Product) error {
	if p.SupplierID == nil {
		return nil
	}

	linked, err := s.suppliers.IsLinked(ctx, p.ShopID, *p.SupplierID)
	if err != nil {
		return err
	}
	if !linked {
		return fmt.Errorf("%w: supplier %s is not linked to shop", repository.ErrInvalidInput, *p.SupplierID)
	}
	return nil
}

func (s *ProductService) Create(ctx context.Context, userID string, p *models.Product) error {
	if _, err := s.access.forWrite(ctx, p.ShopID, userID); err != nil {
		return err
	}
	if err := validateInput(p); err != nil {
		return err
	}
	if err := s.checkSupplier(ctx, p); err != nil {
		return err
	}

	if err := s.products.Create(ctx, p); err != nil {
		return err
	}

	s.logger.Info("product created", "product_id", p.ProductID, "shop_id", p.ShopID)
	return nil
}

func (s *ProductService) List(ctx context.Context, userID, shopID string) ([]models.Product, error) {
	if _, err := s.access.forRead(ctx, shopID, userID); err != nil {
		return nil, err
	}
	return s.products.GetByShopID(ctx, shopID)
}

func (s *ProductService) Get(ctx context.Context, userID, shopID, productID string) (*models.Product, error) {
	if _, err := s.access.forRead(ctx, shopID, userID); err != nil {
		return nil, err
	}
	return s.products.GetByID(ctx, shopID, productID)
}

func (s *ProductService) Update(ctx context.Context, userID string, p *models.Product) error {
	if _, err := s.access.forWrite(ctx, p.ShopID, userID); err != nil {
		return err
	}
	if err := validateInput(p); err != nil {
		return err
	}
	if err := s.checkSupplier(ctx, p); err != nil {
		return err
	}

	if err := s.products.Update(ctx, p); err != nil {
		return err
	}

	s.logger.Info("product updated", "product_id", p.ProductID, "shop_id", p.ShopID, "stock", p.Stock)
	return nil
}

func (s *ProductService) Delete(ctx context.Context, userID, shopID, productID string) error {
	if _, err := s.access.forWrite(ctx, shopID, userID); err != nil {
		return err
	}

	if err := s.products.Delete(ctx, shopID, productID); err != nil {
		return err
	}

	s.logger.Info("product deleted", "product_id", productID, "shop_id", shopID)
	return nil
}

// Operations returns the stock ledger of one product, oldest first.
func (s *ProductService) Operations(ctx context.Context, userID, shopID, productID string) ([]models.Operation, error) {
	if _, err := s.Get(ctx, userID, shopID, productID); err != nil {
		return nil, err
	}
	return s.ops.GetByProductID(ctx, productID)
}
