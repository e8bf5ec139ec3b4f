package service

import (
	"context"
	"log/slog"

	"shop-service/internal/models"
	"shop-service/internal/repository"
)

type OrderService struct {
	orders repository.OrderRepository
	ops    repository.OperationRepository
	access membership
	cache  ProductCacheInvalidator
	logger *slog.Logger
}

func NewOrderService(orders repository.OrderRepository, ops repository.OperationRepository, shops repository.ShopRepository, cache ProductCacheInvalidator, logger *slog.Logger) *OrderService {
	if cache == nil {
		cache = noopInvalidator{}
	}
	return &OrderService{
		orders: orders,
		ops:    ops,
		access: membership{shops: shops},
		cache:  cache,
		logger: logger,
	}
}

// Create places an order for userID. Stock of every line is taken in the same
// transaction that writes the order.
func (s *OrderService) Create(ctx context.Context, userID string, req models.OrderRequest) (*models.OrderWithRelations, error) {
	if err := validateInput(req); err != nil {
		return nil, err
	}

	if _, err := s.access.forWrite(ctx, req.ShopID, userID); err != nil {
		return nil, err
	}

	order, items, err := s.orders.CreateOrder(ctx, userID, req)
	if err != nil {
		s.logger.Warn("order rejected", "shop_id", req.ShopID, "user_id", userID, "error", err)
		return nil, err
	}

	s.cache.Invalidate(ctx, order.ShopID, productIDs(items)...)
	s.logger.Info("order created",
		"order_id", order.OrderID,
		"shop_id", order.ShopID,
		"items", len(items),
		"total_amount", order.TotalAmount,
	)

	full, err := s.orders.GetByID(ctx, order.ShopID, order.OrderID)
	if err != nil {
		// Already committed: answer with what CreateOrder returned.
		s.logger.Warn("order created but reload failed", "order_id", order.OrderID, "error", err)
		return &models.OrderWithRelations{Order: *order, OrderItems: items}, nil
	}

	return full, nil
}

// List returns the shop's orders, or an empty list when userID has no link to it.
func (s *OrderService) List(ctx context.Context, userID, shopID string) ([]models.OrderWithRelations, error) {
	return s.orders.GetByShopID(ctx, userID, shopID)
}

func (s *OrderService) Get(ctx context.Context, userID, shopID, orderID string) (*models.OrderWithRelations, error) {
	if _, err := s.access.forRead(ctx, shopID, userID); err != nil {
		return nil, err
	}
	return s.orders.GetByID(ctx, shopID, orderID)
}

func (s *OrderService) Delete(ctx context.Context, userID, shopID, orderID string) error {
	if _, err := s.access.forWrite(ctx, shopID, userID); err != nil {
		return err
	}

	items, err := s.orders.DeleteOrder(ctx, shopID, orderID)
	if err != nil {
		return err
	}

	s.cache.Invalidate(ctx, shopID, productIDs(items)...)
	s.logger.Info("order deleted", "order_id", orderID, "shop_id", shopID, "items", len(items))
	return nil
}

func (s *OrderService) UpdateStatus(ctx context.Context, userID, shopID, orderID string, status models.OrderStatus) (*models.OrderWithRelations, error) {
	if _, err := s.access.forWrite(ctx, shopID, userID); err != nil {
		return nil, err
	}

	if err := s.orders.UpdateStatus(ctx, shopID, orderID, status); err != nil {
		return nil, err
	}

	s.logger.Info("order status updated", "order_id", orderID, "status", status)
	return s.orders.GetByID(ctx, shopID, orderID)
}

// Operations lists the ledger rows an order produced.
func (s *OrderService) Operations(ctx context.Context, userID, shopID, orderID string) ([]models.Operation, error) {
	if _, err := s.Get(ctx, userID, shopID, orderID); err != nil {
		return nil, err
	}
	return s.ops.GetByOrderID(ctx, orderID)
}

func productIDs(items []models.OrderItem) []string {
	seen := make(map[string]struct{}, len(items))
	ids := make([]string, 0, len(items))
	for _, item := range items {
		if _, ok := seen[item.ProductID]; ok {
			continue
		}
		seen[item.ProductID] = struct{}{}
		ids = append(ids, item.ProductID)
	}
	return ids
}
