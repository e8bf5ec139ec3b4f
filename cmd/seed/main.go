package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"shop-service/internal/auth"
	"shop-service/internal/database"
	"shop-service/internal/models"
	"shop-service/internal/repository"
	"shop-service/internal/service"
)

// seed creates two users, two shops with suppliers and products, and one order.
// Running it twice stops at the first duplicate user.
func main() {
	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))

	if err := run(context.Background(), logger); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			logger.Warn("database already seeded", "error", err)
			return
		}
		logger.Error("seeding failed", "error", err)
		os.Exit(1)
	}

	logger.Info("seeding completed")
}

func run(ctx context.Context, logger *slog.Logger) error {
	cfg, err := database.LoadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	pool, err := database.Connect(ctx, cfg)
	if err != nil {
		return err
	}
	defer pool.Close()

	if _, err := database.Migrate(ctx, pool, database.Migrations, logger); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}

	userRepo := repository.NewUserRepository(pool)
	shopRepo := repository.NewShopRepository(pool)
	supplierRepo := repository.NewSupplierRepository(pool)
	operationRepo := repository.NewOperationRepository(pool)

	authService := auth.NewService(userRepo, repository.NewSessionRepository(pool), cfg.SessionTTL, logger)
	shops := service.NewShopService(shopRepo, userRepo, supplierRepo, logger)
	products := service.NewProductService(repository.NewProductRepository(pool), operationRepo, supplierRepo, shopRepo, logger)
	orders := service.NewOrderService(repository.NewOrderRepository(pool), operationRepo, shopRepo, nil, logger)

	userOne, err := authService.SignUp(ctx, models.SignUpRequest{Email: "user1@example.com", Password: "password1", Name: strPtr("User One")})
	if err != nil {
		return err
	}
	userTwo, err := authService.SignUp(ctx, models.SignUpRequest{Email: "user2@example.com", Password: "password2", Name: strPtr("User Two")})
	if err != nil {
		return err
	}

	shopOne, err := shops.Create(ctx, userOne.UserID, "Shop One")
	if err != nil {
		return err
	}
	shopTwo, err := shops.Create(ctx, userTwo.UserID, "Shop Two")
	if err != nil {
		return err
	}

	_, err = shops.AddMember(ctx, userOne.UserID, shopOne.ShopID, service.AddMemberRequest{
		Email: userTwo.Email,
		Role:  models.ShopRoleManager,
	})
	if err != nil {
		return err
	}

	supplierOne := &models.Supplier{Name: "Supplier One"}
	if err := shops.CreateSupplier(ctx, userOne.UserID, shopOne.ShopID, supplierOne); err != nil {
		return err
	}
	supplierTwo := &models.Supplier{Name: "Supplier Two"}
	if err := shops.CreateSupplier(ctx, userOne.UserID, shopOne.ShopID, supplierTwo); err != nil {
		return err
	}
	supplierThree := &models.Supplier{Name: "Supplier Three"}
	if err := shops.CreateSupplier(ctx, userTwo.UserID, shopTwo.ShopID, supplierThree); err != nil {
		return err
	}

	catalog := []*models.Product{
		{ShopID: shopOne.ShopID, SupplierID: &supplierOne.SupplierID, Name: "Product 1 for Shop One", Price: 1000, Stock: 25},
		{ShopID: shopOne.ShopID, SupplierID: &supplierTwo.SupplierID, Name: "Product 2 for Shop One", Price: 1500, Stock: 10},
		{ShopID: shopTwo.ShopID, SupplierID: &supplierThree.SupplierID, Name: "Product 1 for Shop Two", Price: 2000, Stock: 5},
	}
	for _, p := range catalog {
		owner := userOne.UserID
		if p.ShopID == shopTwo.ShopID {
			owner = userTwo.UserID
		}
		if err := products.Create(ctx, owner, p); err != nil {
			return err
		}
	}

	order, err := orders.Create(ctx, userOne.UserID, models.OrderRequest{
		ShopID: shopOne.ShopID,
		Items: []models.OrderItemRequest{
			{ProductID: catalog[0].ProductID, Quantity: 2},
			{ProductID: catalog[1].ProductID, Quantity: 1},
		},
	})
	if err != nil {
		return err
	}

	logger.Info("seeded",
		"shop_one", shopOne.ShopID,
		"shop_two", shopTwo.ShopID,
		"order_id", order.OrderID,
		"order_total", order.TotalAmount,
	)

	return nil
}

func strPtr(s string) *string {
	return &s
}
