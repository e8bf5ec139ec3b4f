package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"shop-service/internal/models"
	"shop-service/internal/repository"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	notFoundMarker = "notfound"
	notFoundTTL    = time.Minute
)

// CachedProductRepository is a read-through cache in front of a ProductRepository.
// Redis failures are logged and the call falls through to the database.
type CachedProductRepository struct {
	realRepo repository.ProductRepository
	redis    *redis.Client
	ttl      time.Duration
	logger   *slog.Logger
}

func NewCachedProductRepository(realRepo repository.ProductRepository, redis *redis.Client, ttl time.Duration, logger *slog.Logger) *CachedProductRepository {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &CachedProductRepository{
		realRepo: realRepo,
		redis:    redis,
		ttl:      ttl,
		logger:   logger,
	}
}

func productKey(shopID, productID string) string {
	return fmt.Sprintf("shop:%s:product:%s", shopID, productID)
}

func productListKey(shopID string) string {
	return fmt.Sprintf("shop:%s:products", shopID)
}

func (c *CachedProductRepository) GetByID(ctx context.Context, shopID, id string) (*models.Product, error) {
	key := productKey(shopID, id)

	data, err := c.redis.Get(ctx, key).Bytes()

	switch {
	case err == nil:
		if string(data) == notFoundMarker {
			return nil, repository.ErrNotFound
		}

		var product models.Product
		if err := json.Unmarshal(data, &product); err != nil {
			c.logger.Warn("failed to unmarshal cached product, continuing with db", "key", key, "error", err)
			break
		}

		return &product, nil

	case errors.Is(err, redis.Nil):

	default:
		c.logger.Warn("redis error, continuing with db", "key", key, "error", err)
	}

	product, err := c.realRepo.GetByID(ctx, shopID, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			if setErr := c.redis.Set(ctx, key, notFoundMarker, notFoundTTL).Err(); setErr != nil {
				c.logger.Warn("failed to cache notfound", "key", key, "error", setErr)
			}
		}
		return nil, err
	}

	c.store(ctx, key, product)

	return product, nil
}

func (c *CachedProductRepository) GetByShopID(ctx context.Context, shopID string) ([]models.Product, error) {
	key := productListKey(shopID)

	data, err := c.redis.Get(ctx, key).Bytes()

	switch {
	case err == nil:
		var products []models.Product
		if err := json.Unmarshal(data, &products); err != nil {
			c.logger.Warn("failed to unmarshal cached products, continuing with db", "key", key, "error", err)
			break
		}
		return products, nil

	case errors.Is(err, redis.Nil):

	default:
		c.logger.Warn("redis error, continuing with db", "key", key, "error", err)
	}

	products, err := c.realRepo.GetByShopID(ctx, shopID)
	if err != nil {
		return nil, err
	}

	c.store(ctx, key, products)

	return products, nil
}

func (c *CachedProductRepository) store(ctx context.Context, key string, v any) {
	jsonData, err := json.Marshal(v)
	if err != nil {
		c.logger.Warn("failed to marshal cache value", "key", key, "error", err)
		return
	}

	if err := c.redis.Set(ctx, key, jsonData, c.ttl).Err(); err != nil {
		c.logger.Warn("failed to cache value", "key", key, "error", err)
	}
}

func (c *CachedProductRepository) Create(ctx context.Context, product *models.Product) error {
	if err := c.realRepo.Create(ctx, product); err != nil {
		return err
	}

	c.Invalidate(ctx, product.ShopID, product.ProductID)
	return nil
}

func (c *CachedProductRepository) Update(ctx context.Context, product *models.Product) error {
	err := c.realRepo.Update(ctx, product)
	c.Invalidate(ctx, product.ShopID, product.ProductID)
	return err
}

func (c *CachedProductRepository) Delete(ctx context.Context, shopID, id string) error {
	err := c.realRepo.Delete(ctx, shopID, id)
	c.Invalidate(ctx, shopID, id)
	return err
}

// Invalidate drops the shop's product list and the given products. Orders call
// it after stock moved.
func (c *CachedProductRepository) Invalidate(ctx context.Context, shopID string, productIDs ...string) {
	keys := make([]string, 0, len(productIDs)+1)
	keys = append(keys, productListKey(shopID))
	for _, id := range productIDs {
		keys = append(keys, productKey(shopID, id))
	}

	if err := c.redis.Del(ctx, keys...).Err(); err != nil {
		c.logger.Warn("failed to invalidate product cache", "shop_id", shopID, "error", err)
	}
}
