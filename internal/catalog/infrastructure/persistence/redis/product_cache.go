package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/wyfcoding/storefront/internal/catalog/domain"
	"github.com/wyfcoding/storefront/pkg/cache"
)

const (
	productKeyPrefix = "catalog:product:"
	productTTL       = 10 * time.Minute
)

// productCache 基于 Redis 的商品读缓存实现
type productCache struct {
	cache *cache.RedisCache
}

// NewProductCache 创建商品缓存实例
func NewProductCache(c *cache.RedisCache) domain.ProductCache {
	return &productCache{cache: c}
}

func (pc *productCache) Get(ctx context.Context, productID string) (*domain.Product, error) {
	var p domain.Product
	if err := pc.cache.GetJSON(ctx, productKey(productID), &p); err != nil {
		return nil, err
	}
	if p.ProductID == "" {
		return nil, nil
	}
	return &p, nil
}

func (pc *productCache) Set(ctx context.Context, product *domain.Product) error {
	return pc.cache.SetJSON(ctx, productKey(product.ProductID), product, productTTL)
}

func (pc *productCache) Invalidate(ctx context.Context, productID string) error {
	return pc.cache.Delete(ctx, productKey(productID))
}

func productKey(productID string) string {
	return fmt.Sprintf("%s%s", productKeyPrefix, productID)
}
