package application

import (
	"context"

	"github.com/wyfcoding/storefront/internal/catalog/domain"
	"github.com/wyfcoding/storefront/pkg/logger"
	"github.com/wyfcoding/storefront/pkg/metrics"
)

// CatalogQueryService 商品目录查询服务
type CatalogQueryService struct {
	repo    domain.ProductRepository
	cache   domain.ProductCache
	metrics *metrics.Metrics
}

// NewCatalogQueryService 创建商品目录查询服务实例
func NewCatalogQueryService(
	repo domain.ProductRepository,
	cache domain.ProductCache,
	m *metrics.Metrics,
) *CatalogQueryService {
	return &CatalogQueryService{
		repo:    repo,
		cache:   cache,
		metrics: m,
	}
}

// GetProduct 根据业务主键获取商品，走读缓存
func (s *CatalogQueryService) GetProduct(ctx context.Context, productID string) (*ProductDTO, error) {
	if cached, err := s.cache.Get(ctx, productID); err == nil && cached != nil {
		s.metrics.CacheHitsTotal.Inc()
		return toProductDTO(cached), nil
	}
	s.metrics.CacheMissesTotal.Inc()

	product, err := s.repo.GetByProductID(ctx, productID)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, domain.ErrProductNotFound
	}

	if err := s.cache.Set(ctx, product); err != nil {
		logger.Warn(ctx, "failed to cache product", "product_id", productID, "error", err)
	}

	// 浏览计数尽力而为，失败不影响查询
	if err := s.repo.IncrementViewCount(ctx, productID); err != nil {
		logger.Warn(ctx, "failed to increment view count", "product_id", productID, "error", err)
	}

	return toProductDTO(product), nil
}

// GetProductBySlug 根据 slug 获取商品
func (s *CatalogQueryService) GetProductBySlug(ctx context.Context, slug string) (*ProductDTO, error) {
	product, err := s.repo.GetBySlug(ctx, slug)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, domain.ErrProductNotFound
	}
	return toProductDTO(product), nil
}

// GetProductBySKU 根据 SKU 获取商品
func (s *CatalogQueryService) GetProductBySKU(ctx context.Context, sku string) (*ProductDTO, error) {
	product, err := s.repo.GetBySKU(ctx, domain.NormalizeSKU(sku))
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, domain.ErrProductNotFound
	}
	return toProductDTO(product), nil
}

// ListProducts 按条件分页列出商品
func (s *CatalogQueryService) ListProducts(ctx context.Context, query domain.ListProductsQuery) (*ProductListDTO, error) {
	if query.Page < 1 {
		query.Page = 1
	}
	if query.PageSize < 1 || query.PageSize > 100 {
		query.PageSize = 20
	}

	products, total, err := s.repo.List(ctx, query)
	if err != nil {
		return nil, err
	}
	return &ProductListDTO{
		Items:    toProductDTOs(products),
		Total:    total,
		Page:     query.Page,
		PageSize: query.PageSize,
	}, nil
}

// GetFeaturedProducts 获取推荐商品
func (s *CatalogQueryService) GetFeaturedProducts(ctx context.Context, limit int) ([]*ProductDTO, error) {
	if limit < 1 || limit > 50 {
		limit = 10
	}
	products, err := s.repo.ListFeatured(ctx, limit)
	if err != nil {
		return nil, err
	}
	return toProductDTOs(products), nil
}
