package application

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wyfcoding/storefront/internal/catalog/domain"
	"github.com/wyfcoding/storefront/pkg/metrics"
)

type fakeProductRepo struct {
	byID      map[string]*domain.Product
	bySlug    map[string]*domain.Product
	bySKU     map[string]*domain.Product
	viewIncrs map[string]int
}

func newFakeProductRepo(products ...*domain.Product) *fakeProductRepo {
	r := &fakeProductRepo{
		byID:      make(map[string]*domain.Product),
		bySlug:    make(map[string]*domain.Product),
		bySKU:     make(map[string]*domain.Product),
		viewIncrs: make(map[string]int),
	}
	for _, p := range products {
		r.index(p)
	}
	return r
}

func (r *fakeProductRepo) index(p *domain.Product) {
	r.byID[p.ProductID] = p
	r.bySlug[p.Slug] = p
	r.bySKU[p.SKU] = p
}

func (r *fakeProductRepo) Save(_ context.Context, p *domain.Product) error {
	r.index(p)
	return nil
}

func (r *fakeProductRepo) GetByProductID(_ context.Context, id string) (*domain.Product, error) {
	return r.byID[id], nil
}

func (r *fakeProductRepo) GetBySlug(_ context.Context, slug string) (*domain.Product, error) {
	return r.bySlug[slug], nil
}

func (r *fakeProductRepo) GetBySKU(_ context.Context, sku string) (*domain.Product, error) {
	return r.bySKU[sku], nil
}

func (r *fakeProductRepo) ExistsBySlug(_ context.Context, slug string) (bool, error) {
	_, ok := r.bySlug[slug]
	return ok, nil
}

func (r *fakeProductRepo) ExistsBySKU(_ context.Context, sku string) (bool, error) {
	_, ok := r.bySKU[sku]
	return ok, nil
}

func (r *fakeProductRepo) List(_ context.Context, _ domain.ListProductsQuery) ([]*domain.Product, int64, error) {
	all := make([]*domain.Product, 0, len(r.byID))
	for _, p := range r.byID {
		all = append(all, p)
	}
	return all, int64(len(all)), nil
}

func (r *fakeProductRepo) ListFeatured(_ context.Context, _ int) ([]*domain.Product, error) {
	return nil, nil
}

func (r *fakeProductRepo) CountByCategory(_ context.Context, _ string) (int64, error) {
	return 0, nil
}

func (r *fakeProductRepo) Delete(_ context.Context, id string) error {
	delete(r.byID, id)
	return nil
}

func (r *fakeProductRepo) UpdateStatusBatch(_ context.Context, ids []string, status domain.ProductStatus) (int64, error) {
	var affected int64
	for _, id := range ids {
		if p, ok := r.byID[id]; ok {
			p.Status = status
			affected++
		}
	}
	return affected, nil
}

func (r *fakeProductRepo) IncrementViewCount(_ context.Context, id string) error {
	r.viewIncrs[id]++
	return nil
}

type fakeProductCache struct {
	entries map[string]*domain.Product
	sets    int
}

func newFakeProductCache() *fakeProductCache {
	return &fakeProductCache{entries: make(map[string]*domain.Product)}
}

func (c *fakeProductCache) Get(_ context.Context, id string) (*domain.Product, error) {
	return c.entries[id], nil
}

func (c *fakeProductCache) Set(_ context.Context, p *domain.Product) error {
	c.sets++
	c.entries[p.ProductID] = p
	return nil
}

func (c *fakeProductCache) Invalidate(_ context.Context, id string) error {
	delete(c.entries, id)
	return nil
}

type allowAllChecker struct{ exists bool }

func (c allowAllChecker) Exists(context.Context, string) (bool, error) {
	return c.exists, nil
}

func newCatalogCommand(repo domain.ProductRepository, checker domain.CategoryChecker) *CatalogCommandService {
	return NewCatalogCommandService(repo, checker, nil, nil, metrics.New("test"))
}

func activeCatalogProduct(id, sku, slug string) *domain.Product {
	return &domain.Product{
		ProductID: id,
		SKU:       sku,
		Slug:      slug,
		Name:      "Product " + id,
		Price:     decimal.RequireFromString("10.00"),
		Stock:     5,
		Status:    domain.StatusActive,
	}
}

func TestCreateProductValidation(t *testing.T) {
	svc := newCatalogCommand(newFakeProductRepo(), allowAllChecker{exists: true})
	ctx := context.Background()

	_, err := svc.CreateProduct(ctx, CreateProductCommand{SKU: "ABC"})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = svc.CreateProduct(ctx, CreateProductCommand{Name: "Widget", SKU: "ABC"})
	assert.ErrorIs(t, err, domain.ErrInvalidInput, "non-positive price")

	_, err = svc.CreateProduct(ctx, CreateProductCommand{
		Name: "Widget", SKU: "ABC", Price: decimal.NewFromInt(10), Status: "archived",
	})
	assert.ErrorIs(t, err, domain.ErrInvalidStatus)
}

func TestCreateProductUnknownCategory(t *testing.T) {
	svc := newCatalogCommand(newFakeProductRepo(), allowAllChecker{exists: false})

	_, err := svc.CreateProduct(context.Background(), CreateProductCommand{
		Name: "Widget", SKU: "ABC", Price: decimal.NewFromInt(10), CategoryID: "CAT-404",
	})
	assert.ErrorIs(t, err, domain.ErrCategoryNotFound)
}

func TestCreateProductDuplicateSKU(t *testing.T) {
	repo := newFakeProductRepo(activeCatalogProduct("PRD-1", "ABC-1", "widget"))
	svc := newCatalogCommand(repo, allowAllChecker{exists: true})

	// SKU 比较前会归一化
	_, err := svc.CreateProduct(context.Background(), CreateProductCommand{
		Name: "Another", SKU: " abc-1 ", Price: decimal.NewFromInt(10),
	})
	assert.ErrorIs(t, err, domain.ErrSKUTaken)
}

func TestCreateProductInvalidTiers(t *testing.T) {
	svc := newCatalogCommand(newFakeProductRepo(), allowAllChecker{exists: true})

	_, err := svc.CreateProduct(context.Background(), CreateProductCommand{
		Name: "Widget", SKU: "ABC", Price: decimal.NewFromInt(10),
		PriceTiers: []PriceTierInput{
			{MinQuantity: 5, Price: decimal.NewFromInt(9)},
			{MinQuantity: 5, Price: decimal.NewFromInt(8)},
		},
	})
	assert.ErrorIs(t, err, domain.ErrInvalidPriceTiers)
}

func TestUniqueSlugSuffixesOnConflict(t *testing.T) {
	repo := newFakeProductRepo(
		activeCatalogProduct("PRD-1", "SKU-1", "widget"),
		activeCatalogProduct("PRD-2", "SKU-2", "widget-2"),
	)
	svc := newCatalogCommand(repo, allowAllChecker{exists: true})

	slug, err := svc.uniqueSlug(context.Background(), "widget", "")
	require.NoError(t, err)
	assert.Equal(t, "widget-3", slug)
}

func TestUniqueSlugKeepsOwnSlug(t *testing.T) {
	repo := newFakeProductRepo(activeCatalogProduct("PRD-1", "SKU-1", "widget"))
	svc := newCatalogCommand(repo, allowAllChecker{exists: true})

	slug, err := svc.uniqueSlug(context.Background(), "widget", "widget")
	require.NoError(t, err)
	assert.Equal(t, "widget", slug)
}

func TestSlugifyProducts(t *testing.T) {
	assert.Equal(t, "organic-green-tea", Slugify("Organic Green Tea"))
	assert.Equal(t, "50-off-deal", Slugify(" 50% Off Deal! "))
	assert.Empty(t, Slugify("!!!"))
}

func TestGetProductCacheMissThenHit(t *testing.T) {
	repo := newFakeProductRepo(activeCatalogProduct("PRD-1", "SKU-1", "widget"))
	cache := newFakeProductCache()
	svc := NewCatalogQueryService(repo, cache, metrics.New("test"))
	ctx := context.Background()

	dto, err := svc.GetProduct(ctx, "PRD-1")
	require.NoError(t, err)
	assert.Equal(t, "PRD-1", dto.ProductID)
	assert.Equal(t, 1, cache.sets)

	// 第二次读取命中缓存，不再回源
	_, err = svc.GetProduct(ctx, "PRD-1")
	require.NoError(t, err)
	assert.Equal(t, 1, cache.sets)
}

func TestGetProductNotFound(t *testing.T) {
	svc := NewCatalogQueryService(newFakeProductRepo(), newFakeProductCache(), metrics.New("test"))

	_, err := svc.GetProduct(context.Background(), "PRD-404")
	assert.ErrorIs(t, err, domain.ErrProductNotFound)
}

func TestAdjustStockCommandProductNotFound(t *testing.T) {
	svc := newCatalogCommand(newFakeProductRepo(), allowAllChecker{exists: true})

	_, err := svc.AdjustStock(context.Background(), AdjustStockCommand{ProductID: "PRD-404", Delta: 1})
	assert.ErrorIs(t, err, domain.ErrProductNotFound)
}
