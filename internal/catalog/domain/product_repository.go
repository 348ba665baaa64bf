package domain

import "context"

// ListProductsQuery 商品列表查询条件
type ListProductsQuery struct {
	CategoryID   string
	Status       ProductStatus
	FeaturedOnly bool
	Keyword      string
	Page         int
	PageSize     int
}

// ProductRepository 商品仓储接口
type ProductRepository interface {
	Save(ctx context.Context, product *Product) error
	// GetByProductID 按业务主键查询，未找到返回 nil, nil
	GetByProductID(ctx context.Context, productID string) (*Product, error)
	GetBySlug(ctx context.Context, slug string) (*Product, error)
	GetBySKU(ctx context.Context, sku string) (*Product, error)
	ExistsBySlug(ctx context.Context, slug string) (bool, error)
	ExistsBySKU(ctx context.Context, sku string) (bool, error)
	List(ctx context.Context, query ListProductsQuery) ([]*Product, int64, error)
	ListFeatured(ctx context.Context, limit int) ([]*Product, error)
	// CountByCategory 统计引用指定分类的商品数
	CountByCategory(ctx context.Context, categoryID string) (int64, error)
	Delete(ctx context.Context, productID string) error
	// UpdateStatusBatch 批量修改状态，返回受影响行数
	UpdateStatusBatch(ctx context.Context, productIDs []string, status ProductStatus) (int64, error)
	// IncrementViewCount 浏览计数自增，不走乐观锁
	IncrementViewCount(ctx context.Context, productID string) error
}
