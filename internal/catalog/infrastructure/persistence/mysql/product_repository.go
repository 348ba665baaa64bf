package mysql

import (
	"context"
	"errors"

	"github.com/wyfcoding/pkg/contextx"
	"github.com/wyfcoding/storefront/internal/catalog/domain"
	"gorm.io/gorm"
)

type productRepository struct{ db *gorm.DB }

// NewProductRepository 创建商品仓储实例
func NewProductRepository(db *gorm.DB) domain.ProductRepository {
	return &productRepository{db: db}
}

func (r *productRepository) Save(ctx context.Context, product *domain.Product) error {
	return r.getDB(ctx).WithContext(ctx).Save(product).Error
}

func (r *productRepository) GetByProductID(ctx context.Context, productID string) (*domain.Product, error) {
	var p domain.Product
	err := r.getDB(ctx).WithContext(ctx).Where("product_id = ?", productID).First(&p).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &p, nil
}

func (r *productRepository) GetBySlug(ctx context.Context, slug string) (*domain.Product, error) {
	var p domain.Product
	err := r.getDB(ctx).WithContext(ctx).Where("slug = ?", slug).First(&p).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &p, nil
}

func (r *productRepository) GetBySKU(ctx context.Context, sku string) (*domain.Product, error) {
	var p domain.Product
	err := r.getDB(ctx).WithContext(ctx).Where("sku = ?", sku).First(&p).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &p, nil
}

func (r *productRepository) ExistsBySlug(ctx context.Context, slug string) (bool, error) {
	var count int64
	err := r.getDB(ctx).WithContext(ctx).Model(&domain.Product{}).Where("slug = ?", slug).Count(&count).Error
	return count > 0, err
}

func (r *productRepository) ExistsBySKU(ctx context.Context, sku string) (bool, error) {
	var count int64
	err := r.getDB(ctx).WithContext(ctx).Model(&domain.Product{}).Where("sku = ?", sku).Count(&count).Error
	return count > 0, err
}

func (r *productRepository) List(ctx context.Context, query domain.ListProductsQuery) ([]*domain.Product, int64, error) {
	var products []*domain.Product
	var total int64

	q := r.getDB(ctx).WithContext(ctx).Model(&domain.Product{})
	if query.CategoryID != "" {
		q = q.Where("category_id = ?", query.CategoryID)
	}
	if query.Status != "" {
		q = q.Where("status = ?", query.Status)
	}
	if query.FeaturedOnly {
		q = q.Where("is_featured = ?", true)
	}
	if query.Keyword != "" {
		kw := "%" + query.Keyword + "%"
		q = q.Where("name LIKE ? OR sku LIKE ?", kw, kw)
	}

	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (query.Page - 1) * query.PageSize
	err := q.Order("created_at DESC").Offset(offset).Limit(query.PageSize).Find(&products).Error
	return products, total, err
}

func (r *productRepository) ListFeatured(ctx context.Context, limit int) ([]*domain.Product, error) {
	var products []*domain.Product
	err := r.getDB(ctx).WithContext(ctx).
		Where("is_featured = ? AND status = ?", true, domain.StatusActive).
		Order("sold_count DESC").
		Limit(limit).
		Find(&products).Error
	return products, err
}

func (r *productRepository) CountByCategory(ctx context.Context, categoryID string) (int64, error) {
	var count int64
	err := r.getDB(ctx).WithContext(ctx).Model(&domain.Product{}).
		Where("category_id = ?", categoryID).
		Count(&count).Error
	return count, err
}

func (r *productRepository) Delete(ctx context.Context, productID string) error {
	return r.getDB(ctx).WithContext(ctx).Where("product_id = ?", productID).Delete(&domain.Product{}).Error
}

func (r *productRepository) UpdateStatusBatch(ctx context.Context, productIDs []string, status domain.ProductStatus) (int64, error) {
	result := r.getDB(ctx).WithContext(ctx).Model(&domain.Product{}).
		Where("product_id IN ?", productIDs).
		Update("status", status)
	return result.RowsAffected, result.Error
}

func (r *productRepository) IncrementViewCount(ctx context.Context, productID string) error {
	return r.getDB(ctx).WithContext(ctx).Model(&domain.Product{}).
		Where("product_id = ?", productID).
		Update("view_count", gorm.Expr("view_count + 1")).Error
}

func (r *productRepository) getDB(ctx context.Context) *gorm.DB {
	if tx, ok := contextx.GetTx(ctx).(*gorm.DB); ok {
		return tx
	}
	return r.db
}
