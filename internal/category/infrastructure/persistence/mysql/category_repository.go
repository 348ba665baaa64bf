package mysql

import (
	"context"
	"errors"

	"github.com/wyfcoding/pkg/contextx"
	"github.com/wyfcoding/storefront/internal/category/domain"
	"gorm.io/gorm"
)

type categoryRepository struct{ db *gorm.DB }

// NewCategoryRepository 创建分类仓储实例
func NewCategoryRepository(db *gorm.DB) domain.CategoryRepository {
	return &categoryRepository{db: db}
}

func (r *categoryRepository) Save(ctx context.Context, category *domain.Category) error {
	return r.getDB(ctx).WithContext(ctx).Save(category).Error
}

func (r *categoryRepository) GetByCategoryID(ctx context.Context, categoryID string) (*domain.Category, error) {
	var c domain.Category
	err := r.getDB(ctx).WithContext(ctx).Where("category_id = ?", categoryID).First(&c).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &c, nil
}

func (r *categoryRepository) GetBySlug(ctx context.Context, slug string) (*domain.Category, error) {
	var c domain.Category
	err := r.getDB(ctx).WithContext(ctx).Where("slug = ?", slug).First(&c).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &c, nil
}

func (r *categoryRepository) ExistsBySlug(ctx context.Context, slug string) (bool, error) {
	var count int64
	err := r.getDB(ctx).WithContext(ctx).Model(&domain.Category{}).Where("slug = ?", slug).Count(&count).Error
	return count > 0, err
}

func (r *categoryRepository) ListAll(ctx context.Context) ([]*domain.Category, error) {
	var categories []*domain.Category
	err := r.getDB(ctx).WithContext(ctx).Order("sort_order ASC, name ASC").Find(&categories).Error
	return categories, err
}

func (r *categoryRepository) List(ctx context.Context, query domain.ListCategoriesQuery) ([]*domain.Category, int64, error) {
	var categories []*domain.Category
	var total int64

	q := r.getDB(ctx).WithContext(ctx).Model(&domain.Category{})
	if query.ParentID != nil {
		q = q.Where("parent_id = ?", *query.ParentID)
	}
	if query.ActiveOnly {
		q = q.Where("is_active = ?", true)
	}

	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (query.Page - 1) * query.PageSize
	err := q.Order("sort_order ASC, name ASC").Offset(offset).Limit(query.PageSize).Find(&categories).Error
	return categories, total, err
}

func (r *categoryRepository) ListChildren(ctx context.Context, parentID string) ([]*domain.Category, error) {
	var categories []*domain.Category
	err := r.getDB(ctx).WithContext(ctx).
		Where("parent_id = ?", parentID).
		Order("sort_order ASC, name ASC").
		Find(&categories).Error
	return categories, err
}

func (r *categoryRepository) HasChildren(ctx context.Context, categoryID string) (bool, error) {
	var count int64
	err := r.getDB(ctx).WithContext(ctx).Model(&domain.Category{}).
		Where("parent_id = ?", categoryID).
		Count(&count).Error
	return count > 0, err
}

func (r *categoryRepository) Delete(ctx context.Context, categoryID string) error {
	return r.getDB(ctx).WithContext(ctx).Where("category_id = ?", categoryID).Delete(&domain.Category{}).Error
}

func (r *categoryRepository) getDB(ctx context.Context) *gorm.DB {
	if tx, ok := contextx.GetTx(ctx).(*gorm.DB); ok {
		return tx
	}
	return r.db
}
