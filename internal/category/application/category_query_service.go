package application

import (
	"context"

	"github.com/wyfcoding/storefront/internal/category/domain"
)

// CategoryQueryService 分类查询服务
type CategoryQueryService struct {
	repo domain.CategoryRepository
}

// NewCategoryQueryService 创建分类查询服务实例
func NewCategoryQueryService(repo domain.CategoryRepository) *CategoryQueryService {
	return &CategoryQueryService{repo: repo}
}

// GetCategory 根据业务主键获取分类
func (s *CategoryQueryService) GetCategory(ctx context.Context, categoryID string) (*CategoryDTO, error) {
	category, err := s.repo.GetByCategoryID(ctx, categoryID)
	if err != nil {
		return nil, err
	}
	if category == nil {
		return nil, domain.ErrCategoryNotFound
	}
	return toCategoryDTO(category), nil
}

// GetCategoryBySlug 根据 slug 获取分类
func (s *CategoryQueryService) GetCategoryBySlug(ctx context.Context, slug string) (*CategoryDTO, error) {
	category, err := s.repo.GetBySlug(ctx, slug)
	if err != nil {
		return nil, err
	}
	if category == nil {
		return nil, domain.ErrCategoryNotFound
	}
	return toCategoryDTO(category), nil
}

// Exists 分类存在性校验，供其它上下文作为端口使用
func (s *CategoryQueryService) Exists(ctx context.Context, categoryID string) (bool, error) {
	category, err := s.repo.GetByCategoryID(ctx, categoryID)
	if err != nil {
		return false, err
	}
	return category != nil, nil
}

// GetTree 构建分类树
func (s *CategoryQueryService) GetTree(ctx context.Context, activeOnly bool) ([]*CategoryTreeDTO, error) {
	categories, err := s.repo.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	roots := domain.BuildTree(categories, activeOnly)
	dtos := make([]*CategoryTreeDTO, 0, len(roots))
	for _, root := range roots {
		dtos = append(dtos, toTreeDTO(root))
	}
	return dtos, nil
}

// ListCategories 按条件分页列出分类
func (s *CategoryQueryService) ListCategories(ctx context.Context, query domain.ListCategoriesQuery) (*CategoryListDTO, error) {
	if query.Page < 1 {
		query.Page = 1
	}
	if query.PageSize < 1 || query.PageSize > 100 {
		query.PageSize = 50
	}

	categories, total, err := s.repo.List(ctx, query)
	if err != nil {
		return nil, err
	}
	return &CategoryListDTO{
		Items:    toCategoryDTOs(categories),
		Total:    total,
		Page:     query.Page,
		PageSize: query.PageSize,
	}, nil
}

// GetBreadcrumb 返回从根到指定分类的路径
func (s *CategoryQueryService) GetBreadcrumb(ctx context.Context, categoryID string) ([]*CategoryDTO, error) {
	category, err := s.repo.GetByCategoryID(ctx, categoryID)
	if err != nil {
		return nil, err
	}
	if category == nil {
		return nil, domain.ErrCategoryNotFound
	}

	path := []*CategoryDTO{toCategoryDTO(category)}
	current := category
	for i := 0; current.ParentID != "" && i <= domain.MaxDepth; i++ {
		parent, err := s.repo.GetByCategoryID(ctx, current.ParentID)
		if err != nil {
			return nil, err
		}
		if parent == nil {
			break
		}
		path = append([]*CategoryDTO{toCategoryDTO(parent)}, path...)
		current = parent
	}
	return path, nil
}
