package application

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/wyfcoding/pkg/contextx"
	"github.com/wyfcoding/pkg/idgen"
	"github.com/wyfcoding/storefront/internal/category/domain"
	"github.com/wyfcoding/storefront/pkg/logger"
	"gorm.io/gorm"
)

// CreateCategoryCommand 创建分类命令
type CreateCategoryCommand struct {
	Name            string
	Slug            string
	Description     string
	ParentID        string
	SortOrder       int
	Image           string
	MetaTitle       string
	MetaDescription string
	MetaKeywords    string
}

// UpdateCategoryCommand 更新分类命令，nil 字段不修改
type UpdateCategoryCommand struct {
	CategoryID      string
	Name            *string
	Slug            *string
	Description     *string
	ParentID        *string
	IsActive        *bool
	SortOrder       *int
	Image           *string
	MetaTitle       *string
	MetaDescription *string
	MetaKeywords    *string
}

// CategoryCommandService 分类命令服务
type CategoryCommandService struct {
	repo      domain.CategoryRepository
	products  domain.ProductCounter
	publisher domain.EventPublisher
	db        *gorm.DB // 用于开启事务
}

// NewCategoryCommandService 创建分类命令服务实例
func NewCategoryCommandService(
	repo domain.CategoryRepository,
	products domain.ProductCounter,
	publisher domain.EventPublisher,
	db *gorm.DB,
) *CategoryCommandService {
	return &CategoryCommandService{
		repo:      repo,
		products:  products,
		publisher: publisher,
		db:        db,
	}
}

// CreateCategory 处理创建分类
func (s *CategoryCommandService) CreateCategory(ctx context.Context, cmd CreateCategoryCommand) (*CategoryDTO, error) {
	if cmd.Name == "" {
		return nil, fmt.Errorf("%w: name is required", domain.ErrInvalidInput)
	}

	slug := cmd.Slug
	if slug == "" {
		slug = slugify(cmd.Name)
	}
	exists, err := s.repo.ExistsBySlug(ctx, slug)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, domain.ErrSlugTaken
	}

	level := 0
	if cmd.ParentID != "" {
		parent, err := s.repo.GetByCategoryID(ctx, cmd.ParentID)
		if err != nil {
			return nil, err
		}
		if parent == nil {
			return nil, domain.ErrCategoryNotFound
		}
		if parent.Level >= domain.MaxDepth {
			return nil, domain.ErrMaxDepthExceeded
		}
		level = parent.Level + 1
	}

	category := &domain.Category{
		CategoryID:      fmt.Sprintf("CAT-%d", idgen.GenID()),
		Name:            cmd.Name,
		Slug:            slug,
		Description:     cmd.Description,
		ParentID:        cmd.ParentID,
		Level:           level,
		IsActive:        true,
		SortOrder:       cmd.SortOrder,
		Image:           cmd.Image,
		MetaTitle:       cmd.MetaTitle,
		MetaDescription: cmd.MetaDescription,
		MetaKeywords:    cmd.MetaKeywords,
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		txCtx := contextx.WithTx(ctx, tx)

		if err := s.repo.Save(txCtx, category); err != nil {
			return err
		}

		event := domain.CategoryCreatedEvent{
			CategoryID: category.CategoryID,
			Name:       category.Name,
			Slug:       category.Slug,
			ParentID:   category.ParentID,
			Level:      category.Level,
			Timestamp:  time.Now(),
		}
		return s.publisher.PublishInTx(ctx, tx, domain.TopicCategoryCreated, category.CategoryID, event)
	})
	if err != nil {
		logger.Error(ctx, "failed to create category", "name", cmd.Name, "error", err)
		return nil, err
	}

	return toCategoryDTO(category), nil
}

// UpdateCategory 处理更新分类，包含换父校验与层级重写
func (s *CategoryCommandService) UpdateCategory(ctx context.Context, cmd UpdateCategoryCommand) (*CategoryDTO, error) {
	category, err := s.repo.GetByCategoryID(ctx, cmd.CategoryID)
	if err != nil {
		return nil, err
	}
	if category == nil {
		return nil, domain.ErrCategoryNotFound
	}

	if cmd.Name != nil {
		if *cmd.Name == "" {
			return nil, fmt.Errorf("%w: name cannot be empty", domain.ErrInvalidInput)
		}
		category.Name = *cmd.Name
	}
	if cmd.Slug != nil && *cmd.Slug != category.Slug {
		exists, err := s.repo.ExistsBySlug(ctx, *cmd.Slug)
		if err != nil {
			return nil, err
		}
		if exists {
			return nil, domain.ErrSlugTaken
		}
		category.Slug = *cmd.Slug
	}
	if cmd.Description != nil {
		category.Description = *cmd.Description
	}
	if cmd.SortOrder != nil {
		category.SortOrder = *cmd.SortOrder
	}
	if cmd.Image != nil {
		category.Image = *cmd.Image
	}
	if cmd.MetaTitle != nil {
		category.MetaTitle = *cmd.MetaTitle
	}
	if cmd.MetaDescription != nil {
		category.MetaDescription = *cmd.MetaDescription
	}
	if cmd.MetaKeywords != nil {
		category.MetaKeywords = *cmd.MetaKeywords
	}

	reparented := false
	if cmd.ParentID != nil && *cmd.ParentID != category.ParentID {
		newParentID := *cmd.ParentID
		if newParentID == category.CategoryID {
			return nil, domain.ErrCircularParent
		}
		newLevel := 0
		if newParentID != "" {
			parent, err := s.repo.GetByCategoryID(ctx, newParentID)
			if err != nil {
				return nil, err
			}
			if parent == nil {
				return nil, domain.ErrCategoryNotFound
			}
			if parent.Level >= domain.MaxDepth {
				return nil, domain.ErrMaxDepthExceeded
			}
			// 新父级不能是自身的后代
			isDesc, err := s.isDescendant(ctx, category.CategoryID, parent)
			if err != nil {
				return nil, err
			}
			if isDesc {
				return nil, domain.ErrCircularParent
			}
			newLevel = parent.Level + 1
		}
		category.ParentID = newParentID
		category.Level = newLevel
		reparented = true
	}

	deactivated := false
	if cmd.IsActive != nil && *cmd.IsActive != category.IsActive {
		category.IsActive = *cmd.IsActive
		deactivated = !*cmd.IsActive
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		txCtx := contextx.WithTx(ctx, tx)

		if err := s.repo.Save(txCtx, category); err != nil {
			return err
		}

		// 换父后递归修正所有后代层级
		if reparented {
			if err := s.rewriteChildLevels(txCtx, category); err != nil {
				return err
			}
		}

		// 停用只级联直接子分类
		if deactivated {
			children, err := s.repo.ListChildren(txCtx, category.CategoryID)
			if err != nil {
				return err
			}
			for _, child := range children {
				if !child.IsActive {
					continue
				}
				child.IsActive = false
				if err := s.repo.Save(txCtx, child); err != nil {
					return err
				}
			}
		}

		event := domain.CategoryUpdatedEvent{
			CategoryID: category.CategoryID,
			Name:       category.Name,
			Slug:       category.Slug,
			ParentID:   category.ParentID,
			Level:      category.Level,
			IsActive:   category.IsActive,
			Timestamp:  time.Now(),
		}
		return s.publisher.PublishInTx(ctx, tx, domain.TopicCategoryUpdated, category.CategoryID, event)
	})
	if err != nil {
		logger.Error(ctx, "failed to update category", "category_id", cmd.CategoryID, "error", err)
		return nil, err
	}

	return toCategoryDTO(category), nil
}

// DeleteCategory 处理删除分类
func (s *CategoryCommandService) DeleteCategory(ctx context.Context, categoryID string) error {
	category, err := s.repo.GetByCategoryID(ctx, categoryID)
	if err != nil {
		return err
	}
	if category == nil {
		return domain.ErrCategoryNotFound
	}

	hasChildren, err := s.repo.HasChildren(ctx, categoryID)
	if err != nil {
		return err
	}
	if hasChildren {
		return domain.ErrCategoryHasChildren
	}

	count, err := s.products.CountByCategory(ctx, categoryID)
	if err != nil {
		return err
	}
	if count > 0 {
		return domain.ErrCategoryHasProducts
	}

	return s.db.Transaction(func(tx *gorm.DB) error {
		txCtx := contextx.WithTx(ctx, tx)

		if err := s.repo.Delete(txCtx, categoryID); err != nil {
			return err
		}

		event := domain.CategoryDeletedEvent{
			CategoryID: categoryID,
			Timestamp:  time.Now(),
		}
		return s.publisher.PublishInTx(ctx, tx, domain.TopicCategoryDeleted, categoryID, event)
	})
}

// isDescendant 判断 candidate 是否位于 ancestorID 的子树中（沿父链向上走）
func (s *CategoryCommandService) isDescendant(ctx context.Context, ancestorID string, candidate *domain.Category) (bool, error) {
	current := candidate
	for i := 0; current != nil && current.ParentID != "" && i <= domain.MaxDepth; i++ {
		if current.ParentID == ancestorID {
			return true, nil
		}
		parent, err := s.repo.GetByCategoryID(ctx, current.ParentID)
		if err != nil {
			return false, err
		}
		current = parent
	}
	return false, nil
}

// rewriteChildLevels 递归重写后代层级为 parent.Level+1
func (s *CategoryCommandService) rewriteChildLevels(ctx context.Context, parent *domain.Category) error {
	children, err := s.repo.ListChildren(ctx, parent.CategoryID)
	if err != nil {
		return err
	}
	for _, child := range children {
		child.Level = parent.Level + 1
		if err := s.repo.Save(ctx, child); err != nil {
			return err
		}
		if err := s.rewriteChildLevels(ctx, child); err != nil {
			return err
		}
	}
	return nil
}

var categorySlugPattern = regexp.MustCompile(`[^a-z0-9]+`)

func slugify(name string) string {
	slug := strings.ToLower(strings.TrimSpace(name))
	slug = categorySlugPattern.ReplaceAllString(slug, "-")
	return strings.Trim(slug, "-")
}
