package application

import "github.com/wyfcoding/storefront/internal/category/domain"

// CategoryDTO 分类数据传输对象
type CategoryDTO struct {
	CategoryID      string `json:"category_id"`
	Name            string `json:"name"`
	Slug            string `json:"slug"`
	Description     string `json:"description,omitempty"`
	ParentID        string `json:"parent_id,omitempty"`
	Level           int    `json:"level"`
	IsActive        bool   `json:"is_active"`
	SortOrder       int    `json:"sort_order"`
	Image           string `json:"image,omitempty"`
	MetaTitle       string `json:"meta_title,omitempty"`
	MetaDescription string `json:"meta_description,omitempty"`
	MetaKeywords    string `json:"meta_keywords,omitempty"`
	CreatedAt       int64  `json:"created_at"`
	UpdatedAt       int64  `json:"updated_at"`
}

// CategoryTreeDTO 分类树节点
type CategoryTreeDTO struct {
	CategoryDTO
	ChildCount int                `json:"child_count"`
	Children   []*CategoryTreeDTO `json:"children"`
}

// CategoryListDTO 分类分页结果
type CategoryListDTO struct {
	Items    []*CategoryDTO `json:"items"`
	Total    int64          `json:"total"`
	Page     int            `json:"page"`
	PageSize int            `json:"page_size"`
}

func toCategoryDTO(c *domain.Category) *CategoryDTO {
	return &CategoryDTO{
		CategoryID:      c.CategoryID,
		Name:            c.Name,
		Slug:            c.Slug,
		Description:     c.Description,
		ParentID:        c.ParentID,
		Level:           c.Level,
		IsActive:        c.IsActive,
		SortOrder:       c.SortOrder,
		Image:           c.Image,
		MetaTitle:       c.MetaTitle,
		MetaDescription: c.MetaDescription,
		MetaKeywords:    c.MetaKeywords,
		CreatedAt:       c.CreatedAt.Unix(),
		UpdatedAt:       c.UpdatedAt.Unix(),
	}
}

func toCategoryDTOs(categories []*domain.Category) []*CategoryDTO {
	dtos := make([]*CategoryDTO, len(categories))
	for i, c := range categories {
		dtos[i] = toCategoryDTO(c)
	}
	return dtos
}

func toTreeDTO(node *domain.TreeNode) *CategoryTreeDTO {
	dto := &CategoryTreeDTO{
		CategoryDTO: *toCategoryDTO(node.Category),
		ChildCount:  node.ChildCount,
		Children:    make([]*CategoryTreeDTO, 0, len(node.Children)),
	}
	for _, child := range node.Children {
		dto.Children = append(dto.Children, toTreeDTO(child))
	}
	return dto
}
