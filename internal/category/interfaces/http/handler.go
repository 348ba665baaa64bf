package http

import (
	"errors"

	"github.com/gin-gonic/gin"
	"github.com/wyfcoding/storefront/internal/category/application"
	"github.com/wyfcoding/storefront/internal/category/domain"
	"github.com/wyfcoding/storefront/pkg/logger"
	"github.com/wyfcoding/storefront/pkg/response"
)

// CategoryHandler 分类 HTTP 处理器
type CategoryHandler struct {
	app *application.Service
}

// NewCategoryHandler 创建分类 HTTP 处理器实例
func NewCategoryHandler(app *application.Service) *CategoryHandler {
	return &CategoryHandler{app: app}
}

// RegisterRoutes 注册路由
func (h *CategoryHandler) RegisterRoutes(router *gin.RouterGroup) {
	api := router.Group("/api/v1/categories")
	{
		api.POST("", h.CreateCategory)
		api.GET("", h.ListCategories)
		api.GET("/tree", h.GetTree)
		api.GET("/slug/:slug", h.GetCategoryBySlug)
		api.GET("/:id", h.GetCategory)
		api.GET("/:id/breadcrumb", h.GetBreadcrumb)
		api.PATCH("/:id", h.UpdateCategory)
		api.DELETE("/:id", h.DeleteCategory)
	}
}

// CreateCategoryRequest 创建分类请求
type CreateCategoryRequest struct {
	Name            string `json:"name" binding:"required"`
	Slug            string `json:"slug"`
	Description     string `json:"description"`
	ParentID        string `json:"parent_id"`
	SortOrder       int    `json:"sort_order"`
	Image           string `json:"image"`
	MetaTitle       string `json:"meta_title"`
	MetaDescription string `json:"meta_description"`
	MetaKeywords    string `json:"meta_keywords"`
}

// CreateCategory 创建分类
func (h *CategoryHandler) CreateCategory(c *gin.Context) {
	var req CreateCategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	dto, err := h.app.CreateCategory(c.Request.Context(), application.CreateCategoryCommand{
		Name:            req.Name,
		Slug:            req.Slug,
		Description:     req.Description,
		ParentID:        req.ParentID,
		SortOrder:       req.SortOrder,
		Image:           req.Image,
		MetaTitle:       req.MetaTitle,
		MetaDescription: req.MetaDescription,
		MetaKeywords:    req.MetaKeywords,
	})
	if err != nil {
		h.respondError(c, err)
		return
	}
	response.Created(c, dto)
}

// UpdateCategoryRequest 更新分类请求，缺省字段不修改
type UpdateCategoryRequest struct {
	Name            *string `json:"name"`
	Slug            *string `json:"slug"`
	Description     *string `json:"description"`
	ParentID        *string `json:"parent_id"`
	IsActive        *bool   `json:"is_active"`
	SortOrder       *int    `json:"sort_order"`
	Image           *string `json:"image"`
	MetaTitle       *string `json:"meta_title"`
	MetaDescription *string `json:"meta_description"`
	MetaKeywords    *string `json:"meta_keywords"`
}

// UpdateCategory 更新分类
func (h *CategoryHandler) UpdateCategory(c *gin.Context) {
	var req UpdateCategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	dto, err := h.app.UpdateCategory(c.Request.Context(), application.UpdateCategoryCommand{
		CategoryID:      c.Param("id"),
		Name:            req.Name,
		Slug:            req.Slug,
		Description:     req.Description,
		ParentID:        req.ParentID,
		IsActive:        req.IsActive,
		SortOrder:       req.SortOrder,
		Image:           req.Image,
		MetaTitle:       req.MetaTitle,
		MetaDescription: req.MetaDescription,
		MetaKeywords:    req.MetaKeywords,
	})
	if err != nil {
		h.respondError(c, err)
		return
	}
	response.Success(c, dto)
}

// DeleteCategory 删除分类
func (h *CategoryHandler) DeleteCategory(c *gin.Context) {
	if err := h.app.DeleteCategory(c.Request.Context(), c.Param("id")); err != nil {
		h.respondError(c, err)
		return
	}
	response.SuccessWithMessage(c, "category deleted", nil)
}

// GetCategory 获取分类详情
func (h *CategoryHandler) GetCategory(c *gin.Context) {
	dto, err := h.app.GetCategory(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	response.Success(c, dto)
}

// GetCategoryBySlug 根据 slug 获取分类
func (h *CategoryHandler) GetCategoryBySlug(c *gin.Context) {
	dto, err := h.app.GetCategoryBySlug(c.Request.Context(), c.Param("slug"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	response.Success(c, dto)
}

// GetTree 获取分类树
func (h *CategoryHandler) GetTree(c *gin.Context) {
	activeOnly := c.DefaultQuery("active_only", "true") == "true"

	tree, err := h.app.GetTree(c.Request.Context(), activeOnly)
	if err != nil {
		h.respondError(c, err)
		return
	}
	response.Success(c, tree)
}

// ListCategories 分页列出分类
func (h *CategoryHandler) ListCategories(c *gin.Context) {
	var params struct {
		ParentID   *string `form:"parent_id"`
		ActiveOnly bool    `form:"active_only"`
		Page       int     `form:"page,default=1"`
		PageSize   int     `form:"page_size,default=50"`
	}
	if err := c.ShouldBindQuery(&params); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	result, err := h.app.ListCategories(c.Request.Context(), domain.ListCategoriesQuery{
		ParentID:   params.ParentID,
		ActiveOnly: params.ActiveOnly,
		Page:       params.Page,
		PageSize:   params.PageSize,
	})
	if err != nil {
		h.respondError(c, err)
		return
	}
	response.Success(c, result)
}

// GetBreadcrumb 获取分类面包屑
func (h *CategoryHandler) GetBreadcrumb(c *gin.Context) {
	path, err := h.app.GetBreadcrumb(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	response.Success(c, path)
}

// respondError 将领域错误映射为 HTTP 状态码
func (h *CategoryHandler) respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, domain.ErrCategoryNotFound):
		response.NotFound(c, err.Error())
	case errors.Is(err, domain.ErrSlugTaken),
		errors.Is(err, domain.ErrMaxDepthExceeded),
		errors.Is(err, domain.ErrCircularParent),
		errors.Is(err, domain.ErrCategoryHasChildren),
		errors.Is(err, domain.ErrCategoryHasProducts),
		errors.Is(err, domain.ErrInvalidInput):
		response.BadRequest(c, err.Error())
	default:
		logger.Error(c.Request.Context(), "category request failed", "path", c.FullPath(), "error", err)
		response.InternalError(c, "internal server error")
	}
}
