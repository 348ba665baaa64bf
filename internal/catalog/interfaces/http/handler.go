package http

import (
	"errors"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/wyfcoding/storefront/internal/catalog/application"
	"github.com/wyfcoding/storefront/internal/catalog/domain"
	"github.com/wyfcoding/storefront/pkg/logger"
	"github.com/wyfcoding/storefront/pkg/response"
)

// ProductHandler 商品 HTTP 处理器
type ProductHandler struct {
	app *application.Service
}

// NewProductHandler 创建商品 HTTP 处理器实例
func NewProductHandler(app *application.Service) *ProductHandler {
	return &ProductHandler{app: app}
}

// RegisterRoutes 注册路由
func (h *ProductHandler) RegisterRoutes(router *gin.RouterGroup) {
	api := router.Group("/api/v1/products")
	{
		api.POST("", h.CreateProduct)
		api.GET("", h.ListProducts)
		api.GET("/featured", h.GetFeatured)
		api.GET("/slug/:slug", h.GetProductBySlug)
		api.GET("/sku/:sku", h.GetProductBySKU)
		api.POST("/bulk-status", h.BulkUpdateStatus)
		api.GET("/:id", h.GetProduct)
		api.PATCH("/:id", h.UpdateProduct)
		api.DELETE("/:id", h.DeleteProduct)
		api.POST("/:id/stock", h.AdjustStock)
	}
}

// PriceTierRequest 价格档位请求体
type PriceTierRequest struct {
	MinQuantity int    `json:"min_quantity" binding:"required"`
	Price       string `json:"price" binding:"required"`
}

// CreateProductRequest 创建商品请求
type CreateProductRequest struct {
	SKU               string             `json:"sku" binding:"required"`
	Name              string             `json:"name" binding:"required"`
	Description       string             `json:"description"`
	ShortDescription  string             `json:"short_description"`
	CategoryID        string             `json:"category_id"`
	Manufacturer      string             `json:"manufacturer"`
	Origin            string             `json:"origin"`
	Price             string             `json:"price" binding:"required"`
	PriceTiers        []PriceTierRequest `json:"price_tiers"`
	Stock             int                `json:"stock"`
	LowStockThreshold int                `json:"low_stock_threshold"`
	Unit              string             `json:"unit"`
	MinOrderQuantity  int                `json:"min_order_quantity"`
	Thumbnail         string             `json:"thumbnail"`
	Images            []string           `json:"images"`
	Status            string             `json:"status"`
	IsFeatured        bool               `json:"is_featured"`
}

// CreateProduct 创建商品
func (h *ProductHandler) CreateProduct(c *gin.Context) {
	var req CreateProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	price, err := decimal.NewFromString(req.Price)
	if err != nil {
		response.BadRequest(c, "invalid price")
		return
	}
	tiers, err := parseTiers(req.PriceTiers)
	if err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	cmd := application.CreateProductCommand{
		SKU:               req.SKU,
		Name:              req.Name,
		Description:       req.Description,
		ShortDescription:  req.ShortDescription,
		CategoryID:        req.CategoryID,
		Manufacturer:      req.Manufacturer,
		Origin:            req.Origin,
		Price:             price,
		PriceTiers:        tiers,
		Stock:             req.Stock,
		LowStockThreshold: req.LowStockThreshold,
		Unit:              req.Unit,
		MinOrderQuantity:  req.MinOrderQuantity,
		Thumbnail:         req.Thumbnail,
		Images:            req.Images,
		Status:            req.Status,
		IsFeatured:        req.IsFeatured,
	}

	dto, err := h.app.CreateProduct(c.Request.Context(), cmd)
	if err != nil {
		h.respondError(c, err)
		return
	}
	response.Created(c, dto)
}

// UpdateProductRequest 更新商品请求，缺省字段不修改
type UpdateProductRequest struct {
	Name              *string            `json:"name"`
	Description       *string            `json:"description"`
	ShortDescription  *string            `json:"short_description"`
	CategoryID        *string            `json:"category_id"`
	Manufacturer      *string            `json:"manufacturer"`
	Origin            *string            `json:"origin"`
	Price             *string            `json:"price"`
	PriceTiers        []PriceTierRequest `json:"price_tiers"`
	Stock             *int               `json:"stock"`
	LowStockThreshold *int               `json:"low_stock_threshold"`
	Unit              *string            `json:"unit"`
	MinOrderQuantity  *int               `json:"min_order_quantity"`
	Thumbnail         *string            `json:"thumbnail"`
	Images            []string           `json:"images"`
	Status            *string            `json:"status"`
	IsFeatured        *bool              `json:"is_featured"`
}

// UpdateProduct 更新商品
func (h *ProductHandler) UpdateProduct(c *gin.Context) {
	var req UpdateProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	cmd := application.UpdateProductCommand{
		ProductID:         c.Param("id"),
		Name:              req.Name,
		Description:       req.Description,
		ShortDescription:  req.ShortDescription,
		CategoryID:        req.CategoryID,
		Manufacturer:      req.Manufacturer,
		Origin:            req.Origin,
		Stock:             req.Stock,
		LowStockThreshold: req.LowStockThreshold,
		Unit:              req.Unit,
		MinOrderQuantity:  req.MinOrderQuantity,
		Thumbnail:         req.Thumbnail,
		Status:            req.Status,
		IsFeatured:        req.IsFeatured,
	}
	if req.Price != nil {
		price, err := decimal.NewFromString(*req.Price)
		if err != nil {
			response.BadRequest(c, "invalid price")
			return
		}
		cmd.Price = &price
	}
	if req.PriceTiers != nil {
		tiers, err := parseTiers(req.PriceTiers)
		if err != nil {
			response.BadRequest(c, err.Error())
			return
		}
		cmd.PriceTiers = tiers
		cmd.HasPriceTiers = true
	}
	if req.Images != nil {
		cmd.Images = req.Images
		cmd.HasImages = true
	}

	dto, err := h.app.UpdateProduct(c.Request.Context(), cmd)
	if err != nil {
		h.respondError(c, err)
		return
	}
	response.Success(c, dto)
}

// AdjustStockRequest 库存调整请求
type AdjustStockRequest struct {
	Delta int `json:"delta" binding:"required"`
}

// AdjustStock 调整库存
func (h *ProductHandler) AdjustStock(c *gin.Context) {
	var req AdjustStockRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	dto, err := h.app.AdjustStock(c.Request.Context(), application.AdjustStockCommand{
		ProductID: c.Param("id"),
		Delta:     req.Delta,
	})
	if err != nil {
		h.respondError(c, err)
		return
	}
	response.Success(c, dto)
}

// DeleteProduct 删除商品
func (h *ProductHandler) DeleteProduct(c *gin.Context) {
	if err := h.app.DeleteProduct(c.Request.Context(), c.Param("id")); err != nil {
		h.respondError(c, err)
		return
	}
	response.SuccessWithMessage(c, "product deleted", nil)
}

// BulkUpdateStatusRequest 批量修改状态请求
type BulkUpdateStatusRequest struct {
	ProductIDs []string `json:"product_ids" binding:"required"`
	Status     string   `json:"status" binding:"required"`
}

// BulkUpdateStatus 批量修改商品状态
func (h *ProductHandler) BulkUpdateStatus(c *gin.Context) {
	var req BulkUpdateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	affected, err := h.app.BulkUpdateStatus(c.Request.Context(), application.BulkUpdateStatusCommand{
		ProductIDs: req.ProductIDs,
		Status:     req.Status,
	})
	if err != nil {
		h.respondError(c, err)
		return
	}
	response.Success(c, gin.H{"updated": affected})
}

// GetProduct 获取商品详情
func (h *ProductHandler) GetProduct(c *gin.Context) {
	dto, err := h.app.GetProduct(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	response.Success(c, dto)
}

// GetProductBySlug 根据 slug 获取商品
func (h *ProductHandler) GetProductBySlug(c *gin.Context) {
	dto, err := h.app.GetProductBySlug(c.Request.Context(), c.Param("slug"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	response.Success(c, dto)
}

// GetProductBySKU 根据 SKU 获取商品
func (h *ProductHandler) GetProductBySKU(c *gin.Context) {
	dto, err := h.app.GetProductBySKU(c.Request.Context(), c.Param("sku"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	response.Success(c, dto)
}

// ListProducts 分页列出商品
func (h *ProductHandler) ListProducts(c *gin.Context) {
	var params struct {
		CategoryID string `form:"category_id"`
		Status     string `form:"status"`
		Featured   bool   `form:"featured"`
		Keyword    string `form:"keyword"`
		Page       int    `form:"page,default=1"`
		PageSize   int    `form:"page_size,default=20"`
	}
	if err := c.ShouldBindQuery(&params); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	result, err := h.app.ListProducts(c.Request.Context(), domain.ListProductsQuery{
		CategoryID:   params.CategoryID,
		Status:       domain.ProductStatus(params.Status),
		FeaturedOnly: params.Featured,
		Keyword:      params.Keyword,
		Page:         params.Page,
		PageSize:     params.PageSize,
	})
	if err != nil {
		h.respondError(c, err)
		return
	}
	response.Success(c, result)
}

// GetFeatured 获取推荐商品
func (h *ProductHandler) GetFeatured(c *gin.Context) {
	var params struct {
		Limit int `form:"limit,default=10"`
	}
	if err := c.ShouldBindQuery(&params); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	dtos, err := h.app.GetFeaturedProducts(c.Request.Context(), params.Limit)
	if err != nil {
		h.respondError(c, err)
		return
	}
	response.Success(c, dtos)
}

// respondError 将领域错误映射为 HTTP 状态码
func (h *ProductHandler) respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, domain.ErrProductNotFound), errors.Is(err, domain.ErrCategoryNotFound):
		response.NotFound(c, err.Error())
	case errors.Is(err, domain.ErrSKUTaken),
		errors.Is(err, domain.ErrSlugTaken),
		errors.Is(err, domain.ErrInvalidPriceTiers),
		errors.Is(err, domain.ErrInvalidStatus),
		errors.Is(err, domain.ErrInvalidInput),
		errors.Is(err, domain.ErrInsufficientStock):
		response.BadRequest(c, err.Error())
	default:
		logger.Error(c.Request.Context(), "catalog request failed", "path", c.FullPath(), "error", err)
		response.InternalError(c, "internal server error")
	}
}

func parseTiers(reqs []PriceTierRequest) ([]application.PriceTierInput, error) {
	tiers := make([]application.PriceTierInput, 0, len(reqs))
	for _, t := range reqs {
		price, err := decimal.NewFromString(t.Price)
		if err != nil {
			return nil, errors.New("invalid tier price: " + t.Price)
		}
		tiers = append(tiers, application.PriceTierInput{MinQuantity: t.MinQuantity, Price: price})
	}
	return tiers, nil
}
