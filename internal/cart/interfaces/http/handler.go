package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/wyfcoding/storefront/internal/cart/application"
	"github.com/wyfcoding/storefront/internal/cart/domain"
	"github.com/wyfcoding/storefront/pkg/logger"
	"github.com/wyfcoding/storefront/pkg/response"
)

// CartHandler 购物车 HTTP 处理器
type CartHandler struct {
	app *application.Service
}

// NewCartHandler 创建购物车 HTTP 处理器实例
func NewCartHandler(app *application.Service) *CartHandler {
	return &CartHandler{app: app}
}

// RegisterRoutes 注册路由
func (h *CartHandler) RegisterRoutes(router *gin.RouterGroup) {
	api := router.Group("/api/v1/cart")
	{
		api.GET("", h.GetCart)
		api.POST("", h.AddItem)
		api.DELETE("", h.ClearCart)
		api.GET("/stats", h.GetCartStats)
		api.PATCH("/items/:itemId", h.UpdateItemQuantity)
		api.DELETE("/items/:itemId", h.RemoveItem)
		api.POST("/merge", h.MergeCarts)
		api.POST("/sync", h.SyncCart)
		api.POST("/bulk-add", h.AddItems)
		api.DELETE("/bulk-remove", h.RemoveItems)
	}
}

// userID 从请求头提取用户标识，缺失返回 401
func (h *CartHandler) userID(c *gin.Context) (string, bool) {
	userID := c.GetHeader("X-User-ID")
	if userID == "" {
		response.ErrorWithStatus(c, http.StatusUnauthorized, "missing X-User-ID header")
		return "", false
	}
	return userID, true
}

// GetCart 查询当前用户购物车
func (h *CartHandler) GetCart(c *gin.Context) {
	userID, ok := h.userID(c)
	if !ok {
		return
	}

	cart, err := h.app.GetCart(c.Request.Context(), userID)
	if err != nil {
		h.respondError(c, err)
		return
	}
	response.Success(c, cart)
}

// AddItemRequest 加购请求
type AddItemRequest struct {
	ProductID  string `json:"product_id" binding:"required"`
	VariantSKU string `json:"variant_sku"`
	Quantity   int    `json:"quantity" binding:"required"`
}

// AddItem 添加商品到购物车
func (h *CartHandler) AddItem(c *gin.Context) {
	userID, ok := h.userID(c)
	if !ok {
		return
	}

	var req AddItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	err := h.app.AddItem(c.Request.Context(), application.AddItemCommand{
		UserID:     userID,
		ProductID:  req.ProductID,
		VariantSKU: req.VariantSKU,
		Quantity:   req.Quantity,
	})
	if err != nil {
		h.respondError(c, err)
		return
	}

	cart, err := h.app.GetCart(c.Request.Context(), userID)
	if err != nil {
		h.respondError(c, err)
		return
	}
	response.Success(c, cart)
}

// UpdateItemQuantityRequest 修改数量请求
type UpdateItemQuantityRequest struct {
	Quantity int `json:"quantity" binding:"required"`
}

// UpdateItemQuantity 修改行项目数量
func (h *CartHandler) UpdateItemQuantity(c *gin.Context) {
	userID, ok := h.userID(c)
	if !ok {
		return
	}

	var req UpdateItemQuantityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	err := h.app.UpdateItemQuantity(c.Request.Context(), application.UpdateItemQuantityCommand{
		UserID:   userID,
		ItemID:   c.Param("itemId"),
		Quantity: req.Quantity,
	})
	if err != nil {
		h.respondError(c, err)
		return
	}

	cart, err := h.app.GetCart(c.Request.Context(), userID)
	if err != nil {
		h.respondError(c, err)
		return
	}
	response.Success(c, cart)
}

// RemoveItem 移除行项目
func (h *CartHandler) RemoveItem(c *gin.Context) {
	userID, ok := h.userID(c)
	if !ok {
		return
	}

	err := h.app.RemoveItem(c.Request.Context(), application.RemoveItemCommand{
		UserID: userID,
		ItemID: c.Param("itemId"),
	})
	if err != nil {
		h.respondError(c, err)
		return
	}

	cart, err := h.app.GetCart(c.Request.Context(), userID)
	if err != nil {
		h.respondError(c, err)
		return
	}
	response.Success(c, cart)
}

// ClearCart 清空购物车
func (h *CartHandler) ClearCart(c *gin.Context) {
	userID, ok := h.userID(c)
	if !ok {
		return
	}

	if err := h.app.ClearCart(c.Request.Context(), userID); err != nil {
		h.respondError(c, err)
		return
	}
	response.SuccessWithMessage(c, "cart cleared", nil)
}

// MergeCartsRequest 游客购物车合并请求
type MergeCartsRequest struct {
	Items []GuestItemRequest `json:"items" binding:"required"`
}

// GuestItemRequest 游客购物车行项目
type GuestItemRequest struct {
	ProductID  string `json:"product_id" binding:"required"`
	VariantSKU string `json:"variant_sku"`
	Quantity   int    `json:"quantity" binding:"required"`
}

// MergeCarts 合并游客购物车并返回对账后的购物车
func (h *CartHandler) MergeCarts(c *gin.Context) {
	userID, ok := h.userID(c)
	if !ok {
		return
	}

	var req MergeCartsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	items := make([]application.GuestItemInput, 0, len(req.Items))
	for _, in := range req.Items {
		items = append(items, application.GuestItemInput{
			ProductID:  in.ProductID,
			VariantSKU: in.VariantSKU,
			Quantity:   in.Quantity,
		})
	}

	cart, err := h.app.MergeCarts(c.Request.Context(), application.MergeCartsCommand{
		UserID:     userID,
		GuestItems: items,
	})
	if err != nil {
		h.respondError(c, err)
		return
	}
	response.Success(c, cart)
}

// SyncCart 与商品目录对账
func (h *CartHandler) SyncCart(c *gin.Context) {
	userID, ok := h.userID(c)
	if !ok {
		return
	}

	cart, err := h.app.SyncCart(c.Request.Context(), userID)
	if err != nil {
		h.respondError(c, err)
		return
	}
	response.Success(c, cart)
}

// AddItemsRequest 批量加购请求
type AddItemsRequest struct {
	Items []GuestItemRequest `json:"items" binding:"required"`
}

// AddItems 批量加购，失败行跳过，返回对账后的购物车
func (h *CartHandler) AddItems(c *gin.Context) {
	userID, ok := h.userID(c)
	if !ok {
		return
	}

	var req AddItemsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	items := make([]application.GuestItemInput, 0, len(req.Items))
	for _, in := range req.Items {
		items = append(items, application.GuestItemInput{
			ProductID:  in.ProductID,
			VariantSKU: in.VariantSKU,
			Quantity:   in.Quantity,
		})
	}

	if err := h.app.AddItems(c.Request.Context(), userID, items); err != nil {
		h.respondError(c, err)
		return
	}

	cart, err := h.app.GetCart(c.Request.Context(), userID)
	if err != nil {
		h.respondError(c, err)
		return
	}
	response.Success(c, cart)
}

// RemoveItemsRequest 批量移除请求
type RemoveItemsRequest struct {
	ItemIDs []string `json:"item_ids" binding:"required"`
}

// RemoveItems 批量移除行项目
func (h *CartHandler) RemoveItems(c *gin.Context) {
	userID, ok := h.userID(c)
	if !ok {
		return
	}

	var req RemoveItemsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	if err := h.app.RemoveItems(c.Request.Context(), userID, req.ItemIDs); err != nil {
		h.respondError(c, err)
		return
	}

	cart, err := h.app.GetCart(c.Request.Context(), userID)
	if err != nil {
		h.respondError(c, err)
		return
	}
	response.Success(c, cart)
}

// GetCartStats 查询购物车统计信息
func (h *CartHandler) GetCartStats(c *gin.Context) {
	userID, ok := h.userID(c)
	if !ok {
		return
	}

	stats, err := h.app.GetCartStats(c.Request.Context(), userID)
	if err != nil {
		h.respondError(c, err)
		return
	}
	response.Success(c, stats)
}

// respondError 将领域错误映射为 HTTP 状态码
func (h *CartHandler) respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, domain.ErrCartNotFound),
		errors.Is(err, domain.ErrItemNotFound),
		errors.Is(err, domain.ErrProductNotFound):
		response.NotFound(c, err.Error())
	case errors.Is(err, domain.ErrInvalidQuantity),
		errors.Is(err, domain.ErrBelowMinOrderQty),
		errors.Is(err, domain.ErrProductUnavailable),
		errors.Is(err, domain.ErrInsufficientStock):
		response.BadRequest(c, err.Error())
	case errors.Is(err, domain.ErrVersionConflict):
		response.ErrorWithStatus(c, http.StatusConflict, err.Error())
	default:
		logger.Error(c.Request.Context(), "cart request failed", "path", c.FullPath(), "error", err)
		response.InternalError(c, "internal server error")
	}
}
