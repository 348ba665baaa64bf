package domain

import "errors"

var (
	// ErrCartNotFound 购物车不存在
	ErrCartNotFound = errors.New("cart not found")
	// ErrItemNotFound 行项目不存在
	ErrItemNotFound = errors.New("cart item not found")
	// ErrProductNotFound 商品不存在
	ErrProductNotFound = errors.New("product not found")
	// ErrProductUnavailable 商品未上架
	ErrProductUnavailable = errors.New("product unavailable")
	// ErrInsufficientStock 库存不足
	ErrInsufficientStock = errors.New("insufficient stock")
	// ErrBelowMinOrderQty 低于最小起订量
	ErrBelowMinOrderQty = errors.New("quantity below minimum order quantity")
	// ErrInvalidQuantity 数量非法
	ErrInvalidQuantity = errors.New("invalid quantity")
	// ErrVersionConflict 乐观锁冲突，可重试
	ErrVersionConflict = errors.New("cart version conflict")
)
