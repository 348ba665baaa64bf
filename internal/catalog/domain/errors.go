package domain

import "errors"

var (
	// ErrProductNotFound 商品不存在
	ErrProductNotFound = errors.New("product not found")
	// ErrProductUnavailable 商品未上架
	ErrProductUnavailable = errors.New("product unavailable")
	// ErrInsufficientStock 库存不足
	ErrInsufficientStock = errors.New("insufficient stock")
	// ErrSKUTaken SKU 已被占用
	ErrSKUTaken = errors.New("sku already exists")
	// ErrSlugTaken slug 已被占用
	ErrSlugTaken = errors.New("slug already exists")
	// ErrInvalidPriceTiers 价格档位非法
	ErrInvalidPriceTiers = errors.New("invalid price tiers")
	// ErrCategoryNotFound 所属分类不存在
	ErrCategoryNotFound = errors.New("category not found")
	// ErrInvalidStatus 非法状态值
	ErrInvalidStatus = errors.New("invalid product status")
	// ErrInvalidInput 输入参数非法
	ErrInvalidInput = errors.New("invalid input")
)
