package domain

import "errors"

var (
	// ErrCategoryNotFound 分类不存在
	ErrCategoryNotFound = errors.New("category not found")
	// ErrSlugTaken slug 已被占用
	ErrSlugTaken = errors.New("category slug already exists")
	// ErrMaxDepthExceeded 超出最大层级
	ErrMaxDepthExceeded = errors.New("maximum category depth exceeded")
	// ErrCircularParent 父级指向自身或后代
	ErrCircularParent = errors.New("circular parent reference")
	// ErrCategoryHasChildren 存在子分类，不可删除
	ErrCategoryHasChildren = errors.New("category has child categories")
	// ErrCategoryHasProducts 分类下仍有商品，不可删除
	ErrCategoryHasProducts = errors.New("category has products")
	// ErrInvalidInput 输入参数非法
	ErrInvalidInput = errors.New("invalid input")
)
