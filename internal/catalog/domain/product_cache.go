package domain

import "context"

// ProductCache 商品读缓存端口，未命中返回 nil, nil
type ProductCache interface {
	Get(ctx context.Context, productID string) (*Product, error)
	Set(ctx context.Context, product *Product) error
	Invalidate(ctx context.Context, productID string) error
}
