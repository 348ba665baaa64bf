package domain

import "context"

// CartRepository 购物车仓储接口
type CartRepository interface {
	// GetByUserID 加载用户购物车（含行项目），未找到返回 nil, nil
	GetByUserID(ctx context.Context, userID string) (*Cart, error)
	// Save 保存购物车。已存在的购物车按 version 条件更新，
	// 版本过期返回 ErrVersionConflict
	Save(ctx context.Context, cart *Cart) error
	Delete(ctx context.Context, userID string) error
}

// EventPublisher 购物车事件发布接口
type EventPublisher interface {
	Publish(ctx context.Context, topic string, key string, event any) error
	PublishInTx(ctx context.Context, tx any, topic string, key string, event any) error
}
