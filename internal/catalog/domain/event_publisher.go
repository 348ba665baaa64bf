package domain

import "context"

// EventPublisher 商品事件发布接口
type EventPublisher interface {
	// Publish 发布一个普通事件（非事务内）
	Publish(ctx context.Context, topic string, key string, event any) error
	// PublishInTx 在事务中发布事件（Outbox 模式）
	PublishInTx(ctx context.Context, tx any, topic string, key string, event any) error
}

// CategoryChecker 分类存在性校验端口，由分类上下文提供实现
type CategoryChecker interface {
	Exists(ctx context.Context, categoryID string) (bool, error)
}
