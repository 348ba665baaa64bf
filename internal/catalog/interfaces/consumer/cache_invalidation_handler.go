package consumer

import (
	"context"
	"log/slog"

	"github.com/wyfcoding/storefront/internal/catalog/domain"
	"github.com/wyfcoding/storefront/pkg/mq"
)

// CacheInvalidationHandler 消费商品事件并使读缓存失效
type CacheInvalidationHandler struct {
	cache  domain.ProductCache
	logger *slog.Logger
}

// NewCacheInvalidationHandler 创建缓存失效处理器
func NewCacheInvalidationHandler(cache domain.ProductCache, logger *slog.Logger) *CacheInvalidationHandler {
	return &CacheInvalidationHandler{cache: cache, logger: logger}
}

// Handle 处理单条商品事件消息
func (h *CacheInvalidationHandler) Handle(ctx context.Context, msg *mq.Message) error {
	switch msg.Topic {
	case domain.TopicProductUpdated:
		var event domain.ProductUpdatedEvent
		if err := msg.UnmarshalPayload(&event); err != nil {
			h.logger.ErrorContext(ctx, "failed to unmarshal product updated event", "error", err)
			return err
		}
		return h.invalidate(ctx, event.ProductID)
	case domain.TopicProductStockChanged:
		var event domain.ProductStockChangedEvent
		if err := msg.UnmarshalPayload(&event); err != nil {
			h.logger.ErrorContext(ctx, "failed to unmarshal stock changed event", "error", err)
			return err
		}
		return h.invalidate(ctx, event.ProductID)
	case domain.TopicProductDeleted:
		var event domain.ProductDeletedEvent
		if err := msg.UnmarshalPayload(&event); err != nil {
			h.logger.ErrorContext(ctx, "failed to unmarshal product deleted event", "error", err)
			return err
		}
		return h.invalidate(ctx, event.ProductID)
	default:
		return nil
	}
}

func (h *CacheInvalidationHandler) invalidate(ctx context.Context, productID string) error {
	if err := h.cache.Invalidate(ctx, productID); err != nil {
		h.logger.ErrorContext(ctx, "failed to invalidate product cache", "product_id", productID, "error", err)
		return err
	}
	return nil
}
