package domain

import "time"

// 购物车事件主题
const (
	TopicCartItemAdded = "cart.item.added"
	TopicCartUpdated   = "cart.updated"
	TopicCartMerged    = "cart.merged"
	TopicCartCleared   = "cart.cleared"
)

// CartItemAddedEvent 商品加入购物车事件
type CartItemAddedEvent struct {
	UserID     string    `json:"user_id"`
	ItemID     string    `json:"item_id"`
	ProductID  string    `json:"product_id"`
	VariantSKU string    `json:"variant_sku,omitempty"`
	Quantity   int       `json:"quantity"`
	Price      string    `json:"price"`
	Timestamp  time.Time `json:"timestamp"`
}

// CartUpdatedEvent 购物车变更事件
type CartUpdatedEvent struct {
	UserID     string    `json:"user_id"`
	TotalItems int       `json:"total_items"`
	Subtotal   string    `json:"subtotal"`
	Timestamp  time.Time `json:"timestamp"`
}

// CartMergedEvent 游客购物车合并事件
type CartMergedEvent struct {
	UserID      string    `json:"user_id"`
	MergedLines int       `json:"merged_lines"`
	Timestamp   time.Time `json:"timestamp"`
}

// CartClearedEvent 购物车清空事件
type CartClearedEvent struct {
	UserID    string    `json:"user_id"`
	Timestamp time.Time `json:"timestamp"`
}
