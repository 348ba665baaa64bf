package application

import (
	"github.com/wyfcoding/storefront/internal/cart/domain"
)

// CartItemDTO 购物车行项目，附带读时校验结果
type CartItemDTO struct {
	ItemID         string `json:"item_id"`
	ProductID      string `json:"product_id"`
	VariantSKU     string `json:"variant_sku,omitempty"`
	Quantity       int    `json:"quantity"`
	ProductName    string `json:"product_name"`
	ProductSlug    string `json:"product_slug"`
	ProductImage   string `json:"product_image,omitempty"`
	Price          string `json:"price"`
	LineTotal      string `json:"line_total"`
	InStock        bool   `json:"in_stock"`
	AvailableStock int    `json:"available_stock"`
	PriceChanged   bool   `json:"price_changed,omitempty"`
	OldPrice       string `json:"old_price,omitempty"`
	CurrentPrice   string `json:"current_price,omitempty"`
	Error          string `json:"error,omitempty"`
}

// CartDTO 购物车数据传输对象
type CartDTO struct {
	UserID     string         `json:"user_id"`
	TotalItems int            `json:"total_items"`
	Subtotal   string         `json:"subtotal"`
	Items      []*CartItemDTO `json:"items"`
	UpdatedAt  int64          `json:"updated_at"`
}

// CartStatsDTO 购物车统计信息
type CartStatsDTO struct {
	TotalItems      int    `json:"total_items"`
	Subtotal        string `json:"subtotal"`
	LineCount       int    `json:"line_count"`
	IsEmpty         bool   `json:"is_empty"`
	HasOutOfStock   bool   `json:"has_out_of_stock"`
	OutOfStockCount int    `json:"out_of_stock_count"`
}

// GuestItemInput 游客购物车行项目输入
type GuestItemInput struct {
	ProductID  string
	VariantSKU string
	Quantity   int
}

// toCartDTO 不做读时校验的直接映射
func toCartDTO(cart *domain.Cart) *CartDTO {
	items := make([]*CartItemDTO, 0, len(cart.Items))
	for i := range cart.Items {
		item := &cart.Items[i]
		items = append(items, &CartItemDTO{
			ItemID:         item.ItemID,
			ProductID:      item.ProductID,
			VariantSKU:     item.VariantSKU,
			Quantity:       item.Quantity,
			ProductName:    item.Snapshot.ProductName,
			ProductSlug:    item.Snapshot.ProductSlug,
			ProductImage:   item.Snapshot.ProductImage,
			Price:          item.Snapshot.Price.String(),
			LineTotal:      item.LineTotal().String(),
			InStock:        item.Snapshot.InStock,
			AvailableStock: item.Snapshot.AvailableStock,
		})
	}
	return &CartDTO{
		UserID:     cart.UserID,
		TotalItems: cart.TotalItems,
		Subtotal:   cart.Subtotal.String(),
		Items:      items,
		UpdatedAt:  cart.UpdatedAt.Unix(),
	}
}
