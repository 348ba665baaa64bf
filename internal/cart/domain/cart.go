package domain

import (
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// ProductSnapshot 加入购物车时的商品快照，价格在加入/同步时固定
type ProductSnapshot struct {
	ProductName    string          `gorm:"column:product_name;type:varchar(255)" json:"product_name"`
	ProductSlug    string          `gorm:"column:product_slug;type:varchar(255)" json:"product_slug"`
	ProductImage   string          `gorm:"column:product_image;type:varchar(500)" json:"product_image"`
	Price          decimal.Decimal `gorm:"column:price;type:decimal(12,2)" json:"price"`
	InStock        bool            `gorm:"column:in_stock" json:"in_stock"`
	AvailableStock int             `gorm:"column:available_stock" json:"available_stock"`
}

// CartItem 购物车行项目
type CartItem struct {
	gorm.Model
	CartID     uint            `gorm:"column:cart_id;index;not null"`
	ItemID     string          `gorm:"column:item_id;type:varchar(36);uniqueIndex;not null"`
	ProductID  string          `gorm:"column:product_id;type:varchar(36);index;not null"`
	VariantSKU string          `gorm:"column:variant_sku;type:varchar(64)"`
	Quantity   int             `gorm:"column:quantity;not null"`
	Snapshot   ProductSnapshot `gorm:"embedded"`
}

func (CartItem) TableName() string { return "cart_items" }

// LineTotal 行小计
func (i *CartItem) LineTotal() decimal.Decimal {
	return i.Snapshot.Price.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

// Cart 购物车聚合根，每用户一行，version 用于乐观锁
type Cart struct {
	gorm.Model
	UserID     string          `gorm:"column:user_id;type:varchar(36);uniqueIndex;not null"`
	Version    int64           `gorm:"column:version;not null;default:1"`
	TotalItems int             `gorm:"column:total_items;not null;default:0"`
	Subtotal   decimal.Decimal `gorm:"column:subtotal;type:decimal(14,2);not null;default:0"`
	Items      []CartItem      `gorm:"foreignKey:CartID"`
}

func (Cart) TableName() string { return "carts" }

// Recalculate 从行项目重算 total_items 与 subtotal，每次保存前必须调用
func (c *Cart) Recalculate() {
	total := 0
	subtotal := decimal.Zero
	for i := range c.Items {
		total += c.Items[i].Quantity
		subtotal = subtotal.Add(c.Items[i].LineTotal())
	}
	c.TotalItems = total
	c.Subtotal = subtotal
}

// FindItem 按商品与变体查找行项目
func (c *Cart) FindItem(productID, variantSKU string) *CartItem {
	for i := range c.Items {
		if c.Items[i].ProductID == productID && c.Items[i].VariantSKU == variantSKU {
			return &c.Items[i]
		}
	}
	return nil
}

// FindItemByID 按行项目业务主键查找
func (c *Cart) FindItemByID(itemID string) *CartItem {
	for i := range c.Items {
		if c.Items[i].ItemID == itemID {
			return &c.Items[i]
		}
	}
	return nil
}

// RemoveItemByID 按行项目业务主键移除，返回是否命中
func (c *Cart) RemoveItemByID(itemID string) bool {
	for i := range c.Items {
		if c.Items[i].ItemID == itemID {
			c.Items = append(c.Items[:i], c.Items[i+1:]...)
			return true
		}
	}
	return false
}

// RemoveItemsByIDs 批量移除行项目，返回移除数量
func (c *Cart) RemoveItemsByIDs(itemIDs []string) int {
	idSet := make(map[string]struct{}, len(itemIDs))
	for _, id := range itemIDs {
		idSet[id] = struct{}{}
	}
	kept := c.Items[:0]
	removed := 0
	for _, item := range c.Items {
		if _, ok := idSet[item.ItemID]; ok {
			removed++
			continue
		}
		kept = append(kept, item)
	}
	c.Items = kept
	return removed
}

// IsEmpty 是否为空购物车
func (c *Cart) IsEmpty() bool {
	return len(c.Items) == 0
}
