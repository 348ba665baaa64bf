package domain

import (
	"strings"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// ProductStatus 商品状态
type ProductStatus string

const (
	// StatusDraft 草稿，不可购买
	StatusDraft ProductStatus = "draft"
	// StatusActive 上架中
	StatusActive ProductStatus = "active"
	// StatusOutOfStock 缺货
	StatusOutOfStock ProductStatus = "out_of_stock"
	// StatusDiscontinued 已下架
	StatusDiscontinued ProductStatus = "discontinued"
)

// IsValid 校验状态枚举值
func (s ProductStatus) IsValid() bool {
	switch s {
	case StatusDraft, StatusActive, StatusOutOfStock, StatusDiscontinued:
		return true
	}
	return false
}

// PriceTier 批量价格档位，min_quantity 必须严格递增
type PriceTier struct {
	MinQuantity int             `json:"min_quantity"`
	Price       decimal.Decimal `json:"price"`
}

// Product 商品聚合根
type Product struct {
	gorm.Model
	ProductID        string          `gorm:"column:product_id;type:varchar(36);uniqueIndex;not null"`
	SKU              string          `gorm:"column:sku;type:varchar(64);uniqueIndex;not null"`
	Slug             string          `gorm:"column:slug;type:varchar(255);uniqueIndex;not null"`
	Name             string          `gorm:"column:name;type:varchar(255);not null"`
	Description      string          `gorm:"column:description;type:text"`
	ShortDescription string          `gorm:"column:short_description;type:varchar(500)"`
	CategoryID       string          `gorm:"column:category_id;type:varchar(36);index"`
	Manufacturer     string          `gorm:"column:manufacturer;type:varchar(255)"`
	Origin           string          `gorm:"column:origin;type:varchar(100)"`
	Price            decimal.Decimal `gorm:"column:price;type:decimal(12,2);not null"`
	PriceTiers       []PriceTier     `gorm:"column:price_tiers;serializer:json"`
	Stock            int             `gorm:"column:stock;not null;default:0"`
	LowStockThreshold int            `gorm:"column:low_stock_threshold;not null;default:0"`
	Unit             string          `gorm:"column:unit;type:varchar(32)"`
	MinOrderQuantity int             `gorm:"column:min_order_quantity;not null;default:1"`
	Thumbnail        string          `gorm:"column:thumbnail;type:varchar(500)"`
	Images           []string        `gorm:"column:images;serializer:json"`
	Status           ProductStatus   `gorm:"column:status;type:varchar(20);index;default:draft"`
	IsFeatured       bool            `gorm:"column:is_featured;index;default:false"`
	ViewCount        int64           `gorm:"column:view_count;not null;default:0"`
	SoldCount        int64           `gorm:"column:sold_count;not null;default:0"`
}

func (Product) TableName() string { return "products" }

// IsAvailable 商品是否可加入购物车
func (p *Product) IsAvailable() bool {
	return p.Status == StatusActive
}

// IsLowStock 是否低于低库存阈值
func (p *Product) IsLowStock() bool {
	return p.LowStockThreshold > 0 && p.Stock <= p.LowStockThreshold
}

// UnitPriceFor 按数量解析单价：取 min_quantity <= qty 的最大档位，无匹配则用基础价
func (p *Product) UnitPriceFor(qty int) decimal.Decimal {
	price := p.Price
	for _, tier := range p.PriceTiers {
		if qty >= tier.MinQuantity {
			price = tier.Price
		} else {
			break
		}
	}
	return price
}

// ValidatePriceTiers 校验档位：min_quantity 严格递增且 >= 1，价格为正
func (p *Product) ValidatePriceTiers() error {
	last := 0
	for _, tier := range p.PriceTiers {
		if tier.MinQuantity < 1 || tier.MinQuantity <= last {
			return ErrInvalidPriceTiers
		}
		if tier.Price.LessThanOrEqual(decimal.Zero) {
			return ErrInvalidPriceTiers
		}
		last = tier.MinQuantity
	}
	return nil
}

// AdjustStock 调整库存，库存不可为负；归零时转为缺货，补货时恢复上架
func (p *Product) AdjustStock(delta int) error {
	newStock := p.Stock + delta
	if newStock < 0 {
		return ErrInsufficientStock
	}
	p.Stock = newStock

	if p.Stock == 0 && p.Status == StatusActive {
		p.Status = StatusOutOfStock
	} else if p.Stock > 0 && p.Status == StatusOutOfStock {
		p.Status = StatusActive
	}
	return nil
}

// NormalizeSKU 统一 SKU 为大写去空格
func NormalizeSKU(sku string) string {
	return strings.ToUpper(strings.TrimSpace(sku))
}
