package domain

import (
	"context"

	"github.com/shopspring/decimal"
)

// PriceTier 商品批量价格档位（只读视图）
type PriceTier struct {
	MinQuantity int
	Price       decimal.Decimal
}

// ProductInfo 购物车视角的商品只读信息
type ProductInfo struct {
	ProductID        string
	Name             string
	Slug             string
	Image            string
	BasePrice        decimal.Decimal
	Tiers            []PriceTier
	Stock            int
	MinOrderQuantity int
	Active           bool
}

// UnitPriceFor 按数量解析单价：取 min_quantity <= qty 的最大档位，无匹配用基础价
func (p *ProductInfo) UnitPriceFor(qty int) decimal.Decimal {
	price := p.BasePrice
	for _, tier := range p.Tiers {
		if qty >= tier.MinQuantity {
			price = tier.Price
		} else {
			break
		}
	}
	return price
}

// ProductGateway 商品目录只读端口，购物车不直接依赖目录上下文
type ProductGateway interface {
	// GetProduct 未找到返回 nil, nil
	GetProduct(ctx context.Context, productID string) (*ProductInfo, error)
}
