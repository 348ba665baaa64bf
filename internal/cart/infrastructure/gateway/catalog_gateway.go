package gateway

import (
	"context"

	"github.com/wyfcoding/storefront/internal/cart/domain"
	catalog "github.com/wyfcoding/storefront/internal/catalog/domain"
)

// catalogGateway 商品目录适配器，把目录上下文的商品投影为购物车只读视图
type catalogGateway struct {
	products catalog.ProductRepository
}

// NewCatalogGateway 创建商品目录网关
func NewCatalogGateway(products catalog.ProductRepository) domain.ProductGateway {
	return &catalogGateway{products: products}
}

func (g *catalogGateway) GetProduct(ctx context.Context, productID string) (*domain.ProductInfo, error) {
	product, err := g.products.GetByProductID(ctx, productID)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, nil
	}

	tiers := make([]domain.PriceTier, 0, len(product.PriceTiers))
	for _, tier := range product.PriceTiers {
		tiers = append(tiers, domain.PriceTier{
			MinQuantity: tier.MinQuantity,
			Price:       tier.Price,
		})
	}

	return &domain.ProductInfo{
		ProductID:        product.ProductID,
		Name:             product.Name,
		Slug:             product.Slug,
		Image:            product.Thumbnail,
		BasePrice:        product.Price,
		Tiers:            tiers,
		Stock:            product.Stock,
		MinOrderQuantity: product.MinOrderQuantity,
		Active:           product.Status == catalog.StatusActive,
	}, nil
}
