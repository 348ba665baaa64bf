package application

import (
	"context"

	"github.com/wyfcoding/storefront/internal/cart/domain"
	"github.com/wyfcoding/storefront/pkg/logger"
)

// CartQueryService 购物车查询服务
type CartQueryService struct {
	repo     domain.CartRepository
	products domain.ProductGateway
}

// NewCartQueryService 创建购物车查询服务实例
func NewCartQueryService(repo domain.CartRepository, products domain.ProductGateway) *CartQueryService {
	return &CartQueryService{repo: repo, products: products}
}

// GetCart 查询用户购物车，不存在时创建并持久化空购物车。
// 每行附带读时校验结果（库存、价格变动），但不修改存储的行数据。
func (s *CartQueryService) GetCart(ctx context.Context, userID string) (*CartDTO, error) {
	cart, err := s.repo.GetByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if cart == nil {
		cart = &domain.Cart{UserID: userID, Version: 1}
		if err := s.repo.Save(ctx, cart); err != nil {
			return nil, err
		}
	}

	dto := toCartDTO(cart)
	for i := range cart.Items {
		s.validateLine(ctx, &cart.Items[i], dto.Items[i])
	}
	return dto, nil
}

// GetCartStats 查询购物车统计信息，缺货判定复用读时校验
func (s *CartQueryService) GetCartStats(ctx context.Context, userID string) (*CartStatsDTO, error) {
	cart, err := s.repo.GetByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if cart == nil {
		cart = &domain.Cart{UserID: userID, Version: 1}
	}

	stats := &CartStatsDTO{
		TotalItems: cart.TotalItems,
		Subtotal:   cart.Subtotal.String(),
		LineCount:  len(cart.Items),
		IsEmpty:    cart.IsEmpty(),
	}
	for i := range cart.Items {
		line := &CartItemDTO{Quantity: cart.Items[i].Quantity, InStock: cart.Items[i].Snapshot.InStock}
		s.validateLine(ctx, &cart.Items[i], line)
		if !line.InStock {
			stats.OutOfStockCount++
		}
	}
	stats.HasOutOfStock = stats.OutOfStockCount > 0
	return stats, nil
}

// validateLine 按当前商品目录状态填充行的校验字段。
// 目录查询失败只降级记录日志，不阻断读取。
func (s *CartQueryService) validateLine(ctx context.Context, item *domain.CartItem, dto *CartItemDTO) {
	product, err := s.products.GetProduct(ctx, item.ProductID)
	if err != nil {
		logger.Warn(ctx, "cart line validation degraded",
			"product_id", item.ProductID,
			"error", err,
		)
		return
	}
	if product == nil || !product.Active {
		dto.InStock = false
		dto.AvailableStock = 0
		dto.Error = "product no longer available"
		return
	}

	dto.InStock = product.Stock >= item.Quantity
	dto.AvailableStock = product.Stock

	current := product.UnitPriceFor(item.Quantity)
	if !current.Equal(item.Snapshot.Price) {
		dto.PriceChanged = true
		dto.OldPrice = item.Snapshot.Price.String()
		dto.CurrentPrice = current.String()
	}
}
