package application

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/wyfcoding/pkg/contextx"
	"github.com/wyfcoding/pkg/idgen"
	"github.com/wyfcoding/storefront/internal/cart/domain"
	"github.com/wyfcoding/storefront/pkg/logger"
	"github.com/wyfcoding/storefront/pkg/metrics"
	"gorm.io/gorm"
)

const (
	// maxSaveRetries 乐观锁冲突最大重试次数
	maxSaveRetries = 3
	// commandTimeout 单次命令的数据库窗口超时
	commandTimeout = 5 * time.Second
)

// AddItemCommand 添加商品到购物车命令
type AddItemCommand struct {
	UserID     string
	ProductID  string
	VariantSKU string
	Quantity   int
}

// UpdateItemQuantityCommand 修改行项目数量命令
type UpdateItemQuantityCommand struct {
	UserID   string
	ItemID   string
	Quantity int
}

// RemoveItemCommand 移除行项目命令
type RemoveItemCommand struct {
	UserID string
	ItemID string
}

// MergeCartsCommand 合并游客购物车命令
type MergeCartsCommand struct {
	UserID     string
	GuestItems []GuestItemInput
}

// TxManager 事务边界端口，*gorm.DB 原生满足该签名
type TxManager interface {
	Transaction(fc func(tx *gorm.DB) error, opts ...*sql.TxOptions) error
}

// CartCommandService 购物车命令服务
type CartCommandService struct {
	repo      domain.CartRepository
	products  domain.ProductGateway
	publisher domain.EventPublisher
	db        TxManager
	metrics   *metrics.Metrics
}

// NewCartCommandService 创建购物车命令服务实例
func NewCartCommandService(
	repo domain.CartRepository,
	products domain.ProductGateway,
	publisher domain.EventPublisher,
	db TxManager,
	m *metrics.Metrics,
) *CartCommandService {
	return &CartCommandService{
		repo:      repo,
		products:  products,
		publisher: publisher,
		db:        db,
		metrics:   m,
	}
}

// AddItem 处理添加商品到购物车。同商品同变体的行项目数量累加，
// 校验失败时已有行保持不变。
func (s *CartCommandService) AddItem(ctx context.Context, cmd AddItemCommand) error {
	if cmd.Quantity < 1 {
		return domain.ErrInvalidQuantity
	}

	err := s.withRetry(ctx, func(ctx context.Context) error {
		cart, err := s.loadOrCreate(ctx, cmd.UserID)
		if err != nil {
			return err
		}

		product, err := s.products.GetProduct(ctx, cmd.ProductID)
		if err != nil {
			return err
		}
		if product == nil {
			return domain.ErrProductNotFound
		}
		if !product.Active {
			return domain.ErrProductUnavailable
		}

		// 起订量约束本次请求的数量，与已有行合并后的数量只做库存校验
		if cmd.Quantity < product.MinOrderQuantity {
			return fmt.Errorf("%w: minimum is %d", domain.ErrBelowMinOrderQty, product.MinOrderQuantity)
		}

		existing := cart.FindItem(cmd.ProductID, cmd.VariantSKU)
		newQty := cmd.Quantity
		if existing != nil {
			newQty += existing.Quantity
		}

		if newQty > product.Stock {
			s.metrics.StockConflictsTotal.Inc()
			return fmt.Errorf("%w: requested %d, available %d", domain.ErrInsufficientStock, newQty, product.Stock)
		}

		var itemID string
		if existing != nil {
			existing.Quantity = newQty
			refreshSnapshot(existing, product)
			itemID = existing.ItemID
		} else {
			item := domain.CartItem{
				ItemID:     fmt.Sprintf("ITM-%d", idgen.GenID()),
				ProductID:  cmd.ProductID,
				VariantSKU: cmd.VariantSKU,
				Quantity:   newQty,
			}
			refreshSnapshot(&item, product)
			cart.Items = append(cart.Items, item)
			itemID = item.ItemID
		}
		cart.Recalculate()

		event := domain.CartItemAddedEvent{
			UserID:     cmd.UserID,
			ItemID:     itemID,
			ProductID:  cmd.ProductID,
			VariantSKU: cmd.VariantSKU,
			Quantity:   newQty,
			Price:      product.UnitPriceFor(newQty).String(),
			Timestamp:  time.Now(),
		}
		return s.saveAndPublish(ctx, cart, domain.TopicCartItemAdded, event)
	})
	if err != nil {
		return err
	}

	s.metrics.CartItemsAddedTotal.Inc()
	return nil
}

// UpdateItemQuantity 处理修改行项目数量
func (s *CartCommandService) UpdateItemQuantity(ctx context.Context, cmd UpdateItemQuantityCommand) error {
	if cmd.Quantity < 1 {
		return domain.ErrInvalidQuantity
	}

	return s.withRetry(ctx, func(ctx context.Context) error {
		cart, err := s.repo.GetByUserID(ctx, cmd.UserID)
		if err != nil {
			return err
		}
		if cart == nil {
			return domain.ErrCartNotFound
		}

		item := cart.FindItemByID(cmd.ItemID)
		if item == nil {
			return domain.ErrItemNotFound
		}

		// 改数量不校验上下架状态，失效行由同步阶段清理
		product, err := s.products.GetProduct(ctx, item.ProductID)
		if err != nil {
			return err
		}
		if product == nil {
			return domain.ErrProductNotFound
		}

		if cmd.Quantity > product.Stock {
			s.metrics.StockConflictsTotal.Inc()
			return fmt.Errorf("%w: requested %d, available %d", domain.ErrInsufficientStock, cmd.Quantity, product.Stock)
		}
		if cmd.Quantity < product.MinOrderQuantity {
			return fmt.Errorf("%w: minimum is %d", domain.ErrBelowMinOrderQty, product.MinOrderQuantity)
		}

		item.Quantity = cmd.Quantity
		refreshSnapshot(item, product)
		cart.Recalculate()

		return s.saveAndPublish(ctx, cart, domain.TopicCartUpdated, s.updatedEvent(cart))
	})
}

// RemoveItem 处理移除行项目
func (s *CartCommandService) RemoveItem(ctx context.Context, cmd RemoveItemCommand) error {
	return s.withRetry(ctx, func(ctx context.Context) error {
		cart, err := s.repo.GetByUserID(ctx, cmd.UserID)
		if err != nil {
			return err
		}
		if cart == nil {
			return domain.ErrCartNotFound
		}

		if !cart.RemoveItemByID(cmd.ItemID) {
			return domain.ErrItemNotFound
		}
		cart.Recalculate()

		return s.saveAndPublish(ctx, cart, domain.TopicCartUpdated, s.updatedEvent(cart))
	})
}

// RemoveItems 批量移除行项目，未命中的 ID 忽略
func (s *CartCommandService) RemoveItems(ctx context.Context, userID string, itemIDs []string) error {
	return s.withRetry(ctx, func(ctx context.Context) error {
		cart, err := s.repo.GetByUserID(ctx, userID)
		if err != nil {
			return err
		}
		if cart == nil {
			return domain.ErrCartNotFound
		}

		cart.RemoveItemsByIDs(itemIDs)
		cart.Recalculate()

		return s.saveAndPublish(ctx, cart, domain.TopicCartUpdated, s.updatedEvent(cart))
	})
}

// ClearCart 处理清空购物车
func (s *CartCommandService) ClearCart(ctx context.Context, userID string) error {
	return s.withRetry(ctx, func(ctx context.Context) error {
		cart, err := s.repo.GetByUserID(ctx, userID)
		if err != nil {
			return err
		}
		if cart == nil {
			return domain.ErrCartNotFound
		}

		cart.Items = nil
		cart.Recalculate()

		event := domain.CartClearedEvent{UserID: userID, Timestamp: time.Now()}
		return s.saveAndPublish(ctx, cart, domain.TopicCartCleared, event)
	})
}

// SyncCart 与商品目录对账：下架/失效商品的行被移除，数量只向下收敛到库存，
// 价格按当前档位刷新。操作幂等。
func (s *CartCommandService) SyncCart(ctx context.Context, userID string) (*CartDTO, error) {
	var result *CartDTO
	err := s.withRetry(ctx, func(ctx context.Context) error {
		cart, err := s.loadOrCreate(ctx, userID)
		if err != nil {
			return err
		}

		kept := make([]domain.CartItem, 0, len(cart.Items))
		for _, item := range cart.Items {
			product, err := s.products.GetProduct(ctx, item.ProductID)
			if err != nil {
				return err
			}
			if product == nil || !product.Active || product.Stock == 0 {
				continue
			}
			if item.Quantity > product.Stock {
				item.Quantity = product.Stock
			}
			refreshSnapshot(&item, product)
			kept = append(kept, item)
		}
		cart.Items = kept
		cart.Recalculate()

		if err := s.saveAndPublish(ctx, cart, domain.TopicCartUpdated, s.updatedEvent(cart)); err != nil {
			return err
		}
		result = toCartDTO(cart)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// MergeCarts 合并游客购物车：同商品同变体数量直接累加（不校验库存，交给随后的同步），
// 其余行追加，完成后必须做一次 SyncCart 并返回对账结果。
func (s *CartCommandService) MergeCarts(ctx context.Context, cmd MergeCartsCommand) (*CartDTO, error) {
	err := s.withRetry(ctx, func(ctx context.Context) error {
		cart, err := s.loadOrCreate(ctx, cmd.UserID)
		if err != nil {
			return err
		}

		merged := 0
		for _, guest := range cmd.GuestItems {
			if guest.Quantity < 1 {
				continue
			}
			if existing := cart.FindItem(guest.ProductID, guest.VariantSKU); existing != nil {
				existing.Quantity += guest.Quantity
				merged++
				continue
			}

			product, err := s.products.GetProduct(ctx, guest.ProductID)
			if err != nil {
				return err
			}
			if product == nil {
				// 失效商品留给同步阶段清理，这里直接跳过
				continue
			}
			item := domain.CartItem{
				ItemID:     fmt.Sprintf("ITM-%d", idgen.GenID()),
				ProductID:  guest.ProductID,
				VariantSKU: guest.VariantSKU,
				Quantity:   guest.Quantity,
			}
			refreshSnapshot(&item, product)
			cart.Items = append(cart.Items, item)
			merged++
		}
		cart.Recalculate()

		event := domain.CartMergedEvent{UserID: cmd.UserID, MergedLines: merged, Timestamp: time.Now()}
		return s.saveAndPublish(ctx, cart, domain.TopicCartMerged, event)
	})
	if err != nil {
		return nil, err
	}

	return s.SyncCart(ctx, cmd.UserID)
}

// AddItems 批量加购，单行失败只记录日志继续处理其余行
func (s *CartCommandService) AddItems(ctx context.Context, userID string, items []GuestItemInput) error {
	for _, in := range items {
		err := s.AddItem(ctx, AddItemCommand{
			UserID:     userID,
			ProductID:  in.ProductID,
			VariantSKU: in.VariantSKU,
			Quantity:   in.Quantity,
		})
		if err != nil {
			logger.Warn(ctx, "bulk add item skipped",
				"user_id", userID,
				"product_id", in.ProductID,
				"error", err,
			)
		}
	}
	return nil
}

// withRetry 乐观锁冲突时重试，每次尝试有独立的超时窗口
func (s *CartCommandService) withRetry(ctx context.Context, fn func(ctx context.Context) error) error {
	var err error
	for attempt := 0; attempt < maxSaveRetries; attempt++ {
		attemptCtx, cancel := context.WithTimeout(ctx, commandTimeout)
		err = fn(attemptCtx)
		cancel()
		if !errors.Is(err, domain.ErrVersionConflict) {
			return err
		}
		s.metrics.VersionRetriesTotal.Inc()
	}
	return err
}

// loadOrCreate 加载用户购物车，不存在则返回待落库的空购物车
func (s *CartCommandService) loadOrCreate(ctx context.Context, userID string) (*domain.Cart, error) {
	cart, err := s.repo.GetByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if cart == nil {
		cart = &domain.Cart{UserID: userID, Version: 1}
	}
	return cart, nil
}

func (s *CartCommandService) saveAndPublish(ctx context.Context, cart *domain.Cart, topic string, event any) error {
	err := s.db.Transaction(func(tx *gorm.DB) error {
		txCtx := contextx.WithTx(ctx, tx)

		if err := s.repo.Save(txCtx, cart); err != nil {
			return err
		}
		return s.publisher.PublishInTx(ctx, tx, topic, cart.UserID, event)
	})
	if err != nil {
		return err
	}

	s.metrics.CartMutationsTotal.Inc()
	return nil
}

func (s *CartCommandService) updatedEvent(cart *domain.Cart) domain.CartUpdatedEvent {
	return domain.CartUpdatedEvent{
		UserID:     cart.UserID,
		TotalItems: cart.TotalItems,
		Subtotal:   cart.Subtotal.String(),
		Timestamp:  time.Now(),
	}
}

// refreshSnapshot 以当前数量的档位价刷新行快照
func refreshSnapshot(item *domain.CartItem, product *domain.ProductInfo) {
	item.Snapshot = domain.ProductSnapshot{
		ProductName:    product.Name,
		ProductSlug:    product.Slug,
		ProductImage:   product.Image,
		Price:          product.UnitPriceFor(item.Quantity),
		InStock:        product.Stock >= item.Quantity,
		AvailableStock: product.Stock,
	}
}
