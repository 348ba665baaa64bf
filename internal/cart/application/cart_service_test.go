package application

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wyfcoding/storefront/internal/cart/domain"
	"github.com/wyfcoding/storefront/pkg/metrics"
	"gorm.io/gorm"
)

type fakeCartRepo struct {
	carts     map[string]*domain.Cart
	saveCount int
	getErr    error
}

func newFakeCartRepo() *fakeCartRepo {
	return &fakeCartRepo{carts: make(map[string]*domain.Cart)}
}

func (r *fakeCartRepo) GetByUserID(_ context.Context, userID string) (*domain.Cart, error) {
	if r.getErr != nil {
		return nil, r.getErr
	}
	cart, ok := r.carts[userID]
	if !ok {
		return nil, nil
	}
	// 返回副本，模拟仓储每次加载独立实例
	copied := *cart
	copied.Items = append([]domain.CartItem(nil), cart.Items...)
	return &copied, nil
}

func (r *fakeCartRepo) Save(_ context.Context, cart *domain.Cart) error {
	r.saveCount++
	stored := *cart
	stored.Items = append([]domain.CartItem(nil), cart.Items...)
	r.carts[cart.UserID] = &stored
	return nil
}

func (r *fakeCartRepo) Delete(_ context.Context, userID string) error {
	delete(r.carts, userID)
	return nil
}

type fakeGateway struct {
	products map[string]*domain.ProductInfo
}

func (g *fakeGateway) GetProduct(_ context.Context, productID string) (*domain.ProductInfo, error) {
	return g.products[productID], nil
}

func activeProduct(id string, price string, stock int) *domain.ProductInfo {
	return &domain.ProductInfo{
		ProductID:        id,
		Name:             "Product " + id,
		Slug:             "product-" + id,
		BasePrice:        decimal.RequireFromString(price),
		Stock:            stock,
		MinOrderQuantity: 1,
		Active:           true,
	}
}

// fakeTxManager 直接执行事务体，不经过数据库
type fakeTxManager struct{}

func (fakeTxManager) Transaction(fc func(tx *gorm.DB) error, _ ...*sql.TxOptions) error {
	return fc(nil)
}

type fakePublisher struct {
	topics []string
}

func (p *fakePublisher) Publish(_ context.Context, topic, _ string, _ any) error {
	p.topics = append(p.topics, topic)
	return nil
}

func (p *fakePublisher) PublishInTx(_ context.Context, _ any, topic, _ string, _ any) error {
	p.topics = append(p.topics, topic)
	return nil
}

func newCommandService(repo domain.CartRepository, gw domain.ProductGateway) *CartCommandService {
	return NewCartCommandService(repo, gw, nil, nil, metrics.New("test"))
}

func newWiredCommandService(repo domain.CartRepository, gw domain.ProductGateway) (*CartCommandService, *fakePublisher) {
	pub := &fakePublisher{}
	return NewCartCommandService(repo, gw, pub, fakeTxManager{}, metrics.New("test")), pub
}

func storedCart(userID string, items ...domain.CartItem) *domain.Cart {
	cart := &domain.Cart{UserID: userID, Version: 1, Items: items}
	cart.Recalculate()
	cart.ID = 1
	return cart
}

func cartItem(itemID, productID string, qty int, price string) domain.CartItem {
	return domain.CartItem{
		ItemID:    itemID,
		ProductID: productID,
		Quantity:  qty,
		Snapshot: domain.ProductSnapshot{
			ProductName:    "Product " + productID,
			Price:          decimal.RequireFromString(price),
			InStock:        true,
			AvailableStock: 50,
		},
	}
}

func TestAddItemRejectsInvalidQuantity(t *testing.T) {
	svc := newCommandService(newFakeCartRepo(), &fakeGateway{})

	err := svc.AddItem(context.Background(), AddItemCommand{UserID: "u1", ProductID: "PRD-1", Quantity: 0})
	assert.ErrorIs(t, err, domain.ErrInvalidQuantity)

	err = svc.AddItem(context.Background(), AddItemCommand{UserID: "u1", ProductID: "PRD-1", Quantity: -3})
	assert.ErrorIs(t, err, domain.ErrInvalidQuantity)
}

func TestAddItemUnknownProduct(t *testing.T) {
	repo := newFakeCartRepo()
	svc := newCommandService(repo, &fakeGateway{products: map[string]*domain.ProductInfo{}})

	err := svc.AddItem(context.Background(), AddItemCommand{UserID: "u1", ProductID: "PRD-404", Quantity: 1})
	assert.ErrorIs(t, err, domain.ErrProductNotFound)
	assert.Zero(t, repo.saveCount)
}

func TestAddItemInactiveProduct(t *testing.T) {
	product := activeProduct("PRD-1", "10.00", 5)
	product.Active = false
	svc := newCommandService(newFakeCartRepo(), &fakeGateway{products: map[string]*domain.ProductInfo{"PRD-1": product}})

	err := svc.AddItem(context.Background(), AddItemCommand{UserID: "u1", ProductID: "PRD-1", Quantity: 1})
	assert.ErrorIs(t, err, domain.ErrProductUnavailable)
}

func TestAddItemInsufficientStockLeavesLineUnchanged(t *testing.T) {
	repo := newFakeCartRepo()
	repo.carts["u1"] = storedCart("u1", cartItem("ITM-1", "PRD-1", 4, "10.00"))
	gw := &fakeGateway{products: map[string]*domain.ProductInfo{"PRD-1": activeProduct("PRD-1", "10.00", 5)}}
	svc := newCommandService(repo, gw)

	// 已有 4 件，请求再加 3 件，合计超过库存 5
	err := svc.AddItem(context.Background(), AddItemCommand{UserID: "u1", ProductID: "PRD-1", Quantity: 3})
	assert.ErrorIs(t, err, domain.ErrInsufficientStock)

	stored := repo.carts["u1"]
	require.Len(t, stored.Items, 1)
	assert.Equal(t, 4, stored.Items[0].Quantity)
	assert.Zero(t, repo.saveCount)
}

func TestAddItemBelowMinOrderQuantity(t *testing.T) {
	product := activeProduct("PRD-1", "10.00", 100)
	product.MinOrderQuantity = 5
	svc := newCommandService(newFakeCartRepo(), &fakeGateway{products: map[string]*domain.ProductInfo{"PRD-1": product}})

	err := svc.AddItem(context.Background(), AddItemCommand{UserID: "u1", ProductID: "PRD-1", Quantity: 2})
	assert.ErrorIs(t, err, domain.ErrBelowMinOrderQty)
}

func TestAddItemMinOrderAppliesToRequestedQuantity(t *testing.T) {
	repo := newFakeCartRepo()
	repo.carts["u1"] = storedCart("u1", cartItem("ITM-1", "PRD-1", 4, "10.00"))
	product := activeProduct("PRD-1", "10.00", 50)
	product.MinOrderQuantity = 3
	svc, _ := newWiredCommandService(repo, &fakeGateway{products: map[string]*domain.ProductInfo{"PRD-1": product}})

	// 已有 4 件不豁免起订量：本次只请求 1 件，必须拒绝
	err := svc.AddItem(context.Background(), AddItemCommand{UserID: "u1", ProductID: "PRD-1", Quantity: 1})
	assert.ErrorIs(t, err, domain.ErrBelowMinOrderQty)

	stored := repo.carts["u1"]
	require.Len(t, stored.Items, 1)
	assert.Equal(t, 4, stored.Items[0].Quantity)
	assert.Zero(t, repo.saveCount)

	// 达到起订量后与已有行合并累加
	err = svc.AddItem(context.Background(), AddItemCommand{UserID: "u1", ProductID: "PRD-1", Quantity: 3})
	require.NoError(t, err)
	assert.Equal(t, 7, repo.carts["u1"].Items[0].Quantity)
}

func TestAddItemSumsQuantitiesOnExistingLine(t *testing.T) {
	repo := newFakeCartRepo()
	repo.carts["u1"] = storedCart("u1", cartItem("ITM-1", "PRD-1", 2, "10.00"))
	product := activeProduct("PRD-1", "10.00", 10)
	product.Tiers = []domain.PriceTier{{MinQuantity: 5, Price: decimal.RequireFromString("8.00")}}
	svc, pub := newWiredCommandService(repo, &fakeGateway{products: map[string]*domain.ProductInfo{"PRD-1": product}})

	err := svc.AddItem(context.Background(), AddItemCommand{UserID: "u1", ProductID: "PRD-1", Quantity: 3})
	require.NoError(t, err)

	stored := repo.carts["u1"]
	require.Len(t, stored.Items, 1)
	assert.Equal(t, 5, stored.Items[0].Quantity)
	// 合并后的数量落入档位区间，快照价随之刷新
	assert.True(t, stored.Items[0].Snapshot.Price.Equal(decimal.RequireFromString("8.00")))
	assert.Equal(t, 5, stored.TotalItems)
	assert.True(t, stored.Subtotal.Equal(decimal.NewFromInt(40)))
	assert.Equal(t, 1, repo.saveCount)
	assert.Contains(t, pub.topics, domain.TopicCartItemAdded)
}

func TestAddItemStockAndMinOrderInterplay(t *testing.T) {
	repo := newFakeCartRepo()
	product := activeProduct("PRD-1", "10.00", 5)
	product.MinOrderQuantity = 2
	svc, _ := newWiredCommandService(repo, &fakeGateway{products: map[string]*domain.ProductInfo{"PRD-1": product}})
	ctx := context.Background()

	err := svc.AddItem(ctx, AddItemCommand{UserID: "u1", ProductID: "PRD-1", Quantity: 1})
	assert.ErrorIs(t, err, domain.ErrBelowMinOrderQty)

	require.NoError(t, svc.AddItem(ctx, AddItemCommand{UserID: "u1", ProductID: "PRD-1", Quantity: 2}))

	// 2 + 4 超出库存 5
	err = svc.AddItem(ctx, AddItemCommand{UserID: "u1", ProductID: "PRD-1", Quantity: 4})
	assert.ErrorIs(t, err, domain.ErrInsufficientStock)

	// 2 + 3 恰好用尽库存
	require.NoError(t, svc.AddItem(ctx, AddItemCommand{UserID: "u1", ProductID: "PRD-1", Quantity: 3}))

	stored := repo.carts["u1"]
	require.Len(t, stored.Items, 1)
	assert.Equal(t, 5, stored.Items[0].Quantity)
}

func TestUpdateItemQuantityErrors(t *testing.T) {
	repo := newFakeCartRepo()
	gw := &fakeGateway{products: map[string]*domain.ProductInfo{"PRD-1": activeProduct("PRD-1", "10.00", 5)}}
	svc := newCommandService(repo, gw)
	ctx := context.Background()

	err := svc.UpdateItemQuantity(ctx, UpdateItemQuantityCommand{UserID: "u1", ItemID: "ITM-1", Quantity: 0})
	assert.ErrorIs(t, err, domain.ErrInvalidQuantity)

	err = svc.UpdateItemQuantity(ctx, UpdateItemQuantityCommand{UserID: "u1", ItemID: "ITM-1", Quantity: 2})
	assert.ErrorIs(t, err, domain.ErrCartNotFound)

	repo.carts["u1"] = storedCart("u1", cartItem("ITM-1", "PRD-1", 1, "10.00"))
	err = svc.UpdateItemQuantity(ctx, UpdateItemQuantityCommand{UserID: "u1", ItemID: "ITM-404", Quantity: 2})
	assert.ErrorIs(t, err, domain.ErrItemNotFound)

	err = svc.UpdateItemQuantity(ctx, UpdateItemQuantityCommand{UserID: "u1", ItemID: "ITM-1", Quantity: 9})
	assert.ErrorIs(t, err, domain.ErrInsufficientStock)
}

func TestUpdateItemQuantityAllowsInactiveProduct(t *testing.T) {
	repo := newFakeCartRepo()
	repo.carts["u1"] = storedCart("u1", cartItem("ITM-1", "PRD-1", 1, "10.00"))
	product := activeProduct("PRD-1", "10.00", 5)
	product.Active = false
	svc, _ := newWiredCommandService(repo, &fakeGateway{products: map[string]*domain.ProductInfo{"PRD-1": product}})

	// 下架商品的行仍可改数量，清理留给同步
	err := svc.UpdateItemQuantity(context.Background(), UpdateItemQuantityCommand{UserID: "u1", ItemID: "ITM-1", Quantity: 3})
	require.NoError(t, err)
	assert.Equal(t, 3, repo.carts["u1"].Items[0].Quantity)
}

func TestSyncCartClampsAndDropsLines(t *testing.T) {
	repo := newFakeCartRepo()
	repo.carts["u1"] = storedCart("u1",
		cartItem("ITM-1", "PRD-1", 9, "10.00"),
		cartItem("ITM-2", "PRD-2", 2, "5.00"),
		cartItem("ITM-3", "PRD-3", 1, "4.00"),
		cartItem("ITM-4", "PRD-4", 2, "3.00"),
		cartItem("ITM-5", "PRD-5", 2, "6.00"),
	)
	inactive := activeProduct("PRD-2", "5.00", 10)
	inactive.Active = false
	gw := &fakeGateway{products: map[string]*domain.ProductInfo{
		"PRD-1": activeProduct("PRD-1", "10.00", 5),
		"PRD-2": inactive,
		// PRD-3 已不存在
		"PRD-4": activeProduct("PRD-4", "3.00", 0),
		"PRD-5": activeProduct("PRD-5", "6.00", 10),
	}}
	svc, pub := newWiredCommandService(repo, gw)

	result, err := svc.SyncCart(context.Background(), "u1")
	require.NoError(t, err)

	// 下架、失效、零库存的行被移除
	require.Len(t, result.Items, 2)
	assert.Equal(t, "PRD-1", result.Items[0].ProductID)
	// 数量只向下收敛到库存
	assert.Equal(t, 5, result.Items[0].Quantity)
	assert.Equal(t, "PRD-5", result.Items[1].ProductID)
	// 库存富余时不向上调整
	assert.Equal(t, 2, result.Items[1].Quantity)
	assert.Equal(t, 7, result.TotalItems)
	assert.Equal(t, "62", result.Subtotal)
	assert.Contains(t, pub.topics, domain.TopicCartUpdated)
}

func TestSyncCartIdempotent(t *testing.T) {
	repo := newFakeCartRepo()
	repo.carts["u1"] = storedCart("u1",
		cartItem("ITM-1", "PRD-1", 9, "10.00"),
		cartItem("ITM-2", "PRD-2", 1, "5.00"),
	)
	gw := &fakeGateway{products: map[string]*domain.ProductInfo{
		"PRD-1": activeProduct("PRD-1", "10.00", 5),
	}}
	svc, _ := newWiredCommandService(repo, gw)

	first, err := svc.SyncCart(context.Background(), "u1")
	require.NoError(t, err)
	second, err := svc.SyncCart(context.Background(), "u1")
	require.NoError(t, err)

	assert.Equal(t, first.TotalItems, second.TotalItems)
	assert.Equal(t, first.Subtotal, second.Subtotal)
	require.Len(t, second.Items, len(first.Items))
	for i := range first.Items {
		assert.Equal(t, first.Items[i].ProductID, second.Items[i].ProductID)
		assert.Equal(t, first.Items[i].Quantity, second.Items[i].Quantity)
		assert.Equal(t, first.Items[i].Price, second.Items[i].Price)
	}
}

func TestMergeCartsSumsThenSyncs(t *testing.T) {
	repo := newFakeCartRepo()
	repo.carts["u1"] = storedCart("u1", cartItem("ITM-1", "PRD-1", 1, "10.00"))
	gw := &fakeGateway{products: map[string]*domain.ProductInfo{
		"PRD-1": activeProduct("PRD-1", "10.00", 5),
		"PRD-2": activeProduct("PRD-2", "5.00", 2),
	}}
	svc, pub := newWiredCommandService(repo, gw)

	result, err := svc.MergeCarts(context.Background(), MergeCartsCommand{
		UserID: "u1",
		GuestItems: []GuestItemInput{
			{ProductID: "PRD-1", Quantity: 2},
			{ProductID: "PRD-2", Quantity: 9},
			{ProductID: "PRD-404", Quantity: 1},
		},
	})
	require.NoError(t, err)

	quantities := make(map[string]int, len(result.Items))
	for _, item := range result.Items {
		quantities[item.ProductID] = item.Quantity
	}
	// 同商品累加，超量行由随后的同步收敛到库存，失效商品被丢弃
	assert.Equal(t, map[string]int{"PRD-1": 3, "PRD-2": 2}, quantities)
	assert.Equal(t, "40", result.Subtotal)
	assert.Contains(t, pub.topics, domain.TopicCartMerged)
	assert.Contains(t, pub.topics, domain.TopicCartUpdated)
}

func TestMergeCartsGuestOrderIndependent(t *testing.T) {
	merge := func(guest []GuestItemInput) *CartDTO {
		repo := newFakeCartRepo()
		gw := &fakeGateway{products: map[string]*domain.ProductInfo{
			"PRD-1": activeProduct("PRD-1", "10.00", 5),
			"PRD-2": activeProduct("PRD-2", "5.00", 4),
		}}
		svc, _ := newWiredCommandService(repo, gw)

		result, err := svc.MergeCarts(context.Background(), MergeCartsCommand{UserID: "u1", GuestItems: guest})
		require.NoError(t, err)
		return result
	}

	forward := merge([]GuestItemInput{
		{ProductID: "PRD-1", Quantity: 2},
		{ProductID: "PRD-2", Quantity: 3},
		{ProductID: "PRD-1", Quantity: 1},
	})
	reversed := merge([]GuestItemInput{
		{ProductID: "PRD-1", Quantity: 1},
		{ProductID: "PRD-2", Quantity: 3},
		{ProductID: "PRD-1", Quantity: 2},
	})

	collect := func(dto *CartDTO) map[string]int {
		quantities := make(map[string]int, len(dto.Items))
		for _, item := range dto.Items {
			quantities[item.ProductID] = item.Quantity
		}
		return quantities
	}
	assert.Equal(t, collect(forward), collect(reversed))
	assert.Equal(t, forward.Subtotal, reversed.Subtotal)
	assert.Equal(t, forward.TotalItems, reversed.TotalItems)
}

func TestRemoveItemFromMissingCart(t *testing.T) {
	svc := newCommandService(newFakeCartRepo(), &fakeGateway{})

	err := svc.RemoveItem(context.Background(), RemoveItemCommand{UserID: "u1", ItemID: "ITM-1"})
	assert.ErrorIs(t, err, domain.ErrCartNotFound)
}

func TestClearMissingCart(t *testing.T) {
	svc := newCommandService(newFakeCartRepo(), &fakeGateway{})

	err := svc.ClearCart(context.Background(), "u1")
	assert.ErrorIs(t, err, domain.ErrCartNotFound)
}

func TestWithRetryGivesUpAfterMaxAttempts(t *testing.T) {
	svc := newCommandService(newFakeCartRepo(), &fakeGateway{})

	attempts := 0
	err := svc.withRetry(context.Background(), func(context.Context) error {
		attempts++
		return domain.ErrVersionConflict
	})

	assert.ErrorIs(t, err, domain.ErrVersionConflict)
	assert.Equal(t, maxSaveRetries, attempts)
}

func TestWithRetryStopsOnOtherErrors(t *testing.T) {
	svc := newCommandService(newFakeCartRepo(), &fakeGateway{})
	sentinel := errors.New("boom")

	attempts := 0
	err := svc.withRetry(context.Background(), func(context.Context) error {
		attempts++
		if attempts == 1 {
			return domain.ErrVersionConflict
		}
		return sentinel
	})

	assert.ErrorIs(t, err, sentinel)
	assert.Equal(t, 2, attempts)
}

func TestGetCartCreatesAndPersistsEmptyCart(t *testing.T) {
	repo := newFakeCartRepo()
	svc := NewCartQueryService(repo, &fakeGateway{})

	cart, err := svc.GetCart(context.Background(), "u1")
	require.NoError(t, err)
	assert.Equal(t, "u1", cart.UserID)
	assert.Empty(t, cart.Items)
	assert.Equal(t, 1, repo.saveCount)
	assert.Contains(t, repo.carts, "u1")
}

func TestGetCartFlagsPriceChangeAndStock(t *testing.T) {
	repo := newFakeCartRepo()
	repo.carts["u1"] = storedCart("u1",
		cartItem("ITM-1", "PRD-1", 3, "10.00"),
		cartItem("ITM-2", "PRD-2", 2, "7.00"),
		cartItem("ITM-3", "PRD-3", 1, "4.00"),
	)
	gw := &fakeGateway{products: map[string]*domain.ProductInfo{
		"PRD-1": activeProduct("PRD-1", "12.00", 50), // 涨价
		"PRD-2": activeProduct("PRD-2", "7.00", 1),   // 库存不足
		// PRD-3 已下架
	}}
	svc := NewCartQueryService(repo, gw)

	cart, err := svc.GetCart(context.Background(), "u1")
	require.NoError(t, err)
	require.Len(t, cart.Items, 3)

	priced := cart.Items[0]
	assert.True(t, priced.PriceChanged)
	assert.Equal(t, "10", priced.OldPrice)
	assert.Equal(t, "12", priced.CurrentPrice)
	assert.True(t, priced.InStock)

	short := cart.Items[1]
	assert.False(t, short.InStock)
	assert.Equal(t, 1, short.AvailableStock)
	assert.False(t, short.PriceChanged)

	gone := cart.Items[2]
	assert.False(t, gone.InStock)
	assert.Zero(t, gone.AvailableStock)
	assert.NotEmpty(t, gone.Error)

	// 读时校验不落库
	assert.Zero(t, repo.saveCount)
}

func TestGetCartStats(t *testing.T) {
	repo := newFakeCartRepo()
	repo.carts["u1"] = storedCart("u1",
		cartItem("ITM-1", "PRD-1", 2, "10.00"),
		cartItem("ITM-2", "PRD-2", 5, "3.00"),
	)
	gw := &fakeGateway{products: map[string]*domain.ProductInfo{
		"PRD-1": activeProduct("PRD-1", "10.00", 50),
		"PRD-2": activeProduct("PRD-2", "3.00", 2), // 低于购物车数量
	}}
	svc := NewCartQueryService(repo, gw)

	stats, err := svc.GetCartStats(context.Background(), "u1")
	require.NoError(t, err)
	assert.Equal(t, 7, stats.TotalItems)
	assert.Equal(t, "35", stats.Subtotal)
	assert.Equal(t, 2, stats.LineCount)
	assert.False(t, stats.IsEmpty)
	assert.True(t, stats.HasOutOfStock)
	assert.Equal(t, 1, stats.OutOfStockCount)
}

func TestGetCartStatsEmptyForUnknownUser(t *testing.T) {
	svc := NewCartQueryService(newFakeCartRepo(), &fakeGateway{})

	stats, err := svc.GetCartStats(context.Background(), "ghost")
	require.NoError(t, err)
	assert.True(t, stats.IsEmpty)
	assert.Zero(t, stats.LineCount)
	assert.False(t, stats.HasOutOfStock)
}
