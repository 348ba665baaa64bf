package mysql

import (
	"context"
	"errors"
	"fmt"

	"github.com/wyfcoding/pkg/contextx"
	"github.com/wyfcoding/storefront/internal/cart/domain"
	"gorm.io/gorm"
)

type cartRepository struct {
	db *gorm.DB
}

// NewCartRepository 创建购物车仓储的 MySQL 实现
func NewCartRepository(db *gorm.DB) domain.CartRepository {
	return &cartRepository{db: db}
}

// getDB 优先使用事务中的连接
func (r *cartRepository) getDB(ctx context.Context) *gorm.DB {
	if tx, ok := contextx.GetTx(ctx).(*gorm.DB); ok {
		return tx
	}
	return r.db
}

func (r *cartRepository) GetByUserID(ctx context.Context, userID string) (*domain.Cart, error) {
	var cart domain.Cart
	err := r.getDB(ctx).WithContext(ctx).
		Preload("Items").
		Where("user_id = ?", userID).
		First(&cart).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get cart: %w", err)
	}
	return &cart, nil
}

// Save 落库购物车。新建直接插入；已有购物车按 version 条件更新，
// 行项目整体重写。并发创建撞唯一键同样视为版本冲突，由上层重试。
func (r *cartRepository) Save(ctx context.Context, cart *domain.Cart) error {
	db := r.getDB(ctx).WithContext(ctx)

	if cart.ID == 0 {
		cart.Version = 1
		if err := db.Create(cart).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return domain.ErrVersionConflict
			}
			return fmt.Errorf("failed to create cart: %w", err)
		}
		return nil
	}

	currentVersion := cart.Version
	result := db.Model(&domain.Cart{}).
		Where("id = ? AND version = ?", cart.ID, currentVersion).
		Updates(map[string]any{
			"total_items": cart.TotalItems,
			"subtotal":    cart.Subtotal,
			"version":     currentVersion + 1,
		})
	if result.Error != nil {
		return fmt.Errorf("failed to update cart: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return domain.ErrVersionConflict
	}
	cart.Version = currentVersion + 1

	// 行项目整体重写，避免逐行 diff
	if err := db.Unscoped().Where("cart_id = ?", cart.ID).Delete(&domain.CartItem{}).Error; err != nil {
		return fmt.Errorf("failed to clear cart items: %w", err)
	}
	if len(cart.Items) > 0 {
		for i := range cart.Items {
			cart.Items[i].ID = 0
			cart.Items[i].CartID = cart.ID
		}
		if err := db.Create(&cart.Items).Error; err != nil {
			return fmt.Errorf("failed to save cart items: %w", err)
		}
	}
	return nil
}

func (r *cartRepository) Delete(ctx context.Context, userID string) error {
	db := r.getDB(ctx).WithContext(ctx)

	var cart domain.Cart
	if err := db.Where("user_id = ?", userID).First(&cart).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil
		}
		return fmt.Errorf("failed to get cart: %w", err)
	}
	if err := db.Unscoped().Where("cart_id = ?", cart.ID).Delete(&domain.CartItem{}).Error; err != nil {
		return fmt.Errorf("failed to delete cart items: %w", err)
	}
	if err := db.Delete(&cart).Error; err != nil {
		return fmt.Errorf("failed to delete cart: %w", err)
	}
	return nil
}
