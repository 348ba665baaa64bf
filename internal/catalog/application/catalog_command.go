package application

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/wyfcoding/pkg/contextx"
	"github.com/wyfcoding/pkg/idgen"
	"github.com/wyfcoding/storefront/internal/catalog/domain"
	"github.com/wyfcoding/storefront/pkg/logger"
	"github.com/wyfcoding/storefront/pkg/metrics"
	"gorm.io/gorm"
)

// PriceTierInput 价格档位输入
type PriceTierInput struct {
	MinQuantity int
	Price       decimal.Decimal
}

// CreateProductCommand 创建商品命令
type CreateProductCommand struct {
	SKU               string
	Name              string
	Description       string
	ShortDescription  string
	CategoryID        string
	Manufacturer      string
	Origin            string
	Price             decimal.Decimal
	PriceTiers        []PriceTierInput
	Stock             int
	LowStockThreshold int
	Unit              string
	MinOrderQuantity  int
	Thumbnail         string
	Images            []string
	Status            string
	IsFeatured        bool
}

// UpdateProductCommand 更新商品命令，nil 字段不修改
type UpdateProductCommand struct {
	ProductID         string
	Name              *string
	Description       *string
	ShortDescription  *string
	CategoryID        *string
	Manufacturer      *string
	Origin            *string
	Price             *decimal.Decimal
	PriceTiers        []PriceTierInput
	HasPriceTiers     bool
	Stock             *int
	LowStockThreshold *int
	Unit              *string
	MinOrderQuantity  *int
	Thumbnail         *string
	Images            []string
	HasImages         bool
	Status            *string
	IsFeatured        *bool
}

// AdjustStockCommand 库存调整命令
type AdjustStockCommand struct {
	ProductID string
	Delta     int
}

// BulkUpdateStatusCommand 批量修改状态命令
type BulkUpdateStatusCommand struct {
	ProductIDs []string
	Status     string
}

// CatalogCommandService 商品目录命令服务
type CatalogCommandService struct {
	repo       domain.ProductRepository
	categories domain.CategoryChecker
	publisher  domain.EventPublisher
	db         *gorm.DB // 用于开启事务
	metrics    *metrics.Metrics
}

// NewCatalogCommandService 创建商品目录命令服务实例
func NewCatalogCommandService(
	repo domain.ProductRepository,
	categories domain.CategoryChecker,
	publisher domain.EventPublisher,
	db *gorm.DB,
	m *metrics.Metrics,
) *CatalogCommandService {
	return &CatalogCommandService{
		repo:       repo,
		categories: categories,
		publisher:  publisher,
		db:         db,
		metrics:    m,
	}
}

// CreateProduct 处理创建商品
func (s *CatalogCommandService) CreateProduct(ctx context.Context, cmd CreateProductCommand) (*ProductDTO, error) {
	if cmd.Name == "" || cmd.SKU == "" {
		return nil, fmt.Errorf("%w: name and sku are required", domain.ErrInvalidInput)
	}
	if cmd.Price.LessThanOrEqual(decimal.Zero) {
		return nil, fmt.Errorf("%w: price must be positive", domain.ErrInvalidInput)
	}

	status := domain.ProductStatus(cmd.Status)
	if cmd.Status == "" {
		status = domain.StatusDraft
	}
	if !status.IsValid() {
		return nil, domain.ErrInvalidStatus
	}

	minOrder := cmd.MinOrderQuantity
	if minOrder < 1 {
		minOrder = 1
	}

	if cmd.CategoryID != "" {
		ok, err := s.categories.Exists(ctx, cmd.CategoryID)
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, domain.ErrCategoryNotFound
		}
	}

	sku := domain.NormalizeSKU(cmd.SKU)
	exists, err := s.repo.ExistsBySKU(ctx, sku)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, domain.ErrSKUTaken
	}

	slug, err := s.uniqueSlug(ctx, Slugify(cmd.Name), "")
	if err != nil {
		return nil, err
	}

	product := &domain.Product{
		ProductID:         fmt.Sprintf("PRD-%d", idgen.GenID()),
		SKU:               sku,
		Slug:              slug,
		Name:              cmd.Name,
		Description:       cmd.Description,
		ShortDescription:  cmd.ShortDescription,
		CategoryID:        cmd.CategoryID,
		Manufacturer:      cmd.Manufacturer,
		Origin:            cmd.Origin,
		Price:             cmd.Price,
		PriceTiers:        toPriceTiers(cmd.PriceTiers),
		Stock:             cmd.Stock,
		LowStockThreshold: cmd.LowStockThreshold,
		Unit:              cmd.Unit,
		MinOrderQuantity:  minOrder,
		Thumbnail:         cmd.Thumbnail,
		Images:            cmd.Images,
		Status:            status,
		IsFeatured:        cmd.IsFeatured,
	}
	if err := product.ValidatePriceTiers(); err != nil {
		return nil, err
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		txCtx := contextx.WithTx(ctx, tx)

		if err := s.repo.Save(txCtx, product); err != nil {
			return err
		}

		event := domain.ProductCreatedEvent{
			ProductID:  product.ProductID,
			SKU:        product.SKU,
			Name:       product.Name,
			Slug:       product.Slug,
			CategoryID: product.CategoryID,
			Price:      product.Price.String(),
			Stock:      product.Stock,
			Status:     string(product.Status),
			Timestamp:  time.Now(),
		}
		return s.publisher.PublishInTx(ctx, tx, domain.TopicProductCreated, product.ProductID, event)
	})
	if err != nil {
		logger.Error(ctx, "failed to create product", "sku", sku, "error", err)
		return nil, err
	}

	s.metrics.ProductsCreatedTotal.Inc()
	return toProductDTO(product), nil
}

// UpdateProduct 处理更新商品
func (s *CatalogCommandService) UpdateProduct(ctx context.Context, cmd UpdateProductCommand) (*ProductDTO, error) {
	product, err := s.repo.GetByProductID(ctx, cmd.ProductID)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, domain.ErrProductNotFound
	}

	oldStock := product.Stock

	if cmd.Name != nil && *cmd.Name != product.Name {
		product.Name = *cmd.Name
		slug, err := s.uniqueSlug(ctx, Slugify(*cmd.Name), product.Slug)
		if err != nil {
			return nil, err
		}
		product.Slug = slug
	}
	if cmd.Description != nil {
		product.Description = *cmd.Description
	}
	if cmd.ShortDescription != nil {
		product.ShortDescription = *cmd.ShortDescription
	}
	if cmd.CategoryID != nil && *cmd.CategoryID != product.CategoryID {
		if *cmd.CategoryID != "" {
			ok, err := s.categories.Exists(ctx, *cmd.CategoryID)
			if err != nil {
				return nil, err
			}
			if !ok {
				return nil, domain.ErrCategoryNotFound
			}
		}
		product.CategoryID = *cmd.CategoryID
	}
	if cmd.Manufacturer != nil {
		product.Manufacturer = *cmd.Manufacturer
	}
	if cmd.Origin != nil {
		product.Origin = *cmd.Origin
	}
	if cmd.Price != nil {
		if cmd.Price.LessThanOrEqual(decimal.Zero) {
			return nil, fmt.Errorf("%w: price must be positive", domain.ErrInvalidInput)
		}
		product.Price = *cmd.Price
	}
	if cmd.HasPriceTiers {
		product.PriceTiers = toPriceTiers(cmd.PriceTiers)
		if err := product.ValidatePriceTiers(); err != nil {
			return nil, err
		}
	}
	if cmd.Stock != nil {
		if err := product.AdjustStock(*cmd.Stock - product.Stock); err != nil {
			return nil, err
		}
	}
	if cmd.LowStockThreshold != nil {
		product.LowStockThreshold = *cmd.LowStockThreshold
	}
	if cmd.Unit != nil {
		product.Unit = *cmd.Unit
	}
	if cmd.MinOrderQuantity != nil {
		if *cmd.MinOrderQuantity < 1 {
			return nil, fmt.Errorf("%w: min_order_quantity must be >= 1", domain.ErrInvalidInput)
		}
		product.MinOrderQuantity = *cmd.MinOrderQuantity
	}
	if cmd.Thumbnail != nil {
		product.Thumbnail = *cmd.Thumbnail
	}
	if cmd.HasImages {
		product.Images = cmd.Images
	}
	if cmd.Status != nil {
		status := domain.ProductStatus(*cmd.Status)
		if !status.IsValid() {
			return nil, domain.ErrInvalidStatus
		}
		product.Status = status
	}
	if cmd.IsFeatured != nil {
		product.IsFeatured = *cmd.IsFeatured
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		txCtx := contextx.WithTx(ctx, tx)

		if err := s.repo.Save(txCtx, product); err != nil {
			return err
		}

		event := domain.ProductUpdatedEvent{
			ProductID:  product.ProductID,
			Name:       product.Name,
			Slug:       product.Slug,
			CategoryID: product.CategoryID,
			Price:      product.Price.String(),
			Stock:      product.Stock,
			Status:     string(product.Status),
			Timestamp:  time.Now(),
		}
		if err := s.publisher.PublishInTx(ctx, tx, domain.TopicProductUpdated, product.ProductID, event); err != nil {
			return err
		}

		// 库存变动时额外发布库存事件
		if oldStock != product.Stock {
			stockEvent := domain.ProductStockChangedEvent{
				ProductID: product.ProductID,
				OldStock:  oldStock,
				NewStock:  product.Stock,
				Status:    string(product.Status),
				Timestamp: time.Now(),
			}
			return s.publisher.PublishInTx(ctx, tx, domain.TopicProductStockChanged, product.ProductID, stockEvent)
		}
		return nil
	})
	if err != nil {
		logger.Error(ctx, "failed to update product", "product_id", cmd.ProductID, "error", err)
		return nil, err
	}

	return toProductDTO(product), nil
}

// AdjustStock 处理库存调整
func (s *CatalogCommandService) AdjustStock(ctx context.Context, cmd AdjustStockCommand) (*ProductDTO, error) {
	product, err := s.repo.GetByProductID(ctx, cmd.ProductID)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, domain.ErrProductNotFound
	}

	oldStock := product.Stock
	if err := product.AdjustStock(cmd.Delta); err != nil {
		return nil, err
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		txCtx := contextx.WithTx(ctx, tx)

		if err := s.repo.Save(txCtx, product); err != nil {
			return err
		}

		event := domain.ProductStockChangedEvent{
			ProductID: product.ProductID,
			OldStock:  oldStock,
			NewStock:  product.Stock,
			Status:    string(product.Status),
			Timestamp: time.Now(),
		}
		return s.publisher.PublishInTx(ctx, tx, domain.TopicProductStockChanged, product.ProductID, event)
	})
	if err != nil {
		logger.Error(ctx, "failed to adjust stock", "product_id", cmd.ProductID, "delta", cmd.Delta, "error", err)
		return nil, err
	}

	return toProductDTO(product), nil
}

// DeleteProduct 处理删除商品
func (s *CatalogCommandService) DeleteProduct(ctx context.Context, productID string) error {
	product, err := s.repo.GetByProductID(ctx, productID)
	if err != nil {
		return err
	}
	if product == nil {
		return domain.ErrProductNotFound
	}

	return s.db.Transaction(func(tx *gorm.DB) error {
		txCtx := contextx.WithTx(ctx, tx)

		if err := s.repo.Delete(txCtx, productID); err != nil {
			return err
		}

		event := domain.ProductDeletedEvent{
			ProductID: productID,
			Timestamp: time.Now(),
		}
		return s.publisher.PublishInTx(ctx, tx, domain.TopicProductDeleted, productID, event)
	})
}

// BulkUpdateStatus 批量修改商品状态
func (s *CatalogCommandService) BulkUpdateStatus(ctx context.Context, cmd BulkUpdateStatusCommand) (int64, error) {
	status := domain.ProductStatus(cmd.Status)
	if !status.IsValid() {
		return 0, domain.ErrInvalidStatus
	}
	if len(cmd.ProductIDs) == 0 {
		return 0, nil
	}

	var affected int64
	err := s.db.Transaction(func(tx *gorm.DB) error {
		txCtx := contextx.WithTx(ctx, tx)

		n, err := s.repo.UpdateStatusBatch(txCtx, cmd.ProductIDs, status)
		if err != nil {
			return err
		}
		affected = n

		for _, id := range cmd.ProductIDs {
			event := domain.ProductUpdatedEvent{
				ProductID: id,
				Status:    string(status),
				Timestamp: time.Now(),
			}
			if err := s.publisher.PublishInTx(ctx, tx, domain.TopicProductUpdated, id, event); err != nil {
				return err
			}
		}
		return nil
	})
	return affected, err
}

// uniqueSlug 生成唯一 slug，冲突时追加 -2, -3 等后缀；keep 为更新时自身持有的 slug
func (s *CatalogCommandService) uniqueSlug(ctx context.Context, base, keep string) (string, error) {
	if base == "" {
		base = fmt.Sprintf("product-%d", idgen.GenID())
	}
	slug := base
	for i := 2; ; i++ {
		if slug == keep {
			return slug, nil
		}
		exists, err := s.repo.ExistsBySlug(ctx, slug)
		if err != nil {
			return "", err
		}
		if !exists {
			return slug, nil
		}
		slug = fmt.Sprintf("%s-%d", base, i)
	}
}

var slugPattern = regexp.MustCompile(`[^a-z0-9]+`)

// Slugify 将名称转换为 URL slug
func Slugify(name string) string {
	slug := strings.ToLower(strings.TrimSpace(name))
	slug = slugPattern.ReplaceAllString(slug, "-")
	return strings.Trim(slug, "-")
}

func toPriceTiers(inputs []PriceTierInput) []domain.PriceTier {
	if len(inputs) == 0 {
		return nil
	}
	tiers := make([]domain.PriceTier, len(inputs))
	for i, in := range inputs {
		tiers[i] = domain.PriceTier{MinQuantity: in.MinQuantity, Price: in.Price}
	}
	return tiers
}
