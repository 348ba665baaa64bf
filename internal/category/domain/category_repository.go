package domain

import "context"

// ListCategoriesQuery 分类列表查询条件
type ListCategoriesQuery struct {
	ParentID   *string
	ActiveOnly bool
	Page       int
	PageSize   int
}

// CategoryRepository 分类仓储接口
type CategoryRepository interface {
	Save(ctx context.Context, category *Category) error
	// GetByCategoryID 按业务主键查询，未找到返回 nil, nil
	GetByCategoryID(ctx context.Context, categoryID string) (*Category, error)
	GetBySlug(ctx context.Context, slug string) (*Category, error)
	ExistsBySlug(ctx context.Context, slug string) (bool, error)
	// ListAll 全量加载，用于构建分类树
	ListAll(ctx context.Context) ([]*Category, error)
	List(ctx context.Context, query ListCategoriesQuery) ([]*Category, int64, error)
	ListChildren(ctx context.Context, parentID string) ([]*Category, error)
	HasChildren(ctx context.Context, categoryID string) (bool, error)
	Delete(ctx context.Context, categoryID string) error
}

// EventPublisher 分类事件发布接口
type EventPublisher interface {
	Publish(ctx context.Context, topic string, key string, event any) error
	PublishInTx(ctx context.Context, tx any, topic string, key string, event any) error
}

// ProductCounter 商品计数端口，由商品目录上下文提供实现
type ProductCounter interface {
	CountByCategory(ctx context.Context, categoryID string) (int64, error)
}
