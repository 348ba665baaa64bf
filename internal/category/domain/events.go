package domain

import "time"

// 分类事件主题
const (
	TopicCategoryCreated = "category.created"
	TopicCategoryUpdated = "category.updated"
	TopicCategoryDeleted = "category.deleted"
)

// CategoryCreatedEvent 分类创建事件
type CategoryCreatedEvent struct {
	CategoryID string    `json:"category_id"`
	Name       string    `json:"name"`
	Slug       string    `json:"slug"`
	ParentID   string    `json:"parent_id,omitempty"`
	Level      int       `json:"level"`
	Timestamp  time.Time `json:"timestamp"`
}

// CategoryUpdatedEvent 分类更新事件
type CategoryUpdatedEvent struct {
	CategoryID string    `json:"category_id"`
	Name       string    `json:"name"`
	Slug       string    `json:"slug"`
	ParentID   string    `json:"parent_id,omitempty"`
	Level      int       `json:"level"`
	IsActive   bool      `json:"is_active"`
	Timestamp  time.Time `json:"timestamp"`
}

// CategoryDeletedEvent 分类删除事件
type CategoryDeletedEvent struct {
	CategoryID string    `json:"category_id"`
	Timestamp  time.Time `json:"timestamp"`
}
