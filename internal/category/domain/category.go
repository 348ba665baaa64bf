package domain

import "gorm.io/gorm"

// MaxDepth 分类树最大层级（根为 0）
const MaxDepth = 3

// Category 商品分类
type Category struct {
	gorm.Model
	CategoryID      string `gorm:"column:category_id;type:varchar(36);uniqueIndex;not null"`
	Name            string `gorm:"column:name;type:varchar(255);not null"`
	Slug            string `gorm:"column:slug;type:varchar(255);uniqueIndex;not null"`
	Description     string `gorm:"column:description;type:text"`
	ParentID        string `gorm:"column:parent_id;type:varchar(36);index"`
	Level           int    `gorm:"column:level;not null;default:0"`
	IsActive        bool   `gorm:"column:is_active;index;default:true"`
	SortOrder       int    `gorm:"column:sort_order;not null;default:0"`
	Image           string `gorm:"column:image;type:varchar(500)"`
	MetaTitle       string `gorm:"column:meta_title;type:varchar(255)"`
	MetaDescription string `gorm:"column:meta_description;type:varchar(500)"`
	MetaKeywords    string `gorm:"column:meta_keywords;type:varchar(255)"`
}

func (Category) TableName() string { return "categories" }

// IsRoot 是否为根分类
func (c *Category) IsRoot() bool {
	return c.ParentID == ""
}
