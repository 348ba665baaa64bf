package application

import "github.com/wyfcoding/storefront/internal/catalog/domain"

// PriceTierDTO 批量价格档位
type PriceTierDTO struct {
	MinQuantity int    `json:"min_quantity"`
	Price       string `json:"price"`
}

// ProductDTO 商品数据传输对象
type ProductDTO struct {
	ProductID         string         `json:"product_id"`
	SKU               string         `json:"sku"`
	Slug              string         `json:"slug"`
	Name              string         `json:"name"`
	Description       string         `json:"description,omitempty"`
	ShortDescription  string         `json:"short_description,omitempty"`
	CategoryID        string         `json:"category_id,omitempty"`
	Manufacturer      string         `json:"manufacturer,omitempty"`
	Origin            string         `json:"origin,omitempty"`
	Price             string         `json:"price"`
	PriceTiers        []PriceTierDTO `json:"price_tiers,omitempty"`
	Stock             int            `json:"stock"`
	LowStockThreshold int            `json:"low_stock_threshold"`
	LowStock          bool           `json:"low_stock"`
	Unit              string         `json:"unit,omitempty"`
	MinOrderQuantity  int            `json:"min_order_quantity"`
	Thumbnail         string         `json:"thumbnail,omitempty"`
	Images            []string       `json:"images,omitempty"`
	Status            string         `json:"status"`
	IsFeatured        bool           `json:"is_featured"`
	ViewCount         int64          `json:"view_count"`
	SoldCount         int64          `json:"sold_count"`
	CreatedAt         int64          `json:"created_at"`
	UpdatedAt         int64          `json:"updated_at"`
}

// ProductListDTO 商品分页结果
type ProductListDTO struct {
	Items    []*ProductDTO `json:"items"`
	Total    int64         `json:"total"`
	Page     int           `json:"page"`
	PageSize int           `json:"page_size"`
}

func toProductDTO(p *domain.Product) *ProductDTO {
	tiers := make([]PriceTierDTO, 0, len(p.PriceTiers))
	for _, t := range p.PriceTiers {
		tiers = append(tiers, PriceTierDTO{MinQuantity: t.MinQuantity, Price: t.Price.String()})
	}
	return &ProductDTO{
		ProductID:         p.ProductID,
		SKU:               p.SKU,
		Slug:              p.Slug,
		Name:              p.Name,
		Description:       p.Description,
		ShortDescription:  p.ShortDescription,
		CategoryID:        p.CategoryID,
		Manufacturer:      p.Manufacturer,
		Origin:            p.Origin,
		Price:             p.Price.String(),
		PriceTiers:        tiers,
		Stock:             p.Stock,
		LowStockThreshold: p.LowStockThreshold,
		LowStock:          p.IsLowStock(),
		Unit:              p.Unit,
		MinOrderQuantity:  p.MinOrderQuantity,
		Thumbnail:         p.Thumbnail,
		Images:            p.Images,
		Status:            string(p.Status),
		IsFeatured:        p.IsFeatured,
		ViewCount:         p.ViewCount,
		SoldCount:         p.SoldCount,
		CreatedAt:         p.CreatedAt.Unix(),
		UpdatedAt:         p.UpdatedAt.Unix(),
	}
}

func toProductDTOs(products []*domain.Product) []*ProductDTO {
	dtos := make([]*ProductDTO, len(products))
	for i, p := range products {
		dtos[i] = toProductDTO(p)
	}
	return dtos
}
