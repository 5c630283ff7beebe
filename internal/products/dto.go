package products

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/auradecor/storefront-backend/pkg/db/models"
	"github.com/auradecor/storefront-backend/pkg/types"
)

// ProductDTO is the full transport shape for a catalog listing.
type ProductDTO struct {
	ID             uuid.UUID           `json:"id"`
	Name           string              `json:"name"`
	Slug           string              `json:"slug"`
	Description    *string             `json:"description,omitempty"`
	Category       string              `json:"category"`
	Tags           []string            `json:"tags"`
	Images         types.ProductImages `json:"images"`
	Price          decimal.Decimal     `json:"price"`
	CompareAtPrice *decimal.Decimal    `json:"compare_at_price,omitempty"`
	StockQuantity  int                 `json:"stock_quantity"`
	InStock        bool                `json:"in_stock"`
	IsActive       bool                `json:"is_active"`
	IsFeatured     bool                `json:"is_featured"`
	CreatedAt      time.Time           `json:"created_at"`
	UpdatedAt      time.Time           `json:"updated_at"`
}

// ProductSummary is the reduced shape returned by list endpoints.
type ProductSummary struct {
	ID             uuid.UUID        `json:"id"`
	Name           string           `json:"name"`
	Slug           string           `json:"slug"`
	Category       string           `json:"category"`
	Price          decimal.Decimal  `json:"price"`
	CompareAtPrice *decimal.Decimal `json:"compare_at_price,omitempty"`
	PrimaryImage   *string          `json:"primary_image,omitempty"`
	InStock        bool             `json:"in_stock"`
	IsFeatured     bool             `json:"is_featured"`
	CreatedAt      time.Time        `json:"created_at"`
}

// ProductListFilters narrows the catalog listing.
type ProductListFilters struct {
	Category        *string
	Tag             *string
	PriceMin        *decimal.Decimal
	PriceMax        *decimal.Decimal
	Query           string
	FeaturedOnly    bool
	IncludeInactive bool
}

// ProductListResult bundles a page of summaries with the continuation cursor.
type ProductListResult struct {
	Products   []ProductSummary `json:"products"`
	NextCursor string           `json:"next_cursor,omitempty"`
}

// FromModel maps the persisted product onto the transport DTO.
func FromModel(p *models.Product) *ProductDTO {
	if p == nil {
		return nil
	}
	return &ProductDTO{
		ID:             p.ID,
		Name:           p.Name,
		Slug:           p.Slug,
		Description:    p.Description,
		Category:       p.Category,
		Tags:           append([]string(nil), p.Tags...),
		Images:         p.Images,
		Price:          p.Price,
		CompareAtPrice: p.CompareAtPrice,
		StockQuantity:  p.StockQuantity,
		InStock:        p.StockQuantity > 0,
		IsActive:       p.IsActive,
		IsFeatured:     p.IsFeatured,
		CreatedAt:      p.CreatedAt,
		UpdatedAt:      p.UpdatedAt,
	}
}

// SummaryFromModel maps a product row to its list shape.
func SummaryFromModel(p *models.Product) ProductSummary {
	var primary *string
	if len(p.Images) > 0 {
		url := p.Images[0].URL
		primary = &url
	}
	return ProductSummary{
		ID:             p.ID,
		Name:           p.Name,
		Slug:           p.Slug,
		Category:       p.Category,
		Price:          p.Price,
		CompareAtPrice: p.CompareAtPrice,
		PrimaryImage:   primary,
		InStock:        p.StockQuantity > 0,
		IsFeatured:     p.IsFeatured,
		CreatedAt:      p.CreatedAt,
	}
}
