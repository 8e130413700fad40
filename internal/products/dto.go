package products

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/ducoin/boucherie-backend/pkg/db/models"
)

// ProductDTO is the catalog entry shape returned to clients.
type ProductDTO struct {
	ID           uuid.UUID       `json:"id"`
	Name         string          `json:"name"`
	Description  string          `json:"description"`
	Category     string          `json:"category"`
	PricePerKg   decimal.Decimal `json:"price_per_kg"`
	StockInGrams *int            `json:"stock_in_grams,omitempty"`
	ImageURL     *string         `json:"image_url,omitempty"`
	IsActive     bool            `json:"is_active"`
	CreatedAt    time.Time       `json:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at"`
}

// CreateProductInput holds the validated payload to create a catalog entry.
type CreateProductInput struct {
	Name         string
	Description  string
	Category     string
	PricePerKg   decimal.Decimal
	StockInGrams *int
	ImageURL     *string
	IsActive     *bool
}

// UpdateProductInput holds optional mutation values for a catalog entry.
type UpdateProductInput struct {
	Name         *string
	Description  *string
	Category     *string
	PricePerKg   *decimal.Decimal
	StockInGrams *int
	ImageURL     *string
	IsActive     *bool
}

// ListProductsInput captures catalog read filters.
type ListProductsInput struct {
	Category        string
	IncludeInactive bool
}

func FromModel(p *models.Product) *ProductDTO {
	if p == nil {
		return nil
	}
	return &ProductDTO{
		ID:           p.ID,
		Name:         p.Name,
		Description:  p.Description,
		Category:     p.Category,
		PricePerKg:   p.PricePerKg,
		StockInGrams: p.StockInGrams,
		ImageURL:     p.ImageURL,
		IsActive:     p.IsActive,
		CreatedAt:    p.CreatedAt,
		UpdatedAt:    p.UpdatedAt,
	}
}

func FromModels(list []models.Product) []ProductDTO {
	out := make([]ProductDTO, 0, len(list))
	for i := range list {
		out = append(out, *FromModel(&list[i]))
	}
	return out
}
