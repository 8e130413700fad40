package cart

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CartItemDTO is one enriched cart line: stored quantity plus the product's
// current catalog data and the derived subtotal.
type CartItemDTO struct {
	ProductID       uuid.UUID       `json:"product_id"`
	Name            string          `json:"name"`
	Category        string          `json:"category"`
	PricePerKg      decimal.Decimal `json:"price_per_kg"`
	QuantityInGrams int             `json:"quantity_in_grams"`
	Subtotal        decimal.Decimal `json:"subtotal"`
	ImageURL        *string         `json:"image_url,omitempty"`
}

// CartDTO is the full enriched cart returned to clients.
type CartDTO struct {
	Items []CartItemDTO   `json:"items"`
	Total decimal.Decimal `json:"total"`
}

// EmptyCart returns a cart with a zero total and no items.
func EmptyCart() *CartDTO {
	return &CartDTO{
		Items: []CartItemDTO{},
		Total: decimal.Zero,
	}
}
