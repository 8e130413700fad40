package orders

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/ducoin/boucherie-backend/pkg/db/models"
	"github.com/ducoin/boucherie-backend/pkg/enums"
)

// LineItemDTO is one snapshot line of a settled order.
type LineItemDTO struct {
	ProductID       *uuid.UUID      `json:"product_id,omitempty"`
	QuantityInGrams int             `json:"quantity_in_grams"`
	PricePerKg      decimal.Decimal `json:"price_per_kg"`
	Subtotal        decimal.Decimal `json:"subtotal"`
}

// OrderDTO is the transport shape of a persisted order.
type OrderDTO struct {
	ID                    uuid.UUID         `json:"id"`
	TotalAmount           decimal.Decimal   `json:"total_amount"`
	Currency              enums.Currency    `json:"currency"`
	Status                enums.OrderStatus `json:"status"`
	StripePaymentIntentID string            `json:"stripe_payment_intent_id"`
	Items                 []LineItemDTO     `json:"items"`
	CreatedAt             time.Time         `json:"created_at"`
}

var gramsPerKg = decimal.NewFromInt(1000)

func FromModel(o *models.Order) *OrderDTO {
	if o == nil {
		return nil
	}

	items := make([]LineItemDTO, 0, len(o.Items))
	for _, item := range o.Items {
		subtotal := item.PricePerKg.
			Mul(decimal.NewFromInt(int64(item.QuantityInGrams))).
			Div(gramsPerKg).
			Round(2)
		items = append(items, LineItemDTO{
			ProductID:       item.ProductID,
			QuantityInGrams: item.QuantityInGrams,
			PricePerKg:      item.PricePerKg,
			Subtotal:        subtotal,
		})
	}

	return &OrderDTO{
		ID:                    o.ID,
		TotalAmount:           o.TotalAmount,
		Currency:              o.Currency,
		Status:                o.Status,
		StripePaymentIntentID: o.StripePaymentIntentID,
		Items:                 items,
		CreatedAt:             o.CreatedAt,
	}
}
