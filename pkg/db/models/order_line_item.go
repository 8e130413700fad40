package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// OrderLineItem snapshots one cart entry at the moment the payment intent was
// created. PricePerKg is the intent-time price, never the current one.
type OrderLineItem struct {
	ID              uuid.UUID       `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	OrderID         uuid.UUID       `gorm:"column:order_id;type:uuid;not null"`
	ProductID       *uuid.UUID      `gorm:"column:product_id;type:uuid"`
	QuantityInGrams int             `gorm:"column:quantity_in_grams;not null"`
	PricePerKg      decimal.Decimal `gorm:"column:price_per_kg;type:numeric(10,2);not null"`
	CreatedAt       time.Time       `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt       time.Time       `gorm:"column:updated_at;autoUpdateTime"`
}
