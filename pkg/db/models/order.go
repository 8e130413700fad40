package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/ducoin/boucherie-backend/pkg/enums"
)

// Order is the immutable record materialized from a settled payment intent.
// StripePaymentIntentID carries a unique constraint; it is the idempotency
// gate that guarantees at most one order per external charge.
type Order struct {
	ID                    uuid.UUID         `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	UserID                uuid.UUID         `gorm:"column:user_id;type:uuid;not null;index"`
	TotalAmount           decimal.Decimal   `gorm:"column:total_amount;type:numeric(12,2);not null"`
	Currency              enums.Currency    `gorm:"column:currency;type:text;not null;default:'EUR'"`
	StripePaymentIntentID string            `gorm:"column:stripe_payment_intent_id;not null;uniqueIndex:idx_orders_payment_intent"`
	Status                enums.OrderStatus `gorm:"column:status;type:text;not null;default:'completed'"`
	Items                 []OrderLineItem   `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
	CreatedAt             time.Time         `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt             time.Time         `gorm:"column:updated_at;autoUpdateTime"`
}
