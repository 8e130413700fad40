package models

import (
	"time"

	"github.com/google/uuid"
)

// CartItem is one (product, quantity) pairing held for a user before
// checkout. The (user_id, product_id) pair is unique so concurrent adds for
// the same product merge into a single row via an atomic upsert.
type CartItem struct {
	ID              uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	UserID          uuid.UUID `gorm:"column:user_id;type:uuid;not null;uniqueIndex:idx_cart_items_user_product"`
	ProductID       uuid.UUID `gorm:"column:product_id;type:uuid;not null;uniqueIndex:idx_cart_items_user_product"`
	QuantityInGrams int       `gorm:"column:quantity_in_grams;not null"`
	CreatedAt       time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt       time.Time `gorm:"column:updated_at;autoUpdateTime"`
}
