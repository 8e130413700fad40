package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Product represents a catalog listing. Prices are per kilogram; quantities
// elsewhere in the system are grams.
type Product struct {
	ID           uuid.UUID       `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Name         string          `gorm:"column:name;not null"`
	Description  string          `gorm:"column:description;not null"`
	Category     string          `gorm:"column:category;not null"`
	PricePerKg   decimal.Decimal `gorm:"column:price_per_kg;type:numeric(10,2);not null"`
	StockInGrams *int            `gorm:"column:stock_in_grams"`
	ImageURL     *string         `gorm:"column:image_url"`
	IsActive     bool            `gorm:"column:is_active;not null;default:true"`
	CreatedAt    time.Time       `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt    time.Time       `gorm:"column:updated_at;autoUpdateTime"`
}
