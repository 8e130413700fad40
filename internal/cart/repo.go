package cart

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/ducoin/boucherie-backend/pkg/db/models"
)

// Repository exposes cart item persistence operations.
type Repository struct {
	db *gorm.DB
}

// NewRepository constructs a cart repo bound to the provided GORM DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// WithTx returns a repository bound to the provided transaction.
func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	if tx == nil {
		return r
	}
	return &Repository{db: tx}
}

// UpsertIncrement adds quantity to the user's row for this product, creating
// the row if needed. The increment happens inside a single INSERT ... ON
// CONFLICT statement so concurrent adds never lose updates.
func (r *Repository) UpsertIncrement(ctx context.Context, userID, productID uuid.UUID, grams int) error {
	item := models.CartItem{
		UserID:          userID,
		ProductID:       productID,
		QuantityInGrams: grams,
	}
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "user_id"}, {Name: "product_id"}},
			DoUpdates: clause.Assignments(map[string]any{
				"quantity_in_grams": gorm.Expr("cart_items.quantity_in_grams + EXCLUDED.quantity_in_grams"),
				"updated_at":        gorm.Expr("now()"),
			}),
		}).
		Create(&item).Error
}

// SetQuantity overwrites the stored quantity for an existing cart line and
// reports whether a row was touched.
func (r *Repository) SetQuantity(ctx context.Context, userID, productID uuid.UUID, grams int) (bool, error) {
	result := r.db.WithContext(ctx).
		Model(&models.CartItem{}).
		Where("user_id = ? AND product_id = ?", userID, productID).
		Update("quantity_in_grams", grams)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

// Delete removes one cart line and reports whether a row was touched.
func (r *Repository) Delete(ctx context.Context, userID, productID uuid.UUID) (bool, error) {
	result := r.db.WithContext(ctx).
		Where("user_id = ? AND product_id = ?", userID, productID).
		Delete(&models.CartItem{})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

// DeleteAll clears every cart line for the user.
func (r *Repository) DeleteAll(ctx context.Context, userID uuid.UUID) error {
	return r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Delete(&models.CartItem{}).Error
}

// ListByUser returns the user's cart lines, oldest first.
func (r *Repository) ListByUser(ctx context.Context, userID uuid.UUID) ([]models.CartItem, error) {
	var items []models.CartItem
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at ASC").
		Find(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}
