package payments

import (
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/ducoin/boucherie-backend/internal/cart"
)

// Metadata keys as the storefront has always written them. Dashboards and
// any intents created by earlier deployments rely on these exact names.
const (
	metadataKeyUserID = "userId"
	metadataKeyItems  = "products"
)

// SnapshotItem is one cart line frozen into payment intent metadata. The
// field names are part of the wire contract with the gateway dashboard.
type SnapshotItem struct {
	ID              uuid.UUID       `json:"id"`
	QuantityInGrams int             `json:"quantityInGrams"`
	PricePerKg      decimal.Decimal `json:"pricePerKg"`
}

// EncodeMetadata freezes the cart into the metadata map attached to a
// payment intent. The snapshot, not the live cart, is what the order is
// later built from.
func EncodeMetadata(userID uuid.UUID, items []cart.CartItemDTO) (map[string]string, error) {
	snapshot := make([]SnapshotItem, 0, len(items))
	for _, item := range items {
		snapshot = append(snapshot, SnapshotItem{
			ID:              item.ProductID,
			QuantityInGrams: item.QuantityInGrams,
			PricePerKg:      item.PricePerKg,
		})
	}

	encoded, err := json.Marshal(snapshot)
	if err != nil {
		return nil, fmt.Errorf("encoding cart snapshot: %w", err)
	}

	return map[string]string{
		metadataKeyUserID: userID.String(),
		metadataKeyItems:  string(encoded),
	}, nil
}

// DecodeMetadata recovers the frozen cart from intent metadata.
func DecodeMetadata(metadata map[string]string) (uuid.UUID, []SnapshotItem, error) {
	rawUser, ok := metadata[metadataKeyUserID]
	if !ok || rawUser == "" {
		return uuid.Nil, nil, fmt.Errorf("metadata missing %q", metadataKeyUserID)
	}
	userID, err := uuid.Parse(rawUser)
	if err != nil {
		return uuid.Nil, nil, fmt.Errorf("metadata %q is not a uuid: %w", metadataKeyUserID, err)
	}

	rawItems, ok := metadata[metadataKeyItems]
	if !ok || rawItems == "" {
		return uuid.Nil, nil, fmt.Errorf("metadata missing %q", metadataKeyItems)
	}
	var items []SnapshotItem
	if err := json.Unmarshal([]byte(rawItems), &items); err != nil {
		return uuid.Nil, nil, fmt.Errorf("metadata %q is not valid json: %w", metadataKeyItems, err)
	}
	if len(items) == 0 {
		return uuid.Nil, nil, fmt.Errorf("metadata %q holds no items", metadataKeyItems)
	}
	// Quantities are deliberately not checked here: a degenerate value is
	// clamped when the order line is materialized, not grounds to refuse a
	// settled payment.
	for i, item := range items {
		if item.ID == uuid.Nil {
			return uuid.Nil, nil, fmt.Errorf("snapshot item %d missing product id", i)
		}
		if item.PricePerKg.Sign() <= 0 {
			return uuid.Nil, nil, fmt.Errorf("snapshot item %d has non-positive price", i)
		}
	}

	return userID, items, nil
}
