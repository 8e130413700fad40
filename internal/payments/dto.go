package payments

import (
	"github.com/shopspring/decimal"

	"github.com/ducoin/boucherie-backend/internal/orders"
)

// CreateIntentResponse carries what the storefront needs to collect payment.
type CreateIntentResponse struct {
	PaymentIntentID string          `json:"payment_intent_id"`
	ClientSecret    string          `json:"client_secret"`
	Amount          decimal.Decimal `json:"amount"`
	Currency        string          `json:"currency"`
}

// ConfirmResponse reports the order a settled payment reconciled into.
// AlreadyProcessed is true when a previous confirmation had created it.
type ConfirmResponse struct {
	Order            *orders.OrderDTO `json:"order"`
	AlreadyProcessed bool             `json:"already_processed"`
}
