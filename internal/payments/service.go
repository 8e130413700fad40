package payments

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/ducoin/boucherie-backend/internal/cart"
	"github.com/ducoin/boucherie-backend/internal/orders"
	"github.com/ducoin/boucherie-backend/pkg/db"
	"github.com/ducoin/boucherie-backend/pkg/db/models"
	"github.com/ducoin/boucherie-backend/pkg/enums"
	pkgerrors "github.com/ducoin/boucherie-backend/pkg/errors"
	"github.com/ducoin/boucherie-backend/pkg/logger"
	stripeclient "github.com/ducoin/boucherie-backend/pkg/stripe"
)

// paymentIntentConstraint is the unique index on orders.stripe_payment_intent_id.
// It is the authoritative guard against double order creation.
const paymentIntentConstraint = "idx_orders_payment_intent"

var minorUnitsPerMajor = decimal.NewFromInt(100)

// Service drives the two checkout operations: intent creation and
// post-payment reconciliation.
type Service interface {
	CreateIntent(ctx context.Context, userID uuid.UUID) (*CreateIntentResponse, error)
	Confirm(ctx context.Context, userID uuid.UUID, paymentIntentID string) (*ConfirmResponse, error)
}

type gateway interface {
	CreatePaymentIntent(ctx context.Context, amountMinor int64, currency string, metadata map[string]string) (*stripeclient.Intent, error)
	RetrievePaymentIntent(ctx context.Context, id string) (*stripeclient.Intent, error)
}

type cartService interface {
	GetCart(ctx context.Context, userID uuid.UUID) (*cart.CartDTO, error)
	Clear(ctx context.Context, userID uuid.UUID) error
}

type orderStore interface {
	Create(ctx context.Context, order *models.Order) (*models.Order, error)
	FindByPaymentIntentID(ctx context.Context, paymentIntentID string) (*models.Order, error)
}

type service struct {
	gateway  gateway
	cart     cartService
	orders   orderStore
	currency string
	logg     *logger.Logger
}

// ServiceParams bundles the dependencies required to build a payments service.
type ServiceParams struct {
	Gateway     gateway
	CartService cartService
	OrderStore  orderStore
	Currency    string
	Logger      *logger.Logger
}

// NewService constructs the checkout service.
func NewService(params ServiceParams) (Service, error) {
	if params.Gateway == nil {
		return nil, fmt.Errorf("payment gateway required")
	}
	if params.CartService == nil {
		return nil, fmt.Errorf("cart service required")
	}
	if params.OrderStore == nil {
		return nil, fmt.Errorf("order store required")
	}
	currency := strings.ToLower(strings.TrimSpace(params.Currency))
	if currency == "" {
		currency = "eur"
	}
	return &service{
		gateway:  params.Gateway,
		cart:     params.CartService,
		orders:   params.OrderStore,
		currency: currency,
		logg:     params.Logger,
	}, nil
}

// CreateIntent prices the live cart, freezes it into metadata, and asks the
// gateway for a payment intent.
func (s *service) CreateIntent(ctx context.Context, userID uuid.UUID) (*CreateIntentResponse, error) {
	current, err := s.cart.GetCart(ctx, userID)
	if err != nil {
		return nil, err
	}
	if len(current.Items) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeEmptyCart, "cart is empty")
	}

	metadata, err := EncodeMetadata(userID, current.Items)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "snapshot cart")
	}

	amountMinor := current.Total.Mul(minorUnitsPerMajor).IntPart()
	if amountMinor <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeEmptyCart, "cart total is zero")
	}

	intent, err := s.gateway.CreatePaymentIntent(ctx, amountMinor, s.currency, metadata)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create payment intent")
	}

	if s.logg != nil {
		logCtx := s.logg.WithFields(ctx, map[string]any{
			"payment_intent_id": intent.ID,
			"amount_minor":      intent.AmountMinor,
		})
		s.logg.Info(logCtx, "payments.intent_created")
	}

	return &CreateIntentResponse{
		PaymentIntentID: intent.ID,
		ClientSecret:    intent.ClientSecret,
		Amount:          current.Total,
		Currency:        s.currency,
	}, nil
}

// Confirm reconciles a settled payment intent into an order. The unique
// constraint on the intent id makes the operation idempotent: however many
// times a client retries, at most one order exists per charge, and the cart
// is cleared on every successful pass.
func (s *service) Confirm(ctx context.Context, userID uuid.UUID, paymentIntentID string) (*ConfirmResponse, error) {
	paymentIntentID = strings.TrimSpace(paymentIntentID)
	if paymentIntentID == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "payment_intent_id is required")
	}

	// Fast path: a previous confirmation already created the order.
	if existing, err := s.orders.FindByPaymentIntentID(ctx, paymentIntentID); err == nil {
		if existing.UserID != userID {
			return nil, pkgerrors.New(pkgerrors.CodeForbidden, "payment does not belong to user")
		}
		if err := s.cart.Clear(ctx, userID); err != nil {
			return nil, err
		}
		return &ConfirmResponse{Order: orders.FromModel(existing), AlreadyProcessed: true}, nil
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "lookup order")
	}

	intent, err := s.gateway.RetrievePaymentIntent(ctx, paymentIntentID)
	if err != nil {
		if errors.Is(err, stripeclient.ErrIntentNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "payment intent not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "retrieve payment intent")
	}

	if intent.Status != stripeclient.IntentStatusSucceeded {
		return nil, pkgerrors.New(pkgerrors.CodePaymentIncomplete, "payment not completed").
			WithDetails(map[string]any{"status": intent.Status})
	}

	metaUserID, snapshot, err := DecodeMetadata(intent.Metadata)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInvalidMetadata, err, "payment metadata invalid")
	}
	if metaUserID != userID {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "payment does not belong to user")
	}

	order, alreadyProcessed, err := s.persistOrder(ctx, userID, paymentIntentID, intent, snapshot)
	if err != nil {
		return nil, err
	}

	if err := s.cart.Clear(ctx, userID); err != nil {
		return nil, err
	}

	if s.logg != nil {
		logCtx := s.logg.WithFields(ctx, map[string]any{
			"payment_intent_id": paymentIntentID,
			"order_id":          order.ID.String(),
			"already_processed": alreadyProcessed,
		})
		s.logg.Info(logCtx, "payments.confirmed")
	}

	return &ConfirmResponse{Order: orders.FromModel(order), AlreadyProcessed: alreadyProcessed}, nil
}

// persistOrder creates the order from the snapshot. A unique violation on
// the intent id means another confirmation won the race; the existing order
// is returned instead.
func (s *service) persistOrder(ctx context.Context, userID uuid.UUID, paymentIntentID string, intent *stripeclient.Intent, snapshot []SnapshotItem) (*models.Order, bool, error) {
	// The settled amount reported by the gateway is authoritative, not a
	// recomputation from the snapshot.
	total := decimal.NewFromInt(intent.AmountMinor).Div(minorUnitsPerMajor).Round(2)

	currency := enums.CurrencyEUR
	if parsed, err := enums.ParseCurrency(intent.Currency); err == nil {
		currency = parsed
	}

	items := make([]models.OrderLineItem, 0, len(snapshot))
	for _, line := range snapshot {
		productID := line.ID
		grams := line.QuantityInGrams
		if grams < 1 {
			// The payment already settled; a mangled quantity must not void
			// the order line.
			grams = 1
		}
		items = append(items, models.OrderLineItem{
			ProductID:       &productID,
			QuantityInGrams: grams,
			PricePerKg:      line.PricePerKg,
		})
	}

	order := &models.Order{
		UserID:                userID,
		TotalAmount:           total,
		Currency:              currency,
		StripePaymentIntentID: paymentIntentID,
		Status:                enums.OrderStatusCompleted,
		Items:                 items,
	}

	created, err := s.orders.Create(ctx, order)
	if err == nil {
		return created, false, nil
	}

	if db.IsUniqueViolation(err, paymentIntentConstraint) {
		existing, findErr := s.orders.FindByPaymentIntentID(ctx, paymentIntentID)
		if findErr != nil {
			return nil, false, pkgerrors.Wrap(pkgerrors.CodeInternal, findErr, "load existing order")
		}
		if existing.UserID != userID {
			return nil, false, pkgerrors.New(pkgerrors.CodeForbidden, "payment does not belong to user")
		}
		return existing, true, nil
	}

	return nil, false, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "persist order")
}
