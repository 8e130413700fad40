package payments

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/ducoin/boucherie-backend/internal/cart"
	"github.com/ducoin/boucherie-backend/pkg/db/models"
	"github.com/ducoin/boucherie-backend/pkg/enums"
	pkgerrors "github.com/ducoin/boucherie-backend/pkg/errors"
	stripeclient "github.com/ducoin/boucherie-backend/pkg/stripe"
)

func TestCreateIntentEmptyCart(t *testing.T) {
	t.Parallel()

	svc := newTestPaymentService(&stubGateway{}, &stubCart{dto: cart.EmptyCart()}, &stubOrderStore{})
	_, err := svc.CreateIntent(context.Background(), uuid.New())
	if err == nil {
		t.Fatal("expected error for empty cart")
	}
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeEmptyCart {
		t.Fatalf("unexpected error code: %v", err)
	}
}

func TestCreateIntentSnapshotsCart(t *testing.T) {
	t.Parallel()

	userID := uuid.New()
	gw := &stubGateway{created: &stripeclient.Intent{
		ID:           "pi_123",
		ClientSecret: "pi_123_secret",
		AmountMinor:  3000,
		Currency:     "eur",
	}}
	svc := newTestPaymentService(gw, &stubCart{dto: cartWithTotal(userID, "30.00")}, &stubOrderStore{})

	got, err := svc.CreateIntent(context.Background(), userID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.PaymentIntentID != "pi_123" || got.ClientSecret != "pi_123_secret" {
		t.Fatalf("unexpected response: %+v", got)
	}
	if gw.createdAmount != 3000 {
		t.Fatalf("expected 3000 minor units, got %d", gw.createdAmount)
	}
	if gw.createdMetadata["userId"] != userID.String() {
		t.Fatalf("expected user id in metadata, got %q", gw.createdMetadata["userId"])
	}
	if gw.createdMetadata["products"] == "" {
		t.Fatal("expected cart snapshot in metadata")
	}
}

func TestConfirmFastPathClearsCart(t *testing.T) {
	t.Parallel()

	userID := uuid.New()
	existing := &models.Order{ID: uuid.New(), UserID: userID, StripePaymentIntentID: "pi_dup", Status: enums.OrderStatusCompleted}
	cartSvc := &stubCart{dto: cart.EmptyCart()}
	gw := &stubGateway{}
	svc := newTestPaymentService(gw, cartSvc, &stubOrderStore{existing: existing})

	got, err := svc.Confirm(context.Background(), userID, "pi_dup")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !got.AlreadyProcessed {
		t.Fatal("expected already_processed")
	}
	if got.Order == nil || got.Order.ID != existing.ID {
		t.Fatalf("expected existing order, got %+v", got.Order)
	}
	if cartSvc.clears != 1 {
		t.Fatalf("expected cart cleared once, got %d", cartSvc.clears)
	}
	if gw.retrieves != 0 {
		t.Fatalf("expected no gateway call on fast path, got %d", gw.retrieves)
	}
}

func TestConfirmFastPathForeignOrder(t *testing.T) {
	t.Parallel()

	existing := &models.Order{ID: uuid.New(), UserID: uuid.New(), StripePaymentIntentID: "pi_theft"}
	svc := newTestPaymentService(&stubGateway{}, &stubCart{dto: cart.EmptyCart()}, &stubOrderStore{existing: existing})

	_, err := svc.Confirm(context.Background(), uuid.New(), "pi_theft")
	if err == nil {
		t.Fatal("expected forbidden error")
	}
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeForbidden {
		t.Fatalf("unexpected error code: %v", err)
	}
}

func TestConfirmIntentNotFound(t *testing.T) {
	t.Parallel()

	svc := newTestPaymentService(&stubGateway{retrieveErr: stripeclient.ErrIntentNotFound}, &stubCart{dto: cart.EmptyCart()}, &stubOrderStore{})
	_, err := svc.Confirm(context.Background(), uuid.New(), "pi_missing")
	if err == nil {
		t.Fatal("expected not found error")
	}
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("unexpected error code: %v", err)
	}
}

func TestConfirmIncompletePaymentHasNoSideEffects(t *testing.T) {
	t.Parallel()

	userID := uuid.New()
	gw := &stubGateway{retrieved: &stripeclient.Intent{ID: "pi_wait", Status: "requires_payment_method"}}
	cartSvc := &stubCart{dto: cart.EmptyCart()}
	store := &stubOrderStore{}
	svc := newTestPaymentService(gw, cartSvc, store)

	_, err := svc.Confirm(context.Background(), userID, "pi_wait")
	if err == nil {
		t.Fatal("expected payment incomplete error")
	}
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodePaymentIncomplete {
		t.Fatalf("unexpected error code: %v", err)
	}
	if store.creates != 0 {
		t.Fatalf("expected no order created, got %d", store.creates)
	}
	if cartSvc.clears != 0 {
		t.Fatalf("expected cart untouched, got %d clears", cartSvc.clears)
	}
}

func TestConfirmInvalidMetadata(t *testing.T) {
	t.Parallel()

	gw := &stubGateway{retrieved: &stripeclient.Intent{
		ID:       "pi_bad",
		Status:   stripeclient.IntentStatusSucceeded,
		Metadata: map[string]string{"userId": "not-a-uuid"},
	}}
	svc := newTestPaymentService(gw, &stubCart{dto: cart.EmptyCart()}, &stubOrderStore{})

	_, err := svc.Confirm(context.Background(), uuid.New(), "pi_bad")
	if err == nil {
		t.Fatal("expected metadata error")
	}
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeInvalidMetadata {
		t.Fatalf("unexpected error code: %v", err)
	}
}

func TestConfirmUserMismatch(t *testing.T) {
	t.Parallel()

	gw := &stubGateway{retrieved: succeededIntent(uuid.New(), 3000)}
	svc := newTestPaymentService(gw, &stubCart{dto: cart.EmptyCart()}, &stubOrderStore{})

	_, err := svc.Confirm(context.Background(), uuid.New(), "pi_other")
	if err == nil {
		t.Fatal("expected forbidden error")
	}
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeForbidden {
		t.Fatalf("unexpected error code: %v", err)
	}
}

func TestConfirmCreatesOrderFromSettledAmount(t *testing.T) {
	t.Parallel()

	userID := uuid.New()
	// 3150 minor units even though the snapshot prices to 30.00: the
	// gateway's settled figure wins.
	gw := &stubGateway{retrieved: succeededIntent(userID, 3150)}
	cartSvc := &stubCart{dto: cart.EmptyCart()}
	store := &stubOrderStore{}
	svc := newTestPaymentService(gw, cartSvc, store)

	got, err := svc.Confirm(context.Background(), userID, "pi_ok")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.AlreadyProcessed {
		t.Fatal("expected fresh order")
	}
	if store.creates != 1 {
		t.Fatalf("expected one create, got %d", store.creates)
	}
	if !store.lastCreated.TotalAmount.Equal(decimal.RequireFromString("31.5")) {
		t.Fatalf("expected total 31.50, got %s", store.lastCreated.TotalAmount)
	}
	if store.lastCreated.Status != enums.OrderStatusCompleted {
		t.Fatalf("expected completed status, got %s", store.lastCreated.Status)
	}
	if len(store.lastCreated.Items) != 1 {
		t.Fatalf("expected one line item, got %d", len(store.lastCreated.Items))
	}
	if cartSvc.clears != 1 {
		t.Fatalf("expected cart cleared, got %d", cartSvc.clears)
	}
}

func TestConfirmClampsZeroQuantityLine(t *testing.T) {
	t.Parallel()

	userID := uuid.New()
	metadata, err := EncodeMetadata(userID, []cart.CartItemDTO{{
		ProductID:       uuid.New(),
		PricePerKg:      decimal.RequireFromString("20.00"),
		QuantityInGrams: 0,
	}})
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	gw := &stubGateway{retrieved: &stripeclient.Intent{
		ID:          "pi_clamp",
		Status:      stripeclient.IntentStatusSucceeded,
		AmountMinor: 2000,
		Currency:    "eur",
		Metadata:    metadata,
	}}
	store := &stubOrderStore{}
	svc := newTestPaymentService(gw, &stubCart{dto: cart.EmptyCart()}, store)

	got, err := svc.Confirm(context.Background(), userID, "pi_clamp")
	if err != nil {
		t.Fatalf("a settled payment with a mangled quantity must confirm, got %v", err)
	}
	if got.Order == nil {
		t.Fatal("expected order")
	}
	if len(store.lastCreated.Items) != 1 {
		t.Fatalf("expected one line item, got %d", len(store.lastCreated.Items))
	}
	if store.lastCreated.Items[0].QuantityInGrams != 1 {
		t.Fatalf("expected quantity clamped to 1, got %d", store.lastCreated.Items[0].QuantityInGrams)
	}
}

func TestConfirmUniqueViolationFallsBackToExisting(t *testing.T) {
	t.Parallel()

	userID := uuid.New()
	existing := &models.Order{ID: uuid.New(), UserID: userID, StripePaymentIntentID: "pi_race"}
	store := &stubOrderStore{
		createErr: &pgconn.PgError{Code: "23505", ConstraintName: paymentIntentConstraint},
		raceOrder: existing,
	}
	gw := &stubGateway{retrieved: succeededIntent(userID, 3000)}
	svc := newTestPaymentService(gw, &stubCart{dto: cart.EmptyCart()}, store)

	got, err := svc.Confirm(context.Background(), userID, "pi_race")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !got.AlreadyProcessed {
		t.Fatal("expected already_processed after losing the race")
	}
	if got.Order == nil || got.Order.ID != existing.ID {
		t.Fatalf("expected existing order, got %+v", got.Order)
	}
}

func succeededIntent(userID uuid.UUID, amountMinor int64) *stripeclient.Intent {
	metadata, err := EncodeMetadata(userID, []cart.CartItemDTO{{
		ProductID:       uuid.New(),
		PricePerKg:      decimal.RequireFromString("20.00"),
		QuantityInGrams: 1500,
	}})
	if err != nil {
		panic(err)
	}
	return &stripeclient.Intent{
		ID:          "pi_test",
		Status:      stripeclient.IntentStatusSucceeded,
		AmountMinor: amountMinor,
		Currency:    "eur",
		Metadata:    metadata,
	}
}

func cartWithTotal(userID uuid.UUID, total string) *cart.CartDTO {
	amount := decimal.RequireFromString(total)
	return &cart.CartDTO{
		Items: []cart.CartItemDTO{{
			ProductID:       uuid.New(),
			Name:            "Entrecote",
			PricePerKg:      decimal.RequireFromString("20.00"),
			QuantityInGrams: 1500,
			Subtotal:        amount,
		}},
		Total: amount,
	}
}

func newTestPaymentService(gw gateway, cartSvc cartService, store orderStore) Service {
	svc, err := NewService(ServiceParams{
		Gateway:     gw,
		CartService: cartSvc,
		OrderStore:  store,
		Currency:    "eur",
	})
	if err != nil {
		panic(err)
	}
	return svc
}

type stubGateway struct {
	created         *stripeclient.Intent
	createdAmount   int64
	createdMetadata map[string]string
	retrieved       *stripeclient.Intent
	retrieveErr     error
	retrieves       int
}

func (s *stubGateway) CreatePaymentIntent(ctx context.Context, amountMinor int64, currency string, metadata map[string]string) (*stripeclient.Intent, error) {
	s.createdAmount = amountMinor
	s.createdMetadata = metadata
	return s.created, nil
}

func (s *stubGateway) RetrievePaymentIntent(ctx context.Context, id string) (*stripeclient.Intent, error) {
	s.retrieves++
	if s.retrieveErr != nil {
		return nil, s.retrieveErr
	}
	return s.retrieved, nil
}

type stubCart struct {
	dto    *cart.CartDTO
	clears int
}

func (s *stubCart) GetCart(ctx context.Context, userID uuid.UUID) (*cart.CartDTO, error) {
	return s.dto, nil
}

func (s *stubCart) Clear(ctx context.Context, userID uuid.UUID) error {
	s.clears++
	return nil
}

type stubOrderStore struct {
	existing    *models.Order
	createErr   error
	raceOrder   *models.Order
	raceVisible bool
	creates     int
	lastCreated *models.Order
}

func (s *stubOrderStore) Create(ctx context.Context, order *models.Order) (*models.Order, error) {
	if s.createErr != nil {
		// The racing confirmation's row is only visible once this insert
		// has collided with it.
		s.raceVisible = true
		return nil, s.createErr
	}
	s.creates++
	if order.ID == uuid.Nil {
		order.ID = uuid.New()
	}
	s.lastCreated = order
	return order, nil
}

func (s *stubOrderStore) FindByPaymentIntentID(ctx context.Context, paymentIntentID string) (*models.Order, error) {
	if s.existing != nil && s.existing.StripePaymentIntentID == paymentIntentID {
		return s.existing, nil
	}
	if s.raceVisible && s.raceOrder != nil && s.raceOrder.StripePaymentIntentID == paymentIntentID {
		return s.raceOrder, nil
	}
	return nil, gorm.ErrRecordNotFound
}
