package controllers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	cartsvc "github.com/ducoin/boucherie-backend/internal/cart"
)

type stubCartService struct {
	dto       *cartsvc.CartDTO
	added     int
	updated   int
	removed   int
	cleared   int
	lastGrams int
}

func (s *stubCartService) GetCart(ctx context.Context, userID uuid.UUID) (*cartsvc.CartDTO, error) {
	return s.dto, nil
}

func (s *stubCartService) AddItem(ctx context.Context, userID, productID uuid.UUID, grams int) (*cartsvc.CartDTO, error) {
	s.added++
	s.lastGrams = grams
	return s.dto, nil
}

func (s *stubCartService) UpdateItem(ctx context.Context, userID, productID uuid.UUID, grams int) (*cartsvc.CartDTO, error) {
	s.updated++
	s.lastGrams = grams
	return s.dto, nil
}

func (s *stubCartService) RemoveItem(ctx context.Context, userID, productID uuid.UUID) (*cartsvc.CartDTO, error) {
	s.removed++
	return s.dto, nil
}

func (s *stubCartService) Clear(ctx context.Context, userID uuid.UUID) error {
	s.cleared++
	return nil
}

func sampleCart() *cartsvc.CartDTO {
	return &cartsvc.CartDTO{
		Items: []cartsvc.CartItemDTO{{
			ProductID:       uuid.New(),
			Name:            "Entrecote",
			PricePerKg:      decimal.RequireFromString("20.00"),
			QuantityInGrams: 1500,
			Subtotal:        decimal.RequireFromString("30.00"),
		}},
		Total: decimal.RequireFromString("30.00"),
	}
}

func TestCartFetch(t *testing.T) {
	t.Parallel()

	svc := &stubCartService{dto: sampleCart()}
	rec := httptest.NewRecorder()
	CartFetch(svc, testControllerLogger()).ServeHTTP(rec, authedRequest(http.MethodGet, "/api/v1/cart", ""))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var payload struct {
		Data cartsvc.CartDTO `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &payload); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(payload.Data.Items) != 1 {
		t.Fatalf("expected one line, got %d", len(payload.Data.Items))
	}
}

func TestCartAdd(t *testing.T) {
	t.Parallel()

	svc := &stubCartService{dto: sampleCart()}
	rec := httptest.NewRecorder()
	body := `{"product_id":"` + uuid.NewString() + `","quantity_in_grams":500}`
	CartAdd(svc, testControllerLogger()).ServeHTTP(rec, authedRequest(http.MethodPost, "/api/v1/cart", body))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if svc.added != 1 || svc.lastGrams != 500 {
		t.Fatalf("expected add with 500g, got added=%d grams=%d", svc.added, svc.lastGrams)
	}
}

func TestCartAddRejectsMalformedBody(t *testing.T) {
	t.Parallel()

	svc := &stubCartService{dto: sampleCart()}
	rec := httptest.NewRecorder()
	CartAdd(svc, testControllerLogger()).ServeHTTP(rec, authedRequest(http.MethodPost, "/api/v1/cart", `{"product_id":"x"}`))

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
	if svc.added != 0 {
		t.Fatal("expected no add on invalid body")
	}
}

func TestCartRemoveSingleLine(t *testing.T) {
	t.Parallel()

	svc := &stubCartService{dto: sampleCart()}
	rec := httptest.NewRecorder()
	body := `{"product_id":"` + uuid.NewString() + `"}`
	CartRemove(svc, testControllerLogger()).ServeHTTP(rec, authedRequest(http.MethodDelete, "/api/v1/cart", body))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if svc.removed != 1 || svc.cleared != 0 {
		t.Fatalf("expected single removal, got removed=%d cleared=%d", svc.removed, svc.cleared)
	}
}

func TestCartRemoveWithoutBodyClearsAll(t *testing.T) {
	t.Parallel()

	svc := &stubCartService{dto: sampleCart()}
	rec := httptest.NewRecorder()
	CartRemove(svc, testControllerLogger()).ServeHTTP(rec, authedRequest(http.MethodDelete, "/api/v1/cart", ""))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if svc.cleared != 1 || svc.removed != 0 {
		t.Fatalf("expected clear-all, got removed=%d cleared=%d", svc.removed, svc.cleared)
	}
	var payload struct {
		Data cartsvc.CartDTO `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &payload); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(payload.Data.Items) != 0 {
		t.Fatalf("expected empty cart echo, got %d items", len(payload.Data.Items))
	}
}
