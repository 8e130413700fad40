package controllers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	productsvc "github.com/ducoin/boucherie-backend/internal/products"
	pkgerrors "github.com/ducoin/boucherie-backend/pkg/errors"
)

type stubProductService struct {
	listInput   *productsvc.ListProductsInput
	createInput *productsvc.CreateProductInput
	updateInput *productsvc.UpdateProductInput
	deletedID   uuid.UUID
	getErr      error
	product     *productsvc.ProductDTO
	list        []productsvc.ProductDTO
}

func (s *stubProductService) ListProducts(ctx context.Context, input productsvc.ListProductsInput) ([]productsvc.ProductDTO, error) {
	s.listInput = &input
	return s.list, nil
}

func (s *stubProductService) GetProduct(ctx context.Context, id uuid.UUID) (*productsvc.ProductDTO, error) {
	if s.getErr != nil {
		return nil, s.getErr
	}
	return s.product, nil
}

func (s *stubProductService) CreateProduct(ctx context.Context, input productsvc.CreateProductInput) (*productsvc.ProductDTO, error) {
	s.createInput = &input
	return s.product, nil
}

func (s *stubProductService) UpdateProduct(ctx context.Context, id uuid.UUID, input productsvc.UpdateProductInput) (*productsvc.ProductDTO, error) {
	s.updateInput = &input
	return s.product, nil
}

func (s *stubProductService) DeleteProduct(ctx context.Context, id uuid.UUID) error {
	s.deletedID = id
	return nil
}

func requestWithProductID(method, url, body, productID string) *http.Request {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, url, nil)
	} else {
		req = httptest.NewRequest(method, url, strings.NewReader(body))
	}
	routeCtx := chi.NewRouteContext()
	routeCtx.URLParams.Add("productId", productID)
	return req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, routeCtx))
}

func sampleProduct() *productsvc.ProductDTO {
	return &productsvc.ProductDTO{
		ID:         uuid.New(),
		Name:       "Cote de boeuf",
		Category:   "beef",
		PricePerKg: decimal.RequireFromString("34.90"),
		IsActive:   true,
	}
}

func TestProductListForwardsCategoryFilter(t *testing.T) {
	t.Parallel()

	svc := &stubProductService{list: []productsvc.ProductDTO{*sampleProduct()}}
	rec := httptest.NewRecorder()
	ProductList(svc, testControllerLogger()).ServeHTTP(rec,
		httptest.NewRequest(http.MethodGet, "/api/v1/products?category=beef", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if svc.listInput == nil || svc.listInput.Category != "beef" {
		t.Fatalf("expected category filter forwarded, got %+v", svc.listInput)
	}
	var payload struct {
		Data struct {
			Products []productsvc.ProductDTO `json:"products"`
		} `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &payload); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(payload.Data.Products) != 1 {
		t.Fatalf("expected one product, got %d", len(payload.Data.Products))
	}
}

func TestProductDetail(t *testing.T) {
	t.Parallel()

	product := sampleProduct()
	svc := &stubProductService{product: product}
	rec := httptest.NewRecorder()
	ProductDetail(svc, testControllerLogger()).ServeHTTP(rec,
		requestWithProductID(http.MethodGet, "/api/v1/products/"+product.ID.String(), "", product.ID.String()))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var payload struct {
		Data productsvc.ProductDTO `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &payload); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if payload.Data.ID != product.ID {
		t.Fatalf("unexpected product %+v", payload.Data)
	}
}

func TestProductDetailRejectsBadID(t *testing.T) {
	t.Parallel()

	svc := &stubProductService{product: sampleProduct()}
	rec := httptest.NewRecorder()
	ProductDetail(svc, testControllerLogger()).ServeHTTP(rec,
		requestWithProductID(http.MethodGet, "/api/v1/products/not-a-uuid", "", "not-a-uuid"))

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestProductDetailNotFound(t *testing.T) {
	t.Parallel()

	svc := &stubProductService{getErr: pkgerrors.New(pkgerrors.CodeNotFound, "product not found")}
	rec := httptest.NewRecorder()
	id := uuid.NewString()
	ProductDetail(svc, testControllerLogger()).ServeHTTP(rec,
		requestWithProductID(http.MethodGet, "/api/v1/products/"+id, "", id))

	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
}

func TestAdminProductCreate(t *testing.T) {
	t.Parallel()

	svc := &stubProductService{product: sampleProduct()}
	rec := httptest.NewRecorder()
	body := `{"name":"Cote de boeuf","category":"beef","price_per_kg":"34.90"}`
	AdminProductCreate(svc, testControllerLogger()).ServeHTTP(rec,
		authedRequest(http.MethodPost, "/api/v1/admin/products", body))

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	if svc.createInput == nil || svc.createInput.Name != "Cote de boeuf" {
		t.Fatalf("unexpected create input: %+v", svc.createInput)
	}
	if !svc.createInput.PricePerKg.Equal(decimal.RequireFromString("34.90")) {
		t.Fatalf("unexpected price %s", svc.createInput.PricePerKg)
	}
}

func TestAdminProductCreateRejectsMissingFields(t *testing.T) {
	t.Parallel()

	svc := &stubProductService{product: sampleProduct()}
	rec := httptest.NewRecorder()
	AdminProductCreate(svc, testControllerLogger()).ServeHTTP(rec,
		authedRequest(http.MethodPost, "/api/v1/admin/products", `{"description":"no name"}`))

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
	if svc.createInput != nil {
		t.Fatal("expected create not called on invalid body")
	}
}

func TestAdminProductUpdatePartial(t *testing.T) {
	t.Parallel()

	svc := &stubProductService{product: sampleProduct()}
	rec := httptest.NewRecorder()
	id := uuid.NewString()
	AdminProductUpdate(svc, testControllerLogger()).ServeHTTP(rec,
		requestWithProductID(http.MethodPatch, "/api/v1/admin/products/"+id, `{"is_active":false}`, id))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if svc.updateInput == nil {
		t.Fatal("expected update call")
	}
	if svc.updateInput.IsActive == nil || *svc.updateInput.IsActive {
		t.Fatalf("expected is_active=false forwarded, got %+v", svc.updateInput.IsActive)
	}
	if svc.updateInput.Name != nil || svc.updateInput.PricePerKg != nil {
		t.Fatal("expected untouched fields to stay nil")
	}
}

func TestAdminProductDelete(t *testing.T) {
	t.Parallel()

	svc := &stubProductService{}
	rec := httptest.NewRecorder()
	id := uuid.New()
	AdminProductDelete(svc, testControllerLogger()).ServeHTTP(rec,
		requestWithProductID(http.MethodDelete, "/api/v1/admin/products/"+id.String(), "", id.String()))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if svc.deletedID != id {
		t.Fatalf("expected delete of %s, got %s", id, svc.deletedID)
	}
	if !strings.Contains(rec.Body.String(), `"status":"deleted"`) {
		t.Fatalf("unexpected body %s", rec.Body.String())
	}
}
