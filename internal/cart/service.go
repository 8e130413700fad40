package cart

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/ducoin/boucherie-backend/pkg/db/models"
	pkgerrors "github.com/ducoin/boucherie-backend/pkg/errors"
	"github.com/ducoin/boucherie-backend/pkg/logger"
)

var gramsPerKg = decimal.NewFromInt(1000)

// LineSubtotal prices a weight in grams against a per-kilogram price, rounded
// to cents.
func LineSubtotal(pricePerKg decimal.Decimal, grams int) decimal.Decimal {
	return pricePerKg.
		Mul(decimal.NewFromInt(int64(grams))).
		Div(gramsPerKg).
		Round(2)
}

// Service exposes the cart operations used by the controller and checkout.
type Service interface {
	GetCart(ctx context.Context, userID uuid.UUID) (*CartDTO, error)
	AddItem(ctx context.Context, userID, productID uuid.UUID, grams int) (*CartDTO, error)
	UpdateItem(ctx context.Context, userID, productID uuid.UUID, grams int) (*CartDTO, error)
	RemoveItem(ctx context.Context, userID, productID uuid.UUID) (*CartDTO, error)
	Clear(ctx context.Context, userID uuid.UUID) error
}

type cartRepository interface {
	UpsertIncrement(ctx context.Context, userID, productID uuid.UUID, grams int) error
	SetQuantity(ctx context.Context, userID, productID uuid.UUID, grams int) (bool, error)
	Delete(ctx context.Context, userID, productID uuid.UUID) (bool, error)
	DeleteAll(ctx context.Context, userID uuid.UUID) error
	ListByUser(ctx context.Context, userID uuid.UUID) ([]models.CartItem, error)
}

type productFinder interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.Product, error)
	FindByIDs(ctx context.Context, ids []uuid.UUID) ([]models.Product, error)
}

type service struct {
	repo     cartRepository
	products productFinder
	logg     *logger.Logger
}

// NewService builds a cart service with the required dependencies.
func NewService(repo cartRepository, products productFinder, logg *logger.Logger) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("cart repository required")
	}
	if products == nil {
		return nil, fmt.Errorf("product finder required")
	}
	return &service{repo: repo, products: products, logg: logg}, nil
}

func (s *service) GetCart(ctx context.Context, userID uuid.UUID) (*CartDTO, error) {
	items, err := s.repo.ListByUser(ctx, userID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load cart")
	}
	return s.enrich(ctx, userID, items)
}

func (s *service) AddItem(ctx context.Context, userID, productID uuid.UUID, grams int) (*CartDTO, error) {
	if err := ValidateQuantity(grams); err != nil {
		return nil, err
	}
	if err := s.requireActiveProduct(ctx, productID); err != nil {
		return nil, err
	}

	if err := s.repo.UpsertIncrement(ctx, userID, productID, grams); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "add cart item")
	}
	return s.GetCart(ctx, userID)
}

func (s *service) UpdateItem(ctx context.Context, userID, productID uuid.UUID, grams int) (*CartDTO, error) {
	if err := ValidateQuantity(grams); err != nil {
		return nil, err
	}

	updated, err := s.repo.SetQuantity(ctx, userID, productID, grams)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "update cart item")
	}
	if !updated {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "item not in cart")
	}
	return s.GetCart(ctx, userID)
}

// RemoveItem deletes one cart line. Removing an entry that is not in the
// cart succeeds without touching anything, so retried deletes stay safe.
func (s *service) RemoveItem(ctx context.Context, userID, productID uuid.UUID) (*CartDTO, error) {
	if _, err := s.repo.Delete(ctx, userID, productID); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "remove cart item")
	}
	return s.GetCart(ctx, userID)
}

func (s *service) Clear(ctx context.Context, userID uuid.UUID) error {
	if err := s.repo.DeleteAll(ctx, userID); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "clear cart")
	}
	return nil
}

func (s *service) requireActiveProduct(ctx context.Context, productID uuid.UUID) error {
	product, err := s.products.FindByID(ctx, productID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
		}
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load product")
	}
	if !product.IsActive {
		return pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
	}
	return nil
}

// enrich joins cart lines with current catalog data. Lines whose product no
// longer exists are dropped from the response and logged; the row itself is
// left alone so the history survives until the user clears it.
func (s *service) enrich(ctx context.Context, userID uuid.UUID, items []models.CartItem) (*CartDTO, error) {
	if len(items) == 0 {
		return EmptyCart(), nil
	}

	ids := make([]uuid.UUID, 0, len(items))
	for _, item := range items {
		ids = append(ids, item.ProductID)
	}

	found, err := s.products.FindByIDs(ctx, ids)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load cart products")
	}
	byID := make(map[uuid.UUID]*models.Product, len(found))
	for i := range found {
		byID[found[i].ID] = &found[i]
	}

	dto := EmptyCart()
	for _, item := range items {
		product, ok := byID[item.ProductID]
		if !ok {
			if s.logg != nil {
				logCtx := s.logg.WithFields(ctx, map[string]any{
					"user_id":    userID.String(),
					"product_id": item.ProductID.String(),
				})
				s.logg.Warn(logCtx, "cart.stale_item_skipped")
			}
			continue
		}

		subtotal := LineSubtotal(product.PricePerKg, item.QuantityInGrams)
		dto.Items = append(dto.Items, CartItemDTO{
			ProductID:       product.ID,
			Name:            product.Name,
			Category:        product.Category,
			PricePerKg:      product.PricePerKg,
			QuantityInGrams: item.QuantityInGrams,
			Subtotal:        subtotal,
			ImageURL:        product.ImageURL,
		})
		dto.Total = dto.Total.Add(subtotal)
	}

	return dto, nil
}
