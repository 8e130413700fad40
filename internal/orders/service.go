package orders

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/ducoin/boucherie-backend/pkg/db/models"
	pkgerrors "github.com/ducoin/boucherie-backend/pkg/errors"
)

// Service exposes order read operations for the storefront.
type Service interface {
	GetLastOrder(ctx context.Context, userID uuid.UUID) (*OrderDTO, error)
	ListOrders(ctx context.Context, userID uuid.UUID) ([]OrderDTO, error)
}

type repository interface {
	FindLatestCompletedByUser(ctx context.Context, userID uuid.UUID) (*models.Order, error)
	ListByUser(ctx context.Context, userID uuid.UUID) ([]models.Order, error)
}

type service struct {
	repo repository
}

// NewService builds an orders read service.
func NewService(repo repository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("orders repository required")
	}
	return &service{repo: repo}, nil
}

func (s *service) GetLastOrder(ctx context.Context, userID uuid.UUID) (*OrderDTO, error) {
	order, err := s.repo.FindLatestCompletedByUser(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "no orders yet")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load last order")
	}
	return FromModel(order), nil
}

func (s *service) ListOrders(ctx context.Context, userID uuid.UUID) ([]OrderDTO, error) {
	list, err := s.repo.ListByUser(ctx, userID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list orders")
	}
	out := make([]OrderDTO, 0, len(list))
	for i := range list {
		out = append(out, *FromModel(&list[i]))
	}
	return out, nil
}
