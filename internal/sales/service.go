package sales

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/angelmondragon/storefront-backend/pkg/db/models"
	pkgerrors "github.com/angelmondragon/storefront-backend/pkg/errors"
)

// Service records completed sales and reads them back.
type Service interface {
	Record(ctx context.Context, goodID int64, customerID string, amount decimal.Decimal) (*PurchaseDTO, error)
	List(ctx context.Context) ([]PurchaseDTO, error)
	ListByCustomer(ctx context.Context, customerID string) ([]PurchaseDTO, error)
}

type service struct {
	repo Repository
	now  func() time.Time
}

// NewService wires a ledger service with the provided repository.
func NewService(repo Repository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("sales repository required")
	}
	return &service{repo: repo, now: time.Now}, nil
}

func (s *service) Record(ctx context.Context, goodID int64, customerID string, amount decimal.Decimal) (*PurchaseDTO, error) {
	customerID = strings.TrimSpace(customerID)
	if customerID == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "customer id is required")
	}
	if amount.IsNegative() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "amount must be greater than or equal to 0")
	}
	purchase := &models.Purchase{
		GoodID:         goodID,
		CustomerID:     customerID,
		AmountDeducted: amount,
		Time:           s.now().UTC(),
	}
	if err := s.repo.Create(ctx, purchase); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "record purchase")
	}
	return FromModel(purchase), nil
}

func (s *service) List(ctx context.Context) ([]PurchaseDTO, error) {
	return s.list(ctx, nil)
}

func (s *service) ListByCustomer(ctx context.Context, customerID string) ([]PurchaseDTO, error) {
	customerID = strings.TrimSpace(customerID)
	if customerID == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "customer id is required")
	}
	return s.list(ctx, &customerID)
}

func (s *service) list(ctx context.Context, customerID *string) ([]PurchaseDTO, error) {
	purchases, err := s.repo.List(ctx, customerID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list purchases")
	}
	return FromModels(purchases), nil
}
