package wallet

import (
	"context"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/angelmondragon/storefront-backend/pkg/db"
	pkgerrors "github.com/angelmondragon/storefront-backend/pkg/errors"
	"github.com/angelmondragon/storefront-backend/pkg/types"
)

// Service exposes the wallet mutation contract consumed by purchase orchestration.
type Service interface {
	Get(ctx context.Context, customerID string) (*WalletDTO, error)
	Charge(ctx context.Context, customerID string, amount decimal.Decimal) (*MutationResult, error)
	Deduct(ctx context.Context, customerID string, amount decimal.Decimal) (*MutationResult, error)
}

type service struct {
	repo Repository
}

// NewService wires a wallet service with the provided repository.
func NewService(repo Repository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("wallet repository required")
	}
	return &service{repo: repo}, nil
}

func (s *service) Get(ctx context.Context, customerID string) (*WalletDTO, error) {
	customerID = strings.TrimSpace(customerID)
	if customerID == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "customer id is required")
	}
	w, err := s.repo.FindByCustomerID(ctx, customerID)
	if err != nil {
		if db.IsNotFound(err) {
			return nil, notFound(customerID)
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load wallet")
	}
	return FromModel(w), nil
}

func (s *service) Charge(ctx context.Context, customerID string, amount decimal.Decimal) (*MutationResult, error) {
	customerID, err := validateMutation(customerID, amount)
	if err != nil {
		return nil, err
	}

	balance, applied, err := s.repo.Charge(ctx, customerID, amount)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "charge wallet")
	}
	if !applied {
		return nil, notFound(customerID)
	}
	return &MutationResult{CustomerID: customerID, Amount: amount, NewBalance: types.RoundMoney(balance)}, nil
}

func (s *service) Deduct(ctx context.Context, customerID string, amount decimal.Decimal) (*MutationResult, error) {
	customerID, err := validateMutation(customerID, amount)
	if err != nil {
		return nil, err
	}

	balance, applied, err := s.repo.Deduct(ctx, customerID, amount)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "deduct wallet")
	}
	if applied {
		return &MutationResult{CustomerID: customerID, Amount: amount, NewBalance: types.RoundMoney(balance)}, nil
	}

	// Zero rows: either the wallet does not exist or the balance was too low.
	exists, err := s.repo.Exists(ctx, customerID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "probe wallet")
	}
	if !exists {
		return nil, notFound(customerID)
	}
	return nil, pkgerrors.New(pkgerrors.CodeInsufficientFunds, "amount not enough").
		WithDetails(map[string]any{"customer_id": customerID, "amount": amount.String()})
}

func validateMutation(customerID string, amount decimal.Decimal) (string, error) {
	customerID = strings.TrimSpace(customerID)
	if customerID == "" {
		return "", pkgerrors.New(pkgerrors.CodeValidation, "customer id is required")
	}
	if amount.IsNegative() {
		return "", pkgerrors.New(pkgerrors.CodeValidation, "amount must be greater than or equal to 0").
			WithDetails(map[string]any{"amount": amount.String()})
	}
	return customerID, nil
}

func notFound(customerID string) error {
	return pkgerrors.New(pkgerrors.CodeNotFound, fmt.Sprintf("customer '%s' not found", customerID))
}
