package upstream

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/shopspring/decimal"

	pkgerrors "github.com/angelmondragon/storefront-backend/pkg/errors"
)

// WalletMutation is the customer service's reply to a charge or deduct.
type WalletMutation struct {
	CustomerID string          `json:"customer_id"`
	Amount     decimal.Decimal `json:"amount"`
	NewBalance decimal.Decimal `json:"new_balance"`
}

type walletAmount struct {
	Amount decimal.Decimal `json:"amount"`
}

// CustomerClient calls the customer service wallet endpoints.
type CustomerClient struct {
	t *transport
}

// NewCustomerClient builds a client rooted at the customer API base, e.g.
// http://customer:8000/api/v1.
func NewCustomerClient(baseURL string, opts ...Option) (*CustomerClient, error) {
	t, err := newTransport(baseURL, opts...)
	if err != nil {
		return nil, err
	}
	return &CustomerClient{t: t}, nil
}

// DeductWallet subtracts amount from the customer's balance. The customer service
// applies it atomically and refuses to go below zero.
func (c *CustomerClient) DeductWallet(ctx context.Context, customerID string, amount decimal.Decimal) (*WalletMutation, error) {
	return c.mutate(ctx, customerID, "deduct", amount)
}

// ChargeWallet adds amount to the customer's balance.
func (c *CustomerClient) ChargeWallet(ctx context.Context, customerID string, amount decimal.Decimal) (*WalletMutation, error) {
	return c.mutate(ctx, customerID, "charge", amount)
}

func (c *CustomerClient) mutate(ctx context.Context, customerID, op string, amount decimal.Decimal) (*WalletMutation, error) {
	resp, err := c.t.do(ctx, request{
		method: http.MethodPut,
		path:   fmt.Sprintf("/customer/wallet/%s/%s", url.PathEscape(customerID), op),
		body:   walletAmount{Amount: amount},
	})
	if err != nil {
		return nil, err
	}

	switch resp.status {
	case http.StatusOK:
		var out WalletMutation
		if err := resp.decode(&out); err != nil {
			return nil, err
		}
		return &out, nil
	case http.StatusNotFound:
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, fmt.Sprintf("customer '%s' not found", customerID))
	case http.StatusBadRequest:
		switch resp.errorCode() {
		case pkgerrors.CodeInsufficientFunds:
			return nil, pkgerrors.New(pkgerrors.CodeInsufficientFunds, fmt.Sprintf("customer '%s' has insufficient funds", customerID))
		case pkgerrors.CodeValidation:
			return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("wallet %s rejected amount %s", op, amount.String()))
		}
		return nil, resp.unexpected("wallet " + op)
	default:
		return nil, resp.unexpected("wallet " + op)
	}
}
