package controllers

import (
	"context"
	"net/http"

	"github.com/shopspring/decimal"

	"github.com/angelmondragon/storefront-backend/api/responses"
	"github.com/angelmondragon/storefront-backend/api/validators"
	"github.com/angelmondragon/storefront-backend/internal/wallet"
	pkgerrors "github.com/angelmondragon/storefront-backend/pkg/errors"
	"github.com/angelmondragon/storefront-backend/pkg/logger"
)

type walletMutation func(ctx context.Context, customerID string, amount decimal.Decimal) (*wallet.MutationResult, error)

// WalletCharge adds funds to a customer's wallet.
func WalletCharge(svc wallet.Service, logg *logger.Logger) http.HandlerFunc {
	if svc == nil {
		return walletUnavailable(logg)
	}
	return walletHandler(svc.Charge, logg)
}

// WalletDeduct removes funds, refusing to take the balance below zero.
func WalletDeduct(svc wallet.Service, logg *logger.Logger) http.HandlerFunc {
	if svc == nil {
		return walletUnavailable(logg)
	}
	return walletHandler(svc.Deduct, logg)
}

func walletHandler(apply walletMutation, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		customerID, err := customerParam(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body wallet.AmountRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := apply(r.Context(), customerID, *body.Amount)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, result)
	}
}

func walletUnavailable(logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "wallet service unavailable"))
	}
}
