package controllers

import (
	"net/http"

	"github.com/angelmondragon/storefront-backend/api/responses"
	"github.com/angelmondragon/storefront-backend/api/validators"
	"github.com/angelmondragon/storefront-backend/internal/purchase"
	"github.com/angelmondragon/storefront-backend/internal/sales"
	pkgerrors "github.com/angelmondragon/storefront-backend/pkg/errors"
	"github.com/angelmondragon/storefront-backend/pkg/logger"
)

// SalesPurchase runs the purchase flow for the customer and good in the path.
func SalesPurchase(svc purchase.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "purchase service unavailable"))
			return
		}

		customerID, err := customerParam(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		goodID, err := goodParam(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.Purchase(r.Context(), customerID, goodID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, result)
	}
}

// SalesList returns the ledger, optionally filtered with ?customer_id=.
func SalesList(svc sales.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "sales service unavailable"))
			return
		}

		customerID, err := validators.OptionalQuery(r, "customer_id", 50)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var list []sales.PurchaseDTO
		if customerID != nil {
			list, err = svc.ListByCustomer(r.Context(), *customerID)
		} else {
			list, err = svc.List(r.Context())
		}
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, list)
	}
}
