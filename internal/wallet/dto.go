package wallet

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/angelmondragon/storefront-backend/pkg/db/models"
	"github.com/angelmondragon/storefront-backend/pkg/types"
)

// AmountRequest is the body of the charge and deduct endpoints.
type AmountRequest struct {
	Amount *decimal.Decimal `json:"amount" validate:"required"`
}

// MutationResult reports a successful charge or deduct.
type MutationResult struct {
	CustomerID string          `json:"customer_id"`
	Amount     decimal.Decimal `json:"amount"`
	NewBalance decimal.Decimal `json:"new_balance"`
}

// WalletDTO is the public view of a wallet.
type WalletDTO struct {
	CustomerID  string          `json:"customer_id"`
	Amount      decimal.Decimal `json:"amount"`
	LastUpdated time.Time       `json:"last_updated"`
}

// FromModel maps a wallet row to its public view.
func FromModel(w *models.Wallet) *WalletDTO {
	if w == nil {
		return nil
	}
	return &WalletDTO{
		CustomerID:  w.CustomerID,
		Amount:      types.RoundMoney(w.Amount),
		LastUpdated: w.LastUpdated,
	}
}
