package purchase

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/angelmondragon/storefront-backend/internal/sales"
	"github.com/angelmondragon/storefront-backend/pkg/upstream"
)

// Inventory is the slice of the inventory service a purchase needs.
type Inventory interface {
	GetGood(ctx context.Context, goodID int64) (*upstream.Good, error)
	DeductStock(ctx context.Context, goodID int64) (*upstream.Good, error)
}

// Wallets is the slice of the customer service a purchase needs. ChargeWallet
// is only used to refund a debit when the stock step fails.
type Wallets interface {
	DeductWallet(ctx context.Context, customerID string, amount decimal.Decimal) (*upstream.WalletMutation, error)
	ChargeWallet(ctx context.Context, customerID string, amount decimal.Decimal) (*upstream.WalletMutation, error)
}

// Ledger appends completed sales.
type Ledger interface {
	Record(ctx context.Context, goodID int64, customerID string, amount decimal.Decimal) (*sales.PurchaseDTO, error)
}
