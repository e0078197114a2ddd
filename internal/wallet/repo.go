package wallet

import (
	"context"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/angelmondragon/storefront-backend/pkg/db/models"
)

const (
	deductSQL = `UPDATE wallets
SET amount = amount - ?, last_updated = CURRENT_TIMESTAMP
WHERE customer_id = ? AND amount >= ?
RETURNING amount`

	chargeSQL = `UPDATE wallets
SET amount = amount + ?, last_updated = CURRENT_TIMESTAMP
WHERE customer_id = ?
RETURNING amount`
)

// Repository persists wallets. Balance mutations are single conditional UPDATEs so
// the balance check and the write cannot interleave with another request.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, customerID string) (*models.Wallet, error)
	FindByCustomerID(ctx context.Context, customerID string) (*models.Wallet, error)
	Exists(ctx context.Context, customerID string) (bool, error)
	Delete(ctx context.Context, customerID string) error
	// Deduct returns applied=false when the wallet is missing or its balance is below amount.
	Deduct(ctx context.Context, customerID string, amount decimal.Decimal) (newBalance decimal.Decimal, applied bool, err error)
	// Charge returns applied=false when the wallet is missing.
	Charge(ctx context.Context, customerID string, amount decimal.Decimal) (newBalance decimal.Decimal, applied bool, err error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository returns a wallet repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Create(ctx context.Context, customerID string) (*models.Wallet, error) {
	w := &models.Wallet{CustomerID: customerID, Amount: decimal.Zero}
	if err := r.db.WithContext(ctx).Create(w).Error; err != nil {
		return nil, err
	}
	return w, nil
}

func (r *repository) FindByCustomerID(ctx context.Context, customerID string) (*models.Wallet, error) {
	var w models.Wallet
	if err := r.db.WithContext(ctx).First(&w, "customer_id = ?", customerID).Error; err != nil {
		return nil, err
	}
	return &w, nil
}

func (r *repository) Exists(ctx context.Context, customerID string) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.Wallet{}).
		Where("customer_id = ?", customerID).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *repository) Delete(ctx context.Context, customerID string) error {
	return r.db.WithContext(ctx).Where("customer_id = ?", customerID).Delete(&models.Wallet{}).Error
}

type balanceRow struct {
	Amount decimal.Decimal `gorm:"column:amount"`
}

func (r *repository) Deduct(ctx context.Context, customerID string, amount decimal.Decimal) (decimal.Decimal, bool, error) {
	return r.mutate(ctx, deductSQL, amount, customerID, amount)
}

func (r *repository) Charge(ctx context.Context, customerID string, amount decimal.Decimal) (decimal.Decimal, bool, error) {
	return r.mutate(ctx, chargeSQL, amount, customerID)
}

func (r *repository) mutate(ctx context.Context, query string, args ...any) (decimal.Decimal, bool, error) {
	var rows []balanceRow
	if err := r.db.WithContext(ctx).Raw(query, args...).Scan(&rows).Error; err != nil {
		return decimal.Zero, false, err
	}
	if len(rows) == 0 {
		return decimal.Zero, false, nil
	}
	return rows[0].Amount, true, nil
}
