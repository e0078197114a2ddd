package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Wallet holds a customer's spendable balance. Amount never goes below zero.
type Wallet struct {
	CustomerID  string          `gorm:"column:customer_id;primaryKey"`
	Amount      decimal.Decimal `gorm:"column:amount;type:numeric(12,2);not null;default:0"`
	LastUpdated time.Time       `gorm:"column:last_updated;autoUpdateTime"`
}

func (Wallet) TableName() string { return "wallets" }
