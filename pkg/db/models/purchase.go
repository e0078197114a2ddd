package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Purchase is an append-only ledger row written after a completed sale.
type Purchase struct {
	ID             int64           `gorm:"column:id;primaryKey;autoIncrement"`
	GoodID         int64           `gorm:"column:good_id;not null;index"`
	CustomerID     string          `gorm:"column:customer_id;not null;index"`
	AmountDeducted decimal.Decimal `gorm:"column:amount_deducted;type:numeric(12,2);not null"`
	Time           time.Time       `gorm:"column:time;autoCreateTime"`
}

func (Purchase) TableName() string { return "purchases" }
