package models

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/angelmondragon/storefront-backend/pkg/enums"
)

// Good is a sellable catalog item owned by the inventory service.
type Good struct {
	ID          int64              `gorm:"column:id;primaryKey;autoIncrement"`
	Name        string             `gorm:"column:name;size:100;not null"`
	Category    enums.GoodCategory `gorm:"column:category;type:text;not null"`
	Price       decimal.Decimal    `gorm:"column:price;type:numeric(12,2);not null"`
	Description string             `gorm:"column:description;size:255;not null;default:''"`
	Count       int                `gorm:"column:count;not null;default:0"`
	CreatedAt   time.Time          `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt   time.Time          `gorm:"column:updated_at;autoUpdateTime"`
}

func (Good) TableName() string { return "goods" }
