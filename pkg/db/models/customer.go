package models

import (
	"time"

	"github.com/angelmondragon/storefront-backend/pkg/enums"
)

// Customer is the identity record; Username is immutable once created.
type Customer struct {
	Username      string              `gorm:"column:username;primaryKey"`
	Name          string              `gorm:"column:name;not null"`
	PasswordHash  string              `gorm:"column:password_hash;not null"`
	Age           int                 `gorm:"column:age;not null"`
	Address       string              `gorm:"column:address;not null"`
	Gender        bool                `gorm:"column:gender;not null"`
	MaritalStatus enums.MaritalStatus `gorm:"column:marital_status;type:text;not null"`
	Role          enums.CustomerRole  `gorm:"column:role;type:text;not null;default:customer"`
	LastLoginAt   *time.Time          `gorm:"column:last_login_at"`
	CreatedAt     time.Time           `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt     time.Time           `gorm:"column:updated_at;autoUpdateTime"`
}

func (Customer) TableName() string { return "customers" }
