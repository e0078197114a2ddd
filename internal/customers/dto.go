package customers

import (
	"github.com/samber/lo"

	"github.com/angelmondragon/storefront-backend/internal/wallet"
	"github.com/angelmondragon/storefront-backend/pkg/db/models"
	"github.com/angelmondragon/storefront-backend/pkg/enums"
)

// RegisterRequest is the payload for creating a customer account.
type RegisterRequest struct {
	Username      string              `json:"username" validate:"required,max=50"`
	Name          string              `json:"name" validate:"required,max=100"`
	Password      string              `json:"password" validate:"required,min=8"`
	Age           int                 `json:"age" validate:"min=0,max=150"`
	Address       string              `json:"address" validate:"max=255"`
	Gender        bool                `json:"gender"`
	MaritalStatus enums.MaritalStatus `json:"marital_status" validate:"required,enum"`
}

// UpdateRequest carries a partial profile update; nil fields are left unchanged.
type UpdateRequest struct {
	Name          *string              `json:"name,omitempty" validate:"omitempty,max=100"`
	Password      *string              `json:"password,omitempty" validate:"omitempty,min=8"`
	Age           *int                 `json:"age,omitempty" validate:"omitempty,min=0,max=150"`
	Address       *string              `json:"address,omitempty" validate:"omitempty,max=255"`
	Gender        *bool                `json:"gender,omitempty"`
	MaritalStatus *enums.MaritalStatus `json:"marital_status,omitempty"`
	Role          *enums.CustomerRole  `json:"role,omitempty"`
}

// LoginRequest carries credentials.
type LoginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// LoginResponse is returned on successful authentication.
type LoginResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

// CustomerDTO is the transport shape that omits the password hash.
type CustomerDTO struct {
	Username      string              `json:"username"`
	Name          string              `json:"name"`
	Age           int                 `json:"age"`
	Address       string              `json:"address"`
	Gender        bool                `json:"gender"`
	MaritalStatus enums.MaritalStatus `json:"marital_status"`
	Role          enums.CustomerRole  `json:"role"`
}

// Profile pairs a customer with their wallet.
type Profile struct {
	Customer *CustomerDTO      `json:"customer"`
	Wallet   *wallet.WalletDTO `json:"wallet"`
}

func FromModel(c *models.Customer) *CustomerDTO {
	if c == nil {
		return nil
	}
	return &CustomerDTO{
		Username:      c.Username,
		Name:          c.Name,
		Age:           c.Age,
		Address:       c.Address,
		Gender:        c.Gender,
		MaritalStatus: c.MaritalStatus,
		Role:          c.Role,
	}
}

func FromModels(customers []models.Customer) []CustomerDTO {
	return lo.Map(customers, func(c models.Customer, _ int) CustomerDTO {
		return *FromModel(&c)
	})
}
