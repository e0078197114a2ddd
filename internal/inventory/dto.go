package inventory

import (
	"github.com/samber/lo"
	"github.com/shopspring/decimal"

	"github.com/angelmondragon/storefront-backend/pkg/db/models"
	"github.com/angelmondragon/storefront-backend/pkg/enums"
	"github.com/angelmondragon/storefront-backend/pkg/types"
)

const (
	maxNameLength        = 100
	maxDescriptionLength = 255
)

// CreateGoodInput is the body of the add endpoint.
type CreateGoodInput struct {
	Name        string             `json:"name" validate:"required,max=100"`
	Category    enums.GoodCategory `json:"category" validate:"required,enum"`
	Price       decimal.Decimal    `json:"price"`
	Description string             `json:"description" validate:"max=255"`
	Count       int                `json:"count" validate:"min=0"`
}

// UpdateGoodInput carries a partial update; nil fields keep their stored value.
type UpdateGoodInput struct {
	Name        *string             `json:"name,omitempty" validate:"omitempty,max=100"`
	Category    *enums.GoodCategory `json:"category,omitempty"`
	Price       *decimal.Decimal    `json:"price,omitempty"`
	Description *string             `json:"description,omitempty" validate:"omitempty,max=255"`
	Count       *int                `json:"count,omitempty" validate:"omitempty,min=0"`
}

// RestockInput is the body of the restock endpoint.
type RestockInput struct {
	Quantity int `json:"quantity" validate:"required,min=1"`
}

// GoodDTO is the public view of a good.
type GoodDTO struct {
	ID          int64              `json:"id"`
	Name        string             `json:"name"`
	Category    enums.GoodCategory `json:"category"`
	Price       decimal.Decimal    `json:"price"`
	Description string             `json:"description"`
	Count       int                `json:"count"`
}

// FromModel maps a goods row to its public view.
func FromModel(g *models.Good) *GoodDTO {
	if g == nil {
		return nil
	}
	return &GoodDTO{
		ID:          g.ID,
		Name:        g.Name,
		Category:    g.Category,
		Price:       types.RoundMoney(g.Price),
		Description: g.Description,
		Count:       g.Count,
	}
}

// FromModels maps a list of goods rows.
func FromModels(goods []models.Good) []GoodDTO {
	return lo.Map(goods, func(g models.Good, _ int) GoodDTO {
		return *FromModel(&g)
	})
}
