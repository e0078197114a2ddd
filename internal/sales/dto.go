package sales

import (
	"time"

	"github.com/samber/lo"
	"github.com/shopspring/decimal"

	"github.com/angelmondragon/storefront-backend/pkg/db/models"
	"github.com/angelmondragon/storefront-backend/pkg/types"
)

// PurchaseDTO is the public view of a ledger row.
type PurchaseDTO struct {
	ID             int64           `json:"id"`
	GoodID         int64           `json:"good_id"`
	CustomerID     string          `json:"customer_id"`
	AmountDeducted decimal.Decimal `json:"amount_deducted"`
	Time           time.Time       `json:"time"`
}

func FromModel(p *models.Purchase) *PurchaseDTO {
	if p == nil {
		return nil
	}
	return &PurchaseDTO{
		ID:             p.ID,
		GoodID:         p.GoodID,
		CustomerID:     p.CustomerID,
		AmountDeducted: types.RoundMoney(p.AmountDeducted),
		Time:           p.Time,
	}
}

func FromModels(purchases []models.Purchase) []PurchaseDTO {
	return lo.Map(purchases, func(p models.Purchase, _ int) PurchaseDTO {
		return *FromModel(&p)
	})
}
