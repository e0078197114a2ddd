package sales

import (
	"context"

	"gorm.io/gorm"

	"github.com/angelmondragon/storefront-backend/pkg/db/models"
)

// Repository persists the append-only purchases ledger.
type Repository interface {
	Create(ctx context.Context, purchase *models.Purchase) error
	List(ctx context.Context, customerID *string) ([]models.Purchase, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository returns a ledger repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) Create(ctx context.Context, purchase *models.Purchase) error {
	return r.db.WithContext(ctx).Create(purchase).Error
}

func (r *repository) List(ctx context.Context, customerID *string) ([]models.Purchase, error) {
	query := r.db.WithContext(ctx).Model(&models.Purchase{})
	if customerID != nil {
		query = query.Where("customer_id = ?", *customerID)
	}
	var purchases []models.Purchase
	if err := query.Order("time ASC").Order("id ASC").Find(&purchases).Error; err != nil {
		return nil, err
	}
	return purchases, nil
}
