package inventory

import (
	"context"

	"gorm.io/gorm"

	"github.com/angelmondragon/storefront-backend/pkg/db/models"
	"github.com/angelmondragon/storefront-backend/pkg/enums"
)

const (
	goodColumns = "id, name, category, price, description, count"

	decrementSQL = `UPDATE goods
SET count = count - 1, updated_at = CURRENT_TIMESTAMP
WHERE id = ? AND count > 0
RETURNING ` + goodColumns

	restockSQL = `UPDATE goods
SET count = count + ?, updated_at = CURRENT_TIMESTAMP
WHERE id = ?
RETURNING ` + goodColumns
)

// Repository persists goods. Stock mutations are conditional UPDATEs so a
// concurrent decrement can never drive count below zero.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, good *models.Good) error
	FindByID(ctx context.Context, id int64) (*models.Good, error)
	List(ctx context.Context, category *enums.GoodCategory) ([]models.Good, error)
	Update(ctx context.Context, id int64, fields map[string]any) (bool, error)
	Exists(ctx context.Context, id int64) (bool, error)
	// Decrement returns applied=false when the good is missing or already at zero.
	Decrement(ctx context.Context, id int64) (*models.Good, bool, error)
	// Restock returns applied=false when the good is missing.
	Restock(ctx context.Context, id int64, qty int) (*models.Good, bool, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository returns a goods repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Create(ctx context.Context, good *models.Good) error {
	return r.db.WithContext(ctx).Create(good).Error
}

func (r *repository) FindByID(ctx context.Context, id int64) (*models.Good, error) {
	var good models.Good
	if err := r.db.WithContext(ctx).First(&good, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &good, nil
}

func (r *repository) List(ctx context.Context, category *enums.GoodCategory) ([]models.Good, error) {
	query := r.db.WithContext(ctx).Model(&models.Good{})
	if category != nil {
		query = query.Where("category = ?", *category)
	}
	var goods []models.Good
	if err := query.Order("id ASC").Find(&goods).Error; err != nil {
		return nil, err
	}
	return goods, nil
}

func (r *repository) Update(ctx context.Context, id int64, fields map[string]any) (bool, error) {
	if len(fields) == 0 {
		return r.Exists(ctx, id)
	}
	res := r.db.WithContext(ctx).Model(&models.Good{}).Where("id = ?", id).Updates(fields)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *repository) Exists(ctx context.Context, id int64) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.Good{}).
		Where("id = ?", id).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *repository) Decrement(ctx context.Context, id int64) (*models.Good, bool, error) {
	return r.mutate(ctx, decrementSQL, id)
}

func (r *repository) Restock(ctx context.Context, id int64, qty int) (*models.Good, bool, error) {
	return r.mutate(ctx, restockSQL, qty, id)
}

func (r *repository) mutate(ctx context.Context, query string, args ...any) (*models.Good, bool, error) {
	var rows []models.Good
	if err := r.db.WithContext(ctx).Raw(query, args...).Scan(&rows).Error; err != nil {
		return nil, false, err
	}
	if len(rows) == 0 {
		return nil, false, nil
	}
	return &rows[0], true, nil
}
