package customers

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/angelmondragon/storefront-backend/pkg/db/models"
)

// Repository exposes customer persistence operations.
type Repository struct {
	db *gorm.DB
}

// NewRepository constructs a customers repo bound to the provided GORM DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Create inserts a new customer row.
func (r *Repository) Create(ctx context.Context, customer *models.Customer) error {
	return r.db.WithContext(ctx).Create(customer).Error
}

// FindByUsername loads a customer by primary key.
func (r *Repository) FindByUsername(ctx context.Context, username string) (*models.Customer, error) {
	var customer models.Customer
	if err := r.db.WithContext(ctx).First(&customer, "username = ?", username).Error; err != nil {
		return nil, err
	}
	return &customer, nil
}

// List returns every customer ordered by username.
func (r *Repository) List(ctx context.Context) ([]models.Customer, error) {
	var customers []models.Customer
	if err := r.db.WithContext(ctx).Order("username ASC").Find(&customers).Error; err != nil {
		return nil, err
	}
	return customers, nil
}

// Update applies the provided columns and reports whether the row exists.
func (r *Repository) Update(ctx context.Context, username string, fields map[string]any) (bool, error) {
	res := r.db.WithContext(ctx).Model(&models.Customer{}).Where("username = ?", username).Updates(fields)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

// Delete removes the customer and reports whether a row was deleted.
func (r *Repository) Delete(ctx context.Context, username string) (bool, error) {
	res := r.db.WithContext(ctx).Where("username = ?", username).Delete(&models.Customer{})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

// UpdateLastLogin refreshes the customer's last_login_at timestamp.
func (r *Repository) UpdateLastLogin(ctx context.Context, username string, at time.Time) error {
	return r.db.WithContext(ctx).
		Model(&models.Customer{}).
		Where("username = ?", username).
		UpdateColumn("last_login_at", at).Error
}

// UpdatePasswordHash replaces the stored hash, used when argon2 parameters change.
func (r *Repository) UpdatePasswordHash(ctx context.Context, username, hash string) error {
	return r.db.WithContext(ctx).
		Model(&models.Customer{}).
		Where("username = ?", username).
		UpdateColumn("password_hash", hash).Error
}
