package repository

import (
	"context"

	"github.com/welldanyogia/webrana-voicemail-backend/internal/models"
	"gorm.io/gorm"
)

// AccountRepository defines the interface for account data access
type AccountRepository interface {
	Create(ctx context.Context) (*models.Account, error)
	Exists(ctx context.Context, id string) (bool, error)
	Delete(ctx context.Context, id string) error
}

// accountRepository implements AccountRepository using GORM
type accountRepository struct {
	db *gorm.DB
}

// NewAccountRepository creates a new AccountRepository instance
func NewAccountRepository(db *gorm.DB) AccountRepository {
	return &accountRepository{db: db}
}

// Create inserts a new account with a generated ID
func (r *accountRepository) Create(ctx context.Context) (*models.Account, error) {
	account := &models.Account{}
	if err := r.db.WithContext(ctx).Create(account).Error; err != nil {
		return nil, classifyError("failed to create account", err)
	}
	return account, nil
}

// Exists reports whether an account with the given ID is stored.
// Malformed IDs never match and cost no round-trip.
func (r *accountRepository) Exists(ctx context.Context, id string) (bool, error) {
	if !isValidID(id) {
		return false, nil
	}

	var count int64
	result := r.db.WithContext(ctx).Model(&models.Account{}).Where("id = ?", id).Count(&count)
	if result.Error != nil {
		return false, classifyError("failed to check account", result.Error)
	}
	return count > 0, nil
}

// Delete deletes an account by its ID (cascade deletes voicemails)
func (r *accountRepository) Delete(ctx context.Context, id string) error {
	if !isValidID(id) {
		return ErrNotFound
	}

	result := r.db.WithContext(ctx).Where("id = ?", id).Delete(&models.Account{})
	if result.Error != nil {
		return classifyError("failed to delete account", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
