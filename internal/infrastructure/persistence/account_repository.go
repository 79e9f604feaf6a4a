package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/firecash/backend/internal/domain/ledger"
	"github.com/firecash/backend/internal/domain/shared"
	"github.com/firecash/backend/internal/infrastructure/persistence/models"
)

// GormAccountRepository implements AccountRepository using GORM
type GormAccountRepository struct {
	db *gorm.DB
}

// NewGormAccountRepository creates a new GormAccountRepository
func NewGormAccountRepository(db *gorm.DB) *GormAccountRepository {
	return &GormAccountRepository{db: db}
}

// Save inserts a new account
func (r *GormAccountRepository) Save(ctx context.Context, account *ledger.Account) error {
	model := models.AccountModelFromDomain(account)
	return r.db.WithContext(ctx).Create(model).Error
}

// Update persists changes with an optimistic lock on the version column
func (r *GormAccountRepository) Update(ctx context.Context, account *ledger.Account) error {
	model := models.AccountModelFromDomain(account)
	result := r.db.WithContext(ctx).
		Model(&models.AccountModel{}).
		Where("id = ? AND version = ?", model.ID, model.Version).
		Updates(map[string]any{
			"owner_id":      model.OwnerID,
			"name":          model.Name,
			"currency_code": model.CurrencyCode,
			"updated_at":    model.UpdatedAt,
			"version":       model.Version + 1,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrConflict
	}
	account.IncrementVersion()
	return nil
}

// FindByID finds an account by its ID
func (r *GormAccountRepository) FindByID(ctx context.Context, id uuid.UUID) (*ledger.Account, error) {
	var model models.AccountModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindVisibleTo returns accounts the user owns plus accounts reachable
// through group membership
func (r *GormAccountRepository) FindVisibleTo(ctx context.Context, userID uuid.UUID) ([]*ledger.Account, error) {
	var accountModels []models.AccountModel
	err := r.db.WithContext(ctx).
		Distinct("accounts.*").
		Joins("LEFT JOIN group_accounts ga ON ga.account_id = accounts.id").
		Joins("LEFT JOIN group_members gm ON gm.group_id = ga.group_id AND gm.user_id = ?", userID).
		Where("accounts.owner_id = ? OR gm.user_id IS NOT NULL", userID).
		Order("accounts.created_at ASC").
		Find(&accountModels).Error
	if err != nil {
		return nil, err
	}

	accounts := make([]*ledger.Account, len(accountModels))
	for i := range accountModels {
		accounts[i] = accountModels[i].ToDomain()
	}
	return accounts, nil
}

// Delete removes the account together with its ledger entries, obligations,
// and group links
func (r *GormAccountRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("account_id = ?", id).Delete(&models.TransactionModel{}).Error; err != nil {
			return err
		}
		if err := tx.Where("account_id = ?", id).Delete(&models.ObligationModel{}).Error; err != nil {
			return err
		}
		if err := tx.Where("account_id = ?", id).Delete(&models.GroupAccountModel{}).Error; err != nil {
			return err
		}
		result := tx.Where("id = ?", id).Delete(&models.AccountModel{})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return shared.ErrNotFound
		}
		return nil
	})
}
