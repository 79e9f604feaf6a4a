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

// GormTransactionRepository implements TransactionRepository using GORM
type GormTransactionRepository struct {
	db *gorm.DB
}

// NewGormTransactionRepository creates a new GormTransactionRepository
func NewGormTransactionRepository(db *gorm.DB) *GormTransactionRepository {
	return &GormTransactionRepository{db: db}
}

// Save inserts a new ledger entry
func (r *GormTransactionRepository) Save(ctx context.Context, transaction *ledger.Transaction) error {
	model := models.TransactionModelFromDomain(transaction)
	return r.db.WithContext(ctx).Create(model).Error
}

// Update persists changes with an optimistic lock on the version column
func (r *GormTransactionRepository) Update(ctx context.Context, transaction *ledger.Transaction) error {
	model := models.TransactionModelFromDomain(transaction)
	result := r.db.WithContext(ctx).
		Model(&models.TransactionModel{}).
		Where("id = ? AND version = ?", model.ID, model.Version).
		Updates(map[string]any{
			"amount":        model.Amount,
			"currency_code": model.CurrencyCode,
			"kind":          model.Kind,
			"description":   model.Description,
			"occurred_at":   model.OccurredAt,
			"updated_at":    model.UpdatedAt,
			"version":       model.Version + 1,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrConflict
	}
	transaction.IncrementVersion()
	return nil
}

// FindByID finds a ledger entry by its ID
func (r *GormTransactionRepository) FindByID(ctx context.Context, id uuid.UUID) (*ledger.Transaction, error) {
	var model models.TransactionModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByAccount returns the account's entries newest first
func (r *GormTransactionRepository) FindByAccount(ctx context.Context, accountID uuid.UUID, filter shared.Filter) ([]*ledger.Transaction, error) {
	var transactionModels []models.TransactionModel
	err := r.db.WithContext(ctx).
		Where("account_id = ?", accountID).
		Order("occurred_at DESC").
		Limit(filter.Limit).
		Offset(filter.Offset).
		Find(&transactionModels).Error
	if err != nil {
		return nil, err
	}

	transactions := make([]*ledger.Transaction, len(transactionModels))
	for i := range transactionModels {
		transactions[i] = transactionModels[i].ToDomain()
	}
	return transactions, nil
}

// Delete removes a ledger entry
func (r *GormTransactionRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Where("id = ?", id).Delete(&models.TransactionModel{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}
