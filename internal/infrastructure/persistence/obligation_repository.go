package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/firecash/backend/internal/domain/ledger"
	"github.com/firecash/backend/internal/domain/shared"
	"github.com/firecash/backend/internal/infrastructure/persistence/models"
)

// GormObligationRepository implements ObligationRepository using GORM
type GormObligationRepository struct {
	db *gorm.DB
}

// NewGormObligationRepository creates a new GormObligationRepository
func NewGormObligationRepository(db *gorm.DB) *GormObligationRepository {
	return &GormObligationRepository{db: db}
}

// Save inserts a new obligation
func (r *GormObligationRepository) Save(ctx context.Context, obligation *ledger.Obligation) error {
	model := models.ObligationModelFromDomain(obligation)
	return r.db.WithContext(ctx).Create(model).Error
}

// Update persists changes with an optimistic lock on the version column.
// This keeps a user-initiated skip from clobbering a concurrent scheduler
// advance: whichever commits second sees zero affected rows.
func (r *GormObligationRepository) Update(ctx context.Context, obligation *ledger.Obligation) error {
	model := models.ObligationModelFromDomain(obligation)
	result := r.db.WithContext(ctx).
		Model(&models.ObligationModel{}).
		Where("id = ? AND version = ?", model.ID, model.Version).
		Updates(map[string]any{
			"amount":         model.Amount,
			"currency_code":  model.CurrencyCode,
			"kind":           model.Kind,
			"description":    model.Description,
			"interval_days":  model.IntervalDays,
			"next_occurs_at": model.NextOccursAt,
			"is_enabled":     model.IsEnabled,
			"updated_at":     model.UpdatedAt,
			"version":        model.Version + 1,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrConflict
	}
	obligation.IncrementVersion()
	return nil
}

// FindByID finds an obligation by its ID
func (r *GormObligationRepository) FindByID(ctx context.Context, id uuid.UUID) (*ledger.Obligation, error) {
	var model models.ObligationModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByAccount returns the account's obligations ordered by next occurrence
func (r *GormObligationRepository) FindByAccount(ctx context.Context, accountID uuid.UUID) ([]*ledger.Obligation, error) {
	var obligationModels []models.ObligationModel
	err := r.db.WithContext(ctx).
		Where("account_id = ?", accountID).
		Order("next_occurs_at ASC").
		Find(&obligationModels).Error
	if err != nil {
		return nil, err
	}

	obligations := make([]*ledger.Obligation, len(obligationModels))
	for i := range obligationModels {
		obligations[i] = obligationModels[i].ToDomain()
	}
	return obligations, nil
}

// Delete removes an obligation
func (r *GormObligationRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Where("id = ?", id).Delete(&models.ObligationModel{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// FireDue claims due obligations and materializes them in one transaction.
// The claim uses FOR UPDATE SKIP LOCKED so concurrent scheduler instances
// partition the due set between them instead of blocking or double-firing.
// Each claimed row yields one ledger entry dated at the pre-advance
// NextOccursAt, then advances by exactly one interval anchored on the stored
// value. Everything commits together; a failure rolls the whole batch back
// and releases the claims.
func (r *GormObligationRepository) FireDue(ctx context.Context, now time.Time, limit int) ([]ledger.FireResult, error) {
	var results []ledger.FireResult

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var due []models.ObligationModel
		if err := tx.
			Clauses(clause.Locking{Strength: "UPDATE", Options: "SKIP LOCKED"}).
			Where("is_enabled = ? AND next_occurs_at <= ?", true, now).
			Order("next_occurs_at ASC").
			Limit(limit).
			Find(&due).Error; err != nil {
			return err
		}

		for i := range due {
			obligation := due[i].ToDomain()
			occurred := obligation.Advance()

			entry, err := obligation.MaterializedEntry(occurred)
			if err != nil {
				return err
			}
			if err := tx.Create(models.TransactionModelFromDomain(entry)).Error; err != nil {
				return err
			}

			if err := tx.Model(&models.ObligationModel{}).
				Where("id = ?", obligation.ID).
				Updates(map[string]any{
					"next_occurs_at": obligation.NextOccursAt,
					"updated_at":     time.Now(),
					"version":        gorm.Expr("version + 1"),
				}).Error; err != nil {
				return err
			}

			results = append(results, ledger.FireResult{
				ObligationID:  obligation.ID,
				TransactionID: entry.ID,
				OccurredAt:    occurred,
				NextOccursAt:  obligation.NextOccursAt,
			})
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return results, nil
}
