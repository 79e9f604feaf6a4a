package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/firecash/backend/internal/domain/ledger"
	"github.com/firecash/backend/internal/domain/shared"
)

// AccountModel maps the accounts table
type AccountModel struct {
	AggregateModel
	OwnerID      uuid.UUID `gorm:"type:uuid;not null;index"`
	Name         string    `gorm:"size:255;not null"`
	CurrencyCode string    `gorm:"size:3;not null"`
}

// TableName returns the table name
func (AccountModel) TableName() string {
	return "accounts"
}

// ToDomain converts the model to a domain account
func (m *AccountModel) ToDomain() *ledger.Account {
	return &ledger.Account{
		BaseAggregateRoot: shared.BaseAggregateRoot{
			BaseEntity: shared.BaseEntity{
				ID:        m.ID,
				CreatedAt: m.CreatedAt,
				UpdatedAt: m.UpdatedAt,
			},
			Version: m.Version,
		},
		OwnerID:      m.OwnerID,
		Name:         m.Name,
		CurrencyCode: m.CurrencyCode,
	}
}

// AccountModelFromDomain converts a domain account to its model
func AccountModelFromDomain(a *ledger.Account) *AccountModel {
	return &AccountModel{
		AggregateModel: AggregateModel{
			BaseModel: BaseModel{
				ID:        a.ID,
				CreatedAt: a.CreatedAt,
				UpdatedAt: a.UpdatedAt,
			},
			Version: a.Version,
		},
		OwnerID:      a.OwnerID,
		Name:         a.Name,
		CurrencyCode: a.CurrencyCode,
	}
}

// TransactionModel maps the transactions table
type TransactionModel struct {
	AggregateModel
	AccountID    uuid.UUID       `gorm:"type:uuid;not null;index:idx_transactions_account_occurred,priority:1"`
	Amount       decimal.Decimal `gorm:"type:numeric(20,4);not null"`
	CurrencyCode string          `gorm:"size:3;not null"`
	Kind         string          `gorm:"size:16;not null"`
	Description  string          `gorm:"size:1024"`
	OccurredAt   time.Time       `gorm:"not null;index:idx_transactions_account_occurred,priority:2,sort:desc"`
}

// TableName returns the table name
func (TransactionModel) TableName() string {
	return "transactions"
}

// ToDomain converts the model to a domain transaction
func (m *TransactionModel) ToDomain() *ledger.Transaction {
	return &ledger.Transaction{
		BaseAggregateRoot: shared.BaseAggregateRoot{
			BaseEntity: shared.BaseEntity{
				ID:        m.ID,
				CreatedAt: m.CreatedAt,
				UpdatedAt: m.UpdatedAt,
			},
			Version: m.Version,
		},
		AccountID:    m.AccountID,
		Amount:       m.Amount,
		CurrencyCode: m.CurrencyCode,
		Kind:         ledger.EntryKind(m.Kind),
		Description:  m.Description,
		OccurredAt:   m.OccurredAt,
	}
}

// TransactionModelFromDomain converts a domain transaction to its model
func TransactionModelFromDomain(t *ledger.Transaction) *TransactionModel {
	return &TransactionModel{
		AggregateModel: AggregateModel{
			BaseModel: BaseModel{
				ID:        t.ID,
				CreatedAt: t.CreatedAt,
				UpdatedAt: t.UpdatedAt,
			},
			Version: t.Version,
		},
		AccountID:    t.AccountID,
		Amount:       t.Amount,
		CurrencyCode: t.CurrencyCode,
		Kind:         string(t.Kind),
		Description:  t.Description,
		OccurredAt:   t.OccurredAt,
	}
}

// ObligationModel maps the recurring_obligations table. The composite index
// on (is_enabled, next_occurs_at) backs the scheduler's due scan.
type ObligationModel struct {
	AggregateModel
	AccountID    uuid.UUID       `gorm:"type:uuid;not null;index"`
	Amount       decimal.Decimal `gorm:"type:numeric(20,4);not null"`
	CurrencyCode string          `gorm:"size:3;not null"`
	Kind         string          `gorm:"size:16;not null"`
	Description  string          `gorm:"size:1024"`
	IntervalDays int             `gorm:"not null"`
	NextOccursAt time.Time       `gorm:"not null;index:idx_obligations_due,priority:2"`
	IsEnabled    bool            `gorm:"not null;default:true;index:idx_obligations_due,priority:1"`
}

// TableName returns the table name
func (ObligationModel) TableName() string {
	return "recurring_obligations"
}

// ToDomain converts the model to a domain obligation
func (m *ObligationModel) ToDomain() *ledger.Obligation {
	return &ledger.Obligation{
		BaseAggregateRoot: shared.BaseAggregateRoot{
			BaseEntity: shared.BaseEntity{
				ID:        m.ID,
				CreatedAt: m.CreatedAt,
				UpdatedAt: m.UpdatedAt,
			},
			Version: m.Version,
		},
		AccountID:    m.AccountID,
		Amount:       m.Amount,
		CurrencyCode: m.CurrencyCode,
		Kind:         ledger.EntryKind(m.Kind),
		Description:  m.Description,
		IntervalDays: m.IntervalDays,
		NextOccursAt: m.NextOccursAt,
		IsEnabled:    m.IsEnabled,
	}
}

// ObligationModelFromDomain converts a domain obligation to its model
func ObligationModelFromDomain(o *ledger.Obligation) *ObligationModel {
	return &ObligationModel{
		AggregateModel: AggregateModel{
			BaseModel: BaseModel{
				ID:        o.ID,
				CreatedAt: o.CreatedAt,
				UpdatedAt: o.UpdatedAt,
			},
			Version: o.Version,
		},
		AccountID:    o.AccountID,
		Amount:       o.Amount,
		CurrencyCode: o.CurrencyCode,
		Kind:         string(o.Kind),
		Description:  o.Description,
		IntervalDays: o.IntervalDays,
		NextOccursAt: o.NextOccursAt,
		IsEnabled:    o.IsEnabled,
	}
}
