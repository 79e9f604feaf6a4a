package ledger

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/firecash/backend/internal/domain/shared"
)

// EntryKind classifies a ledger entry
type EntryKind string

const (
	EntryIncome  EntryKind = "income"
	EntryExpense EntryKind = "expense"
)

// IsValid checks if the entry kind is valid
func (k EntryKind) IsValid() bool {
	return k == EntryIncome || k == EntryExpense
}

// ParseEntryKind normalizes and validates a raw kind string
func ParseEntryKind(raw string) (EntryKind, error) {
	k := EntryKind(strings.ToLower(strings.TrimSpace(raw)))
	if !k.IsValid() {
		return "", shared.NewDomainError("INVALID_INPUT", "Entry kind must be income or expense")
	}
	return k, nil
}

// Transaction is a single dated ledger entry. Rows are append-only from the
// scheduler's point of view: obligation firings insert, never update.
type Transaction struct {
	shared.BaseAggregateRoot
	AccountID    uuid.UUID
	Amount       decimal.Decimal
	CurrencyCode string
	Kind         EntryKind
	Description  string
	OccurredAt   time.Time
}

// NewTransaction creates a validated ledger entry
func NewTransaction(accountID uuid.UUID, amount decimal.Decimal, currencyCode string, kind EntryKind, description string, occurredAt time.Time) (*Transaction, error) {
	currencyCode = strings.ToUpper(strings.TrimSpace(currencyCode))

	if accountID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_INPUT", "Account ID is required")
	}
	if amount.LessThanOrEqual(decimal.Zero) {
		return nil, shared.NewDomainError("INVALID_INPUT", "Amount must be positive")
	}
	if len(currencyCode) != 3 {
		return nil, shared.NewDomainError("INVALID_INPUT", "Currency code must be a 3-letter ISO code")
	}
	if !kind.IsValid() {
		return nil, shared.NewDomainError("INVALID_INPUT", "Entry kind must be income or expense")
	}
	if occurredAt.IsZero() {
		return nil, shared.NewDomainError("INVALID_INPUT", "Occurred-at timestamp is required")
	}

	return &Transaction{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		AccountID:         accountID,
		Amount:            amount,
		CurrencyCode:      currencyCode,
		Kind:              kind,
		Description:       strings.TrimSpace(description),
		OccurredAt:        occurredAt,
	}, nil
}

// Update replaces the mutable fields of the entry
func (t *Transaction) Update(amount decimal.Decimal, currencyCode string, kind EntryKind, description string, occurredAt time.Time) error {
	currencyCode = strings.ToUpper(strings.TrimSpace(currencyCode))

	if amount.LessThanOrEqual(decimal.Zero) {
		return shared.NewDomainError("INVALID_INPUT", "Amount must be positive")
	}
	if len(currencyCode) != 3 {
		return shared.NewDomainError("INVALID_INPUT", "Currency code must be a 3-letter ISO code")
	}
	if !kind.IsValid() {
		return shared.NewDomainError("INVALID_INPUT", "Entry kind must be income or expense")
	}
	if occurredAt.IsZero() {
		return shared.NewDomainError("INVALID_INPUT", "Occurred-at timestamp is required")
	}

	t.Amount = amount
	t.CurrencyCode = currencyCode
	t.Kind = kind
	t.Description = strings.TrimSpace(description)
	t.OccurredAt = occurredAt
	t.Touch()
	return nil
}
