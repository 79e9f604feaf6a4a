package ledger

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/firecash/backend/internal/domain/shared"
)

// Obligation is a recurring commitment against an account. The scheduler
// materializes it into ledger entries; NextOccursAt always advances by whole
// intervals from its own stored value, never from the wall clock, so the
// firing cadence survives downtime without drifting.
type Obligation struct {
	shared.BaseAggregateRoot
	AccountID    uuid.UUID
	Amount       decimal.Decimal
	CurrencyCode string
	Kind         EntryKind
	Description  string
	IntervalDays int
	NextOccursAt time.Time
	IsEnabled    bool
}

// NewObligation creates a validated recurring obligation
func NewObligation(accountID uuid.UUID, amount decimal.Decimal, currencyCode string, kind EntryKind, description string, intervalDays int, nextOccursAt time.Time) (*Obligation, error) {
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
	if intervalDays < 1 {
		return nil, shared.NewDomainError("INVALID_INPUT", "Interval must be at least one day")
	}
	if nextOccursAt.IsZero() {
		return nil, shared.NewDomainError("INVALID_INPUT", "Next occurrence timestamp is required")
	}

	return &Obligation{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		AccountID:         accountID,
		Amount:            amount,
		CurrencyCode:      currencyCode,
		Kind:              kind,
		Description:       strings.TrimSpace(description),
		IntervalDays:      intervalDays,
		NextOccursAt:      nextOccursAt,
		IsEnabled:         true,
	}, nil
}

// IsDue reports whether the obligation should fire at the given instant
func (o *Obligation) IsDue(now time.Time) bool {
	return o.IsEnabled && !o.NextOccursAt.After(now)
}

// Advance moves NextOccursAt forward by exactly one interval, anchored on the
// stored value. Returns the occurrence date that was consumed.
func (o *Obligation) Advance() time.Time {
	occurred := o.NextOccursAt
	o.NextOccursAt = o.NextOccursAt.AddDate(0, 0, o.IntervalDays)
	o.Touch()
	return occurred
}

// MaterializedEntry builds the ledger entry for one firing, dated at the
// occurrence that is being consumed (not the processing time).
func (o *Obligation) MaterializedEntry(occurredAt time.Time) (*Transaction, error) {
	return NewTransaction(o.AccountID, o.Amount, o.CurrencyCode, o.Kind, o.Description, occurredAt)
}

// Update replaces the mutable fields of the obligation
func (o *Obligation) Update(amount decimal.Decimal, currencyCode string, kind EntryKind, description string, intervalDays int, nextOccursAt time.Time, isEnabled bool) error {
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
	if intervalDays < 1 {
		return shared.NewDomainError("INVALID_INPUT", "Interval must be at least one day")
	}
	if nextOccursAt.IsZero() {
		return shared.NewDomainError("INVALID_INPUT", "Next occurrence timestamp is required")
	}

	o.Amount = amount
	o.CurrencyCode = currencyCode
	o.Kind = kind
	o.Description = strings.TrimSpace(description)
	o.IntervalDays = intervalDays
	o.NextOccursAt = nextOccursAt
	o.IsEnabled = isEnabled
	o.Touch()
	return nil
}
