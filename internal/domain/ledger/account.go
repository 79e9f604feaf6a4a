package ledger

import (
	"strings"

	"github.com/google/uuid"

	"github.com/firecash/backend/internal/domain/shared"
)

// Account is a ledger container owned by exactly one user. Other users only
// reach it through group role grants.
type Account struct {
	shared.BaseAggregateRoot
	OwnerID      uuid.UUID
	Name         string
	CurrencyCode string
}

// NewAccount creates an account owned by ownerID
func NewAccount(ownerID uuid.UUID, name, currencyCode string) (*Account, error) {
	name = strings.TrimSpace(name)
	currencyCode = strings.ToUpper(strings.TrimSpace(currencyCode))

	if ownerID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_INPUT", "Owner ID is required")
	}
	if name == "" {
		return nil, shared.NewDomainError("INVALID_INPUT", "Account name is required")
	}
	if len(currencyCode) != 3 {
		return nil, shared.NewDomainError("INVALID_INPUT", "Currency code must be a 3-letter ISO code")
	}

	return &Account{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		OwnerID:           ownerID,
		Name:              name,
		CurrencyCode:      currencyCode,
	}, nil
}

// Rename updates the account name
func (a *Account) Rename(name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return shared.NewDomainError("INVALID_INPUT", "Account name is required")
	}
	a.Name = name
	a.Touch()
	return nil
}

// ChangeCurrency updates the currency code
func (a *Account) ChangeCurrency(currencyCode string) error {
	currencyCode = strings.ToUpper(strings.TrimSpace(currencyCode))
	if len(currencyCode) != 3 {
		return shared.NewDomainError("INVALID_INPUT", "Currency code must be a 3-letter ISO code")
	}
	a.CurrencyCode = currencyCode
	a.Touch()
	return nil
}

// IsOwnedBy reports whether userID owns this account
func (a *Account) IsOwnedBy(userID uuid.UUID) bool {
	return a.OwnerID == userID
}
